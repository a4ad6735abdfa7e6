package main

// version is stamped at link time with -ldflags "-X main.version=...".
var version = "dev"
