// Package main hosts the tvcatalog CLI entrypoint and command graph.
//
// The Cobra-based command tree runs catalog builds, inspects the build ledger
// and published records, serves the output directory to addon clients, and
// scaffolds configuration. Configuration resolution and logger setup live
// here; the build itself lives in internal/pipeline.
package main
