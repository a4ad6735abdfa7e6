// Package publish writes a build's records to the output directory.
//
// A Publisher holds an exclusive lock on the output directory while it
// writes, so two builds never interleave files. Meta records are written in
// parallel first; the catalog index is written only after every meta record
// is in place, so a reader following the index never sees a missing detail
// file. Every file goes through a temp file and rename.
package publish
