// Package textutil provides text helpers shared by the catalog builder and
// the CLI.
//
// StripMarkup turns provider HTML summaries into plain text. Truncate keeps
// table cells readable.
package textutil
