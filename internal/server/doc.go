// Package server exposes the published catalog over HTTP in the addon
// layout: a manifest describing the catalog, the catalog index, and one meta
// record per show. Records are read from the output directory on each
// request, so a concurrent build becomes visible as soon as it renames its
// files into place.
package server
