// Package pathtree reconstructs a directory hierarchy from a flat list of
// slash-delimited relative file paths and renders it as an indented outline.
//
// Builder consumes the paths in input order, sharing directory prefixes and
// preserving first-seen sibling order. Tree.Lines yields the outline lazily,
// one line per node, two spaces of indentation per level and a trailing slash
// on directories. Neither operation keeps state between calls.
package pathtree
