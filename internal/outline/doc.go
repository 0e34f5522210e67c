// Package outline implements the tree command, which renders a list of
// slash-delimited paths from arguments, standard input or a file as an
// indented outline.
package outline
