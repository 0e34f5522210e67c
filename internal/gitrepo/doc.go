// Package gitrepo answers the questions changetree asks of a Git repository:
// where its root is, what it is called, and which files differ between two
// remote branches.
package gitrepo
