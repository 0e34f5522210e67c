// Package changes implements the diff command: it lists the files changed
// between two branches of a remote, arranges them into a path tree rooted at
// the repository name and publishes the result as an evaluation bundle.
package changes
