// Package report turns a pathtree.Tree and optional file contents into the
// documents changetree prints: plain outlines, Markdown evaluation bundles,
// JSON and YAML.
package report
