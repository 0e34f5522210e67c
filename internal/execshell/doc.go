// Package execshell runs external tools such as git behind a small, testable seam.
//
// ShellExecutor logs each command's lifecycle through zap and converts
// non-zero exits into CommandFailedError. OSCommandRunner is the default
// CommandRunner backed by os/exec.
package execshell
