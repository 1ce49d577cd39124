// Package utils provides small helpers shared by the command line layer:
// branch name validation and reading branch names piped on standard input.
package utils
