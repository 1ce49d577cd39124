package utils

import (
	"bufio"
	"io"
	"os"
	"strings"
)

// ReadBranchNames reads whitespace separated branch names from r. Lines in
// `git branch` format are accepted as they are.
func ReadBranchNames(r io.Reader) ([]string, error) {
	var names []string
	lines := bufio.NewScanner(r)
	for lines.Scan() {
		line := NormalizeBranchListName(lines.Text())
		words := bufio.NewScanner(strings.NewReader(line))
		words.Split(bufio.ScanWords)
		for words.Scan() {
			names = append(names, words.Text())
		}
	}
	if err := lines.Err(); err != nil {
		return nil, err
	}
	return names, nil
}

// ReadBranchNamesFromStdin reads branch names from standard input.
// It returns nothing when stdin is a terminal rather than blocking.
func ReadBranchNamesFromStdin() ([]string, error) {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return nil, err
	}

	// If it's a terminal, we don't want to block waiting for input
	if (stat.Mode() & os.ModeCharDevice) != 0 {
		return nil, nil
	}

	return ReadBranchNames(os.Stdin)
}
