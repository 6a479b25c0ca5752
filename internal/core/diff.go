package core

import (
	"fmt"
	"strings"

	"github.com/illarion/onepass/internal/record"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// listing renders one "name (user)" line per resource. Passwords never appear.
func listing(resources []record.Resource) string {
	var b strings.Builder
	for _, r := range resources {
		fmt.Fprintf(&b, "%s (%s)\n", r.Name, r.User)
	}
	return b.String()
}

// GenerateUnifiedDiff generates a line diff using go-diff library.
// Returns the diff output, or empty string if both sides are identical
func GenerateUnifiedDiff(fromLabel, toLabel, from, to string) (string, error) {
	if from == to {
		return "", nil
	}

	dmp := diffmatchpatch.New()

	// Line-mode diff for better output
	a, b, lineArray := dmp.DiffLinesToChars(from, to)
	diffs := dmp.DiffMain(a, b, false)
	diffs = dmp.DiffCharsToLines(diffs, lineArray)

	var result strings.Builder
	fmt.Fprintf(&result, "--- %s\n", fromLabel)
	fmt.Fprintf(&result, "+++ %s\n", toLabel)

	for _, d := range diffs {
		prefix := " "
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			prefix = "+"
		case diffmatchpatch.DiffDelete:
			prefix = "-"
		}
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}
			result.WriteString(prefix)
			result.WriteString(line)
			if !strings.HasSuffix(line, "\n") {
				result.WriteString("\n")
			}
		}
	}

	return result.String(), nil
}
