package pkg

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// UnifiedDiff renders a unified diff between two versions of a file with one
// line of context. It returns "" when the versions are equal.
func UnifiedDiff(name string, original, mutated []byte) string {
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(original)),
		B:        difflib.SplitLines(string(mutated)),
		FromFile: "original/" + name,
		ToFile:   "mutant/" + name,
		Context:  1,
	})
	if err != nil {
		return ""
	}

	return strings.TrimRight(diff, "\n")
}

// ChangedLines returns the "-" and "+" lines of a unified diff, without the
// file header.
func ChangedLines(diff string) []string {
	var lines []string

	for _, line := range strings.Split(diff, "\n") {
		if strings.HasPrefix(line, "---") || strings.HasPrefix(line, "+++") {
			continue
		}

		if strings.HasPrefix(line, "-") || strings.HasPrefix(line, "+") {
			lines = append(lines, line)
		}
	}

	return lines
}
