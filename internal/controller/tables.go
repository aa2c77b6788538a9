package controller

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"

	"muton.dev/pkg/muton/internal/domain/mutagens"
	m "muton.dev/pkg/muton/internal/model"
	"muton.dev/pkg/muton/pkg"
)

func newTable(buf *bytes.Buffer, header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(buf)
	table.SetHeader(header)
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetAutoWrapText(false)

	return table
}

func renderScoreTable(score m.MutationScore, duration time.Duration) string {
	var buf bytes.Buffer

	table := newTable(&buf, "Outcome", "Mutants")
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT})

	table.Append([]string{m.Killed.String(), fmt.Sprintf("%d", score.Killed)})
	table.Append([]string{m.Survived.String(), fmt.Sprintf("%d", score.Survived)})
	table.Append([]string{m.Timeout.String(), fmt.Sprintf("%d", score.Timeout)})
	table.Append([]string{m.Incompetent.String(), fmt.Sprintf("%d", score.Incompetent)})
	table.SetFooter([]string{fmt.Sprintf("All %d", score.All()), fmt.Sprintf("%.1f%%", score.Count())})
	table.Render()

	fmt.Fprintf(&buf, "Mutation score [%.5f s]: %.1f%%\n", duration.Seconds(), score.Count())

	if score.AllNodes > 0 {
		fmt.Fprintf(&buf, "Coverage: %d of %d AST nodes (%.1f%%)\n", score.CoveredNodes, score.AllNodes, score.Coverage())
	}

	return buf.String()
}

func renderOperatorsTable(operators []*mutagens.Operator) string {
	var buf bytes.Buffer

	table := newTable(&buf, "Operator", "Description")

	for _, op := range operators {
		table.Append([]string{op.Name, op.Long})
	}

	table.SetFooter([]string{fmt.Sprintf("Total %d", len(operators)), ""})
	table.Render()

	return buf.String()
}

func renderMutantsTable(mutants []m.Mutant) string {
	var buf bytes.Buffer

	table := newTable(&buf, "#", "Operators", "Location", "Change")

	files := make(map[m.Path]struct{})

	for _, mutant := range mutants {
		files[mutant.File] = struct{}{}

		table.Append([]string{
			fmt.Sprintf("%d", mutant.Number),
			strings.Join(mutant.Operators(), ","),
			location(mutant.File, mutant.Mutations),
			firstChange(pkg.UnifiedDiff(displayPath(mutant.File), mutant.Original, mutant.Source)),
		})
	}

	table.SetFooter([]string{fmt.Sprintf("%d", len(mutants)), "", fmt.Sprintf("Files %d", len(files)), ""})
	table.Render()

	return buf.String()
}

func renderReportTable(reports []m.Report) string {
	var buf bytes.Buffer

	table := newTable(&buf, "#", "Status", "Operators", "Location", "Killer")

	for _, report := range reports {
		ops := m.Mutant{Mutations: report.Mutations}.Operators()

		table.Append([]string{
			fmt.Sprintf("%d", report.Number),
			report.Status,
			strings.Join(ops, ","),
			location(report.File, report.Mutations),
			report.Killer,
		})
	}

	table.Render()

	return buf.String()
}

// location is "file:line" of the first mutation.
func location(file m.Path, mutations []m.Mutation) string {
	name := displayPath(file)
	if len(mutations) == 0 {
		return name
	}

	return fmt.Sprintf("%s:%d", name, mutations[0].Line)
}

// firstChange returns the first added line of a diff.
func firstChange(diff string) string {
	for _, line := range pkg.ChangedLines(diff) {
		if strings.HasPrefix(line, "+") {
			return strings.TrimSpace(line[1:])
		}
	}

	return ""
}

// displayPath shortens absolute paths under the working directory.
func displayPath(path m.Path) string {
	if !filepath.IsAbs(string(path)) {
		return string(path)
	}

	wd, err := os.Getwd()
	if err != nil {
		return string(path)
	}

	rel, err := filepath.Rel(wd, string(path))
	if err != nil || strings.HasPrefix(rel, "..") {
		return string(path)
	}

	return rel
}
