package controller

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"muton.dev/pkg/muton/internal/domain/mutagens"
	m "muton.dev/pkg/muton/internal/model"
	"muton.dev/pkg/muton/pkg"
)

const maxRecent = 8

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	faintStyle = lipgloss.NewStyle().Faint(true)

	statusStyles = map[m.Status]lipgloss.Style{
		m.Killed:      lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		m.Survived:    lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
		m.Timeout:     lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		m.Incompetent: lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	}
)

// TUI implements UI with a live Bubble Tea progress view. Static listings
// are paged when they do not fit the terminal.
type TUI struct {
	output      io.Writer
	showMutants bool
	options     []tea.ProgramOption

	program   *tea.Program
	done      chan struct{}
	runErr    error
	pending   *m.Mutant
	survivors []m.Mutant
}

var _ UI = (*TUI)(nil)

// NewTUI creates a new TUI writing to output.
func NewTUI(output io.Writer, showMutants bool) *TUI {
	return &TUI{
		output:      output,
		showMutants: showMutants,
		// Signals stay with the command context; the view never reads keys.
		options: []tea.ProgramOption{tea.WithOutput(output), tea.WithInput(nil), tea.WithoutSignalHandler()},
	}
}

// Initialize starts the live view.
func (t *TUI) Initialize(_ context.Context, targets, tests []string) error {
	if t.program != nil {
		return nil
	}

	t.program = tea.NewProgram(newRunModel(targets, tests), t.options...)
	t.done = make(chan struct{})

	go func() {
		defer close(t.done)

		_, t.runErr = t.program.Run()
	}()

	return nil
}

// Passed reports the baseline.
func (t *TUI) Passed(_ context.Context, _ []m.TestResult, numberOfTests int) error {
	t.send(passedMsg{tests: numberOfTests})
	return nil
}

// OriginalTestsFail reports the failing baseline.
func (t *TUI) OriginalTestsFail(_ context.Context, result m.TestRunResult) error {
	text := "tests fail on the original code: " + result.Killer
	if result.Incompetent {
		text = "tests do not build: " + firstLine(result.Exception)
	}

	t.send(noticeMsg{text: text})

	return nil
}

// Start switches the view to mutation.
func (t *TUI) Start(context.Context) error {
	t.send(startMsg{})
	return nil
}

// Mutation shows the mutant under test.
func (t *TUI) Mutation(_ context.Context, mutant m.Mutant) error {
	t.pending = &mutant
	t.send(mutationMsg{mutant: mutant})

	return nil
}

// Killed records a killed mutant.
func (t *TUI) Killed(_ context.Context, duration time.Duration, killer, _ string, _ int) error {
	t.outcome(m.Killed, duration, "by "+killer)
	return nil
}

// Survived records a surviving mutant.
func (t *TUI) Survived(_ context.Context, duration time.Duration, _ int) error {
	if t.showMutants && t.pending != nil {
		t.survivors = append(t.survivors, *t.pending)
	}

	t.outcome(m.Survived, duration, "")

	return nil
}

// Timeout records a timed out mutant.
func (t *TUI) Timeout(_ context.Context, duration time.Duration) error {
	t.outcome(m.Timeout, duration, "")
	return nil
}

// Incompetent records an incompetent mutant.
func (t *TUI) Incompetent(_ context.Context, duration time.Duration, exception string, _ int) error {
	t.outcome(m.Incompetent, duration, firstLine(exception))
	return nil
}

// CantLoad reports a name that failed to load.
func (t *TUI) CantLoad(_ context.Context, name string, err error) error {
	t.send(noticeMsg{text: fmt.Sprintf("can't load %s: %v", name, err)})
	return nil
}

// End stops the live view and prints the summary below its last frame.
func (t *TUI) End(_ context.Context, score m.MutationScore, duration time.Duration) error {
	t.send(endMsg{})
	t.wait()

	for _, mutant := range t.survivors {
		_, _ = fmt.Fprintf(t.output, "\n[#%4d] %s\n%s\n", mutant.Number, mutant.Describe(),
			pkg.UnifiedDiff(displayPath(mutant.File), mutant.Original, mutant.Source))
	}

	_, _ = fmt.Fprintf(t.output, "\n%s", renderScoreTable(score, duration))

	return t.runErr
}

// Close stops the live view if it still runs.
func (t *TUI) Close(context.Context) {
	if t.program != nil {
		t.program.Quit()
	}

	t.wait()
}

// DisplayOperators prints the operator catalogue.
func (t *TUI) DisplayOperators(_ context.Context, operators []*mutagens.Operator) error {
	return t.page("Mutation operators", renderOperatorsTable(operators))
}

// DisplayMutants lists generated mutants.
func (t *TUI) DisplayMutants(_ context.Context, mutants []m.Mutant) error {
	content := renderMutantsTable(mutants)

	if t.showMutants {
		var b strings.Builder

		for _, mutant := range mutants {
			fmt.Fprintf(&b, "\n[#%4d] %s\n%s\n", mutant.Number, mutant.Describe(),
				pkg.UnifiedDiff(displayPath(mutant.File), mutant.Original, mutant.Source))
		}

		content += b.String()
	}

	return t.page("Mutants", content)
}

// DisplayReport shows a stored report.
func (t *TUI) DisplayReport(_ context.Context, doc m.ReportDocument) error {
	var b strings.Builder

	writeReport(&b, doc, t.showMutants)

	return t.page("Mutation report", b.String())
}

func (t *TUI) outcome(status m.Status, duration time.Duration, detail string) {
	t.pending = nil
	t.send(outcomeMsg{status: status, duration: duration, detail: detail})
}

func (t *TUI) send(msg tea.Msg) {
	if t.program != nil {
		t.program.Send(msg)
	}
}

func (t *TUI) wait() {
	if t.done != nil {
		<-t.done
	}

	t.program = nil
}

// page prints content, or opens a pager when it is taller than the terminal.
func (t *TUI) page(title, content string) error {
	model := newPagerModel(title, strings.Split(strings.TrimRight(content, "\n"), "\n"))
	model.width, model.height = terminalSize(t.output)

	if !model.needsPagination() {
		_, err := fmt.Fprint(t.output, model.View())
		return err
	}

	program := tea.NewProgram(model, tea.WithOutput(t.output), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return err
	}

	return nil
}

type (
	passedMsg   struct{ tests int }
	startMsg    struct{}
	mutationMsg struct{ mutant m.Mutant }
	outcomeMsg  struct {
		status   m.Status
		duration time.Duration
		detail   string
	}
	noticeMsg struct{ text string }
	endMsg    struct{}
)

// runModel is the live view of a mutation run.
type runModel struct {
	spinner spinner.Model
	bar     progress.Model

	targets []string
	tests   []string

	mutating bool
	baseline int
	current  *m.Mutant
	score    m.MutationScore
	recent   []string
	notices  []string
	done     bool
}

func newRunModel(targets, tests []string) runModel {
	return runModel{
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
		bar:     progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		targets: targets,
		tests:   tests,
		score:   m.NewMutationScore(true),
	}
}

func (rm runModel) Init() tea.Cmd {
	return rm.spinner.Tick
}

func (rm runModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		rm.bar.Width = max(10, min(60, msg.Width-20))
		return rm, nil

	case spinner.TickMsg:
		if rm.done {
			return rm, nil
		}

		var cmd tea.Cmd
		rm.spinner, cmd = rm.spinner.Update(msg)

		return rm, cmd

	case passedMsg:
		rm.baseline = msg.tests
		return rm, nil

	case startMsg:
		rm.mutating = true
		return rm, nil

	case mutationMsg:
		rm.current = &msg.mutant
		return rm, nil

	case outcomeMsg:
		return rm.recordOutcome(msg), nil

	case noticeMsg:
		rm.notices = append(rm.notices, msg.text)
		return rm, nil

	case endMsg:
		rm.done = true
		rm.current = nil

		return rm, tea.Quit
	}

	return rm, nil
}

func (rm runModel) recordOutcome(msg outcomeMsg) runModel {
	rm.score.Record(msg.status)

	line := fmt.Sprintf("[%.2f s] %s", msg.duration.Seconds(), msg.status)
	if msg.detail != "" {
		line += " " + msg.detail
	}

	if rm.current != nil {
		line = fmt.Sprintf("#%d %s %s ", rm.current.Number,
			strings.Join(rm.current.Operators(), ","),
			location(rm.current.File, rm.current.Mutations)) + line
	}

	rm.recent = append(rm.recent, statusStyles[msg.status].Render(line))
	if len(rm.recent) > maxRecent {
		rm.recent = rm.recent[len(rm.recent)-maxRecent:]
	}

	rm.current = nil

	return rm
}

func (rm runModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("muton - mutation testing"))
	b.WriteString("\n")
	b.WriteString(faintStyle.Render(fmt.Sprintf("targets: %s | tests: %s",
		strings.Join(rm.targets, ", "), strings.Join(rm.tests, ", "))))
	b.WriteString("\n\n")

	for _, notice := range rm.notices {
		fmt.Fprintf(&b, "  ! %s\n", notice)
	}

	rm.renderStatus(&b)

	if rm.mutating {
		fmt.Fprintf(&b, "\n  %s %5.1f%%\n", rm.bar.ViewAs(rm.score.Count()/100), rm.score.Count())
		fmt.Fprintf(&b, "  %s %s %s %s\n\n",
			statusStyles[m.Killed].Render(fmt.Sprintf("killed %d", rm.score.Killed)),
			statusStyles[m.Survived].Render(fmt.Sprintf("survived %d", rm.score.Survived)),
			statusStyles[m.Timeout].Render(fmt.Sprintf("timeout %d", rm.score.Timeout)),
			statusStyles[m.Incompetent].Render(fmt.Sprintf("incompetent %d", rm.score.Incompetent)))
	}

	for _, line := range rm.recent {
		fmt.Fprintf(&b, "  %s\n", line)
	}

	return b.String()
}

func (rm runModel) renderStatus(b *strings.Builder) {
	switch {
	case rm.done:
		fmt.Fprintf(b, "  done: %d mutants tested\n", rm.score.All())
	case rm.current != nil:
		fmt.Fprintf(b, "  %s mutant #%d %s\n", rm.spinner.View(), rm.current.Number, rm.current.Describe())
	case rm.mutating:
		fmt.Fprintf(b, "  %s generating mutants\n", rm.spinner.View())
	case rm.baseline > 0:
		fmt.Fprintf(b, "  %d tests passed\n", rm.baseline)
	default:
		fmt.Fprintf(b, "  %s running tests on the original code\n", rm.spinner.View())
	}
}
