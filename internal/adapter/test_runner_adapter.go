package adapter

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"time"

	m "muton.dev/pkg/muton/internal/model"
)

// ErrBuildFailed wraps the compiler output of a test binary that does not build.
var ErrBuildFailed = errors.New("build failed")

const defaultMaxOutput = 1 << 20

// TestRun describes one execution of a compiled test binary.
type TestRun struct {
	Binary  m.Path
	Dir     m.Path
	Package string
	// Tests restricts the run to these top-level tests; empty runs all.
	Tests []string
	Env   []string
}

// TestRunnerAdapter abstracts test execution operations for mutation testing.
type TestRunnerAdapter interface {
	// BuildTestBinary compiles the tests of suite into output, with overlay
	// (if any) passed to the build.
	BuildTestBinary(ctx context.Context, suite m.TestSuite, overlay, output m.Path) error

	// ListTests lists the top-level tests, examples and fuzz targets of a binary.
	ListTests(ctx context.Context, binary, dir m.Path) ([]string, error)

	// RunTestBinary runs a binary under test2json and folds its events into
	// a flat record. The run is killed when ctx is done.
	RunTestBinary(ctx context.Context, run TestRun) (m.TestRunResult, error)
}

// LocalTestRunnerAdapter runs the go toolchain through os/exec.
type LocalTestRunnerAdapter struct {
	goBin     string
	maxOutput int
}

// NewLocalTestRunnerAdapter constructs a LocalTestRunnerAdapter capturing at
// most 1 MiB of output per process.
func NewLocalTestRunnerAdapter() *LocalTestRunnerAdapter {
	return &LocalTestRunnerAdapter{
		goBin:     "go",
		maxOutput: defaultMaxOutput,
	}
}

// BuildTestBinary runs `go test -c`.
func (a *LocalTestRunnerAdapter) BuildTestBinary(ctx context.Context, suite m.TestSuite, overlay, output m.Path) error {
	args := []string{"test", "-c", "-vet=off", "-o", string(output)}
	if overlay != "" {
		args = append(args, "-overlay", string(overlay))
	}

	dir, pkg := buildLocation(suite)
	args = append(args, pkg)

	out, err := a.execute(ctx, dir, nil, a.goBin, args...)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("build of %s interrupted: %w", suite.Package, ctx.Err())
		}

		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return fmt.Errorf("%w: %s", ErrBuildFailed, strings.TrimSpace(string(out)))
		}

		return fmt.Errorf("failed to run go test -c: %w", err)
	}

	if _, err := os.Stat(string(output)); err != nil {
		return fmt.Errorf("%w: no test binary produced for %s", ErrBuildFailed, suite.Package)
	}

	return nil
}

func buildLocation(suite m.TestSuite) (string, string) {
	if suite.ModuleRoot != "" && suite.Package != "" {
		return string(suite.ModuleRoot), suite.Package
	}

	return string(suite.Dir), "."
}

// ListTests runs the binary with -test.list.
func (a *LocalTestRunnerAdapter) ListTests(ctx context.Context, binary, dir m.Path) ([]string, error) {
	out, err := a.execute(ctx, string(dir), nil, string(binary), "-test.list", ".")
	if err != nil {
		return nil, fmt.Errorf("failed to list tests of %s: %w: %s", binary, err, strings.TrimSpace(string(out)))
	}

	var tests []string

	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		name := strings.TrimSpace(scanner.Text())
		if name == "" || strings.HasPrefix(name, "Benchmark") || strings.ContainsAny(name, " \t") {
			continue
		}

		tests = append(tests, name)
	}

	return tests, nil
}

// RunTestBinary runs `go tool test2json -t bin -test.v=test2json`.
func (a *LocalTestRunnerAdapter) RunTestBinary(ctx context.Context, run TestRun) (m.TestRunResult, error) {
	args := []string{"tool", "test2json", "-t"}
	if run.Package != "" {
		args = append(args, "-p", run.Package)
	}

	args = append(args, string(run.Binary), "-test.v=test2json", "-test.count=1")
	if len(run.Tests) > 0 {
		args = append(args, "-test.run", RunPattern(run.Tests))
	}

	out, err := a.execute(ctx, string(run.Dir), run.Env, a.goBin, args...)
	if ctx.Err() != nil {
		return m.TestRunResult{}, fmt.Errorf("test run of %s interrupted: %w", run.Package, ctx.Err())
	}

	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		return m.TestRunResult{}, fmt.Errorf("failed to run test2json: %w", err)
	}

	return foldEvents(run.Package, bytes.NewReader(out), err != nil), nil
}

// RunPattern anchors test names into a -test.run expression.
func RunPattern(tests []string) string {
	quoted := make([]string, len(tests))
	for i, name := range tests {
		quoted[i] = regexp.QuoteMeta(name)
	}

	return "^(" + strings.Join(quoted, "|") + ")$"
}

func (a *LocalTestRunnerAdapter) execute(ctx context.Context, dir string, env []string, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.WaitDelay = time.Second

	if len(env) > 0 {
		cmd.Env = append(os.Environ(), env...)
	}

	isolate(cmd)

	var out bytes.Buffer

	limited := &limitedWriter{w: &out, limit: a.maxOutput}
	cmd.Stdout = limited
	cmd.Stderr = limited

	slog.Debug("Executing command", "command", name, "args", args, "dir", dir)

	err := cmd.Run()
	if limited.truncated {
		slog.Debug("Command output truncated", "command", name, "limit", a.maxOutput)
	}

	return out.Bytes(), err
}

// testEvent is one line of `go test -json` output.
type testEvent struct {
	Action  string
	Package string
	Test    string
	Elapsed float64
	Output  string
}

// foldEvents turns a test2json stream into a flat record. The first failing
// top-level test is the killer. A process that failed before starting any
// test (init panic, os.Exit in TestMain) is incompetent.
func foldEvents(pkg string, r io.Reader, exitFailed bool) m.TestRunResult {
	var (
		order    []string
		results  = make(map[string]*m.TestResult)
		outputs  = make(map[string]*strings.Builder)
		pkgOut   strings.Builder
		running  string
		failed   string
		pkgFails bool
	)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), defaultMaxOutput)

	for scanner.Scan() {
		var ev testEvent
		if err := json.Unmarshal(scanner.Bytes(), &ev); err != nil {
			pkgOut.Write(scanner.Bytes())
			pkgOut.WriteByte('\n')

			continue
		}

		if ev.Package != "" {
			pkg = ev.Package
		}

		if ev.Test == "" {
			switch ev.Action {
			case "output":
				pkgOut.WriteString(ev.Output)
			case "fail":
				pkgFails = true
			}

			continue
		}

		top, _, sub := strings.Cut(ev.Test, "/")

		switch ev.Action {
		case "run":
			if sub {
				continue
			}

			if _, ok := results[top]; !ok {
				order = append(order, top)
				results[top] = &m.TestResult{ID: m.TestID{Package: pkg, Name: top}}
				outputs[top] = &strings.Builder{}
			}

			running = top
		case "output":
			if b, ok := outputs[top]; ok {
				b.WriteString(ev.Output)
			}
		case "pass", "fail", "skip":
			res, ok := results[top]
			if !ok || sub {
				continue
			}

			res.Status = m.TestStatus(ev.Action)
			res.Duration = time.Duration(ev.Elapsed * float64(time.Second))

			if ev.Action == "fail" && failed == "" {
				failed = top
			}
		}
	}

	result := m.TestRunResult{TestsRun: len(order)}

	for _, name := range order {
		res := results[name]
		if res.Status == "" {
			res.Status = m.TestFailed
		}

		res.Output = outputs[name].String()
		result.Tests = append(result.Tests, *res)
	}

	switch {
	case failed != "":
		result.Killer = results[failed].ID.String()
		result.ExceptionTraceback = results[failed].Output
		result.Exception = failureMessage(results[failed].Output)
	case (exitFailed || pkgFails) && len(order) == 0:
		result.Incompetent = true
		result.ExceptionTraceback = pkgOut.String()
		result.Exception = failureMessage(pkgOut.String())
	case exitFailed || pkgFails:
		// the process died inside a test without test2json seeing a verdict
		if running != "" {
			result.Killer = results[running].ID.String()
		}

		result.ExceptionTraceback = pkgOut.String()
		result.Exception = failureMessage(pkgOut.String())
	default:
		result.Survived = true
	}

	return result
}

// failureMessage picks the first line of test output that is not test
// framing.
func failureMessage(output string) string {
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)

		switch {
		case line == "",
			strings.HasPrefix(line, "=== "),
			strings.HasPrefix(line, "--- "),
			line == "FAIL", line == "PASS",
			strings.HasPrefix(line, "FAIL\t"),
			strings.HasPrefix(line, "exit status"):
			continue
		}

		return line
	}

	return ""
}

// limitedWriter wraps a writer with a size limit.
type limitedWriter struct {
	w         io.Writer
	limit     int
	written   int
	truncated bool
}

func (lw *limitedWriter) Write(p []byte) (int, error) {
	if lw.written >= lw.limit {
		lw.truncated = true
		return len(p), nil
	}

	n := len(p)

	remaining := lw.limit - lw.written
	if len(p) > remaining {
		p = p[:remaining]
		lw.truncated = true
	}

	written, err := lw.w.Write(p)
	lw.written += written

	return n, err
}
