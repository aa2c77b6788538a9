package model

import "time"

// Status classifies the outcome of testing one mutant.
type Status int

const (
	// Killed indicates the mutation was detected by tests.
	Killed Status = iota
	// Survived indicates the mutation was not detected by tests.
	Survived
	// Timeout indicates the test process ran out of time and was terminated.
	Timeout
	// Incompetent indicates the mutant could not be built or initialised.
	Incompetent
)

func (s Status) String() string {
	switch s {
	case Killed:
		return "killed"
	case Survived:
		return "survived"
	case Timeout:
		return "timeout"
	case Incompetent:
		return "incompetent"
	default:
		return "unknown"
	}
}

// TestStatus is the verdict of a single test function.
type TestStatus string

// Test verdicts as reported by test2json.
const (
	TestPassed  TestStatus = "pass"
	TestFailed  TestStatus = "fail"
	TestSkipped TestStatus = "skip"
)

// TestResult is the verdict of a single test function.
type TestResult struct {
	ID       TestID        `json:"id" yaml:"id"`
	Status   TestStatus    `json:"status" yaml:"status"`
	Duration time.Duration `json:"duration" yaml:"duration"`
	Output   string        `json:"output,omitempty" yaml:"output,omitempty"`
}

// TestRunResult is the flat record describing one execution of a test suite.
type TestRunResult struct {
	Incompetent        bool         `json:"is_incompetent" yaml:"is_incompetent"`
	Survived           bool         `json:"is_survived" yaml:"is_survived"`
	Killer             string       `json:"killer,omitempty" yaml:"killer,omitempty"`
	ExceptionTraceback string       `json:"exception_traceback,omitempty" yaml:"exception_traceback,omitempty"`
	Exception          string       `json:"exception,omitempty" yaml:"exception,omitempty"`
	TestsRun           int          `json:"tests_run" yaml:"tests_run"`
	Tests              []TestResult `json:"tests,omitempty" yaml:"tests,omitempty"`
}

// Status maps the record onto a mutant outcome.
func (r TestRunResult) Status() Status {
	switch {
	case r.Incompetent:
		return Incompetent
	case r.Survived:
		return Survived
	default:
		return Killed
	}
}

// Merge folds the result of another suite run into r. r must start out
// survived; the first non-survived verdict wins.
func (r *TestRunResult) Merge(other TestRunResult) {
	r.TestsRun += other.TestsRun
	r.Tests = append(r.Tests, other.Tests...)

	if r.Incompetent || !r.Survived {
		return
	}

	r.Incompetent = other.Incompetent
	r.Survived = other.Survived
	r.Killer = other.Killer
	r.Exception = other.Exception
	r.ExceptionTraceback = other.ExceptionTraceback
}

// ReportDocument is the YAML report of one run.
type ReportDocument struct {
	RunID         string        `yaml:"run_id"`
	Module        string        `yaml:"module,omitempty"`
	Targets       []string      `yaml:"targets"`
	Tests         []string      `yaml:"tests"`
	NumberOfTests int           `yaml:"number_of_tests"`
	Started       time.Time     `yaml:"started"`
	TotalTime     time.Duration `yaml:"total_time"`
	MutationScore float64       `yaml:"mutation_score"`
	Coverage      float64       `yaml:"coverage,omitempty"`
	Score         MutationScore `yaml:"score"`
	Mutants       []Report      `yaml:"mutations"`
}

// Report is the persisted outcome of one mutant.
type Report struct {
	Number    int           `yaml:"number"`
	File      Path          `yaml:"module"`
	Mutations []Mutation    `yaml:"mutations"`
	Status    string        `yaml:"status"`
	Killer    string        `yaml:"killer,omitempty"`
	Exception string        `yaml:"exception_traceback,omitempty"`
	TestsRun  int           `yaml:"tests_run"`
	Duration  time.Duration `yaml:"time"`
	Diff      string        `yaml:"diff,omitempty"`
}
