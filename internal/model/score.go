package model

// MutationScore accumulates the outcome of every tested mutant.
type MutationScore struct {
	Killed       int `yaml:"killed"`
	Survived     int `yaml:"survived"`
	Timeout      int `yaml:"timeout"`
	Incompetent  int `yaml:"incompetent"`
	CoveredNodes int `yaml:"covered_nodes"`
	AllNodes     int `yaml:"all_nodes"`

	// TimeoutAsKilled counts timed out mutants as detected. When false they
	// are left out of the percentage entirely.
	TimeoutAsKilled bool `yaml:"timeout_as_killed"`
}

// NewMutationScore creates an empty score with the given timeout policy.
func NewMutationScore(timeoutAsKilled bool) MutationScore {
	return MutationScore{TimeoutAsKilled: timeoutAsKilled}
}

// All returns the number of mutants tested so far.
func (s MutationScore) All() int {
	return s.Killed + s.Survived + s.Timeout + s.Incompetent
}

// Count returns the mutation score as a percentage.
func (s MutationScore) Count() float64 {
	meaningful := s.All() - s.Incompetent
	if meaningful == 0 {
		return 0
	}

	if s.TimeoutAsKilled {
		return 100 * float64(s.Killed+s.Timeout) / float64(meaningful)
	}

	meaningful -= s.Timeout
	if meaningful == 0 {
		return 0
	}

	return 100 * float64(s.Killed) / float64(meaningful)
}

// Coverage returns the covered node ratio as a percentage.
func (s MutationScore) Coverage() float64 {
	if s.AllNodes == 0 {
		return 0
	}

	return 100 * float64(s.CoveredNodes) / float64(s.AllNodes)
}

// IncKilled records a killed mutant.
func (s *MutationScore) IncKilled() { s.Killed++ }

// IncSurvived records a survived mutant.
func (s *MutationScore) IncSurvived() { s.Survived++ }

// IncTimeout records a timed out mutant.
func (s *MutationScore) IncTimeout() { s.Timeout++ }

// IncIncompetent records an incompetent mutant.
func (s *MutationScore) IncIncompetent() { s.Incompetent++ }

// UpdateCoverage adds the coverage counts of one target.
func (s *MutationScore) UpdateCoverage(covered, all int) {
	s.CoveredNodes += covered
	s.AllNodes += all
}

// Record updates the score with the outcome of one mutant.
func (s *MutationScore) Record(status Status) {
	switch status {
	case Killed:
		s.IncKilled()
	case Survived:
		s.IncSurvived()
	case Timeout:
		s.IncTimeout()
	case Incompetent:
		s.IncIncompetent()
	}
}
