package domain

import (
	"cmp"
	"maps"
	"slices"

	"muton.dev/pkg/muton/internal/domain/astree"
	m "muton.dev/pkg/muton/internal/model"
)

type markerSet map[int]struct{}

// CoverageResult is what the instrumented test runs of one target reported.
type CoverageResult struct {
	// PerTest holds the probe markers each test hit.
	PerTest map[m.TestID]map[int]struct{}
	// TestsRun counts the tests executed to collect coverage.
	TestsRun int
}

// Covers reports whether test hit the probe marker.
func (r *CoverageResult) Covers(test m.TestID, marker int) bool {
	_, ok := r.PerTest[test][marker]
	return ok
}

// CoverageInjector answers which nodes of a target the baseline tests reach.
type CoverageInjector struct {
	tree    *astree.Tree
	hits    markerSet
	perTest map[m.TestID]markerSet
}

// NewCoverageInjector folds per-test hits into an injector for tree.
func NewCoverageInjector(tree *astree.Tree, result *CoverageResult) *CoverageInjector {
	c := &CoverageInjector{
		tree:    tree,
		hits:    make(markerSet),
		perTest: make(map[m.TestID]markerSet),
	}

	if result == nil {
		return c
	}

	for test, markers := range result.PerTest {
		c.perTest[test] = markers
		maps.Copy(c.hits, markers)
	}

	return c
}

// IsCovered reports whether the probe owning node marker was hit. Nodes
// without an owning probe run on package initialisation and are covered.
func (c *CoverageInjector) IsCovered(marker int) bool {
	if marker < 0 || marker >= c.tree.Len() {
		return false
	}

	probe := c.tree.Node(marker).Probe
	if probe < 0 {
		return true
	}

	_, ok := c.hits[probe]

	return ok
}

// CoveredNodes counts the covered nodes of the tree.
func (c *CoverageInjector) CoveredNodes() int {
	covered := 0

	for id := range c.tree.Len() {
		if c.IsCovered(id) {
			covered++
		}
	}

	return covered
}

// AllNodes counts the nodes of the tree.
func (c *CoverageInjector) AllNodes() int {
	return c.tree.Len()
}

// TestsFor returns the tests whose runs reached any of the mutations, sorted.
// all is true when some mutation has no owning probe, in which case every
// test must run.
func (c *CoverageInjector) TestsFor(mutations []m.Mutation) (tests []m.TestID, all bool) {
	probes := make(markerSet, len(mutations))

	for _, mutation := range mutations {
		probe := c.tree.Node(mutation.Node).Probe
		if probe < 0 {
			return nil, true
		}

		probes[probe] = struct{}{}
	}

	for test, markers := range c.perTest {
		for probe := range probes {
			if _, ok := markers[probe]; ok {
				tests = append(tests, test)
				break
			}
		}
	}

	slices.SortFunc(tests, func(a, b m.TestID) int {
		return cmp.Or(cmp.Compare(a.Package, b.Package), cmp.Compare(a.Name, b.Name))
	})

	return tests, false
}
