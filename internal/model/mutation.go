// Package model defines the data structures for mutation testing.
package model

import (
	"fmt"
	"strings"
)

// Mutation is one atomic change applied by an operator to one node.
//
// Node and End delimit the mutated subtree in pre-order numbering, so Node
// is also the coverage marker of the mutated node.
type Mutation struct {
	ID       string `yaml:"id"`
	Operator string `yaml:"operator"`
	Visitor  string `yaml:"visitor"`
	Node     int    `yaml:"node"`
	End      int    `yaml:"end"`
	Line     int    `yaml:"lineno"`
	Column   int    `yaml:"column"`
}

// Contains reports whether other targets a node inside this mutation's subtree.
func (mu Mutation) Contains(other Mutation) bool {
	return mu.Node < other.Node && other.Node < mu.End
}

// ConflictsWith reports whether two mutations touch the same node or nested nodes.
func (mu Mutation) ConflictsWith(other Mutation) bool {
	return mu.Node == other.Node || mu.Contains(other) || other.Contains(mu)
}

func (mu Mutation) String() string {
	return fmt.Sprintf("%s:%d", mu.Operator, mu.Line)
}

// Mutant is a rendered mutant handed to views and reports.
type Mutant struct {
	Number    int
	Mutations []Mutation
	File      Path
	Original  []byte
	Source    []byte
}

// Operators returns the distinct operator codes of the mutant, in application order.
func (mt Mutant) Operators() []string {
	seen := make(map[string]struct{}, len(mt.Mutations))
	ops := make([]string, 0, len(mt.Mutations))

	for _, mutation := range mt.Mutations {
		if _, ok := seen[mutation.Operator]; ok {
			continue
		}

		seen[mutation.Operator] = struct{}{}
		ops = append(ops, mutation.Operator)
	}

	return ops
}

// Describe renders the mutations as "AOR:12, ROR:14".
func (mt Mutant) Describe() string {
	parts := make([]string, 0, len(mt.Mutations))
	for _, mutation := range mt.Mutations {
		parts = append(parts, mutation.String())
	}

	return strings.Join(parts, ", ")
}
