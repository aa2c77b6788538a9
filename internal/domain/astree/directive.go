package astree

import (
	"go/ast"
	"strings"
	"unicode"
)

const (
	notMutateDirective = "muton:notmutate"
	ignoreDirective    = "muton:ignore"
)

type ignoreRule struct {
	all   bool
	names map[string]struct{}
}

func (r ignoreRule) empty() bool {
	return !r.all && len(r.names) == 0
}

func (r ignoreRule) ignores(operator string) bool {
	if r.all {
		return true
	}

	_, ok := r.names[strings.ToUpper(operator)]

	return ok
}

func (r *ignoreRule) merge(src ignoreRule) {
	if src.all {
		r.all = true
		r.names = nil

		return
	}

	if r.all || len(src.names) == 0 {
		return
	}

	if r.names == nil {
		r.names = make(map[string]struct{}, len(src.names))
	}

	for name := range src.names {
		r.names[name] = struct{}{}
	}
}

// parseDirective recognises
//
//	//muton:notmutate
//	//muton:ignore
//	//muton:ignore AOR,ROR
func parseDirective(text string) (ignoreRule, bool) {
	s := strings.TrimSpace(text)
	if strings.HasPrefix(s, "//") {
		s = strings.TrimSpace(strings.TrimPrefix(s, "//"))
	} else if strings.HasPrefix(s, "/*") {
		s = strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(s, "/*"), "*/"))
	}

	if s == notMutateDirective {
		return ignoreRule{all: true}, true
	}

	if !strings.HasPrefix(s, ignoreDirective) {
		return ignoreRule{}, false
	}

	rest := strings.TrimPrefix(s, ignoreDirective)
	if rest != "" && !unicode.IsSpace(rune(rest[0])) {
		return ignoreRule{}, false
	}

	rule := ignoreRule{names: make(map[string]struct{})}

	for _, part := range strings.Split(rest, ",") {
		name := strings.ToUpper(strings.TrimSpace(part))
		if name != "" {
			rule.names[name] = struct{}{}
		}
	}

	if len(rule.names) == 0 {
		return ignoreRule{all: true}, true
	}

	return rule, true
}

type directiveIndex struct {
	file  ignoreRule
	decls map[int]ignoreRule
	lines map[int]ignoreRule
}

func buildDirectiveIndex(t *Tree) *directiveIndex {
	idx := &directiveIndex{
		decls: make(map[int]ignoreRule),
		lines: make(map[int]ignoreRule),
	}

	docs := make(map[*ast.CommentGroup]struct{})

	for _, decl := range t.File.Decls {
		var doc *ast.CommentGroup

		switch d := decl.(type) {
		case *ast.FuncDecl:
			doc = d.Doc
		case *ast.GenDecl:
			doc = d.Doc
		}

		if doc == nil {
			continue
		}

		docs[doc] = struct{}{}

		rule := rulesOf(doc)
		if rule.empty() {
			continue
		}

		if id, ok := t.ID(decl); ok {
			idx.decls[id] = rule
		}
	}

	for _, group := range t.File.Comments {
		if _, ok := docs[group]; ok {
			continue
		}

		if group.End() < t.File.Package {
			idx.file.merge(rulesOf(group))
			continue
		}

		for _, c := range group.List {
			rule, ok := parseDirective(c.Text)
			if !ok {
				continue
			}

			pos := t.Fset.Position(c.Pos())
			idx.addLine(pos.Line, rule)

			if standalone(t.Src, pos.Offset) {
				idx.addLine(pos.Line+1, rule)
			}
		}
	}

	return idx
}

func (idx *directiveIndex) addLine(line int, rule ignoreRule) {
	current := idx.lines[line]
	current.merge(rule)
	idx.lines[line] = current
}

func rulesOf(group *ast.CommentGroup) ignoreRule {
	var rule ignoreRule

	for _, c := range group.List {
		if r, ok := parseDirective(c.Text); ok {
			rule.merge(r)
		}
	}

	return rule
}

// standalone reports whether only whitespace precedes offset on its line.
func standalone(src []byte, offset int) bool {
	if offset > len(src) {
		return false
	}

	for i := offset - 1; i >= 0 && src[i] != '\n'; i-- {
		if src[i] != ' ' && src[i] != '\t' {
			return false
		}
	}

	return true
}

// Ignored reports whether a directive hides node id (and its subtree) from
// the given operator.
func (t *Tree) Ignored(id int, operator string) bool {
	idx := t.directives
	if idx.file.ignores(operator) {
		return true
	}

	if rule, ok := idx.decls[id]; ok && rule.ignores(operator) {
		return true
	}

	if rule, ok := idx.lines[t.nodes[id].Line]; ok && rule.ignores(operator) {
		return true
	}

	return false
}
