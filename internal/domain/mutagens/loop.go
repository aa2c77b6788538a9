package mutagens

import (
	"go/ast"
	"go/token"
	"go/types"
	"strconv"

	"golang.org/x/tools/go/ast/astutil"

	"muton.dev/pkg/muton/internal/domain/astree"
)

// ZeroIterationLoop makes a loop break before its first iteration.
func ZeroIterationLoop() *Operator {
	return newOperator("ZIL", "ZeroIterationLoop", loopHandlers("mutate_Loop_zero", zeroIteration))
}

// OneIterationLoop appends a break to a loop body.
func OneIterationLoop() *Operator {
	return newOperator("OIL", "OneIterationLoop", loopHandlers("mutate_Loop_once", oneIteration))
}

// ReverseIterationLoop ranges over a slice backwards.
func ReverseIterationLoop() *Operator {
	return newOperator("RIL", "ReverseIterationLoop", map[astree.Key][]Handler{
		astree.KeyFor(astree.KindRangeStmt, token.ILLEGAL): {{Name: "mutate_Range_backward", Fn: reverseRange}},
	})
}

func loopHandlers(name string, fn func(Site) Outcome) map[astree.Key][]Handler {
	return map[astree.Key][]Handler{
		astree.KeyFor(astree.KindForStmt, token.ILLEGAL):   {{Name: name, Fn: fn}},
		astree.KeyFor(astree.KindRangeStmt, token.ILLEGAL): {{Name: name, Fn: fn}},
	}
}

func loopBody(n ast.Node) *ast.BlockStmt {
	switch loop := n.(type) {
	case *ast.ForStmt:
		return loop.Body
	case *ast.RangeStmt:
		return loop.Body
	default:
		return nil
	}
}

// zeroIteration puts a break in front of the body. The body stays in place
// so that every variable, label and import it uses is still referenced.
func zeroIteration(s Site) Outcome {
	body := loopBody(s.Node)
	if body == nil || (len(body.List) > 0 && isBreak(body.List[0])) || terminates(s) {
		return Resigned()
	}

	body.List = append([]ast.Stmt{&ast.BranchStmt{Tok: token.BREAK}}, body.List...)

	return Applied()
}

func oneIteration(s Site) Outcome {
	body := loopBody(s.Node)
	if body == nil || (len(body.List) > 0 && isBreak(body.List[len(body.List)-1])) || terminates(s) {
		return Resigned()
	}

	body.List = append(body.List, &ast.BranchStmt{Tok: token.BREAK})

	return Applied()
}

// terminates reports whether the loop is a condition-less for without a
// break inside a function with results. Such a loop may be the terminating
// statement of the function, and a break would leave it without a return.
func terminates(s Site) bool {
	loop, ok := s.Original.(*ast.ForStmt)
	if !ok || loop.Cond != nil {
		return false
	}

	if !enclosingHasResults(s.Tree, s.ID) {
		return false
	}

	var label string
	if labeled, ok := s.Tree.Node(s.Tree.Node(s.ID).Parent).AST.(*ast.LabeledStmt); ok {
		label = labeled.Label.Name
	}

	return !breaksOut(loop.Body, label)
}

func enclosingHasResults(tree *astree.Tree, id int) bool {
	for parent := tree.Node(id).Parent; parent >= 0; parent = tree.Node(parent).Parent {
		switch fn := tree.Node(parent).AST.(type) {
		case *ast.FuncDecl:
			return fn.Type.Results != nil && len(fn.Type.Results.List) > 0
		case *ast.FuncLit:
			return fn.Type.Results != nil && len(fn.Type.Results.List) > 0
		}
	}

	return false
}

// breaksOut reports whether body holds a break leaving the loop it belongs
// to: an unlabeled break outside nested breakable statements, or a break
// naming label.
func breaksOut(body *ast.BlockStmt, label string) bool {
	found := false

	var visit func(n ast.Node, nested bool) bool

	visit = func(n ast.Node, nested bool) bool {
		ast.Inspect(n, func(child ast.Node) bool {
			if found || child == nil {
				return false
			}

			switch c := child.(type) {
			case *ast.FuncLit:
				return false
			case *ast.ForStmt, *ast.RangeStmt, *ast.SwitchStmt, *ast.TypeSwitchStmt, *ast.SelectStmt:
				if child != n {
					visit(c, true)
					return false
				}
			case *ast.BranchStmt:
				if c.Tok != token.BREAK {
					return false
				}

				if (c.Label == nil && !nested) || (c.Label != nil && c.Label.Name == label) {
					found = true
				}
			}

			return true
		})

		return found
	}

	return visit(body, false)
}

func reverseRange(s Site) Outcome {
	loop, ok := s.Node.(*ast.RangeStmt)
	if !ok || isBackward(loop.X) {
		return Resigned()
	}

	if _, ok := loop.X.(*ast.BasicLit); ok {
		return Resigned()
	}

	if orig, ok := s.Original.(*ast.RangeStmt); ok {
		if t := typeOf(s, orig.X); t != nil {
			if _, ok := t.Underlying().(*types.Slice); !ok {
				return Resigned()
			}
		}
	}

	name, ok := slicesImport(s.Tree.File)
	if !ok {
		return Resigned()
	}

	if name == "" {
		astutil.AddImport(s.Tree.Fset, s.Tree.File, "slices")
		name = "slices"
	}

	loop.X = &ast.CallExpr{
		Fun:  &ast.SelectorExpr{X: ast.NewIdent(name), Sel: ast.NewIdent("Backward")},
		Args: []ast.Expr{loop.X},
	}

	return Applied()
}

func isBackward(x ast.Expr) bool {
	call, ok := x.(*ast.CallExpr)
	if !ok {
		return false
	}

	sel, ok := call.Fun.(*ast.SelectorExpr)

	return ok && sel.Sel.Name == "Backward"
}

// slicesImport returns the name "slices" is imported under, "" when the file
// does not import it. Blank and dot imports cannot be referenced.
func slicesImport(file *ast.File) (string, bool) {
	for _, spec := range file.Imports {
		path, err := strconv.Unquote(spec.Path.Value)
		if err != nil || path != "slices" {
			continue
		}

		if spec.Name == nil {
			return "slices", true
		}

		if spec.Name.Name == "_" || spec.Name.Name == "." {
			return "", false
		}

		return spec.Name.Name, true
	}

	return "", true
}
