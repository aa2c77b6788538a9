package mutagens

import (
	"go/ast"
	"go/token"
	"go/types"

	"muton.dev/pkg/muton/internal/domain/astree"
)

var tokenNames = map[token.Token]string{
	token.ADD:            "Add",
	token.SUB:            "Sub",
	token.MUL:            "Mul",
	token.QUO:            "Quo",
	token.REM:            "Rem",
	token.AND:            "And",
	token.OR:             "Or",
	token.XOR:            "Xor",
	token.SHL:            "Shl",
	token.SHR:            "Shr",
	token.AND_NOT:        "AndNot",
	token.LAND:           "LAnd",
	token.LOR:            "LOr",
	token.NOT:            "Not",
	token.EQL:            "Eql",
	token.NEQ:            "Neq",
	token.LSS:            "Lss",
	token.GTR:            "Gtr",
	token.LEQ:            "Leq",
	token.GEQ:            "Geq",
	token.ADD_ASSIGN:     "AddAssign",
	token.SUB_ASSIGN:     "SubAssign",
	token.MUL_ASSIGN:     "MulAssign",
	token.QUO_ASSIGN:     "QuoAssign",
	token.REM_ASSIGN:     "RemAssign",
	token.AND_ASSIGN:     "AndAssign",
	token.OR_ASSIGN:      "OrAssign",
	token.XOR_ASSIGN:     "XorAssign",
	token.SHL_ASSIGN:     "ShlAssign",
	token.SHR_ASSIGN:     "ShrAssign",
	token.AND_NOT_ASSIGN: "AndNotAssign",
	token.ASSIGN:         "Assign",
	token.INC:            "Inc",
	token.DEC:            "Dec",
}

func tokenName(tok token.Token) string {
	if name, ok := tokenNames[tok]; ok {
		return name
	}

	return tok.String()
}

// replacement is one row of a token replacement table. Rows keep their
// declaration order so handler order is stable.
type replacement struct {
	from token.Token
	to   []token.Token
}

// tokenHandlers registers one handler per target token of every row.
func tokenHandlers(kind astree.Kind, table []replacement, guard func(Site) bool) map[astree.Key][]Handler {
	handlers := make(map[astree.Key][]Handler, len(table))

	for _, row := range table {
		key := astree.KeyFor(kind, row.from)

		for _, to := range row.to {
			handlers[key] = append(handlers[key], Handler{
				Name: "mutate_" + tokenName(row.from) + "_to_" + tokenName(to),
				Fn:   setToken(to, guard),
			})
		}
	}

	return handlers
}

func setToken(to token.Token, guard func(Site) bool) func(Site) Outcome {
	return func(s Site) Outcome {
		if guard != nil && !guard(s) {
			return Resigned()
		}

		switch n := s.Node.(type) {
		case *ast.BinaryExpr:
			n.Op = to
		case *ast.AssignStmt:
			n.Tok = to
		case *ast.IncDecStmt:
			n.Tok = to
		default:
			return Resigned()
		}

		return Applied()
	}
}

// unwrapHandlers register handlers that replace a unary expression by its
// operand.
func unwrapHandlers(ops ...token.Token) map[astree.Key][]Handler {
	handlers := make(map[astree.Key][]Handler, len(ops))

	for _, op := range ops {
		handlers[astree.KeyFor(astree.KindUnaryExpr, op)] = []Handler{{
			Name: "mutate_U" + tokenName(op),
			Fn:   unwrap,
		}}
	}

	return handlers
}

func unwrap(s Site) Outcome {
	u, ok := s.Node.(*ast.UnaryExpr)
	if !ok {
		return Resigned()
	}

	return Replaced(u.X)
}

func merge(tables ...map[astree.Key][]Handler) map[astree.Key][]Handler {
	out := make(map[astree.Key][]Handler)

	for _, table := range tables {
		for key, handlers := range table {
			out[key] = append(out[key], handlers...)
		}
	}

	return out
}

// typeOf returns the type of the original expression, nil without type
// information.
func typeOf(s Site, expr ast.Expr) types.Type {
	if s.Tree.Info == nil || expr == nil {
		return nil
	}

	return s.Tree.Info.TypeOf(expr)
}

func isString(t types.Type) bool {
	if t == nil {
		return false
	}

	basic, ok := t.Underlying().(*types.Basic)

	return ok && basic.Info()&types.IsString != 0
}

func isBreak(stmt ast.Stmt) bool {
	b, ok := stmt.(*ast.BranchStmt)

	return ok && b.Tok == token.BREAK && b.Label == nil
}

func emptyStmt() ast.Stmt {
	return &ast.EmptyStmt{Implicit: true}
}
