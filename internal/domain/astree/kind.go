package astree

import (
	"go/ast"
	"go/token"
)

// Kind is the discriminant of a node type.
type Kind uint8

// Node kinds the engine dispatches on. Everything else is KindOther.
const (
	KindOther Kind = iota
	KindFile
	KindFuncDecl
	KindGenDecl
	KindImportSpec
	KindValueSpec
	KindTypeSpec
	KindField
	KindFieldList
	KindBlockStmt
	KindIfStmt
	KindForStmt
	KindRangeStmt
	KindSwitchStmt
	KindTypeSwitchStmt
	KindSelectStmt
	KindCaseClause
	KindCommClause
	KindAssignStmt
	KindIncDecStmt
	KindExprStmt
	KindReturnStmt
	KindDeferStmt
	KindGoStmt
	KindSendStmt
	KindBranchStmt
	KindDeclStmt
	KindLabeledStmt
	KindEmptyStmt
	KindBinaryExpr
	KindUnaryExpr
	KindParenExpr
	KindBasicLit
	KindIdent
	KindCallExpr
	KindSelectorExpr
	KindSliceExpr
	KindIndexExpr
	KindStarExpr
	KindFuncLit
	KindCompositeLit
)

var kindNames = [...]string{
	KindOther:          "Other",
	KindFile:           "File",
	KindFuncDecl:       "FuncDecl",
	KindGenDecl:        "GenDecl",
	KindImportSpec:     "ImportSpec",
	KindValueSpec:      "ValueSpec",
	KindTypeSpec:       "TypeSpec",
	KindField:          "Field",
	KindFieldList:      "FieldList",
	KindBlockStmt:      "BlockStmt",
	KindIfStmt:         "IfStmt",
	KindForStmt:        "ForStmt",
	KindRangeStmt:      "RangeStmt",
	KindSwitchStmt:     "SwitchStmt",
	KindTypeSwitchStmt: "TypeSwitchStmt",
	KindSelectStmt:     "SelectStmt",
	KindCaseClause:     "CaseClause",
	KindCommClause:     "CommClause",
	KindAssignStmt:     "AssignStmt",
	KindIncDecStmt:     "IncDecStmt",
	KindExprStmt:       "ExprStmt",
	KindReturnStmt:     "ReturnStmt",
	KindDeferStmt:      "DeferStmt",
	KindGoStmt:         "GoStmt",
	KindSendStmt:       "SendStmt",
	KindBranchStmt:     "BranchStmt",
	KindDeclStmt:       "DeclStmt",
	KindLabeledStmt:    "LabeledStmt",
	KindEmptyStmt:      "EmptyStmt",
	KindBinaryExpr:     "BinaryExpr",
	KindUnaryExpr:      "UnaryExpr",
	KindParenExpr:      "ParenExpr",
	KindBasicLit:       "BasicLit",
	KindIdent:          "Ident",
	KindCallExpr:       "CallExpr",
	KindSelectorExpr:   "SelectorExpr",
	KindSliceExpr:      "SliceExpr",
	KindIndexExpr:      "IndexExpr",
	KindStarExpr:       "StarExpr",
	KindFuncLit:        "FuncLit",
	KindCompositeLit:   "CompositeLit",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}

	return "Other"
}

// KindOf classifies a go/ast node.
//
//nolint:cyclop,gocyclo // flat type switch
func KindOf(n ast.Node) Kind {
	switch n.(type) {
	case *ast.File:
		return KindFile
	case *ast.FuncDecl:
		return KindFuncDecl
	case *ast.GenDecl:
		return KindGenDecl
	case *ast.ImportSpec:
		return KindImportSpec
	case *ast.ValueSpec:
		return KindValueSpec
	case *ast.TypeSpec:
		return KindTypeSpec
	case *ast.Field:
		return KindField
	case *ast.FieldList:
		return KindFieldList
	case *ast.BlockStmt:
		return KindBlockStmt
	case *ast.IfStmt:
		return KindIfStmt
	case *ast.ForStmt:
		return KindForStmt
	case *ast.RangeStmt:
		return KindRangeStmt
	case *ast.SwitchStmt:
		return KindSwitchStmt
	case *ast.TypeSwitchStmt:
		return KindTypeSwitchStmt
	case *ast.SelectStmt:
		return KindSelectStmt
	case *ast.CaseClause:
		return KindCaseClause
	case *ast.CommClause:
		return KindCommClause
	case *ast.AssignStmt:
		return KindAssignStmt
	case *ast.IncDecStmt:
		return KindIncDecStmt
	case *ast.ExprStmt:
		return KindExprStmt
	case *ast.ReturnStmt:
		return KindReturnStmt
	case *ast.DeferStmt:
		return KindDeferStmt
	case *ast.GoStmt:
		return KindGoStmt
	case *ast.SendStmt:
		return KindSendStmt
	case *ast.BranchStmt:
		return KindBranchStmt
	case *ast.DeclStmt:
		return KindDeclStmt
	case *ast.LabeledStmt:
		return KindLabeledStmt
	case *ast.EmptyStmt:
		return KindEmptyStmt
	case *ast.BinaryExpr:
		return KindBinaryExpr
	case *ast.UnaryExpr:
		return KindUnaryExpr
	case *ast.ParenExpr:
		return KindParenExpr
	case *ast.BasicLit:
		return KindBasicLit
	case *ast.Ident:
		return KindIdent
	case *ast.CallExpr:
		return KindCallExpr
	case *ast.SelectorExpr:
		return KindSelectorExpr
	case *ast.SliceExpr:
		return KindSliceExpr
	case *ast.IndexExpr:
		return KindIndexExpr
	case *ast.StarExpr:
		return KindStarExpr
	case *ast.FuncLit:
		return KindFuncLit
	case *ast.CompositeLit:
		return KindCompositeLit
	default:
		return KindOther
	}
}

// Key is the registry key operators dispatch on: the node kind plus the
// operator or literal token for the kinds that carry one.
type Key struct {
	Kind Kind
	Tok  token.Token
}

// KeyFor builds a Key, mostly for registry literals.
func KeyFor(kind Kind, tok token.Token) Key {
	return Key{Kind: kind, Tok: tok}
}

// KeyOf computes the registry key of a node.
func KeyOf(n ast.Node) Key {
	key := Key{Kind: KindOf(n)}

	switch x := n.(type) {
	case *ast.BinaryExpr:
		key.Tok = x.Op
	case *ast.UnaryExpr:
		key.Tok = x.Op
	case *ast.AssignStmt:
		key.Tok = x.Tok
	case *ast.IncDecStmt:
		key.Tok = x.Tok
	case *ast.BasicLit:
		key.Tok = x.Kind
	case *ast.BranchStmt:
		key.Tok = x.Tok
	}

	return key
}
