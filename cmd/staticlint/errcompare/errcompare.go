// Package errcompare defines an analyzer that reports comparisons of errors
// against sentinel variables with == or !=. Sentinels in this project are
// wrapped on their way up, so only errors.Is matches them reliably.
package errcompare

import (
	"go/ast"
	"go/token"
	"go/types"
	"strings"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"
)

var Analyzer = &analysis.Analyzer{
	Name:     "errcompare",
	Doc:      "reports == and != comparisons against package level Err* sentinel errors",
	Requires: []*analysis.Analyzer{inspect.Analyzer},
	Run:      run,
}

var errorInterface = types.Universe.Lookup("error").Type().Underlying().(*types.Interface)

func run(pass *analysis.Pass) (interface{}, error) {
	inspectResult := pass.ResultOf[inspect.Analyzer].(*inspector.Inspector)

	nodeFilter := []ast.Node{
		(*ast.BinaryExpr)(nil),
	}
	inspectResult.Preorder(nodeFilter, func(n ast.Node) {
		expr := n.(*ast.BinaryExpr)
		if expr.Op != token.EQL && expr.Op != token.NEQ {
			return
		}

		for _, operand := range []ast.Expr{expr.X, expr.Y} {
			if name, ok := sentinelName(pass, operand); ok {
				pass.Reportf(expr.OpPos, "comparison with sentinel error %s, use errors.Is", name)
				return
			}
		}
	})

	return nil, nil
}

func sentinelName(pass *analysis.Pass, expr ast.Expr) (string, bool) {
	var ident *ast.Ident
	switch e := expr.(type) {
	case *ast.Ident:
		ident = e
	case *ast.SelectorExpr:
		ident = e.Sel
	default:
		return "", false
	}

	if !strings.HasPrefix(ident.Name, "Err") {
		return "", false
	}

	variable, ok := pass.TypesInfo.Uses[ident].(*types.Var)
	if !ok || variable.Pkg() == nil || variable.Parent() != variable.Pkg().Scope() {
		return "", false
	}

	return ident.Name, types.Implements(variable.Type(), errorInterface)
}
