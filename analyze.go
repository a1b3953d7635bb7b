package titanium

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// DeclarationAnalysis is one [TaskDef]'s static parameter classification,
// recovered from source without ever calling [Declare] or running a task
// body: the static counterpart to the runtime [ParamSpec] builders. There
// is no DependsOn field to read (Go has no decorators), so classification
// lives at each call site instead of in a struct literal.
type DeclarationAnalysis struct {
	// TaskName is the string literal passed as Declare's first argument.
	TaskName string
	// File is the source file the declaration was found in.
	File string
	// Plain, Injectable, and Ignored list the parameter names found at
	// TaskDef call sites, classified by which builder constructed them.
	Plain      []string
	Injectable []string
	Ignored    []string
}

// AnalyzeDir walks dir recursively and analyzes every non-test .go file.
func AnalyzeDir(dir string) ([]DeclarationAnalysis, error) {
	var results []DeclarationAnalysis
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
			return nil
		}
		fileResults, err := AnalyzeFile(path)
		if err != nil {
			return fmt.Errorf("analyzing %s: %w", path, err)
		}
		results = append(results, fileResults...)
		return nil
	})
	return results, err
}

// AnalyzeFile parses a single Go source file and returns one
// [DeclarationAnalysis] per TaskDef variable it finds: a `Declare(...)`
// call assigned to an identifier, followed (anywhere later in the same
// file) by that identifier being called with [ParamSpec] builder
// arguments.
func AnalyzeFile(path string) ([]DeclarationAnalysis, error) {
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, path, nil, parser.ParseComments)
	if err != nil {
		return nil, err
	}

	// Pass 1: find `x := titanium.Declare("name", ...)`, `x :=
	// Declare("name", ...)` or `var x = Declare("name", ...)` bindings.
	taskVars := map[string]string{} // variable name -> declared task name
	ast.Inspect(f, func(n ast.Node) bool {
		var lhs, rhs []ast.Expr
		switch x := n.(type) {
		case *ast.AssignStmt:
			lhs, rhs = x.Lhs, x.Rhs
		case *ast.ValueSpec:
			for _, name := range x.Names {
				lhs = append(lhs, name)
			}
			rhs = x.Values
		}
		if len(lhs) != 1 || len(rhs) != 1 {
			return true
		}
		ident, ok := lhs[0].(*ast.Ident)
		if !ok {
			return true
		}
		call, ok := rhs[0].(*ast.CallExpr)
		if !ok || !isCalledName(call.Fun, "Declare") {
			return true
		}
		if len(call.Args) == 0 {
			return true
		}
		if name, ok := stringLiteral(call.Args[0]); ok {
			taskVars[ident.Name] = name
		}
		return true
	})

	byVar := make(map[string]*DeclarationAnalysis, len(taskVars))
	for varName, taskName := range taskVars {
		byVar[varName] = &DeclarationAnalysis{TaskName: taskName, File: path}
	}

	// Pass 2: find calls to any of those variables and classify their
	// ParamSpec arguments.
	ast.Inspect(f, func(n ast.Node) bool {
		call, ok := n.(*ast.CallExpr)
		if !ok {
			return true
		}
		ident, ok := call.Fun.(*ast.Ident)
		if !ok {
			return true
		}
		result, ok := byVar[ident.Name]
		if !ok {
			return true
		}
		for _, arg := range call.Args {
			classifyParamSpec(arg, result)
		}
		return true
	})

	results := make([]DeclarationAnalysis, 0, len(byVar))
	for _, r := range byVar {
		results = append(results, *r)
	}
	return results, nil
}

// classifyParamSpec inspects one ParamSpec-builder call expression
// (Plain/Injectable[T]/Ignore) and records its parameter name under the
// matching bucket.
func classifyParamSpec(arg ast.Expr, result *DeclarationAnalysis) {
	call, ok := arg.(*ast.CallExpr)
	if !ok || len(call.Args) == 0 {
		return
	}
	name, ok := stringLiteral(call.Args[0])
	if !ok {
		return
	}

	switch {
	case isCalledName(call.Fun, "Plain"):
		result.Plain = append(result.Plain, name)
	case isCalledName(call.Fun, "Ignore"):
		result.Ignored = append(result.Ignored, name)
	case isInjectableCall(call.Fun):
		result.Injectable = append(result.Injectable, name)
	}
}

// isCalledName reports whether fn is a bare identifier or a
// pkg-qualified selector with the given name: "Declare" matches both
// `Declare(...)` and `titanium.Declare(...)`.
func isCalledName(fn ast.Expr, name string) bool {
	switch x := fn.(type) {
	case *ast.Ident:
		return x.Name == name
	case *ast.SelectorExpr:
		return x.Sel.Name == name
	}
	return false
}

// isInjectableCall reports whether fn is `Injectable[T]` or
// `titanium.Injectable[T]`: a generic instantiation, so it parses as an
// IndexExpr (single type param) or IndexListExpr (multiple) wrapping the
// identifier/selector, not a plain call target.
func isInjectableCall(fn ast.Expr) bool {
	switch x := fn.(type) {
	case *ast.IndexExpr:
		return isCalledName(x.X, "Injectable")
	case *ast.IndexListExpr:
		return isCalledName(x.X, "Injectable")
	}
	return isCalledName(fn, "Injectable")
}

func stringLiteral(e ast.Expr) (string, bool) {
	lit, ok := e.(*ast.BasicLit)
	if !ok || lit.Kind != token.STRING {
		return "", false
	}
	s, err := strconv.Unquote(lit.Value)
	if err != nil {
		return "", false
	}
	return s, true
}
