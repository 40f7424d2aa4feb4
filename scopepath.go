package grace

import "fmt"

// ScopePaths precomputes the mangled, globally-unique LLVM symbol name
// for every FuncDef and FuncDecl in the program by walking the nesting
// tree once, joining each function's own identifier to its enclosing
// function's path with a separator that cannot appear in Grace source
// (spec.md §4.3, "no two functions share a mangled name" invariant).
//
// This mirrors the teacher's id_resolver.go: a single tree walk that
// hangs a name off of every node into a side table, rather than
// mutating the AST or repeating the walk on demand from codegen.
type ScopePaths struct {
	FuncDef  map[*FuncDef]string
	FuncDecl map[*FuncDecl]string
}

const scopePathSep = "."

// BuildScopePaths walks prog once, from the outermost function down
// through every nested FuncDef and sibling FuncDecl.
func BuildScopePaths(prog *Program) *ScopePaths {
	sp := &ScopePaths{FuncDef: map[*FuncDef]string{}, FuncDecl: map[*FuncDecl]string{}}
	sp.walkFuncDef(prog.Outer, "")
	return sp
}

func (sp *ScopePaths) walkFuncDef(def *FuncDef, prefix string) {
	name := string(def.Header.Id.Content)
	path := name
	if prefix != "" {
		path = fmt.Sprintf("%s%s%s", prefix, scopePathSep, name)
	}
	sp.FuncDef[def] = path

	for _, local := range def.Locals {
		switch l := local.(type) {
		case *FuncDef:
			sp.walkFuncDef(l, path)
		case *FuncDecl:
			declName := string(l.Header.Id.Content)
			sp.FuncDecl[l] = fmt.Sprintf("%s%s%s", path, scopePathSep, declName)
		}
	}
}
