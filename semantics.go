package grace

import "fmt"

// Semantic Analyser: a single recursive-descent walk over the AST that
// populates an SST (spec.md §4.1) and rejects the first rule violation
// from spec.md §4.2, in source order.
//
// It also produces a SemInfo side table: since the AST nodes carry no
// mutable annotation fields, every fact the code generator needs later
// (an expression's Type, a call's resolved FuncSymbol, a definition's
// own FuncSymbol) is recorded here, keyed by pointer identity. This
// mirrors the teacher's id_resolver.go pattern of building a lookup
// table alongside the tree instead of mutating the tree.

type SemInfo struct {
	ExprType       map[Expr]Type
	CallSymbol     map[*CallExpr]*FuncSymbol
	FuncDefSymbol  map[*FuncDef]*FuncSymbol
	FuncDeclSymbol map[*FuncDecl]*FuncSymbol
}

func newSemInfo() *SemInfo {
	return &SemInfo{
		ExprType:       map[Expr]Type{},
		CallSymbol:     map[*CallExpr]*FuncSymbol{},
		FuncDefSymbol:  map[*FuncDef]*FuncSymbol{},
		FuncDeclSymbol: map[*FuncDecl]*FuncSymbol{},
	}
}

type analyser struct {
	sst  *SST
	info *SemInfo
	eval Evaluator
}

// Analyze runs the semantic analyser over prog, returning the fully
// populated symbol table and side-table info the code generator
// consumes, or the first CompileError encountered.
func Analyze(prog *Program) (*SST, *SemInfo, error) {
	a := &analyser{sst: NewSST(), info: newSemInfo(), eval: NewEvaluator()}
	if err := a.analyzeFuncDef(prog.Outer); err != nil {
		return nil, nil, err
	}
	return a.sst, a.info, nil
}

func (a *analyser) analyzeFuncDef(def *FuncDef) error {
	if err := checkFparByRef(def.Header.Params); err != nil {
		return err
	}
	sym := &FuncSymbol{RetType: def.Header.RetType, Params: condenseParams(def.Header.Params)}
	inserted, err := a.sst.Insert(string(def.Header.Id.Content), sym, false, def.Header.Pos())
	if err != nil {
		return err
	}
	fsym := inserted.(*FuncSymbol)
	a.info.FuncDefSymbol[def] = fsym

	a.sst.SetOwner(fsym)
	a.sst.PushScope()

	for _, fp := range def.Header.Params {
		matType := fp.Type.Materialize()
		for _, id := range fp.Idents {
			if _, err := a.sst.Insert(string(id.Content), &VarSymbol{Type: matType}, false, id.Pos); err != nil {
				return err
			}
		}
	}

	for _, local := range def.Locals {
		if err := a.analyzeLocalDef(local); err != nil {
			return err
		}
	}

	if err := a.analyzeBlock(def.Body); err != nil {
		return err
	}

	return a.sst.PopScope(def.Body.Pos())
}

func checkFparByRef(params []FparDef) error {
	for _, fp := range params {
		if fp.Type.IsArrayLike() && !fp.ByRef {
			return NewSemanticError(fp.Idents[0].Pos, "array-typed parameter %q must be passed by reference", string(fp.Idents[0].Content))
		}
	}
	return nil
}

func (a *analyser) analyzeLocalDef(local LocalDef) error {
	switch l := local.(type) {
	case *VarDef:
		for _, n := range l.Type.Tail {
			if n <= 0 {
				return NewSemanticError(l.Pos(), "array dimension must be a positive constant, got %d", n)
			}
		}
		for _, id := range l.Idents {
			if _, err := a.sst.Insert(string(id.Content), &VarSymbol{Type: l.Type}, false, id.Pos); err != nil {
				return err
			}
		}
		return nil
	case *FuncDecl:
		if err := checkFparByRef(l.Header.Params); err != nil {
			return err
		}
		sym := &FuncSymbol{RetType: l.Header.RetType, Params: condenseParams(l.Header.Params)}
		inserted, err := a.sst.Insert(string(l.Header.Id.Content), sym, true, l.Header.Pos())
		if err != nil {
			return err
		}
		a.info.FuncDeclSymbol[l] = inserted.(*FuncSymbol)
		return nil
	case *FuncDef:
		return a.analyzeFuncDef(l)
	}
	return NewCompilerBug(local.Pos(), local, "unhandled LocalDef variant")
}

func (a *analyser) analyzeBlock(b *BlockStmt) error {
	for _, s := range b.Stmts {
		if err := a.analyzeStmt(s); err != nil {
			return err
		}
	}
	return nil
}

func (a *analyser) analyzeStmt(s Stmt) error {
	switch st := s.(type) {
	case *EmptyStmt:
		return nil
	case *BlockStmt:
		return a.analyzeBlock(st)
	case *AssignStmt:
		return a.analyzeAssign(st)
	case *CallStmt:
		_, err := a.analyzeCall(st.Call)
		return err
	case *IfStmt:
		if err := a.analyzeCond(st.Cond); err != nil {
			return err
		}
		if err := a.analyzeStmt(st.Then); err != nil {
			return err
		}
		if st.Else != nil {
			return a.analyzeStmt(st.Else)
		}
		return nil
	case *WhileStmt:
		if err := a.analyzeCond(st.Cond); err != nil {
			return err
		}
		return a.analyzeStmt(st.Body)
	case *ReturnStmt:
		return a.analyzeReturn(st)
	}
	return NewCompilerBug(s.Pos(), s, "unhandled Stmt variant")
}

func (a *analyser) analyzeAssign(st *AssignStmt) error {
	lvType, err := a.analyzeLValue(st.Target)
	if err != nil {
		return err
	}
	if lvType.IsArray() {
		return NewSemanticError(st.Pos(), "cannot assign to array-typed lvalue of type %s", lvType)
	}
	if _, ok := st.Target.(*StringLitExpr); ok {
		return NewSemanticError(st.Pos(), "a string literal is not an assignable lvalue")
	}
	valType, err := a.analyzeExpr(st.Value)
	if err != nil {
		return err
	}
	if !lvType.Equal(valType) {
		return NewSemanticError(st.Pos(), "cannot assign a value of type %s to a variable of type %s", valType, lvType)
	}
	return nil
}

func (a *analyser) analyzeReturn(st *ReturnStmt) error {
	retType, ok := a.sst.CurrentOwnerRetType()
	if !ok {
		return NewCompilerBug(st.Pos(), st, "return statement resolved outside of any function scope")
	}
	if retType.Nothing {
		if st.Value != nil {
			return NewSemanticError(st.Pos(), "function returns nothing and cannot return a value")
		}
		return nil
	}
	if st.Value == nil {
		return NewSemanticError(st.Pos(), "function must return a value of type %s", retType)
	}
	valType, err := a.analyzeExpr(st.Value)
	if err != nil {
		return err
	}
	if !valType.Equal(retType.AsType()) {
		return NewSemanticError(st.Pos(), "cannot return a value of type %s from a function declared to return %s", valType, retType)
	}
	return nil
}

func (a *analyser) analyzeCond(c Cond) error {
	switch cc := c.(type) {
	case *RelCond:
		lt, err := a.analyzeExpr(cc.Left)
		if err != nil {
			return err
		}
		rt, err := a.analyzeExpr(cc.Right)
		if err != nil {
			return err
		}
		if lt.IsArray() || rt.IsArray() || !lt.Equal(rt) {
			return NewSemanticError(cc.Pos(), "operands of a relational operator must share the same scalar type, got %s and %s", lt, rt)
		}
		return nil
	case *NotCond:
		return a.analyzeCond(cc.Cond)
	case *AndCond:
		if err := a.analyzeCond(cc.Left); err != nil {
			return err
		}
		return a.analyzeCond(cc.Right)
	case *OrCond:
		if err := a.analyzeCond(cc.Left); err != nil {
			return err
		}
		return a.analyzeCond(cc.Right)
	}
	return NewCompilerBug(c.Pos(), c, "unhandled Cond variant")
}

func (a *analyser) analyzeExpr(e Expr) (Type, error) {
	t, err := a.analyzeExprUncached(e)
	if err != nil {
		return Type{}, err
	}
	a.info.ExprType[e] = t
	return t, nil
}

func (a *analyser) analyzeExprUncached(e Expr) (Type, error) {
	switch ex := e.(type) {
	case *IntConstExpr:
		return Type{Data: IntType}, nil
	case *CharConstExpr:
		return Type{Data: CharType}, nil
	case *IdentExpr:
		return a.analyzeLValue(ex)
	case *StringLitExpr:
		return a.analyzeLValue(ex)
	case *IndexExpr:
		return a.analyzeLValue(ex)
	case *UnaryExpr:
		return a.analyzeUnary(ex)
	case *BinaryExpr:
		return a.analyzeBinary(ex)
	case *CallExpr:
		fsym, err := a.analyzeCall(ex)
		if err != nil {
			return Type{}, err
		}
		if fsym.RetType.Nothing {
			return Type{}, NewSemanticError(ex.Pos(), "function %q returns nothing and cannot be used as an expression", string(ex.Callee.Content))
		}
		return fsym.RetType.AsType(), nil
	}
	return Type{}, NewCompilerBug(e.Pos(), e, "unhandled Expr variant")
}

func (a *analyser) analyzeUnary(ex *UnaryExpr) (Type, error) {
	ot, err := a.analyzeExpr(ex.Operand)
	if err != nil {
		return Type{}, err
	}
	if ot.Data != IntType || ot.IsArray() {
		return Type{}, NewSemanticError(ex.Pos(), "unary %s requires an int operand, got %s", ex.Op.Content, ot)
	}
	return Type{Data: IntType}, nil
}

func (a *analyser) analyzeBinary(ex *BinaryExpr) (Type, error) {
	lt, err := a.analyzeExpr(ex.Left)
	if err != nil {
		return Type{}, err
	}
	rt, err := a.analyzeExpr(ex.Right)
	if err != nil {
		return Type{}, err
	}
	if lt.Data != IntType || lt.IsArray() || rt.Data != IntType || rt.IsArray() {
		return Type{}, NewSemanticError(ex.Pos(), "arithmetic operator %s requires int operands, got %s and %s", ex.Op.Content, lt, rt)
	}
	if ex.Op.Kind == KW_DIV || ex.Op.Kind == KW_MOD {
		if a.eval.IsConstantZero(ex.Right) {
			return Type{}, NewSemanticError(ex.Right.Pos(), "division by a compile-time constant zero")
		}
	}
	return Type{Data: IntType}, nil
}

func (a *analyser) analyzeLValue(lv LValue) (Type, error) {
	switch l := lv.(type) {
	case *IdentExpr:
		sym, ok := a.sst.Lookup(l.Name)
		if !ok {
			return Type{}, NewSemanticError(l.Pos(), "undeclared identifier: %s", l.Name)
		}
		vs, ok := sym.(*VarSymbol)
		if !ok {
			return Type{}, NewSemanticError(l.Pos(), "%s names a function, not a variable", l.Name)
		}
		return vs.Type, nil
	case *StringLitExpr:
		return Type{Data: CharType, Tail: ArrayTail{len(l.Bytes) + 1}}, nil
	case *IndexExpr:
		baseType, err := a.analyzeLValue(l.Base)
		if err != nil {
			return Type{}, err
		}
		idxType, err := a.analyzeExpr(l.Index)
		if err != nil {
			return Type{}, err
		}
		if idxType.Data != IntType || idxType.IsArray() {
			return Type{}, NewSemanticError(l.Index.Pos(), "array index must be of type int, got %s", idxType)
		}
		elemType, ok := baseType.dropLeadingDim()
		if !ok {
			return Type{}, NewSemanticError(l.Pos(), "cannot index a value of non-array type %s", baseType)
		}
		return elemType, nil
	}
	return Type{}, NewCompilerBug(lv.Pos(), lv, "unhandled LValue variant")
}

func (a *analyser) analyzeCall(ce *CallExpr) (*FuncSymbol, error) {
	name := string(ce.Callee.Content)
	sym, ok := a.sst.Lookup(name)
	if !ok {
		return nil, NewSemanticError(ce.Pos(), "undeclared identifier: %s", name)
	}
	fsym, ok := sym.(*FuncSymbol)
	if !ok {
		return nil, NewSemanticError(ce.Pos(), "%s names a variable, not a function", name)
	}

	wantArgs := 0
	for _, group := range fsym.Params {
		wantArgs += group.Count
	}
	if len(ce.Args) != wantArgs {
		return nil, NewSemanticError(ce.Pos(), "function %s expects %d argument(s), got %d", name, wantArgs, len(ce.Args))
	}

	argIdx := 0
	for _, group := range fsym.Params {
		for i := 0; i < group.Count; i++ {
			arg := ce.Args[argIdx]
			argType, err := a.analyzeExpr(arg)
			if err != nil {
				return nil, err
			}
			if !fparAccepts(group.Type, argType) {
				return nil, NewSemanticError(arg.Pos(), "argument %d of %s: cannot pass %s where %s is expected", argIdx+1, name, argType, formalTypeString(group.Type))
			}
			if group.ByRef {
				if _, isLV := arg.(LValue); !isLV {
					return nil, NewSemanticError(arg.Pos(), "argument %d of %s must be a variable, passed by reference", argIdx+1, name)
				}
			}
			argIdx++
		}
	}

	a.info.CallSymbol[ce] = fsym
	return fsym, nil
}

// fparAccepts reports whether a caller's argument of type actual may
// bind to a formal parameter declared as formal (spec.md §4.2, FuncCall
// rule): an unknown-leading-dim formal accepts any array whose tail
// beyond the leading dimension matches exactly.
func fparAccepts(formal FparType, actual Type) bool {
	if formal.UnknownLeadingDim {
		dropped, ok := actual.dropLeadingDim()
		if !ok {
			return false
		}
		return dropped.Equal(Type{Data: formal.Data, Tail: formal.Tail})
	}
	return actual.Equal(formal.Type)
}

func formalTypeString(f FparType) string {
	if f.UnknownLeadingDim {
		return fmt.Sprintf("[]%s", Type{Data: f.Data, Tail: f.Tail})
	}
	return f.Type.String()
}
