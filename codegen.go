package grace

import (
	"fmt"

	"tinygo.org/x/go-llvm"
)

// Code Generator: a second traversal of the AST, this time producing
// LLVM IR. It leans on the SemInfo side table the analyser already
// built (expression types, resolved call targets, resolved function
// symbols) instead of re-deriving any of that, and on ScopePaths for
// mangled names.
//
// Pointers in the emitted module are typed (llvm.PointerType of their
// pointee), but the bindings' load, store, GEP and call builders still
// take their operand type explicitly, which is why nearly every helper
// below takes an llvm.Type alongside the llvm.Value it operates on.
//
// Invariant maintained throughout lowering: whenever a lowerXxx method
// returns, the IR builder's current insertion block is never already
// terminated. Return statements enforce this themselves by opening a
// fresh "dump" block immediately after emitting their terminator;
// every block that turns out to have no real predecessor is swept up
// and given a terminator at the end of function lowering, then the
// per-function optimisation pipeline's CFG-simplification pass folds
// it away.

// Codegen lowers a fully analysed Program to an LLVM module. Any
// invariant violated by the compiler itself surfaces as a panicked
// CompileError, recovered here and turned into a normal error return;
// panics of any other shape propagate, since those are genuine bugs
// worth a stack trace rather than a diagnosed CompilerBug.
func Codegen(prog *Program, info *SemInfo, paths *ScopePaths, cfg Config) (mod llvm.Module, err error) {
	g := newGenerator(info, paths, cfg)
	defer func() {
		if r := recover(); r != nil {
			if ce, ok := r.(CompileError); ok {
				err = ce
				return
			}
			panic(r)
		}
	}()

	g.declareRuntime()
	outerStub := g.declareOuterStub(prog.Outer.Header)
	g.lowerFuncDef(prog.Outer, llvm.Type{}, false, outerStub)

	if g.runPasses {
		g.pm.FinalizeFunc()
	}
	g.pm.Dispose()
	return g.module, nil
}

type frameCtx struct {
	fn          llvm.Value
	ptr         llvm.Value
	typ         llvm.Type
	scopeNo     int
	retIRType   llvm.Type
	isOutermost bool
	declaredRet RetType
}

type generator struct {
	ctx     llvm.Context
	module  llvm.Module
	builder llvm.Builder
	pm      llvm.PassManager

	info  *SemInfo
	paths *ScopePaths
	lst   *LST

	frames     []frameCtx
	blockStack [][]llvm.BasicBlock

	stringGlobals map[*StringLitExpr]llvm.Value
	tmp           int

	// runPasses is false when the config's opt-level is 0, disabling
	// the per-function optimisation pipeline of spec.md §4.4 step 10.
	runPasses bool
}

func newGenerator(info *SemInfo, paths *ScopePaths, cfg Config) *generator {
	ctx := llvm.NewContext()
	module := ctx.NewModule("grace")
	triple := cfg.TargetTriple
	if triple == "" {
		triple = DefaultConfig().TargetTriple
	}
	module.SetTarget(triple)
	if cfg.RuntimeArchive != "" {
		module.SetInlineAsm(fmt.Sprintf("; runtime-archive: %s", cfg.RuntimeArchive))
	}
	builder := ctx.NewBuilder()

	pm := llvm.NewFunctionPassManagerForModule(module)
	runPasses := cfg.OptLevel != 0
	if runPasses {
		pm.AddPromoteMemoryToRegisterPass()
		pm.AddInstructionCombiningPass()
		pm.AddReassociatePass()
		pm.AddGVNPass()
		pm.AddCFGSimplificationPass()
		pm.InitializeFunc()
	}

	g := &generator{
		ctx:           ctx,
		module:        module,
		builder:       builder,
		runPasses:     runPasses,
		pm:            pm,
		info:          info,
		paths:         paths,
		lst:           NewLST(),
		stringGlobals: map[*StringLitExpr]llvm.Value{},
	}
	g.lst.PushScope("")
	return g
}

func (g *generator) tempName() string {
	g.tmp++
	return fmt.Sprintf(".t%d", g.tmp)
}

// ---- Types --------------------------------------------------------------

func (g *generator) llvmType(t Type) llvm.Type {
	var base llvm.Type
	if t.Data == CharType {
		base = g.ctx.Int8Type()
	} else {
		base = g.ctx.Int64Type()
	}
	for i := len(t.Tail) - 1; i >= 0; i-- {
		base = llvm.ArrayType(base, t.Tail[i])
	}
	return base
}

func (g *generator) llvmRetType(r RetType) llvm.Type {
	if r.Nothing {
		return g.ctx.VoidType()
	}
	return g.llvmType(r.AsType())
}

// formalIRType is the IR type of one formal parameter as seen at a
// call boundary: by-reference formals are a pointer to their declared
// type (for an unknown-leading-dim array, the type with that dimension
// removed, i.e. a pointer to its element type); by-value formals are
// the scalar type directly (arrays can't be passed by value, enforced
// during semantic analysis).
func (g *generator) formalIRType(fp FparDef) llvm.Type {
	if fp.ByRef {
		return llvm.PointerType(g.llvmType(fp.Type.Type), 0)
	}
	return g.llvmType(fp.Type.Type)
}

func (g *generator) runtimeParamIRType(p runtimeParam) llvm.Type {
	if p.Type.UnknownLeadingDim {
		return llvm.PointerType(g.ctx.Int8Type(), 0)
	}
	return g.llvmType(p.Type.Type)
}

// ---- Runtime and top-level function declaration --------------------------

func (g *generator) declareRuntime() {
	for _, f := range runtimeFuncs {
		var paramTypes []llvm.Type
		for _, p := range f.Params {
			paramTypes = append(paramTypes, g.runtimeParamIRType(p))
		}
		fnType := llvm.FunctionType(g.llvmRetType(f.Ret), paramTypes, false)
		fn := llvm.AddFunction(g.module, f.Name, fnType)
		fn.SetLinkage(llvm.ExternalLinkage)
		g.lst.Insert(f.Name, &LSTEntry{Kind: LSTFunc, FuncValue: fn, FuncType: fnType, IsRuntime: true, DeclScope: 0})
	}
}

// declareOuterStub creates the program entry point. Per the Design
// Notes' open question, its declared Grace return type is overridden:
// the emitted function is always `i64 @main()`, regardless of whether
// the source declared `nothing`, `int` or `char`. Unlike every other
// function, it takes no static link: it has no lexical parent frame,
// so its own frame slot 0 is populated with a null pointer instead of
// an incoming parameter (spec.md §6/§4.4).
func (g *generator) declareOuterStub(h *Header) *LSTEntry {
	fnType := llvm.FunctionType(g.ctx.Int64Type(), nil, false)
	fn := llvm.AddFunction(g.module, "main", fnType)
	fn.SetLinkage(llvm.ExternalLinkage)
	entry := &LSTEntry{Kind: LSTFunc, FuncValue: fn, FuncType: fnType, DeclScope: 0}
	g.lst.Insert(string(h.Id.Content), entry)
	return entry
}

func (g *generator) declareFunctionStub(h *Header, mangledName string, parentFrameType llvm.Type) *LSTEntry {
	staticLinkType := llvm.PointerType(parentFrameType, 0)
	var paramTypes []llvm.Type
	for _, fp := range h.Params {
		t := g.formalIRType(fp)
		for range fp.Idents {
			paramTypes = append(paramTypes, t)
		}
	}
	fnType := llvm.FunctionType(g.llvmRetType(h.RetType), append([]llvm.Type{staticLinkType}, paramTypes...), false)
	fn := llvm.AddFunction(g.module, mangledName, fnType)
	fn.SetLinkage(llvm.InternalLinkage)
	entry := &LSTEntry{Kind: LSTFunc, FuncValue: fn, FuncType: fnType, DeclScope: g.lst.CurrentScopeNo()}
	g.lst.Insert(string(h.Id.Content), entry)
	return entry
}

// ---- Frame slots ----------------------------------------------------------

type frameSlot struct {
	name       string
	irType     llvm.Type
	baseType   llvm.Type
	hasBase    bool
	rawPointer bool
	isParam    bool
}

// collectSlots lists def's activation-record layout in frame order:
// slot 0 is reserved for the static link, then parameters, then local
// variables, both in source order (spec.md §4.4).
func (g *generator) collectSlots(def *FuncDef) []frameSlot {
	slots := []frameSlot{{name: "#static_link"}}
	for _, fp := range def.Header.Params {
		for _, id := range fp.Idents {
			name := string(id.Content)
			if fp.ByRef {
				base := g.llvmType(fp.Type.Type)
				slots = append(slots, frameSlot{
					name: name, irType: llvm.PointerType(base, 0), baseType: base,
					hasBase: true, rawPointer: fp.Type.UnknownLeadingDim, isParam: true,
				})
			} else {
				slots = append(slots, frameSlot{name: name, irType: g.llvmType(fp.Type.Type), isParam: true})
			}
		}
	}
	for _, local := range def.Locals {
		vd, ok := local.(*VarDef)
		if !ok {
			continue
		}
		for _, id := range vd.Idents {
			slots = append(slots, frameSlot{name: string(id.Content), irType: g.llvmType(vd.Type)})
		}
	}
	return slots
}

// ---- Function lowering ------------------------------------------------

func (g *generator) curFrame() frameCtx {
	return g.frames[len(g.frames)-1]
}

func (g *generator) addBlock(name string) llvm.BasicBlock {
	bb := g.ctx.AddBasicBlock(g.curFrame().fn, name)
	top := len(g.blockStack) - 1
	g.blockStack[top] = append(g.blockStack[top], bb)
	return bb
}

// lowerFuncDef implements the ten steps of spec.md §4.4's function
// lowering. parentFrameType/hasParent describe the enclosing
// activation record def's static link points to; stub is the LLVM
// function value already created for def by an earlier declaration
// pass (declareFunctionStub/declareOuterStub), reused here rather than
// created fresh so forward-declared and mutually recursive functions
// resolve.
func (g *generator) lowerFuncDef(def *FuncDef, parentFrameType llvm.Type, hasParent bool, stub *LSTEntry) {
	fn := stub.FuncValue
	isOutermost := def.Outer == nil

	var retIRType llvm.Type
	switch {
	case isOutermost:
		retIRType = g.ctx.Int64Type()
	case def.Header.RetType.Nothing:
		retIRType = g.ctx.VoidType()
	default:
		retIRType = g.llvmType(def.Header.RetType.AsType())
	}

	g.blockStack = append(g.blockStack, nil)
	g.lst.PushScope(string(def.Header.Id.Content))
	scopeNo := g.lst.CurrentScopeNo()
	g.frames = append(g.frames, frameCtx{
		fn: fn, scopeNo: scopeNo, retIRType: retIRType,
		isOutermost: isOutermost, declaredRet: def.Header.RetType,
	})

	entryBB := g.addBlock("entry")
	g.builder.SetInsertPointAtEnd(entryBB)

	slots := g.collectSlots(def)
	staticLinkType := llvm.PointerType(g.ctx.Int8Type(), 0)
	if hasParent {
		staticLinkType = llvm.PointerType(parentFrameType, 0)
	}
	slots[0].irType = staticLinkType

	fieldTypes := make([]llvm.Type, len(slots))
	for i, s := range slots {
		fieldTypes[i] = s.irType
	}
	frameType := g.ctx.StructType(fieldTypes, false)

	scope := g.lst.scopes[scopeNo]
	scope.FrameType = frameType
	scope.StaticLinkType = staticLinkType

	frameAlloca := g.builder.CreateAlloca(frameType, "frame")
	g.frames[len(g.frames)-1].ptr = frameAlloca
	g.frames[len(g.frames)-1].typ = frameType

	slAddr := g.builder.CreateStructGEP(frameType, frameAlloca, 0, g.tempName())
	argIdx := 0
	if isOutermost {
		g.builder.CreateStore(llvm.ConstNull(staticLinkType), slAddr)
	} else {
		g.builder.CreateStore(fn.Param(0), slAddr)
		argIdx = 1
	}

	for i := 1; i < len(slots); i++ {
		s := slots[i]
		entry := &LSTEntry{
			Kind: LSTValue, IRType: s.irType, BaseType: s.baseType, HasBase: s.hasBase,
			RawPointer: s.rawPointer, DeclScopeForValue: scopeNo, Slot: i,
		}
		g.lst.Insert(s.name, entry)
		if s.isParam {
			gep := g.builder.CreateStructGEP(frameType, frameAlloca, i, g.tempName())
			g.builder.CreateStore(fn.Param(argIdx), gep)
			argIdx++
		}
	}

	g.declareLocalStubs(def, frameType)
	g.defineLocalFuncs(def, frameType)

	g.builder.SetInsertPointAtEnd(entryBB)
	g.lowerBlock(def.Body)
	g.terminateDangling()
	if g.runPasses {
		g.pm.RunFunc(fn)
	}

	g.frames = g.frames[:len(g.frames)-1]
	g.lst.PopScope()
	g.blockStack = g.blockStack[:len(g.blockStack)-1]
}

// declareLocalStubs is the two-pass decl/def split spec.md's forward
// declarations require: every function-shaped local in this scope gets
// its LLVM function value created before any of their bodies are
// lowered, so calls made before a definition's textual position (or
// mutual recursion between siblings) still resolve. A local already
// present from an earlier FuncDecl is reused rather than redeclared,
// mirroring the SST's owes-upgrade rule.
func (g *generator) declareLocalStubs(def *FuncDef, frameType llvm.Type) {
	for _, local := range def.Locals {
		var hdr *Header
		var mangled string
		switch l := local.(type) {
		case *FuncDecl:
			hdr = l.Header
			mangled = g.paths.FuncDecl[l]
		case *FuncDef:
			hdr = l.Header
			mangled = g.paths.FuncDef[l]
		default:
			continue
		}
		name := string(hdr.Id.Content)
		if _, ok := g.lst.LookupInScope(name, g.lst.CurrentScopeNo()); ok {
			continue
		}
		g.declareFunctionStub(hdr, mangled, frameType)
	}
}

func (g *generator) defineLocalFuncs(def *FuncDef, frameType llvm.Type) {
	for _, local := range def.Locals {
		fd, ok := local.(*FuncDef)
		if !ok {
			continue
		}
		stub, ok := g.lst.LookupInScope(string(fd.Header.Id.Content), g.lst.CurrentScopeNo())
		if !ok {
			panic(NewCompilerBug(fd.Pos(), fd, "function %q has no declared stub before its body was lowered", fd.Header.Id.Content))
		}
		g.lowerFuncDef(fd, frameType, true, stub)
	}
}

func (g *generator) emitDefaultReturn(f frameCtx) {
	if f.retIRType.TypeKind() == llvm.VoidTypeKind {
		g.builder.CreateRetVoid()
		return
	}
	g.builder.CreateRet(llvm.ConstInt(f.retIRType, 0, false))
}

// terminateDangling gives every block opened during this function's
// lowering that never received a real terminator (an unreachable
// Return "dump" block, or an if/else join nothing branches into) a
// default return, so the module stays well-formed; CFG-simplification
// in the per-function pass pipeline then removes the ones that truly
// have no predecessor.
func isTerminatorOpcode(op llvm.Opcode) bool {
	switch op {
	case llvm.Ret, llvm.Br, llvm.Switch, llvm.IndirectBr, llvm.Invoke, llvm.Unreachable:
		return true
	default:
		return false
	}
}

func (g *generator) terminateDangling() {
	f := g.curFrame()
	for _, bb := range g.blockStack[len(g.blockStack)-1] {
		last := bb.LastInstruction()
		if last.IsNil() || !isTerminatorOpcode(last.InstructionOpcode()) {
			g.builder.SetInsertPointAtEnd(bb)
			g.emitDefaultReturn(f)
		}
	}
}

// ---- Non-local access -----------------------------------------------------

// frameChainTo walks static links from the currently executing frame
// until it reaches scope target, returning that frame's pointer and IR
// type (spec.md §4.4, non-local access protocol).
func (g *generator) frameChainTo(target int) (llvm.Value, llvm.Type) {
	cur := g.curFrame()
	fp := cur.ptr
	frameType := cur.typ
	scopeNo := cur.scopeNo
	for scopeNo > target {
		slAddr := g.builder.CreateStructGEP(frameType, fp, 0, g.tempName())
		parentScope := g.lst.scopes[scopeNo-1]
		parentPtrType := llvm.PointerType(parentScope.FrameType, 0)
		fp = g.builder.CreateLoad(parentPtrType, slAddr, g.tempName())
		scopeNo--
		frameType = parentScope.FrameType
	}
	return fp, frameType
}

func (g *generator) frameSlotAddr(target, slot int) llvm.Value {
	fp, frameType := g.frameChainTo(target)
	return g.builder.CreateStructGEP(frameType, fp, slot, g.tempName())
}

// ---- LValues ------------------------------------------------------------

// lowerLValueAddr returns the address an lvalue denotes, the IR type
// stored there, and whether that address is "bare": a raw pointer
// whose pointee is not itself array-typed (true exactly for the
// dereferenced value of an unknown-leading-dim by-reference
// parameter). A bare address indexes with a single-operand GEP; every
// other address indexes with the usual [0, i] array form, per
// spec.md's two indexing cases.
func (g *generator) lowerLValueAddr(lv LValue) (addr llvm.Value, elemType llvm.Type, bare bool) {
	switch l := lv.(type) {
	case *IdentExpr:
		entry, scopeNo, ok := g.lst.Lookup(l.Name)
		if !ok {
			panic(NewCompilerBug(l.Pos(), l, "identifier %q unresolved in the lowering symbol table", l.Name))
		}
		slotAddr := g.frameSlotAddr(scopeNo, entry.Slot)
		if entry.HasBase {
			dataAddr := g.builder.CreateLoad(llvm.PointerType(entry.BaseType, 0), slotAddr, g.tempName())
			return dataAddr, entry.BaseType, entry.RawPointer
		}
		return slotAddr, entry.IRType, false
	case *StringLitExpr:
		return g.stringLiteralGlobal(l), g.stringLiteralType(l), false
	case *IndexExpr:
		baseAddr, baseType, baseBare := g.lowerLValueAddr(l.Base)
		idx := g.lowerExpr(l.Index)
		if baseBare {
			elem := g.builder.CreateGEP(baseType, baseAddr, []llvm.Value{idx}, g.tempName())
			return elem, baseType, false
		}
		zero := llvm.ConstInt(g.ctx.Int64Type(), 0, false)
		elem := g.builder.CreateGEP(baseType, baseAddr, []llvm.Value{zero, idx}, g.tempName())
		return elem, baseType.ElementType(), false
	}
	panic(NewCompilerBug(lv.Pos(), lv, "unhandled LValue variant reached codegen"))
}

func (g *generator) stringLiteralType(l *StringLitExpr) llvm.Type {
	return llvm.ArrayType(g.ctx.Int8Type(), len(l.Bytes)+1)
}

func (g *generator) stringLiteralGlobal(l *StringLitExpr) llvm.Value {
	if v, ok := g.stringGlobals[l]; ok {
		return v
	}
	data := string(append(append([]byte{}, l.Bytes...), 0))
	constVal := g.ctx.ConstString(data, false)
	global := llvm.AddGlobal(g.module, g.stringLiteralType(l), fmt.Sprintf(".str.%d", len(g.stringGlobals)))
	global.SetInitializer(constVal)
	global.SetLinkage(llvm.PrivateLinkage)
	global.SetGlobalConstant(true)
	g.stringGlobals[l] = global
	return global
}

// ---- Expressions ----------------------------------------------------------

func (g *generator) lowerExpr(e Expr) llvm.Value {
	switch ex := e.(type) {
	case *IntConstExpr:
		return llvm.ConstInt(g.ctx.Int64Type(), ex.Value, false)
	case *CharConstExpr:
		return llvm.ConstInt(g.ctx.Int8Type(), uint64(ex.Value), false)
	case *IdentExpr:
		addr, t, _ := g.lowerLValueAddr(ex)
		return g.builder.CreateLoad(t, addr, g.tempName())
	case *StringLitExpr:
		addr, t, _ := g.lowerLValueAddr(ex)
		return g.builder.CreateLoad(t, addr, g.tempName())
	case *IndexExpr:
		addr, t, _ := g.lowerLValueAddr(ex)
		return g.builder.CreateLoad(t, addr, g.tempName())
	case *UnaryExpr:
		v := g.lowerExpr(ex.Operand)
		if ex.Op.Kind == MINUS {
			return g.builder.CreateNeg(v, g.tempName())
		}
		return v
	case *BinaryExpr:
		l := g.lowerExpr(ex.Left)
		r := g.lowerExpr(ex.Right)
		switch ex.Op.Kind {
		case PLUS:
			return g.builder.CreateAdd(l, r, g.tempName())
		case MINUS:
			return g.builder.CreateSub(l, r, g.tempName())
		case STAR:
			return g.builder.CreateMul(l, r, g.tempName())
		case KW_DIV:
			return g.builder.CreateSDiv(l, r, g.tempName())
		case KW_MOD:
			return g.builder.CreateSRem(l, r, g.tempName())
		}
		panic(NewCompilerBug(ex.Pos(), ex, "unhandled binary operator %s reached codegen", ex.Op.Kind))
	case *CallExpr:
		return g.lowerCall(ex)
	}
	panic(NewCompilerBug(e.Pos(), e, "unhandled Expr variant reached codegen"))
}

// ---- Conditions -----------------------------------------------------------

func relPredicate(op TokenKind, dt DataType) llvm.IntPredicate {
	signed := dt == IntType
	switch op {
	case EQ:
		return llvm.IntEQ
	case NE:
		return llvm.IntNE
	case LT:
		if signed {
			return llvm.IntSLT
		}
		return llvm.IntULT
	case GT:
		if signed {
			return llvm.IntSGT
		}
		return llvm.IntUGT
	case LE:
		if signed {
			return llvm.IntSLE
		}
		return llvm.IntULE
	case GE:
		if signed {
			return llvm.IntSGE
		}
		return llvm.IntUGE
	}
	panic(NewCompilerBug(Pos{}, nil, "unhandled relational operator %s reached codegen", op))
}

func (g *generator) lowerCond(c Cond) llvm.Value {
	switch cc := c.(type) {
	case *RelCond:
		l := g.lowerExpr(cc.Left)
		r := g.lowerExpr(cc.Right)
		pred := relPredicate(cc.Op.Kind, g.info.ExprType[cc.Left].Data)
		return g.builder.CreateICmp(pred, l, r, g.tempName())
	case *NotCond:
		return g.builder.CreateNot(g.lowerCond(cc.Cond), g.tempName())
	case *AndCond:
		return g.lowerShortCircuit(cc.Left, cc.Right, true)
	case *OrCond:
		return g.lowerShortCircuit(cc.Left, cc.Right, false)
	}
	panic(NewCompilerBug(c.Pos(), c, "unhandled Cond variant reached codegen"))
}

// lowerShortCircuit implements spec.md §4.4's PHI-based and/or:
// for "and", a false left operand skips straight to the join carrying
// that false bit; for "or", a true left operand does the same. Only
// when short-circuiting doesn't apply is the right operand evaluated.
func (g *generator) lowerShortCircuit(left, right Cond, isAnd bool) llvm.Value {
	leftVal := g.lowerCond(left)
	fromLeft := g.builder.GetInsertBlock()

	label := "or"
	if isAnd {
		label = "and"
	}
	rhsBB := g.addBlock(label + ".rhs")
	joinBB := g.addBlock(label + ".join")
	if isAnd {
		g.builder.CreateCondBr(leftVal, rhsBB, joinBB)
	} else {
		g.builder.CreateCondBr(leftVal, joinBB, rhsBB)
	}

	g.builder.SetInsertPointAtEnd(rhsBB)
	rightVal := g.lowerCond(right)
	fromRight := g.builder.GetInsertBlock()
	g.builder.CreateBr(joinBB)

	g.builder.SetInsertPointAtEnd(joinBB)
	phi := g.builder.CreatePHI(g.ctx.Int1Type(), g.tempName())
	phi.AddIncoming([]llvm.Value{leftVal, rightVal}, []llvm.BasicBlock{fromLeft, fromRight})
	return phi
}

// ---- Statements -----------------------------------------------------------

func (g *generator) lowerBlock(b *BlockStmt) {
	for _, st := range b.Stmts {
		g.lowerStmt(st)
	}
}

func (g *generator) lowerStmt(s Stmt) {
	switch st := s.(type) {
	case *EmptyStmt:
	case *BlockStmt:
		g.lowerBlock(st)
	case *AssignStmt:
		addr, _, _ := g.lowerLValueAddr(st.Target)
		val := g.lowerExpr(st.Value)
		g.builder.CreateStore(val, addr)
	case *CallStmt:
		g.lowerCall(st.Call)
	case *IfStmt:
		g.lowerIf(st)
	case *WhileStmt:
		g.lowerWhile(st)
	case *ReturnStmt:
		g.lowerReturn(st)
	default:
		panic(NewCompilerBug(s.Pos(), s, "unhandled Stmt variant reached codegen"))
	}
}

func (g *generator) lowerIf(st *IfStmt) {
	cond := g.lowerCond(st.Cond)
	thenBB := g.addBlock("if.then")
	endBB := g.addBlock("if.end")
	if st.Else != nil {
		elseBB := g.addBlock("if.else")
		g.builder.CreateCondBr(cond, thenBB, elseBB)
		g.builder.SetInsertPointAtEnd(thenBB)
		g.lowerStmt(st.Then)
		g.builder.CreateBr(endBB)
		g.builder.SetInsertPointAtEnd(elseBB)
		g.lowerStmt(st.Else)
		g.builder.CreateBr(endBB)
	} else {
		g.builder.CreateCondBr(cond, thenBB, endBB)
		g.builder.SetInsertPointAtEnd(thenBB)
		g.lowerStmt(st.Then)
		g.builder.CreateBr(endBB)
	}
	g.builder.SetInsertPointAtEnd(endBB)
}

func (g *generator) lowerWhile(st *WhileStmt) {
	headerBB := g.addBlock("while.header")
	bodyBB := g.addBlock("while.body")
	endBB := g.addBlock("while.end")
	g.builder.CreateBr(headerBB)
	g.builder.SetInsertPointAtEnd(headerBB)
	cond := g.lowerCond(st.Cond)
	g.builder.CreateCondBr(cond, bodyBB, endBB)
	g.builder.SetInsertPointAtEnd(bodyBB)
	g.lowerStmt(st.Body)
	g.builder.CreateBr(headerBB)
	g.builder.SetInsertPointAtEnd(endBB)
}

func (g *generator) lowerReturn(st *ReturnStmt) {
	f := g.curFrame()
	switch {
	case f.retIRType.TypeKind() == llvm.VoidTypeKind:
		g.builder.CreateRetVoid()
	case st.Value == nil:
		// Only the outermost function reaches here: it is declared
		// "nothing" but its emitted signature always returns i64.
		g.builder.CreateRet(llvm.ConstInt(f.retIRType, 0, false))
	default:
		v := g.lowerExpr(st.Value)
		if f.isOutermost && !f.declaredRet.Nothing && f.declaredRet.Data == CharType {
			v = g.builder.CreateZExt(v, f.retIRType, g.tempName())
		}
		g.builder.CreateRet(v)
	}
	dump := g.addBlock("return.dump")
	g.builder.SetInsertPointAtEnd(dump)
}

// ---- Calls ------------------------------------------------------------

func (g *generator) lowerCall(ce *CallExpr) llvm.Value {
	fsym, ok := g.info.CallSymbol[ce]
	if !ok {
		panic(NewCompilerBug(ce.Pos(), ce, "call to %q left unresolved by semantic analysis", ce.Callee.Content))
	}
	name := string(ce.Callee.Content)
	entry, _, ok := g.lst.Lookup(name)
	if !ok {
		panic(NewCompilerBug(ce.Pos(), ce, "callee %q missing from the lowering symbol table", name))
	}

	var args []llvm.Value
	if !entry.IsRuntime {
		staticLink, _ := g.frameChainTo(entry.DeclScope)
		args = append(args, staticLink)
	}
	args = append(args, g.lowerCallArgs(ce, fsym.Params)...)

	resultName := ""
	if !fsym.RetType.Nothing {
		resultName = g.tempName()
	}
	return g.builder.CreateCall(entry.FuncType, entry.FuncValue, args, resultName)
}

func (g *generator) lowerCallArgs(ce *CallExpr, params []CondensedParam) []llvm.Value {
	var out []llvm.Value
	argIdx := 0
	for _, group := range params {
		for i := 0; i < group.Count; i++ {
			argExpr := ce.Args[argIdx]
			argIdx++
			if group.ByRef {
				addr, elemType, bare := g.lowerLValueAddr(argExpr.(LValue))
				// An unknown-leading-dim formal is a pointer to the
				// array's element type, not to the array itself: an
				// lvalue whose own stored type is still the full array
				// (a local array variable, a string literal global)
				// decays to its first element the same way a formal
				// array parameter's own uses already do.
				if group.Type.UnknownLeadingDim && !bare && elemType.TypeKind() == llvm.ArrayTypeKind {
					zero := llvm.ConstInt(g.ctx.Int64Type(), 0, false)
					addr = g.builder.CreateGEP(elemType, addr, []llvm.Value{zero, zero}, g.tempName())
				}
				out = append(out, addr)
			} else {
				out = append(out, g.lowerExpr(argExpr))
			}
		}
	}
	return out
}
