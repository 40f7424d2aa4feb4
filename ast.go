package grace

// This file is the tagged-variant AST and type model for Grace: plain
// structs implementing small marker interfaces per syntactic category
// (Expr, LValue, Cond, Stmt, LocalDef), instead of a class hierarchy
// with overridable virtual methods. Semantic and lowering logic act on
// these through type switches (see semantics.go and codegen.go).

// ---- Types ----------------------------------------------------------

type DataType int

const (
	IntType DataType = iota
	CharType
)

func (d DataType) String() string {
	if d == CharType {
		return "char"
	}
	return "int"
}

// ArrayTail is the ordered sequence of positive dimension sizes
// [n1][n2]...[nk], interpreted right-to-left when building nested
// array IR types (innermost dimension last).
type ArrayTail []int

func (a ArrayTail) Equal(b ArrayTail) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Type is a DataType plus an optional array tail. Equality is
// structural (spec.md invariant 3).
type Type struct {
	Data DataType
	Tail ArrayTail
}

func (t Type) IsArray() bool {
	return len(t.Tail) > 0
}

func (t Type) Equal(o Type) bool {
	return t.Data == o.Data && t.Tail.Equal(o.Tail)
}

func (t Type) String() string {
	s := t.Data.String()
	for _, n := range t.Tail {
		s += bracket(n)
	}
	return s
}

func bracket(n int) string {
	if n < 0 {
		return "[]"
	}
	digits := []byte{}
	if n == 0 {
		digits = []byte{'0'}
	}
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	return "[" + string(digits) + "]"
}

// dropLeadingDim returns the type with one leading array dimension
// removed, used both to materialise an unknown-leading-dim formal and
// to lower Index expressions.
func (t Type) dropLeadingDim() (Type, bool) {
	if len(t.Tail) == 0 {
		return t, false
	}
	rest := make(ArrayTail, len(t.Tail)-1)
	copy(rest, t.Tail[1:])
	return Type{Data: t.Data, Tail: rest}, true
}

// FparType is a Type plus a flag saying the outermost dimension is
// unspecified ("[]"); only legal for by-reference formal parameters.
type FparType struct {
	Type
	UnknownLeadingDim bool
}

func (f FparType) IsArrayLike() bool {
	return f.IsArray() || f.UnknownLeadingDim
}

func (f FparType) Equal(o FparType) bool {
	return f.Type.Equal(o.Type) && f.UnknownLeadingDim == o.UnknownLeadingDim
}

// Materialize turns a formal parameter's declared type into the Type
// seen inside the function body: an unknown leading dimension becomes
// a concrete, opaque [1] outer dimension (spec.md §4.2, Header
// definition rule).
func (f FparType) Materialize() Type {
	if !f.UnknownLeadingDim {
		return f.Type
	}
	tail := make(ArrayTail, 0, len(f.Tail)+1)
	tail = append(tail, 1)
	tail = append(tail, f.Tail...)
	return Type{Data: f.Data, Tail: tail}
}

// RetType is either "nothing" or a scalar DataType.
type RetType struct {
	Nothing bool
	Data    DataType
}

func (r RetType) Equal(o RetType) bool {
	if r.Nothing || o.Nothing {
		return r.Nothing == o.Nothing
	}
	return r.Data == o.Data
}

func (r RetType) String() string {
	if r.Nothing {
		return "nothing"
	}
	return r.Data.String()
}

func (r RetType) AsType() Type {
	return Type{Data: r.Data}
}

var CondensedFparEqual = func(a, b CondensedParam) bool {
	return a.Type.Equal(b.Type) && a.Count == b.Count && a.ByRef == b.ByRef
}

// ---- Expressions ------------------------------------------------------

type Expr interface {
	Pos() Pos
	exprNode()
}

type IntConstExpr struct {
	Tok   Token
	Value uint64
}

func (e *IntConstExpr) Pos() Pos  { return e.Tok.Pos }
func (e *IntConstExpr) exprNode() {}

type CharConstExpr struct {
	Tok   Token
	Value byte
}

func (e *CharConstExpr) Pos() Pos  { return e.Tok.Pos }
func (e *CharConstExpr) exprNode() {}

// LValue is itself an Expr (spec.md §3): Ident | StringLit | Index.
type LValue interface {
	Expr
	lvalueNode()
}

type IdentExpr struct {
	Tok  Token
	Name string
}

func (e *IdentExpr) Pos() Pos    { return e.Tok.Pos }
func (e *IdentExpr) exprNode()   {}
func (e *IdentExpr) lvalueNode() {}

type StringLitExpr struct {
	Tok   Token
	Bytes []byte // decoded bytes, without the surrounding quotes; NUL-terminated when materialised
}

func (e *StringLitExpr) Pos() Pos    { return e.Tok.Pos }
func (e *StringLitExpr) exprNode()   {}
func (e *StringLitExpr) lvalueNode() {}

type IndexExpr struct {
	Base  LValue
	Index Expr
}

func (e *IndexExpr) Pos() Pos    { return e.Base.Pos() }
func (e *IndexExpr) exprNode()   {}
func (e *IndexExpr) lvalueNode() {}

type UnaryExpr struct {
	Op      Token
	Operand Expr
}

func (e *UnaryExpr) Pos() Pos  { return e.Op.Pos }
func (e *UnaryExpr) exprNode() {}

type BinaryExpr struct {
	Left  Expr
	Op    Token
	Right Expr
}

func (e *BinaryExpr) Pos() Pos  { return e.Left.Pos() }
func (e *BinaryExpr) exprNode() {}

type CallExpr struct {
	Callee Token
	Args   []Expr
}

func (e *CallExpr) Pos() Pos  { return e.Callee.Pos }
func (e *CallExpr) exprNode() {}

// ---- Conditions -------------------------------------------------------

type Cond interface {
	Pos() Pos
	condNode()
}

type RelCond struct {
	Left  Expr
	Op    Token
	Right Expr
}

func (c *RelCond) Pos() Pos  { return c.Left.Pos() }
func (c *RelCond) condNode() {}

type NotCond struct {
	Not  Token
	Cond Cond
}

func (c *NotCond) Pos() Pos  { return c.Not.Pos }
func (c *NotCond) condNode() {}

type AndCond struct {
	Left  Cond
	Right Cond
}

func (c *AndCond) Pos() Pos  { return c.Left.Pos() }
func (c *AndCond) condNode() {}

type OrCond struct {
	Left  Cond
	Right Cond
}

func (c *OrCond) Pos() Pos  { return c.Left.Pos() }
func (c *OrCond) condNode() {}

// ---- Statements -------------------------------------------------------

type Stmt interface {
	Pos() Pos
	stmtNode()
}

type EmptyStmt struct {
	Semi Token
}

func (s *EmptyStmt) Pos() Pos  { return s.Semi.Pos }
func (s *EmptyStmt) stmtNode() {}

type AssignStmt struct {
	Target LValue
	Value  Expr
}

func (s *AssignStmt) Pos() Pos  { return s.Target.Pos() }
func (s *AssignStmt) stmtNode() {}

type CallStmt struct {
	Call *CallExpr
}

func (s *CallStmt) Pos() Pos  { return s.Call.Pos() }
func (s *CallStmt) stmtNode() {}

type IfStmt struct {
	If   Token
	Cond Cond
	Then Stmt
	Else Stmt // nil if absent
}

func (s *IfStmt) Pos() Pos  { return s.If.Pos }
func (s *IfStmt) stmtNode() {}

type WhileStmt struct {
	While Token
	Cond  Cond
	Body  Stmt
}

func (s *WhileStmt) Pos() Pos  { return s.While.Pos }
func (s *WhileStmt) stmtNode() {}

type ReturnStmt struct {
	Return Token
	Value  Expr // nil if absent
}

func (s *ReturnStmt) Pos() Pos  { return s.Return.Pos }
func (s *ReturnStmt) stmtNode() {}

type BlockStmt struct {
	Left  Token
	Stmts []Stmt
	Right Token
}

func (s *BlockStmt) Pos() Pos  { return s.Left.Pos }
func (s *BlockStmt) stmtNode() {}

// ---- Top level ----------------------------------------------------------

type FparDef struct {
	ByRef  bool
	Idents []Token
	Type   FparType
}

type Header struct {
	Fun     Token
	Id      Token
	Params  []FparDef
	RetType RetType
}

func (h *Header) Pos() Pos { return h.Fun.Pos }

// CondensedParam groups a run of formal parameters that share an
// identifier list and FparType, matching spec.md's condensed
// representation used for arity/type checks.
type CondensedParam struct {
	Type  FparType
	Count int
	ByRef bool
}

func condenseParams(params []FparDef) []CondensedParam {
	out := make([]CondensedParam, 0, len(params))
	for _, p := range params {
		out = append(out, CondensedParam{Type: p.Type, Count: len(p.Idents), ByRef: p.ByRef})
	}
	return out
}

// LocalDef is one of VarDef, FuncDecl, FuncDef.
type LocalDef interface {
	Pos() Pos
	localDefNode()
}

type VarDef struct {
	Var    Token
	Idents []Token
	Type   Type
}

func (d *VarDef) Pos() Pos       { return d.Var.Pos }
func (d *VarDef) localDefNode()  {}

type FuncDecl struct {
	Header *Header
}

func (d *FuncDecl) Pos() Pos      { return d.Header.Pos() }
func (d *FuncDecl) localDefNode() {}

type FuncDef struct {
	Header *Header
	Locals []LocalDef
	Body   *BlockStmt

	// Outer is nil for the program's outermost function.
	Outer *FuncDef
}

func (d *FuncDef) Pos() Pos      { return d.Header.Pos() }
func (d *FuncDef) localDefNode() {}

// Program is the parsed compilation unit: the outermost FuncDef is the
// program entry point.
type Program struct {
	Outer *FuncDef
}
