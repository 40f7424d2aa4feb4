package grace

// Semantic Symbol Table: a stack of lexical scopes keyed by
// identifier, storing kind (variable/function), full type, return
// type and condensed parameter signature (spec.md §4.1).

type Symbol interface {
	symbolNode()
}

type VarSymbol struct {
	Type Type
}

func (VarSymbol) symbolNode() {}

type FuncSymbol struct {
	RetType RetType
	Params  []CondensedParam
	// IsRuntime marks one of the twelve pre-populated library functions.
	// The code generator skips static-link passing through its own
	// LSTEntry.IsRuntime flag, not this one.
	IsRuntime bool
}

func (*FuncSymbol) symbolNode() {}

type sstScope struct {
	symbols map[string]Symbol
	owes    map[string]struct{}
}

func newSSTScope() *sstScope {
	return &sstScope{symbols: map[string]Symbol{}, owes: map[string]struct{}{}}
}

// SST is the semantic symbol table: push/pop scopes on a Go slice,
// exactly mirroring the source's lexical nesting.
type SST struct {
	scopes       []*sstScope
	owners       []Symbol
	pendingOwner Symbol
}

// NewSST returns an SST with its outermost scope pre-populated with
// the runtime library, per spec.md §4.1.
func NewSST() *SST {
	s := &SST{}
	s.PushScope()
	for _, f := range runtimeFuncs {
		_, _ = s.Insert(f.Name, &FuncSymbol{RetType: f.Ret, Params: f.condensedParams(), IsRuntime: true}, false, Pos{})
	}
	return s
}

func (s *SST) PushScope() {
	s.scopes = append(s.scopes, newSSTScope())
	s.owners = append(s.owners, s.pendingOwner)
	s.pendingOwner = nil
}

// PopScope closes the innermost scope, failing if it still owes a
// definition for some forward-declared function (spec.md invariant 2).
func (s *SST) PopScope(pos Pos) error {
	top := s.scopes[len(s.scopes)-1]
	if len(top.owes) > 0 {
		names := make([]string, 0, len(top.owes))
		for name := range top.owes {
			names = append(names, name)
		}
		return NewSemanticError(pos, "missing definition in this scope for declared function(s): %v", names)
	}
	s.scopes = s.scopes[:len(s.scopes)-1]
	s.owners = s.owners[:len(s.owners)-1]
	return nil
}

// SetOwner attaches sym as the owner of the *next* scope pushed; this
// is how a Return statement resolves its enclosing function's RetType.
func (s *SST) SetOwner(sym Symbol) {
	s.pendingOwner = sym
}

func (s *SST) CurrentOwnerRetType() (RetType, bool) {
	if len(s.owners) == 0 {
		return RetType{}, false
	}
	fs, ok := s.owners[len(s.owners)-1].(*FuncSymbol)
	if !ok {
		return RetType{}, false
	}
	return fs.RetType, true
}

// Lookup searches from the innermost scope outward.
func (s *SST) Lookup(name string) (Symbol, bool) {
	for i := len(s.scopes) - 1; i >= 0; i-- {
		if sym, ok := s.scopes[i].symbols[name]; ok {
			return sym, true
		}
	}
	return nil, false
}

// Insert binds name to sym in the innermost scope. isDecl marks a
// forward declaration (adds name to this scope's owes set); the
// insertion is upgraded in place, rather than rejected, when the
// existing binding is an owed declaration whose signature matches.
func (s *SST) Insert(name string, sym Symbol, isDecl bool, pos Pos) (Symbol, error) {
	top := s.scopes[len(s.scopes)-1]
	if existing, ok := top.symbols[name]; ok {
		if _, owed := top.owes[name]; owed {
			existingFunc, ok1 := existing.(*FuncSymbol)
			newFunc, ok2 := sym.(*FuncSymbol)
			if !ok1 || !ok2 {
				return nil, NewCompilerBug(pos, sym, "owed identifier %q is not a function symbol", name)
			}
			if !condensedParamsEqual(existingFunc.Params, newFunc.Params) || !existingFunc.RetType.Equal(newFunc.RetType) {
				return nil, NewSemanticError(pos, "identifier %q was previously declared with different formal parameters or return type", name)
			}
			delete(top.owes, name)
			top.symbols[name] = sym
			return sym, nil
		}
		return nil, NewSemanticError(pos, "redeclaration of identifier: %s", name)
	}
	top.symbols[name] = sym
	if isDecl {
		top.owes[name] = struct{}{}
	}
	return sym, nil
}

func condensedParamsEqual(a, b []CondensedParam) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !CondensedFparEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}

// Depth reports the current number of open scopes, counting the
// pre-populated runtime scope as depth 1.
func (s *SST) Depth() int {
	return len(s.scopes)
}
