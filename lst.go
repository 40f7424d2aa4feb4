package grace

import (
	"strings"

	"tinygo.org/x/go-llvm"
)

// Lowering Symbol Table: a parallel stack of scopes to the SST, but
// keyed to IR handles instead of Grace types (spec.md §4.3). A value
// entry's "address" is described the same way the frame-chain protocol
// describes it: a scope number plus a frame slot, resolved lazily at
// each access site rather than cached as an SSA pointer, since the
// same declaration is addressed through a different frame pointer on
// every call.

type LSTEntryKind int

const (
	LSTFunc LSTEntryKind = iota
	LSTValue
)

type LSTEntry struct {
	Kind LSTEntryKind

	// function entries
	FuncValue llvm.Value
	FuncType  llvm.Type
	DeclScope int // scope number in which this function's name lives
	IsRuntime bool

	// value entries
	IRType   llvm.Type // the slot's own stored type
	BaseType llvm.Type // pointee type, present iff HasBase
	HasBase  bool
	// RawPointer marks a slot whose BaseType has already had its
	// unknown leading dimension stripped away: the loaded pointer
	// addresses BaseType directly rather than an outer array wrapper,
	// so the first index into it uses a single-operand GEP instead of
	// the usual [0, i] array-indexing form (spec.md §4.4).
	RawPointer        bool
	DeclScopeForValue int
	Slot              int
}

type lstScope struct {
	symbols        map[string]*LSTEntry
	FrameType      llvm.Type
	StaticLinkType llvm.Type
}

func newLSTScope() *lstScope {
	return &lstScope{symbols: map[string]*LSTEntry{}}
}

type LST struct {
	scopes []*lstScope
	names  []string
}

func NewLST() *LST {
	return &LST{}
}

func (l *LST) PushScope(name string) {
	l.scopes = append(l.scopes, newLSTScope())
	l.names = append(l.names, name)
}

func (l *LST) PopScope() {
	l.scopes = l.scopes[:len(l.scopes)-1]
	l.names = l.names[:len(l.names)-1]
}

func (l *LST) CurrentScopeNo() int {
	return len(l.scopes) - 1
}

func (l *LST) Insert(name string, e *LSTEntry) {
	l.scopes[len(l.scopes)-1].symbols[name] = e
}

// Lookup searches from the innermost scope outward, also returning the
// absolute scope number the entry was found in.
func (l *LST) Lookup(name string) (*LSTEntry, int, bool) {
	for i := len(l.scopes) - 1; i >= 0; i-- {
		if e, ok := l.scopes[i].symbols[name]; ok {
			return e, i, true
		}
	}
	return nil, -1, false
}

func (l *LST) LookupInScope(name string, scopeNo int) (*LSTEntry, bool) {
	e, ok := l.scopes[scopeNo].symbols[name]
	return e, ok
}

// ScopePath joins the names of every currently open scope, outermost
// first, producing the same "outer.inner...." mangled form scopepath.go
// precomputes; kept here too since spec.md lists it as an LST
// operation in its own right.
func (l *LST) ScopePath(sep string) string {
	return strings.Join(l.names, sep)
}
