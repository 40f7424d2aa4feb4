package grace

import (
	"fmt"
	"os"

	"github.com/davecgh/go-spew/spew"
	"gopkg.in/yaml.v3"
)

// ErrorKind tags a CompileError with the taxonomy from the error
// handling design: user-facing syntax and semantic mistakes are
// distinguished from CompilerBug, which marks an invariant violated by
// the compiler itself rather than by the input program.
type ErrorKind int

const (
	ParseError ErrorKind = iota
	SemanticError
	CompilerBug
)

// tag is the short machine-readable form used by the YAML diagnostics
// report, distinct from the human-facing String().
func (k ErrorKind) tag() string {
	switch k {
	case ParseError:
		return "parse"
	case SemanticError:
		return "semantic"
	case CompilerBug:
		return "compiler-bug"
	}
	return "error"
}

func (k ErrorKind) String() string {
	switch k {
	case ParseError:
		return "parse error"
	case SemanticError:
		return "semantic error"
	case CompilerBug:
		return "compiler bug"
	}
	return "error"
}

// CompileError is the single error type used across the whole
// pipeline. The first one constructed aborts compilation; there is no
// recovery.
type CompileError struct {
	Kind ErrorKind
	Pos  Pos
	Msg  string
	// Subtree, when non-nil, is dumped with go-spew as part of the
	// diagnostic for CompilerBug errors, where seeing the exact AST
	// shape that tripped an invariant is the fastest way to find the
	// defect in the compiler.
	Subtree interface{}
}

func NewError(pos Pos, format string, args ...interface{}) CompileError {
	return CompileError{Kind: ParseError, Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

func NewSemanticError(pos Pos, format string, args ...interface{}) CompileError {
	return CompileError{Kind: SemanticError, Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

func NewCompilerBug(pos Pos, subtree interface{}, format string, args ...interface{}) CompileError {
	return CompileError{Kind: CompilerBug, Pos: pos, Msg: fmt.Sprintf(format, args...), Subtree: subtree}
}

func (e CompileError) Error() string {
	s := fmt.Sprintf("%s: %s: %s", e.Pos, e.Kind, e.Msg)
	if e.Subtree != nil {
		s += "\n" + spew.Sdump(e.Subtree)
	}
	return s
}

var spewConfig = spew.ConfigState{
	Indent:                  "  ",
	DisableMethods:          true,
	DisablePointerAddresses: true,
	DisableCapacities:       true,
}

// DumpSubtree renders an AST fragment the way diagnostics attached to
// a CompilerBug do, without constructing a full CompileError. Useful
// from tests that want to assert on the shape of a dump.
func DumpSubtree(node interface{}) string {
	return spewConfig.Sdump(node)
}

// diagnosticsReport is the YAML shape written to the --diagnostics path
// when compilation fails (SPEC_FULL.md §6). It duplicates nothing about
// the taxonomy of CompileError; it is pure tooling sugar around the one
// diagnostic that always also goes to stderr as plain text.
type diagnosticsReport struct {
	Kind    string `yaml:"kind"`
	Pos     string `yaml:"pos"`
	Message string `yaml:"message"`
	Subtree string `yaml:"subtree,omitempty"`
}

// WriteDiagnostics renders ce as a YAML document at path.
func WriteDiagnostics(path string, ce CompileError) error {
	report := diagnosticsReport{
		Kind:    ce.Kind.tag(),
		Pos:     ce.Pos.String(),
		Message: ce.Msg,
	}
	if ce.Subtree != nil {
		report.Subtree = DumpSubtree(ce.Subtree)
	}
	out, err := yaml.Marshal(report)
	if err != nil {
		return err
	}
	return os.WriteFile(path, out, 0o644)
}
