package grace_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"grace"
)

// mustCodegen lowers source with the per-function optimisation
// pipeline turned off (opt-level 0), so the assertions below see the IR
// exactly as lowering emits it, before mem2reg/instcombine fold away
// frame-slot loads, stores and GEPs.
func mustCodegen(t *testing.T, source string) string {
	t.Helper()
	prog, err := grace.ParseProgram("<test>", []byte(source))
	assert.NoError(t, err)
	_, info, err := grace.Analyze(prog)
	assert.NoError(t, err)
	paths := grace.BuildScopePaths(prog)
	cfg := grace.DefaultConfig()
	cfg.OptLevel = 0
	mod, err := grace.Codegen(prog, info, paths, cfg)
	assert.NoError(t, err)
	return mod.String()
}

// Scenario: hello world — a body that only calls a runtime function
// lowers to a call against the declared external symbol, the outermost
// function is always emitted as i64 @main() with no parameters
// regardless of its declared Grace return type, and a string literal
// argument decays from its global array type to the i8* the runtime
// formal expects.
func TestCodegen_Hello(t *testing.T) {
	ir := mustCodegen(t, `
		fun main(): nothing
		{
			writeString("hi\n");
		}
	`)
	assert.Contains(t, ir, "define i64 @main()")
	assert.Contains(t, ir, "declare void @writeString(i8*")
	// The decay GEP on a constant global is folded into a constant
	// expression: getelementptr [inbounds] ([4 x i8], ...).
	assert.Contains(t, ir, "([4 x i8], [4 x i8]* @.str.0, i64 0, i64 0)")
	assert.Contains(t, ir, "call void @writeString(i8*")
}

// Scenario: nested access — an inner function assigning to an outer
// local walks exactly one static link before addressing the slot.
func TestCodegen_NestedAccess(t *testing.T) {
	ir := mustCodegen(t, `
		fun main(): nothing
			var a: int;
		fun inner(): nothing
		{
			a := 1;
		}
		{
			inner();
		}
	`)
	assert.Contains(t, ir, "%frame")
	assert.Contains(t, ir, "getelementptr")
	assert.Contains(t, ir, "store i64 1")
}

// Scenario: array by reference — an unknown-leading-dim by-reference
// formal indexes with a single-operand GEP rather than the [0, i] form
// used for a normal array value.
func TestCodegen_ArrayByReference(t *testing.T) {
	ir := mustCodegen(t, `
		fun main(): nothing
		fun helper(ref a: int[]): nothing
		{
			a[0] := 1;
		}
		{
		}
	`)
	assert.Contains(t, ir, "getelementptr i64, i64* %")
	assert.NotContains(t, ir, "getelementptr [1 x i64]")
}

// Scenario: short-circuit — an `and`/`or` condition lowers via basic
// blocks joined by a width-1 PHI rather than evaluating both operands
// unconditionally.
func TestCodegen_ShortCircuit(t *testing.T) {
	ir := mustCodegen(t, `
		fun main(): nothing
			var a, b: int;
		{
			if a = 1 and b = 2 then
				a := 0;
		}
	`)
	assert.Contains(t, ir, "and.rhs")
	assert.Contains(t, ir, "and.join")
	assert.Contains(t, ir, "phi i1")
}

// Scenario: forward declaration — a function declared before its
// definition, and called from a sibling defined between the two,
// resolves to the same LLVM function value rather than two globals.
func TestCodegen_ForwardDeclaration(t *testing.T) {
	ir := mustCodegen(t, `
		fun main(): nothing
		fun helper(): nothing;
		fun caller(): nothing
		{
			helper();
		}
		fun helper(): nothing
		{
		}
		{
			caller();
		}
	`)
	assert.Equal(t, 1, strings.Count(ir, "define internal void @main.helper("))
	assert.Contains(t, ir, "call void @main.helper(")
}

// Scenario: multi-dimensional literal — a two-dimensional local array
// type lowers to nested LLVM array types, innermost dimension last.
func TestCodegen_MultiDimensionalLocal(t *testing.T) {
	ir := mustCodegen(t, `
		fun main(): nothing
			var m: int[2][3];
		{
			m[0][0] := 1;
		}
	`)
	assert.Contains(t, ir, "[2 x [3 x i64]]")
}

func TestCodegen_OutermostCharReturnWidensToI64(t *testing.T) {
	ir := mustCodegen(t, `
		fun main(): char
		{
			return 'a';
		}
	`)
	assert.Contains(t, ir, "define i64 @main(")
	// zext of the constant 'a' (97) is folded by the builder.
	assert.Contains(t, ir, "ret i64 97")
}

func TestCodegen_RuntimeDeclarationsPresent(t *testing.T) {
	ir := mustCodegen(t, `
		fun main(): nothing
		{
		}
	`)
	for _, name := range []string{
		"writeInteger", "writeChar", "writeString", "readInteger", "readChar",
		"readString", "ascii", "chr", "strlen", "strcmp", "strcpy", "strcat",
	} {
		assert.Contains(t, ir, "@"+name)
	}
}
