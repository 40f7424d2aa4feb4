package grace_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"grace"
)

func mustParseProgram(t *testing.T, source string) *grace.Program {
	t.Helper()
	prog, err := grace.ParseProgram("<test>", []byte(source))
	assert.NoError(t, err)
	return prog
}

func TestAnalyze_Valid(t *testing.T) {
	prog := mustParseProgram(t, `
		fun main(): nothing
			var a: int;
		{
			a := 1 + 2;
		}
	`)
	_, info, err := grace.Analyze(prog)
	assert.NoError(t, err)
	assign := prog.Outer.Body.Stmts[0].(*grace.AssignStmt)
	typ, ok := info.ExprType[assign.Value]
	assert.True(t, ok)
	assert.Equal(t, grace.Type{Data: grace.IntType}, typ)
}

func TestAnalyze_TypeMismatchInAssignment(t *testing.T) {
	prog := mustParseProgram(t, `
		fun main(): nothing
			var a: char;
		{
			a := 1;
		}
	`)
	_, _, err := grace.Analyze(prog)
	assert.Error(t, err)
}

func TestAnalyze_ArrayParameterMustBeByRef(t *testing.T) {
	prog := mustParseProgram(t, `
		fun main(): nothing
		fun helper(a: int[3]): nothing
		{
		}
		{
		}
	`)
	_, _, err := grace.Analyze(prog)
	assert.Error(t, err)
}

func TestAnalyze_UndeclaredIdentifier(t *testing.T) {
	prog := mustParseProgram(t, `
		fun main(): nothing
		{
			x := 1;
		}
	`)
	_, _, err := grace.Analyze(prog)
	assert.Error(t, err)
}

func TestAnalyze_MissingDefinitionForDeclaration(t *testing.T) {
	prog := mustParseProgram(t, `
		fun main(): nothing
		fun helper(): nothing;
		{
		}
	`)
	_, _, err := grace.Analyze(prog)
	assert.Error(t, err)
}

func TestAnalyze_CompileTimeDivisionByZero(t *testing.T) {
	prog := mustParseProgram(t, `
		fun main(): nothing
			var a: int;
		{
			a := 1 div 0;
		}
	`)
	_, _, err := grace.Analyze(prog)
	assert.Error(t, err)
}

func TestAnalyze_CallArityMismatch(t *testing.T) {
	prog := mustParseProgram(t, `
		fun main(): nothing
		fun helper(a: int): nothing
		{
		}
		{
			helper(1, 2);
		}
	`)
	_, _, err := grace.Analyze(prog)
	assert.Error(t, err)
}

func TestAnalyze_ByRefArgumentMustBeLValue(t *testing.T) {
	prog := mustParseProgram(t, `
		fun main(): nothing
		fun helper(ref a: int): nothing
		{
		}
		{
			helper(1 + 2);
		}
	`)
	_, _, err := grace.Analyze(prog)
	assert.Error(t, err)
}

func TestAnalyze_ResolvesCallSymbol(t *testing.T) {
	prog := mustParseProgram(t, `
		fun main(): nothing
		fun helper(a: int): nothing
		{
		}
		{
			helper(1);
		}
	`)
	_, info, err := grace.Analyze(prog)
	assert.NoError(t, err)
	call := prog.Outer.Body.Stmts[0].(*grace.CallStmt).Call
	fsym, ok := info.CallSymbol[call]
	assert.True(t, ok)
	assert.Len(t, fsym.Params, 1)
}

func TestAnalyze_NestedFunctionAccessingOuterVariable(t *testing.T) {
	prog := mustParseProgram(t, `
		fun outer(): nothing
			var a: int;
		fun inner(): nothing
		{
			a := 1;
		}
		{
			inner();
		}
	`)
	_, _, err := grace.Analyze(prog)
	assert.NoError(t, err)
}

func TestAnalyze_ReturnTypeMismatch(t *testing.T) {
	prog := mustParseProgram(t, `
		fun helper(): int
		{
			return;
		}
	`)
	_, _, err := grace.Analyze(prog)
	assert.Error(t, err)
}
