package grace_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"grace"
)

func mustParseExpr(t *testing.T, source string) grace.Expr {
	t.Helper()
	e, err := grace.ParseConstExprAndEof("<test>", []byte(source))
	assert.NoError(t, err)
	return e
}

type evalConstTest struct {
	source   string
	expected grace.EvalObject
}

var evalConstTests = []evalConstTest{
	{"123", grace.IntObject{Value: 123}},
	{"+123", grace.IntObject{Value: 123}},
	{"-123", grace.IntObject{Value: -123}},
	{"1 + 2", grace.IntObject{Value: 3}},
	{"5 - 8", grace.IntObject{Value: -3}},
	{"4 * 6", grace.IntObject{Value: 24}},
	{"10 div 3", grace.IntObject{Value: 3}},
	{"10 mod 3", grace.IntObject{Value: 1}},
	{"'a'", grace.CharObject{Value: 'a'}},
	{"2 + 3 * 4", grace.IntObject{Value: 14}},
	{"(2 + 3) * 4", grace.IntObject{Value: 20}},
}

func TestEvaluateConst(t *testing.T) {
	ev := grace.NewEvaluator()
	for _, test := range evalConstTests {
		t.Logf("running test %q", test.source)
		res, ok := ev.EvaluateConst(mustParseExpr(t, test.source))
		assert.True(t, ok)
		assert.Equal(t, test.expected, res)
	}
}

func TestEvaluateConst_DivisionByZeroNotFoldable(t *testing.T) {
	ev := grace.NewEvaluator()
	_, ok := ev.EvaluateConst(mustParseExpr(t, "10 div 0"))
	assert.False(t, ok)
	_, ok = ev.EvaluateConst(mustParseExpr(t, "10 mod 0"))
	assert.False(t, ok)
}

func TestEvaluateConst_NotFoldable(t *testing.T) {
	ev := grace.NewEvaluator()
	_, ok := ev.EvaluateConst(mustParseExpr(t, `"hi"`))
	assert.False(t, ok)
}

func TestIsConstantZero(t *testing.T) {
	ev := grace.NewEvaluator()
	assert.True(t, ev.IsConstantZero(mustParseExpr(t, "0")))
	assert.True(t, ev.IsConstantZero(mustParseExpr(t, "1 - 1")))
	assert.False(t, ev.IsConstantZero(mustParseExpr(t, "1")))
}
