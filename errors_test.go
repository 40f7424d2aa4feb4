package grace_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"gopkg.in/yaml.v3"

	"grace"
)

func TestCompileError_Kinds(t *testing.T) {
	pos := grace.Pos{Filename: "<test>", Line: 1, Column: 2}
	assert.Equal(t, grace.ParseError, grace.NewError(pos, "bad token").Kind)
	assert.Equal(t, grace.SemanticError, grace.NewSemanticError(pos, "bad type").Kind)
	assert.Equal(t, grace.CompilerBug, grace.NewCompilerBug(pos, nil, "unreachable").Kind)
}

func TestCompileError_Error(t *testing.T) {
	pos := grace.Pos{Filename: "<test>", Line: 3, Column: 4}
	err := grace.NewSemanticError(pos, "identifier %q undeclared", "x")
	assert.Contains(t, err.Error(), "<test>:3:4")
	assert.Contains(t, err.Error(), `identifier "x" undeclared`)
}

func TestCompileError_DumpsSubtreeOnBug(t *testing.T) {
	node := &grace.IdentExpr{Name: "x"}
	err := grace.NewCompilerBug(grace.Pos{}, node, "unreachable")
	assert.Contains(t, err.Error(), "IdentExpr")
}

func TestWriteDiagnostics(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "diag.yaml")

	pos := grace.Pos{Filename: "<test>", Line: 5, Column: 6}
	ce := grace.NewSemanticError(pos, "division by a compile-time constant zero")
	assert.NoError(t, grace.WriteDiagnostics(path, ce))

	out, err := os.ReadFile(path)
	assert.NoError(t, err)

	var report struct {
		Kind    string `yaml:"kind"`
		Pos     string `yaml:"pos"`
		Message string `yaml:"message"`
	}
	assert.NoError(t, yaml.Unmarshal(out, &report))
	assert.Equal(t, "semantic", report.Kind)
	assert.Equal(t, "division by a compile-time constant zero", report.Message)
	assert.Contains(t, report.Pos, "<test>:5:6")
}
