package grace_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"grace"
)

func TestDefaultConfig(t *testing.T) {
	cfg := grace.DefaultConfig()
	assert.Equal(t, "x86_64-pc-linux-gnu", cfg.TargetTriple)
	assert.Equal(t, 1, cfg.OptLevel)
	assert.Empty(t, cfg.RuntimeArchive)
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".graceconfig")
	body := "target-triple=aarch64-linux-gnu\nopt-level=0\nruntime-archive=libgracert.a\n"
	assert.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := grace.LoadConfig(path)
	assert.NoError(t, err)
	assert.Equal(t, "aarch64-linux-gnu", cfg.TargetTriple)
	assert.Equal(t, 0, cfg.OptLevel)
	assert.Equal(t, "libgracert.a", cfg.RuntimeArchive)
}

func TestLoadConfig_PartialFileKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".graceconfig")
	assert.NoError(t, os.WriteFile(path, []byte("opt-level=0\n"), 0o644))

	cfg, err := grace.LoadConfig(path)
	assert.NoError(t, err)
	assert.Equal(t, grace.DefaultConfig().TargetTriple, cfg.TargetTriple)
	assert.Equal(t, 0, cfg.OptLevel)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := grace.LoadConfig(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}
