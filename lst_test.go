package grace_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"grace"
)

func TestLST_PushLookupPop(t *testing.T) {
	l := grace.NewLST()
	l.PushScope("main")
	l.Insert("a", &grace.LSTEntry{Kind: grace.LSTValue, Slot: 1})
	l.PushScope("inner")

	entry, scopeNo, ok := l.Lookup("a")
	assert.True(t, ok)
	assert.Equal(t, 0, scopeNo)
	assert.Equal(t, 1, entry.Slot)

	assert.Equal(t, 1, l.CurrentScopeNo())
	l.PopScope()
	assert.Equal(t, 0, l.CurrentScopeNo())
}

func TestLST_LookupInScope(t *testing.T) {
	l := grace.NewLST()
	l.PushScope("main")
	l.Insert("a", &grace.LSTEntry{Kind: grace.LSTValue, Slot: 1})
	_, ok := l.LookupInScope("a", 0)
	assert.True(t, ok)
	_, ok = l.LookupInScope("missing", 0)
	assert.False(t, ok)
}

func TestLST_ScopePath(t *testing.T) {
	l := grace.NewLST()
	l.PushScope("main")
	l.PushScope("inner")
	assert.Equal(t, "main.inner", l.ScopePath("."))
}

func TestLST_InnermostShadowsOuter(t *testing.T) {
	l := grace.NewLST()
	l.PushScope("main")
	l.Insert("a", &grace.LSTEntry{Kind: grace.LSTValue, Slot: 1})
	l.PushScope("inner")
	l.Insert("a", &grace.LSTEntry{Kind: grace.LSTValue, Slot: 2})

	entry, scopeNo, ok := l.Lookup("a")
	assert.True(t, ok)
	assert.Equal(t, 1, scopeNo)
	assert.Equal(t, 2, entry.Slot)
}
