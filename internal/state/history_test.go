package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func editWithBrightness(v float64) EditState {
	s := DefaultEditState()
	s.Filters = s.Filters.With(Brightness, v)
	return s
}

func TestHistory_Empty(t *testing.T) {
	h := NewHistory(0)
	assert.Equal(t, -1, h.Index())
	assert.Equal(t, 0, h.Len())
	assert.False(t, h.CanUndo())
	assert.False(t, h.CanRedo())

	_, ok := h.Current()
	assert.False(t, ok)
	_, ok = h.Undo()
	assert.False(t, ok)
	_, ok = h.Redo()
	assert.False(t, ok)
	assert.Equal(t, -1, h.Index())
}

func TestHistory_UndoRestoresPreviousSnapshot(t *testing.T) {
	h := NewHistory(0)
	for i := 0; i <= 5; i++ {
		h.Apply(editWithBrightness(float64(100 + i*10)))
	}
	require.Equal(t, 5, h.Index())

	got, ok := h.Undo()
	require.True(t, ok)
	assert.Equal(t, editWithBrightness(140), got)

	got, ok = h.Redo()
	require.True(t, ok)
	assert.Equal(t, editWithBrightness(150), got)

	_, ok = h.Redo()
	assert.False(t, ok, "redo past the newest snapshot is a no-op")
	assert.Equal(t, 5, h.Index())
}

func TestHistory_UndoStopsAtFirstSnapshot(t *testing.T) {
	h := NewHistory(0)
	h.Apply(DefaultEditState())
	h.Apply(editWithBrightness(120))

	_, ok := h.Undo()
	require.True(t, ok)
	_, ok = h.Undo()
	assert.False(t, ok)
	assert.Equal(t, 0, h.Index())

	cur, ok := h.Current()
	require.True(t, ok)
	assert.Equal(t, DefaultEditState(), cur)
}

func TestHistory_ApplyAfterUndoPrunesForwardBranch(t *testing.T) {
	h := NewHistory(0)
	h.Apply(DefaultEditState())
	h.Apply(editWithBrightness(110))
	h.Apply(editWithBrightness(120))
	h.Apply(editWithBrightness(130))

	h.Undo()
	h.Undo()
	require.Equal(t, 1, h.Index())

	h.Apply(editWithBrightness(50))
	assert.Equal(t, 3, h.Len())
	assert.Equal(t, 2, h.Index())
	assert.False(t, h.CanRedo())

	cur, _ := h.Current()
	assert.Equal(t, editWithBrightness(50), cur)
}

func TestHistory_MaxDepth(t *testing.T) {
	h := NewHistory(3)
	for i := 0; i < 5; i++ {
		h.Apply(editWithBrightness(float64(i)))
	}
	assert.Equal(t, 3, h.Len())
	assert.Equal(t, 2, h.Index())

	got, ok := h.Undo()
	require.True(t, ok)
	assert.Equal(t, editWithBrightness(3), got)
	got, ok = h.Undo()
	require.True(t, ok)
	assert.Equal(t, editWithBrightness(2), got)
	_, ok = h.Undo()
	assert.False(t, ok)
}

func TestHistory_Clear(t *testing.T) {
	h := NewHistory(0)
	h.Apply(DefaultEditState())
	h.Clear()
	assert.Equal(t, -1, h.Index())
	assert.Equal(t, 0, h.Len())
}
