package history

import (
	"testing"

	"elec-takeoff/internal/takeoff"
	"elec-takeoff/pkg/geometry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func count(code string) takeoff.Object {
	return takeoff.NewCount(0, geometry.Point2D{X: 1, Y: 1}, code)
}

func TestUndoRedoSymmetry(t *testing.T) {
	m := NewManager(0)
	var objs []takeoff.Object

	const k = 5
	for i := 0; i < k; i++ {
		m.Push(0, objs)
		objs = append(takeoff.CloneObjects(objs), count("A1"))
	}
	final := takeoff.CloneObjects(objs)

	for i := 0; i < k; i++ {
		restored, ok := m.Undo(0, objs)
		require.True(t, ok)
		objs = restored
		assert.Len(t, objs, k-i-1)
	}

	_, ok := m.Undo(0, objs)
	assert.False(t, ok, "undo past the start is a no-op")

	for i := 0; i < k; i++ {
		restored, ok := m.Redo(0, objs)
		require.True(t, ok)
		objs = restored
	}
	assert.Equal(t, final, objs)

	_, ok = m.Redo(0, objs)
	assert.False(t, ok)
}

func TestPushClearsRedo(t *testing.T) {
	m := NewManager(0)
	m.Push(0, nil)
	_, ok := m.Undo(0, []takeoff.Object{count("A1")})
	require.True(t, ok)
	require.True(t, m.CanRedo(0))

	m.Push(0, nil)
	assert.False(t, m.CanRedo(0))
}

func TestPagesAreIndependent(t *testing.T) {
	m := NewManager(0)
	m.Push(0, nil)
	m.Push(1, []takeoff.Object{count("B1")})

	assert.True(t, m.CanUndo(0))
	restored, ok := m.Undo(1, nil)
	require.True(t, ok)
	require.Len(t, restored, 1)
	assert.Equal(t, "B1", restored[0].Code)

	undo, redo := m.Depth(0)
	assert.Equal(t, 1, undo)
	assert.Equal(t, 0, redo)
}

func TestSnapshotsAreDeepCopies(t *testing.T) {
	m := NewManager(0)
	objs := []takeoff.Object{takeoff.NewMeasurement(takeoff.TypeSegment, 0,
		[]geometry.Point2D{{X: 0, Y: 0}, {X: 1, Y: 0}})}
	m.Push(0, objs)
	objs[0].Vertices[1].X = 50

	restored, ok := m.Undo(0, objs)
	require.True(t, ok)
	assert.Equal(t, 1.0, restored[0].Vertices[1].X)
}

func TestDepthLimit(t *testing.T) {
	m := NewManager(2)
	for i := 0; i < 5; i++ {
		m.Push(0, nil)
	}
	undo, _ := m.Depth(0)
	assert.Equal(t, 2, undo)

	m.Clear()
	assert.False(t, m.CanUndo(0))
}
