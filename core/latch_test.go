package core

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEdgeLatchTakesOneEdgeAtATime(t *testing.T) {
	l := NewEdgeLatch(nil)
	assert.Equal(t, EdgeNone, l.Take(EdgeBoth))

	l.Signal(false)
	l.Signal(true)
	assert.True(t, l.Pending(EdgeRising))
	assert.True(t, l.Pending(EdgeFalling))

	// Older edge first.
	assert.Equal(t, EdgeFalling, l.Take(EdgeBoth))
	assert.Equal(t, EdgeRising, l.Take(EdgeBoth))
	assert.Equal(t, EdgeNone, l.Take(EdgeBoth))
}

func TestEdgeLatchRisingThenFalling(t *testing.T) {
	l := NewEdgeLatch(nil)
	l.Signal(true)
	l.Signal(false)
	assert.Equal(t, EdgeRising, l.Take(EdgeBoth))
	assert.Equal(t, EdgeFalling, l.Take(EdgeBoth))
}

func TestEdgeLatchTakeByKind(t *testing.T) {
	l := NewEdgeLatch(nil)
	l.Signal(true)
	assert.Equal(t, EdgeNone, l.Take(EdgeFalling))
	assert.False(t, l.Pending(EdgeFalling))
	assert.Equal(t, EdgeRising, l.Take(EdgeRising))
}

func TestEdgeLatchCoalescesRepeats(t *testing.T) {
	l := NewEdgeLatch(nil)
	l.Signal(true)
	l.Signal(true)
	l.Signal(true)
	assert.Equal(t, uint32(2), l.Dropped())
	assert.Equal(t, EdgeRising, l.Take(EdgeRising))
	assert.Equal(t, EdgeNone, l.Take(EdgeRising))
}

func TestEdgeLatchClearAndNotify(t *testing.T) {
	calls := 0
	l := NewEdgeLatch(func() { calls++ })
	l.Signal(true)
	l.Signal(false)
	assert.Equal(t, 2, calls)

	l.Clear()
	assert.False(t, l.Pending(EdgeBoth))
}

func TestEdgeLatchConcurrentSignal(t *testing.T) {
	l := NewEdgeLatch(nil)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(level bool) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				l.Signal(level)
			}
		}(i%2 == 0)
	}
	wg.Wait()

	assert.True(t, l.Pending(EdgeRising))
	assert.True(t, l.Pending(EdgeFalling))
	assert.Equal(t, uint32(800-2), l.Dropped())
}
