package eventlog

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSinkAppendNewestFirst(t *testing.T) {
	sink := NewSink()

	sink.Append(LevelInfo, "first")
	sink.Append(LevelSuccess, "second")
	sink.Append(LevelWarning, "third")

	entries := sink.List()
	require.Len(t, entries, 3)
	assert.Equal(t, "third", entries[0].Message)
	assert.Equal(t, "second", entries[1].Message)
	assert.Equal(t, "first", entries[2].Message)

	for _, e := range entries {
		assert.NotEmpty(t, e.ID)
		assert.False(t, e.Timestamp.IsZero())
	}
}

func TestSinkEvictsOldestPastCapacity(t *testing.T) {
	sink := NewSink()

	for i := 0; i < 101; i++ {
		sink.Appendf(LevelInfo, "entry %d", i)
	}

	entries := sink.List()
	require.Len(t, entries, 100)
	assert.Equal(t, "entry 100", entries[0].Message)
	assert.Equal(t, "entry 1", entries[99].Message)
	for _, e := range entries {
		assert.NotEqual(t, "entry 0", e.Message)
	}
}

func TestSinkListReturnsCopy(t *testing.T) {
	sink := NewSink()
	sink.Append(LevelError, "original")

	entries := sink.List()
	entries[0].Message = "mutated"

	assert.Equal(t, "original", sink.List()[0].Message)
}

func TestSinkUniqueIDs(t *testing.T) {
	sink := NewSink()
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		e := sink.Append(LevelInfo, fmt.Sprintf("m%d", i))
		assert.False(t, seen[e.ID], "duplicate id %s", e.ID)
		seen[e.ID] = true
	}
}
