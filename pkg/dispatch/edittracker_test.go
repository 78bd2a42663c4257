package dispatch

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEditTrackerWindowBoundary(t *testing.T) {
	tr := NewEditTracker(300 * time.Millisecond)
	defer tr.Close()

	tr.Record("m1", EntryState{CommandName: "plus"})

	st, ok := tr.OnEdit("m1")
	require.True(t, ok, "retrievable right after record")
	assert.Equal(t, "plus", st.CommandName)

	time.Sleep(150 * time.Millisecond)
	_, ok = tr.OnEdit("m1")
	assert.True(t, ok, "retrievable inside the window")

	time.Sleep(300 * time.Millisecond)
	_, ok = tr.OnEdit("m1")
	assert.False(t, ok, "never usable past the timespan")
}

func TestEditTrackerUpdateReplyKeepsWindow(t *testing.T) {
	tr := NewEditTracker(300 * time.Millisecond)
	defer tr.Close()

	tr.Record("m1", EntryState{CommandName: "plus"})
	time.Sleep(150 * time.Millisecond)
	tr.UpdateReply("m1", "r1")

	st, ok := tr.OnEdit("m1")
	require.True(t, ok)
	assert.Equal(t, "r1", st.ReplyID)

	// UpdateReply must not restart the window measured from Record.
	time.Sleep(300 * time.Millisecond)
	_, ok = tr.OnEdit("m1")
	assert.False(t, ok)
}

func TestEditTrackerUpdateReplyOnMissingEntry(t *testing.T) {
	tr := NewEditTracker(100 * time.Millisecond)
	defer tr.Close()

	tr.UpdateReply("ghost", "r1")
	_, ok := tr.OnEdit("ghost")
	assert.False(t, ok)
}

func TestEditTrackerPerKeySerialization(t *testing.T) {
	tr := NewEditTracker(time.Hour)
	defer tr.Close()

	const workers = 8
	var (
		inside   int
		maxSeen  int
		insideMu sync.Mutex
		wg       sync.WaitGroup
	)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tr.Lock("m1")
			defer tr.Unlock("m1")

			insideMu.Lock()
			inside++
			if inside > maxSeen {
				maxSeen = inside
			}
			insideMu.Unlock()

			time.Sleep(5 * time.Millisecond)

			insideMu.Lock()
			inside--
			insideMu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxSeen, "one holder per message ID at a time")
}

func TestEditTrackerIndependentKeysDoNotBlock(t *testing.T) {
	tr := NewEditTracker(time.Hour)
	defer tr.Close()

	tr.Lock("m1")
	done := make(chan struct{})
	go func() {
		tr.Lock("m2")
		tr.Unlock("m2")
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock on a different message ID blocked")
	}
	tr.Unlock("m1")
}
