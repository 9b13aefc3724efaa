package savestate_test

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/AndrewDonelson/savestate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ── Concurrent Save+Load on distinct saves ──────────────────────────────────

func TestConcurrent_SaveLoadDistinctIDs(t *testing.T) {
	t.Parallel()
	s, _ := newStore(t, folder)

	const goroutines = 16
	const opsPerGoroutine = 25

	var errs atomic.Int64
	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func(gid int) {
			defer wg.Done()
			id := fmt.Sprintf("slot%02d", gid)
			for i := 0; i < opsPerGoroutine; i++ {
				key := fmt.Sprintf("k%d", i%5)
				if err := s.Save(id, key, &Player{Name: id, Level: i}); err != nil {
					errs.Add(1)
					continue
				}
				var p Player
				if err := s.Load(id, key, &p); err != nil || p.Name != id {
					errs.Add(1)
				}
			}
		}(g)
	}
	wg.Wait()

	assert.Zero(t, errs.Load())
	ids, err := s.List()
	require.NoError(t, err)
	assert.Len(t, ids, goroutines)
}

// Setters racing with reads of the configuration must not corrupt it.
func TestConcurrent_SettersAndSaves(t *testing.T) {
	t.Parallel()
	s, _ := newStore(t)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			_ = s.SetFormat([]savestate.Format{savestate.FormatJSON, savestate.FormatMsgPack}[i%2])
			_ = s.SetCompression(i%3 == 0)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			_ = s.Save(fmt.Sprintf("s%d", i), "", &Player{Level: i})
		}
	}()
	wg.Wait()

	for i := 0; i < 100; i++ {
		got, err := savestate.LoadAs[Player](s, fmt.Sprintf("s%d", i), "")
		require.NoError(t, err)
		assert.Equal(t, i, got.Level)
	}
}

// Entries written concurrently into one save must all end up in its metadata.
func TestConcurrent_SameSaveDistinctKeys(t *testing.T) {
	t.Parallel()
	s, _ := newStore(t, folder)

	const keys = 12
	var wg sync.WaitGroup
	for i := 0; i < keys; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, s.Save("shared", fmt.Sprintf("k%02d", i), &Player{Level: i}))
		}(i)
	}
	wg.Wait()

	m, err := s.Metadata("shared")
	require.NoError(t, err)
	assert.Len(t, m.Entries, keys)

	got, err := s.ListDataKeys("shared")
	require.NoError(t, err)
	assert.Len(t, got, keys)
}
