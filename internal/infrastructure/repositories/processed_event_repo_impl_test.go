package repositories

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestProcessedEventRepository_MarkProcessedOnce(t *testing.T) {
	db := newTestDB(t)
	createProcessedEventTable(t, db)
	repo := NewProcessedEventRepository(db)
	ctx := context.Background()

	inserted, err := repo.MarkProcessed(ctx, "evt_1")
	require.NoError(t, err)
	require.True(t, inserted)

	inserted, err = repo.MarkProcessed(ctx, "evt_1")
	require.NoError(t, err)
	require.False(t, inserted, "second delivery of the same event must lose")

	seen, err := repo.IsProcessed(ctx, "evt_1")
	require.NoError(t, err)
	require.True(t, seen)

	seen, err = repo.IsProcessed(ctx, "evt_other")
	require.NoError(t, err)
	require.False(t, seen)
}

func TestProcessedEventRepository_ConcurrentMark(t *testing.T) {
	db := newTestDB(t)
	createProcessedEventTable(t, db)
	repo := NewProcessedEventRepository(db)
	ctx := context.Background()

	const workers = 8
	var wg sync.WaitGroup
	wins := make(chan bool, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			inserted, err := repo.MarkProcessed(ctx, "evt_race")
			if err != nil {
				// sqlite may reject concurrent writers; only successful
				// calls count toward the winner tally.
				return
			}
			wins <- inserted
		}()
	}
	wg.Wait()
	close(wins)

	winners := 0
	for w := range wins {
		if w {
			winners++
		}
	}
	require.Equal(t, 1, winners, "exactly one delivery may win the insert")
}
