package repository

import (
	"context"
	"sync"
	"testing"

	"github.com/adshao/go-binance/v2/futures"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"botdeck/internal/bot"
)

func testBot(id string) bot.Bot {
	return bot.Bot{
		ID:       id,
		Symbol:   "BTCUSDT",
		Side:     futures.SideTypeBuy,
		Leverage: 10,
		IsActive: true,
	}
}

func TestInsertAndGet(t *testing.T) {
	ctx := context.Background()
	repo := NewMemory()

	require.NoError(t, repo.Insert(ctx, testBot("b1")))
	assert.ErrorIs(t, repo.Insert(ctx, testBot("b1")), ErrExists)

	got, err := repo.Get(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, "BTCUSDT", got.Symbol)

	_, err = repo.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListPreservesCreationOrder(t *testing.T) {
	ctx := context.Background()
	repo := NewMemory()

	for _, id := range []string{"c", "a", "b"} {
		require.NoError(t, repo.Insert(ctx, testBot(id)))
	}

	items := repo.List(ctx)
	require.Len(t, items, 3)
	assert.Equal(t, "c", items[0].ID)
	assert.Equal(t, "a", items[1].ID)
	assert.Equal(t, "b", items[2].ID)
}

func TestDeleteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := NewMemory()
	require.NoError(t, repo.Insert(ctx, testBot("b1")))

	removed, ok := repo.Delete(ctx, "b1")
	assert.True(t, ok)
	assert.Equal(t, "b1", removed.ID)

	_, ok = repo.Delete(ctx, "b1")
	assert.False(t, ok)
	_, ok = repo.Delete(ctx, "never-existed")
	assert.False(t, ok)
	assert.Equal(t, 0, repo.Count(ctx))
}

func TestUpdateUnknownBot(t *testing.T) {
	ctx := context.Background()
	repo := NewMemory()

	_, err := repo.Update(ctx, "missing", func(b *bot.Bot) error { return nil })
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateErrorDiscardsChange(t *testing.T) {
	ctx := context.Background()
	repo := NewMemory()
	require.NoError(t, repo.Insert(ctx, testBot("b1")))

	wantErr := assert.AnError
	_, err := repo.Update(ctx, "b1", func(b *bot.Bot) error {
		b.Symbol = "ETHUSDT"
		return wantErr
	})
	assert.ErrorIs(t, err, wantErr)

	got, err := repo.Get(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, "BTCUSDT", got.Symbol)
}

func TestConcurrentUpdatesAreSerialized(t *testing.T) {
	ctx := context.Background()
	repo := NewMemory()
	require.NoError(t, repo.Insert(ctx, testBot("b1")))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.Update(ctx, "b1", func(b *bot.Bot) error {
				b.SignalCount++
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := repo.Get(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, 50, got.SignalCount)
}

// A bulk write racing an in-flight Update must not be overwritten by the
// Update's write-back. The Update fn is stalled mid-flight while UpdateAll
// deactivates the bot; both changes have to survive.
func TestUpdateAllNotLostToConcurrentUpdate(t *testing.T) {
	ctx := context.Background()
	repo := NewMemory()
	require.NoError(t, repo.Insert(ctx, testBot("b1")))

	entered := make(chan struct{})
	release := make(chan struct{})

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, err := repo.Update(ctx, "b1", func(b *bot.Bot) error {
			close(entered)
			<-release
			b.SignalCount++
			return nil
		})
		assert.NoError(t, err)
	}()

	<-entered
	go func() {
		defer wg.Done()
		repo.UpdateAll(ctx, func(b *bot.Bot) bool {
			b.IsActive = false
			return true
		})
	}()
	close(release)
	wg.Wait()

	got, err := repo.Get(ctx, "b1")
	require.NoError(t, err)
	assert.False(t, got.IsActive, "bulk deactivation overwritten by stale copy")
	assert.Equal(t, 1, got.SignalCount)
}

func TestUpdateAllCountsOnlyChangedBots(t *testing.T) {
	ctx := context.Background()
	repo := NewMemory()
	require.NoError(t, repo.Insert(ctx, testBot("b1")))

	inactive := testBot("b2")
	inactive.IsActive = false
	require.NoError(t, repo.Insert(ctx, inactive))

	n := repo.UpdateAll(ctx, func(b *bot.Bot) bool {
		if !b.IsActive {
			return false
		}
		b.IsActive = false
		return true
	})
	assert.Equal(t, 1, n)

	got, err := repo.Get(ctx, "b2")
	require.NoError(t, err)
	assert.False(t, got.IsActive)
}

func TestActiveCount(t *testing.T) {
	ctx := context.Background()
	repo := NewMemory()
	require.NoError(t, repo.Insert(ctx, testBot("b1")))

	inactive := testBot("b2")
	inactive.IsActive = false
	require.NoError(t, repo.Insert(ctx, inactive))

	assert.Equal(t, 1, repo.ActiveCount(ctx))
	assert.Equal(t, 2, repo.Count(ctx))
}
