package repository

import (
	"context"
	"errors"
	"sync"

	"botdeck/internal/bot"
)

var (
	ErrNotFound = errors.New("bot not found")
	ErrExists   = errors.New("bot id already exists")
)

// Memory keeps the bot registry in process memory. A keyed mutex per bot
// id serializes check-then-act updates so concurrent webhook callers
// cannot double-open a position.
type Memory struct {
	mu    sync.RWMutex
	bots  map[string]bot.Bot
	order []string
	locks map[string]*sync.Mutex
}

func NewMemory() *Memory {
	return &Memory{
		bots:  make(map[string]bot.Bot),
		locks: make(map[string]*sync.Mutex),
	}
}

// List returns cloned records in creation order. No side effects.
func (m *Memory) List(_ context.Context) []bot.Bot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	items := make([]bot.Bot, 0, len(m.order))
	for _, id := range m.order {
		if b, ok := m.bots[id]; ok {
			items = append(items, b.Clone())
		}
	}
	return items
}

func (m *Memory) Get(_ context.Context, id string) (bot.Bot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	b, ok := m.bots[id]
	if !ok {
		return bot.Bot{}, ErrNotFound
	}
	return b.Clone(), nil
}

func (m *Memory) Insert(_ context.Context, b bot.Bot) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.bots[b.ID]; exists {
		return ErrExists
	}
	m.bots[b.ID] = b.Clone()
	m.order = append(m.order, b.ID)
	return nil
}

// Delete removes the bot and returns the removed record. Deleting an
// unknown id is a no-op; the bool reports whether anything was removed.
func (m *Memory) Delete(_ context.Context, id string) (bot.Bot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed, exists := m.bots[id]
	if !exists {
		return bot.Bot{}, false
	}
	delete(m.bots, id)
	delete(m.locks, id)
	for i, oid := range m.order {
		if oid == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return removed.Clone(), true
}

// errSkip discards an UpdateAll change without counting it.
var errSkip = errors.New("skip")

// Update applies fn to the bot under its keyed lock. The whole
// read-modify-write is atomic with respect to every other write path for
// the same id. fn receives a copy; returning an error discards the change.
func (m *Memory) Update(_ context.Context, id string, fn func(*bot.Bot) error) (bot.Bot, error) {
	return m.update(id, fn)
}

// UpdateAll applies fn to every bot, taking each bot's keyed lock in
// turn. Bulk writers (drift ticker, cascade-disable) therefore cannot
// race an in-flight Update and have their change overwritten by its
// stale copy. Returns how many bots fn changed.
func (m *Memory) UpdateAll(_ context.Context, fn func(*bot.Bot) bool) int {
	m.mu.RLock()
	ids := append([]string(nil), m.order...)
	m.mu.RUnlock()

	changed := 0
	for _, id := range ids {
		_, err := m.update(id, func(b *bot.Bot) error {
			if !fn(b) {
				return errSkip
			}
			return nil
		})
		if err == nil {
			changed++
		}
		// errSkip and ErrNotFound (deleted mid-sweep) both mean: move on.
	}
	return changed
}

func (m *Memory) update(id string, fn func(*bot.Bot) error) (bot.Bot, error) {
	m.mu.Lock()
	if _, exists := m.bots[id]; !exists {
		m.mu.Unlock()
		return bot.Bot{}, ErrNotFound
	}
	lock, ok := m.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		m.locks[id] = lock
	}
	m.mu.Unlock()

	lock.Lock()
	defer lock.Unlock()

	m.mu.RLock()
	current, exists := m.bots[id]
	m.mu.RUnlock()
	if !exists {
		// Deleted while we waited for the keyed lock.
		return bot.Bot{}, ErrNotFound
	}

	next := current.Clone()
	if err := fn(&next); err != nil {
		return bot.Bot{}, err
	}

	m.mu.Lock()
	if _, exists := m.bots[id]; exists {
		m.bots[id] = next
	}
	m.mu.Unlock()
	return next.Clone(), nil
}

func (m *Memory) Count(_ context.Context) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.bots)
}

func (m *Memory) ActiveCount(_ context.Context) int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := 0
	for _, b := range m.bots {
		if b.IsActive {
			n++
		}
	}
	return n
}
