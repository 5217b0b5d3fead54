package watchlist

import (
	"sort"
	"strings"
	"sync"
	"time"

	"DCFSuite/internal/model"
)

// Manager holds the tickers scheduled for revaluation with concurrency safety.
type Manager struct {
	mu       sync.Mutex
	state    *model.WatchlistState
	filePath string
}

// NewManager creates a Manager, loading state from disk.
func NewManager(filePath string) (*Manager, error) {
	state, err := LoadState(filePath)
	if err != nil {
		return nil, err
	}
	return &Manager{state: state, filePath: filePath}, nil
}

// Tickers returns the watched tickers in alphabetical order.
func (m *Manager) Tickers() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]string, len(m.state.Entries))
	for i, e := range m.state.Entries {
		out[i] = e.Ticker
	}
	sort.Strings(out)
	return out
}

// Add starts watching ticker. It reports false if it was already watched.
func (m *Manager) Add(ticker string) (bool, error) {
	ticker = normalize(ticker)
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, e := range m.state.Entries {
		if e.Ticker == ticker {
			return false, nil
		}
	}
	next := make([]model.WatchEntry, 0, len(m.state.Entries)+1)
	next = append(next, m.state.Entries...)
	next = append(next, model.WatchEntry{Ticker: ticker, AddedAt: time.Now()})
	if err := m.commit(next); err != nil {
		return false, err
	}
	return true, nil
}

// Remove stops watching ticker. It reports false if it was not watched.
func (m *Manager) Remove(ticker string) (bool, error) {
	ticker = normalize(ticker)
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, e := range m.state.Entries {
		if e.Ticker == ticker {
			next := make([]model.WatchEntry, 0, len(m.state.Entries)-1)
			next = append(next, m.state.Entries[:i]...)
			next = append(next, m.state.Entries[i+1:]...)
			if err := m.commit(next); err != nil {
				return false, err
			}
			return true, nil
		}
	}
	return false, nil
}

// commit persists entries and only then replaces the in-memory state, so a
// failed write leaves the watchlist unchanged. Must be called with mu held.
func (m *Manager) commit(entries []model.WatchEntry) error {
	next := &model.WatchlistState{Entries: entries}
	if err := SaveState(m.filePath, next); err != nil {
		return err
	}
	m.state = next
	return nil
}

func normalize(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}
