package livestate

import (
	"context"
	"lieng-server/pkg/messenger"
	"sync"
)

// Memory keeps snapshots in a map
type Memory struct {
	mu    sync.Mutex
	snaps map[string][]byte
}

// NewMemory returns an empty tracker
func NewMemory() *Memory {
	return &Memory{snaps: make(map[string][]byte)}
}

// Save stores a copy of the snapshot
func (m *Memory) Save(ctx context.Context, snap *Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.snaps[key(snap.Location, snap.GameID)] = data
	return nil
}

// Load returns the snapshot
func (m *Memory) Load(ctx context.Context, loc messenger.Location, gameID string) (*Snapshot, error) {
	m.mu.Lock()
	data, ok := m.snaps[key(loc, gameID)]
	m.mu.Unlock()

	if !ok {
		return nil, ErrNotFound
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, err
	}

	return &snap, nil
}

// Remove deletes the snapshot
func (m *Memory) Remove(ctx context.Context, loc messenger.Location, gameID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.snaps, key(loc, gameID))
	return nil
}

// Len returns the number of stored snapshots
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.snaps)
}
