package memory

import (
	"context"
	"sync"

	"github.com/JoeShih716/go-fund-ledger/internal/app/core/domain"
	"github.com/JoeShih716/go-fund-ledger/internal/app/core/usecase"
)

// SnapshotStore 以 map 保存各使用者的快照，程序結束即消失
type SnapshotStore struct {
	mu        sync.RWMutex
	snapshots map[domain.UserKey]domain.Snapshot
}

func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{snapshots: make(map[domain.UserKey]domain.Snapshot)}
}

func (s *SnapshotStore) Load(ctx context.Context, key domain.UserKey) (domain.Snapshot, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.snapshots[key]
	if !ok {
		return domain.Snapshot{}, false, nil
	}
	return snap.Clone(), true, nil
}

func (s *SnapshotStore) Save(ctx context.Context, key domain.UserKey, snapshot domain.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots[key] = snapshot.Clone()
	return nil
}

var _ usecase.SnapshotRepository = (*SnapshotStore)(nil)
