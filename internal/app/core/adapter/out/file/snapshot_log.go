package file

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/JoeShih716/go-fund-ledger/internal/app/core/domain"
	"github.com/JoeShih716/go-fund-ledger/internal/app/core/usecase"
	"github.com/JoeShih716/go-fund-ledger/pkg/logger"
	"github.com/JoeShih716/go-fund-ledger/pkg/wal"
)

// DefaultCompactEvery 累積多少筆過期紀錄後壓縮檔案
const DefaultCompactEvery = 200

// entry WAL 中的一筆紀錄
type entry struct {
	UserKey  domain.UserKey  `json:"userKey"`
	SavedAt  time.Time       `json:"savedAt"`
	Snapshot domain.Snapshot `json:"snapshot"`
}

// SnapshotLog 以 append-only 檔案保存快照，每個使用者只有最後一筆有效
type SnapshotLog struct {
	wal    *wal.WAL
	logger *slog.Logger

	mu     sync.RWMutex
	latest map[domain.UserKey]entry
	// stale 被新紀錄取代的筆數
	stale        int
	compactEvery int
	now          func() time.Time
}

// Option SnapshotLog 設定
type Option func(*SnapshotLog)

// WithCompactEvery 指定壓縮門檻，<= 0 代表不自動壓縮
func WithCompactEvery(n int) Option {
	return func(s *SnapshotLog) { s.compactEvery = n }
}

// WithLogger 指定 logger
func WithLogger(l *slog.Logger) Option {
	return func(s *SnapshotLog) { s.logger = logger.Component(l, "snapshot_log") }
}

// Open 開啟快照檔並重播所有紀錄，建立每個使用者的最新快照索引
//
// 參數:
//
//	path: 檔案路徑
//	opts: 可選設定
//
// 回傳:
//
//	*SnapshotLog: 實例
//	error: 開檔或解析錯誤
func Open(path string, opts ...Option) (*SnapshotLog, error) {
	w, err := wal.NewWAL(path)
	if err != nil {
		return nil, err
	}
	s := &SnapshotLog{
		wal:          w,
		logger:       logger.Component(nil, "snapshot_log"),
		latest:       make(map[domain.UserKey]entry),
		compactEvery: DefaultCompactEvery,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	records := 0
	err = w.ReadAll(func(raw []byte) error {
		var e entry
		if err := json.Unmarshal(raw, &e); err != nil {
			return fmt.Errorf("decode snapshot record %d: %w", records+1, err)
		}
		records++
		s.latest[e.UserKey] = e
		return nil
	})
	if err != nil {
		_ = w.Close()
		return nil, err
	}
	s.stale = records - len(s.latest)
	s.logger.Info("snapshot log replayed", "path", path, "records", records, "users", len(s.latest))
	return s, nil
}

func (s *SnapshotLog) Load(ctx context.Context, key domain.UserKey) (domain.Snapshot, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.latest[key]
	if !ok {
		return domain.Snapshot{}, false, nil
	}
	return e.Snapshot.Clone(), true, nil
}

// Save 追加一筆紀錄；過期紀錄超過門檻時壓縮檔案
func (s *SnapshotLog) Save(ctx context.Context, key domain.UserKey, snapshot domain.Snapshot) error {
	e := entry{UserKey: key, SavedAt: s.now().UTC(), Snapshot: snapshot.Clone()}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.wal.Write(e); err != nil {
		return err
	}
	if _, ok := s.latest[key]; ok {
		s.stale++
	}
	s.latest[key] = e

	if s.compactEvery > 0 && s.stale >= s.compactEvery {
		if err := s.compactLocked(); err != nil {
			// 壓縮失敗不影響已寫入的紀錄
			s.logger.WarnContext(ctx, "compact snapshot log failed", logger.FieldError, err)
		}
	}
	return nil
}

// Compact 只保留每個使用者的最新快照
func (s *SnapshotLog) Compact() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.compactLocked()
}

func (s *SnapshotLog) compactLocked() error {
	keys := make([]domain.UserKey, 0, len(s.latest))
	for k := range s.latest {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	err := s.wal.Compact(func(write func(v any) error) error {
		for _, k := range keys {
			if err := write(s.latest[k]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.stale = 0
	return nil
}

// Close 關閉檔案
func (s *SnapshotLog) Close() error {
	return s.wal.Close()
}

var _ usecase.SnapshotRepository = (*SnapshotLog)(nil)
