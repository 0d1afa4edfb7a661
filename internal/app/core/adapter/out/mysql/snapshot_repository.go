package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/JoeShih716/go-fund-ledger/internal/app/core/domain"
	"github.com/JoeShih716/go-fund-ledger/internal/app/core/usecase"
	"github.com/JoeShih716/go-fund-ledger/pkg/mysql"
)

// batchSize 批次寫入的筆數
const batchSize = 200

// SnapshotRepository 把每個使用者的快照拆成多張表保存
type SnapshotRepository struct {
	client *mysql.Client
}

func NewSnapshotRepository(client *mysql.Client) *SnapshotRepository {
	return &SnapshotRepository{
		client: client,
	}
}

// Migrate 建立或更新資料表
func (r *SnapshotRepository) Migrate(ctx context.Context) error {
	return r.client.DB().WithContext(ctx).AutoMigrate(models()...)
}

// Load 讀取使用者的快照；ledger_settings 沒有資料代表尚未儲存過
func (r *SnapshotRepository) Load(ctx context.Context, key domain.UserKey) (domain.Snapshot, bool, error) {
	db := r.client.DB().WithContext(ctx)
	var rows snapshotRows

	err := db.Where("user_key = ?", key.String()).First(&rows.settings).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Snapshot{}, false, nil
	}
	if err != nil {
		return domain.Snapshot{}, false, err
	}

	byUser := db.Where("user_key = ?", key.String()).Order("position").Session(&gorm.Session{})
	if err := byUser.Find(&rows.funds).Error; err != nil {
		return domain.Snapshot{}, false, err
	}
	if err := byUser.Find(&rows.categories).Error; err != nil {
		return domain.Snapshot{}, false, err
	}
	if err := byUser.Find(&rows.transactions).Error; err != nil {
		return domain.Snapshot{}, false, err
	}
	if err := byUser.Find(&rows.balances).Error; err != nil {
		return domain.Snapshot{}, false, err
	}

	snapshot, err := fromRows(rows)
	if err != nil {
		return domain.Snapshot{}, false, err
	}
	return snapshot, true, nil
}

// Save 在同一個 DB Transaction 內刪除舊資料並寫入整份快照
func (r *SnapshotRepository) Save(ctx context.Context, key domain.UserKey, snapshot domain.Snapshot) error {
	rows, err := toRows(key, snapshot)
	if err != nil {
		return err
	}
	return r.client.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []any{&sqlFund{}, &sqlCategory{}, &sqlTransaction{}, &sqlBalance{}} {
			if err := tx.Where("user_key = ?", key.String()).Delete(model).Error; err != nil {
				return err
			}
		}
		// GORM 對空 slice 的 Create 會回傳錯誤，需先檢查
		if len(rows.funds) > 0 {
			if err := tx.CreateInBatches(rows.funds, batchSize).Error; err != nil {
				return err
			}
		}
		if len(rows.categories) > 0 {
			if err := tx.CreateInBatches(rows.categories, batchSize).Error; err != nil {
				return err
			}
		}
		if len(rows.transactions) > 0 {
			if err := tx.CreateInBatches(rows.transactions, batchSize).Error; err != nil {
				return err
			}
		}
		if len(rows.balances) > 0 {
			if err := tx.CreateInBatches(rows.balances, batchSize).Error; err != nil {
				return err
			}
		}
		return tx.Save(&rows.settings).Error
	})
}

var _ usecase.SnapshotRepository = (*SnapshotRepository)(nil)
