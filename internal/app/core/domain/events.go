package domain

import "time"

// EventType 帳本事件類型
type EventType string

const (
	EventTransactionCreated  EventType = "transaction.created"
	EventTransactionTrashed  EventType = "transaction.trashed"
	EventTransactionRestored EventType = "transaction.restored"
	EventTransactionPurged   EventType = "transaction.purged"
	EventTrashPurged         EventType = "trash.purged"
	EventFundAdded           EventType = "fund.added"
	EventFundUpdated         EventType = "fund.updated"
	EventFundDeleted         EventType = "fund.deleted"
	EventCategoryAdded       EventType = "category.added"
	EventCategoryUpdated     EventType = "category.updated"
	EventCategoryDeleted     EventType = "category.deleted"
	EventCurrencyAdded       EventType = "currency.added"
	EventCurrencyRemoved     EventType = "currency.removed"
	EventExchangeRateSet     EventType = "exchange_rate.set"
	EventLanguageSet         EventType = "language.set"
	EventBackupImported      EventType = "backup.imported"
	EventBalancesRebuilt     EventType = "balances.rebuilt"
)

// LedgerEvent 每次成功變更後對外發布的通知
type LedgerEvent struct {
	Type          EventType `json:"type"`
	UserKey       UserKey   `json:"userKey"`
	TransactionID string    `json:"transactionId,omitempty"`
	// EntityID 帳戶、分類或幣別代碼
	EntityID   string    `json:"entityId,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}
