package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// BackupVersion 匯出檔的格式版本
const BackupVersion = "1.2"

// Backup 匯出/匯入的 JSON 文件
//
// 匯入時每個欄位各自獨立：缺少或為 null 的欄位保留原值
type Backup struct {
	Balances            []Balance     `json:"balances"`
	Transactions        []Transaction `json:"transactions"`
	ExchangeRates       ExchangeRates `json:"exchangeRates"`
	Funds               []Fund        `json:"funds"`
	Categories          []Category    `json:"categories"`
	AvailableCurrencies []Currency    `json:"availableCurrencies"`
	Language            string        `json:"language"`
	ExportedAt          *time.Time    `json:"exportedAt,omitempty"`
	Version             string        `json:"version,omitempty"`
}

// NewBackup 由快照產生匯出文件
func NewBackup(s Snapshot, exportedAt time.Time) Backup {
	s = s.Clone()
	at := exportedAt.UTC()
	return Backup{
		Balances:            s.Balances,
		Transactions:        s.Transactions,
		ExchangeRates:       s.ExchangeRates,
		Funds:               s.Funds,
		Categories:          s.Categories,
		AvailableCurrencies: s.AvailableCurrencies,
		Language:            s.Language,
		ExportedAt:          &at,
		Version:             BackupVersion,
	}
}

// EncodeBackup 輸出縮排後的 JSON
func EncodeBackup(b Backup) ([]byte, error) {
	return json.MarshalIndent(b, "", "  ")
}

// DecodeBackup 解析匯入文件；格式錯誤時整份拒絕
func DecodeBackup(data []byte) (Backup, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return Backup{}, fmt.Errorf("%w: empty document", ErrInvalidBackup)
	}
	var b Backup
	if err := json.Unmarshal(trimmed, &b); err != nil {
		return Backup{}, fmt.Errorf("%w: %v", ErrInvalidBackup, err)
	}
	if err := b.checkUniqueIDs(); err != nil {
		return Backup{}, err
	}
	return b, nil
}

// checkUniqueIDs 同一份文件內的 id (餘額為 fund+currency) 不可重複
func (b Backup) checkUniqueIDs() error {
	if id, ok := firstDuplicate(b.Transactions, func(tx Transaction) string { return tx.ID }); ok {
		return fmt.Errorf("%w: duplicate transaction id %q", ErrInvalidBackup, id)
	}
	if id, ok := firstDuplicate(b.Funds, func(f Fund) string { return f.ID }); ok {
		return fmt.Errorf("%w: duplicate fund id %q", ErrInvalidBackup, id)
	}
	if id, ok := firstDuplicate(b.Categories, func(c Category) string { return c.ID }); ok {
		return fmt.Errorf("%w: duplicate category id %q", ErrInvalidBackup, id)
	}
	if key, ok := firstDuplicate(b.Balances, Balance.Key); ok {
		return fmt.Errorf("%w: duplicate balance %s/%s", ErrInvalidBackup, key.FundID, key.Currency)
	}
	return nil
}

func firstDuplicate[T any, K comparable](items []T, key func(T) K) (K, bool) {
	seen := make(map[K]struct{}, len(items))
	for _, item := range items {
		k := key(item)
		if _, ok := seen[k]; ok {
			return k, true
		}
		seen[k] = struct{}{}
	}
	var zero K
	return zero, false
}

// ApplyTo 將備份內容覆蓋到快照上，回傳新的快照
//
// 參數:
//
//	s: 目前的快照 (不會被修改)
//
// 回傳:
//
//	Snapshot: 覆蓋後的快照；未出現在備份中的欄位維持原值
func (b Backup) ApplyTo(s Snapshot) Snapshot {
	out := s.Clone()
	if b.Balances != nil {
		out.Balances = append([]Balance{}, b.Balances...)
	}
	if b.Transactions != nil {
		out.Transactions = make([]Transaction, 0, len(b.Transactions))
		for _, tx := range b.Transactions {
			out.Transactions = append(out.Transactions, tx.Clone())
		}
	}
	if b.ExchangeRates != nil {
		out.ExchangeRates = b.ExchangeRates.Clone()
	}
	if b.Funds != nil {
		out.Funds = make([]Fund, 0, len(b.Funds))
		for _, f := range b.Funds {
			out.Funds = append(out.Funds, f.Clone())
		}
	}
	if b.Categories != nil {
		out.Categories = append([]Category{}, b.Categories...)
	}
	if b.AvailableCurrencies != nil {
		out.AvailableCurrencies = append([]Currency{}, b.AvailableCurrencies...)
	}
	if b.Language != "" {
		out.Language = b.Language
	}
	return out
}
