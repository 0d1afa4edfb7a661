package domain

import "strings"

// DefaultFundID 系統預設帳戶，不可刪除
const DefaultFundID = "f-1"

// Fund 帳戶 (資金桶)，可持有多種幣別
type Fund struct {
	ID                  string     `json:"id"`
	Name                string     `json:"name"`
	SupportedCurrencies []Currency `json:"supportedCurrencies"`
	IsSystemDefault     bool       `json:"isSystemDefault,omitempty"`
	IsCustom            bool       `json:"isCustom,omitempty"`
}

// Protected 是否禁止刪除
func (f *Fund) Protected() bool {
	return f.IsSystemDefault || f.ID == DefaultFundID
}

// Clone 複製幣別清單
func (f Fund) Clone() Fund {
	f.SupportedCurrencies = append([]Currency(nil), f.SupportedCurrencies...)
	return f
}

// FundPatch 部分更新；nil 代表不變
type FundPatch struct {
	Name                *string    `json:"name,omitempty"`
	SupportedCurrencies []Currency `json:"supportedCurrencies,omitempty"`
}

// NormalizeCurrencySet 正規化並去重，保留原順序
func NormalizeCurrencySet(in []Currency) []Currency {
	out := make([]Currency, 0, len(in))
	for _, c := range in {
		c = NormalizeCurrency(string(c))
		if !c.Valid() || ContainsCurrency(out, c) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// ValidateFund 檢查新增帳戶的輸入
func ValidateFund(name string, currencies []Currency) error {
	if strings.TrimSpace(name) == "" {
		return ErrEmptyName
	}
	if len(NormalizeCurrencySet(currencies)) == 0 {
		return ErrInvalidCurrency
	}
	return nil
}
