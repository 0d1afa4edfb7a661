package domain

import "strings"

// Category 收入或支出的分類 (不會是轉帳)
type Category struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Type     TransactionType `json:"type"`
	Icon     string          `json:"icon"`
	IsCustom bool            `json:"isCustom,omitempty"`
}

// CategoryPatch 部分更新；nil 代表不變
type CategoryPatch struct {
	Name *string          `json:"name,omitempty"`
	Type *TransactionType `json:"type,omitempty"`
	Icon *string          `json:"icon,omitempty"`
}

// ValidCategoryType 分類只允許收入或支出
func ValidCategoryType(t TransactionType) bool {
	return t == TransactionTypeIncome || t == TransactionTypeExpense
}

// ValidateCategory 檢查新增分類的輸入
func ValidateCategory(name string, t TransactionType) error {
	if strings.TrimSpace(name) == "" {
		return ErrEmptyName
	}
	if !ValidCategoryType(t) {
		return ErrInvalidCategoryType
	}
	return nil
}

// Validate 檢查部分更新
func (p CategoryPatch) Validate() error {
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return ErrEmptyName
	}
	if p.Type != nil && !ValidCategoryType(*p.Type) {
		return ErrInvalidCategoryType
	}
	return nil
}
