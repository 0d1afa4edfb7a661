package memory

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/JoeShih716/go-fund-ledger/internal/app/core/domain"
)

// Option 設定帳本的可替換依賴 (測試用)
type Option func(*book)

// WithIDGenerator 指定 ID 產生器
func WithIDGenerator(newID func() string) Option {
	return func(b *book) { b.newID = newID }
}

// WithClock 指定時鐘 (deletedAt 使用)
func WithClock(now func() time.Time) Option {
	return func(b *book) { b.now = now }
}

// book 帳本的記憶體狀態，本身不做同步，由外層 Ledger 負責序列化存取
type book struct {
	funds        []domain.Fund
	categories   []domain.Category
	transactions []domain.Transaction // 新的在前
	balances     []domain.Balance
	// balanceIndex 餘額格在 balances 中的位置
	balanceIndex map[domain.BalanceKey]int
	rates        domain.ExchangeRates
	currencies   []domain.Currency
	language     string

	newID func() string
	now   func() time.Time
}

func newBook(snapshot domain.Snapshot, opts ...Option) *book {
	b := &book{
		newID: uuid.NewString,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	b.reset(snapshot)
	return b
}

// reset 以快照取代整個狀態；重複的餘額格會合併成一格
func (b *book) reset(s domain.Snapshot) {
	s = s.Clone()
	b.funds = s.Funds
	b.categories = s.Categories
	b.transactions = s.Transactions
	b.rates = s.ExchangeRates
	b.currencies = s.AvailableCurrencies
	b.language = s.Language
	b.loadBalances(s.Balances)
}

func (b *book) loadBalances(cells []domain.Balance) {
	b.balances = make([]domain.Balance, 0, len(cells))
	b.balanceIndex = make(map[domain.BalanceKey]int, len(cells))
	for _, cell := range cells {
		b.adjust(cell.Key(), cell.Amount)
	}
}

// ---------------------------------------------------------------------------
// 餘額引擎

// applyEffect 將交易的影響以 sign (+1 入帳 / -1 沖回) 套用到餘額格，不做任何驗證
func (b *book) applyEffect(tx *domain.Transaction, sign int64) {
	for _, e := range tx.Effects() {
		b.adjust(e.Key, e.Delta.Mul(decimal.NewFromInt(sign)))
	}
}

// adjust upsert 單一餘額格；餘額格建立後永不移除
func (b *book) adjust(key domain.BalanceKey, delta decimal.Decimal) {
	if i, ok := b.balanceIndex[key]; ok {
		b.balances[i].Amount = b.balances[i].Amount.Add(delta)
		return
	}
	b.balanceIndex[key] = len(b.balances)
	b.balances = append(b.balances, domain.Balance{FundID: key.FundID, Currency: key.Currency, Amount: delta})
}

func (b *book) balance(fundID string, currency domain.Currency) decimal.Decimal {
	if i, ok := b.balanceIndex[domain.BalanceKey{FundID: fundID, Currency: currency}]; ok {
		return b.balances[i].Amount
	}
	return decimal.Zero
}

// expectedBalances 由使用中的交易重算每一格應有的餘額
func (b *book) expectedBalances() map[domain.BalanceKey]decimal.Decimal {
	expected := make(map[domain.BalanceKey]decimal.Decimal)
	for i := range b.transactions {
		tx := &b.transactions[i]
		if !tx.Active() {
			continue
		}
		for _, e := range tx.Effects() {
			expected[e.Key] = expected[e.Key].Add(e.Delta)
		}
	}
	return expected
}

// verify 回傳儲存值與重算值不同的餘額格；先依既有順序，再依鍵排序列出新格
func (b *book) verify() []domain.Drift {
	expected := b.expectedBalances()
	drifts := make([]domain.Drift, 0)
	for _, cell := range b.balances {
		want := expected[cell.Key()]
		if !cell.Amount.Equal(want) {
			drifts = append(drifts, newDrift(cell.Key(), cell.Amount, want))
		}
	}

	missing := make([]domain.BalanceKey, 0)
	for key, want := range expected {
		if _, ok := b.balanceIndex[key]; !ok && !want.IsZero() {
			missing = append(missing, key)
		}
	}
	sortKeys(missing)
	for _, key := range missing {
		drifts = append(drifts, newDrift(key, decimal.Zero, expected[key]))
	}
	return drifts
}

// rebuild 以重算值修正餘額格，回傳修正前的差異
func (b *book) rebuild() []domain.Drift {
	drifts := b.verify()
	for _, d := range drifts {
		b.adjust(d.Key, d.Expected.Sub(d.Stored))
	}
	return drifts
}

func newDrift(key domain.BalanceKey, stored, expected decimal.Decimal) domain.Drift {
	return domain.Drift{Key: key, FundID: key.FundID, Currency: key.Currency, Stored: stored, Expected: expected}
}

func sortKeys(keys []domain.BalanceKey) {
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].FundID != keys[j].FundID {
			return keys[i].FundID < keys[j].FundID
		}
		return keys[i].Currency < keys[j].Currency
	})
}

// ---------------------------------------------------------------------------
// 交易生命週期

func (b *book) findTransaction(id string) int {
	for i := range b.transactions {
		if b.transactions[i].ID == id {
			return i
		}
	}
	return -1
}

// create 驗證後入帳，新交易放在最前面
func (b *book) create(draft domain.TransactionDraft) (domain.Transaction, error) {
	draft = draft.Normalize()
	if err := draft.Validate(); err != nil {
		return domain.Transaction{}, err
	}
	tx := draft.Build(b.newID())
	b.transactions = append([]domain.Transaction{tx}, b.transactions...)
	b.applyEffect(&tx, 1)
	return tx.Clone(), nil
}

// trash Active -> Trashed；不存在或已在垃圾桶時不做事
func (b *book) trash(id string) bool {
	i := b.findTransaction(id)
	if i < 0 || !b.transactions[i].Active() {
		return false
	}
	tx := &b.transactions[i]
	b.applyEffect(tx, -1)
	at := b.now().UTC()
	tx.IsDeleted = true
	tx.DeletedAt = &at
	return true
}

// restore Trashed -> Active
func (b *book) restore(id string) bool {
	i := b.findTransaction(id)
	if i < 0 || b.transactions[i].Active() {
		return false
	}
	tx := &b.transactions[i]
	b.applyEffect(tx, 1)
	tx.IsDeleted = false
	tx.DeletedAt = nil
	return true
}

// purge 永久移除；仍在使用中的交易先沖回餘額
func (b *book) purge(id string) bool {
	i := b.findTransaction(id)
	if i < 0 {
		return false
	}
	if b.transactions[i].Active() {
		b.applyEffect(&b.transactions[i], -1)
	}
	b.transactions = append(b.transactions[:i], b.transactions[i+1:]...)
	return true
}

// purgeTrashed 移除所有在垃圾桶的交易，不動餘額
func (b *book) purgeTrashed() int {
	kept := b.transactions[:0]
	removed := 0
	for _, tx := range b.transactions {
		if tx.Active() {
			kept = append(kept, tx)
			continue
		}
		removed++
	}
	// 清掉尾端殘留的參考
	for i := len(kept); i < len(b.transactions); i++ {
		b.transactions[i] = domain.Transaction{}
	}
	b.transactions = kept
	return removed
}

// ---------------------------------------------------------------------------
// 帳戶

func (b *book) findFund(id string) int {
	for i := range b.funds {
		if b.funds[i].ID == id {
			return i
		}
	}
	return -1
}

func (b *book) addFund(name string, currencies []domain.Currency) (domain.Fund, error) {
	if err := domain.ValidateFund(name, currencies); err != nil {
		return domain.Fund{}, err
	}
	fund := domain.Fund{
		ID:                  "f-" + b.newID(),
		Name:                strings.TrimSpace(name),
		SupportedCurrencies: domain.NormalizeCurrencySet(currencies),
		IsCustom:            true,
	}
	b.funds = append(b.funds, fund)
	return fund.Clone(), nil
}

// updateFund 部分更新名稱或幣別；ID 與旗標不變
func (b *book) updateFund(id string, patch domain.FundPatch) (bool, error) {
	var currencies []domain.Currency
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return false, domain.ErrEmptyName
	}
	if patch.SupportedCurrencies != nil {
		currencies = domain.NormalizeCurrencySet(patch.SupportedCurrencies)
		if len(currencies) == 0 {
			return false, domain.ErrInvalidCurrency
		}
	}

	i := b.findFund(id)
	if i < 0 {
		return false, nil
	}
	if patch.Name != nil {
		b.funds[i].Name = strings.TrimSpace(*patch.Name)
	}
	if currencies != nil {
		b.funds[i].SupportedCurrencies = currencies
	}
	return true, nil
}

// deleteFund 預設帳戶不可刪除；餘額格保留
func (b *book) deleteFund(id string) bool {
	i := b.findFund(id)
	if i < 0 || b.funds[i].Protected() {
		return false
	}
	b.funds = append(b.funds[:i], b.funds[i+1:]...)
	return true
}

// ---------------------------------------------------------------------------
// 分類

func (b *book) findCategory(id string) int {
	for i := range b.categories {
		if b.categories[i].ID == id {
			return i
		}
	}
	return -1
}

func (b *book) addCategory(name string, typ domain.TransactionType, icon string) (domain.Category, error) {
	if err := domain.ValidateCategory(name, typ); err != nil {
		return domain.Category{}, err
	}
	cat := domain.Category{
		ID:       "c-" + b.newID(),
		Name:     strings.TrimSpace(name),
		Type:     typ,
		Icon:     icon,
		IsCustom: true,
	}
	b.categories = append(b.categories, cat)
	return cat, nil
}

func (b *book) updateCategory(id string, patch domain.CategoryPatch) (bool, error) {
	if err := patch.Validate(); err != nil {
		return false, err
	}
	i := b.findCategory(id)
	if i < 0 {
		return false, nil
	}
	cat := &b.categories[i]
	if patch.Name != nil {
		cat.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Type != nil {
		cat.Type = *patch.Type
	}
	if patch.Icon != nil {
		cat.Icon = *patch.Icon
	}
	return true, nil
}

// deleteCategory 不檢查交易是否仍引用此分類
func (b *book) deleteCategory(id string) bool {
	i := b.findCategory(id)
	if i < 0 {
		return false
	}
	b.categories = append(b.categories[:i], b.categories[i+1:]...)
	return true
}

// ---------------------------------------------------------------------------
// 幣別、匯率、語系

// addCurrency 代碼太短或重複時忽略
func (b *book) addCurrency(code string) bool {
	c := domain.NormalizeCurrency(code)
	if !c.Valid() || domain.ContainsCurrency(b.currencies, c) {
		return false
	}
	b.currencies = append(b.currencies, c)
	return true
}

// removeCurrency 至少保留一種幣別
func (b *book) removeCurrency(code string) bool {
	c := domain.NormalizeCurrency(code)
	if len(b.currencies) <= 1 {
		return false
	}
	for i, item := range b.currencies {
		if item == c {
			b.currencies = append(b.currencies[:i], b.currencies[i+1:]...)
			return true
		}
	}
	return false
}

func (b *book) setExchangeRate(code string, rate decimal.Decimal) (bool, error) {
	c := domain.NormalizeCurrency(code)
	if !c.Valid() {
		return false, domain.ErrInvalidCurrency
	}
	if !rate.IsPositive() {
		return false, domain.ErrRateMustBePositive
	}
	if current, ok := b.rates[c]; ok && current.Equal(rate) {
		return false, nil
	}
	if b.rates == nil {
		b.rates = domain.ExchangeRates{}
	}
	b.rates[c] = rate
	return true, nil
}

func (b *book) setLanguage(language string) bool {
	language = strings.TrimSpace(language)
	if language == "" || language == b.language {
		return false
	}
	b.language = language
	return true
}

// ---------------------------------------------------------------------------
// 快照

func (b *book) snapshot() domain.Snapshot {
	return domain.Snapshot{
		Funds:               b.funds,
		Categories:          b.categories,
		Transactions:        b.transactions,
		Balances:            b.balances,
		ExchangeRates:       b.rates,
		AvailableCurrencies: b.currencies,
		Language:            b.language,
	}.Clone()
}

func (b *book) importBackup(backup domain.Backup) {
	b.reset(backup.ApplyTo(b.snapshot()))
}
