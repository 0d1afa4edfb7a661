package domain

import "errors"

var (
	// ErrAmountMustBePositive 金額必須為正數
	ErrAmountMustBePositive = errors.New("amount must be positive")

	// ErrInvalidTransactionType 交易類型錯誤
	ErrInvalidTransactionType = errors.New("invalid transaction type")

	// ErrMissingCurrency 缺少幣別
	ErrMissingCurrency = errors.New("currency is required")

	// ErrMissingSourceFund 缺少來源帳戶
	ErrMissingSourceFund = errors.New("source fund is required")

	// ErrIncompleteTransfer 轉帳缺少目標帳戶、目標幣別或匯率
	ErrIncompleteTransfer = errors.New("transfer requires target fund, target currency and a positive exchange rate")

	// ErrUnexpectedTarget 非轉帳交易不可帶目標欄位
	ErrUnexpectedTarget = errors.New("only transfers may carry target fields")

	// ErrSameTransferEndpoint 轉帳來源與目標相同
	ErrSameTransferEndpoint = errors.New("transfer source and target must differ")

	// ErrInvalidCategoryType 分類只能是收入或支出
	ErrInvalidCategoryType = errors.New("category type must be INCOME or EXPENSE")

	// ErrEmptyName 名稱不可為空
	ErrEmptyName = errors.New("name is required")

	// ErrInvalidCurrency 幣別代碼錯誤
	ErrInvalidCurrency = errors.New("invalid currency code")

	// ErrRateMustBePositive 匯率必須為正數
	ErrRateMustBePositive = errors.New("exchange rate must be positive")

	// ErrInvalidDate 日期格式錯誤
	ErrInvalidDate = errors.New("invalid date")

	// ErrInvalidBackup 備份檔格式錯誤，整份匯入被拒絕
	ErrInvalidBackup = errors.New("invalid backup")

	// ErrUnknownCountry 匯款試算找不到國家
	ErrUnknownCountry = errors.New("unknown remittance country")

	// ErrUnknownProvider 匯款試算管道錯誤
	ErrUnknownProvider = errors.New("unknown remittance provider")

	// ErrLedgerStopped 帳本核心已停止
	ErrLedgerStopped = errors.New("ledger stopped")
)

// IsValidation 是否為呼叫端輸入錯誤
func IsValidation(err error) bool {
	for _, target := range []error{
		ErrAmountMustBePositive, ErrInvalidTransactionType, ErrMissingCurrency,
		ErrMissingSourceFund, ErrIncompleteTransfer, ErrUnexpectedTarget,
		ErrSameTransferEndpoint, ErrInvalidCategoryType, ErrEmptyName,
		ErrInvalidCurrency, ErrRateMustBePositive, ErrInvalidDate, ErrInvalidBackup,
		ErrUnknownProvider,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
