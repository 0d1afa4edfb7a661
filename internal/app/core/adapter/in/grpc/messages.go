package grpc

import (
	"github.com/shopspring/decimal"

	"github.com/JoeShih716/go-fund-ledger/internal/app/core/domain"
)

// 以下為 structpb.Struct 承載的訊息內容

type fundBalanceRequest struct {
	FundID   string          `json:"fundId"`
	Currency domain.Currency `json:"currency"`
}

type addFundRequest struct {
	Name                string            `json:"name"`
	SupportedCurrencies []domain.Currency `json:"supportedCurrencies"`
}

type updateFundRequest struct {
	ID string `json:"id"`
	domain.FundPatch
}

type addCategoryRequest struct {
	Name string                 `json:"name"`
	Type domain.TransactionType `json:"type"`
	Icon string                 `json:"icon"`
}

type updateCategoryRequest struct {
	ID string `json:"id"`
	domain.CategoryPatch
}

type exchangeRateRequest struct {
	Currency string          `json:"currency"`
	Rate     decimal.Decimal `json:"rate"`
}

type driftResponse struct {
	Drifts []domain.Drift `json:"drifts"`
}
