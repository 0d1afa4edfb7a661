package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"
	"github.com/shopspring/decimal"

	grpc_adapter "github.com/JoeShih716/go-fund-ledger/internal/app/core/adapter/in/grpc"
	"github.com/JoeShih716/go-fund-ledger/internal/app/core/domain"
	"github.com/JoeShih716/go-fund-ledger/internal/app/core/usecase"
)

func register(c *subcommands.Commander) {
	c.Register(&txCmd{}, "transactions")
	for _, cmd := range idCommands() {
		c.Register(cmd, "transactions")
	}
	c.Register(&emptyTrashCmd{}, "transactions")

	c.Register(&fundCmd{}, "funds")
	c.Register(&categoryCmd{}, "funds")
	c.Register(&currencyCmd{}, "funds")
	c.Register(&rateCmd{}, "funds")

	c.Register(&balanceCmd{}, "reports")
	c.Register(&summaryCmd{}, "reports")
	c.Register(&snapshotCmd{}, "reports")
	c.Register(&quoteCmd{}, "reports")

	c.Register(&exportCmd{}, "backup")
	c.Register(&importCmd{}, "backup")
	c.Register(&verifyCmd{}, "backup")
}

// ---------------------------------------------------------------------------
// transactions

type txCmd struct {
	typ, amount, currency, category, fund string
	to, toCurrency, rate                  string
	date, note                            string
	commitment                            bool
}

func (*txCmd) Name() string     { return "tx" }
func (*txCmd) Synopsis() string { return "record an income, expense or transfer" }
func (*txCmd) Usage() string {
	return `ledgerctl tx -type <INCOME|EXPENSE|TRANSFER> -amount <n> -currency <code> -category <id> [-fund <id>] [-to <id> -to-currency <code> -rate <n>] [-date YYYY-MM-DD] [-note <text>]

  Records a transaction and prints it.
`
}

func (p *txCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.typ, "type", string(domain.TransactionTypeExpense), "INCOME, EXPENSE or TRANSFER")
	f.StringVar(&p.amount, "amount", "", "amount in the source currency")
	f.StringVar(&p.currency, "currency", domain.BaseCurrency.String(), "source currency")
	f.StringVar(&p.category, "category", "", "category id (transfers default to the transfer category)")
	f.StringVar(&p.fund, "fund", domain.DefaultFundID, "source fund id")
	f.StringVar(&p.to, "to", "", "target fund id (transfers only)")
	f.StringVar(&p.toCurrency, "to-currency", "", "target currency (transfers only)")
	f.StringVar(&p.rate, "rate", "", "exchange rate source to target (transfers only)")
	f.StringVar(&p.date, "date", "", "transaction date, defaults to today")
	f.StringVar(&p.note, "note", "", "free text note")
	f.BoolVar(&p.commitment, "commitment", false, "mark as a commitment")
}

// draft 將旗標轉成交易草稿
func (p *txCmd) draft(today domain.Date) (domain.TransactionDraft, error) {
	typ, err := domain.ParseTransactionType(p.typ)
	if err != nil {
		return domain.TransactionDraft{}, err
	}
	amount, err := decimal.NewFromString(p.amount)
	if err != nil {
		return domain.TransactionDraft{}, fmt.Errorf("invalid amount %q: %w", p.amount, err)
	}
	d := domain.TransactionDraft{
		Type:         typ,
		Amount:       amount,
		Currency:     domain.NormalizeCurrency(p.currency),
		CategoryID:   p.category,
		SourceFundID: p.fund,
		Date:         today,
		Note:         p.note,
		IsCommitment: p.commitment,
	}
	if p.date != "" {
		if d.Date, err = domain.ParseDate(p.date); err != nil {
			return domain.TransactionDraft{}, err
		}
	}
	if typ == domain.TransactionTypeTransfer {
		if d.CategoryID == "" {
			d.CategoryID = domain.TransferCategoryID
		}
		d.TargetFundID = p.to
		d.TargetCurrency = domain.NormalizeCurrency(p.toCurrency)
		if d.TargetCurrency == "" {
			d.TargetCurrency = d.Currency
		}
		rate := decimal.NewFromInt(1)
		if p.rate != "" {
			if rate, err = decimal.NewFromString(p.rate); err != nil {
				return domain.TransactionDraft{}, fmt.Errorf("invalid rate %q: %w", p.rate, err)
			}
		}
		d.ExchangeRate = &rate
	}
	return d, nil
}

func (p *txCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	draft, err := p.draft(domain.Today())
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitUsageError
	}
	return execute(ctx, func(ctx context.Context, c *grpc_adapter.Client) (any, error) {
		return c.CreateTransaction(ctx, draft)
	})
}

// idCmd 只需要一個 ID 的命令
type idCmd struct {
	name, synopsis string
	call           func(c *grpc_adapter.Client, ctx context.Context, id string) (bool, error)
}

func idCommands() []*idCmd {
	return []*idCmd{
		{"trash", "move a transaction to the trash", (*grpc_adapter.Client).TrashTransaction},
		{"restore", "restore a trashed transaction", (*grpc_adapter.Client).RestoreTransaction},
		{"purge", "permanently delete a transaction", (*grpc_adapter.Client).PurgeTransaction},
	}
}

func (c *idCmd) Name() string             { return c.name }
func (c *idCmd) Synopsis() string         { return c.synopsis }
func (c *idCmd) Usage() string            { return "ledgerctl " + c.name + " <transaction-id>\n" }
func (c *idCmd) SetFlags(_ *flag.FlagSet) {}

func (c *idCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	id, ok := oneArg(f, "transaction id")
	if !ok {
		return subcommands.ExitUsageError
	}
	return execute(ctx, func(ctx context.Context, client *grpc_adapter.Client) (any, error) {
		changed, err := c.call(client, ctx, id)
		return changedResult{Changed: changed}, err
	})
}

type emptyTrashCmd struct{}

func (*emptyTrashCmd) Name() string             { return "empty-trash" }
func (*emptyTrashCmd) Synopsis() string         { return "permanently delete every trashed transaction" }
func (*emptyTrashCmd) Usage() string            { return "ledgerctl empty-trash\n" }
func (*emptyTrashCmd) SetFlags(_ *flag.FlagSet) {}

func (*emptyTrashCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return execute(ctx, func(ctx context.Context, c *grpc_adapter.Client) (any, error) {
		n, err := c.PurgeTrash(ctx)
		return map[string]int{"purged": n}, err
	})
}

// ---------------------------------------------------------------------------
// funds, categories, currencies

type fundCmd struct {
	name, currencies, rename string
	remove                   string
}

func (*fundCmd) Name() string     { return "fund" }
func (*fundCmd) Synopsis() string { return "add, rename or delete a fund" }
func (*fundCmd) Usage() string {
	return `ledgerctl fund -name <name> -currencies BDT,USD
ledgerctl fund -rename <id> -name <name> [-currencies ...]
ledgerctl fund -delete <id>
`
}

func (p *fundCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.name, "name", "", "fund name")
	f.StringVar(&p.currencies, "currencies", "", "comma separated supported currencies")
	f.StringVar(&p.rename, "rename", "", "id of the fund to update")
	f.StringVar(&p.remove, "delete", "", "id of the fund to delete")
}

func (p *fundCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	currencies := parseCurrencies(p.currencies)
	return execute(ctx, func(ctx context.Context, c *grpc_adapter.Client) (any, error) {
		switch {
		case p.remove != "":
			changed, err := c.DeleteFund(ctx, p.remove)
			return changedResult{Changed: changed}, err
		case p.rename != "":
			patch := domain.FundPatch{SupportedCurrencies: currencies}
			if p.name != "" {
				patch.Name = &p.name
			}
			changed, err := c.UpdateFund(ctx, p.rename, patch)
			return changedResult{Changed: changed}, err
		}
		return c.AddFund(ctx, p.name, currencies)
	})
}

type categoryCmd struct {
	name, typ, icon, update, remove string
}

func (*categoryCmd) Name() string     { return "category" }
func (*categoryCmd) Synopsis() string { return "add, update or delete a category" }
func (*categoryCmd) Usage() string {
	return `ledgerctl category -name <name> -type <INCOME|EXPENSE> [-icon <icon>]
ledgerctl category -update <id> [-name ...] [-type ...] [-icon ...]
ledgerctl category -delete <id>
`
}

func (p *categoryCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.name, "name", "", "category name")
	f.StringVar(&p.typ, "type", "", "INCOME or EXPENSE")
	f.StringVar(&p.icon, "icon", "", "icon name")
	f.StringVar(&p.update, "update", "", "id of the category to update")
	f.StringVar(&p.remove, "delete", "", "id of the category to delete")
}

func (p *categoryCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	typ := domain.TransactionType(strings.ToUpper(p.typ))
	return execute(ctx, func(ctx context.Context, c *grpc_adapter.Client) (any, error) {
		switch {
		case p.remove != "":
			changed, err := c.DeleteCategory(ctx, p.remove)
			return changedResult{Changed: changed}, err
		case p.update != "":
			var patch domain.CategoryPatch
			if p.name != "" {
				patch.Name = &p.name
			}
			if typ != "" {
				patch.Type = &typ
			}
			if p.icon != "" {
				patch.Icon = &p.icon
			}
			changed, err := c.UpdateCategory(ctx, p.update, patch)
			return changedResult{Changed: changed}, err
		}
		return c.AddCategory(ctx, p.name, typ, p.icon)
	})
}

type currencyCmd struct {
	remove bool
}

func (*currencyCmd) Name() string     { return "currency" }
func (*currencyCmd) Synopsis() string { return "add or remove an available currency" }
func (*currencyCmd) Usage() string    { return "ledgerctl currency [-remove] <code>\n" }

func (p *currencyCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&p.remove, "remove", false, "remove instead of add")
}

func (p *currencyCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	code, ok := oneArg(f, "currency code")
	if !ok {
		return subcommands.ExitUsageError
	}
	return execute(ctx, func(ctx context.Context, c *grpc_adapter.Client) (any, error) {
		call := c.AddCurrency
		if p.remove {
			call = c.RemoveCurrency
		}
		changed, err := call(ctx, code)
		return changedResult{Changed: changed}, err
	})
}

type rateCmd struct{}

func (*rateCmd) Name() string             { return "rate" }
func (*rateCmd) Synopsis() string         { return "set the exchange rate of a currency against BDT" }
func (*rateCmd) Usage() string            { return "ledgerctl rate <code> <rate>\n" }
func (*rateCmd) SetFlags(_ *flag.FlagSet) {}

func (*rateCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 2 {
		fmt.Fprintln(os.Stderr, "Error: expected <code> <rate>")
		return subcommands.ExitUsageError
	}
	rate, err := decimal.NewFromString(f.Arg(1))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid rate %q\n", f.Arg(1))
		return subcommands.ExitUsageError
	}
	return execute(ctx, func(ctx context.Context, c *grpc_adapter.Client) (any, error) {
		changed, err := c.SetExchangeRate(ctx, f.Arg(0), rate)
		return changedResult{Changed: changed}, err
	})
}

// ---------------------------------------------------------------------------
// reports

type balanceCmd struct {
	fund, currency string
}

func (*balanceCmd) Name() string     { return "balance" }
func (*balanceCmd) Synopsis() string { return "print the balance of a fund in one currency" }
func (*balanceCmd) Usage() string    { return "ledgerctl balance [-fund <id>] [-currency <code>]\n" }

func (p *balanceCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.fund, "fund", domain.DefaultFundID, "fund id")
	f.StringVar(&p.currency, "currency", domain.BaseCurrency.String(), "currency")
}

func (p *balanceCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return execute(ctx, func(ctx context.Context, c *grpc_adapter.Client) (any, error) {
		amount, err := c.GetFundBalance(ctx, p.fund, domain.NormalizeCurrency(p.currency))
		return domain.Balance{FundID: p.fund, Currency: domain.NormalizeCurrency(p.currency), Amount: amount}, err
	})
}

type summaryCmd struct {
	currency, typ, in, end string
	days                   int
}

func (*summaryCmd) Name() string     { return "summary" }
func (*summaryCmd) Synopsis() string { return "print totals, category breakdown and daily flow" }
func (*summaryCmd) Usage() string {
	return "ledgerctl summary [-currency <code>] [-type INCOME|EXPENSE] [-in <code>] [-end YYYY-MM-DD] [-days <n>]\n"
}

func (p *summaryCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.currency, "currency", "", "currency of the breakdown and daily flow")
	f.StringVar(&p.typ, "type", "", "category breakdown type (default EXPENSE)")
	f.StringVar(&p.in, "in", "", "currency to express the total balance in")
	f.StringVar(&p.end, "end", "", "last day of the daily flow")
	f.IntVar(&p.days, "days", usecase.DefaultFlowDays, "number of days of daily flow")
}

func (p *summaryCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	q := usecase.SummaryQuery{
		Currency: domain.NormalizeCurrency(p.currency),
		Type:     domain.TransactionType(strings.ToUpper(p.typ)),
		TotalIn:  domain.NormalizeCurrency(p.in),
		Days:     p.days,
	}
	if p.end != "" {
		end, err := domain.ParseDate(p.end)
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			return subcommands.ExitUsageError
		}
		q.End = end
	}
	return execute(ctx, func(ctx context.Context, c *grpc_adapter.Client) (any, error) {
		return c.GetSummary(ctx, q)
	})
}

type snapshotCmd struct{}

func (*snapshotCmd) Name() string             { return "snapshot" }
func (*snapshotCmd) Synopsis() string         { return "print the full ledger state" }
func (*snapshotCmd) Usage() string            { return "ledgerctl snapshot\n" }
func (*snapshotCmd) SetFlags(_ *flag.FlagSet) {}

func (*snapshotCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return execute(ctx, func(ctx context.Context, c *grpc_adapter.Client) (any, error) {
		return c.GetSnapshot(ctx)
	})
}

type quoteCmd struct {
	provider, country, amount, rate, fee, bonus string
	entry, refMVR, refBDT, adjust               string
}

func (*quoteCmd) Name() string     { return "quote" }
func (*quoteCmd) Synopsis() string { return "estimate a remittance payout" }
func (*quoteCmd) Usage() string {
	return `ledgerctl quote -country <name> -amount <n> -rate <n> [-bonus <pct>]
ledgerctl quote -provider MANUAL -amount <n> -rate <n> -fee <n> [-bonus <pct>]
ledgerctl quote -provider WU_GROSS -country <table> -amount <n> -entry USD|MVR|BDT [-ref-mvr <n>] [-ref-bdt <n>] [-bonus <pct>]
ledgerctl quote -provider BANK -amount <n> -entry USD|MVR|BDT -rate <bdt> -fee <usd> [-adjust <bdt>] [-ref-mvr <n>]
`
}

func (p *quoteCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.provider, "provider", string(usecase.ProviderWesternUnion), "WU, MANUAL, WU_GROSS or BANK")
	f.StringVar(&p.country, "country", "Bangladesh", "destination country (WU) or tier table (WU_GROSS)")
	f.StringVar(&p.amount, "amount", "0", "total amount in hand")
	f.StringVar(&p.rate, "rate", "1", "exchange rate")
	f.StringVar(&p.fee, "fee", "0", "fee (MANUAL and BANK)")
	f.StringVar(&p.bonus, "bonus", "0", "bonus percentage")
	f.StringVar(&p.entry, "entry", "USD", "currency of -amount (WU_GROSS and BANK)")
	f.StringVar(&p.refMVR, "ref-mvr", "0", "MVR per USD, 0 uses the default")
	f.StringVar(&p.refBDT, "ref-bdt", "0", "BDT per USD, 0 uses the default (WU_GROSS)")
	f.StringVar(&p.adjust, "adjust", "0", "BDT added to the payout (BANK)")
}

func (p *quoteCmd) request() (usecase.RemittanceRequest, error) {
	req := usecase.RemittanceRequest{
		Provider:      usecase.RemittanceProvider(p.provider),
		Country:       p.country,
		EntryCurrency: domain.NormalizeCurrency(p.entry),
	}
	for _, field := range []struct {
		name string
		raw  string
		dst  *decimal.Decimal
	}{
		{"amount", p.amount, &req.Amount},
		{"rate", p.rate, &req.Rate},
		{"fee", p.fee, &req.Fee},
		{"bonus", p.bonus, &req.BonusPct},
		{"ref-mvr", p.refMVR, &req.References.USDMVR},
		{"ref-bdt", p.refBDT, &req.References.USDBDT},
		{"adjust", p.adjust, &req.Adjustment},
	} {
		v, err := decimal.NewFromString(field.raw)
		if err != nil {
			return usecase.RemittanceRequest{}, fmt.Errorf("invalid %s %q: %w", field.name, field.raw, err)
		}
		*field.dst = v
	}
	return req, nil
}

func (p *quoteCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	req, err := p.request()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitUsageError
	}
	return execute(ctx, func(ctx context.Context, c *grpc_adapter.Client) (any, error) {
		return c.QuoteRemittance(ctx, req)
	})
}

// ---------------------------------------------------------------------------
// backup

type exportCmd struct {
	output string
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "write a JSON backup" }
func (*exportCmd) Usage() string    { return "ledgerctl export [-o <file>]\n" }

func (p *exportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.output, "o", "", "output file, defaults to stdout")
}

func (p *exportCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return execute(ctx, func(ctx context.Context, c *grpc_adapter.Client) (any, error) {
		data, err := c.ExportBackup(ctx)
		if err != nil {
			return nil, err
		}
		if p.output == "" {
			_, err = os.Stdout.Write(append(data, '\n'))
			return nil, err
		}
		return nil, os.WriteFile(p.output, data, 0o600)
	})
}

type importCmd struct{}

func (*importCmd) Name() string             { return "import" }
func (*importCmd) Synopsis() string         { return "restore a JSON backup; absent keys are left untouched" }
func (*importCmd) Usage() string            { return "ledgerctl import <file>\n" }
func (*importCmd) SetFlags(_ *flag.FlagSet) {}

func (*importCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	path, ok := oneArg(f, "backup file")
	if !ok {
		return subcommands.ExitUsageError
	}
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}
	return execute(ctx, func(ctx context.Context, c *grpc_adapter.Client) (any, error) {
		return nil, c.ImportBackup(ctx, data)
	})
}

type verifyCmd struct {
	rebuild bool
}

func (*verifyCmd) Name() string     { return "verify" }
func (*verifyCmd) Synopsis() string { return "compare stored balances against the transactions" }
func (*verifyCmd) Usage() string    { return "ledgerctl verify [-rebuild]\n" }

func (p *verifyCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&p.rebuild, "rebuild", false, "replace stored balances with the recomputed ones")
}

func (p *verifyCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return execute(ctx, func(ctx context.Context, c *grpc_adapter.Client) (any, error) {
		if p.rebuild {
			return c.RebuildBalances(ctx)
		}
		return c.Verify(ctx)
	})
}

// parseCurrencies 解析逗號分隔的幣別
func parseCurrencies(s string) []domain.Currency {
	var out []domain.Currency
	for _, part := range strings.Split(s, ",") {
		if c := domain.NormalizeCurrency(part); c != "" {
			out = append(out, c)
		}
	}
	return out
}
