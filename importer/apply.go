package importer

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/hledgerkit/hledgerkit/journal"
	"github.com/hledgerkit/hledgerkit/ledger"
)

// Apply feeds events through the ledger session in order and returns
// the resulting transactions. Events must already be sorted by date.
// Some events produce no transaction: cash-commodity trades only move
// the cash balance, and the first leg of a split waits for its
// counterpart.
func Apply(ctx context.Context, session *ledger.Session, accounts Accounts, events []Event) ([]*journal.Transaction, error) {
	var transactions []*journal.Transaction
	for _, e := range events {
		tx, err := applyOne(ctx, session, accounts, e)
		if err != nil {
			return nil, fmt.Errorf("applying %s %q on %s: %w", e.Kind, e.Description, e.Date.Format("2006-01-02"), err)
		}
		if tx != nil {
			transactions = append(transactions, tx)
		}
	}
	return transactions, nil
}

func applyOne(ctx context.Context, session *ledger.Session, accounts Accounts, e Event) (*journal.Transaction, error) {
	switch e.Kind {
	case KindTrade:
		return applyTrade(ctx, session, accounts, e)
	case KindRSU:
		return applyRSU(ctx, session, e, accounts)
	case KindSplit:
		tx, err := session.SplitLeg(ctx, e.Date, e.Symbol, e.Quantity)
		if err != nil || tx == nil {
			return nil, err
		}
		return decorate(tx, e), nil
	case KindTransfer:
		return decorate(cashPair(e.Date, accounts.Cash, e.Amount, accounts.Transfer), e), nil
	case KindDividend:
		account := accounts.Dividends
		if e.Symbol != "" {
			account += ":" + ledger.AccountSegment(e.Symbol)
		}
		return decorate(cashPair(e.Date, accounts.Cash, e.Amount, account), e), nil
	case KindInterest:
		return decorate(cashPair(e.Date, accounts.Cash, e.Amount, accounts.Interest), e), nil
	case KindFee:
		return decorate(cashPair(e.Date, accounts.Cash, e.Amount, accounts.Fees), e), nil
	}
	return nil, fmt.Errorf("unhandled event kind %d", e.Kind)
}

func applyTrade(ctx context.Context, session *ledger.Session, accounts Accounts, e Event) (*journal.Transaction, error) {
	if accounts.IsCashCommodity(e.Symbol) {
		// money-market sweeps only move the cash balance
		if e.Quantity.IsPositive() && !e.Amount.IsZero() {
			unitCost := e.Amount.Div(e.Quantity).Abs()
			if _, err := session.AddLot(ctx, e.Symbol, e.Date, e.Quantity, unitCost); err != nil {
				log.Debug().Err(err).Str("symbol", e.Symbol).Msg("cash commodity lot not recorded")
			}
		}
		return nil, nil
	}

	delta := ledger.Aggregate(e.Quantity)
	if len(e.Lots) > 0 {
		delta = ledger.SpecificLots(e.Lots...)
	} else if e.CloseOut {
		quantity, err := closeOutQuantity(ctx, session, e)
		if err != nil {
			return nil, err
		}
		delta = ledger.Aggregate(quantity)
	}

	tx, err := session.Trade(ctx, e.Date, e.Symbol, delta, e.Amount)
	if err != nil {
		return nil, err
	}
	journal.Plug(tx, accounts.Fees, journal.DefaultTolerance)
	return decorate(tx, e), nil
}

// closeOutQuantity resolves the direction of a close-out (an expired
// option) from the position currently held: the trade runs against the
// first lot still holding quantity.
func closeOutQuantity(ctx context.Context, session *ledger.Session, e Event) (decimal.Decimal, error) {
	lots, err := session.Lots(ctx, e.Symbol)
	if err != nil {
		return decimal.Zero, err
	}
	for _, lot := range lots {
		if !lot.Quantity.IsZero() {
			if lot.Quantity.Sign() > 0 {
				return e.Quantity.Abs().Neg(), nil
			}
			return e.Quantity.Abs(), nil
		}
	}
	return decimal.Zero, fmt.Errorf("no open %s position to close out", e.Symbol)
}

func applyRSU(ctx context.Context, session *ledger.Session, e Event, accounts Accounts) (*journal.Transaction, error) {
	lot, err := session.AddLot(ctx, e.Symbol, e.Date, e.Quantity, e.Price)
	if err != nil {
		return nil, err
	}

	total := journal.Dollars(e.Quantity.Mul(e.Price).Neg())
	units := journal.Units(ledger.MapSymbol(e.Symbol), e.Quantity)
	tx := &journal.Transaction{
		Date: e.Date,
		Postings: []journal.Posting{
			{Account: accounts.RSU, Amount: &total},
			{Account: lot.SubAccount(), Amount: &units, Price: journal.UnitPriceOf(e.Price)},
		},
	}
	return decorate(tx, e), nil
}

// cashPair builds the two-posting shape shared by transfers,
// dividends, interest, and fees: cash moves by amount, the counter
// account takes the other side.
func cashPair(date time.Time, cashAccount string, amount decimal.Decimal, counterAccount string) *journal.Transaction {
	cash := journal.Dollars(amount)
	counter := journal.Dollars(amount.Neg())
	return &journal.Transaction{
		Date: date,
		Postings: []journal.Posting{
			{Account: cashAccount, Amount: &cash},
			{Account: counterAccount, Amount: &counter},
		},
	}
}

func decorate(tx *journal.Transaction, e Event) *journal.Transaction {
	tx.Description = e.Description
	tx.Cleared = true
	tx.Tags = e.Tags
	return tx
}
