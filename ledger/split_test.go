package ledger

import (
	"context"
	"errors"
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/hledgerkit/hledgerkit/journal"
)

func TestSplitTwoForOne(t *testing.T) {
	ctx := context.Background()

	newSession := func() *Session {
		source := newMemorySource()
		source.add("assets:broker", "AAA", day(2020, 1, 1), "100", "10")
		return NewSession(source, testAccounts)
	}

	t.Run("sell leg then buy leg", func(t *testing.T) {
		session := newSession()

		tx, err := session.SplitLeg(ctx, day(2021, 2, 1), "AAA", qty("-100"))
		assert.NoError(t, err)
		assert.Zero(t, tx)
		assert.True(t, session.PendingSplit("AAA"))

		tx, err = session.SplitLeg(ctx, day(2021, 2, 1), "AAA", qty("200"))
		assert.NoError(t, err)
		assert.Equal(t, []string{
			"assets:broker:aaa:20200101 -100.000000 AAA @ $10.000000",
			"assets:broker:aaa:20200101 200.000000 AAA @ $5.000000",
		}, postingStrings(tx))
		assert.True(t, journal.Balanced(tx, journal.DefaultTolerance))
		assert.False(t, session.PendingSplit("AAA"))

		lots, err := session.Lots(ctx, "AAA")
		assert.NoError(t, err)
		assert.Equal(t, "200", lots[0].Quantity.String())
		assert.Equal(t, "5", lots[0].UnitCost.String())
	})

	t.Run("buy leg then sell leg", func(t *testing.T) {
		session := newSession()

		tx, err := session.SplitLeg(ctx, day(2021, 2, 1), "AAA", qty("200"))
		assert.NoError(t, err)
		assert.Zero(t, tx)

		tx, err = session.SplitLeg(ctx, day(2021, 2, 1), "AAA", qty("-100"))
		assert.NoError(t, err)
		assert.Equal(t, 2, len(tx.Postings))

		lots, err := session.Lots(ctx, "AAA")
		assert.NoError(t, err)
		assert.Equal(t, "200", lots[0].Quantity.String())
		assert.Equal(t, "5", lots[0].UnitCost.String())
	})
}

func TestSplitRoundTrip(t *testing.T) {
	ctx := context.Background()
	source := newMemorySource()
	source.add("assets:broker", "AAA", day(2020, 1, 1), "100", "10")
	session := NewSession(source, testAccounts)

	_, err := session.SplitLeg(ctx, day(2021, 2, 1), "AAA", qty("-100"))
	assert.NoError(t, err)
	_, err = session.SplitLeg(ctx, day(2021, 2, 1), "AAA", qty("200"))
	assert.NoError(t, err)

	_, err = session.SplitLeg(ctx, day(2021, 3, 1), "AAA", qty("-200"))
	assert.NoError(t, err)
	_, err = session.SplitLeg(ctx, day(2021, 3, 1), "AAA", qty("100"))
	assert.NoError(t, err)

	lots, err := session.Lots(ctx, "AAA")
	assert.NoError(t, err)
	assert.Equal(t, "100", lots[0].Quantity.String())
	assert.Equal(t, "10", lots[0].UnitCost.String())
}

func TestSplitRescalesEveryLot(t *testing.T) {
	ctx := context.Background()
	source := newMemorySource()
	source.add("assets:broker", "AAA", day(2020, 1, 1), "30", "9")
	source.add("assets:broker", "AAA", day(2020, 6, 1), "70", "12")
	session := NewSession(source, testAccounts)

	_, err := session.SplitLeg(ctx, day(2021, 2, 1), "AAA", qty("-100"))
	assert.NoError(t, err)
	tx, err := session.SplitLeg(ctx, day(2021, 2, 1), "AAA", qty("200"))
	assert.NoError(t, err)
	assert.Equal(t, 4, len(tx.Postings))

	lots, err := session.Lots(ctx, "AAA")
	assert.NoError(t, err)
	assert.Equal(t, "60", lots[0].Quantity.String())
	assert.Equal(t, "4.5", lots[0].UnitCost.String())
	assert.Equal(t, "140", lots[1].Quantity.String())
	assert.Equal(t, "6", lots[1].UnitCost.String())
}

func TestSplitErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("zero net position is ambiguous", func(t *testing.T) {
		source := newMemorySource()
		source.add("assets:broker", "AAA", day(2020, 1, 1), "0", "10")
		session := NewSession(source, testAccounts)

		_, err := session.SplitLeg(ctx, day(2021, 2, 1), "AAA", qty("-100"))
		var ambiguous *AmbiguousSplitError
		assert.True(t, errors.As(err, &ambiguous))
	})

	t.Run("zero-quantity leg cannot resolve", func(t *testing.T) {
		source := newMemorySource()
		source.add("assets:broker", "AAA", day(2020, 1, 1), "100", "10")
		session := NewSession(source, testAccounts)

		tx, err := session.SplitLeg(ctx, day(2021, 2, 1), "AAA", qty("0"))
		assert.NoError(t, err)
		assert.Zero(t, tx)

		_, err = session.SplitLeg(ctx, day(2021, 2, 1), "AAA", qty("200"))
		var uninitialized *SplitNotInitializedError
		assert.True(t, errors.As(err, &uninitialized))

		lots, err := session.Lots(ctx, "AAA")
		assert.NoError(t, err)
		assert.Equal(t, "100", lots[0].Quantity.String())
		assert.Equal(t, "10", lots[0].UnitCost.String())
	})

	t.Run("missing wiring", func(t *testing.T) {
		processor := NewSplitProcessor(nil, SplitAccounts{})
		_, err := processor.Process(ctx, day(2021, 2, 1), "AAA", qty("-100"))
		var uninitialized *SplitNotInitializedError
		assert.True(t, errors.As(err, &uninitialized))
	})
}
