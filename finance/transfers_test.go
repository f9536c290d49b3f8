package finance_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/finance-ledger/finance"
	"github.com/warp/finance-ledger/ledger"
)

func transferCmd(source, dest ledger.AccountID, amount string) finance.TransferCommand {
	return finance.TransferCommand{
		SourceAccountID:      source,
		DestinationAccountID: dest,
		Amount:               decimal.RequireFromString(amount),
		Date:                 jan15(),
		Description:          "move",
	}
}

// =============================================================================
// LINKED PAIR TESTS
// =============================================================================

func TestTransfers_Create_LinkedPair(t *testing.T) {
	// GIVEN: Two accounts owned by the same user
	// WHEN: Transferring 100 from source to destination
	// THEN: Source leg is -100, destination leg is +100, both typed
	//       transfer and cross-linked

	s := newServices(t)
	ctx := context.Background()

	source := mustAccount(t, s, alice, "Checking", "500")
	dest := mustAccount(t, s, alice, "Savings", "0")

	result, err := s.transfers.Create(ctx, alice, transferCmd(source.ID, dest.ID, "100.00"))
	require.NoError(t, err)
	require.NotNil(t, result.Destination)

	assert.True(t, decimal.RequireFromString("-100").Equal(result.Source.Amount), "source got %s", result.Source.Amount)
	assert.True(t, decimal.RequireFromString("100").Equal(result.Destination.Amount))
	assert.Equal(t, ledger.TypeTransfer, result.Source.Type)
	assert.Equal(t, ledger.TypeTransfer, result.Destination.Type)
	assert.Equal(t, result.Destination.ID, result.Source.RelatedTransactionID)
	assert.Equal(t, result.Source.ID, result.Destination.RelatedTransactionID)
}

func TestTransfers_Create_BalancesMove(t *testing.T) {
	// GIVEN: Checking with 500, Savings with 0
	// WHEN: Transferring 100
	// THEN: Checking reads 400, Savings reads 100, total unchanged

	s := newServices(t)
	ctx := context.Background()

	source := mustAccount(t, s, alice, "Checking", "500")
	dest := mustAccount(t, s, alice, "Savings", "0")

	_, err := s.transfers.Create(ctx, alice, transferCmd(source.ID, dest.ID, "100.00"))
	require.NoError(t, err)

	sourceBalance, err := s.accounts.CurrentBalance(ctx, alice, source.ID)
	require.NoError(t, err)
	destBalance, err := s.accounts.CurrentBalance(ctx, alice, dest.ID)
	require.NoError(t, err)

	assert.True(t, decimal.RequireFromString("400").Equal(sourceBalance), "source got %s", sourceBalance)
	assert.True(t, decimal.RequireFromString("100").Equal(destBalance), "dest got %s", destBalance)

	total, err := s.reports.TotalBalance(ctx, alice)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("500").Equal(total), "transfer must not create or destroy money")
}

func TestTransfers_Create_SameAccount_Rejected(t *testing.T) {
	s := newServices(t)
	account := mustAccount(t, s, alice, "Main", "100")

	_, err := s.transfers.Create(context.Background(), alice, transferCmd(account.ID, account.ID, "10"))
	assert.True(t, ledger.IsValidation(err))

	var verr *ledger.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "SAME_ACCOUNT", verr.Code)
}

func TestTransfers_Create_ForeignDestination_NotFound(t *testing.T) {
	// GIVEN: A destination account owned by another user
	// WHEN: Transferring into it
	// THEN: Not found, and nothing is written

	s := newServices(t)
	ctx := context.Background()

	source := mustAccount(t, s, alice, "Checking", "100")
	dest := mustAccount(t, s, bob, "Bob's", "0")

	_, err := s.transfers.Create(ctx, alice, transferCmd(source.ID, dest.ID, "10"))
	assert.True(t, ledger.IsNotFound(err))

	txs, err := s.transactions.List(ctx, alice, ledger.TransactionFilter{Types: []ledger.TransactionType{ledger.TypeTransfer}})
	require.NoError(t, err)
	assert.Empty(t, txs)
}

// =============================================================================
// SINGLE-ENTRY (EXTERNAL) TESTS
// =============================================================================

func TestTransfers_Create_NoDestination_PositiveIsRevenue(t *testing.T) {
	// GIVEN: No destination account
	// WHEN: Transferring +50
	// THEN: One revenue entry for +50 on the source account, no link

	s := newServices(t)
	source := mustAccount(t, s, alice, "Main", "0")

	result, err := s.transfers.Create(context.Background(), alice, transferCmd(source.ID, "", "50.00"))
	require.NoError(t, err)
	assert.Nil(t, result.Destination)
	assert.Equal(t, ledger.TypeRevenue, result.Source.Type)
	assert.True(t, decimal.RequireFromString("50").Equal(result.Source.Amount))
	assert.Empty(t, result.Source.RelatedTransactionID)
}

func TestTransfers_Create_NoDestination_NegativeIsExpense(t *testing.T) {
	// The amount is stored as given, sign included.

	s := newServices(t)
	source := mustAccount(t, s, alice, "Main", "0")

	result, err := s.transfers.Create(context.Background(), alice, transferCmd(source.ID, "", "-50.00"))
	require.NoError(t, err)
	assert.Nil(t, result.Destination)
	assert.Equal(t, ledger.TypeExpense, result.Source.Type)
	assert.True(t, decimal.RequireFromString("-50").Equal(result.Source.Amount))
}

// =============================================================================
// COMPENSATING ROLLBACK TESTS
// =============================================================================

func TestTransfers_Rollback_DestinationInsertFails(t *testing.T) {
	// GIVEN: The destination leg insert fails
	// WHEN: Creating a transfer
	// THEN: The already-written source leg is deleted and the store
	//       failure surfaces to the caller

	s := newServices(t)
	ctx := context.Background()

	source := mustAccount(t, s, alice, "Checking", "500")
	dest := mustAccount(t, s, alice, "Savings", "0")

	inserts := 0
	s.store.BeforeInsertTransaction = func(tx *ledger.Transaction) error {
		if tx.Type != ledger.TypeTransfer {
			return nil
		}
		inserts++
		if inserts == 2 {
			return errors.New("disk full")
		}
		return nil
	}

	_, err := s.transfers.Create(ctx, alice, transferCmd(source.ID, dest.ID, "100.00"))
	assert.True(t, ledger.IsStoreFailure(err))

	s.store.BeforeInsertTransaction = nil
	txs, err := s.transactions.List(ctx, alice, ledger.TransactionFilter{Types: []ledger.TransactionType{ledger.TypeTransfer}})
	require.NoError(t, err)
	assert.Empty(t, txs, "rollback must remove the orphaned source leg")
}

func TestTransfers_Rollback_LinkFails(t *testing.T) {
	// GIVEN: Both legs insert but the back-link update fails
	// WHEN: Creating a transfer
	// THEN: Destination is deleted, then source; ledger is clean

	s := newServices(t)
	ctx := context.Background()

	source := mustAccount(t, s, alice, "Checking", "500")
	dest := mustAccount(t, s, alice, "Savings", "0")

	s.store.BeforeLinkTransaction = func(id, relatedID ledger.TransactionID) error {
		return errors.New("connection reset")
	}

	_, err := s.transfers.Create(ctx, alice, transferCmd(source.ID, dest.ID, "100.00"))
	assert.True(t, ledger.IsStoreFailure(err))

	s.store.BeforeLinkTransaction = nil
	txs, err := s.transactions.List(ctx, alice, ledger.TransactionFilter{Types: []ledger.TransactionType{ledger.TypeTransfer}})
	require.NoError(t, err)
	assert.Empty(t, txs, "rollback must remove both legs")
}

func TestTransfers_Rollback_DeleteAlsoFails_OriginalErrorSurfaces(t *testing.T) {
	// GIVEN: The link fails AND the compensating deletes fail
	// WHEN: Creating a transfer
	// THEN: The caller still sees the link failure; rollback failures
	//       are logged, never propagated

	s := newServices(t)
	ctx := context.Background()

	source := mustAccount(t, s, alice, "Checking", "500")
	dest := mustAccount(t, s, alice, "Savings", "0")

	linkErr := errors.New("connection reset")
	s.store.BeforeLinkTransaction = func(id, relatedID ledger.TransactionID) error {
		return linkErr
	}
	s.store.BeforeDeleteTransaction = func(id ledger.TransactionID) error {
		return errors.New("still down")
	}

	_, err := s.transfers.Create(ctx, alice, transferCmd(source.ID, dest.ID, "100.00"))
	require.Error(t, err)
	assert.ErrorIs(t, err, linkErr, "the failure that started the rollback wins")
}

// =============================================================================
// LEG DELETION TESTS
// =============================================================================

func TestTransfers_DeleteOneLeg_PartnerSurvives(t *testing.T) {
	// GIVEN: A linked transfer pair
	// WHEN: Deleting the source leg
	// THEN: The destination leg remains, its reference now dangling,
	//       and reads resolve the missing partner to nil

	s := newServices(t)
	ctx := context.Background()

	source := mustAccount(t, s, alice, "Checking", "500")
	dest := mustAccount(t, s, alice, "Savings", "0")

	result, err := s.transfers.Create(ctx, alice, transferCmd(source.ID, dest.ID, "100.00"))
	require.NoError(t, err)

	deleted, err := s.transactions.Delete(ctx, alice, result.Source.ID)
	require.NoError(t, err)
	require.True(t, deleted)

	partner, err := s.transactions.GetByID(ctx, alice, result.Destination.ID)
	require.NoError(t, err)
	require.NotNil(t, partner)
	assert.Equal(t, result.Source.ID, partner.RelatedTransactionID, "dangling reference is kept as data")
	assert.Nil(t, partner.Related, "missing partner resolves to nil")
}
