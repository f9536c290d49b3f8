package finance_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/finance-ledger/ledger"
)

// =============================================================================
// ACCOUNT CREATION TESTS
// =============================================================================

func TestAccounts_Create_SeedsOpeningTransaction(t *testing.T) {
	// GIVEN: A new account with a positive initial balance
	// WHEN: Creating it
	// THEN: A revenue transaction carrying the opening amount exists,
	//       and the reported balance equals the initial balance

	s := newServices(t)
	ctx := context.Background()

	account := mustAccount(t, s, alice, "Checking", "250.00")
	assert.True(t, decimal.RequireFromString("250").Equal(account.CurrentBalance))

	txs, err := s.transactions.List(ctx, alice, ledger.TransactionFilter{AccountID: account.ID})
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, ledger.TypeRevenue, txs[0].Type)
	assert.Equal(t, "Initial balance", txs[0].Description)
	assert.True(t, decimal.RequireFromString("250").Equal(txs[0].Amount))
}

func TestAccounts_Create_ZeroBalance_NoSeed(t *testing.T) {
	// GIVEN: A new account with zero initial balance
	// WHEN: Creating it
	// THEN: No seed transaction is written

	s := newServices(t)
	account := mustAccount(t, s, alice, "Empty", "0")

	txs, err := s.transactions.List(context.Background(), alice, ledger.TransactionFilter{AccountID: account.ID})
	require.NoError(t, err)
	assert.Empty(t, txs)
}

func TestAccounts_Create_NegativeBalance_Rejected(t *testing.T) {
	s := newServices(t)

	_, err := s.accounts.Create(context.Background(), alice, "Debt", decimal.RequireFromString("-10"))
	assert.True(t, ledger.IsValidation(err))

	var verr *ledger.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "NEGATIVE_INITIAL_BALANCE", verr.Code)
}

func TestAccounts_Create_BlankName_Rejected(t *testing.T) {
	s := newServices(t)

	_, err := s.accounts.Create(context.Background(), alice, "   ", decimal.Zero)
	assert.True(t, ledger.IsValidation(err))
}

// =============================================================================
// DERIVED BALANCE TESTS
// =============================================================================

func TestAccounts_Balance_DerivedFromTransactions(t *testing.T) {
	// GIVEN: An account seeded with 100, then a 30 expense and a 15 revenue
	// WHEN: Reading the account
	// THEN: Balance is 100 - 30 + 15 = 85, computed from the rows alone

	s := newServices(t)
	ctx := context.Background()

	account := mustAccount(t, s, alice, "Main", "100.00")
	mustExpense(t, s, alice, account.ID, "", "30.00", jan15())

	_, err := s.transactions.Create(ctx, alice, newRevenue(account.ID, "15.00"))
	require.NoError(t, err)

	got, err := s.accounts.GetByID(ctx, alice, account.ID)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("85").Equal(got.CurrentBalance), "got %s", got.CurrentBalance)

	balance, err := s.accounts.CurrentBalance(ctx, alice, account.ID)
	require.NoError(t, err)
	assert.True(t, got.CurrentBalance.Equal(balance))
}

func TestAccounts_GetByID_OtherUsersAccount_NotFound(t *testing.T) {
	// GIVEN: An account owned by alice
	// WHEN: Bob asks for it by id
	// THEN: It behaves like a missing account, not a permission error

	s := newServices(t)
	account := mustAccount(t, s, alice, "Private", "50")

	got, err := s.accounts.GetByID(context.Background(), bob, account.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

// =============================================================================
// UPDATE / DELETE TESTS
// =============================================================================

func TestAccounts_Update_RenameOnly(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()

	account := mustAccount(t, s, alice, "Old Name", "20")
	got, err := s.accounts.Update(ctx, alice, account.ID, "New Name")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "New Name", got.Name)
	// initial balance untouched by rename
	assert.True(t, decimal.RequireFromString("20").Equal(got.InitialBalance))
}

func TestAccounts_Update_Missing_ReturnsNil(t *testing.T) {
	s := newServices(t)

	got, err := s.accounts.Update(context.Background(), alice, "no-such-id", "Name")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestAccounts_Delete_CascadesTransactions(t *testing.T) {
	// GIVEN: An account with a seed transaction and an expense
	// WHEN: Deleting the account
	// THEN: Its transactions are gone too

	s := newServices(t)
	ctx := context.Background()

	account := mustAccount(t, s, alice, "Doomed", "100")
	mustExpense(t, s, alice, account.ID, "", "5.00", jan15())

	deleted, err := s.accounts.Delete(ctx, alice, account.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	txs, err := s.transactions.List(ctx, alice, ledger.TransactionFilter{AccountID: account.ID})
	require.NoError(t, err)
	assert.Empty(t, txs)
}

func TestAccounts_Delete_Missing_ReturnsFalse(t *testing.T) {
	s := newServices(t)

	deleted, err := s.accounts.Delete(context.Background(), alice, "no-such-id")
	require.NoError(t, err)
	assert.False(t, deleted)
}
