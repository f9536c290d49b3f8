/*
Package sqlite provides the SQLite-backed implementation of ledger.Store.

PURPOSE:
  Production persistence for the finance ledger. The same patterns apply
  to PostgreSQL with only minor SQL dialect differences.

KEY TABLES:
  accounts:     money containers, one owner each
  categories:   per-user labels, name unique per user
  transactions: the ledger itself; nullable category and self-referential
                related_transaction_id, mandatory account reference
  budgets:      monthly plans, unique per (user, category, month)

CONVENTIONS:
  - Every query predicate includes user_id: a row owned by another user
    scans exactly like a missing row.
  - Monetary values are INTEGER minor units.
  - Timestamps are RFC3339 UTC strings, budget months are YYYY-MM-DD;
    lexicographic order equals time order.
  - Lookup misses return (nil, nil); affected-row counts back the
    (bool, error) update/delete results.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. Multi-row sequences (the
  transfer's 2-3 writes) are NOT wrapped in a database transaction here;
  the orchestrator compensates with deletes on failure.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  store, err := sqlite.New("./data/ledger.db")  // or ":memory:"
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - ledger/store.go: Interface definitions
  - ledger/store/memory.go: In-memory implementation for tests
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/warp/finance-ledger/ledger"
)

// Store implements ledger.Store on SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New opens (or creates) the database at dbPath and migrates the schema.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS accounts (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		name TEXT NOT NULL,
		initial_balance INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_accounts_user
		ON accounts(user_id);

	CREATE TABLE IF NOT EXISTS categories (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		name TEXT NOT NULL,
		is_revenue INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_categories_user
		ON categories(user_id);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_categories_user_name
		ON categories(user_id, name);

	CREATE TABLE IF NOT EXISTS transactions (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		account_id TEXT NOT NULL REFERENCES accounts(id),
		amount INTEGER NOT NULL,
		category_id TEXT REFERENCES categories(id),
		description TEXT,
		transaction_date TEXT NOT NULL,
		transaction_type TEXT NOT NULL,
		related_transaction_id TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_transactions_user_date
		ON transactions(user_id, transaction_date DESC);
	CREATE INDEX IF NOT EXISTS idx_transactions_user_account
		ON transactions(user_id, account_id);
	CREATE INDEX IF NOT EXISTS idx_transactions_user_category
		ON transactions(user_id, category_id)
		WHERE category_id IS NOT NULL;

	CREATE TABLE IF NOT EXISTS budgets (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		category_id TEXT NOT NULL REFERENCES categories(id),
		budget_date TEXT NOT NULL,
		planned_amount INTEGER NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_budgets_user_category_month
		ON budgets(user_id, category_id, budget_date);
	`

	// related_transaction_id carries no foreign key on purpose: deleting
	// one leg of a linked transfer leaves its partner in place with a
	// dangling reference, which readers treat as "no counterpart".
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// ACCOUNTS (ledger.AccountStore)
// =============================================================================

func (s *Store) InsertAccount(ctx context.Context, account *ledger.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO accounts (id, user_id, name, initial_balance, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		account.ID, account.UserID, account.Name, account.InitialBalance,
		formatTime(account.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert account: %w", err)
	}
	return nil
}

func (s *Store) GetAccount(ctx context.Context, userID ledger.UserID, id ledger.AccountID) (*ledger.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, name, initial_balance, created_at
		FROM accounts WHERE id = ? AND user_id = ?`,
		id, userID,
	)

	account, err := scanAccount(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return account, nil
}

func (s *Store) ListAccounts(ctx context.Context, userID ledger.UserID) ([]ledger.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, name, initial_balance, created_at
		FROM accounts WHERE user_id = ?
		ORDER BY created_at ASC, id ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer rows.Close()

	var accounts []ledger.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, *account)
	}
	return accounts, rows.Err()
}

func (s *Store) UpdateAccountName(ctx context.Context, userID ledger.UserID, id ledger.AccountID, name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.ExecContext(ctx,
		`UPDATE accounts SET name = ? WHERE id = ? AND user_id = ?`,
		name, id, userID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to update account: %w", err)
	}
	return affected(result)
}

func (s *Store) DeleteAccount(ctx context.Context, userID ledger.UserID, id ledger.AccountID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.ExecContext(ctx,
		`DELETE FROM accounts WHERE id = ? AND user_id = ?`,
		id, userID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to delete account: %w", err)
	}
	return affected(result)
}

// =============================================================================
// CATEGORIES (ledger.CategoryStore)
// =============================================================================

func (s *Store) InsertCategory(ctx context.Context, category *ledger.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO categories (id, user_id, name, is_revenue, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		category.ID, category.UserID, category.Name, category.IsRevenue,
		formatTime(category.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert category: %w", err)
	}
	return nil
}

func (s *Store) GetCategory(ctx context.Context, userID ledger.UserID, id ledger.CategoryID) (*ledger.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, name, is_revenue, created_at
		FROM categories WHERE id = ? AND user_id = ?`,
		id, userID,
	)

	category, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return category, nil
}

func (s *Store) GetCategoryByName(ctx context.Context, userID ledger.UserID, name string) (*ledger.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, name, is_revenue, created_at
		FROM categories WHERE user_id = ? AND name = ?`,
		userID, name,
	)

	category, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return category, nil
}

func (s *Store) ListCategories(ctx context.Context, userID ledger.UserID) ([]ledger.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, name, is_revenue, created_at
		FROM categories WHERE user_id = ?
		ORDER BY name ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	var categories []ledger.Category
	for rows.Next() {
		category, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, *category)
	}
	return categories, rows.Err()
}

func (s *Store) UpdateCategoryName(ctx context.Context, userID ledger.UserID, id ledger.CategoryID, name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.ExecContext(ctx,
		`UPDATE categories SET name = ? WHERE id = ? AND user_id = ?`,
		name, id, userID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to update category: %w", err)
	}
	return affected(result)
}

func (s *Store) DeleteCategory(ctx context.Context, userID ledger.UserID, id ledger.CategoryID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.ExecContext(ctx,
		`DELETE FROM categories WHERE id = ? AND user_id = ?`,
		id, userID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to delete category: %w", err)
	}
	return affected(result)
}

// =============================================================================
// TRANSACTIONS (ledger.TransactionStore)
// =============================================================================

const transactionColumns = `id, user_id, account_id, amount, category_id,
	description, transaction_date, transaction_type, related_transaction_id, created_at`

func (s *Store) InsertTransaction(ctx context.Context, tx *ledger.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO transactions
		(id, user_id, account_id, amount, category_id, description,
		 transaction_date, transaction_type, related_transaction_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		tx.ID, tx.UserID, tx.AccountID, tx.Amount,
		nullString(string(tx.CategoryID)),
		nullString(tx.Description),
		formatTime(tx.Date),
		tx.Type,
		nullString(string(tx.RelatedTransactionID)),
		formatTime(tx.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}
	return nil
}

func (s *Store) GetTransaction(ctx context.Context, userID ledger.UserID, id ledger.TransactionID) (*ledger.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions WHERE id = ? AND user_id = ?`,
		id, userID,
	)

	tx, err := scanTransaction(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return tx, nil
}

func (s *Store) ListTransactions(ctx context.Context, userID ledger.UserID, filter ledger.TransactionFilter) ([]ledger.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE user_id = ?`
	args := []any{userID}

	if filter.AccountID != "" {
		query += ` AND account_id = ?`
		args = append(args, filter.AccountID)
	}
	if filter.CategoryID != "" {
		query += ` AND category_id = ?`
		args = append(args, filter.CategoryID)
	}
	if len(filter.Types) > 0 {
		query += ` AND transaction_type IN (?` + strings.Repeat(",?", len(filter.Types)-1) + `)`
		for _, t := range filter.Types {
			args = append(args, t)
		}
	}
	if filter.From != nil {
		query += ` AND transaction_date >= ?`
		args = append(args, formatTime(*filter.From))
	}
	if filter.To != nil {
		query += ` AND transaction_date <= ?`
		args = append(args, formatTime(*filter.To))
	}
	query += ` ORDER BY transaction_date DESC, created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var txs []ledger.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txs = append(txs, *tx)
	}
	return txs, rows.Err()
}

func (s *Store) UpdateTransaction(ctx context.Context, tx *ledger.Transaction) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.ExecContext(ctx, `
		UPDATE transactions
		SET amount = ?, category_id = ?, description = ?, transaction_date = ?
		WHERE id = ? AND user_id = ?`,
		tx.Amount,
		nullString(string(tx.CategoryID)),
		nullString(tx.Description),
		formatTime(tx.Date),
		tx.ID, tx.UserID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to update transaction: %w", err)
	}
	return affected(result)
}

func (s *Store) DeleteTransaction(ctx context.Context, userID ledger.UserID, id ledger.TransactionID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.ExecContext(ctx,
		`DELETE FROM transactions WHERE id = ? AND user_id = ?`,
		id, userID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to delete transaction: %w", err)
	}
	return affected(result)
}

func (s *Store) DeleteTransactionsByAccount(ctx context.Context, userID ledger.UserID, accountID ledger.AccountID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`DELETE FROM transactions WHERE user_id = ? AND account_id = ?`,
		userID, accountID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete account transactions: %w", err)
	}
	return nil
}

func (s *Store) LinkTransaction(ctx context.Context, userID ledger.UserID, id, relatedID ledger.TransactionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		UPDATE transactions SET related_transaction_id = ?
		WHERE id = ? AND user_id = ?`,
		relatedID, id, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to link transactions: %w", err)
	}
	return nil
}

func (s *Store) CountTransactionsByCategory(ctx context.Context, userID ledger.UserID, categoryID ledger.CategoryID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM transactions WHERE user_id = ? AND category_id = ?`,
		userID, categoryID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count category transactions: %w", err)
	}
	return count, nil
}

// =============================================================================
// BUDGETS (ledger.BudgetStore)
// =============================================================================

func (s *Store) InsertBudget(ctx context.Context, budget *ledger.Budget) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO budgets (id, user_id, category_id, budget_date, planned_amount, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		budget.ID, budget.UserID, budget.CategoryID,
		formatDate(budget.Month), budget.PlannedAmount,
		formatTime(budget.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert budget: %w", err)
	}
	return nil
}

func (s *Store) GetBudget(ctx context.Context, userID ledger.UserID, id ledger.BudgetID) (*ledger.Budget, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, category_id, budget_date, planned_amount, created_at
		FROM budgets WHERE id = ? AND user_id = ?`,
		id, userID,
	)

	budget, err := scanBudget(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return budget, nil
}

func (s *Store) GetBudgetForMonth(ctx context.Context, userID ledger.UserID, categoryID ledger.CategoryID, month time.Time) (*ledger.Budget, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, category_id, budget_date, planned_amount, created_at
		FROM budgets WHERE user_id = ? AND category_id = ? AND budget_date = ?`,
		userID, categoryID, formatDate(month),
	)

	budget, err := scanBudget(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return budget, nil
}

func (s *Store) ListBudgets(ctx context.Context, userID ledger.UserID, from, to time.Time) ([]ledger.Budget, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, category_id, budget_date, planned_amount, created_at
		FROM budgets
		WHERE user_id = ? AND budget_date >= ? AND budget_date <= ?
		ORDER BY budget_date ASC`,
		userID, formatDate(from), formatDate(to),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query budgets: %w", err)
	}
	defer rows.Close()

	var budgets []ledger.Budget
	for rows.Next() {
		budget, err := scanBudget(rows)
		if err != nil {
			return nil, err
		}
		budgets = append(budgets, *budget)
	}
	return budgets, rows.Err()
}

func (s *Store) UpdateBudgetAmount(ctx context.Context, userID ledger.UserID, id ledger.BudgetID, plannedAmount int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.ExecContext(ctx,
		`UPDATE budgets SET planned_amount = ? WHERE id = ? AND user_id = ?`,
		plannedAmount, id, userID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to update budget: %w", err)
	}
	return affected(result)
}

func (s *Store) DeleteBudget(ctx context.Context, userID ledger.UserID, id ledger.BudgetID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.ExecContext(ctx,
		`DELETE FROM budgets WHERE id = ? AND user_id = ?`,
		id, userID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to delete budget: %w", err)
	}
	return affected(result)
}

func (s *Store) CountBudgetsByCategory(ctx context.Context, userID ledger.UserID, categoryID ledger.CategoryID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM budgets WHERE user_id = ? AND category_id = ?`,
		userID, categoryID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count category budgets: %w", err)
	}
	return count, nil
}

// =============================================================================
// SCAN HELPERS
// =============================================================================

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*ledger.Account, error) {
	var (
		account   ledger.Account
		createdAt string
	)
	err := row.Scan(&account.ID, &account.UserID, &account.Name,
		&account.InitialBalance, &createdAt)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan account: %w", err)
	}
	account.CreatedAt = parseTime(createdAt)
	return &account, nil
}

func scanCategory(row rowScanner) (*ledger.Category, error) {
	var (
		category  ledger.Category
		createdAt string
	)
	err := row.Scan(&category.ID, &category.UserID, &category.Name,
		&category.IsRevenue, &createdAt)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan category: %w", err)
	}
	category.CreatedAt = parseTime(createdAt)
	return &category, nil
}

func scanTransaction(row rowScanner) (*ledger.Transaction, error) {
	var (
		tx          ledger.Transaction
		categoryID  sql.NullString
		description sql.NullString
		relatedID   sql.NullString
		date        string
		createdAt   string
	)
	err := row.Scan(&tx.ID, &tx.UserID, &tx.AccountID, &tx.Amount,
		&categoryID, &description, &date, &tx.Type, &relatedID, &createdAt)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan transaction: %w", err)
	}
	tx.CategoryID = ledger.CategoryID(categoryID.String)
	tx.Description = description.String
	tx.RelatedTransactionID = ledger.TransactionID(relatedID.String)
	tx.Date = parseTime(date)
	tx.CreatedAt = parseTime(createdAt)
	return &tx, nil
}

func scanBudget(row rowScanner) (*ledger.Budget, error) {
	var (
		budget     ledger.Budget
		budgetDate string
		createdAt  string
	)
	err := row.Scan(&budget.ID, &budget.UserID, &budget.CategoryID,
		&budgetDate, &budget.PlannedAmount, &createdAt)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan budget: %w", err)
	}
	budget.Month = parseDate(budgetDate)
	budget.CreatedAt = parseTime(createdAt)
	return &budget, nil
}

// =============================================================================
// VALUE HELPERS
// =============================================================================

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func affected(result sql.Result) (bool, error) {
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339, s)
	return t
}

func formatDate(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

func parseDate(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}
