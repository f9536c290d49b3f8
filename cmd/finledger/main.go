/*
main.go - Command-line entry point for the finance ledger

PURPOSE:
  Wires configuration, logging, the SQLite store and the finance
  services into a small subcommand CLI.

STARTUP SEQUENCE:
  1. Load configuration (finledger.yaml + FINLEDGER_* env overrides)
  2. Build the zap logger at the configured level
  3. Open the SQLite store (schema auto-migrated)
  4. Construct services and dispatch the subcommand

COMMANDS:
  account   add | list | rename | rm | balance
  category  add | list | rename | rm
  tx        add | list | rm
  transfer  <from> <to|-> <amount>
  budget    set | list | rm
  report    breakdown | total

EXAMPLES:
  # Create an account with an opening balance
  finledger -user alice account add "Checking" 250.00

  # Record an expense
  finledger -user alice tx add -account <id> -amount 19.99 -type expense

  # Move money between accounts (linked pair)
  finledger -user alice transfer <src-id> <dst-id> 100.00

  # External adjustment (no destination)
  finledger -user alice transfer <src-id> - -50.00

CONFIGURATION:
  -config   path to YAML config (default ./finledger.yaml, optional)
  -user     acting user id; overrides user.id from config
  FINLEDGER_DATABASE_PATH, FINLEDGER_LOG_LEVEL, FINLEDGER_USER_ID

SEE ALSO:
  - config/config.go: Configuration loading
  - finance/: Service layer
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/warp/finance-ledger/config"
	"github.com/warp/finance-ledger/finance"
	"github.com/warp/finance-ledger/ledger"
	"github.com/warp/finance-ledger/store/sqlite"
)

const dateLayout = "2006-01-02"

type app struct {
	user         ledger.UserID
	accounts     *finance.Accounts
	categories   *finance.Categories
	transactions *finance.Transactions
	transfers    *finance.Transfers
	budgets      *finance.Budgets
	reports      *finance.Reports
}

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	userFlag := flag.String("user", "", "acting user id (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fatalf("failed to load config: %v", err)
	}

	logger, err := buildLogger(cfg.Log.Level)
	if err != nil {
		fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()

	userID := cfg.User.ID
	if *userFlag != "" {
		userID = *userFlag
	}
	if userID == "" {
		fatalf("no user id: pass -user or set FINLEDGER_USER_ID")
	}

	store, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		fatalf("failed to open database: %v", err)
	}
	defer store.Close()

	transactions := finance.NewTransactions(store, logger)
	a := &app{
		user:         ledger.UserID(userID),
		accounts:     finance.NewAccounts(store, transactions, logger),
		categories:   finance.NewCategories(store, logger),
		transactions: transactions,
		transfers:    finance.NewTransfers(store, logger),
		budgets:      finance.NewBudgets(store, logger),
		reports:      nil, // set below, needs accounts
	}
	a.reports = finance.NewReports(store, a.accounts)

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}

	ctx := context.Background()
	switch args[0] {
	case "account":
		err = a.runAccount(ctx, args[1:])
	case "category":
		err = a.runCategory(ctx, args[1:])
	case "tx":
		err = a.runTransaction(ctx, args[1:])
	case "transfer":
		err = a.runTransfer(ctx, args[1:])
	case "budget":
		err = a.runBudget(ctx, args[1:])
	case "report":
		err = a.runReport(ctx, args[1:])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		fatalf("%v", err)
	}
}

func buildLogger(level string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = lvl
	return cfg.Build()
}

// =============================================================================
// ACCOUNT COMMANDS
// =============================================================================

func (a *app) runAccount(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("account: missing subcommand (add|list|rename|rm|balance)")
	}
	switch args[0] {
	case "add":
		if len(args) < 2 {
			return fmt.Errorf("usage: account add <name> [initial-balance]")
		}
		initial := decimal.Zero
		if len(args) > 2 {
			var err error
			initial, err = decimal.NewFromString(args[2])
			if err != nil {
				return fmt.Errorf("invalid initial balance %q", args[2])
			}
		}
		view, err := a.accounts.Create(ctx, a.user, args[1], initial)
		if err != nil {
			return err
		}
		fmt.Printf("created account %s (%s) balance %s\n", view.ID, view.Name, view.CurrentBalance)
		return nil

	case "list":
		views, err := a.accounts.List(ctx, a.user)
		if err != nil {
			return err
		}
		for _, v := range views {
			fmt.Printf("%s  %-20s  %12s\n", v.ID, v.Name, v.CurrentBalance.StringFixed(2))
		}
		return nil

	case "rename":
		if len(args) < 3 {
			return fmt.Errorf("usage: account rename <id> <name>")
		}
		view, err := a.accounts.Update(ctx, a.user, ledger.AccountID(args[1]), args[2])
		if err != nil {
			return err
		}
		if view == nil {
			fmt.Println("account not found")
			return nil
		}
		fmt.Printf("renamed account %s to %s\n", view.ID, view.Name)
		return nil

	case "rm":
		if len(args) < 2 {
			return fmt.Errorf("usage: account rm <id>")
		}
		deleted, err := a.accounts.Delete(ctx, a.user, ledger.AccountID(args[1]))
		if err != nil {
			return err
		}
		if !deleted {
			fmt.Println("account not found")
			return nil
		}
		fmt.Println("account deleted")
		return nil

	case "balance":
		if len(args) < 2 {
			return fmt.Errorf("usage: account balance <id>")
		}
		balance, err := a.accounts.CurrentBalance(ctx, a.user, ledger.AccountID(args[1]))
		if err != nil {
			return err
		}
		fmt.Println(balance.StringFixed(2))
		return nil
	}
	return fmt.Errorf("account: unknown subcommand %q", args[0])
}

// =============================================================================
// CATEGORY COMMANDS
// =============================================================================

func (a *app) runCategory(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("category: missing subcommand (add|list|rename|rm)")
	}
	switch args[0] {
	case "add":
		fs := flag.NewFlagSet("category add", flag.ContinueOnError)
		revenue := fs.Bool("revenue", false, "revenue category (default expense)")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		if fs.NArg() < 1 {
			return fmt.Errorf("usage: category add [-revenue] <name>")
		}
		view, err := a.categories.Create(ctx, a.user, fs.Arg(0), *revenue)
		if err != nil {
			return err
		}
		fmt.Printf("created category %s (%s)\n", view.ID, view.Name)
		return nil

	case "list":
		views, err := a.categories.List(ctx, a.user)
		if err != nil {
			return err
		}
		for _, v := range views {
			kind := "expense"
			if v.IsRevenue {
				kind = "revenue"
			}
			fmt.Printf("%s  %-20s  %s\n", v.ID, v.Name, kind)
		}
		return nil

	case "rename":
		if len(args) < 3 {
			return fmt.Errorf("usage: category rename <id> <name>")
		}
		view, err := a.categories.Update(ctx, a.user, ledger.CategoryID(args[1]), args[2])
		if err != nil {
			return err
		}
		if view == nil {
			fmt.Println("category not found")
			return nil
		}
		fmt.Printf("renamed category %s to %s\n", view.ID, view.Name)
		return nil

	case "rm":
		if len(args) < 2 {
			return fmt.Errorf("usage: category rm <id>")
		}
		deleted, err := a.categories.Delete(ctx, a.user, ledger.CategoryID(args[1]))
		if err != nil {
			return err
		}
		if !deleted {
			fmt.Println("category not found")
			return nil
		}
		fmt.Println("category deleted")
		return nil
	}
	return fmt.Errorf("category: unknown subcommand %q", args[0])
}

// =============================================================================
// TRANSACTION COMMANDS
// =============================================================================

func (a *app) runTransaction(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("tx: missing subcommand (add|list|rm)")
	}
	switch args[0] {
	case "add":
		fs := flag.NewFlagSet("tx add", flag.ContinueOnError)
		account := fs.String("account", "", "account id (required)")
		amount := fs.String("amount", "", "amount in major units (required)")
		txType := fs.String("type", "expense", "expense or revenue")
		category := fs.String("category", "", "category id")
		description := fs.String("desc", "", "description")
		date := fs.String("date", "", "date YYYY-MM-DD (default today)")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		if *account == "" || *amount == "" {
			return fmt.Errorf("usage: tx add -account <id> -amount <amount> [-type expense|revenue] [-category <id>] [-desc <text>] [-date YYYY-MM-DD]")
		}
		value, err := decimal.NewFromString(*amount)
		if err != nil {
			return fmt.Errorf("invalid amount %q", *amount)
		}
		when := time.Now()
		if *date != "" {
			when, err = time.Parse(dateLayout, *date)
			if err != nil {
				return fmt.Errorf("invalid date %q", *date)
			}
		}
		view, err := a.transactions.Create(ctx, a.user, finance.CreateTransaction{
			AccountID:   ledger.AccountID(*account),
			Amount:      value,
			Type:        ledger.TransactionType(*txType),
			Date:        when,
			CategoryID:  ledger.CategoryID(*category),
			Description: *description,
		})
		if err != nil {
			return err
		}
		fmt.Printf("created transaction %s (%s %s)\n", view.ID, view.Type, view.Amount.StringFixed(2))
		return nil

	case "list":
		fs := flag.NewFlagSet("tx list", flag.ContinueOnError)
		account := fs.String("account", "", "filter by account id")
		category := fs.String("category", "", "filter by category id")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		views, err := a.transactions.List(ctx, a.user, ledger.TransactionFilter{
			AccountID:  ledger.AccountID(*account),
			CategoryID: ledger.CategoryID(*category),
		})
		if err != nil {
			return err
		}
		for _, v := range views {
			fmt.Printf("%s  %s  %-8s  %12s  %s\n",
				v.ID, v.Date.Format(dateLayout), v.Type, v.Amount.StringFixed(2), v.Description)
		}
		return nil

	case "rm":
		if len(args) < 2 {
			return fmt.Errorf("usage: tx rm <id>")
		}
		deleted, err := a.transactions.Delete(ctx, a.user, ledger.TransactionID(args[1]))
		if err != nil {
			return err
		}
		if !deleted {
			fmt.Println("transaction not found")
			return nil
		}
		fmt.Println("transaction deleted")
		return nil
	}
	return fmt.Errorf("tx: unknown subcommand %q", args[0])
}

// =============================================================================
// TRANSFER COMMAND
// =============================================================================

func (a *app) runTransfer(ctx context.Context, args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("usage: transfer <source-id> <dest-id|-> <amount> [description]")
	}
	amount, err := decimal.NewFromString(args[2])
	if err != nil {
		return fmt.Errorf("invalid amount %q", args[2])
	}
	dest := args[1]
	if dest == "-" {
		dest = ""
	}
	description := ""
	if len(args) > 3 {
		description = args[3]
	}

	result, err := a.transfers.Create(ctx, a.user, finance.TransferCommand{
		SourceAccountID:      ledger.AccountID(args[0]),
		DestinationAccountID: ledger.AccountID(dest),
		Amount:               amount,
		Date:                 time.Now(),
		Description:          description,
	})
	if err != nil {
		return err
	}
	fmt.Printf("source leg %s: %s\n", result.Source.ID, result.Source.Amount.StringFixed(2))
	if result.Destination != nil {
		fmt.Printf("destination leg %s: %s\n", result.Destination.ID, result.Destination.Amount.StringFixed(2))
	}
	return nil
}

// =============================================================================
// BUDGET COMMANDS
// =============================================================================

func (a *app) runBudget(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("budget: missing subcommand (set|list|rm)")
	}
	switch args[0] {
	case "set":
		if len(args) < 4 {
			return fmt.Errorf("usage: budget set <category-id> <YYYY-MM> <amount>")
		}
		month, err := time.Parse("2006-01", args[2])
		if err != nil {
			return fmt.Errorf("invalid month %q", args[2])
		}
		amount, err := decimal.NewFromString(args[3])
		if err != nil {
			return fmt.Errorf("invalid amount %q", args[3])
		}
		view, err := a.budgets.Create(ctx, a.user, finance.CreateBudget{
			CategoryID:    ledger.CategoryID(args[1]),
			Month:         month,
			PlannedAmount: amount,
		})
		if err != nil {
			return err
		}
		fmt.Printf("created budget %s for %s: %s\n",
			view.ID, view.Month.Format("2006-01"), view.PlannedAmount.StringFixed(2))
		return nil

	case "list":
		year := time.Now().Year()
		if len(args) > 1 {
			y, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid year %q", args[1])
			}
			year = y
		}
		views, err := a.budgets.ListYear(ctx, a.user, year)
		if err != nil {
			return err
		}
		for _, v := range views {
			fmt.Printf("%s  %s  %s  %12s\n",
				v.ID, v.Month.Format("2006-01"), v.CategoryID, v.PlannedAmount.StringFixed(2))
		}
		return nil

	case "rm":
		if len(args) < 2 {
			return fmt.Errorf("usage: budget rm <id>")
		}
		deleted, err := a.budgets.Delete(ctx, a.user, ledger.BudgetID(args[1]))
		if err != nil {
			return err
		}
		if !deleted {
			fmt.Println("budget not found")
			return nil
		}
		fmt.Println("budget deleted")
		return nil
	}
	return fmt.Errorf("budget: unknown subcommand %q", args[0])
}

// =============================================================================
// REPORT COMMANDS
// =============================================================================

func (a *app) runReport(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("report: missing subcommand (breakdown|total)")
	}
	switch args[0] {
	case "breakdown":
		now := time.Now()
		year, month := now.Year(), now.Month()
		if len(args) > 1 {
			parsed, err := time.Parse("2006-01", args[1])
			if err != nil {
				return fmt.Errorf("invalid month %q", args[1])
			}
			year, month = parsed.Year(), parsed.Month()
		}
		totals, err := a.reports.CategoryBreakdown(ctx, a.user, year, month)
		if err != nil {
			return err
		}
		for _, t := range totals {
			fmt.Printf("%-20s  %12s\n", t.Category, t.Total.StringFixed(2))
		}
		return nil

	case "total":
		total, err := a.reports.TotalBalance(ctx, a.user)
		if err != nil {
			return err
		}
		fmt.Println(total.StringFixed(2))
		return nil
	}
	return fmt.Errorf("report: unknown subcommand %q", args[0])
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: finledger [-config <path>] [-user <id>] <command> ...

commands:
  account   add | list | rename | rm | balance
  category  add | list | rename | rm
  tx        add | list | rm
  transfer  <source-id> <dest-id|-> <amount> [description]
  budget    set | list | rm
  report    breakdown | total`)
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
