/*
transfers.go - Transfer Orchestrator

PURPOSE:
  Creates the linked pair of transactions representing a transfer between
  two accounts, or a single adjusting entry when one side is external,
  and rolls back partial writes on failure.

  This is the one place where a logical multi-row write must appear
  atomic to callers even though the store only guarantees single-row
  atomicity. The compensating-delete sequence substitutes for a database
  transaction.

STATE MACHINE (two-legged path):
  a. insert source leg   amount=-A, type=transfer, related=nil
  b. insert destination  amount=+A, type=transfer, related=source
  c. link source         related=destination
  Failure at (b): delete source leg, propagate.
  Failure at (c): delete destination leg, then source leg, propagate.
  Rollback delete failures are logged and swallowed; the caller sees the
  original failure.

CLASSIFICATION (null destination):
  The entry is recorded against the source account with the signed
  amount as given: revenue when amount >= 0, expense otherwise.

CONCURRENCY:
  No locking. A caller aborting between steps can leave an orphaned
  source leg; this is an accepted gap, not a guaranteed-consistent state.
*/
package finance

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/warp/finance-ledger/ledger"
)

// TransferCommand describes a transfer. An empty DestinationAccountID
// means the counterparty is external (single adjusting entry).
type TransferCommand struct {
	SourceAccountID      ledger.AccountID
	DestinationAccountID ledger.AccountID // optional
	Amount               decimal.Decimal  // major units, signed
	Date                 time.Time
	Description          string // optional
}

// TransferResult carries the written leg(s) with major-unit amounts.
// Destination is nil on the single-entry path.
type TransferResult struct {
	Source      TransactionView
	Destination *TransactionView
}

// Transfers orchestrates two-legged transfers with compensating rollback.
type Transfers struct {
	store ledger.Store
	owner *Ownership
	log   *zap.Logger
}

func NewTransfers(store ledger.Store, log *zap.Logger) *Transfers {
	if log == nil {
		log = zap.NewNop()
	}
	return &Transfers{store: store, owner: NewOwnership(store), log: log}
}

// Create validates, classifies, and writes the transfer. Validation and
// ownership failures abort before any write; store failures mid-sequence
// trigger compensating deletes before being re-raised.
func (s *Transfers) Create(ctx context.Context, userID ledger.UserID, cmd TransferCommand) (*TransferResult, error) {
	// Source = destination is validated upstream too, but the orchestrator
	// must not rely on that.
	if cmd.DestinationAccountID != "" && cmd.SourceAccountID == cmd.DestinationAccountID {
		return nil, &ledger.ValidationError{Code: "SAME_ACCOUNT", Message: "source and destination accounts must be different"}
	}

	if _, err := s.owner.RequireAccount(ctx, userID, cmd.SourceAccountID); err != nil {
		return nil, err
	}
	if cmd.DestinationAccountID != "" {
		if _, err := s.owner.RequireAccount(ctx, userID, cmd.DestinationAccountID); err != nil {
			return nil, err
		}
	}

	minor := ledger.ToMinorUnits(cmd.Amount)

	if cmd.DestinationAccountID == "" {
		return s.createAdjustment(ctx, userID, cmd, minor)
	}
	return s.createLinkedPair(ctx, userID, cmd, minor)
}

// createAdjustment writes the single-entry path: a signed revenue or
// expense entry against the source account.
func (s *Transfers) createAdjustment(ctx context.Context, userID ledger.UserID, cmd TransferCommand, minor int64) (*TransferResult, error) {
	txType := ledger.TypeRevenue
	if minor < 0 {
		txType = ledger.TypeExpense
	}

	tx := s.newLeg(userID, cmd.SourceAccountID, minor, txType, cmd)
	if err := s.store.InsertTransaction(ctx, tx); err != nil {
		return nil, ledger.WrapStore("insert adjustment", "transaction", err)
	}

	s.log.Debug("external transfer recorded",
		zap.String("transaction_id", string(tx.ID)),
		zap.String("type", string(txType)))

	return &TransferResult{Source: newTransactionView(*tx)}, nil
}

// createLinkedPair writes the two-legged path with compensating rollback.
func (s *Transfers) createLinkedPair(ctx context.Context, userID ledger.UserID, cmd TransferCommand, minor int64) (*TransferResult, error) {
	source := s.newLeg(userID, cmd.SourceAccountID, -minor, ledger.TypeTransfer, cmd)
	if err := s.store.InsertTransaction(ctx, source); err != nil {
		return nil, ledger.WrapStore("insert source leg", "transaction", err)
	}

	destination := s.newLeg(userID, cmd.DestinationAccountID, minor, ledger.TypeTransfer, cmd)
	destination.RelatedTransactionID = source.ID
	if err := s.store.InsertTransaction(ctx, destination); err != nil {
		// Only the source leg exists; remove it and surface the original failure.
		s.rollbackLeg(ctx, userID, source.ID)
		return nil, ledger.WrapStore("insert destination leg", "transaction", err)
	}

	if err := s.store.LinkTransaction(ctx, userID, source.ID, destination.ID); err != nil {
		// Both legs exist but are not yet linked; remove destination, then source.
		s.rollbackLeg(ctx, userID, destination.ID)
		s.rollbackLeg(ctx, userID, source.ID)
		return nil, ledger.WrapStore("link transfer legs", "transaction", err)
	}
	source.RelatedTransactionID = destination.ID

	s.log.Debug("transfer recorded",
		zap.String("source_transaction_id", string(source.ID)),
		zap.String("destination_transaction_id", string(destination.ID)))

	destView := newTransactionView(*destination)
	return &TransferResult{
		Source:      newTransactionView(*source),
		Destination: &destView,
	}, nil
}

// rollbackLeg deletes an already-written leg during compensation.
// Best-effort: a delete failure is logged, never propagated, so the
// caller sees the failure that started the rollback.
func (s *Transfers) rollbackLeg(ctx context.Context, userID ledger.UserID, id ledger.TransactionID) {
	if _, err := s.store.DeleteTransaction(ctx, userID, id); err != nil {
		s.log.Warn("transfer rollback delete failed",
			zap.String("transaction_id", string(id)),
			zap.Error(err))
	}
}

func (s *Transfers) newLeg(userID ledger.UserID, accountID ledger.AccountID, minor int64, txType ledger.TransactionType, cmd TransferCommand) *ledger.Transaction {
	return &ledger.Transaction{
		ID:          ledger.TransactionID(uuid.NewString()),
		UserID:      userID,
		AccountID:   accountID,
		Amount:      minor,
		Description: cmd.Description,
		Date:        cmd.Date,
		Type:        txType,
		CreatedAt:   time.Now().UTC(),
	}
}
