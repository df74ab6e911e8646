package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/Zerofake/musicflow1/internal/models"
	"github.com/Zerofake/musicflow1/internal/shared"
)

// LedgerRepository handles the singleton user ledger row.
type LedgerRepository struct {
	db       *sql.DB
	notifier *Notifier
}

// NewLedgerRepository creates a new LedgerRepository with the given database connection
func NewLedgerRepository(db *sql.DB, notifier *Notifier) *LedgerRepository {
	return &LedgerRepository{db: db, notifier: notifier}
}

// Ensure creates the zero-balance ledger row if it does not exist yet.
func (r *LedgerRepository) Ensure() error {
	query := `
		INSERT INTO user_ledger (id, coins, ad_free_until)
		VALUES (?, 0, NULL)
		ON CONFLICT(id) DO NOTHING
	`
	if _, err := r.db.Exec(query, models.LedgerID); err != nil {
		return fmt.Errorf("failed to ensure ledger row: %w", err)
	}
	return nil
}

// Get retrieves the singleton ledger record.
func (r *LedgerRepository) Get() (*models.UserLedger, error) {
	var ledger models.UserLedger
	var until sql.NullInt64

	query := "SELECT id, coins, ad_free_until FROM user_ledger WHERE id = ?"
	err := r.db.QueryRow(query, models.LedgerID).Scan(&ledger.ID, &ledger.Coins, &until)
	if err == sql.ErrNoRows {
		return nil, shared.ErrLedgerMissing
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan ledger: %w", err)
	}

	if until.Valid {
		ledger.AdFreeUntil = &until.Int64
	}
	return &ledger, nil
}

// AddCoins credits the balance. Purchases are simulated locally, so this is
// the whole "store" write path.
func (r *LedgerRepository) AddCoins(amount int) error {
	if amount <= 0 {
		return fmt.Errorf("%w: amount must be positive", shared.ErrInvalidArgument)
	}

	result, err := r.db.Exec("UPDATE user_ledger SET coins = coins + ? WHERE id = ?", amount, models.LedgerID)
	if err != nil {
		return fmt.Errorf("failed to add coins: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return shared.ErrLedgerMissing
	}

	r.notifier.Publish(TableLedger)
	return nil
}

// Spend atomically checks the balance and, if sufficient, decrements it and
// extends the ad-free window by extend past max(now, current window end).
//
// Returns false with no state change when the balance is short. The
// check-then-apply runs in one transaction so two concurrent spends cannot
// both read a stale balance and both succeed.
func (r *LedgerRepository) Spend(amount int, extend time.Duration, now time.Time) (bool, error) {
	if amount <= 0 {
		return false, fmt.Errorf("%w: amount must be positive", shared.ErrInvalidArgument)
	}

	ok := false
	err := WithTx(r.db, func(tx *sql.Tx) error {
		var coins int
		var until sql.NullInt64

		err := tx.QueryRow("SELECT coins, ad_free_until FROM user_ledger WHERE id = ?", models.LedgerID).Scan(&coins, &until)
		if err == sql.ErrNoRows {
			return shared.ErrLedgerMissing
		}
		if err != nil {
			return fmt.Errorf("failed to read ledger: %w", err)
		}

		if coins < amount {
			return nil
		}

		nowMs := now.UnixMilli()
		base := nowMs
		if until.Valid && until.Int64 > nowMs {
			base = until.Int64
		}
		newUntil := base + extend.Milliseconds()

		if _, err := tx.Exec("UPDATE user_ledger SET coins = ?, ad_free_until = ? WHERE id = ?", coins-amount, newUntil, models.LedgerID); err != nil {
			return fmt.Errorf("failed to update ledger: %w", err)
		}

		ok = true
		return nil
	})
	if err != nil {
		return false, err
	}

	if ok {
		r.notifier.Publish(TableLedger)
	}
	return ok, nil
}

// Reset clears the ad-free window without touching the balance.
func (r *LedgerRepository) Reset() error {
	if _, err := r.db.Exec("UPDATE user_ledger SET ad_free_until = NULL WHERE id = ?", models.LedgerID); err != nil {
		return fmt.Errorf("failed to reset ledger: %w", err)
	}

	r.notifier.Publish(TableLedger)
	return nil
}
