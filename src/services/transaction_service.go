package services

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/raymond0208/CashCatalyst/src/database"
	"github.com/raymond0208/CashCatalyst/src/logger"
	"github.com/raymond0208/CashCatalyst/src/models"
	"github.com/raymond0208/CashCatalyst/src/processors"
	"github.com/raymond0208/CashCatalyst/src/taxonomy"
	"github.com/raymond0208/CashCatalyst/src/utils"
)

const (
	ckBalanceSummary  = "balance_summary_user_%d"
	ckMonthlyBalances = "monthly_balances_user_%d"

	DefaultCacheExpiration = 15 * time.Minute
	CacheCleanupInterval   = 30 * time.Minute

	defaultListLimit = 100
)

type transactionServiceImpl struct {
	totals      processors.TotalsProcessor
	classifier  *taxonomy.Classifier
	reportCache *cache.Cache
}

func NewTransactionService(
	totals processors.TotalsProcessor,
	classifier *taxonomy.Classifier,
	reportCache *cache.Cache,
) TransactionService {
	return &transactionServiceImpl{
		totals:      totals,
		classifier:  classifier,
		reportCache: reportCache,
	}
}

// normalize validates the date and forces the type through the classifier so
// every stored row carries a canonical label.
func (s *transactionServiceImpl) normalize(tx models.Transaction) (models.Transaction, error) {
	if _, err := time.Parse(utils.DefaultDateFormat, tx.Date); err != nil {
		return tx, fmt.Errorf("%w: %q", ErrInvalidDate, tx.Date)
	}
	source := string(tx.Type)
	if source == "" {
		source = tx.Description
	}
	tx.Type = s.classifier.Classify(source)
	return tx, nil
}

func (s *transactionServiceImpl) Create(userID int64, tx models.Transaction) (models.Transaction, error) {
	tx, err := s.normalize(tx)
	if err != nil {
		return tx, err
	}

	res, err := database.DB.Exec(
		`INSERT INTO transactions (user_id, date, description, amount, type) VALUES (?, ?, ?, ?, ?)`,
		userID, tx.Date, tx.Description, tx.Amount, tx.Type)
	if err != nil {
		return tx, fmt.Errorf("error inserting transaction: %w", err)
	}
	tx.ID, err = res.LastInsertId()
	if err != nil {
		return tx, fmt.Errorf("error reading inserted transaction id: %w", err)
	}
	tx.UserID = userID

	s.InvalidateUserCache(userID)
	return tx, nil
}

func (s *transactionServiceImpl) BulkCreate(userID int64, txs []models.Transaction) (int, error) {
	if len(txs) == 0 {
		return 0, nil
	}

	dbTx, err := database.DB.Begin()
	if err != nil {
		return 0, fmt.Errorf("error beginning database transaction: %w", err)
	}
	defer dbTx.Rollback()

	stmt, err := dbTx.Prepare(`INSERT INTO transactions (user_id, date, description, amount, type) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("error preparing insert statement: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, tx := range txs {
		tx, err := s.normalize(tx)
		if err != nil {
			logger.L.Debug("Skipping bulk row", "userID", userID, "reason", err)
			continue
		}
		if _, err := stmt.Exec(userID, tx.Date, tx.Description, tx.Amount, tx.Type); err != nil {
			return 0, fmt.Errorf("error inserting transaction (date %s): %w", tx.Date, err)
		}
		inserted++
	}

	if err := dbTx.Commit(); err != nil {
		return 0, fmt.Errorf("error committing transactions: %w", err)
	}

	s.InvalidateUserCache(userID)
	logger.L.Info("Bulk insert complete", "userID", userID, "inserted", inserted, "received", len(txs))
	return inserted, nil
}

const transactionColumns = "id, user_id, date, description, amount, type"

func scanTransactions(rows *sql.Rows) ([]models.Transaction, error) {
	defer rows.Close()
	var txs []models.Transaction
	for rows.Next() {
		var tx models.Transaction
		if err := rows.Scan(&tx.ID, &tx.UserID, &tx.Date, &tx.Description, &tx.Amount, &tx.Type); err != nil {
			return nil, fmt.Errorf("error scanning transaction row: %w", err)
		}
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}

func (s *transactionServiceImpl) List(userID int64, limit, offset int) ([]models.Transaction, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := database.DB.Query(
		`SELECT `+transactionColumns+` FROM transactions WHERE user_id = ? ORDER BY date DESC, id DESC LIMIT ? OFFSET ?`,
		userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("error querying transactions: %w", err)
	}
	return scanTransactions(rows)
}

// ListAll returns every transaction in chronological order, the order the
// aggregation and forecasting code expects.
func (s *transactionServiceImpl) ListAll(userID int64) ([]models.Transaction, error) {
	rows, err := database.DB.Query(
		`SELECT `+transactionColumns+` FROM transactions WHERE user_id = ? ORDER BY date ASC, id ASC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("error querying transactions: %w", err)
	}
	return scanTransactions(rows)
}

func (s *transactionServiceImpl) Update(userID, id int64, tx models.Transaction) (models.Transaction, error) {
	tx, err := s.normalize(tx)
	if err != nil {
		return tx, err
	}

	res, err := database.DB.Exec(
		`UPDATE transactions SET date = ?, description = ?, amount = ?, type = ? WHERE id = ? AND user_id = ?`,
		tx.Date, tx.Description, tx.Amount, tx.Type, id, userID)
	if err != nil {
		return tx, fmt.Errorf("error updating transaction: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return tx, fmt.Errorf("error reading update result: %w", err)
	}
	if affected == 0 {
		return tx, ErrTransactionNotFound
	}
	tx.ID = id
	tx.UserID = userID

	s.InvalidateUserCache(userID)
	return tx, nil
}

func (s *transactionServiceImpl) Delete(userID, id int64) error {
	res, err := database.DB.Exec(`DELETE FROM transactions WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("error deleting transaction: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error reading delete result: %w", err)
	}
	if affected == 0 {
		return ErrTransactionNotFound
	}

	s.InvalidateUserCache(userID)
	return nil
}

func (s *transactionServiceImpl) DeleteAll(userID int64) error {
	if _, err := database.DB.Exec(`DELETE FROM transactions WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("error deleting transactions: %w", err)
	}
	s.InvalidateUserCache(userID)
	return nil
}

// InitialBalance returns the stored starting balance, lazily creating a zero
// row on first access. The row is overwritten, never accumulated, on update.
func (s *transactionServiceImpl) InitialBalance(userID int64) (float64, error) {
	var balance float64
	err := database.DB.QueryRow(`SELECT balance FROM initial_balances WHERE user_id = ?`, userID).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		if _, err := database.DB.Exec(`INSERT INTO initial_balances (user_id, balance) VALUES (?, 0)`, userID); err != nil {
			return 0, fmt.Errorf("error creating initial balance: %w", err)
		}
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("error querying initial balance: %w", err)
	}
	return balance, nil
}

// SetInitialBalance overwrites the starting balance. When clearTransactions
// is set the overwrite and the wipe of existing transactions commit as one
// SQL transaction, so no reader ever sees the new balance with the old rows.
func (s *transactionServiceImpl) SetInitialBalance(userID int64, balance float64, clearTransactions bool) error {
	dbTx, err := database.DB.Begin()
	if err != nil {
		return fmt.Errorf("error beginning database transaction: %w", err)
	}
	defer dbTx.Rollback()

	_, err = dbTx.Exec(
		`INSERT INTO initial_balances (user_id, balance) VALUES (?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET balance = excluded.balance`,
		userID, balance)
	if err != nil {
		return fmt.Errorf("error setting initial balance: %w", err)
	}

	if clearTransactions {
		if _, err := dbTx.Exec(`DELETE FROM transactions WHERE user_id = ?`, userID); err != nil {
			return fmt.Errorf("error clearing transactions: %w", err)
		}
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("error committing initial balance update: %w", err)
	}

	s.InvalidateUserCache(userID)
	logger.L.Info("Initial balance updated", "userID", userID, "cleared", clearTransactions)
	return nil
}

func (s *transactionServiceImpl) BalanceSummary(userID int64) (*BalanceSummary, error) {
	cacheKey := fmt.Sprintf(ckBalanceSummary, userID)
	if cached, found := s.reportCache.Get(cacheKey); found {
		logger.L.Debug("Cache hit for balance summary", "userID", userID)
		summary := cached.(BalanceSummary)
		return &summary, nil
	}

	initial, err := s.InitialBalance(userID)
	if err != nil {
		return nil, err
	}
	txs, err := s.ListAll(userID)
	if err != nil {
		return nil, err
	}

	summary := BalanceSummary{
		InitialBalance: initial,
		Totals:         s.totals.Balance(initial, txs),
	}
	s.reportCache.Set(cacheKey, summary, DefaultCacheExpiration)
	return &summary, nil
}

// BalanceAsOf recomputes the summary over transactions dated on or before
// the cutoff. Not cached; the cutoff space is unbounded.
func (s *transactionServiceImpl) BalanceAsOf(userID int64, date string) (*BalanceSummary, error) {
	if _, err := time.Parse(utils.DefaultDateFormat, date); err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}

	initial, err := s.InitialBalance(userID)
	if err != nil {
		return nil, err
	}
	rows, err := database.DB.Query(
		`SELECT `+transactionColumns+` FROM transactions WHERE user_id = ? AND date <= ? ORDER BY date ASC, id ASC`,
		userID, date)
	if err != nil {
		return nil, fmt.Errorf("error querying transactions: %w", err)
	}
	txs, err := scanTransactions(rows)
	if err != nil {
		return nil, err
	}

	return &BalanceSummary{
		InitialBalance: initial,
		Totals:         s.totals.Balance(initial, txs),
	}, nil
}

func (s *transactionServiceImpl) MonthlyBalances(userID int64) ([]models.MonthlyBalance, error) {
	cacheKey := fmt.Sprintf(ckMonthlyBalances, userID)
	if cached, found := s.reportCache.Get(cacheKey); found {
		logger.L.Debug("Cache hit for monthly balances", "userID", userID)
		return cached.([]models.MonthlyBalance), nil
	}

	initial, err := s.InitialBalance(userID)
	if err != nil {
		return nil, err
	}
	txs, err := s.ListAll(userID)
	if err != nil {
		return nil, err
	}

	monthly := s.totals.MonthlyBalances(initial, txs)
	s.reportCache.Set(cacheKey, monthly, DefaultCacheExpiration)
	return monthly, nil
}

// InvalidateUserCache clears every cached summary for a user after a write.
func (s *transactionServiceImpl) InvalidateUserCache(userID int64) {
	keysToDelete := []string{
		fmt.Sprintf(ckBalanceSummary, userID),
		fmt.Sprintf(ckMonthlyBalances, userID),
		fmt.Sprintf(ckAnalysis, userID),
	}
	for _, key := range keysToDelete {
		s.reportCache.Delete(key)
	}
}
