// Package store provides data persistence implementations.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"

	apperrors "marketwatch/internal/errors"
	"marketwatch/internal/models"
	"marketwatch/pkg/utils"
)

// SQLiteStore implements QuoteStore using SQLite. The UNIQUE(symbol,
// timestamp) constraint is the sole dedup mechanism: concurrent writers
// racing on the same pair resolve at the storage layer, never via a
// check-then-insert in application code.
type SQLiteStore struct {
	db          *sql.DB
	logger      zerolog.Logger
	busyRetries int

	mu          sync.Mutex
	runAccepted int
}

// NewSQLiteStore creates a new SQLite-based quote store.
func NewSQLiteStore(dbPath string, logger zerolog.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool for concurrent access
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	s := &SQLiteStore{
		db:          db,
		logger:      logger.With().Str("component", "store").Logger(),
		busyRetries: 3,
	}

	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return s, nil
}

// SetBusyRetries overrides how often a busy database is retried before the
// condition is surfaced as fatal.
func (s *SQLiteStore) SetBusyRetries(n int) {
	if n > 0 {
		s.busyRetries = n
	}
}

// initSchema creates all required tables and indexes.
func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS market_data (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		symbol TEXT NOT NULL CHECK(symbol <> ''),
		price REAL NOT NULL CHECK(price > 0),
		volume INTEGER NOT NULL DEFAULT 0 CHECK(volume >= 0),
		timestamp TEXT NOT NULL,
		provider TEXT,
		processed_at TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(symbol, timestamp)
	);

	CREATE INDEX IF NOT EXISTS idx_symbol_timestamp ON market_data(symbol, timestamp);
	CREATE INDEX IF NOT EXISTS idx_timestamp ON market_data(timestamp);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// isBusy reports whether err signals transient lock contention from a
// second writer, as opposed to a structural failure.
func isBusy(err error) bool {
	var sqliteErr sqlite3.Error
	if apperrors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrBusy || sqliteErr.Code == sqlite3.ErrLocked
	}
	return false
}

// retryConfig returns the bounded retry policy for busy-database conditions.
func (s *SQLiteStore) retryConfig() utils.RetryConfig {
	cfg := utils.DefaultRetryConfig()
	cfg.MaxAttempts = s.busyRetries
	cfg.ShouldRetry = isBusy
	return cfg
}

// SaveBatch persists quotes transactionally with INSERT OR IGNORE semantics.
// Duplicate (symbol, timestamp) pairs are absorbed silently; rows failing
// validation are dropped with a warning and never abort the batch. If the
// bulk transaction fails for a reason other than lock contention, the store
// falls back to per-row inserts so one bad record cannot block the run.
func (s *SQLiteStore) SaveBatch(ctx context.Context, quotes []models.Quote) (*SaveResult, error) {
	result := &SaveResult{}
	if len(quotes) == 0 {
		return result, nil
	}

	valid := make([]models.Quote, 0, len(quotes))
	for _, q := range quotes {
		if q.Symbol == "" || q.Price <= 0 || q.Volume < 0 {
			s.logger.Warn().
				Str("symbol", q.Symbol).
				Float64("price", q.Price).
				Msg("Dropping invalid quote from batch")
			result.Dropped++
			continue
		}
		valid = append(valid, q)
	}
	if len(valid) == 0 {
		return result, nil
	}

	accepted, err := utils.RetryWithResult(ctx, s.retryConfig(), func() ([]models.Quote, error) {
		return s.saveBulk(ctx, valid)
	})
	failed := 0
	if err != nil {
		if isBusy(err) {
			return nil, apperrors.NewStorageError("save_batch", "database busy after retries", apperrors.ErrStorageBusy)
		}
		s.logger.Warn().Err(err).Msg("Bulk insert failed, falling back to per-row inserts")
		accepted, failed, err = s.saveIndividually(ctx, valid)
		if err != nil {
			return nil, err
		}
		result.Dropped += failed
	}

	result.Accepted = accepted
	result.Duplicates = len(valid) - len(accepted) - failed

	s.mu.Lock()
	s.runAccepted += len(accepted)
	s.mu.Unlock()

	if result.Duplicates > 0 {
		s.logger.Debug().Int("duplicates", result.Duplicates).Msg("Absorbed duplicate quotes")
	}

	return result, nil
}

// saveBulk inserts all quotes in a single transaction and returns the rows
// that were newly inserted.
func (s *SQLiteStore) saveBulk(ctx context.Context, quotes []models.Quote) ([]models.Quote, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO market_data (symbol, price, volume, timestamp, provider, processed_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	var accepted []models.Quote
	for _, q := range quotes {
		res, err := stmt.ExecContext(ctx, q.Symbol, q.Price, q.Volume, q.Timestamp, q.Provider, q.ProcessedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to insert quote %s@%s: %w", q.Symbol, q.Timestamp, err)
		}
		if rows, _ := res.RowsAffected(); rows > 0 {
			accepted = append(accepted, q)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return accepted, nil
}

// saveIndividually inserts quotes one at a time so that a single offending
// row is dropped with a warning instead of blocking the whole batch. It
// returns the newly inserted rows and the number of rows that failed.
func (s *SQLiteStore) saveIndividually(ctx context.Context, quotes []models.Quote) ([]models.Quote, int, error) {
	var accepted []models.Quote
	failed := 0
	for _, q := range quotes {
		var res sql.Result
		err := utils.Retry(ctx, s.retryConfig(), func() error {
			var execErr error
			res, execErr = s.db.ExecContext(ctx, `
				INSERT OR IGNORE INTO market_data (symbol, price, volume, timestamp, provider, processed_at)
				VALUES (?, ?, ?, ?, ?, ?)
			`, q.Symbol, q.Price, q.Volume, q.Timestamp, q.Provider, q.ProcessedAt)
			return execErr
		})
		if err != nil {
			if isBusy(err) {
				return nil, failed, apperrors.NewStorageError("save_row", "database busy after retries", apperrors.ErrStorageBusy)
			}
			s.logger.Warn().Err(err).
				Str("symbol", q.Symbol).
				Str("timestamp", q.Timestamp).
				Msg("Dropping quote that failed to insert")
			failed++
			continue
		}
		if rows, _ := res.RowsAffected(); rows > 0 {
			accepted = append(accepted, q)
		}
	}
	return accepted, failed, nil
}

const quoteColumns = "id, symbol, price, volume, timestamp, COALESCE(provider, ''), COALESCE(processed_at, '')"

func scanQuote(scanner interface{ Scan(...interface{}) error }) (models.Quote, error) {
	var q models.Quote
	err := scanner.Scan(&q.ID, &q.Symbol, &q.Price, &q.Volume, &q.Timestamp, &q.Provider, &q.ProcessedAt)
	return q, err
}

// LatestPrices returns the row with the maximum timestamp for each distinct
// symbol. Ties on equal timestamps resolve to the highest rowid, so the
// result is stable for a given data state.
func (s *SQLiteStore) LatestPrices(ctx context.Context) ([]models.Quote, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+quoteColumns+`
		FROM market_data m
		WHERE m.id = (
			SELECT id FROM market_data
			WHERE symbol = m.symbol
			ORDER BY timestamp DESC, id DESC
			LIMIT 1
		)
		ORDER BY symbol ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query latest prices: %w", err)
	}
	defer rows.Close()

	var quotes []models.Quote
	for rows.Next() {
		q, err := scanQuote(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan quote: %w", err)
		}
		quotes = append(quotes, q)
	}

	return quotes, rows.Err()
}

// History returns stored quotes ordered by timestamp descending.
func (s *SQLiteStore) History(ctx context.Context, filter QuoteFilter) ([]models.Quote, error) {
	query := "SELECT " + quoteColumns + " FROM market_data WHERE 1=1"
	args := []interface{}{}

	if filter.Symbol != "" {
		query += " AND symbol = ?"
		args = append(args, strings.ToUpper(filter.Symbol))
	}

	query += " ORDER BY timestamp DESC, id DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var quotes []models.Quote
	for rows.Next() {
		q, err := scanQuote(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan quote: %w", err)
		}
		quotes = append(quotes, q)
	}

	return quotes, rows.Err()
}

// Statistics reports aggregate statistics over the stored quotes.
func (s *SQLiteStore) Statistics(ctx context.Context) (*Stats, error) {
	stats := &Stats{PerSymbol: make(map[string]int)}

	var earliest, latest sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COUNT(DISTINCT symbol), MIN(timestamp), MAX(timestamp)
		FROM market_data
	`).Scan(&stats.TotalCount, &stats.DistinctSymbols, &earliest, &latest)
	if err != nil {
		return nil, fmt.Errorf("failed to get statistics: %w", err)
	}
	if earliest.Valid {
		stats.Earliest = earliest.String
	}
	if latest.Valid {
		stats.Latest = latest.String
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT symbol, COUNT(*) FROM market_data GROUP BY symbol ORDER BY COUNT(*) DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to get per-symbol counts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var symbol string
		var count int
		if err := rows.Scan(&symbol, &count); err != nil {
			return nil, fmt.Errorf("failed to scan symbol count: %w", err)
		}
		stats.PerSymbol[symbol] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	stats.RunAccepted = s.runAccepted
	s.mu.Unlock()

	return stats, nil
}

// Prune deletes rows whose timestamp predates now minus olderThanDays days.
func (s *SQLiteStore) Prune(ctx context.Context, olderThanDays int) (int, error) {
	if olderThanDays <= 0 {
		return 0, fmt.Errorf("olderThanDays must be positive, got %d", olderThanDays)
	}

	removed, err := utils.RetryWithResult(ctx, s.retryConfig(), func() (int, error) {
		res, err := s.db.ExecContext(ctx, `
			DELETE FROM market_data
			WHERE datetime(timestamp) < datetime('now', ?)
		`, fmt.Sprintf("-%d days", olderThanDays))
		if err != nil {
			return 0, err
		}
		rows, _ := res.RowsAffected()
		return int(rows), nil
	})
	if err != nil {
		if isBusy(err) {
			return 0, apperrors.NewStorageError("prune", "database busy after retries", apperrors.ErrStorageBusy)
		}
		return 0, apperrors.NewStorageError("prune", "failed to delete old rows", err)
	}

	s.logger.Info().Int("removed", removed).Int("older_than_days", olderThanDays).Msg("Pruned old quotes")
	return removed, nil
}

var _ QuoteStore = (*SQLiteStore)(nil)
