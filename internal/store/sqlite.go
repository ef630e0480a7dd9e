package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"fjacquet/expense-tracker/internal/logging"
	"fjacquet/expense-tracker/internal/models"
	"fjacquet/expense-tracker/internal/trackererror"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"
)

// SQLiteRepository writes every record through to an embedded SQLite file.
type SQLiteRepository struct {
	db     *sql.DB
	ids    *IDSequence
	logger logging.Logger
}

// NewSQLiteRepository opens (and migrates) the database at dbPath.
func NewSQLiteRepository(ctx context.Context, dbPath string, logger logging.Logger) (*SQLiteRepository, error) {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// One writer at a time keeps SQLite away from SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	r := &SQLiteRepository{
		db:     db,
		ids:    NewIDSequence(0),
		logger: logger.WithFields(logging.F(logging.FieldBackend, "sqlite"), logging.F(logging.FieldFile, dbPath)),
	}
	if err := r.Reload(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return r, nil
}

func (r *SQLiteRepository) Add(ctx context.Context, e models.Expense) (models.Expense, error) {
	e = e.Normalized()
	if err := e.Validate(); err != nil {
		return models.Expense{}, err
	}
	e.ID = r.ids.Next()

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO expenses (id, description, amount, date, category, subcategory) VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, e.Description, e.Amount.String(), e.Date.String(), string(e.Category), e.Subcategory)
	if err != nil {
		return models.Expense{}, &trackererror.StoreError{Backend: "sqlite", Op: "insert", Err: err}
	}

	r.logger.Debug("Expense saved", logging.F(logging.FieldExpenseID, e.ID))
	return e, nil
}

func (r *SQLiteRepository) List(ctx context.Context) ([]models.Expense, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, description, amount, date, category, subcategory FROM expenses ORDER BY seq`)
	if err != nil {
		return nil, &trackererror.StoreError{Backend: "sqlite", Op: "select", Err: err}
	}
	defer rows.Close()

	var out []models.Expense
	for rows.Next() {
		var e models.Expense
		var amount, date, category, subcategory string
		if err := rows.Scan(&e.ID, &e.Description, &amount, &date, &category, &subcategory); err != nil {
			return nil, &trackererror.StoreError{Backend: "sqlite", Op: "scan", Err: err}
		}
		if err := fillRow(&e, amount, date, category, subcategory); err != nil {
			return nil, &trackererror.StoreError{Backend: "sqlite", Op: "decode", Err: err}
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, &trackererror.StoreError{Backend: "sqlite", Op: "select", Err: err}
	}
	return out, nil
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return &trackererror.StoreError{Backend: "sqlite", Op: "clear", Err: err}
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM expenses`); err != nil {
		return &trackererror.StoreError{Backend: "sqlite", Op: "clear", Err: err}
	}
	if err := tx.Commit(); err != nil {
		return &trackererror.StoreError{Backend: "sqlite", Op: "clear", Err: err}
	}
	r.logger.Info("All expenses cleared")
	return nil
}

// Persist is a no-op: every Add is already committed.
func (r *SQLiteRepository) Persist(context.Context) error {
	return nil
}

// Reload re-reads the highest stored id so new ids stay above it.
func (r *SQLiteRepository) Reload(ctx context.Context) error {
	var last int64
	if err := r.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(id), 0) FROM expenses`).Scan(&last); err != nil {
		return &trackererror.StoreError{Backend: "sqlite", Op: "reload", Err: err}
	}
	r.ids.Observe(last)
	return nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// fillRow decodes the textual columns shared by the SQL backends.
func fillRow(e *models.Expense, amount, date, category, subcategory string) error {
	a, err := decimal.NewFromString(amount)
	if err != nil {
		return fmt.Errorf("amount %q: %w", amount, err)
	}
	d, err := models.ParseDate(date)
	if err != nil {
		return fmt.Errorf("date %q: %w", date, err)
	}
	e.Amount = a
	e.Date = d
	e.Category = models.ParseCategory(category)
	e.Subcategory = subcategory
	return nil
}
