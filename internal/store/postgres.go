package store

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"fjacquet/expense-tracker/internal/logging"
	"fjacquet/expense-tracker/internal/models"
	"fjacquet/expense-tracker/internal/trackererror"

	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed postgres_schema.sql
var postgresSchema string

// PostgresConfig holds the connection settings for PostgresRepository.
type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	MaxConns int
}

// ConnString renders the settings as a libpq keyword/value string.
func (c PostgresConfig) ConnString() string {
	port := c.Port
	if port == 0 {
		port = 5432
	}
	sslmode := c.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, port, c.User, c.Password, c.Database, sslmode)
}

// PostgresRepository stores records in a PostgreSQL table.
type PostgresRepository struct {
	pool   *pgxpool.Pool
	ids    *IDSequence
	logger logging.Logger
}

// NewPostgresRepository connects, applies the schema and seeds the id
// sequence from the stored rows.
func NewPostgresRepository(ctx context.Context, cfg PostgresConfig, logger logging.Logger) (*PostgresRepository, error) {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.ConnString())
	if err != nil {
		return nil, fmt.Errorf("parsing connection string: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = int32(cfg.MaxConns)
	}
	poolConfig.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}

	r := &PostgresRepository{
		pool:   pool,
		ids:    NewIDSequence(0),
		logger: logger.WithFields(logging.F(logging.FieldBackend, "postgres")),
	}
	if err := r.Reload(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	r.logger.Info("Connected to PostgreSQL",
		logging.F("host", cfg.Host),
		logging.F("database", cfg.Database))
	return r, nil
}

func (r *PostgresRepository) Add(ctx context.Context, e models.Expense) (models.Expense, error) {
	e = e.Normalized()
	if err := e.Validate(); err != nil {
		return models.Expense{}, err
	}
	e.ID = r.ids.Next()

	_, err := r.pool.Exec(ctx,
		`INSERT INTO expenses (id, description, amount, date, category, subcategory)
		 VALUES ($1, $2, $3::numeric, $4::date, $5, $6)`,
		e.ID, e.Description, e.Amount.String(), e.Date.String(), string(e.Category), e.Subcategory)
	if err != nil {
		return models.Expense{}, &trackererror.StoreError{Backend: "postgres", Op: "insert", Err: err}
	}
	return e, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]models.Expense, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, description, amount::text, to_char(date, 'YYYY-MM-DD'), category, subcategory
		 FROM expenses ORDER BY seq`)
	if err != nil {
		return nil, &trackererror.StoreError{Backend: "postgres", Op: "select", Err: err}
	}
	defer rows.Close()

	var out []models.Expense
	for rows.Next() {
		var e models.Expense
		var amount, date, category, subcategory string
		if err := rows.Scan(&e.ID, &e.Description, &amount, &date, &category, &subcategory); err != nil {
			return nil, &trackererror.StoreError{Backend: "postgres", Op: "scan", Err: err}
		}
		if err := fillRow(&e, amount, date, category, subcategory); err != nil {
			return nil, &trackererror.StoreError{Backend: "postgres", Op: "decode", Err: err}
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, &trackererror.StoreError{Backend: "postgres", Op: "select", Err: err}
	}
	return out, nil
}

func (r *PostgresRepository) Clear(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, `TRUNCATE expenses`); err != nil {
		return &trackererror.StoreError{Backend: "postgres", Op: "clear", Err: err}
	}
	r.logger.Info("All expenses cleared")
	return nil
}

// Persist is a no-op: every Add is already committed.
func (r *PostgresRepository) Persist(context.Context) error {
	return nil
}

func (r *PostgresRepository) Reload(ctx context.Context) error {
	var last int64
	if err := r.pool.QueryRow(ctx, `SELECT COALESCE(MAX(id), 0) FROM expenses`).Scan(&last); err != nil {
		return &trackererror.StoreError{Backend: "postgres", Op: "reload", Err: err}
	}
	r.ids.Observe(last)
	return nil
}

func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}
