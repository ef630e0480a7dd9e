package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"fjacquet/expense-tracker/internal/logging"
	"fjacquet/expense-tracker/internal/models"
	"fjacquet/expense-tracker/internal/trackererror"
)

// BlobRepository keeps the records in memory and mirrors the whole sequence
// as one JSON array under a single key of a KV.
type BlobRepository struct {
	mu      sync.RWMutex
	kv      KV
	key     string
	records []models.Expense
	ids     *IDSequence
	logger  logging.Logger
}

// NewBlobRepository opens the blob stored under key and loads it.
func NewBlobRepository(ctx context.Context, kv KV, key string, logger logging.Logger) (*BlobRepository, error) {
	if kv == nil {
		return nil, fmt.Errorf("kv cannot be nil")
	}
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	r := &BlobRepository{
		kv:     kv,
		key:    key,
		ids:    NewIDSequence(0),
		logger: logger.WithField(logging.FieldBackend, "json"),
	}
	if err := r.Reload(ctx); err != nil {
		return nil, err
	}
	return r, nil
}

// NewMemoryRepository is a BlobRepository over a fresh MemoryKV.
func NewMemoryRepository() *BlobRepository {
	r, _ := NewBlobRepository(context.Background(), NewMemoryKV(), "expenses", nil)
	return r
}

func (r *BlobRepository) Add(ctx context.Context, e models.Expense) (models.Expense, error) {
	e = e.Normalized()
	if err := e.Validate(); err != nil {
		return models.Expense{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	e.ID = r.ids.Next()
	r.records = append(r.records, e)
	if err := r.persistLocked(ctx); err != nil {
		r.records = r.records[:len(r.records)-1]
		return models.Expense{}, err
	}

	r.logger.Debug("Expense added",
		logging.F(logging.FieldExpenseID, e.ID),
		logging.F(logging.FieldCategory, e.Category))
	return e, nil
}

func (r *BlobRepository) List(_ context.Context) ([]models.Expense, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.Expense, len(r.records))
	copy(out, r.records)
	return out, nil
}

func (r *BlobRepository) Clear(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.kv.Remove(ctx, r.key); err != nil {
		return &trackererror.StoreError{Backend: "json", Op: "clear", Err: err}
	}
	r.records = nil
	r.logger.Info("All expenses cleared")
	return nil
}

func (r *BlobRepository) Persist(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.persistLocked(ctx)
}

func (r *BlobRepository) persistLocked(ctx context.Context) error {
	records := r.records
	if records == nil {
		records = []models.Expense{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return &trackererror.StoreError{Backend: "json", Op: "encode", Err: err}
	}
	if err := r.kv.Set(ctx, r.key, data); err != nil {
		return &trackererror.StoreError{Backend: "json", Op: "persist", Err: err}
	}
	return nil
}

func (r *BlobRepository) Reload(ctx context.Context) error {
	data, err := r.kv.Get(ctx, r.key)
	if errors.Is(err, ErrKeyNotFound) {
		r.mu.Lock()
		r.records = nil
		r.mu.Unlock()
		return nil
	}
	if err != nil {
		return &trackererror.StoreError{Backend: "json", Op: "read", Err: err}
	}

	var records []models.Expense
	if len(data) > 0 {
		if err := json.Unmarshal(data, &records); err != nil {
			return &trackererror.StoreError{Backend: "json", Op: "decode", Err: err}
		}
	}
	for i := range records {
		records[i] = records[i].Normalized()
	}

	r.mu.Lock()
	r.records = records
	r.ids.Observe(maxID(records))
	r.mu.Unlock()

	r.logger.Debug("Expenses loaded", logging.F(logging.FieldCount, len(records)))
	return nil
}

func (r *BlobRepository) Close() error {
	return nil
}
