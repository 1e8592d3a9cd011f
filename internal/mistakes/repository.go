package mistakes

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Dimaray2024/xiaona/internal/imaging"
	"github.com/Dimaray2024/xiaona/internal/store"
	"github.com/Dimaray2024/xiaona/internal/subject"
	"github.com/Dimaray2024/xiaona/internal/tutor"
)

// ImageCompressor shrinks a batch of images, keeping order.
type ImageCompressor interface {
	CompressAll(ctx context.Context, imgs []imaging.Image) ([]imaging.Image, error)
}

// StorageWriteError reports that the collection changed in memory but
// could not be written back.
type StorageWriteError struct {
	Err error
}

func (e *StorageWriteError) Error() string {
	return fmt.Sprintf("save mistakes: %v", e.Err)
}

func (e *StorageWriteError) Unwrap() error { return e.Err }

// AppendResult describes a completed append.
type AppendResult struct {
	// Added holds the new records in batch order.
	Added []Record

	// PersistErr is a *StorageWriteError when the records were added in
	// memory but not saved.
	PersistErr error
}

// Repository is the in-memory mistake collection backed by a KV key.
// All methods are safe for concurrent use. Readers never observe a
// partially applied batch.
type Repository struct {
	kv         store.KV
	compressor ImageCompressor
	now        func() time.Time
	logger     *slog.Logger

	mu        sync.RWMutex
	records   []Record
	lastStamp int64
}

// Option configures a Repository.
type Option func(*Repository)

// WithClock replaces time.Now for id generation.
func WithClock(now func() time.Time) Option {
	return func(r *Repository) { r.now = now }
}

// WithLogger sets the logger for storage problems.
func WithLogger(l *slog.Logger) Option {
	return func(r *Repository) { r.logger = l }
}

// NewRepository returns an empty repository. Call Load to read the
// stored collection.
func NewRepository(kv store.KV, compressor ImageCompressor, opts ...Option) *Repository {
	r := &Repository{
		kv:         kv,
		compressor: compressor,
		now:        time.Now,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Load reads the stored collection, replacing the in-memory one. Missing,
// unreadable or corrupted data yields an empty collection; the problem is
// logged, never returned.
func (r *Repository) Load(ctx context.Context) []Record {
	records := r.read(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = records
	for _, rec := range records {
		if s, ok := Timestamp(rec.ID); ok && s > r.lastStamp {
			r.lastStamp = s
		}
	}
	return cloneAll(records)
}

func (r *Repository) read(ctx context.Context) []Record {
	raw, ok, err := r.kv.Get(ctx, store.KeyMistakes)
	if err != nil {
		r.logger.Error("failed to read mistakes, starting empty", "err", err)
		return nil
	}
	if !ok {
		return nil
	}

	var records []Record
	if err := json.Unmarshal(raw, &records); err != nil {
		r.logger.Error("stored mistakes are corrupted, starting empty", "err", err, "bytes", len(raw))
		return nil
	}
	for i := range records {
		records[i].Subject = subject.Normalize(records[i].Subject)
	}
	return records
}

// Append adds one record per graded mistake, all sharing the compressed
// images of the batch. Images are compressed before anything changes; a
// compression failure leaves the collection untouched and is returned.
// A storage failure keeps the in-memory records and is reported through
// AppendResult.PersistErr.
func (r *Repository) Append(ctx context.Context, graded []tutor.GradedMistake, images []imaging.Image) (*AppendResult, error) {
	if len(graded) == 0 {
		return &AppendResult{}, nil
	}

	compressed, err := r.compressor.CompressAll(ctx, images)
	if err != nil {
		return nil, fmt.Errorf("compress homework images: %w", err)
	}
	urls := make([]string, len(compressed))
	for i, img := range compressed {
		urls[i] = img.DataURL()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stamp := r.now().UnixMilli()
	if stamp <= r.lastStamp {
		stamp = r.lastStamp + 1
	}

	added := make([]Record, len(graded))
	for i, g := range graded {
		added[i] = Record{
			ID:                 formatID(stamp, i),
			HomeworkImages:     urls,
			ProblemDescription: g.ProblemDescription,
			ReasonForError:     g.ReasonForError,
			CorrectSteps:       g.CorrectSteps,
			Subject:            subject.Normalize(g.Subject),
		}
	}

	next := make([]Record, 0, len(r.records)+len(added))
	next = append(next, r.records...)
	next = append(next, added...)
	r.records = next
	r.lastStamp = stamp

	res := &AppendResult{Added: cloneAll(added)}
	if err := r.persist(context.WithoutCancel(ctx), next); err != nil {
		r.logger.Error("failed to save mistakes", "err", err, "records", len(next))
		res.PersistErr = &StorageWriteError{Err: err}
	}
	return res, nil
}

// All returns a snapshot of the collection in insertion order.
func (r *Repository) All() []Record {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return cloneAll(r.records)
}

// Len returns the number of records.
func (r *Repository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}

// Get returns the record with id.
func (r *Repository) Get(id string) (Record, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, rec := range r.records {
		if rec.ID == id {
			return rec.clone(), true
		}
	}
	return Record{}, false
}

// Clear deletes the stored collection and empties memory. On failure the
// in-memory collection is kept.
func (r *Repository) Clear(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.kv.Delete(ctx, store.KeyMistakes); err != nil {
		return fmt.Errorf("clear mistakes: %w", err)
	}
	r.records = nil
	return nil
}

func (r *Repository) persist(ctx context.Context, records []Record) error {
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("marshal mistakes: %w", err)
	}
	return r.kv.Put(ctx, store.KeyMistakes, data)
}

func cloneAll(records []Record) []Record {
	out := make([]Record, len(records))
	for i, rec := range records {
		out[i] = rec.clone()
	}
	return out
}
