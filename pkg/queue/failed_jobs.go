package queue

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/storefront/pkg/logger"
)

// FailedJobRecord is a job that exhausted its retries.
type FailedJobRecord struct {
	ID       uint      `gorm:"primaryKey"`
	Name     string    `gorm:"size:255;not null;index"`
	Payload  string    `gorm:"type:text;not null"`
	Error    string    `gorm:"type:text"`
	Attempts int       `gorm:"not null;default:0"`
	FailedAt time.Time `gorm:"index"`
}

func (FailedJobRecord) TableName() string { return "failed_jobs" }

// FailedStore persists exhausted jobs.
type FailedStore interface {
	Save(ctx context.Context, rec *FailedJobRecord) error
}

// GormStore writes failed jobs to the failed_jobs table.
type GormStore struct{ DB *gorm.DB }

func (s GormStore) Save(ctx context.Context, rec *FailedJobRecord) error {
	return s.DB.WithContext(ctx).Create(rec).Error
}

// UseStore makes m persist exhausted jobs to store as well as in memory.
func (m *Manager) UseStore(store FailedStore) {
	m.mu.Lock()
	m.store = store
	m.mu.Unlock()
}

// UseDB persists the default manager's failed jobs with gorm. The
// failed_jobs table is created by the migrations.
func UseDB(db *gorm.DB) { defaultManager.UseStore(GormStore{DB: db}) }

func (m *Manager) recordFailure(ctx context.Context, name string, payload []byte, lastErr error, attempts int) {
	now := time.Now()

	m.mu.Lock()
	m.failed = append(m.failed, FailedJob{Name: name, Err: lastErr, FailedAt: now, Attempts: attempts})
	store := m.store
	m.mu.Unlock()

	if store == nil {
		return
	}

	rec := &FailedJobRecord{
		Name:     name,
		Payload:  string(payload),
		Attempts: attempts,
		FailedAt: now,
	}
	if lastErr != nil {
		rec.Error = lastErr.Error()
	}
	if err := store.Save(context.WithoutCancel(ctx), rec); err != nil {
		logger.Error("queue: persist failed job", "name", name, "error", err)
	}
}
