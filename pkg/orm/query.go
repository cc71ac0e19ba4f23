package orm

import (
	"context"
	"time"

	"github.com/shashiranjanraj/storefront/pkg/database"
	"github.com/shashiranjanraj/storefront/pkg/metrics"
	"gorm.io/gorm"
)

// Cacher is the subset of pkg/cache the query builder needs. The app kernel
// wires the Redis-backed implementation in; nil disables caching.
type Cacher interface {
	Get(key string, dest interface{}) bool
	Set(key string, value interface{}, ttl time.Duration) error
	Forget(keys ...string) error
}

var CacheStore Cacher

// Forget drops keys from the installed cache, if any.
func Forget(keys ...string) error {
	if CacheStore == nil {
		return nil
	}
	return CacheStore.Forget(keys...)
}

type Query struct {
	db *gorm.DB
}

// DB starts a query on the process-wide connection.
func DB() *Query {
	return &Query{db: database.DB}
}

// On starts a query on db, typically a transaction handle.
func On(db *gorm.DB) *Query {
	return &Query{db: db}
}

func (q *Query) WithContext(ctx context.Context) *Query {
	return &Query{db: q.db.WithContext(ctx)}
}

func (q *Query) Model(v interface{}) *Query {
	return &Query{db: q.db.Model(v)}
}

func (q *Query) Where(query interface{}, args ...interface{}) *Query {
	return &Query{db: q.db.Where(query, args...)}
}

func (q *Query) Order(value interface{}) *Query {
	return &Query{db: q.db.Order(value)}
}

func (q *Query) Select(query interface{}, args ...interface{}) *Query {
	return &Query{db: q.db.Select(query, args...)}
}

func (q *Query) Omit(columns ...string) *Query {
	return &Query{db: q.db.Omit(columns...)}
}

func (q *Query) Preload(query string, args ...interface{}) *Query {
	return &Query{db: q.db.Preload(query, args...)}
}

func (q *Query) Get(dest interface{}) error {
	defer metrics.ObserveDBQuery("select", time.Now())
	return q.db.Find(dest).Error
}

func (q *Query) First(dest interface{}) error {
	defer metrics.ObserveDBQuery("first", time.Now())
	return q.db.First(dest).Error
}

func (q *Query) Count() (int64, error) {
	var n int64
	err := q.db.Count(&n).Error
	return n, err
}

func (q *Query) Exists() (bool, error) {
	n, err := q.Limit(1).Count()
	return n > 0, err
}

func (q *Query) Create(v interface{}) error {
	return q.db.Create(v).Error
}

func (q *Query) Save(v interface{}) error {
	return q.db.Save(v).Error
}

// Delete removes v and reports whether a row matched.
func (q *Query) Delete(v interface{}) (bool, error) {
	res := q.db.Delete(v)
	return res.RowsAffected > 0, res.Error
}

// Raw exposes the underlying handle for statements the builder does not cover.
func (q *Query) Raw() *gorm.DB { return q.db }

func (q *Query) Limit(n int) *Query {
	return &Query{db: q.db.Limit(n)}
}

// Cache serves dest from the cache when possible, otherwise runs the query
// and stores the result for ttl.
func (q *Query) Cache(key string, ttl time.Duration, dest interface{}) error {
	if CacheStore != nil && CacheStore.Get(key, dest) {
		return nil
	}

	if err := q.db.Find(dest).Error; err != nil {
		return err
	}

	if CacheStore != nil {
		_ = CacheStore.Set(key, dest, ttl)
	}
	return nil
}
