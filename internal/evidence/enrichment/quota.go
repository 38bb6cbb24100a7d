package enrichment

import (
	"sync"
	"time"

	"taxappeal/internal/evidence/models"
)

// MonthlyQuota counts paid provider calls against a ceiling that resets when
// the calendar month changes. It is process-local.
type MonthlyQuota struct {
	mu      sync.Mutex
	ceiling int
	month   string
	used    int
	now     func() time.Time
}

// NewMonthlyQuota creates a quota with a fixed ceiling. A nil clock uses
// time.Now.
func NewMonthlyQuota(ceiling int, now func() time.Time) *MonthlyQuota {
	if ceiling < 0 {
		ceiling = 0
	}
	if now == nil {
		now = time.Now
	}
	return &MonthlyQuota{ceiling: ceiling, now: now}
}

func monthKey(t time.Time) string {
	return t.UTC().Format("2006-01")
}

// roll resets the counter when the observed month differs. Callers hold mu.
func (q *MonthlyQuota) roll() {
	if m := monthKey(q.now()); m != q.month {
		q.month = m
		q.used = 0
	}
}

// TryAcquire reserves one call. It refuses, without counting, once the
// ceiling is reached.
func (q *MonthlyQuota) TryAcquire() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.roll()
	if q.used >= q.ceiling {
		return false
	}
	q.used++
	return true
}

// Exhausted reports whether the ceiling is reached for the current month.
func (q *MonthlyQuota) Exhausted() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.roll()
	return q.used >= q.ceiling
}

// Status reports usage for the current month.
func (q *MonthlyQuota) Status() models.QuotaStatus {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.roll()
	return models.QuotaStatus{
		Month:     q.month,
		Used:      q.used,
		Ceiling:   q.ceiling,
		Remaining: q.ceiling - q.used,
	}
}
