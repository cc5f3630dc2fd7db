package embedding

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/vecspace/internal/domain"
	"github.com/kailas-cloud/vecspace/internal/metrics"
)

// BudgetAction decides what happens once a token limit is reached.
type BudgetAction string

const (
	// BudgetActionWarn logs and lets the request through.
	BudgetActionWarn BudgetAction = "warn"
	// BudgetActionReject fails the request with ErrEmbeddingQuotaExceeded.
	BudgetActionReject BudgetAction = "reject"
)

// ParseBudgetAction maps a config value to an action. Anything but
// "reject" warns.
func ParseBudgetAction(s string) BudgetAction {
	if s == string(BudgetActionReject) {
		return BudgetActionReject
	}
	return BudgetActionWarn
}

// Budget periods, also used as metric labels.
const (
	PeriodDaily   = "daily"
	PeriodMonthly = "monthly"
)

// window counts tokens spent since the start of the current UTC period.
type window struct {
	period string
	limit  int64 // 0 = unlimited
	used   int64
	start  time.Time
	floor  func(time.Time) time.Time
}

func (w *window) roll(now time.Time) {
	if s := w.floor(now); s.After(w.start) {
		w.start = s
		w.used = 0
	}
}

func (w *window) exceeded() bool {
	return w.limit > 0 && w.used >= w.limit
}

func (w *window) remaining() int64 {
	switch {
	case w.limit == 0:
		return -1
	case w.used >= w.limit:
		return 0
	default:
		return w.limit - w.used
	}
}

// BudgetTracker is an in-memory token budget for query embeddings. Counters
// reset at UTC day and month boundaries and do not survive a restart.
type BudgetTracker struct {
	mu       sync.Mutex
	daily    window
	monthly  window
	action   BudgetAction
	provider string
	now      func() time.Time
	logger   *zap.Logger
}

// NewBudgetTracker creates a tracker; a zero limit disables that period.
func NewBudgetTracker(
	provider string, dailyLimit, monthlyLimit int64,
	action BudgetAction, logger *zap.Logger,
) *BudgetTracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	b := &BudgetTracker{
		daily:    window{period: PeriodDaily, limit: dailyLimit, floor: startOfDay},
		monthly:  window{period: PeriodMonthly, limit: monthlyLimit, floor: startOfMonth},
		action:   action,
		provider: provider,
		logger:   logger,
	}
	b.setClock(time.Now)
	return b
}

// setClock swaps the time source and re-anchors both windows on it.
func (b *BudgetTracker) setClock(now func() time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.now = now
	t := now().UTC()
	b.daily.start, b.monthly.start = startOfDay(t), startOfMonth(t)
}

// Check reports whether another request fits the budget. With the reject
// action an exhausted period fails with ErrEmbeddingQuotaExceeded.
func (b *BudgetTracker) Check(_ context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.roll()

	var err error
	for _, w := range []*window{&b.daily, &b.monthly} {
		if !w.exceeded() {
			continue
		}
		metrics.EmbeddingBudgetExceededTotal.WithLabelValues(b.provider, w.period, string(b.action)).Inc()
		if b.action == BudgetActionReject {
			if err == nil {
				err = fmt.Errorf("%s limit of %d tokens reached: %w",
					w.period, w.limit, domain.ErrEmbeddingQuotaExceeded)
			}
			continue
		}
		b.logger.Warn("Token budget exceeded",
			zap.String("provider", b.provider),
			zap.String("period", w.period),
			zap.Int64("used", w.used),
			zap.Int64("limit", w.limit),
		)
	}
	return err
}

// Record charges tokens to both periods.
func (b *BudgetTracker) Record(tokens int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.roll()
	b.daily.used += tokens
	b.monthly.used += tokens
}

// RemainingDaily returns tokens left today, -1 when unlimited.
func (b *BudgetTracker) RemainingDaily() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.roll()
	return b.daily.remaining()
}

// RemainingMonthly returns tokens left this month, -1 when unlimited.
func (b *BudgetTracker) RemainingMonthly() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.roll()
	return b.monthly.remaining()
}

func (b *BudgetTracker) roll() {
	now := b.now().UTC()
	b.daily.roll(now)
	b.monthly.roll(now)
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func startOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
