package embedding

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/kailas-cloud/vecspace/internal/domain"
	"github.com/kailas-cloud/vecspace/internal/metrics"
)

func TestBudgetTracker_RejectWhenExceeded(t *testing.T) {
	bt := NewBudgetTracker("test", 100, 0, BudgetActionReject, zap.NewNop())

	bt.Record(100)

	err := bt.Check(context.Background())
	if !errors.Is(err, domain.ErrEmbeddingQuotaExceeded) {
		t.Fatalf("expected domain.ErrEmbeddingQuotaExceeded, got %v", err)
	}
}

func TestBudgetTracker_WarnWhenExceeded(t *testing.T) {
	bt := NewBudgetTracker("test", 100, 0, BudgetActionWarn, zap.NewNop())

	bt.Record(200)

	if err := bt.Check(context.Background()); err != nil {
		t.Fatalf("expected nil error for warn action, got %v", err)
	}
}

func TestBudgetTracker_MonthlyReject(t *testing.T) {
	bt := NewBudgetTracker("test", 0, 500, BudgetActionReject, zap.NewNop())

	bt.Record(500)

	err := bt.Check(context.Background())
	if !errors.Is(err, domain.ErrEmbeddingQuotaExceeded) {
		t.Fatalf("expected domain.ErrEmbeddingQuotaExceeded for monthly limit, got %v", err)
	}
}

func TestBudgetTracker_UnlimitedWhenZero(t *testing.T) {
	bt := NewBudgetTracker("test", 0, 0, BudgetActionReject, zap.NewNop())

	bt.Record(999999999)

	if err := bt.Check(context.Background()); err != nil {
		t.Fatalf("expected nil error for unlimited budget, got %v", err)
	}
	if bt.RemainingDaily() != -1 || bt.RemainingMonthly() != -1 {
		t.Errorf("unlimited remaining = %d/%d", bt.RemainingDaily(), bt.RemainingMonthly())
	}
}

func TestBudgetTracker_Remaining(t *testing.T) {
	bt := NewBudgetTracker("test", 1000, 10000, BudgetActionWarn, zap.NewNop())

	bt.Record(300)
	if bt.RemainingDaily() != 700 {
		t.Errorf("daily remaining = %d, want 700", bt.RemainingDaily())
	}
	if bt.RemainingMonthly() != 9700 {
		t.Errorf("monthly remaining = %d, want 9700", bt.RemainingMonthly())
	}

	bt.Record(5000)
	if bt.RemainingDaily() != 0 {
		t.Errorf("overdrawn daily remaining = %d, want 0", bt.RemainingDaily())
	}
}

func TestBudgetTracker_DayRollover(t *testing.T) {
	bt := NewBudgetTracker("test", 100, 1000, BudgetActionReject, zap.NewNop())
	now := time.Date(2026, 3, 31, 23, 59, 0, 0, time.UTC)
	bt.setClock(func() time.Time { return now })

	bt.Record(100)
	if err := bt.Check(context.Background()); err == nil {
		t.Fatal("expected rejection before rollover")
	}

	now = now.Add(2 * time.Minute) // April 1st: new day and new month
	if err := bt.Check(context.Background()); err != nil {
		t.Fatalf("expected counters reset after rollover, got %v", err)
	}
	if bt.RemainingMonthly() != 1000 {
		t.Errorf("monthly remaining = %d, want 1000", bt.RemainingMonthly())
	}
}

func TestBudgetTracker_ConcurrentRecord(t *testing.T) {
	bt := NewBudgetTracker("test", 0, 1000000, BudgetActionWarn, zap.NewNop())

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			bt.Record(10)
		}()
	}
	wg.Wait()

	if bt.RemainingMonthly() != 1000000-500 {
		t.Errorf("monthly remaining = %d", bt.RemainingMonthly())
	}
}

func TestBudgetTracker_RejectionNamesPeriod(t *testing.T) {
	bt := NewBudgetTracker("test-period", 0, 50, BudgetActionReject, zap.NewNop())
	bt.Record(50)

	err := bt.Check(context.Background())
	if err == nil || !strings.Contains(err.Error(), "monthly limit of 50 tokens") {
		t.Fatalf("err = %v", err)
	}
	got := testutil.ToFloat64(metrics.EmbeddingBudgetExceededTotal.WithLabelValues("test-period", PeriodMonthly, "reject"))
	if got != 1 {
		t.Errorf("exceeded counter = %v, want 1", got)
	}
}

func TestBudgetTracker_CountsEveryExhaustedPeriod(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	bt := NewBudgetTracker("test-both", 10, 20, BudgetActionWarn, zap.New(core))
	bt.Record(30)

	if err := bt.Check(context.Background()); err != nil {
		t.Fatalf("warn action must not fail, got %v", err)
	}
	for _, period := range []string{PeriodDaily, PeriodMonthly} {
		got := testutil.ToFloat64(metrics.EmbeddingBudgetExceededTotal.WithLabelValues("test-both", period, "warn"))
		if got != 1 {
			t.Errorf("%s exceeded counter = %v, want 1", period, got)
		}
	}
	if n := logs.FilterMessage("Token budget exceeded").Len(); n != 2 {
		t.Errorf("warnings = %d, want one per period", n)
	}

	rb := NewBudgetTracker("test-both-reject", 10, 20, BudgetActionReject, zap.NewNop())
	rb.Record(30)
	err := rb.Check(context.Background())
	if err == nil || !strings.Contains(err.Error(), "daily limit") {
		t.Fatalf("reject must report the daily period first, got %v", err)
	}
	got := testutil.ToFloat64(metrics.EmbeddingBudgetExceededTotal.WithLabelValues("test-both-reject", PeriodMonthly, "reject"))
	if got != 1 {
		t.Errorf("monthly exceeded counter = %v, want 1", got)
	}
}

func TestParseBudgetAction(t *testing.T) {
	if ParseBudgetAction("reject") != BudgetActionReject {
		t.Error("reject not parsed")
	}
	for _, s := range []string{"", "warn", "other"} {
		if ParseBudgetAction(s) != BudgetActionWarn {
			t.Errorf("ParseBudgetAction(%q) != warn", s)
		}
	}
}
