package adapt_test

import (
	"testing"
	"time"

	"github.com/liftapp/liftapp/internal/adapt"
)

var contextNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

// sessionLogs builds a session of n entries on the given day, spaced a minute
// apart, all marked completed unless completedThrough limits them.
func sessionLogs(day time.Time, n, completedThrough int) []adapt.PerformanceLogEntry {
	logs := make([]adapt.PerformanceLogEntry, 0, n)
	for i := 0; i < n; i++ {
		logs = append(logs, adapt.PerformanceLogEntry{
			ExerciseName: "Bench Press",
			WeightKg:     60,
			Reps:         10,
			Completed:    i < completedThrough,
			CompletedAt:  day.Add(time.Duration(i) * time.Minute),
		})
	}
	return logs
}

func TestAnalyzeContextNoHistory(t *testing.T) {
	t.Parallel()

	ctx := adapt.AnalyzeContext(nil, nil, nil, contextNow)

	if ctx.CompletionRate != 100 {
		t.Errorf("CompletionRate = %v, want neutral 100", ctx.CompletionRate)
	}
	if ctx.TimeRatio != 1.0 {
		t.Errorf("TimeRatio = %v, want neutral 1.0", ctx.TimeRatio)
	}
	if ctx.NeedsDeload {
		t.Error("NeedsDeload = true with no history")
	}
	if ctx.SessionCount != 0 {
		t.Errorf("SessionCount = %d, want 0", ctx.SessionCount)
	}
}

func TestAnalyzeContextCompletionRate(t *testing.T) {
	t.Parallel()

	day1 := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 3, 12, 9, 0, 0, 0, time.UTC)
	logs := append(sessionLogs(day1, 4, 4), sessionLogs(day2, 4, 2)...)

	ctx := adapt.AnalyzeContext(logs, nil, nil, contextNow)

	if ctx.SessionCount != 2 {
		t.Fatalf("SessionCount = %d, want 2", ctx.SessionCount)
	}
	// Session one is 100% complete, session two 50%: mean 75.
	if ctx.CompletionRate != 75 {
		t.Errorf("CompletionRate = %v, want 75", ctx.CompletionRate)
	}
}

func TestAnalyzeContextTimeRatio(t *testing.T) {
	t.Parallel()

	day := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	// Two entries 45 minutes apart: exactly the expected 2700s session.
	logs := []adapt.PerformanceLogEntry{
		{ExerciseName: "Squat", Completed: true, CompletedAt: day},
		{ExerciseName: "Squat", Completed: true, CompletedAt: day.Add(45 * time.Minute)},
	}

	ctx := adapt.AnalyzeContext(logs, nil, nil, contextNow)
	if ctx.TimeRatio != 1.0 {
		t.Errorf("TimeRatio = %v, want 1.0", ctx.TimeRatio)
	}
}

func TestAnalyzeContextDeloadSignals(t *testing.T) {
	t.Parallel()

	rate := func(scores ...float64) []adapt.DifficultyRating {
		ratings := make([]adapt.DifficultyRating, 0, len(scores))
		for i, s := range scores {
			ratings = append(ratings, adapt.DifficultyRating{
				Score:      s,
				RecordedAt: contextNow.AddDate(0, 0, -i),
			})
		}
		return ratings
	}

	t.Run("difficulty path needs four ratings", func(t *testing.T) {
		t.Parallel()
		ctx := adapt.AnalyzeContext(nil, rate(5, 5, 5), nil, contextNow)
		if ctx.NeedsDeload {
			t.Error("deload triggered on only three ratings")
		}
		ctx = adapt.AnalyzeContext(nil, rate(5, 5, 5, 5), nil, contextNow)
		if !ctx.NeedsDeload {
			t.Error("deload not triggered on four too-hard ratings")
		}
	})

	t.Run("low completion path needs three sessions", func(t *testing.T) {
		t.Parallel()
		var logs []adapt.PerformanceLogEntry
		for i := 0; i < 3; i++ {
			day := time.Date(2026, 3, 8+2*i, 9, 0, 0, 0, time.UTC)
			logs = append(logs, sessionLogs(day, 4, 2)...) // 50% completion
		}
		ctx := adapt.AnalyzeContext(logs, nil, nil, contextNow)
		if !ctx.NeedsDeload {
			t.Errorf("deload not triggered at %.0f%% completion over %d sessions", ctx.CompletionRate, ctx.SessionCount)
		}
	})
}

func TestAnalyzeContextRecentPRCount(t *testing.T) {
	t.Parallel()

	records := []adapt.StrengthRecord{
		{ExerciseName: "Deadlift", AchievedAt: contextNow.AddDate(0, 0, -2)},
		{ExerciseName: "Squat", AchievedAt: contextNow.AddDate(0, 0, -6)},
		{ExerciseName: "Bench Press", AchievedAt: contextNow.AddDate(0, 0, -10)},
	}

	ctx := adapt.AnalyzeContext(nil, nil, records, contextNow)
	if ctx.RecentPRCount != 2 {
		t.Errorf("RecentPRCount = %d, want 2 (ten-day-old PR is outside the window)", ctx.RecentPRCount)
	}
}
