package adapt_test

import (
	"math"
	"testing"
	"time"

	"github.com/liftapp/liftapp/internal/adapt"
)

func TestClassifyBreakThresholds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		days int
		want adapt.BreakType
	}{
		{0, adapt.BreakActive},
		{6, adapt.BreakActive},
		{7, adapt.BreakShort},
		{13, adapt.BreakShort},
		{14, adapt.BreakMedium},
		{27, adapt.BreakMedium},
		{28, adapt.BreakLong},
		{41, adapt.BreakLong},
		{42, adapt.BreakExtended},
		{365, adapt.BreakExtended},
	}

	for _, tt := range tests {
		if got := adapt.ClassifyBreak(tt.days); got != tt.want {
			t.Errorf("ClassifyBreak(%d) = %q, want %q", tt.days, got, tt.want)
		}
	}
}

func TestComebackAdjustmentsWeekDecay(t *testing.T) {
	t.Parallel()

	// Medium break, 30-year-old: target 2 weeks, base reduction 25%/20%.
	week1 := adapt.ComebackAdjustmentsFor(adapt.BreakMedium, 30, 1)
	if math.Abs(week1.VolumeMultiplier-0.75) > 1e-9 {
		t.Errorf("week 1 VolumeMultiplier = %v, want 0.75", week1.VolumeMultiplier)
	}
	if math.Abs(week1.IntensityMultiplier-0.80) > 1e-9 {
		t.Errorf("week 1 IntensityMultiplier = %v, want 0.80", week1.IntensityMultiplier)
	}

	// Week 2 of 2: half the reduction remains.
	week2 := adapt.ComebackAdjustmentsFor(adapt.BreakMedium, 30, 2)
	if math.Abs(week2.VolumeMultiplier-0.875) > 1e-9 {
		t.Errorf("week 2 VolumeMultiplier = %v, want 0.875", week2.VolumeMultiplier)
	}

	// One past the target: back to normal.
	week3 := adapt.ComebackAdjustmentsFor(adapt.BreakMedium, 30, 3)
	if week3.VolumeMultiplier != 1.0 || week3.IntensityMultiplier != 1.0 {
		t.Errorf("week 3 multipliers = %v/%v, want 1.0/1.0", week3.VolumeMultiplier, week3.IntensityMultiplier)
	}
}

func TestComebackAdjustmentsCaps(t *testing.T) {
	t.Parallel()

	// 75-year-old, extended break, week 1: raw sum is 50+20=70% volume and
	// 40+20=60% intensity, both over the caps.
	adj := adapt.ComebackAdjustmentsFor(adapt.BreakExtended, 75, 1)

	if math.Abs(adj.VolumeMultiplier-0.40) > 1e-9 {
		t.Errorf("VolumeMultiplier = %v, want capped 0.40", adj.VolumeMultiplier)
	}
	if math.Abs(adj.IntensityMultiplier-0.50) > 1e-9 {
		t.Errorf("IntensityMultiplier = %v, want capped 0.50", adj.IntensityMultiplier)
	}
	if adj.ExtraRestSeconds != 30 {
		t.Errorf("ExtraRestSeconds = %d, want 30 for the 70-79 bracket", adj.ExtraRestSeconds)
	}
}

func TestComebackAdjustmentsAgeBrackets(t *testing.T) {
	t.Parallel()

	tests := []struct {
		age          int
		wantVolume   float64
		wantExtraSec int
	}{
		{25, 0.90, 0},
		{39, 0.90, 0},
		{45, 0.85, 10},
		{55, 0.80, 15},
		{65, 0.75, 20},
		{82, 0.65, 45},
	}

	for _, tt := range tests {
		adj := adapt.ComebackAdjustmentsFor(adapt.BreakShort, tt.age, 1)
		if math.Abs(adj.VolumeMultiplier-tt.wantVolume) > 1e-9 {
			t.Errorf("age %d: VolumeMultiplier = %v, want %v", tt.age, adj.VolumeMultiplier, tt.wantVolume)
		}
		if adj.ExtraRestSeconds != tt.wantExtraSec {
			t.Errorf("age %d: ExtraRestSeconds = %d, want %d", tt.age, adj.ExtraRestSeconds, tt.wantExtraSec)
		}
	}
}

func TestComebackTargetWeeksSeniorExtension(t *testing.T) {
	t.Parallel()

	// A 65-year-old's short-break ramp runs 2 weeks instead of 1, so week 2
	// still carries a reduction.
	adj := adapt.ComebackAdjustmentsFor(adapt.BreakShort, 65, 2)
	if adj.VolumeMultiplier >= 1.0 {
		t.Errorf("week 2 VolumeMultiplier = %v, want a remaining reduction for a senior", adj.VolumeMultiplier)
	}
}

func TestDetectBreakNewAccountExemption(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	profile := adapt.UserProfile{
		ID:        "u1",
		Age:       35,
		CreatedAt: now.AddDate(0, 0, -10),
	}

	// 20 nominal days off would classify as medium, but the account is only
	// ten days old.
	status := adapt.DetectBreak(profile, nil, now)

	if status.BreakType != adapt.BreakActive {
		t.Errorf("BreakType = %q, want active for a new account", status.BreakType)
	}
	if status.ComebackWeek != 0 {
		t.Errorf("ComebackWeek = %d, want 0", status.ComebackWeek)
	}
	if status.Adjustments.VolumeMultiplier != 1.0 {
		t.Errorf("VolumeMultiplier = %v, want 1.0", status.Adjustments.VolumeMultiplier)
	}
}

func TestDetectBreakFromLogs(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	profile := adapt.UserProfile{ID: "u1", Age: 35, CreatedAt: now.AddDate(0, -6, 0)}

	t.Run("currently away", func(t *testing.T) {
		t.Parallel()
		logs := []adapt.PerformanceLogEntry{
			{ExerciseName: "Squat", Completed: true, CompletedAt: now.AddDate(0, 0, -20)},
		}
		status := adapt.DetectBreak(profile, logs, now)
		if status.BreakType != adapt.BreakMedium {
			t.Errorf("BreakType = %q, want medium after 20 days", status.BreakType)
		}
		if status.ComebackWeek != 1 {
			t.Errorf("ComebackWeek = %d, want 1", status.ComebackWeek)
		}
	})

	t.Run("back in week two of a medium ramp", func(t *testing.T) {
		t.Parallel()
		logs := []adapt.PerformanceLogEntry{
			{ExerciseName: "Squat", Completed: true, CompletedAt: now.AddDate(0, 0, -30)},
			{ExerciseName: "Squat", Completed: true, CompletedAt: now.AddDate(0, 0, -10)}, // returned after a 20-day gap
			{ExerciseName: "Squat", Completed: true, CompletedAt: now.AddDate(0, 0, -6)},
			{ExerciseName: "Squat", Completed: true, CompletedAt: now.AddDate(0, 0, -3)},
		}
		status := adapt.DetectBreak(profile, logs, now)
		if status.BreakType != adapt.BreakMedium {
			t.Errorf("BreakType = %q, want medium", status.BreakType)
		}
		if status.ComebackWeek != 2 {
			t.Errorf("ComebackWeek = %d, want 2", status.ComebackWeek)
		}
	})

	t.Run("ramp complete", func(t *testing.T) {
		t.Parallel()
		logs := []adapt.PerformanceLogEntry{
			{ExerciseName: "Squat", Completed: true, CompletedAt: now.AddDate(0, 0, -30)},
			{ExerciseName: "Squat", Completed: true, CompletedAt: now.AddDate(0, 0, -20)}, // returned after a 10-day gap, 1-week ramp
			{ExerciseName: "Squat", Completed: true, CompletedAt: now.AddDate(0, 0, -15)},
			{ExerciseName: "Squat", Completed: true, CompletedAt: now.AddDate(0, 0, -10)},
			{ExerciseName: "Squat", Completed: true, CompletedAt: now.AddDate(0, 0, -5)},
			{ExerciseName: "Squat", Completed: true, CompletedAt: now.AddDate(0, 0, -2)},
		}
		status := adapt.DetectBreak(profile, logs, now)
		if status.BreakType != adapt.BreakActive {
			t.Errorf("BreakType = %q, want active once the ramp has elapsed", status.BreakType)
		}
	})
}

func TestApplyComebackAdjustments(t *testing.T) {
	t.Parallel()

	in := []adapt.PlannedExercise{
		{Name: "Squat", Sets: 4, Reps: 10, WeightKg: 100, RestSeconds: 90},
		{Name: "Bench Press", Sets: 4, Reps: 10, WeightKg: 80, RestSeconds: 90},
		{Name: "Row", Sets: 3, Reps: 12, WeightKg: 60, RestSeconds: 60},
	}
	adj := adapt.ComebackAdjustments{
		VolumeMultiplier:    0.5,
		IntensityMultiplier: 0.7,
		ExtraRestSeconds:    20,
		MaxExerciseCount:    2,
	}

	got := adapt.ApplyComebackAdjustments(in, adj)

	if len(got) != 2 {
		t.Fatalf("len = %d, want truncation to 2", len(got))
	}
	first := got[0]
	if first.Sets != 2 {
		t.Errorf("Sets = %d, want floor 2", first.Sets)
	}
	if first.Reps != 6 {
		t.Errorf("Reps = %d, want 6 (10 x 0.6 floored at 6)", first.Reps)
	}
	if first.WeightKg != 70 {
		t.Errorf("WeightKg = %v, want 70 (100 x 0.7 on the 2.5 grid)", first.WeightKg)
	}
	if first.RestSeconds != 110 {
		t.Errorf("RestSeconds = %d, want 110", first.RestSeconds)
	}
	if len(first.Notes) == 0 {
		t.Error("modified exercise missing its comeback note")
	}
	if in[0].Sets != 4 {
		t.Error("input slice was mutated")
	}
}

func TestApplyComebackAdjustmentsKeepsSupersetRest(t *testing.T) {
	t.Parallel()

	paired := adapt.PairSupersets([]adapt.PlannedExercise{
		exercise("Bench Press", "chest"),
		exercise("Barbell Row", "back"),
	})

	got := adapt.ApplyComebackAdjustments(paired, adapt.ComebackAdjustments{
		VolumeMultiplier:    0.9,
		IntensityMultiplier: 0.9,
		ExtraRestSeconds:    15,
	})

	if got[0].RestSeconds != 75 {
		t.Errorf("first RestSeconds = %d, want 60 + 15", got[0].RestSeconds)
	}
	// The second half of the pair rests with the first; its zero rest stays.
	if got[1].RestSeconds != 0 {
		t.Errorf("superset partner RestSeconds = %d, want 0", got[1].RestSeconds)
	}
}
