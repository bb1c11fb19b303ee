package adapt_test

import (
	"strings"
	"testing"
	"time"

	"github.com/liftapp/liftapp/internal/adapt"
)

func TestSeniorSettingsFor(t *testing.T) {
	t.Parallel()

	t.Run("under sixty gets nothing", func(t *testing.T) {
		t.Parallel()
		if _, ok := adapt.SeniorSettingsFor(59, nil); ok {
			t.Error("settings returned for a 59-year-old")
		}
	})

	t.Run("brackets tighten with age", func(t *testing.T) {
		t.Parallel()
		ages := []struct {
			age           int
			wantIntensity float64
			wantRecovery  float64
		}{
			{60, 80, 1.2},
			{64, 80, 1.2},
			{65, 75, 1.3},
			{72, 70, 1.4},
			{75, 60, 1.5},
			{90, 60, 1.5},
		}
		for _, tt := range ages {
			settings, ok := adapt.SeniorSettingsFor(tt.age, nil)
			if !ok {
				t.Fatalf("no settings for age %d", tt.age)
			}
			if settings.MaxIntensityPercent != tt.wantIntensity {
				t.Errorf("age %d: MaxIntensityPercent = %v, want %v", tt.age, settings.MaxIntensityPercent, tt.wantIntensity)
			}
			if settings.RecoveryMultiplier != tt.wantRecovery {
				t.Errorf("age %d: RecoveryMultiplier = %v, want %v", tt.age, settings.RecoveryMultiplier, tt.wantRecovery)
			}
		}
	})

	t.Run("stored override wins", func(t *testing.T) {
		t.Parallel()
		override := &adapt.SeniorSettings{RecoveryMultiplier: 1.1, MaxIntensityPercent: 85}
		settings, ok := adapt.SeniorSettingsFor(70, override)
		if !ok || settings.MaxIntensityPercent != 85 {
			t.Errorf("override not honored: %+v", settings)
		}
	})
}

func TestSubstituteHighImpact(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		want    string
		swapped bool
	}{
		{"Jump Squats", "Bodyweight Squats", true},
		{"Box Jumps", "Step-Ups", true},
		{"Burpees", "Incline Push-Ups", true},
		{"Weighted Jump Squat", "Bodyweight Squats", true}, // first keyword match wins
		{"Bench Press", "Bench Press", false},
	}

	for _, tt := range tests {
		got, swapped := adapt.SubstituteHighImpact(tt.name)
		if got != tt.want || swapped != tt.swapped {
			t.Errorf("SubstituteHighImpact(%q) = (%q, %v), want (%q, %v)", tt.name, got, swapped, tt.want, tt.swapped)
		}
	}
}

func TestCheckRecovery(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	settings, _ := adapt.SeniorSettingsFor(72, nil) // strength needs 3 rest days

	t.Run("no prior session always passes", func(t *testing.T) {
		t.Parallel()
		status := adapt.CheckRecovery(settings, adapt.WorkoutStrength, time.Time{}, now)
		if !status.Ready {
			t.Error("not ready with no prior session")
		}
	})

	t.Run("too soon reports days remaining", func(t *testing.T) {
		t.Parallel()
		status := adapt.CheckRecovery(settings, adapt.WorkoutStrength, now.AddDate(0, 0, -1), now)
		if status.Ready {
			t.Fatal("ready one day after a strength session")
		}
		if status.DaysRemaining != 2 {
			t.Errorf("DaysRemaining = %d, want 2", status.DaysRemaining)
		}
		if !strings.Contains(status.Message, "strength") {
			t.Errorf("Message = %q, want mention of the workout type", status.Message)
		}
	})

	t.Run("recovered", func(t *testing.T) {
		t.Parallel()
		status := adapt.CheckRecovery(settings, adapt.WorkoutStrength, now.AddDate(0, 0, -3), now)
		if !status.Ready {
			t.Error("not ready after the full rest period")
		}
	})

	t.Run("cardio has a shorter gate", func(t *testing.T) {
		t.Parallel()
		status := adapt.CheckRecovery(settings, adapt.WorkoutCardio, now.AddDate(0, 0, -2), now)
		if !status.Ready {
			t.Error("cardio not ready after two days")
		}
	})
}

func TestApplySeniorModifications(t *testing.T) {
	t.Parallel()

	workout := adapt.Workout{
		Exercises: []adapt.PlannedExercise{
			{Name: "Jump Squats", MuscleGroup: "quadriceps", Sets: 5, Reps: 15, WeightKg: 40, RestSeconds: 60},
			{Name: "Bench Press", MuscleGroup: "chest", Sets: 4, Reps: 10, WeightKg: 60, RestSeconds: 90},
			{Name: "Treadmill Intervals", MuscleGroup: "cardio", Sets: 1, Reps: 20, IsCardio: true, RestSeconds: 60},
		},
	}
	settings, _ := adapt.SeniorSettingsFor(67, nil)

	got := adapt.ApplySeniorModifications(workout, settings)

	if !got.SeniorModified {
		t.Error("SeniorModified not set")
	}
	if got.WarmupMinutes != 12 || got.CooldownMinutes != 10 {
		t.Errorf("warmup/cooldown = %d/%d, want 12/10", got.WarmupMinutes, got.CooldownMinutes)
	}

	// Mobility block first, balance immediately after, then the main work.
	if len(got.Exercises) != 2+2+3 {
		t.Fatalf("exercise count = %d, want 2 mobility + 2 balance + 3 main", len(got.Exercises))
	}
	for i := 0; i < 2; i++ {
		if got.Exercises[i].MuscleGroup != "mobility" {
			t.Errorf("exercise %d group = %q, want mobility", i, got.Exercises[i].MuscleGroup)
		}
	}
	for i := 2; i < 4; i++ {
		if got.Exercises[i].MuscleGroup != "balance" {
			t.Errorf("exercise %d group = %q, want balance", i, got.Exercises[i].MuscleGroup)
		}
	}

	main := got.Exercises[4:]
	if main[0].Name != "Bodyweight Squats" {
		t.Errorf("high-impact exercise not substituted: %q", main[0].Name)
	}
	if main[0].Sets != 3 {
		t.Errorf("Sets = %d, want cap 3", main[0].Sets)
	}
	if main[0].Reps != 12 {
		t.Errorf("Reps = %d, want cap 12", main[0].Reps)
	}
	if main[2].Reps != 20 {
		t.Errorf("cardio Reps = %d, want uncapped 20", main[2].Reps)
	}
	// 60kg at 75% intensity on the 2.5 grid.
	if main[1].WeightKg != 45 {
		t.Errorf("WeightKg = %v, want 45", main[1].WeightKg)
	}
	// 90s rest at 1.3 recovery.
	if main[1].RestSeconds != 117 {
		t.Errorf("RestSeconds = %d, want 117", main[1].RestSeconds)
	}
	if workout.Exercises[0].Name != "Jump Squats" {
		t.Error("input workout mutated")
	}
}

func TestApplySeniorModificationsOutOfRangeBlockCounts(t *testing.T) {
	t.Parallel()

	workout := adapt.Workout{
		Exercises: []adapt.PlannedExercise{
			{Name: "Bench Press", MuscleGroup: "chest", Sets: 3, Reps: 10, WeightKg: 40, RestSeconds: 60},
		},
	}

	// A stored override round-trips unvalidated, so the pipeline has to take
	// whatever counts come back.
	got := adapt.ApplySeniorModifications(workout, adapt.SeniorSettings{
		RecoveryMultiplier:  1.2,
		MaxIntensityPercent: 80,
		MobilityExercises:   -1,
		BalanceExercises:    -3,
	})
	if len(got.Exercises) != 1 {
		t.Fatalf("exercise count = %d, want just the main lift", len(got.Exercises))
	}
	if got.Exercises[0].Name != "Bench Press" {
		t.Errorf("Name = %q, want Bench Press", got.Exercises[0].Name)
	}

	got = adapt.ApplySeniorModifications(workout, adapt.SeniorSettings{
		RecoveryMultiplier:  1.2,
		MaxIntensityPercent: 80,
		MobilityExercises:   100,
		BalanceExercises:    100,
	})
	for _, ex := range got.Exercises[:len(got.Exercises)-1] {
		if ex.MuscleGroup != "mobility" && ex.MuscleGroup != "balance" {
			t.Errorf("unexpected group %q in the prepended blocks", ex.MuscleGroup)
		}
	}
}
