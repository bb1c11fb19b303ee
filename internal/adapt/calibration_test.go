package adapt_test

import (
	"math"
	"testing"

	"github.com/liftapp/liftapp/internal/adapt"
)

func TestEstimateOneRM(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		weight float64
		reps   int
		want   float64
	}{
		{name: "single rep is the max itself", weight: 200, reps: 1, want: 200},
		{name: "zero weight", weight: 0, reps: 5, want: 0},
		{name: "zero reps", weight: 100, reps: 0, want: 0},
		{name: "negative weight", weight: -50, reps: 5, want: 0},
		{name: "brzycki at five reps", weight: 100, reps: 5, want: 100 / (1.0278 - 0.0278*5)},
		{name: "brzycki at ten reps", weight: 100, reps: 10, want: 100 / (1.0278 - 0.0278*10)},
		{name: "high-rep curve at twelve reps", weight: 60, reps: 12, want: 60 * 36 / 25},
		{name: "implausible estimate discarded", weight: 480, reps: 10, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := adapt.EstimateOneRM(tt.weight, tt.reps)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("EstimateOneRM(%v, %d) = %v, want %v", tt.weight, tt.reps, got, tt.want)
			}
		})
	}
}

func TestEstimateOneRMFormulaBoundary(t *testing.T) {
	t.Parallel()

	// The formula switches at ten reps, with a known discontinuity between
	// the two curves. Document the behavior rather than smoothing it.
	atTen := adapt.EstimateOneRM(100, 10)
	atEleven := adapt.EstimateOneRM(100, 11)
	if atTen >= atEleven {
		t.Errorf("expected the high-rep curve to jump above brzycki at the boundary: reps=10 -> %v, reps=11 -> %v", atTen, atEleven)
	}
}

func TestGuidelineWeightKg(t *testing.T) {
	t.Parallel()

	male := adapt.GuidelineWeightKg(adapt.LevelIntermediate, adapt.PatternSquat, "male")
	female := adapt.GuidelineWeightKg(adapt.LevelIntermediate, adapt.PatternSquat, "female")
	if male <= female {
		t.Errorf("male guideline %v should exceed female guideline %v", male, female)
	}
	if other := adapt.GuidelineWeightKg(adapt.LevelIntermediate, adapt.PatternSquat, "nonbinary"); other != female {
		t.Errorf("unspecified gender = %v, want the lighter prescription %v", other, female)
	}
	if unknown := adapt.GuidelineWeightKg(adapt.FitnessLevel("elite"), adapt.PatternSquat, "male"); unknown == 0 {
		t.Error("unknown level should fall back to beginner weights, got 0")
	}
}

func TestCalibrationPlan(t *testing.T) {
	t.Parallel()

	plan := adapt.CalibrationPlan(adapt.UserProfile{
		FitnessLevel: adapt.LevelBeginner,
		Gender:       "female",
	})

	if len(plan) != 5 {
		t.Fatalf("plan has %d exercises, want one per movement pattern", len(plan))
	}
	for _, ex := range plan {
		if ex.Sets != 1 || ex.Reps != 5 {
			t.Errorf("%s prescribed %dx%d, want a single test set of five", ex.Name, ex.Sets, ex.Reps)
		}
		if ex.WeightKg <= 0 {
			t.Errorf("%s has no seed weight", ex.Name)
		}
	}
}

func TestBaselinesFromCalibration(t *testing.T) {
	t.Parallel()

	baselines := adapt.BaselinesFromCalibration([]adapt.CalibrationSetResult{
		{ExerciseName: "Bench Press", MovementPattern: adapt.PatternPush, WeightKg: 60, Reps: 5},
		{ExerciseName: "Goblet Squat", MovementPattern: adapt.PatternSquat, WeightKg: 0, Reps: 5}, // guard drops it
	})

	if len(baselines) != 1 {
		t.Fatalf("len = %d, want 1 (zero-weight set dropped)", len(baselines))
	}
	b := baselines[0]
	if b.ExerciseName != "Bench Press" || b.Estimated1RM <= b.WeightKg {
		t.Errorf("baseline = %+v", b)
	}
}

func TestSuggestAdjustments(t *testing.T) {
	t.Parallel()

	profile := adapt.UserProfile{FitnessLevel: adapt.LevelBeginner}

	t.Run("level mismatch proposes a change", func(t *testing.T) {
		t.Parallel()
		got := adapt.SuggestAdjustments(profile, adapt.CalibrationAssessment{
			AssessedLevel: adapt.LevelIntermediate,
			Confidence:    0.9,
		})
		if !got.ProposeLevelChange || got.SuggestedLevel != adapt.LevelIntermediate {
			t.Errorf("suggestions = %+v", got)
		}
		if !got.AdjustIntensityBand {
			t.Error("confident assessment should adjust the intensity band")
		}
	})

	t.Run("low confidence never touches intensity", func(t *testing.T) {
		t.Parallel()
		got := adapt.SuggestAdjustments(profile, adapt.CalibrationAssessment{
			AssessedLevel: adapt.LevelIntermediate,
			Confidence:    0.5,
		})
		if got.AdjustIntensityBand {
			t.Error("intensity band adjusted below the confidence threshold")
		}
	})

	t.Run("strength readings become weight multipliers", func(t *testing.T) {
		t.Parallel()
		got := adapt.SuggestAdjustments(profile, adapt.CalibrationAssessment{
			AssessedLevel: adapt.LevelBeginner,
			StrengthByPattern: map[adapt.MovementPattern]string{
				adapt.PatternSquat: "strong",
				adapt.PatternPush:  "needs_work",
				adapt.PatternPull:  "solid",
			},
		})
		if got.ProposeLevelChange {
			t.Error("matching level proposed a change")
		}
		if got.WeightMultipliers[adapt.PatternSquat] != 1.15 {
			t.Errorf("squat multiplier = %v, want 1.15", got.WeightMultipliers[adapt.PatternSquat])
		}
		if got.WeightMultipliers[adapt.PatternPush] != 0.85 {
			t.Errorf("push multiplier = %v, want 0.85", got.WeightMultipliers[adapt.PatternPush])
		}
		if got.WeightMultipliers[adapt.PatternPull] != 1.0 {
			t.Errorf("pull multiplier = %v, want 1.0", got.WeightMultipliers[adapt.PatternPull])
		}
	})
}
