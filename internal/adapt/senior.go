package adapt

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// seniorMinAge is the age from which the senior pipeline applies.
const seniorMinAge = 60

const (
	seniorMaxSets = 3
	seniorMaxReps = 12
)

// seniorBracket pairs an age floor with its default settings. Checked from
// oldest down; brackets cover 60+ with no gaps.
type seniorBracket struct {
	minAge   int
	settings SeniorSettings
}

var seniorBrackets = []seniorBracket{
	{minAge: 75, settings: SeniorSettings{
		RecoveryMultiplier:      1.5,
		MaxIntensityPercent:     60,
		MinRestDays:             map[WorkoutType]int{WorkoutStrength: 3, WorkoutCardio: 2},
		ExtendedWarmupMinutes:   15,
		ExtendedCooldownMinutes: 12,
		MaxExercises:            4,
		MobilityExercises:       3,
		BalanceExercises:        3,
	}},
	{minAge: 70, settings: SeniorSettings{
		RecoveryMultiplier:      1.4,
		MaxIntensityPercent:     70,
		MinRestDays:             map[WorkoutType]int{WorkoutStrength: 3, WorkoutCardio: 2},
		ExtendedWarmupMinutes:   15,
		ExtendedCooldownMinutes: 10,
		MaxExercises:            5,
		MobilityExercises:       3,
		BalanceExercises:        2,
	}},
	{minAge: 65, settings: SeniorSettings{
		RecoveryMultiplier:      1.3,
		MaxIntensityPercent:     75,
		MinRestDays:             map[WorkoutType]int{WorkoutStrength: 2, WorkoutCardio: 1},
		ExtendedWarmupMinutes:   12,
		ExtendedCooldownMinutes: 10,
		MaxExercises:            5,
		MobilityExercises:       2,
		BalanceExercises:        2,
	}},
	{minAge: seniorMinAge, settings: SeniorSettings{
		RecoveryMultiplier:      1.2,
		MaxIntensityPercent:     80,
		MinRestDays:             map[WorkoutType]int{WorkoutStrength: 2, WorkoutCardio: 1},
		ExtendedWarmupMinutes:   10,
		ExtendedCooldownMinutes: 8,
		MaxExercises:            6,
		MobilityExercises:       2,
		BalanceExercises:        1,
	}},
}

// substitution swaps a high-impact exercise for a joint-friendly alternative.
// Ordered; the first keyword that matches the exercise name wins.
type substitution struct {
	keyword     string
	replacement string
}

var seniorSubstitutions = []substitution{
	{keyword: "jump squat", replacement: "Bodyweight Squats"},
	{keyword: "box jump", replacement: "Step-Ups"},
	{keyword: "burpee", replacement: "Incline Push-Ups"},
	{keyword: "jumping lunge", replacement: "Reverse Lunges"},
	{keyword: "jump rope", replacement: "Marching in Place"},
	{keyword: "sprint", replacement: "Brisk Walking"},
	{keyword: "plyo", replacement: "Controlled Step-Ups"},
	{keyword: "jumping jack", replacement: "Side Steps with Arm Raise"},
	{keyword: "jump", replacement: "Low-Impact Alternative"},
}

var seniorMobilityExercises = []string{
	"Cat-Cow Stretch", "Hip Circles", "Shoulder Rolls", "Ankle Circles",
}

var seniorBalanceExercises = []string{
	"Single-Leg Stand", "Heel-to-Toe Walk", "Standing March",
}

// SeniorSettingsFor returns the settings for a user: their stored override
// when present, otherwise the age-bracket default. Users under 60 get no
// settings and ok=false.
func SeniorSettingsFor(age int, override *SeniorSettings) (SeniorSettings, bool) {
	if age < seniorMinAge {
		return SeniorSettings{}, false
	}
	if override != nil {
		return *override, true
	}
	for _, bracket := range seniorBrackets {
		if age >= bracket.minAge {
			return bracket.settings, true
		}
	}
	return SeniorSettings{}, false
}

// SubstituteHighImpact replaces an exercise name with its low-impact
// alternative when a substitution keyword matches, reporting whether a swap
// happened.
func SubstituteHighImpact(name string) (string, bool) {
	lowered := strings.ToLower(name)
	for _, sub := range seniorSubstitutions {
		if strings.Contains(lowered, sub.keyword) {
			return sub.replacement, true
		}
	}
	return name, false
}

// RecoveryStatus is the result of the senior recovery gate.
type RecoveryStatus struct {
	Ready         bool
	DaysRemaining int
	Message       string
}

// CheckRecovery gates a workout type on the minimum rest days since the last
// session of that type. A zero lastSession means no prior session and always
// passes.
func CheckRecovery(settings SeniorSettings, workoutType WorkoutType, lastSession time.Time, now time.Time) RecoveryStatus {
	if lastSession.IsZero() {
		return RecoveryStatus{Ready: true, Message: "no previous session of this type"}
	}
	minDays := settings.MinRestDays[workoutType]
	elapsed := daysBetween(lastSession, now)
	if elapsed >= minDays {
		return RecoveryStatus{Ready: true, Message: "recovered and ready to train"}
	}
	remaining := minDays - elapsed
	return RecoveryStatus{
		Ready:         false,
		DaysRemaining: remaining,
		Message:       fmt.Sprintf("%d more rest day(s) recommended before the next %s session", remaining, workoutType),
	}
}

// ApplySeniorModifications runs the fixed senior pipeline over a workout:
// substitute high-impact exercises, scale weight to the intensity cap, cap
// sets and reps, extend rest, truncate the list, then prepend the mobility
// block and insert balance work right after it. The input is not mutated.
func ApplySeniorModifications(workout Workout, settings SeniorSettings) Workout {
	exercises := make([]PlannedExercise, len(workout.Exercises))
	copy(exercises, workout.Exercises)

	for i := range exercises {
		if replacement, swapped := SubstituteHighImpact(exercises[i].Name); swapped {
			exercises[i].Notes = append(append([]string(nil), exercises[i].Notes...),
				fmt.Sprintf("replaced %s with a low-impact alternative", exercises[i].Name))
			exercises[i].Name = replacement
		}
		exercises[i].WeightKg = roundToNearest(exercises[i].WeightKg*settings.MaxIntensityPercent/100, 2.5)
		if exercises[i].Sets > seniorMaxSets {
			exercises[i].Sets = seniorMaxSets
		}
		if !exercises[i].IsCardio && exercises[i].Reps > seniorMaxReps {
			exercises[i].Reps = seniorMaxReps
		}
		exercises[i].RestSeconds = int(math.Round(float64(exercises[i].RestSeconds) * settings.RecoveryMultiplier))
	}

	if settings.MaxExercises > 0 && len(exercises) > settings.MaxExercises {
		exercises = exercises[:settings.MaxExercises]
	}

	mobility := seniorBlock(seniorMobilityExercises, settings.MobilityExercises, "mobility")
	balance := seniorBlock(seniorBalanceExercises, settings.BalanceExercises, "balance")
	combined := make([]PlannedExercise, 0, len(mobility)+len(balance)+len(exercises))
	combined = append(combined, mobility...)
	combined = append(combined, balance...)
	combined = append(combined, exercises...)

	return Workout{
		Exercises:       combined,
		WarmupMinutes:   settings.ExtendedWarmupMinutes,
		CooldownMinutes: settings.ExtendedCooldownMinutes,
		SeniorModified:  true,
		Notes: append(append([]string(nil), workout.Notes...),
			"adjusted for senior training guidelines"),
	}
}

func seniorBlock(pool []string, count int, kind string) []PlannedExercise {
	// Stored overrides are not validated on write, so count can be anything.
	count = min(max(count, 0), len(pool))
	block := make([]PlannedExercise, 0, count)
	for _, name := range pool[:count] {
		block = append(block, PlannedExercise{
			Name:        name,
			MuscleGroup: kind,
			Sets:        1,
			Reps:        10,
			RestSeconds: 30,
			Notes:       []string{fmt.Sprintf("%s work: slow and controlled", kind)},
		})
	}
	return block
}
