package adapt

import (
	"fmt"
	"strings"
)

const (
	modifierMinExercises       = 4
	supersetMinDurationMinutes = 15
	supersetMaxDurationMinutes = 45

	amrapDurationSeconds = 60

	// DefaultMaxDropSetExercises bounds how many exercises in one workout
	// get a drop set attached.
	DefaultMaxDropSetExercises = 2

	dropSetDrops       = 2
	dropSetDropPercent = 20.0
)

// amrapCandidates lists finisher exercises per focus, in preference order.
var amrapCandidates = map[Focus][]string{
	FocusHypertrophy: {"Push-Ups", "Bodyweight Squats", "Dumbbell Curls"},
	FocusEndurance:   {"Burpees", "Mountain Climbers", "Jumping Jacks"},
	FocusHIIT:        {"Burpees", "Kettlebell Swings", "Battle Ropes"},
}

// dropSetWhitelist marks exercises mechanically suited to drop sets:
// isolation and machine movements where failure is safe.
var dropSetWhitelist = []string{
	"machine", "cable", "dumbbell", "isolation", "curl", "extension",
	"fly", "raise", "pushdown", "pulldown", "row",
}

// dropSetBlacklist excludes heavy compound and explosive lifts even when a
// whitelist keyword matches (e.g. "Power Dumbbell Snatch").
var dropSetBlacklist = []string{
	"squat", "deadlift", "bench press", "overhead press",
	"clean", "snatch", "jerk", "power", "explosive",
}

// ModifierGates reports which set modifiers a workout qualifies for.
type ModifierGates struct {
	Supersets bool
	AMRAP     bool
	DropSets  bool
}

// EvaluateModifierGates applies the capability and safety gates: the template
// must allow the modifier, the workout needs at least four exercises,
// supersets additionally need a 15-45 minute duration, and AMRAP/drop sets
// are never offered to beginners.
func EvaluateModifierGates(tmpl StructureTemplate, level FitnessLevel, exerciseCount, durationMinutes int) ModifierGates {
	enough := exerciseCount >= modifierMinExercises
	experienced := level == LevelIntermediate || level == LevelAdvanced

	return ModifierGates{
		Supersets: tmpl.AllowSupersets && enough &&
			durationMinutes >= supersetMinDurationMinutes && durationMinutes <= supersetMaxDurationMinutes,
		AMRAP:    tmpl.AllowAMRAP && enough && experienced,
		DropSets: tmpl.AllowDropSets && enough && experienced,
	}
}

// AppendAMRAPFinisher appends an open-ended finisher chosen from the focus's
// candidate list, skipping any exercise already in the workout. The returned
// slice is a copy; when no candidate qualifies the copy is unchanged.
func AppendAMRAPFinisher(exercises []PlannedExercise, focus Focus) []PlannedExercise {
	out := make([]PlannedExercise, len(exercises))
	copy(out, exercises)

	for _, candidate := range amrapCandidates[focus] {
		if workoutContains(out, candidate) {
			continue
		}
		out = append(out, PlannedExercise{
			Name:            candidate,
			Sets:            1,
			Reps:            0, // open-ended
			RestSeconds:     0,
			IsAMRAP:         true,
			DurationSeconds: amrapDurationSeconds,
			Notes:           []string{"finisher: as many reps as possible in 60 seconds"},
		})
		break
	}
	return out
}

func workoutContains(exercises []PlannedExercise, name string) bool {
	for _, ex := range exercises {
		if strings.EqualFold(ex.Name, name) {
			return true
		}
	}
	return false
}

// ApplyDropSets attaches drop-set plans to eligible exercises, walking the
// list in order and stopping after maxExercises applications (zero or
// negative means the default cap). Eligibility is keyword-based: a whitelist
// substring must match and no blacklist substring may.
func ApplyDropSets(exercises []PlannedExercise, maxExercises int) []PlannedExercise {
	if maxExercises <= 0 {
		maxExercises = DefaultMaxDropSetExercises
	}

	out := make([]PlannedExercise, len(exercises))
	copy(out, exercises)

	applied := 0
	for i := range out {
		if applied >= maxExercises {
			break
		}
		if !dropSetEligible(out[i].Name) {
			continue
		}
		out[i].DropSet = &DropSetPlan{
			Drops:       dropSetDrops,
			DropPercent: dropSetDropPercent,
			Instruction: fmt.Sprintf("on the final set, drop the weight %.0f%% and continue without rest, %d times", dropSetDropPercent, dropSetDrops),
		}
		applied++
	}
	return out
}

func dropSetEligible(name string) bool {
	lowered := strings.ToLower(name)
	for _, kw := range dropSetBlacklist {
		if strings.Contains(lowered, kw) {
			return false
		}
	}
	for _, kw := range dropSetWhitelist {
		if strings.Contains(lowered, kw) {
			return true
		}
	}
	return false
}
