package adapt

import (
	"fmt"
	"strings"
)

const (
	// oneRMPlausibilityCap discards estimates no recreational lifter
	// produces; anything above it is treated as a logging error.
	oneRMPlausibilityCap = 500.0

	// intensityConfidenceThreshold gates intensity-band proposals: below it
	// the assessment is too uncertain to act on.
	intensityConfidenceThreshold = 0.7

	calibrationTargetReps = 5
)

// EstimateOneRM estimates a one-rep max from a weight x reps set. Brzycki for
// ten reps and under; a steeper high-rep curve above that. A single rep is
// the 1RM by definition. Non-positive or implausible inputs yield 0.
func EstimateOneRM(weightKg float64, reps int) float64 {
	if weightKg <= 0 || reps <= 0 {
		return 0
	}
	if reps == 1 {
		return weightKg
	}

	var estimate float64
	if reps <= 10 {
		estimate = weightKg / (1.0278 - 0.0278*float64(reps))
	} else {
		if reps >= 37 {
			return 0
		}
		estimate = weightKg * 36 / (37 - float64(reps))
	}

	if estimate > oneRMPlausibilityCap {
		return 0
	}
	return estimate
}

// guidelineKey addresses the calibration starting-weight table.
type guidelineKey struct {
	level   FitnessLevel
	pattern MovementPattern
	male    bool
}

// guidelineWeights seeds calibration test sets, in kg. Conservative on
// purpose: calibration is there to measure, not to max out.
var guidelineWeights = map[guidelineKey]float64{
	{LevelBeginner, PatternSquat, true}: 40, {LevelBeginner, PatternSquat, false}: 25,
	{LevelBeginner, PatternHinge, true}: 50, {LevelBeginner, PatternHinge, false}: 30,
	{LevelBeginner, PatternPush, true}: 30, {LevelBeginner, PatternPush, false}: 17.5,
	{LevelBeginner, PatternPull, true}: 30, {LevelBeginner, PatternPull, false}: 20,
	{LevelBeginner, PatternPress, true}: 20, {LevelBeginner, PatternPress, false}: 12.5,

	{LevelIntermediate, PatternSquat, true}: 80, {LevelIntermediate, PatternSquat, false}: 50,
	{LevelIntermediate, PatternHinge, true}: 100, {LevelIntermediate, PatternHinge, false}: 60,
	{LevelIntermediate, PatternPush, true}: 60, {LevelIntermediate, PatternPush, false}: 35,
	{LevelIntermediate, PatternPull, true}: 55, {LevelIntermediate, PatternPull, false}: 35,
	{LevelIntermediate, PatternPress, true}: 40, {LevelIntermediate, PatternPress, false}: 25,

	{LevelAdvanced, PatternSquat, true}: 120, {LevelAdvanced, PatternSquat, false}: 80,
	{LevelAdvanced, PatternHinge, true}: 150, {LevelAdvanced, PatternHinge, false}: 95,
	{LevelAdvanced, PatternPush, true}: 90, {LevelAdvanced, PatternPush, false}: 55,
	{LevelAdvanced, PatternPull, true}: 80, {LevelAdvanced, PatternPull, false}: 50,
	{LevelAdvanced, PatternPress, true}: 60, {LevelAdvanced, PatternPress, false}: 37.5,
}

// GuidelineWeightKg returns the suggested calibration test weight for a
// level, movement pattern, and gender. Unknown genders get the lighter
// prescription; unknown levels fall back to beginner weights.
func GuidelineWeightKg(level FitnessLevel, pattern MovementPattern, gender string) float64 {
	male := strings.EqualFold(gender, "male")
	if w, ok := guidelineWeights[guidelineKey{level, pattern, male}]; ok {
		return w
	}
	return guidelineWeights[guidelineKey{LevelBeginner, pattern, male}]
}

// calibrationExercises maps each movement pattern to its test exercise.
var calibrationExercises = map[MovementPattern]string{
	PatternSquat: "Goblet Squat",
	PatternHinge: "Romanian Deadlift",
	PatternPush:  "Bench Press",
	PatternPull:  "Bent-Over Row",
	PatternPress: "Overhead Press",
}

var calibrationPatternOrder = []MovementPattern{
	PatternSquat, PatternHinge, PatternPush, PatternPull, PatternPress,
}

// CalibrationPlan prescribes one test set per movement pattern, seeded from
// the guideline table for the user's level and gender.
func CalibrationPlan(profile UserProfile) []PlannedExercise {
	plan := make([]PlannedExercise, 0, len(calibrationPatternOrder))
	for _, pattern := range calibrationPatternOrder {
		plan = append(plan, PlannedExercise{
			Name:        calibrationExercises[pattern],
			MuscleGroup: string(pattern),
			Sets:        1,
			Reps:        calibrationTargetReps,
			WeightKg:    GuidelineWeightKg(profile.FitnessLevel, pattern, profile.Gender),
			RestSeconds: 120,
			Notes:       []string{"calibration set: stop two reps short of failure"},
		})
	}
	return plan
}

// CalibrationSetResult is one performed calibration set as reported back by
// the caller.
type CalibrationSetResult struct {
	ExerciseName    string
	MovementPattern MovementPattern
	WeightKg        float64
	Reps            int
}

// BaselinesFromCalibration turns performed calibration sets into strength
// baselines. Sets whose 1RM estimate fails the numeric guards are dropped
// rather than persisted as zeros.
func BaselinesFromCalibration(results []CalibrationSetResult) []StrengthBaseline {
	baselines := make([]StrengthBaseline, 0, len(results))
	for _, r := range results {
		est := EstimateOneRM(r.WeightKg, r.Reps)
		if est <= 0 {
			continue
		}
		baselines = append(baselines, StrengthBaseline{
			ExerciseName:    r.ExerciseName,
			MovementPattern: r.MovementPattern,
			WeightKg:        r.WeightKg,
			Reps:            r.Reps,
			Estimated1RM:    est,
		})
	}
	return baselines
}

// CalibrationAssessment is the qualitative read of a completed calibration,
// typically produced by a coach review of the baselines.
type CalibrationAssessment struct {
	AssessedLevel     FitnessLevel
	Confidence        float64
	StrengthByPattern map[MovementPattern]string // strong, solid, needs_work
}

// CalibrationSuggestions is what the caller should change after calibration.
type CalibrationSuggestions struct {
	ProposeLevelChange  bool
	SuggestedLevel      FitnessLevel
	WeightMultipliers   map[MovementPattern]float64
	AdjustIntensityBand bool
	Notes               []string
}

// SuggestAdjustments reconciles a calibration assessment with the user's
// self-reported level. A mismatch proposes a profile change; per-pattern
// strength reads become weight multipliers; an intensity-band change is only
// proposed when the assessment is confident.
func SuggestAdjustments(profile UserProfile, assessment CalibrationAssessment) CalibrationSuggestions {
	suggestions := CalibrationSuggestions{
		SuggestedLevel:    profile.FitnessLevel,
		WeightMultipliers: make(map[MovementPattern]float64),
	}

	if assessment.AssessedLevel != "" && assessment.AssessedLevel != profile.FitnessLevel {
		suggestions.ProposeLevelChange = true
		suggestions.SuggestedLevel = assessment.AssessedLevel
		suggestions.Notes = append(suggestions.Notes,
			fmt.Sprintf("calibration assessed %s, profile says %s", assessment.AssessedLevel, profile.FitnessLevel))
	}

	for pattern, reading := range assessment.StrengthByPattern {
		switch reading {
		case "strong":
			suggestions.WeightMultipliers[pattern] = 1.15
		case "needs_work":
			suggestions.WeightMultipliers[pattern] = 0.85
		default:
			suggestions.WeightMultipliers[pattern] = 1.0
		}
	}

	if assessment.Confidence >= intensityConfidenceThreshold {
		suggestions.AdjustIntensityBand = true
	}
	return suggestions
}
