package adapt

import "fmt"

// CalculateInput carries everything the parameter calculation needs. A zero
// Context (from AnalyzeContext over empty history) and empty Feedback are
// both valid.
type CalculateInput struct {
	RequestedFocus Focus
	Goals          []string
	FitnessLevel   FitnessLevel
	Feedback       DifficultyFeedback
	Context        PerformanceContext
}

const (
	feedbackRestDeltaSeconds = 15
	setsFloor                = 2
	restFloorSeconds         = 30

	lowCompletionThreshold = 80.0
	highTimeRatio          = 1.3
	lowTimeRatio           = 0.7
)

// levelCap bounds parameters per fitness level. Applied after every other
// adjustment so a beginner can never be prescribed an advanced load.
type levelCap struct {
	maxSets          int
	minReps, maxReps int
	extraRestSeconds int
}

var levelCaps = map[FitnessLevel]levelCap{
	LevelBeginner:     {maxSets: 3, minReps: 6, maxReps: 12, extraRestSeconds: 30},
	LevelIntermediate: {maxSets: 5, minReps: 4, maxReps: 15},
	LevelAdvanced:     {maxSets: 8, minReps: 1, maxReps: 20},
}

// CalculateParameters turns a template baseline, difficulty feedback, and the
// performance context into the next workout's parameters. Rules apply in a
// fixed order and each one that fires appends to Reasoning.
func CalculateParameters(in CalculateInput) AdaptiveParameters {
	focus := in.RequestedFocus
	if _, known := templates[focus]; !known {
		focus = FocusForGoals(in.Goals)
	}
	tmpl := TemplateFor(focus)

	params := AdaptiveParameters{
		Sets:        (tmpl.SetsMin + tmpl.SetsMax) / 2,
		Reps:        (tmpl.RepsMin + tmpl.RepsMax) / 2,
		RestSeconds: (tmpl.RestMinSeconds + tmpl.RestMaxSeconds) / 2,
		RPETarget:   (tmpl.RPEMin + tmpl.RPEMax) / 2,
		Intensity:   IntensityMaintain,
		Focus:       focus,
	}
	params.Reasoning = append(params.Reasoning, fmt.Sprintf("baseline from %s template midpoints", focus))

	applyFeedback(&params, in.Feedback)
	applyContext(&params, in.Context, tmpl)
	clampToTemplate(&params, tmpl)
	applyLevelCap(&params, in.FitnessLevel)

	return params
}

func applyFeedback(params *AdaptiveParameters, feedback DifficultyFeedback) {
	switch feedback {
	case FeedbackTooEasy:
		params.Sets++
		params.RestSeconds = max(restFloorSeconds, params.RestSeconds-feedbackRestDeltaSeconds)
		params.Intensity = IntensityIncrease
		params.Reasoning = append(params.Reasoning, "last workout felt too easy: added a set, shortened rest")
	case FeedbackTooHard:
		params.Sets = max(setsFloor, params.Sets-1)
		params.RestSeconds += feedbackRestDeltaSeconds
		params.Intensity = IntensityDecrease
		params.Reasoning = append(params.Reasoning, "last workout felt too hard: dropped a set, extended rest")
	}
}

func applyContext(params *AdaptiveParameters, ctx PerformanceContext, tmpl StructureTemplate) {
	if ctx.SessionCount > 0 && ctx.CompletionRate < lowCompletionThreshold {
		params.Sets = max(setsFloor, params.Sets-1)
		params.RestSeconds += feedbackRestDeltaSeconds
		params.Intensity = IntensityDecrease
		params.Reasoning = append(params.Reasoning, fmt.Sprintf("completion rate %.0f%% is low: reduced volume, extended rest", ctx.CompletionRate))
	}
	if ctx.TimeRatio > highTimeRatio {
		params.Reasoning = append(params.Reasoning, "recent sessions ran long: consider trimming accessory work")
	}
	if ctx.SessionCount > 0 && ctx.TimeRatio < lowTimeRatio && params.Intensity != IntensityDecrease {
		params.Sets = min(tmpl.SetsMax, params.Sets+1)
		params.Reasoning = append(params.Reasoning, "recent sessions finished quickly: added a set")
	}
	if ctx.RecentPRCount > 0 {
		params.Reasoning = append(params.Reasoning, fmt.Sprintf("%d recent personal record(s): keep riding the momentum", ctx.RecentPRCount))
	}
	if ctx.NeedsDeload {
		params.Sets = tmpl.SetsMin
		params.Reps = tmpl.RepsMax
		params.RestSeconds = tmpl.RestMaxSeconds
		params.Intensity = IntensityDecrease
		params.Reasoning = append(params.Reasoning, "deload week: minimum volume, lighter intensity, full rest")
	}
}

func clampToTemplate(params *AdaptiveParameters, tmpl StructureTemplate) {
	params.Sets = min(max(params.Sets, tmpl.SetsMin), tmpl.SetsMax)
	params.Reps = min(max(params.Reps, tmpl.RepsMin), tmpl.RepsMax)
	params.RestSeconds = min(max(params.RestSeconds, tmpl.RestMinSeconds), tmpl.RestMaxSeconds)
}

func applyLevelCap(params *AdaptiveParameters, level FitnessLevel) {
	cap, ok := levelCaps[level]
	if !ok {
		return
	}
	if params.Sets > cap.maxSets {
		params.Sets = cap.maxSets
		params.Reasoning = append(params.Reasoning, fmt.Sprintf("capped sets at %d for %s level", cap.maxSets, level))
	}
	if params.Reps < cap.minReps {
		params.Reps = cap.minReps
		params.Reasoning = append(params.Reasoning, fmt.Sprintf("raised reps to %d for %s level", cap.minReps, level))
	}
	if params.Reps > cap.maxReps {
		params.Reps = cap.maxReps
		params.Reasoning = append(params.Reasoning, fmt.Sprintf("capped reps at %d for %s level", cap.maxReps, level))
	}
	if cap.extraRestSeconds > 0 {
		params.RestSeconds += cap.extraRestSeconds
		params.Reasoning = append(params.Reasoning, fmt.Sprintf("added %ds rest for %s level", cap.extraRestSeconds, level))
	}
}
