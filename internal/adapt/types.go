// Package adapt implements the workout personalization engine. It turns a
// user's profile, training-history aggregates, and situational context into
// concrete training parameters: sets, reps, rest, intensity, exercise
// substitutions, superset pairings, and comeback adjustments.
//
// Every component is a pure function over already-fetched inputs. The package
// performs no I/O of its own; collaborators hand it immutable data and persist
// whatever it returns.
package adapt

import "time"

// FitnessLevel classifies training experience.
type FitnessLevel string

const (
	LevelBeginner     FitnessLevel = "beginner"
	LevelIntermediate FitnessLevel = "intermediate"
	LevelAdvanced     FitnessLevel = "advanced"
)

// Focus is the training emphasis of a workout.
type Focus string

const (
	FocusStrength    Focus = "strength"
	FocusHypertrophy Focus = "hypertrophy"
	FocusEndurance   Focus = "endurance"
	FocusPower       Focus = "power"
	FocusHIIT        Focus = "hiit"
	FocusSkill       Focus = "skill"
	FocusPlyometric  Focus = "plyometric"
)

// IntensityModifier is the direction the next workout's intensity should move.
type IntensityModifier string

const (
	IntensityIncrease IntensityModifier = "increase"
	IntensityMaintain IntensityModifier = "maintain"
	IntensityDecrease IntensityModifier = "decrease"
)

// DifficultyFeedback is the user's self-reported difficulty of their most
// recent workout.
type DifficultyFeedback string

const (
	FeedbackTooEasy   DifficultyFeedback = "too_easy"
	FeedbackJustRight DifficultyFeedback = "just_right"
	FeedbackTooHard   DifficultyFeedback = "too_hard"
)

// UserProfile describes a user as provided by the profile store.
type UserProfile struct {
	ID                   string
	Age                  int
	Gender               string
	FitnessLevel         FitnessLevel
	Equipment            []string
	Injuries             []string
	Goals                []string
	CalibrationCompleted bool
	CalibrationSkipped   bool
	CreatedAt            time.Time
}

// PerformanceLogEntry is one logged set. Owned by the history store and
// read-only to the engine.
type PerformanceLogEntry struct {
	ExerciseName string
	WeightKg     float64
	Reps         int
	RPE          *float64
	Completed    bool
	CompletedAt  time.Time
}

// DifficultyRating is a session-level difficulty score on a 1-5 scale,
// recorded when the user finishes a workout.
type DifficultyRating struct {
	Score      float64
	RecordedAt time.Time
}

// StrengthRecord is a personal-record event from the history store.
type StrengthRecord struct {
	ExerciseName string
	RecordType   string
	Value        float64
	AchievedAt   time.Time
}

// StructureTemplate is the compiled-in parameter envelope for one focus.
type StructureTemplate struct {
	Focus          Focus
	SetsMin        int
	SetsMax        int
	RepsMin        int
	RepsMax        int
	RestMinSeconds int
	RestMaxSeconds int
	RPEMin         float64
	RPEMax         float64
	AllowSupersets bool
	AllowAMRAP     bool
	AllowDropSets  bool
}

// AdaptiveParameters is the engine's primary output: the concrete training
// parameters for the next workout plus an ordered audit trail of every rule
// that fired.
type AdaptiveParameters struct {
	Sets        int               `json:"sets"`
	Reps        int               `json:"reps"`
	RestSeconds int               `json:"rest_seconds"`
	RPETarget   float64           `json:"rpe_target"`
	Intensity   IntensityModifier `json:"intensity_modifier"`
	Focus       Focus             `json:"workout_focus"`
	Reasoning   []string          `json:"reasoning"`
}

// PerformanceContext aggregates recent history into the signals the
// calculator consumes.
type PerformanceContext struct {
	CompletionRate float64
	TimeRatio      float64
	AvgDifficulty  float64
	RecentPRCount  int
	NeedsDeload    bool
	SessionCount   int
}

// Trend describes the direction of an exercise's recent loading.
type Trend string

const (
	TrendIncreasing       Trend = "increasing"
	TrendDecreasing       Trend = "decreasing"
	TrendStable           Trend = "stable"
	TrendInsufficientData Trend = "insufficient_data"
)

// ExerciseStats holds per-exercise aggregates over the stats window.
type ExerciseStats struct {
	ExerciseName  string  `json:"exercise_name"`
	HasData       bool    `json:"has_data"`
	Message       string  `json:"message,omitempty"`
	TotalSets     int     `json:"total_sets"`
	TotalVolumeKg float64 `json:"total_volume_kg"`
	MaxWeightKg   float64 `json:"max_weight_kg"`
	MaxReps       int     `json:"max_reps"`
	AvgRPE        float64 `json:"avg_rpe"`
	Estimated1RM  float64 `json:"estimated_1rm"`
	Trend         Trend   `json:"progression_trend"`
}

// BreakType classifies a training gap by its length in days.
type BreakType string

const (
	BreakActive   BreakType = "active"
	BreakShort    BreakType = "short"
	BreakMedium   BreakType = "medium"
	BreakLong     BreakType = "long"
	BreakExtended BreakType = "extended"
)

// ComebackAdjustments describes how to soften workouts while a user ramps
// back up after a break.
type ComebackAdjustments struct {
	VolumeMultiplier    float64  `json:"volume_multiplier"`
	IntensityMultiplier float64  `json:"intensity_multiplier"`
	ExtraRestSeconds    int      `json:"extra_rest_seconds"`
	ExtraWarmupMinutes  int      `json:"extra_warmup_minutes"`
	MaxExerciseCount    int      `json:"max_exercise_count"`
	AvoidMovements      []string `json:"avoid_movements,omitempty"`
	FocusAreas          []string `json:"focus_areas,omitempty"`
}

// BreakStatus is the result of break detection for a user.
type BreakStatus struct {
	DaysSinceLastWorkout int                 `json:"days_since_last_workout"`
	BreakType            BreakType           `json:"break_type"`
	ComebackWeek         int                 `json:"comeback_week"`
	Adjustments          ComebackAdjustments `json:"adjustments"`
}

// MovementPattern groups exercises by mechanical pattern for calibration.
type MovementPattern string

const (
	PatternSquat MovementPattern = "squat"
	PatternHinge MovementPattern = "hinge"
	PatternPush  MovementPattern = "push"
	PatternPull  MovementPattern = "pull"
	PatternPress MovementPattern = "press"
)

// StrengthBaseline is one calibrated strength data point. The caller persists
// baselines after calibration completes.
type StrengthBaseline struct {
	ExerciseName    string          `json:"exercise_name"`
	MovementPattern MovementPattern `json:"movement_pattern"`
	WeightKg        float64         `json:"weight_kg"`
	Reps            int             `json:"reps"`
	Estimated1RM    float64         `json:"estimated_1rm"`
}

// WorkoutType separates recovery accounting for senior users.
type WorkoutType string

const (
	WorkoutStrength WorkoutType = "strength"
	WorkoutCardio   WorkoutType = "cardio"
)

// SeniorSettings caps training load for older users. A user-level override
// takes precedence over the age-bracket default when present.
type SeniorSettings struct {
	RecoveryMultiplier      float64
	MaxIntensityPercent     float64
	MinRestDays             map[WorkoutType]int
	ExtendedWarmupMinutes   int
	ExtendedCooldownMinutes int
	MaxExercises            int
	MobilityExercises       int
	BalanceExercises        int
}

// DropSetPlan attaches drop-set execution details to an exercise.
type DropSetPlan struct {
	Drops       int     `json:"drops"`
	DropPercent float64 `json:"drop_percent"`
	Instruction string  `json:"instruction"`
}

// PlannedExercise is one exercise slot in a planned workout. The engine
// mutates copies, never the caller's slice.
type PlannedExercise struct {
	Name            string       `json:"name"`
	MuscleGroup     string       `json:"muscle_group"`
	Sets            int          `json:"sets"`
	Reps            int          `json:"reps"`
	WeightKg        float64      `json:"weight_kg"`
	RestSeconds     int          `json:"rest_seconds"`
	IsCardio        bool         `json:"is_cardio,omitempty"`
	SupersetGroup   *int         `json:"superset_group,omitempty"`
	SupersetOrder   int          `json:"superset_order,omitempty"`
	IsAMRAP         bool         `json:"is_amrap,omitempty"`
	DurationSeconds int          `json:"duration_seconds,omitempty"`
	DropSet         *DropSetPlan `json:"drop_set,omitempty"`
	Notes           []string     `json:"notes,omitempty"`
}

// Workout is an ordered exercise list plus session-level metadata.
type Workout struct {
	Exercises       []PlannedExercise `json:"exercises"`
	WarmupMinutes   int               `json:"warmup_minutes"`
	CooldownMinutes int               `json:"cooldown_minutes"`
	SeniorModified  bool              `json:"senior_modified,omitempty"`
	Notes           []string          `json:"notes,omitempty"`
}
