package adapt

import (
	"context"
	"log/slog"
	"time"

	"github.com/liftapp/liftapp/internal/errors"
)

const contextLookbackDays = 14

// HistoryStore provides a user's training history. Implementations fetch
// once per request; the engine never writes.
type HistoryStore interface {
	RecentLogs(ctx context.Context, userID string, since time.Time) ([]PerformanceLogEntry, error)
	StrengthRecords(ctx context.Context, userID string, since time.Time) ([]StrengthRecord, error)
	DifficultyRatings(ctx context.Context, userID string, since time.Time) ([]DifficultyRating, error)
}

// ProfileStore provides user profiles and stored senior overrides.
type ProfileStore interface {
	User(ctx context.Context, userID string) (UserProfile, error)
	SeniorOverride(ctx context.Context, userID string) (*SeniorSettings, error)
}

// Service is the engine's entry point: it fetches the inputs the pure
// computation functions need and assembles their results. Construct one
// instance at startup and share it; it holds no mutable state.
type Service struct {
	history  HistoryStore
	profiles ProfileStore
	logger   *slog.Logger
	now      func() time.Time
}

// NewService wires a Service. The clock is injectable for tests; nil means
// time.Now.
func NewService(history HistoryStore, profiles ProfileStore, logger *slog.Logger, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{history: history, profiles: profiles, logger: logger, now: now}
}

// since converts a lookback in days into an anchor on the service clock.
func (s *Service) since(days int) time.Time {
	return s.now().AddDate(0, 0, -days)
}

// ParameterRequest is one personalization request.
type ParameterRequest struct {
	UserID         string
	RequestedFocus Focus
	Feedback       DifficultyFeedback
}

// PersonalizedParameters computes the next workout's parameters for a user
// from their profile and recent history.
func (s *Service) PersonalizedParameters(ctx context.Context, req ParameterRequest) (AdaptiveParameters, error) {
	profile, err := s.profiles.User(ctx, req.UserID)
	if err != nil {
		return AdaptiveParameters{}, errors.Wrap(err, "fetch user profile", slog.String("user_id", req.UserID))
	}
	perfCtx, err := s.performanceContext(ctx, req.UserID)
	if err != nil {
		return AdaptiveParameters{}, err
	}

	params := CalculateParameters(CalculateInput{
		RequestedFocus: req.RequestedFocus,
		Goals:          profile.Goals,
		FitnessLevel:   profile.FitnessLevel,
		Feedback:       req.Feedback,
		Context:        perfCtx,
	})
	s.logger.LogAttrs(ctx, slog.LevelDebug, "calculated adaptive parameters",
		slog.String("user_id", req.UserID),
		slog.String("focus", string(params.Focus)),
		slog.Int("sets", params.Sets),
		slog.Int("reps", params.Reps))
	return params, nil
}

// ExerciseStats aggregates a single exercise's history for a user.
func (s *Service) ExerciseStats(ctx context.Context, userID, exerciseName string) (ExerciseStats, error) {
	logs, err := s.history.RecentLogs(ctx, userID, s.since(statsWindowDays))
	if err != nil {
		return ExerciseStats{}, errors.Wrap(err, "fetch performance logs", slog.String("user_id", userID))
	}
	return ComputeExerciseStats(logs, exerciseName, s.now()), nil
}

// CheckComebackStatus reports whether the user is returning from a break and
// how their next workouts should be softened.
func (s *Service) CheckComebackStatus(ctx context.Context, userID string) (BreakStatus, error) {
	profile, err := s.profiles.User(ctx, userID)
	if err != nil {
		return BreakStatus{}, errors.Wrap(err, "fetch user profile", slog.String("user_id", userID))
	}
	logs, err := s.history.RecentLogs(ctx, userID, s.since(statsWindowDays))
	if err != nil {
		return BreakStatus{}, errors.Wrap(err, "fetch performance logs", slog.String("user_id", userID))
	}
	status := DetectBreak(profile, logs, s.now())
	if status.BreakType != BreakActive {
		s.logger.LogAttrs(ctx, slog.LevelInfo, "comeback detected",
			slog.String("user_id", userID),
			slog.String("break_type", string(status.BreakType)),
			slog.Int("comeback_week", status.ComebackWeek))
	}
	return status, nil
}

// PlanCalibration prescribes the calibration test sets for a user.
func (s *Service) PlanCalibration(ctx context.Context, userID string) ([]PlannedExercise, error) {
	profile, err := s.profiles.User(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "fetch user profile", slog.String("user_id", userID))
	}
	return CalibrationPlan(profile), nil
}

// CompleteCalibration turns performed calibration sets into baselines and
// profile suggestions. The caller persists the baselines.
func (s *Service) CompleteCalibration(ctx context.Context, userID string, results []CalibrationSetResult, assessment CalibrationAssessment) ([]StrengthBaseline, CalibrationSuggestions, error) {
	profile, err := s.profiles.User(ctx, userID)
	if err != nil {
		return nil, CalibrationSuggestions{}, errors.Wrap(err, "fetch user profile", slog.String("user_id", userID))
	}
	baselines := BaselinesFromCalibration(results)
	suggestions := SuggestAdjustments(profile, assessment)
	return baselines, suggestions, nil
}

// ComposeWorkoutRequest shapes a full workout composition.
type ComposeWorkoutRequest struct {
	UserID          string
	RequestedFocus  Focus
	Feedback        DifficultyFeedback
	Exercises       []PlannedExercise
	DurationMinutes int
}

// ComposeWorkout runs the full pipeline over a candidate exercise list:
// parameters, superset pairing, set modifiers, comeback softening, and the
// senior pipeline where applicable.
func (s *Service) ComposeWorkout(ctx context.Context, req ComposeWorkoutRequest) (Workout, AdaptiveParameters, error) {
	profile, err := s.profiles.User(ctx, req.UserID)
	if err != nil {
		return Workout{}, AdaptiveParameters{}, errors.Wrap(err, "fetch user profile", slog.String("user_id", req.UserID))
	}
	perfCtx, err := s.performanceContext(ctx, req.UserID)
	if err != nil {
		return Workout{}, AdaptiveParameters{}, err
	}

	params := CalculateParameters(CalculateInput{
		RequestedFocus: req.RequestedFocus,
		Goals:          profile.Goals,
		FitnessLevel:   profile.FitnessLevel,
		Feedback:       req.Feedback,
		Context:        perfCtx,
	})
	tmpl := TemplateFor(params.Focus)

	exercises := make([]PlannedExercise, len(req.Exercises))
	copy(exercises, req.Exercises)
	for i := range exercises {
		exercises[i].Sets = params.Sets
		exercises[i].Reps = params.Reps
		exercises[i].RestSeconds = params.RestSeconds
	}

	gates := EvaluateModifierGates(tmpl, profile.FitnessLevel, len(exercises), req.DurationMinutes)
	if gates.Supersets {
		exercises = PairSupersets(exercises)
	}
	if gates.DropSets {
		exercises = ApplyDropSets(exercises, DefaultMaxDropSetExercises)
	}
	if gates.AMRAP {
		exercises = AppendAMRAPFinisher(exercises, params.Focus)
	}

	workout := Workout{Exercises: exercises}

	logs, err := s.history.RecentLogs(ctx, req.UserID, s.since(statsWindowDays))
	if err != nil {
		return Workout{}, AdaptiveParameters{}, errors.Wrap(err, "fetch performance logs", slog.String("user_id", req.UserID))
	}
	status := DetectBreak(profile, logs, s.now())
	if status.BreakType != BreakActive {
		workout.Exercises = ApplyComebackAdjustments(workout.Exercises, status.Adjustments)
		workout.WarmupMinutes += status.Adjustments.ExtraWarmupMinutes
		workout.Notes = append(workout.Notes, "eased back in after a training break")
	}

	if settings, ok, err := s.seniorSettings(ctx, req.UserID, profile.Age); err != nil {
		return Workout{}, AdaptiveParameters{}, err
	} else if ok {
		workout = ApplySeniorModifications(workout, settings)
	}

	return workout, params, nil
}

// ApplySeniorModifications runs the senior pipeline over an already composed
// workout, using the user's stored settings or their age-bracket default.
// Workouts for users under 60 come back unchanged.
func (s *Service) ApplySeniorModifications(ctx context.Context, userID string, workout Workout) (Workout, error) {
	profile, err := s.profiles.User(ctx, userID)
	if err != nil {
		return Workout{}, errors.Wrap(err, "fetch user profile", slog.String("user_id", userID))
	}
	settings, ok, err := s.seniorSettings(ctx, userID, profile.Age)
	if err != nil {
		return Workout{}, err
	}
	if !ok {
		return workout, nil
	}
	return ApplySeniorModifications(workout, settings), nil
}

// CheckSeniorRecovery gates the user's next workout of the given type on
// their minimum rest days. Logs are not typed by workout, so the most recent
// session of any type anchors the gate. Users under 60 are always ready.
func (s *Service) CheckSeniorRecovery(ctx context.Context, userID string, workoutType WorkoutType) (RecoveryStatus, error) {
	profile, err := s.profiles.User(ctx, userID)
	if err != nil {
		return RecoveryStatus{}, errors.Wrap(err, "fetch user profile", slog.String("user_id", userID))
	}
	settings, ok, err := s.seniorSettings(ctx, userID, profile.Age)
	if err != nil {
		return RecoveryStatus{}, err
	}
	if !ok {
		return RecoveryStatus{Ready: true, Message: "no recovery restrictions"}, nil
	}
	logs, err := s.history.RecentLogs(ctx, userID, s.since(contextLookbackDays))
	if err != nil {
		return RecoveryStatus{}, errors.Wrap(err, "fetch performance logs", slog.String("user_id", userID))
	}
	var lastSession time.Time
	for _, entry := range logs {
		if entry.CompletedAt.After(lastSession) {
			lastSession = entry.CompletedAt
		}
	}
	return CheckRecovery(settings, workoutType, lastSession, s.now()), nil
}

// seniorSettings resolves a user's effective senior settings; ok is false for
// users the senior pipeline does not apply to.
func (s *Service) seniorSettings(ctx context.Context, userID string, age int) (SeniorSettings, bool, error) {
	if age < seniorMinAge {
		return SeniorSettings{}, false, nil
	}
	override, err := s.profiles.SeniorOverride(ctx, userID)
	if err != nil {
		return SeniorSettings{}, false, errors.Wrap(err, "fetch senior settings", slog.String("user_id", userID))
	}
	settings, ok := SeniorSettingsFor(age, override)
	return settings, ok, nil
}

// performanceContext fetches the analyzer's inputs and aggregates them.
func (s *Service) performanceContext(ctx context.Context, userID string) (PerformanceContext, error) {
	now := s.now()
	logs, err := s.history.RecentLogs(ctx, userID, now.AddDate(0, 0, -contextLookbackDays))
	if err != nil {
		return PerformanceContext{}, errors.Wrap(err, "fetch performance logs", slog.String("user_id", userID))
	}
	ratings, err := s.history.DifficultyRatings(ctx, userID, now.AddDate(0, 0, -contextLookbackDays))
	if err != nil {
		return PerformanceContext{}, errors.Wrap(err, "fetch difficulty ratings", slog.String("user_id", userID))
	}
	records, err := s.history.StrengthRecords(ctx, userID, now.AddDate(0, 0, -prWindowDays))
	if err != nil {
		return PerformanceContext{}, errors.Wrap(err, "fetch strength records", slog.String("user_id", userID))
	}
	return AnalyzeContext(logs, ratings, records, now), nil
}
