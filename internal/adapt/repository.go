package adapt

import (
	"context"
	"database/sql"
	"log/slog"
	"strings"
	"time"

	"github.com/liftapp/liftapp/internal/errors"
	"github.com/liftapp/liftapp/internal/sqlite"
)

// timestampFormat is RFC 3339 with millisecond precision, always UTC, so
// lexicographic comparison in SQL matches chronological order.
const timestampFormat = "2006-01-02T15:04:05.000Z"

// listSeparator packs string lists into a single TEXT column.
const listSeparator = ";"

// SQLiteHistoryStore implements HistoryStore on the application database.
type SQLiteHistoryStore struct {
	db *sqlite.Database
}

func NewSQLiteHistoryStore(db *sqlite.Database) *SQLiteHistoryStore {
	return &SQLiteHistoryStore{db: db}
}

func (s *SQLiteHistoryStore) RecentLogs(ctx context.Context, userID string, since time.Time) ([]PerformanceLogEntry, error) {
	rows, err := s.db.ReadOnly.QueryContext(ctx, `
		SELECT exercise_name, weight_kg, reps, rpe, completed, completed_at
		FROM performance_logs
		WHERE user_id = ? AND completed_at >= ?
		ORDER BY completed_at`, userID, since.UTC().Format(timestampFormat))
	if err != nil {
		return nil, errors.Wrap(err, "query performance logs", slog.String("user_id", userID))
	}
	defer rows.Close()

	var logs []PerformanceLogEntry
	for rows.Next() {
		var (
			entry       PerformanceLogEntry
			rpe         sql.NullFloat64
			completed   int
			completedAt string
		)
		if err := rows.Scan(&entry.ExerciseName, &entry.WeightKg, &entry.Reps, &rpe, &completed, &completedAt); err != nil {
			return nil, errors.Wrap(err, "scan performance log")
		}
		if rpe.Valid {
			entry.RPE = &rpe.Float64
		}
		entry.Completed = completed != 0
		if entry.CompletedAt, err = time.Parse(timestampFormat, completedAt); err != nil {
			return nil, errors.Wrap(err, "parse completed_at", slog.String("value", completedAt))
		}
		logs = append(logs, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate performance logs")
	}
	return logs, nil
}

func (s *SQLiteHistoryStore) StrengthRecords(ctx context.Context, userID string, since time.Time) ([]StrengthRecord, error) {
	rows, err := s.db.ReadOnly.QueryContext(ctx, `
		SELECT exercise_name, record_type, value, achieved_at
		FROM strength_records
		WHERE user_id = ? AND achieved_at >= ?
		ORDER BY achieved_at`, userID, since.UTC().Format(timestampFormat))
	if err != nil {
		return nil, errors.Wrap(err, "query strength records", slog.String("user_id", userID))
	}
	defer rows.Close()

	var records []StrengthRecord
	for rows.Next() {
		var (
			rec        StrengthRecord
			achievedAt string
		)
		if err := rows.Scan(&rec.ExerciseName, &rec.RecordType, &rec.Value, &achievedAt); err != nil {
			return nil, errors.Wrap(err, "scan strength record")
		}
		if rec.AchievedAt, err = time.Parse(timestampFormat, achievedAt); err != nil {
			return nil, errors.Wrap(err, "parse achieved_at", slog.String("value", achievedAt))
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate strength records")
	}
	return records, nil
}

func (s *SQLiteHistoryStore) DifficultyRatings(ctx context.Context, userID string, since time.Time) ([]DifficultyRating, error) {
	rows, err := s.db.ReadOnly.QueryContext(ctx, `
		SELECT score, recorded_at
		FROM difficulty_ratings
		WHERE user_id = ? AND recorded_at >= ?
		ORDER BY recorded_at`, userID, since.UTC().Format(timestampFormat))
	if err != nil {
		return nil, errors.Wrap(err, "query difficulty ratings", slog.String("user_id", userID))
	}
	defer rows.Close()

	var ratings []DifficultyRating
	for rows.Next() {
		var (
			rating     DifficultyRating
			recordedAt string
		)
		if err := rows.Scan(&rating.Score, &recordedAt); err != nil {
			return nil, errors.Wrap(err, "scan difficulty rating")
		}
		if rating.RecordedAt, err = time.Parse(timestampFormat, recordedAt); err != nil {
			return nil, errors.Wrap(err, "parse recorded_at", slog.String("value", recordedAt))
		}
		ratings = append(ratings, rating)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate difficulty ratings")
	}
	return ratings, nil
}

// AddLog records one performed set.
func (s *SQLiteHistoryStore) AddLog(ctx context.Context, userID string, entry PerformanceLogEntry) error {
	completed := 0
	if entry.Completed {
		completed = 1
	}
	var rpe any
	if entry.RPE != nil {
		rpe = *entry.RPE
	}
	_, err := s.db.ReadWrite.ExecContext(ctx, `
		INSERT INTO performance_logs (user_id, exercise_name, weight_kg, reps, rpe, completed, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		userID, entry.ExerciseName, entry.WeightKg, entry.Reps, rpe, completed,
		entry.CompletedAt.UTC().Format(timestampFormat))
	if err != nil {
		return errors.Wrap(err, "insert performance log", slog.String("user_id", userID))
	}
	return nil
}

// AddDifficultyRating records the user's session difficulty score, feeding
// the deload signal.
func (s *SQLiteHistoryStore) AddDifficultyRating(ctx context.Context, userID string, rating DifficultyRating) error {
	_, err := s.db.ReadWrite.ExecContext(ctx, `
		INSERT INTO difficulty_ratings (user_id, score, recorded_at)
		VALUES (?, ?, ?)`,
		userID, rating.Score, rating.RecordedAt.UTC().Format(timestampFormat))
	if err != nil {
		return errors.Wrap(err, "insert difficulty rating", slog.String("user_id", userID))
	}
	return nil
}

// AddStrengthRecord records a personal-record event.
func (s *SQLiteHistoryStore) AddStrengthRecord(ctx context.Context, userID string, rec StrengthRecord) error {
	recordType := rec.RecordType
	if recordType == "" {
		recordType = "1rm"
	}
	_, err := s.db.ReadWrite.ExecContext(ctx, `
		INSERT INTO strength_records (user_id, exercise_name, record_type, value, achieved_at)
		VALUES (?, ?, ?, ?, ?)`,
		userID, rec.ExerciseName, recordType, rec.Value,
		rec.AchievedAt.UTC().Format(timestampFormat))
	if err != nil {
		return errors.Wrap(err, "insert strength record", slog.String("user_id", userID))
	}
	return nil
}

// ErrUserNotFound marks a lookup for an unknown user id.
var ErrUserNotFound = errors.NewSentinel("user not found")

// SQLiteProfileStore implements ProfileStore on the application database.
type SQLiteProfileStore struct {
	db *sqlite.Database
}

func NewSQLiteProfileStore(db *sqlite.Database) *SQLiteProfileStore {
	return &SQLiteProfileStore{db: db}
}

func (s *SQLiteProfileStore) User(ctx context.Context, userID string) (UserProfile, error) {
	var profile UserProfile
	var equipment, injuries, goals, createdAt string
	var calibCompleted, calibSkipped int
	err := s.db.ReadOnly.QueryRowContext(ctx, `
		SELECT id, age, gender, fitness_level, equipment, injuries, goals,
		       calibration_completed, calibration_skipped, created_at
		FROM users
		WHERE id = ?`, userID).Scan(
		&profile.ID, &profile.Age, &profile.Gender, &profile.FitnessLevel,
		&equipment, &injuries, &goals, &calibCompleted, &calibSkipped, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return UserProfile{}, errors.Wrap(ErrUserNotFound, "query user", slog.String("user_id", userID))
	}
	if err != nil {
		return UserProfile{}, errors.Wrap(err, "query user", slog.String("user_id", userID))
	}

	profile.Equipment = splitList(equipment)
	profile.Injuries = splitList(injuries)
	profile.Goals = splitList(goals)
	profile.CalibrationCompleted = calibCompleted != 0
	profile.CalibrationSkipped = calibSkipped != 0
	if profile.CreatedAt, err = time.Parse(timestampFormat, createdAt); err != nil {
		return UserProfile{}, errors.Wrap(err, "parse created_at", slog.String("value", createdAt))
	}
	return profile, nil
}

// SaveUser upserts a profile.
func (s *SQLiteProfileStore) SaveUser(ctx context.Context, profile UserProfile) error {
	boolInt := func(b bool) int {
		if b {
			return 1
		}
		return 0
	}
	_, err := s.db.ReadWrite.ExecContext(ctx, `
		INSERT INTO users (id, age, gender, fitness_level, equipment, injuries, goals,
		                   calibration_completed, calibration_skipped, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			age                   = excluded.age,
			gender                = excluded.gender,
			fitness_level         = excluded.fitness_level,
			equipment             = excluded.equipment,
			injuries              = excluded.injuries,
			goals                 = excluded.goals,
			calibration_completed = excluded.calibration_completed,
			calibration_skipped   = excluded.calibration_skipped`,
		profile.ID, profile.Age, profile.Gender, profile.FitnessLevel,
		joinList(profile.Equipment), joinList(profile.Injuries), joinList(profile.Goals),
		boolInt(profile.CalibrationCompleted), boolInt(profile.CalibrationSkipped),
		profile.CreatedAt.UTC().Format(timestampFormat))
	if err != nil {
		return errors.Wrap(err, "upsert user", slog.String("user_id", profile.ID))
	}
	return nil
}

func (s *SQLiteProfileStore) SeniorOverride(ctx context.Context, userID string) (*SeniorSettings, error) {
	var (
		settings                 SeniorSettings
		restStrength, restCardio int
	)
	err := s.db.ReadOnly.QueryRowContext(ctx, `
		SELECT recovery_multiplier, max_intensity_percent,
		       min_rest_days_strength, min_rest_days_cardio,
		       extended_warmup_minutes, extended_cooldown_minutes,
		       max_exercises, mobility_exercises, balance_exercises
		FROM senior_settings
		WHERE user_id = ?`, userID).Scan(
		&settings.RecoveryMultiplier, &settings.MaxIntensityPercent,
		&restStrength, &restCardio,
		&settings.ExtendedWarmupMinutes, &settings.ExtendedCooldownMinutes,
		&settings.MaxExercises, &settings.MobilityExercises, &settings.BalanceExercises)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "query senior settings", slog.String("user_id", userID))
	}
	settings.MinRestDays = map[WorkoutType]int{
		WorkoutStrength: restStrength,
		WorkoutCardio:   restCardio,
	}
	return &settings, nil
}

// SaveSeniorOverride upserts a user's explicit senior settings.
func (s *SQLiteProfileStore) SaveSeniorOverride(ctx context.Context, userID string, settings SeniorSettings) error {
	_, err := s.db.ReadWrite.ExecContext(ctx, `
		INSERT INTO senior_settings (user_id, recovery_multiplier, max_intensity_percent,
		                             min_rest_days_strength, min_rest_days_cardio,
		                             extended_warmup_minutes, extended_cooldown_minutes,
		                             max_exercises, mobility_exercises, balance_exercises)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			recovery_multiplier       = excluded.recovery_multiplier,
			max_intensity_percent     = excluded.max_intensity_percent,
			min_rest_days_strength    = excluded.min_rest_days_strength,
			min_rest_days_cardio      = excluded.min_rest_days_cardio,
			extended_warmup_minutes   = excluded.extended_warmup_minutes,
			extended_cooldown_minutes = excluded.extended_cooldown_minutes,
			max_exercises             = excluded.max_exercises,
			mobility_exercises        = excluded.mobility_exercises,
			balance_exercises         = excluded.balance_exercises`,
		userID, settings.RecoveryMultiplier, settings.MaxIntensityPercent,
		settings.MinRestDays[WorkoutStrength], settings.MinRestDays[WorkoutCardio],
		settings.ExtendedWarmupMinutes, settings.ExtendedCooldownMinutes,
		settings.MaxExercises, settings.MobilityExercises, settings.BalanceExercises)
	if err != nil {
		return errors.Wrap(err, "upsert senior settings", slog.String("user_id", userID))
	}
	return nil
}

// UserIDs lists every stored user id.
func (s *SQLiteProfileStore) UserIDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.ReadOnly.QueryContext(ctx, `SELECT id FROM users ORDER BY id`)
	if err != nil {
		return nil, errors.Wrap(err, "query user ids")
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, errors.Wrap(err, "scan user id")
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate user ids")
	}
	return ids, nil
}

// SaveBaselines replaces a user's calibration baselines.
func (s *SQLiteProfileStore) SaveBaselines(ctx context.Context, userID string, baselines []StrengthBaseline) error {
	now := time.Now().UTC().Format(timestampFormat)
	for _, b := range baselines {
		_, err := s.db.ReadWrite.ExecContext(ctx, `
			INSERT INTO strength_baselines (user_id, exercise_name, movement_pattern, weight_kg, reps, estimated_1rm, recorded_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (user_id, exercise_name) DO UPDATE SET
				movement_pattern = excluded.movement_pattern,
				weight_kg        = excluded.weight_kg,
				reps             = excluded.reps,
				estimated_1rm    = excluded.estimated_1rm,
				recorded_at      = excluded.recorded_at`,
			userID, b.ExerciseName, b.MovementPattern, b.WeightKg, b.Reps, b.Estimated1RM, now)
		if err != nil {
			return errors.Wrap(err, "upsert strength baseline",
				slog.String("user_id", userID),
				slog.String("exercise", b.ExerciseName))
		}
	}
	return nil
}

func splitList(packed string) []string {
	if packed == "" {
		return nil
	}
	return strings.Split(packed, listSeparator)
}

func joinList(items []string) string {
	return strings.Join(items, listSeparator)
}
