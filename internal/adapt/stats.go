package adapt

import (
	"fmt"
	"strings"
	"time"
)

const (
	statsWindowDays = 90
	// brzyckiMaxReps bounds the 1RM estimate to rep counts where the formula
	// still tracks reality.
	brzyckiMaxReps = 15

	trendRecentDays   = 28
	trendPreviousDays = 56
	trendThresholdPct = 5.0
)

// ComputeExerciseStats aggregates the logs for one exercise over the stats
// window. The name match is case-insensitive and exact. No matching logs
// yields HasData=false with an explanatory message, never an error.
func ComputeExerciseStats(logs []PerformanceLogEntry, exerciseName string, now time.Time) ExerciseStats {
	stats := ExerciseStats{
		ExerciseName: exerciseName,
		Trend:        TrendInsufficientData,
	}

	cutoff := now.AddDate(0, 0, -statsWindowDays)
	var matched []PerformanceLogEntry
	for _, entry := range logs {
		if !strings.EqualFold(entry.ExerciseName, exerciseName) {
			continue
		}
		if entry.CompletedAt.Before(cutoff) {
			continue
		}
		matched = append(matched, entry)
	}

	if len(matched) == 0 {
		stats.Message = fmt.Sprintf("no logged sets for %q in the last %d days", exerciseName, statsWindowDays)
		return stats
	}

	stats.HasData = true
	var rpeSum float64
	rpeCount := 0
	for _, entry := range matched {
		stats.TotalSets++
		stats.TotalVolumeKg += entry.WeightKg * float64(entry.Reps)
		if entry.WeightKg > stats.MaxWeightKg {
			stats.MaxWeightKg = entry.WeightKg
		}
		if entry.Reps > stats.MaxReps {
			stats.MaxReps = entry.Reps
		}
		if entry.RPE != nil {
			rpeSum += *entry.RPE
			rpeCount++
		}
		if entry.Reps <= brzyckiMaxReps {
			if est := EstimateOneRM(entry.WeightKg, entry.Reps); est > stats.Estimated1RM {
				stats.Estimated1RM = est
			}
		}
	}
	if rpeCount > 0 {
		stats.AvgRPE = rpeSum / float64(rpeCount)
	}

	stats.Trend = progressionTrend(matched, now)
	return stats
}

// progressionTrend compares mean weight of the last four weeks against the
// four weeks before that.
func progressionTrend(logs []PerformanceLogEntry, now time.Time) Trend {
	recentCutoff := now.AddDate(0, 0, -trendRecentDays)
	previousCutoff := now.AddDate(0, 0, -trendPreviousDays)

	var recentSum, previousSum float64
	recentCount, previousCount := 0, 0
	for _, entry := range logs {
		switch {
		case !entry.CompletedAt.Before(recentCutoff):
			recentSum += entry.WeightKg
			recentCount++
		case !entry.CompletedAt.Before(previousCutoff):
			previousSum += entry.WeightKg
			previousCount++
		}
	}
	if recentCount == 0 || previousCount == 0 {
		return TrendInsufficientData
	}

	recentMean := recentSum / float64(recentCount)
	previousMean := previousSum / float64(previousCount)
	if previousMean == 0 {
		return TrendInsufficientData
	}

	changePct := 100 * (recentMean - previousMean) / previousMean
	switch {
	case changePct > trendThresholdPct:
		return TrendIncreasing
	case changePct < -trendThresholdPct:
		return TrendDecreasing
	default:
		return TrendStable
	}
}
