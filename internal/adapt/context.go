package adapt

import "time"

const (
	// expectedSessionSeconds is the nominal session length the time ratio is
	// measured against.
	expectedSessionSeconds = 2700.0

	deloadDifficultyThreshold = 4.0
	deloadDifficultyMinRated  = 4
	deloadCompletionThreshold = 70.0
	deloadCompletionMinCount  = 3

	prWindowDays = 7
)

// AnalyzeContext aggregates recent performance logs, difficulty ratings, and
// PR events into the signals the parameter calculator consumes. It is total:
// empty history yields neutral defaults (completion 100%, time ratio 1.0)
// instead of an error.
func AnalyzeContext(logs []PerformanceLogEntry, ratings []DifficultyRating, records []StrengthRecord, now time.Time) PerformanceContext {
	ctx := PerformanceContext{
		CompletionRate: 100,
		TimeRatio:      1.0,
	}

	sessions := groupSessions(logs)
	ctx.SessionCount = len(sessions)

	if len(sessions) > 0 {
		ctx.CompletionRate = meanCompletionRate(sessions)
		ctx.TimeRatio = meanTimeRatio(sessions)
	}

	if len(ratings) > 0 {
		var sum float64
		for _, r := range ratings {
			sum += r.Score
		}
		ctx.AvgDifficulty = sum / float64(len(ratings))
	}

	prCutoff := now.AddDate(0, 0, -prWindowDays)
	for _, rec := range records {
		if !rec.AchievedAt.Before(prCutoff) {
			ctx.RecentPRCount++
		}
	}

	tooHard := ctx.AvgDifficulty > deloadDifficultyThreshold && len(ratings) >= deloadDifficultyMinRated
	lowCompletion := ctx.CompletionRate < deloadCompletionThreshold && ctx.SessionCount >= deloadCompletionMinCount
	ctx.NeedsDeload = tooHard || lowCompletion

	return ctx
}

// groupSessions buckets log entries into sessions by UTC calendar day,
// preserving chronological order within each session.
func groupSessions(logs []PerformanceLogEntry) [][]PerformanceLogEntry {
	byDay := make(map[string][]PerformanceLogEntry)
	var order []string
	for _, entry := range logs {
		day := entry.CompletedAt.UTC().Format(time.DateOnly)
		if _, seen := byDay[day]; !seen {
			order = append(order, day)
		}
		byDay[day] = append(byDay[day], entry)
	}
	sessions := make([][]PerformanceLogEntry, 0, len(order))
	for _, day := range order {
		sessions = append(sessions, byDay[day])
	}
	return sessions
}

// meanCompletionRate averages the per-session percentage of entries marked
// completed.
func meanCompletionRate(sessions [][]PerformanceLogEntry) float64 {
	var sum float64
	for _, session := range sessions {
		completed := 0
		for _, entry := range session {
			if entry.Completed {
				completed++
			}
		}
		sum += 100 * float64(completed) / float64(len(session))
	}
	return sum / float64(len(sessions))
}

// meanTimeRatio averages actual/expected duration over sessions whose span
// is measurable (more than one timestamped entry). Sessions with a single
// entry carry no duration signal and are skipped; all-skipped yields the
// neutral 1.0.
func meanTimeRatio(sessions [][]PerformanceLogEntry) float64 {
	var sum float64
	measurable := 0
	for _, session := range sessions {
		first, last := session[0].CompletedAt, session[0].CompletedAt
		for _, entry := range session[1:] {
			if entry.CompletedAt.Before(first) {
				first = entry.CompletedAt
			}
			if entry.CompletedAt.After(last) {
				last = entry.CompletedAt
			}
		}
		span := last.Sub(first).Seconds()
		if span <= 0 {
			continue
		}
		sum += span / expectedSessionSeconds
		measurable++
	}
	if measurable == 0 {
		return 1.0
	}
	return sum / float64(measurable)
}
