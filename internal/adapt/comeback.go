package adapt

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// Break classification thresholds in days off. Contiguous and monotonic:
// [0,6] active, [7,13] short, [14,27] medium, [28,41] long, [42,∞) extended.
const (
	shortBreakDays    = 7
	mediumBreakDays   = 14
	longBreakDays     = 28
	extendedBreakDays = 42

	// newAccountExemptionDays exempts fresh accounts from comeback
	// detection entirely: a ten-day-old account with no workouts is new,
	// not returning.
	newAccountExemptionDays = 14

	maxVolumeReduction    = 0.60
	maxIntensityReduction = 0.50
)

// breakProfile holds the per-break-type comeback programming.
type breakProfile struct {
	volumeReduction    float64
	intensityReduction float64
	targetWeeks        int
	extraWarmupMinutes int
	maxExercises       int
	avoidMovements     []string
	focusAreas         []string
}

var breakProfiles = map[BreakType]breakProfile{
	BreakShort: {
		volumeReduction:    0.10,
		intensityReduction: 0.10,
		targetWeeks:        1,
	},
	BreakMedium: {
		volumeReduction:    0.25,
		intensityReduction: 0.20,
		targetWeeks:        2,
		extraWarmupMinutes: 5,
		maxExercises:       6,
		focusAreas:         []string{"full body", "mobility"},
	},
	BreakLong: {
		volumeReduction:    0.40,
		intensityReduction: 0.30,
		targetWeeks:        3,
		extraWarmupMinutes: 5,
		maxExercises:       5,
		avoidMovements:     []string{"plyometric", "max effort"},
		focusAreas:         []string{"full body", "mobility", "technique"},
	},
	BreakExtended: {
		volumeReduction:    0.50,
		intensityReduction: 0.40,
		targetWeeks:        4,
		extraWarmupMinutes: 10,
		maxExercises:       4,
		avoidMovements:     []string{"plyometric", "max effort", "explosive"},
		focusAreas:         []string{"full body", "mobility", "technique"},
	},
}

// ageExtra is the additional caution layered on top of the break-type base
// for older users.
type ageExtra struct {
	minAge             int
	volumeReduction    float64
	intensityReduction float64
	extraRestSeconds   int
}

// ageExtras covers the full age range with no gaps; checked from oldest down,
// first bracket whose minAge fits wins.
var ageExtras = []ageExtra{
	{minAge: 80, volumeReduction: 0.25, intensityReduction: 0.25, extraRestSeconds: 45},
	{minAge: 70, volumeReduction: 0.20, intensityReduction: 0.20, extraRestSeconds: 30},
	{minAge: 60, volumeReduction: 0.15, intensityReduction: 0.15, extraRestSeconds: 20},
	{minAge: 50, volumeReduction: 0.10, intensityReduction: 0.10, extraRestSeconds: 15},
	{minAge: 40, volumeReduction: 0.05, intensityReduction: 0.05, extraRestSeconds: 10},
	{minAge: 0},
}

// ClassifyBreak maps days without training to a break type.
func ClassifyBreak(daysOff int) BreakType {
	switch {
	case daysOff >= extendedBreakDays:
		return BreakExtended
	case daysOff >= longBreakDays:
		return BreakLong
	case daysOff >= mediumBreakDays:
		return BreakMedium
	case daysOff >= shortBreakDays:
		return BreakShort
	default:
		return BreakActive
	}
}

func extrasForAge(age int) ageExtra {
	for _, bracket := range ageExtras {
		if age >= bracket.minAge {
			return bracket
		}
	}
	return ageExtra{}
}

// comebackTargetWeeks is the ramp length in weeks for a break type; users 60
// and over get an extra week.
func comebackTargetWeeks(breakType BreakType, age int) int {
	profile, ok := breakProfiles[breakType]
	if !ok {
		return 0
	}
	weeks := profile.targetWeeks
	if age >= 60 {
		weeks++
	}
	return weeks
}

// ComebackAdjustmentsFor computes the softening for a given break type, user
// age, and comeback week. The reduction decays linearly: full in week one,
// gone the week after the target. Totals are capped so even the most cautious
// combination never drops below 40% volume / 50% intensity.
func ComebackAdjustmentsFor(breakType BreakType, age, comebackWeek int) ComebackAdjustments {
	neutral := ComebackAdjustments{VolumeMultiplier: 1.0, IntensityMultiplier: 1.0}

	profile, ok := breakProfiles[breakType]
	if !ok {
		return neutral
	}
	targetWeeks := comebackTargetWeeks(breakType, age)
	if comebackWeek < 1 {
		comebackWeek = 1
	}

	weekFactor := 1.0 - float64(comebackWeek-1)/float64(targetWeeks)
	if weekFactor <= 0 {
		return neutral
	}

	extra := extrasForAge(age)
	volumeReduction := (profile.volumeReduction + extra.volumeReduction) * weekFactor
	intensityReduction := (profile.intensityReduction + extra.intensityReduction) * weekFactor
	volumeReduction = math.Min(volumeReduction, maxVolumeReduction)
	intensityReduction = math.Min(intensityReduction, maxIntensityReduction)

	return ComebackAdjustments{
		VolumeMultiplier:    1.0 - volumeReduction,
		IntensityMultiplier: 1.0 - intensityReduction,
		ExtraRestSeconds:    extra.extraRestSeconds,
		ExtraWarmupMinutes:  profile.extraWarmupMinutes,
		MaxExerciseCount:    profile.maxExercises,
		AvoidMovements:      profile.avoidMovements,
		FocusAreas:          profile.focusAreas,
	}
}

// DetectBreak derives the user's break status from their workout history.
// Accounts younger than two weeks are exempt and always report active. A user
// with no logs past the exemption is measured from account creation.
func DetectBreak(profile UserProfile, logs []PerformanceLogEntry, now time.Time) BreakStatus {
	active := BreakStatus{
		BreakType:   BreakActive,
		Adjustments: ComebackAdjustments{VolumeMultiplier: 1.0, IntensityMultiplier: 1.0},
	}

	if now.Sub(profile.CreatedAt) < newAccountExemptionDays*24*time.Hour {
		active.DaysSinceLastWorkout = daysBetween(lastActivity(profile, logs), now)
		return active
	}

	days := sessionDays(logs)
	if len(days) == 0 {
		gap := daysBetween(profile.CreatedAt, now)
		return statusForGap(profile.Age, gap, 1)
	}

	last := days[len(days)-1]
	sinceLast := daysBetween(last, now)
	if sinceLast >= shortBreakDays {
		// Still away: week one adjustments apply the day they return.
		return statusForGap(profile.Age, sinceLast, 1)
	}

	// Recently active; check whether we are inside the ramp that follows the
	// most recent qualifying gap.
	for i := len(days) - 1; i > 0; i-- {
		gap := daysBetween(days[i-1], days[i])
		if gap < shortBreakDays {
			continue
		}
		breakType := ClassifyBreak(gap)
		week := daysBetween(days[i], now)/7 + 1
		if week > comebackTargetWeeks(breakType, profile.Age) {
			break
		}
		status := statusForGap(profile.Age, gap, week)
		status.DaysSinceLastWorkout = sinceLast
		return status
	}

	active.DaysSinceLastWorkout = sinceLast
	return active
}

func statusForGap(age, gapDays, week int) BreakStatus {
	breakType := ClassifyBreak(gapDays)
	status := BreakStatus{
		DaysSinceLastWorkout: gapDays,
		BreakType:            breakType,
		Adjustments:          ComebackAdjustmentsFor(breakType, age, week),
	}
	if breakType != BreakActive {
		status.ComebackWeek = week
	}
	return status
}

// sessionDays reduces logs to sorted unique UTC days.
func sessionDays(logs []PerformanceLogEntry) []time.Time {
	seen := make(map[time.Time]struct{})
	var days []time.Time
	for _, entry := range logs {
		day := entry.CompletedAt.UTC().Truncate(24 * time.Hour)
		if _, ok := seen[day]; ok {
			continue
		}
		seen[day] = struct{}{}
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return days
}

func lastActivity(profile UserProfile, logs []PerformanceLogEntry) time.Time {
	last := profile.CreatedAt
	for _, entry := range logs {
		if entry.CompletedAt.After(last) {
			last = entry.CompletedAt
		}
	}
	return last
}

func daysBetween(from, to time.Time) int {
	d := int(to.Sub(from).Hours() / 24)
	if d < 0 {
		return 0
	}
	return d
}

// ApplyComebackAdjustments softens a planned workout per the computed
// adjustments: fewer sets and reps, lighter weight rounded to the nearest
// 2.5, longer rest, and a truncated exercise list. Floors keep every exercise
// trainable (at least 2 sets of 6). The input slice is not mutated.
func ApplyComebackAdjustments(exercises []PlannedExercise, adj ComebackAdjustments) []PlannedExercise {
	out := make([]PlannedExercise, len(exercises))
	copy(out, exercises)

	if adj.MaxExerciseCount > 0 && len(out) > adj.MaxExerciseCount {
		out = out[:adj.MaxExerciseCount]
	}

	note := fmt.Sprintf("comeback ramp: volume ×%.2f, intensity ×%.2f", adj.VolumeMultiplier, adj.IntensityMultiplier)
	for i := range out {
		out[i].Sets = max(2, int(math.Round(float64(out[i].Sets)*adj.VolumeMultiplier)))
		out[i].Reps = max(6, int(math.Round(float64(out[i].Reps)*(adj.VolumeMultiplier+0.1))))
		out[i].WeightKg = roundToNearest(out[i].WeightKg*adj.IntensityMultiplier, 2.5)
		// The second half of a superset keeps its zero rest; the pair rests
		// together after the first exercise.
		if out[i].SupersetOrder != 2 {
			out[i].RestSeconds += adj.ExtraRestSeconds
		}
		out[i].Notes = append(append([]string(nil), out[i].Notes...), note)
	}
	return out
}

func roundToNearest(v, step float64) float64 {
	if step <= 0 {
		return v
	}
	return math.Round(v/step) * step
}
