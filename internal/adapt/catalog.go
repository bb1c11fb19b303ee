package adapt

import "strings"

// templates holds the compiled-in parameter envelope for every focus. Values
// cover the usual prescription ranges for each training style; baselines are
// derived from the midpoints.
var templates = map[Focus]StructureTemplate{
	FocusStrength: {
		Focus: FocusStrength,
		SetsMin: 3, SetsMax: 6,
		RepsMin: 3, RepsMax: 6,
		RestMinSeconds: 120, RestMaxSeconds: 240,
		RPEMin: 8, RPEMax: 9,
	},
	FocusHypertrophy: {
		Focus: FocusHypertrophy,
		SetsMin: 2, SetsMax: 4,
		RepsMin: 8, RepsMax: 12,
		RestMinSeconds: 60, RestMaxSeconds: 90,
		RPEMin: 7, RPEMax: 8,
		AllowSupersets: true, AllowAMRAP: true, AllowDropSets: true,
	},
	FocusEndurance: {
		Focus: FocusEndurance,
		SetsMin: 2, SetsMax: 3,
		RepsMin: 15, RepsMax: 20,
		RestMinSeconds: 30, RestMaxSeconds: 60,
		RPEMin: 6, RPEMax: 7,
		AllowSupersets: true, AllowAMRAP: true,
	},
	FocusPower: {
		Focus: FocusPower,
		SetsMin: 3, SetsMax: 5,
		RepsMin: 2, RepsMax: 5,
		RestMinSeconds: 120, RestMaxSeconds: 180,
		RPEMin: 7, RPEMax: 9,
	},
	FocusHIIT: {
		Focus: FocusHIIT,
		SetsMin: 3, SetsMax: 5,
		RepsMin: 10, RepsMax: 15,
		RestMinSeconds: 15, RestMaxSeconds: 45,
		RPEMin: 8, RPEMax: 9,
		AllowSupersets: true, AllowAMRAP: true,
	},
	FocusSkill: {
		Focus: FocusSkill,
		SetsMin: 2, SetsMax: 4,
		RepsMin: 3, RepsMax: 8,
		RestMinSeconds: 60, RestMaxSeconds: 120,
		RPEMin: 5, RPEMax: 7,
	},
	FocusPlyometric: {
		Focus: FocusPlyometric,
		SetsMin: 3, SetsMax: 4,
		RepsMin: 4, RepsMax: 8,
		RestMinSeconds: 90, RestMaxSeconds: 150,
		RPEMin: 7, RPEMax: 8,
	},
}

// goalRule maps goal keywords to a focus. Rules are checked in order against
// every goal string; the first keyword hit wins.
type goalRule struct {
	keywords []string
	focus    Focus
}

// goalRules is ordered by specificity: technique and explosiveness goals
// outrank generic strength phrasing, which outranks the conditioning styles.
var goalRules = []goalRule{
	{keywords: []string{"skill", "technique"}, focus: FocusSkill},
	{keywords: []string{"jump", "explosive", "plyometric"}, focus: FocusPlyometric},
	{keywords: []string{"strength"}, focus: FocusStrength},
	{keywords: []string{"muscle", "hypertrophy", "build"}, focus: FocusHypertrophy},
	{keywords: []string{"endurance", "fat loss", "fat-loss", "weight loss"}, focus: FocusEndurance},
	{keywords: []string{"athletic", "power", "sport"}, focus: FocusPower},
	{keywords: []string{"metabolic", "hiit", "conditioning"}, focus: FocusHIIT},
}

// TemplateFor returns the parameter envelope for a focus. Unknown focuses
// fall back to hypertrophy, the general-fitness default.
func TemplateFor(focus Focus) StructureTemplate {
	if t, ok := templates[focus]; ok {
		return t
	}
	return templates[FocusHypertrophy]
}

// FocusForGoals selects a training focus from the user's stated goals by
// ordered keyword matching. No goals, or goals that match nothing, yield
// hypertrophy.
func FocusForGoals(goals []string) Focus {
	for _, rule := range goalRules {
		for _, goal := range goals {
			lowered := strings.ToLower(goal)
			for _, kw := range rule.keywords {
				if strings.Contains(lowered, kw) {
					return rule.focus
				}
			}
		}
	}
	return FocusHypertrophy
}
