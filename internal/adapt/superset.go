package adapt

import (
	"strings"

	"github.com/liftapp/liftapp/internal/ptr"
)

// antagonists maps a muscle group to the groups it pairs with for supersets.
// Pairings are directional: the earlier exercise's group is looked up and
// matched against later exercises.
var antagonists = map[string][]string{
	"chest":      {"back", "lats"},
	"back":       {"chest", "shoulders"},
	"lats":       {"chest"},
	"biceps":     {"triceps"},
	"triceps":    {"biceps"},
	"quadriceps": {"hamstrings", "glutes"},
	"hamstrings": {"quadriceps"},
	"glutes":     {"quadriceps"},
	"shoulders":  {"back"},
}

// PairSupersets assigns antagonist superset pairs over an ordered exercise
// list. It is a greedy first-match forward scan, intentionally not an optimal
// matching: for each unassigned exercise, the first later unassigned
// exercise with an antagonist muscle group joins its group. The second
// member's rest drops to zero. Unmatched exercises pass through unchanged and
// order is always preserved. The input slice is not mutated.
func PairSupersets(exercises []PlannedExercise) []PlannedExercise {
	out := make([]PlannedExercise, len(exercises))
	copy(out, exercises)

	nextGroup := 1
	for i := range out {
		if out[i].SupersetGroup != nil {
			continue
		}
		partners := antagonists[strings.ToLower(out[i].MuscleGroup)]
		if len(partners) == 0 {
			continue
		}
		for j := i + 1; j < len(out); j++ {
			if out[j].SupersetGroup != nil {
				continue
			}
			if !containsFold(partners, out[j].MuscleGroup) {
				continue
			}
			out[i].SupersetGroup = ptr.Ref(nextGroup)
			out[i].SupersetOrder = 1
			out[j].SupersetGroup = ptr.Ref(nextGroup)
			out[j].SupersetOrder = 2
			nextGroup++
			out[j].RestSeconds = 0
			break
		}
	}
	return out
}

func containsFold(haystack []string, needle string) bool {
	for _, s := range haystack {
		if strings.EqualFold(s, needle) {
			return true
		}
	}
	return false
}
