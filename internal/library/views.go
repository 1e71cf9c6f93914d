package library

import (
	"slices"
	"strings"
)

// ByCategory returns the exercises in category, in catalog order.
func (l *Library) ByCategory(category Category) []Exercise {
	return l.filter(func(e Exercise) bool { return e.Category == category })
}

// BySlotTags returns the exercises carrying at least one of tags.
func (l *Library) BySlotTags(tags ...SlotTag) []Exercise {
	return l.filter(func(e Exercise) bool { return e.HasAnySlotTag(tags...) })
}

// WithEquipment returns the exercises usable with equipment.
func (l *Library) WithEquipment(equipment []string) []Exercise {
	return l.filter(func(e Exercise) bool { return e.UsableWith(equipment) })
}

// SafeFor returns the exercises that block none of cs.
func (l *Library) SafeFor(cs ConstraintSet) []Exercise {
	return l.filter(func(e Exercise) bool { return e.SafeFor(cs) })
}

// Search matches query case-insensitively against names, notes and movement patterns.
func (l *Library) Search(query string) []Exercise {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return slices.Clone(l.Exercises)
	}
	return l.filter(func(e Exercise) bool { return e.matches(q) })
}

// matches reports whether the lower-case query q occurs in the name, a note or a movement pattern of e.
func (e Exercise) matches(q string) bool {
	if strings.Contains(strings.ToLower(e.Name), q) {
		return true
	}
	for _, s := range slices.Concat(e.Notes, e.MovementPatterns) {
		if strings.Contains(strings.ToLower(s), q) {
			return true
		}
	}
	return false
}

// CategoryGroup is one entry of [Library.GroupedByCategory].
type CategoryGroup struct {
	Category  Category
	Exercises []Exercise
}

// GroupedByCategory groups exercises by category in [Categories] order, sorted by name and omitting empty groups.
func (l *Library) GroupedByCategory() []CategoryGroup {
	var groups []CategoryGroup
	for _, c := range Categories {
		exercises := l.ByCategory(c)
		if len(exercises) == 0 {
			continue
		}
		slices.SortStableFunc(exercises, func(a, b Exercise) int { return strings.Compare(a.Name, b.Name) })
		groups = append(groups, CategoryGroup{Category: c, Exercises: exercises})
	}
	return groups
}

// Query combines the filters exposed by the exercise listing endpoint. Zero fields do not filter.
type Query struct {
	Category    Category
	SlotTags    []SlotTag
	Equipment   []string
	Constraints ConstraintSet
	Search      string
}

// Find applies q.
func (l *Library) Find(q Query) []Exercise {
	search := strings.ToLower(strings.TrimSpace(q.Search))
	return l.filter(func(e Exercise) bool {
		switch {
		case q.Category != "" && e.Category != q.Category:
			return false
		case len(q.SlotTags) > 0 && !e.HasAnySlotTag(q.SlotTags...):
			return false
		case !e.UsableWith(q.Equipment):
			return false
		case !e.SafeFor(q.Constraints):
			return false
		case search != "" && !e.matches(search):
			return false
		default:
			return true
		}
	})
}

func (l *Library) filter(keep func(Exercise) bool) []Exercise {
	var out []Exercise
	for _, e := range l.Exercises {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out
}
