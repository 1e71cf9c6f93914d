package program

import (
	"math/rand/v2"
	"slices"

	"github.com/styrkr/styrkr/internal/library"
	"github.com/styrkr/styrkr/internal/profile"
)

// Selector resolves slots into exercises for one user. It is not safe for concurrent use because it owns a
// random source.
type Selector struct {
	lib         *library.Library
	rng         *rand.Rand
	profile     profile.Profile
	constraints library.ConstraintSet
}

// NewSelector creates a selector drawing from lib. A nil rng is replaced with a randomly seeded one. A nil lib
// resolves every slot to its placeholder.
func NewSelector(lib *library.Library, p profile.Profile, rng *rand.Rand) *Selector {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())) //nolint:gosec // exercise variety, not crypto.
	}
	return &Selector{
		lib:         lib,
		rng:         rng,
		profile:     p,
		constraints: library.NewConstraintSet(p.Constraints),
	}
}

// Candidates returns every exercise that can fill slotID for the user: it carries one of the slot's tags, none
// of its blocked constraints is among the user's constraints and the user has equipment for it.
func (s *Selector) Candidates(slotID string) []library.Exercise {
	return s.candidates(library.SlotTagsFor(slotID), s.profile.Equipment)
}

func (s *Selector) candidates(tags []library.SlotTag, equipment []string) []library.Exercise {
	if s.lib == nil || len(tags) == 0 {
		return nil
	}
	return s.lib.Find(library.Query{
		Category:    "",
		SlotTags:    tags,
		Equipment:   equipment,
		Constraints: s.constraints,
		Search:      "",
	})
}

// Eligible reports whether exerciseID is still a candidate for slotID.
func (s *Selector) Eligible(slotID, exerciseID string) bool {
	return slices.ContainsFunc(s.Candidates(slotID), func(e library.Exercise) bool { return e.ID == exerciseID })
}

// Pick draws one candidate for slotID uniformly at random, preferring exercises not in avoid. It reports false
// when no candidate exists.
func (s *Selector) Pick(slotID string, avoid map[string]bool) (library.Exercise, bool) {
	return s.pick(s.Candidates(slotID), avoid)
}

func (s *Selector) pick(candidates []library.Exercise, avoid map[string]bool) (library.Exercise, bool) {
	if len(candidates) == 0 {
		return library.Exercise{}, false
	}
	fresh := slices.DeleteFunc(slices.Clone(candidates), func(e library.Exercise) bool { return avoid[e.ID] })
	if len(fresh) > 0 {
		candidates = fresh
	}
	return candidates[s.rng.IntN(len(candidates))], true
}

// Freeze resolves every unresolved assistance slot of p in place. Slots that are already resolved keep their
// exercise, so freezing twice changes nothing. Within a week an exercise is not reused while another candidate
// for the slot remains.
func (s *Selector) Freeze(p *Program) {
	if s.lib != nil {
		p.LibraryVersion = s.lib.Version
	}
	for wi := range p.Weeks {
		used := make(map[string]bool)
		for _, session := range p.Weeks[wi].Sessions {
			if session.Circuit == nil {
				continue
			}
			for _, c := range session.Circuit.Exercises {
				if c.Frozen() && !c.Placeholder {
					used[c.ExerciseID] = true
				}
			}
		}
		for si := range p.Weeks[wi].Sessions {
			circuit := p.Weeks[wi].Sessions[si].Circuit
			if circuit == nil {
				continue
			}
			for ci := range circuit.Exercises {
				c := &circuit.Exercises[ci]
				if c.Frozen() {
					continue
				}
				s.resolve(c, used)
			}
		}
	}
}

func (s *Selector) resolve(c *CircuitExercise, used map[string]bool) {
	e, ok := s.Pick(c.SlotID, used)
	if !ok {
		c.ExerciseID = placeholderID(c.SlotID)
		c.Name = placeholderName(c.SlotID)
		c.Placeholder = true
		c.Weight = 0
		c.TargetReps = c.MinReps
		return
	}
	used[e.ID] = true
	c.ExerciseID = e.ID
	c.Name = e.Name
	c.Placeholder = false
}
