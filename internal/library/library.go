// Package library holds the immutable exercise catalog and its filtered views.
//
// A [Library] is parsed once from its JSON document with [Parse] and then passed by pointer to whoever needs it.
// Nothing in this package mutates a parsed library.
package library

import (
	"slices"
	"strings"
)

// Category is the closed set of exercise categories.
type Category string

const (
	CategoryMain         Category = "main"
	CategorySupplemental Category = "supplemental"
	CategoryAccessory    Category = "accessory"
	CategoryConditioning Category = "conditioning"
	CategoryMobility     Category = "mobility"
)

//nolint:gochecknoglobals // display order of categories.
var Categories = []Category{
	CategoryMain, CategorySupplemental, CategoryAccessory, CategoryConditioning, CategoryMobility,
}

func (c Category) Valid() bool {
	return slices.Contains(Categories, c)
}

// SlotTag is an abstract exercise role such as carry or core_anti_rotation.
type SlotTag string

const (
	SlotMainSquat              SlotTag = "main_squat"
	SlotMainBench              SlotTag = "main_bench"
	SlotMainDeadlift           SlotTag = "main_deadlift"
	SlotMainOHP                SlotTag = "main_ohp"
	SlotSupplementalFSL        SlotTag = "supplemental_fsl"
	SlotUpperPushHorizontal    SlotTag = "upper_push_horizontal"
	SlotUpperPushVertical      SlotTag = "upper_push_vertical"
	SlotUpperPullHorizontal    SlotTag = "upper_pull_horizontal"
	SlotUpperPullVertical      SlotTag = "upper_pull_vertical"
	SlotSingleLeg              SlotTag = "single_leg"
	SlotSingleLegHinge         SlotTag = "single_leg_hinge"
	SlotSingleLegKneeDominant  SlotTag = "single_leg_knee_dominant"
	SlotSingleLegHipDominant   SlotTag = "single_leg_hip_dominant"
	SlotCoreAntiExtension      SlotTag = "core_anti_extension"
	SlotCoreAntiRotation       SlotTag = "core_anti_rotation"
	SlotCoreAntiLateralFlexion SlotTag = "core_anti_lateral_flexion"
	SlotCarry                  SlotTag = "carry"
	SlotScapStability          SlotTag = "scap_stability"
	SlotHingeAccessory         SlotTag = "hinge_accessory"
	SlotConditioningRun        SlotTag = "conditioning_run"
	SlotConditioningBike       SlotTag = "conditioning_bike"
	SlotConditioningRower      SlotTag = "conditioning_rower"
	SlotConditioningJumpRope   SlotTag = "conditioning_jump_rope"
	SlotMobilityHipsIRER       SlotTag = "mobility_hips_ir_er"
	SlotMobilityHipFlexors     SlotTag = "mobility_hip_flexors"
	SlotMobilityAnkles         SlotTag = "mobility_ankles"
	SlotMobilityTSpine         SlotTag = "mobility_t_spine"
	SlotMobilityShoulders      SlotTag = "mobility_shoulders"
)

//nolint:gochecknoglobals // closed set of slot tags.
var slotTags = []SlotTag{
	SlotMainSquat, SlotMainBench, SlotMainDeadlift, SlotMainOHP, SlotSupplementalFSL,
	SlotUpperPushHorizontal, SlotUpperPushVertical, SlotUpperPullHorizontal, SlotUpperPullVertical,
	SlotSingleLeg, SlotSingleLegHinge, SlotSingleLegKneeDominant, SlotSingleLegHipDominant,
	SlotCoreAntiExtension, SlotCoreAntiRotation, SlotCoreAntiLateralFlexion,
	SlotCarry, SlotScapStability, SlotHingeAccessory,
	SlotConditioningRun, SlotConditioningBike, SlotConditioningRower, SlotConditioningJumpRope,
	SlotMobilityHipsIRER, SlotMobilityHipFlexors, SlotMobilityAnkles, SlotMobilityTSpine, SlotMobilityShoulders,
}

func (s SlotTag) Valid() bool {
	return slices.Contains(slotTags, s)
}

// Constraint is a physical limitation that blocks exercises.
type Constraint string

const (
	ConstraintKneeIssue     Constraint = "knee_issue"
	ConstraintShoulderIssue Constraint = "shoulder_issue"
	ConstraintBackIssue     Constraint = "back_issue"
	ConstraintHipIssue      Constraint = "hip_issue"
	ConstraintWristIssue    Constraint = "wrist_issue"
	ConstraintElbowIssue    Constraint = "elbow_issue"
	ConstraintAnkleIssue    Constraint = "ankle_issue"
	ConstraintNoRunning     Constraint = "no_running"
	ConstraintNoJumping     Constraint = "no_jumping"
	ConstraintNoOverhead    Constraint = "no_overhead"
)

//nolint:gochecknoglobals // closed set of constraints.
var constraints = []Constraint{
	ConstraintKneeIssue, ConstraintShoulderIssue, ConstraintBackIssue, ConstraintHipIssue, ConstraintWristIssue,
	ConstraintElbowIssue, ConstraintAnkleIssue, ConstraintNoRunning, ConstraintNoJumping, ConstraintNoOverhead,
}

func (c Constraint) Valid() bool {
	return slices.Contains(constraints, c)
}

// NormalizeConstraint lower-cases s and folds plural and hyphenated spellings, so "Knee-Issues" becomes
// knee_issue. Unknown values are returned normalized but otherwise untouched.
func NormalizeConstraint(s string) Constraint {
	c := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
	c = strings.ReplaceAll(c, " ", "_")
	if trimmed, ok := strings.CutSuffix(c, "_issues"); ok {
		c = trimmed + "_issue"
	}
	return Constraint(c)
}

// ConstraintSet is a user's normalized constraints.
type ConstraintSet map[Constraint]struct{}

// NewConstraintSet normalizes free-form constraint strings.
func NewConstraintSet(raw []string) ConstraintSet {
	set := make(ConstraintSet, len(raw))
	for _, r := range raw {
		if c := NormalizeConstraint(r); c != "" {
			set[c] = struct{}{}
		}
	}
	return set
}

func (s ConstraintSet) Has(c Constraint) bool {
	_, ok := s[c]
	return ok
}

// Exercise is a catalog entry.
type Exercise struct {
	ID                 string       `json:"exerciseId"`
	Name               string       `json:"name"`
	Category           Category     `json:"category"`
	MovementPatterns   []string     `json:"movementPatterns"`
	SlotTags           []SlotTag    `json:"slotTags"`
	Equipment          []string     `json:"equipment"`
	ConstraintsBlocked []Constraint `json:"constraintsBlocked"`
	FatigueScore       int          `json:"fatigueScore"`
	Notes              []string     `json:"notes"`
}

// SafeFor reports whether none of the blocked constraints is in cs.
func (e Exercise) SafeFor(cs ConstraintSet) bool {
	for _, blocked := range e.ConstraintsBlocked {
		if cs.Has(blocked) {
			return false
		}
	}
	return true
}

// HasAnySlotTag reports whether the exercise carries at least one of tags.
func (e Exercise) HasAnySlotTag(tags ...SlotTag) bool {
	for _, t := range tags {
		if slices.Contains(e.SlotTags, t) {
			return true
		}
	}
	return false
}

// UsableWith reports whether the exercise can be done with the given equipment. Exercises without listed
// equipment need none. An empty equipment list means equipment is unknown and everything is usable.
func (e Exercise) UsableWith(equipment []string) bool {
	if len(e.Equipment) == 0 || len(equipment) == 0 {
		return true
	}
	for _, eq := range e.Equipment {
		if eq == "bodyweight" || slices.Contains(equipment, eq) {
			return true
		}
	}
	return false
}

// FatigueLevel labels the fatigue score.
func (e Exercise) FatigueLevel() string {
	switch {
	case e.FatigueScore <= 2: //nolint:mnd // low fatigue band
		return "Low"
	case e.FatigueScore == 3: //nolint:mnd // moderate fatigue band
		return "Moderate"
	default:
		return "High"
	}
}

// SlotDefinition describes a slot tag for display.
type SlotDefinition struct {
	SlotTag          SlotTag  `json:"slotTag"`
	Label            string   `json:"label"`
	RequiredPatterns []string `json:"requiredPatterns,omitempty"`
}

// Library is an immutable, versioned snapshot of the exercise catalog.
type Library struct {
	SchemaVersion   string                 `json:"schemaVersion"`
	Name            string                 `json:"library,omitempty"`
	Program         string                 `json:"program,omitempty"`
	Version         string                 `json:"version"`
	ETag            string                 `json:"etag"`
	PublishedAt     string                 `json:"publishedAt,omitempty"`
	SlotTaxonomy    map[Category][]SlotTag `json:"slotTaxonomy,omitempty"`
	SlotDefinitions []SlotDefinition       `json:"slotDefinitions,omitempty"`
	Exercises       []Exercise             `json:"exercises"`

	byID map[string]int
}

// Get returns the exercise with id.
func (l *Library) Get(id string) (Exercise, bool) {
	i, ok := l.byID[id]
	if !ok {
		return Exercise{}, false
	}
	return l.Exercises[i], true
}

// SlotLabel returns the defined label of tag or a title-cased fallback.
func (l *Library) SlotLabel(tag SlotTag) string {
	for _, d := range l.SlotDefinitions {
		if d.SlotTag == tag {
			return d.Label
		}
	}
	return TitleCase(string(tag))
}

// TitleCase turns snake_case into space separated title case: single_leg_or_core is "Single Leg Or Core".
func TitleCase(s string) string {
	words := strings.Split(s, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
