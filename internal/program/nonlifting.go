package program

import (
	"fmt"
	"slices"

	"github.com/styrkr/styrkr/internal/library"
	"github.com/styrkr/styrkr/internal/plan"
	"github.com/styrkr/styrkr/internal/profile"
)

// WorkoutType is the kind of non-lifting day workout.
type WorkoutType string

const (
	WorkoutGPP      WorkoutType = "gpp"
	WorkoutMobility WorkoutType = "mobility"
	WorkoutRecovery WorkoutType = "rest"
	WorkoutPilates  WorkoutType = "pilates"
)

func (t WorkoutType) Valid() bool {
	switch t {
	case WorkoutGPP, WorkoutMobility, WorkoutRecovery, WorkoutPilates:
		return true
	default:
		return false
	}
}

// WorkoutTypeFor maps a profile mode to the workout it produces. Conditioning days are GPP days.
func WorkoutTypeFor(mode profile.NonLiftingMode) WorkoutType {
	switch mode {
	case profile.ModePilates:
		return WorkoutPilates
	case profile.ModeConditioning, profile.ModeGPP:
		return WorkoutGPP
	case profile.ModeMobility:
		return WorkoutMobility
	case profile.ModeRest:
		return WorkoutRecovery
	default:
		return WorkoutRecovery
	}
}

// Conditioning modalities.
const (
	ModalityRun      = "run"
	ModalityBike     = "bike"
	ModalityRower    = "rower"
	ModalityJumpRope = "jump_rope"
)

const (
	gppDurationMinutes      = 30
	mobilityDurationMinutes = 25
	recoveryDurationMinutes = 30

	gppRoundsDowngraded = 3
	gppRoundsHigh       = 5
	gppRounds           = 4
)

//nolint:gochecknoglobals // equipment assumed when the profile lists none.
var (
	defaultGPPEquipment      = []string{"bike", "rower", "jumprope", "kb", "db", "medball"}
	defaultRecoveryEquipment = []string{"bike", "rower"}
)

// Conditioning is a cardio prescription: either steady work for a duration or work/rest intervals.
type Conditioning struct {
	Modality        string `json:"modality"`
	Type            string `json:"type"`
	DurationMinutes int    `json:"durationMinutes,omitempty"`
	Work            string `json:"work,omitempty"`
	Rest            string `json:"rest,omitempty"`
	Rounds          int    `json:"rounds,omitempty"`
	TargetRPE       int    `json:"targetRpe"`
	Description     string `json:"description"`
}

type ExerciseOption struct {
	ExerciseID string   `json:"exerciseId"`
	Name       string   `json:"name"`
	Equipment  []string `json:"equipment"`
	Notes      string   `json:"notes,omitempty"`
}

// GPPSlot lists every suitable exercise for a slot so the user can choose one.
type GPPSlot struct {
	SlotID  string           `json:"slotId"`
	Label   string           `json:"label"`
	Reps    string           `json:"reps"`
	Options []ExerciseOption `json:"options"`
}

// Activity is a fixed entry of a mobility, recovery or pilates workout.
type Activity struct {
	ExerciseID string `json:"exerciseId,omitempty"`
	Name       string `json:"name"`
	Sets       int    `json:"sets,omitempty"`
	Reps       string `json:"reps,omitempty"`
	Duration   string `json:"duration,omitempty"`
	Notes      string `json:"notes,omitempty"`
}

// NonLiftingWorkout is the payload of a non-lifting day. It is generated fresh for every view.
type NonLiftingWorkout struct {
	SessionID       string        `json:"sessionId"`
	Label           string        `json:"label"`
	Type            WorkoutType   `json:"type"`
	Phase           plan.PhaseID  `json:"phase,omitempty"`
	DurationMinutes int           `json:"durationMinutes,omitempty"`
	IsInteractive   bool          `json:"isInteractive"`
	Rounds          int           `json:"rounds,omitempty"`
	Conditioning    *Conditioning `json:"conditioning,omitempty"`
	Slots           []GPPSlot     `json:"slots,omitempty"`
	Activities      []Activity    `json:"activities,omitempty"`
	Notes           []string      `json:"notes"`
}

// NonLifting builds the workout of the given type for a day in phase.
func (s *Selector) NonLifting(t WorkoutType, phase plan.PhaseID) NonLiftingWorkout {
	switch t {
	case WorkoutGPP:
		return s.GPP(phase)
	case WorkoutMobility:
		return s.Mobility()
	case WorkoutPilates:
		return Pilates()
	case WorkoutRecovery:
		return s.ActiveRecovery(phase)
	default:
		return s.ActiveRecovery(phase)
	}
}

// GPP builds a Krypteia style conditioning plus circuit workout.
func (s *Selector) GPP(phase plan.PhaseID) NonLiftingWorkout {
	downgraded := phase.Downgraded()
	equipment := s.equipmentOr(defaultGPPEquipment)
	modality := s.conditioningModality(equipment)
	cond := prescription(modality, s.profile.ConditioningLevel, downgraded)

	rounds := gppRounds
	switch {
	case downgraded:
		rounds = gppRoundsDowngraded
	case s.profile.ConditioningLevel == profile.LevelHigh:
		rounds = gppRoundsHigh
	}

	slots := []GPPSlot{
		{SlotID: "carry", Label: "Carry", Reps: "40-60m", Options: nil},
		{SlotID: "single_leg", Label: "Single Leg Movement", Reps: "8-12/side", Options: nil},
		{SlotID: "core", Label: "Core Movement", Reps: "10-15", Options: nil},
	}
	for i := range slots {
		for _, e := range s.candidates(library.SlotTagsFor(slots[i].SlotID), equipment) {
			slots[i].Options = append(slots[i].Options, ExerciseOption{
				ExerciseID: e.ID,
				Name:       e.Name,
				Equipment:  e.Equipment,
				Notes:      firstNote(e),
			})
		}
	}

	return NonLiftingWorkout{
		SessionID:       "GPP",
		Label:           "GPP / Krypteia",
		Type:            WorkoutGPP,
		Phase:           phase,
		DurationMinutes: gppDurationMinutes,
		IsInteractive:   true,
		Rounds:          rounds,
		Conditioning:    &cond,
		Slots:           slots,
		Activities:      nil,
		Notes: []string{
			"Krypteia-style GPP work",
			"Select exercises for each slot",
			"Complete all rounds with minimal rest",
			fmt.Sprintf("Total workout: %d minutes", gppDurationMinutes),
		},
	}
}

// Mobility builds a hip assessment followed by a hip drill and one secondary drill.
func (s *Selector) Mobility() NonLiftingWorkout {
	activities := []Activity{
		{
			ExerciseID: "",
			Name:       "90/90 Hip Assessment",
			Sets:       1,
			Reps:       "Hold as long as possible each side",
			Duration:   "",
			Notes:      "Record your time - track progress",
		},
		s.drill([]library.SlotTag{library.SlotMobilityHipsIRER, library.SlotMobilityHipFlexors}, Activity{
			ExerciseID: "",
			Name:       "90/90 Hip Stretch",
			Sets:       2, //nolint:mnd // sets per drill
			Reps:       "60s each side + 10 transitions",
			Duration:   "",
			Notes:      "Focus on hip internal/external rotation",
		}),
	}

	type secondary struct {
		tag      library.SlotTag
		fallback Activity
	}
	var options []secondary
	if !s.constraints.Has(library.ConstraintKneeIssue) {
		options = append(options, secondary{tag: library.SlotMobilityAnkles, fallback: Activity{
			ExerciseID: "", Name: "Ankle Rocks", Sets: 2, Reps: "60s each side + 10 reps", Duration: "",
			Notes: "Push knee forward over toes",
		}})
	}
	options = append(options, secondary{tag: library.SlotMobilityTSpine, fallback: Activity{
		ExerciseID: "", Name: "Thoracic Rotations", Sets: 2, Reps: "10-15 each side", Duration: "",
		Notes: "Rotate from mid-back, not lower back",
	}})
	if !s.constraints.Has(library.ConstraintShoulderIssue) {
		options = append(options, secondary{tag: library.SlotMobilityShoulders, fallback: Activity{
			ExerciseID: "", Name: "Wall Slides", Sets: 2, Reps: "10-15", Duration: "",
			Notes: "Keep back flat against wall",
		}})
	}
	second := options[s.rng.IntN(len(options))]
	activities = append(activities, s.drill([]library.SlotTag{second.tag}, second.fallback))

	return NonLiftingWorkout{
		SessionID:       "MOBILITY",
		Label:           "Mobility",
		Type:            WorkoutMobility,
		Phase:           "",
		DurationMinutes: mobilityDurationMinutes,
		IsInteractive:   false,
		Rounds:          0,
		Conditioning:    nil,
		Slots:           nil,
		Activities:      activities,
		Notes: []string{
			"Move slowly and controlled",
			"Focus on end ranges of motion",
			"Record assessment times to track progress",
			fmt.Sprintf("Total workout: %d minutes", mobilityDurationMinutes),
		},
	}
}

// ActiveRecovery builds easy zone 2 cardio followed by light mobility and stretching.
func (s *Selector) ActiveRecovery(phase plan.PhaseID) NonLiftingWorkout {
	modality := s.conditioningModality(s.equipmentOr(defaultRecoveryEquipment))
	minutes := 25 //nolint:mnd // regular zone 2 block
	if phase.Downgraded() {
		minutes = 20
	}
	cond := Conditioning{
		Modality:        modality,
		Type:            "zone2",
		DurationMinutes: minutes,
		Work:            "",
		Rest:            "",
		Rounds:          0,
		TargetRPE:       5, //nolint:mnd // easy
		Description:     "Easy conversational pace",
	}
	activities := []Activity{
		{
			ExerciseID: "",
			Name:       "Zone 2 " + modalityName(modality),
			Sets:       0,
			Reps:       "",
			Duration:   fmt.Sprintf("%d min", minutes),
			Notes:      "Easy conversational pace. RPE 4-6. Keep heart rate low",
		},
		s.drill([]library.SlotTag{library.SlotMobilityHipsIRER}, Activity{
			ExerciseID: "", Name: "Hip Mobility", Sets: 0, Reps: "", Duration: "5 min",
			Notes: "Focus on hip internal/external rotation",
		}),
		s.drill([]library.SlotTag{library.SlotMobilityTSpine}, Activity{
			ExerciseID: "", Name: "T-Spine Mobility", Sets: 0, Reps: "", Duration: "3 min",
			Notes: "Gentle rotations",
		}),
		{
			ExerciseID: "",
			Name:       "Static Stretching",
			Sets:       0,
			Reps:       "",
			Duration:   "5-10 min",
			Notes:      "Major muscle groups. Hold each stretch 30-60s",
		},
	}
	return NonLiftingWorkout{
		SessionID:       "REST",
		Label:           "Active Recovery",
		Type:            WorkoutRecovery,
		Phase:           phase,
		DurationMinutes: recoveryDurationMinutes,
		IsInteractive:   false,
		Rounds:          0,
		Conditioning:    &cond,
		Slots:           nil,
		Activities:      activities,
		Notes: []string{
			"Keep intensity very low",
			"Focus on recovery and blood flow",
			"No intervals, no heavy work",
			"Optional: sauna, ice bath, or massage",
		},
	}
}

// Pilates returns the placeholder for the user's own routine.
func Pilates() NonLiftingWorkout {
	return NonLiftingWorkout{
		SessionID:       "PILATES",
		Label:           "Pilates",
		Type:            WorkoutPilates,
		Phase:           "",
		DurationMinutes: 0,
		IsInteractive:   false,
		Rounds:          0,
		Conditioning:    nil,
		Slots:           nil,
		Activities: []Activity{{
			ExerciseID: "", Name: "Pilates Session", Sets: 0, Reps: "", Duration: "",
			Notes: "Complete your Pilates routine",
		}},
		Notes: []string{
			"Complete your Pilates routine",
			"Focus on breath and core engagement",
			"Quality over quantity",
		},
	}
}

// drill picks a random safe exercise carrying one of tags, keeping the prescription of fallback. The fallback is
// returned unchanged when nothing matches.
func (s *Selector) drill(tags []library.SlotTag, fallback Activity) Activity {
	e, ok := s.pick(s.candidates(tags, s.profile.Equipment), nil)
	if !ok {
		return fallback
	}
	a := fallback
	a.ExerciseID = e.ID
	a.Name = e.Name
	if note := firstNote(e); note != "" {
		a.Notes = note
	}
	return a
}

// conditioningModality picks a random modality allowed by equipment and constraints, defaulting to the bike.
func (s *Selector) conditioningModality(equipment []string) string {
	var options []string
	if !s.constraints.Has(library.ConstraintNoRunning) {
		options = append(options, ModalityRun)
	}
	if slices.Contains(equipment, "bike") {
		options = append(options, ModalityBike)
	}
	if slices.Contains(equipment, "rower") {
		options = append(options, ModalityRower)
	}
	if slices.Contains(equipment, "jumprope") && !s.constraints.Has(library.ConstraintKneeIssue) {
		options = append(options, ModalityJumpRope)
	}
	if len(options) == 0 {
		return ModalityBike
	}
	return options[s.rng.IntN(len(options))]
}

func (s *Selector) equipmentOr(fallback []string) []string {
	if len(s.profile.Equipment) > 0 {
		return s.profile.Equipment
	}
	return fallback
}

//nolint:mnd // prescription table
func prescription(modality string, level profile.ConditioningLevel, downgraded bool) Conditioning {
	zone2 := func(minutes int) Conditioning {
		return Conditioning{
			Modality:        modality,
			Type:            "zone2",
			DurationMinutes: minutes,
			Work:            "",
			Rest:            "",
			Rounds:          0,
			TargetRPE:       5,
			Description:     "Zone 2 steady pace",
		}
	}
	intervals := func(work, rest string, rounds, rpe int) Conditioning {
		return Conditioning{
			Modality:        modality,
			Type:            "intervals",
			DurationMinutes: 0,
			Work:            work,
			Rest:            rest,
			Rounds:          rounds,
			TargetRPE:       rpe,
			Description:     fmt.Sprintf("%d rounds: %ss hard / %ss easy", rounds, work[2:], rest[2:]),
		}
	}
	switch {
	case downgraded:
		return zone2(25)
	case level == profile.LevelLow:
		return zone2(30)
	case level == profile.LevelModerate:
		return intervals("0:20", "0:40", 10, 8)
	case level == profile.LevelHigh:
		return intervals("0:30", "0:30", 8, 9)
	default:
		return zone2(25)
	}
}

func modalityName(modality string) string {
	switch modality {
	case ModalityRun:
		return "Run"
	case ModalityRower:
		return "Rower"
	case ModalityJumpRope:
		return "Jump Rope"
	default:
		return "Bike"
	}
}

func firstNote(e library.Exercise) string {
	if len(e.Notes) == 0 {
		return ""
	}
	return e.Notes[0]
}
