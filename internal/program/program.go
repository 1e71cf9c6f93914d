// Package program turns a periodization template and a user's training maxes into a calendar of prescribed
// sessions, resolves assistance slots into concrete exercises and synthesizes non-lifting day workouts.
//
// [Generate] is pure and deterministic. Randomness only enters through a [Selector], whose picks are frozen into
// the program once and never re-rolled.
package program

import (
	"math"
	"time"

	"github.com/styrkr/styrkr/internal/calendar"
	"github.com/styrkr/styrkr/internal/library"
	"github.com/styrkr/styrkr/internal/plan"
	"github.com/styrkr/styrkr/internal/profile"
	"github.com/styrkr/styrkr/internal/strength"
)

const (
	daysPerWeek = 7

	// DefaultCircuitRounds applies when neither the phase nor the session template sets a round count.
	DefaultCircuitRounds = 5

	// defaultFSLReps is used when an FSL entry lacks a rep range.
	defaultFSLReps = 5
)

// SetDetail is one prescribed set.
type SetDetail struct {
	Weight     float64 `json:"weight"`
	TargetReps int     `json:"targetReps"`
	PctTM      float64 `json:"pctTM"`
}

type MainLift struct {
	LiftID string      `json:"liftId"`
	Sets   []SetDetail `json:"sets"`
}

type Supplemental struct {
	Type  string      `json:"type"`
	Label string      `json:"label"`
	Sets  []SetDetail `json:"sets"`
}

// CircuitExercise is an assistance slot of a session. Until the program is frozen ExerciseID is empty and Name
// holds the placeholder label of the slot.
type CircuitExercise struct {
	SlotID      string  `json:"slotId"`
	SlotLabel   string  `json:"slotLabel"`
	ExerciseID  string  `json:"exerciseId"`
	Name        string  `json:"name"`
	Placeholder bool    `json:"placeholder"`
	Weight      float64 `json:"weight"`
	TargetReps  int     `json:"targetReps"`
	MinReps     int     `json:"minReps"`
	MaxReps     int     `json:"maxReps"`
	Sets        int     `json:"sets"`
}

// Frozen reports whether the slot has been resolved.
func (c CircuitExercise) Frozen() bool {
	return c.ExerciseID != ""
}

type Circuit struct {
	Rounds    int               `json:"rounds"`
	Style     string            `json:"style,omitempty"`
	Exercises []CircuitExercise `json:"exercises"`
}

// Session is one prescribed training day.
type Session struct {
	SessionID    string        `json:"sessionId"`
	Label        string        `json:"label"`
	Date         calendar.Date `json:"date"`
	Week         int           `json:"week"`
	Phase        plan.PhaseID  `json:"phase"`
	SchemeLabel  string        `json:"schemeLabel,omitempty"`
	MainLift     MainLift      `json:"mainLift"`
	Supplemental *Supplemental `json:"supplemental,omitempty"`
	Circuit      *Circuit      `json:"circuit,omitempty"`
	IsTestWeek   bool          `json:"isTestWeek,omitempty"`
	IsReset      bool          `json:"isReset,omitempty"`
}

type Week struct {
	WeekNumber int           `json:"weekNumber"`
	Phase      plan.PhaseID  `json:"phase"`
	PhaseLabel string        `json:"phaseLabel"`
	StartDate  calendar.Date `json:"startDate"`
	Sessions   []Session     `json:"sessions"`
}

// Program is one generated macrocycle.
type Program struct {
	Weeks           []Week         `json:"weeks"`
	StartDate       calendar.Date  `json:"startDate"`
	TrainingMaxes   strength.Maxes `json:"trainingMaxes"`
	Units           profile.Units  `json:"units"`
	TemplateVersion string         `json:"templateVersion,omitempty"`
	LibraryVersion  string         `json:"libraryVersion,omitempty"`
	GeneratedAt     time.Time      `json:"generatedAt"`
}

// Week returns the program week with number n.
func (p *Program) Week(n int) (Week, bool) {
	for _, w := range p.Weeks {
		if w.WeekNumber == n {
			return w, true
		}
	}
	return Week{}, false
}

// SessionOn returns the session scheduled on d before any schedule overlay is applied.
func (p *Program) SessionOn(d calendar.Date) (Session, bool) {
	for _, w := range p.Weeks {
		for _, s := range w.Sessions {
			if s.Date == d {
				return s, true
			}
		}
	}
	return Session{}, false
}

// WeekOf returns the program week number containing d, or 0 when d falls outside the program.
func (p *Program) WeekOf(d calendar.Date) int {
	if d.Before(p.StartDate) {
		return 0
	}
	n := p.StartDate.DaysUntil(d)/daysPerWeek + 1
	if _, ok := p.Week(n); !ok {
		return 0
	}
	return n
}

// PhaseOf returns the phase of the program week containing d.
func (p *Program) PhaseOf(d calendar.Date) (plan.PhaseID, bool) {
	w, ok := p.Week(p.WeekOf(d))
	return w.Phase, ok
}

// Frozen reports whether every assistance slot has been resolved.
func (p *Program) Frozen() bool {
	for _, w := range p.Weeks {
		for _, s := range w.Sessions {
			if s.Circuit == nil {
				continue
			}
			for _, c := range s.Circuit.Exercises {
				if !c.Frozen() {
					return false
				}
			}
		}
	}
	return true
}

// CarryPicks copies the resolved assistance exercises of prev into the matching unresolved slots of p. Slots
// match by week, session id and position when both carry the same slot id. Placeholders and picks rejected by
// keep are not copied, leaving them to the next [Selector.Freeze].
func (p *Program) CarryPicks(prev *Program, keep func(slotID, exerciseID string) bool) {
	type slotKey struct {
		week    int
		session string
		index   int
	}
	picks := make(map[slotKey]CircuitExercise)
	for _, w := range prev.Weeks {
		for _, s := range w.Sessions {
			if s.Circuit == nil {
				continue
			}
			for i, c := range s.Circuit.Exercises {
				if c.Frozen() && !c.Placeholder {
					picks[slotKey{week: w.WeekNumber, session: s.SessionID, index: i}] = c
				}
			}
		}
	}
	for wi := range p.Weeks {
		w := &p.Weeks[wi]
		for si := range w.Sessions {
			circuit := w.Sessions[si].Circuit
			if circuit == nil {
				continue
			}
			for ci := range circuit.Exercises {
				c := &circuit.Exercises[ci]
				old, ok := picks[slotKey{week: w.WeekNumber, session: w.Sessions[si].SessionID, index: ci}]
				if !ok || c.Frozen() || old.SlotID != c.SlotID || !keep(old.SlotID, old.ExerciseID) {
					continue
				}
				c.ExerciseID = old.ExerciseID
				c.Name = old.Name
				c.Placeholder = false
			}
		}
	}
}

// Input is everything [Generate] depends on.
type Input struct {
	Template      *plan.Template
	TrainingMaxes strength.Maxes
	StartDay      time.Weekday
	Units         profile.Units
	Today         calendar.Date
	// Start pins the program start date. Zero uses the next StartDay after Today.
	Start calendar.Date
	// DayOffsets places the sessions of a week relative to its start date in session key order. Missing
	// offsets default to 0, 1, 2, 3.
	DayOffsets []int
}

// StartDate returns the next occurrence of weekday strictly after today.
func StartDate(today calendar.Date, weekday time.Weekday) calendar.Date {
	return today.NextOccurrence(weekday)
}

// Generate builds the program for one macrocycle. Weeks without a phase are omitted, session keys without a
// template are skipped and unknown lifts weigh 0. Assistance slots are left unresolved for [Selector.Freeze].
func Generate(in Input) *Program {
	start := in.Start
	if start.IsZero() {
		start = StartDate(in.Today, in.StartDay)
	}
	prog := &Program{
		Weeks:           nil,
		StartDate:       start,
		TrainingMaxes:   in.TrainingMaxes,
		Units:           in.Units,
		TemplateVersion: "",
		LibraryVersion:  "",
		GeneratedAt:     time.Time{},
	}
	if in.Template == nil {
		return prog
	}
	prog.TemplateVersion = in.Template.Version

	for week := 1; week <= in.Template.Macrocycle.CycleLengthWeeks; week++ {
		phase, ok := in.Template.PhaseForWeek(week)
		if !ok {
			continue
		}
		weekStart := start.AddDays((week - 1) * daysPerWeek)
		w := Week{
			WeekNumber: week,
			Phase:      phase.PhaseID,
			PhaseLabel: phase.Label,
			StartDate:  weekStart,
			Sessions:   nil,
		}
		for i, key := range plan.SessionKeys {
			st, ok := in.Template.SessionTemplates[key]
			if !ok {
				continue
			}
			date := weekStart.AddDays(dayOffset(in.DayOffsets, i))
			w.Sessions = append(w.Sessions, buildSession(in, key, st, phase, week, date))
		}
		prog.Weeks = append(prog.Weeks, w)
	}
	return prog
}

func dayOffset(offsets []int, i int) int {
	if i < len(offsets) {
		return offsets[i]
	}
	return i
}

func buildSession(in Input, key plan.SessionKey, st plan.SessionTemplate, phase plan.Phase, week int,
	date calendar.Date) Session {
	sessionID := st.SessionID
	if sessionID == "" {
		sessionID = string(key)
	}
	s := Session{
		SessionID:    sessionID,
		Label:        st.Label,
		Date:         date,
		Week:         week,
		Phase:        phase.PhaseID,
		SchemeLabel:  "",
		MainLift:     MainLift{LiftID: st.MainLiftID, Sets: []SetDetail{}},
		Supplemental: nil,
		Circuit:      buildCircuit(st, phase),
		IsTestWeek:   false,
		IsReset:      false,
	}

	scheme, ok := in.Template.SchemeForWeek(phase, week)
	if !ok {
		s.IsTestWeek = phase.PhaseID == plan.PhaseTest
		s.IsReset = phase.PhaseID == plan.PhaseReset
		return s
	}
	s.SchemeLabel = scheme.Label

	tm := in.TrainingMaxes.Get(strength.Lift(st.MainLiftID))
	increment := in.Units.Increment()
	for _, ws := range scheme.WorkSets {
		s.MainLift.Sets = append(s.MainLift.Sets, SetDetail{
			Weight:     RoundToNearest(tm*ws.PctTM, increment),
			TargetReps: ws.Reps,
			PctTM:      ws.PctTM,
		})
	}

	if fsl, ok := st.FSL(); ok && phase.Rules.UsesFSL() {
		s.Supplemental = buildFSL(fsl, scheme.WorkSets[0].PctTM, tm, increment)
	}
	return s
}

func buildFSL(fsl plan.Supplemental, pct, tm, increment float64) *Supplemental {
	reps := defaultFSLReps
	if len(fsl.RepsRange) > 0 {
		reps = fsl.RepsRange[0]
	}
	set := SetDetail{Weight: RoundToNearest(tm*pct, increment), TargetReps: reps, PctTM: pct}
	n := max(fsl.Sets, 0)
	sets := make([]SetDetail, 0, n)
	for range n {
		sets = append(sets, set)
	}
	return &Supplemental{Type: fsl.Type, Label: fsl.Label, Sets: sets}
}

func buildCircuit(st plan.SessionTemplate, phase plan.Phase) *Circuit {
	if len(st.AssistanceSlots) == 0 {
		return nil
	}
	rounds := DefaultCircuitRounds
	switch {
	case phase.Rules.CircuitRounds != nil:
		rounds = *phase.Rules.CircuitRounds
	case st.Circuit.Rounds > 0:
		rounds = st.Circuit.Rounds
	}
	c := &Circuit{
		Rounds:    rounds,
		Style:     st.Circuit.Style,
		Exercises: make([]CircuitExercise, 0, len(st.AssistanceSlots)),
	}
	for _, slot := range st.AssistanceSlots {
		minReps, maxReps := slot.RepRange()
		c.Exercises = append(c.Exercises, CircuitExercise{
			SlotID:      slot.SlotID,
			SlotLabel:   library.TitleCase(slot.SlotID),
			ExerciseID:  "",
			Name:        placeholderName(slot.SlotID),
			Placeholder: true,
			Weight:      0,
			TargetReps:  minReps,
			MinReps:     minReps,
			MaxReps:     maxReps,
			Sets:        rounds,
		})
	}
	return c
}

// RoundToNearest rounds w to the nearest multiple of increment.
func RoundToNearest(w, increment float64) float64 {
	if increment <= 0 {
		return w
	}
	return math.Round(w/increment) * increment
}

func placeholderName(slotID string) string {
	return "Any " + library.TitleCase(slotID)
}

func placeholderID(slotID string) string {
	return "placeholder_" + slotID
}
