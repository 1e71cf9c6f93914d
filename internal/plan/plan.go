// Package plan models the periodization template: phases over a macrocycle, set schemes and the per-lift session
// templates. Templates are static input parsed with [Parse].
package plan

import (
	"slices"
	"strconv"

	"github.com/styrkr/styrkr/internal/ptr"
)

// PhaseID is the closed set of macrocycle phases.
type PhaseID string

const (
	PhaseLeader PhaseID = "LEADER"
	PhaseAnchor PhaseID = "ANCHOR"
	PhaseDeload PhaseID = "DELOAD"
	PhaseTest   PhaseID = "TEST"
	PhaseReset  PhaseID = "RESET"
)

func (p PhaseID) Valid() bool {
	switch p {
	case PhaseLeader, PhaseAnchor, PhaseDeload, PhaseTest, PhaseReset:
		return true
	default:
		return false
	}
}

// Downgraded reports whether conditioning is reduced to low intensity work during the phase.
func (p PhaseID) Downgraded() bool {
	return p == PhaseDeload || p == PhaseTest
}

// DefaultSchemeName is used when a week-indexed phase names neither a scheme for the week nor a fallback.
const DefaultSchemeName = "fives_pro_week_1"

// FSLType marks the First Set Last supplemental entry of a session template.
const FSLType = "fsl_main_lift"

// SessionKey identifies one of the four fixed main-lift session templates.
type SessionKey string

const (
	SquatDay    SessionKey = "SQUAT_DAY"
	BenchDay    SessionKey = "BENCH_DAY"
	DeadliftDay SessionKey = "DEADLIFT_DAY"
	OHPDay      SessionKey = "OHP_DAY"
)

// SessionKeys lists the session templates in weekly order.
//
//nolint:gochecknoglobals // fixed weekly order.
var SessionKeys = []SessionKey{SquatDay, BenchDay, DeadliftDay, OHPDay}

type WorkSet struct {
	PctTM float64 `json:"pctTM"`
	Reps  int     `json:"reps"`
}

type SetScheme struct {
	Label    string    `json:"label"`
	WorkSets []WorkSet `json:"workSets"`
}

type Rules struct {
	SupplementalUsesFSL *bool `json:"supplementalUsesFSL,omitempty"`
	SupplementalEnabled *bool `json:"supplementalEnabled,omitempty"`
	CircuitRounds       *int  `json:"circuitRounds,omitempty"`
}

// UsesFSL reports whether FSL supplemental work is prescribed. An explicit supplementalEnabled=false wins.
func (r Rules) UsesFSL() bool {
	return ptr.ValueOr(r.SupplementalEnabled, true) && ptr.ValueOr(r.SupplementalUsesFSL, false)
}

type Phase struct {
	PhaseID                     PhaseID           `json:"phaseId"`
	Label                       string            `json:"label"`
	Weeks                       []int             `json:"weeks"`
	MainLiftScheme              string            `json:"mainLiftScheme,omitempty"`
	MainLiftSchemeByWeekInCycle map[string]string `json:"mainLiftSchemeByWeekInCycle,omitempty"`
	Rules                       Rules             `json:"rules"`
}

// Contains reports whether week belongs to the phase.
func (p Phase) Contains(week int) bool {
	return slices.Contains(p.Weeks, week)
}

// SchemeName resolves the scheme name for week. It returns "" when the phase prescribes no main-lift work.
func (p Phase) SchemeName(week int) string {
	if p.MainLiftSchemeByWeekInCycle == nil {
		return p.MainLiftScheme
	}
	first := week
	if len(p.Weeks) > 0 {
		first = slices.Min(p.Weeks)
	}
	if name, ok := p.MainLiftSchemeByWeekInCycle[strconv.Itoa(week-first+1)]; ok && name != "" {
		return name
	}
	if p.MainLiftScheme != "" {
		return p.MainLiftScheme
	}
	return DefaultSchemeName
}

type Macrocycle struct {
	CycleLengthWeeks int     `json:"cycleLengthWeeks"`
	Phases           []Phase `json:"phases"`
}

type Supplemental struct {
	Type      string `json:"type"`
	Label     string `json:"label"`
	Sets      int    `json:"sets"`
	RepsRange []int  `json:"repsRange"`
}

type AssistanceSlot struct {
	SlotID  string `json:"slotId"`
	MinReps int    `json:"minReps,omitempty"`
	MaxReps int    `json:"maxReps,omitempty"`
}

const (
	DefaultMinReps = 10
	DefaultMaxReps = 20
)

// RepRange returns the slot rep range with the defaults applied.
func (s AssistanceSlot) RepRange() (int, int) {
	minReps, maxReps := s.MinReps, s.MaxReps
	if minReps <= 0 {
		minReps = DefaultMinReps
	}
	if maxReps <= 0 {
		maxReps = DefaultMaxReps
	}
	return minReps, maxReps
}

type Circuit struct {
	Enabled bool   `json:"enabled"`
	Rounds  int    `json:"rounds"`
	Style   string `json:"style,omitempty"`
}

type SessionTemplate struct {
	SessionID       string           `json:"sessionId"`
	Label           string           `json:"label"`
	MainLiftID      string           `json:"mainLiftId"`
	Supplemental    []Supplemental   `json:"supplemental,omitempty"`
	AssistanceSlots []AssistanceSlot `json:"assistanceSlots,omitempty"`
	Circuit         Circuit          `json:"circuit"`
}

// FSL returns the First Set Last supplemental entry if the template declares one.
func (s SessionTemplate) FSL() (Supplemental, bool) {
	for _, sup := range s.Supplemental {
		if sup.Type == FSLType {
			return sup, true
		}
	}
	return Supplemental{}, false
}

// Template is a parsed program template.
type Template struct {
	ProgramID        string                         `json:"programId,omitempty"`
	ProgramName      string                         `json:"programName,omitempty"`
	Version          string                         `json:"version,omitempty"`
	Macrocycle       Macrocycle                     `json:"macrocycle"`
	SetSchemes       map[string]SetScheme           `json:"setSchemes"`
	SessionTemplates map[SessionKey]SessionTemplate `json:"sessionTemplates"`
}

// PhaseForWeek returns the first phase containing week.
func (t *Template) PhaseForWeek(week int) (Phase, bool) {
	for _, p := range t.Macrocycle.Phases {
		if p.Contains(week) {
			return p, true
		}
	}
	return Phase{}, false
}

// SchemeForWeek resolves the set scheme of phase p for week. It reports false when the phase prescribes no
// main-lift work or the named scheme has no work sets.
func (t *Template) SchemeForWeek(p Phase, week int) (SetScheme, bool) {
	name := p.SchemeName(week)
	if name == "" {
		return SetScheme{}, false
	}
	scheme, ok := t.SetSchemes[name]
	if !ok || len(scheme.WorkSets) == 0 {
		return SetScheme{}, false
	}
	return scheme, true
}
