// Package strength derives training maxes from one-rep maxes.
//
// Training maxes are never accepted from a client. [NewData] is the only constructor and always recomputes them
// from the one-rep maxes and the policy.
package strength

import (
	"fmt"
	"math"
	"time"

	"github.com/styrkr/styrkr/internal/errors"
)

// Lift identifies one of the four main lifts.
type Lift string

const (
	Squat    Lift = "squat"
	Bench    Lift = "bench"
	Deadlift Lift = "deadlift"
	OHP      Lift = "ohp"
)

// Lifts lists the main lifts in program order.
//
//nolint:gochecknoglobals // fixed order of the main lifts.
var Lifts = []Lift{Squat, Bench, Deadlift, OHP}

// Rounding is the increment training maxes are rounded down to.
type Rounding string

const (
	Rounding5lb   Rounding = "5lb"
	Rounding2_5kg Rounding = "2.5kg"
)

const (
	MinPercent     = 0.80
	MaxPercent     = 0.90
	DefaultPercent = 0.85
	floatTolerance = 1e-9
)

// Increment returns the rounding step, or 0 for an unknown rounding.
func (r Rounding) Increment() float64 {
	switch r {
	case Rounding5lb:
		return 5 //nolint:mnd // pounds
	case Rounding2_5kg:
		return 2.5 //nolint:mnd // kilograms
	default:
		return 0
	}
}

// TMPolicy controls how one-rep maxes are discounted into training maxes.
type TMPolicy struct {
	Percent  float64  `json:"percent"`
	Rounding Rounding `json:"rounding"`
}

// Maxes holds one weight per main lift.
type Maxes struct {
	Squat    float64 `json:"squat"`
	Bench    float64 `json:"bench"`
	Deadlift float64 `json:"deadlift"`
	OHP      float64 `json:"ohp"`
}

// Get returns the weight for lift. Unknown lifts weigh 0.
func (m Maxes) Get(lift Lift) float64 {
	switch lift {
	case Squat:
		return m.Squat
	case Bench:
		return m.Bench
	case Deadlift:
		return m.Deadlift
	case OHP:
		return m.OHP
	default:
		return 0
	}
}

func (m *Maxes) set(lift Lift, v float64) {
	switch lift {
	case Squat:
		m.Squat = v
	case Bench:
		m.Bench = v
	case Deadlift:
		m.Deadlift = v
	case OHP:
		m.OHP = v
	}
}

// HistoryEntry records the maxes in effect after an update.
type HistoryEntry struct {
	Date          time.Time `json:"date"`
	OneRepMaxes   Maxes     `json:"oneRepMaxes"`
	TrainingMaxes Maxes     `json:"trainingMaxes"`
}

// Data is a user's validated strength record.
type Data struct {
	OneRepMaxes   Maxes          `json:"oneRepMaxes"`
	TMPolicy      TMPolicy       `json:"tmPolicy"`
	TrainingMaxes Maxes          `json:"trainingMaxes"`
	History       []HistoryEntry `json:"history,omitempty"`
	UpdatedAt     time.Time      `json:"updatedAt"`
}

// ErrValidation is the sentinel matched by every [*ValidationError].
var ErrValidation = errors.NewSentinel("validation error")

// ValidationError reports an invalid strength input. Message is safe to show to users.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation //nolint:errorlint // sentinel identity.
}

// ValidatePolicy checks that percent lies in [0.80, 0.90] and rounding is known.
func ValidatePolicy(policy TMPolicy) error {
	if math.IsNaN(policy.Percent) ||
		policy.Percent < MinPercent-floatTolerance || policy.Percent > MaxPercent+floatTolerance {
		return &ValidationError{
			Field:   "tmPolicy.percent",
			Message: "tmPolicy.percent must be between 0.80 and 0.90",
		}
	}
	if policy.Rounding.Increment() == 0 {
		return &ValidationError{
			Field:   "tmPolicy.rounding",
			Message: "tmPolicy.rounding must be '5lb' or '2.5kg'",
		}
	}
	return nil
}

// ValidateOneRepMaxes checks that every main lift has a positive one-rep max.
func ValidateOneRepMaxes(orm Maxes) error {
	for _, lift := range Lifts {
		if v := orm.Get(lift); !(v > 0) || math.IsInf(v, 0) {
			field := fmt.Sprintf("oneRepMaxes.%s", lift)
			return &ValidationError{Field: field, Message: field + " must be a positive number"}
		}
	}
	return nil
}

// CalculateTrainingMax multiplies oneRepMax by percent, floors the product and rounds it down to the policy
// increment: 315 at 0.85 with 5lb rounding is 265.
func CalculateTrainingMax(oneRepMax, percent float64, rounding Rounding) (float64, error) {
	if err := ValidatePolicy(TMPolicy{Percent: percent, Rounding: rounding}); err != nil {
		return 0, err
	}
	if !(oneRepMax > 0) {
		return 0, &ValidationError{Field: "oneRepMax", Message: "one-rep max must be a positive number"}
	}
	increment := rounding.Increment()
	floored := math.Floor(oneRepMax*percent + floatTolerance)
	return math.Floor(floored/increment+floatTolerance) * increment, nil
}

// CalculateTrainingMaxes applies [CalculateTrainingMax] to every main lift.
func CalculateTrainingMaxes(orm Maxes, policy TMPolicy) (Maxes, error) {
	if err := ValidateOneRepMaxes(orm); err != nil {
		return Maxes{}, err
	}
	if err := ValidatePolicy(policy); err != nil {
		return Maxes{}, err
	}
	var tms Maxes
	for _, lift := range Lifts {
		tm, err := CalculateTrainingMax(orm.Get(lift), policy.Percent, policy.Rounding)
		if err != nil {
			return Maxes{}, err
		}
		tms.set(lift, tm)
	}
	return tms, nil
}

// NewData validates the input and derives the training maxes. A history entry for now is appended to the given
// history.
func NewData(orm Maxes, policy TMPolicy, history []HistoryEntry, now time.Time) (Data, error) {
	tms, err := CalculateTrainingMaxes(orm, policy)
	if err != nil {
		return Data{}, err
	}
	h := make([]HistoryEntry, 0, len(history)+1)
	h = append(h, history...)
	h = append(h, HistoryEntry{Date: now, OneRepMaxes: orm, TrainingMaxes: tms})
	return Data{
		OneRepMaxes:   orm,
		TMPolicy:      policy,
		TrainingMaxes: tms,
		History:       h,
		UpdatedAt:     now,
	}, nil
}

// DefaultPolicy returns the 85% policy with the rounding matching units.
func DefaultPolicy(units string) TMPolicy {
	if units == "kg" {
		return TMPolicy{Percent: DefaultPercent, Rounding: Rounding2_5kg}
	}
	return TMPolicy{Percent: DefaultPercent, Rounding: Rounding5lb}
}
