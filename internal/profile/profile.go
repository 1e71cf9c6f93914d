// Package profile holds the user's training preferences and their validation.
package profile

import (
	"slices"
	"strings"
	"time"

	"github.com/styrkr/styrkr/internal/errors"
)

// Weekday is a three-letter day abbreviation as used in profile documents.
type Weekday string

const (
	Mon Weekday = "mon"
	Tue Weekday = "tue"
	Wed Weekday = "wed"
	Thu Weekday = "thu"
	Fri Weekday = "fri"
	Sat Weekday = "sat"
	Sun Weekday = "sun"
)

// Time converts w to a [time.Weekday]. Unknown values map to Monday.
func (w Weekday) Time() time.Weekday {
	switch w {
	case Tue:
		return time.Tuesday
	case Wed:
		return time.Wednesday
	case Thu:
		return time.Thursday
	case Fri:
		return time.Friday
	case Sat:
		return time.Saturday
	case Sun:
		return time.Sunday
	case Mon:
		return time.Monday
	default:
		return time.Monday
	}
}

//nolint:gochecknoglobals // closed enum.
var weekdays = []Weekday{Mon, Tue, Wed, Thu, Fri, Sat, Sun}

func (w Weekday) Valid() bool {
	return slices.Contains(weekdays, w)
}

// ParseWeekday accepts an abbreviation or a full English day name, ignoring case.
func ParseWeekday(s string) (Weekday, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, w := range weekdays {
		if s == string(w) || s == strings.ToLower(w.Time().String()) {
			return w, true
		}
	}
	return "", false
}

type Units string

const (
	Pounds    Units = "lb"
	Kilograms Units = "kg"
)

// Increment is the smallest plate jump used to round prescribed weights.
func (u Units) Increment() float64 {
	if u == Kilograms {
		return 2.5 //nolint:mnd // kilograms
	}
	return 5 //nolint:mnd // pounds
}

// NonLiftingMode selects what fills the non-lifting days.
type NonLiftingMode string

const (
	ModePilates      NonLiftingMode = "pilates"
	ModeConditioning NonLiftingMode = "conditioning"
	ModeGPP          NonLiftingMode = "gpp"
	ModeMobility     NonLiftingMode = "mobility"
	ModeRest         NonLiftingMode = "rest"
)

type ConditioningLevel string

const (
	LevelLow      ConditioningLevel = "low"
	LevelModerate ConditioningLevel = "moderate"
	LevelHigh     ConditioningLevel = "high"
)

type MuscleUps string

const (
	MuscleUpsNone  MuscleUps = "none"
	MuscleUpsBar   MuscleUps = "bar"
	MuscleUpsRings MuscleUps = "rings"
)

type MovementCapabilities struct {
	Pullups   bool      `json:"pullups"`
	RingDips  bool      `json:"ringDips"`
	MuscleUps MuscleUps `json:"muscleUps"`
}

// Profile is a user's training preferences.
type Profile struct {
	TrainingDaysPerWeek   int                   `json:"trainingDaysPerWeek"`
	PreferredStartDay     Weekday               `json:"preferredStartDay"`
	PreferredUnits        Units                 `json:"preferredUnits"`
	NonLiftingDaysEnabled bool                  `json:"nonLiftingDaysEnabled"`
	NonLiftingDayMode     NonLiftingMode        `json:"nonLiftingDayMode"`
	ConditioningLevel     ConditioningLevel     `json:"conditioningLevel"`
	Constraints           []string              `json:"constraints"`
	Equipment             []string              `json:"equipment,omitempty"`
	MovementCapabilities  *MovementCapabilities `json:"movementCapabilities,omitempty"`
}

const (
	MinTrainingDays = 3
	MaxTrainingDays = 7
)

// ErrValidation is matched by every [*ValidationError].
var ErrValidation = errors.NewSentinel("invalid profile")

// ValidationError describes the first invalid profile field. Message is safe to show to users.
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

// Validate returns a [*ValidationError] for the first invalid field.
func (p Profile) Validate() error {
	invalid := func(field, msg string) error { return &ValidationError{Field: field, Message: msg} }

	if p.TrainingDaysPerWeek < MinTrainingDays || p.TrainingDaysPerWeek > MaxTrainingDays {
		return invalid("trainingDaysPerWeek", "trainingDaysPerWeek must be between 3 and 7")
	}
	if p.PreferredUnits != Pounds && p.PreferredUnits != Kilograms {
		return invalid("preferredUnits", "preferredUnits must be 'lb' or 'kg'")
	}
	switch p.NonLiftingDayMode {
	case ModePilates, ModeConditioning, ModeGPP, ModeMobility, ModeRest:
	default:
		return invalid("nonLiftingDayMode",
			"nonLiftingDayMode must be one of: pilates, conditioning, gpp, mobility, rest")
	}
	switch p.ConditioningLevel {
	case LevelLow, LevelModerate, LevelHigh:
	default:
		return invalid("conditioningLevel", "conditioningLevel must be one of: low, moderate, high")
	}
	if !p.PreferredStartDay.Valid() {
		return invalid("preferredStartDay", "preferredStartDay must be a valid day abbreviation")
	}
	if p.Constraints == nil {
		return invalid("constraints", "constraints must be an array")
	}
	if mc := p.MovementCapabilities; mc != nil {
		switch mc.MuscleUps {
		case MuscleUpsNone, MuscleUpsBar, MuscleUpsRings:
		default:
			return invalid("movementCapabilities.muscleUps", "movementCapabilities.muscleUps must be: none, bar, or rings")
		}
	}
	return nil
}

// Default returns the profile assumed before onboarding: four Monday-start days in pounds.
func Default() Profile {
	return Profile{
		TrainingDaysPerWeek:   4, //nolint:mnd // main lift days
		PreferredStartDay:     Mon,
		PreferredUnits:        Pounds,
		NonLiftingDaysEnabled: false,
		NonLiftingDayMode:     ModeRest,
		ConditioningLevel:     LevelModerate,
		Constraints:           []string{},
		Equipment:             nil,
		MovementCapabilities:  nil,
	}
}
