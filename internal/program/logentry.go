package program

import (
	"github.com/styrkr/styrkr/internal/calendar"
	"github.com/styrkr/styrkr/internal/errors"
)

// ErrInvalidLogEntry is matched by every [*LogValidationError].
var ErrInvalidLogEntry = errors.NewSentinel("invalid workout log entry")

// LogValidationError describes the first invalid field of a [WorkoutLogEntry].
type LogValidationError struct {
	Field   string
	Message string
}

func (e *LogValidationError) Error() string {
	return e.Message
}

func (e *LogValidationError) Is(target error) bool {
	return target == ErrInvalidLogEntry //nolint:errorlint // sentinel identity.
}

type LoggedSet struct {
	Weight    float64 `json:"weight"`
	Reps      int     `json:"reps"`
	Completed bool    `json:"completed"`
}

type LoggedLift struct {
	LiftID string      `json:"liftId"`
	Sets   []LoggedSet `json:"sets"`
}

type LoggedCircuitSet struct {
	ExerciseID string  `json:"exerciseId"`
	Round      int     `json:"round"`
	Reps       int     `json:"reps"`
	Weight     float64 `json:"weight"`
}

type LoggedCircuit struct {
	Rounds int                `json:"rounds"`
	Sets   []LoggedCircuitSet `json:"sets"`
}

// WorkoutLogEntry records a completed workout. Only its date is read back, as part of the completed set.
type WorkoutLogEntry struct {
	ID              string         `json:"id,omitempty"`
	WorkoutDate     calendar.Date  `json:"workoutDate"`
	ProgramWeek     int            `json:"programWeek"`
	SessionID       string         `json:"sessionId"`
	MainLift        *LoggedLift    `json:"mainLift,omitempty"`
	Circuit         *LoggedCircuit `json:"circuit,omitempty"`
	Notes           string         `json:"notes,omitempty"`
	DurationMinutes int            `json:"durationMinutes,omitempty"`
}

// NewLogEntry prefills a log entry with everything session prescribes, as if it was completed as written.
func NewLogEntry(s Session) WorkoutLogEntry {
	entry := WorkoutLogEntry{
		ID:              "",
		WorkoutDate:     s.Date,
		ProgramWeek:     s.Week,
		SessionID:       s.SessionID,
		MainLift:        nil,
		Circuit:         nil,
		Notes:           "",
		DurationMinutes: 0,
	}
	if s.MainLift.LiftID != "" {
		lift := &LoggedLift{LiftID: s.MainLift.LiftID, Sets: make([]LoggedSet, 0, len(s.MainLift.Sets))}
		for _, set := range s.MainLift.Sets {
			lift.Sets = append(lift.Sets, LoggedSet{Weight: set.Weight, Reps: set.TargetReps, Completed: true})
		}
		if s.Supplemental != nil {
			for _, set := range s.Supplemental.Sets {
				lift.Sets = append(lift.Sets, LoggedSet{Weight: set.Weight, Reps: set.TargetReps, Completed: true})
			}
		}
		entry.MainLift = lift
	}
	if s.Circuit != nil {
		circuit := &LoggedCircuit{Rounds: s.Circuit.Rounds, Sets: nil}
		for round := 1; round <= s.Circuit.Rounds; round++ {
			for _, c := range s.Circuit.Exercises {
				circuit.Sets = append(circuit.Sets, LoggedCircuitSet{
					ExerciseID: c.ExerciseID,
					Round:      round,
					Reps:       c.TargetReps,
					Weight:     c.Weight,
				})
			}
		}
		entry.Circuit = circuit
	}
	return entry
}

// Validate returns a [*LogValidationError] for the first invalid field.
func (e WorkoutLogEntry) Validate() error {
	invalid := func(field, msg string) error { return &LogValidationError{Field: field, Message: msg} }
	switch {
	case e.WorkoutDate.IsZero():
		return invalid("workoutDate", "workoutDate must be a yyyy-MM-dd date")
	case e.SessionID == "":
		return invalid("sessionId", "sessionId is required")
	case e.ProgramWeek < 0:
		return invalid("programWeek", "programWeek must not be negative")
	case e.DurationMinutes < 0:
		return invalid("durationMinutes", "durationMinutes must not be negative")
	}
	if e.MainLift != nil {
		if e.MainLift.LiftID == "" {
			return invalid("mainLift.liftId", "mainLift.liftId is required")
		}
		for _, s := range e.MainLift.Sets {
			if s.Weight < 0 || s.Reps < 0 {
				return invalid("mainLift.sets", "mainLift.sets must have non-negative weight and reps")
			}
		}
	}
	if e.Circuit != nil {
		if e.Circuit.Rounds < 0 {
			return invalid("circuit.rounds", "circuit.rounds must not be negative")
		}
		for _, s := range e.Circuit.Sets {
			if s.Weight < 0 || s.Reps < 0 {
				return invalid("circuit.sets", "circuit.sets must have non-negative weight and reps")
			}
		}
	}
	return nil
}
