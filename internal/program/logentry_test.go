package program_test

import (
	"testing"
	"time"

	"github.com/styrkr/styrkr/internal/calendar"
	"github.com/styrkr/styrkr/internal/errors"
	"github.com/styrkr/styrkr/internal/program"
	"github.com/styrkr/styrkr/internal/strength"
)

func TestNewLogEntry(t *testing.T) {
	prog := generate(t, strength.Maxes{Squat: 300, Bench: 200, Deadlift: 400, OHP: 135})
	program.NewSelector(testLibrary(t), userProfile(nil), seededRand()).Freeze(prog)
	squat := prog.Weeks[0].Sessions[0]

	entry := program.NewLogEntry(squat)
	if err := entry.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if entry.WorkoutDate != squat.Date || entry.ProgramWeek != 1 || entry.SessionID != "SQUAT_DAY" {
		t.Errorf("entry header = %+v", entry)
	}
	// Three main sets plus five FSL sets.
	if got := len(entry.MainLift.Sets); got != 8 {
		t.Errorf("got %d logged main sets, want 8", got)
	}
	if got, want := len(entry.Circuit.Sets), squat.Circuit.Rounds*len(squat.Circuit.Exercises); got != want {
		t.Errorf("got %d circuit sets, want %d", got, want)
	}
}

func TestWorkoutLogEntry_Validate(t *testing.T) {
	valid := func() program.WorkoutLogEntry {
		return program.WorkoutLogEntry{
			ID:          "",
			WorkoutDate: calendar.NewDate(2026, time.March, 9),
			ProgramWeek: 1,
			SessionID:   "SQUAT_DAY",
			MainLift: &program.LoggedLift{LiftID: "squat", Sets: []program.LoggedSet{
				{Weight: 195, Reps: 5, Completed: true},
			}},
			Circuit:         nil,
			Notes:           "",
			DurationMinutes: 45,
		}
	}
	tests := []struct {
		name      string
		mutate    func(*program.WorkoutLogEntry)
		wantField string
	}{
		{name: "valid", mutate: func(*program.WorkoutLogEntry) {}},
		{name: "missing date", mutate: func(e *program.WorkoutLogEntry) { e.WorkoutDate = calendar.Date{} },
			wantField: "workoutDate"},
		{name: "missing session", mutate: func(e *program.WorkoutLogEntry) { e.SessionID = "" },
			wantField: "sessionId"},
		{name: "negative week", mutate: func(e *program.WorkoutLogEntry) { e.ProgramWeek = -1 },
			wantField: "programWeek"},
		{name: "negative weight", mutate: func(e *program.WorkoutLogEntry) { e.MainLift.Sets[0].Weight = -5 },
			wantField: "mainLift.sets"},
		{name: "missing lift", mutate: func(e *program.WorkoutLogEntry) { e.MainLift.LiftID = "" },
			wantField: "mainLift.liftId"},
		{
			name: "negative circuit reps",
			mutate: func(e *program.WorkoutLogEntry) {
				e.Circuit = &program.LoggedCircuit{Rounds: 1, Sets: []program.LoggedCircuitSet{
					{ExerciseID: "dead_bug", Round: 1, Reps: -1, Weight: 0},
				}}
			},
			wantField: "circuit.sets",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := valid()
			tt.mutate(&entry)
			err := entry.Validate()
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
				return
			}
			var vErr *program.LogValidationError
			if !errors.As(err, &vErr) || vErr.Field != tt.wantField {
				t.Fatalf("Validate() error = %v, want field %s", err, tt.wantField)
			}
			if !errors.Is(err, program.ErrInvalidLogEntry) {
				t.Error("error does not match ErrInvalidLogEntry")
			}
		})
	}
}
