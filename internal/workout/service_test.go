package workout_test

import (
	"context"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/styrkr/styrkr/internal/calendar"
	"github.com/styrkr/styrkr/internal/content"
	"github.com/styrkr/styrkr/internal/contexthelpers"
	"github.com/styrkr/styrkr/internal/errors"
	"github.com/styrkr/styrkr/internal/profile"
	"github.com/styrkr/styrkr/internal/program"
	"github.com/styrkr/styrkr/internal/schedule"
	"github.com/styrkr/styrkr/internal/sqlite"
	"github.com/styrkr/styrkr/internal/strength"
	"github.com/styrkr/styrkr/internal/testhelpers"
	"github.com/styrkr/styrkr/internal/workout"
)

// wednesday is "today" in these tests. The default profile starts programs on the following Monday.
//
//nolint:gochecknoglobals // test fixture.
var wednesday = time.Date(2026, time.March, 4, 9, 30, 0, 0, time.UTC)

func date(day int) calendar.Date {
	return calendar.NewDate(2026, time.March, day)
}

var oneRepMaxes = strength.Maxes{Squat: 315, Bench: 225, Deadlift: 405, OHP: 135} //nolint:gochecknoglobals // fixture

// newService returns a service on a fresh in-memory database and a context authenticated as a new user.
func newService(t *testing.T) (*workout.Service, context.Context) {
	t.Helper()
	return newServiceWithClock(t, func() time.Time { return wednesday })
}

func newServiceWithClock(t *testing.T, now func() time.Time) (*workout.Service, context.Context) {
	t.Helper()
	ctx := t.Context()
	logger := testhelpers.NewLogger(testhelpers.NewWriter(t))

	db, err := sqlite.NewDatabase(ctx, ":memory:", logger)
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	store, err := content.NewStore(ctx, logger, "")
	if err != nil {
		t.Fatalf("Failed to load content: %v", err)
	}

	svc := workout.NewService(db, store, time.Monday, logger,
		workout.WithClock(now),
		workout.WithRand(func() *rand.Rand { return rand.New(rand.NewPCG(7, 7)) }), //nolint:gosec // test
	)
	user, _, err := svc.CreateUser(ctx)
	if err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}
	return svc, contexthelpers.WithUserID(ctx, user.ID)
}

func saveStrength(t *testing.T, ctx context.Context, svc *workout.Service) strength.Data {
	t.Helper()
	data, err := svc.SaveStrength(ctx, oneRepMaxes, strength.DefaultPolicy("lb"))
	if err != nil {
		t.Fatalf("SaveStrength() error = %v", err)
	}
	return data
}

func circuitPicks(prog *program.Program) []string {
	var ids []string
	for _, w := range prog.Weeks {
		for _, s := range w.Sessions {
			if s.Circuit == nil {
				continue
			}
			for _, c := range s.Circuit.Exercises {
				ids = append(ids, s.Date.String()+"/"+c.SlotID+"/"+c.ExerciseID)
			}
		}
	}
	return ids
}

func TestService_Authenticate(t *testing.T) {
	svc, ctx := newService(t)

	user, apiKey, err := svc.CreateUser(ctx)
	if err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}
	got, err := svc.Authenticate(ctx, apiKey)
	if err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
	if got.ID != user.ID || got.PublicID != user.PublicID {
		t.Errorf("Authenticate() = %+v, want %+v", got, user)
	}

	for _, key := range []string{"", "not-a-key"} {
		if _, err = svc.Authenticate(ctx, key); !errors.Is(err, workout.ErrNotFound) {
			t.Errorf("Authenticate(%q) error = %v, want ErrNotFound", key, err)
		}
	}

	exists, err := svc.UserExists(ctx, user.ID)
	if err != nil || !exists {
		t.Errorf("UserExists() = %v, %v, want true", exists, err)
	}
}

func TestService_Profile(t *testing.T) {
	svc, ctx := newService(t)

	if _, err := svc.GetProfile(ctx); !errors.Is(err, workout.ErrNotFound) {
		t.Fatalf("GetProfile() before onboarding error = %v, want ErrNotFound", err)
	}

	invalid := profile.Default()
	invalid.TrainingDaysPerWeek = 2
	err := svc.SaveProfile(ctx, invalid)
	var validationErr *profile.ValidationError
	if !errors.As(err, &validationErr) || validationErr.Field != "trainingDaysPerWeek" {
		t.Fatalf("SaveProfile() error = %v, want trainingDaysPerWeek validation error", err)
	}

	want := profile.Default()
	want.PreferredUnits = profile.Kilograms
	want.Constraints = []string{"knee_issues"}
	if err = svc.SaveProfile(ctx, want); err != nil {
		t.Fatalf("SaveProfile() error = %v", err)
	}
	got, err := svc.GetProfile(ctx)
	if err != nil {
		t.Fatalf("GetProfile() error = %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("GetProfile() mismatch (-want +got):\n%s", diff)
	}
}

func TestService_SaveStrength(t *testing.T) {
	svc, ctx := newService(t)

	if _, err := svc.GetStrength(ctx); !errors.Is(err, workout.ErrNotFound) {
		t.Fatalf("GetStrength() before onboarding error = %v, want ErrNotFound", err)
	}

	_, err := svc.SaveStrength(ctx, strength.Maxes{Squat: 315, Bench: 0, Deadlift: 405, OHP: 135},
		strength.DefaultPolicy("lb"))
	if !errors.Is(err, strength.ErrValidation) {
		t.Fatalf("SaveStrength() with zero bench error = %v, want validation error", err)
	}

	saveStrength(t, ctx, svc)
	updated := oneRepMaxes
	updated.Squat = 335
	if _, err = svc.SaveStrength(ctx, updated, strength.DefaultPolicy("lb")); err != nil {
		t.Fatalf("SaveStrength() error = %v", err)
	}

	got, err := svc.GetStrength(ctx)
	if err != nil {
		t.Fatalf("GetStrength() error = %v", err)
	}
	wantTMs := strength.Maxes{Squat: 280, Bench: 190, Deadlift: 340, OHP: 110}
	if diff := cmp.Diff(wantTMs, got.TrainingMaxes); diff != "" {
		t.Errorf("TrainingMaxes mismatch (-want +got):\n%s", diff)
	}
	if len(got.History) != 2 {
		t.Fatalf("len(History) = %d, want 2", len(got.History))
	}
	if got.History[0].TrainingMaxes.Squat != 265 || got.History[1].TrainingMaxes.Squat != 280 {
		t.Errorf("History squat TMs = %v, %v, want 265, 280",
			got.History[0].TrainingMaxes.Squat, got.History[1].TrainingMaxes.Squat)
	}
}

func TestService_Program(t *testing.T) {
	svc, ctx := newService(t)

	if _, err := svc.Program(ctx); !errors.Is(err, workout.ErrNotFound) {
		t.Fatalf("Program() without strength error = %v, want ErrNotFound", err)
	}

	saveStrength(t, ctx, svc)
	generated, err := svc.Program(ctx)
	if err != nil {
		t.Fatalf("Program() error = %v", err)
	}
	if !generated.StartDate.Equal(date(9)) {
		t.Errorf("StartDate = %s, want 2026-03-09", generated.StartDate)
	}
	if !generated.Frozen() {
		t.Error("generated program is not frozen")
	}
	if generated.TrainingMaxes.Squat != 265 {
		t.Errorf("TrainingMaxes.Squat = %v, want 265", generated.TrainingMaxes.Squat)
	}

	t.Run("reads return the frozen picks", func(t *testing.T) {
		stored, err := svc.Program(ctx)
		if err != nil {
			t.Fatalf("Program() error = %v", err)
		}
		if diff := cmp.Diff(circuitPicks(generated), circuitPicks(stored)); diff != "" {
			t.Errorf("picks changed between reads (-generated +stored):\n%s", diff)
		}
	})

	t.Run("week lookup", func(t *testing.T) {
		week, err := svc.ProgramWeek(ctx, 2)
		if err != nil {
			t.Fatalf("ProgramWeek(2) error = %v", err)
		}
		if !week.StartDate.Equal(date(16)) {
			t.Errorf("week 2 StartDate = %s, want 2026-03-16", week.StartDate)
		}
		if _, err = svc.ProgramWeek(ctx, 99); !errors.Is(err, workout.ErrNotFound) {
			t.Errorf("ProgramWeek(99) error = %v, want ErrNotFound", err)
		}
	})

	t.Run("strength update regenerates with new maxes", func(t *testing.T) {
		updated := oneRepMaxes
		updated.Bench = 245
		if _, err = svc.SaveStrength(ctx, updated, strength.DefaultPolicy("lb")); err != nil {
			t.Fatalf("SaveStrength() error = %v", err)
		}
		prog, err := svc.Program(ctx)
		if err != nil {
			t.Fatalf("Program() error = %v", err)
		}
		if prog.TrainingMaxes.Bench != 205 {
			t.Errorf("TrainingMaxes.Bench = %v, want 205", prog.TrainingMaxes.Bench)
		}
	})
}

func TestService_SaveStrength_KeepsFrozenProgram(t *testing.T) {
	now := wednesday
	svc, ctx := newServiceWithClock(t, func() time.Time { return now })
	saveStrength(t, ctx, svc)
	before, err := svc.Program(ctx)
	if err != nil {
		t.Fatalf("Program() error = %v", err)
	}
	if res, err := svc.Swap(ctx, date(9), date(11)); err != nil || !res.Applied {
		t.Fatalf("Swap() = %+v, %v, want applied", res, err)
	}

	// Thirteen days later the user is in week 2 and retests the squat.
	now = wednesday.AddDate(0, 0, 13)
	updated := oneRepMaxes
	updated.Squat += 10
	if _, err = svc.SaveStrength(ctx, updated, strength.DefaultPolicy("lb")); err != nil {
		t.Fatalf("SaveStrength() error = %v", err)
	}
	after, err := svc.Program(ctx)
	if err != nil {
		t.Fatalf("Program() error = %v", err)
	}

	if !after.StartDate.Equal(before.StartDate) {
		t.Errorf("StartDate = %s, want %s", after.StartDate, before.StartDate)
	}
	if diff := cmp.Diff(circuitPicks(before), circuitPicks(after)); diff != "" {
		t.Errorf("picks changed (-before +after):\n%s", diff)
	}
	if after.TrainingMaxes.Squat != 275 {
		t.Errorf("TrainingMaxes.Squat = %v, want 275", after.TrainingMaxes.Squat)
	}
	squat, ok := after.SessionOn(date(16))
	if !ok || len(squat.MainLift.Sets) == 0 {
		t.Fatalf("no squat session in week 2: %+v", squat)
	}
	set := squat.MainLift.Sets[0]
	if want := program.RoundToNearest(275*set.PctTM, 5); set.Weight != want {
		t.Errorf("week 2 squat weight = %v, want %v", set.Weight, want)
	}

	days, err := svc.Calendar(ctx, date(9), date(11))
	if err != nil {
		t.Fatalf("Calendar() error = %v", err)
	}
	if days[2].MovedFrom == nil || !days[2].MovedFrom.Equal(date(9)) {
		t.Errorf("Wednesday MovedFrom = %v, want the swap to survive", days[2].MovedFrom)
	}
}

func TestService_SaveProfile_Program(t *testing.T) {
	svc, ctx := newService(t)
	saveStrength(t, ctx, svc)
	before, err := svc.Program(ctx)
	if err != nil {
		t.Fatalf("Program() error = %v", err)
	}
	if _, err = svc.Swap(ctx, date(9), date(11)); err != nil {
		t.Fatalf("Swap() error = %v", err)
	}

	t.Run("conditioning change keeps program and swaps", func(t *testing.T) {
		p := profile.Default()
		p.ConditioningLevel = profile.LevelHigh
		if err = svc.SaveProfile(ctx, p); err != nil {
			t.Fatalf("SaveProfile() error = %v", err)
		}
		after, err := svc.Program(ctx)
		if err != nil {
			t.Fatalf("Program() error = %v", err)
		}
		if diff := cmp.Diff(circuitPicks(before), circuitPicks(after)); diff != "" {
			t.Errorf("picks changed (-before +after):\n%s", diff)
		}
		view, err := svc.Schedule(ctx)
		if err != nil {
			t.Fatalf("Schedule() error = %v", err)
		}
		if len(view.DaySwaps) != 2 {
			t.Errorf("DaySwaps = %v, want the swap to survive", view.DaySwaps)
		}
	})

	t.Run("start day change starts a new cycle", func(t *testing.T) {
		p := profile.Default()
		p.PreferredStartDay = profile.Tue
		if err = svc.SaveProfile(ctx, p); err != nil {
			t.Fatalf("SaveProfile() error = %v", err)
		}
		after, err := svc.Program(ctx)
		if err != nil {
			t.Fatalf("Program() error = %v", err)
		}
		if !after.StartDate.Equal(date(10)) {
			t.Errorf("StartDate = %s, want 2026-03-10", after.StartDate)
		}
		view, err := svc.Schedule(ctx)
		if err != nil {
			t.Fatalf("Schedule() error = %v", err)
		}
		if len(view.DaySwaps) != 0 {
			t.Errorf("DaySwaps = %v, want none", view.DaySwaps)
		}
	})
}

func TestService_Swap(t *testing.T) {
	svc, ctx := newService(t)
	saveStrength(t, ctx, svc)

	monday, tuesday, wed := date(9), date(10), date(11)

	res, err := svc.Swap(ctx, monday, wed)
	if err != nil {
		t.Fatalf("Swap() error = %v", err)
	}
	if !res.Applied || len(res.DaySwaps) != 2 {
		t.Fatalf("Swap() = %+v, want applied with two overlay entries", res)
	}

	days, err := svc.Calendar(ctx, monday, wed)
	if err != nil {
		t.Fatalf("Calendar() error = %v", err)
	}
	if days[0].Kind != schedule.KindRest {
		t.Errorf("Monday kind = %s, want rest", days[0].Kind)
	}
	if days[2].Session == nil || days[2].Session.SessionID != "SQUAT_DAY" {
		t.Fatalf("Wednesday session = %+v, want SQUAT_DAY", days[2].Session)
	}
	if days[2].MovedFrom == nil || !days[2].MovedFrom.Equal(monday) {
		t.Errorf("Wednesday MovedFrom = %v, want %s", days[2].MovedFrom, monday)
	}

	t.Run("rejections leave the overlay unchanged", func(t *testing.T) {
		tests := []struct {
			name     string
			from, to calendar.Date
		}{
			{name: "same day", from: tuesday, to: tuesday},
			{name: "different week", from: tuesday, to: date(17)},
			{name: "nothing to move", from: date(14), to: date(15)},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				got, err := svc.Swap(ctx, tt.from, tt.to)
				if err != nil {
					t.Fatalf("Swap() error = %v", err)
				}
				if got.Applied || len(got.DaySwaps) != 2 {
					t.Errorf("Swap() = %+v, want rejected with the previous overlay", got)
				}
			})
		}
	})

	t.Run("completed days cannot move", func(t *testing.T) {
		prog, err := svc.Program(ctx)
		if err != nil {
			t.Fatalf("Program() error = %v", err)
		}
		session, ok := prog.SessionOn(tuesday)
		if !ok {
			t.Fatal("no session on Tuesday")
		}
		if _, err = svc.LogWorkout(ctx, program.NewLogEntry(session)); err != nil {
			t.Fatalf("LogWorkout() error = %v", err)
		}
		got, err := svc.Swap(ctx, tuesday, date(12))
		if err != nil {
			t.Fatalf("Swap() error = %v", err)
		}
		if got.Applied {
			t.Error("Swap() from a completed day was applied")
		}
	})

	t.Run("swapping back restores the default", func(t *testing.T) {
		got, err := svc.Swap(ctx, wed, monday)
		if err != nil {
			t.Fatalf("Swap() error = %v", err)
		}
		if !got.Applied || len(got.DaySwaps) != 0 {
			t.Errorf("Swap() = %+v, want applied with an empty overlay", got)
		}
	})

	t.Run("reset", func(t *testing.T) {
		if _, err = svc.Swap(ctx, date(12), date(11)); err != nil {
			t.Fatalf("Swap() error = %v", err)
		}
		if err = svc.ResetSchedule(ctx); err != nil {
			t.Fatalf("ResetSchedule() error = %v", err)
		}
		days, err := svc.Calendar(ctx, date(11), date(12))
		if err != nil {
			t.Fatalf("Calendar() error = %v", err)
		}
		if days[0].Kind != schedule.KindRest || days[1].Kind != schedule.KindLift {
			t.Errorf("kinds after reset = %s, %s, want rest, lift", days[0].Kind, days[1].Kind)
		}
	})
}

func TestService_Calendar(t *testing.T) {
	svc, ctx := newService(t)
	saveStrength(t, ctx, svc)

	if _, err := svc.Calendar(ctx, date(10), date(9)); !errors.Is(err, workout.ErrValidation) {
		t.Errorf("Calendar() inverted range error = %v, want ErrValidation", err)
	}
	if _, err := svc.Calendar(ctx, date(1), date(1).AddDays(workout.MaxCalendarDays)); !errors.Is(err,
		workout.ErrValidation) {
		t.Errorf("Calendar() oversized range error = %v, want ErrValidation", err)
	}

	days, err := svc.Calendar(ctx, date(8), date(15))
	if err != nil {
		t.Fatalf("Calendar() error = %v", err)
	}
	var kinds []schedule.Kind
	for _, d := range days {
		kinds = append(kinds, d.Kind)
	}
	want := []schedule.Kind{
		schedule.KindRest, // Sunday before the program starts.
		schedule.KindLift, schedule.KindLift, schedule.KindRest, schedule.KindLift, schedule.KindLift,
		schedule.KindRest, schedule.KindRest,
	}
	if diff := cmp.Diff(want, kinds); diff != "" {
		t.Errorf("Calendar() kinds mismatch (-want +got):\n%s", diff)
	}
	if days[1].Week != 1 || days[0].Week != 0 {
		t.Errorf("weeks = %d, %d, want 0, 1", days[0].Week, days[1].Week)
	}
}

func TestService_Schedule(t *testing.T) {
	svc, ctx := newService(t)
	saveStrength(t, ctx, svc)

	view, err := svc.Schedule(ctx)
	if err != nil {
		t.Fatalf("Schedule() error = %v", err)
	}
	if !view.WeekStart.Equal(date(2)) {
		t.Errorf("WeekStart = %s, want 2026-03-02", view.WeekStart)
	}
	if len(view.Days) != 7 {
		t.Errorf("len(Days) = %d, want 7", len(view.Days))
	}
}

func TestService_NonLiftingWorkout(t *testing.T) {
	svc, ctx := newService(t)
	saveStrength(t, ctx, svc)

	p := profile.Default()
	p.TrainingDaysPerWeek = 5
	p.NonLiftingDaysEnabled = true
	p.NonLiftingDayMode = profile.ModeMobility
	if err := svc.SaveProfile(ctx, p); err != nil {
		t.Fatalf("SaveProfile() error = %v", err)
	}
	days, err := svc.Calendar(ctx, date(11), date(11))
	if err != nil {
		t.Fatalf("Calendar() error = %v", err)
	}
	if days[0].Kind != schedule.KindNonLift || days[0].NonLifting != program.WorkoutMobility {
		t.Fatalf("Wednesday = %s/%s, want nonlift/mobility", days[0].Kind, days[0].NonLifting)
	}

	tests := []struct {
		name     string
		typ      program.WorkoutType
		wantType program.WorkoutType
	}{
		{name: "scheduled type", typ: "", wantType: program.WorkoutMobility},
		{name: "explicit gpp", typ: program.WorkoutGPP, wantType: program.WorkoutGPP},
		{name: "explicit pilates", typ: program.WorkoutPilates, wantType: program.WorkoutPilates},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.NonLiftingWorkout(ctx, date(11), tt.typ)
			if err != nil {
				t.Fatalf("NonLiftingWorkout() error = %v", err)
			}
			if got.Type != tt.wantType {
				t.Errorf("Type = %s, want %s", got.Type, tt.wantType)
			}
		})
	}

	if _, err = svc.NonLiftingWorkout(ctx, date(11), "yoga"); !errors.Is(err, workout.ErrValidation) {
		t.Errorf("NonLiftingWorkout(yoga) error = %v, want ErrValidation", err)
	}
}

func TestService_Workouts(t *testing.T) {
	svc, ctx := newService(t)
	saveStrength(t, ctx, svc)

	invalid := program.WorkoutLogEntry{WorkoutDate: date(10)}
	_, err := svc.LogWorkout(ctx, invalid)
	if !errors.Is(err, program.ErrInvalidLogEntry) {
		t.Fatalf("LogWorkout() without session error = %v, want ErrInvalidLogEntry", err)
	}

	prog, err := svc.Program(ctx)
	if err != nil {
		t.Fatalf("Program() error = %v", err)
	}
	var logged []string
	for _, d := range []calendar.Date{date(9), date(13), date(16)} {
		session, ok := prog.SessionOn(d)
		if !ok {
			t.Fatalf("no session on %s", d)
		}
		entry, err := svc.LogWorkout(ctx, program.NewLogEntry(session))
		if err != nil {
			t.Fatalf("LogWorkout() error = %v", err)
		}
		if entry.ID == "" {
			t.Error("LogWorkout() did not assign an id")
		}
		logged = append(logged, entry.ID)
	}

	got, err := svc.Workouts(ctx, date(9), date(15))
	if err != nil {
		t.Fatalf("Workouts() error = %v", err)
	}
	var ids []string
	for _, e := range got {
		ids = append(ids, e.ID)
	}
	if diff := cmp.Diff(logged[:2], ids); diff != "" {
		t.Errorf("Workouts() ids mismatch (-want +got):\n%s", diff)
	}

	if _, err = svc.Workouts(ctx, date(15), date(9)); !errors.Is(err, workout.ErrValidation) {
		t.Errorf("Workouts() inverted range error = %v, want ErrValidation", err)
	}

	days, err := svc.Calendar(ctx, date(9), date(9))
	if err != nil {
		t.Fatalf("Calendar() error = %v", err)
	}
	if !days[0].Completed || days[0].IsSwappable {
		t.Errorf("logged day = completed %v swappable %v, want true, false", days[0].Completed, days[0].IsSwappable)
	}
}
