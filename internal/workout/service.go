// Package workout is the service layer between the HTTP handlers and the program engine. It persists profiles,
// strength data, frozen programs, schedule swaps and workout logs per authenticated user.
package workout

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/styrkr/styrkr/internal/calendar"
	"github.com/styrkr/styrkr/internal/content"
	"github.com/styrkr/styrkr/internal/contexthelpers"
	"github.com/styrkr/styrkr/internal/errors"
	"github.com/styrkr/styrkr/internal/plan"
	"github.com/styrkr/styrkr/internal/profile"
	"github.com/styrkr/styrkr/internal/program"
	"github.com/styrkr/styrkr/internal/schedule"
	"github.com/styrkr/styrkr/internal/sqlite"
	"github.com/styrkr/styrkr/internal/strength"
)

// MaxCalendarDays bounds a single calendar query.
const MaxCalendarDays = 366

// Service handles the business logic for programs and schedules.
type Service struct {
	repo      *repository
	db        *sqlite.Database
	content   *content.Store
	weekStart time.Weekday
	logger    *slog.Logger
	now       func() time.Time
	newRand   func() *rand.Rand
	// generating collapses concurrent first reads of one user's program into a single generation.
	generating singleflight.Group
}

// Option customizes a [Service].
type Option func(*Service)

// WithClock replaces time.Now. Tests use it to pin "today".
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithRand replaces the random source used for exercise selection.
func WithRand(newRand func() *rand.Rand) Option {
	return func(s *Service) { s.newRand = newRand }
}

// NewService creates a new workout service. weekStart decides which days count as one calendar week for swaps.
func NewService(db *sqlite.Database, store *content.Store, weekStart time.Weekday, logger *slog.Logger,
	opts ...Option) *Service {
	factory := newRepositoryFactory(db, logger)
	s := &Service{
		repo:       factory.newRepository(),
		db:         db,
		content:    store,
		weekStart:  weekStart,
		logger:     logger,
		now:        time.Now,
		newRand:    func() *rand.Rand { return nil },
		generating: singleflight.Group{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) today() calendar.Date {
	return calendar.DateOf(s.now())
}

// CreateUser registers a new user and returns it with its API key. The key is only stored hashed.
func (s *Service) CreateUser(ctx context.Context) (User, string, error) {
	apiKey := uuid.NewString()
	user, err := s.repo.users.Create(ctx, uuid.NewString(), apiKey)
	if err != nil {
		return User{}, "", errors.Wrap(err, "create user")
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, "user created", slog.String("public_id", user.PublicID))
	return user, apiKey, nil
}

// Authenticate resolves apiKey to a user or returns [ErrNotFound].
func (s *Service) Authenticate(ctx context.Context, apiKey string) (User, error) {
	if apiKey == "" {
		return User{}, ErrNotFound
	}
	user, err := s.repo.users.ByAPIKey(ctx, apiKey)
	if err != nil {
		return User{}, fmt.Errorf("authenticate: %w", err)
	}
	return user, nil
}

// UserExists reports whether the user id stored in a browser session still exists.
func (s *Service) UserExists(ctx context.Context, userID int) (bool, error) {
	exists, err := s.repo.users.Exists(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("user exists: %w", err)
	}
	return exists, nil
}

// GetProfile returns the profile or [ErrNotFound] before onboarding.
func (s *Service) GetProfile(ctx context.Context) (profile.Profile, error) {
	p, err := s.repo.profiles.Get(ctx)
	if err != nil {
		return profile.Profile{}, fmt.Errorf("get profile: %w", err)
	}
	return p, nil
}

// profileOrDefault returns the stored profile or [profile.Default].
func (s *Service) profileOrDefault(ctx context.Context) (profile.Profile, error) {
	p, err := s.repo.profiles.Get(ctx)
	if errors.Is(err, ErrNotFound) {
		return profile.Default(), nil
	}
	if err != nil {
		return profile.Profile{}, fmt.Errorf("get profile: %w", err)
	}
	return p, nil
}

// SaveProfile validates and stores p. When the start day, units or weekly layout change, the stored program and
// its swaps are dropped and the next read starts a new cycle. Otherwise the program is rebuilt on its start date
// and keeps every pick that is still eligible under p.
func (s *Service) SaveProfile(ctx context.Context, p profile.Profile) error {
	if err := p.Validate(); err != nil {
		return err
	}
	previous, err := s.profileOrDefault(ctx)
	if err != nil {
		return err
	}
	prog, err := s.storedProgram(ctx)
	if err != nil {
		return err
	}
	var rebuilt *program.Program
	if prog != nil && !layoutChanged(previous, p) {
		data, strengthErr := s.GetStrength(ctx)
		if strengthErr != nil {
			return strengthErr
		}
		rebuilt = s.rebuild(prog, p, data.TrainingMaxes)
	}

	err = s.db.WithTx(ctx, func(tx *sql.Tx) error {
		if err := s.repo.profiles.Set(ctx, tx, p, s.now()); err != nil {
			return err
		}
		if rebuilt != nil {
			return s.repo.programs.Set(ctx, tx, rebuilt)
		}
		return s.invalidateProgram(ctx, tx)
	})
	if err != nil {
		return errors.Wrap(err, "save profile")
	}
	return nil
}

// layoutChanged reports whether moving from a to b changes session dates, units or the non-lifting days.
func layoutChanged(a, b profile.Profile) bool {
	return a.PreferredStartDay != b.PreferredStartDay ||
		a.PreferredUnits != b.PreferredUnits ||
		a.TrainingDaysPerWeek != b.TrainingDaysPerWeek ||
		a.NonLiftingDaysEnabled != b.NonLiftingDaysEnabled ||
		a.NonLiftingDayMode != b.NonLiftingDayMode
}

// GetStrength returns the strength data or [ErrNotFound] before onboarding.
func (s *Service) GetStrength(ctx context.Context) (strength.Data, error) {
	data, err := s.repo.strength.Get(ctx)
	if err != nil {
		return strength.Data{}, fmt.Errorf("get strength: %w", err)
	}
	return data, nil
}

// SaveStrength recomputes the training maxes from orm and policy and appends a history entry. A stored program is
// rebuilt with the new maxes on its original start date, keeping its exercise picks and the schedule swaps.
func (s *Service) SaveStrength(ctx context.Context, orm strength.Maxes, policy strength.TMPolicy) (strength.Data,
	error) {
	previous, err := s.repo.strength.Get(ctx)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return strength.Data{}, fmt.Errorf("get strength: %w", err)
	}
	data, err := strength.NewData(orm, policy, previous.History, s.now())
	if err != nil {
		return strength.Data{}, err
	}
	prog, err := s.storedProgram(ctx)
	if err != nil {
		return strength.Data{}, err
	}
	var rebuilt *program.Program
	if prog != nil {
		p, profileErr := s.profileOrDefault(ctx)
		if profileErr != nil {
			return strength.Data{}, profileErr
		}
		rebuilt = s.rebuild(prog, p, data.TrainingMaxes)
	}

	err = s.db.WithTx(ctx, func(tx *sql.Tx) error {
		if err = s.repo.strength.Set(ctx, tx, data); err != nil {
			return err
		}
		if rebuilt != nil {
			return s.repo.programs.Set(ctx, tx, rebuilt)
		}
		return nil
	})
	if err != nil {
		return strength.Data{}, errors.Wrap(err, "save strength")
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, "strength updated",
		slog.Bool("program_rebuilt", rebuilt != nil),
		slog.Float64("squat_tm", data.TrainingMaxes.Squat),
		slog.Float64("bench_tm", data.TrainingMaxes.Bench),
		slog.Float64("deadlift_tm", data.TrainingMaxes.Deadlift),
		slog.Float64("ohp_tm", data.TrainingMaxes.OHP))
	return data, nil
}

// storedProgram returns the stored program or nil when none exists.
func (s *Service) storedProgram(ctx context.Context) (*program.Program, error) {
	prog, err := s.repo.programs.Get(ctx)
	if errors.Is(err, ErrNotFound) {
		return nil, nil //nolint:nilnil // no program yet.
	}
	if err != nil {
		return nil, fmt.Errorf("get program: %w", err)
	}
	return prog, nil
}

// rebuild regenerates prev for p and tms on prev's start date. Frozen picks still eligible under p are kept and
// only the remaining slots are drawn again.
func (s *Service) rebuild(prev *program.Program, p profile.Profile, tms strength.Maxes) *program.Program {
	snapshot := s.content.Snapshot()
	prog := program.Generate(s.programInput(snapshot.Template, p, tms, prev.StartDate))
	selector := program.NewSelector(snapshot.Library, p, s.newRand())
	prog.CarryPicks(prev, selector.Eligible)
	selector.Freeze(prog)
	prog.GeneratedAt = prev.GeneratedAt
	return prog
}

func (s *Service) programInput(tmpl *plan.Template, p profile.Profile, tms strength.Maxes,
	start calendar.Date) program.Input {
	return program.Input{
		Template:      tmpl,
		TrainingMaxes: tms,
		StartDay:      p.PreferredStartDay.Time(),
		Units:         p.PreferredUnits,
		Today:         s.today(),
		Start:         start,
		DayOffsets:    schedule.NewLayout(p).MainOffsets,
	}
}

func (s *Service) invalidateProgram(ctx context.Context, tx *sql.Tx) error {
	if err := s.repo.programs.Delete(ctx, tx); err != nil {
		return err
	}
	return s.repo.swaps.Replace(ctx, tx, nil)
}

// Program returns the stored program, generating and freezing one on first access. Without strength data it
// returns [ErrNotFound], which clients treat as "onboarding required".
func (s *Service) Program(ctx context.Context) (*program.Program, error) {
	prog, err := s.repo.programs.Get(ctx)
	if err == nil {
		return prog, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("get program: %w", err)
	}
	key := strconv.Itoa(contexthelpers.AuthenticatedUserID(ctx))
	v, err, _ := s.generating.Do(key, func() (any, error) {
		// Another caller may have stored the program while this one waited.
		if stored, getErr := s.repo.programs.Get(ctx); getErr == nil {
			return stored, nil
		}
		return s.generate(ctx)
	})
	if err != nil {
		return nil, err
	}
	prog, _ = v.(*program.Program)
	return prog, nil
}

// Regenerate starts a new cycle from the next preferred start day with fresh exercise picks. Swaps are dropped.
func (s *Service) Regenerate(ctx context.Context) (*program.Program, error) {
	if err := s.db.WithTx(ctx, func(tx *sql.Tx) error { return s.invalidateProgram(ctx, tx) }); err != nil {
		return nil, errors.Wrap(err, "regenerate program")
	}
	return s.generate(ctx)
}

func (s *Service) generate(ctx context.Context) (*program.Program, error) {
	var (
		p    profile.Profile
		data strength.Data
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		p, err = s.profileOrDefault(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		data, err = s.GetStrength(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	snapshot := s.content.Snapshot()
	prog := program.Generate(s.programInput(snapshot.Template, p, data.TrainingMaxes, calendar.Date{}))
	program.NewSelector(snapshot.Library, p, s.newRand()).Freeze(prog)
	prog.GeneratedAt = s.now().UTC()

	if err := s.repo.programs.Set(ctx, s.db.ReadWrite, prog); err != nil {
		return nil, errors.Wrap(err, "store program")
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, "program generated",
		slog.String("start_date", prog.StartDate.String()),
		slog.Int("weeks", len(prog.Weeks)),
		slog.String("template_version", prog.TemplateVersion),
		slog.String("library_version", prog.LibraryVersion))
	return prog, nil
}

// ProgramWeek returns week n of the program or [ErrNotFound].
func (s *Service) ProgramWeek(ctx context.Context, n int) (program.Week, error) {
	prog, err := s.Program(ctx)
	if err != nil {
		return program.Week{}, err
	}
	week, ok := prog.Week(n)
	if !ok {
		return program.Week{}, errors.Wrap(ErrNotFound, "program week", slog.Int("week", n))
	}
	return week, nil
}

// load builds the schedule with the completed workouts between from and to.
func (s *Service) load(ctx context.Context, from, to calendar.Date) (*schedule.Schedule, error) {
	var (
		prog      *program.Program
		p         profile.Profile
		overlay   schedule.Overlay
		completed []calendar.Date
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		prog, err = s.Program(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		p, err = s.profileOrDefault(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		overlay, err = s.repo.swaps.Get(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		completed, err = s.repo.logs.CompletedDates(gctx, from, to)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load schedule: %w", err)
	}
	return schedule.New(prog, schedule.NewLayout(p), s.weekStart, overlay, schedule.NewCompletedSet(completed...)), nil
}

// Calendar resolves every day between from and to inclusive with swaps applied.
func (s *Service) Calendar(ctx context.Context, from, to calendar.Date) ([]schedule.Day, error) {
	if to.Before(from) {
		return nil, errors.Wrap(ErrValidation, "to must not be before from")
	}
	if from.DaysUntil(to) >= MaxCalendarDays {
		return nil, errors.Wrap(ErrValidation, fmt.Sprintf("range must not exceed %d days", MaxCalendarDays))
	}
	sched, err := s.load(ctx, from, to)
	if err != nil {
		return nil, err
	}
	return sched.Days(from, to), nil
}

// WeekView is the calendar week around a date together with the stored swaps.
type WeekView struct {
	WeekStart calendar.Date    `json:"weekStart"`
	Days      []schedule.Day   `json:"days"`
	DaySwaps  schedule.Overlay `json:"daySwaps"`
}

// Schedule returns the current calendar week.
func (s *Service) Schedule(ctx context.Context) (WeekView, error) {
	start := s.today().StartOfWeek(s.weekStart)
	sched, err := s.load(ctx, start, start.AddDays(6)) //nolint:mnd // a week spans seven days
	if err != nil {
		return WeekView{}, err
	}
	return WeekView{WeekStart: start, Days: sched.Week(start), DaySwaps: sched.Overlay()}, nil
}

// SwapResult reports whether a swap was applied and the overlay after it.
type SwapResult struct {
	Applied  bool             `json:"applied"`
	DaySwaps schedule.Overlay `json:"daySwaps"`
}

// Swap exchanges the sessions on from and to. Disallowed swaps are not errors: they leave the overlay unchanged
// and report Applied false.
func (s *Service) Swap(ctx context.Context, from, to calendar.Date) (SwapResult, error) {
	start := from.StartOfWeek(s.weekStart)
	sched, err := s.load(ctx, start, start.AddDays(6)) //nolint:mnd // a week spans seven days
	if err != nil {
		return SwapResult{}, err
	}
	if !sched.Swap(from, to) {
		s.logger.LogAttrs(ctx, slog.LevelDebug, "swap rejected",
			slog.String("from", from.String()), slog.String("to", to.String()))
		return SwapResult{Applied: false, DaySwaps: sched.Overlay()}, nil
	}
	overlay := sched.Overlay()
	err = s.db.WithTx(ctx, func(tx *sql.Tx) error { return s.repo.swaps.Replace(ctx, tx, overlay) })
	if err != nil {
		return SwapResult{}, errors.Wrap(err, "store swap")
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, "sessions swapped",
		slog.String("from", from.String()), slog.String("to", to.String()), slog.Int("swaps", len(overlay)))
	return SwapResult{Applied: true, DaySwaps: overlay}, nil
}

// ResetSchedule drops every swap.
func (s *Service) ResetSchedule(ctx context.Context) error {
	if err := s.db.WithTx(ctx, func(tx *sql.Tx) error { return s.repo.swaps.Replace(ctx, tx, nil) }); err != nil {
		return errors.Wrap(err, "reset schedule")
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, "schedule reset")
	return nil
}

// NonLiftingWorkout synthesizes a fresh workout of type t for date. An empty t uses the type scheduled on date,
// falling back to the profile's non-lifting mode. The program phase on date decides conditioning downgrades.
func (s *Service) NonLiftingWorkout(ctx context.Context, date calendar.Date, t program.WorkoutType) (
	program.NonLiftingWorkout, error) {
	if t != "" && !t.Valid() {
		return program.NonLiftingWorkout{}, errors.Wrap(ErrValidation, "unknown workout type",
			slog.String("type", string(t)))
	}
	p, err := s.profileOrDefault(ctx)
	if err != nil {
		return program.NonLiftingWorkout{}, err
	}
	prog, err := s.repo.programs.Get(ctx)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return program.NonLiftingWorkout{}, fmt.Errorf("get program: %w", err)
	}

	var phase plan.PhaseID
	if prog != nil {
		phase, _ = prog.PhaseOf(date)
	}
	if t == "" {
		t = program.WorkoutTypeFor(p.NonLiftingDayMode)
		if prog != nil {
			overlay, swapErr := s.repo.swaps.Get(ctx)
			if swapErr != nil {
				return program.NonLiftingWorkout{}, fmt.Errorf("get swaps: %w", swapErr)
			}
			ref := schedule.New(prog, schedule.NewLayout(p), s.weekStart, overlay, nil).Lookup(date)
			if ref.Kind == schedule.KindNonLift {
				t = program.WorkoutType(ref.SessionID)
			}
		}
	}

	snapshot := s.content.Snapshot()
	return program.NewSelector(snapshot.Library, p, s.newRand()).NonLifting(t, phase), nil
}

// LogWorkout validates and stores entry with a new id.
func (s *Service) LogWorkout(ctx context.Context, entry program.WorkoutLogEntry) (program.WorkoutLogEntry, error) {
	if err := entry.Validate(); err != nil {
		return program.WorkoutLogEntry{}, err
	}
	entry.ID = uuid.NewString()
	if err := s.repo.logs.Add(ctx, entry); err != nil {
		return program.WorkoutLogEntry{}, errors.Wrap(err, "log workout")
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, "workout logged",
		slog.String("id", entry.ID),
		slog.String("date", entry.WorkoutDate.String()),
		slog.String("session_id", entry.SessionID))
	return entry, nil
}

// Workouts lists the logged workouts between from and to inclusive.
func (s *Service) Workouts(ctx context.Context, from, to calendar.Date) ([]program.WorkoutLogEntry, error) {
	if to.Before(from) {
		return nil, errors.Wrap(ErrValidation, "endDate must not be before startDate")
	}
	entries, err := s.repo.logs.List(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("list workouts: %w", err)
	}
	return entries, nil
}
