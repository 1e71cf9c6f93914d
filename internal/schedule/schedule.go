// Package schedule lays a generated program onto the calendar and applies the user's day swaps on top of it.
//
// Lookups consult the overlay first and fall back to the program's own layout. Invalid swaps are ignored rather
// than reported so that a rejected drag and drop simply snaps back.
package schedule

import (
	"maps"
	"slices"
	"time"

	"github.com/styrkr/styrkr/internal/calendar"
	"github.com/styrkr/styrkr/internal/plan"
	"github.com/styrkr/styrkr/internal/program"
)

// Kind tells what occupies a day.
type Kind string

const (
	KindLift    Kind = "lift"
	KindNonLift Kind = "nonlift"
	KindRest    Kind = "rest"
)

// SessionRef identifies a day's session by the date it was originally scheduled on.
type SessionRef struct {
	Kind       Kind          `json:"kind"`
	SessionID  string        `json:"sessionId,omitempty"`
	SourceDate calendar.Date `json:"sourceDate"`
}

// HasSession reports whether the reference points at something to do.
func (r SessionRef) HasSession() bool {
	return r.Kind == KindLift || r.Kind == KindNonLift
}

// Overlay maps dates to the session moved onto them. Absent dates keep their default session.
type Overlay map[calendar.Date]SessionRef

// CompletedSet holds the dates with a logged workout.
type CompletedSet map[calendar.Date]struct{}

func NewCompletedSet(dates ...calendar.Date) CompletedSet {
	set := make(CompletedSet, len(dates))
	for _, d := range dates {
		set[d] = struct{}{}
	}
	return set
}

func (c CompletedSet) Has(d calendar.Date) bool {
	_, ok := c[d]
	return ok
}

// Schedule is a program laid onto the calendar with an overlay of swaps. It is not safe for concurrent use.
type Schedule struct {
	program   *program.Program
	layout    Layout
	weekStart time.Weekday
	overlay   Overlay
	completed CompletedSet
}

// New creates a schedule. The overlay is copied. weekStart defines which days count as the same calendar week.
func New(prog *program.Program, layout Layout, weekStart time.Weekday, overlay Overlay,
	completed CompletedSet) *Schedule {
	if completed == nil {
		completed = CompletedSet{}
	}
	s := &Schedule{
		program:   prog,
		layout:    layout,
		weekStart: weekStart,
		overlay:   make(Overlay, len(overlay)),
		completed: completed,
	}
	maps.Copy(s.overlay, overlay)
	return s
}

// Overlay returns a copy of the current swaps.
func (s *Schedule) Overlay() Overlay {
	return maps.Clone(s.overlay)
}

// Default returns what the program itself schedules on d.
func (s *Schedule) Default(d calendar.Date) SessionRef {
	rest := SessionRef{Kind: KindRest, SessionID: "", SourceDate: d}
	if s.program == nil {
		return rest
	}
	if session, ok := s.program.SessionOn(d); ok {
		return SessionRef{Kind: KindLift, SessionID: session.SessionID, SourceDate: d}
	}
	if s.program.WeekOf(d) == 0 {
		return rest
	}
	offset := s.program.StartDate.DaysUntil(d) % 7 //nolint:mnd // days per week
	if slices.Contains(s.layout.NonLiftOffsets, offset) {
		return SessionRef{Kind: KindNonLift, SessionID: string(s.layout.NonLiftType), SourceDate: d}
	}
	return rest
}

// Lookup returns the session on d with swaps applied.
func (s *Schedule) Lookup(d calendar.Date) SessionRef {
	if ref, ok := s.overlay[d]; ok {
		return ref
	}
	return s.Default(d)
}

// CanSwap reports whether the sessions on a and b may be exchanged: both dates lie in the same calendar week,
// neither has a completed workout and a has a session to move.
func (s *Schedule) CanSwap(a, b calendar.Date) bool {
	switch {
	case a == b:
		return false
	case !a.SameWeek(b, s.weekStart):
		return false
	case s.completed.Has(a), s.completed.Has(b):
		return false
	default:
		return s.Lookup(a).HasSession()
	}
}

// Swap exchanges the sessions on a and b and reports whether it did. Disallowed swaps leave the overlay unchanged.
// Entries that end up equal to the default are dropped, so swapping the same pair twice restores both days.
// Swaps exchange the sessions currently shown on a and b, so a chain of swaps permutes the week's sessions
// without duplicating or losing any.
func (s *Schedule) Swap(a, b calendar.Date) bool {
	if !s.CanSwap(a, b) {
		return false
	}
	atA, atB := s.Lookup(a), s.Lookup(b)
	s.set(a, atB)
	s.set(b, atA)
	return true
}

func (s *Schedule) set(d calendar.Date, ref SessionRef) {
	if ref == s.Default(d) {
		delete(s.overlay, d)
		return
	}
	s.overlay[d] = ref
}

// Reset drops every swap.
func (s *Schedule) Reset() {
	clear(s.overlay)
}

// Day is a resolved calendar day.
type Day struct {
	Date        calendar.Date       `json:"date"`
	Kind        Kind                `json:"kind"`
	Week        int                 `json:"week,omitempty"`
	Phase       plan.PhaseID        `json:"phase,omitempty"`
	Session     *program.Session    `json:"session,omitempty"`
	NonLifting  program.WorkoutType `json:"nonLiftingType,omitempty"`
	MovedFrom   *calendar.Date      `json:"movedFrom,omitempty"`
	Completed   bool                `json:"completed"`
	IsSwappable bool                `json:"isSwappable"`
}

// Day resolves d. A moved lift session keeps its prescription but carries the date it is now on.
func (s *Schedule) Day(d calendar.Date) Day {
	ref := s.Lookup(d)
	day := Day{
		Date:        d,
		Kind:        ref.Kind,
		Week:        0,
		Phase:       "",
		Session:     nil,
		NonLifting:  "",
		MovedFrom:   nil,
		Completed:   s.completed.Has(d),
		IsSwappable: ref.HasSession() && !s.completed.Has(d),
	}
	if s.program != nil {
		day.Week = s.program.WeekOf(d)
		day.Phase, _ = s.program.PhaseOf(d)
	}
	if ref.SourceDate != d {
		from := ref.SourceDate
		day.MovedFrom = &from
	}
	switch ref.Kind {
	case KindLift:
		day.Session = s.session(ref.SourceDate, d)
		if day.Session == nil {
			day.Kind = KindRest
		}
	case KindNonLift:
		day.NonLifting = program.WorkoutType(ref.SessionID)
	case KindRest:
	}
	return day
}

// session returns the program session originally scheduled on source, moved to d.
func (s *Schedule) session(source, d calendar.Date) *program.Session {
	if s.program == nil {
		return nil
	}
	session, ok := s.program.SessionOn(source)
	if !ok {
		return nil
	}
	session.Date = d
	return &session
}

// Days resolves every date from from to to inclusive.
func (s *Schedule) Days(from, to calendar.Date) []Day {
	var days []Day
	for d := from; !d.After(to); d = d.AddDays(1) {
		days = append(days, s.Day(d))
	}
	return days
}

// Week resolves the calendar week containing d.
func (s *Schedule) Week(d calendar.Date) []Day {
	start := d.StartOfWeek(s.weekStart)
	return s.Days(start, start.AddDays(6)) //nolint:mnd // a week spans seven days
}
