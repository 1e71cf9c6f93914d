package schedule

import (
	"github.com/styrkr/styrkr/internal/profile"
	"github.com/styrkr/styrkr/internal/program"
)

// Layout places a program week's days relative to its start date.
type Layout struct {
	// MainOffsets holds the day offset of each main-lift session in squat, bench, deadlift, OHP order.
	MainOffsets    []int
	NonLiftOffsets []int
	NonLiftType    program.WorkoutType
}

//nolint:mnd // fixed weekly layout: lift, lift, off, lift, lift, off, off.
func NewLayout(p profile.Profile) Layout {
	l := Layout{
		MainOffsets:    []int{0, 1, 3, 4},
		NonLiftOffsets: nil,
		NonLiftType:    program.WorkoutTypeFor(p.NonLiftingDayMode),
	}
	if !p.NonLiftingDaysEnabled {
		return l
	}
	if p.TrainingDaysPerWeek >= 5 {
		l.NonLiftOffsets = append(l.NonLiftOffsets, 2)
	}
	if p.TrainingDaysPerWeek >= 6 {
		l.NonLiftOffsets = append(l.NonLiftOffsets, 5)
	}
	if p.TrainingDaysPerWeek >= 7 {
		l.NonLiftOffsets = append(l.NonLiftOffsets, 6)
	}
	return l
}
