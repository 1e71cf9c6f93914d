package program_test

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/styrkr/styrkr/internal/calendar"
	"github.com/styrkr/styrkr/internal/library"
	"github.com/styrkr/styrkr/internal/plan"
	"github.com/styrkr/styrkr/internal/profile"
	"github.com/styrkr/styrkr/internal/program"
	"github.com/styrkr/styrkr/internal/strength"
)

const waveTemplate = `{
  "version": "test-1",
  "macrocycle": {
    "cycleLengthWeeks": 3,
    "phases": [
      {"phaseId": "LEADER", "label": "Leader", "weeks": [1], "mainLiftScheme": "A",
       "rules": {"supplementalUsesFSL": true}},
      {"phaseId": "DELOAD", "label": "Deload", "weeks": [2], "mainLiftScheme": "D",
       "rules": {"supplementalUsesFSL": true, "supplementalEnabled": false, "circuitRounds": 2}},
      {"phaseId": "TEST", "label": "Test", "weeks": [3], "rules": {}}
    ]
  },
  "setSchemes": {
    "A": {"label": "5s PRO", "workSets": [
      {"pctTM": 0.65, "reps": 5}, {"pctTM": 0.75, "reps": 5}, {"pctTM": 0.85, "reps": 5}]},
    "D": {"label": "Deload", "workSets": [{"pctTM": 0.40, "reps": 5}]}
  },
  "sessionTemplates": {
    "SQUAT_DAY": {"sessionId": "SQUAT_DAY", "label": "Squat", "mainLiftId": "squat",
      "supplemental": [{"type": "fsl_main_lift", "label": "FSL", "sets": 5, "repsRange": [5, 8]}],
      "assistanceSlots": [{"slotId": "upper_pull"}, {"slotId": "carry", "minReps": 1, "maxReps": 1}],
      "circuit": {"enabled": true, "rounds": 4}},
    "BENCH_DAY": {"sessionId": "BENCH_DAY", "label": "Bench", "mainLiftId": "bench",
      "assistanceSlots": [{"slotId": "carry"}, {"slotId": "single_leg"}, {"slotId": "scap_stability"}],
      "circuit": {"enabled": true}}
  }
}`

func mustTemplate(t *testing.T, doc string) *plan.Template {
	t.Helper()
	tmpl, err := plan.Parse([]byte(doc))
	if err != nil {
		t.Fatalf("plan.Parse() error = %v", err)
	}
	return tmpl
}

func exercise(id string, tags []library.SlotTag, equipment []string, blocked ...library.Constraint) library.Exercise {
	return library.Exercise{
		ID:                 id,
		Name:               library.TitleCase(id),
		Category:           library.CategoryAccessory,
		MovementPatterns:   nil,
		SlotTags:           tags,
		Equipment:          equipment,
		ConstraintsBlocked: blocked,
		FatigueScore:       2,
		Notes:              []string{"Notes for " + id},
	}
}

func testLibrary(t *testing.T) *library.Library {
	t.Helper()
	lib, err := library.New("test-lib", []library.Exercise{
		exercise("farmer_carry", []library.SlotTag{library.SlotCarry}, []string{"kb"}),
		exercise("suitcase_carry", []library.SlotTag{library.SlotCarry}, []string{"kb", "db"}),
		exercise("bulgarian_split_squat",
			[]library.SlotTag{library.SlotSingleLeg, library.SlotSingleLegKneeDominant}, []string{"db"}, "knee_issues"),
		exercise("step_up", []library.SlotTag{library.SlotSingleLeg}, []string{"box"}),
		exercise("dead_bug", []library.SlotTag{library.SlotCoreAntiExtension}, nil),
		exercise("pallof_press", []library.SlotTag{library.SlotCoreAntiRotation}, []string{"band"}),
		exercise("pull_up", []library.SlotTag{library.SlotUpperPullVertical}, []string{"pullup_bar"}),
		exercise("ninety_ninety", []library.SlotTag{library.SlotMobilityHipsIRER}, nil),
		exercise("open_book", []library.SlotTag{library.SlotMobilityTSpine}, nil),
	})
	if err != nil {
		t.Fatalf("library.New() error = %v", err)
	}
	return lib
}

func seededRand() *rand.Rand {
	return rand.New(rand.NewPCG(1, 2)) //nolint:gosec // deterministic tests.
}

func userProfile(mutate func(*profile.Profile)) profile.Profile {
	p := profile.Default()
	if mutate != nil {
		mutate(&p)
	}
	return p
}

// wednesday is 2026-03-04; the next Monday is 2026-03-09.
//
//nolint:gochecknoglobals // test fixture.
var wednesday = calendar.NewDate(2026, time.March, 4)

func generate(t *testing.T, tms strength.Maxes) *program.Program {
	t.Helper()
	return program.Generate(program.Input{
		Template:      mustTemplate(t, waveTemplate),
		TrainingMaxes: tms,
		StartDay:      time.Monday,
		Units:         profile.Pounds,
		Today:         wednesday,
		DayOffsets:    nil,
	})
}
