package plan

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/styrkr/styrkr/internal/errors"
	"github.com/styrkr/styrkr/internal/library"
)

// ErrInvalid is returned when a template document fails validation.
var ErrInvalid = errors.NewSentinel("invalid program template")

// Parse decodes and validates a template document.
func Parse(data []byte) (*Template, error) {
	var t Template
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, errors.Wrap(errors.Join(ErrInvalid, err), "decode template")
	}
	if err := t.Validate(); err != nil {
		return nil, errors.Wrap(err, "validate template", slog.String("programId", t.ProgramID))
	}
	return &t, nil
}

// Validate checks the structural invariants: every week of the cycle belongs to exactly one phase, phase ids and
// slot ids are known, and no phase declares both scheme forms.
func (t *Template) Validate() error {
	var errs []error
	invalid := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
	}

	n := t.Macrocycle.CycleLengthWeeks
	if n <= 0 {
		invalid("cycleLengthWeeks must be positive, got %d", n)
	}

	owner := make(map[int]PhaseID, n)
	for _, p := range t.Macrocycle.Phases {
		if !p.PhaseID.Valid() {
			invalid("unknown phaseId %q", p.PhaseID)
		}
		if p.MainLiftScheme != "" && p.MainLiftSchemeByWeekInCycle != nil {
			invalid("phase %s declares both mainLiftScheme and mainLiftSchemeByWeekInCycle", p.PhaseID)
		}
		if len(p.Weeks) == 0 {
			invalid("phase %s has no weeks", p.PhaseID)
		}
		for _, w := range p.Weeks {
			if w < 1 || w > n {
				invalid("phase %s week %d outside 1..%d", p.PhaseID, w, n)
				continue
			}
			if prev, dup := owner[w]; dup {
				invalid("week %d belongs to both %s and %s", w, prev, p.PhaseID)
				continue
			}
			owner[w] = p.PhaseID
		}
	}
	for w := 1; w <= n; w++ {
		if _, ok := owner[w]; !ok {
			invalid("week %d belongs to no phase", w)
		}
	}

	for key, st := range t.SessionTemplates {
		for _, slot := range st.AssistanceSlots {
			if !library.ValidSlotID(slot.SlotID) {
				invalid("session %s has unknown assistance slot %q", key, slot.SlotID)
			}
		}
		if fsl, ok := st.FSL(); ok && len(fsl.RepsRange) == 0 {
			invalid("session %s FSL entry has no repsRange", key)
		}
		for _, sup := range st.Supplemental {
			if sup.Sets < 0 {
				invalid("session %s supplemental %s has negative sets %d", key, sup.Type, sup.Sets)
			}
		}
	}

	return errors.Join(errs...)
}
