package main

import (
	"encoding/json"
	"net/http"

	"github.com/styrkr/styrkr/internal/errors"
	"github.com/styrkr/styrkr/internal/strength"
	"github.com/styrkr/styrkr/internal/workout"
)

type strengthRequest struct {
	OneRepMaxes strength.Maxes     `json:"oneRepMaxes"`
	TMPolicy    *strength.TMPolicy `json:"tmPolicy"`

	// TrainingMaxes is accepted for compatibility and ignored: training maxes are always computed.
	TrainingMaxes json.RawMessage `json:"trainingMaxes"`
}

func (app *application) strengthGET(w http.ResponseWriter, r *http.Request) {
	data, err := app.workoutService.GetStrength(r.Context())
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, data)
}

// strengthPUT stores new one-rep maxes. Without a policy the default one for the profile's units applies.
func (app *application) strengthPUT(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req strengthRequest
	if err := decodeJSON(w, r, &req); err != nil {
		app.handleError(w, r, err)
		return
	}

	policy := req.TMPolicy
	if policy == nil {
		units := "lb"
		p, err := app.workoutService.GetProfile(ctx)
		switch {
		case err == nil:
			units = string(p.PreferredUnits)
		case !errors.Is(err, workout.ErrNotFound):
			app.serverError(w, r, err)
			return
		}
		defaultPolicy := strength.DefaultPolicy(units)
		policy = &defaultPolicy
	}

	data, err := app.workoutService.SaveStrength(ctx, req.OneRepMaxes, *policy)
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, data)
}
