package main

import (
	"net/http"

	"github.com/styrkr/styrkr/internal/calendar"
	"github.com/styrkr/styrkr/internal/errors"
)

type swapRequest struct {
	From calendar.Date `json:"from"`
	To   calendar.Date `json:"to"`
}

// calendarGET resolves every day between the from and to query parameters with swaps and completion applied.
func (app *application) calendarGET(w http.ResponseWriter, r *http.Request) {
	from, to, err := parseDateRange(r, "from", "to")
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	days, err := app.workoutService.Calendar(r.Context(), from, to)
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, days)
}

func (app *application) scheduleGET(w http.ResponseWriter, r *http.Request) {
	view, err := app.workoutService.Schedule(r.Context())
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, view)
}

// scheduleSwapPOST answers 200 for rejected swaps too; the applied flag tells them apart.
func (app *application) scheduleSwapPOST(w http.ResponseWriter, r *http.Request) {
	var req swapRequest
	if err := decodeJSON(w, r, &req); err != nil {
		app.handleError(w, r, err)
		return
	}
	if req.From.IsZero() || req.To.IsZero() {
		app.handleError(w, r, errors.Wrap(errBadRequest, "from and to are required"))
		return
	}
	result, err := app.workoutService.Swap(r.Context(), req.From, req.To)
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, result)
}

func (app *application) scheduleResetPOST(w http.ResponseWriter, r *http.Request) {
	if err := app.workoutService.ResetSchedule(r.Context()); err != nil {
		app.handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
