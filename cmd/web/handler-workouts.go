package main

import (
	"net/http"

	"github.com/styrkr/styrkr/internal/program"
)

func (app *application) workoutsGET(w http.ResponseWriter, r *http.Request) {
	from, to, err := parseDateRange(r, "startDate", "endDate")
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	entries, err := app.workoutService.Workouts(r.Context(), from, to)
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, entries)
}

// workoutsPOST logs a performed workout. Any id sent by the client is replaced.
func (app *application) workoutsPOST(w http.ResponseWriter, r *http.Request) {
	var entry program.WorkoutLogEntry
	if err := decodeJSON(w, r, &entry); err != nil {
		app.handleError(w, r, err)
		return
	}
	stored, err := app.workoutService.LogWorkout(r.Context(), entry)
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusCreated, stored)
}
