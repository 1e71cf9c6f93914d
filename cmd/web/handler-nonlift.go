package main

import (
	"net/http"

	"github.com/styrkr/styrkr/internal/program"
)

// nonLiftGET synthesizes a new workout on every call, so repeated requests may pick different exercises.
func (app *application) nonLiftGET(w http.ResponseWriter, r *http.Request) {
	date, err := parseDate("date", r.PathValue("date"))
	if err != nil {
		app.notFound(w, r)
		return
	}
	workoutType := program.WorkoutType(r.URL.Query().Get("type"))
	nl, err := app.workoutService.NonLiftingWorkout(r.Context(), date, workoutType)
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, nl)
}
