package main

import (
	"net/http"
	"strconv"
)

// programGET returns the frozen program, generating it on first access. Users without strength data get 404,
// which clients treat as the signal to onboard.
func (app *application) programGET(w http.ResponseWriter, r *http.Request) {
	prog, err := app.workoutService.Program(r.Context())
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, prog)
}

func (app *application) programRegeneratePOST(w http.ResponseWriter, r *http.Request) {
	prog, err := app.workoutService.Regenerate(r.Context())
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, prog)
}

func (app *application) programWeekGET(w http.ResponseWriter, r *http.Request) {
	n, err := strconv.Atoi(r.PathValue("week"))
	if err != nil {
		app.notFound(w, r)
		return
	}
	week, err := app.workoutService.ProgramWeek(r.Context(), n)
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, week)
}
