package main

import (
	"net/http"

	"github.com/styrkr/styrkr/internal/profile"
)

func (app *application) profileGET(w http.ResponseWriter, r *http.Request) {
	p, err := app.workoutService.GetProfile(r.Context())
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, p)
}

// profilePUT replaces the profile. The stored program is discarded and generated again on the next read.
func (app *application) profilePUT(w http.ResponseWriter, r *http.Request) {
	var p profile.Profile
	if err := decodeJSON(w, r, &p); err != nil {
		app.handleError(w, r, err)
		return
	}
	if err := app.workoutService.SaveProfile(r.Context(), p); err != nil {
		app.handleError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, p)
}
