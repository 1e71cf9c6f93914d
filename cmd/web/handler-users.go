package main

import (
	"net/http"
)

type registrationResponse struct {
	UserID string `json:"userId"`
	APIKey string `json:"apiKey"`
}

// usersPOST creates a user. The API key is only ever returned here.
func (app *application) usersPOST(w http.ResponseWriter, r *http.Request) {
	user, apiKey, err := app.workoutService.CreateUser(r.Context())
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	app.writeJSON(w, r, http.StatusCreated, registrationResponse{UserID: user.PublicID, APIKey: apiKey})
}
