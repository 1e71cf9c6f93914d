package main

import (
	"fmt"
	"net/http"
)

//nolint:gochecknoglobals // pages under ui/templates/pages.
var pages = []string{"home", "library", "error", "not-found"}

func (app *application) routes() (http.Handler, error) {
	// Fail on startup rather than on the first request when a template is broken.
	for _, page := range pages {
		if _, err := app.pageTemplate(page); err != nil {
			return nil, fmt.Errorf("parse page %s: %w", page, err)
		}
	}

	mux := http.NewServeMux()

	var (
		shared = func(next http.Handler) http.Handler {
			return app.logAndTraceRequest(secureHeaders(app.crossOriginProtection(
				commonContext(app.timeout(next)))))
		}
		noAuth = func(next http.Handler) http.Handler {
			return app.recoverPanic(shared(next))
		}
		session = func(next http.Handler) http.Handler {
			return app.recoverPanic(shared(noCache(app.sessionManager.LoadAndSave(app.authenticate(next)))))
		}
		mustSession = func(next http.Handler) http.Handler {
			return session(app.mustAuthenticate(next))
		}
		api = func(next http.Handler) http.Handler {
			return session(app.mustAuthenticateAPI(next))
		}
	)

	mux.Handle("GET /api/healthy", noAuth(http.HandlerFunc(app.healthy)))
	mux.Handle("POST /api/users", noAuth(http.HandlerFunc(app.usersPOST)))

	mux.Handle("GET /api/profile", api(http.HandlerFunc(app.profileGET)))
	mux.Handle("PUT /api/profile", api(http.HandlerFunc(app.profilePUT)))
	mux.Handle("GET /api/strength", api(http.HandlerFunc(app.strengthGET)))
	mux.Handle("PUT /api/strength", api(http.HandlerFunc(app.strengthPUT)))

	mux.Handle("GET /api/program", api(http.HandlerFunc(app.programGET)))
	mux.Handle("POST /api/program/regenerate", api(http.HandlerFunc(app.programRegeneratePOST)))
	mux.Handle("GET /api/program/weeks/{week}", api(http.HandlerFunc(app.programWeekGET)))

	mux.Handle("GET /api/calendar", api(http.HandlerFunc(app.calendarGET)))
	mux.Handle("GET /api/schedule", api(http.HandlerFunc(app.scheduleGET)))
	mux.Handle("POST /api/schedule/swap", api(http.HandlerFunc(app.scheduleSwapPOST)))
	mux.Handle("POST /api/schedule/reset", api(http.HandlerFunc(app.scheduleResetPOST)))

	mux.Handle("GET /api/workouts", api(http.HandlerFunc(app.workoutsGET)))
	mux.Handle("POST /api/workouts", api(http.HandlerFunc(app.workoutsPOST)))
	mux.Handle("GET /api/nonlift/{date}", api(http.HandlerFunc(app.nonLiftGET)))

	mux.Handle("GET /api/library", noAuth(http.HandlerFunc(app.libraryGET)))
	mux.Handle("GET /api/library/exercises", noAuth(http.HandlerFunc(app.libraryExercisesGET)))
	mux.Handle("GET /api/template", noAuth(http.HandlerFunc(app.templateGET)))

	mux.Handle("GET /library", session(http.HandlerFunc(app.libraryPageGET)))
	mux.Handle("POST /login", session(http.HandlerFunc(app.loginPOST)))
	mux.Handle("POST /logout", mustSession(http.HandlerFunc(app.logoutPOST)))
	mux.Handle("GET /{$}", session(http.HandlerFunc(app.home)))

	mux.Handle("/", session(http.HandlerFunc(app.notFound)))

	return mux, nil
}
