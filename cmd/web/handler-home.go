package main

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/styrkr/styrkr/internal/calendar"
	"github.com/styrkr/styrkr/internal/contexthelpers"
	"github.com/styrkr/styrkr/internal/errors"
	"github.com/styrkr/styrkr/internal/library"
	"github.com/styrkr/styrkr/internal/schedule"
	"github.com/styrkr/styrkr/internal/workout"
)

type dayView struct {
	Date       calendar.Date
	Weekday    string
	Kind       schedule.Kind
	Title      string
	Detail     string
	MovedFrom  string
	Completed  bool
	IsToday    bool
	NonLifting bool
}

type homeTemplateData struct {
	BaseTemplateData
	LoginError string
	// NeedsOnboarding is set for users without strength data.
	NeedsOnboarding bool
	WeekStart       calendar.Date
	Days            []dayView
}

func newDayView(d schedule.Day, today calendar.Date) dayView {
	view := dayView{
		Date:       d.Date,
		Weekday:    d.Date.Weekday().String(),
		Kind:       d.Kind,
		Title:      "Rest",
		Detail:     "",
		MovedFrom:  "",
		Completed:  d.Completed,
		IsToday:    d.Date.Equal(today),
		NonLifting: d.Kind == schedule.KindNonLift,
	}
	if d.MovedFrom != nil {
		view.MovedFrom = d.MovedFrom.String()
	}
	switch {
	case d.Session != nil:
		view.Title = d.Session.Label
		var sets []string
		for _, set := range d.Session.MainLift.Sets {
			sets = append(sets, formatFloat(set.Weight)+"×"+strconv.Itoa(set.TargetReps))
		}
		view.Detail = strings.Join(sets, ", ")
	case d.Kind == schedule.KindNonLift:
		view.Title = library.TitleCase(string(d.NonLifting))
	}
	return view
}

func (app *application) home(w http.ResponseWriter, r *http.Request) {
	data := homeTemplateData{
		BaseTemplateData: newBaseTemplateData(r),
		LoginError:       "",
		NeedsOnboarding:  false,
		WeekStart:        calendar.Date{},
		Days:             nil,
	}
	if !data.Authenticated {
		app.render(w, r, http.StatusOK, "home", data)
		return
	}

	view, err := app.workoutService.Schedule(r.Context())
	switch {
	case errors.Is(err, workout.ErrNotFound):
		data.NeedsOnboarding = true
	case err != nil:
		app.serverError(w, r, err)
		return
	default:
		today := calendar.DateOf(time.Now())
		data.WeekStart = view.WeekStart
		for _, d := range view.Days {
			data.Days = append(data.Days, newDayView(d, today))
		}
	}
	app.render(w, r, http.StatusOK, "home", data)
}

// loginPOST exchanges an API key for a browser session.
func (app *application) loginPOST(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := r.ParseForm(); err != nil {
		app.handleError(w, r, errors.Wrap(errBadRequest, "parse form"))
		return
	}

	user, err := app.workoutService.Authenticate(ctx, strings.TrimSpace(r.PostForm.Get("api_key")))
	if errors.Is(err, workout.ErrNotFound) {
		app.logger.LogAttrs(ctx, slog.LevelInfo, "login rejected")
		data := homeTemplateData{
			BaseTemplateData: newBaseTemplateData(r),
			LoginError:       "Unknown API key.",
			NeedsOnboarding:  false,
			WeekStart:        calendar.Date{},
			Days:             nil,
		}
		app.render(w, r, http.StatusUnauthorized, "home", data)
		return
	}
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	if err = app.sessionManager.RenewToken(ctx); err != nil {
		app.serverError(w, r, err)
		return
	}
	app.sessionManager.Put(ctx, sessionUserIDKey, user.ID)
	app.logger.LogAttrs(ctx, slog.LevelInfo, "logged in", slog.Int("user_id", user.ID))
	redirect(w, r, "/")
}

func (app *application) logoutPOST(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := app.sessionManager.Destroy(ctx); err != nil {
		app.serverError(w, r, err)
		return
	}
	app.logger.LogAttrs(ctx, slog.LevelInfo, "logged out",
		slog.Int("user_id", contexthelpers.AuthenticatedUserID(ctx)))
	redirect(w, r, "/")
}
