package main

import (
	"crypto/sha256"
	"errors"
	"net/http"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/styrkr/styrkr/internal/calendar"
	"github.com/styrkr/styrkr/internal/e2etest"
	"github.com/styrkr/styrkr/internal/testhelpers"
)

type programResponse struct {
	StartDate calendar.Date `json:"startDate"`
	Weeks     []struct {
		WeekNumber int `json:"weekNumber"`
		Sessions   []struct {
			SessionID string        `json:"sessionId"`
			Date      calendar.Date `json:"date"`
			MainLift  struct {
				LiftID string `json:"liftId"`
			} `json:"mainLift"`
		} `json:"sessions"`
	} `json:"weeks"`
	TrainingMaxes map[string]float64 `json:"trainingMaxes"`
}

type dayResponse struct {
	Date      calendar.Date  `json:"date"`
	Kind      string         `json:"kind"`
	MovedFrom *calendar.Date `json:"movedFrom"`
	Completed bool           `json:"completed"`
}

type swapResponse struct {
	Applied  bool           `json:"applied"`
	DaySwaps map[string]any `json:"daySwaps"`
}

func apiError(t *testing.T, err error) *e2etest.APIError {
	t.Helper()
	var apiErr *e2etest.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Expected API error, got %v", err)
	}
	return apiErr
}

func Test_application_onboardingFlow(t *testing.T) {
	ctx := t.Context()
	server, err := e2etest.StartServer(t, testhelpers.NewWriter(t), testLookupEnv, run)
	if err != nil {
		t.Fatalf("Failed to start server: %v", err)
	}
	client := server.Client()

	t.Run("Anonymous requests are rejected", func(t *testing.T) {
		err = client.JSON(ctx, http.MethodGet, "/api/profile", nil, nil)
		if got := apiError(t, err); got.Status != http.StatusUnauthorized || got.Code != "FORBIDDEN" {
			t.Errorf("Expected 401 FORBIDDEN, got %v", got)
		}
	})

	t.Run("Unknown API key", func(t *testing.T) {
		client.SetAPIKey("not-a-key")
		err = client.JSON(ctx, http.MethodGet, "/api/profile", nil, nil)
		if got := apiError(t, err); got.Status != http.StatusUnauthorized {
			t.Errorf("Expected 401, got %v", got)
		}
		client.SetAPIKey("")
	})

	reg, err := client.Register(ctx)
	if err != nil {
		t.Fatalf("Failed to register: %v", err)
	}
	if reg.UserID == "" || reg.APIKey == "" {
		t.Fatalf("Expected user id and API key, got %+v", reg)
	}

	t.Run("API key is stored hashed", func(t *testing.T) {
		var hash []byte
		row := server.DB().QueryRowContext(ctx, "SELECT api_key_hash FROM users WHERE public_id = ?", reg.UserID)
		if err = row.Scan(&hash); err != nil {
			t.Fatalf("Failed to read user: %v", err)
		}
		if len(hash) != sha256.Size || string(hash) == reg.APIKey {
			t.Errorf("Expected a %d byte hash, got %q", sha256.Size, hash)
		}
	})

	t.Run("Nothing stored yet", func(t *testing.T) {
		for _, path := range []string{"/api/profile", "/api/strength", "/api/program"} {
			err = client.JSON(ctx, http.MethodGet, path, nil, nil)
			if got := apiError(t, err); got.Status != http.StatusNotFound || got.Code != "NOT_FOUND" {
				t.Errorf("%s: expected 404 NOT_FOUND, got %v", path, got)
			}
		}
	})

	profile := map[string]any{
		"trainingDaysPerWeek":   4,
		"preferredStartDay":     "mon",
		"preferredUnits":        "lb",
		"nonLiftingDaysEnabled": false,
		"nonLiftingDayMode":     "rest",
		"conditioningLevel":     "moderate",
		"constraints":           []string{},
	}

	t.Run("Invalid profile", func(t *testing.T) {
		invalid := map[string]any{}
		for k, v := range profile {
			invalid[k] = v
		}
		invalid["trainingDaysPerWeek"] = 2
		err = client.JSON(ctx, http.MethodPut, "/api/profile", invalid, nil)
		got := apiError(t, err)
		want := &e2etest.APIError{
			Status:  http.StatusBadRequest,
			Code:    "VALIDATION_ERROR",
			Message: "trainingDaysPerWeek must be between 3 and 7",
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("Error mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("Save profile and strength", func(t *testing.T) {
		if err = client.JSON(ctx, http.MethodPut, "/api/profile", profile, nil); err != nil {
			t.Fatalf("Failed to save profile: %v", err)
		}
		body := map[string]any{
			"oneRepMaxes":   map[string]float64{"squat": 315, "bench": 225, "deadlift": 405, "ohp": 135},
			"trainingMaxes": map[string]float64{"squat": 1, "bench": 1, "deadlift": 1, "ohp": 1},
		}
		var got struct {
			TrainingMaxes map[string]float64 `json:"trainingMaxes"`
		}
		if err = client.JSON(ctx, http.MethodPut, "/api/strength", body, &got); err != nil {
			t.Fatalf("Failed to save strength: %v", err)
		}
		want := map[string]float64{"squat": 265, "bench": 190, "deadlift": 340, "ohp": 110}
		if diff := cmp.Diff(want, got.TrainingMaxes); diff != "" {
			t.Errorf("Training max mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("Invalid strength", func(t *testing.T) {
		body := map[string]any{
			"oneRepMaxes": map[string]float64{"squat": 0, "bench": 225, "deadlift": 405, "ohp": 135},
		}
		err = client.JSON(ctx, http.MethodPut, "/api/strength", body, nil)
		if got := apiError(t, err); got.Status != http.StatusBadRequest ||
			got.Message != "oneRepMaxes.squat must be a positive number" {
			t.Errorf("Expected validation error for squat, got %v", got)
		}
	})

	var prog programResponse
	t.Run("Program", func(t *testing.T) {
		if err = client.JSON(ctx, http.MethodGet, "/api/program", nil, &prog); err != nil {
			t.Fatalf("Failed to get program: %v", err)
		}
		if len(prog.Weeks) == 0 || len(prog.Weeks[0].Sessions) != 4 {
			t.Fatalf("Expected four sessions in the first week, got %+v", prog.Weeks)
		}
		if prog.StartDate.Weekday().String() != "Monday" {
			t.Errorf("Expected Monday start, got %s", prog.StartDate.Weekday())
		}
		if prog.TrainingMaxes["squat"] != 265 {
			t.Errorf("Expected squat training max 265, got %v", prog.TrainingMaxes["squat"])
		}

		var again programResponse
		if err = client.JSON(ctx, http.MethodGet, "/api/program", nil, &again); err != nil {
			t.Fatalf("Failed to get program: %v", err)
		}
		if diff := cmp.Diff(prog, again); diff != "" {
			t.Errorf("Program changed between reads (-first +second):\n%s", diff)
		}

		var week struct {
			WeekNumber int `json:"weekNumber"`
		}
		if err = client.JSON(ctx, http.MethodGet, "/api/program/weeks/2", nil, &week); err != nil {
			t.Fatalf("Failed to get week: %v", err)
		}
		if week.WeekNumber != 2 {
			t.Errorf("Expected week 2, got %d", week.WeekNumber)
		}
		err = client.JSON(ctx, http.MethodGet, "/api/program/weeks/99", nil, nil)
		if got := apiError(t, err); got.Status != http.StatusNotFound {
			t.Errorf("Expected 404 for week 99, got %v", got)
		}
	})

	t.Run("Swap", func(t *testing.T) {
		start := prog.StartDate
		var result swapResponse
		body := map[string]string{"from": start.String(), "to": start.String()}
		if err = client.JSON(ctx, http.MethodPost, "/api/schedule/swap", body, &result); err != nil {
			t.Fatalf("Failed to swap: %v", err)
		}
		if result.Applied {
			t.Error("Expected swapping a day with itself to be rejected")
		}

		body = map[string]string{"from": start.String(), "to": start.AddDays(2).String()}
		if err = client.JSON(ctx, http.MethodPost, "/api/schedule/swap", body, &result); err != nil {
			t.Fatalf("Failed to swap: %v", err)
		}
		if !result.Applied || len(result.DaySwaps) != 2 {
			t.Fatalf("Expected applied swap with two entries, got %+v", result)
		}

		var days []dayResponse
		path := "/api/calendar?from=" + start.String() + "&to=" + start.AddDays(6).String()
		if err = client.JSON(ctx, http.MethodGet, path, nil, &days); err != nil {
			t.Fatalf("Failed to get calendar: %v", err)
		}
		if len(days) != 7 {
			t.Fatalf("Expected 7 days, got %d", len(days))
		}
		if days[0].Kind != "rest" || days[2].Kind != "lift" {
			t.Errorf("Expected rest then lift after swap, got %s and %s", days[0].Kind, days[2].Kind)
		}
		if days[2].MovedFrom == nil || !days[2].MovedFrom.Equal(start) {
			t.Errorf("Expected day 3 to be moved from %s, got %v", start, days[2].MovedFrom)
		}

		if err = client.JSON(ctx, http.MethodPost, "/api/schedule/reset", nil, nil); err != nil {
			t.Fatalf("Failed to reset: %v", err)
		}
		if err = client.JSON(ctx, http.MethodGet, path, nil, &days); err != nil {
			t.Fatalf("Failed to get calendar: %v", err)
		}
		if days[0].Kind != "lift" || days[2].Kind != "rest" {
			t.Errorf("Expected default layout after reset, got %s and %s", days[0].Kind, days[2].Kind)
		}
	})

	t.Run("Calendar range validation", func(t *testing.T) {
		for _, path := range []string{
			"/api/calendar?from=2026-03-10&to=2026-03-01",
			"/api/calendar?from=2026-01-01&to=2027-06-01",
			"/api/calendar?from=yesterday&to=2026-03-01",
			"/api/calendar",
		} {
			err = client.JSON(ctx, http.MethodGet, path, nil, nil)
			if got := apiError(t, err); got.Status != http.StatusBadRequest || got.Code != "VALIDATION_ERROR" {
				t.Errorf("%s: expected 400 VALIDATION_ERROR, got %v", path, got)
			}
		}
	})

	t.Run("Workout log", func(t *testing.T) {
		session := prog.Weeks[0].Sessions[0]
		entry := map[string]any{
			"workoutDate": session.Date.String(),
			"programWeek": 1,
			"sessionId":   session.SessionID,
			"mainLift": map[string]any{
				"liftId": session.MainLift.LiftID,
				"sets":   []map[string]any{{"weight": 175, "reps": 5, "completed": true}},
			},
		}
		var stored struct {
			ID string `json:"id"`
		}
		if err = client.JSON(ctx, http.MethodPost, "/api/workouts", entry, &stored); err != nil {
			t.Fatalf("Failed to log workout: %v", err)
		}
		if stored.ID == "" {
			t.Error("Expected the stored entry to get an id")
		}

		var entries []map[string]any
		path := "/api/workouts?startDate=" + session.Date.String() + "&endDate=" + session.Date.AddDays(6).String()
		if err = client.JSON(ctx, http.MethodGet, path, nil, &entries); err != nil {
			t.Fatalf("Failed to list workouts: %v", err)
		}
		if len(entries) != 1 {
			t.Errorf("Expected one logged workout, got %d", len(entries))
		}

		var days []dayResponse
		calendarPath := "/api/calendar?from=" + session.Date.String() + "&to=" + session.Date.String()
		if err = client.JSON(ctx, http.MethodGet, calendarPath, nil, &days); err != nil {
			t.Fatalf("Failed to get calendar: %v", err)
		}
		if len(days) != 1 || !days[0].Completed {
			t.Errorf("Expected %s to be completed, got %+v", session.Date, days)
		}
		var result swapResponse
		body := map[string]string{"from": session.Date.String(), "to": session.Date.AddDays(2).String()}
		if err = client.JSON(ctx, http.MethodPost, "/api/schedule/swap", body, &result); err != nil {
			t.Fatalf("Failed to swap: %v", err)
		}
		if result.Applied {
			t.Error("Expected a completed day to stay in place")
		}
	})

	t.Run("Non-lifting workout", func(t *testing.T) {
		var workout struct {
			Type string `json:"type"`
		}
		path := "/api/nonlift/" + prog.StartDate.AddDays(2).String() + "?type=mobility"
		if err = client.JSON(ctx, http.MethodGet, path, nil, &workout); err != nil {
			t.Fatalf("Failed to get non-lifting workout: %v", err)
		}
		if workout.Type != "mobility" {
			t.Errorf("Expected mobility workout, got %q", workout.Type)
		}
		err = client.JSON(ctx, http.MethodGet, "/api/nonlift/"+prog.StartDate.String()+"?type=yoga", nil, nil)
		if got := apiError(t, err); got.Status != http.StatusBadRequest {
			t.Errorf("Expected 400 for unknown type, got %v", got)
		}
	})
}
