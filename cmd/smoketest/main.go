// Command smoketest exercises a deployed server end to end: it registers a throwaway user, onboards it through the
// API and signs in to the HTML pages with the issued key.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/styrkr/styrkr/internal/e2etest"
	"github.com/styrkr/styrkr/internal/errors"
	"github.com/styrkr/styrkr/internal/logging"
	"github.com/styrkr/styrkr/internal/testhelpers"
)

func onboard(ctx context.Context, client *e2etest.Client) (string, error) {
	reg, err := client.Register(ctx)
	if err != nil {
		return "", fmt.Errorf("register user: %w", err)
	}
	profile := map[string]any{
		"trainingDaysPerWeek":   5,
		"preferredStartDay":     "mon",
		"preferredUnits":        "kg",
		"nonLiftingDaysEnabled": true,
		"nonLiftingDayMode":     "mobility",
		"conditioningLevel":     "moderate",
		"constraints":           []string{},
	}
	if err = client.JSON(ctx, http.MethodPut, "/api/profile", profile, nil); err != nil {
		return "", fmt.Errorf("save profile: %w", err)
	}
	strength := map[string]any{
		"oneRepMaxes": map[string]float64{"squat": 140, "bench": 100, "deadlift": 180, "ohp": 60},
	}
	if err = client.JSON(ctx, http.MethodPut, "/api/strength", strength, nil); err != nil {
		return "", fmt.Errorf("save strength: %w", err)
	}
	var program struct {
		Weeks []map[string]any `json:"weeks"`
	}
	if err = client.JSON(ctx, http.MethodGet, "/api/program", nil, &program); err != nil {
		return "", fmt.Errorf("get program: %w", err)
	}
	if len(program.Weeks) == 0 {
		return "", errors.New("generated program has no weeks")
	}
	if err = client.JSON(ctx, http.MethodGet, "/api/schedule", nil, nil); err != nil {
		return "", fmt.Errorf("get schedule: %w", err)
	}
	return reg.APIKey, nil
}

func signIn(ctx context.Context, url, apiKey string) error {
	browser, err := e2etest.NewClient(url)
	if err != nil {
		return fmt.Errorf("new client: %w", err)
	}
	doc, err := browser.Login(ctx, apiKey)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	if doc.Find("li.day").Length() != 7 { //nolint:mnd // a week spans seven days
		return errors.New("home page does not show the current week")
	}
	if _, err = browser.Logout(ctx); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

func main() {
	logger := testhelpers.NewLogger(os.Stdout)
	ctx := context.Background()

	if len(os.Args) != 2 { //nolint:mnd // we expect only hostname to be passed as argument.
		logger.LogAttrs(ctx, slog.LevelError, "usage: smoketest <hostname>")
		os.Exit(1)
	}

	hostname := os.Args[1]
	start := time.Now()
	ctx = logging.WithAttrs(ctx, slog.String("hostname", hostname))
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second) //nolint:mnd // whole run
	defer cancel()

	url := "https://" + hostname
	if strings.Contains(hostname, "localhost") {
		url = "http://" + hostname
	}

	if err := smoke(ctx, url); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "smoke test failed", errors.SlogError(err))
		cancel()
		os.Exit(1) //nolint:gocritic // cancel called above.
	}
	logger.LogAttrs(ctx, slog.LevelInfo, "smoke test successful", slog.Duration("duration", time.Since(start)))
}

func smoke(ctx context.Context, url string) error {
	client, err := e2etest.NewClient(url)
	if err != nil {
		return fmt.Errorf("new client: %w", err)
	}
	if err = client.WaitForReady(ctx, "/api/healthy"); err != nil {
		return fmt.Errorf("server not ready: %w", err)
	}
	apiKey, err := onboard(ctx, client)
	if err != nil {
		return err
	}
	return signIn(ctx, url, apiKey)
}
