package main

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/styrkr/styrkr/internal/errors"
	"github.com/styrkr/styrkr/internal/library"
)

// libraryGET serves the whole exercise library. The library etag doubles as the HTTP entity tag.
func (app *application) libraryGET(w http.ResponseWriter, r *http.Request) {
	lib := app.content.Library()
	etag := `"` + lib.ETag + `"`

	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "no-cache")
	if etagMatches(r.Header.Get("If-None-Match"), etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	app.writeJSON(w, r, http.StatusOK, lib)
}

// etagMatches implements the weak comparison of If-None-Match.
func etagMatches(ifNoneMatch, etag string) bool {
	if ifNoneMatch == "" {
		return false
	}
	for candidate := range strings.SplitSeq(ifNoneMatch, ",") {
		candidate = strings.TrimPrefix(strings.TrimSpace(candidate), "W/")
		if candidate == "*" || candidate == etag {
			return true
		}
	}
	return false
}

// splitList splits a comma separated query value, dropping empty items.
func splitList(s string) []string {
	var items []string
	for item := range strings.SplitSeq(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

// parseLibraryQuery reads the category, slot, equipment, q and safe query parameters. slot accepts template slot
// ids such as upper_push as well as library slot tags.
func parseLibraryQuery(r *http.Request) (library.Query, error) {
	values := r.URL.Query()
	q := library.Query{
		Category:    library.Category(values.Get("category")),
		SlotTags:    nil,
		Equipment:   splitList(values.Get("equipment")),
		Constraints: library.NewConstraintSet(splitList(values.Get("safe"))),
		Search:      values.Get("q"),
	}
	if q.Category != "" && !q.Category.Valid() {
		return library.Query{}, errors.Wrap(errBadRequest, "unknown category",
			slog.String("category", string(q.Category)))
	}
	for _, slotID := range splitList(values.Get("slot")) {
		tags := library.SlotTagsFor(slotID)
		if len(tags) == 0 {
			return library.Query{}, errors.Wrap(errBadRequest, "unknown slot", slog.String("slot", slotID))
		}
		q.SlotTags = append(q.SlotTags, tags...)
	}
	return q, nil
}

func (app *application) libraryExercisesGET(w http.ResponseWriter, r *http.Request) {
	q, err := parseLibraryQuery(r)
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	exercises := app.content.Library().Find(q)
	if exercises == nil {
		exercises = []library.Exercise{}
	}
	app.writeJSON(w, r, http.StatusOK, exercises)
}

func (app *application) templateGET(w http.ResponseWriter, r *http.Request) {
	app.writeJSON(w, r, http.StatusOK, app.content.Template())
}

type exerciseView struct {
	Name         string
	FatigueLevel string
	Slots        []string
	Equipment    []string
	Notes        []string
}

type categoryView struct {
	Label     string
	Exercises []exerciseView
}

type libraryTemplateData struct {
	BaseTemplateData
	Version    string
	Categories []categoryView
}

// libraryPageGET lists the exercises grouped by category with their notes rendered as markdown.
func (app *application) libraryPageGET(w http.ResponseWriter, r *http.Request) {
	lib := app.content.Library()
	data := libraryTemplateData{
		BaseTemplateData: newBaseTemplateData(r),
		Version:          lib.Version,
		Categories:       nil,
	}
	for _, group := range lib.GroupedByCategory() {
		view := categoryView{Label: library.TitleCase(string(group.Category)), Exercises: nil}
		for _, e := range group.Exercises {
			slots := make([]string, 0, len(e.SlotTags))
			for _, tag := range e.SlotTags {
				slots = append(slots, lib.SlotLabel(tag))
			}
			view.Exercises = append(view.Exercises, exerciseView{
				Name:         e.Name,
				FatigueLevel: e.FatigueLevel(),
				Slots:        slots,
				Equipment:    e.Equipment,
				Notes:        e.Notes,
			})
		}
		data.Categories = append(data.Categories, view)
	}
	app.render(w, r, http.StatusOK, "library", data)
}
