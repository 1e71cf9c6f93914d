package library

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/styrkr/styrkr/internal/errors"
)

// ErrInvalid is returned when a library document fails validation.
var ErrInvalid = errors.NewSentinel("invalid exercise library")

const (
	minFatigue = 1
	maxFatigue = 5
)

// Parse decodes and validates a library document. Unknown categories, slot tags and constraints are rejected so
// that a typo in the catalog fails at load time instead of silently never matching.
func Parse(data []byte) (*Library, error) {
	var l Library
	if err := json.Unmarshal(data, &l); err != nil {
		return nil, errors.Wrap(errors.Join(ErrInvalid, err), "decode library")
	}
	if err := l.validate(); err != nil {
		return nil, errors.Wrap(err, "validate library", slog.String("version", l.Version))
	}
	if l.ETag == "" {
		etag, err := computeETag(l.Exercises)
		if err != nil {
			return nil, err
		}
		l.ETag = etag
	}
	return &l, nil
}

// New builds a library from exercises, validating them like [Parse] does.
func New(version string, exercises []Exercise) (*Library, error) {
	l := Library{
		SchemaVersion:   "1",
		Name:            "",
		Program:         "",
		Version:         version,
		ETag:            "",
		PublishedAt:     "",
		SlotTaxonomy:    nil,
		SlotDefinitions: nil,
		Exercises:       exercises,
		byID:            nil,
	}
	if err := l.validate(); err != nil {
		return nil, errors.Wrap(err, "validate library")
	}
	etag, err := computeETag(l.Exercises)
	if err != nil {
		return nil, err
	}
	l.ETag = etag
	return &l, nil
}

func computeETag(exercises []Exercise) (string, error) {
	canonical, err := json.Marshal(exercises)
	if err != nil {
		return "", errors.Wrap(err, "marshal exercises")
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}

func (l *Library) validate() error {
	var errs []error
	invalid := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
	}

	for category, tags := range l.SlotTaxonomy {
		if !category.Valid() {
			invalid("unknown taxonomy category %q", category)
		}
		for _, tag := range tags {
			if !tag.Valid() {
				invalid("unknown slot tag %q in taxonomy", tag)
			}
		}
	}
	for _, def := range l.SlotDefinitions {
		if !def.SlotTag.Valid() {
			invalid("unknown slot tag %q in slot definitions", def.SlotTag)
		}
	}

	l.byID = make(map[string]int, len(l.Exercises))
	for i := range l.Exercises {
		e := &l.Exercises[i]
		if e.ID == "" {
			invalid("exercise at index %d has no exerciseId", i)
			continue
		}
		if _, dup := l.byID[e.ID]; dup {
			invalid("duplicate exerciseId %q", e.ID)
			continue
		}
		l.byID[e.ID] = i
		if e.Name == "" {
			invalid("exercise %q has no name", e.ID)
		}
		if !e.Category.Valid() {
			invalid("exercise %q has unknown category %q", e.ID, e.Category)
		}
		for _, tag := range e.SlotTags {
			if !tag.Valid() {
				invalid("exercise %q has unknown slot tag %q", e.ID, tag)
			}
		}
		for j, c := range e.ConstraintsBlocked {
			normalized := NormalizeConstraint(string(c))
			if !normalized.Valid() {
				invalid("exercise %q blocks unknown constraint %q", e.ID, c)
			}
			e.ConstraintsBlocked[j] = normalized
		}
		if e.FatigueScore < minFatigue || e.FatigueScore > maxFatigue {
			invalid("exercise %q fatigueScore %d outside [1,5]", e.ID, e.FatigueScore)
		}
	}

	return errors.Join(errs...)
}
