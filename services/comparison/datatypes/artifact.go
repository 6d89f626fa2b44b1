// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package datatypes provides data structures for the comparison service.
//
// This file contains the cached work product: one USA/China comparison
// along a single metric, as produced by the generation backend and stored
// in the archive. For the library index types, see library.go.
package datatypes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// =============================================================================
// Provenance
// =============================================================================

// Provenance records whether an artifact came from live generation or from
// the archive. It is the only field the orchestrator mutates after an
// artifact has been handed to a caller.
type Provenance string

const (
	// ProvenanceGenerated marks an artifact returned straight from the
	// generation backend.
	ProvenanceGenerated Provenance = "freshly-generated"

	// ProvenanceArchived marks an artifact read back from the archive.
	ProvenanceArchived Provenance = "served-from-archive"
)

// =============================================================================
// Shared Validator Instance
// =============================================================================

// artifactValidate is the validator instance for artifact datatypes.
var artifactValidate = validator.New()

// yearPattern matches the only year format the chart layer accepts.
var yearPattern = regexp.MustCompile(`^\d{4}$`)

// =============================================================================
// Types
// =============================================================================

// Sample is one chart point: the USA and China values for a single year.
type Sample struct {
	Year  string  `json:"year"`
	USA   float64 `json:"usa"`
	China float64 `json:"china"`
}

// UnmarshalJSON accepts the loose numeric formats generation backends emit:
// years as numbers or strings, values as numbers or numeric strings with
// thousands separators. After parsing, Year is a string and the values are
// float64, never strings.
func (s *Sample) UnmarshalJSON(data []byte) error {
	var raw struct {
		Year  any `json:"year"`
		USA   any `json:"usa"`
		China any `json:"china"`
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return err
	}

	year, err := coerceYear(raw.Year)
	if err != nil {
		return err
	}
	usa, err := coerceValue(raw.USA)
	if err != nil {
		return fmt.Errorf("usa: %w", err)
	}
	china, err := coerceValue(raw.China)
	if err != nil {
		return fmt.Errorf("china: %w", err)
	}

	s.Year = year
	s.USA = usa
	s.China = china
	return nil
}

// Citation points at one source the generation backend claims to have used.
type Citation struct {
	SourceTitle string `json:"sourceTitle"`
	SourceURL   string `json:"sourceUrl"`
}

// ComparisonArtifact is the unit of cached work product: chart samples plus
// narrative text and citations for one metric. Immutable once returned to a
// caller, except for Provenance.
type ComparisonArtifact struct {
	// Title is the canonical display title in the request locale.
	Title string `json:"title" validate:"required"`

	// TitleEn and TitleZh are the canonical titles in both supported
	// locales, used by the library index and the language toggle.
	TitleEn string `json:"titleEn"`
	TitleZh string `json:"titleZh"`

	// Category groups related metrics in the library UI
	// ("economy", "military", "society", ...).
	Category string `json:"category"`

	// Unit is the Y-axis label ("USD billions", "years", ...).
	Unit string `json:"unit"`

	Samples []Sample `json:"samples" validate:"required,min=1"`

	Summary          string     `json:"summary" validate:"required"`
	DetailedAnalysis string     `json:"detailedAnalysis"`
	FutureOutlook    string     `json:"futureOutlook"`
	Citations        []Citation `json:"citations"`

	Provenance Provenance `json:"provenance,omitempty"`
}

// Validate checks the artifact invariants: required text fields present, at
// least one sample, every year a 4-digit string, no duplicate years. A
// generation response failing these checks is a hard failure and must not
// be archived.
func (a *ComparisonArtifact) Validate() error {
	if err := artifactValidate.Struct(a); err != nil {
		return fmt.Errorf("artifact structure invalid: %w", err)
	}
	seen := make(map[string]struct{}, len(a.Samples))
	for i, s := range a.Samples {
		if !yearPattern.MatchString(s.Year) {
			return fmt.Errorf("sample %d: year %q is not a 4-digit year", i, s.Year)
		}
		if _, dup := seen[s.Year]; dup {
			return fmt.Errorf("sample %d: duplicate year %q", i, s.Year)
		}
		seen[s.Year] = struct{}{}
	}
	return nil
}

// LocalTitle returns the canonical title for the given locale, falling back
// to the artifact's primary title.
func (a *ComparisonArtifact) LocalTitle(locale string) string {
	switch locale {
	case "zh":
		if a.TitleZh != "" {
			return a.TitleZh
		}
	default:
		if a.TitleEn != "" {
			return a.TitleEn
		}
	}
	return a.Title
}

// =============================================================================
// Coercion helpers
// =============================================================================

func coerceYear(v any) (string, error) {
	switch y := v.(type) {
	case string:
		return strings.TrimSpace(y), nil
	case json.Number:
		return y.String(), nil
	case nil:
		return "", fmt.Errorf("year missing")
	default:
		return "", fmt.Errorf("year has unsupported type %T", v)
	}
}

func coerceValue(v any) (float64, error) {
	switch n := v.(type) {
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, fmt.Errorf("value %q not numeric", n.String())
		}
		return f, nil
	case string:
		cleaned := strings.ReplaceAll(strings.TrimSpace(n), ",", "")
		f, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			return 0, fmt.Errorf("value %q not numeric", n)
		}
		return f, nil
	case nil:
		return 0, fmt.Errorf("value missing")
	default:
		return 0, fmt.Errorf("value has unsupported type %T", v)
	}
}
