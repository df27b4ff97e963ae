// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Drillbit Contributors

package installer

import (
	"github.com/oklog/ulid/v2"

	"github.com/drillbit/drillbit/internal/manifest"
)

// Outcome is what happened to a single plugin.
type Outcome string

// Plugin outcomes.
const (
	OutcomeWritten    Outcome = "written"
	OutcomeSkipped    Outcome = "skipped"
	OutcomeWouldWrite Outcome = "would-write"
)

// Result describes one processed plugin. Existing names the file that
// already held the content of a skipped plugin.
type Result struct {
	Key      string
	Kind     manifest.Kind
	Path     string
	Existing string
	Outcome  Outcome
	Bytes    int
}

// Report is the outcome of a run. Results are in manifest key order and stop
// at the first failing plugin.
type Report struct {
	RunID   ulid.ULID
	Results []Result
}

// Count returns how many results have outcome o.
func (r *Report) Count(o Outcome) int {
	if r == nil {
		return 0
	}
	n := 0
	for _, res := range r.Results {
		if res.Outcome == o {
			n++
		}
	}
	return n
}
