// Package recognition feeds face-recognition results into the attendance
// engine. The recognizer decides what matched; this package only filters
// and forwards.
package recognition

import (
	"context"
	"strings"

	"github.com/ravantech1548/Face-recogn-attendance/internal/attendance/types"
)

// Match is one face found in a frame, as reported by the recognizer.
type Match struct {
	StaffID    string   `json:"staffId"`
	FullName   string   `json:"fullName,omitempty"`
	Matched    bool     `json:"matched"`
	Confidence *float64 `json:"confidence,omitempty"`
	Score      *float64 `json:"score,omitempty"`
	Distance   *float64 `json:"distance,omitempty"`
	BBox       []int    `json:"bbox,omitempty"`
}

// Result is the recognizer's answer for one frame.
type Result struct {
	Matches []Match `json:"matches"`
}

type Sighter interface {
	RecordSighting(ctx context.Context, staffID string, confidence *float64) (types.SightingResult, error)
}

// Outcome pairs a forwarded staff id with what the engine did with it.
// Exactly one of Sighting and Err is set.
type Outcome struct {
	StaffID  string
	Sighting *types.SightingResult
	Err      error
}

// Forward records a sighting for every matched face in res. Unmatched faces
// and blank ids are dropped, and a staff member seen twice in one frame is
// forwarded once. Outcomes are in first-seen order.
func Forward(ctx context.Context, s Sighter, res Result) []Outcome {
	seen := make(map[string]struct{}, len(res.Matches))
	out := make([]Outcome, 0, len(res.Matches))

	for _, m := range res.Matches {
		id := strings.TrimSpace(m.StaffID)
		if !m.Matched || id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		if err := ctx.Err(); err != nil {
			out = append(out, Outcome{StaffID: id, Err: err})
			continue
		}

		sr, err := s.RecordSighting(ctx, id, confidenceOf(m))
		if err != nil {
			out = append(out, Outcome{StaffID: id, Err: err})
			continue
		}
		out = append(out, Outcome{StaffID: id, Sighting: &sr})
	}
	return out
}

func confidenceOf(m Match) *float64 {
	if m.Confidence != nil {
		return m.Confidence
	}
	return m.Score
}
