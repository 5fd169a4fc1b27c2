// Package policy holds the pure gate decision rules: aggregation of completed
// reviews, session status derivation and submission validation.
package policy

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/lightningnetwork/lnd/fn/v2"

	"github.com/festy23/stagegate/internal/apperr"
	"github.com/festy23/stagegate/internal/config"
	reviewModel "github.com/festy23/stagegate/internal/review/model"
)

// Summary aggregates the completed reviews of a session.
type Summary struct {
	Completed int
	Required  int
	// Average is the mean score over completed reviews that carry one.
	Average   fn.Option[float64]
	Breakdown map[reviewModel.Decision]int
	Ready     bool
}

// Summarize aggregates reviews. Incomplete reviews are ignored.
func Summarize(reviews []reviewModel.GateReview, required int) Summary {
	breakdown := make(map[reviewModel.Decision]int, len(reviewModel.Decisions))
	for _, d := range reviewModel.Decisions {
		breakdown[d] = 0
	}

	completed, scored := 0, 0
	total := 0.0
	for _, r := range reviews {
		if !r.IsCompleted {
			continue
		}
		completed++
		if r.Decision != nil {
			breakdown[*r.Decision]++
		}
		if r.Score != nil {
			scored++
			total += *r.Score
		}
	}

	average := fn.None[float64]()
	if scored > 0 {
		average = fn.Some(total / float64(scored))
	}

	return Summary{
		Completed: completed,
		Required:  required,
		Average:   average,
		Breakdown: breakdown,
		Ready:     IsReadyForApproval(completed, required),
	}
}

// IsReadyForApproval reports whether enough reviews are in.
func IsReadyForApproval(completed, required int) bool {
	return completed >= required
}

// NextStatus derives the session status from the completed review count.
// APPROVED and CLOSED are sticky and COMPLETED never moves backwards.
func NextStatus(current reviewModel.SessionStatus, completed, required int) reviewModel.SessionStatus {
	switch current {
	case reviewModel.SessionApproved, reviewModel.SessionClosed, reviewModel.SessionCompleted:
		return current
	}
	switch {
	case completed <= 0:
		return reviewModel.SessionPending
	case completed < required:
		return reviewModel.SessionInProgress
	default:
		return reviewModel.SessionCompleted
	}
}

// Submission is the reviewer supplied part of a gate review.
type Submission struct {
	Score    *float64
	Decision reviewModel.Decision
	Comments string
}

// ValidateSubmission checks a raw submission against the gate rules and
// returns it normalized.
func ValidateSubmission(rules config.GateConfig, score *float64, decision, comments string) (Submission, error) {
	d, ok := reviewModel.ParseDecision(strings.ToUpper(strings.TrimSpace(decision)))
	if !ok {
		return Submission{}, reviewModel.ErrInvalidDecision
	}

	trimmed := strings.TrimSpace(comments)
	if n := utf8.RuneCountInString(trimmed); n < rules.MinCommentLength {
		return Submission{}, apperr.Wrap(reviewModel.ErrCommentsTooShort,
			fmt.Sprintf("minimum is %d characters, got %d", rules.MinCommentLength, n))
	}

	if score != nil {
		s := *score
		if math.IsNaN(s) || s < rules.ScoreMin || s > rules.ScoreMax {
			return Submission{}, reviewModel.ErrScoreOutOfRange
		}
	}

	return Submission{Score: score, Decision: d, Comments: trimmed}, nil
}

// ToFivePoint converts a canonical 0-10 score to the 0-5 display scale,
// rounded to two decimals.
func ToFivePoint(score float64) float64 {
	return math.Round(score/2*100) / 100
}

// FivePointPtr converts an optional average for responses.
func FivePointPtr(avg *float64) *float64 {
	if avg == nil {
		return nil
	}
	v := ToFivePoint(*avg)
	return &v
}

// OptionPtr flattens an optional value for storage.
func OptionPtr(o fn.Option[float64]) *float64 {
	var p *float64
	o.WhenSome(func(v float64) {
		p = &v
	})
	return p
}
