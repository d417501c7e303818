package services

import (
	"errors"
	"fmt"
	"time"

	"citizen-portal-api/models"
)

// Workflow errors surfaced to callers. Handlers map these to client
// errors before any database write happens.
var (
	ErrProgressNotApplicable = errors.New("progress is not applicable for this status")
	ErrIllegalTransition     = errors.New("illegal status transition")
	ErrMissingSubmittedAt    = errors.New("application has no submission timestamp")
)

// statusOrder is the canonical forward progression. Rejected sits outside
// the order as a side-terminal state.
var statusOrder = [4]models.Status{
	models.StatusSubmitted,
	models.StatusInReview,
	models.StatusApproved,
	models.StatusCompleted,
}

// Progress returns the forward completion percentage for a status.
// Rejected (and unknown) statuses have no meaningful position on the
// forward bar; callers must suppress the bar when an error is returned
// rather than show zero.
func Progress(status models.Status) (float64, error) {
	for i, s := range statusOrder {
		if s == status {
			return float64(i+1) / float64(len(statusOrder)) * 100, nil
		}
	}
	return 0, fmt.Errorf("%w: %s", ErrProgressNotApplicable, status)
}

// EstimateCompletion returns the expected completion date for an open
// application. Counting starts the day after submission, Saturdays and
// Sundays are skipped entirely. Terminal statuses have no estimate.
func EstimateCompletion(status models.Status, submittedAt time.Time, urgent bool) (time.Time, bool) {
	if status == models.StatusCompleted || status == models.StatusRejected {
		return time.Time{}, false
	}

	businessDays := 5
	if urgent {
		businessDays = 2
	}

	estimated := submittedAt
	counted := 0
	for counted < businessDays {
		estimated = estimated.AddDate(0, 0, 1)
		if wd := estimated.Weekday(); wd != time.Saturday && wd != time.Sunday {
			counted++
		}
	}
	return estimated, true
}

// NextStatus returns the single legal forward transition for the staff
// "advance" shortcut. Terminal and unknown statuses have none; rejection
// is a separate explicit action, not an advance.
func NextStatus(current models.Status) (models.Status, bool) {
	switch current {
	case models.StatusSubmitted:
		return models.StatusInReview, true
	case models.StatusInReview:
		return models.StatusApproved, true
	case models.StatusApproved:
		return models.StatusCompleted, true
	default:
		return "", false
	}
}

// CanMutateStatus reports whether staff may still change the status.
func CanMutateStatus(current models.Status) bool {
	return !current.IsTerminal()
}

// ValidateTransition checks a requested staff status change against the
// workflow rules: forward along the canonical order, or a jump from any
// non-terminal state to rejected. The check runs before any persistence
// so illegal requests never reach the database.
func ValidateTransition(from, to models.Status) error {
	if !from.IsValid() || !to.IsValid() {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, from, to)
	}
	if from.IsTerminal() {
		return fmt.Errorf("%w: %s is terminal", ErrIllegalTransition, from)
	}
	if to == models.StatusRejected {
		return nil
	}

	fromIdx, toIdx := -1, -1
	for i, s := range statusOrder {
		if s == from {
			fromIdx = i
		}
		if s == to {
			toIdx = i
		}
	}
	if fromIdx < 0 || toIdx < 0 || toIdx <= fromIdx {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, from, to)
	}
	return nil
}

// TimelineMarker classifies a timeline entry for display.
type TimelineMarker string

const (
	MarkerSubmitted TimelineMarker = "submitted"
	MarkerInReview  TimelineMarker = "in_review"
	MarkerApproved  TimelineMarker = "approved"
	MarkerRejected  TimelineMarker = "rejected"
	MarkerCompleted TimelineMarker = "completed"
	MarkerPending   TimelineMarker = "pending"
)

// TimelineEntry is one milestone in an application's processing history.
// Pending entries carry no timestamp.
type TimelineEntry struct {
	Label     string         `json:"label"`
	Timestamp *time.Time     `json:"timestamp,omitempty"`
	Pending   bool           `json:"pending"`
	Marker    TimelineMarker `json:"marker"`
}

// BuildTimeline derives the ordered milestone list for an application
// snapshot. Intermediate milestones reuse the single updated_at value:
// the record keeps no per-transition timestamps, so review-started and
// approved entries show the time of the latest staff mutation.
func BuildTimeline(app *models.Application) ([]TimelineEntry, error) {
	if app.SubmittedAt == nil {
		return nil, ErrMissingSubmittedAt
	}

	entries := []TimelineEntry{{
		Label:     "Antrag eingereicht",
		Timestamp: app.SubmittedAt,
		Marker:    MarkerSubmitted,
	}}

	if app.Status != models.StatusSubmitted {
		entries = append(entries, TimelineEntry{
			Label:     "Bearbeitung begonnen",
			Timestamp: app.UpdatedAt,
			Marker:    MarkerInReview,
		})
	}

	if app.Status == models.StatusApproved || app.Status == models.StatusCompleted {
		entries = append(entries, TimelineEntry{
			Label:     "Antrag genehmigt",
			Timestamp: app.UpdatedAt,
			Marker:    MarkerApproved,
		})
	}

	if app.Status == models.StatusRejected {
		entries = append(entries, TimelineEntry{
			Label:     "Antrag abgelehnt",
			Timestamp: app.UpdatedAt,
			Marker:    MarkerRejected,
		})
		return entries, nil
	}

	if app.Status == models.StatusCompleted {
		entries = append(entries, TimelineEntry{
			Label:     "Antrag abgeschlossen",
			Timestamp: app.UpdatedAt,
			Marker:    MarkerCompleted,
		})
		return entries, nil
	}

	entries = append(entries, TimelineEntry{
		Label:   "Fertigstellung",
		Pending: true,
		Marker:  MarkerPending,
	})
	return entries, nil
}
