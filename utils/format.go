package utils

import (
	"time"

	"citizen-portal-api/models"
)

// TypeLabel returns the German display name of an application type.
// The switch is exhaustive over the closed type set; a new type without
// a label here is a bug surfaced by the default branch.
func TypeLabel(t models.ApplicationType) string {
	switch t {
	case models.TypePassport:
		return "Reisepass"
	case models.TypeIDCard:
		return "Personalausweis"
	case models.TypeBirthCertificate:
		return "Geburtsurkunde"
	case models.TypeMarriageCertificate:
		return "Heiratsurkunde"
	case models.TypeResidenceCertificate:
		return "Meldebescheinigung"
	case models.TypeBusinessLicense:
		return "Gewerbeschein"
	case models.TypeOther:
		return "Sonstiges"
	default:
		return string(t)
	}
}

// StatusLabel returns the German display name of a status.
func StatusLabel(s models.Status) string {
	switch s {
	case models.StatusSubmitted:
		return "Eingereicht"
	case models.StatusInReview:
		return "In Bearbeitung"
	case models.StatusApproved:
		return "Genehmigt"
	case models.StatusRejected:
		return "Abgelehnt"
	case models.StatusCompleted:
		return "Abgeschlossen"
	default:
		return string(s)
	}
}

// StatusColor returns the badge color for a status.
func StatusColor(s models.Status) string {
	switch s {
	case models.StatusSubmitted:
		return "#007bff"
	case models.StatusInReview:
		return "#ffc107"
	case models.StatusApproved:
		return "#28a745"
	case models.StatusRejected:
		return "#dc3545"
	case models.StatusCompleted:
		return "#6c757d"
	default:
		return "#6c757d"
	}
}

// FormatDate returns the date in German display format.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(time.Local).Format("02.01.2006")
}

// FormatDateTime returns date and time in German display format.
func FormatDateTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(time.Local).Format("02.01.2006 15:04")
}

// FormatDateTimePtr returns the formatted value for pointer timestamps.
func FormatDateTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return FormatDateTime(*t)
}
