// utils/validator.go - Input validation
package utils

import (
	"regexp"
	"strings"
)

var (
	emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	// International format, optional leading +, no leading zero.
	phoneRegex      = regexp.MustCompile(`^\+?[1-9]\d{0,15}$`)
	postalCodeRegex = regexp.MustCompile(`^\d{5}$`)
)

// ValidateEmail checks if email is valid
func ValidateEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// ValidatePhone checks if phone number is valid
func ValidatePhone(phone string) bool {
	return phoneRegex.MatchString(phone)
}

// ValidatePostalCode checks for a five digit postal code
func ValidatePostalCode(code string) bool {
	return postalCodeRegex.MatchString(code)
}

// SanitizeInput removes potentially harmful characters
func SanitizeInput(input string) string {
	// Remove leading/trailing spaces
	input = strings.TrimSpace(input)

	// Remove null bytes
	input = strings.ReplaceAll(input, "\x00", "")

	return input
}

// SubmissionFields is the citizen-supplied part of a new application.
type SubmissionFields struct {
	Type       string
	FirstName  string
	LastName   string
	Email      string
	Phone      string
	Address    string
	City       string
	PostalCode string
	BirthDate  string
}

// ValidateSubmission checks all required citizen fields and returns a
// field name to message map. An empty map means the submission is valid.
func ValidateSubmission(f SubmissionFields) map[string]string {
	errs := make(map[string]string)

	if strings.TrimSpace(f.Type) == "" {
		errs["type"] = "Antragstyp ist erforderlich"
	}
	if strings.TrimSpace(f.FirstName) == "" {
		errs["first_name"] = "Vorname ist erforderlich"
	}
	if strings.TrimSpace(f.LastName) == "" {
		errs["last_name"] = "Nachname ist erforderlich"
	}

	switch {
	case strings.TrimSpace(f.Email) == "":
		errs["email"] = "E-Mail-Adresse ist erforderlich"
	case !ValidateEmail(f.Email):
		errs["email"] = "Ungültige E-Mail-Adresse"
	}

	switch {
	case strings.TrimSpace(f.Phone) == "":
		errs["phone"] = "Telefonnummer ist erforderlich"
	case !ValidatePhone(f.Phone):
		errs["phone"] = "Ungültige Telefonnummer"
	}

	if strings.TrimSpace(f.Address) == "" {
		errs["address"] = "Adresse ist erforderlich"
	}
	if strings.TrimSpace(f.City) == "" {
		errs["city"] = "Stadt ist erforderlich"
	}

	switch {
	case strings.TrimSpace(f.PostalCode) == "":
		errs["postal_code"] = "Postleitzahl ist erforderlich"
	case !ValidatePostalCode(f.PostalCode):
		errs["postal_code"] = "Ungültige Postleitzahl"
	}

	if strings.TrimSpace(f.BirthDate) == "" {
		errs["birth_date"] = "Geburtsdatum ist erforderlich"
	}

	return errs
}
