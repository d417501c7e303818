package models

import "time"

// Status is the lifecycle state of a citizen application.
type Status string

const (
	StatusSubmitted Status = "submitted"
	StatusInReview  Status = "in_review"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusCompleted Status = "completed"
)

// IsValid reports whether s is one of the known status values.
func (s Status) IsValid() bool {
	switch s {
	case StatusSubmitted, StatusInReview, StatusApproved, StatusRejected, StatusCompleted:
		return true
	}
	return false
}

// IsTerminal reports whether no further status changes are allowed.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusRejected
}

// ApplicationType classifies the requested administrative service.
type ApplicationType string

const (
	TypePassport             ApplicationType = "passport"
	TypeIDCard               ApplicationType = "id_card"
	TypeBirthCertificate     ApplicationType = "birth_certificate"
	TypeMarriageCertificate  ApplicationType = "marriage_certificate"
	TypeResidenceCertificate ApplicationType = "residence_certificate"
	TypeBusinessLicense      ApplicationType = "business_license"
	TypeOther                ApplicationType = "other"
)

// IsValid reports whether t is one of the known application types.
func (t ApplicationType) IsValid() bool {
	switch t {
	case TypePassport, TypeIDCard, TypeBirthCertificate, TypeMarriageCertificate,
		TypeResidenceCertificate, TypeBusinessLicense, TypeOther:
		return true
	}
	return false
}

type Application struct {
	ApplicationID   int             `gorm:"primaryKey;column:application_id" json:"application_id"`
	ReferenceNumber string          `gorm:"column:reference_number;unique" json:"reference_number"`
	Type            ApplicationType `gorm:"column:type" json:"type"`
	Status          Status          `gorm:"column:status" json:"status"`

	// Applicant fields, citizen-supplied and immutable after submission.
	FirstName  string `gorm:"column:first_name" json:"first_name"`
	LastName   string `gorm:"column:last_name" json:"last_name"`
	Email      string `gorm:"column:email" json:"email"`
	Phone      string `gorm:"column:phone" json:"phone"`
	Address    string `gorm:"column:address" json:"address"`
	City       string `gorm:"column:city" json:"city"`
	PostalCode string `gorm:"column:postal_code" json:"postal_code"`
	BirthDate  string `gorm:"column:birth_date" json:"birth_date"` // YYYY-MM-DD
	Notes      string `gorm:"column:notes" json:"notes"`

	UrgentRequest bool `gorm:"column:urgent_request" json:"urgent_request"`

	// Staff-mutable fields.
	StaffNotes string `gorm:"column:staff_notes" json:"staff_notes"`

	SubmittedAt *time.Time `gorm:"column:submitted_at" json:"submitted_at"`
	// UpdatedAt stays NULL until the first staff mutation, so GORM's
	// automatic update tracking is disabled for it.
	UpdatedAt *time.Time `gorm:"column:updated_at;autoUpdateTime:false" json:"updated_at,omitempty"`

	// Relations
	Documents     []ApplicationDocument `gorm:"foreignKey:ApplicationID" json:"documents,omitempty"`
	StatusUpdates []StatusUpdate        `gorm:"foreignKey:ApplicationID" json:"status_updates,omitempty"`
	Comments      []Comment             `gorm:"foreignKey:ApplicationID" json:"comments,omitempty"`
}

// TableName overrides
func (Application) TableName() string {
	return "applications"
}
