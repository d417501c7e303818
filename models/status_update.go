package models

import "time"

// StatusUpdate records one status transition of an application.
type StatusUpdate struct {
	StatusUpdateID int       `gorm:"primaryKey;column:status_update_id" json:"status_update_id"`
	ApplicationID  int       `gorm:"column:application_id" json:"application_id"`
	OldStatus      *Status   `gorm:"column:old_status" json:"old_status"`
	NewStatus      Status    `gorm:"column:new_status" json:"new_status"`
	Notes          string    `gorm:"column:notes" json:"notes"`
	ChangedBy      int       `gorm:"column:changed_by" json:"changed_by"`
	CreatedAt      time.Time `gorm:"column:created_at" json:"created_at"`
}

// TableName specifies the table for StatusUpdate.
func (StatusUpdate) TableName() string {
	return "status_updates"
}
