package models

import "time"

// Comment is a staff note left on an application.
type Comment struct {
	CommentID     int       `gorm:"primaryKey;column:comment_id" json:"comment_id"`
	ApplicationID int       `gorm:"column:application_id" json:"application_id"`
	UserID        int       `gorm:"column:user_id" json:"user_id"`
	Text          string    `gorm:"column:text" json:"text"`
	CreatedAt     time.Time `gorm:"column:created_at" json:"created_at"`

	// Relations
	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// TableName overrides
func (Comment) TableName() string {
	return "application_comments"
}
