package models

import "time"

// Staff roles. Processors handle applications, supervisors additionally
// see department-wide stats, admins manage accounts.
const (
	RoleProcessor  = 1
	RoleSupervisor = 2
	RoleAdmin      = 3
)

type User struct {
	UserID     int        `gorm:"primaryKey;column:user_id" json:"user_id"`
	Username   string     `gorm:"column:username;unique" json:"username"`
	Email      string     `gorm:"column:email;unique" json:"email"`
	Password   string     `gorm:"column:password" json:"-"`
	FirstName  string     `gorm:"column:first_name" json:"first_name"`
	LastName   string     `gorm:"column:last_name" json:"last_name"`
	Department string     `gorm:"column:department" json:"department"`
	RoleID     int        `gorm:"column:role_id" json:"role_id"`
	IsActive   bool       `gorm:"column:is_active" json:"is_active"`
	LastLogin  *time.Time `gorm:"column:last_login" json:"last_login,omitempty"`
	CreateAt   *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt   *time.Time `gorm:"column:update_at" json:"update_at"`
	DeleteAt   *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`
}

// TableName overrides
func (User) TableName() string {
	return "users"
}

func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}
