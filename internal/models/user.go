package models

import (
	"time"

	"gorm.io/gorm"
)

type UserRole string

const (
	RoleAdmin            UserRole = "ADMIN"
	RoleManager          UserRole = "MANAGER"
	RoleLecturer         UserRole = "LECTURER"
	RoleHeadOfDepartment UserRole = "HEAD_OF_DEPARTMENT"
	RoleSecretary        UserRole = "SECRETARY"
)

// CanReview reports whether the role may approve or reject reports.
func (r UserRole) CanReview() bool {
	return r == RoleAdmin || r == RoleManager
}

// User is a whitelisted account. Login succeeds only for users that exist in
// this table and are active; there is no self-registration.
type User struct {
	ID       uint     `json:"id" gorm:"primaryKey"`
	Email    string   `json:"email" gorm:"uniqueIndex;not null;size:255" validate:"required,email"`
	FullName string   `json:"full_name" gorm:"not null;size:100" validate:"required,min=1,max=100"`
	Role     UserRole `json:"role" gorm:"not null;default:LECTURER;size:30" validate:"omitempty,user_role"`
	IsActive bool     `json:"is_active" gorm:"default:true"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Courses []Course `json:"courses,omitempty" gorm:"foreignKey:LecturerID"`
}

func (User) TableName() string {
	return "users"
}
