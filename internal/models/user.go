package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Role string

const (
	RoleStaff    Role = "staff"
	RoleManager  Role = "manager"
	RoleDirector Role = "director"
	RoleHR       Role = "hr"
	RoleAdmin    Role = "admin"
)

// IsValid reports whether r is one of the known roles.
func (r Role) IsValid() bool {
	switch r {
	case RoleStaff, RoleManager, RoleDirector, RoleHR, RoleAdmin:
		return true
	}
	return false
}

// CanManageReports reports whether the role extends visibility to direct reports.
func (r Role) CanManageReports() bool {
	return r == RoleManager || r == RoleDirector || r == RoleHR
}

type User struct {
	ID           string         `gorm:"type:varchar(36);primarykey" json:"id"`
	Username     string         `gorm:"type:varchar(50);uniqueIndex;not null" json:"username"`
	Handle       string         `gorm:"type:varchar(50);index" json:"handle"`
	Email        string         `gorm:"type:varchar(255);index" json:"email"`
	Name         string         `gorm:"type:varchar(255)" json:"name"`
	PasswordHash string         `gorm:"type:varchar(255);not null" json:"-"`
	Role         Role           `gorm:"type:varchar(20);not null;default:'staff'" json:"role"`
	ManagerID    *string        `gorm:"type:varchar(36);index" json:"manager_id"`
	Active       bool           `gorm:"not null;default:true" json:"active"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Memberships []Membership `gorm:"foreignKey:UserID" json:"-"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// DisplayName returns the name used in denormalised snapshots.
func (u *User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Username
}

// ReportsTo reports whether the user's manager is managerID.
func (u *User) ReportsTo(managerID string) bool {
	return u.ManagerID != nil && *u.ManagerID != "" && *u.ManagerID == managerID
}
