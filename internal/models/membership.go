package models

import "time"

type MembershipRole string

const (
	MembershipOwner       MembershipRole = "owner"
	MembershipManager     MembershipRole = "manager"
	MembershipContributor MembershipRole = "contributor"
	MembershipViewer      MembershipRole = "viewer"
)

func (r MembershipRole) IsValid() bool {
	switch r {
	case MembershipOwner, MembershipManager, MembershipContributor, MembershipViewer:
		return true
	}
	return false
}

// CanEdit reports whether members holding this role may modify project tasks.
func (r MembershipRole) CanEdit() bool {
	return r != MembershipViewer
}

// Membership is unique per (ProjectID, UserID); re-adding a member overwrites the role.
type Membership struct {
	ProjectID string         `gorm:"type:varchar(36);primarykey" json:"project_id"`
	UserID    string         `gorm:"type:varchar(36);primarykey" json:"user_id"`
	Role      MembershipRole `gorm:"type:varchar(20);not null" json:"role"`
	JoinedAt  time.Time      `json:"joined_at"`

	// Relations
	Project Project `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	User    User    `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
