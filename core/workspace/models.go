package workspace

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/oosplatform/oos/core"
)

// Membership roles
const (
	RoleAdmin = "admin"
	RoleTeam  = "team"
)

// Verification statuses
const (
	StatusUnverified = "unverified"
	StatusVerified   = "verified"
)

var AllRoles = []string{RoleAdmin, RoleTeam}

type Workspace struct {
	ID                 string    `json:"id"`
	Name               string    `json:"name"`
	Description        string    `json:"description,omitempty"`
	AdminID            string    `json:"admin_id"`
	VerificationStatus string    `json:"verification_status"`
	CreatedAt          time.Time `json:"created_at"` // UTC
	UpdatedAt          time.Time `json:"updated_at"` // UTC
}

type Member struct {
	ID          string    `json:"id"`
	WorkspaceID string    `json:"workspace_id"`
	UserID      string    `json:"user_id"`
	Role        string    `json:"role"`
	JoinedAt    time.Time `json:"joined_at"` // UTC
}

func (m Member) IsAdmin() bool { return m.Role == RoleAdmin }

// Invite is a single-use, email-bound workspace invitation.
type Invite struct {
	ID          string    `json:"id"`
	WorkspaceID string    `json:"workspace_id"`
	Email       string    `json:"email"`
	Token       string    `json:"token"`
	InvitedBy   string    `json:"invited_by,omitempty"`
	ExpiresAt   time.Time `json:"expires_at"` // UTC
	Used        bool      `json:"used"`
	CreatedAt   time.Time `json:"created_at"` // UTC
}

func (inv Invite) Expired(now time.Time) bool { return now.After(inv.ExpiresAt) }

// NewWorkspace contains information needed to create a new Workspace.
type NewWorkspace struct {
	Name        string `json:"name" validate:"required,max=120"`
	Description string `json:"description" validate:"omitempty,max=2000"`
}

func (nw *NewWorkspace) Validate(validate *validator.Validate) error {
	nw.Name = core.CleanString(nw.Name)
	nw.Description = core.CleanString(nw.Description)
	return validate.Struct(nw)
}

// UpdateWorkspace defines what information may be provided to modify an existing Workspace.
type UpdateWorkspace struct {
	Name        string `json:"name" validate:"omitempty,max=120"`
	Description string `json:"description" validate:"omitempty,max=2000"`
}

func (uw *UpdateWorkspace) Validate(orig Workspace, validate *validator.Validate) error {
	name := core.CleanString(uw.Name)
	if name != "" {
		uw.Name = name
	} else {
		uw.Name = orig.Name
	}
	desc := core.CleanString(uw.Description)
	if desc != "" {
		uw.Description = desc
	} else {
		uw.Description = orig.Description
	}
	return validate.Struct(uw)
}

type NewInvite struct {
	Email string `json:"email" validate:"required,email"`
}

func (ni *NewInvite) Validate(validate *validator.Validate) error {
	ni.Email = core.CleanString(ni.Email, true /* lower */)
	return validate.Struct(ni)
}

type UpdateMemberRole struct {
	Role string `json:"role" validate:"required,oneof=admin team"`
}

func (ur *UpdateMemberRole) Validate(validate *validator.Validate) error {
	ur.Role = core.CleanString(ur.Role, true /* lower */)
	return validate.Struct(ur)
}
