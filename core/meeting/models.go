package meeting

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/oosplatform/oos/core"
)

type Meeting struct {
	ID               string    `json:"id"`
	WorkspaceID      string    `json:"workspace_id"`
	AdminID          string    `json:"admin_id,omitempty"`
	RoomName         string    `json:"room_name"`
	ParticipantCount int       `json:"participant_count"`
	StartedAt        time.Time `json:"started_at"`         // UTC
	EndedAt          time.Time `json:"ended_at,omitempty"` // UTC
	CreatedAt        time.Time `json:"created_at"`         // UTC
}

func (m Meeting) Ended() bool { return !m.EndedAt.IsZero() }

type NewMeeting struct {
	RoomName string `json:"room_name" validate:"required,max=120"`
}

func (nm *NewMeeting) Validate(validate *validator.Validate) error {
	nm.RoomName = core.CleanString(nm.RoomName)
	return validate.Struct(nm)
}
