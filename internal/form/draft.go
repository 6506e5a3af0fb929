package form

import (
	"fmt"

	"roster-tracker/internal/domain"
)

type Mode string

const (
	ModeCreating Mode = "Creating"
	ModeEditing  Mode = "Editing"
)

type Field string

const (
	FieldFirstName Field = "first_name"
	FieldLastName  Field = "last_name"
	FieldTeam      Field = "team"
)

// Draft holds the not-yet-committed form values. An empty TargetID means the
// form creates a new player; otherwise it edits the player with that id.
type Draft struct {
	TargetID  string `json:"target_id,omitempty"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Team      string `json:"team"`
}

func DraftFrom(p domain.Player) Draft {
	return Draft{
		TargetID:  p.ID,
		FirstName: p.FirstName,
		LastName:  p.LastName,
		Team:      p.Team,
	}
}

func (d Draft) Mode() Mode {
	if d.TargetID == "" {
		return ModeCreating
	}
	return ModeEditing
}

// Fields returns the trimmed write payload.
func (d Draft) Fields() domain.PlayerFields {
	return domain.PlayerFields{
		FirstName: d.FirstName,
		LastName:  d.LastName,
		Team:      d.Team,
	}.Normalized()
}

func (d Draft) Validate() error {
	return d.Fields().Validate()
}

func (d *Draft) set(field Field, value string) error {
	switch field {
	case FieldFirstName:
		d.FirstName = value
	case FieldLastName:
		d.LastName = value
	case FieldTeam:
		d.Team = value
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	return nil
}
