package scripts

import (
	"context"
	"time"
)

// Script is the agent instruction source consumed by the dispatch path.
// Script CRUD lives outside this core.
type Script struct {
	ID   string `json:"id" db:"id"`
	Name string `json:"name" db:"name"`

	// SystemMessage is the agent's guiding instruction text.
	SystemMessage string `json:"system_message" db:"system_message"`

	// Content is the legacy free-text body kept for scripts created before
	// SystemMessage existed.
	Content string `json:"content,omitempty" db:"content"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// InstructionText returns the text that should drive the agent.
func (s Script) InstructionText() string {
	if s.SystemMessage != "" {
		return s.SystemMessage
	}
	return s.Content
}

// Repository abstracts script reads.
type Repository interface {
	// FindByID returns (script, false, nil) semantics via the ok flag;
	// an absent script is not an error.
	FindByID(ctx context.Context, id string) (Script, bool, error)
}
