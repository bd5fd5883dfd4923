package models

import "time"

// SavedView is a named, persisted operation list bound to one agent.
// Operations are always in the current format; legacy persisted shapes are
// normalized when the view is loaded.
type SavedView struct {
	ID         string      `yaml:"id"`
	Name       string      `yaml:"name"`
	AgentID    string      `yaml:"agent_id"`
	Logic      GroupLogic  `yaml:"logic"`
	Operations []Operation `yaml:"operations"`
	CreatedAt  time.Time   `yaml:"created_at"`
	UpdatedAt  time.Time   `yaml:"updated_at"`
}
