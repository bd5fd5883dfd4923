package views

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/PYPE-AI-MAIN/whispey/internal/filter"
	"github.com/PYPE-AI-MAIN/whispey/internal/models"
)

// viewRecord is the on-disk shape of one saved view. Operations stay loosely
// typed here because old files may hold legacy filter rules or a separate
// distinct config; Load normalizes them through the migration step.
type viewRecord struct {
	ID             string                       `yaml:"id"`
	Name           string                       `yaml:"name"`
	AgentID        string                       `yaml:"agent_id"`
	Logic          string                       `yaml:"logic,omitempty"`
	Operations     []map[string]interface{}     `yaml:"operations"`
	DistinctConfig *models.LegacyDistinctConfig `yaml:"distinct_config,omitempty"`
	CreatedAt      time.Time                    `yaml:"created_at"`
	UpdatedAt      time.Time                    `yaml:"updated_at"`
}

type viewFile struct {
	Views []viewRecord `yaml:"views"`
}

// Manager manages saved call-log views
type Manager struct {
	path  string
	views []models.SavedView
}

// NewManager creates a manager backed by views.yaml in the config directory
func NewManager(configDir string) (*Manager, error) {
	m := &Manager{
		path:  filepath.Join(configDir, "views.yaml"),
		views: []models.SavedView{},
	}

	if _, err := os.Stat(m.path); err == nil {
		if err := m.Load(); err != nil {
			return nil, fmt.Errorf("failed to load views: %w", err)
		}
	}

	return m, nil
}

// Load reads the views file, normalizing legacy operation shapes as it goes.
func (m *Manager) Load() error {
	data, err := os.ReadFile(m.path)
	if err != nil {
		return fmt.Errorf("failed to read views file: %w", err)
	}

	var file viewFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse views file: %w", err)
	}

	views := make([]models.SavedView, 0, len(file.Views))
	for _, record := range file.Views {
		records := make([]json.RawMessage, 0, len(record.Operations))
		for _, op := range record.Operations {
			encoded, err := json.Marshal(op)
			if err != nil {
				continue
			}
			records = append(records, encoded)
		}

		logic := models.GroupLogic(record.Logic)
		if logic != models.LogicOr {
			logic = models.LogicAnd
		}

		views = append(views, models.SavedView{
			ID:         record.ID,
			Name:       record.Name,
			AgentID:    record.AgentID,
			Logic:      logic,
			Operations: filter.Migrate(records, record.DistinctConfig),
			CreatedAt:  record.CreatedAt,
			UpdatedAt:  record.UpdatedAt,
		})
	}

	m.views = views
	return nil
}

// Save writes all views back in the current format. Legacy distinct configs
// are not re-emitted; migration already folded them into the operation list.
func (m *Manager) Save() error {
	file := viewFile{Views: make([]viewRecord, 0, len(m.views))}
	for _, view := range m.views {
		operations := make([]map[string]interface{}, 0, len(view.Operations))
		for _, op := range view.Operations {
			encoded, err := json.Marshal(op)
			if err != nil {
				return fmt.Errorf("failed to encode operation: %w", err)
			}
			var raw map[string]interface{}
			if err := json.Unmarshal(encoded, &raw); err != nil {
				return fmt.Errorf("failed to encode operation: %w", err)
			}
			operations = append(operations, raw)
		}

		file.Views = append(file.Views, viewRecord{
			ID:         view.ID,
			Name:       view.Name,
			AgentID:    view.AgentID,
			Logic:      string(view.Logic),
			Operations: operations,
			CreatedAt:  view.CreatedAt,
			UpdatedAt:  view.UpdatedAt,
		})
	}

	data, err := yaml.Marshal(&file)
	if err != nil {
		return fmt.Errorf("failed to marshal views: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(m.path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(m.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write views file: %w", err)
	}

	return nil
}

// Add creates, stores and persists a new view.
func (m *Manager) Add(name, agentID string, logic models.GroupLogic, ops []models.Operation) (*models.SavedView, error) {
	if name == "" {
		return nil, fmt.Errorf("view name is required")
	}
	if logic != models.LogicOr {
		logic = models.LogicAnd
	}

	now := time.Now()
	view := models.SavedView{
		ID:         uuid.NewString(),
		Name:       name,
		AgentID:    agentID,
		Logic:      logic,
		Operations: append([]models.Operation(nil), ops...),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	m.views = append(m.views, view)
	if err := m.Save(); err != nil {
		return nil, err
	}
	return &view, nil
}

// Get returns a view by id.
func (m *Manager) Get(id string) (*models.SavedView, bool) {
	for i := range m.views {
		if m.views[i].ID == id {
			return &m.views[i], true
		}
	}
	return nil, false
}

// GetByName returns a view by name.
func (m *Manager) GetByName(name string) (*models.SavedView, bool) {
	for i := range m.views {
		if m.views[i].Name == name {
			return &m.views[i], true
		}
	}
	return nil, false
}

// List returns all views sorted by name.
func (m *Manager) List() []models.SavedView {
	views := append([]models.SavedView(nil), m.views...)
	sort.Slice(views, func(i, j int) bool { return views[i].Name < views[j].Name })
	return views
}

// Delete removes a view by id and persists the change.
func (m *Manager) Delete(id string) error {
	for i := range m.views {
		if m.views[i].ID == id {
			m.views = append(m.views[:i], m.views[i+1:]...)
			return m.Save()
		}
	}
	return fmt.Errorf("view not found: %s", id)
}
