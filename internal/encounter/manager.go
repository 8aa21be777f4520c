package encounter

import (
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/ecs"
	"github.com/cory-johannsen/skirmish/internal/game/combat"
	"github.com/cory-johannsen/skirmish/internal/game/dice"
	"github.com/cory-johannsen/skirmish/internal/scripting"
)

// Manager hosts independent encounters keyed by UUID.
// All methods are safe for concurrent use.
type Manager struct {
	mu         sync.RWMutex
	encounters map[string]*Encounter

	content Content
	rules   combat.Rules
	sources func() dice.Source
	scripts *scripting.Manager
	logger  *zap.Logger
}

// NewManager creates an empty Manager. sources is called once per encounter so
// that seeded runs stay reproducible per encounter; scripts may be nil.
//
// Precondition: sources and logger must be non-nil.
// Postcondition: Returns a Manager with no encounters.
func NewManager(content Content, rules combat.Rules, sources func() dice.Source, scripts *scripting.Manager, logger *zap.Logger) *Manager {
	return &Manager{
		encounters: make(map[string]*Encounter),
		content:    content,
		rules:      rules,
		sources:    sources,
		scripts:    scripts,
		logger:     logger,
	}
}

// Start creates an encounter under a fresh UUID, registers it and starts it.
//
// Postcondition: on error the encounter is not registered.
func (m *Manager) Start(team1, team2 []Member) (*Encounter, error) {
	id := uuid.NewString()
	logger := m.logger.With(zap.String("encounter", id))
	roller := dice.NewLoggedRoller(m.sources(), logger.Named("dice"))
	enc := New(id, m.content, m.rules, roller, m.scripts, m.logger)

	m.mu.Lock()
	m.encounters[id] = enc
	m.mu.Unlock()

	if err := enc.Start(team1, team2); err != nil {
		m.mu.Lock()
		delete(m.encounters, id)
		m.mu.Unlock()
		enc.Close()
		return nil, err
	}
	return enc, nil
}

// Get returns the encounter registered under id.
//
// Postcondition: returns ErrEncounterNotFound if id is unknown.
func (m *Manager) Get(id string) (*Encounter, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	enc, ok := m.encounters[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrEncounterNotFound, id)
	}
	return enc, nil
}

// Act forwards a player command to encounter id.
func (m *Manager) Act(id string, a Action) error {
	enc, err := m.Get(id)
	if err != nil {
		return err
	}
	return enc.Act(a)
}

// Flee forwards a flee attempt to encounter id.
func (m *Manager) Flee(id string, actor ecs.Entity) error {
	enc, err := m.Get(id)
	if err != nil {
		return err
	}
	return enc.Flee(actor)
}

// Remove unregisters encounter id and releases its resources.
//
// Postcondition: returns ErrEncounterNotFound if id is unknown.
func (m *Manager) Remove(id string) error {
	m.mu.Lock()
	enc, ok := m.encounters[id]
	delete(m.encounters, id)
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrEncounterNotFound, id)
	}
	enc.Close()
	return nil
}

// IDs returns every registered encounter id in sorted order.
func (m *Manager) IDs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.encounters))
	for id := range m.encounters {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
