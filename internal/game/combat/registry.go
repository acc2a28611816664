package combat

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/harrovale/mud/internal/game/dice"
	"github.com/harrovale/mud/internal/game/weapons"
)

// Manager is the registry mapping each location to at most one live
// Session. The command layer is handed a Manager rather than finding
// fights through ambient lookup.
//
// Only the registry maps are locked; Sessions themselves rely on the
// external command stream for serialization.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	engaged  map[string]string

	checker  *dice.Checker
	settings Settings
	logger   *zap.Logger
	policy   AutoPolicy

	resolve func(id string) (Character, bool)
	depart  func(ch Character, exit string) error
	arm     func(ch Character) (weapons.Profile, bool)
	now     func() time.Time
}

// ManagerParams wires a Manager's collaborators. Zero-value fields get
// working defaults: crypto-random dice, unarmed actors, the builtin
// autoattack policy, and a nop logger.
type ManagerParams struct {
	Checker  *dice.Checker
	Settings Settings
	Logger   *zap.Logger
	Policy   AutoPolicy

	// Resolve looks an actor up by ID for defender pull-in and target
	// validation.
	Resolve func(id string) (Character, bool)
	// Depart moves a fleeing actor out through an exit.
	Depart func(ch Character, exit string) error
	// Arm supplies an actor's weapon profile and whether it carries a
	// shield.
	Arm func(ch Character) (weapons.Profile, bool)
}

// NewManager builds the combat registry.
func NewManager(p ManagerParams) *Manager {
	logger := p.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	checker := p.Checker
	if checker == nil {
		checker = dice.NewChecker(dice.NewCryptoSource(), logger)
	}
	settings := p.Settings
	if settings.MaxRounds <= 0 {
		settings = DefaultSettings()
	}
	policy := p.Policy
	if policy == nil {
		policy = DefaultPolicy()
	}
	resolve := p.Resolve
	if resolve == nil {
		resolve = func(string) (Character, bool) { return nil, false }
	}
	arm := p.Arm
	if arm == nil {
		arm = func(Character) (weapons.Profile, bool) { return weapons.Unarmed(), false }
	}
	return &Manager{
		sessions: make(map[string]*Session),
		engaged:  make(map[string]string),
		checker:  checker,
		settings: settings,
		logger:   logger.Named("combat"),
		policy:   policy,
		resolve:  resolve,
		depart:   p.Depart,
		arm:      arm,
		now:      time.Now,
	}
}

// StartCombat begins (or joins) the fight at attacker's location,
// enrolling attacker and target as mutual foes and kicking off the
// first Setup phase.
func (m *Manager) StartCombat(attacker, target Character, opts LocationOpts) (*Session, error) {
	loc := attacker.LocationID()
	if target.LocationID() != loc {
		return nil, ErrInvalidTarget
	}

	m.mu.Lock()
	s, ok := m.sessions[loc]
	if !ok {
		s = newSession(m, loc, opts)
		m.sessions[loc] = s
	}
	m.mu.Unlock()

	if _, err := s.AddCombatant(attacker, nil); err != nil {
		return nil, err
	}
	if _, err := s.AddCombatant(target, attacker); err != nil {
		return nil, err
	}
	if s.initializing {
		s.initializing = false
		s.startSetup()
	}
	return s, nil
}

// SessionAt returns the live session at a location, nil if none.
func (m *Manager) SessionAt(locationID string) *Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sessions[locationID]
}

// SessionFor returns the session the actor is fighting in, nil if the
// actor is not engaged anywhere.
func (m *Manager) SessionFor(actorID string) *Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	loc, ok := m.engaged[actorID]
	if !ok {
		return nil
	}
	return m.sessions[loc]
}

func (m *Manager) engage(actorID, locationID string) {
	m.mu.Lock()
	m.engaged[actorID] = locationID
	m.mu.Unlock()
}

func (m *Manager) disengage(actorID string) {
	m.mu.Lock()
	delete(m.engaged, actorID)
	m.mu.Unlock()
}

func (m *Manager) endSession(s *Session) {
	m.mu.Lock()
	if m.sessions[s.locationID] == s {
		delete(m.sessions, s.locationID)
	}
	m.mu.Unlock()
}
