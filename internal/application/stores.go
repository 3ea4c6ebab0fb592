package application

import (
	"context"
	"log/slog"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"smartthingies/internal/domain"
)

// AuthStore holds the signed-in user for the lifetime of the process. It trusts
// its callers; validation happens in the session flow.
type AuthStore struct {
	mu   sync.RWMutex
	user *domain.User
}

func NewAuthStore() *AuthStore {
	return &AuthStore{}
}

func (s *AuthStore) User() (domain.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return domain.User{}, false
	}
	return *s.user, true
}

func (s *AuthStore) SetUser(u domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = &u
}

func (s *AuthStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = nil
}

// ToggleStore keeps per-device on/off switches and automation rules. This is
// local-only UI state: it is never read from or written to the device service and
// is lost when the process exits.
type ToggleStore struct {
	mu       sync.Mutex
	states   map[int]domain.ToggleState
	validate *validator.Validate
}

func NewToggleStore() *ToggleStore {
	return &ToggleStore{
		states:   make(map[int]domain.ToggleState),
		validate: validator.New(),
	}
}

// Toggle flips IsOn for id, creating a default entry first. Any id is accepted.
func (s *ToggleStore) Toggle(id int) domain.ToggleState {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.states[id]
	st.IsOn = !st.IsOn
	if st.AutomationRules == nil {
		st.AutomationRules = []domain.AutomationRule{}
	}
	s.states[id] = st
	return copyToggle(st)
}

// State returns the state for id, defaulting to off with no rules.
func (s *ToggleStore) State(id int) domain.ToggleState {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.states[id]
	if !ok {
		return domain.ToggleState{AutomationRules: []domain.AutomationRule{}}
	}
	return copyToggle(st)
}

// AddRule records a placeholder rule for id. Rules are not executed.
func (s *ToggleStore) AddRule(id int, rule domain.AutomationRule) error {
	if err := s.validate.Struct(rule); err != nil {
		return &domain.ValidationError{Field: "rule", Reason: "want on|off and a HH:MM time"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.states[id]
	st.AutomationRules = append(st.AutomationRules, rule)
	s.states[id] = st
	return nil
}

func copyToggle(st domain.ToggleState) domain.ToggleState {
	rules := make([]domain.AutomationRule, len(st.AutomationRules))
	copy(rules, st.AutomationRules)
	return domain.ToggleState{IsOn: st.IsOn, AutomationRules: rules}
}

const persistTimeout = 5 * time.Second

// LightStore holds the two light sliders and mirrors them to local persistence.
type LightStore struct {
	kv     KeyValueStore
	logger *slog.Logger

	mu     sync.RWMutex
	levels domain.LightLevels

	loadOnce sync.Once
	writeMu  sync.Mutex
	pending  sync.WaitGroup
}

func NewLightStore(kv KeyValueStore, logger *slog.Logger) *LightStore {
	return &LightStore{kv: kv, logger: logger}
}

// Load restores persisted levels. Only the first call reads storage. Missing or
// unparsable values load as 0.
func (s *LightStore) Load(ctx context.Context) {
	s.loadOnce.Do(func() {
		main := s.read(ctx, KeyMainLightValue)
		floor := s.read(ctx, KeyFloorLampValue)

		s.mu.Lock()
		s.levels = domain.LightLevels{MainLight: main, FloorLamp: floor}
		s.mu.Unlock()
	})
}

func (s *LightStore) read(ctx context.Context, key string) float64 {
	raw, ok, err := s.kv.Get(ctx, key)
	if err != nil {
		s.logger.Warn("reading light level", "key", key, "error", err)
		return 0
	}
	if !ok {
		return 0
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		s.logger.Warn("unparsable light level", "key", key, "value", raw)
		return 0
	}
	return ClampLevel(v)
}

func (s *LightStore) Levels() domain.LightLevels {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.levels
}

// SetMainLight stores v clamped to [0,1] and returns the stored value.
func (s *LightStore) SetMainLight(v float64) float64 {
	v = ClampLevel(v)
	s.mu.Lock()
	s.levels.MainLight = v
	s.mu.Unlock()
	s.persist(KeyMainLightValue)
	return v
}

// SetFloorLamp stores v clamped to [0,1] and returns the stored value.
func (s *LightStore) SetFloorLamp(v float64) float64 {
	v = ClampLevel(v)
	s.mu.Lock()
	s.levels.FloorLamp = v
	s.mu.Unlock()
	s.persist(KeyFloorLampValue)
	return v
}

// Wait blocks until every pending write has finished.
func (s *LightStore) Wait() {
	s.pending.Wait()
}

// persist writes the current in-memory value of key in the background. Writes are
// serialized and always take the latest value, so the last setter wins.
func (s *LightStore) persist(key string) {
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()

		s.writeMu.Lock()
		defer s.writeMu.Unlock()

		levels := s.Levels()
		v := levels.MainLight
		if key == KeyFloorLampValue {
			v = levels.FloorLamp
		}

		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()

		if err := s.kv.Set(ctx, key, strconv.FormatFloat(v, 'f', -1, 64)); err != nil {
			s.logger.Warn("persisting light level", "key", key, "error", err)
		}
	}()
}

// ClampLevel limits v to [0,1]. NaN becomes 0.
func ClampLevel(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
