package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"smartthingies/internal/domain"
)

// SearchLimit caps the number of real results shown.
const SearchLimit = 5

// SearchItem is one search result. Manual marks the trailing "device not found?"
// entry that lets the user add a device by hand.
type SearchItem struct {
	Card   domain.DeviceCard
	Manual bool
}

type SearchScreen struct {
	api      DeviceService
	editor   *DeviceEditor
	notifier Notifier
	logger   *slog.Logger

	mu    sync.RWMutex
	query string
	items []SearchItem
}

func NewSearchScreen(api DeviceService, editor *DeviceEditor, notifier Notifier, logger *slog.Logger) *SearchScreen {
	return &SearchScreen{
		api:      api,
		editor:   editor,
		notifier: notifier,
		logger:   logger.With("screen", "search"),
		items:    []SearchItem{{Manual: true}},
	}
}

// Query sets the keyword and runs the search.
func (s *SearchScreen) Query(ctx context.Context, keyword string) ([]SearchItem, error) {
	s.mu.Lock()
	s.query = keyword
	s.mu.Unlock()
	return s.Refresh(ctx)
}

// Refresh reruns the current query. On failure the previous results stay.
func (s *SearchScreen) Refresh(ctx context.Context) ([]SearchItem, error) {
	s.mu.RLock()
	query := s.query
	s.mu.RUnlock()

	devices, err := s.api.SearchDevices(ctx, query)
	if err != nil {
		s.logger.Error("searching devices", "query", query, "error", err)
		return s.Items(), fmt.Errorf("searching devices: %w", err)
	}

	items := BuildSearchItems(devices)

	s.mu.Lock()
	s.items = items
	s.mu.Unlock()

	return s.Items(), nil
}

// BuildSearchItems keeps the first SearchLimit devices in service order and
// appends the manual entry.
func BuildSearchItems(devices []domain.Device) []SearchItem {
	n := len(devices)
	if n > SearchLimit {
		n = SearchLimit
	}
	items := make([]SearchItem, 0, n+1)
	for _, d := range devices[:n] {
		items = append(items, SearchItem{Card: domain.NewDeviceCard(d)})
	}
	return append(items, SearchItem{Manual: true})
}

func (s *SearchScreen) Items() []SearchItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]SearchItem, len(s.items))
	copy(out, s.items)
	return out
}

// Count is the number of real devices in the results.
func (s *SearchScreen) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items) - 1
}

// Pick returns the result at index i.
func (s *SearchScreen) Pick(i int) (SearchItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i < 0 || i >= len(s.items) {
		return SearchItem{}, &domain.ValidationError{Field: "result", Reason: fmt.Sprintf("no result %d", i)}
	}
	return s.items[i], nil
}

// ConfirmAdd adds a copy of a found device to roomName, optionally renamed.
func (s *SearchScreen) ConfirmAdd(ctx context.Context, item SearchItem, rename, roomName string) error {
	if item.Manual {
		return &domain.ValidationError{Field: "result", Reason: "pick a device or add one manually"}
	}

	name := strings.TrimSpace(rename)
	if name == "" {
		name = item.Card.Name
	}
	if name == "" {
		name = "Unnamed Device"
	}

	if err := s.editor.Create(ctx, name, item.Card.Type.Name, roomName); err != nil {
		return err
	}
	s.refreshAfterWrite(ctx)
	return nil
}

// AddManual adds a device that the search did not find.
func (s *SearchScreen) AddManual(ctx context.Context, name, typeName, roomName string) error {
	if err := s.editor.Create(ctx, name, typeName, roomName); err != nil {
		return err
	}
	s.refreshAfterWrite(ctx)
	return nil
}

func (s *SearchScreen) refreshAfterWrite(ctx context.Context) {
	if _, err := s.Refresh(ctx); err != nil {
		s.logger.Warn("refresh after add failed", "error", err)
	}
}
