package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"smartthingies/internal/domain"
)

// DeviceList is the client's cached copy of the device service's records. Every
// Refresh replaces the whole list; there are no incremental updates. Order is
// whatever the service returned.
type DeviceList struct {
	api    DeviceService
	logger *slog.Logger

	mu        sync.RWMutex
	cards     []domain.DeviceCard
	byID      map[int]int
	byName    map[string]int
	loading   bool
	refreshed time.Time
}

func NewDeviceList(api DeviceService, logger *slog.Logger) *DeviceList {
	return &DeviceList{
		api:    api,
		logger: logger,
		byID:   make(map[int]int),
		byName: make(map[string]int),
	}
}

// Refresh fetches all devices. On failure the previous list is kept.
func (l *DeviceList) Refresh(ctx context.Context) error {
	l.mu.Lock()
	l.loading = true
	l.mu.Unlock()

	devices, err := l.api.ListDevices(ctx)

	l.mu.Lock()
	defer l.mu.Unlock()
	l.loading = false

	if err != nil {
		l.logger.Error("fetching devices", "error", err)
		return fmt.Errorf("refreshing devices: %w", err)
	}

	l.cards = make([]domain.DeviceCard, 0, len(devices))
	l.byID = make(map[int]int, len(devices))
	l.byName = make(map[string]int, len(devices))
	for i, d := range devices {
		l.cards = append(l.cards, domain.NewDeviceCard(d))
		l.byID[d.ID] = i
		key := strings.ToLower(d.Name)
		if _, taken := l.byName[key]; !taken {
			l.byName[key] = i
		}
	}
	l.refreshed = time.Now()

	l.logger.Debug("devices refreshed", "count", len(l.cards))
	return nil
}

func (l *DeviceList) Devices() []domain.DeviceCard {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]domain.DeviceCard, len(l.cards))
	copy(out, l.cards)
	return out
}

// InRoom returns the devices whose room name equals room exactly.
func (l *DeviceList) InRoom(room string) []domain.DeviceCard {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []domain.DeviceCard
	for _, c := range l.cards {
		if c.RoomName == room {
			out = append(out, c)
		}
	}
	return out
}

func (l *DeviceList) Find(id int) (domain.DeviceCard, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	i, ok := l.byID[id]
	if !ok {
		return domain.DeviceCard{}, false
	}
	return l.cards[i], true
}

// FindByName tries an exact case-insensitive match, then a substring match.
func (l *DeviceList) FindByName(name string) (domain.DeviceCard, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return domain.DeviceCard{}, false
	}
	if i, ok := l.byName[key]; ok {
		return l.cards[i], true
	}
	for _, c := range l.cards {
		if strings.Contains(strings.ToLower(c.Name), key) {
			return c, true
		}
	}
	return domain.DeviceCard{}, false
}

func (l *DeviceList) Count() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.cards)
}

func (l *DeviceList) Loading() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.loading
}

// RefreshedAt is the time of the last successful refresh, zero before the first.
func (l *DeviceList) RefreshedAt() time.Time {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.refreshed
}
