package application

import (
	"context"
	"log/slog"
	"sync"

	"smartthingies/internal/domain"
)

type Notification struct {
	ID      int
	Message string
}

// MaintenanceNotifications are the reminders shown on the dashboard and in settings.
func MaintenanceNotifications() []Notification {
	return []Notification{
		{ID: 1, Message: "Replace filter in Humidifier"},
		{ID: 2, Message: "Air Purifier needs maintenance"},
	}
}

// DashboardCard is a device in the selected room together with its local switch.
type DashboardCard struct {
	domain.DeviceCard
	Toggle domain.ToggleState
}

func (c DashboardCard) Status() string {
	if c.Toggle.IsOn {
		return "Running"
	}
	return "Standby"
}

type Dashboard struct {
	auth     *AuthStore
	devices  *DeviceList
	toggles  *ToggleStore
	lights   *LightStore
	notifier Notifier
	logger   *slog.Logger

	mu   sync.RWMutex
	room string
}

func NewDashboard(
	auth *AuthStore,
	devices *DeviceList,
	toggles *ToggleStore,
	lights *LightStore,
	notifier Notifier,
	logger *slog.Logger,
) *Dashboard {
	return &Dashboard{
		auth:     auth,
		devices:  devices,
		toggles:  toggles,
		lights:   lights,
		notifier: notifier,
		logger:   logger.With("screen", "dashboard"),
		room:     domain.Rooms()[0].Name,
	}
}

// Focus is called whenever the dashboard is shown. It requires a signed-in user
// and refetches the devices.
func (d *Dashboard) Focus(ctx context.Context) error {
	if _, ok := d.auth.User(); !ok {
		return ErrNotSignedIn
	}
	return d.devices.Refresh(ctx)
}

func (d *Dashboard) Refresh(ctx context.Context) error {
	return d.devices.Refresh(ctx)
}

func (d *Dashboard) SelectRoom(name string) error {
	room, err := domain.ParseRoom(name)
	if err != nil {
		return err
	}
	d.mu.Lock()
	d.room = room.Name
	d.mu.Unlock()
	return nil
}

func (d *Dashboard) Room() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.room
}

// Cards lists the devices of the selected room.
func (d *Dashboard) Cards() []DashboardCard {
	room := d.Room()
	var cards []DashboardCard
	for _, c := range d.devices.InRoom(room) {
		cards = append(cards, DashboardCard{DeviceCard: c, Toggle: d.toggles.State(c.ID)})
	}
	return cards
}

func (d *Dashboard) Loading() bool {
	return d.devices.Loading()
}

func (d *Dashboard) Toggle(id int) domain.ToggleState {
	return d.toggles.Toggle(id)
}

func (d *Dashboard) Lights() domain.LightLevels {
	return d.lights.Levels()
}

// SetMainLight commits a slider release.
func (d *Dashboard) SetMainLight(v float64) float64 {
	return d.lights.SetMainLight(v)
}

// SetFloorLamp commits a slider release.
func (d *Dashboard) SetFloorLamp(v float64) float64 {
	return d.lights.SetFloorLamp(v)
}

// RingBell shows every maintenance notification.
func (d *Dashboard) RingBell(ctx context.Context) {
	for _, n := range MaintenanceNotifications() {
		notify(ctx, d.notifier, d.logger, n.Message)
	}
}
