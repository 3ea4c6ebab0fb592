package application

import (
	"context"

	"smartthingies/internal/domain"
)

// DevicesScreen lists every device of the home.
type DevicesScreen struct {
	devices *DeviceList
}

func NewDevicesScreen(devices *DeviceList) *DevicesScreen {
	return &DevicesScreen{devices: devices}
}

func (s *DevicesScreen) Focus(ctx context.Context) error {
	return s.devices.Refresh(ctx)
}

func (s *DevicesScreen) Devices() []domain.DeviceCard {
	return s.devices.Devices()
}

func (s *DevicesScreen) Count() int {
	return s.devices.Count()
}

type Profile struct {
	Name  string
	Email string
}

const (
	guestName  = "Guest"
	guestEmail = "noemail@unknown.com"
)

// SettingsScreen shows the profile and hosts logout.
type SettingsScreen struct {
	auth    *AuthStore
	session *SessionScreen
}

func NewSettingsScreen(auth *AuthStore, session *SessionScreen) *SettingsScreen {
	return &SettingsScreen{auth: auth, session: session}
}

func (s *SettingsScreen) Profile() Profile {
	user, ok := s.auth.User()
	if !ok {
		return Profile{Name: guestName, Email: guestEmail}
	}
	p := Profile{Name: user.FullName, Email: user.Email}
	if p.Name == "" {
		p.Name = guestName
	}
	if p.Email == "" {
		p.Email = guestEmail
	}
	return p
}

func (s *SettingsScreen) Notifications() []Notification {
	return MaintenanceNotifications()
}

func (s *SettingsScreen) Logout(ctx context.Context) error {
	return s.session.Logout(ctx)
}
