package application

import (
	"context"
	"log/slog"
)

// App owns the client state and hands the same store instances to every screen.
type App struct {
	Auth    *AuthStore
	Toggles *ToggleStore
	Lights  *LightStore
	Devices *DeviceList

	Editor    *DeviceEditor
	Session   *SessionScreen
	Dashboard *Dashboard
	Search    *SearchScreen
	List      *DevicesScreen
	Settings  *SettingsScreen

	remote   RemoteService
	kv       KeyValueStore
	notifier Notifier
	logger   *slog.Logger
}

func NewApp(remote RemoteService, kv KeyValueStore, notifier Notifier, logger *slog.Logger) *App {
	auth := NewAuthStore()
	toggles := NewToggleStore()
	lights := NewLightStore(kv, logger.With("store", "lights"))
	devices := NewDeviceList(remote, logger.With("store", "devices"))
	editor := NewDeviceEditor(remote, devices, notifier, logger.With("flow", "editor"))
	session := NewSessionScreen(auth, remote, kv, notifier, logger)

	return &App{
		Auth:      auth,
		Toggles:   toggles,
		Lights:    lights,
		Devices:   devices,
		Editor:    editor,
		Session:   session,
		Dashboard: NewDashboard(auth, devices, toggles, lights, notifier, logger),
		Search:    NewSearchScreen(remote, editor, notifier, logger),
		List:      NewDevicesScreen(devices),
		Settings:  NewSettingsScreen(auth, session),
		remote:    remote,
		kv:        kv,
		notifier:  notifier,
		logger:    logger,
	}
}

// Start restores persisted state.
func (a *App) Start(ctx context.Context) {
	a.Lights.Load(ctx)
	a.logger.Info("client state restored",
		"main_light", a.Lights.Levels().MainLight,
		"floor_lamp", a.Lights.Levels().FloorLamp,
		"was_logged_in", a.Session.WasLoggedIn(ctx),
	)
}

// NewOnboarding begins a fresh setup run.
func (a *App) NewOnboarding() *Onboarding {
	return NewOnboarding(a.Auth, a.remote, a.Editor, a.kv, a.notifier, a.logger)
}

// Close waits for pending background writes.
func (a *App) Close() {
	a.Lights.Wait()
}
