package application_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"smartthingies/internal/application"
	"smartthingies/internal/domain"
)

func TestDashboard_FocusRequiresUser(t *testing.T) {
	remote := &mockRemote{devices: sampleDevices()}
	app := application.NewApp(remote, newMemoryKV(), &application.NoopNotifier{}, discardLogger())

	if err := app.Dashboard.Focus(context.Background()); !errors.Is(err, application.ErrNotSignedIn) {
		t.Errorf("expected ErrNotSignedIn, got %v", err)
	}
	if remote.listCalls != 0 {
		t.Error("devices fetched without a user")
	}
}

func TestDashboard_CardsForRoom(t *testing.T) {
	remote := &mockRemote{devices: sampleDevices()}
	app := application.NewApp(remote, newMemoryKV(), &application.NoopNotifier{}, discardLogger())
	app.Auth.SetUser(domain.User{ID: 1})
	ctx := context.Background()

	if err := app.Dashboard.Focus(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if app.Dashboard.Room() != "Living Room" {
		t.Errorf("default room: got %q", app.Dashboard.Room())
	}

	cards := app.Dashboard.Cards()
	if len(cards) != 2 {
		t.Fatalf("living room cards: got %d, want 2", len(cards))
	}
	if cards[0].Status() != "Standby" {
		t.Errorf("status: got %q", cards[0].Status())
	}

	app.Dashboard.Toggle(cards[0].ID)
	if got := app.Dashboard.Cards()[0].Status(); got != "Running" {
		t.Errorf("status after toggle: got %q", got)
	}
	if !app.Toggles.State(cards[0].ID).IsOn {
		t.Error("dashboard and store disagree")
	}

	if err := app.Dashboard.SelectRoom("Bedroom"); err != nil {
		t.Fatalf("SelectRoom: %v", err)
	}
	if got := len(app.Dashboard.Cards()); got != 1 {
		t.Errorf("bedroom cards: got %d, want 1", got)
	}
	if err := app.Dashboard.SelectRoom("Garage"); err == nil {
		t.Error("expected error for unknown room")
	}
}

func TestDashboard_LightsAndBell(t *testing.T) {
	kv := newMemoryKV()
	notifier := &recordingNotifier{}
	app := application.NewApp(&mockRemote{}, kv, notifier, discardLogger())
	app.Start(context.Background())

	if got := app.Dashboard.SetMainLight(1.8); got != 1 {
		t.Errorf("clamped main light: got %v", got)
	}
	app.Dashboard.SetFloorLamp(0.25)
	app.Close()

	if v, _ := kv.value(application.KeyFloorLampValue); v != "0.25" {
		t.Errorf("floor lamp persisted: got %q", v)
	}

	app.Dashboard.RingBell(context.Background())
	if len(notifier.messages) != 2 {
		t.Fatalf("notices: got %d, want 2", len(notifier.messages))
	}
	if notifier.messages[0] != "Replace filter in Humidifier" {
		t.Errorf("first notice: got %q", notifier.messages[0])
	}
}

func TestBuildSearchItems_Truncates(t *testing.T) {
	var devices []domain.Device
	for i := 1; i <= 8; i++ {
		devices = append(devices, domain.Device{ID: i, Name: fmt.Sprintf("Lamp %d", i), TypeID: domain.TypeBulb})
	}

	items := application.BuildSearchItems(devices)

	if len(items) != application.SearchLimit+1 {
		t.Fatalf("items: got %d, want %d", len(items), application.SearchLimit+1)
	}
	for i := 0; i < application.SearchLimit; i++ {
		if items[i].Manual || items[i].Card.ID != i+1 {
			t.Errorf("item %d: got %+v", i, items[i])
		}
	}
	if !items[len(items)-1].Manual {
		t.Error("last item should be the manual entry")
	}
}

func TestBuildSearchItems_Empty(t *testing.T) {
	items := application.BuildSearchItems(nil)
	if len(items) != 1 || !items[0].Manual {
		t.Errorf("items: got %+v", items)
	}
}

func TestSearchScreen_QueryAndAdd(t *testing.T) {
	remote := &mockRemote{devices: sampleDevices()}
	notifier := &recordingNotifier{}
	app := application.NewApp(remote, newMemoryKV(), notifier, discardLogger())
	ctx := context.Background()

	items, err := app.Search.Query(ctx, "lamp")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 2 || app.Search.Count() != 1 {
		t.Fatalf("items: got %d, count %d", len(items), app.Search.Count())
	}

	item, err := app.Search.Pick(0)
	if err != nil {
		t.Fatalf("Pick: %v", err)
	}
	if err := app.Search.ConfirmAdd(ctx, item, "", "Dining Room"); err != nil {
		t.Fatalf("ConfirmAdd: %v", err)
	}

	created := remote.created[0]
	if created.Name != "Desk Lamp" || created.TypeID != domain.TypeBulb || created.RoomID != domain.RoomDining {
		t.Errorf("created: got %+v", created)
	}
	if notifier.last() != "Desk Lamp has been added." {
		t.Errorf("notice: got %q", notifier.last())
	}
	if app.Devices.Count() != 4 {
		t.Errorf("device list not reconciled: got %d", app.Devices.Count())
	}
}

func TestSearchScreen_ConfirmAddNameFallback(t *testing.T) {
	remote := &mockRemote{}
	app := application.NewApp(remote, newMemoryKV(), &application.NoopNotifier{}, discardLogger())

	item := application.SearchItem{Card: domain.NewDeviceCard(domain.Device{ID: 5, TypeID: domain.TypeVacuum})}
	if err := app.Search.ConfirmAdd(context.Background(), item, "", "Bedroom"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := remote.created[0].Name; got != "Unnamed Device" {
		t.Errorf("name: got %q", got)
	}

	if err := app.Search.ConfirmAdd(context.Background(), application.SearchItem{Manual: true}, "", "Bedroom"); err == nil {
		t.Error("expected error for manual entry")
	}
}

func TestSearchScreen_FailureKeepsResults(t *testing.T) {
	remote := &mockRemote{devices: sampleDevices()}
	app := application.NewApp(remote, newMemoryKV(), &application.NoopNotifier{}, discardLogger())
	ctx := context.Background()

	_, _ = app.Search.Query(ctx, "o")
	before := app.Search.Count()

	remote.searchErr = errors.New("connection refused")
	if _, err := app.Search.Query(ctx, "mist"); err == nil {
		t.Fatal("expected error")
	}
	if app.Search.Count() != before {
		t.Errorf("count: got %d, want %d", app.Search.Count(), before)
	}
}

func TestSearchScreen_AddManual(t *testing.T) {
	remote := &mockRemote{}
	app := application.NewApp(remote, newMemoryKV(), &application.NoopNotifier{}, discardLogger())

	if err := app.Search.AddManual(context.Background(), "Fan", "Ceiling fan", "Living Room"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := remote.created[0].TypeID; got != domain.TypeUnknown {
		t.Errorf("type: got %d", got)
	}
}

func TestDevicesScreen(t *testing.T) {
	remote := &mockRemote{devices: sampleDevices()}
	app := application.NewApp(remote, newMemoryKV(), &application.NoopNotifier{}, discardLogger())

	if err := app.List.Focus(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if app.List.Count() != 3 || len(app.List.Devices()) != 3 {
		t.Errorf("count: got %d", app.List.Count())
	}
}

func TestSettingsScreen_Profile(t *testing.T) {
	app := application.NewApp(&mockRemote{}, newMemoryKV(), &application.NoopNotifier{}, discardLogger())
	app.Auth.SetUser(domain.User{FullName: "Ada", Email: "ada@example.com"})

	p := app.Settings.Profile()
	if p.Name != "Ada" || p.Email != "ada@example.com" {
		t.Errorf("profile: got %+v", p)
	}
	if len(app.Settings.Notifications()) != 2 {
		t.Error("expected two maintenance notifications")
	}
}
