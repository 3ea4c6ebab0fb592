package application_test

import (
	"context"
	"errors"
	"testing"

	"smartthingies/internal/application"
	"smartthingies/internal/domain"
)

func newOnboarding(remote *mockRemote, kv *memoryKV, signedIn bool) *application.Onboarding {
	app := application.NewApp(remote, kv, &application.NoopNotifier{}, discardLogger())
	if signedIn {
		app.Auth.SetUser(domain.User{ID: 3, Email: "ada@example.com"})
	}
	return app.NewOnboarding()
}

func TestOnboarding_HappyPath(t *testing.T) {
	remote := &mockRemote{homeID: 12}
	kv := newMemoryKV()
	o := newOnboarding(remote, kv, true)
	ctx := context.Background()

	if err := o.NameHome(ctx, "Beach House"); err != nil {
		t.Fatalf("NameHome: %v", err)
	}
	if o.Step() != application.StepSelectingRoom {
		t.Errorf("step: got %s", o.Step())
	}
	if err := o.SelectRoom(ctx, "Bedroom"); err != nil {
		t.Fatalf("SelectRoom: %v", err)
	}
	if err := o.SelectDevice(ctx, "Humidifier"); err != nil {
		t.Fatalf("SelectDevice: %v", err)
	}
	if o.Step() != application.StepDone {
		t.Errorf("step: got %s, want done", o.Step())
	}

	draft, err := o.Draft(ctx)
	if err != nil {
		t.Fatalf("Draft: %v", err)
	}
	want := domain.SetupDraft{HomeID: "12", HomeName: "Beach House", SelectedRoom: "Bedroom", SelectedDeviceType: "Humidifier"}
	if draft != want {
		t.Errorf("draft: got %+v, want %+v", draft, want)
	}

	if len(remote.created) != 1 {
		t.Fatalf("created: got %d, want 1", len(remote.created))
	}
	created := remote.created[0]
	if created.RoomID != domain.RoomBed || created.TypeID != domain.TypeHumidifier || created.Name != "Humidifier" {
		t.Errorf("created: got %+v", created)
	}
}

func TestOnboarding_RequiresUser(t *testing.T) {
	remote := &mockRemote{homeID: 1}
	o := newOnboarding(remote, newMemoryKV(), false)

	err := o.NameHome(context.Background(), "Home")
	if !errors.Is(err, application.ErrNotSignedIn) {
		t.Errorf("expected ErrNotSignedIn, got %v", err)
	}
	if len(remote.homeCalls) != 0 {
		t.Error("home should not be created without a user")
	}
}

func TestOnboarding_StepsInOrder(t *testing.T) {
	o := newOnboarding(&mockRemote{}, newMemoryKV(), true)

	if err := o.SelectRoom(context.Background(), "Bedroom"); !errors.Is(err, application.ErrStepOutOfOrder) {
		t.Errorf("SelectRoom first: got %v", err)
	}
	if err := o.SelectDevice(context.Background(), "Humidifier"); !errors.Is(err, application.ErrStepOutOfOrder) {
		t.Errorf("SelectDevice first: got %v", err)
	}
}

func TestOnboarding_PersistFailureBlocksStep(t *testing.T) {
	kv := newMemoryKV()
	kv.setErr[application.KeyHomeName] = errStorage
	o := newOnboarding(&mockRemote{homeID: 4}, kv, true)

	err := o.NameHome(context.Background(), "Cabin")
	if !errors.Is(err, errStorage) {
		t.Fatalf("expected storage error, got %v", err)
	}
	if o.Step() != application.StepNamingHome {
		t.Errorf("step: got %s, want naming_home", o.Step())
	}
}

func TestOnboarding_InvalidInput(t *testing.T) {
	remote := &mockRemote{homeID: 4}
	o := newOnboarding(remote, newMemoryKV(), true)
	ctx := context.Background()

	var verr *domain.ValidationError
	if err := o.NameHome(ctx, "   "); !errors.As(err, &verr) {
		t.Errorf("blank home name: got %v", err)
	}

	_ = o.NameHome(ctx, "Cabin")
	if err := o.SelectRoom(ctx, "Attic"); !errors.As(err, &verr) {
		t.Errorf("bad room: got %v", err)
	}
	if o.Step() != application.StepSelectingRoom {
		t.Errorf("step: got %s", o.Step())
	}

	_ = o.SelectRoom(ctx, "Living Room")
	if err := o.SelectDevice(ctx, ""); !errors.As(err, &verr) {
		t.Errorf("empty device: got %v", err)
	}
	if len(remote.created) != 0 {
		t.Error("no device should be created")
	}
}
