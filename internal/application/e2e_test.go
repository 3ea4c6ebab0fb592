package application_test

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"smartthingies/internal/application"
	"smartthingies/internal/devserver"
	"smartthingies/internal/infra/sqlite"
	"smartthingies/internal/infra/thingies"
)

func TestApp_AgainstDevServer(t *testing.T) {
	logger := discardLogger()
	ctx := context.Background()

	srv := httptest.NewServer(devserver.New(devserver.Config{HashCost: bcrypt.MinCost}, logger).Handler())
	defer srv.Close()

	store, err := sqlite.Open(sqlite.Config{Path: filepath.Join(t.TempDir(), "state.db"), BusyTimeout: 1})
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	defer store.Close()

	client := thingies.NewClient(srv.URL, 5*time.Second, logger)
	app := application.NewApp(client, store, &application.NoopNotifier{}, logger)
	app.Start(ctx)
	defer app.Close()

	if _, err := app.Session.Register(ctx, application.Registration{FullName: "Ada", Email: "ada@example.com", Password: "engine"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := app.Session.Logout(ctx); err != nil {
		t.Fatalf("logout: %v", err)
	}

	user, err := app.Session.Login(ctx, application.Credentials{Email: "ada@example.com", Password: "engine", Remember: true})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	got, ok := app.Auth.User()
	if !ok || got != user {
		t.Fatalf("auth store: got %+v, %v, want %+v", got, ok, user)
	}
	if app.Settings.Profile().Name != "Ada" {
		t.Errorf("profile: got %+v", app.Settings.Profile())
	}

	onboarding := app.NewOnboarding()
	if err := onboarding.NameHome(ctx, "Cabin"); err != nil {
		t.Fatalf("NameHome: %v", err)
	}
	if err := onboarding.SelectRoom(ctx, "Living Room"); err != nil {
		t.Fatalf("SelectRoom: %v", err)
	}
	if err := onboarding.SelectDevice(ctx, "Smart bulb"); err != nil {
		t.Fatalf("SelectDevice: %v", err)
	}

	if err := app.Dashboard.Focus(ctx); err != nil {
		t.Fatalf("dashboard focus: %v", err)
	}
	cards := app.Dashboard.Cards()
	if len(cards) != 1 || cards[0].Name != "Smart bulb" {
		t.Fatalf("cards: got %+v", cards)
	}

	if err := app.Editor.Create(ctx, "Robo", "Vacuum cleaner", "Atlantis"); err == nil {
		t.Error("expected unknown room to fail")
	}

	items, err := app.Search.Query(ctx, "bulb")
	if err != nil || len(items) != 2 {
		t.Fatalf("search: got %d items, err %v", len(items), err)
	}

	app.Dashboard.SetMainLight(0.65)
	app.Close()

	if err := app.Settings.Logout(ctx); err != nil {
		t.Fatalf("logout: %v", err)
	}

	restarted := application.NewApp(client, store, &application.NoopNotifier{}, logger)
	restarted.Start(ctx)
	if got := restarted.Lights.Levels().MainLight; got != 0.65 {
		t.Errorf("main light after restart: got %v, want 0.65", got)
	}
	if restarted.Session.WasLoggedIn(ctx) {
		t.Error("login flag should be gone after logout")
	}
	if restarted.Session.RememberedEmail(ctx) != "ada@example.com" {
		t.Errorf("remembered email: got %q", restarted.Session.RememberedEmail(ctx))
	}
}
