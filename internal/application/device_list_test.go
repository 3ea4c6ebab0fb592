package application_test

import (
	"context"
	"errors"
	"testing"

	"smartthingies/internal/application"
	"smartthingies/internal/domain"
)

func TestDeviceList_RefreshReplacesWholesale(t *testing.T) {
	remote := &mockRemote{devices: sampleDevices()}
	list := application.NewDeviceList(remote, discardLogger())

	if !list.RefreshedAt().IsZero() {
		t.Error("expected zero refresh time before first refresh")
	}
	if err := list.Refresh(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if list.Count() != 3 {
		t.Fatalf("count: got %d, want 3", list.Count())
	}

	remote.devices = remote.devices[:1]
	if err := list.Refresh(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	devices := list.Devices()
	if len(devices) != 1 || devices[0].ID != 1 {
		t.Errorf("devices: got %+v", devices)
	}
	if _, ok := list.Find(2); ok {
		t.Error("stale device still indexed")
	}
}

func TestDeviceList_RefreshFailureKeepsPrevious(t *testing.T) {
	remote := &mockRemote{devices: sampleDevices()}
	list := application.NewDeviceList(remote, discardLogger())
	_ = list.Refresh(context.Background())

	remote.listErr = &domain.DecodeError{Endpoint: "/get-devices", Reason: "not an array"}
	err := list.Refresh(context.Background())

	var derr *domain.DecodeError
	if !errors.As(err, &derr) {
		t.Fatalf("expected DecodeError, got %v", err)
	}
	if list.Count() != 3 {
		t.Errorf("count: got %d, want 3", list.Count())
	}
	if list.Loading() {
		t.Error("loading should be reset after failure")
	}
}

func TestDeviceList_InRoomIsExact(t *testing.T) {
	remote := &mockRemote{devices: sampleDevices()}
	list := application.NewDeviceList(remote, discardLogger())
	_ = list.Refresh(context.Background())

	if got := len(list.InRoom("Living Room")); got != 2 {
		t.Errorf("living room: got %d, want 2", got)
	}
	if got := len(list.InRoom("living room")); got != 0 {
		t.Errorf("lowercase room: got %d, want 0", got)
	}
}

func TestDeviceList_FindByName(t *testing.T) {
	remote := &mockRemote{devices: sampleDevices()}
	list := application.NewDeviceList(remote, discardLogger())
	_ = list.Refresh(context.Background())

	tests := []struct {
		query  string
		wantID int
		found  bool
	}{
		{"desk lamp", 2, true},
		{"MIST", 3, true},
		{"lamp", 2, true},
		{"", 0, false},
		{"fridge", 0, false},
	}

	for _, tt := range tests {
		c, ok := list.FindByName(tt.query)
		if ok != tt.found || (ok && c.ID != tt.wantID) {
			t.Errorf("FindByName(%q): got %d/%v, want %d/%v", tt.query, c.ID, ok, tt.wantID, tt.found)
		}
	}
}

func TestDeviceList_CardsResolveType(t *testing.T) {
	remote := &mockRemote{devices: []domain.Device{
		{ID: 7, Name: "Thing", TypeID: 99, RoomName: "Bedroom", ImageRef: "/assets/images/bulb.png"},
	}}
	list := application.NewDeviceList(remote, discardLogger())
	_ = list.Refresh(context.Background())

	c, _ := list.Find(7)
	if c.Type.ID != domain.TypeUnknown {
		t.Errorf("type: got %d, want %d", c.Type.ID, domain.TypeUnknown)
	}
	if c.Image != domain.AssetBulb {
		t.Errorf("image: got %s, want %s", c.Image, domain.AssetBulb)
	}
}
