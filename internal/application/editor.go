package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"smartthingies/internal/domain"
)

// DeviceEdit names the fields to change on an existing device. Nil fields are kept.
type DeviceEdit struct {
	Name     *string
	TypeName *string
	RoomName *string
}

// DeviceEditor creates, updates and deletes devices. Names typed by the user are
// mapped through the domain catalog before anything is sent, and every successful
// write is followed by a full device refresh.
type DeviceEditor struct {
	api      DeviceService
	devices  *DeviceList
	notifier Notifier
	logger   *slog.Logger
}

func NewDeviceEditor(api DeviceService, devices *DeviceList, notifier Notifier, logger *slog.Logger) *DeviceEditor {
	return &DeviceEditor{
		api:      api,
		devices:  devices,
		notifier: notifier,
		logger:   logger,
	}
}

// Create adds a device. An unknown room aborts before the network call. An
// unrecognized type name is sent as the unknown type. An empty name falls back to
// the type's display name.
func (e *DeviceEditor) Create(ctx context.Context, name, typeName, roomName string) error {
	room, err := domain.ParseRoom(roomName)
	if err != nil {
		notify(ctx, e.notifier, e.logger, userMessage(err))
		return err
	}

	deviceType := domain.ParseDeviceType(typeName)
	name = strings.TrimSpace(name)
	if name == "" {
		name = deviceType.Name
	}

	err = e.api.CreateDevice(ctx, domain.NewDevice{
		Name:   name,
		TypeID: deviceType.ID,
		RoomID: room.ID,
	})
	if err != nil {
		e.logger.Error("creating device", "name", name, "error", err)
		notify(ctx, e.notifier, e.logger, "Could not add device: "+userMessage(err))
		return err
	}

	e.logger.Info("device created", "name", name, "type_id", deviceType.ID, "room_id", room.ID)
	notify(ctx, e.notifier, e.logger, fmt.Sprintf("%s has been added.", name))
	e.reconcile(ctx)
	return nil
}

func (e *DeviceEditor) Update(ctx context.Context, id int, edit DeviceEdit) error {
	var update domain.DeviceUpdate

	if edit.RoomName != nil {
		room, err := domain.ParseRoom(*edit.RoomName)
		if err != nil {
			notify(ctx, e.notifier, e.logger, userMessage(err))
			return err
		}
		update.RoomID = &room.ID
	}
	if edit.TypeName != nil {
		t := domain.ParseDeviceType(*edit.TypeName).ID
		update.TypeID = &t
	}
	if edit.Name != nil {
		name := strings.TrimSpace(*edit.Name)
		if name == "" {
			err := &domain.ValidationError{Field: "name", Reason: "name cannot be empty"}
			notify(ctx, e.notifier, e.logger, userMessage(err))
			return err
		}
		update.Name = &name
	}
	if update.Empty() {
		err := &domain.ValidationError{Field: "device", Reason: "nothing to update"}
		notify(ctx, e.notifier, e.logger, userMessage(err))
		return err
	}

	if err := e.api.UpdateDevice(ctx, id, update); err != nil {
		e.logger.Error("updating device", "id", id, "error", err)
		notify(ctx, e.notifier, e.logger, "Could not update device: "+userMessage(err))
		return err
	}

	e.logger.Info("device updated", "id", id)
	notify(ctx, e.notifier, e.logger, "Device updated.")
	e.reconcile(ctx)
	return nil
}

func (e *DeviceEditor) Delete(ctx context.Context, id int) error {
	if err := e.api.DeleteDevice(ctx, id); err != nil {
		e.logger.Error("deleting device", "id", id, "error", err)
		notify(ctx, e.notifier, e.logger, "Could not delete device: "+userMessage(err))
		return err
	}

	e.logger.Info("device deleted", "id", id)
	notify(ctx, e.notifier, e.logger, "Device deleted.")
	e.reconcile(ctx)
	return nil
}

// reconcile refreshes the device list after a write. A failed refresh does not
// undo the write; the list is simply stale until the next refresh.
func (e *DeviceEditor) reconcile(ctx context.Context) {
	if err := e.devices.Refresh(ctx); err != nil {
		e.logger.Warn("refresh after write failed", "error", err)
	}
}
