package application

import (
	"context"

	"smartthingies/internal/domain"
)

type AuthService interface {
	Login(ctx context.Context, email, password string) (*domain.User, error)
	Register(ctx context.Context, fullName, email, password string) (*domain.User, error)
}

type HomeService interface {
	CreateHome(ctx context.Context, userID int, name string) (int, error)
}

type DeviceService interface {
	ListDevices(ctx context.Context) ([]domain.Device, error)
	SearchDevices(ctx context.Context, keyword string) ([]domain.Device, error)
	CreateDevice(ctx context.Context, d domain.NewDevice) error
	UpdateDevice(ctx context.Context, id int, u domain.DeviceUpdate) error
	DeleteDevice(ctx context.Context, id int) error
}

// RemoteService is everything the client asks of the device service.
type RemoteService interface {
	AuthService
	HomeService
	DeviceService
}

// KeyValueStore persists plain string flags on the device.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
}

// Persisted keys. Values are plain strings with no schema versioning.
const (
	KeyIsLoggedIn         = "isLoggedIn"
	KeyUserEmail          = "userEmail"
	KeyHomeID             = "homeId"
	KeyHomeName           = "homeName"
	KeySelectedRoom       = "selectedRoom"
	KeySelectedDeviceType = "selectedDeviceType"
	KeyMainLightValue     = "mainLightValue"
	KeyFloorLampValue     = "floorLampValue"
)
