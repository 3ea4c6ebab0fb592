package domain

// TypeID is the service-side identifier of a device type.
type TypeID int

const (
	TypeVacuum     TypeID = 1
	TypeBulb       TypeID = 2
	TypeHumidifier TypeID = 3
	TypeUnknown    TypeID = 7
)

// RoomID is the service-side identifier of a room.
type RoomID int

const (
	RoomLiving RoomID = 2
	RoomBed    RoomID = 3
	RoomDining RoomID = 4
)

// Asset names a bundled device image.
type Asset string

const (
	AssetVacuum     Asset = "vacuum.png"
	AssetBulb       Asset = "bulb.png"
	AssetHumidifier Asset = "humidifier.png"
	AssetUnknown    Asset = "unknown.png"
)

// Device is a record returned by the remote device service.
type Device struct {
	ID       int
	Name     string
	TypeID   TypeID
	TypeName string
	RoomID   RoomID
	RoomName string
	ImageRef string
}

// DeviceCard is a device as presented on screen.
type DeviceCard struct {
	Device
	Type  DeviceType
	Image Asset
}

// NewDevice is the payload of a create-device call.
type NewDevice struct {
	Name   string `json:"name" validate:"required"`
	TypeID TypeID `json:"type_id" validate:"required,gt=0"`
	RoomID RoomID `json:"room_id" validate:"required,gt=0"`
}

// DeviceUpdate carries the fields of a partial update. Nil fields are left untouched.
type DeviceUpdate struct {
	Name   *string `json:"name,omitempty" validate:"omitempty,min=1"`
	TypeID *TypeID `json:"type_id,omitempty"`
	RoomID *RoomID `json:"room_id,omitempty"`
}

// Empty reports whether the update carries no fields.
func (u DeviceUpdate) Empty() bool {
	return u.Name == nil && u.TypeID == nil && u.RoomID == nil
}
