package domain

import "strings"

// DeviceType describes how a device type is shown.
type DeviceType struct {
	ID       TypeID
	Name     string
	Icon     string
	Function string
	Image    Asset
}

// Room is one of the fixed rooms of a home.
type Room struct {
	ID   RoomID
	Name string
}

var deviceTypes = []DeviceType{
	{ID: TypeVacuum, Name: "Vacuum cleaner", Icon: "vacuum", Function: "Clean home autonomously.", Image: AssetVacuum},
	{ID: TypeBulb, Name: "Smart bulb", Icon: "lightbulb-on-outline", Function: "Lighting for room.", Image: AssetBulb},
	{ID: TypeHumidifier, Name: "Humidifier", Icon: "air-humidifier", Function: "Adjusts humidity of room.", Image: AssetHumidifier},
	{ID: TypeUnknown, Name: "Unknown", Icon: "cog", Function: "Unknown", Image: AssetUnknown},
}

var rooms = []Room{
	{ID: RoomLiving, Name: "Living Room"},
	{ID: RoomBed, Name: "Bedroom"},
	{ID: RoomDining, Name: "Dining Room"},
}

// Image references as stored by the device service.
var imageRefs = map[string]Asset{
	"/assets/images/vacuum.png":     AssetVacuum,
	"/assets/images/bulb.png":       AssetBulb,
	"/assets/images/humidifier.png": AssetHumidifier,
	"/assets/images/unknown.png":    AssetUnknown,
}

// DeviceTypes returns the known device types, unknown last.
func DeviceTypes() []DeviceType {
	out := make([]DeviceType, len(deviceTypes))
	copy(out, deviceTypes)
	return out
}

// Rooms returns the fixed rooms in display order.
func Rooms() []Room {
	out := make([]Room, len(rooms))
	copy(out, rooms)
	return out
}

// DeviceTypeByID returns the type for id, or the unknown type.
func DeviceTypeByID(id TypeID) DeviceType {
	for _, t := range deviceTypes {
		if t.ID == id {
			return t
		}
	}
	return unknownType()
}

// ParseDeviceType maps a display name to a type. Names are matched case-insensitively;
// anything unmatched is the unknown type.
func ParseDeviceType(name string) DeviceType {
	key := strings.ToLower(strings.TrimSpace(name))
	for _, t := range deviceTypes {
		if strings.ToLower(t.Name) == key {
			return t
		}
	}
	return unknownType()
}

// ParseRoom maps an exact room name to a room.
func ParseRoom(name string) (Room, error) {
	for _, r := range rooms {
		if r.Name == name {
			return r, nil
		}
	}
	if strings.TrimSpace(name) == "" {
		return Room{}, &ValidationError{Field: "room", Reason: "no room selected"}
	}
	return Room{}, &ValidationError{Field: "room", Reason: "invalid room selected: " + name}
}

// RoomByID looks up a room by its service id.
func RoomByID(id RoomID) (Room, bool) {
	for _, r := range rooms {
		if r.ID == id {
			return r, true
		}
	}
	return Room{}, false
}

// ResolveImage maps a service image reference to a bundled asset.
func ResolveImage(ref string) Asset {
	if a, ok := imageRefs[ref]; ok {
		return a
	}
	return AssetUnknown
}

// NewDeviceCard resolves the display attributes of d.
func NewDeviceCard(d Device) DeviceCard {
	t := DeviceTypeByID(d.TypeID)
	if d.TypeID == 0 && d.TypeName != "" {
		t = ParseDeviceType(d.TypeName)
	}
	return DeviceCard{
		Device: d,
		Type:   t,
		Image:  ResolveImage(d.ImageRef),
	}
}

func unknownType() DeviceType {
	return deviceTypes[len(deviceTypes)-1]
}
