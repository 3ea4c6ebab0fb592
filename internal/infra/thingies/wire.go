package thingies

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"smartthingies/internal/domain"
)

type wireUser struct {
	ID       int    `json:"id" validate:"gte=0"`
	FullName string `json:"full_name" validate:"required"`
	Email    string `json:"email" validate:"required"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	User *wireUser `json:"user" validate:"required"`
}

type registerRequest struct {
	FullName string `json:"fullname" validate:"required"`
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type createHomeRequest struct {
	UserID   int    `json:"user_id" validate:"gte=0"`
	HomeName string `json:"home_name" validate:"required"`
}

type createHomeResponse struct {
	ID int `json:"id" validate:"gt=0"`
}

type wireDevice struct {
	ID       int    `json:"id" validate:"gt=0"`
	Name     string `json:"name" validate:"required"`
	TypeID   int    `json:"type_id" validate:"gte=0"`
	Type     string `json:"type"`
	RoomID   int    `json:"room_id" validate:"gte=0"`
	RoomName string `json:"room_name"`
	Image    string `json:"image"`
}

type errorResponse struct {
	Detail json.RawMessage `json:"detail"`
}

// decodeObject unmarshals body into out and checks its validate tags.
func decodeObject(v *validator.Validate, endpoint string, body []byte, out any) error {
	if err := json.Unmarshal(body, out); err != nil {
		return &domain.DecodeError{Endpoint: endpoint, Reason: err.Error()}
	}
	if err := v.Struct(out); err != nil {
		return &domain.DecodeError{Endpoint: endpoint, Reason: err.Error()}
	}
	return nil
}

func decodeDevices(v *validator.Validate, endpoint string, body []byte) ([]domain.Device, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, &domain.DecodeError{Endpoint: endpoint, Reason: "expected a list of devices"}
	}

	var records []wireDevice
	if err := json.Unmarshal(trimmed, &records); err != nil {
		return nil, &domain.DecodeError{Endpoint: endpoint, Reason: err.Error()}
	}

	seen := make(map[int]struct{}, len(records))
	devices := make([]domain.Device, 0, len(records))
	for i, r := range records {
		if err := v.Struct(r); err != nil {
			return nil, &domain.DecodeError{Endpoint: endpoint, Reason: fmt.Sprintf("device %d: %v", i, err)}
		}
		if _, dup := seen[r.ID]; dup {
			return nil, &domain.DecodeError{Endpoint: endpoint, Reason: fmt.Sprintf("duplicate device id %d", r.ID)}
		}
		seen[r.ID] = struct{}{}
		devices = append(devices, r.toDomain())
	}

	return devices, nil
}

func (r wireDevice) toDomain() domain.Device {
	var t domain.DeviceType
	if r.TypeID == 0 {
		t = domain.ParseDeviceType(r.Type)
	} else {
		t = domain.DeviceTypeByID(domain.TypeID(r.TypeID))
	}

	typeName := r.Type
	if typeName == "" {
		typeName = t.Name
	}

	roomName := r.RoomName
	if roomName == "" {
		if room, ok := domain.RoomByID(domain.RoomID(r.RoomID)); ok {
			roomName = room.Name
		}
	}

	return domain.Device{
		ID:       r.ID,
		Name:     r.Name,
		TypeID:   t.ID,
		TypeName: typeName,
		RoomID:   domain.RoomID(r.RoomID),
		RoomName: roomName,
		ImageRef: r.Image,
	}
}

func (u wireUser) toDomain() *domain.User {
	return &domain.User{ID: u.ID, FullName: u.FullName, Email: u.Email}
}

// errorDetail extracts a human readable message from an error body. The service
// answers {"detail": "..."} or, for request validation failures, a list.
func errorDetail(body []byte) string {
	var resp errorResponse
	if err := json.Unmarshal(body, &resp); err == nil && len(resp.Detail) > 0 {
		var s string
		if err := json.Unmarshal(resp.Detail, &s); err == nil {
			return s
		}
		return string(resp.Detail)
	}

	text := strings.TrimSpace(string(body))
	if len(text) > 200 {
		text = text[:200]
	}
	return text
}
