package application_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"

	"smartthingies/internal/application"
	"smartthingies/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type mockRemote struct {
	mu sync.Mutex

	user     *domain.User
	loginErr error
	homeID   int
	homeErr  error

	devices   []domain.Device
	listErr   error
	searchErr error
	writeErr  error

	loginCalls  int
	homeCalls   []string
	listCalls   int
	searchCalls []string
	created     []domain.NewDevice
	updated     map[int]domain.DeviceUpdate
	deleted     []int
}

func (m *mockRemote) Login(_ context.Context, email, _ string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loginCalls++
	if m.loginErr != nil {
		return nil, m.loginErr
	}
	if m.user != nil {
		u := *m.user
		return &u, nil
	}
	return &domain.User{ID: 1, FullName: "Ada Lovelace", Email: email}, nil
}

func (m *mockRemote) Register(_ context.Context, fullName, email, _ string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loginErr != nil {
		return nil, m.loginErr
	}
	return &domain.User{ID: 2, FullName: fullName, Email: email}, nil
}

func (m *mockRemote) CreateHome(_ context.Context, _ int, name string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.homeCalls = append(m.homeCalls, name)
	if m.homeErr != nil {
		return 0, m.homeErr
	}
	return m.homeID, nil
}

func (m *mockRemote) ListDevices(_ context.Context) ([]domain.Device, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listCalls++
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]domain.Device, len(m.devices))
	copy(out, m.devices)
	return out, nil
}

func (m *mockRemote) SearchDevices(_ context.Context, keyword string) ([]domain.Device, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.searchCalls = append(m.searchCalls, keyword)
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	var out []domain.Device
	for _, d := range m.devices {
		if strings.Contains(strings.ToLower(d.Name), strings.ToLower(keyword)) {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *mockRemote) CreateDevice(_ context.Context, d domain.NewDevice) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return m.writeErr
	}
	m.created = append(m.created, d)
	room, _ := domain.RoomByID(d.RoomID)
	m.devices = append(m.devices, domain.Device{
		ID:       len(m.devices) + 100,
		Name:     d.Name,
		TypeID:   d.TypeID,
		TypeName: domain.DeviceTypeByID(d.TypeID).Name,
		RoomID:   d.RoomID,
		RoomName: room.Name,
	})
	return nil
}

func (m *mockRemote) UpdateDevice(_ context.Context, id int, u domain.DeviceUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return m.writeErr
	}
	if m.updated == nil {
		m.updated = make(map[int]domain.DeviceUpdate)
	}
	m.updated[id] = u
	for i := range m.devices {
		if m.devices[i].ID == id && u.Name != nil {
			m.devices[i].Name = *u.Name
		}
	}
	return nil
}

func (m *mockRemote) DeleteDevice(_ context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return m.writeErr
	}
	m.deleted = append(m.deleted, id)
	kept := m.devices[:0]
	for _, d := range m.devices {
		if d.ID != id {
			kept = append(kept, d)
		}
	}
	m.devices = kept
	return nil
}

func (m *mockRemote) networkCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loginCalls + len(m.homeCalls) + m.listCalls + len(m.searchCalls) +
		len(m.created) + len(m.updated) + len(m.deleted)
}

var errStorage = errors.New("disk full")

type memoryKV struct {
	mu        sync.Mutex
	values    map[string]string
	setErr    map[string]error
	deleteErr error
	sets      int
}

func newMemoryKV() *memoryKV {
	return &memoryKV{values: make(map[string]string), setErr: make(map[string]error)}
}

func (m *memoryKV) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *memoryKV) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.setErr[key]; err != nil {
		return err
	}
	m.sets++
	m.values[key] = value
	return nil
}

func (m *memoryKV) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteErr != nil {
		return m.deleteErr
	}
	for _, k := range keys {
		delete(m.values, k)
	}
	return nil
}

func (m *memoryKV) value(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok
}

type recordingNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (r *recordingNotifier) Notify(_ context.Context, message string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, message)
	return nil
}

func (r *recordingNotifier) last() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.messages) == 0 {
		return ""
	}
	return r.messages[len(r.messages)-1]
}

func sampleDevices() []domain.Device {
	return []domain.Device{
		{ID: 1, Name: "Robo", TypeID: domain.TypeVacuum, TypeName: "Vacuum cleaner", RoomID: domain.RoomLiving, RoomName: "Living Room"},
		{ID: 2, Name: "Desk Lamp", TypeID: domain.TypeBulb, TypeName: "Smart bulb", RoomID: domain.RoomBed, RoomName: "Bedroom"},
		{ID: 3, Name: "Mist", TypeID: domain.TypeHumidifier, TypeName: "Humidifier", RoomID: domain.RoomLiving, RoomName: "Living Room"},
	}
}

var _ application.RemoteService = (*mockRemote)(nil)
var _ application.KeyValueStore = (*memoryKV)(nil)
