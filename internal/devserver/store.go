package devserver

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"smartthingies/internal/domain"
)

var (
	errEmailTaken         = errors.New("email already registered")
	errInvalidCredentials = errors.New("invalid email or password")
	errDeviceNotFound     = errors.New("device not found")
	errUnknownRoom        = errors.New("room not found")
)

type user struct {
	ID           int
	FullName     string
	Email        string
	PasswordHash []byte
}

type home struct {
	ID     int
	UserID int
	Name   string
}

type device struct {
	ID     int
	Name   string
	TypeID domain.TypeID
	RoomID domain.RoomID
}

// memoryStore holds every record in memory. Devices are global to the server, as
// the consumed API has no notion of per-user device lists.
type memoryStore struct {
	mu       sync.RWMutex
	hashCost int

	users   map[string]*user
	homes   map[int]home
	devices map[int]device

	nextUserID   int
	nextHomeID   int
	nextDeviceID int
}

func newMemoryStore(hashCost int) *memoryStore {
	return &memoryStore{
		hashCost:     hashCost,
		users:        make(map[string]*user),
		homes:        make(map[int]home),
		devices:      make(map[int]device),
		nextUserID:   1,
		nextHomeID:   1,
		nextDeviceID: 1,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *memoryStore) register(fullName, email, password string) (user, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return user{}, fmt.Errorf("hashing password: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := normalizeEmail(email)
	if _, exists := s.users[key]; exists {
		return user{}, errEmailTaken
	}

	u := &user{ID: s.nextUserID, FullName: fullName, Email: strings.TrimSpace(email), PasswordHash: hash}
	s.nextUserID++
	s.users[key] = u
	return *u, nil
}

func (s *memoryStore) authenticate(email, password string) (user, error) {
	s.mu.RLock()
	u, ok := s.users[normalizeEmail(email)]
	s.mu.RUnlock()

	if !ok {
		return user{}, errInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(password)); err != nil {
		return user{}, errInvalidCredentials
	}
	return *u, nil
}

func (s *memoryStore) createHome(userID int, name string) home {
	s.mu.Lock()
	defer s.mu.Unlock()

	h := home{ID: s.nextHomeID, UserID: userID, Name: name}
	s.nextHomeID++
	s.homes[h.ID] = h
	return h
}

func (s *memoryStore) createDevice(name string, typeID domain.TypeID, roomID domain.RoomID) (device, error) {
	if _, ok := domain.RoomByID(roomID); !ok {
		return device{}, errUnknownRoom
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	d := device{ID: s.nextDeviceID, Name: name, TypeID: typeID, RoomID: roomID}
	s.nextDeviceID++
	s.devices[d.ID] = d
	return d, nil
}

type devicePatch struct {
	Name   *string
	TypeID *domain.TypeID
	RoomID *domain.RoomID
}

func (s *memoryStore) updateDevice(id int, p devicePatch) (device, error) {
	if p.RoomID != nil {
		if _, ok := domain.RoomByID(*p.RoomID); !ok {
			return device{}, errUnknownRoom
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.devices[id]
	if !ok {
		return device{}, errDeviceNotFound
	}
	if p.Name != nil {
		d.Name = *p.Name
	}
	if p.TypeID != nil {
		d.TypeID = *p.TypeID
	}
	if p.RoomID != nil {
		d.RoomID = *p.RoomID
	}
	s.devices[id] = d
	return d, nil
}

func (s *memoryStore) deleteDevice(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.devices[id]; !ok {
		return errDeviceNotFound
	}
	delete(s.devices, id)
	return nil
}

// listDevices returns devices in id order. A non-empty keyword keeps devices whose
// name, type name or room name contains it, ignoring case.
func (s *memoryStore) listDevices(keyword string) []device {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keyword = strings.ToLower(strings.TrimSpace(keyword))

	out := make([]device, 0, len(s.devices))
	for _, d := range s.devices {
		if keyword == "" || d.matches(keyword) {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (d device) matches(keyword string) bool {
	room, _ := domain.RoomByID(d.RoomID)
	for _, field := range []string{d.Name, domain.DeviceTypeByID(d.TypeID).Name, room.Name} {
		if strings.Contains(strings.ToLower(field), keyword) {
			return true
		}
	}
	return false
}
