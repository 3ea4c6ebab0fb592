package devserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"smartthingies/internal/domain"
)

const maxBodyBytes = 1 << 20

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type registerRequest struct {
	FullName string `json:"fullname" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type createHomeRequest struct {
	UserID   int    `json:"user_id" validate:"gte=0"`
	HomeName string `json:"home_name" validate:"required"`
}

type createDeviceRequest struct {
	Name   string `json:"name" validate:"required"`
	TypeID int    `json:"type_id" validate:"required,gt=0"`
	RoomID int    `json:"room_id" validate:"required,gt=0"`
}

type updateDeviceRequest struct {
	Name   *string `json:"name" validate:"omitempty,min=1"`
	TypeID *int    `json:"type_id" validate:"omitempty,gt=0"`
	RoomID *int    `json:"room_id" validate:"omitempty,gt=0"`
}

type userResponse struct {
	ID       int    `json:"id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}

type loginResponse struct {
	User userResponse `json:"user"`
}

type homeResponse struct {
	ID       int    `json:"id"`
	HomeName string `json:"home_name"`
	UserID   int    `json:"user_id"`
}

type deviceResponse struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	TypeID   int    `json:"type_id"`
	Type     string `json:"type"`
	RoomID   int    `json:"room_id"`
	RoomName string `json:"room_name"`
	Image    string `json:"image"`
}

type detailResponse struct {
	Detail string `json:"detail"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !s.decode(w, r, &req) {
		return
	}

	u, err := s.store.authenticate(req.Email, req.Password)
	if err != nil {
		writeDetail(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{User: toUserResponse(u)})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !s.decode(w, r, &req) {
		return
	}

	u, err := s.store.register(strings.TrimSpace(req.FullName), req.Email, req.Password)
	if errors.Is(err, errEmailTaken) {
		writeDetail(w, http.StatusBadRequest, "Email already registered")
		return
	}
	if err != nil {
		s.logger.Error("registering user", "error", err)
		writeDetail(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(u))
}

func (s *Server) handleCreateHome(w http.ResponseWriter, r *http.Request) {
	var req createHomeRequest
	if !s.decode(w, r, &req) {
		return
	}

	h := s.store.createHome(req.UserID, strings.TrimSpace(req.HomeName))
	writeJSON(w, http.StatusOK, homeResponse{ID: h.ID, HomeName: h.Name, UserID: h.UserID})
}

func (s *Server) handleListDevices(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, toDeviceResponses(s.store.listDevices("")))
}

func (s *Server) handleSearchDevices(w http.ResponseWriter, r *http.Request) {
	keyword := r.URL.Query().Get("keyword")
	writeJSON(w, http.StatusOK, toDeviceResponses(s.store.listDevices(keyword)))
}

func (s *Server) handleCreateDevice(w http.ResponseWriter, r *http.Request) {
	var req createDeviceRequest
	if !s.decode(w, r, &req) {
		return
	}

	d, err := s.store.createDevice(strings.TrimSpace(req.Name), domain.TypeID(req.TypeID), domain.RoomID(req.RoomID))
	if err != nil {
		s.writeStoreError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toDeviceResponse(d))
}

func (s *Server) handleUpdateDevice(w http.ResponseWriter, r *http.Request) {
	id, ok := deviceID(w, r)
	if !ok {
		return
	}

	var req updateDeviceRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.Name == nil && req.TypeID == nil && req.RoomID == nil {
		writeDetail(w, http.StatusUnprocessableEntity, "Nothing to update")
		return
	}

	var patch devicePatch
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		patch.Name = &name
	}
	if req.TypeID != nil {
		t := domain.TypeID(*req.TypeID)
		patch.TypeID = &t
	}
	if req.RoomID != nil {
		room := domain.RoomID(*req.RoomID)
		patch.RoomID = &room
	}

	d, err := s.store.updateDevice(id, patch)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toDeviceResponse(d))
}

func (s *Server) handleDeleteDevice(w http.ResponseWriter, r *http.Request) {
	id, ok := deviceID(w, r)
	if !ok {
		return
	}

	if err := s.store.deleteDevice(id); err != nil {
		s.writeStoreError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, detailResponse{Detail: "Device deleted"})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// decode reads a JSON body into dst and validates it, answering 422 on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "Failed to read body")
		return false
	}
	if err := json.Unmarshal(body, dst); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "Invalid request body")
		return false
	}
	if err := s.validate.Struct(dst); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, validationDetail(err))
		return false
	}
	return true
}

func (s *Server) writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errDeviceNotFound):
		writeDetail(w, http.StatusNotFound, "Device not found")
	case errors.Is(err, errUnknownRoom):
		writeDetail(w, http.StatusBadRequest, "Room not found")
	default:
		s.logger.Error("device store", "error", err)
		writeDetail(w, http.StatusInternalServerError, "Internal Server Error")
	}
}

func validationDetail(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Invalid request body"
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fmt.Sprintf("%s failed %s", strings.ToLower(fe.Field()), fe.Tag()))
	}
	return "Invalid fields: " + strings.Join(fields, ", ")
}

func deviceID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil || id <= 0 {
		writeDetail(w, http.StatusUnprocessableEntity, "Invalid device id")
		return 0, false
	}
	return id, true
}

func toUserResponse(u user) userResponse {
	return userResponse{ID: u.ID, FullName: u.FullName, Email: u.Email}
}

func toDeviceResponse(d device) deviceResponse {
	t := domain.DeviceTypeByID(d.TypeID)
	room, _ := domain.RoomByID(d.RoomID)
	return deviceResponse{
		ID:       d.ID,
		Name:     d.Name,
		TypeID:   int(t.ID),
		Type:     t.Name,
		RoomID:   int(d.RoomID),
		RoomName: room.Name,
		Image:    "/assets/images/" + string(t.Image),
	}
}

func toDeviceResponses(devices []device) []deviceResponse {
	out := make([]deviceResponse, 0, len(devices))
	for _, d := range devices {
		out = append(out, toDeviceResponse(d))
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, detailResponse{Detail: detail})
}
