package server

import (
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"govent/internal/auth"
)

// pathMemberID parses the {id} segment and enforces that a member may only
// touch their own record. Returns 0 after writing the response on failure.
func pathMemberID(w http.ResponseWriter, r *http.Request) int {
	claims := claimsFromContext(r.Context())
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid member id")
		return 0
	}
	if claims.UserID != id {
		writeFailure(w, http.StatusForbidden, "Cannot access another member's account")
		return 0
	}
	return id
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id := pathMemberID(w, r)
	if id == 0 {
		return
	}

	user, err := s.Users.FindByID(r.Context(), id)
	if err != nil {
		log.Printf("get member %d failed: %v", id, err)
		writeFailure(w, http.StatusInternalServerError, "Failed to load member")
		return
	}
	if user == nil {
		writeFailure(w, http.StatusNotFound, "Member not found")
		return
	}

	organizerID, err := s.Users.OrganizerID(r.Context(), user.ID)
	if err != nil {
		log.Printf("get member %d: organizer lookup failed: %v", id, err)
		writeFailure(w, http.StatusInternalServerError, "Failed to load member")
		return
	}

	writeSuccess(w, map[string]interface{}{"user": userPayload(user, organizerID)})
}

type updateProfileRequest struct {
	Name     *string `json:"name"`
	Gender   *string `json:"gender"`
	Birthday *string `json:"birthday"`
	Phone    *string `json:"phone"`
	Address  *string `json:"address"`
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	id := pathMemberID(w, r)
	if id == 0 {
		return
	}

	var req updateProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Name != nil && *req.Name == "" {
		writeFailure(w, http.StatusBadRequest, "Name cannot be empty")
		return
	}

	user, err := s.Users.UpdateProfile(r.Context(), id, auth.ProfileUpdate{
		Name:     req.Name,
		Gender:   req.Gender,
		Birthday: req.Birthday,
		Phone:    req.Phone,
		Address:  req.Address,
	})
	if err != nil {
		log.Printf("update profile for member %d failed: %v", id, err)
		writeFailure(w, http.StatusInternalServerError, "Failed to update profile")
		return
	}
	if user == nil {
		writeFailure(w, http.StatusNotFound, "Member not found")
		return
	}

	organizerID, err := s.Users.OrganizerID(r.Context(), user.ID)
	if err != nil {
		log.Printf("update profile for member %d: organizer lookup failed: %v", id, err)
		writeFailure(w, http.StatusInternalServerError, "Failed to update profile")
		return
	}

	writeSuccess(w, map[string]interface{}{"user": userPayload(user, organizerID)})
}

type changePasswordRequest struct {
	OriginPassword string `json:"originPassword"`
	NewPassword    string `json:"newPassword"`
}

// handleChangePassword is the in-session path; the recovery flow in
// password_handlers.go covers the signed-out one.
func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	id := pathMemberID(w, r)
	if id == 0 {
		return
	}

	var req changePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validatePassword(req.NewPassword); err != nil {
		writeFailure(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := s.Users.FindByID(r.Context(), id)
	if err != nil {
		log.Printf("change password for member %d failed: %v", id, err)
		writeFailure(w, http.StatusInternalServerError, "Failed to change password")
		return
	}
	if user == nil {
		writeFailure(w, http.StatusNotFound, "Member not found")
		return
	}
	if user.PasswordHash == nil || !s.Hasher.Compare(*user.PasswordHash, req.OriginPassword) {
		writeFailure(w, http.StatusUnauthorized, "Current password is incorrect")
		return
	}
	if req.OriginPassword == req.NewPassword {
		writeFailure(w, http.StatusBadRequest, "New password cannot be the same as the old password")
		return
	}

	hashed, err := s.Hasher.Hash(req.NewPassword)
	if err != nil {
		log.Printf("change password for member %d: hash failed: %v", id, err)
		writeFailure(w, http.StatusInternalServerError, "Failed to change password")
		return
	}
	if err := s.Users.UpdatePassword(r.Context(), id, hashed); err != nil {
		log.Printf("change password for member %d failed: %v", id, err)
		writeFailure(w, http.StatusInternalServerError, "Failed to change password")
		return
	}

	writeSuccess(w, map[string]string{"message": "Password has been changed"})
}
