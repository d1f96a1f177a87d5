package server

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"govent/internal/auth"
	"govent/internal/i18n"
)

const resetCodeMinutes = int(auth.CodeTTL / time.Minute)

type otpRequest struct {
	Email string `json:"email"`
}

// handleOTPRequest starts the password recovery flow. The code travels over
// email only and is never part of the HTTP response, which stays identical
// whether delivery succeeded or a record already existed.
func (s *Server) handleOTPRequest(w http.ResponseWriter, r *http.Request) {
	var req otpRequest
	if err := decodeJSON(r, &req); err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !validateEmail(req.Email) {
		writeFailure(w, http.StatusBadRequest, "Invalid email format")
		return
	}

	ctx := r.Context()
	cooldownKey := "forgot_password_cooldown:" + req.Email
	if ttl := s.RateLimiter.CooldownTTL(ctx, cooldownKey); ttl > 0 {
		writeFailure(w, http.StatusTooManyRequests,
			fmt.Sprintf("Please wait %d seconds before requesting another code", int(ttl.Seconds())))
		return
	}

	locale := i18n.LocaleFromRequest(r)
	deliver := func(code string) error {
		content := i18n.ResetCodeEmail(locale, code, resetCodeMinutes)
		return s.Mailer.Send(ctx, req.Email, content.Subject, content.Text, content.HTML)
	}

	err := s.Reset.Issue(ctx, req.Email, deliver)
	switch {
	case err == nil:
		s.RateLimiter.SetCooldown(ctx, cooldownKey, auth.EmailCooldown)
		writeSuccess(w, map[string]string{"message": "Verification code has been sent"})
	case errors.Is(err, auth.ErrUnknownEmail):
		writeFailure(w, http.StatusNotFound, "Email is not registered")
	case errors.Is(err, auth.ErrDuplicateRequest):
		writeFailure(w, http.StatusTooManyRequests, "A verification code has already been sent")
	default:
		log.Printf("otp request for %s failed: %v", req.Email, err)
		writeFailure(w, http.StatusInternalServerError, "Failed to send verification code")
	}
}

type otpValidateRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

func (s *Server) handleOTPValidate(w http.ResponseWriter, r *http.Request) {
	var req otpValidateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !validateEmail(req.Email) || req.OTP == "" {
		writeFailure(w, http.StatusBadRequest, "Email and OTP are required")
		return
	}

	ctx := r.Context()
	err := s.Reset.Validate(ctx, req.Email, req.OTP)
	switch {
	case err == nil:
		writeSuccess(w, map[string]string{"message": "OTP verified"})
	case errors.Is(err, auth.ErrCodeNotFound):
		writeFailure(w, http.StatusNotFound, "No verification code found, please request a new one")
	case errors.Is(err, auth.ErrCodeExpired):
		writeFailure(w, http.StatusGone, "Verification code has expired, please request a new one")
	case errors.Is(err, auth.ErrCodeMismatch):
		if _, rlErr := s.RateLimiter.RegisterCodeMismatch(ctx, req.Email); rlErr != nil {
			log.Printf("otp mismatch counter for %s failed: %v", req.Email, rlErr)
		}
		writeFailure(w, http.StatusBadRequest, "Incorrect verification code")
	default:
		log.Printf("otp validate for %s failed: %v", req.Email, err)
		writeFailure(w, http.StatusInternalServerError, "Failed to validate verification code")
	}
}

type resetPasswordRequest struct {
	Email       string `json:"email"`
	OTP         string `json:"otp"`
	NewPassword string `json:"newPassword"`
}

func (s *Server) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !validateEmail(req.Email) || req.OTP == "" {
		writeFailure(w, http.StatusBadRequest, "Email and OTP are required")
		return
	}
	if err := validatePassword(req.NewPassword); err != nil {
		writeFailure(w, http.StatusBadRequest, err.Error())
		return
	}

	err := s.Reset.ConsumeAndChangePassword(r.Context(), req.Email, req.OTP, req.NewPassword)
	switch {
	case err == nil:
		writeSuccess(w, map[string]string{"message": "Password has been reset"})
	case errors.Is(err, auth.ErrCodeNotFound):
		writeFailure(w, http.StatusNotFound, "No verification code found, please request a new one")
	case errors.Is(err, auth.ErrCodeExpired):
		writeFailure(w, http.StatusGone, "Verification code has expired, please request a new one")
	case errors.Is(err, auth.ErrNotVerified):
		writeFailure(w, http.StatusForbidden, "Verification code has not been validated")
	case errors.Is(err, auth.ErrCodeMismatch):
		writeFailure(w, http.StatusBadRequest, "Incorrect verification code")
	case errors.Is(err, auth.ErrSamePassword):
		writeFailure(w, http.StatusBadRequest, "New password cannot be the same as the old password")
	default:
		log.Printf("reset password for %s failed: %v", req.Email, err)
		writeFailure(w, http.StatusInternalServerError, "Failed to reset password")
	}
}
