package server

import (
	"log"
	"net/http"

	"govent/internal/auth"
	"govent/internal/i18n"
)

type signupRequest struct {
	Username  string  `json:"username"`
	Password  string  `json:"password"`
	Name      string  `json:"name"`
	Gender    *string `json:"gender"`
	Birthday  *string `json:"birthday"`
	Cellphone *string `json:"cellphone"`
	County    string  `json:"county"`
	Township  string  `json:"township"`
	Address   string  `json:"address"`
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decodeJSON(r, &req); err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !validateEmail(req.Username) {
		writeFailure(w, http.StatusBadRequest, "Invalid email format")
		return
	}
	if err := validatePassword(req.Password); err != nil {
		writeFailure(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Name == "" {
		writeFailure(w, http.StatusBadRequest, "Name is required")
		return
	}

	hashed, err := s.Hasher.Hash(req.Password)
	if err != nil {
		log.Printf("signup: hash failed: %v", err)
		writeFailure(w, http.StatusInternalServerError, "Failed to create member")
		return
	}

	// The registration form splits the address into county/township/street;
	// the member record stores them joined.
	var address *string
	if full := req.County + req.Township + req.Address; full != "" {
		address = &full
	}

	user, err := s.Users.Create(r.Context(), auth.NewUser{
		Username:     req.Username,
		PasswordHash: &hashed,
		Name:         req.Name,
		Gender:       req.Gender,
		Birthday:     req.Birthday,
		Phone:        req.Cellphone,
		Address:      address,
	})
	if err != nil {
		if err == auth.ErrUsernameTaken {
			writeFailure(w, http.StatusConflict, "Email is already registered")
			return
		}
		log.Printf("signup: create member failed: %v", err)
		writeFailure(w, http.StatusInternalServerError, "Failed to create member")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"status":  "success",
		"message": "Registration successful",
		"data": map[string]interface{}{
			"id":       user.ID,
			"username": user.Username,
		},
	})
}

type signinRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// handleSignin is a real credential exchange: compare against the stored
// hash, then mint a fresh token. Verification of an existing cookie lives on
// the verify route only.
func (s *Server) handleSignin(w http.ResponseWriter, r *http.Request) {
	var req signinRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !validateEmail(req.Username) || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Invalid credentials")
		return
	}

	ctx := r.Context()
	ip := clientIP(r, s.trustedProxies)
	if s.RateLimiter.IsIPBanned(ctx, ip) {
		writeError(w, http.StatusForbidden, "IP_BANNED")
		return
	}

	user, err := s.Users.FindByUsername(ctx, req.Username)
	if err != nil {
		log.Printf("signin: lookup failed: %v", err)
		writeError(w, http.StatusInternalServerError, "An error occurred during authentication")
		return
	}
	if user == nil || user.PasswordHash == nil || !s.Hasher.Compare(*user.PasswordHash, req.Password) {
		_ = s.RateLimiter.RegisterLoginFailure(ctx, ip)
		writeError(w, http.StatusUnauthorized, "Authentication failed")
		return
	}

	organizerID, err := s.Users.OrganizerID(ctx, user.ID)
	if err != nil {
		log.Printf("signin: organizer lookup failed: %v", err)
		writeError(w, http.StatusInternalServerError, "An error occurred during authentication")
		return
	}

	token, err := s.Tokens.Mint(user, organizerID)
	if err != nil {
		log.Printf("signin: mint failed: %v", err)
		writeError(w, http.StatusInternalServerError, "An error occurred during authentication")
		return
	}

	s.RateLimiter.ResetLogin(ctx, ip)
	auth.SetTokenCookie(w, token, s.Config.Production())
	s.sendSignInAlert(r, user, ip)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Login successful",
		"user":    userPayload(user, organizerID),
	})
}

type googleSigninRequest struct {
	GoogleUser struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	} `json:"googleUser"`
}

// handleGoogleSignin trusts the verified Google profile and finds or creates
// the member by email. Members created this way have no password until they
// run the recovery flow.
func (s *Server) handleGoogleSignin(w http.ResponseWriter, r *http.Request) {
	var req googleSigninRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !validateEmail(req.GoogleUser.Email) {
		writeError(w, http.StatusBadRequest, "Invalid email format")
		return
	}

	ctx := r.Context()
	user, err := s.Users.FindByUsername(ctx, req.GoogleUser.Email)
	if err != nil {
		log.Printf("google signin: lookup failed: %v", err)
		writeError(w, http.StatusInternalServerError, "An error occurred during authentication")
		return
	}
	if user == nil {
		user, err = s.Users.Create(ctx, auth.NewUser{
			Username: req.GoogleUser.Email,
			Name:     req.GoogleUser.Name,
		})
		if err != nil {
			log.Printf("google signin: create member failed: %v", err)
			writeError(w, http.StatusInternalServerError, "An error occurred during authentication")
			return
		}
	}

	organizerID, err := s.Users.OrganizerID(ctx, user.ID)
	if err != nil {
		log.Printf("google signin: organizer lookup failed: %v", err)
		writeError(w, http.StatusInternalServerError, "An error occurred during authentication")
		return
	}

	token, err := s.Tokens.Mint(user, organizerID)
	if err != nil {
		log.Printf("google signin: mint failed: %v", err)
		writeError(w, http.StatusInternalServerError, "An error occurred during authentication")
		return
	}

	auth.SetTokenCookie(w, token, s.Config.Production())
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Login successful",
		"user":    userPayload(user, organizerID),
	})
}

// handleVerify answers the claims already validated by the gate. The client
// calls this exactly once on load to restore its session state.
func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "Access token is missing")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "User is authenticated",
		"user":    claimsPayload(claims),
	})
}

// handleSignout clears the cookie and always answers success-shaped: the
// token itself stays cryptographically valid until natural expiry, which is
// an accepted non-goal.
func (s *Server) handleSignout(w http.ResponseWriter, r *http.Request) {
	auth.ClearTokenCookie(w, s.Config.Production())
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "User has signed out",
		"user":    nil,
	})
}

func userPayload(user *auth.User, organizerID *int) map[string]interface{} {
	return map[string]interface{}{
		"id":        user.ID,
		"username":  user.Username,
		"name":      user.Name,
		"gender":    user.Gender,
		"birthday":  user.Birthday,
		"phone":     user.Phone,
		"address":   user.Address,
		"avatar":    user.Avatar,
		"point":     user.Point,
		"organizer": organizerID,
	}
}

func claimsPayload(claims *auth.Claims) map[string]interface{} {
	return map[string]interface{}{
		"id":        claims.UserID,
		"username":  claims.Username,
		"name":      claims.Name,
		"gender":    claims.Gender,
		"birthday":  claims.Birthday,
		"phone":     claims.Phone,
		"address":   claims.Address,
		"avatar":    claims.Avatar,
		"organizer": claims.OrganizerID,
	}
}

func (s *Server) sendSignInAlert(r *http.Request, user *auth.User, ip string) {
	if s.Mailer == nil {
		return
	}

	content := i18n.SignInAlertEmail(
		i18n.LocaleFromRequest(r),
		user.Username,
		nowUTCString(),
		ip,
		deriveLocation(r),
		r.UserAgent(),
	)

	// Best effort: an alert that cannot be delivered must not fail the sign-in.
	if err := s.Mailer.Send(r.Context(), user.Username, content.Subject, content.Text, content.HTML); err != nil {
		log.Printf("sign-in alert for %s failed: %v", user.Username, err)
	}
}
