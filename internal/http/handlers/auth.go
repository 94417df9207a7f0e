package handlers

import (
	"net/http"
	"time"

	"github.com/jmspivey7/PlateSync-sub002/internal/auth"
	"github.com/jmspivey7/PlateSync-sub002/internal/middleware"
)

type registerRequest struct {
	ChurchName string `json:"church_name"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      userDTO   `json:"user"`
	Church    churchDTO `json:"church"`
}

type adminSessionResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Admin     adminDTO  `json:"admin"`
}

type adminDTO struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func (a *App) session(s *auth.Session) sessionResponse {
	return sessionResponse{
		Token:     s.Token,
		ExpiresAt: s.ExpiresAt,
		User:      toUserDTO(s.User),
		Church:    toChurchDTO(s.Church, a.Files),
	}
}

func (a *App) AuthRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !a.decode(w, r, &req) {
		return
	}
	sess, err := a.Auth.Register(r.Context(), auth.RegisterInput{
		ChurchName: req.ChurchName,
		Email:      req.Email,
		Password:   req.Password,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
	})
	if err != nil {
		a.fail(w, r, err, "failed to register church")
		return
	}
	a.json(w, http.StatusCreated, a.session(sess))
}

func (a *App) AuthLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !a.decode(w, r, &req) {
		return
	}
	if req.Email == "" || req.Password == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "email and password required")
		return
	}
	sess, err := a.Auth.Login(r.Context(), req.Email, req.Password, middleware.CountryFromContext(r.Context()))
	if err != nil {
		a.fail(w, r, err, "failed to sign in")
		return
	}
	a.json(w, http.StatusOK, a.session(sess))
}

func (a *App) AuthPasswordForgot(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if !a.decode(w, r, &req) {
		return
	}
	if err := a.Auth.RequestPasswordReset(r.Context(), req.Email); err != nil {
		// Never reveal whether the account exists.
		a.Logger.Error().Err(err).Msg("password reset request failed")
	}
	a.json(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}

func (a *App) AuthPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if !a.decode(w, r, &req) {
		return
	}
	if err := a.Auth.ConfirmPasswordReset(r.Context(), req.Token, req.Password); err != nil {
		a.fail(w, r, err, "failed to reset password")
		return
	}
	a.json(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *App) AuthChangePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordRequest
	if !a.decode(w, r, &req) {
		return
	}
	p := a.principal(r)
	if err := a.Auth.ChangePassword(r.Context(), p.ChurchID, p.UserID, req.CurrentPassword, req.NewPassword); err != nil {
		a.fail(w, r, err, "failed to change password")
		return
	}
	a.json(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Me returns the signed-in user, church and subscription.
func (a *App) Me(w http.ResponseWriter, r *http.Request) {
	p := a.principal(r)
	user, err := a.Auth.Users.GetByID(r.Context(), p.ChurchID, p.UserID)
	if err != nil {
		a.fail(w, r, err, "failed to load profile")
		return
	}
	church, err := a.Churches.GetByID(r.Context(), p.ChurchID)
	if err != nil {
		a.fail(w, r, err, "failed to load profile")
		return
	}
	resp := map[string]any{
		"user":   toUserDTO(user),
		"church": toChurchDTO(church, a.Files),
	}
	if sub, err := a.Subscriptions.Get(r.Context(), p.ChurchID); err == nil {
		resp["subscription"] = toSubscriptionDTO(sub, a.now())
	}
	a.json(w, http.StatusOK, resp)
}

func (a *App) AdminLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !a.decode(w, r, &req) {
		return
	}
	if req.Email == "" || req.Password == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "email and password required")
		return
	}
	sess, err := a.Auth.AdminLogin(r.Context(), req.Email, req.Password)
	if err != nil {
		a.fail(w, r, err, "failed to sign in")
		return
	}
	a.json(w, http.StatusOK, adminSessionResponse{
		Token:     sess.Token,
		ExpiresAt: sess.ExpiresAt,
		Admin: adminDTO{
			ID:        sess.Admin.ID,
			Email:     sess.Admin.Email,
			FirstName: sess.Admin.FirstName,
			LastName:  sess.Admin.LastName,
		},
	})
}
