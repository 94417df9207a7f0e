package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/jmspivey7/PlateSync-sub002/internal/auth"
	"github.com/jmspivey7/PlateSync-sub002/internal/domain"
	"github.com/jmspivey7/PlateSync-sub002/internal/storage"
)

type churchUpdateRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

type createUserRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
}

type updateUserRequest struct {
	Role     *string `json:"role"`
	IsActive *bool   `json:"is_active"`
}

func (a *App) ChurchGet(w http.ResponseWriter, r *http.Request) {
	church, err := a.Churches.GetByID(r.Context(), a.principal(r).ChurchID)
	if err != nil {
		a.fail(w, r, err, "failed to load church")
		return
	}
	a.json(w, http.StatusOK, toChurchDTO(church, a.Files))
}

func (a *App) ChurchUpdate(w http.ResponseWriter, r *http.Request) {
	var req churchUpdateRequest
	if !a.decode(w, r, &req) {
		return
	}
	church, err := a.Churches.GetByID(r.Context(), a.principal(r).ChurchID)
	if err != nil {
		a.fail(w, r, err, "failed to load church")
		return
	}
	if church.Name, err = domain.RequireText("name", req.Name, 120); err != nil {
		a.fail(w, r, err, "failed to update church")
		return
	}
	if strings.TrimSpace(req.Email) != "" {
		if church.Email, err = domain.NormalizeEmail(req.Email); err != nil {
			a.fail(w, r, err, "failed to update church")
			return
		}
	}
	church.Phone = strings.TrimSpace(req.Phone)
	church.Address = strings.TrimSpace(req.Address)
	if err := a.Churches.Update(r.Context(), church); err != nil {
		a.fail(w, r, err, "failed to update church")
		return
	}
	a.json(w, http.StatusOK, toChurchDTO(church, a.Files))
}

// ChurchLogoUpload accepts a multipart "logo" field holding a PNG, JPEG, GIF
// or WebP image.
func (a *App) ChurchLogoUpload(w http.ResponseWriter, r *http.Request) {
	churchID := a.principal(r).ChurchID
	r.Body = http.MaxBytesReader(w, r.Body, storage.MaxLogoBytes+64<<10)
	file, _, err := r.FormFile("logo")
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "logo file required (max 2 MiB)")
		return
	}
	defer file.Close()
	data, err := io.ReadAll(io.LimitReader(file, storage.MaxLogoBytes+1))
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "failed to read upload")
		return
	}
	church, err := a.Churches.GetByID(r.Context(), churchID)
	if err != nil {
		a.fail(w, r, err, "failed to load church")
		return
	}
	key, err := a.Files.SaveLogo(r.Context(), churchID, uuid.NewString(), data)
	if err != nil {
		if errors.Is(err, storage.ErrUnsupportedImage) {
			a.error(w, http.StatusBadRequest, "unsupported_image", "logo must be a PNG, JPEG, GIF or WebP image up to 2 MiB")
			return
		}
		a.fail(w, r, err, "failed to store logo")
		return
	}
	if err := a.Churches.SetLogo(r.Context(), churchID, key); err != nil {
		_ = a.Files.Delete(r.Context(), key)
		a.fail(w, r, err, "failed to save logo")
		return
	}
	if church.LogoKey != "" && church.LogoKey != key {
		if err := a.Files.Delete(r.Context(), church.LogoKey); err != nil {
			a.Logger.Warn().Err(err).Str("key", church.LogoKey).Msg("remove previous logo failed")
		}
	}
	church.LogoKey = key
	a.json(w, http.StatusOK, toChurchDTO(church, a.Files))
}

func (a *App) UsersList(w http.ResponseWriter, r *http.Request) {
	users, err := a.Auth.ListUsers(r.Context(), a.userActor(r))
	if err != nil {
		a.fail(w, r, err, "failed to load users")
		return
	}
	items := make([]userDTO, 0, len(users))
	for i := range users {
		items = append(items, toUserDTO(&users[i]))
	}
	a.json(w, http.StatusOK, map[string]any{"items": items})
}

func (a *App) UsersCreate(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if !a.decode(w, r, &req) {
		return
	}
	user, err := a.Auth.CreateUser(r.Context(), a.userActor(r), auth.NewUserInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      domain.UserRole(strings.ToUpper(strings.TrimSpace(req.Role))),
	})
	if err != nil {
		a.fail(w, r, err, "failed to create user")
		return
	}
	a.json(w, http.StatusCreated, toUserDTO(user))
}

func (a *App) UsersUpdate(w http.ResponseWriter, r *http.Request) {
	var req updateUserRequest
	if !a.decode(w, r, &req) {
		return
	}
	if req.Role == nil && req.IsActive == nil {
		a.error(w, http.StatusBadRequest, "bad_request", "role or is_active required")
		return
	}
	actor := a.userActor(r)
	id := a.pathID(w, r, "id")
	if id == "" {
		return
	}
	if req.Role != nil {
		role := domain.UserRole(strings.ToUpper(strings.TrimSpace(*req.Role)))
		if err := a.Auth.ChangeRole(r.Context(), actor, id, role); err != nil {
			a.fail(w, r, err, "failed to update user")
			return
		}
	}
	if req.IsActive != nil {
		if err := a.Auth.SetUserActive(r.Context(), actor, id, *req.IsActive); err != nil {
			a.fail(w, r, err, "failed to update user")
			return
		}
	}
	user, err := a.Auth.Users.GetByID(r.Context(), actor.ChurchID, id)
	if err != nil {
		a.fail(w, r, err, "failed to load user")
		return
	}
	a.json(w, http.StatusOK, toUserDTO(user))
}
