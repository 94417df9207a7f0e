package handlers

import (
	"net/http"
	"time"

	"github.com/jmspivey7/PlateSync-sub002/internal/domain"
)

type serviceOptionRequest struct {
	Name      string `json:"name"`
	IsDefault bool   `json:"is_default"`
}

type serviceOptionDTO struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	IsDefault bool      `json:"is_default"`
	CreatedAt time.Time `json:"created_at"`
}

type recipientRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

type recipientDTO struct {
	ID        string    `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

func (a *App) ServiceOptionsList(w http.ResponseWriter, r *http.Request) {
	options, err := a.Services.List(r.Context(), a.principal(r).ChurchID)
	if err != nil {
		a.fail(w, r, err, "failed to load service options")
		return
	}
	items := make([]serviceOptionDTO, 0, len(options))
	for _, o := range options {
		items = append(items, serviceOptionDTO{ID: o.ID, Name: o.Name, IsDefault: o.IsDefault, CreatedAt: o.CreatedAt})
	}
	a.json(w, http.StatusOK, map[string]any{"items": items})
}

func (a *App) ServiceOptionsCreate(w http.ResponseWriter, r *http.Request) {
	var req serviceOptionRequest
	if !a.decode(w, r, &req) {
		return
	}
	name, err := domain.RequireText("name", req.Name, 80)
	if err != nil {
		a.fail(w, r, err, "failed to create service option")
		return
	}
	option := &domain.ServiceOption{ChurchID: a.principal(r).ChurchID, Name: name, IsDefault: req.IsDefault}
	if err := a.Services.Create(r.Context(), option); err != nil {
		a.fail(w, r, err, "failed to create service option")
		return
	}
	a.json(w, http.StatusCreated, serviceOptionDTO{ID: option.ID, Name: option.Name, IsDefault: option.IsDefault, CreatedAt: option.CreatedAt})
}

func (a *App) ServiceOptionsDelete(w http.ResponseWriter, r *http.Request) {
	id := a.pathID(w, r, "id")
	if id == "" {
		return
	}
	if err := a.Services.Delete(r.Context(), a.principal(r).ChurchID, id); err != nil {
		a.fail(w, r, err, "failed to delete service option")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *App) RecipientsList(w http.ResponseWriter, r *http.Request) {
	recipients, err := a.Recipients.List(r.Context(), a.principal(r).ChurchID)
	if err != nil {
		a.fail(w, r, err, "failed to load report recipients")
		return
	}
	items := make([]recipientDTO, 0, len(recipients))
	for _, rc := range recipients {
		items = append(items, recipientDTO{ID: rc.ID, FirstName: rc.FirstName, LastName: rc.LastName, Email: rc.Email, CreatedAt: rc.CreatedAt})
	}
	a.json(w, http.StatusOK, map[string]any{"items": items})
}

func (a *App) RecipientsCreate(w http.ResponseWriter, r *http.Request) {
	var req recipientRequest
	if !a.decode(w, r, &req) {
		return
	}
	email, err := domain.NormalizeEmail(req.Email)
	if err != nil {
		a.fail(w, r, err, "failed to add report recipient")
		return
	}
	rc := &domain.ReportRecipient{
		ChurchID:  a.principal(r).ChurchID,
		FirstName: domain.NormalizeName(req.FirstName),
		LastName:  domain.NormalizeName(req.LastName),
		Email:     email,
	}
	if err := a.Recipients.Create(r.Context(), rc); err != nil {
		a.fail(w, r, err, "failed to add report recipient")
		return
	}
	a.json(w, http.StatusCreated, recipientDTO{ID: rc.ID, FirstName: rc.FirstName, LastName: rc.LastName, Email: rc.Email, CreatedAt: rc.CreatedAt})
}

func (a *App) RecipientsDelete(w http.ResponseWriter, r *http.Request) {
	id := a.pathID(w, r, "id")
	if id == "" {
		return
	}
	if err := a.Recipients.Delete(r.Context(), a.principal(r).ChurchID, id); err != nil {
		a.fail(w, r, err, "failed to remove report recipient")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
