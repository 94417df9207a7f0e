package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/jmspivey7/PlateSync-sub002/internal/domain"
	"github.com/jmspivey7/PlateSync-sub002/internal/notify"
)

type templateRequest struct {
	Subject  string `json:"subject"`
	BodyHTML string `json:"body_html"`
	BodyText string `json:"body_text"`
}

func templateType(r *http.Request) domain.TemplateType {
	return domain.TemplateType(strings.ToUpper(strings.TrimSpace(chi.URLParam(r, "type"))))
}

// TemplatesList shows the effective version of every church-editable template.
func (a *App) TemplatesList(w http.ResponseWriter, r *http.Request) {
	churchID := a.principal(r).ChurchID
	overrides, err := a.Templates.List(r.Context(), &churchID)
	if err != nil {
		a.fail(w, r, err, "failed to load templates")
		return
	}
	custom := make(map[domain.TemplateType]bool, len(overrides))
	for _, t := range overrides {
		custom[t.Type] = true
	}
	items := make([]templateDTO, 0, len(domain.TemplateTypes))
	for _, kind := range domain.TemplateTypes {
		if !kind.ChurchEditable() {
			continue
		}
		tpl, err := a.Notify.Resolve(r.Context(), &churchID, kind)
		if err != nil {
			a.fail(w, r, err, "failed to load templates")
			return
		}
		items = append(items, toTemplateDTO(tpl, custom[kind]))
	}
	a.json(w, http.StatusOK, map[string]any{
		"items":        items,
		"placeholders": notify.Placeholders,
	})
}

func (a *App) TemplatesUpsert(w http.ResponseWriter, r *http.Request) {
	kind := templateType(r)
	if !kind.ChurchEditable() {
		a.error(w, http.StatusBadRequest, "bad_request", "template type cannot be customized")
		return
	}
	churchID := a.principal(r).ChurchID
	a.saveTemplate(w, r, &churchID, kind)
}

// TemplatesReset drops the church override so the system template applies again.
func (a *App) TemplatesReset(w http.ResponseWriter, r *http.Request) {
	kind := templateType(r)
	if !kind.ChurchEditable() {
		a.error(w, http.StatusBadRequest, "bad_request", "template type cannot be customized")
		return
	}
	churchID := a.principal(r).ChurchID
	if err := a.Templates.Delete(r.Context(), churchID, kind); err != nil && !errors.Is(err, domain.ErrNotFound) {
		a.fail(w, r, err, "failed to reset template")
		return
	}
	tpl, err := a.Notify.Resolve(r.Context(), &churchID, kind)
	if err != nil {
		a.fail(w, r, err, "failed to load template")
		return
	}
	a.json(w, http.StatusOK, toTemplateDTO(tpl, false))
}

// TemplatesPreview renders the effective template with sample values.
func (a *App) TemplatesPreview(w http.ResponseWriter, r *http.Request) {
	kind := templateType(r)
	if !kind.Valid() {
		a.error(w, http.StatusNotFound, "not_found", "unknown template type")
		return
	}
	church, err := a.Churches.GetByID(r.Context(), a.principal(r).ChurchID)
	if err != nil {
		a.fail(w, r, err, "failed to load church")
		return
	}
	out, err := a.Notify.Preview(r.Context(), church, kind)
	if err != nil {
		a.fail(w, r, err, "failed to render preview")
		return
	}
	a.json(w, http.StatusOK, map[string]string{
		"subject":   out.Subject,
		"body_html": out.BodyHTML,
		"body_text": out.BodyText,
	})
}

// AdminTemplatesList returns the system templates, falling back to defaults.
func (a *App) AdminTemplatesList(w http.ResponseWriter, r *http.Request) {
	stored, err := a.Templates.List(r.Context(), nil)
	if err != nil {
		a.fail(w, r, err, "failed to load templates")
		return
	}
	saved := make(map[domain.TemplateType]domain.EmailTemplate, len(stored))
	for _, t := range stored {
		saved[t.Type] = t
	}
	items := make([]templateDTO, 0, len(domain.TemplateTypes))
	for _, kind := range domain.TemplateTypes {
		if t, ok := saved[kind]; ok {
			items = append(items, toTemplateDTO(t, true))
			continue
		}
		def, _ := notify.Default(kind)
		items = append(items, toTemplateDTO(def, false))
	}
	a.json(w, http.StatusOK, map[string]any{
		"items":        items,
		"placeholders": notify.Placeholders,
	})
}

func (a *App) AdminTemplatesUpsert(w http.ResponseWriter, r *http.Request) {
	kind := templateType(r)
	if !kind.Valid() {
		a.error(w, http.StatusNotFound, "not_found", "unknown template type")
		return
	}
	a.saveTemplate(w, r, nil, kind)
}

func (a *App) saveTemplate(w http.ResponseWriter, r *http.Request, churchID *string, kind domain.TemplateType) {
	var req templateRequest
	if !a.decode(w, r, &req) {
		return
	}
	tpl := &domain.EmailTemplate{
		ChurchID: churchID,
		Type:     kind,
		Subject:  req.Subject,
		BodyHTML: req.BodyHTML,
		BodyText: req.BodyText,
	}
	if err := notify.ValidateTemplate(tpl); err != nil {
		a.fail(w, r, err, "failed to save template")
		return
	}
	if err := a.Templates.Upsert(r.Context(), tpl); err != nil {
		a.fail(w, r, err, "failed to save template")
		return
	}
	a.json(w, http.StatusOK, toTemplateDTO(*tpl, true))
}
