package handlers

import (
	"context"
	"net/http"
	"net/url"
	"time"
)

const planningCenterSyncTimeout = 5 * time.Minute

func (a *App) PlanningCenterStatus(w http.ResponseWriter, r *http.Request) {
	connected, err := a.Planning.Connected(r.Context(), a.principal(r).ChurchID)
	if err != nil {
		a.fail(w, r, err, "failed to load planning center status")
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"configured": a.Planning.Configured(),
		"connected":  connected,
	})
}

// PlanningCenterConnect returns the consent URL the browser should open.
func (a *App) PlanningCenterConnect(w http.ResponseWriter, r *http.Request) {
	p := a.principal(r)
	authURL, err := a.Planning.AuthorizeURL(p.ChurchID, p.UserID)
	if err != nil {
		a.fail(w, r, err, "failed to start planning center authorization")
		return
	}
	a.json(w, http.StatusOK, map[string]string{"url": authURL})
}

// PlanningCenterCallback completes the OAuth redirect. The church comes from
// the signed state, not from a session.
func (a *App) PlanningCenterCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if errParam := q.Get("error"); errParam != "" {
		a.redirectSettings(w, r, "error", errParam)
		return
	}
	churchID, err := a.Planning.ParseState(q.Get("state"))
	if err != nil {
		a.error(w, http.StatusBadRequest, "invalid_state", "authorization request expired, try again")
		return
	}
	code := q.Get("code")
	if code == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "code required")
		return
	}
	if err := a.Planning.Connect(r.Context(), churchID, code); err != nil {
		a.Logger.Error().Err(err).Str("church_id", churchID).Msg("planning center connect failed")
		a.redirectSettings(w, r, "error", "exchange_failed")
		return
	}
	a.Logger.Info().Str("church_id", churchID).Msg("planning center connected")
	a.redirectSettings(w, r, "connected", "1")
}

func (a *App) redirectSettings(w http.ResponseWriter, r *http.Request, key, value string) {
	target := a.AppURL + "/settings/integrations?" + url.Values{key: {value}}.Encode()
	http.Redirect(w, r, target, http.StatusFound)
}

func (a *App) PlanningCenterSync(w http.ResponseWriter, r *http.Request) {
	churchID := a.principal(r).ChurchID
	ctx, cancel := context.WithTimeout(r.Context(), planningCenterSyncTimeout)
	defer cancel()
	result, err := a.Planning.SyncPeople(ctx, churchID)
	if err != nil {
		a.fail(w, r, err, "planning center sync failed")
		return
	}
	a.json(w, http.StatusOK, result)
}

func (a *App) PlanningCenterDisconnect(w http.ResponseWriter, r *http.Request) {
	if err := a.Planning.Disconnect(r.Context(), a.principal(r).ChurchID); err != nil {
		a.fail(w, r, err, "failed to disconnect planning center")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
