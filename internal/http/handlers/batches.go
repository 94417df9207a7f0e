package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jmspivey7/PlateSync-sub002/internal/counts"
	"github.com/jmspivey7/PlateSync-sub002/internal/domain"
)

const dateLayout = "2006-01-02"

type batchRequest struct {
	Name            string  `json:"name"`
	ServiceOptionID *string `json:"service_option_id"`
	CountDate       string  `json:"count_date"`
	Notes           string  `json:"notes"`
}

type donationRequest struct {
	MemberID    *string `json:"member_id"`
	Type        string  `json:"type"`
	Amount      string  `json:"amount"`
	CheckNumber string  `json:"check_number"`
	Notes       string  `json:"notes"`
}

type attestRequest struct {
	Name string `json:"name"`
}

type resendRequest struct {
	IncludeReport bool `json:"include_report"`
}

// optionalID normalizes an optional UUID body field; blank means unset.
func optionalID(field string, v *string) (*string, error) {
	if v == nil || strings.TrimSpace(*v) == "" {
		return nil, nil
	}
	id, err := uuid.Parse(strings.TrimSpace(*v))
	if err != nil {
		return nil, domain.Invalid(field, "must be a UUID")
	}
	s := id.String()
	return &s, nil
}

func (req batchRequest) input() (counts.BatchInput, error) {
	in := counts.BatchInput{Name: req.Name, Notes: req.Notes}
	optionID, err := optionalID("service_option_id", req.ServiceOptionID)
	if err != nil {
		return in, err
	}
	in.ServiceOptionID = optionID
	if raw := strings.TrimSpace(req.CountDate); raw != "" {
		d, err := time.Parse(dateLayout, raw)
		if err != nil {
			return in, domain.Invalid("count_date", "must be YYYY-MM-DD")
		}
		in.CountDate = d
	}
	return in, nil
}

func (req donationRequest) input() (counts.DonationInput, error) {
	memberID, err := optionalID("member_id", req.MemberID)
	if err != nil {
		return counts.DonationInput{}, err
	}
	cents, err := domain.ParseAmount(req.Amount)
	if err != nil {
		return counts.DonationInput{}, err
	}
	return counts.DonationInput{
		MemberID:    memberID,
		Type:        domain.DonationType(strings.ToUpper(strings.TrimSpace(req.Type))),
		AmountCents: cents,
		CheckNumber: req.CheckNumber,
		Notes:       req.Notes,
	}, nil
}

func (a *App) BatchesList(w http.ResponseWriter, r *http.Request) {
	filter := domain.BatchFilter{
		Status: domain.BatchStatus(strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("status")))),
		Limit:  queryInt(r, "limit", 50, 200),
		Offset: queryInt(r, "offset", 0, 0),
	}
	batches, err := a.Counts.ListBatches(r.Context(), a.principal(r).ChurchID, filter)
	if err != nil {
		a.fail(w, r, err, "failed to load batches")
		return
	}
	a.json(w, http.StatusOK, map[string]any{"items": toBatchDTOs(batches)})
}

func (a *App) BatchesCreate(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if !a.decode(w, r, &req) {
		return
	}
	in, err := req.input()
	if err != nil {
		a.fail(w, r, err, "failed to create batch")
		return
	}
	batch, err := a.Counts.CreateBatch(r.Context(), a.actor(r), in)
	if err != nil {
		a.fail(w, r, err, "failed to create batch")
		return
	}
	a.json(w, http.StatusCreated, toBatchDTO(batch))
}

// BatchesGet returns the batch with its donations.
func (a *App) BatchesGet(w http.ResponseWriter, r *http.Request) {
	churchID := a.principal(r).ChurchID
	id := a.pathID(w, r, "id")
	if id == "" {
		return
	}
	batch, err := a.Counts.GetBatch(r.Context(), churchID, id)
	if err != nil {
		a.fail(w, r, err, "failed to load batch")
		return
	}
	donations, err := a.Counts.BatchDonations(r.Context(), churchID, id)
	if err != nil {
		a.fail(w, r, err, "failed to load donations")
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"batch":     toBatchDTO(batch),
		"donations": toDonationDTOs(donations),
	})
}

func (a *App) BatchesUpdate(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if !a.decode(w, r, &req) {
		return
	}
	in, err := req.input()
	if err != nil {
		a.fail(w, r, err, "failed to update batch")
		return
	}
	id := a.pathID(w, r, "id")
	if id == "" {
		return
	}
	batch, err := a.Counts.UpdateBatch(r.Context(), a.actor(r), id, in)
	if err != nil {
		a.fail(w, r, err, "failed to update batch")
		return
	}
	a.json(w, http.StatusOK, toBatchDTO(batch))
}

func (a *App) BatchesDelete(w http.ResponseWriter, r *http.Request) {
	id := a.pathID(w, r, "id")
	if id == "" {
		return
	}
	if err := a.Counts.DeleteBatch(r.Context(), a.actor(r), id); err != nil {
		a.fail(w, r, err, "failed to delete batch")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *App) DonationsCreate(w http.ResponseWriter, r *http.Request) {
	var req donationRequest
	if !a.decode(w, r, &req) {
		return
	}
	in, err := req.input()
	if err != nil {
		a.fail(w, r, err, "failed to add donation")
		return
	}
	id := a.pathID(w, r, "id")
	if id == "" {
		return
	}
	donation, batch, err := a.Counts.AddDonation(r.Context(), a.actor(r), id, in)
	if err != nil {
		a.fail(w, r, err, "failed to add donation")
		return
	}
	a.json(w, http.StatusCreated, map[string]any{
		"donation": toDonationDTO(donation),
		"batch":    toBatchDTO(batch),
	})
}

func (a *App) DonationsUpdate(w http.ResponseWriter, r *http.Request) {
	var req donationRequest
	if !a.decode(w, r, &req) {
		return
	}
	in, err := req.input()
	if err != nil {
		a.fail(w, r, err, "failed to update donation")
		return
	}
	id := a.pathID(w, r, "id")
	if id == "" {
		return
	}
	donationID := a.pathID(w, r, "donationID")
	if donationID == "" {
		return
	}
	donation, batch, err := a.Counts.UpdateDonation(r.Context(), a.actor(r), id, donationID, in)
	if err != nil {
		a.fail(w, r, err, "failed to update donation")
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"donation": toDonationDTO(donation),
		"batch":    toBatchDTO(batch),
	})
}

func (a *App) DonationsDelete(w http.ResponseWriter, r *http.Request) {
	id := a.pathID(w, r, "id")
	if id == "" {
		return
	}
	donationID := a.pathID(w, r, "donationID")
	if donationID == "" {
		return
	}
	batch, err := a.Counts.DeleteDonation(r.Context(), a.actor(r), id, donationID)
	if err != nil {
		a.fail(w, r, err, "failed to delete donation")
		return
	}
	a.json(w, http.StatusOK, map[string]any{"batch": toBatchDTO(batch)})
}

func (a *App) BatchesClose(w http.ResponseWriter, r *http.Request) {
	a.transition(w, r, "failed to close batch", a.Counts.CloseBatch)
}

func (a *App) BatchesReopen(w http.ResponseWriter, r *http.Request) {
	a.transition(w, r, "failed to reopen batch", a.Counts.ReopenBatch)
}

func (a *App) BatchesFinalize(w http.ResponseWriter, r *http.Request) {
	a.transition(w, r, "failed to finalize batch", a.Counts.FinalizeBatch)
}

func (a *App) transition(w http.ResponseWriter, r *http.Request, msg string, fn func(ctx context.Context, actor counts.Actor, id string) (*domain.Batch, error)) {
	id := a.pathID(w, r, "id")
	if id == "" {
		return
	}
	batch, err := fn(r.Context(), a.actor(r), id)
	if err != nil {
		a.fail(w, r, err, msg)
		return
	}
	a.json(w, http.StatusOK, toBatchDTO(batch))
}

func (a *App) BatchesAttestPrimary(w http.ResponseWriter, r *http.Request) {
	var req attestRequest
	if !a.decode(w, r, &req) {
		return
	}
	id := a.pathID(w, r, "id")
	if id == "" {
		return
	}
	batch, err := a.Counts.AttestPrimary(r.Context(), a.actor(r), id, req.Name)
	if err != nil {
		a.fail(w, r, err, "failed to record attestation")
		return
	}
	a.json(w, http.StatusOK, toBatchDTO(batch))
}

func (a *App) BatchesAttestSecondary(w http.ResponseWriter, r *http.Request) {
	var req attestRequest
	if !a.decode(w, r, &req) {
		return
	}
	id := a.pathID(w, r, "id")
	if id == "" {
		return
	}
	batch, err := a.Counts.AttestSecondary(r.Context(), a.actor(r), id, req.Name)
	if err != nil {
		a.fail(w, r, err, "failed to record attestation")
		return
	}
	a.json(w, http.StatusOK, toBatchDTO(batch))
}

// BatchesResend re-queues donor receipts that never reached the outbox.
func (a *App) BatchesResend(w http.ResponseWriter, r *http.Request) {
	var req resendRequest
	if r.ContentLength > 0 && !a.decode(w, r, &req) {
		return
	}
	id := a.pathID(w, r, "id")
	if id == "" {
		return
	}
	queued, err := a.Counts.ResendNotifications(r.Context(), a.actor(r), id, req.IncludeReport)
	if err != nil {
		a.fail(w, r, err, "failed to resend notifications")
		return
	}
	a.json(w, http.StatusAccepted, map[string]int{"queued": queued})
}

// BatchesReport streams the zip export of a finalized batch.
func (a *App) BatchesReport(w http.ResponseWriter, r *http.Request) {
	id := a.pathID(w, r, "id")
	if id == "" {
		return
	}
	report, err := a.Counts.ExportReport(r.Context(), a.principal(r).ChurchID, id)
	if err != nil {
		a.fail(w, r, err, "failed to build report")
		return
	}
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", `attachment; filename="`+report.Filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(report.Data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(report.Data)
}

func (a *App) Dashboard(w http.ResponseWriter, r *http.Request) {
	summary, err := a.Batches.Dashboard(r.Context(), a.principal(r).ChurchID, a.now())
	if err != nil {
		a.fail(w, r, err, "failed to load dashboard")
		return
	}
	trend := make([]map[string]any, 0, len(summary.Trend))
	for _, p := range summary.Trend {
		trend = append(trend, map[string]any{
			"batch_id":    p.BatchID,
			"name":        p.Name,
			"count_date":  p.CountDate.Format(dateLayout),
			"total_cents": p.TotalCents,
		})
	}
	resp := map[string]any{
		"open_batches":       summary.OpenBatches,
		"closed_batches":     summary.ClosedBatches,
		"year_to_date_cents": summary.YearToDateCents,
		"year_cash_cents":    summary.YearCashCents,
		"year_check_cents":   summary.YearCheckCents,
		"trend":              trend,
		"last_finalized":     nil,
	}
	if summary.LastFinalized != nil {
		resp["last_finalized"] = toBatchDTO(summary.LastFinalized)
	}
	a.json(w, http.StatusOK, resp)
}
