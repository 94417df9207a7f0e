package handlers

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/jmspivey7/PlateSync-sub002/internal/domain"
)

const (
	maxImportBytes = 5 << 20
	maxImportRows  = 10000
)

type memberRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Notes     string `json:"notes"`
}

func (a *App) MembersList(w http.ResponseWriter, r *http.Request) {
	churchID := a.principal(r).ChurchID
	filter := domain.MemberFilter{
		Query:  strings.TrimSpace(r.URL.Query().Get("q")),
		Limit:  queryInt(r, "limit", 50, 200),
		Offset: queryInt(r, "offset", 0, 0),
	}
	members, total, err := a.Members.List(r.Context(), churchID, filter)
	if err != nil {
		a.fail(w, r, err, "failed to load members")
		return
	}
	items := make([]memberDTO, 0, len(members))
	for i := range members {
		items = append(items, toMemberDTO(&members[i]))
	}
	a.json(w, http.StatusOK, map[string]any{"items": items, "total": total})
}

func (a *App) MembersGet(w http.ResponseWriter, r *http.Request) {
	id := a.pathID(w, r, "id")
	if id == "" {
		return
	}
	member, err := a.Members.Get(r.Context(), a.principal(r).ChurchID, id)
	if err != nil {
		a.fail(w, r, err, "failed to load member")
		return
	}
	a.json(w, http.StatusOK, toMemberDTO(member))
}

func (a *App) MembersCreate(w http.ResponseWriter, r *http.Request) {
	var req memberRequest
	if !a.decode(w, r, &req) {
		return
	}
	member := &domain.Member{
		ChurchID:  a.principal(r).ChurchID,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		Notes:     req.Notes,
	}
	if err := member.Validate(); err != nil {
		a.fail(w, r, err, "failed to create member")
		return
	}
	if err := a.Members.Create(r.Context(), member); err != nil {
		a.fail(w, r, err, "failed to create member")
		return
	}
	a.json(w, http.StatusCreated, toMemberDTO(member))
}

func (a *App) MembersUpdate(w http.ResponseWriter, r *http.Request) {
	var req memberRequest
	if !a.decode(w, r, &req) {
		return
	}
	id := a.pathID(w, r, "id")
	if id == "" {
		return
	}
	member, err := a.Members.Get(r.Context(), a.principal(r).ChurchID, id)
	if err != nil {
		a.fail(w, r, err, "failed to load member")
		return
	}
	member.FirstName = req.FirstName
	member.LastName = req.LastName
	member.Email = req.Email
	member.Phone = req.Phone
	member.Notes = req.Notes
	if err := member.Validate(); err != nil {
		a.fail(w, r, err, "failed to update member")
		return
	}
	if err := a.Members.Update(r.Context(), member); err != nil {
		a.fail(w, r, err, "failed to update member")
		return
	}
	a.json(w, http.StatusOK, toMemberDTO(member))
}

func (a *App) MembersDelete(w http.ResponseWriter, r *http.Request) {
	id := a.pathID(w, r, "id")
	if id == "" {
		return
	}
	if err := a.Members.Delete(r.Context(), a.principal(r).ChurchID, id); err != nil {
		a.fail(w, r, err, "failed to delete member")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MembersHistory lists a member's most recent gifts.
func (a *App) MembersHistory(w http.ResponseWriter, r *http.Request) {
	churchID := a.principal(r).ChurchID
	id := a.pathID(w, r, "id")
	if id == "" {
		return
	}
	if _, err := a.Members.Get(r.Context(), churchID, id); err != nil {
		a.fail(w, r, err, "failed to load member")
		return
	}
	donations, err := a.Members.DonationHistory(r.Context(), churchID, id, queryInt(r, "limit", 50, 500))
	if err != nil {
		a.fail(w, r, err, "failed to load donation history")
		return
	}
	a.json(w, http.StatusOK, map[string]any{"items": toDonationDTOs(donations)})
}

// MembersImport reads a CSV upload (multipart "file" or a raw text/csv body)
// with a header row naming first_name, last_name, email and phone.
func (a *App) MembersImport(w http.ResponseWriter, r *http.Request) {
	churchID := a.principal(r).ChurchID
	r.Body = http.MaxBytesReader(w, r.Body, maxImportBytes)
	var src io.Reader = r.Body
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		file, _, err := r.FormFile("file")
		if err != nil {
			a.error(w, http.StatusBadRequest, "bad_request", "csv file required")
			return
		}
		defer file.Close()
		src = file
	}
	members, result, err := parseMemberCSV(src, churchID)
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	for i := range members {
		m := &members[i]
		if m.Email != "" {
			existing, _, err := a.Members.List(r.Context(), churchID, domain.MemberFilter{Query: m.Email, Limit: 5})
			if err != nil {
				a.fail(w, r, err, "failed to import members")
				return
			}
			if hasEmail(existing, m.Email) {
				result.Skipped++
				continue
			}
		}
		if err := a.Members.Create(r.Context(), m); err != nil {
			if errors.Is(err, domain.ErrDuplicate) {
				result.Skipped++
				continue
			}
			a.fail(w, r, err, "failed to import members")
			return
		}
		result.Created++
	}
	a.Logger.Info().Str("church_id", churchID).Int("created", result.Created).Int("skipped", result.Skipped).Msg("member csv import")
	a.json(w, http.StatusOK, result)
}

func hasEmail(members []domain.Member, email string) bool {
	for _, m := range members {
		if strings.EqualFold(m.Email, email) {
			return true
		}
	}
	return false
}

// parseMemberCSV validates every row. Invalid rows are reported in the result
// and left out of the returned members.
func parseMemberCSV(src io.Reader, churchID string) ([]domain.Member, domain.MemberImportResult, error) {
	var result domain.MemberImportResult
	reader := csv.NewReader(src)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, result, errors.New("csv file is empty")
		}
		return nil, result, fmt.Errorf("read csv header: %w", err)
	}
	cols := map[string]int{}
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		key = strings.ReplaceAll(key, " ", "_")
		cols[key] = i
	}
	_, hasFirst := cols["first_name"]
	_, hasLast := cols["last_name"]
	if !hasFirst && !hasLast {
		return nil, result, errors.New("csv header must include first_name or last_name")
	}
	field := func(rec []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return rec[i]
	}

	var members []domain.Member
	for line := 2; ; line++ {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, result, fmt.Errorf("read csv line %d: %w", line, err)
		}
		if line-1 > maxImportRows {
			return nil, result, fmt.Errorf("csv has more than %d rows", maxImportRows)
		}
		if blankRecord(rec) {
			continue
		}
		m := domain.Member{
			ChurchID:  churchID,
			FirstName: field(rec, "first_name"),
			LastName:  field(rec, "last_name"),
			Email:     field(rec, "email"),
			Phone:     field(rec, "phone"),
			Notes:     field(rec, "notes"),
		}
		if err := m.Validate(); err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: %s", line, strings.TrimPrefix(err.Error(), domain.ErrValidation.Error()+": ")))
			continue
		}
		members = append(members, m)
	}
	return members, result, nil
}

func blankRecord(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
