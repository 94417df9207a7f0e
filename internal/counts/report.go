package counts

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jmspivey7/PlateSync-sub002/internal/domain"
	"github.com/jmspivey7/PlateSync-sub002/pkg/zip"
)

var reportHeader = []string{"donation_id", "member", "email", "type", "check_number", "amount", "notes", "created_at"}

// Report is a downloadable archive of a finalized batch.
type Report struct {
	Filename string
	Data     []byte
}

// ExportReport builds a zip holding donations.csv and summary.txt for a
// finalized batch.
func (s *Service) ExportReport(ctx context.Context, churchID, batchID string) (*Report, error) {
	b, err := s.Batches.Get(ctx, churchID, batchID)
	if err != nil {
		return nil, err
	}
	if b.Status != domain.BatchStatusFinalized {
		return nil, domain.ErrInvalidTransition
	}
	church, err := s.Churches.GetByID(ctx, churchID)
	if err != nil {
		return nil, err
	}
	donations, err := s.Donations.ListByBatch(ctx, churchID, batchID)
	if err != nil {
		return nil, err
	}

	rows, err := donationsCSV(donations)
	if err != nil {
		return nil, fmt.Errorf("write donations csv: %w", err)
	}
	modified := b.UpdatedAt
	if b.FinalizedAt != nil {
		modified = *b.FinalizedAt
	}
	data, err := zip.Archive([]zip.Entry{
		{Filename: "donations.csv", Data: rows},
		{Filename: "summary.txt", Data: []byte(reportSummary(church, b))},
	}, modified)
	if err != nil {
		return nil, fmt.Errorf("build report archive: %w", err)
	}
	return &Report{
		Filename: fmt.Sprintf("count-%s-%s.zip", b.CountDate.Format("2006-01-02"), shortID(b.ID)),
		Data:     data,
	}, nil
}

func donationsCSV(donations []domain.Donation) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	if err := w.Write(reportHeader); err != nil {
		return nil, err
	}
	for _, d := range donations {
		member := d.MemberName
		if d.Anonymous() {
			member = "Anonymous"
		}
		record := []string{
			d.ID,
			member,
			d.MemberEmail,
			string(d.Type),
			d.CheckNumber,
			domain.DecimalCents(d.AmountCents),
			d.Notes,
			d.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func reportSummary(church *domain.Church, b *domain.Batch) string {
	var sb strings.Builder
	line := func(label, value string) {
		sb.WriteString(label)
		sb.WriteString(": ")
		sb.WriteString(value)
		sb.WriteByte('\n')
	}
	line("Church", church.Name)
	line("Count", b.Name)
	line("Date", b.CountDate.Format("January 2, 2006"))
	if b.ServiceName != "" {
		line("Service", b.ServiceName)
	}
	line("Donations", strconv.Itoa(b.DonationCount))
	line("Cash", domain.FormatCents(b.CashCents))
	line("Checks", domain.FormatCents(b.CheckCents))
	line("Total", domain.FormatCents(b.TotalCents))
	line("Counted by", b.Primary.Name)
	line("Verified by", b.Secondary.Name)
	if b.FinalizedAt != nil {
		line("Finalized", b.FinalizedAt.UTC().Format(time.RFC1123))
	}
	return sb.String()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
