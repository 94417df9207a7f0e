package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/jmspivey7/PlateSync-sub002/internal/domain"
	"github.com/jmspivey7/PlateSync-sub002/internal/metrics"
)

// Recipient is an email address with an optional display name.
type Recipient struct {
	Email string
	Name  string
}

// Service resolves templates and writes rendered emails to the outbox.
type Service struct {
	Templates domain.TemplateRepository
	Outbox    domain.OutboxRepository
	Logger    zerolog.Logger
}

func NewService(templates domain.TemplateRepository, outbox domain.OutboxRepository, logger zerolog.Logger) *Service {
	return &Service{Templates: templates, Outbox: outbox, Logger: logger}
}

// Resolve returns the effective template: the church override, then the
// system template, then the built-in default.
func (s *Service) Resolve(ctx context.Context, churchID *string, kind domain.TemplateType) (domain.EmailTemplate, error) {
	if !kind.Valid() {
		return domain.EmailTemplate{}, domain.Invalid("template_type", "is not supported")
	}
	if churchID != nil && kind.ChurchEditable() {
		tpl, err := s.Templates.Get(ctx, churchID, kind)
		switch {
		case err == nil:
			return *tpl, nil
		case !errors.Is(err, domain.ErrNotFound):
			return domain.EmailTemplate{}, fmt.Errorf("load church template: %w", err)
		}
	}
	tpl, err := s.Templates.Get(ctx, nil, kind)
	switch {
	case err == nil:
		return *tpl, nil
	case !errors.Is(err, domain.ErrNotFound):
		return domain.EmailTemplate{}, fmt.Errorf("load system template: %w", err)
	}
	def, _ := Default(kind)
	return def, nil
}

// Queue renders kind for one recipient and stores it in the outbox.
func (s *Service) Queue(ctx context.Context, churchID *string, kind domain.TemplateType, to Recipient, vars Vars, relatedID *string) (*domain.OutboxMessage, error) {
	email := strings.TrimSpace(to.Email)
	if email == "" {
		return nil, domain.Invalid("recipient", "is required")
	}
	tpl, err := s.Resolve(ctx, churchID, kind)
	if err != nil {
		return nil, err
	}
	out := RenderTemplate(tpl, vars)
	msg := &domain.OutboxMessage{
		ChurchID:      churchID,
		Kind:          kind,
		Recipient:     email,
		RecipientName: strings.TrimSpace(to.Name),
		Subject:       out.Subject,
		BodyHTML:      out.BodyHTML,
		BodyText:      out.BodyText,
		RelatedID:     relatedID,
	}
	if err := s.Outbox.Enqueue(ctx, msg); err != nil {
		return nil, fmt.Errorf("enqueue %s: %w", kind, err)
	}
	metrics.RecordEmailQueued(string(kind))
	s.Logger.Debug().Str("kind", string(kind)).Str("outbox_id", msg.ID).Msg("email queued")
	return msg, nil
}

// Preview renders the effective template with sample values.
func (s *Service) Preview(ctx context.Context, church *domain.Church, kind domain.TemplateType) (Rendered, error) {
	var churchID *string
	if church != nil {
		churchID = &church.ID
	}
	tpl, err := s.Resolve(ctx, churchID, kind)
	if err != nil {
		return Rendered{}, err
	}
	return RenderTemplate(tpl, SampleVars(church)), nil
}

// ValidateTemplate checks an edited template before it is saved.
func ValidateTemplate(tpl *domain.EmailTemplate) error {
	if !tpl.Type.Valid() {
		return domain.Invalid("template_type", "is not supported")
	}
	subject, err := domain.RequireText("subject", tpl.Subject, 200)
	if err != nil {
		return err
	}
	tpl.Subject = subject
	if strings.TrimSpace(tpl.BodyHTML) == "" {
		return domain.Invalid("body_html", "is required")
	}
	if unknown := UnknownPlaceholders(tpl.Subject, tpl.BodyHTML, tpl.BodyText); len(unknown) > 0 {
		return domain.Invalid("placeholders", "unknown: "+strings.Join(unknown, ", "))
	}
	return nil
}
