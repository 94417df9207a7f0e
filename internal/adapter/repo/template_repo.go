package repo

import (
	"context"

	"github.com/jmspivey7/PlateSync-sub002/internal/domain"
	"github.com/jmspivey7/PlateSync-sub002/internal/infra"
	"github.com/jmspivey7/PlateSync-sub002/internal/sqlinline"
)

// TemplateRepositoryPG implements domain.TemplateRepository. A nil church ID
// addresses the system-wide templates.
type TemplateRepositoryPG struct {
	sql infra.SQLExecutor
}

func NewTemplateRepository(sql infra.SQLExecutor) *TemplateRepositoryPG {
	return &TemplateRepositoryPG{sql: sql}
}

func (r *TemplateRepositoryPG) Get(ctx context.Context, churchID *string, kind domain.TemplateType) (*domain.EmailTemplate, error) {
	return scanTemplate(r.sql.QueryRow(ctx, sqlinline.QSelectTemplate, churchID, string(kind)))
}

func (r *TemplateRepositoryPG) List(ctx context.Context, churchID *string) ([]domain.EmailTemplate, error) {
	rows, err := r.sql.Query(ctx, sqlinline.QListTemplates, churchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.EmailTemplate
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *TemplateRepositoryPG) Upsert(ctx context.Context, tpl *domain.EmailTemplate) error {
	if tpl.ChurchID == nil {
		row := r.sql.QueryRow(ctx, sqlinline.QUpsertSystemTemplate, string(tpl.Type), tpl.Subject, tpl.BodyHTML, tpl.BodyText)
		return row.Scan(&tpl.ID, &tpl.UpdatedAt)
	}
	row := r.sql.QueryRow(ctx, sqlinline.QUpsertChurchTemplate, *tpl.ChurchID, string(tpl.Type), tpl.Subject, tpl.BodyHTML, tpl.BodyText)
	return writeErr(row.Scan(&tpl.ID, &tpl.UpdatedAt))
}

// Delete drops a church override so the system template applies again.
func (r *TemplateRepositoryPG) Delete(ctx context.Context, churchID string, kind domain.TemplateType) error {
	tag, err := r.sql.Exec(ctx, sqlinline.QDeleteChurchTemplate, churchID, string(kind))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
