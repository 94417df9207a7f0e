package repo

import (
	"context"

	"github.com/jmspivey7/PlateSync-sub002/internal/domain"
	"github.com/jmspivey7/PlateSync-sub002/internal/infra"
	"github.com/jmspivey7/PlateSync-sub002/internal/sqlinline"
)

// ServiceOptionRepositoryPG implements domain.ServiceOptionRepository.
type ServiceOptionRepositoryPG struct {
	sql infra.SQLExecutor
}

func NewServiceOptionRepository(sql infra.SQLExecutor) *ServiceOptionRepositoryPG {
	return &ServiceOptionRepositoryPG{sql: sql}
}

func (r *ServiceOptionRepositoryPG) List(ctx context.Context, churchID string) ([]domain.ServiceOption, error) {
	rows, err := r.sql.Query(ctx, sqlinline.QListServiceOptions, churchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.ServiceOption
	for rows.Next() {
		var o domain.ServiceOption
		if err := rows.Scan(&o.ID, &o.ChurchID, &o.Name, &o.IsDefault, &o.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *ServiceOptionRepositoryPG) Get(ctx context.Context, churchID, id string) (*domain.ServiceOption, error) {
	var o domain.ServiceOption
	row := r.sql.QueryRow(ctx, sqlinline.QSelectServiceOption, churchID, id)
	if err := row.Scan(&o.ID, &o.ChurchID, &o.Name, &o.IsDefault, &o.CreatedAt); err != nil {
		return nil, notFound(err)
	}
	return &o, nil
}

// Create inserts an option; a new default replaces the previous one.
func (r *ServiceOptionRepositoryPG) Create(ctx context.Context, option *domain.ServiceOption) error {
	if option.IsDefault {
		if _, err := r.sql.Exec(ctx, sqlinline.QClearDefaultServiceOption, option.ChurchID); err != nil {
			return err
		}
	}
	row := r.sql.QueryRow(ctx, sqlinline.QInsertServiceOption, option.ChurchID, option.Name, option.IsDefault)
	return writeErr(row.Scan(&option.ID, &option.CreatedAt))
}

func (r *ServiceOptionRepositoryPG) Delete(ctx context.Context, churchID, id string) error {
	tag, err := r.sql.Exec(ctx, sqlinline.QDeleteServiceOption, churchID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ReportRecipientRepositoryPG implements domain.ReportRecipientRepository.
type ReportRecipientRepositoryPG struct {
	sql infra.SQLExecutor
}

func NewReportRecipientRepository(sql infra.SQLExecutor) *ReportRecipientRepositoryPG {
	return &ReportRecipientRepositoryPG{sql: sql}
}

func (r *ReportRecipientRepositoryPG) List(ctx context.Context, churchID string) ([]domain.ReportRecipient, error) {
	rows, err := r.sql.Query(ctx, sqlinline.QListReportRecipients, churchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.ReportRecipient
	for rows.Next() {
		var rr domain.ReportRecipient
		if err := rows.Scan(&rr.ID, &rr.ChurchID, &rr.FirstName, &rr.LastName, &rr.Email, &rr.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, rr)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *ReportRecipientRepositoryPG) Create(ctx context.Context, recipient *domain.ReportRecipient) error {
	row := r.sql.QueryRow(ctx, sqlinline.QInsertReportRecipient,
		recipient.ChurchID, recipient.FirstName, recipient.LastName, recipient.Email)
	return writeErr(row.Scan(&recipient.ID, &recipient.CreatedAt))
}

func (r *ReportRecipientRepositoryPG) Delete(ctx context.Context, churchID, id string) error {
	tag, err := r.sql.Exec(ctx, sqlinline.QDeleteReportRecipient, churchID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
