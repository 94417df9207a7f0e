package repo

import (
	"context"

	"github.com/jmspivey7/PlateSync-sub002/internal/domain"
	"github.com/jmspivey7/PlateSync-sub002/internal/infra"
	"github.com/jmspivey7/PlateSync-sub002/internal/sqlinline"
)

// MemberRepositoryPG implements domain.MemberRepository backed by PostgreSQL.
type MemberRepositoryPG struct {
	sql infra.SQLExecutor
}

// NewMemberRepository creates a new MemberRepositoryPG.
func NewMemberRepository(sql infra.SQLExecutor) *MemberRepositoryPG {
	return &MemberRepositoryPG{sql: sql}
}

// List returns one page of members and the total match count.
func (r *MemberRepositoryPG) List(ctx context.Context, churchID string, filter domain.MemberFilter) ([]domain.Member, int, error) {
	limit := filter.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	rows, err := r.sql.Query(ctx, sqlinline.QListMembers, churchID, filter.Query, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var (
		items []domain.Member
		total int
	)
	for rows.Next() {
		m, err := scanMember(rows, &total)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *MemberRepositoryPG) Get(ctx context.Context, churchID, id string) (*domain.Member, error) {
	return scanMember(r.sql.QueryRow(ctx, sqlinline.QSelectMember, churchID, id))
}

func (r *MemberRepositoryPG) Create(ctx context.Context, member *domain.Member) error {
	row := r.sql.QueryRow(ctx, sqlinline.QInsertMember,
		member.ChurchID, member.FirstName, member.LastName, member.Email, member.Phone, member.ExternalID, member.Notes)
	return writeErr(row.Scan(&member.ID, &member.CreatedAt, &member.UpdatedAt))
}

func (r *MemberRepositoryPG) Update(ctx context.Context, member *domain.Member) error {
	row := r.sql.QueryRow(ctx, sqlinline.QUpdateMember,
		member.ChurchID, member.ID, member.FirstName, member.LastName, member.Email, member.Phone, member.Notes)
	return notFound(row.Scan(&member.UpdatedAt))
}

// Delete removes a member; past donations keep their amounts and become anonymous.
func (r *MemberRepositoryPG) Delete(ctx context.Context, churchID, id string) error {
	tag, err := r.sql.Exec(ctx, sqlinline.QDeleteMember, churchID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpsertExternal inserts or refreshes a member keyed by ExternalID and reports
// whether a new row was created.
func (r *MemberRepositoryPG) UpsertExternal(ctx context.Context, member *domain.Member) (bool, error) {
	var inserted bool
	row := r.sql.QueryRow(ctx, sqlinline.QUpsertMemberExternal,
		member.ChurchID, member.FirstName, member.LastName, member.Email, member.Phone, member.ExternalID)
	if err := row.Scan(&member.ID, &inserted, &member.CreatedAt, &member.UpdatedAt); err != nil {
		return false, err
	}
	return inserted, nil
}

// DonationHistory returns the member's most recent donations.
func (r *MemberRepositoryPG) DonationHistory(ctx context.Context, churchID, memberID string, limit int) ([]domain.Donation, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.sql.Query(ctx, sqlinline.QMemberDonationHistory, churchID, memberID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.Donation
	for rows.Next() {
		d, err := scanDonation(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
