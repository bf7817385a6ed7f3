package repository

import (
	"context"

	"github.com/jackc/pgx/v4"

	"marketplace_chat_service/internal/member/domain"
)

// MemberRepository read access to the member table
type MemberRepository interface {
	FindProfiles(ctx context.Context, memberIDs []string) ([]domain.Profile, error)
	Exists(ctx context.Context, memberID string) (bool, error)
}

// querier the part of *pgxpool.Pool used here
type querier interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

type memberRepository struct {
	db querier
}

// NewMemberRepository create a MemberRepository
func NewMemberRepository(db querier) MemberRepository {
	return &memberRepository{db: db}
}

func (r *memberRepository) FindProfiles(ctx context.Context, memberIDs []string) ([]domain.Profile, error) {
	if len(memberIDs) == 0 {
		return nil, nil
	}

	rows, err := r.db.Query(ctx,
		"SELECT member_id, COALESCE(NULLIF(name, ''), email) FROM member WHERE member_id = ANY($1)",
		memberIDs,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	profiles := make([]domain.Profile, 0, len(memberIDs))
	for rows.Next() {
		var p domain.Profile
		if err := rows.Scan(&p.MemberID, &p.Name); err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

func (r *memberRepository) Exists(ctx context.Context, memberID string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM member WHERE member_id = $1 AND status <> $2)",
		memberID, domain.MemberStatusDelete).Scan(&exists)
	return exists, err
}
