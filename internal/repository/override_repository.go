package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/mentorship-service/internal/domain"
)

// OverrideRequestRepository encapsulates override request persistence.
// Status changes go through CompareAndSetStatus only, so the store's
// atomic conditional update is the single arbiter of concurrent
// resolution attempts.
type OverrideRequestRepository interface {
	Create(ctx context.Context, request *domain.OverrideRequest) error
	GetByID(ctx context.Context, id string) (*domain.OverrideRequest, error)
	// FindPendingByPair returns the pending request for the given pair,
	// or pgx.ErrNoRows. Requests are always created mentee→mentor, so the
	// lookup matches the columns in that same orientation.
	FindPendingByPair(ctx context.Context, mentorID, menteeID string) (*domain.OverrideRequest, error)
	// ListPending returns pending requests joined with display names, in
	// creation order.
	ListPending(ctx context.Context) ([]domain.QueueItem, error)
	// ListExpiredPending returns ids of pending requests whose expiration
	// has passed as of now.
	ListExpiredPending(ctx context.Context, now time.Time) ([]string, error)
	// CompareAndSetStatus transitions status only when the stored value
	// still equals expected. Returns false without error when the
	// condition failed (row missing or status already moved).
	CompareAndSetStatus(ctx context.Context, id string, expected, next domain.OverrideStatus, resolvedBy *string, resolvedAt time.Time) (bool, error)
}

type overrideRequestRepository struct {
	pool *pgxpool.Pool
}

// NewOverrideRequestRepository instantiates repository.
func NewOverrideRequestRepository(pool *pgxpool.Pool) OverrideRequestRepository {
	return &overrideRequestRepository{pool: pool}
}

func (r *overrideRequestRepository) Create(ctx context.Context, request *domain.OverrideRequest) error {
	const query = `
        INSERT INTO override_requests (mentee_id, mentor_id, mentee_tier, mentor_tier, tier_difference,
            score_algorithm, score_total, score_tag_overlap, score_stage_match, score_reputation_compat,
            status, expires_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		request.MenteeID,
		request.MentorID,
		request.MenteeTier,
		request.MentorTier,
		request.TierDifference,
		request.Score.Algorithm,
		request.Score.Total,
		request.Score.TagOverlap,
		request.Score.StageMatch,
		request.Score.ReputationCompat,
		request.Status,
		request.ExpiresAt,
	).Scan(&request.ID, &request.CreatedAt)
}

func (r *overrideRequestRepository) GetByID(ctx context.Context, id string) (*domain.OverrideRequest, error) {
	const query = overrideSelect + ` WHERE id=$1`
	var request domain.OverrideRequest
	if err := scanOverride(r.pool.QueryRow(ctx, query, id), &request); err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *overrideRequestRepository) FindPendingByPair(ctx context.Context, mentorID, menteeID string) (*domain.OverrideRequest, error) {
	const query = overrideSelect + `
        WHERE mentor_id=$1 AND mentee_id=$2 AND status=$3
        ORDER BY created_at LIMIT 1`
	var request domain.OverrideRequest
	if err := scanOverride(r.pool.QueryRow(ctx, query, mentorID, menteeID, domain.OverrideStatusPending), &request); err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *overrideRequestRepository) ListPending(ctx context.Context) ([]domain.QueueItem, error) {
	const query = `
        SELECT o.id, o.mentee_id, o.mentor_id, o.mentee_tier, o.mentor_tier, o.tier_difference,
               o.score_algorithm, o.score_total, o.score_tag_overlap, o.score_stage_match, o.score_reputation_compat,
               o.status, o.created_at, o.expires_at, o.resolved_by, o.resolved_at,
               mentee.name, mentor.name
        FROM override_requests o
        JOIN users mentee ON mentee.id = o.mentee_id
        JOIN users mentor ON mentor.id = o.mentor_id
        WHERE o.status=$1
        ORDER BY o.created_at, o.id`

	rows, err := r.pool.Query(ctx, query, domain.OverrideStatusPending)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.QueueItem
	for rows.Next() {
		var item domain.QueueItem
		if err := rows.Scan(
			&item.ID,
			&item.MenteeID,
			&item.MentorID,
			&item.MenteeTier,
			&item.MentorTier,
			&item.TierDifference,
			&item.Score.Algorithm,
			&item.Score.Total,
			&item.Score.TagOverlap,
			&item.Score.StageMatch,
			&item.Score.ReputationCompat,
			&item.Status,
			&item.CreatedAt,
			&item.ExpiresAt,
			&item.ResolvedBy,
			&item.ResolvedAt,
			&item.MenteeName,
			&item.MentorName,
		); err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	return result, rows.Err()
}

func (r *overrideRequestRepository) ListExpiredPending(ctx context.Context, now time.Time) ([]string, error) {
	const query = `
        SELECT id FROM override_requests
        WHERE status=$1 AND expires_at <= $2
        ORDER BY expires_at`

	rows, err := r.pool.Query(ctx, query, domain.OverrideStatusPending, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *overrideRequestRepository) CompareAndSetStatus(ctx context.Context, id string, expected, next domain.OverrideStatus, resolvedBy *string, resolvedAt time.Time) (bool, error) {
	const query = `
        UPDATE override_requests SET status=$1, resolved_by=$2, resolved_at=$3
        WHERE id=$4 AND status=$5`
	cmd, err := r.pool.Exec(ctx, query, next, resolvedBy, resolvedAt, id, expected)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

const overrideSelect = `
        SELECT id, mentee_id, mentor_id, mentee_tier, mentor_tier, tier_difference,
               score_algorithm, score_total, score_tag_overlap, score_stage_match, score_reputation_compat,
               status, created_at, expires_at, resolved_by, resolved_at
        FROM override_requests`

func scanOverride(row pgx.Row, request *domain.OverrideRequest) error {
	return row.Scan(
		&request.ID,
		&request.MenteeID,
		&request.MentorID,
		&request.MenteeTier,
		&request.MentorTier,
		&request.TierDifference,
		&request.Score.Algorithm,
		&request.Score.Total,
		&request.Score.TagOverlap,
		&request.Score.StageMatch,
		&request.Score.ReputationCompat,
		&request.Status,
		&request.CreatedAt,
		&request.ExpiresAt,
		&request.ResolvedBy,
		&request.ResolvedAt,
	)
}
