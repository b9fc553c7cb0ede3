package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nickhellmer/vibedrop/internal/domain"
)

const uniqueViolationCode = "23505"

type CircleRepo struct {
	pool *pgxpool.Pool
}

func NewCircleRepo(pool *pgxpool.Pool) *CircleRepo {
	return &CircleRepo{pool: pool}
}

const circleColumns = `id, name, join_code, creator_id, drop_frequency, anchor_day_1, anchor_day_2, drop_time, created_at, updated_at`

func scanCircle(row pgx.Row) (*domain.SoundCircle, error) {
	var (
		c         domain.SoundCircle
		creatorID *uuid.UUID
		anchor2   *int
		frequency string
		anchor1   int
		dropTime  *time.Time
	)
	err := row.Scan(
		&c.ID, &c.Name, &c.JoinCode, &creatorID, &frequency,
		&anchor1, &anchor2, &dropTime, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if creatorID != nil {
		c.CreatorID = *creatorID
	}
	c.Rule = domain.DropRule{
		Frequency:  domain.DropFrequency(frequency),
		AnchorDay1: time.Weekday(anchor1),
	}
	if anchor2 != nil {
		day := time.Weekday(*anchor2)
		c.Rule.AnchorDay2 = &day
	}
	if dropTime != nil {
		c.Rule.DropTime = *dropTime
	}
	return &c, nil
}

func ruleColumns(rule domain.DropRule) (string, int, *int, *time.Time) {
	var anchor2 *int
	if rule.AnchorDay2 != nil {
		v := int(*rule.AnchorDay2)
		anchor2 = &v
	}
	var dropTime *time.Time
	if !rule.DropTime.IsZero() {
		t := rule.DropTime
		dropTime = &t
	}
	return string(rule.Frequency), int(rule.AnchorDay1), anchor2, dropTime
}

// Create inserts the circle and its owner membership in one transaction.
func (r *CircleRepo) Create(ctx context.Context, name, joinCode string, creatorID uuid.UUID, rule domain.DropRule) (*domain.SoundCircle, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	frequency, anchor1, anchor2, dropTime := ruleColumns(rule)
	row := tx.QueryRow(ctx, `
		INSERT INTO sound_circles (name, join_code, creator_id, drop_frequency, anchor_day_1, anchor_day_2, drop_time, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING `+circleColumns,
		name, joinCode, creatorID, frequency, anchor1, anchor2, dropTime)

	circle, err := scanCircle(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrJoinCodeTaken
		}
		return nil, fmt.Errorf("failed to create circle: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO circle_memberships (user_id, circle_id, is_owner, joined_at)
		VALUES ($1, $2, TRUE, NOW())`,
		creatorID, circle.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create owner membership: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return circle, nil
}

func (r *CircleRepo) GetByID(ctx context.Context, circleID uuid.UUID) (*domain.SoundCircle, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+circleColumns+` FROM sound_circles WHERE id = $1`, circleID)
	circle, err := scanCircle(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrCircleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get circle by ID: %w", err)
	}
	return circle, nil
}

func (r *CircleRepo) GetByJoinCode(ctx context.Context, joinCode string) (*domain.SoundCircle, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+circleColumns+` FROM sound_circles WHERE join_code = $1`, joinCode)
	circle, err := scanCircle(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrCircleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get circle by join code: %w", err)
	}
	return circle, nil
}

// GetForUser returns the circle a user belongs to. Users hold at most one
// membership in the current product.
func (r *CircleRepo) GetForUser(ctx context.Context, userID uuid.UUID) (*domain.SoundCircle, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+prefixedCircleColumns("c")+`
		FROM sound_circles c
		JOIN circle_memberships m ON m.circle_id = c.id
		WHERE m.user_id = $1
		ORDER BY m.joined_at
		LIMIT 1`, userID)
	circle, err := scanCircle(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNoMembership
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get circle for user: %w", err)
	}
	return circle, nil
}

// UpdateRule mutates the circle's name and recurrence rule. Past submissions
// keep their cycle classification; only future resolver calls see the change.
func (r *CircleRepo) UpdateRule(ctx context.Context, circleID uuid.UUID, name string, rule domain.DropRule) error {
	frequency, anchor1, anchor2, dropTime := ruleColumns(rule)
	tag, err := r.pool.Exec(ctx, `
		UPDATE sound_circles
		SET name = $2, drop_frequency = $3, anchor_day_1 = $4, anchor_day_2 = $5, drop_time = $6, updated_at = NOW()
		WHERE id = $1`,
		circleID, name, frequency, anchor1, anchor2, dropTime)
	if err != nil {
		return fmt.Errorf("failed to update circle rule: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCircleNotFound
	}
	return nil
}

func (r *CircleRepo) AddMember(ctx context.Context, circleID, userID uuid.UUID, isOwner bool) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO circle_memberships (user_id, circle_id, is_owner, joined_at)
		VALUES ($1, $2, $3, NOW())`,
		userID, circleID, isOwner)
	if isUniqueViolation(err) {
		return domain.ErrMembershipExists
	}
	if err != nil {
		return fmt.Errorf("failed to add member: %w", err)
	}
	return nil
}

func (r *CircleRepo) IsMember(ctx context.Context, circleID, userID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM circle_memberships WHERE circle_id = $1 AND user_id = $2
		)`,
		circleID, userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check membership: %w", err)
	}
	return exists, nil
}

func (r *CircleRepo) MemberCount(ctx context.Context, circleID uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM circle_memberships WHERE circle_id = $1`, circleID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count members: %w", err)
	}
	return count, nil
}

func prefixedCircleColumns(alias string) string {
	return alias + `.id, ` + alias + `.name, ` + alias + `.join_code, ` + alias + `.creator_id, ` +
		alias + `.drop_frequency, ` + alias + `.anchor_day_1, ` + alias + `.anchor_day_2, ` +
		alias + `.drop_time, ` + alias + `.created_at, ` + alias + `.updated_at`
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}
