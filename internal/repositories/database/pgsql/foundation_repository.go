package pgsql

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stiftly/foundation_ledger_app/internal/apperrors"
	"github.com/stiftly/foundation_ledger_app/internal/core/domain"
	portsrepo "github.com/stiftly/foundation_ledger_app/internal/core/ports/repositories"
	"github.com/stiftly/foundation_ledger_app/internal/models"
	"github.com/stiftly/foundation_ledger_app/internal/utils/mapping"
)

type PgxFoundationRepository struct {
	BaseRepository
}

// newPgxFoundationRepository creates a new repository for foundation data.
func newPgxFoundationRepository(pool *pgxpool.Pool) portsrepo.FoundationRepositoryWithTx {
	return &PgxFoundationRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure PgxFoundationRepository implements portsrepo.FoundationRepositoryWithTx
var _ portsrepo.FoundationRepositoryWithTx = (*PgxFoundationRepository)(nil)

const foundationSelectQuery = `
SELECT
	f.foundation_id, f.name, f.org_number, f.default_currency_code, f.tax_rate, f.is_active,
	f.created_at, f.created_by, f.last_updated_at, f.last_updated_by
FROM foundations f
`

// getFoundations runs the shared select with the given filter and collects rows.
func (r *PgxFoundationRepository) getFoundations(ctx context.Context, filterQuery string, args ...any) ([]domain.Foundation, error) {
	query := foundationSelectQuery + filterQuery
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewPersistenceError("failed to query foundations", err)
	}
	defer rows.Close()

	modelFoundations := []models.Foundation{}
	for rows.Next() {
		var m models.Foundation
		if err := rows.Scan(
			&m.FoundationID,
			&m.Name,
			&m.OrgNumber,
			&m.DefaultCurrencyCode,
			&m.TaxRate,
			&m.IsActive,
			&m.CreatedAt,
			&m.CreatedBy,
			&m.LastUpdatedAt,
			&m.LastUpdatedBy,
		); err != nil {
			return nil, apperrors.NewPersistenceError("failed to scan foundation row", err)
		}
		modelFoundations = append(modelFoundations, m)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.NewPersistenceError("failed to collect foundation rows", err)
	}

	domainFoundations := make([]domain.Foundation, len(modelFoundations))
	for i, m := range modelFoundations {
		domainFoundations[i] = mapping.ToDomainFoundation(m)
	}
	return domainFoundations, nil
}

func (r *PgxFoundationRepository) SaveFoundation(ctx context.Context, foundation domain.Foundation) error {
	modelFoundation := mapping.ToModelFoundation(foundation)

	query := `
		INSERT INTO foundations (
			foundation_id, name, org_number, default_currency_code, tax_rate, is_active,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	_, err := r.Pool.Exec(ctx, query,
		modelFoundation.FoundationID,
		modelFoundation.Name,
		modelFoundation.OrgNumber,
		modelFoundation.DefaultCurrencyCode,
		modelFoundation.TaxRate,
		modelFoundation.IsActive,
		modelFoundation.CreatedAt,
		modelFoundation.CreatedBy,
		modelFoundation.LastUpdatedAt,
		modelFoundation.LastUpdatedBy,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == "23505" { // unique_violation
				return apperrors.NewConflictError("foundation ID " + foundation.FoundationID + " already exists")
			}
		}
		return apperrors.NewPersistenceError("failed to save foundation "+foundation.FoundationID, err)
	}
	return nil
}

func (r *PgxFoundationRepository) UpdateFoundation(ctx context.Context, foundation domain.Foundation) error {
	modelFoundation := mapping.ToModelFoundation(foundation)

	query := `
		UPDATE foundations
		SET name = $2, org_number = $3, default_currency_code = $4, tax_rate = $5, is_active = $6,
		    last_updated_at = $7, last_updated_by = $8
		WHERE foundation_id = $1;
	`
	cmdTag, err := r.Pool.Exec(ctx, query,
		modelFoundation.FoundationID,
		modelFoundation.Name,
		modelFoundation.OrgNumber,
		modelFoundation.DefaultCurrencyCode,
		modelFoundation.TaxRate,
		modelFoundation.IsActive,
		modelFoundation.LastUpdatedAt,
		modelFoundation.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewPersistenceError("failed to update foundation "+foundation.FoundationID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PgxFoundationRepository) FindFoundationByID(ctx context.Context, foundationID string) (*domain.Foundation, error) {
	query := `WHERE f.foundation_id = $1`
	foundations, err := r.getFoundations(ctx, query, foundationID)
	if err != nil {
		return nil, err
	}
	if len(foundations) == 0 {
		return nil, apperrors.ErrNotFound
	}
	return &foundations[0], nil
}

func (r *PgxFoundationRepository) ListFoundationsByUserID(ctx context.Context, userID string) ([]domain.Foundation, error) {
	query := `
		JOIN foundation_members fm ON f.foundation_id = fm.foundation_id
		WHERE fm.user_id = $1 AND fm.role != $2 AND f.is_active = TRUE
		ORDER BY f.name;
	`
	return r.getFoundations(ctx, query, userID, domain.RoleRemoved)
}

func (r *PgxFoundationRepository) AddMember(ctx context.Context, membership domain.FoundationMember) error {
	query := `
		INSERT INTO foundation_members (user_id, foundation_id, role, joined_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, foundation_id) DO UPDATE SET role = EXCLUDED.role;
	` // Upsert: add the member or update their role if they already exist
	_, err := r.Pool.Exec(ctx, query,
		membership.UserID,
		membership.FoundationID,
		membership.Role,
		membership.JoinedAt,
	)
	if err != nil {
		return apperrors.NewPersistenceError("failed to add/update user "+membership.UserID+" in foundation "+membership.FoundationID, err)
	}
	return nil
}

func (r *PgxFoundationRepository) FindMemberRole(ctx context.Context, foundationID string, userID string) (*domain.FoundationMember, error) {
	query := `
		SELECT user_id, foundation_id, role, joined_at
		FROM foundation_members
		WHERE user_id = $1 AND foundation_id = $2;
	`
	var fm domain.FoundationMember
	err := r.Pool.QueryRow(ctx, query, userID, foundationID).Scan(
		&fm.UserID,
		&fm.FoundationID,
		&fm.Role,
		&fm.JoinedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("foundation membership not found")
		}
		return nil, apperrors.NewPersistenceError("failed to find role of user "+userID+" in foundation "+foundationID, err)
	}
	return &fm, nil
}

func (r *PgxFoundationRepository) ListMembers(ctx context.Context, foundationID string) ([]domain.FoundationMember, error) {
	query := `
		SELECT fm.user_id, u.name AS user_name, fm.foundation_id, fm.role, fm.joined_at
		FROM foundation_members fm
		JOIN users u ON fm.user_id = u.user_id
		WHERE fm.foundation_id = $1 AND fm.role != $2
		ORDER BY fm.joined_at DESC;
	`
	rows, err := r.Pool.Query(ctx, query, foundationID, domain.RoleRemoved)
	if err != nil {
		return nil, apperrors.NewPersistenceError("failed to query members for foundation "+foundationID, err)
	}
	defer rows.Close()

	var members []domain.FoundationMember
	for rows.Next() {
		var fm domain.FoundationMember
		if err := rows.Scan(
			&fm.UserID,
			&fm.UserName,
			&fm.FoundationID,
			&fm.Role,
			&fm.JoinedAt,
		); err != nil {
			return nil, apperrors.NewPersistenceError("failed to scan foundation member row", err)
		}
		members = append(members, fm)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.NewPersistenceError("error iterating foundation member rows", err)
	}

	return members, nil
}

func (r *PgxFoundationRepository) UpdateMemberRole(ctx context.Context, foundationID string, userID string, role domain.FoundationRole) error {
	query := `
		UPDATE foundation_members
		SET role = $3
		WHERE user_id = $1 AND foundation_id = $2;
	`
	result, err := r.Pool.Exec(ctx, query, userID, foundationID, role)
	if err != nil {
		return apperrors.NewPersistenceError("failed to update role for user "+userID+" in foundation "+foundationID, err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("foundation membership not found")
	}
	return nil
}
