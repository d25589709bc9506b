package repository

import (
	"context"

	"github.com/sysu-ecnc-dev/booking-manager/backend/internal/domain"
)

func (r *Repository) GetStaffByUUID(ctx context.Context, uuid string) (*domain.Staff, error) {
	query := `
		SELECT staff_id, bio, profile_id
		FROM staff WHERE staff_uuid = $1
	`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	staff := &domain.Staff{
		UUID: uuid,
	}

	dst := []any{&staff.ID, &staff.Bio, &staff.ProfileID}
	if err := r.db.QueryRowContext(ctx, query, uuid).Scan(dst...); err != nil {
		return nil, err
	}

	return staff, nil
}

func (r *Repository) LockStaff(ctx context.Context, staffID int64) error {
	query := `
		SELECT staff_id FROM staff
		WHERE staff_id = $1
		FOR UPDATE
	`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	var id int64
	if err := r.db.QueryRowContext(ctx, query, staffID).Scan(&id); err != nil {
		return err
	}

	return nil
}

func (r *Repository) CreateStaff(ctx context.Context, staff *domain.Staff) error {
	query := `
		INSERT INTO staff (staff_uuid, bio, profile_id)
		VALUES ($1, $2, $3)
		RETURNING staff_id
	`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	if err := r.db.QueryRowContext(ctx, query, staff.UUID, staff.Bio, staff.ProfileID).Scan(&staff.ID); err != nil {
		return err
	}

	return nil
}

func (r *Repository) LinkStaffService(ctx context.Context, staffID int64, serviceID int64) error {
	query := `
		INSERT INTO staff_service (staff_id, service_id)
		VALUES ($1, $2)
		ON CONFLICT (staff_id, service_id) DO NOTHING
	`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	if _, err := r.db.ExecContext(ctx, query, staffID, serviceID); err != nil {
		return err
	}

	return nil
}
