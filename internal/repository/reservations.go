package repository

import (
	"context"
	"time"

	"github.com/sysu-ecnc-dev/booking-manager/backend/internal/domain"
)

// CountReservationsOverlapping 统计和 [start, end) 重叠且状态属于 statuses 的预约数量
func (r *Repository) CountReservationsOverlapping(ctx context.Context, staffID int64, start time.Time, end time.Time, statuses []domain.ReservationStatus) (int64, error) {
	query := `
		SELECT COUNT(*) FROM reservation
		WHERE staff_id = $1
		AND scheduled_for < $3
		AND expire_at > $2
		AND status = ANY($4)
	`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	var count int64
	if err := r.db.QueryRowContext(ctx, query, staffID, start, end, statusStrings(statuses)).Scan(&count); err != nil {
		return 0, err
	}

	return count, nil
}

func (r *Repository) GetReservationsOverlapping(ctx context.Context, staffID int64, start time.Time, end time.Time, statuses []domain.ReservationStatus) ([]*domain.Reservation, error) {
	query := `
		SELECT
			reservation_id,
			name,
			email,
			description,
			address,
			phone,
			price,
			status,
			created_at,
			scheduled_for,
			expire_at
		FROM reservation
		WHERE staff_id = $1
		AND scheduled_for < $3
		AND expire_at > $2
		AND status = ANY($4)
		ORDER BY scheduled_for
	`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, query, staffID, start, end, statusStrings(statuses))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reservations := []*domain.Reservation{}
	for rows.Next() {
		reservation := domain.Reservation{
			StaffID: staffID,
		}
		dst := []any{
			&reservation.ID,
			&reservation.Name,
			&reservation.Email,
			&reservation.Description,
			&reservation.Address,
			&reservation.Phone,
			&reservation.Price,
			&reservation.Status,
			&reservation.CreatedAt,
			&reservation.ScheduledFor,
			&reservation.ExpireAt,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		reservations = append(reservations, &reservation)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return reservations, nil
}

func (r *Repository) CreateReservation(ctx context.Context, reservation *domain.Reservation) error {
	query := `
		INSERT INTO reservation (
			staff_id,
			name,
			email,
			description,
			address,
			phone,
			price,
			status,
			scheduled_for,
			expire_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING reservation_id, created_at
	`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	params := []any{
		reservation.StaffID,
		reservation.Name,
		reservation.Email,
		reservation.Description,
		reservation.Address,
		reservation.Phone,
		reservation.Price,
		string(reservation.Status),
		reservation.ScheduledFor,
		reservation.ExpireAt,
	}
	dst := []any{&reservation.ID, &reservation.CreatedAt}
	if err := r.db.QueryRowContext(ctx, query, params...).Scan(dst...); err != nil {
		return err
	}

	return nil
}

func (r *Repository) CreateServiceReservation(ctx context.Context, reservationID int64, serviceID int64) error {
	query := `
		INSERT INTO service_reservation (reservation_id, service_id)
		VALUES ($1, $2)
	`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	if _, err := r.db.ExecContext(ctx, query, reservationID, serviceID); err != nil {
		return err
	}

	return nil
}
