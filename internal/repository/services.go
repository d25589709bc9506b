package repository

import (
	"context"

	"github.com/sysu-ecnc-dev/booking-manager/backend/internal/domain"
)

func (r *Repository) GetServicesOfferedByStaff(ctx context.Context, staffID int64) ([]*domain.Service, error) {
	query := `
		SELECT s.service_id, s.name, s.price, s.is_visible, s.duration, s.clean_up_time
		FROM service s
		JOIN staff_service ss ON ss.service_id = s.service_id
		WHERE ss.staff_id = $1
		ORDER BY s.service_id
	`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, query, staffID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	services := []*domain.Service{}
	for rows.Next() {
		var service domain.Service
		dst := []any{
			&service.ID,
			&service.Name,
			&service.Price,
			&service.IsVisible,
			&service.Duration,
			&service.CleanUpTime,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		services = append(services, &service)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return services, nil
}

func (r *Repository) CreateService(ctx context.Context, service *domain.Service) error {
	query := `
		INSERT INTO service (name, price, is_visible, duration, clean_up_time)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING service_id
	`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	params := []any{
		service.Name,
		service.Price,
		service.IsVisible,
		service.Duration,
		service.CleanUpTime,
	}
	if err := r.db.QueryRowContext(ctx, query, params...).Scan(&service.ID); err != nil {
		return err
	}

	return nil
}
