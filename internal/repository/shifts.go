package repository

import (
	"context"
	"time"

	"github.com/sysu-ecnc-dev/booking-manager/backend/internal/domain"
)

// CountShiftsOverlapping 统计和 [start, end] 重叠的班次数量，端点相接也算重叠
func (r *Repository) CountShiftsOverlapping(ctx context.Context, staffID int64, start time.Time, end time.Time) (int64, error) {
	query := `
		SELECT COUNT(*) FROM shift
		WHERE staff_id = $1
		AND shift_start <= $3
		AND shift_end >= $2
	`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	var count int64
	if err := r.db.QueryRowContext(ctx, query, staffID, start, end).Scan(&count); err != nil {
		return 0, err
	}

	return count, nil
}

// CountVisibleShiftsOverlappingWithMinLength 统计完整包含 [start, end) 且时长不少于 minSeconds 的可见班次数量
func (r *Repository) CountVisibleShiftsOverlappingWithMinLength(ctx context.Context, staffID int64, start time.Time, end time.Time, minSeconds int64) (int64, error) {
	query := `
		SELECT COUNT(*) FROM shift
		WHERE staff_id = $1
		AND is_visible = TRUE
		AND shift_start <= $2
		AND shift_end >= $3
		AND EXTRACT(EPOCH FROM (shift_end - shift_start)) >= $4
	`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	var count int64
	if err := r.db.QueryRowContext(ctx, query, staffID, start, end, minSeconds).Scan(&count); err != nil {
		return 0, err
	}

	return count, nil
}

func (r *Repository) GetShiftsOverlappingWithMinLength(ctx context.Context, staffID int64, start time.Time, end time.Time, minSeconds int64, visibleOnly bool) ([]*domain.Shift, error) {
	query := `
		SELECT shift_id, staff_id, shift_start, shift_end, is_visible, is_reoccurring
		FROM shift
		WHERE staff_id = $1
		AND shift_start < $3
		AND shift_end > $2
		AND EXTRACT(EPOCH FROM (shift_end - shift_start)) >= $4
		AND (is_visible = TRUE OR NOT $5)
		ORDER BY shift_start
	`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, query, staffID, start, end, minSeconds, visibleOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	shifts := []*domain.Shift{}
	for rows.Next() {
		var shift domain.Shift
		dst := []any{
			&shift.ID,
			&shift.StaffID,
			&shift.Start,
			&shift.End,
			&shift.IsVisible,
			&shift.IsReoccurring,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		shifts = append(shifts, &shift)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return shifts, nil
}

func (r *Repository) CreateShift(ctx context.Context, shift *domain.Shift) error {
	query := `
		INSERT INTO shift (staff_id, shift_start, shift_end, is_visible, is_reoccurring)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING shift_id
	`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	params := []any{
		shift.StaffID,
		shift.Start,
		shift.End,
		shift.IsVisible,
		shift.IsReoccurring,
	}
	if err := r.db.QueryRowContext(ctx, query, params...).Scan(&shift.ID); err != nil {
		return err
	}

	return nil
}
