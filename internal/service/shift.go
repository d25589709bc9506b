package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sysu-ecnc-dev/booking-manager/backend/internal/cache"
	"github.com/sysu-ecnc-dev/booking-manager/backend/internal/domain"
	"github.com/sysu-ecnc-dev/booking-manager/backend/internal/metrics"
	"github.com/sysu-ecnc-dev/booking-manager/backend/internal/repository"
	"github.com/sysu-ecnc-dev/booking-manager/backend/internal/utils"
)

var errShiftUnavailable = errors.New("班次在提交过程中和其他班次发生了重叠")

type ShiftService struct {
	store           repository.Store
	shifts          *cache.Cache[string, []domain.ShiftSlot]
	availability    *cache.Cache[string, []domain.AvailabilitySlotGroup]
	defaultTimezone string
	isolation       sql.IsolationLevel
	now             func() time.Time
}

func NewShiftService(
	store repository.Store,
	shifts *cache.Cache[string, []domain.ShiftSlot],
	availability *cache.Cache[string, []domain.AvailabilitySlotGroup],
	defaultTimezone string,
	isolation sql.IsolationLevel,
) *ShiftService {
	return &ShiftService{
		store:           store,
		shifts:          shifts,
		availability:    availability,
		defaultTimezone: defaultTimezone,
		isolation:       isolation,
		now:             time.Now,
	}
}

// CreateShift 校验并保存员工一次提交的所有班次，要么全部保存，要么全部不保存
func (s *ShiftService) CreateShift(ctx context.Context, staffID string, timezone string, segments []domain.ShiftSegment) ([]*domain.Shift, error) {
	staffID, err := normalizeStaffID(staffID)
	if err != nil {
		return nil, err
	}

	staff, err := getStaff(ctx, s.store, staffID)
	if err != nil {
		return nil, err
	}

	loc := utils.ResolveTimezone(timezone, s.defaultTimezone)

	periods, err := utils.ValidateShiftSegments(segments, s.now(), loc)
	if err != nil {
		return nil, err
	}

	// 检查是否和已有的班次重叠
	for i, period := range periods {
		count, err := s.store.CountShiftsOverlapping(ctx, staff.ID, period.Start, period.End)
		if err != nil {
			return nil, fmt.Errorf("查询重叠班次失败: %w", err)
		}
		if count > 0 {
			return nil, domain.InvalidInput("第 %d 个班次和已有的班次重叠", i+1)
		}
	}

	shifts := make([]*domain.Shift, 0, len(periods))
	err = s.store.RunInTransaction(ctx, s.isolation, func(ctx context.Context, tx repository.Store) error {
		if err := tx.LockStaff(ctx, staff.ID); err != nil {
			return err
		}

		for _, period := range periods {
			shift := &domain.Shift{
				StaffID:       staff.ID,
				Start:         period.Start,
				End:           period.End,
				IsVisible:     period.IsVisible,
				IsReoccurring: period.IsReoccurring,
			}
			if err := tx.CreateShift(ctx, shift); err != nil {
				return err
			}

			// 插入之后再次检查，防止并发提交的班次互相重叠
			count, err := tx.CountShiftsOverlapping(ctx, staff.ID, shift.Start, shift.End)
			if err != nil {
				return err
			}
			if count > 1 {
				return errShiftUnavailable
			}

			shifts = append(shifts, shift)
		}
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, errShiftUnavailable) || repository.IsTransactionConflict(err):
			slog.Warn("提交班次时发生冲突", "staff", staffID, "error", err)
			return nil, domain.Conflict(errShiftUnavailable, "%s", errShiftUnavailable.Error())
		default:
			slog.Error("保存班次失败", "staff", staffID, "error", err)
			return nil, fmt.Errorf("保存班次失败: %w", err)
		}
	}

	s.shifts.Clear()
	s.availability.Clear()
	metrics.AddShiftsCreated(len(shifts))

	return shifts, nil
}

// ListShifts 返回员工在某个月份（按 timezone 计算）内的所有班次
func (s *ShiftService) ListShifts(ctx context.Context, staffID string, month int, year int, timezone string) ([]domain.ShiftSlot, error) {
	if err := utils.ValidateMonthYear(month, year); err != nil {
		return nil, err
	}

	staffID, err := normalizeStaffID(staffID)
	if err != nil {
		return nil, err
	}

	loc := utils.ResolveTimezone(timezone, s.defaultTimezone)
	key := cache.Key(nil, staffID, month, year, loc.String())

	epoch := s.shifts.Epoch()
	if slots, ok := s.shifts.Get(key); ok {
		metrics.IncCacheLookup("shifts", true)
		return slots, nil
	}
	metrics.IncCacheLookup("shifts", false)

	staff, err := getStaff(ctx, s.store, staffID)
	if err != nil {
		return nil, err
	}

	start, end := utils.MonthRange(month, year, loc)
	shifts, err := s.store.GetShiftsOverlappingWithMinLength(ctx, staff.ID, start, end, 0, false)
	if err != nil {
		return nil, fmt.Errorf("查询班次失败: %w", err)
	}

	slots := make([]domain.ShiftSlot, 0, len(shifts))
	for _, shift := range shifts {
		slots = append(slots, domain.ShiftSlot{
			ID:            shift.ID,
			IsVisible:     shift.IsVisible,
			IsReoccurring: shift.IsReoccurring,
			Start:         shift.Start.In(loc),
			End:           shift.End.In(loc),
		})
	}

	s.shifts.PutIfEpoch(key, slots, epoch)
	return slots, nil
}
