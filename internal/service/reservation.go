package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sysu-ecnc-dev/booking-manager/backend/internal/cache"
	"github.com/sysu-ecnc-dev/booking-manager/backend/internal/domain"
	"github.com/sysu-ecnc-dev/booking-manager/backend/internal/metrics"
	"github.com/sysu-ecnc-dev/booking-manager/backend/internal/repository"
	"github.com/sysu-ecnc-dev/booking-manager/backend/internal/scheduler"
	"github.com/sysu-ecnc-dev/booking-manager/backend/internal/utils"
)

// maxAvailabilityRange 是按照区间查询可预约时间时允许的最大跨度
const maxAvailabilityRange = 31 * 24 * time.Hour

// Notifier 在预约成功提交之后被调用
type Notifier interface {
	NotifyReservationCreated(ctx context.Context, to string, data domain.ReservationCreatedMailData) error
}

type ReservationService struct {
	store           repository.Store
	availability    *cache.Cache[string, []domain.AvailabilitySlotGroup]
	notifier        Notifier
	defaultTimezone string
	isolation       sql.IsolationLevel
	now             func() time.Time
}

func NewReservationService(
	store repository.Store,
	availability *cache.Cache[string, []domain.AvailabilitySlotGroup],
	notifier Notifier,
	defaultTimezone string,
	isolation sql.IsolationLevel,
) *ReservationService {
	return &ReservationService{
		store:           store,
		availability:    availability,
		notifier:        notifier,
		defaultTimezone: defaultTimezone,
		isolation:       isolation,
		now:             time.Now,
	}
}

func (s *ReservationService) CreateReservation(ctx context.Context, req domain.ReservationRequest) (*domain.Reservation, error) {
	// 校验员工、服务和预约时间
	staffID, err := normalizeStaffID(req.StaffID)
	if err != nil {
		metrics.IncReservationAttempt(metrics.OutcomeRejected)
		return nil, err
	}

	staff, err := getStaff(ctx, s.store, staffID)
	if err != nil {
		metrics.IncReservationAttempt(outcomeOf(err))
		return nil, err
	}

	offered, err := s.store.GetServicesOfferedByStaff(ctx, staff.ID)
	if err != nil {
		metrics.IncReservationAttempt(metrics.OutcomeFailed)
		return nil, fmt.Errorf("查询员工提供的服务失败: %w", err)
	}

	matched, err := matchServices(req.Services, offered)
	if err != nil {
		metrics.IncReservationAttempt(outcomeOf(err))
		return nil, err
	}

	loc := utils.ResolveTimezone(req.Timezone, s.defaultTimezone)
	seconds := totalSeconds(matched)
	scheduledFor := req.Time.In(loc)
	expireAt := scheduledFor.Add(time.Duration(seconds) * time.Second)

	if !scheduledFor.After(s.now()) {
		metrics.IncReservationAttempt(metrics.OutcomeRejected)
		return nil, domain.InvalidInput("预约时间不能早于当前时间")
	}

	// 预检查，只能拦截大部分冲突，无法防止并发请求同时通过
	shiftCount, err := s.store.CountVisibleShiftsOverlappingWithMinLength(ctx, staff.ID, scheduledFor, expireAt, seconds)
	if err != nil {
		metrics.IncReservationAttempt(metrics.OutcomeFailed)
		return nil, fmt.Errorf("查询班次失败: %w", err)
	}
	if shiftCount == 0 {
		metrics.IncReservationAttempt(metrics.OutcomeRejected)
		return nil, domain.InvalidInput("预约时间不在员工的可预约时间内")
	}

	reservationCount, err := s.store.CountReservationsOverlapping(ctx, staff.ID, scheduledFor, expireAt, domain.ActiveReservationStatuses)
	if err != nil {
		metrics.IncReservationAttempt(metrics.OutcomeFailed)
		return nil, fmt.Errorf("查询重叠预约失败: %w", err)
	}
	if reservationCount > 0 {
		slog.Warn("预约和已有的预约冲突", "staff", staffID, "scheduledFor", scheduledFor)
		metrics.IncReservationAttempt(metrics.OutcomeConflict)
		return nil, domain.Conflict(nil, "预约时间和已有的待确认或已确认预约冲突")
	}

	// 在事务中插入预约，插入之后再次检查是否冲突
	price := decimal.Zero
	for _, service := range matched {
		price = price.Add(service.Price)
	}

	reservation := &domain.Reservation{
		StaffID:      staff.ID,
		Name:         strings.TrimSpace(req.Name),
		Email:        strings.TrimSpace(req.Email),
		Description:  optionalString(req.Description),
		Address:      optionalString(req.Address),
		Phone:        optionalString(req.Phone),
		Price:        price,
		Status:       domain.ReservationPending,
		ScheduledFor: scheduledFor,
		ExpireAt:     expireAt,
	}

	err = s.store.RunInTransaction(ctx, s.isolation, func(ctx context.Context, tx repository.Store) error {
		// 先锁住员工，同一员工的预约事务串行执行，后面的复查才能看到已提交的预约
		if err := tx.LockStaff(ctx, staff.ID); err != nil {
			return err
		}

		if err := tx.CreateReservation(ctx, reservation); err != nil {
			return err
		}

		for _, service := range matched {
			if err := tx.CreateServiceReservation(ctx, reservation.ID, service.ID); err != nil {
				return err
			}
		}

		count, err := tx.CountReservationsOverlapping(ctx, staff.ID, scheduledFor, expireAt, domain.ActiveReservationStatuses)
		if err != nil {
			return err
		}
		if count > 1 {
			return domain.ErrReservationUnavailable
		}

		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrReservationUnavailable) || repository.IsTransactionConflict(err):
			slog.Warn("预约在提交时发生冲突", "staff", staffID, "scheduledFor", scheduledFor, "error", err)
			metrics.IncReservationAttempt(metrics.OutcomeConflict)
			return nil, domain.Conflict(domain.ErrReservationUnavailable, "%s", domain.ErrReservationUnavailable.Error())
		default:
			slog.Error("保存预约失败", "staff", staffID, "error", err)
			metrics.IncReservationAttempt(metrics.OutcomeFailed)
			return nil, fmt.Errorf("保存预约失败: %w", err)
		}
	}

	metrics.IncReservationAttempt(metrics.OutcomeCreated)

	// 任何一次成功的预约都会使缓存的可预约时间失效
	s.availability.Clear()

	if s.notifier != nil {
		names := make([]string, 0, len(matched))
		for _, service := range matched {
			names = append(names, service.Name)
		}

		data := domain.ReservationCreatedMailData{
			Name:         reservation.Name,
			Services:     names,
			Price:        reservation.Price.StringFixed(2),
			ScheduledFor: scheduledFor,
			ExpireAt:     expireAt,
			Timezone:     loc.String(),
		}
		// 预约已经提交，通知失败只记录日志
		if err := s.notifier.NotifyReservationCreated(ctx, reservation.Email, data); err != nil {
			slog.Error("发送预约通知失败", "reservation", reservation.ID, "error", err)
		}
	}

	return reservation, nil
}

// GetAvailability 返回员工在指定时间范围内可以预约的所有开始时间，按日期分组
func (s *ReservationService) GetAvailability(ctx context.Context, query domain.AvailabilityQuery) ([]domain.AvailabilitySlotGroup, error) {
	staffID, err := normalizeStaffID(query.StaffID)
	if err != nil {
		return nil, err
	}

	loc := utils.ResolveTimezone(query.Timezone, s.defaultTimezone)

	var (
		start time.Time
		end   time.Time
		key   string
	)
	if query.Start != nil && query.End != nil {
		if !query.End.After(*query.Start) {
			return nil, domain.InvalidInput("结束时间必须晚于开始时间")
		}
		if query.End.Sub(*query.Start) > maxAvailabilityRange {
			return nil, domain.InvalidInput("查询范围不能超过 %d 天", int(maxAvailabilityRange/(24*time.Hour)))
		}
		start, end = *query.Start, *query.End
		key = cache.RangeKey(query.Services, staffID, start, end, loc.String())
	} else {
		if err := utils.ValidateMonthYear(query.Month, query.Year); err != nil {
			return nil, err
		}
		start, end = utils.MonthRange(query.Month, query.Year, loc)
		key = cache.Key(query.Services, staffID, query.Month, query.Year, loc.String())
	}

	// 在读取数据之前记录 epoch，读取期间如果有预约或班次提交，结果不会写回缓存
	epoch := s.availability.Epoch()
	if groups, ok := s.availability.Get(key); ok {
		metrics.IncCacheLookup("availability", true)
		return groups, nil
	}
	metrics.IncCacheLookup("availability", false)

	staff, err := getStaff(ctx, s.store, staffID)
	if err != nil {
		return nil, err
	}

	offered, err := s.store.GetServicesOfferedByStaff(ctx, staff.ID)
	if err != nil {
		return nil, fmt.Errorf("查询员工提供的服务失败: %w", err)
	}

	matched, err := matchServices(query.Services, offered)
	if err != nil {
		return nil, err
	}

	seconds := totalSeconds(matched)
	duration := time.Duration(seconds) * time.Second

	shifts, err := s.store.GetShiftsOverlappingWithMinLength(ctx, staff.ID, start, end, seconds, true)
	if err != nil {
		return nil, fmt.Errorf("查询班次失败: %w", err)
	}

	slots := scheduler.GenerateSlots(shifts, duration)

	if len(shifts) > 0 {
		// 班次可能超出查询范围，按照班次的实际范围查询预约
		from, to := shifts[0].Start, shifts[0].End
		for _, shift := range shifts[1:] {
			if shift.Start.Before(from) {
				from = shift.Start
			}
			if shift.End.After(to) {
				to = shift.End
			}
		}

		reservations, err := s.store.GetReservationsOverlapping(ctx, staff.ID, from, to, domain.ActiveReservationStatuses)
		if err != nil {
			return nil, fmt.Errorf("查询预约失败: %w", err)
		}

		booked := make([]scheduler.Interval, 0, len(reservations))
		for _, r := range reservations {
			booked = append(booked, scheduler.Interval{Start: r.ScheduledFor, End: r.ExpireAt})
		}

		slots = scheduler.FilterBooked(slots, duration, booked)
		slots = scheduler.KeepWithin(slots, start, end)
		slots = scheduler.DropPast(slots, s.now())
	}

	groups := scheduler.GroupByDate(slots, loc)
	s.availability.PutIfEpoch(key, groups, epoch)

	return groups, nil
}

func outcomeOf(err error) string {
	switch domain.KindOf(err) {
	case domain.KindNotFound, domain.KindInvalidInput:
		return metrics.OutcomeRejected
	case domain.KindConflict:
		return metrics.OutcomeConflict
	default:
		return metrics.OutcomeFailed
	}
}
