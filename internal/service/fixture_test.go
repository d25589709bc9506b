package service

import (
	"database/sql"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/shopspring/decimal"
	"github.com/sysu-ecnc-dev/booking-manager/backend/internal/cache"
	"github.com/sysu-ecnc-dev/booking-manager/backend/internal/domain"
)

const testStaffID = "5f0c6d4e-1b2a-4c3d-8e9f-0a1b2c3d4e5f"

var testNow = time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)

func at(day int, hour int, minute int) time.Time {
	return time.Date(2030, 1, day, hour, minute, 0, 0, time.UTC)
}

type fixture struct {
	db           *memoryDB
	staff        *domain.Staff
	availability *cache.Cache[string, []domain.AvailabilitySlotGroup]
	notifier     *recordingNotifier
	reservations *ReservationService
	shifts       *ShiftService
}

// newFixture 创建一个提供 Haircut（60 分钟 + 30 分钟清理）和 Massage（30 分钟）的员工，
// 并在 2030-01-02 09:00 到 17:00（UTC）有一个可见班次
func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := newMemoryDB()
	haircut := &domain.Service{ID: 101, Name: "Haircut", Price: decimal.RequireFromString("25.50"), IsVisible: true, Duration: 3600, CleanUpTime: 1800}
	massage := &domain.Service{ID: 102, Name: "Massage", Price: decimal.NewFromInt(40), IsVisible: true, Duration: 1800}
	staff := db.addStaff(testStaffID, haircut, massage)
	db.addShift(staff.ID, at(2, 9, 0), at(2, 17, 0), true)

	availability := cache.New[string, []domain.AvailabilitySlotGroup](time.Hour, 20)
	shiftCache := cache.New[string, []domain.ShiftSlot](time.Hour, 20)
	notifier := &recordingNotifier{}

	reservations := NewReservationService(db.store(), availability, notifier, "UTC", sql.LevelReadCommitted)
	reservations.now = func() time.Time { return testNow }

	shifts := NewShiftService(db.store(), shiftCache, availability, "UTC", sql.LevelReadCommitted)
	shifts.now = func() time.Time { return testNow }

	return &fixture{
		db:           db,
		staff:        staff,
		availability: availability,
		notifier:     notifier,
		reservations: reservations,
		shifts:       shifts,
	}
}

func (f *fixture) addReservation(start time.Time, end time.Time, status domain.ReservationStatus) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()

	f.db.committed.nextID++
	f.db.committed.reservations = append(f.db.committed.reservations, &domain.Reservation{
		ID:           f.db.committed.nextID,
		StaffID:      f.staff.ID,
		Name:         "existing",
		Email:        "existing@example.com",
		Status:       status,
		ScheduledFor: start,
		ExpireAt:     end,
	})
}

func reservationRequest(start time.Time, services ...string) domain.ReservationRequest {
	return domain.ReservationRequest{
		StaffID:  testStaffID,
		Name:     "Alice",
		Email:    "alice@example.com",
		Services: services,
		Timezone: "UTC",
		Time:     start,
	}
}

func clockTimes(groups []domain.AvailabilitySlotGroup) map[string][]string {
	result := make(map[string][]string, len(groups))
	for _, g := range groups {
		for _, t := range g.Times {
			result[g.Date] = append(result[g.Date], t.Format("15:04"))
		}
	}
	return result
}
