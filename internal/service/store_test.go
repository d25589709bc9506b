package service

import (
	"context"
	"database/sql"
	"slices"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sysu-ecnc-dev/booking-manager/backend/internal/domain"
	"github.com/sysu-ecnc-dev/booking-manager/backend/internal/repository"
)

type memoryData struct {
	staff               map[string]*domain.Staff
	services            map[int64][]*domain.Service
	shifts              []*domain.Shift
	reservations        []*domain.Reservation
	serviceReservations []domain.ServiceReservation
	nextID              int64
}

func (d *memoryData) clone() *memoryData {
	c := &memoryData{
		staff:               d.staff,
		services:            d.services,
		shifts:              make([]*domain.Shift, 0, len(d.shifts)),
		reservations:        make([]*domain.Reservation, 0, len(d.reservations)),
		serviceReservations: slices.Clone(d.serviceReservations),
		nextID:              d.nextID,
	}
	for _, s := range d.shifts {
		shift := *s
		c.shifts = append(c.shifts, &shift)
	}
	for _, r := range d.reservations {
		reservation := *r
		c.reservations = append(c.reservations, &reservation)
	}
	return c
}

// memoryDB 模拟数据库：事务之间串行执行，事务内的修改在提交前对外不可见
type memoryDB struct {
	mu        sync.Mutex
	txMu      sync.Mutex
	committed *memoryData

	staffLookups atomic.Int64
	// ops 按顺序记录事务内的写操作
	opsMu sync.Mutex
	ops   []string
	// beforeTx 在事务开始之前执行，用于模拟并发写入
	beforeTx func(d *memoryData)
}

func newMemoryDB() *memoryDB {
	return &memoryDB{
		committed: &memoryData{
			staff:    make(map[string]*domain.Staff),
			services: make(map[int64][]*domain.Service),
		},
	}
}

func (db *memoryDB) store() *memoryStore {
	return &memoryStore{db: db}
}

func (db *memoryDB) addStaff(uuid string, services ...*domain.Service) *domain.Staff {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.committed.nextID++
	staff := &domain.Staff{ID: db.committed.nextID, UUID: uuid}
	db.committed.staff[uuid] = staff
	db.committed.services[staff.ID] = services
	return staff
}

func (db *memoryDB) addShift(staffID int64, start time.Time, end time.Time, visible bool) {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.committed.nextID++
	db.committed.shifts = append(db.committed.shifts, &domain.Shift{
		ID:        db.committed.nextID,
		StaffID:   staffID,
		Start:     start,
		End:       end,
		IsVisible: visible,
	})
}

func (db *memoryDB) record(op string) {
	db.opsMu.Lock()
	defer db.opsMu.Unlock()

	db.ops = append(db.ops, op)
}

func (db *memoryDB) recordedOps() []string {
	db.opsMu.Lock()
	defer db.opsMu.Unlock()

	return slices.Clone(db.ops)
}

func (db *memoryDB) snapshot() *memoryData {
	db.mu.Lock()
	defer db.mu.Unlock()

	return db.committed.clone()
}

type memoryStore struct {
	db *memoryDB
	tx *memoryData
}

func (s *memoryStore) view(fn func(d *memoryData)) {
	if s.tx != nil {
		fn(s.tx)
		return
	}

	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	fn(s.db.committed)
}

func (s *memoryStore) GetStaffByUUID(ctx context.Context, uuid string) (*domain.Staff, error) {
	s.db.staffLookups.Add(1)

	var staff *domain.Staff
	s.view(func(d *memoryData) {
		staff = d.staff[uuid]
	})
	if staff == nil {
		return nil, sql.ErrNoRows
	}
	return staff, nil
}

// LockStaff 只记录调用，事务本身已经由 txMu 串行化
func (s *memoryStore) LockStaff(ctx context.Context, staffID int64) error {
	var found bool
	s.view(func(d *memoryData) {
		for _, staff := range d.staff {
			if staff.ID == staffID {
				found = true
			}
		}
	})
	if !found {
		return sql.ErrNoRows
	}

	s.db.record("lock_staff")
	return nil
}

func (s *memoryStore) GetServicesOfferedByStaff(ctx context.Context, staffID int64) ([]*domain.Service, error) {
	var services []*domain.Service
	s.view(func(d *memoryData) {
		services = slices.Clone(d.services[staffID])
	})
	return services, nil
}

func (s *memoryStore) CountShiftsOverlapping(ctx context.Context, staffID int64, start time.Time, end time.Time) (int64, error) {
	var count int64
	s.view(func(d *memoryData) {
		for _, shift := range d.shifts {
			if shift.StaffID == staffID && !shift.Start.After(end) && !shift.End.Before(start) {
				count++
			}
		}
	})
	return count, nil
}

func (s *memoryStore) CountVisibleShiftsOverlappingWithMinLength(ctx context.Context, staffID int64, start time.Time, end time.Time, minSeconds int64) (int64, error) {
	var count int64
	s.view(func(d *memoryData) {
		for _, shift := range d.shifts {
			if shift.StaffID == staffID && shift.IsVisible &&
				!shift.Start.After(start) && !shift.End.Before(end) &&
				shift.Seconds() >= minSeconds {
				count++
			}
		}
	})
	return count, nil
}

func (s *memoryStore) GetShiftsOverlappingWithMinLength(ctx context.Context, staffID int64, start time.Time, end time.Time, minSeconds int64, visibleOnly bool) ([]*domain.Shift, error) {
	shifts := []*domain.Shift{}
	s.view(func(d *memoryData) {
		for _, shift := range d.shifts {
			if shift.StaffID == staffID && shift.Start.Before(end) && shift.End.After(start) &&
				shift.Seconds() >= minSeconds && (shift.IsVisible || !visibleOnly) {
				copied := *shift
				shifts = append(shifts, &copied)
			}
		}
	})
	sort.Slice(shifts, func(i, j int) bool {
		return shifts[i].Start.Before(shifts[j].Start)
	})
	return shifts, nil
}

func (s *memoryStore) CreateShift(ctx context.Context, shift *domain.Shift) error {
	s.db.record("create_shift")
	s.view(func(d *memoryData) {
		d.nextID++
		shift.ID = d.nextID
		copied := *shift
		d.shifts = append(d.shifts, &copied)
	})
	return nil
}

func (s *memoryStore) overlappingReservations(d *memoryData, staffID int64, start time.Time, end time.Time, statuses []domain.ReservationStatus) []*domain.Reservation {
	result := []*domain.Reservation{}
	for _, r := range d.reservations {
		if r.StaffID == staffID && r.ScheduledFor.Before(end) && r.ExpireAt.After(start) && slices.Contains(statuses, r.Status) {
			copied := *r
			result = append(result, &copied)
		}
	}
	return result
}

func (s *memoryStore) CountReservationsOverlapping(ctx context.Context, staffID int64, start time.Time, end time.Time, statuses []domain.ReservationStatus) (int64, error) {
	var count int64
	s.view(func(d *memoryData) {
		count = int64(len(s.overlappingReservations(d, staffID, start, end, statuses)))
	})
	return count, nil
}

func (s *memoryStore) GetReservationsOverlapping(ctx context.Context, staffID int64, start time.Time, end time.Time, statuses []domain.ReservationStatus) ([]*domain.Reservation, error) {
	var reservations []*domain.Reservation
	s.view(func(d *memoryData) {
		reservations = s.overlappingReservations(d, staffID, start, end, statuses)
	})
	return reservations, nil
}

func (s *memoryStore) CreateReservation(ctx context.Context, reservation *domain.Reservation) error {
	s.db.record("create_reservation")
	s.view(func(d *memoryData) {
		d.nextID++
		reservation.ID = d.nextID
		reservation.CreatedAt = time.Now()
		copied := *reservation
		d.reservations = append(d.reservations, &copied)
	})
	return nil
}

func (s *memoryStore) CreateServiceReservation(ctx context.Context, reservationID int64, serviceID int64) error {
	s.view(func(d *memoryData) {
		d.nextID++
		d.serviceReservations = append(d.serviceReservations, domain.ServiceReservation{
			ID:            d.nextID,
			ReservationID: reservationID,
			ServiceID:     serviceID,
		})
	})
	return nil
}

func (s *memoryStore) RunInTransaction(ctx context.Context, level sql.IsolationLevel, fn func(ctx context.Context, tx repository.Store) error) error {
	if s.tx != nil {
		return fn(ctx, s)
	}

	s.db.txMu.Lock()
	defer s.db.txMu.Unlock()

	if s.db.beforeTx != nil {
		s.db.mu.Lock()
		s.db.beforeTx(s.db.committed)
		s.db.mu.Unlock()
	}

	scoped := &memoryStore{db: s.db, tx: s.db.snapshot()}
	if err := fn(ctx, scoped); err != nil {
		return err
	}

	s.db.mu.Lock()
	s.db.committed = scoped.tx
	s.db.mu.Unlock()

	return nil
}

type recordingNotifier struct {
	mu    sync.Mutex
	calls []domain.ReservationCreatedMailData
	to    []string
	err   error
}

func (n *recordingNotifier) NotifyReservationCreated(ctx context.Context, to string, data domain.ReservationCreatedMailData) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.to = append(n.to, to)
	n.calls = append(n.calls, data)
	return n.err
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()

	return len(n.calls)
}

// pausingStore 在 pauseOn 对应的查询读完数据之后暂停，直到 release 被关闭，
// 用于让读请求和写请求交错执行
type pausingStore struct {
	*memoryStore
	pauseOn string
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func newPausingStore(db *memoryDB, pauseOn string) *pausingStore {
	return &pausingStore{
		memoryStore: db.store(),
		pauseOn:     pauseOn,
		entered:     make(chan struct{}),
		release:     make(chan struct{}),
	}
}

func (s *pausingStore) pause(method string) {
	if method != s.pauseOn {
		return
	}
	s.once.Do(func() {
		close(s.entered)
		<-s.release
	})
}

func (s *pausingStore) GetReservationsOverlapping(ctx context.Context, staffID int64, start time.Time, end time.Time, statuses []domain.ReservationStatus) ([]*domain.Reservation, error) {
	reservations, err := s.memoryStore.GetReservationsOverlapping(ctx, staffID, start, end, statuses)
	s.pause("GetReservationsOverlapping")
	return reservations, err
}

func (s *pausingStore) GetShiftsOverlappingWithMinLength(ctx context.Context, staffID int64, start time.Time, end time.Time, minSeconds int64, visibleOnly bool) ([]*domain.Shift, error) {
	shifts, err := s.memoryStore.GetShiftsOverlappingWithMinLength(ctx, staffID, start, end, minSeconds, visibleOnly)
	s.pause("GetShiftsOverlappingWithMinLength")
	return shifts, err
}
