package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sysu-ecnc-dev/booking-manager/backend/internal/config"
	"github.com/sysu-ecnc-dev/booking-manager/backend/internal/domain"
)

// querier 同时被 *sql.DB 和 *sql.Tx 实现
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store 是业务层使用的数据访问接口
type Store interface {
	GetStaffByUUID(ctx context.Context, uuid string) (*domain.Staff, error)
	// LockStaff 对员工加行锁直到事务结束，同一员工的写事务因此串行执行
	LockStaff(ctx context.Context, staffID int64) error
	GetServicesOfferedByStaff(ctx context.Context, staffID int64) ([]*domain.Service, error)

	CountShiftsOverlapping(ctx context.Context, staffID int64, start time.Time, end time.Time) (int64, error)
	CountVisibleShiftsOverlappingWithMinLength(ctx context.Context, staffID int64, start time.Time, end time.Time, minSeconds int64) (int64, error)
	GetShiftsOverlappingWithMinLength(ctx context.Context, staffID int64, start time.Time, end time.Time, minSeconds int64, visibleOnly bool) ([]*domain.Shift, error)
	CreateShift(ctx context.Context, shift *domain.Shift) error

	CountReservationsOverlapping(ctx context.Context, staffID int64, start time.Time, end time.Time, statuses []domain.ReservationStatus) (int64, error)
	GetReservationsOverlapping(ctx context.Context, staffID int64, start time.Time, end time.Time, statuses []domain.ReservationStatus) ([]*domain.Reservation, error)
	CreateReservation(ctx context.Context, reservation *domain.Reservation) error
	CreateServiceReservation(ctx context.Context, reservationID int64, serviceID int64) error

	// RunInTransaction 在事务中执行 fn，fn 拿到的 Store 绑定在该事务上
	// fn 返回错误时整个事务回滚
	RunInTransaction(ctx context.Context, level sql.IsolationLevel, fn func(ctx context.Context, tx Store) error) error
}

type Repository struct {
	cfg    *config.Config
	dbpool *sql.DB
	db     querier
}

func NewRepository(cfg *config.Config, dbpool *sql.DB) *Repository {
	return &Repository{
		cfg:    cfg,
		dbpool: dbpool,
		db:     dbpool,
	}
}

func (r *Repository) RunInTransaction(ctx context.Context, level sql.IsolationLevel, fn func(ctx context.Context, tx Store) error) error {
	// 已经处于事务中时直接复用当前事务
	if _, ok := r.db.(*sql.Tx); ok {
		return fn(ctx, r)
	}

	ctx, cancel := context.WithTimeout(ctx, time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, &sql.TxOptions{Isolation: level})
	if err != nil {
		return fmt.Errorf("开启事务失败: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	scoped := &Repository{
		cfg:    r.cfg,
		dbpool: r.dbpool,
		db:     tx,
	}

	if err := fn(ctx, scoped); err != nil {
		slog.Debug("事务回滚", "isolation", level.String(), "error", err)
		return err
	}

	if err := tx.Commit(); err != nil {
		slog.Error("提交事务失败", "error", err)
		return fmt.Errorf("提交事务失败: %w", err)
	}

	return nil
}

func (r *Repository) queryContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
}

// ParseIsolationLevel 把配置中的隔离级别名称转换为 sql.IsolationLevel
func ParseIsolationLevel(name string) (sql.IsolationLevel, error) {
	switch name {
	case "", "read_committed":
		return sql.LevelReadCommitted, nil
	case "repeatable_read":
		return sql.LevelRepeatableRead, nil
	case "serializable":
		return sql.LevelSerializable, nil
	default:
		return sql.LevelDefault, fmt.Errorf("未知的事务隔离级别: %s", name)
	}
}

// IsTransactionConflict 判断错误是否是由于并发事务冲突导致的（序列化失败或死锁）
func IsTransactionConflict(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "40001" || pgErr.Code == "40P01"
	}
	return false
}

func statusStrings(statuses []domain.ReservationStatus) []string {
	result := make([]string, 0, len(statuses))
	for _, s := range statuses {
		result = append(result, string(s))
	}
	return result
}
