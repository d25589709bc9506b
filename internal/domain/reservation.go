package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "PENDING"
	ReservationConfirmed ReservationStatus = "CONFIRMED"
	ReservationCancelled ReservationStatus = "CANCELLED"
)

// ActiveReservationStatuses 是会占用员工时间的预约状态
var ActiveReservationStatuses = []ReservationStatus{ReservationPending, ReservationConfirmed}

type Reservation struct {
	ID           int64             `json:"id"`
	StaffID      int64             `json:"-"`
	Name         string            `json:"name"`
	Email        string            `json:"email"`
	Description  *string           `json:"description"`
	Address      *string           `json:"address"`
	Phone        *string           `json:"phone"`
	Price        decimal.Decimal   `json:"price"`
	Status       ReservationStatus `json:"status"`
	CreatedAt    time.Time         `json:"createdAt"`
	ScheduledFor time.Time         `json:"scheduledFor"`
	ExpireAt     time.Time         `json:"expireAt"`
}

type ServiceReservation struct {
	ID            int64 `json:"id"`
	ReservationID int64 `json:"reservationID"`
	ServiceID     int64 `json:"serviceID"`
}

// ReservationRequest 是客户提交预约时的数据
type ReservationRequest struct {
	StaffID     string
	Name        string
	Email       string
	Description string
	Address     string
	Phone       string
	Services    []string
	Timezone    string
	Time        time.Time
}
