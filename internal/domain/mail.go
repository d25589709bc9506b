package domain

import "time"

const MailTypeReservationCreated = "reservation_created"

type MailMessage struct {
	Type string `json:"type"`
	To   string `json:"to"`
	Data any    `json:"data"`
}

type ReservationCreatedMailData struct {
	Name         string    `json:"name"`
	Services     []string  `json:"services"`
	Price        string    `json:"price"`
	ScheduledFor time.Time `json:"scheduledFor"`
	ExpireAt     time.Time `json:"expireAt"`
	Timezone     string    `json:"timezone"`
}
