package main

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/booking-manager/backend/internal/domain"

	_ "time/tzdata"
)

func reservationEnvelope(t *testing.T, timezone string) *envelope {
	t.Helper()

	data, err := json.Marshal(domain.ReservationCreatedMailData{
		Name:         "Alice",
		Services:     []string{"Haircut", "Massage"},
		Price:        "65.50",
		ScheduledFor: time.Date(2030, 1, 2, 9, 0, 0, 0, time.UTC),
		ExpireAt:     time.Date(2030, 1, 2, 11, 0, 0, 0, time.UTC),
		Timezone:     timezone,
	})
	require.NoError(t, err)

	return &envelope{
		Type: domain.MailTypeReservationCreated,
		To:   "alice@example.com",
		Data: data,
	}
}

func TestNewReservationCreatedView(t *testing.T) {
	env := reservationEnvelope(t, "Asia/Shanghai")

	view, err := newReservationCreatedView(env.Data)
	require.NoError(t, err)
	assert.Equal(t, "2030-01-02 17:00", view.ScheduledFor)
	assert.Equal(t, "2030-01-02 19:00", view.ExpireAt)
	assert.Equal(t, "Asia/Shanghai", view.Timezone)

	// 无法识别的时区按照 UTC 显示
	env = reservationEnvelope(t, "Mars/Olympus")
	view, err = newReservationCreatedView(env.Data)
	require.NoError(t, err)
	assert.Equal(t, "2030-01-02 09:00", view.ScheduledFor)
	assert.Equal(t, "UTC", view.Timezone)
}

func TestBuildMessage(t *testing.T) {
	msg, err := buildMessage("noreply@example.com", "../../templates", reservationEnvelope(t, "UTC"))
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = msg.WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "alice@example.com")
}

func TestBuildMessageUnknownType(t *testing.T) {
	_, err := buildMessage("noreply@example.com", "../../templates", &envelope{Type: "create_user", To: "alice@example.com"})
	assert.Error(t, err)
}
