package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sysu-ecnc-dev/booking-manager/backend/internal/domain"
)

// Publisher 由 *amqp.Channel 实现
type Publisher interface {
	PublishWithContext(ctx context.Context, exchange string, key string, mandatory bool, immediate bool, msg amqp.Publishing) error
}

// MailQueue 把邮件投递到 RabbitMQ，由 mail worker 负责真正发送
type MailQueue struct {
	publisher Publisher
	queue     string
	timeout   time.Duration
}

func NewMailQueue(publisher Publisher, queue string, timeout time.Duration) *MailQueue {
	return &MailQueue{
		publisher: publisher,
		queue:     queue,
		timeout:   timeout,
	}
}

func (q *MailQueue) NotifyReservationCreated(ctx context.Context, to string, data domain.ReservationCreatedMailData) error {
	return q.publish(ctx, domain.MailMessage{
		Type: domain.MailTypeReservationCreated,
		To:   to,
		Data: data,
	})
}

func (q *MailQueue) publish(ctx context.Context, message domain.MailMessage) error {
	// 序列化邮件
	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("序列化邮件失败: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, q.timeout)
	defer cancel()

	if err := q.publisher.PublishWithContext(
		ctx,
		"",
		q.queue,
		true,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	); err != nil {
		return fmt.Errorf("投递邮件到消息队列失败: %w", err)
	}

	return nil
}
