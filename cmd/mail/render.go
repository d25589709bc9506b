package main

import (
	"encoding/json"
	"fmt"
	"html/template"
	"time"

	"github.com/sysu-ecnc-dev/booking-manager/backend/internal/domain"
	"github.com/wneessen/go-mail"
)

const mailTimeLayout = "2006-01-02 15:04"

// envelope 和 domain.MailMessage 对应，Data 延迟到确定类型之后再解析
type envelope struct {
	Type string          `json:"type"`
	To   string          `json:"to"`
	Data json.RawMessage `json:"data"`
}

type reservationCreatedView struct {
	Name         string
	Services     []string
	Price        string
	ScheduledFor string
	ExpireAt     string
	Timezone     string
}

// newReservationCreatedView 把预约时间转换为客户所在时区的本地时间
func newReservationCreatedView(raw json.RawMessage) (*reservationCreatedView, error) {
	data := domain.ReservationCreatedMailData{}
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, err
	}

	loc, err := time.LoadLocation(data.Timezone)
	if err != nil {
		loc = time.UTC
	}

	return &reservationCreatedView{
		Name:         data.Name,
		Services:     data.Services,
		Price:        data.Price,
		ScheduledFor: data.ScheduledFor.In(loc).Format(mailTimeLayout),
		ExpireAt:     data.ExpireAt.In(loc).Format(mailTimeLayout),
		Timezone:     loc.String(),
	}, nil
}

// buildMessage 根据邮件类型渲染模板，templateDir 下需要有对应的 html 模板
func buildMessage(from string, templateDir string, env *envelope) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(from); err != nil {
		return nil, fmt.Errorf("无法设置邮件发件人: %w", err)
	}
	if err := msg.To(env.To); err != nil {
		return nil, fmt.Errorf("无法设置邮件收件人: %w", err)
	}

	switch env.Type {
	case domain.MailTypeReservationCreated:
		view, err := newReservationCreatedView(env.Data)
		if err != nil {
			return nil, fmt.Errorf("无法解析邮件数据: %w", err)
		}
		tmpl, err := template.ParseFiles(templateDir + "/reservation_created_email.html")
		if err != nil {
			return nil, fmt.Errorf("无法解析邮件模板: %w", err)
		}
		if err := msg.SetBodyHTMLTemplate(tmpl, view); err != nil {
			return nil, fmt.Errorf("无法设置邮件正文: %w", err)
		}
		msg.Subject("预约成功通知")
	default:
		return nil, fmt.Errorf("不支持的邮件类型 %s", env.Type)
	}

	return msg, nil
}
