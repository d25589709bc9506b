package handler

import (
	"context"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/sysu-ecnc-dev/booking-manager/backend/internal/config"
	"github.com/sysu-ecnc-dev/booking-manager/backend/internal/domain"
)

type ShiftService interface {
	CreateShift(ctx context.Context, staffID string, timezone string, segments []domain.ShiftSegment) ([]*domain.Shift, error)
	ListShifts(ctx context.Context, staffID string, month int, year int, timezone string) ([]domain.ShiftSlot, error)
}

type ReservationService interface {
	CreateReservation(ctx context.Context, req domain.ReservationRequest) (*domain.Reservation, error)
	GetAvailability(ctx context.Context, query domain.AvailabilityQuery) ([]domain.AvailabilitySlotGroup, error)
}

type Handler struct {
	validate     *validator.Validate
	config       *config.Config
	translator   ut.Translator
	shifts       ShiftService
	reservations ReservationService
	limiter      *RateLimiter

	Mux *chi.Mux
}

func NewHandler(cfg *config.Config, shifts ShiftService, reservations ReservationService, rdb *redis.Client) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	zh := zh.New()
	uni := ut.New(zh, zh)
	trans, _ := uni.GetTranslator("zh")
	if err := zh_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	h := &Handler{
		validate:     validate,
		config:       cfg,
		translator:   trans,
		shifts:       shifts,
		reservations: reservations,

		Mux: chi.NewRouter(),
	}

	// 没有 Redis 时不限流
	if rdb != nil {
		h.limiter = NewRateLimiter(rdb, cfg.RateLimit.Limit, cfg.RateLimit.Window, "rl:reservations", cfg.RateLimit.FailOpen, cfg.RateLimit.TrustProxy)
	}

	return h, nil
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)

	h.Mux.Handle("/metrics", promhttp.Handler())

	h.Mux.Route("/shifts", func(r chi.Router) {
		r.Get("/", h.GetShifts)
		// 只有员工本人可以提交自己的班次
		r.With(h.auth, h.RequiredRole([]domain.Role{domain.RoleStaff})).Post("/", h.CreateShift)
	})

	h.Mux.Route("/reservations", func(r chi.Router) {
		r.With(h.rateLimit).Post("/", h.CreateReservation)
		r.Get("/availability", h.GetAvailability)
	})
}
