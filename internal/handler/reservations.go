package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sysu-ecnc-dev/booking-manager/backend/internal/domain"
)

func (h *Handler) CreateReservation(w http.ResponseWriter, r *http.Request) {
	var req struct {
		StaffID     string   `json:"staff_id" validate:"required"`
		Name        string   `json:"name" validate:"required,max=100"`
		Email       string   `json:"email" validate:"required,email,max=320"`
		Description string   `json:"description" validate:"max=255"`
		Address     string   `json:"address" validate:"max=255"`
		Phone       string   `json:"phone" validate:"max=20"`
		Services    []string `json:"services" validate:"required,min=1,dive,required"`
		Timezone    string   `json:"timezone"`
		Time        int64    `json:"time" validate:"required,gt=0"` // 毫秒级 unix 时间戳
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	reservation, err := h.reservations.CreateReservation(r.Context(), domain.ReservationRequest{
		StaffID:     req.StaffID,
		Name:        req.Name,
		Email:       req.Email,
		Description: req.Description,
		Address:     req.Address,
		Phone:       req.Phone,
		Services:    req.Services,
		Timezone:    req.Timezone,
		Time:        time.UnixMilli(req.Time),
	})
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	h.createdResponse(w, r, "预约成功", reservation)
}

func (h *Handler) GetAvailability(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	// 同时支持 services=a&services=b 和 services=a,b
	services := make([]string, 0)
	for _, value := range query["services"] {
		services = append(services, strings.Split(value, ",")...)
	}

	q := domain.AvailabilityQuery{
		StaffID:  query.Get("staff_id"),
		Services: services,
		Timezone: query.Get("timezone"),
	}

	// 指定了 start 和 end（毫秒级 unix 时间戳）时按照区间查询，否则按照月份查询
	if query.Has("start") && query.Has("end") {
		start, err := strconv.ParseInt(query.Get("start"), 10, 64)
		if err != nil {
			h.errorResponse(w, r, http.StatusBadRequest, "开始时间必须是毫秒级时间戳")
			return
		}
		end, err := strconv.ParseInt(query.Get("end"), 10, 64)
		if err != nil {
			h.errorResponse(w, r, http.StatusBadRequest, "结束时间必须是毫秒级时间戳")
			return
		}
		startTime, endTime := time.UnixMilli(start), time.UnixMilli(end)
		q.Start, q.End = &startTime, &endTime
	} else {
		month, err := strconv.Atoi(query.Get("month"))
		if err != nil {
			h.errorResponse(w, r, http.StatusBadRequest, "月份必须是整数")
			return
		}
		year, err := strconv.Atoi(query.Get("year"))
		if err != nil {
			h.errorResponse(w, r, http.StatusBadRequest, "年份必须是整数")
			return
		}
		q.Month, q.Year = month, year
	}

	groups, err := h.reservations.GetAvailability(r.Context(), q)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取可预约时间成功", groups)
}
