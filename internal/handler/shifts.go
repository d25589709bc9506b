package handler

import (
	"net/http"
	"strconv"

	"github.com/sysu-ecnc-dev/booking-manager/backend/internal/domain"
)

func (h *Handler) CreateShift(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Timezone string                `json:"timezone"`
		Times    []domain.ShiftSegment `json:"times" validate:"required,min=1,dive"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	// token 的 subject 就是员工的外部 ID
	staffID, _ := r.Context().Value(SubCtxKey).(string)

	shifts, err := h.shifts.CreateShift(r.Context(), staffID, req.Timezone, req.Times)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	h.createdResponse(w, r, "创建班次成功", shifts)
}

func (h *Handler) GetShifts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

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

	slots, err := h.shifts.ListShifts(r.Context(), query.Get("staff_id"), month, year, query.Get("timezone"))
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取班次成功", slots)
}
