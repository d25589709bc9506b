package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sysu-ecnc-dev/booking-manager/backend/internal/domain"
	"github.com/sysu-ecnc-dev/booking-manager/backend/internal/repository"
)

// normalizeStaffID 把员工的外部 ID 转换为规范形式，无法解析的 ID 不可能对应任何员工
func normalizeStaffID(id string) (string, error) {
	id = strings.TrimSpace(id)

	parsed, err := uuid.Parse(id)
	if err != nil {
		return "", domain.NotFound("员工 %s 不存在", id)
	}

	return parsed.String(), nil
}

func getStaff(ctx context.Context, store repository.Store, staffID string) (*domain.Staff, error) {
	staff, err := store.GetStaffByUUID(ctx, staffID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, domain.NotFound("员工 %s 不存在", staffID)
		default:
			return nil, fmt.Errorf("查询员工失败: %w", err)
		}
	}

	return staff, nil
}

func normalizeServiceName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// matchServices 按名称（忽略大小写和首尾空白）匹配员工提供的服务
// 只要有一个服务无法匹配就返回错误，错误信息中列出所有无法匹配的服务
func matchServices(requested []string, offered []*domain.Service) ([]*domain.Service, error) {
	byName := make(map[string]*domain.Service, len(offered))
	for _, s := range offered {
		name := normalizeServiceName(s.Name)
		if other, ok := byName[name]; ok && other.ID != s.ID {
			return nil, fmt.Errorf("服务 %d 和 %d 的名称重复: %s", other.ID, s.ID, s.Name)
		}
		byName[name] = s
	}

	seen := make(map[string]struct{}, len(requested))
	matched := make([]*domain.Service, 0, len(requested))
	unmatched := make([]string, 0)

	for _, r := range requested {
		name := normalizeServiceName(r)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}

		service, ok := byName[name]
		if !ok {
			unmatched = append(unmatched, strings.TrimSpace(r))
			continue
		}
		matched = append(matched, service)
	}

	if len(unmatched) > 0 {
		return nil, domain.InvalidInput("该员工未提供以下服务: %s", strings.Join(unmatched, ", "))
	}
	if len(matched) == 0 {
		return nil, domain.InvalidInput("至少需要选择一个服务")
	}

	return matched, nil
}

// totalSeconds 返回所有服务的时长与清理时间之和
func totalSeconds(services []*domain.Service) int64 {
	var total int64
	for _, s := range services {
		total += s.TotalSeconds()
	}
	return total
}

func optionalString(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}
