package domain

import "github.com/shopspring/decimal"

type Staff struct {
	ID        int64   `json:"-"`
	UUID      string  `json:"id"`
	Bio       *string `json:"bio"`
	ProfileID *int64  `json:"-"`
}

type Service struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	IsVisible   bool            `json:"isVisible"`
	Duration    int32           `json:"duration"`    // 服务时长（秒）
	CleanUpTime int32           `json:"cleanUpTime"` // 服务结束后的清理时间（秒），不可被预约
}

// TotalSeconds 返回该服务实际占用的时长（服务时长 + 清理时间）
func (s *Service) TotalSeconds() int64 {
	return int64(s.Duration) + int64(s.CleanUpTime)
}
