package utils

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mozillazg/go-pinyin"
	"github.com/shopspring/decimal"
	"github.com/sysu-ecnc-dev/booking-manager/backend/internal/domain"
)

var commonSurnames = []string{
	"王", "李", "张", "刘", "陈", "杨", "赵", "黄", "周", "吴",
	"徐", "孙", "胡", "朱", "高", "林", "何", "郭", "马", "罗",
}
var commonNameCharacters = []string{
	"伟", "强", "芳", "敏", "静", "丽", "刚", "杰", "娟", "勇",
	"艳", "涛", "明", "军", "磊", "洋", "勇", "霞", "飞", "玲",
	"超", "华", "平", "辉", "梅", "鑫", "龙", "鹏", "玉", "斌",
	"庆", "建", "丹", "彬", "凤", "旭", "宁", "乐", "成", "欣",
}

func GenerateRandomChineseName() string {
	surname := commonSurnames[rand.Intn(len(commonSurnames))]
	nameLength := rand.Intn(2) + 1
	name := ""

	for i := 0; i < nameLength; i++ {
		name += commonNameCharacters[rand.Intn(len(commonNameCharacters))]
	}
	return surname + name
}

var digits = "0123456789"

// GenerateEmailFromChineseName 用姓名的全拼加上随机数字作为邮箱前缀
func GenerateEmailFromChineseName(chineseName string, emailDomainName string) string {
	local := strings.Join(pinyin.LazyConvert(chineseName, nil), "")
	if local == "" {
		local = "guest"
	}

	digitsLength := rand.Intn(3) + 1
	for i := 0; i < digitsLength; i++ {
		local += string(digits[rand.Intn(len(digits))])
	}

	return local + "@" + emailDomainName
}

var bios = []string{
	"从业十年，擅长短发造型",
	"专注于肩颈放松和运动恢复",
	"喜欢和客人聊天的新晋员工",
	"",
}

func GenerateRandomStaff() *domain.Staff {
	staff := &domain.Staff{
		UUID: uuid.NewString(),
	}

	if bio := bios[rand.Intn(len(bios))]; bio != "" {
		staff.Bio = &bio
	}

	return staff
}

// ServiceCatalog 返回一组常见的服务，每次调用都返回新的对象
func ServiceCatalog() []*domain.Service {
	return []*domain.Service{
		{Name: "Haircut", Price: decimal.RequireFromString("25.50"), IsVisible: true, Duration: 3600, CleanUpTime: 1800},
		{Name: "Massage", Price: decimal.RequireFromString("40.00"), IsVisible: true, Duration: 1800, CleanUpTime: 0},
		{Name: "Manicure", Price: decimal.RequireFromString("18.00"), IsVisible: true, Duration: 2700, CleanUpTime: 900},
		{Name: "Consultation", Price: decimal.Zero, IsVisible: false, Duration: 900, CleanUpTime: 0},
	}
}

// GenerateRandomSubset 使用 Fisher-Yates 洗牌算法来生成一个非空的随机子集
func GenerateRandomSubset[T any](arr []T) []T {
	arrCopy := append([]T{}, arr...) // 复制数组，避免修改原数组

	for i := len(arrCopy) - 1; i > 0; i-- {
		j := rand.Intn(i + 1)
		arrCopy[i], arrCopy[j] = arrCopy[j], arrCopy[i]
	}

	if len(arrCopy) == 0 {
		return arrCopy
	}

	l := rand.Intn(len(arrCopy)) + 1
	return arrCopy[:l]
}

// GenerateRandomShiftSegments 为 after 之后的每一个工作日生成一个班次片段，
// 班次在 loc 时区的 8 点到 11 点之间开始，持续 4 到 8 个小时，不会跨天
func GenerateRandomShiftSegments(month int, year int, loc *time.Location, after time.Time) []domain.ShiftSegment {
	start, end := MonthRange(month, year, loc)

	segments := make([]domain.ShiftSegment, 0)
	for day := start; day.Before(end); day = day.AddDate(0, 0, 1) {
		if day.Weekday() == time.Saturday || day.Weekday() == time.Sunday {
			continue
		}

		startHour := rand.Intn(4) + 8
		hours := rand.Intn(5) + 4
		shiftStart := time.Date(day.Year(), day.Month(), day.Day(), startHour, 0, 0, 0, loc)
		if !shiftStart.After(after) {
			continue
		}

		segments = append(segments, domain.ShiftSegment{
			IsVisible:     rand.Intn(10) > 0,
			IsReoccurring: false,
			Start:         shiftStart.Format("2006-01-02T15:04:05"),
			Duration:      int64(hours) * 3600,
		})
	}

	return segments
}

func GenerateRandomPhone() string {
	return fmt.Sprintf("1%d%09d", rand.Intn(7)+3, rand.Intn(1000000000))
}
