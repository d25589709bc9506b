package main

import (
	"context"
	"database/sql"
	"flag"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/sysu-ecnc-dev/booking-manager/backend/internal/cache"
	"github.com/sysu-ecnc-dev/booking-manager/backend/internal/config"
	"github.com/sysu-ecnc-dev/booking-manager/backend/internal/domain"
	"github.com/sysu-ecnc-dev/booking-manager/backend/internal/repository"
	"github.com/sysu-ecnc-dev/booking-manager/backend/internal/service"
	"github.com/sysu-ecnc-dev/booking-manager/backend/internal/utils"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	var op int
	var n int
	var staffID string
	var month int
	var year int
	var timezone string

	now := time.Now()

	flag.IntVar(&op, "op", 0, "要执行的操作 (1: 插入随机员工和服务, 2: 为员工插入一个月的随机班次, 3: 为员工插入随机预约)")
	flag.IntVar(&n, "n", 5, "要插入的记录数量")
	flag.StringVar(&staffID, "staff-id", "", "员工的外部 ID")
	flag.IntVar(&month, "month", int(now.Month()), "月份")
	flag.IntVar(&year, "year", now.Year(), "年份")
	flag.StringVar(&timezone, "timezone", "", "时区，默认使用配置中的时区")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// 读取配置文件
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("无法读取配置文件", slog.String("error", err.Error()))
		os.Exit(1)
	}

	isolation, err := repository.ParseIsolationLevel(cfg.Database.ReservationIsolation)
	if err != nil {
		logger.Error("无法解析事务隔离级别", "error", err)
		return
	}

	// 创建数据库连接池
	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		logger.Error("无法创建数据库连接池", "error", err)
		return
	}
	defer dbpool.Close()

	dbpool.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	dbpool.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	dbpool.SetConnMaxIdleTime(time.Duration(cfg.Database.MaxIdleTime) * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()

	// sql.Open 只是创建数据库连接池对象，并不会立即连接到数据库，因此需要显式地 ping 一下
	if err := dbpool.PingContext(ctx); err != nil {
		logger.Error("无法连接到数据库", "error", err)
		return
	}

	// 创建 repository 和 service，seed 不需要发送邮件
	repo := repository.NewRepository(cfg, dbpool)

	ttl := time.Duration(cfg.Cache.TTL) * time.Second
	availabilityCache := cache.New[string, []domain.AvailabilitySlotGroup](ttl, cfg.Cache.MaxEntries)
	shiftService := service.NewShiftService(repo, cache.New[string, []domain.ShiftSlot](ttl, cfg.Cache.MaxEntries), availabilityCache, cfg.Booking.DefaultTimezone, isolation)
	reservationService := service.NewReservationService(repo, availabilityCache, nil, cfg.Booking.DefaultTimezone, isolation)

	loc := utils.ResolveTimezone(timezone, cfg.Booking.DefaultTimezone)
	bg := context.Background()

	// 执行操作
	switch op {
	case 0:
		slog.Error("未指定操作")
	case 1:
		if n <= 0 {
			slog.Error("请输入合法的员工数量")
			return
		}

		services := utils.ServiceCatalog()
		for _, s := range services {
			if err := repo.CreateService(bg, s); err != nil {
				slog.Error("无法插入服务", slog.String("name", s.Name), slog.String("error", err.Error()))
				return
			}
		}

		cnt := 0
		for i := 0; i < n; i++ {
			staff := utils.GenerateRandomStaff()
			if err := repo.CreateStaff(bg, staff); err != nil {
				slog.Error("无法插入员工", slog.String("error", err.Error()))
				continue
			}

			// 每个员工随机提供一部分服务
			for _, s := range utils.GenerateRandomSubset(services) {
				if err := repo.LinkStaffService(bg, staff.ID, s.ID); err != nil {
					slog.Error("无法关联员工和服务", slog.String("error", err.Error()))
				}
			}

			slog.Info("插入员工成功", slog.String("staff_id", staff.UUID))
			cnt++
		}

		slog.Info("插入员工成功", slog.Int("count", cnt))
	case 2:
		if staffID == "" {
			slog.Error("请指定员工 ID")
			return
		}

		segments := utils.GenerateRandomShiftSegments(month, year, loc, now)
		if len(segments) == 0 {
			slog.Error("指定的月份中没有可以插入班次的日期")
			return
		}

		shifts, err := shiftService.CreateShift(bg, staffID, loc.String(), segments)
		if err != nil {
			slog.Error("无法插入班次", slog.String("error", err.Error()))
			return
		}

		slog.Info("插入班次成功", slog.Int("count", len(shifts)))
	case 3:
		if staffID == "" || n <= 0 {
			slog.Error("请指定员工 ID 和合法的预约数量")
			return
		}

		staff, err := repo.GetStaffByUUID(bg, staffID)
		if err != nil {
			slog.Error("无法获取员工", slog.String("error", err.Error()))
			return
		}
		offered, err := repo.GetServicesOfferedByStaff(bg, staff.ID)
		if err != nil || len(offered) == 0 {
			slog.Error("无法获取员工提供的服务", "error", err)
			return
		}

		cnt := 0
		for i := 0; i < n; i++ {
			names := make([]string, 0)
			for _, s := range utils.GenerateRandomSubset(offered) {
				names = append(names, s.Name)
			}

			// 每次都重新查询，已经被预约的时间不会再出现
			groups, err := reservationService.GetAvailability(bg, domain.AvailabilityQuery{
				StaffID:  staffID,
				Services: names,
				Month:    month,
				Year:     year,
				Timezone: loc.String(),
			})
			if err != nil {
				slog.Error("无法获取可预约时间", slog.String("error", err.Error()))
				return
			}
			if len(groups) == 0 {
				slog.Warn("没有可预约的时间了")
				break
			}

			group := groups[rand.Intn(len(groups))]
			name := utils.GenerateRandomChineseName()
			_, err = reservationService.CreateReservation(bg, domain.ReservationRequest{
				StaffID:  staffID,
				Name:     name,
				Email:    utils.GenerateEmailFromChineseName(name, "example.com"),
				Phone:    utils.GenerateRandomPhone(),
				Services: names,
				Timezone: loc.String(),
				Time:     group.Times[rand.Intn(len(group.Times))],
			})
			if err != nil {
				slog.Error("无法插入预约", slog.String("error", err.Error()))
				continue
			}

			cnt++
		}

		slog.Info("插入预约成功", slog.Int("count", cnt))
	default:
		slog.Error("指定的操作非法")
	}
}
