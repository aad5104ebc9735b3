package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ogurasousui/hr-attendance-api/internal/adapters/http/handler"
	"github.com/ogurasousui/hr-attendance-api/internal/adapters/repository/postgres"
	"github.com/ogurasousui/hr-attendance-api/internal/core/attendance"
	"github.com/ogurasousui/hr-attendance-api/internal/core/payroll"
	"github.com/ogurasousui/hr-attendance-api/internal/core/token"
	"github.com/ogurasousui/hr-attendance-api/internal/platform/config"
	pg "github.com/ogurasousui/hr-attendance-api/internal/platform/db/postgres"
	"github.com/ogurasousui/hr-attendance-api/internal/platform/scheduler"
	"github.com/ogurasousui/hr-attendance-api/internal/platform/server"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "assets/local.yaml"
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	dbPool, err := pg.NewPool(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("failed to initialize database pool: %v", err)
	}
	defer dbPool.Close()

	txManager := pg.NewTransactionManager(dbPool)

	employeeRepo := postgres.NewEmployeeRepository(dbPool)
	attendanceRepo := postgres.NewAttendanceRepository(dbPool)
	payrollRepo := postgres.NewPayrollRepository(dbPool)

	rotator := token.NewRotator(employeeRepo, nil, txManager)
	attendanceSvc := attendance.NewService(attendanceRepo, employeeRepo, rotator, nil, txManager)
	payrollSvc := payroll.NewService(payrollRepo, employeeRepo, attendanceRepo, nil, txManager)

	rotationScheduler, err := scheduler.New(rotator, cfg.Token.RotationInterval)
	if err != nil {
		log.Fatalf("failed to initialize token rotation scheduler: %v", err)
	}
	rotationScheduler.Start()
	defer rotationScheduler.Stop()

	httpServer := server.New(
		cfg.Server,
		handler.NewAttendanceHandler(attendanceSvc),
		handler.NewPayrollHandler(payrollSvc),
	)

	log.Printf("HTTP server listening on %s", cfg.Server.ListenAddr)

	if err := httpServer.Run(ctx); err != nil {
		log.Fatalf("server stopped with error: %v", err)
	}
}
