package main

import (
	"os"
	"strings"
	"time"

	"github.com/nimasrn/water-billing/internal/auth"
	"github.com/nimasrn/water-billing/internal/config"
	"github.com/nimasrn/water-billing/internal/handlers"
	"github.com/nimasrn/water-billing/internal/repository"
	"github.com/nimasrn/water-billing/internal/services"
	xhttp "github.com/nimasrn/water-billing/pkg/http"
	"github.com/nimasrn/water-billing/pkg/logger"
	"github.com/nimasrn/water-billing/pkg/pg"
	"github.com/nimasrn/water-billing/pkg/prom"
	"github.com/nimasrn/water-billing/pkg/redis"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	defer logger.Sync()

	err := config.Load(argContainsEnvPath())
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return
	}
	logger.Info("starting water-billing api", "version", version, "commit", commit, "date", date)

	// transport (tcp for now)
	s := xhttp.NewServer(xhttp.DefaultServerOption)
	s.Server.ReadBufferSize = 1024 * 16
	s.Server.WriteBufferSize = 1024 * 16
	s.Use(xhttp.RequestIDMiddleware)
	s.Use(xhttp.RecoverMiddleware)
	s.Use(xhttp.RequestLoggerMiddleware)
	s.Use(xhttp.CORSMiddleware(config.Get().CorsAllowOrigin))
	s.Use(xhttp.CompressMiddleware(6))
	s.Use(xhttp.TimeoutMiddleware(config.Get().HttpRequestTimeout))
	s.Router = xhttp.CreateDefaultRouter()

	pgDebug := false
	if config.Get().AppEnv == "dev" {
		pgDebug = true
	}
	db, err := pg.CreateReadWrite(config.Get().ReadDB(), config.Get().WriteDB(), pgDebug)
	if err != nil {
		logger.Error("failed connecting to pg", "error", err)
		return
	}

	redisAdap, err := redis.NewRedisAdapter("default", config.Get().RedisUniversalKeyPrefix, &redis.Options{
		Addrs:      []string{config.Get().RedisAddr},
		ClientName: "default",
		DB:         config.Get().RedisDatabase,
		Username:   config.Get().RedisUsername,
		Password:   config.Get().RedisPassword,
	})
	if err != nil {
		logger.Error("failed connecting to redis", "error", err)
		return
	}
	defer redis.Close()

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}
	if err = prom.Create(hostname, config.Get().AppEnv, config.Get().PromNamespace); err != nil {
		logger.Error("failed to create prometheus metrics", "error", err)
		return
	}
	if addr := config.Get().AppDebugMetricsAddr; addr != "" {
		go prom.ListenAndServer(addr, config.Get().AppDebugMetricsURI)
	}

	authorizer, err := auth.NewAuthorizer()
	if err != nil {
		logger.Error("failed to build the access policy", "error", err)
		return
	}
	sessions := auth.NewSessionStore(redisAdap, config.Get().SessionTTL)

	userRepo := repository.NewUserRepository(db)
	tariffRepo := repository.NewTariffRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	billRepo := repository.NewBillRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	statsRepo := repository.NewStatsRepository(db)

	guardConfig := services.DefaultPaymentGuardConfig()
	guardConfig.LockTTL = config.Get().PaymentLockTTL
	guardConfig.ReceiptTTL = config.Get().IdempotencyTTL
	paymentGuard := services.NewPaymentGuard(redisAdap, guardConfig)

	// services
	authService := services.NewAuthService(userRepo, sessions)
	tariffService := services.NewTariffService(tariffRepo)
	customerService := services.NewCustomerService(db, customerRepo, tariffRepo, config.Get().TariffDefault())
	billService := services.NewBillService(db, billRepo, customerRepo, paymentRepo)
	paymentService := services.NewPaymentService(db, paymentRepo, billRepo, statsRepo, time.Now)
	cashierService := services.NewCashierService(db, customerRepo, billRepo, paymentRepo, paymentGuard, time.Now)
	meterService := services.NewMeterService(db, customerRepo, billRepo, config.Get().BillDueDays, time.Now)
	dashboardService := services.NewDashboardService(statsRepo, paymentRepo, customerRepo, billRepo, time.Now)
	healthService := services.NewHealthService(db, redisAdap)

	guard := handlers.NewGuard(authService, authorizer)
	loginLimit := xhttp.RateLimit(xhttp.NewIPRateLimiter(config.Get().LoginRatePerMinute))

	handlers.RegisterHealthRoutes(s.Router, handlers.NewHealthHandler(healthService))
	handlers.RegisterAuthRoutes(s.Router, handlers.NewAuthHandler(authService), guard, loginLimit)
	handlers.RegisterDashboardRoutes(s.Router, handlers.NewDashboardHandler(dashboardService), guard)
	handlers.RegisterCustomerRoutes(s.Router, handlers.NewCustomerHandler(customerService), guard)
	handlers.RegisterTariffRoutes(s.Router, handlers.NewTariffHandler(tariffService), guard)
	handlers.RegisterBillRoutes(s.Router, handlers.NewBillHandler(billService, time.Now), guard)
	handlers.RegisterPaymentRoutes(s.Router, handlers.NewPaymentHandler(paymentService), guard)
	handlers.RegisterCashierRoutes(s.Router, handlers.NewCashierHandler(cashierService), guard)
	handlers.RegisterOperatorRoutes(s.Router, handlers.NewOperatorHandler(meterService), guard)

	done := make(chan struct{})
	s.CloseOnSignal(done)

	if err := s.ListenAndServe(config.Get().HttpListenAddr); err != nil {
		logger.Error("error in running http-server", "error", err)
		return
	}
	<-done
}

func argContainsEnvPath() string {
	for _, v := range os.Args {
		if strings.Contains(v, "--env=") {
			s := strings.Split(v, "=")
			if _, err := os.Open(s[1]); err != nil {
				logger.Error("failed to open the passed env file, got error" + err.Error())
				return ""
			}
			return s[1]
		}
	}
	return ""
}
