package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	cancelBookingHandler "github.com/m04kA/SMC-ActivityBookingService/internal/api/handlers/cancel_booking"
	createBookingHandler "github.com/m04kA/SMC-ActivityBookingService/internal/api/handlers/create_booking"
	getAvailabilityHandler "github.com/m04kA/SMC-ActivityBookingService/internal/api/handlers/get_availability"
	getBookingHandler "github.com/m04kA/SMC-ActivityBookingService/internal/api/handlers/get_booking"
	getUserBookingsHandler "github.com/m04kA/SMC-ActivityBookingService/internal/api/handlers/get_user_bookings"
	noShowHandler "github.com/m04kA/SMC-ActivityBookingService/internal/api/handlers/no_show"
	quotePriceHandler "github.com/m04kA/SMC-ActivityBookingService/internal/api/handlers/quote_price"
	refundPreviewHandler "github.com/m04kA/SMC-ActivityBookingService/internal/api/handlers/refund_preview"
	validateBookingHandler "github.com/m04kA/SMC-ActivityBookingService/internal/api/handlers/validate_booking"
	"github.com/m04kA/SMC-ActivityBookingService/internal/api/middleware"
	"github.com/m04kA/SMC-ActivityBookingService/internal/config"
	bookingRepo "github.com/m04kA/SMC-ActivityBookingService/internal/infra/storage/booking"
	policyRepo "github.com/m04kA/SMC-ActivityBookingService/internal/infra/storage/policy"
	scheduleRepo "github.com/m04kA/SMC-ActivityBookingService/internal/infra/storage/schedule"
	taxRateRepo "github.com/m04kA/SMC-ActivityBookingService/internal/infra/storage/taxrate"
	memberServiceClient "github.com/m04kA/SMC-ActivityBookingService/internal/integrations/memberservice"
	operatorServiceClient "github.com/m04kA/SMC-ActivityBookingService/internal/integrations/operatorservice"
	bookingsService "github.com/m04kA/SMC-ActivityBookingService/internal/service/bookings"
	pricingService "github.com/m04kA/SMC-ActivityBookingService/internal/service/pricing"
	refundService "github.com/m04kA/SMC-ActivityBookingService/internal/service/refund"
	taxService "github.com/m04kA/SMC-ActivityBookingService/internal/service/tax"
	getAvailabilityUC "github.com/m04kA/SMC-ActivityBookingService/internal/usecase/get_availability"
	quotePriceUC "github.com/m04kA/SMC-ActivityBookingService/internal/usecase/quote_price"
	reserveSpotUC "github.com/m04kA/SMC-ActivityBookingService/internal/usecase/reserve_spot"
	validateBookingUC "github.com/m04kA/SMC-ActivityBookingService/internal/usecase/validate_booking"
	"github.com/m04kA/SMC-ActivityBookingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-ActivityBookingService/pkg/logger"
	"github.com/m04kA/SMC-ActivityBookingService/pkg/metrics"
	"github.com/m04kA/SMC-ActivityBookingService/pkg/simpletxmanager"
	"github.com/m04kA/SMC-ActivityBookingService/pkg/txmanager"
)

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load("config.toml")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting SMC-ActivityBookingService...")
	log.Info("Configuration loaded from config.toml")

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
	var wrappedDB *dbmetrics.DB
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Подключаемся к базе данных
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Настраиваем connection pool
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	// Проверяем соединение
	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	// Инициализируем интеграционных клиентов
	operatorClient := operatorServiceClient.NewClient(
		cfg.OperatorService.URL,
		time.Duration(cfg.OperatorService.Timeout)*time.Second,
		log,
	)
	memberClient := memberServiceClient.NewClient(
		cfg.MemberService.URL,
		time.Duration(cfg.MemberService.Timeout)*time.Second,
		log,
	)
	log.Info("Integration clients initialized (OperatorService=%s timeout=%ds, MemberService=%s timeout=%ds)",
		cfg.OperatorService.URL, cfg.OperatorService.Timeout, cfg.MemberService.URL, cfg.MemberService.Timeout)

	// Инициализируем репозитории и transaction manager (с метриками или без)
	var (
		bookingRepository  *bookingRepo.Repository
		scheduleRepository *scheduleRepo.Repository
		policyRepository   *policyRepo.Repository
		taxRateRepository  *taxRateRepo.Repository
		txMgr              *txmanager.TransactionManager
	)

	if cfg.Metrics.Enabled {
		wrappedDB = dbmetrics.WrapWithDefault(db, metricsCollector, cfg.Metrics.ServiceName, stopMetricsCh)
		log.Info("Database metrics collection started")

		// Инициализируем репозитории с обёрткой метрик
		bookingRepository = bookingRepo.NewRepository(wrappedDB)
		scheduleRepository = scheduleRepo.NewRepository(wrappedDB)
		policyRepository = policyRepo.NewRepository(wrappedDB)
		taxRateRepository = taxRateRepo.NewRepository(wrappedDB)
		txMgr = txmanager.NewTransactionManager(wrappedDB).WithRetryRecorder(metricsCollector)
	} else {
		// Инициализируем репозитории без метрик
		bookingRepository = bookingRepo.NewRepository(db)
		scheduleRepository = scheduleRepo.NewRepository(db)
		policyRepository = policyRepo.NewRepository(db)
		taxRateRepository = taxRateRepo.NewRepository(db)
		txMgr = simpletxmanager.NewTransactionManager(db)
	}

	// Инициализируем расчётные движки
	taxCalculator := taxService.NewCalculator()
	pricingComposer := pricingService.NewComposer(taxCalculator)
	refundEngine := refundService.NewEngine()

	// Инициализируем сервисы
	bookingSvc := bookingsService.NewService(
		bookingRepository,
		scheduleRepository,
		policyRepository,
		operatorClient,
		refundEngine,
		txMgr,
		log,
	)

	// Инициализируем use cases
	validateBookingUseCase := validateBookingUC.NewUseCase(
		scheduleRepository,
		bookingRepository,
		operatorClient,
		memberClient,
		log,
	)

	reserveSpotUseCase := reserveSpotUC.NewUseCase(
		scheduleRepository,
		bookingRepository,
		taxRateRepository,
		operatorClient,
		pricingComposer,
		txMgr,
		log,
	)
	if cfg.Metrics.Enabled {
		reserveSpotUseCase = reserveSpotUseCase.WithAdmissionRecorder(metricsCollector)
	}

	getAvailabilityUseCase := getAvailabilityUC.NewUseCase(
		scheduleRepository,
		bookingRepository,
		operatorClient,
		log,
	)

	quotePriceUseCase := quotePriceUC.NewUseCase(
		scheduleRepository,
		taxRateRepository,
		operatorClient,
		pricingComposer,
		log,
	)

	// Инициализируем handlers
	createBooking := createBookingHandler.NewHandler(reserveSpotUseCase, log)
	validateBooking := validateBookingHandler.NewHandler(validateBookingUseCase, log)
	getBooking := getBookingHandler.NewHandler(bookingSvc, log)
	cancelBooking := cancelBookingHandler.NewHandler(bookingSvc, log)
	noShow := noShowHandler.NewHandler(bookingSvc, log)
	refundPreview := refundPreviewHandler.NewHandler(bookingSvc, log)
	getUserBookings := getUserBookingsHandler.NewHandler(bookingSvc, log)
	getAvailability := getAvailabilityHandler.NewHandler(getAvailabilityUseCase, log)
	quotePrice := quotePriceHandler.NewHandler(quotePriceUseCase, log)

	// Настраиваем роутер
	r := mux.NewRouter()

	// Добавляем metrics middleware (если метрики включены)
	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector, cfg.Metrics.ServiceName))
		log.Info("HTTP metrics middleware enabled")

		// Metrics endpoint (публичный, без аутентификации)
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	// Снимок доступности расписания
	api.HandleFunc("/schedules/{scheduleId}/availability", getAvailability.Handle).Methods(http.MethodGet)

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID header)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// --- Бронирования ---
	// Создание брони с контролем вместимости
	protected.HandleFunc("/bookings", createBooking.Handle).Methods(http.MethodPost)

	// Предварительная валидация без создания брони
	protected.HandleFunc("/bookings/validate", validateBooking.Handle).Methods(http.MethodPost)

	// Получение брони по ID
	protected.HandleFunc("/bookings/{bookingId}", getBooking.Handle).Methods(http.MethodGet)

	// Отмена брони с расчётом возврата
	protected.HandleFunc("/bookings/{bookingId}/cancel", cancelBooking.Handle).Methods(http.MethodPatch)

	// Пометка неявки (только для менеджеров оператора)
	protected.HandleFunc("/bookings/{bookingId}/no-show", noShow.Handle).Methods(http.MethodPatch)

	// Предварительный расчёт возврата без отмены
	protected.HandleFunc("/bookings/{bookingId}/refund-preview", refundPreview.Handle).Methods(http.MethodGet)

	// История бронирований участника
	protected.HandleFunc("/users/{userId}/bookings", getUserBookings.Handle).Methods(http.MethodGet)

	// --- Цены ---
	// Расчёт полной раскладки цены без создания брони
	protected.HandleFunc("/pricing/quote", quotePrice.Handle).Methods(http.MethodPost)

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Запускаем сервер в горутине
	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Останавливаем сбор метрик connection pool
	if cfg.Metrics.Enabled {
		close(stopMetricsCh)
		log.Info("Metrics collection stopped")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	log.Info("Server stopped gracefully")
}
