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

	abandonBookingHandler "github.com/fairwaylabs/GLM-BookingService/internal/api/handlers/abandon_booking"
	cancelBookingHandler "github.com/fairwaylabs/GLM-BookingService/internal/api/handlers/cancel_booking"
	confirmBookingHandler "github.com/fairwaylabs/GLM-BookingService/internal/api/handlers/confirm_booking"
	decideBookingHandler "github.com/fairwaylabs/GLM-BookingService/internal/api/handlers/decide_booking"
	getAmateurBookingsHandler "github.com/fairwaylabs/GLM-BookingService/internal/api/handlers/get_amateur_bookings"
	getBookingHandler "github.com/fairwaylabs/GLM-BookingService/internal/api/handlers/get_booking"
	getProfessionalBookingsHandler "github.com/fairwaylabs/GLM-BookingService/internal/api/handlers/get_professional_bookings"
	getSlotHandler "github.com/fairwaylabs/GLM-BookingService/internal/api/handlers/get_slot"
	respondAlternativeHandler "github.com/fairwaylabs/GLM-BookingService/internal/api/handlers/respond_alternative"
	startBookingHandler "github.com/fairwaylabs/GLM-BookingService/internal/api/handlers/start_booking"
	"github.com/fairwaylabs/GLM-BookingService/internal/api/middleware"
	"github.com/fairwaylabs/GLM-BookingService/internal/config"
	bookingRepo "github.com/fairwaylabs/GLM-BookingService/internal/infra/storage/booking"
	outboxRepo "github.com/fairwaylabs/GLM-BookingService/internal/infra/storage/outbox"
	paymentRepo "github.com/fairwaylabs/GLM-BookingService/internal/infra/storage/payment"
	slotRepo "github.com/fairwaylabs/GLM-BookingService/internal/infra/storage/slot"
	validationRepo "github.com/fairwaylabs/GLM-BookingService/internal/infra/storage/validation"
	"github.com/fairwaylabs/GLM-BookingService/internal/integrations/stripeproc"
	bookingsService "github.com/fairwaylabs/GLM-BookingService/internal/service/bookings"
	ledgerService "github.com/fairwaylabs/GLM-BookingService/internal/service/ledger"
	paymentsService "github.com/fairwaylabs/GLM-BookingService/internal/service/payments"
	abandonBookingUC "github.com/fairwaylabs/GLM-BookingService/internal/usecase/abandon_booking"
	confirmBookingUC "github.com/fairwaylabs/GLM-BookingService/internal/usecase/confirm_booking"
	decideBookingUC "github.com/fairwaylabs/GLM-BookingService/internal/usecase/decide_booking"
	respondAlternativeUC "github.com/fairwaylabs/GLM-BookingService/internal/usecase/respond_alternative"
	startBookingUC "github.com/fairwaylabs/GLM-BookingService/internal/usecase/start_booking"
	outboxWorker "github.com/fairwaylabs/GLM-BookingService/internal/worker/outbox"
	sweeperWorker "github.com/fairwaylabs/GLM-BookingService/internal/worker/sweeper"
	"github.com/fairwaylabs/GLM-BookingService/pkg/dbmetrics"
	"github.com/fairwaylabs/GLM-BookingService/pkg/logger"
	"github.com/fairwaylabs/GLM-BookingService/pkg/metrics"
	"github.com/fairwaylabs/GLM-BookingService/pkg/mq"
	"github.com/fairwaylabs/GLM-BookingService/pkg/simpletxmanager"
	"github.com/fairwaylabs/GLM-BookingService/pkg/txmanager"
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

	log.Info("Starting GLM-BookingService...")
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

	// Клиент платежного процессора
	processorClient := stripeproc.NewClient(cfg.Payments.StripeKey, log)
	log.Info("Payment processor client initialized")

	// Publisher событий бронирования
	publisher, err := mq.NewPublisher(cfg.Notifications.AMQPURL, cfg.Notifications.Exchange)
	if err != nil {
		log.Fatal("Failed to connect to message broker: %v", err)
	}
	defer publisher.Close()
	log.Info("Event publisher connected (exchange=%s)", cfg.Notifications.Exchange)

	// Инициализируем репозитории (с метриками или без)
	var (
		slotRepository       *slotRepo.Repository
		bookingRepository    *bookingRepo.Repository
		paymentRepository    *paymentRepo.Repository
		validationRepository *validationRepo.Repository
		outboxRepository     *outboxRepo.Repository
	)

	// Интерфейс для transaction manager (используется в usecases)
	type TxManager interface {
		DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
	}
	var txMgr TxManager

	if cfg.Metrics.Enabled {
		wrappedDB = dbmetrics.WrapWithDefault(db, metricsCollector, cfg.Metrics.ServiceName, stopMetricsCh)
		log.Info("Database metrics collection started")

		slotRepository = slotRepo.NewRepository(wrappedDB)
		bookingRepository = bookingRepo.NewRepository(wrappedDB)
		paymentRepository = paymentRepo.NewRepository(wrappedDB)
		validationRepository = validationRepo.NewRepository(wrappedDB)
		outboxRepository = outboxRepo.NewRepository(wrappedDB)
		txMgr = txmanager.NewTransactionManager(wrappedDB)
	} else {
		slotRepository = slotRepo.NewRepository(db)
		bookingRepository = bookingRepo.NewRepository(db)
		paymentRepository = paymentRepo.NewRepository(db)
		validationRepository = validationRepo.NewRepository(db)
		outboxRepository = outboxRepo.NewRepository(db)
		txMgr = simpletxmanager.NewTransactionManager(db)
	}

	// Инициализируем сервисы
	ledgerSvc := ledgerService.NewService(
		slotRepository,
		txMgr,
		time.Duration(cfg.Workers.HoldTTLMinutes)*time.Minute,
		log,
	)
	paymentsSvc := paymentsService.NewService(
		paymentRepository,
		processorClient,
		cfg.Payments.MaxRetries,
		time.Duration(cfg.Payments.BackoffMS)*time.Millisecond,
		log,
	)
	bookingSvc := bookingsService.NewService(
		bookingRepository,
		slotRepository,
		outboxRepository,
		validationRepository,
		paymentsSvc,
		txMgr,
		log,
	)

	// Инициализируем use cases
	startBookingUseCase := startBookingUC.NewUseCase(ledgerSvc, paymentsSvc, log)
	confirmBookingUseCase := confirmBookingUC.NewUseCase(
		bookingRepository,
		outboxRepository,
		ledgerSvc,
		paymentsSvc,
		txMgr,
		log,
	)
	abandonBookingUseCase := abandonBookingUC.NewUseCase(ledgerSvc, paymentsSvc, log)
	decideBookingUseCase := decideBookingUC.NewUseCase(
		bookingRepository,
		slotRepository,
		validationRepository,
		outboxRepository,
		paymentsSvc,
		txMgr,
		log,
	)
	respondAlternativeUseCase := respondAlternativeUC.NewUseCase(
		bookingRepository,
		slotRepository,
		outboxRepository,
		ledgerSvc,
		paymentsSvc,
		txMgr,
		log,
	)

	// Инициализируем handlers
	getSlot := getSlotHandler.NewHandler(ledgerSvc, log)
	startBooking := startBookingHandler.NewHandler(startBookingUseCase, log)
	confirmBooking := confirmBookingHandler.NewHandler(confirmBookingUseCase, log)
	abandonBooking := abandonBookingHandler.NewHandler(abandonBookingUseCase, log)
	getBooking := getBookingHandler.NewHandler(bookingSvc, log)
	cancelBooking := cancelBookingHandler.NewHandler(bookingSvc, log)
	getAmateurBookings := getAmateurBookingsHandler.NewHandler(bookingSvc, log)
	getProfessionalBookings := getProfessionalBookingsHandler.NewHandler(bookingSvc, log)
	respondAlternative := respondAlternativeHandler.NewHandler(respondAlternativeUseCase, log)
	decideBooking := decideBookingHandler.NewHandler(decideBookingUseCase, log)

	// Настраиваем роутер
	r := mux.NewRouter()

	// Добавляем metrics middleware (если метрики включены)
	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector, cfg.Metrics.ServiceName))
		log.Info("HTTP metrics middleware enabled")
	}

	// Metrics endpoint (публичный, без аутентификации)
	if cfg.Metrics.Enabled {
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	// Просмотр слота с остатком мест
	api.HandleFunc("/slots/{slotId}", getSlot.Handle).Methods(http.MethodGet)

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID header)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// --- Жизненный цикл бронирования ---
	// Старт: hold на места + открытие платежа
	protected.HandleFunc("/bookings/start", startBooking.Handle).Methods(http.MethodPost)

	// Подтверждение после оплаты, идемпотентно по transactionId
	protected.HandleFunc("/bookings/confirm", confirmBooking.Handle).Methods(http.MethodPost)

	// Отказ от незавершенной попытки: release hold + отмена платежа
	protected.HandleFunc("/bookings/abandon", abandonBooking.Handle).Methods(http.MethodPost)

	// Получение бронирования по ID
	protected.HandleFunc("/bookings/{bookingId}", getBooking.Handle).Methods(http.MethodGet)

	// Отмена бронирования с возвратом средств
	protected.HandleFunc("/bookings/{bookingId}/cancel", cancelBooking.Handle).Methods(http.MethodPatch)

	// История решений администраторов по бронированию
	protected.HandleFunc("/bookings/{bookingId}/validation-history",
		getBooking.HandleValidationHistory).Methods(http.MethodGet)

	// Ответ любителя на альтернативное предложение
	protected.HandleFunc("/bookings/{bookingId}/respond-alternative",
		respondAlternative.Handle).Methods(http.MethodPost)

	// История бронирований любителя
	protected.HandleFunc("/amateurs/{amateurId}/bookings", getAmateurBookings.Handle).Methods(http.MethodGet)

	// Расписание бронирований профессионала
	protected.HandleFunc("/professionals/{professionalId}/bookings",
		getProfessionalBookings.Handle).Methods(http.MethodGet)

	// ============================================================
	// ADMIN ROUTES (требуют X-Admin-ID header)
	// ============================================================

	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(middleware.AdminAuth)

	// Решение администратора: confirm / reject / propose_alternative
	admin.HandleFunc("/bookings/{bookingId}/decision", decideBooking.Handle).Methods(http.MethodPost)

	// Фоновые обработчики
	workersCtx, stopWorkers := context.WithCancel(context.Background())

	dispatcher := outboxWorker.NewDispatcher(
		outboxRepository,
		publisher,
		metricsCollector,
		time.Duration(cfg.Workers.OutboxInterval)*time.Second,
		uint64(cfg.Workers.BatchSize),
		log,
	)
	go dispatcher.Run(workersCtx)

	sweeper := sweeperWorker.New(
		ledgerSvc,
		paymentsSvc,
		metricsCollector,
		time.Duration(cfg.Workers.SweeperInterval)*time.Second,
		uint64(cfg.Workers.BatchSize),
		log,
	)
	go sweeper.Run(workersCtx)

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Останавливаем фоновые обработчики
	stopWorkers()

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
