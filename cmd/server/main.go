package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/smarttransit/fleet-booking-backend/internal/config"
	"github.com/smarttransit/fleet-booking-backend/internal/database"
	"github.com/smarttransit/fleet-booking-backend/internal/handlers"
	"github.com/smarttransit/fleet-booking-backend/internal/middleware"
	"github.com/smarttransit/fleet-booking-backend/internal/models"
	"github.com/smarttransit/fleet-booking-backend/internal/services"
	"github.com/smarttransit/fleet-booking-backend/pkg/jwt"
	"github.com/smarttransit/fleet-booking-backend/pkg/notify"
)

var (
	version   = "1.0.0"
	buildTime = "unknown"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	logger.Info("Starting SmartTransit Fleet Booking Backend")
	logger.Infof("Version: %s, Build Time: %s", version, buildTime)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	logLevel, err := logrus.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		logger.Warn("Invalid log level, using INFO")
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	// Database
	logger.Info("Connecting to database...")
	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	logger.Info("Database connection established")

	if cfg.Database.MigrateOnStart {
		if err := database.Migrate(context.Background(), db, logger); err != nil {
			logger.Fatalf("Failed to apply migrations: %v", err)
		}
	}

	vehicleRepository := database.NewVehicleRepository(db)
	bookingRepository := database.NewBookingRepository(db)
	rentalRepository := database.NewRentalRepository(db)
	tourRepository := database.NewTourRepository(db)
	contractRepository := database.NewProviderContractRepository(db)
	paymentRepository := database.NewPaymentRepository(db)
	ledgerRepository := database.NewLedgerRepository(db)
	transactor := database.NewTransactor(db)

	// Vehicle locking: Redis when shared across instances, in-process otherwise
	var locker services.VehicleLocker = services.NewLocalVehicleLocker()
	if cfg.Redis.URL != "" {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			logger.Fatalf("Invalid REDIS_URL: %v", err)
		}
		redisClient := redis.NewClient(opts)
		defer redisClient.Close()

		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err = redisClient.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			logger.Fatalf("Failed to reach Redis: %v", err)
		}
		locker = services.NewRedisVehicleLocker(redisClient, cfg.Redis.LockTTL, cfg.Redis.LockWait, logger)
		logger.Info("Vehicle locks backed by Redis")
	}

	// Notifications go out after commit on their own goroutines
	var dispatcher notify.Dispatcher = notify.NewLogDispatcher(logger)
	if len(cfg.Notifications.KafkaBrokers) > 0 {
		kafkaDispatcher := notify.NewKafkaDispatcher(cfg.Notifications.KafkaBrokers, cfg.Notifications.KafkaTopic)
		defer kafkaDispatcher.Close()
		dispatcher = kafkaDispatcher
		logger.WithField("topic", cfg.Notifications.KafkaTopic).Info("Notifications published to Kafka")
	}
	notifier := notify.NewAsync(dispatcher, logger, cfg.Notifications.Timeout)

	// Services
	registry := services.NewResourceRegistry(vehicleRepository, locker, logger)
	vehicleService := services.NewVehicleService(vehicleRepository, registry, logger)
	bookingService := services.NewBookingService(bookingRepository, vehicleRepository, transactor, notifier, map[models.ServiceType]float64{
		models.ServiceTypeWedding: cfg.Pricing.WeddingRatePerKm,
		models.ServiceTypeAirport: cfg.Pricing.AirportRatePerKm,
		models.ServiceTypeCargo:   cfg.Pricing.CargoRatePerKm,
		models.ServiceTypeDaily:   cfg.Pricing.DailyRatePerKm,
	}, logger)
	rentalService := services.NewRentalService(rentalRepository, vehicleRepository, registry, transactor, notifier, logger)
	tourService := services.NewTourBookingService(tourRepository, transactor, notifier, logger)
	contractService := services.NewProviderContractService(contractRepository, transactor, notifier, logger)
	paymentService := services.NewPaymentService(paymentRepository, bookingRepository, transactor, cfg.Pricing.Currency, logger)
	financialService := services.NewFinancialService(ledgerRepository, paymentRepository, vehicleRepository, logger)

	var audit handlers.AuditRecorder
	var auditHandler *handlers.AuditHandler
	if cfg.Security.EnableAuditLog {
		auditService := services.NewAuditService(db, logger)
		audit = auditService
		auditHandler = handlers.NewAuditHandler(auditService, logger)
	}

	var cronService *services.CronService
	if cfg.Cron.Enabled {
		cronService = services.NewCronService(contractService, cfg.Cron.ContractExpirySchedule, logger)
		if err := cronService.Start(); err != nil {
			logger.Fatalf("Failed to start cron service: %v", err)
		}
		logger.Info("Cron service started - provider contract expiry enabled")
	}

	jwtService := jwt.NewService(cfg.JWT.Secret, cfg.JWT.AccessTokenExpiry)

	// Handlers
	vehicleHandler := handlers.NewVehicleHandler(vehicleService, audit, logger)
	bookingHandler := handlers.NewBookingHandler(bookingService, audit, logger)
	rentalHandler := handlers.NewRentalHandler(rentalService, audit, logger)
	tourHandler := handlers.NewTourHandler(tourService, audit, logger)
	contractHandler := handlers.NewContractHandler(contractService, audit, logger)
	paymentHandler := handlers.NewPaymentHandler(paymentService, audit, logger)
	financeHandler := handlers.NewFinanceHandler(financialService, audit, logger)
	healthHandler := handlers.NewHealthHandler(db, version)

	// Router
	router := gin.New()
	router.Use(gin.Recovery())
	if cfg.Security.EnableRequestLog {
		router.Use(middleware.RequestLogger(logger))
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     cfg.CORS.AllowedMethods,
		AllowHeaders:     cfg.CORS.AllowedHeaders,
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/health", healthHandler.Check)

	v1 := router.Group("/api/v1")
	v1.Use(middleware.AuthMiddleware(jwtService, logger))
	{
		vehicles := v1.Group("/vehicles")
		{
			vehicles.GET("", vehicleHandler.ListVehicles)
			vehicles.GET("/:id", vehicleHandler.GetVehicle)
			vehicles.GET("/:id/availability", vehicleHandler.GetAvailability)
			vehicles.POST("", middleware.RequireAdmin(), vehicleHandler.CreateVehicle)
			vehicles.PUT("/:id", middleware.RequireAdmin(), vehicleHandler.UpdateVehicle)
			vehicles.DELETE("/:id", middleware.RequireAdmin(), vehicleHandler.RetireVehicle)
		}

		bookings := v1.Group("/bookings")
		{
			bookings.POST("", bookingHandler.CreateBooking)
			bookings.GET("", bookingHandler.ListMyBookings)
			bookings.GET("/:id", bookingHandler.GetBooking)
			bookings.PUT("/:id", bookingHandler.UpdateBooking)
			bookings.DELETE("/:id", bookingHandler.DeleteBooking)
		}

		rentals := v1.Group("/rentals")
		{
			rentals.POST("", rentalHandler.CreateRental)
			rentals.GET("", rentalHandler.ListMyRentals)
			rentals.GET("/:id", rentalHandler.GetRental)
		}

		packages := v1.Group("/tour-packages")
		{
			packages.GET("", tourHandler.ListPackages)
			packages.POST("", middleware.RequireAdmin(), tourHandler.CreatePackage)
			packages.PUT("/:id", middleware.RequireAdmin(), tourHandler.UpdatePackage)
		}

		tours := v1.Group("/tour-bookings")
		{
			tours.POST("", tourHandler.CreateTourBooking)
			tours.GET("", tourHandler.ListMyTourBookings)
			tours.GET("/:id", tourHandler.GetTourBooking)
			tours.POST("/:id/cancel", tourHandler.CancelTourBooking)
		}

		contracts := v1.Group("/provider-contracts")
		{
			contracts.POST("", contractHandler.CreateContract)
			contracts.GET("", contractHandler.ListMyContracts)
			contracts.GET("/:id", contractHandler.GetContract)
			contracts.PUT("/:id", contractHandler.UpdateContract)
			contracts.DELETE("/:id", contractHandler.DeleteContract)
		}

		payments := v1.Group("/payments")
		{
			payments.POST("", paymentHandler.CreatePayment)
			payments.GET("/booking/:bookingId", paymentHandler.ListBookingPayments)
		}

		admin := v1.Group("/admin")
		admin.Use(middleware.RequireAdmin())
		{
			admin.GET("/bookings", bookingHandler.AdminListBookings)
			admin.PUT("/bookings/:id/status", bookingHandler.AdminSetBookingStatus)
			admin.PUT("/bookings/:id/pricing", bookingHandler.AdminSetBookingPricing)

			admin.GET("/rentals", rentalHandler.AdminListRentals)
			admin.PUT("/rentals/:id/status", rentalHandler.AdminSetRentalStatus)
			admin.PUT("/rentals/:id", rentalHandler.AdminUpdateRental)
			admin.DELETE("/rentals/:id", rentalHandler.AdminDeleteRental)

			admin.GET("/tour-bookings", tourHandler.AdminListTourBookings)
			admin.PUT("/tour-bookings/:id/status", tourHandler.AdminSetTourStatus)
			admin.POST("/tour-bookings/:id/payments", tourHandler.AdminRecordTourPayment)

			admin.GET("/provider-contracts", contractHandler.AdminListContracts)
			admin.PUT("/provider-contracts/:id/status", contractHandler.AdminSetContractStatus)
			admin.POST("/provider-contracts/:id/payments", contractHandler.AdminRecordContractPayment)

			admin.PUT("/payments/:id/status", paymentHandler.AdminSetPaymentStatus)

			finance := admin.Group("/finance")
			{
				finance.POST("/entries", financeHandler.CreateEntry)
				finance.GET("/entries", financeHandler.ListEntries)
				finance.PUT("/entries/:id", financeHandler.UpdateEntry)
				finance.DELETE("/entries/:id", financeHandler.DeleteEntry)
				finance.POST("/service-records", financeHandler.CreateServiceRecord)
				finance.GET("/service-records", financeHandler.ListServiceRecords)
				finance.PUT("/service-records/:id", financeHandler.UpdateServiceRecord)
				finance.DELETE("/service-records/:id", financeHandler.DeleteServiceRecord)
				finance.GET("/summary", financeHandler.Summary)
				finance.GET("/monthly", financeHandler.Monthly)
			}

			if auditHandler != nil {
				admin.GET("/audit/:entityType/:id", auditHandler.EntityHistory)
			}
		}
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Infof("Server starting on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	if cronService != nil {
		cronService.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}

	// Let in-flight notifications drain before the dispatcher closes
	notifier.Wait()

	logger.Info("Server exited successfully")
}
