package main

import (
	"os"

	"gescom-backend/internal/database"
	"gescom-backend/internal/handler"
	"gescom-backend/internal/middleware"
	"gescom-backend/internal/repository"
	"gescom-backend/internal/service"
	"gescom-backend/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           Gescom API
// @version         1.0
// @description     Invoicing, billing and cash management back office.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	if err := godotenv.Load("configs/.env"); err != nil {
		logger.Info().Msg("no configs/.env file found")
	}

	dsn := buildDSN()
	db, err := database.NewConnection(dsn)
	if err != nil {
		logger.Fatal().Err(err).Msg("database connection failed")
	}
	logger.Info().Msg("connected to PostgreSQL")

	wsHub := websocket.NewHub(logger)
	go wsHub.Run()

	// Repositories
	txManager := repository.NewTransactionManager(db)
	userRepo := repository.NewUserRepository(db)
	clientRepo := repository.NewClientRepository(db)
	quoteRepo := repository.NewQuoteRepository(db)
	orderRepo := repository.NewWorkOrderRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	lineItemRepo := repository.NewLineItemRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	movementRepo := repository.NewCashMovementRepository(db)
	bankRepo := repository.NewBankRepository(db)
	cancellationRepo := repository.NewCancellationRepository(db)
	configRepo := repository.NewConfigurationRepository(db)
	counterRepo := repository.NewCounterRepository(db)
	documentRepo := repository.NewDocumentRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	// Services
	auditService := service.NewAuditService(auditRepo, logger)
	notificationService := service.NewNotificationService(wsHub, logger)
	numberingService := service.NewNumberingService(counterRepo, configRepo, documentRepo)
	totalsService := service.NewTotalsService(lineItemRepo, configRepo, documentRepo)
	balanceService := service.NewBalanceService(clientRepo)
	ledgerService := service.NewLedgerService(movementRepo, bankRepo)
	configService := service.NewConfigService(configRepo, auditService)
	clientService := service.NewClientService(clientRepo)
	userService := service.NewUserService(userRepo, middleware.GetJWTSecret())
	invoiceService := service.NewInvoiceService(
		invoiceRepo, clientRepo, lineItemRepo,
		numberingService, totalsService, balanceService,
		txManager, auditService, notificationService,
	)
	orderService := service.NewWorkOrderService(
		orderRepo, invoiceRepo, clientRepo, lineItemRepo,
		numberingService, totalsService, balanceService,
		txManager, auditService, notificationService,
	)
	quoteService := service.NewQuoteService(
		quoteRepo, orderRepo, clientRepo, lineItemRepo,
		numberingService, totalsService,
		txManager, auditService, notificationService,
	)
	paymentService := service.NewPaymentService(
		paymentRepo, invoiceRepo, orderRepo, invoiceService, orderService,
		ledgerService, txManager, auditService, notificationService,
	)
	cancellationService := service.NewCancellationService(
		cancellationRepo, invoiceRepo, orderRepo, quoteRepo, paymentRepo,
		numberingService, ledgerService, balanceService,
		txManager, auditService, notificationService,
	)

	// Handlers
	userHandler := handler.NewUserHandler(userService)
	clientHandler := handler.NewClientHandler(clientService)
	quoteHandler := handler.NewQuoteHandler(quoteService, cancellationService)
	orderHandler := handler.NewWorkOrderHandler(orderService, cancellationService, paymentService)
	invoiceHandler := handler.NewInvoiceHandler(invoiceService, cancellationService, paymentService)
	paymentHandler := handler.NewPaymentHandler(paymentService)
	cancellationHandler := handler.NewCancellationHandler(cancellationService)
	treasuryHandler := handler.NewTreasuryHandler(ledgerService)
	configHandler := handler.NewConfigHandler(configService)
	auditHandler := handler.NewAuditHandler(auditService)

	router := gin.Default()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"http://localhost:5173", "http://127.0.0.1:5173"}
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK"})
	})

	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c, middleware.GetJWTSecret())
	})

	api := router.Group("")
	userHandler.RegisterRoutes(api)
	clientHandler.RegisterRoutes(api)
	quoteHandler.RegisterRoutes(api)
	orderHandler.RegisterRoutes(api)
	invoiceHandler.RegisterRoutes(api)
	paymentHandler.RegisterRoutes(api)
	cancellationHandler.RegisterRoutes(api)
	treasuryHandler.RegisterRoutes(api)
	configHandler.RegisterRoutes(api)
	auditHandler.RegisterRoutes(api)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	logger.Info().Str("port", port).Msg("server listening")
	if err := router.Run(":" + port); err != nil {
		logger.Fatal().Err(err).Msg("server failed")
	}
}

func buildDSN() string {
	get := func(key, fallback string) string {
		if v := os.Getenv(key); v != "" {
			return v
		}
		return fallback
	}

	host := get("DB_HOST", "localhost")
	port := get("DB_PORT", "5432")
	user := get("DB_USER", "postgres")
	password := get("DB_PASSWORD", "postgres")
	name := get("DB_NAME", "gescom")
	sslMode := get("DB_SSLMODE", "disable")

	return "postgres://" + user + ":" + password + "@" + host + ":" + port + "/" + name + "?sslmode=" + sslMode
}
