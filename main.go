package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"

	"optivus-service/internal/config"
	"optivus-service/internal/database"
	"optivus-service/internal/handlers"
	"optivus-service/internal/middleware"
	"optivus-service/internal/models"
	"optivus-service/internal/services"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found in current directory, trying parent")
		if err := godotenv.Load("../.env"); err != nil {
			log.Println("No .env file found, using system environment variables")
		}
	}

	cfg := config.Load()
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	// Initialize Database
	database.Connect()
	database.Migrate()
	database.Seed()
	db := database.DB

	// Init Services
	ledgerService := services.NewLedgerService(db)
	referralService := services.NewReferralService(db)

	schedule, err := services.NewTierSchedule(cfg.EntryFee, cfg.TierOnePercent, cfg.TierDecay, cfg.TierLevels)
	if err != nil {
		log.Fatalf("Invalid tier schedule: %v", err)
	}

	commissionService := services.NewCommissionService(db, ledgerService, referralService, schedule)
	accountService := services.NewAccountService(db)
	authService := services.NewAuthService(db, cfg.JWTSecret, cfg.JWTExpiry, cfg.PendingExpiry)
	securityService := services.NewSecurityService(db)
	withdrawalService := services.NewWithdrawalService(db, ledgerService, cfg.CryptoCapUnverified, cfg.WithdrawalsPaused)
	kycService := services.NewKycService(db)
	dashboardService := services.NewDashboardService(db, ledgerService, referralService)
	adminService := services.NewAdminService(db, ledgerService, commissionService, accountService)

	// Redis/Asynq Client
	asynqClient := asynq.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer asynqClient.Close()

	// Handlers
	authHandler := handlers.NewAuthHandler(authService, accountService, referralService)
	paymentHandler := handlers.NewPaymentHandler(commissionService, asynqClient)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService, schedule.Levels())
	withdrawalHandler := handlers.NewWithdrawalHandler(withdrawalService)
	kycHandler := handlers.NewKycHandler(kycService)
	settingsHandler := handlers.NewSettingsHandler(accountService, securityService)
	adminHandler := handlers.NewAdminHandler(adminService, withdrawalService, kycService)

	// Initialize Gin
	r := gin.Default()

	// Ping endpoint
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "Welcome to Optivus Protocol service",
		})
	})

	// Public routes
	r.POST("/auth/register", authHandler.Register)
	r.GET("/auth/check-username", authHandler.CheckUsername)
	r.POST("/auth/login", authHandler.Login)

	// Payment confirmation callback
	r.POST("/payments/events", paymentHandler.HandlePaymentEvent)

	// Pending 2FA verification
	pending := r.Group("/auth", middleware.PendingAuthMiddleware(cfg.JWTSecret))
	pending.POST("/verify-2fa", authHandler.VerifyTwoFactor)

	// Authenticated user routes
	user := r.Group("/", middleware.JwtAuthMiddleware(cfg.JWTSecret))
	user.POST("/auth/sponsor", authHandler.AttachSponsor)
	user.GET("/dashboard", dashboardHandler.Stats)
	user.GET("/dashboard/team", dashboardHandler.Team)
	user.GET("/dashboard/downline", dashboardHandler.Downline)
	user.GET("/dashboard/transactions", dashboardHandler.Transactions)
	user.POST("/withdrawals", withdrawalHandler.Request)
	user.GET("/withdrawals", withdrawalHandler.History)
	user.POST("/kyc", kycHandler.Submit)
	user.GET("/settings/profile", settingsHandler.Profile)
	user.PUT("/settings/profile", settingsHandler.UpdateProfile)
	user.PUT("/settings/password", settingsHandler.ChangePassword)
	user.PUT("/settings/pin", settingsHandler.SetPin)
	user.POST("/settings/2fa", settingsHandler.BeginTwoFactor)
	user.POST("/settings/2fa/confirm", settingsHandler.ConfirmTwoFactor)
	user.POST("/settings/2fa/disable", settingsHandler.DisableTwoFactor)
	user.POST("/settings/payout", settingsHandler.ConnectPayout)
	user.POST("/settings/crypto", settingsHandler.BindCrypto)

	// Admin routes
	admin := r.Group("/admin",
		middleware.JwtAuthMiddleware(cfg.JWTSecret),
		middleware.RequireRole(models.RoleAdmin))
	admin.GET("/stats", adminHandler.Stats)
	admin.GET("/accounts", adminHandler.ListAccounts)
	admin.POST("/accounts", adminHandler.CreateAccount)
	admin.GET("/accounts/:id", adminHandler.AccountDetail)
	admin.GET("/ledger", adminHandler.ListLedger)
	admin.PUT("/accounts/:id/balance", adminHandler.AdjustBalance)
	admin.PUT("/accounts/:id/status", adminHandler.SetAccountStatus)
	admin.PUT("/accounts/:id/withdrawal-gate", adminHandler.SetWithdrawalGate)
	admin.GET("/withdrawals", adminHandler.PendingWithdrawals)
	admin.PUT("/withdrawals/:id", adminHandler.ResolveWithdrawal)
	admin.GET("/kyc", adminHandler.PendingKyc)
	admin.PUT("/kyc/:id/approve", adminHandler.ApproveKyc)
	admin.PUT("/kyc/:id/reject", adminHandler.RejectKyc)
	admin.GET("/audit", adminHandler.AuditTrail)

	// Start Cron Schedulers
	reconciliationService := services.NewReconciliationService(db, ledgerService, cfg.LedgerRetentionMonths)
	reconciliationService.StartScheduler()

	log.Printf("HTTP Server starting on port %s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server: ", err)
	}
}
