package main

import (
	"log"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"

	"optivus-service/internal/config"
	"optivus-service/internal/consumers"
	"optivus-service/internal/database"
	"optivus-service/internal/services"
	"optivus-service/internal/worker"
)

func main() {
	// Load env
	if err := godotenv.Load("../../.env"); err != nil {
		log.Println("No .env file found in ../../.env, trying .env")
		if err := godotenv.Load(".env"); err != nil {
			log.Println("No .env file found, using system env")
		}
	}

	cfg := config.Load()

	// Connect DB
	database.Connect()
	db := database.DB

	// Init Services
	ledgerService := services.NewLedgerService(db)
	referralService := services.NewReferralService(db)

	schedule, err := services.NewTierSchedule(cfg.EntryFee, cfg.TierOnePercent, cfg.TierDecay, cfg.TierLevels)
	if err != nil {
		log.Fatalf("Invalid tier schedule: %v", err)
	}
	commissionService := services.NewCommissionService(db, ledgerService, referralService, schedule)

	// Processor
	processor := consumers.NewCommissionProcessor(db, commissionService)

	redisOpt := asynq.RedisClientOpt{Addr: cfg.RedisAddr}

	log.Println("Starting Asynq Worker...")
	worker.StartWorker(redisOpt, processor)
}
