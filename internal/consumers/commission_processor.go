package consumers

import (
	"log"

	"gorm.io/gorm"

	"optivus-service/internal/services"
)

// CommissionProcessor executes queued commission distributions. Every job
// action is idempotent, so asynq retries after a crash are harmless.
type CommissionProcessor struct {
	DB         *gorm.DB
	Commission *services.CommissionService
}

func NewCommissionProcessor(db *gorm.DB, commission *services.CommissionService) *CommissionProcessor {
	return &CommissionProcessor{DB: db, Commission: commission}
}

// --- DTOs ---

type DistributionDTO struct {
	EventId string
}

func (p *CommissionProcessor) ProcessDistribution(dto DistributionDTO) error {
	if err := p.Commission.Distribute(dto.EventId); err != nil {
		log.Printf("Commission distribution for event %s failed: %v", dto.EventId, err)
		return err
	}
	log.Printf("Commission distribution for event %s completed", dto.EventId)
	return nil
}
