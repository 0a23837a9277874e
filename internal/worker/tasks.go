package worker

import (
	"encoding/json"

	"optivus-service/internal/consumers"

	"github.com/hibiken/asynq"
)

// Task Types
const (
	TypeCommissionDistribution = "commission-distribution"
)

// Task Creators

func NewCommissionDistributionTask(payload consumers.DistributionDTO) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeCommissionDistribution, data), nil
}
