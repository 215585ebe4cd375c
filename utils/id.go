package utils

import (
	"InnerCompassGo/config"

	"github.com/google/uuid"
)

func GenerateID() string {
	id := uuid.New().String()
	config.Logger.Debugw("生成新ID", "id", id)
	return id
}

// GenerateBatchID 任务批次ID，同一批推荐任务共享
func GenerateBatchID() string {
	return "batch-" + uuid.New().String()
}
