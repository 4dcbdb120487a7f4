package dto

import (
	"credit-engine/internal/batch"
)

type IngestStartedResponse struct {
	RunID  string `json:"run_id"`
	Status string `json:"status"`
}

func NewIngestStartedResponse(run *batch.Run) IngestStartedResponse {
	return IngestStartedResponse{RunID: run.ID, Status: string(run.Status)}
}
