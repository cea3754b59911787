package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskNarrativeGenerate = "estimates.narrative"

type NarrativeJobPayload struct {
	JobID string `json:"jobId"`
}

func NewNarrativeJobTask(payload NarrativeJobPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskNarrativeGenerate, data), nil
}

func ParseNarrativeJobPayload(task *asynq.Task) (NarrativeJobPayload, error) {
	var payload NarrativeJobPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return NarrativeJobPayload{}, err
	}
	return payload, nil
}
