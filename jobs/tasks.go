package jobs

import (
	"encoding/json"
	"strings"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTenantWarm refreshes cached tenant configs from the API.
	TaskTenantWarm = "tenant:warm"
)

// TenantWarmPayload lists the subdomains to refresh.
type TenantWarmPayload struct {
	Subdomains []string `json:"subdomains"`
}

// NewTenantWarmTask constructs an Asynq task. Blank entries are dropped.
func NewTenantWarmTask(subdomains []string) (*asynq.Task, error) {
	payload := TenantWarmPayload{Subdomains: make([]string, 0, len(subdomains))}
	for _, sub := range subdomains {
		sub = strings.ToLower(strings.TrimSpace(sub))
		if sub != "" {
			payload.Subdomains = append(payload.Subdomains, sub)
		}
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTenantWarm, data), nil
}
