package health

import "context"

// a dependency the readiness probe checks
type Pinger interface {
	Ping(ctx context.Context) error
}

type Response struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version,omitempty"`
}

type ReadyResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
