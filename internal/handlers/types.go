package handlers

// CountResponse is the body of both visitor counter routes.
type CountResponse struct {
	Count int64 `json:"count"`
}

// HealthResponse reports service status for /health.
type HealthResponse struct {
	Status  string        `json:"status"`
	Service string        `json:"service"`
	Version string        `json:"version,omitempty"`
	Counter CounterHealth `json:"counter"`
}

// CounterHealth describes the counter backend as seen by the last background probe.
type CounterHealth struct {
	Mode  string `json:"mode"`
	Store string `json:"store"`
}

// fetchFailedMessage is the generic body for calendar failures other than upstream errors.
const fetchFailedMessage = "Failed to fetch GitHub data"
