package monitor

import "time"

type Component struct {
	Name    string `json:"name"`
	Healthy bool   `json:"healthy"`
	Latency string `json:"latency"`
	Error   string `json:"error,omitempty"`
}

type Status struct {
	Online     bool                 `json:"online"`
	Components map[string]Component `json:"components"`
	LastCheck  time.Time            `json:"last_check"`
}
