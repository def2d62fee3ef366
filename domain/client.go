package domain

import (
	"strings"
	"time"
)

// Target is a monthly quota for one content label.
type Target struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Client is a managed account with an ordered set of targets.
type Client struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Sector    string    `json:"sector"`
	Logo      string    `json:"logo,omitempty"`
	Active    bool      `json:"active"`
	Targets   []Target  `json:"targets"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (c *Client) Validate() error {
	if c == nil {
		return ErrInvalidPayload
	}
	if strings.TrimSpace(c.Name) == "" {
		return Invalidf("client name is required")
	}
	return ValidateTargets(c.Targets)
}

// ValidateTargets checks a full target set before it replaces the stored one.
func ValidateTargets(targets []Target) error {
	for i, t := range targets {
		if strings.TrimSpace(t.Label) == "" {
			return Invalidf("target %d has an empty label", i)
		}
		if t.Count < 0 {
			return Invalidf("target %q has a negative count", t.Label)
		}
	}
	return nil
}
