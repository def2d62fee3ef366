package workflow

import (
	"math"
	"strings"

	"github.com/fastygo/contentflow/domain"
)

// TargetProgress is the derived completion of one target.
type TargetProgress struct {
	Target    domain.Target `json:"target"`
	Done      int           `json:"done"`
	Percent   int           `json:"percent"`
	Remaining int           `json:"remaining"`
}

// Progress is the derived quota state of one client. Never stored.
type Progress struct {
	ClientID        string           `json:"client_id"`
	Targets         []TargetProgress `json:"targets"`
	Planned         int              `json:"planned"`
	Done            int              `json:"done"`
	RemainingGlobal int              `json:"remaining_global"`
}

// DoneFor counts the client's finished tasks whose format matches label,
// ignoring case.
func DoneFor(clientID, label string, tasks []domain.Task) int {
	done := 0
	for _, t := range tasks {
		if t.ClientID == clientID && t.Status.IsDone() && strings.EqualFold(t.Format, label) {
			done++
		}
	}
	return done
}

// Percent is done/count as a rounded percentage capped at 100. A zero count
// is treated as one.
func Percent(done, count int) int {
	if count < 1 {
		count = 1
	}
	pct := int(math.Round(float64(done) / float64(count) * 100))
	if pct > 100 {
		return 100
	}
	return pct
}

// ClientProgress computes per-target and global progress for client.
func ClientProgress(client domain.Client, tasks []domain.Task) Progress {
	p := Progress{
		ClientID: client.ID,
		Targets:  make([]TargetProgress, 0, len(client.Targets)),
	}
	for _, target := range client.Targets {
		done := DoneFor(client.ID, target.Label, tasks)
		remaining := target.Count - done
		if remaining < 0 {
			remaining = 0
		}
		p.Targets = append(p.Targets, TargetProgress{
			Target:    target,
			Done:      done,
			Percent:   Percent(done, target.Count),
			Remaining: remaining,
		})
		p.Planned += target.Count
		p.Done += done
	}
	if p.RemainingGlobal = p.Planned - p.Done; p.RemainingGlobal < 0 {
		p.RemainingGlobal = 0
	}
	return p
}

// ClientStats is the finished/total task count shown on client cards.
type ClientStats struct {
	ClientID string `json:"client_id"`
	Done     int    `json:"done"`
	Total    int    `json:"total"`
}

func StatsFor(clientID string, tasks []domain.Task) ClientStats {
	stats := ClientStats{ClientID: clientID}
	for _, t := range tasks {
		if t.ClientID != clientID {
			continue
		}
		stats.Total++
		if t.Status.IsDone() {
			stats.Done++
		}
	}
	return stats
}
