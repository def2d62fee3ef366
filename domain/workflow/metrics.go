package workflow

import (
	"math"
	"sort"
	"time"

	"github.com/fastygo/contentflow/domain"
)

// Overview holds the headline counters of the dashboard.
type Overview struct {
	Total      int `json:"total"`
	Pending    int `json:"pending"`
	InProgress int `json:"in_progress"`
	Approved   int `json:"approved"`
	Delayed    int `json:"delayed"`
}

// Buckets groups statuses the way the productivity chart does.
type Buckets struct {
	Pending    int `json:"pending"`
	Production int `json:"production"`
	Review     int `json:"review"`
	Done       int `json:"done"`
}

// Alerts are the deadline reminders of the calendar.
type Alerts struct {
	DueToday int `json:"due_today"`
	Late     int `json:"late"`
	InReview int `json:"in_review"`
}

// IsLate reports whether the deadline passed before today and the task is unfinished.
func IsLate(t domain.Task, today time.Time) bool {
	if t.Deadline.IsZero() || t.Status.IsDone() {
		return false
	}
	return t.DeadlineDate() < today.Format(domain.DateLayout)
}

func Summarize(tasks []domain.Task, today time.Time) Overview {
	o := Overview{Total: len(tasks)}
	for _, t := range tasks {
		switch t.Status {
		case domain.StatusPending:
			o.Pending++
		case domain.StatusInProduction, domain.StatusAdjustmentsRequested:
			o.InProgress++
		case domain.StatusApproved, domain.StatusDelivered:
			o.Approved++
		}
		if IsLate(t, today) {
			o.Delayed++
		}
	}
	return o
}

func Bucketize(tasks []domain.Task) Buckets {
	var b Buckets
	for _, t := range tasks {
		switch t.Status {
		case domain.StatusPending, domain.StatusToProduce:
			b.Pending++
		case domain.StatusInProduction, domain.StatusAdjustmentsRequested:
			b.Production++
		case domain.StatusInReview:
			b.Review++
		case domain.StatusApproved, domain.StatusDelivered:
			b.Done++
		}
	}
	return b
}

func DeadlineAlerts(tasks []domain.Task, today time.Time) Alerts {
	var a Alerts
	day := today.Format(domain.DateLayout)
	for _, t := range tasks {
		if t.DeadlineDate() == day && t.Status != domain.StatusDelivered {
			a.DueToday++
		}
		if IsLate(t, today) {
			a.Late++
		}
		if t.Status == domain.StatusInReview {
			a.InReview++
		}
	}
	return a
}

// StatusCounts counts tasks per status; statuses with no task are omitted.
func StatusCounts(tasks []domain.Task) map[domain.ContentStatus]int {
	counts := make(map[domain.ContentStatus]int)
	for _, t := range tasks {
		counts[t.Status]++
	}
	return counts
}

// CompletionRate is the rounded share of finished tasks, 0 for an empty set.
func CompletionRate(tasks []domain.Task) int {
	if len(tasks) == 0 {
		return 0
	}
	done := 0
	for _, t := range tasks {
		if t.Status.IsDone() {
			done++
		}
	}
	return int(math.Round(float64(done) / float64(len(tasks)) * 100))
}

// DayAgenda lists the tasks due on one calendar date.
type DayAgenda struct {
	Date  string        `json:"date"`
	Tasks []domain.Task `json:"tasks"`
}

// ByDeadline groups tasks by deadline date in ascending date order.
// Tasks without a deadline are skipped.
func ByDeadline(tasks []domain.Task) []DayAgenda {
	index := make(map[string]int)
	var days []DayAgenda
	for _, t := range tasks {
		date := t.DeadlineDate()
		if date == "" {
			continue
		}
		i, ok := index[date]
		if !ok {
			i = len(days)
			index[date] = i
			days = append(days, DayAgenda{Date: date})
		}
		days[i].Tasks = append(days[i].Tasks, t)
	}
	sort.SliceStable(days, func(a, b int) bool { return days[a].Date < days[b].Date })
	return days
}
