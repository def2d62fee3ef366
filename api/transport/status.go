package transport

import "github.com/fastygo/contentflow/domain"

// DisplayMeta is how a status or priority is presented by clients.
type DisplayMeta struct {
	Value string `json:"value"`
	Label string `json:"label"`
	Color string `json:"color"`
	Icon  string `json:"icon,omitempty"`
}

var statusMeta = map[domain.ContentStatus]DisplayMeta{
	domain.StatusPending:              {Label: "Pending", Color: "slate", Icon: "clipboard-list"},
	domain.StatusToProduce:            {Label: "To produce", Color: "blue", Icon: "clock"},
	domain.StatusInProduction:         {Label: "In production", Color: "amber", Icon: "play"},
	domain.StatusInReview:             {Label: "In review", Color: "indigo", Icon: "eye"},
	domain.StatusApproved:             {Label: "Approved", Color: "emerald", Icon: "check-circle"},
	domain.StatusRejected:             {Label: "Rejected", Color: "rose", Icon: "x-circle"},
	domain.StatusAdjustmentsRequested: {Label: "Adjustments", Color: "orange", Icon: "rotate-ccw"},
	domain.StatusDelivered:            {Label: "Delivered", Color: "cyan", Icon: "send"},
}

var priorityMeta = map[domain.Priority]DisplayMeta{
	domain.PriorityLow:    {Label: "Low", Color: "slate"},
	domain.PriorityMedium: {Label: "Medium", Color: "blue"},
	domain.PriorityHigh:   {Label: "High", Color: "red"},
}

// Catalog lists display metadata in workflow order.
type Catalog struct {
	Statuses   []DisplayMeta `json:"statuses"`
	Priorities []DisplayMeta `json:"priorities"`
}

func StatusMeta(status domain.ContentStatus) DisplayMeta {
	meta, ok := statusMeta[status]
	if !ok {
		meta = DisplayMeta{Label: string(status), Color: "slate"}
	}
	meta.Value = string(status)
	return meta
}

func NewCatalog() Catalog {
	catalog := Catalog{}
	for _, s := range domain.Statuses {
		catalog.Statuses = append(catalog.Statuses, StatusMeta(s))
	}
	for _, p := range []domain.Priority{domain.PriorityLow, domain.PriorityMedium, domain.PriorityHigh} {
		meta := priorityMeta[p]
		meta.Value = string(p)
		catalog.Priorities = append(catalog.Priorities, meta)
	}
	return catalog
}
