package sqlite

import (
	"time"

	"github.com/fastygo/contentflow/domain"
)

type clientRow struct {
	ID        string `gorm:"primaryKey"`
	Name      string `gorm:"not null"`
	Sector    string
	Logo      string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
	Targets   []targetRow `gorm:"foreignKey:ClientID;constraint:OnDelete:CASCADE"`
}

func (clientRow) TableName() string { return "clients" }

type targetRow struct {
	ID       string `gorm:"primaryKey"`
	ClientID string `gorm:"index;not null"`
	Label    string `gorm:"not null"`
	Count    int
	Position int
}

func (targetRow) TableName() string { return "content_targets" }

type userRow struct {
	ID           string `gorm:"primaryKey"`
	Name         string `gorm:"not null"`
	Email        string `gorm:"uniqueIndex;not null"`
	Role         string `gorm:"not null"`
	Avatar       string
	ClientID     string `gorm:"index"`
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (userRow) TableName() string { return "users" }

type taskRow struct {
	ID            string `gorm:"primaryKey"`
	ClientID      string `gorm:"index;not null"`
	Title         string `gorm:"not null"`
	Briefing      string
	Format        string
	Channel       string
	Priority      string
	Status        string `gorm:"index"`
	Deadline      string
	AssignedTo    string `gorm:"index"`
	ReviewComment string
	ReviewedBy    string
	ReviewedAt    *time.Time
	CreatedAt     time.Time
	URLs          []taskURLRow `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE"`
}

func (taskRow) TableName() string { return "content_tasks" }

const (
	urlAttachment = "attachment"
	urlLink       = "link"
)

type taskURLRow struct {
	ID       uint   `gorm:"primaryKey"`
	TaskID   string `gorm:"index;not null"`
	Kind     string `gorm:"not null"`
	URL      string `gorm:"not null"`
	Position int
}

func (taskURLRow) TableName() string { return "task_urls" }

type commentRow struct {
	ID        string `gorm:"primaryKey"`
	TaskID    string `gorm:"index;not null"`
	UserID    string `gorm:"not null"`
	Text      string `gorm:"not null"`
	Timestamp time.Time
}

func (commentRow) TableName() string { return "comments" }

func toClient(row clientRow) domain.Client {
	client := domain.Client{
		ID:        row.ID,
		Name:      row.Name,
		Sector:    row.Sector,
		Logo:      row.Logo,
		Active:    row.Active,
		Targets:   make([]domain.Target, 0, len(row.Targets)),
		CreatedAt: row.CreatedAt.UTC(),
		UpdatedAt: row.UpdatedAt.UTC(),
	}
	for _, t := range row.Targets {
		client.Targets = append(client.Targets, domain.Target{ID: t.ID, Label: t.Label, Count: t.Count})
	}
	return client
}

func toUser(row userRow) domain.User {
	return domain.User{
		ID:        row.ID,
		Name:      row.Name,
		Email:     row.Email,
		Role:      domain.Role(row.Role),
		Avatar:    row.Avatar,
		ClientID:  row.ClientID,
		CreatedAt: row.CreatedAt.UTC(),
		UpdatedAt: row.UpdatedAt.UTC(),
	}
}

func fromTask(task *domain.Task) taskRow {
	row := taskRow{
		ID:            task.ID,
		ClientID:      task.ClientID,
		Title:         task.Title,
		Briefing:      task.Briefing,
		Format:        task.Format,
		Channel:       task.Channel,
		Priority:      string(task.Priority),
		Status:        string(task.Status),
		Deadline:      task.DeadlineDate(),
		AssignedTo:    task.AssignedTo,
		ReviewComment: task.ReviewComment,
		ReviewedBy:    task.ReviewedBy,
		ReviewedAt:    task.ReviewedAt,
		CreatedAt:     task.CreatedAt,
	}
	for i, url := range task.Attachments {
		row.URLs = append(row.URLs, taskURLRow{TaskID: task.ID, Kind: urlAttachment, URL: url, Position: i})
	}
	for i, url := range task.Links {
		row.URLs = append(row.URLs, taskURLRow{TaskID: task.ID, Kind: urlLink, URL: url, Position: i})
	}
	return row
}

func toTask(row taskRow) domain.Task {
	task := domain.Task{
		ID:            row.ID,
		ClientID:      row.ClientID,
		Title:         row.Title,
		Briefing:      row.Briefing,
		Format:        row.Format,
		Channel:       row.Channel,
		Priority:      domain.Priority(row.Priority),
		Status:        domain.ContentStatus(row.Status),
		AssignedTo:    row.AssignedTo,
		ReviewComment: row.ReviewComment,
		ReviewedBy:    row.ReviewedBy,
		CreatedAt:     row.CreatedAt.UTC(),
		Attachments:   []string{},
		Links:         []string{},
	}
	if row.Deadline != "" {
		if deadline, err := domain.ParseDate(row.Deadline); err == nil {
			task.Deadline = deadline
		}
	}
	if row.ReviewedAt != nil {
		at := row.ReviewedAt.UTC()
		task.ReviewedAt = &at
	}
	for _, u := range row.URLs {
		switch u.Kind {
		case urlAttachment:
			task.Attachments = append(task.Attachments, u.URL)
		case urlLink:
			task.Links = append(task.Links, u.URL)
		}
	}
	return task
}

func toComment(row commentRow) domain.Comment {
	return domain.Comment{
		ID:        row.ID,
		TaskID:    row.TaskID,
		UserID:    row.UserID,
		Text:      row.Text,
		Timestamp: row.Timestamp.UTC(),
	}
}
