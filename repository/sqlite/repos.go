package sqlite

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/fastygo/contentflow/domain"
	"github.com/fastygo/contentflow/repository"
)

type userRepository struct {
	db *gorm.DB
}

func (r *userRepository) List(ctx context.Context) ([]domain.User, error) {
	var rows []userRow
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	users := make([]domain.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, toUser(row))
	}
	return users, nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	var row userRow
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, notFound(err, domain.ErrUserNotFound)
	}
	user := toUser(row)
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var row userRow
	if err := r.db.WithContext(ctx).First(&row, "email = ?", strings.ToLower(email)).Error; err != nil {
		return nil, notFound(err, domain.ErrUserNotFound)
	}
	user := toUser(row)
	return &user, nil
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	if user == nil {
		return nil, domain.ErrInvalidPayload
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	row := userRow{
		ID:       user.ID,
		Name:     user.Name,
		Email:    strings.ToLower(user.Email),
		Role:     string(user.Role),
		Avatar:   user.Avatar,
		ClientID: user.ClientID,
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := emailAvailable(tx, row.Email, ""); err != nil {
			return err
		}
		return tx.Create(&row).Error
	})
	if err != nil {
		return nil, err
	}
	created := toUser(row)
	return &created, nil
}

func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	if user == nil {
		return domain.ErrInvalidPayload
	}
	email := strings.ToLower(user.Email)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := emailAvailable(tx, email, user.ID); err != nil {
			return err
		}
		result := tx.Model(&userRow{}).Where("id = ?", user.ID).Updates(map[string]interface{}{
			"name":       user.Name,
			"email":      email,
			"role":       string(user.Role),
			"avatar":     user.Avatar,
			"client_id":  user.ClientID,
			"updated_at": time.Now().UTC(),
		})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domain.ErrUserNotFound
		}
		return nil
	})
}

// Delete removes the user together with their comments and unassigns them
// from tasks they were assigned to or reviewed.
func (r *userRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&userRow{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domain.ErrUserNotFound
		}
		if err := tx.Model(&taskRow{}).Where("assigned_to = ?", id).Update("assigned_to", "").Error; err != nil {
			return err
		}
		if err := tx.Model(&taskRow{}).Where("reviewed_by = ?", id).Update("reviewed_by", "").Error; err != nil {
			return err
		}
		return tx.Delete(&commentRow{}, "user_id = ?", id).Error
	})
}

func (r *userRepository) GetCredentials(ctx context.Context, email string) (*domain.Credentials, error) {
	var row userRow
	if err := r.db.WithContext(ctx).First(&row, "email = ?", strings.ToLower(email)).Error; err != nil {
		return nil, notFound(err, domain.ErrUserNotFound)
	}
	return &domain.Credentials{UserID: row.ID, Email: row.Email, PasswordHash: row.PasswordHash}, nil
}

func (r *userRepository) SaveCredentials(ctx context.Context, creds domain.Credentials) error {
	result := r.db.WithContext(ctx).Model(&userRow{}).
		Where("id = ?", creds.UserID).
		Update("password_hash", creds.PasswordHash)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func emailAvailable(tx *gorm.DB, email, ownerID string) error {
	var count int64
	query := tx.Model(&userRow{}).Where("email = ?", email)
	if ownerID != "" {
		query = query.Where("id <> ?", ownerID)
	}
	if err := query.Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return domain.ErrEmailTaken
	}
	return nil
}

type clientRepository struct {
	db *gorm.DB
}

func orderedTargets(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

func (r *clientRepository) List(ctx context.Context) ([]domain.Client, error) {
	var rows []clientRow
	if err := r.db.WithContext(ctx).Preload("Targets", orderedTargets).Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	clients := make([]domain.Client, 0, len(rows))
	for _, row := range rows {
		clients = append(clients, toClient(row))
	}
	return clients, nil
}

func (r *clientRepository) GetByID(ctx context.Context, id string) (*domain.Client, error) {
	return getClient(r.db.WithContext(ctx), id)
}

func (r *clientRepository) Create(ctx context.Context, client *domain.Client) (*domain.Client, error) {
	if client == nil {
		return nil, domain.ErrInvalidPayload
	}
	if client.ID == "" {
		client.ID = uuid.NewString()
	}
	row := clientRow{
		ID:     client.ID,
		Name:   client.Name,
		Sector: client.Sector,
		Logo:   client.Logo,
		Active: client.Active,
	}

	var created *domain.Client
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(&row).Error; err != nil {
			return err
		}
		if err := replaceTargets(tx, client.ID, client.Targets); err != nil {
			return err
		}
		var err error
		created, err = getClient(tx, client.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (r *clientRepository) Update(ctx context.Context, client *domain.Client, withTargets bool) (*domain.Client, error) {
	if client == nil {
		return nil, domain.ErrInvalidPayload
	}

	var updated *domain.Client
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&clientRow{}).Where("id = ?", client.ID).Updates(map[string]interface{}{
			"name":       client.Name,
			"sector":     client.Sector,
			"logo":       client.Logo,
			"active":     client.Active,
			"updated_at": time.Now().UTC(),
		})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domain.ErrClientNotFound
		}
		if withTargets {
			if err := replaceTargets(tx, client.ID, client.Targets); err != nil {
				return err
			}
		}
		var err error
		updated, err = getClient(tx, client.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *clientRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var tasks int64
		if err := tx.Model(&taskRow{}).Where("client_id = ?", id).Count(&tasks).Error; err != nil {
			return err
		}
		if tasks > 0 {
			return domain.ErrClientHasTasks
		}
		result := tx.Delete(&clientRow{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domain.ErrClientNotFound
		}
		if err := tx.Delete(&targetRow{}, "client_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Model(&userRow{}).Where("client_id = ?", id).Update("client_id", "").Error
	})
}

func getClient(db *gorm.DB, id string) (*domain.Client, error) {
	var row clientRow
	if err := db.Preload("Targets", orderedTargets).First(&row, "id = ?", id).Error; err != nil {
		return nil, notFound(err, domain.ErrClientNotFound)
	}
	client := toClient(row)
	return &client, nil
}

func replaceTargets(tx *gorm.DB, clientID string, targets []domain.Target) error {
	if err := tx.Delete(&targetRow{}, "client_id = ?", clientID).Error; err != nil {
		return err
	}
	if len(targets) == 0 {
		return nil
	}
	rows := make([]targetRow, 0, len(targets))
	for i, t := range targets {
		rows = append(rows, targetRow{
			ID:       uuid.NewString(),
			ClientID: clientID,
			Label:    t.Label,
			Count:    t.Count,
			Position: i,
		})
	}
	return tx.Create(&rows).Error
}

type taskRepository struct {
	db *gorm.DB
}

func orderedURLs(db *gorm.DB) *gorm.DB {
	return db.Order("kind ASC, position ASC")
}

func (r *taskRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	return getTask(r.db.WithContext(ctx), id)
}

func (r *taskRepository) List(ctx context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	query := r.db.WithContext(ctx).Preload("URLs", orderedURLs)
	if filter.ClientID != "" {
		query = query.Where("client_id = ?", filter.ClientID)
	}
	if filter.AssignedTo != "" {
		query = query.Where("assigned_to = ?", filter.AssignedTo)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", string(filter.Status))
	}

	var rows []taskRow
	if err := query.Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	tasks := make([]domain.Task, 0, len(rows))
	for _, row := range rows {
		tasks = append(tasks, toTask(row))
	}
	return tasks, nil
}

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	if task == nil {
		return nil, domain.ErrInvalidPayload
	}
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	row := fromTask(task)
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}

	var created *domain.Task
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(&row).Error; err != nil {
			return err
		}
		if err := replaceURLs(tx, row.ID, row.URLs); err != nil {
			return err
		}
		var err error
		created, err = getTask(tx, row.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (r *taskRepository) Update(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	if task == nil {
		return nil, domain.ErrInvalidPayload
	}
	row := fromTask(task)

	var updated *domain.Task
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&taskRow{}).Where("id = ?", row.ID).Updates(map[string]interface{}{
			"client_id":      row.ClientID,
			"title":          row.Title,
			"briefing":       row.Briefing,
			"format":         row.Format,
			"channel":        row.Channel,
			"priority":       row.Priority,
			"status":         row.Status,
			"deadline":       row.Deadline,
			"assigned_to":    row.AssignedTo,
			"review_comment": row.ReviewComment,
			"reviewed_by":    row.ReviewedBy,
			"reviewed_at":    row.ReviewedAt,
		})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domain.ErrTaskNotFound
		}
		if err := replaceURLs(tx, row.ID, row.URLs); err != nil {
			return err
		}
		var err error
		updated, err = getTask(tx, row.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *taskRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&taskRow{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domain.ErrTaskNotFound
		}
		if err := tx.Delete(&taskURLRow{}, "task_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&commentRow{}, "task_id = ?", id).Error
	})
}

func (r *taskRepository) CountByClient(ctx context.Context, clientID string) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&taskRow{}).Where("client_id = ?", clientID).Count(&count).Error
	return int(count), err
}

func getTask(db *gorm.DB, id string) (*domain.Task, error) {
	var row taskRow
	if err := db.Preload("URLs", orderedURLs).First(&row, "id = ?", id).Error; err != nil {
		return nil, notFound(err, domain.ErrTaskNotFound)
	}
	task := toTask(row)
	return &task, nil
}

func replaceURLs(tx *gorm.DB, taskID string, urls []taskURLRow) error {
	if err := tx.Delete(&taskURLRow{}, "task_id = ?", taskID).Error; err != nil {
		return err
	}
	if len(urls) == 0 {
		return nil
	}
	rows := make([]taskURLRow, len(urls))
	for i, u := range urls {
		u.ID = 0
		u.TaskID = taskID
		rows[i] = u
	}
	return tx.Create(&rows).Error
}

type commentRepository struct {
	db *gorm.DB
}

func (r *commentRepository) List(ctx context.Context, taskID string) ([]domain.Comment, error) {
	query := r.db.WithContext(ctx)
	if taskID != "" {
		query = query.Where("task_id = ?", taskID)
	}
	var rows []commentRow
	if err := query.Order("timestamp ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	comments := make([]domain.Comment, 0, len(rows))
	for _, row := range rows {
		comments = append(comments, toComment(row))
	}
	return comments, nil
}

func (r *commentRepository) GetByID(ctx context.Context, id string) (*domain.Comment, error) {
	var row commentRow
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, notFound(err, domain.ErrCommentNotFound)
	}
	comment := toComment(row)
	return &comment, nil
}

func (r *commentRepository) Create(ctx context.Context, comment *domain.Comment) (*domain.Comment, error) {
	if comment == nil {
		return nil, domain.ErrInvalidPayload
	}
	if comment.ID == "" {
		comment.ID = uuid.NewString()
	}
	row := commentRow{
		ID:        comment.ID,
		TaskID:    comment.TaskID,
		UserID:    comment.UserID,
		Text:      comment.Text,
		Timestamp: comment.Timestamp,
	}
	if row.Timestamp.IsZero() {
		row.Timestamp = time.Now().UTC()
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var tasks int64
		if err := tx.Model(&taskRow{}).Where("id = ?", row.TaskID).Count(&tasks).Error; err != nil {
			return err
		}
		if tasks == 0 {
			return domain.ErrTaskNotFound
		}
		return tx.Create(&row).Error
	})
	if err != nil {
		return nil, err
	}
	created := toComment(row)
	return &created, nil
}

func (r *commentRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&commentRow{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrCommentNotFound
	}
	return nil
}

var (
	_ repository.UserRepository       = (*userRepository)(nil)
	_ repository.CredentialRepository = (*userRepository)(nil)
	_ repository.ClientRepository     = (*clientRepository)(nil)
	_ repository.TaskRepository       = (*taskRepository)(nil)
	_ repository.CommentRepository    = (*commentRepository)(nil)
)
