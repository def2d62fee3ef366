package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/contentflow/domain"
	"github.com/fastygo/contentflow/repository"
)

type clientRepository struct {
	pool *pgxpool.Pool
}

// NewClientRepository returns a Postgres-backed ClientRepository.
func NewClientRepository(pool *pgxpool.Pool) repository.ClientRepository {
	return &clientRepository{pool: pool}
}

const clientColumns = `id, name, sector, logo, active, created_at, updated_at`

func (r *clientRepository) List(ctx context.Context) ([]domain.Client, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+clientColumns+` FROM clients ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	clients := []domain.Client{}
	for rows.Next() {
		client, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		clients = append(clients, *client)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	targets, err := loadTargets(ctx, r.pool, nil)
	if err != nil {
		return nil, err
	}
	for i := range clients {
		clients[i].Targets = targetsOrEmpty(targets[clients[i].ID])
	}
	return clients, nil
}

func (r *clientRepository) GetByID(ctx context.Context, id string) (*domain.Client, error) {
	return getClient(ctx, r.pool, id)
}

func (r *clientRepository) Create(ctx context.Context, client *domain.Client) (*domain.Client, error) {
	if client == nil {
		return nil, domain.ErrInvalidPayload
	}
	if client.ID == "" {
		client.ID = uuid.NewString()
	}

	var created *domain.Client
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		const query = `
		INSERT INTO clients (id, name, sector, logo, active)
		VALUES ($1, $2, $3, $4, $5)
		`
		if _, err := tx.Exec(ctx, query, client.ID, client.Name, client.Sector, client.Logo, client.Active); err != nil {
			return err
		}
		if err := replaceTargets(ctx, tx, client.ID, client.Targets); err != nil {
			return err
		}
		var err error
		created, err = getClient(ctx, tx, client.ID)
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
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		const query = `
		UPDATE clients
		SET name = $2,
			sector = $3,
			logo = $4,
			active = $5,
			updated_at = NOW()
		WHERE id = $1
		`
		tag, err := tx.Exec(ctx, query, client.ID, client.Name, client.Sector, client.Logo, client.Active)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrClientNotFound
		}
		if withTargets {
			if err := replaceTargets(ctx, tx, client.ID, client.Targets); err != nil {
				return err
			}
		}
		updated, err = getClient(ctx, tx, client.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *clientRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM clients WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrClientHasTasks
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrClientNotFound
	}
	return nil
}

func getClient(ctx context.Context, q queryer, id string) (*domain.Client, error) {
	row := q.QueryRow(ctx, `SELECT `+clientColumns+` FROM clients WHERE id = $1`, id)
	client, err := scanClient(row)
	if err != nil {
		return nil, err
	}
	targets, err := loadTargets(ctx, q, []string{id})
	if err != nil {
		return nil, err
	}
	client.Targets = targetsOrEmpty(targets[id])
	return client, nil
}

// replaceTargets deletes the stored set and inserts targets in order.
func replaceTargets(ctx context.Context, q queryer, clientID string, targets []domain.Target) error {
	if _, err := q.Exec(ctx, `DELETE FROM content_targets WHERE client_id = $1`, clientID); err != nil {
		return err
	}
	const insert = `
	INSERT INTO content_targets (id, client_id, label, count, position)
	VALUES ($1, $2, $3, $4, $5)
	`
	for i, t := range targets {
		if _, err := q.Exec(ctx, insert, uuid.NewString(), clientID, t.Label, t.Count, i); err != nil {
			return err
		}
	}
	return nil
}

// loadTargets fetches targets grouped by client; nil ids loads all clients.
func loadTargets(ctx context.Context, q queryer, clientIDs []string) (map[string][]domain.Target, error) {
	const query = `
	SELECT id, client_id, label, count
	FROM content_targets
	WHERE ($1::text[] IS NULL OR client_id = ANY($1))
	ORDER BY client_id, position
	`
	rows, err := q.Query(ctx, query, clientIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string][]domain.Target)
	for rows.Next() {
		var (
			t        domain.Target
			clientID string
		)
		if err := rows.Scan(&t.ID, &clientID, &t.Label, &t.Count); err != nil {
			return nil, err
		}
		out[clientID] = append(out[clientID], t)
	}
	return out, rows.Err()
}

func targetsOrEmpty(targets []domain.Target) []domain.Target {
	if targets == nil {
		return []domain.Target{}
	}
	return targets
}

func scanClient(row rowScanner) (*domain.Client, error) {
	var client domain.Client
	if err := row.Scan(
		&client.ID,
		&client.Name,
		&client.Sector,
		&client.Logo,
		&client.Active,
		&client.CreatedAt,
		&client.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrClientNotFound
		}
		return nil, err
	}
	return &client, nil
}
