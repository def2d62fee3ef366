package monitor

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	redislib "github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CheckFunc returns nil when the dependency is reachable.
type CheckFunc func(ctx context.Context) error

// Dependency is one named health check.
type Dependency struct {
	Name     string
	Check    CheckFunc
	Timeout  time.Duration
	Optional bool
}

// Monitor runs its checks on a cron schedule and caches the last result.
type Monitor struct {
	checks []Dependency
	cron   *cron.Cron
	logger *zap.Logger

	mu     sync.RWMutex
	status Status
}

// New builds a monitor; schedule accepts cron descriptors such as "@every 30s".
func New(schedule string, logger *zap.Logger, checks ...Dependency) (*Monitor, error) {
	if schedule == "" {
		schedule = "@every 30s"
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	m := &Monitor{
		checks: checks,
		cron:   cron.New(cron.WithSeconds()),
		logger: logger,
		status: Status{Components: map[string]Component{}},
	}
	if _, err := m.cron.AddFunc(schedule, func() { m.Refresh(context.Background()) }); err != nil {
		return nil, fmt.Errorf("monitor schedule %q: %w", schedule, err)
	}
	return m, nil
}

// Start runs the checks once synchronously and then launches the scheduler.
func (m *Monitor) Start() {
	m.Refresh(context.Background())
	m.cron.Start()
	m.logger.Info("connection monitor started", zap.Int("checks", len(m.checks)))
}

// Stop waits for a running check round to finish or ctx to expire.
func (m *Monitor) Stop(ctx context.Context) error {
	stopCtx := m.cron.Stop()
	select {
	case <-stopCtx.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// IsOnline reports whether every required check passed in the last round.
func (m *Monitor) IsOnline() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status.Online
}

func (m *Monitor) GetStatus() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := m.status
	out.Components = make(map[string]Component, len(m.status.Components))
	for name, c := range m.status.Components {
		out.Components[name] = c
	}
	return out
}

// Refresh runs every check concurrently and stores the outcome.
func (m *Monitor) Refresh(ctx context.Context) Status {
	results := make([]Component, len(m.checks))

	var wg sync.WaitGroup
	for i, check := range m.checks {
		wg.Add(1)
		go func(i int, check Dependency) {
			defer wg.Done()
			results[i] = m.run(ctx, check)
		}(i, check)
	}
	wg.Wait()

	status := Status{
		Online:     true,
		Components: make(map[string]Component, len(results)),
		LastCheck:  time.Now().UTC(),
	}
	for i, c := range results {
		status.Components[c.Name] = c
		if !c.Healthy && !m.checks[i].Optional {
			status.Online = false
		}
	}

	m.mu.Lock()
	prev := m.status
	m.status = status
	m.mu.Unlock()

	m.logTransitions(prev, status)
	return status
}

func (m *Monitor) run(ctx context.Context, check Dependency) Component {
	timeout := check.Timeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	started := time.Now()
	err := check.Check(ctx)
	c := Component{
		Name:    check.Name,
		Healthy: err == nil,
		Latency: time.Since(started).String(),
	}
	if err != nil {
		c.Error = err.Error()
	}
	return c
}

func (m *Monitor) logTransitions(prev, next Status) {
	names := make([]string, 0, len(next.Components))
	for name := range next.Components {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		c := next.Components[name]
		before, seen := prev.Components[name]
		if seen && before.Healthy == c.Healthy {
			continue
		}
		if c.Healthy {
			m.logger.Info("dependency healthy", zap.String("component", name))
		} else {
			m.logger.Warn("dependency unhealthy", zap.String("component", name), zap.String("error", c.Error))
		}
	}
}

// PostgresCheck pings the pgx pool.
func PostgresCheck(pool *pgxpool.Pool) Dependency {
	return Dependency{Name: "postgresql", Check: func(ctx context.Context) error {
		return pool.Ping(ctx)
	}}
}

// SQLiteCheck pings the connection behind a gorm handle.
func SQLiteCheck(db *gorm.DB) Dependency {
	return Dependency{Name: "sqlite", Check: func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}}
}

// RedisCheck pings the session store.
func RedisCheck(client *redislib.Client) Dependency {
	return Dependency{Name: "redis", Timeout: 2 * time.Second, Check: func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}}
}

// SizeCheck fails when the size function errors; used for local files.
func SizeCheck(name string, size func() (int, error)) Dependency {
	return Dependency{Name: name, Optional: true, Check: func(context.Context) error {
		_, err := size()
		return err
	}}
}
