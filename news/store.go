package news

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/circleci/ex/db"
	"github.com/circleci/ex/o11y"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // Load PostgresSQL Driver
)

var (
	ErrNotFound = o11y.NewWarning("item not found")
	// ErrConfig means the database environment variables are not fully set.
	ErrConfig = errors.New("database environment variables are not fully set")
	// ErrConnect means the database was unreachable after every connection attempt.
	ErrConnect = errors.New("could not connect to database")
)

var validate = validator.New()

// Item is a single persisted news entry.
type Item struct {
	ID      int64  `db:"id" json:"id"`
	Title   string `db:"title" json:"title"`
	Content string `db:"content" json:"content"`
}

type ToAdd struct {
	Title   string `db:"title" validate:"required"`
	Content string `db:"content"`
}

// Patch carries a partial update. Nil fields keep their stored value.
type Patch struct {
	Title   *string
	Content *string
}

// Store runs news queries against the configured database. It deliberately
// holds no pool: every call reads the connection settings from the
// environment, acquires its own connection and releases it before returning.
type Store struct {
	// LookupEnv is os.LookupEnv outside of tests.
	LookupEnv func(string) (string, bool)
	// Attempts and RetryDelay control connection acquisition retries.
	Attempts   int
	RetryDelay time.Duration
}

func NewStore() *Store {
	return &Store{
		LookupEnv:  os.LookupEnv,
		Attempts:   5,
		RetryDelay: 5 * time.Second,
	}
}

func (s *Store) List(ctx context.Context) (items []Item, err error) {
	ctx, span := o11y.StartSpan(ctx, "store: list")
	defer o11y.End(span, &err)

	err = s.withTx(ctx, func(ctx context.Context, q db.Querier) (err error) {
		items, err = queryListItems(ctx, q)
		return err
	})
	if err != nil {
		return nil, err
	}
	span.AddField("count", len(items))
	return items, nil
}

func (s *Store) Create(ctx context.Context, toAdd ToAdd) (item *Item, err error) {
	ctx, span := o11y.StartSpan(ctx, "store: create")
	defer o11y.End(span, &err)
	span.AddField("title", toAdd.Title)

	// The store owns the non-empty title invariant, whatever the caller did.
	if err := validate.Struct(toAdd); err != nil {
		return nil, err
	}

	err = s.withTx(ctx, func(ctx context.Context, q db.Querier) (err error) {
		item, err = queryInsertItem(ctx, q, toAdd)
		return err
	})
	if err != nil {
		return nil, err
	}
	span.AddField("id", item.ID)
	return item, nil
}

func (s *Store) Update(ctx context.Context, id int64, patch Patch) (item *Item, err error) {
	ctx, span := o11y.StartSpan(ctx, "store: update")
	defer o11y.End(span, &err)
	span.AddField("id", id)

	err = s.withTx(ctx, func(ctx context.Context, q db.Querier) error {
		existing, err := queryGetItemByID(ctx, q, id)
		if err != nil {
			return err
		}

		merged := *existing
		if patch.Title != nil {
			merged.Title = *patch.Title
		}
		if patch.Content != nil {
			merged.Content = *patch.Content
		}

		if err := queryUpdateItem(ctx, q, merged); err != nil {
			return err
		}
		item = &merged
		return nil
	})
	if err != nil {
		return nil, mapError(err, ErrNotFound)
	}
	return item, nil
}

func (s *Store) Delete(ctx context.Context, id int64) (err error) {
	ctx, span := o11y.StartSpan(ctx, "store: delete")
	defer o11y.End(span, &err)
	span.AddField("id", id)

	err = s.withTx(ctx, func(ctx context.Context, q db.Querier) error {
		return queryDeleteItem(ctx, q, id)
	})
	return mapError(err, ErrNotFound)
}

// Ping acquires and releases a connection, nothing more.
func (s *Store) Ping(ctx context.Context) (err error) {
	ctx, span := o11y.StartSpan(ctx, "store: ping")
	defer o11y.End(span, &err)

	conn, err := s.acquire(ctx)
	if err != nil {
		return err
	}
	return conn.Close()
}

// HealthChecks reports database reachability to the admin healthcheck server.
func (s *Store) HealthChecks() (name string, ready, live func(ctx context.Context) error) {
	return "news-db", s.Ping, nil
}

// withTx acquires a single-use connection and runs f inside a transaction:
// committed on success, rolled back on error or panic. The connection is
// released on every exit path.
func (s *Store) withTx(ctx context.Context, f func(ctx context.Context, q db.Querier) error) error {
	conn, err := s.acquire(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = conn.Close()
	}()
	return db.NewTxManager(conn).WithTx(ctx, f)
}

type config struct {
	Host string
	Name string
	User string
	Pass string
}

func (s *Store) configFromEnv() (config, error) {
	cfg := config{}
	for _, v := range []struct {
		name   string
		target *string
	}{
		{"DB_HOST", &cfg.Host},
		{"DB_NAME", &cfg.Name},
		{"DB_USER", &cfg.User},
		{"DB_PASS", &cfg.Pass},
	} {
		val, ok := s.LookupEnv(v.name)
		if !ok || val == "" {
			return config{}, fmt.Errorf("%w: missing %s", ErrConfig, v.name)
		}
		*v.target = val
	}
	if !strings.Contains(cfg.Host, ":") {
		cfg.Host += ":5432"
	}
	return cfg, nil
}

// acquire opens a connection using environment-supplied credentials, retrying
// on transient failure with a constant delay between attempts. Missing
// configuration fails immediately with no retry.
func (s *Store) acquire(ctx context.Context) (conn *sqlx.DB, err error) {
	ctx, span := o11y.StartSpan(ctx, "store: acquire connection")
	defer o11y.End(span, &err)

	cfg, err := s.configFromEnv()
	if err != nil {
		return nil, err
	}
	span.AddField("host", cfg.Host)
	span.AddField("dbname", cfg.Name)
	span.AddField("username", cfg.User)

	params := url.Values{}
	params.Set("connect_timeout", "5")
	params.Set("application_name", "news-api")
	params.Set("sslmode", "disable")
	uri := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(cfg.User, cfg.Pass),
		Host:     cfg.Host,
		Path:     cfg.Name,
		RawQuery: params.Encode(),
	}
	conn, err = sqlx.Open("postgres", uri.String())
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrConnect, err)
	}

	// One caller, one connection.
	conn.SetMaxOpenConns(1)

	// Attempts below 1 behave as a single attempt, never an unbounded loop.
	attempts := s.Attempts
	if attempts < 1 {
		attempts = 1
	}

	attempt := 0
	err = backoff.RetryNotify(
		func() error {
			attempt++
			return conn.PingContext(ctx)
		},
		backoff.WithMaxRetries(backoff.NewConstantBackOff(s.RetryDelay), uint64(attempts-1)),
		func(err error, _ time.Duration) {
			o11y.Log(ctx, "database not ready",
				o11y.Field("attempt", attempt),
				o11y.Field("attempts", attempts),
				o11y.Field("error", err),
			)
		},
	)
	if err != nil {
		_ = conn.Close()
		o11y.Log(ctx, "could not connect to database",
			o11y.Field("attempts", attempts),
			o11y.Field("error", err),
		)
		return nil, fmt.Errorf("%w after %d attempts: %s", ErrConnect, attempts, err)
	}
	return conn, nil
}

func mapError(err error, to error) error {
	if errors.Is(err, db.ErrNop) {
		return to
	}
	return err
}
