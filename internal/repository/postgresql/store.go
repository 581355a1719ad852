package postgresql

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"sort"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"gig-marketplace-service/internal/repository"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// dbtx is satisfied by both *pgxpool.Pool and pgx.Tx.
type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

func NewPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

// Migrate applies every embedded migration in name order. Statements are idempotent.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	names, err := fs.Glob(migrationFiles, "migrations/*.sql")
	if err != nil {
		return err
	}
	sort.Strings(names)
	for _, name := range names {
		body, err := migrationFiles.ReadFile(name)
		if err != nil {
			return err
		}
		if _, err := pool.Exec(ctx, string(body)); err != nil {
			return fmt.Errorf("migration %s: %w", name, err)
		}
	}
	return nil
}

type repos struct {
	jobs     *JobRepository
	apps     *ApplicationRepository
	tasks    *TaskRepository
	earnings *EarningRepository
	reviews  *ReviewRepository
	accounts *PayoutAccountRepository
}

func newRepos(db dbtx) repos {
	return repos{
		jobs:     &JobRepository{db: db},
		apps:     &ApplicationRepository{db: db},
		tasks:    &TaskRepository{db: db},
		earnings: &EarningRepository{db: db},
		reviews:  &ReviewRepository{db: db},
		accounts: &PayoutAccountRepository{db: db},
	}
}

func (r repos) Jobs() repository.JobRepository                     { return r.jobs }
func (r repos) Applications() repository.ApplicationRepository     { return r.apps }
func (r repos) Tasks() repository.TaskRepository                   { return r.tasks }
func (r repos) Earnings() repository.EarningRepository             { return r.earnings }
func (r repos) Reviews() repository.ReviewRepository               { return r.reviews }
func (r repos) PayoutAccounts() repository.PayoutAccountRepository { return r.accounts }

type Store struct {
	repos
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{repos: newRepos(pool), pool: pool}
}

func (s *Store) InTx(ctx context.Context, fn func(repository.Repos) error) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		return fn(newRepos(tx))
	})
}

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
