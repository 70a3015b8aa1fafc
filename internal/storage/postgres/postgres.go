package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("not found")

// PostgresStorage bundles every per-concern storage over one shared pool.
type PostgresStorage struct {
	pool           *pgxpool.Pool
	users          *PostgresUsersStorage
	profiles       *PostgresProfilesStorage
	catalogue      *PostgresCatalogueStorage
	dietPlans      *PostgresDietPlansStorage
	workoutPlans   *PostgresWorkoutPlansStorage
	progress       *PostgresProgressStorage
	shop           *PostgresShopStorage
	messages       *PostgresMessagesStorage
	notifications  *PostgresNotificationsStorage
	passwordResets *PostgresPasswordResetStorage
	reports        *PostgresReportsStorage
}

// New connects, pings and wires the per-concern storages.
func New(ctx context.Context, databaseURL string) (*PostgresStorage, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresStorage{
		pool:           pool,
		users:          NewPostgresUsersStorage(pool),
		profiles:       NewPostgresProfilesStorage(pool),
		catalogue:      NewPostgresCatalogueStorage(pool),
		dietPlans:      NewPostgresDietPlansStorage(pool),
		workoutPlans:   NewPostgresWorkoutPlansStorage(pool),
		progress:       NewPostgresProgressStorage(pool),
		shop:           NewPostgresShopStorage(pool),
		messages:       NewPostgresMessagesStorage(pool),
		notifications:  NewPostgresNotificationsStorage(pool),
		passwordResets: NewPostgresPasswordResetStorage(pool),
		reports:        NewPostgresReportsStorage(pool),
	}, nil
}

func (p *PostgresStorage) Pool() *pgxpool.Pool { return p.pool }

func (p *PostgresStorage) Users() *PostgresUsersStorage { return p.users }

func (p *PostgresStorage) Profiles() *PostgresProfilesStorage { return p.profiles }

func (p *PostgresStorage) Catalogue() *PostgresCatalogueStorage { return p.catalogue }

func (p *PostgresStorage) DietPlans() *PostgresDietPlansStorage { return p.dietPlans }

func (p *PostgresStorage) WorkoutPlans() *PostgresWorkoutPlansStorage { return p.workoutPlans }

func (p *PostgresStorage) Progress() *PostgresProgressStorage { return p.progress }

func (p *PostgresStorage) Shop() *PostgresShopStorage { return p.shop }

func (p *PostgresStorage) Messages() *PostgresMessagesStorage { return p.messages }

func (p *PostgresStorage) Notifications() *PostgresNotificationsStorage { return p.notifications }

func (p *PostgresStorage) PasswordResets() *PostgresPasswordResetStorage { return p.passwordResets }

func (p *PostgresStorage) Reports() *PostgresReportsStorage { return p.reports }

func (p *PostgresStorage) Close() error {
	p.pool.Close()
	return nil
}
