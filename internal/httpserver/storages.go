package httpserver

import (
	"context"

	"github.com/fitfuel/fitfuel-server/internal/storage"
	"github.com/fitfuel/fitfuel-server/internal/storage/memory"
	"github.com/fitfuel/fitfuel-server/internal/storage/postgres"
)

// Storages bundles the per-concern storages behind their interfaces so the
// server wires services the same way against memory or Postgres.
type Storages struct {
	Users          storage.UsersStorage
	Profiles       storage.ProfilesStorage
	Catalogue      storage.CatalogueStorage
	DietPlans      storage.DietPlansStorage
	WorkoutPlans   storage.WorkoutPlansStorage
	Progress       storage.ProgressStorage
	Shop           storage.ShopStorage
	Messages       storage.MessagesStorage
	Notifications  storage.NotificationsStorage
	PasswordResets storage.PasswordResetStorage
	Reports        storage.ReportsStorage

	closer func() error
}

func (s *Storages) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer()
}

// NewMemoryStorages builds the in-memory backend. Diet and workout plan
// storages share one progress storage so ledger deltas land in the same rows.
func NewMemoryStorages() *Storages {
	progress := memory.NewProgressMemoryStorage()
	return &Storages{
		Users:          memory.NewUsersMemoryStorage(),
		Profiles:       memory.NewProfilesMemoryStorage(),
		Catalogue:      memory.NewCatalogueMemoryStorage(),
		DietPlans:      memory.NewDietPlansMemoryStorage(progress),
		WorkoutPlans:   memory.NewWorkoutPlansMemoryStorage(progress),
		Progress:       progress,
		Shop:           memory.NewShopMemoryStorage(),
		Messages:       memory.NewMessagesMemoryStorage(),
		Notifications:  memory.NewNotificationsMemoryStorage(),
		PasswordResets: memory.NewPasswordResetMemoryStorage(),
		Reports:        memory.NewReportsMemoryStorage(),
	}
}

// NewPostgresStorages connects to the database and wires every concern over
// the shared pool.
func NewPostgresStorages(ctx context.Context, databaseURL string) (*Storages, error) {
	pg, err := postgres.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}

	return &Storages{
		Users:          pg.Users(),
		Profiles:       pg.Profiles(),
		Catalogue:      pg.Catalogue(),
		DietPlans:      pg.DietPlans(),
		WorkoutPlans:   pg.WorkoutPlans(),
		Progress:       pg.Progress(),
		Shop:           pg.Shop(),
		Messages:       pg.Messages(),
		Notifications:  pg.Notifications(),
		PasswordResets: pg.PasswordResets(),
		Reports:        pg.Reports(),
		closer:         pg.Close,
	}, nil
}
