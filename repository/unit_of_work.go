package repository

import (
	"context"
	"fmt"

	"voicebot/database"
	"voicebot/events"
	"voicebot/service"
	"github.com/jackc/pgx/v5"
)

// unitOfWork implements the UnitOfWork interface
type unitOfWork struct {
	db                 *database.DB
	tx                 pgx.Tx
	ctx                context.Context
	transactionalBus   *events.TransactionalBus
	guildSetupRepo     service.GuildSetupRepository
	guildDefaultsRepo  service.GuildDefaultsRepository
	userPreferenceRepo service.UserPreferenceRepository
	activeChannelRepo  service.ActiveChannelRepository
}

// NewUnitOfWorkFactory creates a new UnitOfWork factory
func NewUnitOfWorkFactory(db *database.DB, eventBus *events.Bus) service.UnitOfWorkFactory {
	return &unitOfWorkFactory{
		db:       db,
		eventBus: eventBus,
	}
}

type unitOfWorkFactory struct {
	db       *database.DB
	eventBus *events.Bus
}

func (f *unitOfWorkFactory) Create() service.UnitOfWork {
	return &unitOfWork{
		db:               f.db,
		transactionalBus: events.NewTransactionalBus(f.eventBus),
	}
}

// Begin starts a new transaction
func (u *unitOfWork) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}

	tx, err := u.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	u.tx = tx
	u.ctx = ctx

	// Create repositories with the transaction
	u.guildSetupRepo = newGuildSetupRepositoryWithTx(tx)
	u.guildDefaultsRepo = newGuildDefaultsRepositoryWithTx(tx)
	u.userPreferenceRepo = newUserPreferenceRepositoryWithTx(tx)
	u.activeChannelRepo = newActiveChannelRepositoryWithTx(tx)

	return nil
}

// Commit commits the transaction
func (u *unitOfWork) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}

	err := u.tx.Commit(u.ctx)
	if err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	u.tx = nil

	// Flush pending events after successful commit
	if u.transactionalBus != nil {
		u.transactionalBus.Flush(u.ctx)
	}

	return nil
}

// Rollback rolls back the transaction
func (u *unitOfWork) Rollback() error {
	if u.tx == nil {
		return nil // Nothing to rollback
	}

	err := u.tx.Rollback(u.ctx)
	if err != nil && err != pgx.ErrTxClosed {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}

	u.tx = nil

	// Discard pending events on rollback
	if u.transactionalBus != nil {
		u.transactionalBus.Discard()
	}

	return nil
}

// GuildSetupRepository returns the guild setup repository for this unit of work
func (u *unitOfWork) GuildSetupRepository() service.GuildSetupRepository {
	if u.guildSetupRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.guildSetupRepo
}

// GuildDefaultsRepository returns the guild defaults repository for this unit of work
func (u *unitOfWork) GuildDefaultsRepository() service.GuildDefaultsRepository {
	if u.guildDefaultsRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.guildDefaultsRepo
}

// UserPreferenceRepository returns the user preference repository for this unit of work
func (u *unitOfWork) UserPreferenceRepository() service.UserPreferenceRepository {
	if u.userPreferenceRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.userPreferenceRepo
}

// ActiveChannelRepository returns the active channel repository for this unit of work
func (u *unitOfWork) ActiveChannelRepository() service.ActiveChannelRepository {
	if u.activeChannelRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.activeChannelRepo
}

// EventBus returns the transactional event bus for this unit of work
func (u *unitOfWork) EventBus() service.EventPublisher {
	if u.transactionalBus == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.transactionalBus
}
