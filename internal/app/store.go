package app

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"estate/internal/config"
	"estate/internal/db"
	"estate/internal/repository"
)

// OpenStore connects the configured backend, prepares its schema and returns
// its repositories. The returned close func releases the connection.
func OpenStore(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) (repository.Repositories, func(), error) {
	switch cfg.StoreDriver {
	case config.DriverMongo:
		return openMongo(ctx, cfg, log)
	case config.DriverMySQL:
		return openMySQL(cfg, log)
	default:
		return repository.Repositories{}, nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
}

func openMongo(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) (repository.Repositories, func(), error) {
	database, err := db.NewMongo(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		return repository.Repositories{}, nil, err
	}
	closeFn := func() { _ = database.Client().Disconnect(context.Background()) }

	if cfg.ResetDB {
		log.Warn("RESET_DB=true detected, dropping all collections")
		if err := repository.ResetMongo(ctx, database); err != nil {
			closeFn()
			return repository.Repositories{}, nil, err
		}
	}
	if err := repository.EnsureMongoIndexes(ctx, database); err != nil {
		closeFn()
		return repository.Repositories{}, nil, err
	}

	log.WithField("database", cfg.MongoDB).Info("connected to mongo")
	return repository.NewMongoRepositories(database), closeFn, nil
}

func openMySQL(cfg *config.Config, log logrus.FieldLogger) (repository.Repositories, func(), error) {
	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		return repository.Repositories{}, nil, err
	}
	closeFn := func() {
		if sqlDB, err := gormDB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}

	if cfg.ResetDB {
		log.Warn("RESET_DB=true detected, dropping all tables")
		if err := repository.ResetGorm(gormDB); err != nil {
			closeFn()
			return repository.Repositories{}, nil, err
		}
	}
	if err := repository.MigrateGorm(gormDB); err != nil {
		closeFn()
		return repository.Repositories{}, nil, err
	}

	log.Info("connected to mysql")
	return repository.NewGormRepositories(gormDB), closeFn, nil
}
