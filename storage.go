package main

import (
	"fmt"
	"log"

	"github.com/example/workoutbot/internal/config"
	"github.com/example/workoutbot/internal/database"
	"github.com/example/workoutbot/internal/observability"
	"github.com/example/workoutbot/internal/store"
	mongostore "github.com/example/workoutbot/internal/store/mongo"
)

// openStore opens the configured backend, instrumented with store metrics
func openStore(cfg config.StorageConfig) (store.Store, error) {
	var (
		st  store.Store
		err error
	)
	switch cfg.Backend {
	case store.BackendFile:
		st, err = store.OpenFile(cfg.FilePath, cfg.CreateIfMissing)
	case store.BackendSQLite, store.BackendPostgres:
		db, connErr := database.Connect(cfg.Backend, cfg.DSN)
		if connErr != nil {
			return nil, connErr
		}
		st = database.NewUserRepository(db)
	case store.BackendMongo:
		st, err = mongostore.Open(cfg.MongoURI, cfg.MongoDatabase)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s storage: %w", cfg.Backend, err)
	}

	log.Printf("Using %s storage", cfg.Backend)
	return observability.InstrumentStore(st, cfg.Backend), nil
}
