package migrate

import (
	"context"
	"fmt"
	"log"

	"github.com/trackforge/trackforge/pkg/storage"
)

type Config struct {
	Debug  bool
	DBType string
	DBConn string
}

// Run applies the generation history database migrations.
func Run(ctx context.Context, cfg *Config) error {
	log.Println("migrate: started")
	defer log.Println("migrate: ended")

	store, err := storage.New(cfg.DBType, cfg.DBConn, cfg.Debug)
	if err != nil {
		return fmt.Errorf("migrate: couldn't create orm store: %w", err)
	}
	if err := store.Start(ctx); err != nil {
		return fmt.Errorf("migrate: couldn't start orm store: %w", err)
	}
	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}
