package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"

	"github.com/gin-gonic/gin"
	"gitlab.com/dirk.krummacker/contacts-app/internal/config"
	"gitlab.com/dirk.krummacker/contacts-app/internal/contacts"
	"gitlab.com/dirk.krummacker/contacts-app/internal/logger"
	"gitlab.com/dirk.krummacker/contacts-app/internal/service"
	"gitlab.com/dirk.krummacker/contacts-app/internal/store"
	"go.uber.org/zap"
)

// Usage example on the command line:
// > PORT=8080 DBDRIVER=sqlite DBPATH=data/contacts.db GIN_MODE=release GIN_LOGGING=OFF go run main.go
func main() {
	configPtr := flag.String("config", "", "an optional TOML configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPtr)
	if err != nil {
		fmt.Println("could not load configuration", err)
		panic(err)
	}
	lg, err := logger.Init(cfg.Log, cfg.Mode)
	if err != nil {
		fmt.Println("could not initialize logger", err)
		panic(err)
	}
	defer lg.Sync() //nolint:errcheck

	ctx := context.Background()
	s, closeStore := openStore(ctx, cfg.Database)
	defer closeStore()

	svc := contacts.NewService(s)
	seed(ctx, svc, cfg.SeedFile)

	gin.SetMode(cfg.Mode)
	router := service.SetupHttpRouter(svc, cfg.RequestLogging)
	zap.L().Info("starting contacts app", zap.String("addr", cfg.Addr()), zap.String("driver", cfg.Database.Driver))
	if err := router.Run(cfg.Addr()); err != nil {
		zap.L().Fatal("server stopped", zap.Error(err))
	}
}

// openStore returns the store selected by the configuration together with a
// function releasing it. A store that cannot be opened ends the process.
func openStore(ctx context.Context, cfg config.DatabaseConfig) (contacts.Store, func()) {
	if cfg.Driver == config.DriverMemory {
		zap.L().Info("keeping contacts in memory")
		return store.NewMemory(), func() {}
	}
	db, err := store.Open(cfg)
	if err != nil {
		zap.L().Fatal("could not open database", zap.Error(err))
	}
	if err := store.Migrate(ctx, db); err != nil {
		zap.L().Fatal("could not create contacts table", zap.Error(err))
	}
	s, err := store.New(db)
	if err != nil {
		zap.L().Fatal("could not prepare statements", zap.Error(err))
	}
	return s, func() {
		if err := errors.Join(s.Close(), db.Close()); err != nil {
			zap.L().Error("could not close database", zap.Error(err))
		}
	}
}

// seed fills an empty store from the seed file. A missing file is not an
// error; the app then starts with an empty list.
func seed(ctx context.Context, svc *contacts.Service, path string) {
	if path == "" {
		return
	}
	data, err := contacts.LoadSeedFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		zap.L().Info("no seed file found", zap.String("file", path))
		return
	}
	if err != nil {
		zap.L().Fatal("could not read seed file", zap.String("file", path), zap.Error(err))
	}
	n, err := svc.Bootstrap(ctx, data)
	if err != nil {
		zap.L().Fatal("could not seed contacts", zap.Error(err))
	}
	if n > 0 {
		zap.L().Info("seeded contacts", zap.Int("count", n), zap.String("file", path))
	}
}
