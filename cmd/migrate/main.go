package main

import (
	"context"
	"database/sql"
	"flag"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"tarasamar/internal/adapters/observability"
	"tarasamar/internal/shared"
	mysqlrepo "tarasamar/internal/storage/mysql"
)

func main() {
	cfg := shared.Load()
	log.Logger = observability.NewLogger(cfg.AppEnv)

	down := flag.Int("down", 0, "roll back this many migrations instead of applying")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}

	start := time.Now()
	if *down > 0 {
		if err := mysqlrepo.Rollback(ctx, db, *down); err != nil {
			log.Fatal().Err(err).Int("steps", *down).Msg("rollback failed")
		}
	} else if err := mysqlrepo.Migrate(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}

	v, err := mysqlrepo.MigrationVersion(ctx, db)
	if err != nil {
		log.Fatal().Err(err).Msg("read migration version")
	}
	log.Info().Int64("version", v).Dur("took", time.Since(start)).Msg("migrations done")
}
