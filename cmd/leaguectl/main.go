package main

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/Dosada05/prediction-league/cache"
	"github.com/Dosada05/prediction-league/db"
	"github.com/Dosada05/prediction-league/repositories"
	"github.com/Dosada05/prediction-league/services"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/urfave/cli/v2"
)

func main() {
	_ = godotenv.Load()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	app := &cli.App{
		Name:  "leaguectl",
		Usage: "administrative commands for the prediction league",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "database-url",
				Usage:    "Postgres DSN",
				EnvVars:  []string{"DATABASE_URL"},
				Required: true,
			},
		},
		Commands: []*cli.Command{
			newMigrateCommand(logger),
			newCreateAdminCommand(logger),
			newRecomputeCommand(logger),
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Error("command failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func openDB(c *cli.Context) (*sql.DB, error) {
	conn, err := db.Connect(c.String("database-url"), 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return conn, nil
}

func newMigrateCommand(logger *slog.Logger) *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "database migrations",
		Subcommands: []*cli.Command{
			{
				Name:  "up",
				Usage: "apply all pending migrations",
				Action: func(c *cli.Context) error {
					conn, err := openDB(c)
					if err != nil {
						return err
					}
					defer conn.Close()

					if err := db.Migrate(conn); err != nil {
						return err
					}
					logger.Info("migrations applied")
					return nil
				},
			},
			{
				Name:  "down",
				Usage: "roll back the last N migrations",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "steps", Value: 1, Usage: "number of migrations to roll back"},
				},
				Action: func(c *cli.Context) error {
					steps := c.Int("steps")
					if steps <= 0 {
						return errors.New("steps must be positive")
					}
					conn, err := openDB(c)
					if err != nil {
						return err
					}
					defer conn.Close()

					if err := db.MigrateDown(conn, steps); err != nil {
						return err
					}
					logger.Info("migrations rolled back", slog.Int("steps", steps))
					return nil
				},
			},
		},
	}
}

func newCreateAdminCommand(logger *slog.Logger) *cli.Command {
	return &cli.Command{
		Name:  "create-admin",
		Usage: "create a superuser",
		Flags: append([]cli.Flag{
			&cli.StringFlag{Name: "username", Required: true},
			&cli.StringFlag{Name: "password", Required: true, EnvVars: []string{"ADMIN_PASSWORD"}},
			&cli.StringFlag{Name: "phone"},
		}, redisFlags()...),
		Action: func(c *cli.Context) error {
			conn, err := openDB(c)
			if err != nil {
				return err
			}
			defer conn.Close()

			input := services.RegisterInput{
				Username:    c.String("username"),
				Password:    c.String("password"),
				IsSuperuser: true,
			}
			if phone := c.String("phone"); phone != "" {
				input.Phone = &phone
			}

			appCache, closeCache, err := openCache(c)
			if err != nil {
				return err
			}
			defer closeCache()

			authService := services.NewAuthService(repositories.NewPostgresUserRepository(conn), appCache, logger)
			user, err := authService.Register(c.Context, input)
			if err != nil {
				return fmt.Errorf("failed to create superuser: %w", err)
			}
			logger.Info("superuser created", slog.Int("user_id", user.ID), slog.String("username", user.Username))
			return nil
		},
	}
}

func newRecomputeCommand(logger *slog.Logger) *cli.Command {
	return &cli.Command{
		Name:  "recompute",
		Usage: "recompute points of every bet on finished matches and all user scores",
		Flags: redisFlags(),
		Action: func(c *cli.Context) error {
			conn, err := openDB(c)
			if err != nil {
				return err
			}
			defer conn.Close()

			appCache, closeCache, err := openCache(c)
			if err != nil {
				return err
			}
			defer closeCache()

			matchService := services.NewMatchService(services.MatchServiceDeps{
				Tx:        repositories.NewTxRunner(conn),
				MatchRepo: repositories.NewPostgresMatchRepository(conn),
				StageRepo: repositories.NewPostgresStageRepository(conn),
				TeamRepo:  repositories.NewPostgresTeamRepository(conn),
				BetRepo:   repositories.NewPostgresBetRepository(conn),
				UserRepo:  repositories.NewPostgresUserRepository(conn),
				Cache:     appCache,
				Logger:    logger,
			})

			changed, err := matchService.RecomputeAll(c.Context)
			if err != nil {
				return err
			}
			logger.Info("recompute finished", slog.Int("bets_changed", changed))
			return nil
		},
	}
}

func redisFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "redis-addr", EnvVars: []string{"REDIS_ADDR"}, Usage: "drop the cached leaderboard in this Redis"},
		&cli.StringFlag{Name: "redis-password", EnvVars: []string{"REDIS_PASSWORD"}},
		&cli.IntFlag{Name: "redis-db", EnvVars: []string{"REDIS_DB"}},
	}
}

// openCache возвращает NopCache, если --redis-addr не задан.
func openCache(c *cli.Context) (cache.Cache, func(), error) {
	addr := c.String("redis-addr")
	if addr == "" {
		return cache.NopCache{}, func() {}, nil
	}
	redisCache, err := cache.NewRedisCache(addr, c.String("redis-password"), c.Int("redis-db"))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return redisCache, func() { _ = redisCache.Close() }, nil
}
