package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/raunak23427/mutual-skill-sync/internal/bootstrap"
	"github.com/raunak23427/mutual-skill-sync/internal/config"
	"github.com/raunak23427/mutual-skill-sync/internal/identity"
	adminRepo "github.com/raunak23427/mutual-skill-sync/internal/modules/admin/repository"
	adminService "github.com/raunak23427/mutual-skill-sync/internal/modules/admin/service"
	profileRepo "github.com/raunak23427/mutual-skill-sync/internal/modules/profile/repository"
	realtimeService "github.com/raunak23427/mutual-skill-sync/internal/modules/realtime/service"
	searchService "github.com/raunak23427/mutual-skill-sync/internal/modules/search/service"
	"github.com/raunak23427/mutual-skill-sync/internal/server"
	"github.com/raunak23427/mutual-skill-sync/pkg/database"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// openDB loads the config and opens the database. The caller closes the
// returned connection with closeDB.
func openDB() (*config.Config, *gorm.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}

	db, err := database.Open(database.Options{
		Driver:      cfg.DBDriver,
		DatabaseURL: cfg.DatabaseURL,
		Host:        cfg.DBHost,
		User:        cfg.DBUser,
		Password:    cfg.DBPass,
		Name:        cfg.DBName,
		Port:        cfg.DBPort,
		SQLitePath:  cfg.SQLitePath,
		Debug:       !cfg.IsProduction(),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("connecting database: %w", err)
	}
	return cfg, db, nil
}

func closeDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

// openRedis returns nil when REDIS_URL is unset.
func openRedis(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	if cfg.RedisURL == "" {
		log.Println("REDIS_URL not set, realtime events and rate limiting disabled")
		return nil, nil
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parsing REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connecting redis: %w", err)
	}
	return client, nil
}

var rootCmd = &cobra.Command{
	Use:          "skillswap",
	Short:        "Skill exchange marketplace backend",
	SilenceUsage: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		cfg, db, err := openDB()
		if err != nil {
			return err
		}
		defer closeDB(db)

		if err := bootstrap.Migrate(db); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		if !cfg.IsProduction() {
			if err := bootstrap.SeedSkills(db); err != nil {
				return fmt.Errorf("failed to seed skills: %w", err)
			}
		}

		redisClient, err := openRedis(ctx, cfg)
		if err != nil {
			return err
		}
		if redisClient != nil {
			defer redisClient.Close()
		}

		srv, err := server.NewServer(ctx, cfg, db, redisClient)
		if err != nil {
			return err
		}
		return srv.Run(ctx)
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, db, err := openDB()
		if err != nil {
			return err
		}
		defer closeDB(db)

		if err := bootstrap.Migrate(db); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		fmt.Println("Schema is up to date")
		return nil
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert the starter skill catalogue",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, db, err := openDB()
		if err != nil {
			return err
		}
		defer closeDB(db)

		if err := bootstrap.Migrate(db); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		if err := bootstrap.SeedSkills(db); err != nil {
			return fmt.Errorf("failed to seed skills: %w", err)
		}
		fmt.Println("Skill catalogue seeded")
		return nil
	},
}

var reportCmd = &cobra.Command{
	Use:       "report <users|swaps|feedback>",
	Short:     "Write a CSV report",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"users", "swaps", "feedback"},
	RunE: func(cmd *cobra.Command, args []string) error {
		_, db, err := openDB()
		if err != nil {
			return err
		}
		defer closeDB(db)

		svc := adminService.NewAdminService(adminRepo.NewAdminRepository(db), nil, realtimeService.NewPublisher(nil))
		report, err := svc.GenerateReport(cmd.Context(), nil, args[0])
		if err != nil {
			return err
		}

		out, _ := cmd.Flags().GetString("out")
		if out == "" {
			out = report.Filename()
		}
		if out == "-" {
			return report.Write(os.Stdout)
		}

		f, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("creating %s: %w", out, err)
		}
		defer f.Close()

		if err := report.Write(f); err != nil {
			return fmt.Errorf("writing %s: %w", out, err)
		}
		fmt.Printf("Wrote %d rows to %s\n", len(report.Rows), out)
		return nil
	},
}

var tokenCmd = &cobra.Command{
	Use:   "token <subject>",
	Short: "Mint a development identity token",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if cfg.IsProduction() {
			return fmt.Errorf("token minting is disabled in production")
		}

		email, _ := cmd.Flags().GetString("email")
		name, _ := cmd.Flags().GetString("name")
		role, _ := cmd.Flags().GetString("role")
		ttl, _ := cmd.Flags().GetDuration("ttl")

		tok, err := identity.NewVerifier(cfg.IdentityJWTSecret, cfg.IdentityIssuer).Issue(identity.Identity{
			ID:       args[0],
			Email:    email,
			FullName: name,
			Role:     role,
		}, ttl)
		if err != nil {
			return err
		}
		fmt.Println(tok)
		return nil
	},
}

var reindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Rebuild the profile search index",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, db, err := openDB()
		if err != nil {
			return err
		}
		defer closeDB(db)

		index := server.NewProfileIndex(cfg)
		if index == nil {
			return searchService.ErrSearchUnavailable
		}

		repo := profileRepo.NewProfileRepository(db)
		profiles, err := repo.FindAllWithSkills(cmd.Context())
		if err != nil {
			return err
		}

		start := time.Now()
		if err := searchService.NewIndexer(index, repo).Reindex(cmd.Context(), profiles); err != nil {
			return err
		}
		fmt.Printf("Indexed %d profiles in %s\n", len(profiles), time.Since(start).Round(time.Millisecond))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(reportCmd)
	reportCmd.Flags().StringP("out", "o", "", "Output file, - for stdout (default <type>_report.csv)")
	rootCmd.AddCommand(tokenCmd)
	tokenCmd.Flags().String("email", "", "Email claim")
	tokenCmd.Flags().String("name", "", "Name claim")
	tokenCmd.Flags().String("role", "", "Role claim (admin for the admin API)")
	tokenCmd.Flags().Duration("ttl", 24*time.Hour, "Token lifetime")
	rootCmd.AddCommand(reindexCmd)
}
