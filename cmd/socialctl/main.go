package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/anonto42/nano-social/backend/internal/repositories"
	"github.com/anonto42/nano-social/backend/internal/services"
	"github.com/anonto42/nano-social/backend/pkg/config"
	"github.com/anonto42/nano-social/backend/pkg/logger"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

func main() {
	args := os.Args
	if len(args) == 1 {
		args = append(args, "--help")
	}

	root := &cli.Command{
		Name:  "socialctl",
		Usage: "Maintenance commands for the social backend",
		Commands: []*cli.Command{
			reconcileCommand(),
			fixPostCountsCommand(),
			migrateCommand(),
		},
	}

	if err := root.Run(context.Background(), args); err != nil {
		log.Fatal(err)
	}
}

func reconcileCommand() *cli.Command {
	return &cli.Command{
		Name:  "reconcile",
		Usage: "Recount follower, following, post, like and comment counters",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "dry-run", Usage: "report drift without writing"},
			&cli.BoolFlag{Name: "json", Usage: "output raw JSON"},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return runReconcile(ctx, services.ReconcileOptions{DryRun: c.Bool("dry-run")}, c.Bool("json"))
		},
	}
}

func fixPostCountsCommand() *cli.Command {
	return &cli.Command{
		Name:  "fix-post-counts",
		Usage: "Recount posts_count for every account",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "dry-run", Usage: "report drift without writing"},
			&cli.BoolFlag{Name: "json", Usage: "output raw JSON"},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			opts := services.ReconcileOptions{DryRun: c.Bool("dry-run"), PostsCountOnly: true}
			return runReconcile(ctx, opts, c.Bool("json"))
		},
	}
}

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Create or update the database schema",
		Action: func(ctx context.Context, c *cli.Command) error {
			return withRepositories(ctx, func(repos *repositories.Repositories, _ *zap.Logger) error {
				if err := repositories.AutoMigrate(repos.DB()); err != nil {
					return fmt.Errorf("auto migrate: %w", err)
				}
				fmt.Println("schema up to date")
				return nil
			})
		},
	}
}

func runReconcile(ctx context.Context, opts services.ReconcileOptions, asJSON bool) error {
	return withRepositories(ctx, func(repos *repositories.Repositories, log *zap.Logger) error {
		report, err := services.NewReconciler(repos, log).Run(ctx, opts)
		if err != nil {
			return err
		}
		if asJSON {
			return printJSON(report)
		}
		printReport(report)
		return nil
	})
}

func withRepositories(ctx context.Context, fn func(*repositories.Repositories, *zap.Logger) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	zl, err := logger.New(logger.Options{Level: cfg.LogLevel})
	if err != nil {
		return err
	}
	defer func() { _ = zl.Sync() }()

	// The mirror store is not needed for maintenance.
	cfg.MongoURI = ""
	db, err := config.InitDB(ctx, cfg, zl)
	if err != nil {
		return err
	}
	defer db.CloseDB()
	return fn(repositories.New(db.Postgres), zl)
}

func printReport(r *services.Report) {
	verb := "fixed"
	if r.DryRun {
		verb = "would fix"
	}
	fmt.Printf("checked %d accounts, %d posts\n", r.AccountsChecked, r.PostsChecked)
	for _, f := range r.Fixes {
		fmt.Printf("  %s %s #%d %s: %d -> %d\n", verb, f.Kind, f.ID, f.Field, f.Was, f.Now)
	}
	if len(r.Fixes) == 0 {
		fmt.Println("all counters consistent")
	}
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
