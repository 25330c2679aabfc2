package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fastygo/tasktrack/internal/config"
	pgInfra "github.com/fastygo/tasktrack/internal/infrastructure/postgres"
	redisInfra "github.com/fastygo/tasktrack/internal/infrastructure/redis"
	"github.com/fastygo/tasktrack/internal/services"
	"github.com/fastygo/tasktrack/pkg/logger"
	"github.com/fastygo/tasktrack/repository/postgres"
	redisRepo "github.com/fastygo/tasktrack/repository/redis"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newRootCmd runs one recalculation pass over every task. Migrations live
// under the migrate subcommand.
func newRootCmd() *cobra.Command {
	var (
		pageSize int
		noLock   bool
	)
	cmd := &cobra.Command{
		Use:           "tasktrack-recalc",
		Short:         "Recalculate progress and priority for every task once",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPass(cmd, pageSize, noLock)
		},
	}
	cmd.Flags().IntVar(&pageSize, "page-size", 0, "tasks per page (defaults to RECALC_PAGE_SIZE)")
	cmd.Flags().BoolVar(&noLock, "no-lock", false, "skip the redis lock shared with the server's scheduled run")
	cmd.AddCommand(migrateCmd())
	return cmd
}

func runPass(cmd *cobra.Command, pageSize int, noLock bool) error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Recalc.Timeout)
	defer cancel()

	pool, err := pgInfra.NewPool(ctx, cfg.Database, log)
	if err != nil {
		return err
	}
	defer pgInfra.Close(pool, log)

	if pageSize > 0 {
		cfg.Recalc.PageSize = pageSize
	}
	var opts []services.RecalcOption
	if !noLock {
		client, err := redisInfra.NewClient(ctx, cfg.Redis, log)
		if err != nil {
			return err
		}
		defer client.Close()
		opts = append(opts, services.WithRecalcLocker(redisRepo.NewLocker(client)))
	}

	recalculator := services.NewRecalculator(postgres.NewTaskRepository(pool), log,
		services.RecalcConfig{
			PageSize: cfg.Recalc.PageSize,
			LockKey:  cfg.Recalc.LockKey,
			LockTTL:  cfg.Recalc.LockTTL,
			Timeout:  cfg.Recalc.Timeout,
		}, opts...)

	summary, err := recalculator.Run(ctx)
	printSummary(cmd.OutOrStdout(), summary)
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d task(s) failed to recalculate", summary.Failed)
	}
	return nil
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "migrate [up|down]",
		Short:     "Apply or roll back database migrations",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{string(pgInfra.Up), string(pgInfra.Down)},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap()
			if err != nil {
				return err
			}
			defer log.Sync()
			return pgInfra.Migrate(cfg, pgInfra.Direction(args[0]), log)
		},
	}
}

func bootstrap() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("config: %w", err)
	}
	log, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
		Service:  "tasktrack-recalc",
		Output:   os.Stderr,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("logger: %w", err)
	}
	return cfg, log, nil
}

func printSummary(w io.Writer, s services.RecalcSummary) {
	fmt.Fprintf(w, "scanned=%d touched=%d failed=%d took=%s\n",
		s.Scanned, s.Touched, s.Failed, s.Took.Round(time.Millisecond))
	for _, id := range s.FailedIDs {
		fmt.Fprintf(w, "failed: %s\n", id)
	}
}
