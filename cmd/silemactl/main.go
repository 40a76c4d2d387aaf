// Command silemactl is the Silema operator CLI.
//
// Usage:
//
//	silemactl run-once
//	silemactl test-alert --user 42
//	silemactl checkin --user 42
//	silemactl stats --user 42
//	silemactl purge --older-than 720h
//	silemactl user add --email alice@example.com --name Alice
//	silemactl user delete --user 42
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/silema/silema/internal/app"
	"github.com/silema/silema/internal/checkin"
	"github.com/silema/silema/internal/clock"
	"github.com/silema/silema/internal/config"
	"github.com/silema/silema/internal/domain"
	"github.com/silema/silema/internal/logger"
	"github.com/silema/silema/internal/maintenance"
	"github.com/silema/silema/internal/store"
)

func main() {
	root := &cobra.Command{
		Use:          "silemactl",
		Short:        "Silema operator CLI",
		SilenceUsage: true,
	}

	root.AddCommand(runOnceCmd())
	root.AddCommand(testAlertCmd())
	root.AddCommand(checkinCmd())
	root.AddCommand(statsCmd())
	root.AddCommand(purgeCmd())
	root.AddCommand(userCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// --------------------------------------------------------------------------
// monitor commands
// --------------------------------------------------------------------------

func runOnceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run-once",
		Short: "Run a single monitor cycle and print the report",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(func(ctx context.Context, env *session) error {
				report, err := app.NewMonitor(env.cfg, env.store, clock.System{}, env.logger).RunCycle(ctx)
				if err != nil {
					return err
				}
				env.logger.Info("Monitor cycle finished", "summary", report.Summary())
				return printJSON(report)
			})
		},
	}
}

func testAlertCmd() *cobra.Command {
	var userID int64
	cmd := &cobra.Command{
		Use:   "test-alert",
		Short: "Send a test alert to every contact of a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(func(ctx context.Context, env *session) error {
				report, err := app.NewMonitor(env.cfg, env.store, clock.System{}, env.logger).SendTestAlert(ctx, userID)
				if err != nil {
					return err
				}
				return printJSON(report)
			})
		},
	}
	userFlag(cmd, &userID)
	return cmd
}

// --------------------------------------------------------------------------
// check-in commands
// --------------------------------------------------------------------------

func checkinCmd() *cobra.Command {
	var userID int64
	cmd := &cobra.Command{
		Use:   "checkin",
		Short: "Record a check-in for a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(func(ctx context.Context, env *session) error {
				c, err := env.checkins().CheckIn(ctx, userID)
				if err != nil {
					return err
				}
				fmt.Printf("check-in %d recorded at %s\n", c.ID, c.Time.Format(time.RFC3339))
				return nil
			})
		},
	}
	userFlag(cmd, &userID)
	return cmd
}

func statsCmd() *cobra.Command {
	var userID int64
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print check-in statistics for a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(func(ctx context.Context, env *session) error {
				if _, err := env.store.GetUser(ctx, userID); err != nil {
					return fmt.Errorf("user %d: %w", userID, err)
				}
				st, err := env.checkins().Stats(ctx, userID)
				if err != nil {
					return err
				}
				return printJSON(st)
			})
		},
	}
	userFlag(cmd, &userID)
	return cmd
}

// --------------------------------------------------------------------------
// maintenance commands
// --------------------------------------------------------------------------

func purgeCmd() *cobra.Command {
	var olderThan time.Duration
	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Delete alert records older than a duration",
		RunE: func(cmd *cobra.Command, args []string) error {
			if olderThan <= 0 {
				return fmt.Errorf("--older-than must be positive")
			}
			return run(func(ctx context.Context, env *session) error {
				clk := clock.System{}
				n, err := maintenance.Purge(ctx, env.store, clk.Now().Add(-olderThan), clk, env.logger)
				if err != nil {
					return err
				}
				fmt.Printf("purged %d alert records\n", n)
				return nil
			})
		},
	}
	cmd.Flags().DurationVar(&olderThan, "older-than", 90*24*time.Hour, "Purge alerts sent before now minus this duration")
	return cmd
}

// --------------------------------------------------------------------------
// user commands
// --------------------------------------------------------------------------

func userCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage accounts",
	}
	cmd.AddCommand(userAddCmd(), userDeleteCmd())
	return cmd
}

func userAddCmd() *cobra.Command {
	var email, name string
	var threshold int
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create an account with default settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			email = strings.TrimSpace(email)
			if err := domain.ValidateEmail("email", email); err != nil {
				return err
			}
			if err := domain.ValidateThreshold(threshold); err != nil {
				return err
			}
			return run(func(ctx context.Context, env *session) error {
				settings := domain.DefaultSettings()
				settings.AlertThresholdMinutes = threshold
				u, err := env.store.CreateUser(ctx, domain.User{
					Email:    email,
					Name:     strings.TrimSpace(name),
					Settings: settings,
				})
				if err != nil {
					return err
				}
				fmt.Printf("user %d created\n", u.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().IntVar(&threshold, "threshold", domain.DefaultThresholdMinutes, "Alert threshold in minutes")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func userDeleteCmd() *cobra.Command {
	var userID int64
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete an account with its contacts, check-ins and alerts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(func(ctx context.Context, env *session) error {
				if err := env.store.DeleteUser(ctx, userID); err != nil {
					return fmt.Errorf("user %d: %w", userID, err)
				}
				fmt.Printf("user %d deleted\n", userID)
				return nil
			})
		},
	}
	userFlag(cmd, &userID)
	return cmd
}

// --------------------------------------------------------------------------
// Helpers
// --------------------------------------------------------------------------

type session struct {
	cfg    *config.Config
	store  store.Store
	logger *slog.Logger
}

func (e *session) checkins() *checkin.Service {
	return checkin.NewService(e.store, nil, clock.System{}, e.logger)
}

func run(fn func(ctx context.Context, env *session) error) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, zl, err := logger.New(cfg.LogLevel, "console")
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer func() { _ = zl.Sync() }()

	st, err := app.OpenStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer st.Close()

	return fn(ctx, &session{cfg: cfg, store: st, logger: log})
}

func userFlag(cmd *cobra.Command, userID *int64) {
	cmd.Flags().Int64Var(userID, "user", 0, "User ID")
	_ = cmd.MarkFlagRequired("user")
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
