// Command principal issues and inspects principal tokens against a local
// environment. It reads the same SHOP_* configuration as the API.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Rohan-R-Raikar/LiveShoppingCart-RealTime/internal/infra/app"
	"github.com/Rohan-R-Raikar/LiveShoppingCart-RealTime/internal/infra/config"
	"github.com/Rohan-R-Raikar/LiveShoppingCart-RealTime/internal/infra/database"
	"github.com/Rohan-R-Raikar/LiveShoppingCart-RealTime/internal/infra/logger"
	redisinfra "github.com/Rohan-R-Raikar/LiveShoppingCart-RealTime/internal/infra/redis"
)

func main() {
	_ = godotenv.Load()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "principal",
		Short:         "Issue and inspect storefront principal tokens",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(newIssueCmd(), newInspectCmd())
	return root
}

func newIssueCmd() *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:   "issue",
		Short: "Issue a token carrying the user's current roles and permissions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withServices(cmd.Context(), func(ctx context.Context, services *app.Services) error {
				issued, err := services.Principals.Issue(ctx, userID)
				if err != nil {
					return fmt.Errorf("issue principal: %w", err)
				}
				return printJSON(cmd, map[string]any{
					"access_token": issued.Token,
					"expires_at":   issued.Principal.ExpiresAt,
					"roles":        issued.Principal.Roles,
					"permissions":  issued.Principal.Permissions,
				})
			})
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "user id to issue the token for")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect TOKEN",
		Short: "Verify a token and report whether its claims are stale",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd.Context(), func(ctx context.Context, services *app.Services) error {
				principal, err := services.Principals.Parse(args[0])
				if err != nil {
					return fmt.Errorf("parse token: %w", err)
				}
				return printJSON(cmd, map[string]any{
					"user_id":     principal.UserID,
					"roles":       principal.Roles,
					"permissions": principal.Permissions,
					"issued_at":   principal.IssuedAt,
					"expires_at":  principal.ExpiresAt,
					"stale":       services.Principals.IsStale(ctx, principal),
				})
			})
		},
	}
}

func withServices(ctx context.Context, fn func(context.Context, *app.Services) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(cfg.App.Env)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg.Postgres, log)
	if err != nil {
		return fmt.Errorf("init postgres: %w", err)
	}
	defer pool.Close()

	redisClient, err := redisinfra.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		return fmt.Errorf("init redis: %w", err)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Warn("failed to close redis", zap.Error(err))
		}
	}()

	services, err := app.NewServices(cfg, pool, redisClient, log)
	if err != nil {
		return err
	}
	return fn(ctx, services)
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
