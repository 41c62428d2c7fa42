package main

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	appServices "github.com/yigit/academy/internal/app/services"
	"github.com/yigit/academy/internal/bootstrap"
	"github.com/yigit/academy/internal/pkg/helpers"
)

// cmdContext returns the command's context, never nil
func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// withServices opens the configured store, runs fn over content-only
// services and closes the store again.
func withServices(cmd *cobra.Command, configPath string, fn func(ctx context.Context, svc *appServices.Services, lgr zerolog.Logger) error) error {
	cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger(configPath)
	if err != nil {
		return err
	}
	ctx := cmdContext(cmd)

	connectCtx, cancel := context.WithTimeout(ctx, helpers.ParseDuration(cfg.Database.ConnectTimeout, 10*time.Second))
	store, err := bootstrap.SetupStore(connectCtx, cfg, lgr)
	cancel()
	if err != nil {
		return err
	}

	svc := appServices.NewServices(store.Repos, appServices.AdminCredentials{}, nil, nil)
	runErr := fn(ctx, svc, lgr)
	if store.Close != nil {
		runErr = errors.Join(runErr, store.Close(ctx))
	}
	return runErr
}

// printJSON writes v indented to the command's stdout
func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
