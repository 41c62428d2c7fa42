package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	appServices "github.com/yigit/academy/internal/app/services"
	"github.com/yigit/academy/internal/bootstrap"
	"github.com/yigit/academy/internal/config"
	"github.com/yigit/academy/internal/pkg/auth"
	"github.com/yigit/academy/internal/seed"
	"github.com/yigit/academy/internal/server"
)

var errMigrateDriver = errors.New("migrate only applies to the postgres driver")

// newRootCmd builds the command tree; each call returns fresh flag state
func newRootCmd() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:           "academyctl",
		Short:         "Operate the Academy course catalog",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", bootstrap.DefaultConfigPath, "path to the yaml config")

	// --- Server ---
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			srv, err := server.NewServer(configPath)
			if err != nil {
				return err
			}
			return srv.Run()
		},
	}

	// --- Content maintenance ---
	seedCmd := &cobra.Command{
		Use:   "seed",
		Short: "Create the demo courses, weeks and lessons if missing",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd, configPath, func(ctx context.Context, svc *appServices.Services, lgr zerolog.Logger) error {
				return seed.CreateDefaultData(ctx, svc, lgr)
			})
		},
	}

	var cascade bool
	deleteCourseCmd := &cobra.Command{
		Use:   "delete-course <courseId>",
		Short: "Delete a course, and with --cascade its weeks and lessons",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd, configPath, func(ctx context.Context, svc *appServices.Services, _ zerolog.Logger) error {
				if !cascade {
					course, err := svc.Course.DeleteCourse(ctx, args[0])
					if err != nil {
						return err
					}
					return printJSON(cmd, course)
				}
				report, err := svc.Cascade.DeleteCourseTree(ctx, args[0])
				if report != nil {
					if perr := printJSON(cmd, report); perr != nil {
						return perr
					}
				}
				return err
			})
		},
	}
	deleteCourseCmd.Flags().BoolVar(&cascade, "cascade", false, "also delete the course's weeks and lessons")

	reconcileCmd := &cobra.Command{
		Use:   "reconcile <courseId>",
		Short: "Recompute the week and lesson counters of a course",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd, configPath, func(ctx context.Context, svc *appServices.Services, _ zerolog.Logger) error {
				report, err := svc.Reconcile.ReconcileCourse(ctx, args[0])
				if err != nil {
					return err
				}
				return printJSON(cmd, report)
			})
		},
	}

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending SQL migrations (postgres driver)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger(configPath)
			if err != nil {
				return err
			}
			if cfg.Database.Driver != config.DriverPostgres {
				return errMigrateDriver
			}
			// SetupStore applies migrations when it opens postgres
			store, err := bootstrap.SetupStore(cmdContext(cmd), cfg, lgr)
			if err != nil {
				return err
			}
			return store.Close(cmdContext(cmd))
		},
	}

	// --- Utilities ---
	hashPasswordCmd := &cobra.Command{
		Use:   "hash-password [password]",
		Short: "Print the bcrypt hash for admin.password_hash; reads stdin without an argument",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			password := ""
			if len(args) == 1 {
				password = args[0]
			} else {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("failed to read password: %w", err)
				}
				password = strings.TrimRight(line, "\r\n")
			}
			if password == "" {
				return errors.New("password must not be empty")
			}
			hash, err := auth.HashPassword(password)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), hash)
			return err
		},
	}

	rootCmd.AddCommand(serveCmd, seedCmd, deleteCourseCmd, reconcileCmd, migrateCmd, hashPasswordCmd)
	return rootCmd
}
