/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tomoncle/ldj/config"
	"github.com/tomoncle/ldj/database"
	"github.com/tomoncle/ldj/migrate"
	"github.com/tomoncle/ldj/schema"
	"github.com/tomoncle/ldj/utils"
)

type globalFlags struct {
	envFile  string
	mode     string
	logLevel string
}

func RootCmd() *cobra.Command {
	flags := &globalFlags{}
	root := &cobra.Command{
		Use:           "ldj",
		Short:         "ldj schema and connection tooling",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if flags.logLevel != "" {
				utils.ConfigureLogLevel(flags.logLevel)
			}
		},
	}

	root.PersistentFlags().StringVar(&flags.envFile, "env-file", ".env", "dotenv file overlaid under the process environment")
	root.PersistentFlags().StringVar(&flags.mode, "mode", "", "runtime mode (development, test, production); overrides APP_ENV")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "log level (debug, info, warn, error)")

	root.AddCommand(
		checkCmd(flags),
		schemaCmd(flags),
		generateCmd(flags),
	)
	return root
}

// resolve loads the environment and builds the configuration. An explicit
// --mode wins over the environment indicator.
func (f *globalFlags) resolve() (*config.Config, error) {
	env, err := config.LoadDotEnv(f.envFile)
	if err != nil {
		return nil, err
	}
	mode := config.ResolveMode(env)
	if f.mode != "" {
		mode = config.ParseMode(f.mode)
	}
	return config.ResolveWithMode(env, mode)
}

func checkCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Resolve the configuration, connect and ping the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.resolve()
			if err != nil {
				log.WithError(err).Fatal("invalid database configuration")
			}
			p, err := database.NewProvider(cfg)
			if err != nil {
				log.WithError(err).Fatal("failed to construct database provider")
			}
			defer p.Close()

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			status := p.HealthCheck(ctx)
			if !status.Healthy {
				return fmt.Errorf("database unreachable: %s", status.LastError)
			}
			log.WithField("mode", cfg.Mode.String()).
				WithField("dialect", string(p.Dialect())).
				WithField("response_time", status.ResponseTime.String()).
				Info("database reachable")
			return nil
		},
	}
}

func schemaCmd(flags *globalFlags) *cobra.Command {
	var dialect string
	var namespace string
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the DDL of every table",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := schema.ParseDialect(dialect)
			if err != nil {
				return err
			}
			for _, stmt := range schema.CreateAllSQL(d, namespace) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s;\n\n", stmt)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dialect, "dialect", string(schema.Postgres), "SQL dialect (postgres, mysql, sqlite)")
	cmd.Flags().StringVar(&namespace, "namespace", schema.Namespace, "table name prefix")
	return cmd
}

func generateCmd(flags *globalFlags) *cobra.Command {
	var name string
	var dialect string
	var dir string
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write a migration script for pending schema changes",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.resolve()
			if err != nil {
				log.WithError(err).Fatal("invalid database configuration")
			}
			if err := cfg.RequireMigrationTarget(); err != nil {
				log.WithError(err).Fatal("migration target is not configured")
			}

			var d schema.Dialect
			if dialect != "" {
				d, err = schema.ParseDialect(dialect)
			} else {
				d, err = database.DialectOf(cfg.MigrationURL)
			}
			if err != nil {
				return err
			}
			if dir == "" {
				dir = cfg.MigrationsDir
			}

			res, err := migrate.Generate(dir, d, cfg.Namespace, name)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !res.Written() {
				fmt.Fprintln(out, "no schema changes")
				return nil
			}
			changes := make([]string, 0, len(res.Plan.Changes))
			for _, c := range res.Plan.Changes {
				changes = append(changes, "  "+c.String())
			}
			fmt.Fprintf(out, "%s\n%s\n", res.Path, strings.Join(changes, "\n"))
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "migration name")
	cmd.Flags().StringVar(&dialect, "dialect", "", "SQL dialect; defaults to the scheme of the migration URL")
	cmd.Flags().StringVar(&dir, "dir", "", "artifacts directory; defaults to migrations or migrations/dev by mode")
	return cmd
}
