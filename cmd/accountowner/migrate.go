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
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/tomoncle/accountowner/database"
)

const flagEnvironment = "env"

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Apply pending schema migrations and exit",
		Action: func(ctx *cli.Context) error {
			conf, err := loadConfig(ctx)
			if err != nil {
				return err
			}
			conf.Database.DataMigrateConfig.EnableMigrateOnStartup = true
			conf.Database.DataInitConfig.AutoInitOnStartup = false

			if _, err := database.InitDB(ctx.Context, &conf.Database); err != nil {
				return errors.Wrap(err, "could not migrate database")
			}
			defer database.CloseDB()

			applied, err := database.AppliedMigrations(ctx.Context)
			if err != nil {
				return errors.Wrap(err, "could not list applied migrations")
			}
			for _, m := range applied {
				logger.WithFields(logrus.Fields{
					"version":    m.Version,
					"applied_at": m.AppliedAt.Format(time.RFC3339),
				}).Info(m.Name)
			}
			logger.WithField("count", len(applied)).Info("database migrated")
			return nil
		},
	}
}

func seedCommand() *cli.Command {
	return &cli.Command{
		Name:  "seed",
		Usage: "Run the SQL seed files of an environment and exit",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  flagEnvironment,
				Usage: "seed environment, overrides database.init.environment",
			},
		},
		Action: func(ctx *cli.Context) error {
			conf, err := loadConfig(ctx)
			if err != nil {
				return err
			}
			if env := ctx.String(flagEnvironment); env != "" {
				conf.Database.DataInitConfig.Environment = env
			}
			conf.Database.DataInitConfig.AutoInitOnStartup = false

			if _, err := database.InitDB(ctx.Context, &conf.Database); err != nil {
				return errors.Wrap(err, "could not initialize database")
			}
			defer database.CloseDB()

			if err := database.InitData(ctx.Context); err != nil {
				return errors.Wrap(err, "could not seed database")
			}
			logger.WithField("environment", conf.Database.DataInitConfig.Environment).Info("database seeded")
			return nil
		},
	}
}
