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

// Command accountowner serves the owner and account REST API.
package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/tomoncle/accountowner/config"
	_ "github.com/tomoncle/accountowner/entity"
	"github.com/tomoncle/accountowner/utils"
)

const (
	flagConfig   = "config"
	flagLogLevel = "log-level"
	flagDebug    = "debug"
)

var logger = utils.NewLogger("MAIN")

func main() {
	app := &cli.App{
		Name:  "accountowner",
		Usage: "Owner and account REST API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    flagConfig,
				Aliases: []string{"c"},
				EnvVars: []string{"ACCOUNTOWNER_CONFIG"},
				Usage:   "configuration file to use (default " + config.DefaultPath + " when present)",
			},
			&cli.StringFlag{
				Name:    flagLogLevel,
				EnvVars: []string{"ACCOUNTOWNER_CLI_LOG_LEVEL"},
				Usage:   "override the configured log level",
			},
			&cli.BoolFlag{
				Name:    flagDebug,
				EnvVars: []string{"ACCOUNTOWNER_DEBUG"},
				Usage:   "print errors with their stack trace",
			},
		},
		Commands: []*cli.Command{
			serveCommand(),
			migrateCommand(),
			seedCommand(),
		},
		Action: serve,
	}

	app.ExitErrHandler = func(ctx *cli.Context, err error) {
		if err == nil {
			return
		}
		if ctx.Bool(flagDebug) {
			logger.Error(fmt.Sprintf("%+v", err))
		} else {
			logger.Error(err.Error())
		}
	}

	sort.Sort(cli.FlagsByName(app.Flags))
	sort.Sort(cli.CommandsByName(app.Commands))

	if err := app.Run(os.Args); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the configuration and applies its logging section.
func loadConfig(ctx *cli.Context) (*config.Config, error) {
	conf, err := config.Load(ctx.String(flagConfig))
	if err != nil {
		return nil, errors.Wrap(err, "could not load configuration")
	}
	if level := ctx.String(flagLogLevel); level != "" {
		conf.Log.Level = level
	}

	utils.ConfigureConsoleLogFormat(conf.Log.Format)
	if conf.Log.FileDir != "" {
		utils.ConfigureFileLog(conf.Log.FileDir)
	}
	utils.ConfigureLogLevel(conf.Log.Level)
	return conf, nil
}
