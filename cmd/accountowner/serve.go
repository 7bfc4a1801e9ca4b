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
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/tomoncle/accountowner/controller"
	"github.com/tomoncle/accountowner/database"
)

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:   "serve",
		Usage:  "Start the HTTP server (default)",
		Action: serve,
	}
}

func serve(ctx *cli.Context) error {
	conf, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	runCtx, stop := signal.NotifyContext(ctx.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.InitDB(runCtx, &conf.Database)
	if err != nil {
		return errors.Wrap(err, "could not initialize database")
	}
	defer func() {
		if err := database.CloseDB(); err != nil {
			logger.WithError(err).Error("could not close database")
		}
	}()

	server := &http.Server{
		Addr:         conf.HTTP.Address,
		Handler:      controller.NewHandler(db, conf.HTTP, controller.WithHealthCheck(database.GetHealthStatus)),
		ReadTimeout:  conf.HTTP.ReadTimeout,
		WriteTimeout: conf.HTTP.WriteTimeout,
	}

	errs := make(chan error, 1)
	go func() {
		logger.WithField("address", conf.HTTP.Address).Info("starting server, use ctrl+c to interrupt")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- errors.WithStack(err)
		}
		close(errs)
	}()

	select {
	case err := <-errs:
		return err
	case <-runCtx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), conf.HTTP.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "could not shut down server")
	}

	stats := database.GetDatabaseStats()
	logger.WithFields(logrus.Fields{
		"open_conns":    stats.OpenConns,
		"wait_count":    stats.WaitCount,
		"wait_duration": stats.WaitDuration.String(),
	}).Info("server stopped")
	return nil
}
