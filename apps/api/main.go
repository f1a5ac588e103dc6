package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	dig_container "github.com/florescendo/talentos/apps/api/di/dig"
	echoapi "github.com/florescendo/talentos/apps/api/echo"
	"github.com/florescendo/talentos/core"
	"github.com/florescendo/talentos/storage/database"
)

func main() {
	c := dig_container.New("API")

	err := c.Invoke(func(conf *core.Config, logger core.Logger, db *sqlx.DB, server *echoapi.Server) {
		logger.Info(fmt.Sprintf("talentos api %q starting (%s)", conf.Build, conf.Env))
		defer func() { _ = db.Close() }()

		if err := run(conf, logger, db, server); err != nil {
			logger.Fatal(fmt.Sprintf("api stopped: %v", err), err)
		}
		logger.Info("api stopped")
	})
	if err != nil {
		log.Fatal(err)
	}
}

// run migrates the roster, serves the API and blocks until a server error or a shutdown signal.
func run(conf *core.Config, logger core.Logger, db *sqlx.DB, server *echoapi.Server) error {
	if err := database.Migrate(db); err != nil {
		return err
	}

	serveDebug(conf, logger)
	go server.Start()

	select {
	case err := <-server.Errors():
		return errors.Wrap(err, "serving api")

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v received, draining requests", sig))

		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("graceful shutdown failed: %v", err), err)
			return errors.Wrap(server.Close(), "closing server")
		}
		return nil
	}
}

// serveDebug publishes /debug/vars on the debug host.
func serveDebug(conf *core.Config, logger core.Logger) {
	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)
	expvar.NewInt("aulas").Set(int64(conf.Report.Sessions))

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Warn(fmt.Sprintf("debug server closed: %v", err))
		}
	}()
}
