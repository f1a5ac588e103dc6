package main

import (
	"fmt"
	"log"
	"os"

	"github.com/jmoiron/sqlx"

	dig_container "github.com/florescendo/talentos/apps/api/di/dig"
	"github.com/florescendo/talentos/core"
	"github.com/florescendo/talentos/core/student"
)

func main() {
	c := dig_container.New("ADMIN")

	var (
		conf   *core.Config
		logger core.Logger
	)
	if err := c.Invoke(func(cf *core.Config, l core.Logger) { conf, logger = cf, l }); err != nil {
		log.Fatal(err)
	}

	cli := newCommandLine(conf, logger, func() (deps, error) {
		var d deps
		err := c.Invoke(func(db *sqlx.DB, svc *student.Service, mailer core.EmailService) {
			d = deps{db: db, svc: svc, mailer: mailer}
		})
		return d, err
	})

	err := cli.run(os.Args[1:])
	cli.close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "\nerror: %v\n", err)
		os.Exit(1)
	}
}
