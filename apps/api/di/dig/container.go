package dig_container

import (
	"log"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/dig"

	echoapi "github.com/florescendo/talentos/apps/api/echo"
	"github.com/florescendo/talentos/core"
	"github.com/florescendo/talentos/core/student"
	emailsvc "github.com/florescendo/talentos/services/email"
	logsvc "github.com/florescendo/talentos/services/logger"
	"github.com/florescendo/talentos/storage/database"
	sqlxrepos "github.com/florescendo/talentos/storage/database/sqlx"
)

type DBLoggerParam struct {
	dig.In
	Logger core.Logger `name:"dbLogger"`
}

type component string

func newLoggerFunc(name component) func(conf *core.Config) core.Logger {
	return func(conf *core.Config) core.Logger {
		logger := logsvc.NewRollbarLogger(logsvc.NewStdLogger(string(name), conf), conf)
		logger.Enable(!conf.Debug)
		return logger
	}
}

// newDB opens the configured database, creating it first on postgres. Migrations are left to the caller.
func newDB(conf *core.Config, loggerParam DBLoggerParam) (*sqlx.DB, error) {
	if err := database.CreateIfNotExist(conf); err != nil {
		loggerParam.Logger.Error("creating database", err)
		return nil, err
	}
	db, err := database.Open(conf)
	if err != nil {
		loggerParam.Logger.Error("opening database", err)
		return nil, err
	}
	return db, nil
}

func newEmailService(conf *core.Config, logger core.Logger) core.EmailService {
	if conf.Debug || conf.SendgridApiKey == "" {
		return emailsvc.NewConsoleService(conf, logger)
	}
	return emailsvc.NewSendgridService(conf, logger)
}

func newValidator(conf *core.Config, translator ut.Translator) *validator.Validate {
	validate := validator.New()
	core.InitValidators(validate, translator)
	student.InitValidators(validate, translator, conf.Report.Sessions)
	return validate
}

func newStudentServiceInterface(svc *student.Service) student.ServiceInterface {
	return svc
}

// New returns a new dependency injection dig.Container; `name` tags the app logs (API, ADMIN).
func New(name string) *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(newLoggerFunc(component(name))))
	must(c.Provide(newLoggerFunc("DB"), dig.Name("dbLogger")))
	must(c.Provide(newDB))
	must(c.Provide(newEmailService))
	must(c.Provide(sqlxrepos.NewStudentRepository))
	must(c.Provide(core.NewTranslator))
	must(c.Provide(newValidator))
	must(c.Provide(student.NewService))
	must(c.Provide(newStudentServiceInterface))
	must(c.Provide(echoapi.NewServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
