package logsvc

import (
	"os"

	"github.com/rollbar/rollbar-go"
	"github.com/rollbar/rollbar-go/errors"
	"github.com/sirupsen/logrus"

	"github.com/florescendo/talentos/core"
)

// RollbarLogger reports to Rollbar and writes locally through logrus.
type RollbarLogger struct {
	std *logrus.Entry
}

var _ core.Logger = (*RollbarLogger)(nil)

// NewStdLogger returns the local logrus sink for `component` (API, DB, ADMIN...).
func NewStdLogger(component string, conf *core.Config) *logrus.Entry {
	l := logrus.New()
	l.SetOutput(os.Stdout)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if conf.Debug {
		l.SetLevel(logrus.DebugLevel)
	}
	return l.WithField("component", component)
}

func NewRollbarLogger(std *logrus.Entry, conf *core.Config) *RollbarLogger {
	rollbar.SetToken(conf.RollbarToken)
	rollbar.SetEnvironment(conf.Env)
	rollbar.SetServerHost(conf.Server.Host)
	rollbar.SetCodeVersion(conf.Build)
	rollbar.SetStackTracer(errors.StackTracer)
	return &RollbarLogger{std: std}
}

func (l RollbarLogger) Enable(enabled bool) {
	rollbar.SetEnabled(enabled)
}

// log reports `msg` to Rollbar and the local sink.
// expected args: error, map[string]interface{}, core.Person; only the first Person is attached.
func (l RollbarLogger) log(level logrus.Level, msg string, args []interface{}) {
	var (
		person *core.Person
		extras = make([]interface{}, 0, len(args)+1)
		e      = l.std
	)
	extras = append(extras, msg)
	for _, arg := range args {
		switch a := arg.(type) {
		case core.Person:
			if person == nil {
				person = &a
				e = e.WithField("person", a.ID)
			}
			continue
		case error:
			e = e.WithError(a)
		case map[string]interface{}:
			e = e.WithFields(a)
		case nil:
		default:
			e = e.WithField("extra", a)
		}
		extras = append(extras, arg)
	}

	if person != nil {
		rollbar.SetPerson(person.ID, person.Username, "")
	} else {
		rollbar.ClearPerson()
	}
	rollbar.Log(rollbarLevels[level], extras...)
	if level == logrus.FatalLevel {
		rollbar.Wait()
	}
	e.Log(level, msg)
	if level == logrus.FatalLevel {
		e.Logger.Exit(1)
	}
}

var rollbarLevels = map[logrus.Level]string{
	logrus.DebugLevel: rollbar.DEBUG,
	logrus.InfoLevel:  rollbar.INFO,
	logrus.WarnLevel:  rollbar.WARN,
	logrus.ErrorLevel: rollbar.ERR,
	logrus.FatalLevel: rollbar.CRIT,
}

func (l RollbarLogger) Debug(msg string, args ...interface{}) { l.log(logrus.DebugLevel, msg, args) }
func (l RollbarLogger) Info(msg string, args ...interface{})  { l.log(logrus.InfoLevel, msg, args) }
func (l RollbarLogger) Warn(msg string, args ...interface{})  { l.log(logrus.WarnLevel, msg, args) }
func (l RollbarLogger) Error(msg string, args ...interface{}) { l.log(logrus.ErrorLevel, msg, args) }
func (l RollbarLogger) Fatal(msg string, args ...interface{}) { l.log(logrus.FatalLevel, msg, args) }
