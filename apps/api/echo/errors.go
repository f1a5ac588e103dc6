package echoapi

import (
	"fmt"
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/florescendo/talentos/core"
	"github.com/florescendo/talentos/core/student"
)

var (
	errMissingToken  = echo.NewHTTPError(http.StatusUnauthorized, "Acesso negado. Token não fornecido.")
	errInvalidToken  = echo.NewHTTPError(http.StatusUnauthorized, "Token inválido ou expirado.")
	errHttpForbidden = echo.NewHTTPError(http.StatusForbidden, "Permissão negada.")
	errInvalidBody   = errors.New("Corpo da requisição inválido.")
)

// Response is the envelope of every API response.
type Response struct {
	Success bool              `json:"success"`
	Data    interface{}       `json:"data,omitempty"`
	Message string            `json:"message,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
}

func dataResponse(ctx echo.Context, code int, data interface{}) error {
	return ctx.JSON(code, Response{Success: true, Data: data})
}

func studentNotFound(id string) error {
	return echo.NewHTTPError(http.StatusNotFound, fmt.Sprintf("Aluno com ID %s não encontrado.", id))
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		res := Response{}
		var code int

		switch origErr := errors.Cause(err).(type) {
		case *echo.HTTPError:
			switch {
			case origErr == middleware.ErrJWTMissing:
				origErr = errMissingToken
			case origErr.Code == http.StatusUnauthorized:
				origErr = errInvalidToken
			case origErr.Internal != nil:
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			res.Message = fmt.Sprint(origErr.Message)
		case validator.ValidationErrors:
			code = http.StatusBadRequest
			res.Message = "Dados inválidos."
			res.Errors = core.TranslateErrors(origErr, translator)
		case *core.ValidationError:
			code = http.StatusBadRequest
			if origErr.Err == student.ErrNameExists {
				code = http.StatusConflict
			}
			res.Message = origErr.Error()
			res.Errors = origErr.FieldMap()
		default:
			switch origErr {
			case student.ErrInvalidID:
				code = http.StatusBadRequest
				res.Message = origErr.Error()
			case student.ErrNotFound:
				code = http.StatusNotFound
				res.Message = origErr.Error()
			default: // any other error is a server error
				code = http.StatusInternalServerError
				msg := http.StatusText(http.StatusInternalServerError)
				res.Message = msg
				if ctx.Echo().Debug {
					res.Message = err.Error()
				}

				args := []interface{}{errors.Wrap(err, msg)}
				if p, ok := contextPerson(ctx); ok {
					args = append(args, p)
				}
				logger.Error(msg, args...)

				// shutting down...
				if core.IsShutdown(err) {
					signalShutdown()
				}
			}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, res)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}
