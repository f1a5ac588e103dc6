package echoapi

import (
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/florescendo/talentos/core"
	"github.com/florescendo/talentos/core/student"
)

type (
	studentApi struct {
		svc       student.ServiceInterface
		validate  *validator.Validate
		minLength int
	}

	// ReportRequest carries a report copied from the LMS (plain text or saved HTML page).
	ReportRequest struct {
		Text  string `json:"texto"`
		Class string `json:"turma"`
	}
)

func registerStudentAPI(
	api *echo.Group,
	jwt echo.MiddlewareFunc,
	svc student.ServiceInterface,
	validate *validator.Validate,
	minLength int,
) {
	h := studentApi{svc: svc, validate: validate, minLength: minLength}

	// public endpoints
	pg := api.Group("/alunos")
	pg.GET("", h.query)
	pg.GET("/ranking", h.ranking)
	pg.GET("/:id", h.retrieve)

	// admin endpoints
	ag := api.Group("/admin", jwt, requireRole(RoleAdmin))
	ag.POST("/alunos", h.create)
	ag.PUT("/alunos/:id", h.update)
	ag.DELETE("/alunos/:id", h.destroy)
	ag.POST("/relatorios/processar", h.preview)
	ag.POST("/relatorios/lancar", h.importReport)
}

// getStudent loads the aluno named by the `:id` path param.
func (h *studentApi) getStudent(ctx echo.Context) (student.Student, error) {
	id := ctx.Param("id")
	s, err := h.svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		if errors.Cause(err) == student.ErrNotFound {
			return student.Student{}, studentNotFound(id)
		}
		return student.Student{}, errors.Wrap(err, "finding student by ID")
	}
	return s, nil
}

func (h *studentApi) query(ctx echo.Context) error {
	filter := bindFilter(ctx)
	ordering := new(Ordering)
	ordering.Bind(ctx)

	students, err := h.svc.Query(ctx.Request().Context(), filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying students")
	}
	if students == nil {
		students = []student.Student{}
	}
	return dataResponse(ctx, http.StatusOK, students)
}

func (h *studentApi) ranking(ctx echo.Context) error {
	ranking, err := h.svc.Ranking(ctx.Request().Context(), bindFilter(ctx), bindLimit(ctx))
	if err != nil {
		return errors.Wrap(err, "ranking students")
	}
	return dataResponse(ctx, http.StatusOK, ranking)
}

func (h *studentApi) retrieve(ctx echo.Context) error {
	s, err := h.getStudent(ctx)
	if err != nil {
		return err
	}
	return dataResponse(ctx, http.StatusOK, s)
}

func (h *studentApi) create(ctx echo.Context) error {
	var data student.NewStudent
	if err := ctx.Bind(&data); err != nil {
		return core.NewValidationError(errInvalidBody)
	}
	if err := data.Validate(ctx.Request().Context(), h.validate, h.svc); err != nil {
		return err
	}

	s, err := h.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating student")
	}
	return dataResponse(ctx, http.StatusCreated, s)
}

func (h *studentApi) update(ctx echo.Context) error {
	orig, err := h.getStudent(ctx)
	if err != nil {
		return err
	}

	var data student.UpdateStudent
	if err = ctx.Bind(&data); err != nil {
		return core.NewValidationError(errInvalidBody)
	}
	if err = data.Validate(ctx.Request().Context(), orig, h.validate, h.svc); err != nil {
		return err
	}

	s, err := h.svc.Update(ctx.Request().Context(), orig.ID, data)
	if err != nil {
		if errors.Cause(err) == student.ErrNotFound {
			return studentNotFound(orig.ID)
		}
		return errors.Wrap(err, "updating student")
	}
	return dataResponse(ctx, http.StatusOK, s)
}

func (h *studentApi) destroy(ctx echo.Context) error {
	id := ctx.Param("id")
	if err := h.svc.Delete(ctx.Request().Context(), id); err != nil {
		if errors.Cause(err) == student.ErrNotFound {
			return studentNotFound(id)
		}
		return errors.Wrap(err, "deleting student")
	}
	return ctx.JSON(http.StatusOK, Response{Success: true, Message: "Aluno deletado com sucesso."})
}

// bindReport reads a ReportRequest and rejects texts shorter than the configured minimum.
func (h *studentApi) bindReport(ctx echo.Context) (ReportRequest, error) {
	var data ReportRequest
	if err := ctx.Bind(&data); err != nil {
		return ReportRequest{}, core.NewValidationError(errInvalidBody)
	}
	if utf8.RuneCountInString(strings.TrimSpace(data.Text)) < h.minLength {
		return ReportRequest{}, core.NewValidationError(
			errors.New("Por favor, cole um relatório válido com dados suficientes."),
			core.FieldError{Field: "texto", Error: fmt.Sprintf("o relatório deve ter pelo menos %d caracteres", h.minLength)},
		)
	}
	return data, nil
}

func (h *studentApi) preview(ctx echo.Context) error {
	data, err := h.bindReport(ctx)
	if err != nil {
		return err
	}
	pv, err := h.svc.Preview(ctx.Request().Context(), data.Text)
	if err != nil {
		return errors.Wrap(err, "previewing report")
	}
	return dataResponse(ctx, http.StatusOK, pv)
}

func (h *studentApi) importReport(ctx echo.Context) error {
	data, err := h.bindReport(ctx)
	if err != nil {
		return err
	}
	res, err := h.svc.ImportReport(ctx.Request().Context(), data.Text, data.Class)
	if err != nil {
		return errors.Wrap(err, "importing report")
	}

	code := http.StatusOK
	if res.Created {
		code = http.StatusCreated
	}
	return dataResponse(ctx, code, res)
}
