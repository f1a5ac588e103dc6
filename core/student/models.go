package student

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/florescendo/talentos/core"
	"github.com/florescendo/talentos/core/report"
)

// Turmas
const (
	ClassFirstYear  = "1º Ano"
	ClassSecondYear = "2º Ano"
	ClassUnknown    = report.UnknownClass
)

var Classes = []string{ClassFirstYear, ClassSecondYear, ClassUnknown}

func IsValidClass(class string) bool {
	for _, c := range Classes {
		if c == class {
			return true
		}
	}
	return false
}

type Student struct {
	ID             string                       `json:"_id"`
	Name           string                       `json:"nome"`
	Class          string                       `json:"turma"`
	StatusVector   []int                        `json:"statusAulas"`
	PendingDetails map[int]report.PendingDetail `json:"pendenciasDetalhadas"`
	TotalPending   int                          `json:"totalPendencias"`
	UpdatedAt      time.Time                    `json:"dataAtualizacao"` // UTC
}

// Delivered returns the number of aulas with no pending task.
func (s Student) Delivered() int {
	return len(s.StatusVector) - s.TotalPending
}

func (s Student) Progress() int {
	return report.ProgressPercent(s.Delivered(), len(s.StatusVector))
}

// PendingSessions returns the pending aula numbers in increasing order.
func (s Student) PendingSessions() []int {
	sessions := make([]int, 0, s.TotalPending)
	for pos, v := range s.StatusVector {
		if v == 0 {
			sessions = append(sessions, pos+1)
		}
	}
	return sessions
}

// CountPending returns the number of pending aulas in a status vector.
func CountPending(vector []int) int {
	var n int
	for _, v := range vector {
		if v == 0 {
			n++
		}
	}
	return n
}

// NewStudent contains information needed to create a new Student.
type NewStudent struct {
	Name           string                       `json:"nome" validate:"required,notblank"`
	Class          string                       `json:"turma" validate:"required,turma"`
	StatusVector   []int                        `json:"statusAulas" validate:"required,statusaulas"`
	PendingDetails map[int]report.PendingDetail `json:"pendenciasDetalhadas"`
}

func (ns *NewStudent) Validate(ctx context.Context, validate *validator.Validate, svc ServiceInterface) error {
	ns.Name = core.CleanString(ns.Name, true)
	ns.Class = core.CleanString(ns.Class)
	if ns.Class == "" {
		ns.Class = ClassUnknown
	}
	if ns.PendingDetails == nil {
		ns.PendingDetails = make(map[int]report.PendingDetail)
	}

	if err := validate.Struct(ns); err != nil {
		return err
	}
	return svc.CheckUniqueness(ctx, ns.Name)
}

// UpdateStudent defines what information may be provided to modify an existing Student.
// Zero-valued fields keep the current value.
type UpdateStudent struct {
	Name           string                       `json:"nome" validate:"required,notblank"`
	Class          string                       `json:"turma" validate:"required,turma"`
	StatusVector   []int                        `json:"statusAulas" validate:"required,statusaulas"`
	PendingDetails map[int]report.PendingDetail `json:"pendenciasDetalhadas"`
}

func (us *UpdateStudent) Validate(ctx context.Context, orig Student, validate *validator.Validate, svc ServiceInterface) error {
	if name := core.CleanString(us.Name, true); name != "" {
		us.Name = name
	} else {
		us.Name = orig.Name
	}
	if class := core.CleanString(us.Class); class != "" {
		us.Class = class
	} else {
		us.Class = orig.Class
	}
	if len(us.StatusVector) == 0 {
		us.StatusVector = orig.StatusVector
	}
	if us.PendingDetails == nil {
		us.PendingDetails = orig.PendingDetails
	}

	if err := validate.Struct(us); err != nil {
		return err
	}
	return svc.CheckUniqueness(ctx, us.Name, orig.ID)
}

type QueryFilter struct {
	Search string `query:"search"`
	Class  string `query:"turma"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.Class == ""
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Class = core.CleanString(qf.Class)
	if strings.EqualFold(qf.Class, "todas") {
		qf.Class = ""
	}
}

// Match reports whether `s` passes the filter: name contains Search (case-insensitive) and turma equals Class.
func (qf QueryFilter) Match(s Student) bool {
	if qf.IsEmpty() {
		return true
	}
	if qf.Search != "" && !strings.Contains(strings.ToLower(s.Name), strings.ToLower(qf.Search)) {
		return false
	}
	return qf.Class == "" || s.Class == qf.Class
}
