package student

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/florescendo/talentos/core"
	"github.com/florescendo/talentos/core/report"
)

var (
	// errors
	ErrNotFound     = errors.New("aluno não encontrado")
	ErrNameExists   = errors.New("Aluno com este nome já existe. Use a rota de atualização.")
	ErrInvalidID    = errors.New("Formato de ID inválido.")
	ErrUnidentified = errors.New("não foi possível identificar o nome do aluno no relatório")

	similarNameMinRatio = .85
)

type (
	Repository interface {
		CheckNameUniqueness(ctx context.Context, name string, excludedIDs ...string) error
		CreateStudent(ctx context.Context, s Student) (Student, error)
		// QueryStudents applies AND operation on available QueryFilter fields.
		QueryStudents(ctx context.Context, filter QueryFilter, ordering []core.DBOrdering) ([]Student, error)
		GetStudentByID(ctx context.Context, id string) (Student, error)
		GetStudentByName(ctx context.Context, name string) (Student, error)
		UpdateStudent(ctx context.Context, s Student) (Student, error)
		DeleteStudentByID(ctx context.Context, id string) error
	}

	ServiceInterface interface {
		CheckUniqueness(ctx context.Context, name string, excludedIDs ...string) error
		Create(ctx context.Context, ns NewStudent) (Student, error)
		QueryAll(ctx context.Context) ([]Student, error)
		Query(ctx context.Context, filter QueryFilter, ordering []core.DBOrdering) ([]Student, error)
		GetByID(ctx context.Context, id string) (Student, error)
		GetByName(ctx context.Context, name string) (Student, error)
		Update(ctx context.Context, id string, us UpdateStudent) (Student, error)
		Delete(ctx context.Context, id string) error
		Ranking(ctx context.Context, filter QueryFilter, limit int) (Ranking, error)
		SimilarNames(ctx context.Context, name string) ([]string, error)
		Preview(ctx context.Context, text string) (Preview, error)
		ImportReport(ctx context.Context, text, class string) (ImportResult, error)
		Sessions() int
	}

	Service struct {
		repo     Repository
		validate *validator.Validate
		sessions int
	}

	// Preview is a parsed report plus what the roster already knows about its aluno.
	Preview struct {
		Record       report.Record `json:"relatorio"`
		ExistingID   string        `json:"alunoExistenteId,omitempty"`
		SimilarNames []string      `json:"nomesSemelhantes,omitempty"`
	}

	ImportResult struct {
		Student Student `json:"aluno"`
		Created bool    `json:"criado"`
	}
)

var _ ServiceInterface = (*Service)(nil)

func NewService(repo Repository, validate *validator.Validate, conf *core.Config) *Service {
	return &Service{repo: repo, validate: validate, sessions: sessionCount(conf.Report.Sessions)}
}

// sessionCount falls back to report.DefaultSessions when `n` is not positive.
func sessionCount(n int) int {
	if n <= 0 {
		return report.DefaultSessions
	}
	return n
}

// Sessions returns the number of aulas in the course.
func (svc *Service) Sessions() int {
	return svc.sessions
}

func (svc *Service) CheckUniqueness(ctx context.Context, name string, excludedIDs ...string) error {
	if err := svc.repo.CheckNameUniqueness(ctx, name, excludedIDs...); err != nil {
		if errors.Cause(err) == ErrNameExists {
			return core.NewFieldValidationError("nome", ErrNameExists)
		}
		return errors.Wrap(err, "checking name uniqueness")
	}
	return nil
}

func (svc *Service) Create(ctx context.Context, ns NewStudent) (Student, error) {
	s := Student{
		ID:             uuid.New().String(),
		Name:           core.CleanString(ns.Name, true),
		Class:          ns.Class,
		StatusVector:   ns.StatusVector,
		PendingDetails: ns.PendingDetails,
		TotalPending:   CountPending(ns.StatusVector),
		UpdatedAt:      time.Now().UTC(),
	}
	s, err := svc.repo.CreateStudent(ctx, s)
	if errors.Cause(err) == ErrNameExists {
		return Student{}, core.NewFieldValidationError("nome", ErrNameExists)
	}
	return s, err
}

// QueryAll returns every student sorted by name.
func (svc *Service) QueryAll(ctx context.Context) ([]Student, error) {
	return svc.repo.QueryStudents(ctx, QueryFilter{}, nil)
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter, ordering []core.DBOrdering) ([]Student, error) {
	return svc.repo.QueryStudents(ctx, filter, ordering)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Student, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Student{}, ErrInvalidID
	}
	return svc.repo.GetStudentByID(ctx, id)
}

// GetByName looks `name` up the way roster names are stored: trimmed and upper-cased.
func (svc *Service) GetByName(ctx context.Context, name string) (Student, error) {
	return svc.repo.GetStudentByName(ctx, core.CleanString(name, true))
}

func (svc *Service) Update(ctx context.Context, id string, us UpdateStudent) (Student, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Student{}, ErrInvalidID
	}
	s := Student{
		ID:             id,
		Name:           core.CleanString(us.Name, true),
		Class:          us.Class,
		StatusVector:   us.StatusVector,
		PendingDetails: us.PendingDetails,
		TotalPending:   CountPending(us.StatusVector),
		UpdatedAt:      time.Now().UTC(),
	}
	s, err := svc.repo.UpdateStudent(ctx, s)
	if errors.Cause(err) == ErrNameExists {
		return Student{}, core.NewFieldValidationError("nome", ErrNameExists)
	}
	return s, err
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrInvalidID
	}
	return svc.repo.DeleteStudentByID(ctx, id)
}

// SimilarNames returns the names in the roster close to, but different from, `name`. Best matches come first.
func (svc *Service) SimilarNames(ctx context.Context, name string) ([]string, error) {
	name = core.CleanString(name, true)
	if name == "" {
		return nil, nil
	}
	students, err := svc.repo.QueryStudents(ctx, QueryFilter{}, nil)
	if err != nil {
		return nil, errors.Wrap(err, "querying students")
	}

	type match struct {
		name  string
		ratio float64
	}
	target := strings.Split(name, "")
	var matches []match
	for _, s := range students {
		other := core.CleanString(s.Name, true)
		if other == name {
			continue
		}
		ratio := difflib.NewMatcher(target, strings.Split(other, "")).Ratio()
		if ratio >= similarNameMinRatio {
			matches = append(matches, match{name: s.Name, ratio: ratio})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].ratio != matches[j].ratio {
			return matches[i].ratio > matches[j].ratio
		}
		return matches[i].name < matches[j].name
	})

	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, m.name)
	}
	return names, nil
}

// parse accepts plain report text or an HTML page saved from the LMS.
func (svc *Service) parse(text string) (report.Record, error) {
	if report.LooksLikeHTML(text) {
		extracted, err := report.ExtractText(strings.NewReader(text))
		if err != nil {
			return report.Record{}, core.NewFieldValidationError("texto", err)
		}
		text = extracted
	}
	rec, err := report.ParseN(text, svc.sessions)
	if err != nil {
		return report.Record{}, errors.Wrap(err, "parsing report")
	}
	return rec, nil
}

// Preview parses `text` and looks its aluno up in the roster.
func (svc *Service) Preview(ctx context.Context, text string) (Preview, error) {
	rec, err := svc.parse(text)
	if err != nil {
		return Preview{}, err
	}
	pv := Preview{Record: rec}

	existing, err := svc.GetByName(ctx, rec.Name)
	switch errors.Cause(err) {
	case nil:
		pv.ExistingID = existing.ID
		pv.Record.Class = existing.Class
	case ErrNotFound:
		if pv.SimilarNames, err = svc.SimilarNames(ctx, rec.Name); err != nil {
			return Preview{}, err
		}
	default:
		return Preview{}, errors.Wrap(err, "finding student by name")
	}
	return pv, nil
}

// ImportReport parses `text` and stores the result: the aluno with the same name is updated,
// or a new one is created. An empty `class` keeps the current turma (Desconhecida for new alunos).
func (svc *Service) ImportReport(ctx context.Context, text, class string) (ImportResult, error) {
	rec, err := svc.parse(text)
	if err != nil {
		return ImportResult{}, err
	}
	if rec.Name == "" || rec.Name == report.UnknownName {
		return ImportResult{}, core.NewFieldValidationError("texto", ErrUnidentified)
	}

	existing, err := svc.GetByName(ctx, rec.Name)
	switch errors.Cause(err) {
	case nil:
		data := UpdateStudent{
			Class:          class,
			StatusVector:   rec.StatusVector,
			PendingDetails: rec.PendingDetails,
		}
		if err = data.Validate(ctx, existing, svc.validate, svc); err != nil {
			return ImportResult{}, err
		}
		s, err := svc.Update(ctx, existing.ID, data)
		if err != nil {
			return ImportResult{}, errors.Wrap(err, "updating student")
		}
		return ImportResult{Student: s}, nil

	case ErrNotFound:
		data := NewStudent{
			Name:           rec.Name,
			Class:          class,
			StatusVector:   rec.StatusVector,
			PendingDetails: rec.PendingDetails,
		}
		if err = data.Validate(ctx, svc.validate, svc); err != nil {
			return ImportResult{}, err
		}
		s, err := svc.Create(ctx, data)
		if err != nil {
			return ImportResult{}, errors.Wrap(err, "creating student")
		}
		return ImportResult{Student: s, Created: true}, nil

	default:
		return ImportResult{}, errors.Wrap(err, "finding student by name")
	}
}
