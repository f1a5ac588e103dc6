package sqlxrepos

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/florescendo/talentos/core"
	"github.com/florescendo/talentos/core/report"
	"github.com/florescendo/talentos/core/student"
)

const studentColumns = "id, nome, turma, status_aulas, pendencias, total_pendencias, data_atualizacao"

var (
	studentOrderingColumns = map[string]string{
		"nome":            "nome",
		"turma":           "turma",
		"dataAtualizacao": "data_atualizacao",
		"totalPendencias": "total_pendencias",
	}
	defaultStudentOrdering = core.DBOrdering{Field: "nome", Ascending: true}
)

type studentRow struct {
	ID             string    `db:"id"`
	Name           string    `db:"nome"`
	Class          string    `db:"turma"`
	StatusVector   string    `db:"status_aulas"`
	PendingDetails string    `db:"pendencias"`
	TotalPending   int       `db:"total_pendencias"`
	UpdatedAt      time.Time `db:"data_atualizacao"`
}

func newStudentRow(s student.Student) (studentRow, error) {
	vector, err := json.Marshal(s.StatusVector)
	if err != nil {
		return studentRow{}, errors.Wrap(err, "encoding statusAulas")
	}
	details := s.PendingDetails
	if details == nil {
		details = make(map[int]report.PendingDetail)
	}
	pending, err := json.Marshal(details)
	if err != nil {
		return studentRow{}, errors.Wrap(err, "encoding pendenciasDetalhadas")
	}
	return studentRow{
		ID:             s.ID,
		Name:           s.Name,
		Class:          s.Class,
		StatusVector:   string(vector),
		PendingDetails: string(pending),
		TotalPending:   student.CountPending(s.StatusVector),
		UpdatedAt:      s.UpdatedAt.UTC(),
	}, nil
}

func (row studentRow) toStudent() (student.Student, error) {
	s := student.Student{
		ID:           row.ID,
		Name:         row.Name,
		Class:        row.Class,
		TotalPending: row.TotalPending,
		UpdatedAt:    row.UpdatedAt.UTC(),
	}
	if err := json.Unmarshal([]byte(row.StatusVector), &s.StatusVector); err != nil {
		return student.Student{}, errors.Wrapf(err, "decoding statusAulas of %s", row.ID)
	}
	if err := json.Unmarshal([]byte(row.PendingDetails), &s.PendingDetails); err != nil {
		return student.Student{}, errors.Wrapf(err, "decoding pendenciasDetalhadas of %s", row.ID)
	}
	if s.PendingDetails == nil {
		s.PendingDetails = make(map[int]report.PendingDetail)
	}
	return s, nil
}

// isUniqueViolation recognizes unique constraint errors of both supported drivers.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}

type studentRepository struct {
	db *sqlx.DB
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *sqlx.DB) student.Repository {
	return &studentRepository{db: db}
}

func (repo *studentRepository) CheckNameUniqueness(ctx context.Context, name string, excludedIDs ...string) error {
	q, args := "SELECT COUNT(*) FROM aluno WHERE nome = ?", []interface{}{name}
	if len(excludedIDs) > 0 {
		var err error
		q, args, err = sqlx.In("SELECT COUNT(*) FROM aluno WHERE nome = ? AND id NOT IN (?)", name, excludedIDs)
		if err != nil {
			return errors.Wrap(err, "building uniqueness query")
		}
	}

	var count int
	if err := repo.db.GetContext(ctx, &count, repo.db.Rebind(q), args...); err != nil {
		return errors.Wrap(err, "counting students by name")
	}
	if count > 0 {
		return student.ErrNameExists
	}
	return nil
}

func (repo *studentRepository) CreateStudent(ctx context.Context, s student.Student) (student.Student, error) {
	row, err := newStudentRow(s)
	if err != nil {
		return student.Student{}, err
	}
	q := "INSERT INTO aluno (" + studentColumns + ") " +
		"VALUES (:id, :nome, :turma, :status_aulas, :pendencias, :total_pendencias, :data_atualizacao)"
	if _, err = repo.db.NamedExecContext(ctx, q, row); err != nil {
		if isUniqueViolation(err) {
			return student.Student{}, student.ErrNameExists
		}
		return student.Student{}, errors.Wrap(err, "inserting student")
	}
	return row.toStudent()
}

// QueryStudents filters on turma in SQL; the name search runs in Go because sqlite's LOWER only folds ASCII.
func (repo *studentRepository) QueryStudents(ctx context.Context, filter student.QueryFilter, ordering []core.DBOrdering) ([]student.Student, error) {
	q := "SELECT " + studentColumns + " FROM aluno"
	var args []interface{}
	if filter.Class != "" {
		q += " WHERE turma = ?"
		args = append(args, filter.Class)
	}
	q += " ORDER BY " + core.OrderingClause(ordering, studentOrderingColumns, defaultStudentOrdering)

	var rows []studentRow
	if err := repo.db.SelectContext(ctx, &rows, repo.db.Rebind(q), args...); err != nil {
		return nil, errors.Wrap(err, "selecting students")
	}

	students := make([]student.Student, 0, len(rows))
	for _, row := range rows {
		s, err := row.toStudent()
		if err != nil {
			return nil, err
		}
		if filter.Match(s) {
			students = append(students, s)
		}
	}
	return students, nil
}

func (repo *studentRepository) getBy(ctx context.Context, column, value string) (student.Student, error) {
	var row studentRow
	q := repo.db.Rebind("SELECT " + studentColumns + " FROM aluno WHERE " + column + " = ?")
	if err := repo.db.GetContext(ctx, &row, q, value); err != nil {
		if err == sql.ErrNoRows {
			return student.Student{}, student.ErrNotFound
		}
		return student.Student{}, errors.Wrapf(err, "selecting student by %s", column)
	}
	return row.toStudent()
}

func (repo *studentRepository) GetStudentByID(ctx context.Context, id string) (student.Student, error) {
	return repo.getBy(ctx, "id", id)
}

func (repo *studentRepository) GetStudentByName(ctx context.Context, name string) (student.Student, error) {
	return repo.getBy(ctx, "nome", name)
}

func (repo *studentRepository) UpdateStudent(ctx context.Context, s student.Student) (student.Student, error) {
	row, err := newStudentRow(s)
	if err != nil {
		return student.Student{}, err
	}
	q := "UPDATE aluno SET nome = :nome, turma = :turma, status_aulas = :status_aulas, pendencias = :pendencias, " +
		"total_pendencias = :total_pendencias, data_atualizacao = :data_atualizacao WHERE id = :id"
	res, err := repo.db.NamedExecContext(ctx, q, row)
	if err != nil {
		if isUniqueViolation(err) {
			return student.Student{}, student.ErrNameExists
		}
		return student.Student{}, errors.Wrap(err, "updating student")
	}
	if n, err := res.RowsAffected(); err != nil {
		return student.Student{}, errors.Wrap(err, "updating student")
	} else if n == 0 {
		return student.Student{}, student.ErrNotFound
	}
	return row.toStudent()
}

func (repo *studentRepository) DeleteStudentByID(ctx context.Context, id string) error {
	res, err := repo.db.ExecContext(ctx, repo.db.Rebind("DELETE FROM aluno WHERE id = ?"), id)
	if err != nil {
		return errors.Wrap(err, "deleting student")
	}
	if n, err := res.RowsAffected(); err != nil {
		return errors.Wrap(err, "deleting student")
	} else if n == 0 {
		return student.ErrNotFound
	}
	return nil
}
