package dummydb

import (
	"context"
	"sort"
	"strings"

	"github.com/florescendo/talentos/core"
	"github.com/florescendo/talentos/core/report"
	"github.com/florescendo/talentos/core/student"
)

type studentRepository struct {
	db *studentTable
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *DB) student.Repository {
	return &studentRepository{db: db.student}
}

// clone detaches the stored record from the caller's slices and maps.
func clone(s student.Student) student.Student {
	vector := make([]int, len(s.StatusVector))
	copy(vector, s.StatusVector)
	s.StatusVector = vector

	details := make(map[int]report.PendingDetail, len(s.PendingDetails))
	for k, d := range s.PendingDetails {
		tasks := make([]string, len(d.Tasks))
		copy(tasks, d.Tasks)
		details[k] = report.PendingDetail{Status: d.Status, Tasks: tasks}
	}
	s.PendingDetails = details
	s.TotalPending = student.CountPending(s.StatusVector)
	return s
}

func (repo *studentRepository) nameTaken(name string, excludedIDs ...string) bool {
	for _, s := range repo.db.table {
		if s.Name != name {
			continue
		}
		excluded := false
		for _, id := range excludedIDs {
			if s.ID == id {
				excluded = true
				break
			}
		}
		if !excluded {
			return true
		}
	}
	return false
}

func (repo *studentRepository) CheckNameUniqueness(_ context.Context, name string, excludedIDs ...string) error {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if repo.nameTaken(name, excludedIDs...) {
		return student.ErrNameExists
	}
	return nil
}

func (repo *studentRepository) CreateStudent(_ context.Context, s student.Student) (student.Student, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if repo.nameTaken(s.Name) {
		return student.Student{}, student.ErrNameExists
	}
	s = clone(s)
	stored := clone(s)
	repo.db.table[s.ID] = &stored
	return s, nil
}

func (repo *studentRepository) QueryStudents(_ context.Context, filter student.QueryFilter, ordering []core.DBOrdering) ([]student.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	students := make([]student.Student, 0, len(repo.db.table))
	for _, s := range repo.db.table {
		if filter.Match(*s) {
			students = append(students, clone(*s))
		}
	}

	if len(ordering) == 0 {
		ordering = []core.DBOrdering{{Field: "nome", Ascending: true}}
	}
	sort.SliceStable(students, func(i, j int) bool {
		for _, ord := range ordering {
			c := compare(students[i], students[j], ord.Field)
			if c == 0 {
				continue
			}
			if ord.Ascending {
				return c < 0
			}
			return c > 0
		}
		return students[i].Name < students[j].Name
	})
	return students, nil
}

func compare(a, b student.Student, field string) int {
	switch field {
	case "nome":
		return strings.Compare(a.Name, b.Name)
	case "turma":
		return strings.Compare(a.Class, b.Class)
	case "dataAtualizacao":
		switch {
		case a.UpdatedAt.Before(b.UpdatedAt):
			return -1
		case a.UpdatedAt.After(b.UpdatedAt):
			return 1
		}
	case "totalPendencias":
		return a.TotalPending - b.TotalPending
	}
	return 0
}

func (repo *studentRepository) GetStudentByID(_ context.Context, id string) (student.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if s, ok := repo.db.table[id]; ok {
		return clone(*s), nil
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) GetStudentByName(_ context.Context, name string) (student.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, s := range repo.db.table {
		if s.Name == name {
			return clone(*s), nil
		}
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) UpdateStudent(_ context.Context, s student.Student) (student.Student, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[s.ID]; !ok {
		return student.Student{}, student.ErrNotFound
	}
	if repo.nameTaken(s.Name, s.ID) {
		return student.Student{}, student.ErrNameExists
	}
	s = clone(s)
	stored := clone(s)
	repo.db.table[s.ID] = &stored
	return s, nil
}

func (repo *studentRepository) DeleteStudentByID(_ context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[id]; !ok {
		return student.ErrNotFound
	}
	delete(repo.db.table, id)
	return nil
}
