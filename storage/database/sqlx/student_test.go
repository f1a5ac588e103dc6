package sqlxrepos

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/florescendo/talentos/core"
	"github.com/florescendo/talentos/core/report"
	"github.com/florescendo/talentos/core/student"
	"github.com/florescendo/talentos/tests"
)

func setup(t *testing.T) student.Repository {
	return NewStudentRepository(testutil.PrepareDB(t))
}

func names(students []student.Student) []string {
	ns := make([]string, 0, len(students))
	for _, s := range students {
		ns = append(ns, s.Name)
	}
	return ns
}

func Test_studentRepository_CreateAndGet(t *testing.T) {
	repo := setup(t)
	ctx := context.Background()

	created := testutil.CreateStudent(t, repo, "MARIA SILVA", student.ClassFirstYear, []int{3, 12})
	assert.Equal(t, 2, created.TotalPending)

	got, err := repo.GetStudentByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Name, got.Name)
	assert.Equal(t, created.Class, got.Class)
	assert.Equal(t, created.StatusVector, got.StatusVector)
	assert.Equal(t, created.PendingDetails, got.PendingDetails)
	assert.Equal(t, 2, got.TotalPending)
	assert.WithinDuration(t, created.UpdatedAt, got.UpdatedAt, time.Millisecond)

	got, err = repo.GetStudentByName(ctx, "MARIA SILVA")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	_, err = repo.GetStudentByID(ctx, uuid.New().String())
	assert.Equal(t, student.ErrNotFound, err)
	_, err = repo.GetStudentByName(ctx, "NINGUÉM")
	assert.Equal(t, student.ErrNotFound, err)
}

func Test_studentRepository_uniqueness(t *testing.T) {
	repo := setup(t)
	ctx := context.Background()

	first := testutil.CreateStudent(t, repo, "ANA LIMA", student.ClassUnknown, nil)

	assert.Equal(t, student.ErrNameExists, repo.CheckNameUniqueness(ctx, "ANA LIMA"))
	assert.NoError(t, repo.CheckNameUniqueness(ctx, "ANA LIMA", first.ID))
	assert.NoError(t, repo.CheckNameUniqueness(ctx, "ANA LIMAS"))

	dup := first
	dup.ID = uuid.New().String()
	_, err := repo.CreateStudent(ctx, dup)
	assert.Equal(t, student.ErrNameExists, err)

	other := testutil.CreateStudent(t, repo, "BRUNO REIS", student.ClassUnknown, nil)
	other.Name = "ANA LIMA"
	_, err = repo.UpdateStudent(ctx, other)
	assert.Equal(t, student.ErrNameExists, err)
}

func Test_studentRepository_QueryStudents(t *testing.T) {
	repo := setup(t)
	ctx := context.Background()

	now := time.Now().UTC()
	testutil.CreateStudent(t, repo, "CARLA DIAS", student.ClassSecondYear, []int{1, 2, 3}, now.Add(-time.Hour))
	testutil.CreateStudent(t, repo, "ANA LIMA", student.ClassFirstYear, nil, now)
	testutil.CreateStudent(t, repo, "JOÃO SOUZA", student.ClassFirstYear, []int{5}, now.Add(-2*time.Hour))

	tests := []struct {
		name     string
		filter   student.QueryFilter
		ordering []core.DBOrdering
		want     []string
	}{
		{name: "all sorted by name", want: []string{"ANA LIMA", "CARLA DIAS", "JOÃO SOUZA"}},
		{
			name:   "by turma",
			filter: student.QueryFilter{Class: student.ClassFirstYear},
			want:   []string{"ANA LIMA", "JOÃO SOUZA"},
		},
		{
			name:   "search is case-insensitive and accent aware",
			filter: student.QueryFilter{Search: "joão"},
			want:   []string{"JOÃO SOUZA"},
		},
		{
			name:   "search and turma",
			filter: student.QueryFilter{Search: "a", Class: student.ClassSecondYear},
			want:   []string{"CARLA DIAS"},
		},
		{
			name:     "most pending first",
			ordering: []core.DBOrdering{{Field: "totalPendencias", Ascending: false}},
			want:     []string{"CARLA DIAS", "JOÃO SOUZA", "ANA LIMA"},
		},
		{
			name:     "oldest update first",
			ordering: []core.DBOrdering{{Field: "dataAtualizacao", Ascending: true}},
			want:     []string{"JOÃO SOUZA", "CARLA DIAS", "ANA LIMA"},
		},
		{
			name:     "unknown ordering falls back to name",
			ordering: []core.DBOrdering{{Field: "nome; DROP TABLE aluno", Ascending: false}},
			want:     []string{"ANA LIMA", "CARLA DIAS", "JOÃO SOUZA"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.QueryStudents(ctx, tt.filter, tt.ordering)
			require.NoError(t, err)
			assert.Equal(t, tt.want, names(got))
		})
	}
}

func Test_studentRepository_UpdateAndDelete(t *testing.T) {
	repo := setup(t)
	ctx := context.Background()

	s := testutil.CreateStudent(t, repo, "ANA LIMA", student.ClassUnknown, []int{1})

	s.Class = student.ClassSecondYear
	s.StatusVector = testutil.StatusVector(report.DefaultSessions, 7, 8)
	s.PendingDetails = map[int]report.PendingDetail{
		7: {Status: report.StatusAssigned, Tasks: []string{"Resumo"}},
		8: {Status: report.StatusAlmostComplete, Tasks: []string{"Fórum"}},
	}
	updated, err := repo.UpdateStudent(ctx, s)
	require.NoError(t, err)
	assert.Equal(t, 2, updated.TotalPending)

	got, err := repo.GetStudentByID(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, student.ClassSecondYear, got.Class)
	assert.Equal(t, s.PendingDetails, got.PendingDetails)
	assert.Equal(t, []int{7, 8}, got.PendingSessions())

	missing := s
	missing.ID = uuid.New().String()
	_, err = repo.UpdateStudent(ctx, missing)
	assert.Equal(t, student.ErrNotFound, err)

	require.NoError(t, repo.DeleteStudentByID(ctx, s.ID))
	assert.Equal(t, student.ErrNotFound, repo.DeleteStudentByID(ctx, s.ID))
	_, err = repo.GetStudentByID(ctx, s.ID)
	assert.Equal(t, student.ErrNotFound, err)
}
