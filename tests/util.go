package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/florescendo/talentos/core"
	"github.com/florescendo/talentos/core/report"
	"github.com/florescendo/talentos/core/student"
	logsvc "github.com/florescendo/talentos/services/logger"
	"github.com/florescendo/talentos/storage/database"
)

// PrepareDB opens a migrated in-memory sqlite database, closed when the test ends.
func PrepareDB(t *testing.T) *sqlx.DB {
	t.Helper()

	db, err := database.Open(core.NewTestConfig())
	if err != nil {
		t.Fatalf("PrepareDB() failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err = database.Migrate(db); err != nil {
		t.Fatalf("PrepareDB() failed: %v", err)
	}
	return db
}

// StatusVector returns a vector of `sessions` positions where the `pending` aulas are 0.
func StatusVector(sessions int, pending ...int) []int {
	vector := make([]int, sessions)
	for i := range vector {
		vector[i] = 1
	}
	for _, p := range pending {
		vector[p-1] = 0
	}
	return vector
}

// CreateStudent stores a student with the given pending aulas directly through `repo`.
func CreateStudent(
	t *testing.T,
	repo student.Repository,
	name, class string,
	pending []int,
	updatedAt ...time.Time,
) student.Student {
	t.Helper()

	tstamp := time.Now().UTC()
	if len(updatedAt) > 0 {
		tstamp = updatedAt[0].UTC()
	}
	details := make(map[int]report.PendingDetail, len(pending))
	for _, p := range pending {
		details[p] = report.PendingDetail{Status: report.StatusAssigned, Tasks: []string{"Tarefa"}}
	}
	s := student.Student{
		ID:             uuid.New().String(),
		Name:           name,
		Class:          class,
		StatusVector:   StatusVector(report.DefaultSessions, pending...),
		PendingDetails: details,
		UpdatedAt:      tstamp,
	}
	s, err := repo.CreateStudent(context.Background(), s)
	if err != nil {
		t.Fatalf("CreateStudent() failed: %v", err)
	}
	return s
}

// NewLogger returns a silent logger with Rollbar disabled, and the hook recording its entries.
func NewLogger() (*logsvc.RollbarLogger, *test.Hook) {
	std, hook := test.NewNullLogger()
	logger := logsvc.NewRollbarLogger(std.WithField("component", "TEST"), core.NewTestConfig())
	logger.Enable(false)
	return logger, hook
}
