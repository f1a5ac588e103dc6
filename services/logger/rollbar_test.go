package logsvc

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/florescendo/talentos/core"
)

func TestRollbarLogger(t *testing.T) {
	std, hook := test.NewNullLogger()
	std.SetLevel(logrus.DebugLevel)

	logger := NewRollbarLogger(std.WithField("component", "TEST"), core.NewTestConfig())
	logger.Enable(false)

	errBoom := errors.New("boom")
	logger.Error("import failed", errBoom, map[string]interface{}{"nome": "ANA LIMA"}, core.Person{ID: "1", Username: "admin"})

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.ErrorLevel, entry.Level)
	assert.Equal(t, "import failed", entry.Message)
	assert.Equal(t, errBoom, entry.Data[logrus.ErrorKey])
	assert.Equal(t, "ANA LIMA", entry.Data["nome"])
	assert.Equal(t, "1", entry.Data["person"])
	assert.Equal(t, "TEST", entry.Data["component"])

	logger.Debug("parsed", 42)
	entry = hook.LastEntry()
	assert.Equal(t, logrus.DebugLevel, entry.Level)
	assert.Equal(t, 42, entry.Data["extra"])

	logger.Info("ready")
	logger.Warn("slow")
	assert.Len(t, hook.AllEntries(), 4)
}
