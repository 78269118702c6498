package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupWritesToRotatingFile(t *testing.T) {
	prevOut, prevLevel := logrus.StandardLogger().Out, logrus.GetLevel()
	t.Cleanup(func() {
		logrus.SetOutput(prevOut)
		logrus.SetLevel(prevLevel)
	})

	file := filepath.Join(t.TempDir(), "app.log")
	Setup(Options{File: file, Level: "warn"})

	logrus.Info("dropped")
	logrus.WithField("route_id", 7).Warn("kept")

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "dropped")
	assert.Contains(t, string(data), "kept")
	assert.Contains(t, string(data), "route_id=7")
	assert.Equal(t, logrus.WarnLevel, logrus.GetLevel())
}

func TestSetupFallsBackToDebug(t *testing.T) {
	prevOut, prevLevel := logrus.StandardLogger().Out, logrus.GetLevel()
	t.Cleanup(func() {
		logrus.SetOutput(prevOut)
		logrus.SetLevel(prevLevel)
	})

	Setup(Options{File: filepath.Join(t.TempDir(), "app.log"), Level: "loud"})
	assert.Equal(t, logrus.DebugLevel, logrus.GetLevel())
}
