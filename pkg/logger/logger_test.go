package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetLoggerFallsBackToGlobal(t *testing.T) {
	entry := G(context.Background())
	require.NotNil(t, entry)
	assert.Equal(t, L.Logger, entry.Logger)
}

func TestWithLoggerRoundTrip(t *testing.T) {
	l := logrus.New()
	base := logrus.NewEntry(l).WithField("skill", "pdf-tools")

	ctx := WithLogger(context.Background(), base)
	entry := G(ctx)

	assert.Equal(t, l, entry.Logger)
	assert.Equal(t, "pdf-tools", entry.Data["skill"])
}

func TestSetLogLevel(t *testing.T) {
	original := L.Logger.GetLevel()
	defer L.Logger.SetLevel(original)

	require.NoError(t, SetLogLevel("debug"))
	assert.Equal(t, logrus.DebugLevel, L.Logger.GetLevel())

	assert.Error(t, SetLogLevel("not-a-level"))
	assert.Equal(t, logrus.DebugLevel, L.Logger.GetLevel(), "invalid level leaves the logger untouched")
}

func TestSetLogFormatJSON(t *testing.T) {
	originalFormatter := L.Logger.Formatter
	originalLevel := L.Logger.GetLevel()
	defer func() {
		L.Logger.SetFormatter(originalFormatter)
		L.Logger.SetLevel(originalLevel)
		SetLogOutput(os.Stderr)
	}()

	var buf bytes.Buffer
	SetLogOutput(&buf)
	SetLogFormat("json")
	L.Logger.SetLevel(logrus.InfoLevel)

	L.WithField("dimension", "security").Info("scan complete")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "scan complete", record["message"])
	assert.Equal(t, "info", record["level"])
	assert.Equal(t, "security", record["dimension"])
	assert.Contains(t, record, "timestamp")
}

func TestSetLogFormatDefaultsToText(t *testing.T) {
	originalFormatter := L.Logger.Formatter
	defer L.Logger.SetFormatter(originalFormatter)

	SetLogFormat("text")
	_, ok := L.Logger.Formatter.(*logrus.TextFormatter)
	assert.True(t, ok)

	SetLogFormat("something-else")
	_, ok = L.Logger.Formatter.(*logrus.TextFormatter)
	assert.True(t, ok)
}
