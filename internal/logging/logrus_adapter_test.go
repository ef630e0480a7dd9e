package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogrusAdapter(t *testing.T) {
	tests := []struct {
		name        string
		level       string
		format      string
		expectLevel logrus.Level
		expectJSON  bool
	}{
		{name: "debug text", level: "debug", format: "text", expectLevel: logrus.DebugLevel},
		{name: "info json", level: "info", format: "json", expectLevel: logrus.InfoLevel, expectJSON: true},
		{name: "upper case level", level: "WARN", format: "text", expectLevel: logrus.WarnLevel},
		{name: "invalid level defaults to info", level: "loud", format: "text", expectLevel: logrus.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := NewLogrusAdapter(tt.level, tt.format)
			adapter, ok := logger.(*LogrusAdapter)
			require.True(t, ok)
			assert.Equal(t, tt.expectLevel, adapter.Underlying().Level)

			_, isJSON := adapter.Underlying().Formatter.(*logrus.JSONFormatter)
			assert.Equal(t, tt.expectJSON, isJSON)
		})
	}
}

func TestNewLogrusAdapterFromLogger_Nil(t *testing.T) {
	logger := NewLogrusAdapterFromLogger(nil)
	require.NotNil(t, logger)
	assert.NotPanics(t, func() { logger.Info("still works") })
}

func TestLogrusAdapter_FieldsReachOutput(t *testing.T) {
	var buf bytes.Buffer
	base := logrus.New()
	base.SetOutput(&buf)
	base.SetFormatter(&logrus.JSONFormatter{})
	base.SetLevel(logrus.DebugLevel)

	logger := NewLogrusAdapterFromLogger(base).
		WithField(FieldPipeline, "forecast").
		WithError(errors.New("boom"))
	logger.Warn("fallback used", F(FieldMethod, "regression"))

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "fallback used", decoded["msg"])
	assert.Equal(t, "warning", decoded["level"])
	assert.Equal(t, "forecast", decoded[FieldPipeline])
	assert.Equal(t, "regression", decoded[FieldMethod])
	assert.Equal(t, "boom", decoded["error"])
}

func TestLogrusAdapter_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	base := logrus.New()
	base.SetOutput(&buf)
	base.SetLevel(logrus.InfoLevel)

	logger := NewLogrusAdapterFromLogger(base)
	logger.Debug("hidden")
	assert.Empty(t, buf.String())

	logger.Info("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestMockLogger_ChildrenShareRecorder(t *testing.T) {
	mock := NewMockLogger()
	child := mock.WithFields(F(FieldStrategy, "Keyword")).WithError(errors.New("nope"))

	child.Debug("matched")
	mock.Info("root")

	entries := mock.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "DEBUG", entries[0].Level)
	v, ok := entries[0].FieldValue(FieldStrategy)
	require.True(t, ok)
	assert.Equal(t, "Keyword", v)
	assert.EqualError(t, entries[0].Error, "nope")
	assert.Nil(t, entries[1].Error)

	assert.True(t, mock.HasEntry("INFO", "root"))
	assert.Len(t, mock.EntriesByLevel("DEBUG"), 1)

	mock.Clear()
	assert.Empty(t, mock.Entries())
}

func TestMockLogger_ZeroValueUsable(t *testing.T) {
	var mock MockLogger
	mock.Error("zero value")
	mock.Fatalf("code %d", 7)
	assert.True(t, mock.HasEntry("FATAL", "code 7"))
	assert.Len(t, mock.Entries(), 2)
}
