package voice

import (
	"bytes"
	"context"
	"testing"

	"fjacquet/expense-tracker/cmd/root"
	"fjacquet/expense-tracker/internal/config"
	"fjacquet/expense-tracker/internal/container"
	"fjacquet/expense-tracker/internal/logging"
	"fjacquet/expense-tracker/internal/store"
	"fjacquet/expense-tracker/internal/trackererror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestContainer(t *testing.T) *container.Container {
	t.Helper()
	cfg := config.Defaults()
	cfg.Store.Path = t.TempDir()
	cfg.AI.Enabled = false
	c, err := container.NewContainerWithRepository(cfg, store.NewMemoryRepository(), logging.NewMockLogger())
	require.NoError(t, err)
	return c
}
func captureOutput(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	old := root.Out
	root.Out = &buf
	t.Cleanup(func() { root.Out = old })
	return &buf
}

func TestVoiceCommand_Flags(t *testing.T) {
	for _, name := range []string{"transcript", "audio", "save", "format"} {
		assert.NotNil(t, Cmd.Flags().Lookup(name), name)
	}
}

func TestVoiceFunc_WithoutRemoteModel(t *testing.T) {
	c := newTestContainer(t)
	captureOutput(t)
	transcript, save = "I spent twenty dollars on lunch", true
	t.Cleanup(func() { transcript, save = "", false })

	err := voiceFunc(context.Background(), c)
	var extractionErr *trackererror.ExtractionError
	require.ErrorAs(t, err, &extractionErr)

	stored, err := c.GetRepository().List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestVoiceFunc_AudioWithoutTranscriber(t *testing.T) {
	c := newTestContainer(t)
	captureOutput(t)
	audioFile = "missing.wav"
	t.Cleanup(func() { audioFile = "" })

	assert.Error(t, voiceFunc(context.Background(), c))
}
