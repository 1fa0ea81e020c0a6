package logger

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBracketFormat(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewWithOutput("debug", &buf)
	require.NoError(t, err)

	log.WithFields(logrus.Fields{"epoch": 2, "loss": 0.5}).Info("epoch done")
	log.Warn("slow")
	log.Error("boom")
	log.Debug("detail")

	assert.Equal(t,
		"[INF] epoch done epoch=2 loss=0.5\n[WARN] slow\n[ERR] boom\n[DBG] detail\n",
		buf.String())
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewWithOutput("WARN", &buf)
	require.NoError(t, err)

	log.Info("hidden")
	log.Warn("shown")
	assert.Equal(t, "[WARN] shown\n", buf.String())
}

func TestInvalidLevel(t *testing.T) {
	_, err := NewWithOutput("loud", &bytes.Buffer{})
	assert.Error(t, err)
}

func TestDefaultLevel(t *testing.T) {
	log, err := NewWithOutput("", &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
	assert.NotNil(t, Discard())
}
