package log

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilteringHandlerSections(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := slog.New(&filteringHandler{underlying: slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})})
	EnableSections("test-enabled")

	logger.With("section", "test-enabled-collect").Debug("derived logger")
	logger.Debug("record attribute", "section", "test-enabled")
	logger.With("section", "test-other").Info("hidden")
	logger.With("section", "test-other").Warn("warnings always show")

	out := buf.String()
	assert.Contains(t, out, "derived logger")
	assert.Contains(t, out, "record attribute")
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "warnings always show")
}
