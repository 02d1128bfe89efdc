package ir

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

type countingShown struct{ shown *int }

func (c countingShown) String() string {
	*c.shown++
	return "shown"
}
func (c countingShown) Hash() uint64 { return 0 }

func TestSlogHandlerRendersLazily(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := slog.New(SlogHandler(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelInfo})))
	x := Ref("x")

	logger.Info("tree", "node", Call(Plus, x, x))
	assert.Contains(t, buf.String(), `node.str="x + x"`)
	assert.Contains(t, buf.String(), `node.name="function call"`)

	renders := 0
	logger.Debug("below level", "type", countingShown{&renders})
	assert.Equal(t, 0, renders)
	logger.Info("at level", "type", countingShown{&renders})
	assert.Equal(t, 1, renders)
	assert.Contains(t, buf.String(), "type=shown")
}
