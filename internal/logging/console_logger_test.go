package logging

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConsoleLogger_Verbose(t *testing.T) {
	tests := []struct {
		name    string
		verbose bool
		want    string
	}{
		{"enabled", true, "[VERBOSE] loading orders.csv\n"},
		{"disabled", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			NewConsoleLoggerTo(&buf, tt.verbose).Verbose("loading %s", "orders.csv")
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestConsoleLogger_InfoAndError(t *testing.T) {
	var buf bytes.Buffer
	logger := NewConsoleLoggerTo(&buf, false)

	logger.Info("Loaded %d rows", 42)
	logger.Error("failed: %v", "boom")
	logger.Info("100% literal")

	assert.Equal(t, "Loaded 42 rows\n[ERROR] failed: boom\n100% literal\n", buf.String())
}

func TestConsoleLogger_ConcurrentWrites(t *testing.T) {
	var buf bytes.Buffer
	logger := NewConsoleLoggerTo(&buf, true)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			logger.Verbose("line %d", n)
		}(i)
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 50)
	for _, line := range lines {
		assert.True(t, strings.HasPrefix(line, "[VERBOSE] line "), line)
	}
}

func TestNullLogger_DoesNotPanic(t *testing.T) {
	logger := NewNullLogger()
	logger.Verbose("x %d", 1)
	logger.Info("x")
	logger.Error("x")
}
