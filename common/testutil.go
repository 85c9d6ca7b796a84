package common

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// TestLogger records everything logged through Logger so tests can make
// assertions against it, one entry at a time.
type TestLogger struct {
	Logger *zap.Logger

	logs *observer.ObservedLogs
	pos  int
	t    *testing.T
}

// NewTestLogger constructs a test logger capturing entries at debug
// level and above.
func NewTestLogger(t *testing.T) *TestLogger {
	core, logs := observer.New(zapcore.DebugLevel)
	return &TestLogger{
		Logger: zap.New(core),
		logs:   logs,
		t:      t,
	}
}

// SkipLogLine will jump over a log entry we don't care about. The test
// fails if there is no entry left.
func (tl *TestLogger) SkipLogLine(reason string) {
	tl.next()
	tl.t.Logf("Skipping log line: %s", reason)
}

// LogLineMatches checks that the next entry has the given level and a
// message matching the regular expression. The entry is returned so its
// fields can be inspected.
func (tl *TestLogger) LogLineMatches(level zapcore.Level, match string) observer.LoggedEntry {
	e := tl.next()
	require.Equal(tl.t, level, e.Level, "unexpected level for %q", e.Message)
	require.Regexp(tl.t, regexp.MustCompile(match), e.Message)
	return e
}

// NoMoreLines fails the test if unread entries remain.
func (tl *TestLogger) NoMoreLines() {
	all := tl.logs.AllUntimed()
	require.Len(tl.t, all[tl.pos:], 0, "unexpected log entries")
}

func (tl *TestLogger) next() observer.LoggedEntry {
	all := tl.logs.AllUntimed()
	require.Greater(tl.t, len(all), tl.pos, "no log line left")
	e := all[tl.pos]
	tl.pos++
	return e
}
