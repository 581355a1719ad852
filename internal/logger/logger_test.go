package logger

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"":      zapcore.InfoLevel,
		"debug": zapcore.DebugLevel,
		"INFO":  zapcore.InfoLevel,
		"error": zapcore.ErrorLevel,
		"warn":  zapcore.WarnLevel,
		"loud":  zapcore.WarnLevel,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNew(t *testing.T) {
	for _, lvl := range []zapcore.Level{zapcore.DebugLevel, zapcore.WarnLevel} {
		log, err := New(lvl)
		if err != nil {
			t.Fatalf("New(%v): %v", lvl, err)
		}
		if !log.Core().Enabled(lvl) || log.Core().Enabled(lvl-1) {
			t.Fatalf("logger at %v has wrong threshold", lvl)
		}
	}
}
