package logger

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	tests := map[string]struct {
		level  string
		format string
		want   zapcore.Level
	}{
		"json info":     {level: "info", format: "json", want: zapcore.InfoLevel},
		"console debug": {level: "debug", format: "console", want: zapcore.DebugLevel},
		"warn":          {level: "warn", format: "json", want: zapcore.WarnLevel},
		"unknown level": {level: "verbose", format: "json", want: zapcore.InfoLevel},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			l, err := New(tt.level, tt.format)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !l.Core().Enabled(tt.want) {
				t.Fatalf("expected level %s enabled", tt.want)
			}
			if tt.want > zapcore.DebugLevel && l.Core().Enabled(tt.want-1) {
				t.Fatalf("expected level below %s disabled", tt.want)
			}
		})
	}
}
