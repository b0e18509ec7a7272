package debug

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLogger(t *testing.T) {
	t.Run("BasicLogging", func(t *testing.T) {
		var buf bytes.Buffer
		logger := New(&buf, "TEST", FlagLevel|FlagPrefix)

		logger.Info("Hello %s", "World")

		output := buf.String()
		if !strings.Contains(output, "[INFO]") {
			t.Error("Missing log level")
		}
		if !strings.Contains(output, "[TEST]") {
			t.Error("Missing prefix")
		}
		if !strings.Contains(output, "Hello World\n") {
			t.Errorf("Missing message: %q", output)
		}
	})

	t.Run("LogLevels", func(t *testing.T) {
		var buf bytes.Buffer
		logger := New(&buf, "", FlagLevel)
		logger.SetLevel(LogLevelWarn)

		logger.Debug("debug message")
		logger.Info("info message")
		logger.Warn("warn message")
		logger.Error("error message")

		output := buf.String()
		if strings.Contains(output, "debug message") {
			t.Error("Debug message should not be logged")
		}
		if strings.Contains(output, "info message") {
			t.Error("Info message should not be logged")
		}
		if !strings.Contains(output, "warn message") {
			t.Error("Warn message should be logged")
		}
		if !strings.Contains(output, "error message") {
			t.Error("Error message should be logged")
		}
	})

	t.Run("Off", func(t *testing.T) {
		var buf bytes.Buffer
		logger := New(&buf, "", DefaultFlags)
		logger.SetLevel(LogLevelOff)

		logger.Error("should not appear")

		if buf.Len() > 0 {
			t.Error("Logger at LogLevelOff should not write")
		}
		if logger.Enabled(LogLevelError) {
			t.Error("Enabled should be false at LogLevelOff")
		}
	})

	t.Run("ChildSharesSink", func(t *testing.T) {
		var buf bytes.Buffer
		parent := New(&buf, "libpd", FlagPrefix)
		child := parent.With("pd3")

		parent.SetLevel(LogLevelDebug)
		child.Debug("from child")

		if !strings.Contains(buf.String(), "[libpd:pd3] from child") {
			t.Errorf("Unexpected child output: %q", buf.String())
		}
	})

	t.Run("FileInfo", func(t *testing.T) {
		var buf bytes.Buffer
		logger := New(&buf, "", FlagShortFile|FlagLevel)

		logger.Info("test")

		if !strings.Contains(buf.String(), "logger_test.go:") {
			t.Errorf("Missing file info in output: %s", buf.String())
		}
	})

	t.Run("FileLogger", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "logs", "plugin.log")
		logger, err := NewFileLogger(path, "file", FlagPrefix)
		if err != nil {
			t.Fatalf("NewFileLogger: %v", err)
		}

		logger.Info("written")

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("ReadFile: %v", err)
		}
		if !strings.Contains(string(data), "[file] written") {
			t.Errorf("Unexpected file content: %q", data)
		}
	})

	t.Run("Discard", func(t *testing.T) {
		Discard().Error("nothing")
	})
}

func TestLogLevel(t *testing.T) {
	tests := []struct {
		level    LogLevel
		expected string
	}{
		{LogLevelDebug, "DEBUG"},
		{LogLevelInfo, "INFO"},
		{LogLevelWarn, "WARN"},
		{LogLevelError, "ERROR"},
		{LogLevelFatal, "FATAL"},
		{LogLevelOff, "OFF"},
		{LogLevel(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		if got := tt.level.String(); got != tt.expected {
			t.Errorf("LogLevel.String() = %v, want %v", got, tt.expected)
		}
	}
}

func TestFatal(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "", FlagLevel)
	logger.SetLevel(LogLevelFatal)

	logger.Error("below fatal")

	defer func() {
		r := recover()
		if r != "definition missing: 0" {
			t.Errorf("Fatal panicked with %v", r)
		}
		if strings.Contains(buf.String(), "below fatal") {
			t.Error("Error message should not be logged at LogLevelFatal")
		}
		if !strings.Contains(buf.String(), "[FATAL] definition missing: 0\n") {
			t.Errorf("Missing fatal message: %q", buf.String())
		}
	}()
	logger.Fatal("definition missing: %d", 0)
	t.Error("Fatal should panic")
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    LogLevel
		wantErr bool
	}{
		{"debug", LogLevelDebug, false},
		{"INFO", LogLevelInfo, false},
		{"", LogLevelInfo, false},
		{" warning ", LogLevelWarn, false},
		{"error", LogLevelError, false},
		{"Fatal", LogLevelFatal, false},
		{"off", LogLevelOff, false},
		{"loud", LogLevelInfo, true},
	}

	for _, tt := range tests {
		got, err := ParseLogLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLogLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func BenchmarkLogger(b *testing.B) {
	logger := New(bytes.NewBuffer(nil), "BENCH", DefaultFlags)

	b.Run("Enabled", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			logger.Info("Benchmark message %d", i)
		}
	})

	b.Run("BelowLevel", func(b *testing.B) {
		logger.SetLevel(LogLevelError)
		for i := 0; i < b.N; i++ {
			logger.Info("Benchmark message %d", i)
		}
	})
}
