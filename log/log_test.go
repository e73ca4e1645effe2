package log

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToLogAttrWire(t *testing.T) {
	tests := []struct {
		name     string
		attr     slog.Attr
		wantType string
		wantVal  string
	}{
		{
			name:     "string",
			attr:     slog.String("key", "value"),
			wantType: "string",
			wantVal:  "value",
		},
		{
			name:     "int64",
			attr:     slog.Int64("key", 123),
			wantType: "int64",
			wantVal:  "123",
		},
		{
			name:     "bool",
			attr:     slog.Bool("key", true),
			wantType: "bool",
			wantVal:  "true",
		},
		{
			name:     "float64",
			attr:     slog.Float64("key", 1.23),
			wantType: "float64",
			wantVal:  "1.230000",
		},
		{
			name:     "time",
			attr:     slog.Time("key", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
			wantType: "time",
			wantVal:  "2024-01-01T00:00:00Z",
		},
		{
			name:     "duration",
			attr:     slog.Duration("key", 1*time.Hour),
			wantType: "duration",
			wantVal:  "1h0m0s",
		},
		{
			name:     "error",
			attr:     slog.Any("key", errors.New("test error")),
			wantType: "error",
			wantVal:  "test error",
		},
		{
			name:     "nil",
			attr:     slog.Any("key", nil),
			wantType: "any",
			wantVal:  "<nil>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wire := toLogAttrWire(tt.attr)
			assert.Equal(t, tt.attr.Key, wire.Key)
			assert.Equal(t, tt.wantType, wire.Type)
			assert.Equal(t, tt.wantVal, wire.Value)
		})
	}
}

func TestToLogAttrWire_JSON(t *testing.T) {
	// Test structured object that should be serialized as JSON
	type MyStruct struct {
		Field string `json:"field"`
	}
	obj := MyStruct{Field: "data"}
	attr := slog.Any("key", obj)

	wire := toLogAttrWire(attr)
	assert.Equal(t, "key", wire.Key)
	assert.Equal(t, "json", wire.Type)

	var decoded MyStruct
	err := json.Unmarshal([]byte(wire.Value), &decoded)
	require.NoError(t, err)
	assert.Equal(t, obj, decoded)
}

func TestToLogAttrWire_LogValuer(t *testing.T) {
	// Test types that implement LogValuer
	attr := slog.Any("key", logValuer{val: "resolved"})
	wire := toLogAttrWire(attr)

	assert.Equal(t, "key", wire.Key)
	assert.Equal(t, "string", wire.Type)
	assert.Equal(t, "resolved", wire.Value)
}

type logValuer struct {
	val string
}

func (l logValuer) LogValue() slog.Value {
	return slog.StringValue(l.val)
}

func TestAppendAttrWire_FlattensGroups(t *testing.T) {
	attr := slog.Group("module", slog.String("name", "ov000"), slog.Group("range", slog.Int("start", 1)))

	wires := appendAttrWire(nil, "", attr)
	require.Len(t, wires, 2)
	assert.Equal(t, "module.name", wires[0].Key)
	assert.Equal(t, "module.range.start", wires[1].Key)

	assert.Empty(t, appendAttrWire(nil, "", slog.Attr{}), "empty attrs are dropped")
}

func TestNewHandler_Defaults(t *testing.T) {
	var buf bytes.Buffer
	h := NewHandler(&buf)
	assert.NotNil(t, h)

	logger := slog.New(h)
	logger.Debug("hidden")
	logger.Info("loaded rom", slog.String("title", "DSDGHIDRA"), slog.Int("overlays", 2))

	out := buf.String()
	assert.NotContains(t, out, "hidden", "debug is below the default level")
	assert.True(t, strings.HasPrefix(out, "dsd-ghidra: "), out)
	assert.Contains(t, out, "INFO loaded rom title=DSDGHIDRA overlays=2")
	assert.Equal(t, 1, strings.Count(out, "\n"))
}

func TestNewHandler_Options(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewHandler(&buf, WithLevel(slog.LevelDebug), WithSource(true), WithPrefix("")))

	logger.Debug("visible", slog.String("path", "a b"))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, time.Now().Format("2006")), out)
	assert.Contains(t, out, `DEBUG visible path="a b"`)
	assert.Contains(t, out, "source=")
	assert.Contains(t, out, "log_test.go")
}

func TestHandler_WithAttrsAndGroup(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewHandler(&buf)).With(slog.String("op", "get_sync_data")).WithGroup("config")

	logger.Warn("invalid", slog.String("field", "hash"))

	assert.Contains(t, buf.String(), "WARN invalid op=get_sync_data config.field=hash")
}

func TestHandler_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewHandler(&buf, WithJSON(true)))

	logger.Error("free failed", slog.Any("err", errors.New("boom")))

	var msg LogMessageWire
	require.NoError(t, json.Unmarshal(buf.Bytes(), &msg))
	assert.Equal(t, "ERROR", msg.Level)
	assert.Equal(t, "free failed", msg.Message)
	require.Len(t, msg.Attrs, 1)
	assert.Equal(t, LogAttrWire{Key: "err", Type: "error", Value: "boom"}, msg.Attrs[0])
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in     string
		want   slog.Level
		wantOK bool
	}{
		{in: "", want: slog.LevelInfo, wantOK: true},
		{in: "debug", want: slog.LevelDebug, wantOK: true},
		{in: " WARN ", want: slog.LevelWarn, wantOK: true},
		{in: "error", want: slog.LevelError, wantOK: true},
		{in: "off", want: levelOff, wantOK: true},
		{in: "loud", want: slog.LevelInfo, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseLevel(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}

func TestSetup(t *testing.T) {
	defer slog.SetDefault(slog.Default())

	t.Setenv(EnvLevel, "off")
	var buf bytes.Buffer
	logger := Setup(&buf)
	logger.Error("silenced")
	assert.Empty(t, buf.String())

	t.Setenv(EnvLevel, "shouty")
	t.Setenv(EnvFormat, "json")
	buf.Reset()
	Setup(&buf)
	assert.Contains(t, buf.String(), `"unknown log level, using info"`)
	slog.Info("through default")
	assert.Contains(t, buf.String(), `"through default"`)
}
