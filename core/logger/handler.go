package logger

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

type logFormat string

const (
	formatJSON logFormat = "json"
	formatKV   logFormat = "kv"

	timeFormatMillis = "2006-01-02T15:04:05.000Z07:00"
)

type handlerConfig struct {
	level    slog.Leveler
	writer   *asyncWriter
	format   logFormat
	keyOrder []string
}

// structuredHandler renders records as single lines with a fixed key prefix
// order (ts, level, component, event, status, ...) so logs stay grep-able and
// diffable across formats. Keys outside the order are appended sorted.
type structuredHandler struct {
	cfg    handlerConfig
	attrs  []slog.Attr
	groups []string
}

func newStructuredHandler(cfg handlerConfig) *structuredHandler {
	if cfg.level == nil {
		cfg.level = slog.LevelInfo
	}
	if cfg.keyOrder == nil {
		cfg.keyOrder = append([]string(nil), defaultKeyOrder...)
	}
	return &structuredHandler{cfg: cfg}
}

func (h *structuredHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.cfg.level.Level()
}

func (h *structuredHandler) Handle(ctx context.Context, r slog.Record) error {
	if h.cfg.writer == nil {
		return fmt.Errorf("logger: writer not initialized")
	}

	fields := h.buildFields(ctx, r)

	var line []byte
	if h.cfg.format == formatJSON {
		var err error
		line, err = appendJSONLine(nil, fields, h.cfg.keyOrder)
		if err != nil {
			return err
		}
	} else {
		line = appendKVLine(nil, fields, h.cfg.keyOrder)
	}
	line = append(line, '\n')
	return h.cfg.writer.Write(line)
}

func (h *structuredHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append(append([]slog.Attr(nil), h.attrs...), attrs...)
	return &clone
}

func (h *structuredHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.groups = append(append([]string(nil), h.groups...), name)
	return &clone
}

// buildFields flattens handler attrs, record attrs and context-carried values
// into one map, then applies the schema rules: every line has a level, an
// event and a component, durations turn into *_ms integers, empty values are
// dropped.
func (h *structuredHandler) buildFields(ctx context.Context, r slog.Record) map[string]any {
	fields := make(map[string]any, 16)

	ts := r.Time.UTC()
	fields["ts"] = ts.Truncate(time.Millisecond).Format(timeFormatMillis)
	fields["level"] = normalizeLevel(r.Level.String())
	if h.cfg.format == formatJSON {
		fields["ts_unix_nano"] = ts.UnixNano()
	}

	prefix := strings.Join(h.groups, ".")
	put := func(a slog.Attr) {
		walkAttr(prefix, a, func(key string, val slog.Value) {
			k, v, keep := fieldValue(key, val)
			if keep {
				fields[k] = v
			}
		})
	}
	for _, a := range h.attrs {
		put(a)
	}
	r.Attrs(func(a slog.Attr) bool {
		put(a)
		return true
	})

	fillFromContext(ctx, fields)

	if s, _ := asString(fields["event"]); s == "" {
		if r.Message != "" {
			fields["event"] = r.Message
		} else {
			fields["event"] = "unknown"
		}
	}
	if s, _ := asString(fields["component"]); s == "" {
		fields["component"] = "app"
	}
	if s, ok := asString(fields["status"]); ok && s != "" {
		fields["status"] = normalizeStatus(s)
	}

	for k, v := range fields {
		if s, isStringish := asString(v); v == nil || (isStringish && s == "") {
			delete(fields, k)
		}
	}
	return fields
}

// walkAttr descends into groups, joining keys with dots.
func walkAttr(prefix string, attr slog.Attr, fn func(string, slog.Value)) {
	key := attr.Key
	switch {
	case key == "":
		key = prefix
	case prefix != "":
		key = prefix + "." + key
	}
	if attr.Value.Kind() == slog.KindGroup {
		for _, child := range attr.Value.Group() {
			walkAttr(key, child, fn)
		}
		return
	}
	fn(key, attr.Value)
}

// fieldValue converts one slog value into the loggable representation,
// renaming duration keys to their *_ms form.
func fieldValue(key string, val slog.Value) (string, any, bool) {
	if key == "" {
		return "", nil, false
	}
	switch val.Kind() {
	case slog.KindString:
		return key, strings.TrimSpace(val.String()), true
	case slog.KindBool:
		return key, val.Bool(), true
	case slog.KindInt64:
		return key, val.Int64(), true
	case slog.KindUint64:
		if u := val.Uint64(); u > math.MaxInt64 {
			return key, u, true
		}
		return key, int64(val.Uint64()), true
	case slog.KindFloat64:
		return key, val.Float64(), true
	case slog.KindDuration:
		return durationKey(key), RoundMS(val.Duration()).Milliseconds(), true
	case slog.KindTime:
		return key, val.Time().UTC().Format(time.RFC3339Nano), true
	case slog.KindAny:
		switch x := val.Any().(type) {
		case nil:
			return key, nil, false
		case error:
			return key, x.Error(), true
		case string:
			return key, strings.TrimSpace(x), true
		case time.Duration:
			return durationKey(key), RoundMS(x).Milliseconds(), true
		case fmt.Stringer:
			return key, x.String(), true
		default:
			return key, fmt.Sprint(x), true
		}
	default:
		return key, val.Any(), true
	}
}

func durationKey(key string) string {
	switch {
	case key == "duration":
		return "duration_ms"
	case strings.HasSuffix(key, "_duration"):
		return strings.TrimSuffix(key, "_duration") + "_duration_ms"
	case strings.HasSuffix(key, "_ms"):
		return key
	default:
		return key + "_ms"
	}
}

// fillFromContext copies request-scoped values in without overriding
// explicitly passed attrs.
func fillFromContext(ctx context.Context, fields map[string]any) {
	if ctx == nil {
		return
	}
	for key, val := range map[string]string{
		"rid":     RIDFrom(ctx),
		"user_id": UserIDFrom(ctx),
		"handler": HandlerFrom(ctx),
	} {
		if val == "" {
			continue
		}
		if _, explicit := fields[key]; !explicit {
			fields[key] = val
		}
	}
}

// rankKeys returns the field keys: ordered prefix first, the rest sorted.
func rankKeys(fields map[string]any, order []string) []string {
	keys := make([]string, 0, len(fields))
	inPrefix := make(map[string]struct{}, len(order))
	for _, key := range order {
		if _, ok := fields[key]; ok {
			keys = append(keys, key)
			inPrefix[key] = struct{}{}
		}
	}
	tail := len(keys)
	for key := range fields {
		if _, ok := inPrefix[key]; !ok {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys[tail:])
	return keys
}

func appendJSONLine(buf []byte, fields map[string]any, order []string) ([]byte, error) {
	buf = append(buf, '{')
	for i, key := range rankKeys(fields, order) {
		data, err := json.Marshal(fields[key])
		if err != nil {
			return nil, err
		}
		if i > 0 {
			buf = append(buf, ',')
		}
		buf = strconv.AppendQuote(buf, key)
		buf = append(buf, ':')
		buf = append(buf, data...)
	}
	return append(buf, '}'), nil
}

func appendKVLine(buf []byte, fields map[string]any, order []string) []byte {
	for i, key := range rankKeys(fields, order) {
		if i > 0 {
			buf = append(buf, ' ')
		}
		buf = append(buf, key...)
		buf = append(buf, '=')
		buf = appendKVValue(buf, fields[key])
	}
	return buf
}

func appendKVValue(buf []byte, val any) []byte {
	switch v := val.(type) {
	case string:
		if strings.IndexFunc(v, needsQuote) >= 0 {
			return strconv.AppendQuote(buf, v)
		}
		return append(buf, v...)
	case bool:
		return strconv.AppendBool(buf, v)
	case int64:
		return strconv.AppendInt(buf, v, 10)
	case uint64:
		return strconv.AppendUint(buf, v, 10)
	case float64:
		return strconv.AppendFloat(buf, v, 'g', -1, 64)
	case int:
		return strconv.AppendInt(buf, int64(v), 10)
	default:
		s := fmt.Sprint(v)
		if strings.IndexFunc(s, needsQuote) >= 0 {
			return strconv.AppendQuote(buf, s)
		}
		return append(buf, s...)
	}
}

func needsQuote(r rune) bool {
	return r <= 32 || r == '=' || r == '"'
}

func asString(v any) (string, bool) {
	switch val := v.(type) {
	case string:
		return val, true
	case fmt.Stringer:
		return val.String(), true
	default:
		return "", false
	}
}
