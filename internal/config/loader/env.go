package loader

import (
	"encoding/json"
	"os"
	"strconv"
	"strings"
	"time"
)

// DefaultEnvPrefix is the prefix of tedit environment variables.
const DefaultEnvPrefix = "TEDIT_"

// EnvLoader reads prefixed environment variables. Mapped variables go to
// their configured path; other prefixed variables are converted by name,
// so TEDIT_EDITOR_TAB_WIDTH sets editor.tabWidth.
type EnvLoader struct {
	prefix  string
	mapping map[string]string
	environ func() []string
}

// NewEnvLoader returns a loader with the default short names.
func NewEnvLoader(prefix string) *EnvLoader {
	return &EnvLoader{
		prefix:  prefix,
		mapping: defaultEnvMapping(prefix),
		environ: os.Environ,
	}
}

// NewEnvLoaderWithMapping returns a loader with a custom mapping.
func NewEnvLoaderWithMapping(prefix string, mapping map[string]string) *EnvLoader {
	return &EnvLoader{prefix: prefix, mapping: mapping, environ: os.Environ}
}

func defaultEnvMapping(prefix string) map[string]string {
	return map[string]string{
		prefix + "LOG_LEVEL":     "logging.level",
		prefix + "TAB_WIDTH":     "editor.tabWidth",
		prefix + "HISTORY_DEPTH": "editor.historyDepth",
		prefix + "DEFAULT_MODE":  "modes.default",
		prefix + "WATCH":         "watch.enabled",
	}
}

// AddMapping maps an environment variable to a configuration path.
func (l *EnvLoader) AddMapping(envVar, path string) {
	if l.mapping == nil {
		l.mapping = make(map[string]string)
	}
	l.mapping[envVar] = path
}

// Load collects every prefixed variable. Empty values count as set.
func (l *EnvLoader) Load() (map[string]any, error) {
	config := make(map[string]any)
	for _, kv := range l.environ() {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(name, l.prefix) {
			continue
		}
		path, mapped := l.mapping[name]
		if !mapped {
			path = l.envToPath(name)
		}
		if path == "" {
			continue
		}
		SetPath(config, path, ParseValue(value))
	}
	return config, nil
}

// envToPath converts TEDIT_EDITOR_TAB_WIDTH to editor.tabWidth.
func (l *EnvLoader) envToPath(env string) string {
	parts := strings.Split(strings.TrimPrefix(env, l.prefix), "_")
	if len(parts) == 0 || parts[0] == "" {
		return ""
	}
	section := strings.ToLower(parts[0])
	if len(parts) == 1 {
		return section
	}

	var sb strings.Builder
	sb.WriteString(strings.ToLower(parts[1]))
	for _, p := range parts[2:] {
		if p == "" {
			continue
		}
		sb.WriteString(strings.ToUpper(p[:1]))
		sb.WriteString(strings.ToLower(p[1:]))
	}
	return section + "." + sb.String()
}

// ParseValue converts an environment string to a bool, int, float,
// duration or JSON list when it looks like one.
func ParseValue(s string) any {
	if s == "" {
		return s
	}
	switch strings.ToLower(s) {
	case "true", "yes", "on":
		return true
	case "false", "no", "off":
		return false
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if strings.Contains(s, ".") {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	}
	if d, err := time.ParseDuration(s); err == nil {
		return d
	}
	if strings.HasPrefix(s, "[") || strings.HasPrefix(s, "{") {
		var v any
		if err := json.Unmarshal([]byte(s), &v); err == nil {
			return v
		}
	}
	return s
}
