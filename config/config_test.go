package config_test

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/artpar/typesmith/config"
)

func TestLoad_ValidConfig(t *testing.T) {
	content := `
output:
  base_path: "frontend/src/types"
  extension: ".tsx"
  clean: false

logging:
  level: "debug"
  format: "json"

server:
  host: "0.0.0.0"
  port: 9090
  shutdown_timeout: 3s

metrics:
  enabled: true
  path: "/internal/metrics"
  prefix: "shapes"
`

	cfg := writeAndLoad(t, content)

	if cfg.Output.BasePath != "frontend/src/types" {
		t.Errorf("Output.BasePath = %s, want frontend/src/types", cfg.Output.BasePath)
	}
	if cfg.Output.Extension != ".tsx" {
		t.Errorf("Output.Extension = %s, want .tsx", cfg.Output.Extension)
	}
	if cfg.Output.ShouldClean() {
		t.Error("Output.ShouldClean() = true, want false")
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Errorf("Logging = %+v, want debug/json", cfg.Logging)
	}
	if cfg.Server.Addr() != "0.0.0.0:9090" {
		t.Errorf("Server.Addr() = %s, want 0.0.0.0:9090", cfg.Server.Addr())
	}
	if cfg.Server.ShutdownTimeout != 3*time.Second {
		t.Errorf("Server.ShutdownTimeout = %v, want 3s", cfg.Server.ShutdownTimeout)
	}
	if !cfg.Metrics.Enabled || cfg.Metrics.Path != "/internal/metrics" || cfg.Metrics.Prefix != "shapes" {
		t.Errorf("Metrics = %+v", cfg.Metrics)
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg := writeAndLoad(t, "")

	if cfg.Output.BasePath != config.DefaultBasePath {
		t.Errorf("default BasePath = %s, want %s", cfg.Output.BasePath, config.DefaultBasePath)
	}
	if cfg.Output.BasePath != "app/javascript/types/__generated__" {
		t.Errorf("DefaultBasePath = %s", cfg.Output.BasePath)
	}
	if cfg.Output.Extension != ".ts" {
		t.Errorf("default Extension = %s, want .ts", cfg.Output.Extension)
	}
	if !cfg.Output.ShouldClean() {
		t.Error("default ShouldClean() = false, want true")
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("default Logging.Level = %s, want info", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "console" {
		t.Errorf("default Logging.Format = %s, want console", cfg.Logging.Format)
	}
	if cfg.Server.Host != "127.0.0.1" || cfg.Server.Port != 8080 {
		t.Errorf("default Server = %s:%d, want 127.0.0.1:8080", cfg.Server.Host, cfg.Server.Port)
	}
	if cfg.Server.ShutdownTimeout != 10*time.Second {
		t.Errorf("default ShutdownTimeout = %v, want 10s", cfg.Server.ShutdownTimeout)
	}
	if cfg.Metrics.Enabled {
		t.Error("metrics should be disabled by default")
	}
	if cfg.Metrics.Path != "/metrics" || cfg.Metrics.Prefix != "typesmith" {
		t.Errorf("default Metrics = %+v", cfg.Metrics)
	}
}

func TestLoad_ExtensionWithoutDot(t *testing.T) {
	cfg := writeAndLoad(t, `
output:
  extension: "ts"
`)
	if cfg.Output.Extension != ".ts" {
		t.Errorf("Extension = %s, want .ts", cfg.Output.Extension)
	}
}

func TestLoad_EnvExpansion(t *testing.T) {
	t.Setenv("TEST_TYPES_ROOT", "packages/web")

	cfg := writeAndLoad(t, `
output:
  base_path: "${TEST_TYPES_ROOT}/types"
`)

	if cfg.Output.BasePath != "packages/web/types" {
		t.Errorf("BasePath = %s, want packages/web/types", cfg.Output.BasePath)
	}
}

func TestLoad_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "root base path",
			content: "output:\n  base_path: \".\"\n",
			wantErr: "output.base_path",
		},
		{
			name:    "filesystem root",
			content: "output:\n  base_path: \"/\"\n",
			wantErr: "output.base_path",
		},
		{
			name:    "compound extension",
			content: "output:\n  extension: \".d.ts\"\n",
			wantErr: "output.extension",
		},
		{
			name:    "bare dot extension",
			content: "output:\n  extension: \".\"\n",
			wantErr: "output.extension",
		},
		{
			name:    "unknown log level",
			content: "logging:\n  level: \"trace\"\n",
			wantErr: "logging.level",
		},
		{
			name:    "unknown log format",
			content: "logging:\n  format: \"xml\"\n",
			wantErr: "logging.format",
		},
		{
			name:    "port out of range",
			content: "server:\n  port: 70000\n",
			wantErr: "server.port",
		},
		{
			name:    "relative metrics path",
			content: "metrics:\n  path: \"metrics\"\n",
			wantErr: "metrics.path",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.content)
			_, err := config.Load(path)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want mention of %s", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "output: [unterminated")
	if _, err := config.Load(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestLoad_FileNotFound(t *testing.T) {
	if _, err := config.Load("/nonexistent/typesmith.yaml"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestParse(t *testing.T) {
	cfg, err := config.Parse([]byte("output:\n  base_path: generated\n"))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if cfg.Output.BasePath != "generated" {
		t.Errorf("BasePath = %s, want generated", cfg.Output.BasePath)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("TYPESMITH_OUTPUT_BASE_PATH", "env/types")
	t.Setenv("TYPESMITH_OUTPUT_EXTENSION", "mts")
	t.Setenv("TYPESMITH_OUTPUT_CLEAN", "no")
	t.Setenv("TYPESMITH_LOG_LEVEL", "warn")
	t.Setenv("TYPESMITH_LOG_FORMAT", "json")
	t.Setenv("TYPESMITH_SERVER_HOST", "0.0.0.0")
	t.Setenv("TYPESMITH_SERVER_PORT", "9191")
	t.Setenv("TYPESMITH_SERVER_SHUTDOWN_TIMEOUT", "2s")
	t.Setenv("TYPESMITH_METRICS_ENABLED", "on")
	t.Setenv("TYPESMITH_METRICS_PATH", "/stats")

	cfg, err := config.LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv error: %v", err)
	}

	if cfg.Output.BasePath != "env/types" {
		t.Errorf("BasePath = %s, want env/types", cfg.Output.BasePath)
	}
	if cfg.Output.Extension != ".mts" {
		t.Errorf("Extension = %s, want .mts", cfg.Output.Extension)
	}
	if cfg.Output.ShouldClean() {
		t.Error("ShouldClean() = true, want false")
	}
	if cfg.Logging.Level != "warn" || cfg.Logging.Format != "json" {
		t.Errorf("Logging = %+v", cfg.Logging)
	}
	if cfg.Server.Addr() != "0.0.0.0:9191" {
		t.Errorf("Addr = %s, want 0.0.0.0:9191", cfg.Server.Addr())
	}
	if cfg.Server.ShutdownTimeout != 2*time.Second {
		t.Errorf("ShutdownTimeout = %v, want 2s", cfg.Server.ShutdownTimeout)
	}
	if !cfg.Metrics.Enabled || cfg.Metrics.Path != "/stats" {
		t.Errorf("Metrics = %+v", cfg.Metrics)
	}
}

func TestLoadFromEnv_Invalid(t *testing.T) {
	t.Setenv("TYPESMITH_LOG_LEVEL", "loud")
	if _, err := config.LoadFromEnv(); err == nil {
		t.Error("expected validation error")
	}
}

func TestEnvOverridesFile(t *testing.T) {
	t.Setenv("TYPESMITH_OUTPUT_BASE_PATH", "from/env")
	t.Setenv("TYPESMITH_OUTPUT_CLEAN", "true")

	cfg := writeAndLoad(t, `
output:
  base_path: "from/file"
  clean: false
  extension: ".tsx"
`)

	if cfg.Output.BasePath != "from/env" {
		t.Errorf("BasePath = %s, want from/env", cfg.Output.BasePath)
	}
	if !cfg.Output.ShouldClean() {
		t.Error("env should re-enable clean")
	}
	if cfg.Output.Extension != ".tsx" {
		t.Errorf("file value should survive, Extension = %s", cfg.Output.Extension)
	}
}

func TestEnvOverrides_InvalidValuesIgnored(t *testing.T) {
	t.Setenv("TYPESMITH_SERVER_PORT", "not-a-port")
	t.Setenv("TYPESMITH_SERVER_SHUTDOWN_TIMEOUT", "soon")

	cfg := writeAndLoad(t, `
server:
  port: 7070
`)

	if cfg.Server.Port != 7070 {
		t.Errorf("Port = %d, want 7070", cfg.Server.Port)
	}
	if cfg.Server.ShutdownTimeout != 10*time.Second {
		t.Errorf("ShutdownTimeout = %v, want default 10s", cfg.Server.ShutdownTimeout)
	}
}

func TestParseBoolValues(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"true", true},
		{"TRUE", true},
		{"1", true},
		{"yes", true},
		{" on ", true},
		{"false", false},
		{"0", false},
		{"off", false},
		{"maybe", false},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Setenv("TYPESMITH_METRICS_ENABLED", tt.value)
			cfg, err := config.LoadFromEnv()
			if err != nil {
				t.Fatalf("LoadFromEnv error: %v", err)
			}
			if cfg.Metrics.Enabled != tt.want {
				t.Errorf("Metrics.Enabled for %q = %v, want %v", tt.value, cfg.Metrics.Enabled, tt.want)
			}
		})
	}
}

func TestLoadWithFallback_FileExists(t *testing.T) {
	path := writeConfig(t, "output:\n  base_path: from/file\n")

	cfg, err := config.LoadWithFallback(path)
	if err != nil {
		t.Fatalf("LoadWithFallback error: %v", err)
	}
	if cfg.Output.BasePath != "from/file" {
		t.Errorf("BasePath = %s, want from/file", cfg.Output.BasePath)
	}
}

func TestLoadWithFallback_MissingFile(t *testing.T) {
	t.Setenv("TYPESMITH_OUTPUT_BASE_PATH", "from/env")

	cfg, err := config.LoadWithFallback(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadWithFallback error: %v", err)
	}
	if cfg.Output.BasePath != "from/env" {
		t.Errorf("BasePath = %s, want from/env", cfg.Output.BasePath)
	}
}

func TestLoadWithFallback_EmptyPath(t *testing.T) {
	cfg, err := config.LoadWithFallback("")
	if err != nil {
		t.Fatalf("LoadWithFallback error: %v", err)
	}
	if cfg.Output.Extension != ".ts" {
		t.Errorf("Extension = %s, want .ts", cfg.Output.Extension)
	}
}

func writeAndLoad(t *testing.T, content string) *config.Config {
	t.Helper()
	path := writeConfig(t, content)
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	return cfg
}
