package config

import (
	"reflect"
	"testing"
)

func TestParseToolServersEnv(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []ToolServerConfig
	}{
		{
			name: "single server with args",
			raw:  "weather=python3 tools/weather.py --fast",
			want: []ToolServerConfig{
				{Name: "weather", Command: "python3", Args: []string{"tools/weather.py", "--fast"}},
			},
		},
		{
			name: "multiple servers",
			raw:  "weather=python3 weather.py; calc=./calc-server",
			want: []ToolServerConfig{
				{Name: "weather", Command: "python3", Args: []string{"weather.py"}},
				{Name: "calc", Command: "./calc-server", Args: []string{}},
			},
		},
		{
			name: "skips malformed entries",
			raw:  "no-equals-sign; ok=run; empty-command=",
			want: []ToolServerConfig{
				{Name: "ok", Command: "run", Args: []string{}},
			},
		},
		{
			name: "empty value",
			raw:  "  ",
			want: nil,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ParseToolServersEnv(tc.raw)
			if len(got) != len(tc.want) {
				t.Fatalf("got %d servers, want %d: %+v", len(got), len(tc.want), got)
			}
			for i := range got {
				if got[i].Name != tc.want[i].Name || got[i].Command != tc.want[i].Command {
					t.Errorf("server %d = %+v, want %+v", i, got[i], tc.want[i])
				}
				if !reflect.DeepEqual([]string(got[i].Args), tc.want[i].Args) && len(got[i].Args)+len(tc.want[i].Args) > 0 {
					t.Errorf("server %d args = %v, want %v", i, got[i].Args, tc.want[i].Args)
				}
			}
		})
	}
}

func TestOverrideByEnv(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("LLM_MODEL", "google/gemini-2.0-flash")
	t.Setenv("MAX_FILE_SIZE_MB", "25")
	t.Setenv("STORAGE_ALLOWED_TYPES", "image/*, application/pdf")
	t.Setenv("TOOL_SERVERS", "weather=python3 weather.py")

	cfg := defaultConfig()
	overrideByEnv(cfg)

	if cfg.App.Port != 9090 {
		t.Errorf("port = %d, want 9090", cfg.App.Port)
	}
	if cfg.LLM.Model != "google/gemini-2.0-flash" {
		t.Errorf("model = %q", cfg.LLM.Model)
	}
	if cfg.Storage.MaxSizeMB != 25 {
		t.Errorf("max size = %d, want 25", cfg.Storage.MaxSizeMB)
	}
	if !reflect.DeepEqual(cfg.Storage.AllowedTypes, []string{"image/*", "application/pdf"}) {
		t.Errorf("allowed types = %v", cfg.Storage.AllowedTypes)
	}
	if len(cfg.ToolServers) != 1 || cfg.ToolServers[0].Name != "weather" {
		t.Errorf("tool servers = %+v", cfg.ToolServers)
	}
}

func TestGetEnvAsIntFallsBackOnGarbage(t *testing.T) {
	t.Setenv("SOME_INT", "not-a-number")
	if got := getEnvAsInt("SOME_INT", 7); got != 7 {
		t.Errorf("got %d, want fallback 7", got)
	}
	t.Setenv("SOME_INT", "42")
	if got := getEnvAsInt("SOME_INT", 7); got != 42 {
		t.Errorf("got %d, want 42", got)
	}
}

func TestMySQLDSN(t *testing.T) {
	cfg := defaultConfig()
	cfg.MySQL.User = "app"
	cfg.MySQL.Password = "secret"
	cfg.MySQL.Host = "db"
	cfg.MySQL.Port = 3307
	cfg.MySQL.DB = "chat"
	cfg.MySQL.Params = "parseTime=true"

	want := "app:secret@tcp(db:3307)/chat?parseTime=true"
	if got := cfg.MySQLDSN(); got != want {
		t.Errorf("dsn = %q, want %q", got, want)
	}
}
