package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseConfig(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantLimit int
		wantCheck bool
		wantLevel string
		wantErr   string
	}{
		{
			name:      "empty uses defaults",
			input:     ``,
			wantLimit: DefaultEqualityLimit,
			wantLevel: DefaultLogLevel,
		},
		{
			name:      "all fields",
			input:     "equality_limit: 7\ncheck_fixpoint: true\nlog_level: debug\n",
			wantLimit: 7,
			wantCheck: true,
			wantLevel: "debug",
		},
		{
			name:    "negative limit",
			input:   "equality_limit: -3\n",
			wantErr: "equality_limit must be positive",
		},
		{
			name:    "unknown level",
			input:   "log_level: loud\n",
			wantErr: "unknown log_level",
		},
		{
			name:    "malformed yaml",
			input:   "equality_limit: [1\n",
			wantErr: "parsing",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := ParseConfig([]byte(tt.input), "termcore.yaml")
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("ParseConfig() error = %v, want containing %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseConfig() unexpected error: %v", err)
			}
			if cfg.EqualityLimit != tt.wantLimit {
				t.Errorf("EqualityLimit = %d, want %d", cfg.EqualityLimit, tt.wantLimit)
			}
			if cfg.CheckFixpoint != tt.wantCheck {
				t.Errorf("CheckFixpoint = %v, want %v", cfg.CheckFixpoint, tt.wantCheck)
			}
			if cfg.LogLevel != tt.wantLevel {
				t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, tt.wantLevel)
			}
		})
	}
}

func TestFindConfigWalksUp(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	got, err := FindConfig(nested)
	if err != nil {
		t.Fatal(err)
	}
	if got != "" {
		t.Fatalf("FindConfig() = %q before any file exists", got)
	}

	want := filepath.Join(root, "termcore.yml")
	if err := os.WriteFile(want, []byte("check_fixpoint: true\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err = FindConfig(nested)
	if err != nil {
		t.Fatal(err)
	}
	if got != want {
		t.Fatalf("FindConfig() = %q, want %q", got, want)
	}

	cfg, err := LoadConfig(got)
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.CheckFixpoint {
		t.Errorf("loaded config lost check_fixpoint")
	}
}

func TestNewLogger(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error"} {
		logger, err := NewLogger(&Config{LogLevel: level})
		if err != nil {
			t.Fatalf("NewLogger(%s): %v", level, err)
		}
		if logger == nil {
			t.Fatalf("NewLogger(%s) returned nil", level)
		}
	}
}
