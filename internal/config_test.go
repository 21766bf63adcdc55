package internal

import (
	"strings"
	"testing"
)

func TestAuthConfig_DisabledMode(t *testing.T) {
	cfg := AuthConfig{Mode: "disabled", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled mode should pass: %v", err)
	}
	if cfg.AuthEnabled() {
		t.Error("disabled mode should not be enabled")
	}
}

func TestAuthConfig_EmptyModeDefaultsDisabled(t *testing.T) {
	cfg := AuthConfig{Mode: "", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty mode should default to disabled: %v", err)
	}
	if cfg.Mode != AuthModeDisabled {
		t.Errorf("mode = %q, want %q", cfg.Mode, AuthModeDisabled)
	}
}

func TestAuthConfig_TokenModeValid(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: "mysecret"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("token mode with token should pass: %v", err)
	}
	if !cfg.AuthEnabled() {
		t.Error("token mode should be enabled")
	}
}

func TestAuthConfig_TokenModeEmptyToken(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: ""}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("token mode with empty token should fail")
	}
	if !strings.Contains(err.Error(), "token is empty") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestAuthConfig_InvalidMode(t *testing.T) {
	cfg := AuthConfig{Mode: "magic", Token: "x"}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("invalid mode should fail validation")
	}
}

func TestFullConfig_AuthValidationCalled(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Auth.Mode = "token"
	cfg.Auth.Token = ""
	err := cfg.Validate()
	if err == nil {
		t.Fatal("full config validate should catch auth error")
	}
}

func TestDefaultConfigValid(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	if cfg.Library.Path != "./scores" {
		t.Errorf("library path = %q", cfg.Library.Path)
	}
	if cfg.Import.MaxFileSize != 20<<20 {
		t.Errorf("max file size = %d", cfg.Import.MaxFileSize)
	}
}

func TestImportConfig_RequiresSize(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Import.MaxFileSize = 0
	err := cfg.Validate()
	if err == nil {
		t.Fatal("zero max_file_size should fail")
	}
	if !strings.HasPrefix(err.Error(), "import:") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestMIDIConfig_Ranges(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*MIDIConfig)
		wantErr bool
	}{
		{"defaults", func(*MIDIConfig) {}, false},
		{"velocity too high", func(c *MIDIConfig) { c.Velocity = 200 }, true},
		{"tiny resolution", func(c *MIDIConfig) { c.TicksPerQuarter = 4 }, true},
		{"no tempo", func(c *MIDIConfig) { c.DefaultTempo = 0 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewDefaultConfig().MIDI
			tt.mutate(&c)
			if err := c.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestMIDIConfig_Options(t *testing.T) {
	c := MIDIConfig{TicksPerQuarter: 480, DefaultTempo: 90, Velocity: 100}
	o := c.Options()
	if o.TicksPerQuarter != 480 || o.Tempo != 90 || o.Velocity != 100 {
		t.Errorf("options = %+v", o)
	}
}
