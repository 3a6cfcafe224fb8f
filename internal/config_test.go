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

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	if cfg.Storage.Path != "./saved_appointments.txt" {
		t.Errorf("storage path = %q", cfg.Storage.Path)
	}
}

func TestStorageConfig_EmptyDriverDefaultsFile(t *testing.T) {
	cfg := StorageConfig{Path: "book.txt"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty driver should default to file: %v", err)
	}
	if cfg.Driver != DriverFile {
		t.Errorf("driver = %q, want %q", cfg.Driver, DriverFile)
	}
}

func TestStorageConfig_DriverRequirements(t *testing.T) {
	tests := []struct {
		name    string
		cfg     StorageConfig
		wantErr bool
	}{
		{"file with path", StorageConfig{Driver: DriverFile, Path: "a.txt"}, false},
		{"file without path", StorageConfig{Driver: DriverFile}, true},
		{"postgres with dsn", StorageConfig{Driver: DriverPostgres, DSN: "postgres://localhost/appts"}, false},
		{"postgres without dsn", StorageConfig{Driver: DriverPostgres, Path: "a.txt"}, true},
		{"unknown driver", StorageConfig{Driver: "mysql", Path: "a.txt"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestWatchConfig_RefreshCron(t *testing.T) {
	cfg := WatchConfig{RefreshCron: "*/5 * * * *"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("valid cron should pass: %v", err)
	}
	if cfg.Debounce == 0 {
		t.Error("debounce should be defaulted")
	}

	cfg = WatchConfig{RefreshCron: "every five minutes"}
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "refresh_cron") {
		t.Errorf("invalid cron err = %v", err)
	}
}

func TestApplicationConfig_Timezone(t *testing.T) {
	cfg := ApplicationConfig{Timezone: "UTC", HTTP: HTTPConfig{Port: 8080}}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("UTC should pass: %v", err)
	}
	if cfg.Location().String() != "UTC" {
		t.Errorf("location = %v", cfg.Location())
	}

	cfg.Timezone = "Mars/Olympus_Mons"
	if err := cfg.Validate(); err == nil {
		t.Error("unknown timezone should fail validation")
	}
}
