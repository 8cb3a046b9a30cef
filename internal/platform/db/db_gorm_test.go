package db

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"gorm.io/gorm"
)

func init() {
	retryInterval = 10 * time.Millisecond
}

// TestBuildDSN はドライバーごとのDSN文字列が正しく生成されることを検証します。
func TestBuildDSN(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		cfg      Config
		expected string
	}{
		{
			name: "postgres from parts",
			cfg: Config{
				Driver:   DriverPostgres,
				User:     "testuser",
				Password: "testpass",
				Name:     "testdb",
				Host:     "localhost",
				Port:     "5432",
			},
			expected: "host=localhost user=testuser password=testpass dbname=testdb port=5432 sslmode=disable TimeZone=UTC",
		},
		{
			name: "explicit DSN takes precedence",
			cfg: Config{
				Driver: DriverPostgres,
				DSN:    "postgres://u:p@db:5432/app",
				Host:   "localhost",
			},
			expected: "postgres://u:p@db:5432/app",
		},
		{
			name:     "sqlite path",
			cfg:      Config{Driver: DriverSQLite, SQLitePath: "/tmp/dental.db"},
			expected: "/tmp/dental.db",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if dsn := BuildDSN(tt.cfg); dsn != tt.expected {
				t.Errorf("expected DSN %q, got %q", tt.expected, dsn)
			}
		})
	}
}

// TestConnectWithRetry_SuccessOnFirstTry は初回接続成功時にリトライせずDBを返すことを検証します。
func TestConnectWithRetry_SuccessOnFirstTry(t *testing.T) {
	mockDB := &gorm.DB{}
	attemptCount := 0
	opener := func(dsn string) (*gorm.DB, error) {
		attemptCount++
		return mockDB, nil
	}

	db, err := ConnectWithRetry("test-dsn", 5*time.Second, opener)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if db != mockDB {
		t.Error("expected mock DB to be returned")
	}
	if attemptCount != 1 {
		t.Errorf("expected 1 attempt, got %d", attemptCount)
	}
}

// TestConnectWithRetry_RetriesOnFailure は接続失敗時にリトライして最終的に成功することを検証します。
func TestConnectWithRetry_RetriesOnFailure(t *testing.T) {
	mockDB := &gorm.DB{}
	attemptCount := 0
	opener := func(dsn string) (*gorm.DB, error) {
		attemptCount++
		if attemptCount < 3 {
			return nil, errors.New("connection refused")
		}
		return mockDB, nil
	}

	db, err := ConnectWithRetry("test-dsn", 5*time.Second, opener)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if db != mockDB {
		t.Error("expected mock DB to be returned")
	}
	if attemptCount != 3 {
		t.Errorf("expected 3 attempts, got %d", attemptCount)
	}
}

// TestConnectWithRetry_Timeout はタイムアウト後にエラーが返されることを検証します。
func TestConnectWithRetry_Timeout(t *testing.T) {
	attemptCount := 0
	opener := func(dsn string) (*gorm.DB, error) {
		attemptCount++
		return nil, errors.New("connection refused")
	}

	_, err := ConnectWithRetry("test-dsn", 50*time.Millisecond, opener)

	if err == nil {
		t.Fatal("expected error after timeout, got nil")
	}
	if attemptCount < 1 {
		t.Errorf("expected at least 1 attempt, got %d", attemptCount)
	}
}

// TestNewOpener_UnsupportedDriver は未対応のドライバー名でエラーになることを検証します。
func TestNewOpener_UnsupportedDriver(t *testing.T) {
	t.Parallel()

	if _, err := NewOpener("mysql"); err == nil {
		t.Error("expected error for unsupported driver")
	}
}

type testModel struct {
	ID   uint
	Name string
}

// TestOpenDB_SQLite はSQLiteで接続とマイグレーションが行われることを検証します。
func TestOpenDB_SQLite(t *testing.T) {
	t.Parallel()

	cfg := Config{
		Driver:     DriverSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "test.db"),
		Timeout:    time.Second,
	}

	db, err := OpenDB(cfg, &testModel{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !db.Migrator().HasTable(&testModel{}) {
		t.Error("expected table to be migrated")
	}
}

// TestLoadConfigFromEnv は環境変数からConfigが正しく読み込まれることを検証します。
func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DB_DSN", "")
	t.Setenv("DB_USER", "envuser")
	t.Setenv("DB_PASSWORD", "envpass")
	t.Setenv("DB_NAME", "envdb")
	t.Setenv("DB_HOST", "envhost")
	t.Setenv("DB_PORT", "")
	t.Setenv("SQLITE_PATH", "")

	cfg := LoadConfigFromEnv()

	if !cfg.Enabled() {
		t.Error("expected config to be enabled")
	}
	if cfg.User != "envuser" || cfg.Password != "envpass" || cfg.Name != "envdb" || cfg.Host != "envhost" {
		t.Errorf("unexpected connection settings: %+v", cfg)
	}
	if cfg.Port != "5432" {
		t.Errorf("expected default Port '5432', got %q", cfg.Port)
	}
	if cfg.SQLitePath != DefaultSQLitePath {
		t.Errorf("expected default SQLite path, got %q", cfg.SQLitePath)
	}

	t.Setenv("DB_DRIVER", "")
	if LoadConfigFromEnv().Enabled() {
		t.Error("expected config to be disabled without DB_DRIVER")
	}
}
