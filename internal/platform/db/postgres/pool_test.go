package postgres

import (
	"testing"
	"time"

	"github.com/ogurasousui/hr-attendance-api/internal/platform/config"
)

func TestBuildPoolConfig(t *testing.T) {
	t.Parallel()

	dbCfg := config.DatabaseConfig{
		Host:            "localhost",
		Port:            15432,
		User:            "hr",
		Password:        "secret",
		Name:            "hr_attendance",
		SSLMode:         "disable",
		MaxOpenConns:    25,
		MaxIdleConns:    4,
		ConnMaxLifetime: 45 * time.Minute,
		ConnMaxIdleTime: 5 * time.Minute,
	}

	poolCfg, err := buildPoolConfig(dbCfg)
	if err != nil {
		t.Fatalf("buildPoolConfig returned error: %v", err)
	}

	if poolCfg.MaxConns != 25 {
		t.Errorf("expected MaxConns 25, got %d", poolCfg.MaxConns)
	}

	if poolCfg.MinConns != 4 {
		t.Errorf("expected MinConns 4, got %d", poolCfg.MinConns)
	}

	if poolCfg.MaxConnLifetime != 45*time.Minute {
		t.Errorf("unexpected MaxConnLifetime: %v", poolCfg.MaxConnLifetime)
	}

	if poolCfg.MaxConnIdleTime != 5*time.Minute {
		t.Errorf("unexpected MaxConnIdleTime: %v", poolCfg.MaxConnIdleTime)
	}

	if poolCfg.ConnConfig.Database != "hr_attendance" {
		t.Errorf("expected database hr_attendance, got %s", poolCfg.ConnConfig.Database)
	}
}

func TestBuildPoolConfigDefaultsUntouched(t *testing.T) {
	t.Parallel()

	dbCfg := config.DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "hr",
		Password: "secret",
		Name:     "hr_attendance",
		SSLMode:  "disable",
	}

	poolCfg, err := buildPoolConfig(dbCfg)
	if err != nil {
		t.Fatalf("buildPoolConfig returned error: %v", err)
	}

	if poolCfg.MaxConns <= 0 {
		t.Errorf("expected pgxpool default MaxConns, got %d", poolCfg.MaxConns)
	}
}
