package store_test

import (
	"context"
	"strings"
	"testing"

	"github.com/jensholdgaard/player-auction/internal/config"
	"github.com/jensholdgaard/player-auction/internal/store"

	// Import drivers so their init() functions register them.
	_ "github.com/jensholdgaard/player-auction/internal/store/memory"
	_ "github.com/jensholdgaard/player-auction/internal/store/postgres"
)

// fakeDriver is a store.Driver that always succeeds without opening anything.
func fakeDriver(_ context.Context, _ config.DatabaseConfig) (*store.Repositories, error) {
	return &store.Repositories{}, nil
}

func TestOpen(t *testing.T) {
	store.Register("test-driver", fakeDriver)

	tests := []struct {
		name    string
		driver  string
		wantErr bool
	}{
		{
			name:    "registered driver succeeds",
			driver:  "test-driver",
			wantErr: false,
		},
		{
			name:    "memory driver with built-in seed",
			driver:  "memory",
			wantErr: false,
		},
		{
			name:    "unknown driver fails",
			driver:  "nonexistent",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DatabaseConfig{Driver: tt.driver}
			_, err := store.Open(context.Background(), cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("Open(driver=%q) error = %v, wantErr %v", tt.driver, err, tt.wantErr)
			}
		})
	}
}

func TestRegister_Postgres(t *testing.T) {
	// Nothing listens on port 1, so the driver must fail to connect rather
	// than be reported as unknown.
	cfg := config.DatabaseConfig{Driver: "postgres", Host: "127.0.0.1", Port: 1, SSLMode: "disable"}
	_, err := store.Open(context.Background(), cfg)
	if err == nil {
		t.Fatal("expected connection error, got nil")
	}
	if strings.Contains(err.Error(), "unknown store driver") {
		t.Errorf("expected connection error, got unknown driver error: %v", err)
	}
}
