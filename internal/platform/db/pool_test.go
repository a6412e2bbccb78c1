package db

import (
	"testing"
	"time"
)

func TestPoolConfig(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		max     int32
		min     int32
		wantApp string
		wantErr bool
	}{
		{"defaults app name", "postgres://lab:pw@localhost:5432/primelabs", 10, 2, ApplicationName, false},
		{"keeps app name from url", "postgres://lab:pw@localhost:5432/primelabs?application_name=reports", 10, 2, "reports", false},
		{"min above max", "postgres://lab:pw@localhost:5432/primelabs", 2, 5, "", true},
		{"bad url", "postgres://lab:pw@localhost:notaport/primelabs", 10, 2, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := PoolConfig(tt.url, tt.max, tt.min)
			if (err != nil) != tt.wantErr {
				t.Fatalf("PoolConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if cfg.MaxConns != tt.max || cfg.MinConns != tt.min {
				t.Errorf("conns = %d/%d, want %d/%d", cfg.MaxConns, cfg.MinConns, tt.max, tt.min)
			}
			if cfg.HealthCheckPeriod != time.Minute || cfg.MaxConnIdleTime != 5*time.Minute {
				t.Errorf("unexpected timings: health %v idle %v", cfg.HealthCheckPeriod, cfg.MaxConnIdleTime)
			}
			if got := cfg.ConnConfig.RuntimeParams["application_name"]; got != tt.wantApp {
				t.Errorf("application_name = %q, want %q", got, tt.wantApp)
			}
		})
	}
}
