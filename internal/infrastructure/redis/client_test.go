package redis

import (
	"context"
	"fmt"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
)

func TestNewClient(t *testing.T) {
	up := miniredis.RunT(t)
	down := miniredis.RunT(t)
	downAddr := down.Addr()
	down.Close()

	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"reachable", Config{URL: fmt.Sprintf("redis://%s", up.Addr())}, false},
		{"reachable with db", Config{URL: fmt.Sprintf("redis://%s/2", up.Addr())}, false},
		{"malformed", Config{URL: "://bad-url"}, true},
		{"server down", Config{URL: fmt.Sprintf("redis://%s", downAddr), PingTimeout: 500 * time.Millisecond}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewClient(context.Background(), tt.cfg)
			if tt.wantErr {
				if err == nil {
					client.Close()
					t.Fatalf("expected error for %s", tt.cfg.URL)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			defer client.Close()

			if err := client.Ping(context.Background()).Err(); err != nil {
				t.Fatalf("ping failed: %v", err)
			}
		})
	}
}

func TestNewClientAppliesOverrides(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewClient(context.Background(), Config{
		URL:         fmt.Sprintf("redis://%s?pool_size=3", mr.Addr()),
		PoolSize:    17,
		DialTimeout: 2 * time.Second,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer client.Close()

	opts := client.Options()
	if opts.PoolSize != 17 || opts.DialTimeout != 2*time.Second {
		t.Fatalf("overrides not applied: pool=%d dial=%v", opts.PoolSize, opts.DialTimeout)
	}
}
