package store

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/netconfig/netconfig/pkg/model"
	"github.com/netconfig/netconfig/pkg/util"
)

func TestMemoryStore(t *testing.T) {
	runStoreSuite(t, func(t *testing.T) Store { return NewMemoryStore() })
}

func TestMemoryStore_ConcurrentCreate(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	d, err := s.CreateDevice(ctx, model.Device{Hostname: "sw1", Vendor: model.VendorCisco})
	if err != nil {
		t.Fatalf("CreateDevice: %v", err)
	}

	var wg sync.WaitGroup
	for i := 1; i <= 50; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			if _, err := s.CreateVlan(ctx, model.Vlan{DeviceID: d.ID, VlanID: id, Name: "v"}); err != nil {
				t.Errorf("CreateVlan(%d): %v", id, err)
			}
		}(i)
	}
	wg.Wait()

	vlans, _ := s.ListVlans(ctx, d.ID)
	if len(vlans) != 50 {
		t.Errorf("ListVlans() = %d entries, want 50", len(vlans))
	}
}

func TestOpen(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantErr error
	}{
		{"default is memory", Options{}, nil},
		{"memory", Options{Backend: BackendMemory}, nil},
		{"redis without address", Options{Backend: BackendRedis}, util.ErrInvalidConfig},
		{"mysql without dsn", Options{Backend: BackendMySQL}, util.ErrInvalidConfig},
		{"unknown backend", Options{Backend: "etcd"}, util.ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Open(context.Background(), tt.opts)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Open() unexpected error: %v", err)
				}
				if _, ok := s.(*MemoryStore); !ok {
					t.Errorf("Open() = %T, want *MemoryStore", s)
				}
				s.Close()
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Open() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
