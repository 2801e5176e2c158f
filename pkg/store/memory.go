package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/netconfig/netconfig/pkg/model"
	"github.com/netconfig/netconfig/pkg/util"
)

// table is an insertion-ordered map of records
type table[T any] struct {
	rows  map[string]T
	order []string
	clone func(T) T
}

func newTable[T any](clone func(T) T) *table[T] {
	if clone == nil {
		clone = func(v T) T { return v }
	}
	return &table[T]{rows: make(map[string]T), clone: clone}
}

func (t *table[T]) get(id string) (T, bool) {
	v, ok := t.rows[id]
	if !ok {
		return v, false
	}
	return t.clone(v), true
}

func (t *table[T]) has(id string) bool {
	_, ok := t.rows[id]
	return ok
}

func (t *table[T]) put(id string, v T) {
	if _, ok := t.rows[id]; !ok {
		t.order = append(t.order, id)
	}
	t.rows[id] = t.clone(v)
}

func (t *table[T]) delete(id string) bool {
	if _, ok := t.rows[id]; !ok {
		return false
	}
	delete(t.rows, id)
	for i, o := range t.order {
		if o == id {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
	return true
}

func (t *table[T]) list(match func(T) bool) []T {
	result := make([]T, 0)
	for _, id := range t.order {
		v := t.rows[id]
		if match == nil || match(v) {
			result = append(result, t.clone(v))
		}
	}
	return result
}

func (t *table[T]) deleteWhere(match func(T) bool) {
	kept := t.order[:0]
	for _, id := range t.order {
		if match(t.rows[id]) {
			delete(t.rows, id)
			continue
		}
		kept = append(kept, id)
	}
	t.order = kept
}

// MemoryStore keeps records in process memory. Records handed out are
// copies, so callers may modify them freely.
type MemoryStore struct {
	mu         sync.RWMutex
	devices    *table[model.Device]
	interfaces *table[model.Interface]
	vlans      *table[model.Vlan]
	groups     *table[model.LacpGroup]
}

// NewMemoryStore returns an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		devices:    newTable(model.Device.Clone),
		interfaces: newTable(model.Interface.Clone),
		vlans:      newTable[model.Vlan](nil),
		groups:     newTable[model.LacpGroup](nil),
	}
}

func assignID(id *string) {
	if *id == "" {
		*id = uuid.NewString()
	}
}

func alreadyExists(kind, id string) error {
	return fmt.Errorf("%s '%s': %w", kind, id, util.ErrAlreadyExists)
}

// ---- devices ----

func (s *MemoryStore) ListDevices(ctx context.Context) ([]model.Device, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.devices.list(nil), nil
}

func (s *MemoryStore) GetDevice(ctx context.Context, id string) (model.Device, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.devices.get(id)
	if !ok {
		return model.Device{}, notFound(KindDevice, id)
	}
	return d, nil
}

func (s *MemoryStore) CreateDevice(ctx context.Context, d model.Device) (model.Device, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	assignID(&d.ID)
	if s.devices.has(d.ID) {
		return model.Device{}, alreadyExists(KindDevice, d.ID)
	}
	s.devices.put(d.ID, d)
	return d.Clone(), nil
}

func (s *MemoryStore) UpdateDevice(ctx context.Context, id string, u model.DeviceUpdate) (model.Device, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.devices.get(id)
	if !ok {
		return model.Device{}, notFound(KindDevice, id)
	}
	u.Apply(&d)
	s.devices.put(id, d)
	return d, nil
}

func (s *MemoryStore) DeleteDevice(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.devices.delete(id) {
		return notFound(KindDevice, id)
	}
	s.interfaces.deleteWhere(func(i model.Interface) bool { return i.DeviceID == id })
	s.vlans.deleteWhere(func(v model.Vlan) bool { return v.DeviceID == id })
	s.groups.deleteWhere(func(g model.LacpGroup) bool { return g.DeviceID == id })
	return nil
}

// ---- interfaces ----

func (s *MemoryStore) ListInterfaces(ctx context.Context, deviceID string) ([]model.Interface, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.interfaces.list(func(i model.Interface) bool { return i.DeviceID == deviceID }), nil
}

func (s *MemoryStore) GetInterface(ctx context.Context, id string) (model.Interface, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.interfaces.get(id)
	if !ok {
		return model.Interface{}, notFound(KindInterface, id)
	}
	return i, nil
}

func (s *MemoryStore) CreateInterface(ctx context.Context, i model.Interface) (model.Interface, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	assignID(&i.ID)
	if s.interfaces.has(i.ID) {
		return model.Interface{}, alreadyExists(KindInterface, i.ID)
	}
	s.interfaces.put(i.ID, i)
	return i.Clone(), nil
}

func (s *MemoryStore) UpdateInterface(ctx context.Context, id string, u model.InterfaceUpdate) (model.Interface, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.interfaces.get(id)
	if !ok {
		return model.Interface{}, notFound(KindInterface, id)
	}
	u.Apply(&i)
	s.interfaces.put(id, i)
	return i, nil
}

func (s *MemoryStore) DeleteInterfacesByDevice(ctx context.Context, deviceID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.interfaces.deleteWhere(func(i model.Interface) bool { return i.DeviceID == deviceID })
	return nil
}

// ---- vlans ----

func (s *MemoryStore) ListVlans(ctx context.Context, deviceID string) ([]model.Vlan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.vlans.list(func(v model.Vlan) bool { return v.DeviceID == deviceID }), nil
}

func (s *MemoryStore) ListAllVlans(ctx context.Context) ([]model.Vlan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.vlans.list(nil), nil
}

func (s *MemoryStore) GetVlan(ctx context.Context, id string) (model.Vlan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.vlans.get(id)
	if !ok {
		return model.Vlan{}, notFound(KindVlan, id)
	}
	return v, nil
}

func (s *MemoryStore) CreateVlan(ctx context.Context, v model.Vlan) (model.Vlan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	assignID(&v.ID)
	if s.vlans.has(v.ID) {
		return model.Vlan{}, alreadyExists(KindVlan, v.ID)
	}
	s.vlans.put(v.ID, v)
	return v, nil
}

func (s *MemoryStore) UpdateVlan(ctx context.Context, id string, u model.VlanUpdate) (model.Vlan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.vlans.get(id)
	if !ok {
		return model.Vlan{}, notFound(KindVlan, id)
	}
	u.Apply(&v)
	s.vlans.put(id, v)
	return v, nil
}

func (s *MemoryStore) DeleteVlan(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.vlans.delete(id) {
		return notFound(KindVlan, id)
	}
	return nil
}

func (s *MemoryStore) DeleteVlansByDevice(ctx context.Context, deviceID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vlans.deleteWhere(func(v model.Vlan) bool { return v.DeviceID == deviceID })
	return nil
}

// ---- lacp groups ----

func (s *MemoryStore) ListLacpGroups(ctx context.Context, deviceID string) ([]model.LacpGroup, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.groups.list(func(g model.LacpGroup) bool { return g.DeviceID == deviceID }), nil
}

func (s *MemoryStore) ListAllLacpGroups(ctx context.Context) ([]model.LacpGroup, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.groups.list(nil), nil
}

func (s *MemoryStore) GetLacpGroup(ctx context.Context, id string) (model.LacpGroup, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.groups.get(id)
	if !ok {
		return model.LacpGroup{}, notFound(KindLacpGroup, id)
	}
	return g, nil
}

func (s *MemoryStore) CreateLacpGroup(ctx context.Context, g model.LacpGroup) (model.LacpGroup, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	assignID(&g.ID)
	if s.groups.has(g.ID) {
		return model.LacpGroup{}, alreadyExists(KindLacpGroup, g.ID)
	}
	s.groups.put(g.ID, g)
	return g, nil
}

func (s *MemoryStore) UpdateLacpGroup(ctx context.Context, id string, u model.LacpGroupUpdate) (model.LacpGroup, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.groups.get(id)
	if !ok {
		return model.LacpGroup{}, notFound(KindLacpGroup, id)
	}
	u.Apply(&g)
	s.groups.put(id, g)
	return g, nil
}

func (s *MemoryStore) DeleteLacpGroup(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.groups.delete(id) {
		return notFound(KindLacpGroup, id)
	}
	for _, ifID := range s.interfaces.order {
		i := s.interfaces.rows[ifID]
		if i.InGroup(id) {
			i.LacpGroupID = nil
			s.interfaces.rows[ifID] = i
		}
	}
	return nil
}

func (s *MemoryStore) DeleteLacpGroupsByDevice(ctx context.Context, deviceID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.groups.deleteWhere(func(g model.LacpGroup) bool { return g.DeviceID == deviceID })
	return nil
}

// ---- misc ----

func (s *MemoryStore) Stats(ctx context.Context) (Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := Stats{
		TotalDevices:    len(s.devices.rows),
		TotalVlans:      len(s.vlans.rows),
		TotalLacpGroups: len(s.groups.rows),
	}
	for _, d := range s.devices.rows {
		if d.IsOnline() {
			st.OnlineDevices++
		}
	}
	return st, nil
}

// Close is a no-op
func (s *MemoryStore) Close() error { return nil }
