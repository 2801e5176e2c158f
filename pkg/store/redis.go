package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"

	"github.com/netconfig/netconfig/pkg/model"
	"github.com/netconfig/netconfig/pkg/util"
)

// Redis tables. Each record is a hash at "<TABLE>|<id>" whose "data" field
// holds the JSON encoding of the record.
const (
	tableDevice    = "DEVICE"
	tableInterface = "INTERFACE"
	tableVlan      = "VLAN"
	tableLacpGroup = "LACP_GROUP"

	// Sorted-set indexes scored by creation sequence
	indexDevices          = "DEVICES"
	indexVlans            = "VLANS"
	indexLacpGroups       = "LACP_GROUPS"
	indexDeviceInterfaces = "DEVICE_INTERFACES"
	indexDeviceVlans      = "DEVICE_VLANS"
	indexDeviceLacpGroups = "DEVICE_LACP_GROUPS"

	seqKey    = "NETCONFIG_SEQ"
	dataField = "data"
)

func redisKey(table, id string) string {
	return fmt.Sprintf("%s|%s", table, id)
}

// RedisStore keeps records in a Redis database
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to addr and selects database db
func NewRedisStore(ctx context.Context, addr string, db int) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connecting to redis at %s: %w", addr, err)
	}
	return &RedisStore{client: client}, nil
}

// Close closes the connection
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// insert writes a new record and adds it to the given indexes under the
// next sequence number.
func (s *RedisStore) insert(ctx context.Context, table, kind, id string, v interface{}, indexes ...string) error {
	n, err := s.client.Exists(ctx, redisKey(table, id)).Result()
	if err != nil {
		return err
	}
	if n > 0 {
		return alreadyExists(kind, id)
	}

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", kind, err)
	}
	seq, err := s.client.Incr(ctx, seqKey).Result()
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, redisKey(table, id), dataField, data)
	for _, idx := range indexes {
		pipe.ZAdd(ctx, idx, &redis.Z{Score: float64(seq), Member: id})
	}
	_, err = pipe.Exec(ctx)
	return err
}

// save overwrites the data of an existing record
func (s *RedisStore) save(ctx context.Context, table, kind, id string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", kind, err)
	}
	return s.client.HSet(ctx, redisKey(table, id), dataField, data).Err()
}

// remove deletes a record and its index entries
func (s *RedisStore) remove(ctx context.Context, table, id string, indexes ...string) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, redisKey(table, id))
	for _, idx := range indexes {
		pipe.ZRem(ctx, idx, id)
	}
	_, err := pipe.Exec(ctx)
	return err
}

func load[T any](ctx context.Context, c *redis.Client, table, kind, id string) (T, error) {
	var v T
	data, err := c.HGet(ctx, redisKey(table, id), dataField).Result()
	if errors.Is(err, redis.Nil) {
		return v, notFound(kind, id)
	}
	if err != nil {
		return v, err
	}
	if err := json.Unmarshal([]byte(data), &v); err != nil {
		return v, fmt.Errorf("decoding %s '%s': %w", kind, id, err)
	}
	return v, nil
}

// loadIndex reads every record listed in a sorted-set index, in score
// order. Index entries whose record has gone are skipped.
func loadIndex[T any](ctx context.Context, c *redis.Client, table, index string) ([]T, error) {
	ids, err := c.ZRange(ctx, index, 0, -1).Result()
	if err != nil {
		return nil, err
	}
	result := make([]T, 0, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	pipe := c.Pipeline()
	cmds := make([]*redis.StringCmd, len(ids))
	for i, id := range ids {
		cmds[i] = pipe.HGet(ctx, redisKey(table, id), dataField)
	}
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, err
	}

	for i, cmd := range cmds {
		data, err := cmd.Result()
		if errors.Is(err, redis.Nil) {
			util.WithField("key", redisKey(table, ids[i])).Warnf("index %s references a missing record", index)
			continue
		}
		if err != nil {
			return nil, err
		}
		var v T
		if err := json.Unmarshal([]byte(data), &v); err != nil {
			return nil, fmt.Errorf("decoding %s: %w", redisKey(table, ids[i]), err)
		}
		result = append(result, v)
	}
	return result, nil
}

// ---- devices ----

func (s *RedisStore) ListDevices(ctx context.Context) ([]model.Device, error) {
	return loadIndex[model.Device](ctx, s.client, tableDevice, indexDevices)
}

func (s *RedisStore) GetDevice(ctx context.Context, id string) (model.Device, error) {
	return load[model.Device](ctx, s.client, tableDevice, KindDevice, id)
}

func (s *RedisStore) CreateDevice(ctx context.Context, d model.Device) (model.Device, error) {
	assignID(&d.ID)
	if err := s.insert(ctx, tableDevice, KindDevice, d.ID, d, indexDevices); err != nil {
		return model.Device{}, err
	}
	return d, nil
}

func (s *RedisStore) UpdateDevice(ctx context.Context, id string, u model.DeviceUpdate) (model.Device, error) {
	d, err := s.GetDevice(ctx, id)
	if err != nil {
		return model.Device{}, err
	}
	u.Apply(&d)
	if err := s.save(ctx, tableDevice, KindDevice, id, d); err != nil {
		return model.Device{}, err
	}
	return d, nil
}

func (s *RedisStore) DeleteDevice(ctx context.Context, id string) error {
	if _, err := s.GetDevice(ctx, id); err != nil {
		return err
	}
	if err := s.DeleteInterfacesByDevice(ctx, id); err != nil {
		return err
	}
	if err := s.DeleteVlansByDevice(ctx, id); err != nil {
		return err
	}
	if err := s.DeleteLacpGroupsByDevice(ctx, id); err != nil {
		return err
	}
	return s.remove(ctx, tableDevice, id, indexDevices)
}

// ---- interfaces ----

func (s *RedisStore) ListInterfaces(ctx context.Context, deviceID string) ([]model.Interface, error) {
	return loadIndex[model.Interface](ctx, s.client, tableInterface, redisKey(indexDeviceInterfaces, deviceID))
}

func (s *RedisStore) GetInterface(ctx context.Context, id string) (model.Interface, error) {
	return load[model.Interface](ctx, s.client, tableInterface, KindInterface, id)
}

func (s *RedisStore) CreateInterface(ctx context.Context, i model.Interface) (model.Interface, error) {
	assignID(&i.ID)
	if err := s.insert(ctx, tableInterface, KindInterface, i.ID, i,
		redisKey(indexDeviceInterfaces, i.DeviceID)); err != nil {
		return model.Interface{}, err
	}
	return i, nil
}

func (s *RedisStore) UpdateInterface(ctx context.Context, id string, u model.InterfaceUpdate) (model.Interface, error) {
	i, err := s.GetInterface(ctx, id)
	if err != nil {
		return model.Interface{}, err
	}
	u.Apply(&i)
	if err := s.save(ctx, tableInterface, KindInterface, id, i); err != nil {
		return model.Interface{}, err
	}
	return i, nil
}

func (s *RedisStore) DeleteInterfacesByDevice(ctx context.Context, deviceID string) error {
	index := redisKey(indexDeviceInterfaces, deviceID)
	ids, err := s.client.ZRange(ctx, index, 0, -1).Result()
	if err != nil {
		return err
	}
	for _, id := range ids {
		if err := s.client.Del(ctx, redisKey(tableInterface, id)).Err(); err != nil {
			return err
		}
	}
	return s.client.Del(ctx, index).Err()
}

// ---- vlans ----

func (s *RedisStore) ListVlans(ctx context.Context, deviceID string) ([]model.Vlan, error) {
	return loadIndex[model.Vlan](ctx, s.client, tableVlan, redisKey(indexDeviceVlans, deviceID))
}

func (s *RedisStore) ListAllVlans(ctx context.Context) ([]model.Vlan, error) {
	return loadIndex[model.Vlan](ctx, s.client, tableVlan, indexVlans)
}

func (s *RedisStore) GetVlan(ctx context.Context, id string) (model.Vlan, error) {
	return load[model.Vlan](ctx, s.client, tableVlan, KindVlan, id)
}

func (s *RedisStore) CreateVlan(ctx context.Context, v model.Vlan) (model.Vlan, error) {
	assignID(&v.ID)
	if err := s.insert(ctx, tableVlan, KindVlan, v.ID, v,
		indexVlans, redisKey(indexDeviceVlans, v.DeviceID)); err != nil {
		return model.Vlan{}, err
	}
	return v, nil
}

func (s *RedisStore) UpdateVlan(ctx context.Context, id string, u model.VlanUpdate) (model.Vlan, error) {
	v, err := s.GetVlan(ctx, id)
	if err != nil {
		return model.Vlan{}, err
	}
	u.Apply(&v)
	if err := s.save(ctx, tableVlan, KindVlan, id, v); err != nil {
		return model.Vlan{}, err
	}
	return v, nil
}

func (s *RedisStore) DeleteVlan(ctx context.Context, id string) error {
	v, err := s.GetVlan(ctx, id)
	if err != nil {
		return err
	}
	return s.remove(ctx, tableVlan, id, indexVlans, redisKey(indexDeviceVlans, v.DeviceID))
}

func (s *RedisStore) DeleteVlansByDevice(ctx context.Context, deviceID string) error {
	index := redisKey(indexDeviceVlans, deviceID)
	ids, err := s.client.ZRange(ctx, index, 0, -1).Result()
	if err != nil {
		return err
	}
	for _, id := range ids {
		if err := s.remove(ctx, tableVlan, id, indexVlans); err != nil {
			return err
		}
	}
	return s.client.Del(ctx, index).Err()
}

// ---- lacp groups ----

func (s *RedisStore) ListLacpGroups(ctx context.Context, deviceID string) ([]model.LacpGroup, error) {
	return loadIndex[model.LacpGroup](ctx, s.client, tableLacpGroup, redisKey(indexDeviceLacpGroups, deviceID))
}

func (s *RedisStore) ListAllLacpGroups(ctx context.Context) ([]model.LacpGroup, error) {
	return loadIndex[model.LacpGroup](ctx, s.client, tableLacpGroup, indexLacpGroups)
}

func (s *RedisStore) GetLacpGroup(ctx context.Context, id string) (model.LacpGroup, error) {
	return load[model.LacpGroup](ctx, s.client, tableLacpGroup, KindLacpGroup, id)
}

func (s *RedisStore) CreateLacpGroup(ctx context.Context, g model.LacpGroup) (model.LacpGroup, error) {
	assignID(&g.ID)
	if err := s.insert(ctx, tableLacpGroup, KindLacpGroup, g.ID, g,
		indexLacpGroups, redisKey(indexDeviceLacpGroups, g.DeviceID)); err != nil {
		return model.LacpGroup{}, err
	}
	return g, nil
}

func (s *RedisStore) UpdateLacpGroup(ctx context.Context, id string, u model.LacpGroupUpdate) (model.LacpGroup, error) {
	g, err := s.GetLacpGroup(ctx, id)
	if err != nil {
		return model.LacpGroup{}, err
	}
	u.Apply(&g)
	if err := s.save(ctx, tableLacpGroup, KindLacpGroup, id, g); err != nil {
		return model.LacpGroup{}, err
	}
	return g, nil
}

func (s *RedisStore) DeleteLacpGroup(ctx context.Context, id string) error {
	g, err := s.GetLacpGroup(ctx, id)
	if err != nil {
		return err
	}

	ifaces, err := s.ListInterfaces(ctx, g.DeviceID)
	if err != nil {
		return err
	}
	for _, i := range ifaces {
		if !i.InGroup(id) {
			continue
		}
		i.LacpGroupID = nil
		if err := s.save(ctx, tableInterface, KindInterface, i.ID, i); err != nil {
			return err
		}
	}

	return s.remove(ctx, tableLacpGroup, id, indexLacpGroups, redisKey(indexDeviceLacpGroups, g.DeviceID))
}

func (s *RedisStore) DeleteLacpGroupsByDevice(ctx context.Context, deviceID string) error {
	index := redisKey(indexDeviceLacpGroups, deviceID)
	ids, err := s.client.ZRange(ctx, index, 0, -1).Result()
	if err != nil {
		return err
	}
	for _, id := range ids {
		if err := s.remove(ctx, tableLacpGroup, id, indexLacpGroups); err != nil {
			return err
		}
	}
	return s.client.Del(ctx, index).Err()
}

// ---- misc ----

func (s *RedisStore) Stats(ctx context.Context) (Stats, error) {
	devices, err := s.ListDevices(ctx)
	if err != nil {
		return Stats{}, err
	}
	vlans, err := s.client.ZCard(ctx, indexVlans).Result()
	if err != nil {
		return Stats{}, err
	}
	groups, err := s.client.ZCard(ctx, indexLacpGroups).Result()
	if err != nil {
		return Stats{}, err
	}

	st := Stats{
		TotalDevices:    len(devices),
		TotalVlans:      int(vlans),
		TotalLacpGroups: int(groups),
	}
	for _, d := range devices {
		if d.IsOnline() {
			st.OnlineDevices++
		}
	}
	return st, nil
}
