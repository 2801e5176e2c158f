package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/netconfig/netconfig/pkg/model"
)

// deviceRow is the devices table. Seq orders rows by creation.
type deviceRow struct {
	Seq          uint       `gorm:"column:seq;primaryKey;autoIncrement"`
	ID           string     `gorm:"column:id;type:varchar(36);uniqueIndex;not null"`
	Hostname     string     `gorm:"column:hostname;type:varchar(255);not null"`
	IPAddress    string     `gorm:"column:ip_address;type:varchar(64);not null"`
	Vendor       string     `gorm:"column:vendor;type:varchar(16);not null"`
	Model        string     `gorm:"column:model;type:varchar(255);not null"`
	Status       string     `gorm:"column:status;type:varchar(16);not null"`
	LastSyncedAt *time.Time `gorm:"column:last_synced_at"`
}

func (deviceRow) TableName() string { return "devices" }

type interfaceRow struct {
	Seq               uint                     `gorm:"column:seq;primaryKey;autoIncrement"`
	ID                string                   `gorm:"column:id;type:varchar(36);uniqueIndex;not null"`
	DeviceID          string                   `gorm:"column:device_id;type:varchar(36);index;not null"`
	Name              string                   `gorm:"column:name;type:varchar(64);not null"`
	Description       string                   `gorm:"column:description;type:varchar(255)"`
	Status            string                   `gorm:"column:status;type:varchar(16);not null"`
	Speed             string                   `gorm:"column:speed;type:varchar(8);not null"`
	Duplex            string                   `gorm:"column:duplex;type:varchar(8);not null"`
	Mode              string                   `gorm:"column:mode;type:varchar(8);not null"`
	AccessVlan        *int                     `gorm:"column:access_vlan"`
	TrunkAllowedVlans datatypes.JSONSlice[int] `gorm:"column:trunk_allowed_vlans"`
	NativeVlan        *int                     `gorm:"column:native_vlan"`
	LacpGroupID       *string                  `gorm:"column:lacp_group_id;type:varchar(36);index"`
}

func (interfaceRow) TableName() string { return "interfaces" }

type vlanRow struct {
	Seq         uint   `gorm:"column:seq;primaryKey;autoIncrement"`
	ID          string `gorm:"column:id;type:varchar(36);uniqueIndex;not null"`
	DeviceID    string `gorm:"column:device_id;type:varchar(36);index;not null"`
	VlanID      int    `gorm:"column:vlan_id;not null"`
	Name        string `gorm:"column:name;type:varchar(255);not null"`
	Description string `gorm:"column:description;type:varchar(255)"`
}

func (vlanRow) TableName() string { return "vlans" }

type lacpGroupRow struct {
	Seq           uint   `gorm:"column:seq;primaryKey;autoIncrement"`
	ID            string `gorm:"column:id;type:varchar(36);uniqueIndex;not null"`
	DeviceID      string `gorm:"column:device_id;type:varchar(36);index;not null"`
	GroupNumber   int    `gorm:"column:group_number;not null"`
	Name          string `gorm:"column:name;type:varchar(255)"`
	Mode          string `gorm:"column:mode;type:varchar(16);not null"`
	LoadBalancing string `gorm:"column:load_balancing;type:varchar(16);not null"`
	MinLinks      int    `gorm:"column:min_links;not null"`
	MaxLinks      int    `gorm:"column:max_links;not null"`
}

func (lacpGroupRow) TableName() string { return "lacp_groups" }

// SQLStore keeps records in MySQL through gorm
type SQLStore struct {
	db *gorm.DB
}

// NewSQLStore opens a MySQL connection and migrates the schema
func NewSQLStore(ctx context.Context, dsn string) (*SQLStore, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("opening mysql: %w", err)
	}
	s := &SQLStore{db: db}
	if err := s.Migrate(ctx); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// NewSQLStoreFromDB wraps an existing gorm handle. The schema is not migrated.
func NewSQLStoreFromDB(db *gorm.DB) *SQLStore {
	return &SQLStore{db: db}
}

// Migrate creates or updates the tables
func (s *SQLStore) Migrate(ctx context.Context) error {
	models := []interface{}{&deviceRow{}, &interfaceRow{}, &vlanRow{}, &lacpGroupRow{}}
	if err := s.db.WithContext(ctx).AutoMigrate(models...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// Close closes the underlying connection pool
func (s *SQLStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// ---- row conversion ----

func toDeviceRow(d model.Device) deviceRow {
	return deviceRow{
		ID:           d.ID,
		Hostname:     d.Hostname,
		IPAddress:    d.IPAddress,
		Vendor:       string(d.Vendor),
		Model:        d.Model,
		Status:       string(d.Status),
		LastSyncedAt: d.LastSyncedAt,
	}
}

func (r deviceRow) toModel() model.Device {
	return model.Device{
		ID:           r.ID,
		Hostname:     r.Hostname,
		IPAddress:    r.IPAddress,
		Vendor:       model.Vendor(r.Vendor),
		Model:        r.Model,
		Status:       model.DeviceStatus(r.Status),
		LastSyncedAt: r.LastSyncedAt,
	}
}

func toInterfaceRow(i model.Interface) interfaceRow {
	return interfaceRow{
		ID:                i.ID,
		DeviceID:          i.DeviceID,
		Name:              i.Name,
		Description:       i.Description,
		Status:            string(i.Status),
		Speed:             string(i.Speed),
		Duplex:            string(i.Duplex),
		Mode:              string(i.Mode),
		AccessVlan:        i.AccessVlan,
		TrunkAllowedVlans: datatypes.NewJSONSlice(i.TrunkAllowedVlans),
		NativeVlan:        i.NativeVlan,
		LacpGroupID:       i.LacpGroupID,
	}
}

func (r interfaceRow) toModel() model.Interface {
	trunk := []int(r.TrunkAllowedVlans)
	if trunk == nil {
		trunk = []int{}
	}
	return model.Interface{
		ID:                r.ID,
		DeviceID:          r.DeviceID,
		Name:              r.Name,
		Description:       r.Description,
		Status:            model.PortStatus(r.Status),
		Speed:             model.PortSpeed(r.Speed),
		Duplex:            model.Duplex(r.Duplex),
		Mode:              model.PortMode(r.Mode),
		AccessVlan:        r.AccessVlan,
		TrunkAllowedVlans: trunk,
		NativeVlan:        r.NativeVlan,
		LacpGroupID:       r.LacpGroupID,
	}
}

func toVlanRow(v model.Vlan) vlanRow {
	return vlanRow{ID: v.ID, DeviceID: v.DeviceID, VlanID: v.VlanID, Name: v.Name, Description: v.Description}
}

func (r vlanRow) toModel() model.Vlan {
	return model.Vlan{ID: r.ID, DeviceID: r.DeviceID, VlanID: r.VlanID, Name: r.Name, Description: r.Description}
}

func toLacpGroupRow(g model.LacpGroup) lacpGroupRow {
	return lacpGroupRow{
		ID:            g.ID,
		DeviceID:      g.DeviceID,
		GroupNumber:   g.GroupNumber,
		Name:          g.Name,
		Mode:          string(g.Mode),
		LoadBalancing: string(g.LoadBalancing),
		MinLinks:      g.MinLinks,
		MaxLinks:      g.MaxLinks,
	}
}

func (r lacpGroupRow) toModel() model.LacpGroup {
	return model.LacpGroup{
		ID:            r.ID,
		DeviceID:      r.DeviceID,
		GroupNumber:   r.GroupNumber,
		Name:          r.Name,
		Mode:          model.LacpMode(r.Mode),
		LoadBalancing: model.LoadBalancing(r.LoadBalancing),
		MinLinks:      r.MinLinks,
		MaxLinks:      r.MaxLinks,
	}
}

// first loads the row with the given record id into dst
func (s *SQLStore) first(ctx context.Context, dst interface{}, kind, id string) error {
	err := s.db.WithContext(ctx).Where("id = ?", id).First(dst).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound(kind, id)
	}
	return err
}

func (s *SQLStore) exists(ctx context.Context, row interface{}, id string) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(row).Where("id = ?", id).Count(&n).Error
	return n > 0, err
}

// ---- devices ----

func (s *SQLStore) ListDevices(ctx context.Context) ([]model.Device, error) {
	var rows []deviceRow
	if err := s.db.WithContext(ctx).Order("seq").Find(&rows).Error; err != nil {
		return nil, err
	}
	result := make([]model.Device, len(rows))
	for i, r := range rows {
		result[i] = r.toModel()
	}
	return result, nil
}

func (s *SQLStore) GetDevice(ctx context.Context, id string) (model.Device, error) {
	var row deviceRow
	if err := s.first(ctx, &row, KindDevice, id); err != nil {
		return model.Device{}, err
	}
	return row.toModel(), nil
}

func (s *SQLStore) CreateDevice(ctx context.Context, d model.Device) (model.Device, error) {
	assignID(&d.ID)
	if ok, err := s.exists(ctx, &deviceRow{}, d.ID); err != nil {
		return model.Device{}, err
	} else if ok {
		return model.Device{}, alreadyExists(KindDevice, d.ID)
	}
	row := toDeviceRow(d)
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return model.Device{}, err
	}
	return row.toModel(), nil
}

func (s *SQLStore) UpdateDevice(ctx context.Context, id string, u model.DeviceUpdate) (model.Device, error) {
	var row deviceRow
	if err := s.first(ctx, &row, KindDevice, id); err != nil {
		return model.Device{}, err
	}
	d := row.toModel()
	u.Apply(&d)
	updated := toDeviceRow(d)
	updated.Seq = row.Seq
	if err := s.db.WithContext(ctx).Save(&updated).Error; err != nil {
		return model.Device{}, err
	}
	return d, nil
}

func (s *SQLStore) DeleteDevice(ctx context.Context, id string) error {
	if _, err := s.GetDevice(ctx, id); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, row := range []interface{}{&interfaceRow{}, &vlanRow{}, &lacpGroupRow{}} {
			if err := tx.Where("device_id = ?", id).Delete(row).Error; err != nil {
				return err
			}
		}
		return tx.Where("id = ?", id).Delete(&deviceRow{}).Error
	})
}

// ---- interfaces ----

func (s *SQLStore) ListInterfaces(ctx context.Context, deviceID string) ([]model.Interface, error) {
	var rows []interfaceRow
	if err := s.db.WithContext(ctx).Where("device_id = ?", deviceID).Order("seq").Find(&rows).Error; err != nil {
		return nil, err
	}
	result := make([]model.Interface, len(rows))
	for i, r := range rows {
		result[i] = r.toModel()
	}
	return result, nil
}

func (s *SQLStore) GetInterface(ctx context.Context, id string) (model.Interface, error) {
	var row interfaceRow
	if err := s.first(ctx, &row, KindInterface, id); err != nil {
		return model.Interface{}, err
	}
	return row.toModel(), nil
}

func (s *SQLStore) CreateInterface(ctx context.Context, i model.Interface) (model.Interface, error) {
	assignID(&i.ID)
	if ok, err := s.exists(ctx, &interfaceRow{}, i.ID); err != nil {
		return model.Interface{}, err
	} else if ok {
		return model.Interface{}, alreadyExists(KindInterface, i.ID)
	}
	row := toInterfaceRow(i)
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return model.Interface{}, err
	}
	return row.toModel(), nil
}

func (s *SQLStore) UpdateInterface(ctx context.Context, id string, u model.InterfaceUpdate) (model.Interface, error) {
	var row interfaceRow
	if err := s.first(ctx, &row, KindInterface, id); err != nil {
		return model.Interface{}, err
	}
	i := row.toModel()
	u.Apply(&i)
	updated := toInterfaceRow(i)
	updated.Seq = row.Seq
	if err := s.db.WithContext(ctx).Save(&updated).Error; err != nil {
		return model.Interface{}, err
	}
	return i, nil
}

func (s *SQLStore) DeleteInterfacesByDevice(ctx context.Context, deviceID string) error {
	return s.db.WithContext(ctx).Where("device_id = ?", deviceID).Delete(&interfaceRow{}).Error
}

// ---- vlans ----

func (s *SQLStore) listVlans(ctx context.Context, scope func(*gorm.DB) *gorm.DB) ([]model.Vlan, error) {
	var rows []vlanRow
	if err := s.db.WithContext(ctx).Scopes(scope).Order("seq").Find(&rows).Error; err != nil {
		return nil, err
	}
	result := make([]model.Vlan, len(rows))
	for i, r := range rows {
		result[i] = r.toModel()
	}
	return result, nil
}

func (s *SQLStore) ListVlans(ctx context.Context, deviceID string) ([]model.Vlan, error) {
	return s.listVlans(ctx, byDevice(deviceID))
}

func (s *SQLStore) ListAllVlans(ctx context.Context) ([]model.Vlan, error) {
	return s.listVlans(ctx, all)
}

func (s *SQLStore) GetVlan(ctx context.Context, id string) (model.Vlan, error) {
	var row vlanRow
	if err := s.first(ctx, &row, KindVlan, id); err != nil {
		return model.Vlan{}, err
	}
	return row.toModel(), nil
}

func (s *SQLStore) CreateVlan(ctx context.Context, v model.Vlan) (model.Vlan, error) {
	assignID(&v.ID)
	if ok, err := s.exists(ctx, &vlanRow{}, v.ID); err != nil {
		return model.Vlan{}, err
	} else if ok {
		return model.Vlan{}, alreadyExists(KindVlan, v.ID)
	}
	row := toVlanRow(v)
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return model.Vlan{}, err
	}
	return row.toModel(), nil
}

func (s *SQLStore) UpdateVlan(ctx context.Context, id string, u model.VlanUpdate) (model.Vlan, error) {
	var row vlanRow
	if err := s.first(ctx, &row, KindVlan, id); err != nil {
		return model.Vlan{}, err
	}
	v := row.toModel()
	u.Apply(&v)
	updated := toVlanRow(v)
	updated.Seq = row.Seq
	if err := s.db.WithContext(ctx).Save(&updated).Error; err != nil {
		return model.Vlan{}, err
	}
	return v, nil
}

func (s *SQLStore) DeleteVlan(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&vlanRow{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return notFound(KindVlan, id)
	}
	return nil
}

func (s *SQLStore) DeleteVlansByDevice(ctx context.Context, deviceID string) error {
	return s.db.WithContext(ctx).Where("device_id = ?", deviceID).Delete(&vlanRow{}).Error
}

// ---- lacp groups ----

func (s *SQLStore) listLacpGroups(ctx context.Context, scope func(*gorm.DB) *gorm.DB) ([]model.LacpGroup, error) {
	var rows []lacpGroupRow
	if err := s.db.WithContext(ctx).Scopes(scope).Order("seq").Find(&rows).Error; err != nil {
		return nil, err
	}
	result := make([]model.LacpGroup, len(rows))
	for i, r := range rows {
		result[i] = r.toModel()
	}
	return result, nil
}

func (s *SQLStore) ListLacpGroups(ctx context.Context, deviceID string) ([]model.LacpGroup, error) {
	return s.listLacpGroups(ctx, byDevice(deviceID))
}

func (s *SQLStore) ListAllLacpGroups(ctx context.Context) ([]model.LacpGroup, error) {
	return s.listLacpGroups(ctx, all)
}

func (s *SQLStore) GetLacpGroup(ctx context.Context, id string) (model.LacpGroup, error) {
	var row lacpGroupRow
	if err := s.first(ctx, &row, KindLacpGroup, id); err != nil {
		return model.LacpGroup{}, err
	}
	return row.toModel(), nil
}

func (s *SQLStore) CreateLacpGroup(ctx context.Context, g model.LacpGroup) (model.LacpGroup, error) {
	assignID(&g.ID)
	if ok, err := s.exists(ctx, &lacpGroupRow{}, g.ID); err != nil {
		return model.LacpGroup{}, err
	} else if ok {
		return model.LacpGroup{}, alreadyExists(KindLacpGroup, g.ID)
	}
	row := toLacpGroupRow(g)
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return model.LacpGroup{}, err
	}
	return row.toModel(), nil
}

func (s *SQLStore) UpdateLacpGroup(ctx context.Context, id string, u model.LacpGroupUpdate) (model.LacpGroup, error) {
	var row lacpGroupRow
	if err := s.first(ctx, &row, KindLacpGroup, id); err != nil {
		return model.LacpGroup{}, err
	}
	g := row.toModel()
	u.Apply(&g)
	updated := toLacpGroupRow(g)
	updated.Seq = row.Seq
	if err := s.db.WithContext(ctx).Save(&updated).Error; err != nil {
		return model.LacpGroup{}, err
	}
	return g, nil
}

func (s *SQLStore) DeleteLacpGroup(ctx context.Context, id string) error {
	if _, err := s.GetLacpGroup(ctx, id); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&interfaceRow{}).Where("lacp_group_id = ?", id).
			Update("lacp_group_id", nil).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&lacpGroupRow{}).Error
	})
}

func (s *SQLStore) DeleteLacpGroupsByDevice(ctx context.Context, deviceID string) error {
	return s.db.WithContext(ctx).Where("device_id = ?", deviceID).Delete(&lacpGroupRow{}).Error
}

// ---- misc ----

func (s *SQLStore) Stats(ctx context.Context) (Stats, error) {
	var devices, online, vlans, groups int64
	db := s.db.WithContext(ctx)
	if err := db.Model(&deviceRow{}).Count(&devices).Error; err != nil {
		return Stats{}, err
	}
	if err := db.Model(&deviceRow{}).Where("status = ?", string(model.DeviceOnline)).Count(&online).Error; err != nil {
		return Stats{}, err
	}
	if err := db.Model(&vlanRow{}).Count(&vlans).Error; err != nil {
		return Stats{}, err
	}
	if err := db.Model(&lacpGroupRow{}).Count(&groups).Error; err != nil {
		return Stats{}, err
	}
	return Stats{
		TotalDevices:    int(devices),
		OnlineDevices:   int(online),
		TotalVlans:      int(vlans),
		TotalLacpGroups: int(groups),
	}, nil
}

func byDevice(deviceID string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB { return db.Where("device_id = ?", deviceID) }
}

func all(db *gorm.DB) *gorm.DB { return db }
