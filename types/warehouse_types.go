package types

import "time"

// Warehouse is one marketplace warehouse from the supplies API. The list
// is global, shared by all users.
type Warehouse struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Address   string `json:"address,omitempty"`
	WorkTime  string `json:"work_time,omitempty"`
	AcceptsQR bool   `json:"accepts_qr,omitempty"`
	IsActive  bool   `json:"is_active,omitempty"`
}

type WarehouseCacheInfo struct {
	UpdatedAt time.Time `json:"updated_at"`
	UpdatedBy int64     `json:"updated_by,omitempty"`
}

// WarehouseCache is the shared warehouse-list cache. Stale data is still
// served; NeedsRefresh only signals that a caller holding an API key
// should fetch a fresh list.
type WarehouseCache interface {
	CacheWarehouses(warehouses []Warehouse, updatedBy int64) error
	GetWarehouses() ([]Warehouse, error)
	NeedsRefresh() (bool, error)
	UpdateInfo() (*WarehouseCacheInfo, error)
}
