package entities

import (
	"time"
)

// Asset is a stored media binary plus its library-level bookkeeping.
// The binary itself lives on disk under the storage directory; Path is
// relative to that directory.
type Asset struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:512" json:"name"`
	Title     string    `gorm:"size:512" json:"title"`
	Path      string    `gorm:"size:1024" json:"path"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Metadata []AssetMetadata `gorm:"constraint:OnDelete:CASCADE" json:"metadata,omitempty"`
}

func (Asset) TableName() string {
	return "assets"
}

// AssetMetadata is one key/value annotation on an asset. The composite
// index on (key, value) keeps lookups by a reserved key (such as the
// import fingerprint) a point query.
type AssetMetadata struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	AssetID   uint      `gorm:"index" json:"asset_id"`
	Key       string    `gorm:"size:100;index:idx_asset_metadata_kv" json:"key"`
	Value     string    `gorm:"size:512;index:idx_asset_metadata_kv" json:"value"`
	CreatedAt time.Time `json:"created_at"`
}

func (AssetMetadata) TableName() string {
	return "asset_metadata"
}

// Reserved metadata keys
const (
	// MetadataKeyFingerprint tags an asset with the idempotency key of the
	// export item it was imported from.
	MetadataKeyFingerprint = "import_fingerprint"
)
