package entities

import (
	"time"
)

type Setting struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Key       string    `gorm:"uniqueIndex;size:100" json:"key"`
	Value     string    `gorm:"type:text" json:"value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Setting) TableName() string {
	return "settings"
}

// Known setting keys
const (
	// Import run inputs, persisted at schedule time so chunk tasks (which
	// may execute in a different process) can retrieve them.
	SettingKeyImportExportRoot = "import_export_root"
	SettingKeyImportCategories = "import_categories"

	// Archive bookkeeping for reset cleanup: where the uploaded archive
	// was stored and where it was extracted to.
	SettingKeyImportArchivePath    = "import_archive_path"
	SettingKeyImportExtractionPath = "import_extraction_path"
)
