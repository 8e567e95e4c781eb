package sqlargon

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UUIDModel provides a uuid primary key generated on insert when unset.
// Generation happens client-side so both dialects behave identically.
type UUIDModel struct {
	ID uuid.UUID `gorm:"primaryKey;type:uuid" json:"id"`
}

// BeforeCreate assigns a fresh uuid when the key is still zero.
func (m *UUIDModel) BeforeCreate(_ *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// Timestamps tracks row creation and modification times.
type Timestamps struct {
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// IsNew reports whether the row has never been updated.
func (t Timestamps) IsNew() bool {
	return t.CreatedAt.Equal(t.UpdatedAt)
}

// SoftDelete marks rows with a tombstone instead of removing them.
type SoftDelete struct {
	Tombstone bool `gorm:"not null;default:false" json:"tombstone"`
}

// Deleted reports whether the row carries a tombstone.
func (s SoftDelete) Deleted() bool { return s.Tombstone }

// NotDeleted is a gorm scope filtering out tombstoned rows.
func NotDeleted(db *gorm.DB) *gorm.DB {
	return db.Where("tombstone = ?", false)
}

// OnlyDeleted is a gorm scope selecting tombstoned rows only.
func OnlyDeleted(db *gorm.DB) *gorm.DB {
	return db.Where("tombstone = ?", true)
}
