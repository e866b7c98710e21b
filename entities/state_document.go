package entities

import (
	"github.com/google/uuid"
)

// StateDocument holds one named JSON document that is always replaced as a whole.
type StateDocument struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	Name          string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"name"`
	SchemaVersion int       `gorm:"not null" json:"schema_version"`
	Payload       string    `gorm:"type:jsonb;not null" json:"payload"`

	Timestamp
}
