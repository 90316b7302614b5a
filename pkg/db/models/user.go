package models

import (
	"time"

	"github.com/google/uuid"
)

// User is the identity record the auth collaborator maintains. The order
// pipeline only reads it to correlate provider notifications back to an
// account by email.
type User struct {
	ID              uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	DiscordID       string     `gorm:"column:discord_id;type:text;not null;uniqueIndex"`
	DiscordUsername string     `gorm:"column:discord_username;not null"`
	DiscordAvatar   *string    `gorm:"column:discord_avatar"`
	Email           string     `gorm:"column:email;type:text;not null;index"`
	GameLicense     *string    `gorm:"column:game_license;index"`
	GameIdentifier  *string    `gorm:"column:game_identifier"`
	IsActive        bool       `gorm:"column:is_active;not null;default:true"`
	LastLoginAt     *time.Time `gorm:"column:last_login_at"`
	CreatedAt       time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
