package users

import (
	"github.com/google/uuid"

	"github.com/mitaxdev/litescripts/pkg/db/models"
)

// CreateUserDTO captures the fields the Discord auth flow provides.
type CreateUserDTO struct {
	DiscordID       string
	DiscordUsername string
	DiscordAvatar   *string
	Email           string
}

// ToModel maps the DTO into a persistence model.
func (d CreateUserDTO) ToModel() *models.User {
	return &models.User{
		ID:              uuid.New(),
		DiscordID:       d.DiscordID,
		DiscordUsername: d.DiscordUsername,
		DiscordAvatar:   d.DiscordAvatar,
		Email:           d.Email,
		IsActive:        true,
	}
}
