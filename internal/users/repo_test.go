package users

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/mitaxdev/litescripts/pkg/db/models"
)

func setupUsersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	users := `
CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  discord_id TEXT NOT NULL UNIQUE,
  discord_username TEXT NOT NULL,
  discord_avatar TEXT,
  email TEXT NOT NULL,
  game_license TEXT,
  game_identifier TEXT,
  is_active BOOLEAN NOT NULL DEFAULT TRUE,
  last_login_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(users).Error)
	return db
}

func newUserDTO() CreateUserDTO {
	avatar := "avatar-hash"
	return CreateUserDTO{
		DiscordID:       "discord-" + uuid.NewString(),
		DiscordUsername: "buyer",
		DiscordAvatar:   &avatar,
		Email:           uuid.NewString() + "@example.com",
	}
}

func TestRepositoryCreateAndFind(t *testing.T) {
	repo := NewRepository(setupUsersTestDB(t))

	dto := newUserDTO()
	created, err := repo.Create(context.Background(), dto)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.True(t, created.IsActive)

	byEmail, err := repo.FindByEmail(context.Background(), dto.Email)
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)

	byID, err := repo.FindByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, dto.DiscordID, byID.DiscordID)
}

func TestRepositoryCreateRejectsDuplicateDiscordID(t *testing.T) {
	repo := NewRepository(setupUsersTestDB(t))

	dto := newUserDTO()
	_, err := repo.Create(context.Background(), dto)
	require.NoError(t, err)

	dup := newUserDTO()
	dup.DiscordID = dto.DiscordID
	_, err = repo.Create(context.Background(), dup)
	require.Error(t, err)
}

func TestRepositoryUpdateLastLogin(t *testing.T) {
	db := setupUsersTestDB(t)
	repo := NewRepository(db)

	created, err := repo.Create(context.Background(), newUserDTO())
	require.NoError(t, err)
	require.Nil(t, created.LastLoginAt)

	at := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, repo.UpdateLastLogin(context.Background(), created.ID, at))

	var reloaded models.User
	require.NoError(t, db.First(&reloaded, "id = ?", created.ID).Error)
	require.NotNil(t, reloaded.LastLoginAt)
	assert.True(t, reloaded.LastLoginAt.Equal(at))
}

func TestRepositoryLinkGameLicense(t *testing.T) {
	db := setupUsersTestDB(t)
	repo := NewRepository(db)

	created, err := repo.Create(context.Background(), newUserDTO())
	require.NoError(t, err)

	identifier := "steam:110000112345678"
	require.NoError(t, repo.LinkGameLicense(context.Background(), created.ID, "lic-123", &identifier))

	var reloaded models.User
	require.NoError(t, db.First(&reloaded, "id = ?", created.ID).Error)
	require.NotNil(t, reloaded.GameLicense)
	assert.Equal(t, "lic-123", *reloaded.GameLicense)
	require.NotNil(t, reloaded.GameIdentifier)
	assert.Equal(t, identifier, *reloaded.GameIdentifier)
}

func TestRepositoryFindByEmailMissing(t *testing.T) {
	repo := NewRepository(setupUsersTestDB(t))

	_, err := repo.FindByEmail(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
