package controllers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/mitaxdev/litescripts/api/middleware"
	"github.com/mitaxdev/litescripts/api/responses"
	"github.com/mitaxdev/litescripts/api/validators"
	"github.com/mitaxdev/litescripts/pkg/db/models"
	pkgerrors "github.com/mitaxdev/litescripts/pkg/errors"
	"github.com/mitaxdev/litescripts/pkg/logger"
)

type userReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type licenseLinker interface {
	userReader
	LinkGameLicense(ctx context.Context, id uuid.UUID, license string, identifier *string) error
}

type userProfileResponse struct {
	ID              uuid.UUID `json:"id"`
	DiscordID       string    `json:"discord_id"`
	DiscordUsername string    `json:"discord_username"`
	DiscordAvatar   *string   `json:"discord_avatar,omitempty"`
	Email           string    `json:"email"`
	GameLicense     *string   `json:"game_license,omitempty"`
	GameIdentifier  *string   `json:"game_identifier,omitempty"`
}

func newUserProfileResponse(user *models.User) userProfileResponse {
	return userProfileResponse{
		ID:              user.ID,
		DiscordID:       user.DiscordID,
		DiscordUsername: user.DiscordUsername,
		DiscordAvatar:   user.DiscordAvatar,
		Email:           user.Email,
		GameLicense:     user.GameLicense,
		GameIdentifier:  user.GameIdentifier,
	}
}

func requireUserID(r *http.Request) (uuid.UUID, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user id")
	}
	return id, nil
}

// AuthMe returns the authenticated user's profile snapshot.
func AuthMe(users userReader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if users == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "users repository unavailable"))
			return
		}

		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		user, err := users.FindByID(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "user not found"))
			return
		}
		responses.WriteSuccess(w, newUserProfileResponse(user))
	}
}

type linkLicenseRequest struct {
	GameLicense    string  `json:"game_license" validate:"required"`
	GameIdentifier *string `json:"game_identifier"`
}

// AuthLinkLicense attaches a game license to the authenticated account.
func AuthLinkLicense(users licenseLinker, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if users == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "users repository unavailable"))
			return
		}

		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload linkLicenseRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := users.LinkGameLicense(r.Context(), userID, payload.GameLicense, payload.GameIdentifier); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "link game license"))
			return
		}

		user, err := users.FindByID(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload user"))
			return
		}
		responses.WriteSuccess(w, newUserProfileResponse(user))
	}
}
