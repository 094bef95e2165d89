package controllers

import (
	"net/http"

	"github.com/venuecast/venuecast-backend/api/responses"
	"github.com/venuecast/venuecast-backend/api/validators"
	"github.com/venuecast/venuecast-backend/internal/users"
	pkgerrors "github.com/venuecast/venuecast-backend/pkg/errors"
	"github.com/venuecast/venuecast-backend/pkg/logger"
)

type loginPayload struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AuthLogin exchanges staff credentials for an access token.
func AuthLogin(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		var payload loginPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := svc.Login(ctx, payload.Username, payload.Password)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if logg != nil {
			logg.Info(logg.WithActor(ctx, result.User.Username), "staff login")
		}
		responses.WriteSuccess(w, result)
	}
}
