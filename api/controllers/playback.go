package controllers

import (
	"net/http"

	"github.com/venuecast/venuecast-backend/api/responses"
	"github.com/venuecast/venuecast-backend/internal/playback"
	pkgerrors "github.com/venuecast/venuecast-backend/pkg/errors"
	"github.com/venuecast/venuecast-backend/pkg/logger"
)

// PlaybackState serves the poll fallback for displays. The snapshot carries
// epoch timestamps so clients can keep their own countdowns honest.
func PlaybackState(engine *playback.Engine, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if engine == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "playback engine unavailable"))
			return
		}
		responses.WriteSuccess(w, engine.State(ctx))
	}
}

// PlaybackSkip cuts the active item short and moves into the pause phase.
func PlaybackSkip(engine *playback.Engine, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if engine == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "playback engine unavailable"))
			return
		}
		if err := engine.Skip(ctx); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, engine.State(ctx))
	}
}

// PlaybackReset tears down the active item and empties the backlog.
func PlaybackReset(engine *playback.Engine, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if engine == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "playback engine unavailable"))
			return
		}
		if err := engine.Reset(ctx); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, engine.State(ctx))
	}
}
