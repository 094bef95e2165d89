package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/venuecast/venuecast-backend/api/responses"
	"github.com/venuecast/venuecast-backend/api/validators"
	"github.com/venuecast/venuecast-backend/internal/submissions"
	pkgerrors "github.com/venuecast/venuecast-backend/pkg/errors"
	"github.com/venuecast/venuecast-backend/pkg/logger"
)

// QueueList returns pending submissions in arrival order.
func QueueList(svc submissions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "submissions service unavailable"))
			return
		}

		items, err := svc.ListPending(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}

// QueueApprove marks a pending submission approved and hands it to playback.
func QueueApprove(svc submissions.Service, logg *logger.Logger) http.HandlerFunc {
	return dispose(svc, logg, svcApprove)
}

// QueueReject marks a pending submission rejected and discards its asset.
func QueueReject(svc submissions.Service, logg *logger.Logger) http.HandlerFunc {
	return dispose(svc, logg, svcReject)
}

type disposeFn func(svc submissions.Service, r *http.Request, id string) (any, error)

func svcApprove(svc submissions.Service, r *http.Request, id string) (any, error) {
	return svc.Approve(r.Context(), id)
}

func svcReject(svc submissions.Service, r *http.Request, id string) (any, error) {
	return svc.Reject(r.Context(), id)
}

func dispose(svc submissions.Service, logg *logger.Logger, fn disposeFn) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "submissions service unavailable"))
			return
		}

		id := chi.URLParam(r, "id")
		if id == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "submission id is required"))
			return
		}

		result, err := fn(svc, r, id)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// QueueDelete drops a still-pending submission without recording a decision.
func QueueDelete(svc submissions.Service, logg *logger.Logger) http.HandlerFunc {
	return dispose(svc, logg, func(svc submissions.Service, r *http.Request, id string) (any, error) {
		if err := svc.DeletePending(r.Context(), id); err != nil {
			return nil, err
		}
		return map[string]string{"id": id}, nil
	})
}

// HistoryList returns the full disposition history in decision order.
// A limit query keeps only the most recent decisions.
func HistoryList(svc submissions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "submissions service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", 0, 0, 500)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		items, err := svc.ListChecked(ctx, limit)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}

// HistoryDelete removes one disposed submission from the history list.
func HistoryDelete(svc submissions.Service, logg *logger.Logger) http.HandlerFunc {
	return dispose(svc, logg, func(svc submissions.Service, r *http.Request, id string) (any, error) {
		if err := svc.DeleteHistoryEntry(r.Context(), id); err != nil {
			return nil, err
		}
		return map[string]string{"id": id}, nil
	})
}

// HistoryClear wipes the disposition history.
func HistoryClear(svc submissions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "submissions service unavailable"))
			return
		}

		removed, err := svc.ClearHistory(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]int64{"removed": removed})
	}
}
