package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/venuecast/venuecast-backend/api/responses"
	"github.com/venuecast/venuecast-backend/api/validators"
	"github.com/venuecast/venuecast-backend/internal/gifts"
	pkgerrors "github.com/venuecast/venuecast-backend/pkg/errors"
	"github.com/venuecast/venuecast-backend/pkg/logger"
)

type giftItemPayload struct {
	Name        string          `json:"name" validate:"required,max=120"`
	Price       decimal.Decimal `json:"price" validate:"required"`
	Description string          `json:"description,omitempty" validate:"omitempty,max=500"`
	ImageURL    string          `json:"imageUrl,omitempty" validate:"omitempty,max=500"`
}

type tableCountPayload struct {
	TableCount int `json:"tableCount" validate:"required,min=1,max=500"`
}

// GiftCatalogList returns every orderable gift item.
func GiftCatalogList(svc gifts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "gifts service unavailable"))
			return
		}

		items, err := svc.ListItems(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}

// GiftCatalogCreate adds a catalog item.
func GiftCatalogCreate(svc gifts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "gifts service unavailable"))
			return
		}

		var payload giftItemPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		created, err := svc.CreateItem(ctx, gifts.ItemInput{
			Name:        payload.Name,
			Price:       payload.Price,
			Description: payload.Description,
			ImageURL:    payload.ImageURL,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}

// GiftCatalogUpdate replaces a catalog item's fields.
func GiftCatalogUpdate(svc gifts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "gifts service unavailable"))
			return
		}

		id := chi.URLParam(r, "id")
		if id == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "gift item id is required"))
			return
		}

		var payload giftItemPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		updated, err := svc.UpdateItem(ctx, id, gifts.ItemInput{
			Name:        payload.Name,
			Price:       payload.Price,
			Description: payload.Description,
			ImageURL:    payload.ImageURL,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, updated)
	}
}

// GiftCatalogDelete removes a catalog item.
func GiftCatalogDelete(svc gifts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "gifts service unavailable"))
			return
		}

		id := chi.URLParam(r, "id")
		if id == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "gift item id is required"))
			return
		}

		if err := svc.DeleteItem(ctx, id); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// GiftImageUpload stores a catalog image and returns its public path. The
// path goes into the item's imageUrl on a later create or update call.
func GiftImageUpload(uploader Uploader, maxUploadMB int, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if uploader == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "upload storage unavailable"))
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, int64(maxUploadMB)<<20)
		if err := r.ParseMultipartForm(4 << 20); err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart body"))
			return
		}
		_, header, err := r.FormFile("file")
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "file field is required"))
			return
		}

		path, err := uploader.SaveMultipart(ctx, header)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]string{
			"path": path,
			"url":  "/uploads/" + path,
		})
	}
}

// GiftSettingsGet returns ordering configuration such as the table count.
func GiftSettingsGet(svc gifts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "gifts service unavailable"))
			return
		}

		settings, err := svc.GetSettings(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, settings)
	}
}

// GiftSettingsUpdate changes the venue table count.
func GiftSettingsUpdate(svc gifts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "gifts service unavailable"))
			return
		}

		var payload tableCountPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		updated, err := svc.UpdateTableCount(ctx, payload.TableCount)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, updated)
	}
}
