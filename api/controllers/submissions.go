package controllers

import (
	"context"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/venuecast/venuecast-backend/api/responses"
	"github.com/venuecast/venuecast-backend/api/validators"
	"github.com/venuecast/venuecast-backend/internal/submissions"
	"github.com/venuecast/venuecast-backend/pkg/enums"
	pkgerrors "github.com/venuecast/venuecast-backend/pkg/errors"
	"github.com/venuecast/venuecast-backend/pkg/logger"
	"github.com/venuecast/venuecast-backend/pkg/types"
)

// Uploader persists a multipart file and returns its relative path.
type Uploader interface {
	SaveMultipart(ctx context.Context, fh *multipart.FileHeader) (string, error)
}

type createSubmissionPayload struct {
	Kind           string           `json:"kind" validate:"required,oneof=text gift"`
	Text           string           `json:"text,omitempty"`
	TextColor      string           `json:"textColor,omitempty" validate:"omitempty,hexcolor"`
	Sender         string           `json:"sender,omitempty" validate:"omitempty,max=64"`
	SocialType     *string          `json:"socialType,omitempty"`
	SocialName     *string          `json:"socialName,omitempty"`
	DisplaySeconds int              `json:"displaySeconds,omitempty" validate:"omitempty,min=0,max=600"`
	Price          decimal.Decimal  `json:"price,omitempty"`
	GiftOrder      *types.GiftOrder `json:"giftOrder,omitempty"`
}

// SubmissionCreate accepts a patron text or gift submission.
func SubmissionCreate(svc submissions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "submissions service unavailable"))
			return
		}

		var payload createSubmissionPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		kind, err := enums.ParseSubmissionKind(payload.Kind)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid submission kind"))
			return
		}

		created, err := svc.Create(ctx, submissions.CreateInput{
			Kind:           kind,
			Text:           payload.Text,
			TextColor:      payload.TextColor,
			SocialType:     payload.SocialType,
			SocialName:     payload.SocialName,
			GiftOrder:      payload.GiftOrder,
			DisplaySeconds: payload.DisplaySeconds,
			Price:          payload.Price,
			Sender:         payload.Sender,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}

// SubmissionUpload accepts a patron image submission as multipart form data.
// The file lands on disk first; the database row only references its path.
func SubmissionUpload(svc submissions.Service, uploads Uploader, maxUploadMB int, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil || uploads == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "submissions service unavailable"))
			return
		}

		maxBytes := int64(maxUploadMB) << 20
		if maxBytes > 0 {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
		}
		if err := r.ParseMultipartForm(4 << 20); err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart body"))
			return
		}

		_, fh, err := r.FormFile("file")
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "image file is required"))
			return
		}

		input := submissions.CreateInput{
			Kind:      enums.SubmissionKindImage,
			Text:      strings.TrimSpace(r.FormValue("text")),
			TextColor: strings.TrimSpace(r.FormValue("textColor")),
			Sender:    strings.TrimSpace(r.FormValue("sender")),
		}
		if v := strings.TrimSpace(r.FormValue("socialType")); v != "" {
			input.SocialType = &v
		}
		if v := strings.TrimSpace(r.FormValue("socialName")); v != "" {
			input.SocialName = &v
		}
		if v := strings.TrimSpace(r.FormValue("composed")); v != "" {
			composed, err := strconv.ParseBool(v)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "composed must be a boolean"))
				return
			}
			input.Composed = composed
		}
		if v := strings.TrimSpace(r.FormValue("displaySeconds")); v != "" {
			seconds, err := strconv.Atoi(v)
			if err != nil || seconds < 0 {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "displaySeconds must be a non-negative integer"))
				return
			}
			input.DisplaySeconds = seconds
		}
		if v := strings.TrimSpace(r.FormValue("price")); v != "" {
			price, err := decimal.NewFromString(v)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "price must be a decimal number"))
				return
			}
			input.Price = price
		}

		path, err := uploads.SaveMultipart(ctx, fh)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store uploaded image"))
			return
		}
		input.FilePath = &path

		created, err := svc.Create(ctx, input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}
