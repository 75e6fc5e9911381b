package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httplog/v2"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"github.com/vadimbarashkov/shorturls/internal/entity"
)

type urlUseCase interface {
	ShortenURL(ctx context.Context, originalURL string, validity time.Duration, customCode string) (*entity.URL, error)
	ResolveShortCode(ctx context.Context, shortCode string, click entity.ClickEvent) (*entity.URL, error)
	GetURLStats(ctx context.Context, shortCode string) (*entity.URL, error)
}

type urlHandler struct {
	useCase  urlUseCase
	validate *validator.Validate
	baseURL  string
}

func newURLHandler(useCase urlUseCase, validate *validator.Validate, baseURL string) *urlHandler {
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &urlHandler{
		useCase:  useCase,
		validate: validate,
		baseURL:  strings.TrimSuffix(baseURL, "/"),
	}
}

func (h *urlHandler) shortenURL(w http.ResponseWriter, r *http.Request) {
	var req shortenRequest

	if err := render.DecodeJSON(r.Body, &req); err != nil {
		if errors.Is(err, io.EOF) {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, emptyRequestBodyResponse)
			return
		}

		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, invalidRequestBodyResponse)
		return
	}

	if err := h.validate.Struct(req); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, validationErrorResponse(err))
		return
	}

	var validity time.Duration
	if req.Validity != nil {
		validity = time.Duration(*req.Validity) * time.Minute
	}

	url, err := h.useCase.ShortenURL(r.Context(), req.URL, validity, req.ShortCode)
	if err != nil {
		switch {
		case errors.Is(err, entity.ErrInvalidURL):
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, errorResponse{Error: "invalid url"})
		case errors.Is(err, entity.ErrInvalidValidity):
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, errorResponse{Error: "validity must be a positive number of minutes"})
		case errors.Is(err, entity.ErrInvalidShortCode):
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, errorResponse{Error: "shortcode must be 3-10 alphanumeric characters"})
		case errors.Is(err, entity.ErrShortCodeExists):
			render.Status(r, http.StatusConflict)
			render.JSON(w, r, shortCodeExistsResponse)
		default:
			httplog.LogEntrySetField(r.Context(), "err", slog.AnyValue(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, serverErrorResponse)
		}
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, shortenResponse{
		ShortLink: fmt.Sprintf("%s/%s", h.baseURL, url.ShortCode),
		Expiry:    url.ExpiresAt,
	})
}

func (h *urlHandler) redirect(w http.ResponseWriter, r *http.Request) {
	shortCode := chi.URLParam(r, "shortCode")

	// RealIP middleware has already rewritten RemoteAddr; the raw address
	// string is the click's location, no geo lookup.
	click := entity.ClickEvent{
		Referrer: r.Referer(),
		Location: r.RemoteAddr,
	}

	url, err := h.useCase.ResolveShortCode(r.Context(), shortCode, click)
	if err != nil {
		switch {
		case errors.Is(err, entity.ErrURLNotFound):
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, urlNotFoundResponse)
		case errors.Is(err, entity.ErrURLExpired):
			render.Status(r, http.StatusGone)
			render.JSON(w, r, urlExpiredResponse)
		default:
			httplog.LogEntrySetField(r.Context(), "err", slog.AnyValue(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, serverErrorResponse)
		}
		return
	}

	http.Redirect(w, r, url.OriginalURL, http.StatusFound)
}

func (h *urlHandler) getURLStats(w http.ResponseWriter, r *http.Request) {
	shortCode := chi.URLParam(r, "shortCode")

	url, err := h.useCase.GetURLStats(r.Context(), shortCode)
	if err != nil {
		if errors.Is(err, entity.ErrURLNotFound) {
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, urlNotFoundResponse)
			return
		}

		httplog.LogEntrySetField(r.Context(), "err", slog.AnyValue(err))

		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, serverErrorResponse)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, toStatsResponse(url))
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	render.Status(r, http.StatusOK)
	render.JSON(w, r, healthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC(),
	})
}
