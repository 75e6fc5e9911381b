// Package usecase implements the core URL shortening operations: creating
// records, resolving short codes into redirect targets and projecting click
// statistics.
package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/vadimbarashkov/shorturls/internal/entity"
)

// codeAlphabet holds the characters used for generated short codes.
const codeAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// shortCodeRegexp is the format every short code, requested or generated,
// must satisfy.
var shortCodeRegexp = regexp.MustCompile(`^[A-Za-z0-9]{3,10}$`)

type urlRepository interface {
	Save(ctx context.Context, url *entity.URL) (*entity.URL, error)
	GetByShortCode(ctx context.Context, shortCode string) (*entity.URL, error)
	RecordClick(ctx context.Context, shortCode string, click entity.ClickEvent) error
}

// URLUseCase provides the URL shortening business logic on top of a registry.
type URLUseCase struct {
	shortCodeLength int
	defaultValidity time.Duration
	urlRepo         urlRepository
	logger          *slog.Logger
}

// New creates a URLUseCase. Generated codes are shortCodeLength characters
// long; records created without an explicit validity live for defaultValidity.
func New(urlRepo urlRepository, logger *slog.Logger, shortCodeLength int, defaultValidity time.Duration) *URLUseCase {
	return &URLUseCase{
		shortCodeLength: shortCodeLength,
		defaultValidity: defaultValidity,
		urlRepo:         urlRepo,
		logger:          logger,
	}
}

// ShortenURL validates the original URL and validity, allocates or validates
// a short code and stores a new record. A zero validity means "not provided"
// and falls back to the default; a negative one is rejected. When customCode
// is empty a code is generated, retrying on collision up to a fixed cap.
func (uc *URLUseCase) ShortenURL(ctx context.Context, originalURL string, validity time.Duration, customCode string) (*entity.URL, error) {
	const op = "usecase.URLUseCase.ShortenURL"
	const maxRetries = 5

	if !isAbsoluteURL(originalURL) {
		return nil, fmt.Errorf("%s: %w", op, entity.ErrInvalidURL)
	}

	if validity == 0 {
		validity = uc.defaultValidity
	}
	if validity < 0 {
		return nil, fmt.Errorf("%s: %w", op, entity.ErrInvalidValidity)
	}

	now := time.Now()
	rec := &entity.URL{
		OriginalURL: originalURL,
		CreatedAt:   now,
		ExpiresAt:   now.Add(validity),
	}

	if customCode != "" {
		if !shortCodeRegexp.MatchString(customCode) {
			return nil, fmt.Errorf("%s: %w", op, entity.ErrInvalidShortCode)
		}

		rec.ShortCode = customCode

		url, err := uc.urlRepo.Save(ctx, rec)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to shorten url: %w", op, err)
		}

		return url, nil
	}

	for i := 0; i < maxRetries; i++ {
		shortCode, err := gonanoid.Generate(codeAlphabet, uc.shortCodeLength)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to generate short code: %w", op, err)
		}

		rec.ShortCode = shortCode

		url, err := uc.urlRepo.Save(ctx, rec)
		if err != nil {
			if errors.Is(err, entity.ErrShortCodeExists) {
				continue
			}

			return nil, fmt.Errorf("%s: failed to shorten url: %w", op, err)
		}

		return url, nil
	}

	return nil, fmt.Errorf("%s: %w", op, entity.ErrCodeSpaceExhausted)
}

// ResolveShortCode translates a short code into its redirect target, applying
// expiry policy and recording the click. A click-recording failure is logged
// and swallowed; it never fails the redirect.
func (uc *URLUseCase) ResolveShortCode(ctx context.Context, shortCode string, click entity.ClickEvent) (*entity.URL, error) {
	const op = "usecase.URLUseCase.ResolveShortCode"

	url, err := uc.urlRepo.GetByShortCode(ctx, shortCode)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to resolve short code: %w", op, err)
	}

	if url.ExpiredAt(time.Now()) {
		return nil, fmt.Errorf("%s: %w", op, entity.ErrURLExpired)
	}

	click.Timestamp = time.Now()

	if err := uc.urlRepo.RecordClick(ctx, shortCode, click); err != nil {
		uc.logger.Warn(
			"failed to record click",
			slog.String("short_code", shortCode),
			slog.Any("err", err),
		)
	}

	return url, nil
}

// GetURLStats retrieves the record behind a short code without mutating it.
// It works for expired records; an expired link still reports its history.
func (uc *URLUseCase) GetURLStats(ctx context.Context, shortCode string) (*entity.URL, error) {
	const op = "usecase.URLUseCase.GetURLStats"

	url, err := uc.urlRepo.GetByShortCode(ctx, shortCode)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to get url stats: %w", op, err)
	}

	return url, nil
}

// isAbsoluteURL reports whether s parses as an absolute URL with a host.
func isAbsoluteURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}

	return u.IsAbs() && u.Host != ""
}
