package http

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/vadimbarashkov/shorturls/internal/entity"
)

// Presentation defaults substituted for absent click metadata. Storage keeps
// the fields empty.
const (
	directReferrer  = "direct"
	unknownLocation = "unknown"
)

// shortenRequest represents the structure for a request to shorten a URL.
// Validity is in minutes; nil means "use the default".
type shortenRequest struct {
	URL       string `json:"url" validate:"required,url"`
	Validity  *int   `json:"validity,omitempty" validate:"omitempty,gt=0"`
	ShortCode string `json:"shortcode,omitempty" validate:"omitempty,alphanum,min=3,max=10"`
}

// shortenResponse represents the structure for a successful shortening response.
type shortenResponse struct {
	ShortLink string    `json:"shortLink"`
	Expiry    time.Time `json:"expiry"`
}

// clickDetail represents one click in the statistics response.
type clickDetail struct {
	Timestamp time.Time `json:"timestamp"`
	Referrer  string    `json:"referrer"`
	Location  string    `json:"location"`
}

// statsResponse represents the statistics of a shortened URL.
type statsResponse struct {
	TotalClicks  int64         `json:"totalClicks"`
	OriginalURL  string        `json:"originalUrl"`
	CreationDate time.Time     `json:"creationDate"`
	ExpiryDate   time.Time     `json:"expiryDate"`
	ClickDetails []clickDetail `json:"clickDetails"`
}

// toStatsResponse converts an entity.URL to a statsResponse, substituting
// the presentation defaults for absent click metadata.
func toStatsResponse(url *entity.URL) statsResponse {
	details := make([]clickDetail, 0, len(url.Clicks))
	for _, click := range url.Clicks {
		d := clickDetail{
			Timestamp: click.Timestamp,
			Referrer:  click.Referrer,
			Location:  click.Location,
		}
		if d.Referrer == "" {
			d.Referrer = directReferrer
		}
		if d.Location == "" {
			d.Location = unknownLocation
		}
		details = append(details, d)
	}

	return statsResponse{
		TotalClicks:  url.ClickCount,
		OriginalURL:  url.OriginalURL,
		CreationDate: url.CreatedAt,
		ExpiryDate:   url.ExpiresAt,
		ClickDetails: details,
	}
}

// healthResponse represents the structure of the health check response.
type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// errorResponse represents the structure of every failure response.
type errorResponse struct {
	Error string `json:"error"`
}

// Predefined error responses for common scenarios.
var (
	emptyRequestBodyResponse   = errorResponse{Error: "empty request body"}
	invalidRequestBodyResponse = errorResponse{Error: "invalid request body"}
	urlNotFoundResponse        = errorResponse{Error: "short url not found"}
	urlExpiredResponse         = errorResponse{Error: "short url expired"}
	shortCodeExistsResponse    = errorResponse{Error: "shortcode already in use"}
	serverErrorResponse        = errorResponse{Error: "server error occurred"}
)

// validationErrorResponse collapses validator errors into the flat error
// body, keyed off the first failing field.
func validationErrorResponse(err error) errorResponse {
	errs, ok := err.(validator.ValidationErrors)
	if !ok || len(errs) == 0 {
		return invalidRequestBodyResponse
	}

	switch errs[0].Field() {
	case "url":
		return errorResponse{Error: "invalid url"}
	case "validity":
		return errorResponse{Error: "validity must be a positive number of minutes"}
	case "shortcode":
		return errorResponse{Error: "shortcode must be 3-10 alphanumeric characters"}
	default:
		return invalidRequestBodyResponse
	}
}
