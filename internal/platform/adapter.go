// Package platform implements the uniform contract over external job board APIs.
// Each supported board gets one Adapter that hides its native authentication,
// pagination and response shape behind the canonical types below.
package platform

import (
	"context"

	"github.com/google/uuid"

	"github.com/traci1003/CareerCatalyst/internal/model"
)

// DefaultPageSize is used when a search query does not specify a limit
const DefaultPageSize = 20

// SearchQuery is the platform-agnostic search request. Adapters translate it
// into whatever their platform natively accepts (some boards take every
// location, some only the first one).
type SearchQuery struct {
	UserID          uuid.UUID
	Keywords        []string
	Locations       []string
	ExcludeKeywords []string
	RemoteOnly      bool
	Experience      string
	Page            int
	Limit           int
}

// PageSize returns the effective page size for the query
func (q SearchQuery) PageSize() int {
	if q.Limit <= 0 {
		return DefaultPageSize
	}
	return q.Limit
}

// Offset returns the zero-based item offset for the query
func (q SearchQuery) Offset() int {
	page := q.Page
	if page < 0 {
		page = 0
	}
	return page * q.PageSize()
}

// SearchResult is one page of normalized listings. Produced fresh per call,
// never cached.
type SearchResult struct {
	Jobs    []model.JobListing `json:"jobs"`
	HasMore bool               `json:"has_more"`
	Total   int                `json:"total"`
}

// ApplyPayload carries the optional documents and message for a job application
type ApplyPayload struct {
	ResumeID      *int
	CoverLetterID *int
	Message       string
}

// ApplyResult is the platform's answer to an application submission.
// ApplicationID is set only when the platform reports one.
type ApplyResult struct {
	Success       bool
	Message       string
	ApplicationID *string
}

// Adapter is the uniform contract implemented once per external job board.
type Adapter interface {
	// Name returns the lower-case platform identifier, e.g. "linkedin"
	Name() string

	// HasValidCredentials is a pure local check (field presence, expiry
	// against the current time). It never makes a network call and returns
	// false, not an error, for missing or malformed credentials.
	HasValidCredentials(cred model.PlatformCredential) bool

	// SearchJobs runs a platform-native search and maps every returned item
	// into the canonical JobListing shape. It never fails upward: on any
	// underlying error (network, auth, malformed response) it logs the cause
	// and returns an empty result with HasMore=false and Total=0.
	SearchJobs(ctx context.Context, cred model.PlatformCredential, query SearchQuery) SearchResult

	// GetJobDetails fetches one job by its platform-native id. A nil listing
	// with nil error means the platform reported not-found.
	GetJobDetails(ctx context.Context, cred model.PlatformCredential, externalID string) (*model.JobListing, error)
}

// Applier is the optional apply capability. Not every board supports
// programmatic applications; callers type-assert and treat absence as an
// unsupported-platform condition, not an error.
type Applier interface {
	ApplyToJob(ctx context.Context, cred model.PlatformCredential, externalID string, payload ApplyPayload) (*ApplyResult, error)
}
