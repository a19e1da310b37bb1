package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/traci1003/CareerCatalyst/internal/model"
)

const linkedInDefaultBaseURL = "https://api.linkedin.com"

// LinkedInConfig holds overridable settings for the LinkedIn adapter.
// Zero values fall back to production defaults, tests point BaseURL at a
// local httptest server.
type LinkedInConfig struct {
	BaseURL    string
	HTTPClient *http.Client
}

// LinkedInAdapter implements the Adapter contract (plus the Applier
// capability) on top of the LinkedIn jobs API. Credentials are token-style:
// an access token with an optional expiry.
type LinkedInAdapter struct {
	baseURL    string
	httpClient *http.Client
}

// NewLinkedInAdapter constructs a LinkedIn adapter from the given config
func NewLinkedInAdapter(cfg LinkedInConfig) *LinkedInAdapter {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = linkedInDefaultBaseURL
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &LinkedInAdapter{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
	}
}

// Name returns the platform identifier for LinkedIn
func (a *LinkedInAdapter) Name() string {
	return model.PlatformLinkedIn
}

// HasValidCredentials checks the token fields locally: the access token must
// be present and the expiry, when set, must be in the future. No network call.
func (a *LinkedInAdapter) HasValidCredentials(cred model.PlatformCredential) bool {
	if cred.AccessToken == "" {
		return false
	}
	if cred.ExpiresAt != nil && !cred.ExpiresAt.After(time.Now()) {
		return false
	}
	return true
}

// linkedInSearchResponse mirrors the jobs search envelope. Elements stay raw
// so each item can be stored verbatim in JobListing.Details.
type linkedInSearchResponse struct {
	Elements []json.RawMessage `json:"elements"`
	Paging   struct {
		Start int `json:"start"`
		Count int `json:"count"`
		Total int `json:"total"`
		Links []struct {
			Rel  string `json:"rel"`
			Href string `json:"href"`
		} `json:"links"`
	} `json:"paging"`
}

type linkedInJob struct {
	ID                json.Number `json:"id"`
	Title             string      `json:"title"`
	CompanyName       string      `json:"companyName"`
	FormattedLocation string      `json:"formattedLocation"`
	Description       struct {
		Text string `json:"text"`
	} `json:"description"`
	SalaryInsights string `json:"salaryInsights"`
	WorkplaceType  string `json:"workplaceType"`
	ListedAt       int64  `json:"listedAt"`
	ApplyURL       string `json:"applyUrl"`
}

// SearchJobs queries the LinkedIn search endpoint. LinkedIn accepts every
// requested location, so the whole list is forwarded. Failures never reach the
// caller: they are logged and degraded to an empty result.
func (a *LinkedInAdapter) SearchJobs(ctx context.Context, cred model.PlatformCredential, query SearchQuery) SearchResult {
	values := url.Values{}
	values.Set("keywords", strings.Join(query.Keywords, ","))
	if len(query.Locations) > 0 {
		values.Set("locations", strings.Join(query.Locations, ","))
	}
	if len(query.ExcludeKeywords) > 0 {
		values.Set("excludeKeywords", strings.Join(query.ExcludeKeywords, ","))
	}
	if query.RemoteOnly {
		values.Set("workplaceType", "remote")
	}
	if query.Experience != "" {
		values.Set("experienceLevel", query.Experience)
	}
	values.Set("start", strconv.Itoa(query.Offset()))
	values.Set("count", strconv.Itoa(query.PageSize()))

	endpoint := fmt.Sprintf("%s/v2/job-search?%s", a.baseURL, values.Encode())

	body, status, err := a.doRequest(ctx, http.MethodGet, endpoint, cred, nil)
	if err != nil {
		log.Printf("linkedin search failed: %v", err)
		return SearchResult{Jobs: []model.JobListing{}}
	}
	if status >= http.StatusBadRequest {
		log.Printf("linkedin search returned status %d: %s", status, strings.TrimSpace(string(body)))
		return SearchResult{Jobs: []model.JobListing{}}
	}

	var payload linkedInSearchResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		log.Printf("linkedin search response malformed: %v", err)
		return SearchResult{Jobs: []model.JobListing{}}
	}

	jobs := make([]model.JobListing, 0, len(payload.Elements))
	for _, raw := range payload.Elements {
		var item linkedInJob
		if err := json.Unmarshal(raw, &item); err != nil {
			log.Printf("linkedin job item malformed, skipping: %v", err)
			continue
		}
		jobs = append(jobs, normalizeLinkedInJob(query.UserID, item, raw))
	}

	// LinkedIn signals continuation through a "next" paging link
	hasMore := false
	for _, link := range payload.Paging.Links {
		if strings.EqualFold(link.Rel, "next") {
			hasMore = true
			break
		}
	}

	return SearchResult{Jobs: jobs, HasMore: hasMore, Total: payload.Paging.Total}
}

// GetJobDetails fetches a single job by native id, nil means the platform
// reported not-found
func (a *LinkedInAdapter) GetJobDetails(ctx context.Context, cred model.PlatformCredential, externalID string) (*model.JobListing, error) {
	endpoint := fmt.Sprintf("%s/v2/jobs/%s", a.baseURL, url.PathEscape(externalID))

	body, status, err := a.doRequest(ctx, http.MethodGet, endpoint, cred, nil)
	if err != nil {
		return nil, fmt.Errorf("linkedin job details request failed: %w", err)
	}
	if status == http.StatusNotFound {
		return nil, nil
	}
	if status >= http.StatusBadRequest {
		return nil, fmt.Errorf("linkedin job details returned status %d: %s", status, strings.TrimSpace(string(body)))
	}

	var item linkedInJob
	if err := json.Unmarshal(body, &item); err != nil {
		return nil, fmt.Errorf("linkedin job details response malformed: %w", err)
	}

	listing := normalizeLinkedInJob(cred.UserID, item, body)
	if listing.ExternalID == "" {
		listing.ExternalID = externalID
		listing.URL = fmt.Sprintf("https://www.linkedin.com/jobs/view/%s", externalID)
	}
	return &listing, nil
}

type linkedInApplyResponse struct {
	ApplicationID string `json:"applicationId"`
	Message       string `json:"message"`
	Error         string `json:"error"`
}

// ApplyToJob submits an application through the LinkedIn API. A transport
// error comes back as error, a platform rejection as Success=false with the
// platform's own message.
func (a *LinkedInAdapter) ApplyToJob(ctx context.Context, cred model.PlatformCredential, externalID string, payload ApplyPayload) (*ApplyResult, error) {
	reqBody := map[string]interface{}{
		"message": payload.Message,
	}
	if payload.ResumeID != nil {
		reqBody["resumeId"] = *payload.ResumeID
	}
	if payload.CoverLetterID != nil {
		reqBody["coverLetterId"] = *payload.CoverLetterID
	}

	encoded, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to encode apply payload: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v2/jobs/%s/applications", a.baseURL, url.PathEscape(externalID))

	body, status, err := a.doRequest(ctx, http.MethodPost, endpoint, cred, bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("linkedin apply request failed: %w", err)
	}

	var resp linkedInApplyResponse
	// Body may be empty or non-JSON on errors, the status decides
	_ = json.Unmarshal(body, &resp)

	if status >= http.StatusBadRequest {
		msg := resp.Error
		if msg == "" {
			msg = resp.Message
		}
		if msg == "" {
			msg = fmt.Sprintf("LinkedIn rejected the application (status %d)", status)
		}
		return &ApplyResult{Success: false, Message: msg}, nil
	}

	result := &ApplyResult{Success: true, Message: resp.Message}
	if result.Message == "" {
		result.Message = "Application submitted"
	}
	if resp.ApplicationID != "" {
		result.ApplicationID = &resp.ApplicationID
	}
	return result, nil
}

func (a *LinkedInAdapter) doRequest(ctx context.Context, method, endpoint string, cred model.PlatformCredential, body io.Reader) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Authorization", "Bearer "+cred.AccessToken)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return respBody, resp.StatusCode, nil
}

// normalizeLinkedInJob maps one LinkedIn job item to the canonical listing
// shape. Missing titles and companies get the literal defaults, a missing URL
// is synthesized from the job id, and the raw item is kept in Details.
func normalizeLinkedInJob(userID uuid.UUID, item linkedInJob, raw json.RawMessage) model.JobListing {
	externalID := item.ID.String()

	title := item.Title
	if title == "" {
		title = "Untitled Position"
	}
	company := item.CompanyName
	if company == "" {
		company = "Unknown Company"
	}

	jobURL := item.ApplyURL
	if jobURL == "" {
		jobURL = fmt.Sprintf("https://www.linkedin.com/jobs/view/%s", externalID)
	}

	listing := model.JobListing{
		UserID:     userID,
		Source:     model.PlatformLinkedIn,
		ExternalID: externalID,
		Title:      title,
		Company:    company,
		URL:        jobURL,
		Details:    datatypes.JSON(raw),
	}

	if item.FormattedLocation != "" {
		listing.Location = &item.FormattedLocation
	}
	if item.Description.Text != "" {
		listing.Description = &item.Description.Text
	}
	if item.SalaryInsights != "" {
		listing.Salary = &item.SalaryInsights
	}

	// Workplace type is tri-state: absent means unknown
	switch strings.ToLower(item.WorkplaceType) {
	case "remote":
		remote := true
		listing.IsRemote = &remote
	case "on-site", "onsite", "hybrid":
		remote := false
		listing.IsRemote = &remote
	}

	if item.ListedAt > 0 {
		postedAt := time.UnixMilli(item.ListedAt).UTC()
		listing.PostedAt = &postedAt
	}

	return listing
}
