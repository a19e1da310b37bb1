package platform

import (
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

const indeedDefaultBaseURL = "https://api.indeed.com"

// IndeedConfig holds overridable settings for the Indeed adapter
type IndeedConfig struct {
	BaseURL    string
	HTTPClient *http.Client
}

// IndeedAdapter implements the Adapter contract on top of the Indeed
// publisher API. Credentials are key-pair-style: publisher id plus API key,
// with no expiry. Indeed has no programmatic apply, so this adapter
// deliberately does not implement Applier.
type IndeedAdapter struct {
	baseURL    string
	httpClient *http.Client
}

// NewIndeedAdapter constructs an Indeed adapter from the given config
func NewIndeedAdapter(cfg IndeedConfig) *IndeedAdapter {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = indeedDefaultBaseURL
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &IndeedAdapter{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
	}
}

// Name returns the platform identifier for Indeed
func (a *IndeedAdapter) Name() string {
	return model.PlatformIndeed
}

// HasValidCredentials requires both key-pair fields. Indeed keys do not
// expire, so there is no timestamp to check.
func (a *IndeedAdapter) HasValidCredentials(cred model.PlatformCredential) bool {
	return cred.PublisherID != "" && cred.APIKey != ""
}

type indeedSearchResponse struct {
	TotalResults int               `json:"totalResults"`
	Start        int               `json:"start"`
	End          int               `json:"end"`
	Results      []json.RawMessage `json:"results"`
}

type indeedJob struct {
	JobKey            string `json:"jobkey"`
	JobTitle          string `json:"jobtitle"`
	Company           string `json:"company"`
	FormattedLocation string `json:"formattedLocation"`
	Snippet           string `json:"snippet"`
	URL               string `json:"url"`
	Date              string `json:"date"`
	FormattedRelative string `json:"formattedRelativeTime"`
	Remote            *bool  `json:"remote,omitempty"`
}

// SearchJobs queries the Indeed publisher search endpoint. Indeed only takes a
// single location, so everything past the first requested one is silently
// dropped. Exclusion keywords are folded into the query string with a leading
// minus, the way the Indeed query language expects. Failures never reach the
// caller: they are logged and degraded to an empty result.
func (a *IndeedAdapter) SearchJobs(ctx context.Context, cred model.PlatformCredential, query SearchQuery) SearchResult {
	terms := make([]string, 0, len(query.Keywords)+len(query.ExcludeKeywords))
	terms = append(terms, query.Keywords...)
	for _, kw := range query.ExcludeKeywords {
		terms = append(terms, "-"+kw)
	}

	values := url.Values{}
	values.Set("publisher", cred.PublisherID)
	values.Set("v", "2")
	values.Set("format", "json")
	values.Set("q", strings.Join(terms, " "))
	if len(query.Locations) > 0 {
		values.Set("l", query.Locations[0])
	}
	if query.RemoteOnly {
		values.Set("remotejob", "1")
	}
	if query.Experience != "" {
		values.Set("explvl", query.Experience)
	}
	values.Set("start", strconv.Itoa(query.Offset()))
	values.Set("limit", strconv.Itoa(query.PageSize()))

	endpoint := fmt.Sprintf("%s/ads/apisearch?%s", a.baseURL, values.Encode())

	body, status, err := a.doRequest(ctx, endpoint, cred)
	if err != nil {
		log.Printf("indeed search failed: %v", err)
		return SearchResult{Jobs: []model.JobListing{}}
	}
	if status >= http.StatusBadRequest {
		log.Printf("indeed search returned status %d: %s", status, strings.TrimSpace(string(body)))
		return SearchResult{Jobs: []model.JobListing{}}
	}

	var payload indeedSearchResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		log.Printf("indeed search response malformed: %v", err)
		return SearchResult{Jobs: []model.JobListing{}}
	}

	jobs := make([]model.JobListing, 0, len(payload.Results))
	for _, raw := range payload.Results {
		var item indeedJob
		if err := json.Unmarshal(raw, &item); err != nil {
			log.Printf("indeed job item malformed, skipping: %v", err)
			continue
		}
		jobs = append(jobs, normalizeIndeedJob(query.UserID, item, raw))
	}

	// Indeed has no next-page link, continuation is arithmetic
	hasMore := payload.Start+len(payload.Results) < payload.TotalResults

	return SearchResult{Jobs: jobs, HasMore: hasMore, Total: payload.TotalResults}
}

// GetJobDetails fetches a single job through the apigetjobs endpoint, nil
// means Indeed reported no job for the key
func (a *IndeedAdapter) GetJobDetails(ctx context.Context, cred model.PlatformCredential, externalID string) (*model.JobListing, error) {
	values := url.Values{}
	values.Set("publisher", cred.PublisherID)
	values.Set("v", "2")
	values.Set("format", "json")
	values.Set("jobkeys", externalID)

	endpoint := fmt.Sprintf("%s/ads/apigetjobs?%s", a.baseURL, values.Encode())

	body, status, err := a.doRequest(ctx, endpoint, cred)
	if err != nil {
		return nil, fmt.Errorf("indeed job details request failed: %w", err)
	}
	if status == http.StatusNotFound {
		return nil, nil
	}
	if status >= http.StatusBadRequest {
		return nil, fmt.Errorf("indeed job details returned status %d: %s", status, strings.TrimSpace(string(body)))
	}

	var payload indeedSearchResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("indeed job details response malformed: %w", err)
	}
	if len(payload.Results) == 0 {
		return nil, nil
	}

	var item indeedJob
	if err := json.Unmarshal(payload.Results[0], &item); err != nil {
		return nil, fmt.Errorf("indeed job item malformed: %w", err)
	}

	listing := normalizeIndeedJob(cred.UserID, item, payload.Results[0])
	if listing.ExternalID == "" {
		listing.ExternalID = externalID
		listing.URL = fmt.Sprintf("https://www.indeed.com/viewjob?jk=%s", externalID)
	}
	return &listing, nil
}

func (a *IndeedAdapter) doRequest(ctx context.Context, endpoint string, cred model.PlatformCredential) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Api-Key", cred.APIKey)

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

// normalizeIndeedJob maps one Indeed result to the canonical listing shape
// with the same defaulting rules every adapter follows. Indeed has no salary
// field in search results, so Salary stays unset.
func normalizeIndeedJob(userID uuid.UUID, item indeedJob, raw json.RawMessage) model.JobListing {
	title := item.JobTitle
	if title == "" {
		title = "Untitled Position"
	}
	company := item.Company
	if company == "" {
		company = "Unknown Company"
	}

	jobURL := item.URL
	if jobURL == "" {
		jobURL = fmt.Sprintf("https://www.indeed.com/viewjob?jk=%s", item.JobKey)
	}

	listing := model.JobListing{
		UserID:     userID,
		Source:     model.PlatformIndeed,
		ExternalID: item.JobKey,
		Title:      title,
		Company:    company,
		URL:        jobURL,
		IsRemote:   item.Remote,
		Details:    datatypes.JSON(raw),
	}

	if item.FormattedLocation != "" {
		listing.Location = &item.FormattedLocation
	}
	if item.Snippet != "" {
		listing.Description = &item.Snippet
	}

	if item.Date != "" {
		if postedAt, err := time.Parse(time.RFC1123, item.Date); err == nil {
			utc := postedAt.UTC()
			listing.PostedAt = &utc
		}
	}

	return listing
}
