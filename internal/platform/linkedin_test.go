package platform

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/traci1003/CareerCatalyst/internal/model"
)

func linkedInTestCred() model.PlatformCredential {
	expiry := time.Now().Add(time.Hour)
	return model.PlatformCredential{
		UserID:      uuid.New(),
		Platform:    model.PlatformLinkedIn,
		AccessToken: "test-token",
		ExpiresAt:   &expiry,
	}
}

func TestLinkedInHasValidCredentials(t *testing.T) {
	adapter := NewLinkedInAdapter(LinkedInConfig{})

	t.Run("well formed non expiring", func(t *testing.T) {
		cred := model.PlatformCredential{AccessToken: "token"}
		assert.True(t, adapter.HasValidCredentials(cred))
	})

	t.Run("expiry in the future", func(t *testing.T) {
		assert.True(t, adapter.HasValidCredentials(linkedInTestCred()))
	})

	t.Run("expiry in the past", func(t *testing.T) {
		expired := time.Now().Add(-time.Minute)
		cred := model.PlatformCredential{AccessToken: "token", ExpiresAt: &expired}
		assert.False(t, adapter.HasValidCredentials(cred))
	})

	t.Run("missing token", func(t *testing.T) {
		assert.False(t, adapter.HasValidCredentials(model.PlatformCredential{}))
	})
}

func TestLinkedInSearchJobsNormalization(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/job-search", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		// page 1 with limit 2 maps to start=2, count=2
		assert.Equal(t, "2", r.URL.Query().Get("start"))
		assert.Equal(t, "2", r.URL.Query().Get("count"))
		assert.Equal(t, "React,Go", r.URL.Query().Get("keywords"))
		assert.Equal(t, "Berlin,Remote", r.URL.Query().Get("locations"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"elements": [
				{"id": 101, "title": "Backend Engineer", "companyName": "Initech", "formattedLocation": "Berlin", "description": {"text": "Go services"}, "workplaceType": "remote", "listedAt": 1700000000000, "applyUrl": "https://example.com/apply/101"},
				{"id": 102}
			],
			"paging": {"start": 2, "count": 2, "total": 40, "links": [{"rel": "next", "href": "/v2/job-search?start=4"}]}
		}`))
	}))
	defer srv.Close()

	adapter := NewLinkedInAdapter(LinkedInConfig{BaseURL: srv.URL})
	userID := uuid.New()

	result := adapter.SearchJobs(context.Background(), linkedInTestCred(), SearchQuery{
		UserID:    userID,
		Keywords:  []string{"React", "Go"},
		Locations: []string{"Berlin", "Remote"},
		Page:      1,
		Limit:     2,
	})

	require.Len(t, result.Jobs, 2)
	assert.True(t, result.HasMore, "next paging link should signal more pages")
	assert.Equal(t, 40, result.Total)

	first := result.Jobs[0]
	assert.Equal(t, userID, first.UserID)
	assert.Equal(t, model.PlatformLinkedIn, first.Source)
	assert.Equal(t, "101", first.ExternalID)
	assert.Equal(t, "Backend Engineer", first.Title)
	assert.Equal(t, "Initech", first.Company)
	assert.Equal(t, "https://example.com/apply/101", first.URL)
	require.NotNil(t, first.IsRemote)
	assert.True(t, *first.IsRemote)
	require.NotNil(t, first.PostedAt)
	assert.NotEmpty(t, first.Details)

	// Bare item falls back to the literal defaults and a synthesized URL
	second := result.Jobs[1]
	assert.Equal(t, "Untitled Position", second.Title)
	assert.Equal(t, "Unknown Company", second.Company)
	assert.Equal(t, "https://www.linkedin.com/jobs/view/102", second.URL)
	assert.Nil(t, second.IsRemote, "workplace type absent means unknown")
}

func TestLinkedInSearchJobsDegradesOnUpstreamFailure(t *testing.T) {
	t.Run("upstream 500", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		adapter := NewLinkedInAdapter(LinkedInConfig{BaseURL: srv.URL})
		result := adapter.SearchJobs(context.Background(), linkedInTestCred(), SearchQuery{Keywords: []string{"go"}})

		assert.Empty(t, result.Jobs)
		assert.False(t, result.HasMore)
		assert.Zero(t, result.Total)
	})

	t.Run("malformed body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("<html>not json</html>"))
		}))
		defer srv.Close()

		adapter := NewLinkedInAdapter(LinkedInConfig{BaseURL: srv.URL})
		result := adapter.SearchJobs(context.Background(), linkedInTestCred(), SearchQuery{Keywords: []string{"go"}})

		assert.Empty(t, result.Jobs)
		assert.False(t, result.HasMore)
	})

	t.Run("unreachable host", func(t *testing.T) {
		adapter := NewLinkedInAdapter(LinkedInConfig{BaseURL: "http://127.0.0.1:1"})
		result := adapter.SearchJobs(context.Background(), linkedInTestCred(), SearchQuery{Keywords: []string{"go"}})

		assert.Empty(t, result.Jobs)
		assert.False(t, result.HasMore)
	})
}

func TestLinkedInGetJobDetails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v2/jobs/555":
			_, _ = w.Write([]byte(`{"id": 555, "title": "Platform Engineer", "companyName": "Globex"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	adapter := NewLinkedInAdapter(LinkedInConfig{BaseURL: srv.URL})
	cred := linkedInTestCred()

	listing, err := adapter.GetJobDetails(context.Background(), cred, "555")
	require.NoError(t, err)
	require.NotNil(t, listing)
	assert.Equal(t, "555", listing.ExternalID)
	assert.Equal(t, "Platform Engineer", listing.Title)
	assert.Equal(t, cred.UserID, listing.UserID)

	// Platform not-found is absence, not an error
	missing, err := adapter.GetJobDetails(context.Background(), cred, "999")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestLinkedInApplyToJob(t *testing.T) {
	t.Run("accepted with application id", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/v2/jobs/555/applications", r.URL.Path)
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"applicationId": "app-123", "message": "Application received"}`))
		}))
		defer srv.Close()

		adapter := NewLinkedInAdapter(LinkedInConfig{BaseURL: srv.URL})
		resume := 7
		result, err := adapter.ApplyToJob(context.Background(), linkedInTestCred(), "555", ApplyPayload{
			ResumeID: &resume,
			Message:  "Hello",
		})

		require.NoError(t, err)
		assert.True(t, result.Success)
		assert.Equal(t, "Application received", result.Message)
		require.NotNil(t, result.ApplicationID)
		assert.Equal(t, "app-123", *result.ApplicationID)
	})

	t.Run("accepted without application id", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{}`))
		}))
		defer srv.Close()

		adapter := NewLinkedInAdapter(LinkedInConfig{BaseURL: srv.URL})
		result, err := adapter.ApplyToJob(context.Background(), linkedInTestCred(), "555", ApplyPayload{})

		require.NoError(t, err)
		assert.True(t, result.Success, "success must not depend on the platform returning an id")
		assert.Nil(t, result.ApplicationID)
	})

	t.Run("rejected with platform message", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = w.Write([]byte(`{"error": "Job posting is closed"}`))
		}))
		defer srv.Close()

		adapter := NewLinkedInAdapter(LinkedInConfig{BaseURL: srv.URL})
		result, err := adapter.ApplyToJob(context.Background(), linkedInTestCred(), "555", ApplyPayload{})

		require.NoError(t, err)
		assert.False(t, result.Success)
		assert.Equal(t, "Job posting is closed", result.Message)
	})
}
