// Package jobboard provides HTTP handlers for searching, saving and applying
// to jobs across external job board platforms.
package jobboard

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/traci1003/CareerCatalyst/internal/database"
	"github.com/traci1003/CareerCatalyst/internal/model"
	"github.com/traci1003/CareerCatalyst/internal/platform"
	"github.com/traci1003/CareerCatalyst/internal/utilities"
)

// JobBoardController handles job board aggregation endpoints
type JobBoardController struct {
	DB       *database.DBinstanceStruct
	Registry *platform.Registry
}

// NewJobBoardController creates a new instance of JobBoardController with the
// provided database connection and adapter registry.
func NewJobBoardController(db *database.DBinstanceStruct, registry *platform.Registry) *JobBoardController {
	return &JobBoardController{
		DB:       db,
		Registry: registry,
	}
}

// resolveAdapter looks the requested platform up in the registry
func (j *JobBoardController) resolveAdapter(c *gin.Context) (platform.Adapter, bool) {
	name := c.Param("platform")
	adapter, ok := j.Registry.Get(name)
	if !ok {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Unsupported platform: %s", name),
		})
		return nil, false
	}
	return adapter, true
}

// credentialFor loads the stored credential row for (user, platform).
// Absence and invalidity are reported separately so the frontend can render
// different guidance for each.
func (j *JobBoardController) credentialFor(c *gin.Context, userID uuid.UUID, adapter platform.Adapter) (model.PlatformCredential, bool) {
	var cred model.PlatformCredential
	err := j.DB.Where("user_id = ? AND platform = ?", userID, adapter.Name()).First(&cred).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
				Error: fmt.Sprintf("No credentials stored for %s. Please add your credentials first.", adapter.Name()),
			})
			return cred, false
		}
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to retrieve credentials: %s", err.Error()),
		})
		return cred, false
	}

	if !adapter.HasValidCredentials(cred) {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{
			Error: fmt.Sprintf("Credentials for %s are invalid or expired. Please re-enter them.", adapter.Name()),
		})
		return cred, false
	}

	return cred, true
}

// splitList splits a comma-delimited query parameter into trimmed parts
func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func parseSearchQuery(c *gin.Context, userID uuid.UUID) platform.SearchQuery {
	page, _ := strconv.Atoi(c.Query("page"))
	limit, _ := strconv.Atoi(c.Query("limit"))
	remote, _ := strconv.ParseBool(c.Query("remote"))

	return platform.SearchQuery{
		UserID:          userID,
		Keywords:        splitList(c.Query("keywords")),
		Locations:       splitList(c.Query("locations")),
		ExcludeKeywords: splitList(c.Query("exclude")),
		RemoteOnly:      remote,
		Experience:      c.Query("experience"),
		Page:            page,
		Limit:           limit,
	}
}

// SearchHandler searches one external platform and merges the results with
// previously saved listings.
// @Summary Search jobs on an external platform
// @Description Runs a search through the platform adapter and deduplicates results against saved listings
// @Tags JobBoard
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param platform path string true "Platform identifier (linkedin, indeed)"
// @Param keywords query string false "Comma-delimited keywords"
// @Param locations query string false "Comma-delimited locations"
// @Param exclude query string false "Comma-delimited exclusion keywords"
// @Param remote query bool false "Remote-only filter"
// @Param experience query string false "Experience level free text"
// @Param page query int false "Zero-based page index"
// @Param limit query int false "Page size, default 20"
// @Success 200 {object} platform.SearchResult "Search results"
// @Failure 400 {object} utilities.ErrorResponse "Unsupported platform or missing credentials"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token or expired credentials"
// @Router /jobboard/{platform}/search [get]
func (j *JobBoardController) SearchHandler(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	adapter, ok := j.resolveAdapter(c)
	if !ok {
		return
	}

	cred, ok := j.credentialFor(c, user.ID, adapter)
	if !ok {
		return
	}

	query := parseSearchQuery(c, user.ID)
	result := adapter.SearchJobs(c.Request.Context(), cred, query)

	// Dedup one item at a time so a single bad row cannot sink the batch.
	// Existing rows win over freshly fetched data, which keeps user-side
	// applied/hidden flags intact across repeated searches.
	jobs := make([]model.JobListing, 0, len(result.Jobs))
	for _, listing := range result.Jobs {
		saved, err := j.ingestListing(listing)
		if err != nil {
			log.Printf("failed to persist listing %s/%s for user %s: %v",
				listing.Source, listing.ExternalID, user.ID, err)
			continue
		}
		jobs = append(jobs, saved)
	}

	c.JSON(http.StatusOK, platform.SearchResult{
		Jobs:    jobs,
		HasMore: result.HasMore,
		Total:   result.Total,
	})
}

// ingestListing persists a freshly fetched listing unless the same external
// job is already saved for the user, in which case the existing row is
// returned untouched. Uniqueness is enforced by the database index, so two
// concurrent searches racing on the same job cannot create duplicates.
func (j *JobBoardController) ingestListing(listing model.JobListing) (model.JobListing, error) {
	res := j.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "source"}, {Name: "external_id"}},
		DoNothing: true,
	}).Create(&listing)
	if res.Error != nil {
		return model.JobListing{}, res.Error
	}

	if res.RowsAffected == 0 {
		var existing model.JobListing
		err := j.DB.Where("user_id = ? AND source = ? AND external_id = ?",
			listing.UserID, listing.Source, listing.ExternalID).First(&existing).Error
		if err != nil {
			return model.JobListing{}, err
		}
		return existing, nil
	}

	return listing, nil
}

// DetailsHandler fetches a single job from the platform by its native id and
// saves it locally.
// @Summary Fetch job details from an external platform
// @Tags JobBoard
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param platform path string true "Platform identifier"
// @Param external_id path string true "Platform-native job id"
// @Success 200 {object} model.JobListing "Saved listing"
// @Failure 400 {object} utilities.ErrorResponse "Unsupported platform or missing credentials"
// @Failure 404 {object} utilities.ErrorResponse "Job not found on the platform"
// @Failure 502 {object} utilities.ErrorResponse "Platform request failed"
// @Router /jobboard/{platform}/jobs/{external_id} [get]
func (j *JobBoardController) DetailsHandler(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	adapter, ok := j.resolveAdapter(c)
	if !ok {
		return
	}

	cred, ok := j.credentialFor(c, user.ID, adapter)
	if !ok {
		return
	}

	externalID := c.Param("external_id")

	listing, err := adapter.GetJobDetails(c.Request.Context(), cred, externalID)
	if err != nil {
		c.JSON(http.StatusBadGateway, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to fetch job details: %s", err.Error()),
		})
		return
	}
	if listing == nil {
		c.JSON(http.StatusNotFound, utilities.ErrorResponse{
			Error: fmt.Sprintf("Job %s not found on %s", externalID, adapter.Name()),
		})
		return
	}

	listing.UserID = user.ID
	saved, err := j.ingestListing(*listing)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to save listing: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, saved)
}

// credentialPayload is the inbound shape for credential updates. Both
// credential styles share it, the platform's adapter decides which fields
// matter.
type credentialPayload struct {
	AccessToken  string     `json:"access_token"`
	RefreshToken string     `json:"refresh_token"`
	ExpiresAt    *time.Time `json:"expires_at"`
	Scopes       []string   `json:"scopes"`
	PublisherID  string     `json:"publisher_id"`
	APIKey       string     `json:"api_key"`
}

// UpdateCredentialsHandler stores or replaces the user's credentials for one
// platform.
// @Summary Update platform credentials
// @Tags JobBoard
// @Accept json
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param platform path string true "Platform identifier"
// @Param credentials body credentialPayload true "Credential payload"
// @Success 200 {object} utilities.MessageResponse "Credentials stored"
// @Failure 400 {object} utilities.ErrorResponse "Unsupported platform or invalid body"
// @Router /jobboard/{platform}/credentials [put]
func (j *JobBoardController) UpdateCredentialsHandler(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	adapter, ok := j.resolveAdapter(c)
	if !ok {
		return
	}

	payload := credentialPayload{}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Invalid request body: %s", err.Error()),
		})
		return
	}

	cred := model.PlatformCredential{
		UserID:       user.ID,
		Platform:     adapter.Name(),
		AccessToken:  payload.AccessToken,
		RefreshToken: payload.RefreshToken,
		ExpiresAt:    payload.ExpiresAt,
		Scopes:       payload.Scopes,
		PublisherID:  payload.PublisherID,
		APIKey:       payload.APIKey,
	}

	err = j.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "platform"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"access_token", "refresh_token", "expires_at", "scopes", "publisher_id", "api_key", "updated_at",
		}),
	}).Create(&cred).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to store credentials: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, utilities.MessageResponse{
		Message: fmt.Sprintf("Credentials for %s updated", adapter.Name()),
	})
}
