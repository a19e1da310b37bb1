package jobboard

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/traci1003/CareerCatalyst/internal/model"
	"github.com/traci1003/CareerCatalyst/internal/platform"
	"github.com/traci1003/CareerCatalyst/internal/utilities"
)

// applyRequest is the inbound shape for job applications
type applyRequest struct {
	ListingID     uint   `json:"listing_id" binding:"required"`
	ResumeID      *int   `json:"resume_id"`
	CoverLetterID *int   `json:"cover_letter_id"`
	Message       string `json:"message"`
}

// applyResponse is returned for both successful and platform-rejected applies
type applyResponse struct {
	Success     bool               `json:"success"`
	Message     string             `json:"message"`
	Application *model.Application `json:"application,omitempty"`
}

// ApplyHandler drives the apply workflow: validate the request, submit the
// application through the platform adapter, then record the outcome locally.
// The external platform accepting the application is the event of record, so
// recording failures after a successful submission are logged and degraded,
// never rolled back.
// @Summary Apply to a saved job listing through its platform
// @Tags JobBoard
// @Accept json
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param platform path string true "Platform identifier"
// @Param application body applyRequest true "Application information"
// @Success 201 {object} applyResponse "Application submitted"
// @Failure 400 {object} utilities.ErrorResponse "Unsupported platform, apply not supported, or invalid body"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token or expired credentials"
// @Failure 404 {object} utilities.ErrorResponse "Listing not found"
// @Failure 502 {object} applyResponse "Platform rejected the application"
// @Router /jobboard/{platform}/apply [post]
func (j *JobBoardController) ApplyHandler(c *gin.Context) {
	// validating
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	adapter, ok := j.resolveAdapter(c)
	if !ok {
		return
	}

	req := applyRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Invalid request body: %s", err.Error()),
		})
		return
	}

	var listing model.JobListing
	if err := j.DB.Where("id = ? AND user_id = ?", req.ListingID, user.ID).First(&listing).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, utilities.ErrorResponse{
				Error: "Job listing not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to retrieve listing: %s", err.Error()),
		})
		return
	}

	if listing.Source != adapter.Name() {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Listing %d belongs to %s, not %s", listing.ID, listing.Source, adapter.Name()),
		})
		return
	}

	if listing.Applied {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: "You have already applied to this job",
		})
		return
	}

	cred, ok := j.credentialFor(c, user.ID, adapter)
	if !ok {
		return
	}

	// invoking
	applier, ok := adapter.(platform.Applier)
	if !ok {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Applying is not supported for %s", adapter.Name()),
		})
		return
	}

	payload := platform.ApplyPayload{
		ResumeID:      req.ResumeID,
		CoverLetterID: req.CoverLetterID,
		Message:       req.Message,
	}

	result, err := applier.ApplyToJob(c.Request.Context(), cred, listing.ExternalID, payload)
	if err != nil {
		c.JSON(http.StatusBadGateway, applyResponse{
			Success: false,
			Message: fmt.Sprintf("Failed to submit application: %s", err.Error()),
		})
		return
	}

	if !result.Success {
		msg := result.Message
		if msg == "" {
			msg = "Application was not accepted by the platform"
		}
		c.JSON(http.StatusBadGateway, applyResponse{Success: false, Message: msg})
		return
	}

	// recording: the platform already accepted the application, so each of the
	// three writes below is attempted regardless of the others failing. A
	// partially recorded apply is a degraded outcome, not a rollback trigger.
	if err := j.DB.Model(&listing).Update("applied", true).Error; err != nil {
		log.Printf("failed to flag listing %d as applied for user %s: %v", listing.ID, user.ID, err)
	}

	application := &model.Application{
		AppliedAt:             time.Now(),
		Status:                model.ApplicationStatusApplied,
		UserID:                user.ID,
		ListingID:             listing.ID,
		Title:                 listing.Title,
		Company:               listing.Company,
		ExternalApplicationID: result.ApplicationID,
		ResumeID:              req.ResumeID,
		CoverLetterID:         req.CoverLetterID,
		Message:               req.Message,
	}
	if err := j.DB.Create(application).Error; err != nil {
		log.Printf("failed to record application for listing %d, user %s: %v", listing.ID, user.ID, err)
		application = nil
	}

	if err := j.incrementTotalApplications(user.ID); err != nil {
		log.Printf("failed to increment application counter for user %s: %v", user.ID, err)
	}

	c.JSON(http.StatusCreated, applyResponse{
		Success:     true,
		Message:     result.Message,
		Application: application,
	})
}

// incrementTotalApplications bumps the user's aggregate counter, creating the
// stats row on first apply.
func (j *JobBoardController) incrementTotalApplications(userID uuid.UUID) error {
	return j.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"total_applications": gorm.Expr("user_stats.total_applications + 1"),
		}),
	}).Create(&model.UserStats{UserID: userID, TotalApplications: 1}).Error
}
