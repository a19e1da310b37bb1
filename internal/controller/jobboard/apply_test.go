package jobboard

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/traci1003/CareerCatalyst/internal/auth"
	"github.com/traci1003/CareerCatalyst/internal/database"
	"github.com/traci1003/CareerCatalyst/internal/model"
	"github.com/traci1003/CareerCatalyst/internal/platform"
	"github.com/traci1003/CareerCatalyst/internal/testutil"
)

func newApplyBoard(result *platform.ApplyResult) *fakeApplyBoard {
	return &fakeApplyBoard{
		fakeBoard:   fakeBoard{name: model.PlatformLinkedIn},
		applyResult: result,
	}
}

func applicationCount(t *testing.T, listingID uint) int64 {
	t.Helper()
	var count int64
	require.NoError(t, testDB.Model(&model.Application{}).
		Where("listing_id = ?", listingID).Count(&count).Error)
	return count
}

func TestApplyHandler_Success(t *testing.T) {
	token, err := auth.GetAccessToken(t, database.TestUser1.ID)
	require.NoError(t, err)

	extID := "app-ext-1"
	board := newApplyBoard(&platform.ApplyResult{
		Success:       true,
		Message:       "Application received",
		ApplicationID: testutil.StringPtr(extID),
	})
	r := newBoardRouter(platform.NewRegistry(board))

	listing := seedListing(t, model.PlatformLinkedIn, "li-apply-1")

	body := gin.H{"listing_id": listing.ID, "message": "Excited to apply"}
	rec, resp := testutil.MakeJSONRequest(body, token, r, "/jobboard/linkedin/apply", http.MethodPost)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, "Application received", resp["message"])
	assert.Equal(t, 1, board.applyCalls)

	// Exactly one Application record for the listing
	assert.Equal(t, int64(1), applicationCount(t, listing.ID))

	application := resp["application"].(map[string]interface{})
	assert.Equal(t, model.ApplicationStatusApplied, application["status"])
	assert.Equal(t, extID, application["external_application_id"])
	assert.Equal(t, listing.Title, application["title"])

	// Listing flagged as applied
	var persisted model.JobListing
	require.NoError(t, testDB.First(&persisted, listing.ID).Error)
	assert.True(t, persisted.Applied)

	// Aggregate counter incremented
	var stats model.UserStats
	require.NoError(t, testDB.First(&stats, "user_id = ?", database.TestUser1.ID).Error)
	assert.GreaterOrEqual(t, stats.TotalApplications, uint(1))
}

func TestApplyHandler_SuccessWithoutPlatformApplicationID(t *testing.T) {
	token, err := auth.GetAccessToken(t, database.TestUser1.ID)
	require.NoError(t, err)

	// Platform accepts but reports no id, success must not depend on it
	board := newApplyBoard(&platform.ApplyResult{Success: true, Message: "ok"})
	r := newBoardRouter(platform.NewRegistry(board))

	listing := seedListing(t, model.PlatformLinkedIn, "li-apply-2")

	body := gin.H{"listing_id": listing.ID}
	rec, resp := testutil.MakeJSONRequest(body, token, r, "/jobboard/linkedin/apply", http.MethodPost)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, int64(1), applicationCount(t, listing.ID))
}

func TestApplyHandler_UnsupportedCapability(t *testing.T) {
	token, err := auth.GetAccessToken(t, database.TestUser1.ID)
	require.NoError(t, err)

	// Indeed-style board without the apply capability
	board := &fakeBoard{name: model.PlatformIndeed}
	r := newBoardRouter(platform.NewRegistry(board))

	listing := seedListing(t, model.PlatformIndeed, "in-apply-1")

	body := gin.H{"listing_id": listing.ID}
	rec, resp := testutil.MakeJSONRequest(body, token, r, "/jobboard/indeed/apply", http.MethodPost)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, resp["error"], "not supported for indeed")

	// No Application record and no applied flag
	assert.Equal(t, int64(0), applicationCount(t, listing.ID))
	var persisted model.JobListing
	require.NoError(t, testDB.First(&persisted, listing.ID).Error)
	assert.False(t, persisted.Applied)
}

func TestApplyHandler_MissingCredentialsBeforeCapability(t *testing.T) {
	// TestUser2 has no credentials for the platform, so the credential check
	// answers first even though the board also lacks the apply capability
	token, err := auth.GetAccessToken(t, database.TestUser2.ID)
	require.NoError(t, err)

	board := &fakeBoard{name: "mockboard"}
	r := newBoardRouter(platform.NewRegistry(board))

	listing := model.JobListing{
		UserID:     database.TestUser2.ID,
		Source:     "mockboard",
		ExternalID: "mb-apply-1",
		Title:      "Seeded mb-apply-1",
		Company:    "Seed Co",
		URL:        "https://example.com/mb-apply-1",
	}
	require.NoError(t, testDB.Create(&listing).Error)

	body := gin.H{"listing_id": listing.ID}
	rec, resp := testutil.MakeJSONRequest(body, token, r, "/jobboard/mockboard/apply", http.MethodPost)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, resp["error"], "No credentials stored")
}

func TestApplyHandler_PlatformRejection(t *testing.T) {
	token, err := auth.GetAccessToken(t, database.TestUser1.ID)
	require.NoError(t, err)

	board := newApplyBoard(&platform.ApplyResult{Success: false, Message: "Job posting is closed"})
	r := newBoardRouter(platform.NewRegistry(board))

	listing := seedListing(t, model.PlatformLinkedIn, "li-apply-3")

	body := gin.H{"listing_id": listing.ID}
	rec, resp := testutil.MakeJSONRequest(body, token, r, "/jobboard/linkedin/apply", http.MethodPost)

	// Adapter message comes back verbatim
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, false, resp["success"])
	assert.Equal(t, "Job posting is closed", resp["message"])

	assert.Equal(t, int64(0), applicationCount(t, listing.ID))
	var persisted model.JobListing
	require.NoError(t, testDB.First(&persisted, listing.ID).Error)
	assert.False(t, persisted.Applied)
}

func TestApplyHandler_ListingNotFound(t *testing.T) {
	token, err := auth.GetAccessToken(t, database.TestUser1.ID)
	require.NoError(t, err)

	board := newApplyBoard(&platform.ApplyResult{Success: true})
	r := newBoardRouter(platform.NewRegistry(board))

	body := gin.H{"listing_id": 9999999}
	rec, resp := testutil.MakeJSONRequest(body, token, r, "/jobboard/linkedin/apply", http.MethodPost)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, resp["error"], "not found")
	assert.Equal(t, 0, board.applyCalls, "adapter must not be invoked for unknown listings")
}

func TestApplyHandler_DuplicateApply(t *testing.T) {
	token, err := auth.GetAccessToken(t, database.TestUser1.ID)
	require.NoError(t, err)

	board := newApplyBoard(&platform.ApplyResult{Success: true, Message: "ok"})
	r := newBoardRouter(platform.NewRegistry(board))

	listing := seedListing(t, model.PlatformLinkedIn, "li-apply-4")

	body := gin.H{"listing_id": listing.ID}
	rec, _ := testutil.MakeJSONRequest(body, token, r, "/jobboard/linkedin/apply", http.MethodPost)
	require.Equal(t, http.StatusCreated, rec.Code)

	// The applied flag flips exactly once, a second attempt is rejected
	rec2, resp2 := testutil.MakeJSONRequest(body, token, r, "/jobboard/linkedin/apply", http.MethodPost)
	assert.Equal(t, http.StatusBadRequest, rec2.Code)
	assert.Contains(t, resp2["error"], "already applied")

	assert.Equal(t, int64(1), applicationCount(t, listing.ID))
	assert.Equal(t, 1, board.applyCalls)
}

func TestApplyHandler_StatsFailureIsDegradedNotFatal(t *testing.T) {
	token, err := auth.GetAccessToken(t, database.TestUser1.ID)
	require.NoError(t, err)

	board := newApplyBoard(&platform.ApplyResult{Success: true, Message: "ok"})
	r := newBoardRouter(platform.NewRegistry(board))

	listing := seedListing(t, model.PlatformLinkedIn, "li-apply-5")

	// Break the stats table so the counter write fails
	require.NoError(t, testDB.Migrator().DropTable(&model.UserStats{}))
	defer func() {
		require.NoError(t, testDB.AutoMigrate(&model.UserStats{}))
	}()

	body := gin.H{"listing_id": listing.ID}
	rec, resp := testutil.MakeJSONRequest(body, token, r, "/jobboard/linkedin/apply", http.MethodPost)

	// Apply still succeeds: one Application, one flipped flag
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, int64(1), applicationCount(t, listing.ID))

	var persisted model.JobListing
	require.NoError(t, testDB.First(&persisted, listing.ID).Error)
	assert.True(t, persisted.Applied)
}
