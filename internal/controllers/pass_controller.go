package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"temple_pass/internal/models"
	"temple_pass/internal/traffic"
)

type generatePassInput struct {
	StartLocation  string `json:"start_location" binding:"required"`
	Destination    string `json:"destination" binding:"required"`
	VisitingTemple bool   `json:"visiting_temple"`
	TimeSlotID     uint   `json:"time_slot_id" binding:"required"`
}

// GeneratePass issues a pass on a slot to the authenticated user.
func (ctl *Controller) GeneratePass(c *gin.Context) {
	var input generatePassInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	pass, err := ctl.svc.IssuePass(c.Request.Context(), traffic.PassRequest{
		UserID:         c.GetUint("user_id"),
		StartLocation:  input.StartLocation,
		Destination:    input.Destination,
		VisitingTemple: input.VisitingTemple,
		TimeSlotID:     input.TimeSlotID,
	})
	if err != nil {
		respondError(c, "GeneratePass", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Pass generated successfully", "pass": pass})
}

// GetPass looks a pass up by its public token.
func (ctl *Controller) GetPass(c *gin.Context) {
	pass, err := ctl.svc.GetPass(c.Request.Context(), c.Param("passId"))
	if err != nil {
		respondError(c, "GetPass", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"pass": pass})
}

// ListUserPasses returns a user's passes, latest slot first.
func (ctl *Controller) ListUserPasses(c *gin.Context) {
	userID, ok := parseID(c, "userId")
	if !ok {
		return
	}
	if !ownsOrAdmin(c, userID) {
		return
	}
	passes, err := ctl.svc.ListUserPasses(c.Request.Context(), userID)
	if err != nil {
		respondError(c, "ListUserPasses", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"passes": passes})
}

// UpdatePassStatus records a pass lifecycle change.
func (ctl *Controller) UpdatePassStatus(c *gin.Context) {
	var input struct {
		Status models.PassStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
		return
	}

	existing, err := ctl.svc.GetPass(c.Request.Context(), c.Param("passId"))
	if err != nil {
		respondError(c, "UpdatePassStatus", err)
		return
	}
	if !ownsOrAdmin(c, existing.UserID) {
		return
	}

	pass, err := ctl.svc.UpdatePassStatus(c.Request.Context(), existing.PassID, input.Status)
	if err != nil {
		respondError(c, "UpdatePassStatus", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Pass status updated", "pass": pass})
}

// ownsOrAdmin lets administrators act on any user's passes and commuters only
// on their own. It answers 403 itself.
func ownsOrAdmin(c *gin.Context, ownerID uint) bool {
	if c.GetString("role") == models.RoleAdmin || c.GetUint("user_id") == ownerID {
		return true
	}
	c.JSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
	return false
}
