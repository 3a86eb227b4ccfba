package handlers

import (
	"net/http"

	"gopolls/services"

	"github.com/gin-gonic/gin"
)

type VoteHandler struct {
	voteService *services.VoteService
	hub         *services.Hub
}

func NewVoteHandler(voteService *services.VoteService, hub *services.Hub) *VoteHandler {
	return &VoteHandler{
		voteService: voteService,
		hub:         hub,
	}
}

type CastVoteRequest struct {
	ChoiceID uint `json:"choice_id" binding:"required"`
}

func (h *VoteHandler) CastVote(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	pollID, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid poll ID"})
		return
	}

	var req CastVoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	vote, err := h.voteService.CastVote(userID.(uint), pollID, req.ChoiceID)
	if err != nil {
		respondError(c, err)
		return
	}

	// Push fresh results to live subscribers of this poll
	if h.hub != nil {
		if results, err := h.voteService.Results(pollID); err == nil {
			h.hub.BroadcastResults(pollID, results)
		}
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Your vote has been recorded!",
		"vote":    vote,
	})
}

// GetResults is the public JSON endpoint for live poll results.
func (h *VoteHandler) GetResults(c *gin.Context) {
	pollID, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid poll ID"})
		return
	}

	results, err := h.voteService.Results(pollID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, results)
}
