package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"claira-social/internal/app"
	"claira-social/internal/transport/http/response"
)

type SocialHandler struct {
	socialService *app.SocialService
	log           zerolog.Logger
}

type ConnectRequest struct {
	Platform string `json:"platform" binding:"required"`
	Code     string `json:"code"`
	State    string `json:"state"`
}

type LinkAccountRequest struct {
	Platform         string `json:"platform" binding:"required"`
	AccessToken      string `json:"accessToken" binding:"required"`
	PlatformUserID   string `json:"platformUserId" binding:"required"`
	PlatformUsername string `json:"platformUsername" binding:"required"`
}

func NewSocialHandler(socialService *app.SocialService, log zerolog.Logger) *SocialHandler {
	return &SocialHandler{socialService: socialService, log: log}
}

func (h *SocialHandler) ListAccounts(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	accounts, err := h.socialService.List(c.Request.Context(), userID)
	if err != nil {
		writeError(c, h.log, err, "list social accounts failed")
		return
	}

	response.OK(c, accounts)
}

func (h *SocialHandler) LinkAccount(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req LinkAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	account, err := h.socialService.Link(c.Request.Context(), app.LinkAccountInput{
		UserID:           userID,
		Platform:         req.Platform,
		AccessToken:      req.AccessToken,
		PlatformUserID:   req.PlatformUserID,
		PlatformUsername: req.PlatformUsername,
	})
	if err != nil {
		writeError(c, h.log, err, "link social account failed")
		return
	}

	response.Created(c, account)
}

func (h *SocialHandler) Connect(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req ConnectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	account, created, err := h.socialService.Connect(c.Request.Context(), app.ConnectInput{
		UserID:   userID,
		Platform: req.Platform,
		Code:     req.Code,
		State:    req.State,
	})
	if err != nil {
		writeError(c, h.log, err, "connect social account failed")
		return
	}

	if created {
		response.Created(c, account)
		return
	}
	response.OK(c, account)
}

func (h *SocialHandler) Disconnect(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	accountID, ok := parseID(c.Query("accountId"))
	if !ok {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid accountId")
		return
	}

	if err := h.socialService.Disconnect(c.Request.Context(), userID, accountID); err != nil {
		writeError(c, h.log, err, "disconnect social account failed")
		return
	}

	response.OK(c, gin.H{"deleted_account_id": accountID})
}
