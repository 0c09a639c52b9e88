package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"claira-social/internal/app"
	"claira-social/internal/transport/http/response"
)

type CycleHandler struct {
	cycleService *app.CycleService
	log          zerolog.Logger
}

type RecordCycleRequest struct {
	StartDate string   `json:"startDate" binding:"required"`
	Symptoms  []string `json:"symptoms"`
	Mood      []string `json:"mood"`
}

func NewCycleHandler(cycleService *app.CycleService, log zerolog.Logger) *CycleHandler {
	return &CycleHandler{cycleService: cycleService, log: log}
}

func (h *CycleHandler) Record(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req RecordCycleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	record, err := h.cycleService.Record(c.Request.Context(), app.RecordCycleInput{
		OwnerID:   userID,
		StartDate: req.StartDate,
		Symptoms:  req.Symptoms,
		Mood:      req.Mood,
	})
	if err != nil {
		writeError(c, h.log, err, "record cycle failed")
		return
	}

	response.Created(c, record)
}

func (h *CycleHandler) Latest(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	record, err := h.cycleService.Latest(c.Request.Context(), userID)
	if err != nil {
		writeError(c, h.log, err, "get latest cycle failed")
		return
	}
	if record == nil {
		response.Error(c, http.StatusNotFound, response.CodeNotFound, "no cycle recorded")
		return
	}

	response.OK(c, record)
}
