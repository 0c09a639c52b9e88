package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"claira-social/internal/app"
	"claira-social/internal/transport/http/middleware"
	"claira-social/internal/transport/http/response"
)

func currentUserID(c *gin.Context) (uint, bool) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
	}
	return userID, ok
}

func parseID(raw string) (uint, bool) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// writeError maps service errors to the response envelope. Anything
// unrecognised is logged and reported as fallback.
func writeError(c *gin.Context, log zerolog.Logger, err error, fallback string) {
	switch {
	case errors.Is(err, app.ErrUnauthorized):
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, err.Error())
	case errors.Is(err, app.ErrInvalidCredential):
		response.Error(c, http.StatusUnauthorized, response.CodeInvalidCredentials, err.Error())
	case errors.Is(err, app.ErrInvalidInput), errors.Is(err, app.ErrNoFiles):
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
	case errors.Is(err, app.ErrEmailExists):
		response.Error(c, http.StatusBadRequest, response.CodeEmailExists, err.Error())
	case errors.Is(err, app.ErrUnsupportedPlatform):
		response.Error(c, http.StatusBadRequest, response.CodeUnsupportedPlatform, err.Error())
	case errors.Is(err, app.ErrUserNotFound):
		response.Error(c, http.StatusNotFound, response.CodeUserNotFound, err.Error())
	case errors.Is(err, app.ErrPostNotFound):
		response.Error(c, http.StatusNotFound, response.CodePostNotFound, err.Error())
	case errors.Is(err, app.ErrAccountNotFound):
		response.Error(c, http.StatusNotFound, response.CodeAccountNotFound, err.Error())
	case errors.Is(err, app.ErrFileTooLarge):
		response.Error(c, http.StatusRequestEntityTooLarge, response.CodeFileTooLarge, err.Error())
	case errors.Is(err, app.ErrUpstreamFailure):
		log.Error().Err(err).Str("request_id", c.GetString(middleware.ContextRequestIDKey)).Msg(fallback)
		response.Error(c, http.StatusBadGateway, response.CodeUpstreamFailure, app.ErrUpstreamFailure.Error())
	default:
		log.Error().Err(err).Str("request_id", c.GetString(middleware.ContextRequestIDKey)).Msg(fallback)
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, fallback)
	}
}
