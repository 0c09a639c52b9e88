package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"claira-social/internal/app"
	"claira-social/internal/transport/http/response"
)

type PostHandler struct {
	postService *app.PostService
	log         zerolog.Logger
}

type CreatePostRequest struct {
	Content     string     `json:"content"`
	Platforms   []string   `json:"platforms"`
	Images      []string   `json:"images"`
	ScheduledAt *time.Time `json:"scheduledAt"`
}

type UpdatePostRequest struct {
	Content     *string    `json:"content"`
	Images      *[]string  `json:"images"`
	ScheduledAt *time.Time `json:"scheduledAt"`
	Status      *string    `json:"status"`
}

type SchedulePostRequest struct {
	PostID      uint      `json:"postId" binding:"required,gt=0"`
	ScheduledAt time.Time `json:"scheduledAt" binding:"required"`
	Platforms   []string  `json:"platforms"`
}

func NewPostHandler(postService *app.PostService, log zerolog.Logger) *PostHandler {
	return &PostHandler{postService: postService, log: log}
}

func (h *PostHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	post, err := h.postService.Create(c.Request.Context(), app.CreatePostInput{
		UserID:      userID,
		Content:     req.Content,
		Platforms:   req.Platforms,
		Images:      req.Images,
		ScheduledAt: req.ScheduledAt,
	})
	if err != nil {
		writeError(c, h.log, err, "create post failed")
		return
	}

	response.Created(c, post)
}

func (h *PostHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	posts, err := h.postService.List(c.Request.Context(), userID)
	if err != nil {
		writeError(c, h.log, err, "list posts failed")
		return
	}

	response.OK(c, posts)
}

func (h *PostHandler) Get(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	postID, ok := parseID(c.Param("id"))
	if !ok {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid post id")
		return
	}

	post, err := h.postService.Get(c.Request.Context(), userID, postID)
	if err != nil {
		writeError(c, h.log, err, "get post failed")
		return
	}

	response.OK(c, post)
}

func (h *PostHandler) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	postID, ok := parseID(c.Param("id"))
	if !ok {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid post id")
		return
	}

	var req UpdatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	post, err := h.postService.Update(c.Request.Context(), app.UpdatePostInput{
		UserID:      userID,
		PostID:      postID,
		Content:     req.Content,
		Images:      req.Images,
		ScheduledAt: req.ScheduledAt,
		Status:      req.Status,
	})
	if err != nil {
		writeError(c, h.log, err, "update post failed")
		return
	}

	response.OK(c, post)
}

func (h *PostHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	postID, ok := parseID(c.Param("id"))
	if !ok {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid post id")
		return
	}

	if err := h.postService.Delete(c.Request.Context(), userID, postID); err != nil {
		writeError(c, h.log, err, "delete post failed")
		return
	}

	response.OK(c, gin.H{"deleted_post_id": postID})
}

func (h *PostHandler) Schedule(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req SchedulePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	post, err := h.postService.Schedule(c.Request.Context(), app.SchedulePostInput{
		UserID:      userID,
		PostID:      req.PostID,
		ScheduledAt: req.ScheduledAt,
		Platforms:   req.Platforms,
	})
	if err != nil {
		writeError(c, h.log, err, "schedule post failed")
		return
	}

	response.OK(c, post)
}
