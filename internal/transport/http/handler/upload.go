package handler

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"claira-social/internal/app"
	"claira-social/internal/transport/http/response"
)

const uploadFormField = "files"

type UploadHandler struct {
	uploadService *app.UploadService
	maxFiles      int
	log           zerolog.Logger
}

func NewUploadHandler(uploadService *app.UploadService, maxFiles int, log zerolog.Logger) *UploadHandler {
	if maxFiles <= 0 {
		maxFiles = 10
	}
	return &UploadHandler{uploadService: uploadService, maxFiles: maxFiles, log: log}
}

// Upload accepts a multipart form with one or more "files" parts and returns
// their public URLs in the same order.
func (h *UploadHandler) Upload(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	maxBytes := h.uploadService.MaxBytes()
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes*int64(h.maxFiles)+1<<20)

	form, err := c.MultipartForm()
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid multipart form")
		return
	}
	headers := form.File[uploadFormField]
	if len(headers) == 0 {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, app.ErrNoFiles.Error())
		return
	}
	if len(headers) > h.maxFiles {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, fmt.Sprintf("at most %d files per request", h.maxFiles))
		return
	}

	files := make([]app.UploadFile, 0, len(headers))
	for _, fh := range headers {
		if fh.Size > maxBytes {
			response.Error(c, http.StatusRequestEntityTooLarge, response.CodeFileTooLarge,
				fmt.Sprintf("%s exceeds %d MB", fh.Filename, maxBytes>>20))
			return
		}
		f, err := fh.Open()
		if err != nil {
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "failed to open uploaded file")
			return
		}
		data, err := io.ReadAll(io.LimitReader(f, maxBytes+1))
		_ = f.Close()
		if err != nil {
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "failed to read uploaded file")
			return
		}
		files = append(files, app.UploadFile{Name: fh.Filename, Data: data})
	}

	urls, err := h.uploadService.Store(c.Request.Context(), userID, files)
	if err != nil {
		writeError(c, h.log, err, "upload failed")
		return
	}

	response.OK(c, gin.H{"urls": urls})
}
