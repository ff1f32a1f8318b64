package handler

import (
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"direct_messenger/internal/config"
	"direct_messenger/internal/service"
	"direct_messenger/pkg/logger"
)

type UploadHandler struct {
	chatService service.ChatService
	uploadCfg   config.UploadConfig
	log         logger.Logger
}

func NewUploadHandler(chatService service.ChatService, uploadCfg config.UploadConfig, log logger.Logger) *UploadHandler {
	return &UploadHandler{
		chatService: chatService,
		uploadCfg:   uploadCfg,
		log:         log,
	}
}

// Upload stores the file under a freshly generated identifier plus the
// original extension and sends a message of the classified type into the
// conversation. The declared content type is trusted; file bytes are never
// inspected.
func (h *UploadHandler) Upload(c *gin.Context) {
	userID := c.MustGet("user_id").(uuid.UUID)

	convID, err := uuid.Parse(c.Param("conversationID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid conversation ID"})
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}

	msgType := service.ClassifyUpload(file.Header.Get("Content-Type"))

	ext := filepath.Ext(file.Filename)
	if ext == "" {
		ext = ".bin"
	}
	fileName := uuid.New().String() + ext
	destination := filepath.Join(h.uploadCfg.Dir, fileName)

	if err := c.SaveUploadedFile(file, destination); err != nil {
		h.log.Error("Failed to save uploaded file", "error", err, "file", fileName)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save file"})
		return
	}

	fileURL := "/uploads/" + fileName
	content := file.Filename

	input := service.SendMessageInput{
		Content: &content,
		Type:    msgType,
		FileURL: &fileURL,
	}
	if replyTo := c.PostForm("reply_to"); replyTo != "" {
		if replyID, err := uuid.Parse(replyTo); err == nil {
			input.ReplyTo = &replyID
		}
	}

	message, err := h.chatService.SendMessage(c.Request.Context(), convID, userID, input)
	if err != nil {
		respondError(c, err)
		return
	}

	h.log.Info("File uploaded", "message_id", message.ID, "type", msgType, "file", fileName)
	c.JSON(http.StatusCreated, message)
}
