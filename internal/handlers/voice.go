package handlers

import (
	"net/http"

	"soulcare/internal/config"
	"soulcare/internal/utils"

	"github.com/gin-gonic/gin"
)

type VoiceHandler struct {
	cfg config.VoiceConfig
}

func NewVoiceHandler(cfg config.VoiceConfig) *VoiceHandler {
	return &VoiceHandler{cfg: cfg}
}

// Config hands the browser SDK its public key and assistant id.
func (h *VoiceHandler) Config(c *gin.Context) {
	if h.cfg.PublicKey == "" || h.cfg.AssistantID == "" {
		utils.ErrorResponse(c, http.StatusServiceUnavailable, "Voice calls are not configured")
		return
	}
	utils.SuccessResponse(c, gin.H{
		"publicKey":   h.cfg.PublicKey,
		"assistantId": h.cfg.AssistantID,
	})
}
