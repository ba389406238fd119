package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// CommitSession 把会话累加器合并进永久层并清空会话
// POST /api/sessions/:id/commit
func (h *Handler) CommitSession(c *gin.Context) {
	sessionID := c.Param("id")

	if err := h.store.MergeSessionIntoPermanent(sessionID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	// 合并成功即重置，避免重复提交造成重复计数
	h.store.ResetSession(sessionID)
	h.coordinator.ForgetSession(sessionID)

	c.JSON(http.StatusOK, gin.H{
		"sessionId": sessionID,
		"status":    "committed",
	})
}

// DiscardSession 丢弃会话，永久层不受影响
// POST /api/sessions/:id/discard
func (h *Handler) DiscardSession(c *gin.Context) {
	sessionID := c.Param("id")

	h.store.ResetSession(sessionID)
	h.coordinator.ForgetSession(sessionID)

	c.JSON(http.StatusOK, gin.H{
		"sessionId": sessionID,
		"status":    "discarded",
	})
}
