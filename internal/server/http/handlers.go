package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"diningagent/internal/agent"
	"diningagent/internal/logging"
)

type invocationHandler struct {
	invoker Invoker
	logger  logging.Logger
}

// handle decodes the request body and returns the orchestrator's message.
// A body that is not a JSON object is treated as a request without a
// prompt, so the caller still gets guidance back.
func (h *invocationHandler) handle(c *gin.Context) {
	var req agent.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		logging.FromContext(c.Request.Context(), h.logger).Warn("Ignoring undecodable request body: %v", err)
		req = agent.Request{}
	}
	msg := h.invoker.Handle(c.Request.Context(), req)
	c.JSON(http.StatusOK, msg)
}

func handlePing(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "Healthy"})
}

func handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": ServiceName})
}
