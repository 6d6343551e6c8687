package server

import "github.com/gin-gonic/gin"

// StandardResponse is the envelope every endpoint returns.
type StandardResponse struct {
	Status  string         `json:"status"`
	Message string         `json:"message,omitempty"`
	Meta    map[string]any `json:"meta,omitempty"`
	Data    any            `json:"data,omitempty"`
}

func respondData(c *gin.Context, code int, data any) {
	c.JSON(code, StandardResponse{Status: "success", Data: data})
}

func respondMessage(c *gin.Context, code int, message string, data any) {
	c.JSON(code, StandardResponse{Status: "success", Message: message, Data: data})
}

func respondError(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, StandardResponse{Status: "error", Message: message})
}
