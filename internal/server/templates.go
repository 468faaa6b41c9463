package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/retrobus-essonne/mail-api/internal/template"
)

// templateRequest is the body of template create and update calls.
type templateRequest struct {
	Name     string `json:"name"`
	Subject  string `json:"subject"`
	Body     string `json:"body"`
	Category string `json:"category"`
}

// handleListTemplates returns the handler for GET /api/templates.
func (s *Server) handleListTemplates() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"success":   true,
			"templates": template.All(),
		})
	}
}

// handleGetTemplate returns the handler for GET /api/templates/:id.
func (s *Server) handleGetTemplate() gin.HandlerFunc {
	return func(c *gin.Context) {
		tmpl, ok := template.ByID(c.Param("id"))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "Template not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "template": tmpl})
	}
}

// handleCreateTemplate returns the handler for POST /api/templates.
// There is no template store; the validated template is echoed back
// with a generated id so the front end flow keeps working.
func (s *Server) handleCreateTemplate() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req templateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
			return
		}
		if req.Name == "" || req.Subject == "" || req.Body == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
			return
		}
		if req.Category == "" {
			req.Category = "custom"
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"template": gin.H{
				"id":        uuid.New().String(),
				"name":      req.Name,
				"subject":   req.Subject,
				"body":      req.Body,
				"category":  req.Category,
				"createdAt": time.Now().UTC().Format(time.RFC3339),
			},
		})
	}
}

// handleUpdateTemplate returns the handler for PUT /api/templates/:id.
func (s *Server) handleUpdateTemplate() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req templateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"template": gin.H{
				"id":      c.Param("id"),
				"name":    req.Name,
				"subject": req.Subject,
				"body":    req.Body,
			},
		})
	}
}

// handleDeleteTemplate returns the handler for DELETE /api/templates/:id.
func (s *Server) handleDeleteTemplate() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Template deleted"})
	}
}
