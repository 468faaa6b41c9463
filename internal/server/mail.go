package server

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/retrobus-essonne/mail-api/internal/mailer"
	"github.com/retrobus-essonne/mail-api/internal/template"
	"github.com/retrobus-essonne/mail-api/pkg/middleware"
)

// sendRequest is the body of POST /api/mail/send. Either a literal
// body or a templateId plus variables must be supplied.
type sendRequest struct {
	To         string            `json:"to"`
	Cc         string            `json:"cc"`
	Bcc        string            `json:"bcc"`
	Subject    string            `json:"subject"`
	Body       string            `json:"body"`
	TemplateID string            `json:"templateId"`
	Variables  map[string]string `json:"variables"`
}

// replyRequest is the body of POST /api/mail/reply. There is no message
// store to resolve the original sender from, so the recipient is
// explicit.
type replyRequest struct {
	To      string `json:"to"`
	Cc      string `json:"cc"`
	Bcc     string `json:"bcc"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// handleSendMail returns the handler for POST /api/mail/send. The
// sender address is always the authenticated member's, never taken
// from the request.
func (s *Server) handleSendMail() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req sendRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
			return
		}

		subject := req.Subject
		body := req.Body
		if req.TemplateID != "" {
			tmpl, ok := template.ByID(req.TemplateID)
			if !ok {
				c.JSON(http.StatusNotFound, gin.H{"error": "Template not found"})
				return
			}
			body = template.Render(tmpl.Body, req.Variables)
			if subject == "" {
				subject = tmpl.Subject
			}
		}

		if req.To == "" || subject == "" || body == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
			return
		}

		claims := middleware.CurrentSession(c)
		messageID, err := s.mailer.Send(c.Request.Context(), mailer.Message{
			From:    claims.Email,
			To:      req.To,
			Cc:      req.Cc,
			Bcc:     req.Bcc,
			Subject: subject,
			HTML:    body,
		})
		if err != nil {
			log.Printf("send email error: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send email"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "messageId": messageID})
	}
}

// handleReplyMail returns the handler for POST /api/mail/reply. It is
// a send with the conventional subject prefix.
func (s *Server) handleReplyMail() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req replyRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
			return
		}
		if req.To == "" || req.Subject == "" || req.Body == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
			return
		}

		claims := middleware.CurrentSession(c)
		messageID, err := s.mailer.Send(c.Request.Context(), mailer.Message{
			From:    claims.Email,
			To:      req.To,
			Cc:      req.Cc,
			Bcc:     req.Bcc,
			Subject: "Re: " + req.Subject,
			HTML:    req.Body,
		})
		if err != nil {
			log.Printf("reply email error: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reply to email"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "messageId": messageID})
	}
}

// handleInbox returns the handler for GET /api/mail/inbox. There is no
// message store behind this service, so the inbox is always empty; the
// pagination parameters are echoed for the front end's benefit.
func (s *Server) handleInbox() gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := queryInt(c, "limit", 20)
		offset := queryInt(c, "offset", 0)

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"emails":  []gin.H{},
			"total":   0,
			"limit":   limit,
			"offset":  offset,
		})
	}
}

// handleGetEmail returns the handler for GET /api/mail/email/:id.
// Without a message store no id can resolve.
func (s *Server) handleGetEmail() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Email not found"})
	}
}

// handleDeleteEmail returns the handler for DELETE /api/mail/email/:id.
func (s *Server) handleDeleteEmail() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Email deleted"})
	}
}

// handleSyncMail returns the handler for POST /api/mail/sync. IMAP
// synchronization is out of scope for this service; the answer is an
// honest zero.
func (s *Server) handleSyncMail() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"success":  true,
			"synced":   0,
			"lastSync": time.Now().UTC().Format(time.RFC3339),
		})
	}
}

// queryInt reads an integer query parameter, falling back to the
// default for absent or unparsable values.
func queryInt(c *gin.Context, key string, fallback int) int {
	v := c.Query(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
