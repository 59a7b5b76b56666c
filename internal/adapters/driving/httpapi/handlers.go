package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/custodia-labs/wikichat/internal/core/domain"
	"github.com/custodia-labs/wikichat/internal/logger"
)

const defaultPlaceholder = "Ask Wikipedia: what is August?"

func (s *Server) handleIndex(c *gin.Context) {
	s.session(c)
	c.HTML(http.StatusOK, "chat.html", gin.H{
		"Title":       "Chat with Wikipedia",
		"Placeholder": defaultPlaceholder,
		"Chunks":      s.chunks(),
	})
}

func (s *Server) handleAsk(c *gin.Context) {
	sessionID := s.session(c)
	question := c.PostForm("question")

	answer, err := s.ports.Chat.Ask(c.Request.Context(), sessionID, question)
	if errors.Is(err, domain.ErrEmptyQuestion) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Please provide a valid question."})
		return
	}
	if err != nil {
		logger.Error("ask failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"answer": answer.Text})
}

func (s *Server) handleReset(c *gin.Context) {
	sessionID := s.session(c)
	if err := s.ports.Chat.Reset(c.Request.Context(), sessionID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "reset"})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "chunks": s.chunks()})
}

// session returns the caller's session ID, issuing a cookie when absent.
func (s *Server) session(c *gin.Context) string {
	if id, err := c.Cookie(SessionCookie); err == nil && id != "" {
		return id
	}
	id := s.ports.Chat.NewSession()
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, id, 0, "/", "", false, true)
	return id
}

func (s *Server) chunks() int {
	if s.ports.Retrieval == nil {
		return 0
	}
	return s.ports.Retrieval.Size()
}
