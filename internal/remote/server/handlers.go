package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/sadopc/weekly/internal/logx"
	"github.com/sadopc/weekly/internal/remote"
	"github.com/sadopc/weekly/internal/schedule"
)

const maxBodySize = 1 << 20 // 1MB

type createRequest struct {
	Name string `json:"name"`
}

// authenticate resolves the bearer token to an owner id.
func (s *Server) authenticate(c *gin.Context) {
	token, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
	owner := s.tokens[strings.TrimSpace(token)]
	if !ok || owner == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or unknown bearer token"})
		return
	}
	c.Set(ownerKey, owner)
	c.Next()
}

func (s *Server) session(c *gin.Context) remote.Backend {
	return s.sessions.Session(c.GetString(ownerKey))
}

func (s *Server) handleList(c *gin.Context) {
	metas, err := s.session(c).List(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	if metas == nil {
		metas = []remote.Meta{}
	}
	c.JSON(http.StatusOK, metas)
}

func (s *Server) handleGet(c *gin.Context) {
	rec, err := s.session(c).Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (s *Server) handleGetPublic(c *gin.Context) {
	rec, err := s.sessions.Session("").GetPublic(c.Request.Context(), c.Param("token"))
	if err != nil {
		s.fail(c, err)
		return
	}
	rec.OwnerID = ""
	c.JSON(http.StatusOK, rec)
}

func (s *Server) handleCreate(c *gin.Context) {
	var req createRequest
	if !s.bind(c, &req) {
		return
	}
	id, err := s.session(c).Create(c.Request.Context(), req.Name)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

func (s *Server) handleUpdate(c *gin.Context) {
	var p remote.Patch
	if !s.bind(c, &p) {
		return
	}
	if err := s.session(c).Update(c.Request.Context(), c.Param("id"), p); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleDelete(c *gin.Context) {
	if err := s.session(c).Delete(c.Request.Context(), c.Param("id")); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleShare(c *gin.Context) {
	token, err := s.session(c).TogglePublic(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	if token == "" {
		c.JSON(http.StatusOK, gin.H{})
		return
	}
	c.JSON(http.StatusOK, gin.H{"shareToken": token})
}

func (s *Server) bind(c *gin.Context, v any) bool {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodySize)
	if err := c.ShouldBindJSON(v); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	return true
}

// fail maps a backend error onto a status code.
func (s *Server) fail(c *gin.Context, err error) {
	var ve *schedule.ValidationError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, remote.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "schedule not found"})
	case errors.Is(err, remote.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "schedule not owned by caller"})
	case errors.Is(err, remote.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
	default:
		s.log.Error("request failed",
			logx.Err(err),
			logx.String("method", c.Request.Method),
			logx.String("path", c.FullPath()),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
