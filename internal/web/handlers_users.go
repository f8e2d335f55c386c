package web

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"recipe-box/internal/user"
)

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type registerRequest struct {
	Email     string `json:"email" binding:"required"`
	Username  string `json:"username" binding:"required"`
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
	Password  string `json:"password" binding:"required"`
}

func (s *Server) handleLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	u, err := s.users.GetByEmail(c.Request.Context(), req.Email)
	if err != nil {
		log.Printf("Failed to look up user %q: %v", req.Email, err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "internal error"})
		return
	}
	if u == nil || !u.CheckPassword(req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "invalid credentials"})
		return
	}

	token, err := s.tokens.Issue(u.ID)
	if err != nil {
		log.Printf("Failed to issue token for user %d: %v", u.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"auth_token": token})
}

func (s *Server) handleRegister(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	u := &user.User{
		Email:     req.Email,
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	}
	if err := u.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	if err := u.HashPassword(req.Password); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	if _, err := s.users.Create(c.Request.Context(), u); err != nil {
		// Unique constraint on email/username surfaces here.
		c.JSON(http.StatusBadRequest, gin.H{"detail": "email or username already taken"})
		return
	}
	c.JSON(http.StatusCreated, u)
}

// handleGetUser serves /api/users/:id, where :id is a numeric ID or one of
// the reserved names "me" and "subscriptions".
func (s *Server) handleGetUser(c *gin.Context) {
	idParam := c.Param("id")

	switch idParam {
	case "me":
		userID, ok := s.currentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"detail": "authentication required"})
			return
		}
		s.serveUser(c, userID)
	case "subscriptions":
		s.handleListSubscriptions(c)
	default:
		id, err := strconv.ParseInt(idParam, 10, 64)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"detail": "user not found"})
			return
		}
		s.serveUser(c, id)
	}
}

func (s *Server) serveUser(c *gin.Context, id int64) {
	u, err := s.users.GetByID(c.Request.Context(), id)
	if err != nil {
		log.Printf("Failed to get user %d: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "internal error"})
		return
	}
	if u == nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "user not found"})
		return
	}
	c.JSON(http.StatusOK, u)
}

func (s *Server) handleListSubscriptions(c *gin.Context) {
	userID, ok := s.currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "authentication required"})
		return
	}

	authors, err := s.users.ListSubscriptions(c.Request.Context(), userID)
	if err != nil {
		log.Printf("Failed to list subscriptions for user %d: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "internal error"})
		return
	}
	if authors == nil {
		authors = []user.User{}
	}
	c.JSON(http.StatusOK, authors)
}

func (s *Server) handleSubscribe(c *gin.Context) {
	userID, _ := s.currentUser(c)
	authorID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "user not found"})
		return
	}

	author, err := s.users.GetByID(c.Request.Context(), authorID)
	if err != nil {
		log.Printf("Failed to get author %d: %v", authorID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "internal error"})
		return
	}
	if author == nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "user not found"})
		return
	}

	if err := s.users.Subscribe(c.Request.Context(), userID, authorID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, author)
}

func (s *Server) handleUnsubscribe(c *gin.Context) {
	userID, _ := s.currentUser(c)
	authorID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "user not found"})
		return
	}

	removed, err := s.users.Unsubscribe(c.Request.Context(), userID, authorID)
	if err != nil {
		log.Printf("Failed to unsubscribe user %d from %d: %v", userID, authorID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "internal error"})
		return
	}
	if !removed {
		c.JSON(http.StatusNotFound, gin.H{"detail": "subscription not found"})
		return
	}
	c.Status(http.StatusNoContent)
}
