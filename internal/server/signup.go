package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	signupdomain "github.com/smallbiznis/atelier/internal/signup/domain"
)

const messageRegistered = "registration completed"

type signupResponse struct {
	Success bool                 `json:"success"`
	Message string               `json:"message"`
	Data    *signupdomain.Result `json:"data,omitempty"`
}

func (s *Server) Signup(c *gin.Context) {
	var req signupdomain.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, signupdomain.ErrMalformedRequest)
		return
	}

	result, err := s.signupsvc.Signup(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, signupResponse{
		Success: true,
		Message: messageRegistered,
		Data:    result,
	})
}
