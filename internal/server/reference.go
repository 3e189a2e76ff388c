package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/atelier/pkg/db/pagination"
)

func (s *Server) ListStyles(c *gin.Context) {
	styles, err := s.catalog.ListStyles(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": styles})
}

func (s *Server) ListCities(c *gin.Context) {
	var page pagination.Pagination
	if err := c.ShouldBindQuery(&page); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	cities, info, err := s.catalog.ListCities(c.Request.Context(), page)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": cities, "page_info": info})
}
