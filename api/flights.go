package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/siddardh-293001/Flight-Booker-Simulator/internal/domain"
	"github.com/siddardh-293001/Flight-Booker-Simulator/internal/service/flights"
)

// FlightHandler serves flight search outside of a checkout session.
type FlightHandler struct {
	service flights.FlightUseCase
}

type searchQuery struct {
	Origin      string `form:"origin"`
	Destination string `form:"destination"`
	Date        string `form:"date"`
	Airline     string `form:"airline"`
	SortBy      string `form:"sort_by"`
}

func (q searchQuery) criteria() domain.SearchCriteria {
	return domain.SearchCriteria{
		Origin:      q.Origin,
		Destination: q.Destination,
		Date:        q.Date,
		Airline:     q.Airline,
		SortBy:      domain.SortBy(q.SortBy),
	}
}

func NewFlightHandler(service flights.FlightUseCase) *FlightHandler {
	return &FlightHandler{service: service}
}

func (h *FlightHandler) Register(router *gin.RouterGroup) {
	router.GET("", h.search)
}

func (h *FlightHandler) search(c *gin.Context) {
	var q searchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	flights, err := h.service.Search(c.Request.Context(), q.criteria())
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, flights)
}
