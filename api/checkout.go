package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/siddardh-293001/Flight-Booker-Simulator/internal/domain"
	"github.com/siddardh-293001/Flight-Booker-Simulator/internal/service/checkout"
)

type CheckoutHandler struct {
	service checkout.UseCase
}

type selectFlightRequest struct {
	FlightID  int64 `json:"flight_id" binding:"required"`
	SeatCount int   `json:"seat_count" binding:"required"`
}

type seatTargetRequest struct {
	Count int `json:"count" binding:"required"`
}

type reservationRequest struct {
	Passenger domain.Passenger `json:"passenger"`
}

type paymentRequest struct {
	Method       string            `json:"payment_method" binding:"required"`
	Details      map[string]string `json:"payment_details"`
	ConfirmRetry bool              `json:"confirm_retry"`
}

func NewCheckoutHandler(service checkout.UseCase) *CheckoutHandler {
	return &CheckoutHandler{service: service}
}

// Register mounts the session routes and the receipt lookup on router.
func (h *CheckoutHandler) Register(router *gin.RouterGroup) {
	sessions := router.Group("/checkout/sessions")
	sessions.POST("", h.create)
	sessions.GET("/:id", h.get)
	sessions.DELETE("/:id", h.abandon)
	sessions.POST("/:id/search", h.search)
	sessions.PUT("/:id/flight", h.selectFlight)
	sessions.POST("/:id/seats/refresh", h.refreshSeats)
	sessions.PUT("/:id/seats/target", h.setSeatCount)
	sessions.POST("/:id/seats/:seat_id/toggle", h.toggleSeat)
	sessions.POST("/:id/reservations", h.reserve)
	sessions.POST("/:id/back", h.back)
	sessions.POST("/:id/payment", h.pay)
	sessions.POST("/:id/new-search", h.newSearch)
	sessions.GET("/:id/receipt", h.receipt)

	router.GET("/receipts/:pnr", h.receiptByPNR)
}

func (h *CheckoutHandler) create(c *gin.Context) {
	view, err := h.service.CreateSession(c.Request.Context())
	if err != nil {
		abort(c, err, nil)
		return
	}
	c.JSON(http.StatusCreated, view)
}

func (h *CheckoutHandler) get(c *gin.Context) {
	view, err := h.service.GetSession(c.Request.Context(), c.Param("id"))
	respond(c, view, err)
}

func (h *CheckoutHandler) abandon(c *gin.Context) {
	if err := h.service.AbandonSession(c.Request.Context(), c.Param("id")); err != nil {
		abort(c, err, nil)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *CheckoutHandler) search(c *gin.Context) {
	var criteria domain.SearchCriteria
	if err := c.ShouldBindJSON(&criteria); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	view, err := h.service.Search(c.Request.Context(), c.Param("id"), criteria)
	respond(c, view, err)
}

func (h *CheckoutHandler) selectFlight(c *gin.Context) {
	var req selectFlightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	view, err := h.service.SelectFlight(c.Request.Context(), c.Param("id"), req.FlightID, req.SeatCount)
	respond(c, view, err)
}

func (h *CheckoutHandler) refreshSeats(c *gin.Context) {
	view, err := h.service.RefreshSeats(c.Request.Context(), c.Param("id"))
	respond(c, view, err)
}

func (h *CheckoutHandler) setSeatCount(c *gin.Context) {
	var req seatTargetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	view, err := h.service.SetSeatCount(c.Request.Context(), c.Param("id"), req.Count)
	respond(c, view, err)
}

func (h *CheckoutHandler) toggleSeat(c *gin.Context) {
	seatID, err := strconv.ParseInt(c.Param("seat_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid seat id"})
		return
	}
	view, err := h.service.ToggleSeat(c.Request.Context(), c.Param("id"), seatID)
	respond(c, view, err)
}

func (h *CheckoutHandler) reserve(c *gin.Context) {
	var req reservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	view, err := h.service.SubmitReservations(c.Request.Context(), c.Param("id"), req.Passenger)
	respond(c, view, err)
}

func (h *CheckoutHandler) back(c *gin.Context) {
	view, err := h.service.Back(c.Request.Context(), c.Param("id"))
	respond(c, view, err)
}

func (h *CheckoutHandler) pay(c *gin.Context) {
	var req paymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	view, err := h.service.Pay(c.Request.Context(), c.Param("id"), checkout.PaymentInput{
		Method:       domain.PaymentMethod(req.Method),
		Details:      req.Details,
		ConfirmRetry: req.ConfirmRetry,
	})
	respond(c, view, err)
}

func (h *CheckoutHandler) newSearch(c *gin.Context) {
	view, err := h.service.NewSearch(c.Request.Context(), c.Param("id"))
	respond(c, view, err)
}

func (h *CheckoutHandler) receipt(c *gin.Context) {
	r, err := h.service.Receipt(c.Request.Context(), c.Param("id"))
	if err != nil {
		abort(c, err, nil)
		return
	}
	writeReceipt(c, r)
}

func (h *CheckoutHandler) receiptByPNR(c *gin.Context) {
	r, err := h.service.ReceiptByPNR(c.Request.Context(), c.Param("pnr"))
	if err != nil {
		abort(c, err, nil)
		return
	}
	writeReceipt(c, r)
}

func writeReceipt(c *gin.Context, r *domain.Receipt) {
	if c.Query("format") != "text" {
		c.JSON(http.StatusOK, r)
		return
	}
	text, err := checkout.RenderText(r)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.String(http.StatusOK, text)
}

func respond(c *gin.Context, view *checkout.SessionView, err error) {
	if err != nil {
		abort(c, err, view)
		return
	}
	c.JSON(http.StatusOK, view)
}
