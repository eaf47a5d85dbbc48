package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/arcticshore/pickups/internal/domain"
	"github.com/arcticshore/pickups/internal/service/pickup"
)

type PickupHandler struct {
	service pickup.UseCase
}

func NewPickupHandler(service pickup.UseCase) *PickupHandler {
	return &PickupHandler{service: service}
}

func (h *PickupHandler) Register(router *gin.RouterGroup) {
	router.GET("/", h.snapshot)
	router.POST("/load", h.load)
	router.POST("/distribute", h.distribute)
	router.POST("/:id/assign", h.assign)
	router.POST("/:id/move", h.move)
	router.PUT("/:id/arrived", h.arrived)
	router.PUT("/:id/no-show", h.noShow)
	router.PUT("/:id/pickup-place", h.pickupPlace)
	router.PUT("/order", h.reorder)
	router.DELETE("/order", h.resetOrder)
}

type loadRequest struct {
	Date string `json:"date"`
}

type assignRequest struct {
	GuideID   string `json:"guide_id"`
	GuideName string `json:"guide_name"`
}

type moveRequest struct {
	FromGuideID string `json:"from_guide_id"`
	ToGuideID   string `json:"to_guide_id"`
	ToGuideName string `json:"to_guide_name"`
}

type flagRequest struct {
	Value bool `json:"value"`
}

type pickupPlaceRequest struct {
	PickupPlace string `json:"pickup_place"`
}

type reorderRequest struct {
	BookingIDs []string `json:"booking_ids"`
}

type bookingResponse struct {
	ID             string   `json:"id"`
	CustomerName   string   `json:"customer_name"`
	PickupPlace    string   `json:"pickup_place"`
	PickupTime     string   `json:"pickup_time"`
	GuestCount     int      `json:"guest_count"`
	GuideID        string   `json:"guide_id,omitempty"`
	GuideName      string   `json:"guide_name,omitempty"`
	Arrived        bool     `json:"arrived"`
	NoShow         bool     `json:"no_show"`
	Unpaid         bool     `json:"unpaid"`
	AmountDue      *float64 `json:"amount_due,omitempty"`
	ConfirmationID string   `json:"confirmation_code,omitempty"`
	BookingRef     string   `json:"booking_ref,omitempty"`
}

type guideListResponse struct {
	GuideID    string            `json:"guide_id"`
	GuideName  string            `json:"guide_name"`
	Passengers int               `json:"passengers"`
	Bookings   []bookingResponse `json:"bookings"`
}

type snapshotResponse struct {
	State               string              `json:"state"`
	SelectedDate        string              `json:"selected_date"`
	IsLoading           bool                `json:"is_loading"`
	Error               string              `json:"error,omitempty"`
	Bookings            []bookingResponse   `json:"bookings"`
	CurrentUserBookings []bookingResponse   `json:"current_user_bookings"`
	GuideLists          []guideListResponse `json:"guide_lists"`
}

func (h *PickupHandler) snapshot(c *gin.Context) {
	c.JSON(http.StatusOK, toSnapshotResponse(h.service.Snapshot()))
}

func (h *PickupHandler) load(c *gin.Context) {
	var req loadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return
	}

	if err := h.service.LoadBookingsForDate(c.Request.Context(), date); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, toSnapshotResponse(h.service.Snapshot()))
}

func (h *PickupHandler) assign(c *gin.Context) {
	var req assignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.respond(c, h.service.AssignBookingToGuide(c.Request.Context(), c.Param("id"), req.GuideID, req.GuideName))
}

func (h *PickupHandler) move(c *gin.Context) {
	var req moveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.respond(c, h.service.MoveBookingBetweenGuides(c.Request.Context(), c.Param("id"), req.FromGuideID, req.ToGuideID, req.ToGuideName))
}

func (h *PickupHandler) arrived(c *gin.Context) {
	var req flagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.respond(c, h.service.MarkAsArrived(c.Request.Context(), c.Param("id"), req.Value))
}

func (h *PickupHandler) noShow(c *gin.Context) {
	var req flagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.respond(c, h.service.MarkAsNoShow(c.Request.Context(), c.Param("id"), req.Value))
}

func (h *PickupHandler) pickupPlace(c *gin.Context) {
	var req pickupPlaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.respond(c, h.service.UpdatePickupPlace(c.Request.Context(), c.Param("id"), req.PickupPlace))
}

func (h *PickupHandler) reorder(c *gin.Context) {
	var req reorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.respond(c, h.service.ReorderCurrentUserBookings(c.Request.Context(), req.BookingIDs))
}

func (h *PickupHandler) resetOrder(c *gin.Context) {
	h.respond(c, h.service.ResetToAlphabeticalOrder(c.Request.Context()))
}

func (h *PickupHandler) distribute(c *gin.Context) {
	h.respond(c, h.service.DistributeUnassigned(c.Request.Context()))
}

func (h *PickupHandler) respond(c *gin.Context, err error) {
	if err != nil {
		var capErr *domain.CapacityError
		switch {
		case errors.As(err, &capErr):
			c.JSON(http.StatusConflict, gin.H{"error": capErr.Error()})
		case errors.Is(err, domain.ErrBookingNotFound), errors.Is(err, domain.ErrGuideNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, toSnapshotResponse(h.service.Snapshot()))
}

func toSnapshotResponse(snap pickup.Snapshot) snapshotResponse {
	resp := snapshotResponse{
		State:               string(snap.State),
		SelectedDate:        snap.SelectedDate.Format("2006-01-02"),
		IsLoading:           snap.IsLoading(),
		Bookings:            toBookingResponses(snap.Bookings),
		CurrentUserBookings: toBookingResponses(snap.CurrentUserBookings),
		GuideLists:          make([]guideListResponse, 0, len(snap.GuideLists)),
	}
	if snap.Err != nil {
		resp.Error = snap.Err.Error()
	}
	for _, list := range snap.GuideLists {
		resp.GuideLists = append(resp.GuideLists, guideListResponse{
			GuideID:    list.GuideID,
			GuideName:  list.GuideName,
			Passengers: list.Passengers,
			Bookings:   toBookingResponses(list.Bookings),
		})
	}
	return resp
}

func toBookingResponses(bookings []domain.Booking) []bookingResponse {
	resp := make([]bookingResponse, 0, len(bookings))
	for _, b := range bookings {
		resp = append(resp, bookingResponse{
			ID:             b.ID,
			CustomerName:   b.CustomerName,
			PickupPlace:    b.PickupPlaceName,
			PickupTime:     b.PickupTime.Format(time.RFC3339),
			GuestCount:     b.GuestCount,
			GuideID:        b.GuideID,
			GuideName:      b.GuideName,
			Arrived:        b.Arrived,
			NoShow:         b.NoShow,
			Unpaid:         b.Unpaid,
			AmountDue:      b.AmountDue,
			ConfirmationID: b.ConfirmationCode,
			BookingRef:     b.BookingRef,
		})
	}
	return resp
}
