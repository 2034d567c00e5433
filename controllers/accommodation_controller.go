package controllers

import (
	"net/http"

	"dorm-backend/services"
	"dorm-backend/utils"

	"github.com/gin-gonic/gin"
)

type AccommodationController struct {
	Ledger  *services.AccommodationService
	Housing *services.HousingService
}

func NewAccommodationController(ledger *services.AccommodationService, housing *services.HousingService) *AccommodationController {
	return &AccommodationController{Ledger: ledger, Housing: housing}
}

func (ctrl *AccommodationController) List(c *gin.Context) {
	page := queryInt(c, "page", 1)
	limit := queryInt(c, "limit", 50)

	entries, total, err := ctrl.Ledger.List(page, limit, c.Query("status"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONPaginated(c, http.StatusOK, entries, page, limit, total)
}

type moveInPayload struct {
	StudentID     uint                 `json:"student_id" binding:"required"`
	RoomID        uint                 `json:"room_id" binding:"required"`
	DateIn        string               `json:"date_in"`
	CreatePayment bool                 `json:"create_payment"`
	Payment       *services.ChargeSpec `json:"payment"`
}

func (ctrl *AccommodationController) MoveIn(c *gin.Context) {
	var payload moveInPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid request payload: "+err.Error())
		return
	}

	dateIn, err := parseDateOrNow(payload.DateIn)
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, err.Error())
		return
	}

	var charge *services.ChargeSpec
	if payload.CreatePayment && payload.Payment != nil {
		charge = payload.Payment
	}

	result, err := ctrl.Housing.MoveIn(payload.StudentID, payload.RoomID, dateIn, charge)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

type transferPayload struct {
	NewRoomID    uint   `json:"new_room_id" binding:"required"`
	TransferDate string `json:"transfer_date"`
}

func (ctrl *AccommodationController) Transfer(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var payload transferPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid request payload: "+err.Error())
		return
	}

	transferDate, err := parseDateOrNow(payload.TransferDate)
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, err.Error())
		return
	}

	entry, err := ctrl.Housing.Transfer(id, payload.NewRoomID, transferDate)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":       "Student transferred successfully",
		"accommodation": entry,
	})
}

type checkoutPayload struct {
	DateOut string `json:"date_out"`
}

func (ctrl *AccommodationController) Checkout(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	// body is optional; date_out defaults to today
	var payload checkoutPayload
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&payload); err != nil {
			utils.JSONError(c, http.StatusBadRequest, "invalid request payload: "+err.Error())
			return
		}
	}

	dateOut, err := parseDateOrNow(payload.DateOut)
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, err.Error())
		return
	}

	entry, err := ctrl.Housing.Checkout(id, dateOut)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}
