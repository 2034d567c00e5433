package controllers

import (
	"net/http"

	"dorm-backend/models"
	"dorm-backend/services"
	"dorm-backend/utils"

	"github.com/gin-gonic/gin"
)

type RoomController struct {
	Rooms   *services.RoomService
	Ledger  *services.AccommodationService
	Housing *services.HousingService
}

func NewRoomController(rooms *services.RoomService, ledger *services.AccommodationService, housing *services.HousingService) *RoomController {
	return &RoomController{Rooms: rooms, Ledger: ledger, Housing: housing}
}

func (ctrl *RoomController) List(c *gin.Context) {
	page := queryInt(c, "page", 1)
	limit := queryInt(c, "limit", 50)

	rooms, total, err := ctrl.Rooms.List(page, limit, c.Query("floor"), c.Query("status"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONPaginated(c, http.StatusOK, rooms, page, limit, total)
}

func (ctrl *RoomController) ListAvailable(c *gin.Context) {
	rooms, err := ctrl.Rooms.ListAvailable()
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, rooms)
}

func (ctrl *RoomController) Residents(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if _, err := ctrl.Rooms.GetByID(id); err != nil {
		respondServiceError(c, err)
		return
	}
	entries, err := ctrl.Ledger.FindActiveByRoom(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

func (ctrl *RoomController) Create(c *gin.Context) {
	var room models.Room
	if err := c.ShouldBindJSON(&room); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid request payload: "+err.Error())
		return
	}
	if err := ctrl.Rooms.Create(&room); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, room)
}

type updateRoomPayload struct {
	RoomNumber string `json:"room_number" binding:"required"`
	Floor      int    `json:"floor"`
	TotalBeds  int    `json:"total_beds" binding:"required"`
}

func (ctrl *RoomController) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var payload updateRoomPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid request payload: "+err.Error())
		return
	}
	room, err := ctrl.Rooms.Update(id, payload.RoomNumber, payload.Floor, payload.TotalBeds)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, room)
}

func (ctrl *RoomController) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := ctrl.Rooms.Delete(id); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Room deleted successfully"})
}

// Clear performs the administrative mass move-out of a room.
func (ctrl *RoomController) Clear(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	result, err := ctrl.Housing.ClearRoom(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":     "Room cleared",
		"room_number": result.RoomNumber,
		"released":    result.Released,
	})
}
