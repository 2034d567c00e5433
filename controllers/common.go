package controllers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"dorm-backend/services"
	"dorm-backend/utils"

	"github.com/gin-gonic/gin"
)

func parseID(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		utils.JSONError(c, http.StatusBadRequest, fmt.Sprintf("invalid %s: %q", name, raw))
		return 0, false
	}
	return uint(id), true
}

func queryInt(c *gin.Context, name string, def int) int {
	raw := c.Query(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

// parseDateOrNow accepts YYYY-MM-DD or RFC3339; empty falls back to today.
func parseDateOrNow(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Now(), nil
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD", raw)
}

// respondServiceError maps service sentinels onto HTTP status codes; anything
// unrecognized is a 500 and the details stay in the log.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrRoomNotFound),
		errors.Is(err, services.ErrStudentNotFound),
		errors.Is(err, services.ErrPaymentNotFound),
		errors.Is(err, services.ErrAccommodationNotFound):
		utils.JSONError(c, http.StatusNotFound, err.Error())

	case errors.Is(err, services.ErrValidation),
		errors.Is(err, services.ErrInvalidSort),
		errors.Is(err, services.ErrRoomFull),
		errors.Is(err, services.ErrCapacityViolation),
		errors.Is(err, services.ErrRoomOccupied),
		errors.Is(err, services.ErrRoomNumberTaken),
		errors.Is(err, services.ErrStudentAlreadyHoused),
		errors.Is(err, services.ErrStudentHoused),
		errors.Is(err, services.ErrPassportTaken),
		errors.Is(err, services.ErrNotActive),
		errors.Is(err, services.ErrSameRoom),
		errors.Is(err, services.ErrPeriodOverlap),
		errors.Is(err, services.ErrAmountMismatch),
		errors.Is(err, services.ErrPaymentAlreadyPaid),
		errors.Is(err, services.ErrBelowMinimumPayment):
		utils.JSONError(c, http.StatusBadRequest, err.Error())

	default:
		log.Printf("internal error: %v", err)
		utils.JSONError(c, http.StatusInternalServerError, "internal server error")
	}
}
