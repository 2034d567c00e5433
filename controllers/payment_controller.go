package controllers

import (
	"net/http"
	"time"

	"dorm-backend/models"
	"dorm-backend/services"
	"dorm-backend/utils"

	"github.com/gin-gonic/gin"
)

type PaymentController struct {
	Payments *services.PaymentService
}

func NewPaymentController(svc *services.PaymentService) *PaymentController {
	return &PaymentController{Payments: svc}
}

func (ctrl *PaymentController) List(c *gin.Context) {
	page := queryInt(c, "page", 1)
	limit := queryInt(c, "limit", 50)

	payments, total, err := ctrl.Payments.List(page, limit, c.Query("status"), c.Query("year"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONPaginated(c, http.StatusOK, payments, page, limit, total)
}

func (ctrl *PaymentController) ListDebtors(c *gin.Context) {
	payments, err := ctrl.Payments.ListDebtors()
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, payments)
}

type createChargePayload struct {
	StudentID   uint    `json:"student_id" binding:"required"`
	MonthFrom   int     `json:"month_from" binding:"required"`
	MonthTo     int     `json:"month_to"`
	Year        int     `json:"year" binding:"required"`
	Amount      float64 `json:"amount"`
	PaymentDate string  `json:"payment_date"`
	Status      string  `json:"status"`
}

func (ctrl *PaymentController) Create(c *gin.Context) {
	var payload createChargePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid request payload: "+err.Error())
		return
	}

	in := services.ChargeInput{
		StudentID:  payload.StudentID,
		MonthFrom:  payload.MonthFrom,
		MonthTo:    payload.MonthTo,
		Year:       payload.Year,
		Amount:     payload.Amount,
		MarkAsPaid: payload.Status == models.PaymentPaid,
	}
	if payload.PaymentDate != "" {
		d, err := parseDateOrNow(payload.PaymentDate)
		if err != nil {
			utils.JSONError(c, http.StatusBadRequest, err.Error())
			return
		}
		in.PaymentDate = &d
	}

	payment, err := ctrl.Payments.CreateCharge(in)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, payment)
}

type confirmPaymentPayload struct {
	PaymentDate string `json:"payment_date"`
}

func (ctrl *PaymentController) Confirm(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var payload confirmPaymentPayload
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&payload); err != nil {
			utils.JSONError(c, http.StatusBadRequest, "invalid request payload: "+err.Error())
			return
		}
	}

	paymentDate, err := parseDateOrNow(payload.PaymentDate)
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, err.Error())
		return
	}

	payment, err := ctrl.Payments.ConfirmFullPayment(id, paymentDate)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, payment)
}

type partialPaymentPayload struct {
	PaidAmount  float64 `json:"paid_amount" binding:"required"`
	PaymentDate string  `json:"payment_date"`
}

func (ctrl *PaymentController) Partial(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var payload partialPaymentPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid request payload: "+err.Error())
		return
	}

	paymentDate, err := parseDateOrNow(payload.PaymentDate)
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, err.Error())
		return
	}

	result, err := ctrl.Payments.ApplyPartialPayment(id, payload.PaidAmount, paymentDate)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type updatePaymentPayload struct {
	PaymentDate string `json:"payment_date"`
	Status      string `json:"status" binding:"required"`
}

func (ctrl *PaymentController) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var payload updatePaymentPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid request payload: "+err.Error())
		return
	}

	var paymentDate *time.Time
	if payload.PaymentDate != "" {
		d, err := parseDateOrNow(payload.PaymentDate)
		if err != nil {
			utils.JSONError(c, http.StatusBadRequest, err.Error())
			return
		}
		paymentDate = &d
	}

	payment, err := ctrl.Payments.Update(id, paymentDate, payload.Status)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, payment)
}

func (ctrl *PaymentController) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := ctrl.Payments.Delete(id); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Payment deleted successfully"})
}
