package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"dorm-backend/config"
	"dorm-backend/models"
	"dorm-backend/utils"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

type loginPayload struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login is a placeholder scheme: admins authenticate against the seeded
// bcrypt hash, students log in with their id as both username and password.
func Login(c *gin.Context) {
	var payload loginPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid payload")
		return
	}

	username := strings.TrimSpace(payload.Username)
	password := payload.Password
	if username == "" || password == "" {
		utils.JSONError(c, http.StatusBadRequest, "username and password required")
		return
	}

	var admin models.Admin
	if err := config.DB.Where("username = ?", username).First(&admin).Error; err == nil {
		if bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte(password)) == nil {
			c.JSON(http.StatusOK, gin.H{
				"role":     "admin",
				"username": admin.Username,
				"name":     admin.FullName,
			})
			return
		}
		utils.JSONError(c, http.StatusUnauthorized, "invalid credentials")
		return
	}

	studentID, err := strconv.ParseUint(username, 10, 32)
	if err != nil {
		utils.JSONError(c, http.StatusUnauthorized, "invalid credentials")
		return
	}

	var student models.Student
	if err := config.DB.First(&student, uint(studentID)).Error; err != nil {
		utils.JSONError(c, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if password != strconv.FormatUint(uint64(student.ID), 10) {
		utils.JSONError(c, http.StatusUnauthorized, "invalid credentials")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"role":       "student",
		"student_id": student.ID,
		"username":   student.Passport,
		"name":       student.Surname + " " + student.Name,
	})
}
