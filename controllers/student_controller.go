package controllers

import (
	"net/http"

	"dorm-backend/models"
	"dorm-backend/services"
	"dorm-backend/utils"

	"github.com/gin-gonic/gin"
)

type StudentController struct {
	Students *services.StudentService
}

func NewStudentController(svc *services.StudentService) *StudentController {
	return &StudentController{Students: svc}
}

func (ctrl *StudentController) List(c *gin.Context) {
	opts := services.StudentListOptions{
		Page:      queryInt(c, "page", 1),
		Limit:     queryInt(c, "limit", 50),
		Search:    c.Query("search"),
		Course:    c.Query("course"),
		Faculty:   c.Query("faculty"),
		SortBy:    c.Query("sortBy"),
		SortOrder: c.Query("sortOrder"),
	}

	rows, total, err := ctrl.Students.List(opts)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONPaginated(c, http.StatusOK, rows, opts.Page, opts.Limit, total)
}

func (ctrl *StudentController) ListAvailable(c *gin.Context) {
	students, err := ctrl.Students.ListUnhoused()
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, students)
}

func (ctrl *StudentController) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	detail, err := ctrl.Students.Get(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (ctrl *StudentController) Roommates(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	rows, err := ctrl.Students.Roommates(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (ctrl *StudentController) Coursemates(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	rows, err := ctrl.Students.Coursemates(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (ctrl *StudentController) Create(c *gin.Context) {
	var student models.Student
	if err := c.ShouldBindJSON(&student); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid request payload: "+err.Error())
		return
	}
	if err := ctrl.Students.Create(&student); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, student)
}

func (ctrl *StudentController) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var input models.Student
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid request payload: "+err.Error())
		return
	}
	student, err := ctrl.Students.Update(id, input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, student)
}

func (ctrl *StudentController) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := ctrl.Students.Delete(id); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Student deleted successfully"})
}
