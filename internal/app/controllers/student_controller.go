package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/yigit/alunos/internal/app/models/dto"
	"github.com/yigit/alunos/internal/app/services"
	"github.com/yigit/alunos/internal/middleware"
)

// StudentController handles student-related operations
type StudentController struct {
	studentService services.StudentService
}

// NewStudentController creates a new StudentController
func NewStudentController(studentService services.StudentService) *StudentController {
	return &StudentController{studentService: studentService}
}

func (c *StudentController) ownerID(ctx *gin.Context) (uuid.UUID, bool) {
	session, ok := middleware.CurrentSession(ctx)
	if !ok {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")
		ctx.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
		return uuid.Nil, false
	}
	return session.AccountID, true
}

func parseStudentID(ctx *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid student ID").
			WithDetails("Student ID must be a valid UUID")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return uuid.Nil, false
	}
	return id, true
}

// ListStudents retrieves the caller's students
// @Summary List students
// @Description Lists the caller's students, newest first, optionally filtered by name or registration number
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param search query string false "Case-insensitive substring of full name or registration number"
// @Success 200 {object} dto.APIResponse{data=dto.StudentListResponse}
// @Failure 401 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /students [get]
func (c *StudentController) ListStudents(ctx *gin.Context) {
	ownerID, ok := c.ownerID(ctx)
	if !ok {
		return
	}

	search := ctx.Query("search")
	students, err := c.studentService.ListStudents(ctx.Request.Context(), ownerID, search)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewStudentListResponse(students, search), ""))
}

// CreateStudent handles student creation
// @Summary Create a student
// @Tags students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.StudentRequest true "Student information"
// @Success 201 {object} dto.APIResponse{data=dto.StudentResponse}
// @Failure 400 {object} dto.ErrorResponse "Validation failed"
// @Failure 409 {object} dto.ErrorResponse "Registration number or CPF already registered"
// @Failure 502 {object} dto.ErrorResponse
// @Router /students [post]
func (c *StudentController) CreateStudent(ctx *gin.Context) {
	ownerID, ok := c.ownerID(ctx)
	if !ok {
		return
	}

	var req dto.StudentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	student, err := c.studentService.CreateStudent(ctx.Request.Context(), ownerID, req.ToInput())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(dto.NewStudentResponse(*student), "Aluno cadastrado!"))
}

// UpdateStudent handles student updates
// @Summary Update a student
// @Tags students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Student ID" Format(uuid)
// @Param request body dto.StudentRequest true "Student information"
// @Success 200 {object} dto.APIResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /students/{id} [put]
func (c *StudentController) UpdateStudent(ctx *gin.Context) {
	ownerID, ok := c.ownerID(ctx)
	if !ok {
		return
	}
	id, ok := parseStudentID(ctx)
	if !ok {
		return
	}

	var req dto.StudentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	if err := c.studentService.UpdateStudent(ctx.Request.Context(), ownerID, id, req.ToInput()); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Aluno atualizado!"))
}

// DeleteStudent handles student deletion
// @Summary Delete a student
// @Description Deleting an unknown id also succeeds
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param id path string true "Student ID" Format(uuid)
// @Success 200 {object} dto.APIResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /students/{id} [delete]
func (c *StudentController) DeleteStudent(ctx *gin.Context) {
	ownerID, ok := c.ownerID(ctx)
	if !ok {
		return
	}
	id, ok := parseStudentID(ctx)
	if !ok {
		return
	}

	if err := c.studentService.DeleteStudent(ctx.Request.Context(), ownerID, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Aluno excluído"))
}
