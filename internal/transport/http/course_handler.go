package handlers

import (
	"net/http"

	"lmsplatform/internal/application/usecase"

	"github.com/gin-gonic/gin"
)

type CourseHandler struct {
	courses *usecase.CourseUseCase
}

func NewCourseHandler(courses *usecase.CourseUseCase) *CourseHandler {
	return &CourseHandler{courses: courses}
}

// GET /api/v1/get-course/:id
func (h *CourseHandler) GetOne(c *gin.Context) {
	course, err := h.courses.GetCourse(c, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "course": course})
}

// GET /api/v1/get-courses
func (h *CourseHandler) List(c *gin.Context) {
	courses, err := h.courses.GetCourses(c)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "courses": courses})
}

// GET /api/v1/get-course-content/:id (только купившим)
func (h *CourseHandler) GetContent(c *gin.Context) {
	content, err := h.courses.GetCourseContent(c, c.Param("id"), currentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "content": content})
}

// PUT /api/v1/add-question
func (h *CourseHandler) AddQuestion(c *gin.Context) {
	var in usecase.AddQuestionInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBadRequest(c, err)
		return
	}

	course, err := h.courses.AddQuestion(c, currentUser(c), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "course": course})
}

// PUT /api/v1/add-answer
func (h *CourseHandler) AddAnswer(c *gin.Context) {
	var in usecase.AddAnswerInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBadRequest(c, err)
		return
	}

	course, err := h.courses.AddAnswer(c, currentUser(c), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "course": course})
}

// PUT /api/v1/add-review/:id
func (h *CourseHandler) AddReview(c *gin.Context) {
	var in usecase.AddReviewInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBadRequest(c, err)
		return
	}

	course, err := h.courses.AddReview(c, currentUser(c), c.Param("id"), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "course": course})
}

// PUT /api/v1/add-reply (админ отвечает на отзыв)
func (h *CourseHandler) AddReviewReply(c *gin.Context) {
	var in usecase.AddReviewReplyInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBadRequest(c, err)
		return
	}

	course, err := h.courses.AddReviewReply(c, currentUser(c), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "course": course})
}

// POST /api/v1/create-course
func (h *CourseHandler) Create(c *gin.Context) {
	var in usecase.CourseInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBadRequest(c, err)
		return
	}

	course, err := h.courses.Create(c, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "course": course})
}

// PUT /api/v1/edit-course/:id
func (h *CourseHandler) Edit(c *gin.Context) {
	var in usecase.CourseInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBadRequest(c, err)
		return
	}

	course, err := h.courses.Edit(c, c.Param("id"), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "course": course})
}

// DELETE /api/v1/delete-course/:id
func (h *CourseHandler) Delete(c *gin.Context) {
	if err := h.courses.Delete(c, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Course deleted successfully"})
}

// GET /api/v1/get-admin-courses
func (h *CourseHandler) AdminList(c *gin.Context) {
	courses, err := h.courses.GetAdminCourses(c)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "courses": courses})
}

// POST /api/v1/getVdoCipherOTP
func (h *CourseHandler) VideoOTP(c *gin.Context) {
	var req struct {
		VideoID string `json:"videoId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	otp, err := h.courses.GenerateVideoOTP(c, req.VideoID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, otp)
}
