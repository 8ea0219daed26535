package v1

import (
	"github.com/carelane/hms-api/internal/domain/doctor"
	"github.com/carelane/hms-api/internal/middleware"
	"github.com/carelane/hms-api/internal/service"
	"github.com/carelane/hms-api/pkg/metrics"
	"github.com/gin-gonic/gin"
)

type DoctorHandler struct {
	svc *service.DoctorService
	col *metrics.Collector
}

func NewDoctorHandler(svc *service.DoctorService, col *metrics.Collector) *DoctorHandler {
	return &DoctorHandler{svc: svc, col: col}
}

type registerDoctorRequest struct {
	FirstName       string  `json:"firstName" binding:"required"`
	LastName        string  `json:"lastName" binding:"required"`
	Specialization  string  `json:"specialization" binding:"required"`
	LicenseNumber   string  `json:"licenseNumber" binding:"required"`
	Email           string  `json:"email" binding:"required,email"`
	Phone           string  `json:"phone"`
	ConsultationFee float64 `json:"consultationFee"`
	Password        string  `json:"password" binding:"required"`
}

// Register handles POST /doctors. The doctor profile and its login
// account are created atomically.
func (h *DoctorHandler) Register(c *gin.Context) {
	var req registerDoctorRequest
	if !bindJSON(c, &req) {
		return
	}

	callerID, _ := middleware.CallerID(c)
	callerRole, _ := middleware.CallerRole(c)

	cmd := &doctor.RegisterDoctorCommand{
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Specialization:  req.Specialization,
		LicenseNumber:   req.LicenseNumber,
		Email:           req.Email,
		Phone:           req.Phone,
		ConsultationFee: req.ConsultationFee,
		Password:        req.Password,
		CreatedBy:       callerID,
	}

	d, err := h.svc.RegisterDoctor(c.Request.Context(), cmd, callerID, string(callerRole), c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	h.col.DoctorsCreatedTotal.Inc()
	respondCreated(c, d)
}

// Get handles GET /doctors/:id.
func (h *DoctorHandler) Get(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	d, err := h.svc.GetDoctor(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, d)
}

type updateDoctorRequest struct {
	FirstName       *string        `json:"firstName"`
	LastName        *string        `json:"lastName"`
	Specialization  *string        `json:"specialization"`
	Phone           *string        `json:"phone"`
	ConsultationFee *float64       `json:"consultationFee"`
	Status          *doctor.Status `json:"status"`
}

// Update handles PATCH /doctors/:id.
func (h *DoctorHandler) Update(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	var req updateDoctorRequest
	if !bindJSON(c, &req) {
		return
	}

	callerID, _ := middleware.CallerID(c)
	callerRole, _ := middleware.CallerRole(c)

	cmd := &doctor.UpdateDoctorCommand{
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Specialization:  req.Specialization,
		Phone:           req.Phone,
		ConsultationFee: req.ConsultationFee,
		Status:          req.Status,
		UpdatedBy:       callerID,
	}

	d, err := h.svc.UpdateDoctor(c.Request.Context(), id, cmd, callerID, string(callerRole), c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, d)
}

// Remove handles DELETE /doctors/:id (soft delete).
func (h *DoctorHandler) Remove(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	callerID, _ := middleware.CallerID(c)
	callerRole, _ := middleware.CallerRole(c)

	if err := h.svc.RemoveDoctor(c.Request.Context(), id, callerID, string(callerRole), c.ClientIP()); err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, gin.H{"deleted": true})
}

// List handles GET /doctors.
func (h *DoctorHandler) List(c *gin.Context) {
	q := &doctor.ListDoctorsQuery{
		Search:   c.Query("search"),
		Page:     parseQueryInt(c, "page", 1),
		PageSize: parseQueryInt(c, "pageSize", 20),
	}
	if spec := c.Query("specialization"); spec != "" {
		q.Specialization = &spec
	}
	if status := c.Query("status"); status != "" {
		s := doctor.Status(status)
		q.Status = &s
	}

	page, err := h.svc.ListDoctors(c.Request.Context(), q)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, page)
}
