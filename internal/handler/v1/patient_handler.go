package v1

import (
	"net/http"
	"time"

	"github.com/carelane/hms-api/internal/domain/patient"
	"github.com/carelane/hms-api/internal/middleware"
	"github.com/carelane/hms-api/internal/service"
	"github.com/carelane/hms-api/pkg/metrics"
	"github.com/gin-gonic/gin"
)

type PatientHandler struct {
	svc *service.PatientService
	col *metrics.Collector
}

func NewPatientHandler(svc *service.PatientService, col *metrics.Collector) *PatientHandler {
	return &PatientHandler{svc: svc, col: col}
}

type createPatientRequest struct {
	FirstName        string                    `json:"firstName" binding:"required"`
	LastName         string                    `json:"lastName" binding:"required"`
	DateOfBirth      string                    `json:"dateOfBirth" binding:"required"`
	Gender           patient.Gender            `json:"gender" binding:"required"`
	NationalID       string                    `json:"nationalId" binding:"required"`
	Phone            string                    `json:"phone"`
	Email            string                    `json:"email"`
	Address          string                    `json:"address"`
	City             string                    `json:"city"`
	Country          string                    `json:"country"`
	EmergencyContact *patient.EmergencyContact `json:"emergencyContact"`
	Allergies        []string                  `json:"allergies"`
	Notes            string                    `json:"notes"`
}

// Create handles POST /patients.
func (h *PatientHandler) Create(c *gin.Context) {
	var req createPatientRequest
	if !bindJSON(c, &req) {
		return
	}

	dob, err := time.Parse(dateLayout, req.DateOfBirth)
	if err != nil {
		respondError(c, http.StatusBadRequest, "dateOfBirth must be in YYYY-MM-DD format")
		return
	}

	callerID, _ := middleware.CallerID(c)
	callerRole, _ := middleware.CallerRole(c)

	cmd := &patient.CreatePatientCommand{
		FirstName:        req.FirstName,
		LastName:         req.LastName,
		DateOfBirth:      dob,
		Gender:           req.Gender,
		NationalID:       req.NationalID,
		Phone:            req.Phone,
		Email:            req.Email,
		Address:          req.Address,
		City:             req.City,
		Country:          req.Country,
		EmergencyContact: req.EmergencyContact,
		Allergies:        req.Allergies,
		Notes:            req.Notes,
		CreatedBy:        callerID,
	}

	p, err := h.svc.CreatePatient(c.Request.Context(), cmd, callerID, string(callerRole), c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	h.col.PatientsCreatedTotal.Inc()
	respondCreated(c, p)
}

// Get handles GET /patients/:id.
func (h *PatientHandler) Get(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	callerID, _ := middleware.CallerID(c)
	callerRole, _ := middleware.CallerRole(c)

	p, err := h.svc.GetPatient(c.Request.Context(), id, callerID, string(callerRole), middleware.CallerPatientID(c), c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, p)
}

type updatePatientRequest struct {
	FirstName        *string                   `json:"firstName"`
	LastName         *string                   `json:"lastName"`
	Gender           *patient.Gender           `json:"gender"`
	Phone            *string                   `json:"phone"`
	Email            *string                   `json:"email"`
	Address          *string                   `json:"address"`
	City             *string                   `json:"city"`
	Country          *string                   `json:"country"`
	EmergencyContact *patient.EmergencyContact `json:"emergencyContact"`
	Allergies        *[]string                 `json:"allergies"`
	Notes            *string                   `json:"notes"`
}

// Update handles PATCH /patients/:id.
func (h *PatientHandler) Update(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	var req updatePatientRequest
	if !bindJSON(c, &req) {
		return
	}

	callerID, _ := middleware.CallerID(c)
	callerRole, _ := middleware.CallerRole(c)

	cmd := &patient.UpdatePatientCommand{
		FirstName:        req.FirstName,
		LastName:         req.LastName,
		Gender:           req.Gender,
		Phone:            req.Phone,
		Email:            req.Email,
		Address:          req.Address,
		City:             req.City,
		Country:          req.Country,
		EmergencyContact: req.EmergencyContact,
		Allergies:        req.Allergies,
		Notes:            req.Notes,
		UpdatedBy:        callerID,
	}

	p, err := h.svc.UpdatePatient(c.Request.Context(), id, cmd, callerID, string(callerRole), c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, p)
}

// Deactivate handles DELETE /patients/:id (soft delete).
func (h *PatientHandler) Deactivate(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	callerID, _ := middleware.CallerID(c)
	callerRole, _ := middleware.CallerRole(c)

	if err := h.svc.DeactivatePatient(c.Request.Context(), id, callerID, string(callerRole), c.ClientIP()); err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, gin.H{"deleted": true})
}

// List handles GET /patients.
func (h *PatientHandler) List(c *gin.Context) {
	q := &patient.ListPatientsQuery{
		Search:   c.Query("search"),
		Page:     parseQueryInt(c, "page", 1),
		PageSize: parseQueryInt(c, "pageSize", 20),
	}
	if status := c.Query("status"); status != "" {
		s := patient.Status(status)
		q.Status = &s
	}

	page, err := h.svc.ListPatients(c.Request.Context(), q)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, page)
}
