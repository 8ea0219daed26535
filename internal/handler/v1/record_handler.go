package v1

import (
	"net/http"

	"github.com/carelane/hms-api/internal/domain/record"
	"github.com/carelane/hms-api/internal/middleware"
	"github.com/carelane/hms-api/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type RecordHandler struct {
	svc *service.RecordService
}

func NewRecordHandler(svc *service.RecordService) *RecordHandler {
	return &RecordHandler{svc: svc}
}

type createRecordRequest struct {
	PatientID     uuid.UUID           `json:"patientId" binding:"required"`
	DoctorID      uuid.UUID           `json:"doctorId" binding:"required"`
	AppointmentID *uuid.UUID          `json:"appointmentId"`
	Type          record.RecordType   `json:"type" binding:"required"`
	Diagnoses     []string            `json:"diagnoses"`
	Attachments   []record.Attachment `json:"attachments"`
	Notes         string              `json:"notes" binding:"required"`
}

// Create handles POST /medical-records.
func (h *RecordHandler) Create(c *gin.Context) {
	var req createRecordRequest
	if !bindJSON(c, &req) {
		return
	}

	callerID, _ := middleware.CallerID(c)
	callerRole, _ := middleware.CallerRole(c)

	cmd := &record.CreateRecordCommand{
		PatientID:     req.PatientID,
		DoctorID:      req.DoctorID,
		AppointmentID: req.AppointmentID,
		Type:          req.Type,
		Diagnoses:     req.Diagnoses,
		Attachments:   req.Attachments,
		Notes:         req.Notes,
		CreatedBy:     callerID,
	}

	r, err := h.svc.CreateRecord(c.Request.Context(), cmd, callerID, string(callerRole), c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, r)
}

// Get handles GET /medical-records/:id.
func (h *RecordHandler) Get(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	callerID, _ := middleware.CallerID(c)
	callerRole, _ := middleware.CallerRole(c)

	r, err := h.svc.GetRecord(c.Request.Context(), id, callerID, string(callerRole), middleware.CallerPatientID(c), c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, r)
}

type addAddendumRequest struct {
	Content string `json:"content" binding:"required"`
}

// AddAddendum handles POST /medical-records/:id/addenda.
func (h *RecordHandler) AddAddendum(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	var req addAddendumRequest
	if !bindJSON(c, &req) {
		return
	}

	callerID, _ := middleware.CallerID(c)
	callerRole, _ := middleware.CallerRole(c)

	cmd := &record.AddAddendumCommand{
		MedicalRecordID: id,
		Content:         req.Content,
		CreatedBy:       callerID,
	}

	a, err := h.svc.AddAddendum(c.Request.Context(), cmd, callerID, string(callerRole), c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, a)
}

// List handles GET /medical-records.
func (h *RecordHandler) List(c *gin.Context) {
	q := &record.ListRecordsQuery{
		Page:     parseQueryInt(c, "page", 1),
		PageSize: parseQueryInt(c, "pageSize", 20),
	}
	if raw := c.Query("patientId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid patientId: must be a valid UUID")
			return
		}
		q.PatientID = &id
	}
	if raw := c.Query("doctorId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid doctorId: must be a valid UUID")
			return
		}
		q.DoctorID = &id
	}
	if t := c.Query("type"); t != "" {
		rt := record.RecordType(t)
		q.Type = &rt
	}

	callerRole, _ := middleware.CallerRole(c)

	page, err := h.svc.ListRecords(c.Request.Context(), q, string(callerRole), middleware.CallerPatientID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, page)
}
