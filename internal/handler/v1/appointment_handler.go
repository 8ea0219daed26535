package v1

import (
	"net/http"
	"time"

	"github.com/carelane/hms-api/internal/domain/appointment"
	"github.com/carelane/hms-api/internal/middleware"
	"github.com/carelane/hms-api/internal/service"
	"github.com/carelane/hms-api/pkg/metrics"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const dateLayout = "2006-01-02"

type AppointmentHandler struct {
	svc *service.AppointmentService
	col *metrics.Collector
}

func NewAppointmentHandler(svc *service.AppointmentService, col *metrics.Collector) *AppointmentHandler {
	return &AppointmentHandler{svc: svc, col: col}
}

type timeSlotRequest struct {
	Start string `json:"start" binding:"required"`
	End   string `json:"end" binding:"required"`
}

type paymentRequest struct {
	Amount        float64 `json:"amount"`
	Status        string  `json:"status"`
	TransactionID string  `json:"transactionId"`
}

type bookAppointmentRequest struct {
	DoctorID        uuid.UUID       `json:"doctorId" binding:"required"`
	PatientID       uuid.UUID       `json:"patientId" binding:"required"`
	AppointmentDate string          `json:"appointmentDate" binding:"required"`
	TimeSlot        timeSlotRequest `json:"timeSlot" binding:"required"`
	ReasonForVisit  string          `json:"reasonForVisit"`
	Payment         *paymentRequest `json:"payment"`
}

// Book handles POST /appointments.
func (h *AppointmentHandler) Book(c *gin.Context) {
	var req bookAppointmentRequest
	if !bindJSON(c, &req) {
		return
	}

	date, err := time.Parse(dateLayout, req.AppointmentDate)
	if err != nil {
		respondError(c, http.StatusBadRequest, "appointmentDate must be in YYYY-MM-DD format")
		return
	}

	callerID, _ := middleware.CallerID(c)
	callerRole, _ := middleware.CallerRole(c)

	cmd := &appointment.BookAppointmentCommand{
		DoctorID:        req.DoctorID,
		PatientID:       req.PatientID,
		AppointmentDate: date,
		TimeSlot:        appointment.TimeSlot{Start: req.TimeSlot.Start, End: req.TimeSlot.End},
		ReasonForVisit:  req.ReasonForVisit,
		CreatedBy:       callerID,
	}
	if req.Payment != nil {
		cmd.Payment = &appointment.Payment{
			Amount:        req.Payment.Amount,
			Status:        appointment.PaymentStatus(req.Payment.Status),
			TransactionID: req.Payment.TransactionID,
		}
	}

	a, err := h.svc.Book(c.Request.Context(), cmd, callerID, string(callerRole), c.ClientIP())
	if err != nil {
		if err == appointment.ErrSlotTaken {
			h.col.BookingConflicts.Inc()
		}
		respondServiceError(c, err)
		return
	}

	h.col.AppointmentsBooked.Inc()
	respondCreated(c, a)
}

type confirmAppointmentRequest struct {
	Notes *string `json:"notes"`
}

// Confirm handles PATCH /appointments/:id/confirm.
func (h *AppointmentHandler) Confirm(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	// Body is optional; confirming without notes is valid
	var req confirmAppointmentRequest
	if c.Request.ContentLength > 0 && !bindJSON(c, &req) {
		return
	}

	staffID, _ := middleware.CallerID(c)

	a, err := h.svc.Confirm(c.Request.Context(), id, staffID, req.Notes, c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	h.col.AppointmentsTotal.WithLabelValues(string(appointment.StatusConfirmed)).Inc()
	respondOK(c, a)
}

type rescheduleAppointmentRequest struct {
	DoctorID        *uuid.UUID       `json:"doctorId"`
	AppointmentDate *string          `json:"appointmentDate"`
	TimeSlot        *timeSlotRequest `json:"timeSlot"`
}

// Reschedule handles PATCH /appointments/:id/reschedule.
func (h *AppointmentHandler) Reschedule(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	var req rescheduleAppointmentRequest
	if !bindJSON(c, &req) {
		return
	}

	cmd := &appointment.RescheduleCommand{NewDoctorID: req.DoctorID}
	if req.AppointmentDate != nil {
		date, err := time.Parse(dateLayout, *req.AppointmentDate)
		if err != nil {
			respondError(c, http.StatusBadRequest, "appointmentDate must be in YYYY-MM-DD format")
			return
		}
		cmd.NewAppointmentDate = &date
	}
	if req.TimeSlot != nil {
		cmd.NewTimeSlot = &appointment.TimeSlot{Start: req.TimeSlot.Start, End: req.TimeSlot.End}
	}

	staffID, _ := middleware.CallerID(c)

	a, err := h.svc.Reschedule(c.Request.Context(), id, staffID, cmd, c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	h.col.AppointmentsTotal.WithLabelValues(string(appointment.StatusPending)).Inc()
	respondOK(c, a)
}

// ListPending handles GET /appointments/pending.
func (h *AppointmentHandler) ListPending(c *gin.Context) {
	pending, err := h.svc.ListPending(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, pending)
}

// Get handles GET /appointments/:id.
func (h *AppointmentHandler) Get(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	a, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, a)
}

// ListAll handles GET /appointments.
func (h *AppointmentHandler) ListAll(c *gin.Context) {
	appts, err := h.svc.ListAll(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, appts)
}

// ListByPatient handles GET /appointments/patient/:patientId.
func (h *AppointmentHandler) ListByPatient(c *gin.Context) {
	patientID, ok := parseUUID(c, "patientId")
	if !ok {
		return
	}

	appts, err := h.svc.ListByPatient(c.Request.Context(), patientID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, appts)
}

// ListByDoctor handles GET /appointments/doctor/:doctorId.
func (h *AppointmentHandler) ListByDoctor(c *gin.Context) {
	doctorID, ok := parseUUID(c, "doctorId")
	if !ok {
		return
	}

	appts, err := h.svc.ListByDoctor(c.Request.Context(), doctorID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, appts)
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateStatus handles PATCH /appointments/:id/status.
func (h *AppointmentHandler) UpdateStatus(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	var req updateStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	callerID, _ := middleware.CallerID(c)
	callerRole, _ := middleware.CallerRole(c)

	a, err := h.svc.UpdateStatus(c.Request.Context(), id, appointment.Status(req.Status), callerID, string(callerRole), c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	h.col.AppointmentsTotal.WithLabelValues(string(a.Status)).Inc()
	respondOK(c, a)
}

type updateDetailsRequest struct {
	AppointmentDate *string          `json:"appointmentDate"`
	TimeSlot        *timeSlotRequest `json:"timeSlot"`
	ReasonForVisit  *string          `json:"reasonForVisit"`
	Notes           *string          `json:"notes"`
	Payment         *paymentRequest  `json:"payment"`
}

// UpdateDetails handles PATCH /appointments/:id.
func (h *AppointmentHandler) UpdateDetails(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	var req updateDetailsRequest
	if !bindJSON(c, &req) {
		return
	}

	cmd := &appointment.UpdateDetailsCommand{
		ReasonForVisit: req.ReasonForVisit,
		Notes:          req.Notes,
	}
	if req.AppointmentDate != nil {
		date, err := time.Parse(dateLayout, *req.AppointmentDate)
		if err != nil {
			respondError(c, http.StatusBadRequest, "appointmentDate must be in YYYY-MM-DD format")
			return
		}
		cmd.AppointmentDate = &date
	}
	if req.TimeSlot != nil {
		cmd.TimeSlot = &appointment.TimeSlot{Start: req.TimeSlot.Start, End: req.TimeSlot.End}
	}
	if req.Payment != nil {
		cmd.Payment = &appointment.Payment{
			Amount:        req.Payment.Amount,
			Status:        appointment.PaymentStatus(req.Payment.Status),
			TransactionID: req.Payment.TransactionID,
		}
	}

	callerID, _ := middleware.CallerID(c)
	callerRole, _ := middleware.CallerRole(c)

	a, err := h.svc.UpdateDetails(c.Request.Context(), id, cmd, callerID, string(callerRole), c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, a)
}

// Delete handles DELETE /appointments/:id. The removed appointment is
// returned in the response body.
func (h *AppointmentHandler) Delete(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	callerID, _ := middleware.CallerID(c)
	callerRole, _ := middleware.CallerRole(c)

	a, err := h.svc.Delete(c.Request.Context(), id, callerID, string(callerRole), c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, a)
}
