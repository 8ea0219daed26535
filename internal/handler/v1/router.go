package v1

import (
	"net/http"

	"github.com/carelane/hms-api/internal/domain"
	"github.com/carelane/hms-api/internal/middleware"
	"github.com/carelane/hms-api/pkg/auth"
	"github.com/carelane/hms-api/pkg/metrics"
	"github.com/gin-gonic/gin"
)

type Handlers struct {
	Auth        *AuthHandler
	Appointment *AppointmentHandler
	Doctor      *DoctorHandler
	Patient     *PatientHandler
	Record      *RecordHandler
}

// RegisterRoutes wires the v1 API surface onto the engine.
func RegisterRoutes(r *gin.Engine, h Handlers, jwtManager *auth.JWTManager) {
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(metrics.MetricsHandler()))

	api := r.Group("/api/v1")

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/login", h.Auth.Login)
		authGroup.POST("/refresh", h.Auth.Refresh)
		authGroup.POST("/change-password", middleware.Authenticate(jwtManager), h.Auth.ChangePassword)
	}

	authed := api.Group("")
	authed.Use(middleware.Authenticate(jwtManager))

	appointments := authed.Group("/appointments")
	{
		appointments.POST("", h.Appointment.Book)
		appointments.GET("", middleware.RequireStaff(), h.Appointment.ListAll)
		appointments.GET("/pending", middleware.RequireStaff(), h.Appointment.ListPending)
		appointments.GET("/patient/:patientId", h.Appointment.ListByPatient)
		appointments.GET("/doctor/:doctorId", h.Appointment.ListByDoctor)
		appointments.GET("/:id", h.Appointment.Get)
		appointments.PATCH("/:id/confirm", middleware.RequireStaff(), h.Appointment.Confirm)
		appointments.PATCH("/:id/reschedule", middleware.RequireStaff(), h.Appointment.Reschedule)
		appointments.PATCH("/:id/status", middleware.RequireStaff(), h.Appointment.UpdateStatus)
		appointments.PATCH("/:id", middleware.RequireStaff(), h.Appointment.UpdateDetails)
		appointments.DELETE("/:id", middleware.RequireRole(domain.RoleAdmin, domain.RoleReceptionist), h.Appointment.Delete)
	}

	doctors := authed.Group("/doctors")
	{
		doctors.POST("", middleware.RequireRole(domain.RoleAdmin), h.Doctor.Register)
		doctors.GET("", h.Doctor.List)
		doctors.GET("/:id", h.Doctor.Get)
		doctors.PATCH("/:id", middleware.RequireRole(domain.RoleAdmin), h.Doctor.Update)
		doctors.DELETE("/:id", middleware.RequireRole(domain.RoleAdmin), h.Doctor.Remove)
	}

	patients := authed.Group("/patients")
	{
		patients.POST("", middleware.RequireStaff(), h.Patient.Create)
		patients.GET("", middleware.RequireStaff(), h.Patient.List)
		patients.GET("/:id", h.Patient.Get)
		patients.PATCH("/:id", middleware.RequireStaff(), h.Patient.Update)
		patients.DELETE("/:id", middleware.RequireRole(domain.RoleAdmin), h.Patient.Deactivate)
	}

	records := authed.Group("/medical-records")
	{
		records.POST("", middleware.RequireRole(domain.RoleAdmin, domain.RoleDoctor, domain.RoleNurse), h.Record.Create)
		records.GET("", h.Record.List)
		records.GET("/:id", h.Record.Get)
		records.POST("/:id/addenda", middleware.RequireRole(domain.RoleAdmin, domain.RoleDoctor, domain.RoleNurse), h.Record.AddAddendum)
	}
}
