package middleware

import (
	"net/http"
	"strings"

	"github.com/carelane/hms-api/internal/domain"
	"github.com/carelane/hms-api/pkg/auth"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	ctxKeyUserID    = "userID"
	ctxKeyUserRole  = "userRole"
	ctxKeyDoctorID  = "doctorID"
	ctxKeyPatientID = "patientID"
)

// Authenticate validates the bearer token and stores the caller identity
// in the gin context for downstream handlers.
func Authenticate(jwtManager *auth.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			abortUnauthorized(c, "authorization header required")
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			abortUnauthorized(c, "authorization header must be of the form: Bearer <token>")
			return
		}

		claims, err := jwtManager.ValidateAccessToken(parts[1])
		if err != nil {
			abortUnauthorized(c, "invalid or expired token")
			return
		}

		c.Set(ctxKeyUserID, claims.UserID)
		c.Set(ctxKeyUserRole, claims.Role)
		if claims.DoctorID != nil {
			c.Set(ctxKeyDoctorID, *claims.DoctorID)
		}
		if claims.PatientID != nil {
			c.Set(ctxKeyPatientID, *claims.PatientID)
		}

		c.Next()
	}
}

// RequireRole restricts the route to the given roles. Must run after
// Authenticate.
func RequireRole(allowed ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := CallerRole(c)
		if !ok {
			abortUnauthorized(c, "authentication required")
			return
		}

		for _, r := range allowed {
			if role == r {
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"error": "you do not have permission to access this resource",
		})
	}
}

// RequireStaff restricts the route to non-patient roles.
func RequireStaff() gin.HandlerFunc {
	return RequireRole(domain.RoleAdmin, domain.RoleDoctor, domain.RoleNurse, domain.RoleReceptionist)
}

func CallerID(c *gin.Context) (uuid.UUID, bool) {
	v, exists := c.Get(ctxKeyUserID)
	if !exists {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

func CallerRole(c *gin.Context) (domain.Role, bool) {
	v, exists := c.Get(ctxKeyUserRole)
	if !exists {
		return "", false
	}
	role, ok := v.(domain.Role)
	return role, ok
}

// CallerPatientID returns the patient record linked to the caller, if any.
func CallerPatientID(c *gin.Context) *uuid.UUID {
	v, exists := c.Get(ctxKeyPatientID)
	if !exists {
		return nil
	}
	if id, ok := v.(uuid.UUID); ok {
		return &id
	}
	return nil
}

// CallerDoctorID returns the doctor profile linked to the caller, if any.
func CallerDoctorID(c *gin.Context) *uuid.UUID {
	v, exists := c.Get(ctxKeyDoctorID)
	if !exists {
		return nil
	}
	if id, ok := v.(uuid.UUID); ok {
		return &id
	}
	return nil
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
}
