package doctor

import "errors"

var (
	ErrDoctorNotFound      = errors.New("doctor not found")
	ErrDoctorAlreadyExists = errors.New("doctor with this license number already exists")
	ErrDoctorInactive      = errors.New("doctor is not accepting appointments")
)
