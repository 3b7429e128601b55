package directory

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

type Service struct {
	doctors  DoctorRepository
	patients PatientRepository
}

func NewService(doctors DoctorRepository, patients PatientRepository) *Service {
	return &Service{doctors: doctors, patients: patients}
}

// -- Doctor --

func (s *Service) CreateDoctor(ctx context.Context, d *Doctor) error {
	if strings.TrimSpace(d.FirstName) == "" || strings.TrimSpace(d.LastName) == "" {
		return fmt.Errorf("first_name and last_name are required")
	}
	if strings.TrimSpace(d.Email) == "" {
		return fmt.Errorf("email is required")
	}
	if strings.TrimSpace(d.Specialization) == "" {
		return fmt.Errorf("specialization is required")
	}
	if d.YearsOfExperience < 0 {
		return fmt.Errorf("years_of_experience must not be negative")
	}
	if d.ConsultationFee < 0 {
		return fmt.Errorf("consultation_fee must not be negative")
	}
	return s.doctors.Create(ctx, d)
}

func (s *Service) GetDoctor(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	return s.doctors.GetByID(ctx, id)
}

func (s *Service) UpdateDoctor(ctx context.Context, d *Doctor) error {
	return s.doctors.Update(ctx, d)
}

func (s *Service) DeleteDoctor(ctx context.Context, id uuid.UUID) error {
	return s.doctors.Delete(ctx, id)
}

func (s *Service) ListDoctors(ctx context.Context, limit, offset int) ([]*Doctor, int, error) {
	return s.doctors.List(ctx, limit, offset)
}

// FindDoctorsBySpecialization matches the stored specialization
// case-insensitively. Fuzzy alias mapping is the caller's concern.
func (s *Service) FindDoctorsBySpecialization(ctx context.Context, specialization string) ([]*Doctor, error) {
	specialization = strings.TrimSpace(specialization)
	if specialization == "" {
		return nil, fmt.Errorf("specialization is required")
	}
	return s.doctors.FindBySpecialization(ctx, specialization)
}

// -- Patient --

func (s *Service) CreatePatient(ctx context.Context, p *Patient) error {
	if strings.TrimSpace(p.FirstName) == "" || strings.TrimSpace(p.LastName) == "" {
		return fmt.Errorf("first_name and last_name are required")
	}
	if strings.TrimSpace(p.Email) == "" {
		return fmt.Errorf("email is required")
	}
	return s.patients.Create(ctx, p)
}

func (s *Service) GetPatient(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.patients.GetByID(ctx, id)
}

func (s *Service) UpdatePatient(ctx context.Context, p *Patient) error {
	return s.patients.Update(ctx, p)
}

func (s *Service) DeletePatient(ctx context.Context, id uuid.UUID) error {
	return s.patients.Delete(ctx, id)
}

func (s *Service) ListPatients(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	return s.patients.List(ctx, limit, offset)
}
