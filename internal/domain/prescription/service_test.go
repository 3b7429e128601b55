package prescription

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type mockRepo struct {
	prescriptions map[uuid.UUID]*Prescription
}

func newMockRepo() *mockRepo {
	return &mockRepo{prescriptions: make(map[uuid.UUID]*Prescription)}
}

func (m *mockRepo) Create(_ context.Context, p *Prescription) error {
	p.ID = uuid.New()
	p.CreatedAt = time.Now()
	p.UpdatedAt = time.Now()
	m.prescriptions[p.ID] = p
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Prescription, error) {
	p, ok := m.prescriptions[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return p, nil
}

func (m *mockRepo) ListByPatient(_ context.Context, patientID uuid.UUID, limit, offset int) ([]*Prescription, int, error) {
	var items []*Prescription
	for _, p := range m.prescriptions {
		if p.PatientID == patientID {
			items = append(items, p)
		}
	}
	return items, len(items), nil
}

func (m *mockRepo) ListByPatientAndDoctor(_ context.Context, patientID, doctorID uuid.UUID) ([]*Prescription, error) {
	var items []*Prescription
	for _, p := range m.prescriptions {
		if p.PatientID == patientID && p.DoctorID == doctorID {
			items = append(items, p)
		}
	}
	return items, nil
}

func (m *mockRepo) PendingReminderActivation(_ context.Context, patientID, doctorID uuid.UUID) ([]*Prescription, error) {
	var items []*Prescription
	for _, p := range m.prescriptions {
		if p.PatientID == patientID && p.DoctorID == doctorID && p.IsActive {
			items = append(items, p)
		}
	}
	return items, nil
}

func (m *mockRepo) MarkInactive(_ context.Context, id uuid.UUID) error {
	p, ok := m.prescriptions[id]
	if !ok {
		return fmt.Errorf("not found")
	}
	p.IsActive = false
	return nil
}

type mockScheduler struct {
	calls []scheduleCall
	err   error
}

type scheduleCall struct {
	prescriptionID uuid.UUID
	frequency      int
	duration       int
}

func (m *mockScheduler) ScheduleReminders(_ context.Context, prescriptionID uuid.UUID, frequency, duration int) error {
	m.calls = append(m.calls, scheduleCall{prescriptionID, frequency, duration})
	return m.err
}

func validPrescription() *Prescription {
	return &Prescription{
		PatientID:      uuid.New(),
		DoctorID:       uuid.New(),
		MedicationName: "Amoxicillin",
		Dosage:         "500mg",
		Frequency:      2,
		Duration:       7,
	}
}

func TestCreate(t *testing.T) {
	repo := newMockRepo()
	scheduler := &mockScheduler{}
	svc := NewService(repo, scheduler, zerolog.Nop())

	p := validPrescription()
	if err := svc.Create(context.Background(), p); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if !p.IsActive {
		t.Error("expected new prescription to be active")
	}
	if len(scheduler.calls) != 1 {
		t.Fatalf("expected 1 scheduler call, got %d", len(scheduler.calls))
	}
	call := scheduler.calls[0]
	if call.prescriptionID != p.ID || call.frequency != 2 || call.duration != 7 {
		t.Errorf("scheduler called with %+v", call)
	}
}

func TestCreate_SchedulerFailureKeepsPrescription(t *testing.T) {
	repo := newMockRepo()
	scheduler := &mockScheduler{err: fmt.Errorf("boom")}
	svc := NewService(repo, scheduler, zerolog.Nop())

	p := validPrescription()
	if err := svc.Create(context.Background(), p); err == nil {
		t.Fatal("expected error from failed scheduling")
	}
	stored, err := repo.GetByID(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("prescription was not persisted: %v", err)
	}
	if !stored.IsActive {
		t.Error("expected persisted prescription to remain active")
	}
}

func TestCreate_Validation(t *testing.T) {
	svc := NewService(newMockRepo(), &mockScheduler{}, zerolog.Nop())

	tests := []struct {
		name   string
		mutate func(*Prescription)
	}{
		{"missing patient", func(p *Prescription) { p.PatientID = uuid.Nil }},
		{"missing doctor", func(p *Prescription) { p.DoctorID = uuid.Nil }},
		{"missing medication", func(p *Prescription) { p.MedicationName = "" }},
		{"missing dosage", func(p *Prescription) { p.Dosage = "" }},
		{"frequency too low", func(p *Prescription) { p.Frequency = 0 }},
		{"frequency too high", func(p *Prescription) { p.Frequency = 4 }},
		{"duration too low", func(p *Prescription) { p.Duration = 0 }},
		{"duration too high", func(p *Prescription) { p.Duration = 31 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validPrescription()
			tt.mutate(p)
			if err := svc.Create(context.Background(), p); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
