package reminder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/carechat/carechat/internal/domain/prescription"
	"github.com/carechat/carechat/pkg/timeofday"
)

var (
	ErrUnsupportedFrequency = errors.New("unsupported dose frequency")
	ErrPrescriptionNotFound = errors.New("prescription not found")
	ErrNoReminders          = errors.New("no reminders found for prescription")
)

// PrescriptionStore resolves prescription records during activation.
type PrescriptionStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*prescription.Prescription, error)
}

// TxRunner executes fn inside a database transaction.
type TxRunner func(ctx context.Context, fn func(ctx context.Context) error) error

// doseTimes maps doses per day to the default clock times.
var doseTimes = map[int][]timeofday.TimeOfDay{
	1: {{Hour: 9}},
	2: {{Hour: 9}, {Hour: 18}},
	3: {{Hour: 9}, {Hour: 13}, {Hour: 18}},
}

type Service struct {
	repo          Repository
	prescriptions PrescriptionStore
	queue         *DeliveryQueue
	runTx         TxRunner
	logger        zerolog.Logger
}

func NewService(repo Repository, prescriptions PrescriptionStore, queue *DeliveryQueue, runTx TxRunner, logger zerolog.Logger) *Service {
	return &Service{repo: repo, prescriptions: prescriptions, queue: queue, runTx: runTx, logger: logger}
}

// ScheduleReminders creates the full set of inactive, dateless reminders for
// a prescription: one row per dose per day, in day-major order. Activation
// later assigns dates based on that order.
func (s *Service) ScheduleReminders(ctx context.Context, prescriptionID uuid.UUID, frequency, duration int) error {
	times, ok := doseTimes[frequency]
	if !ok {
		return fmt.Errorf("%w: %d doses per day", ErrUnsupportedFrequency, frequency)
	}
	reminders := make([]*Reminder, 0, frequency*duration)
	for day := 0; day < duration; day++ {
		for _, t := range times {
			reminders = append(reminders, &Reminder{
				PrescriptionID: prescriptionID,
				Time:           t,
				Status:         StatusInactive,
			})
		}
	}
	return s.repo.CreateBatch(ctx, reminders)
}

// ActivateForPrescription activates the prescription's reminders, assigning
// dose dates starting tomorrow: reminder i covers day i divided by the
// prescription's daily frequency. A count that disagrees with frequency times
// duration is logged and activation proceeds over the shorter length, so
// surplus rows stay inactive and no date lands past the prescription's
// duration. The whole batch is activated in one transaction.
func (s *Service) ActivateForPrescription(ctx context.Context, prescriptionID uuid.UUID) ([]*Reminder, error) {
	p, err := s.prescriptions.GetByID(ctx, prescriptionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPrescriptionNotFound
		}
		return nil, err
	}

	reminders, err := s.repo.ListByPrescription(ctx, prescriptionID)
	if err != nil {
		return nil, err
	}
	if len(reminders) == 0 {
		return nil, ErrNoReminders
	}

	if expected := p.Frequency * p.Duration; len(reminders) != expected {
		s.logger.Error().
			Str("prescription_id", prescriptionID.String()).
			Int("expected", expected).
			Int("found", len(reminders)).
			Msg("reminder count does not match prescription schedule")
		if len(reminders) > expected {
			reminders = reminders[:expected]
		}
	}

	tomorrow := startOfDay(time.Now()).AddDate(0, 0, 1)
	err = s.runTx(ctx, func(ctx context.Context) error {
		for i, rm := range reminders {
			date := tomorrow.AddDate(0, 0, i/p.Frequency)
			if err := s.repo.Activate(ctx, rm.ID, date); err != nil {
				return err
			}
			d := date
			rm.Date = &d
			rm.Status = StatusActive
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return reminders, nil
}

// UpdateReminderTimes restripes the prescription's reminders over the given
// clock times in date order, cycling through the list. A prescription with no
// reminders is logged and left alone.
func (s *Service) UpdateReminderTimes(ctx context.Context, prescriptionID uuid.UUID, times []timeofday.TimeOfDay) error {
	if len(times) == 0 {
		return fmt.Errorf("at least one reminder time is required")
	}
	reminders, err := s.repo.ListByPrescriptionDateOrdered(ctx, prescriptionID)
	if err != nil {
		return err
	}
	if len(reminders) == 0 {
		s.logger.Warn().
			Str("prescription_id", prescriptionID.String()).
			Msg("no reminders to update")
		return nil
	}
	for i, rm := range reminders {
		if err := s.repo.UpdateTime(ctx, rm.ID, times[i%len(times)]); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) ListByPrescription(ctx context.Context, prescriptionID uuid.UUID) ([]*Reminder, error) {
	return s.repo.ListByPrescription(ctx, prescriptionID)
}

// SweepDue deletes every active reminder due at or before now and pushes the
// medication names onto the delivery queue.
func (s *Service) SweepDue(ctx context.Context, now time.Time) (int, error) {
	names, err := s.repo.DeleteDue(ctx, now)
	if err != nil {
		return 0, err
	}
	for _, name := range names {
		s.queue.Push(name)
	}
	return len(names), nil
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
