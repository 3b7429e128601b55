package reminder

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/carechat/carechat/internal/domain/prescription"
	"github.com/carechat/carechat/pkg/timeofday"
)

type mockRepo struct {
	reminders []*Reminder
	dueNames  []string
	dueErr    error
}

func (m *mockRepo) CreateBatch(_ context.Context, reminders []*Reminder) error {
	for _, rm := range reminders {
		rm.ID = uuid.New()
		rm.CreatedAt = time.Now()
		m.reminders = append(m.reminders, rm)
	}
	return nil
}

func (m *mockRepo) ListByPrescription(_ context.Context, prescriptionID uuid.UUID) ([]*Reminder, error) {
	var items []*Reminder
	for _, rm := range m.reminders {
		if rm.PrescriptionID == prescriptionID {
			items = append(items, rm)
		}
	}
	return items, nil
}

func (m *mockRepo) ListByPrescriptionDateOrdered(ctx context.Context, prescriptionID uuid.UUID) ([]*Reminder, error) {
	// Insertion order matches date order for these tests.
	return m.ListByPrescription(ctx, prescriptionID)
}

func (m *mockRepo) Activate(_ context.Context, id uuid.UUID, date time.Time) error {
	for _, rm := range m.reminders {
		if rm.ID == id {
			d := date
			rm.Date = &d
			rm.Status = StatusActive
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (m *mockRepo) UpdateTime(_ context.Context, id uuid.UUID, t timeofday.TimeOfDay) error {
	for _, rm := range m.reminders {
		if rm.ID == id {
			rm.Time = t
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (m *mockRepo) DeleteDue(_ context.Context, now time.Time) ([]string, error) {
	return m.dueNames, m.dueErr
}

// txCheckRepo records activations issued outside a transaction.
type txCheckRepo struct {
	*mockRepo
	inTx      *bool
	outsideTx int
}

func (r *txCheckRepo) Activate(ctx context.Context, id uuid.UUID, date time.Time) error {
	if !*r.inTx {
		r.outsideTx++
	}
	return r.mockRepo.Activate(ctx, id, date)
}

type mockPrescriptions struct {
	prescriptions map[uuid.UUID]*prescription.Prescription
}

func (m *mockPrescriptions) GetByID(_ context.Context, id uuid.UUID) (*prescription.Prescription, error) {
	p, ok := m.prescriptions[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return p, nil
}

func passthroughTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func newTestService() (*Service, *mockRepo, *mockPrescriptions, *DeliveryQueue) {
	repo := &mockRepo{}
	store := &mockPrescriptions{prescriptions: make(map[uuid.UUID]*prescription.Prescription)}
	queue := NewDeliveryQueue()
	return NewService(repo, store, queue, passthroughTx, zerolog.Nop()), repo, store, queue
}

func TestScheduleReminders(t *testing.T) {
	svc, repo, _, _ := newTestService()
	prescriptionID := uuid.New()

	if err := svc.ScheduleReminders(context.Background(), prescriptionID, 2, 3); err != nil {
		t.Fatalf("ScheduleReminders failed: %v", err)
	}
	if len(repo.reminders) != 6 {
		t.Fatalf("expected 6 reminders, got %d", len(repo.reminders))
	}
	for i, rm := range repo.reminders {
		if rm.Status != StatusInactive {
			t.Errorf("reminder %d: expected inactive status, got %q", i, rm.Status)
		}
		if rm.Date != nil {
			t.Errorf("reminder %d: expected no date before activation", i)
		}
		want := timeofday.TimeOfDay{Hour: 9}
		if i%2 == 1 {
			want = timeofday.TimeOfDay{Hour: 18}
		}
		if rm.Time != want {
			t.Errorf("reminder %d: expected time %v, got %v", i, want, rm.Time)
		}
	}
}

func TestScheduleReminders_UnsupportedFrequency(t *testing.T) {
	svc, _, _, _ := newTestService()
	for _, freq := range []int{0, 4, -1} {
		err := svc.ScheduleReminders(context.Background(), uuid.New(), freq, 5)
		if err == nil {
			t.Errorf("frequency %d: expected error", freq)
		}
	}
}

func TestActivateForPrescription(t *testing.T) {
	svc, _, store, _ := newTestService()
	p := &prescription.Prescription{ID: uuid.New(), MedicationName: "Metformin", Frequency: 2, Duration: 3}
	store.prescriptions[p.ID] = p

	if err := svc.ScheduleReminders(context.Background(), p.ID, p.Frequency, p.Duration); err != nil {
		t.Fatal(err)
	}

	activated, err := svc.ActivateForPrescription(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("ActivateForPrescription failed: %v", err)
	}
	if len(activated) != 6 {
		t.Fatalf("expected 6 activated reminders, got %d", len(activated))
	}

	tomorrow := startOfDay(time.Now()).AddDate(0, 0, 1)
	for i, rm := range activated {
		if rm.Status != StatusActive {
			t.Errorf("reminder %d not active", i)
		}
		want := tomorrow.AddDate(0, 0, i/p.Frequency)
		if rm.Date == nil || !rm.Date.Equal(want) {
			t.Errorf("reminder %d: expected date %v, got %v", i, want, rm.Date)
		}
	}
}

func TestActivateForPrescription_CountMismatchStillActivates(t *testing.T) {
	svc, repo, store, _ := newTestService()
	p := &prescription.Prescription{ID: uuid.New(), Frequency: 2, Duration: 5}
	store.prescriptions[p.ID] = p

	// Two reminders instead of the ten the schedule calls for.
	if err := svc.ScheduleReminders(context.Background(), p.ID, 1, 2); err != nil {
		t.Fatal(err)
	}

	activated, err := svc.ActivateForPrescription(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("ActivateForPrescription failed: %v", err)
	}
	if len(activated) != 2 {
		t.Fatalf("expected 2 activated reminders, got %d", len(activated))
	}
	for _, rm := range repo.reminders {
		if rm.Status != StatusActive {
			t.Error("expected every existing reminder to be activated")
		}
	}
}

func TestActivateForPrescription_SurplusRowsStayInactive(t *testing.T) {
	svc, repo, store, _ := newTestService()
	p := &prescription.Prescription{ID: uuid.New(), Frequency: 1, Duration: 2}
	store.prescriptions[p.ID] = p

	// Four reminders instead of the two the schedule calls for.
	for i := 0; i < 2; i++ {
		if err := svc.ScheduleReminders(context.Background(), p.ID, 1, 2); err != nil {
			t.Fatal(err)
		}
	}

	activated, err := svc.ActivateForPrescription(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("ActivateForPrescription failed: %v", err)
	}
	if len(activated) != 2 {
		t.Fatalf("expected 2 activated reminders, got %d", len(activated))
	}

	lastDay := startOfDay(time.Now()).AddDate(0, 0, p.Duration)
	for i, rm := range activated {
		if rm.Date == nil || rm.Date.After(lastDay) {
			t.Errorf("reminder %d: date %v past the %d-day duration", i, rm.Date, p.Duration)
		}
	}

	active := 0
	for _, rm := range repo.reminders {
		if rm.Status == StatusActive {
			active++
		}
	}
	if active != 2 {
		t.Errorf("expected surplus reminders to stay inactive, %d active", active)
	}
}

func TestActivateForPrescription_RunsInTransaction(t *testing.T) {
	repo := &mockRepo{}
	store := &mockPrescriptions{prescriptions: make(map[uuid.UUID]*prescription.Prescription)}
	inTx := false
	checked := &txCheckRepo{mockRepo: repo, inTx: &inTx}
	runTx := func(ctx context.Context, fn func(ctx context.Context) error) error {
		inTx = true
		defer func() { inTx = false }()
		return fn(ctx)
	}
	svc := NewService(checked, store, NewDeliveryQueue(), runTx, zerolog.Nop())

	p := &prescription.Prescription{ID: uuid.New(), Frequency: 2, Duration: 2}
	store.prescriptions[p.ID] = p
	if err := svc.ScheduleReminders(context.Background(), p.ID, p.Frequency, p.Duration); err != nil {
		t.Fatal(err)
	}

	if _, err := svc.ActivateForPrescription(context.Background(), p.ID); err != nil {
		t.Fatalf("ActivateForPrescription failed: %v", err)
	}
	if checked.outsideTx != 0 {
		t.Errorf("%d activations ran outside the transaction", checked.outsideTx)
	}
}

func TestActivateForPrescription_Errors(t *testing.T) {
	svc, _, store, _ := newTestService()

	if _, err := svc.ActivateForPrescription(context.Background(), uuid.New()); err != ErrPrescriptionNotFound {
		t.Errorf("expected ErrPrescriptionNotFound, got %v", err)
	}

	p := &prescription.Prescription{ID: uuid.New(), Frequency: 1, Duration: 1}
	store.prescriptions[p.ID] = p
	if _, err := svc.ActivateForPrescription(context.Background(), p.ID); err != ErrNoReminders {
		t.Errorf("expected ErrNoReminders, got %v", err)
	}
}

func TestUpdateReminderTimes_CyclesThroughList(t *testing.T) {
	svc, repo, _, _ := newTestService()
	prescriptionID := uuid.New()

	if err := svc.ScheduleReminders(context.Background(), prescriptionID, 1, 5); err != nil {
		t.Fatal(err)
	}

	times := []timeofday.TimeOfDay{{Hour: 8}, {Hour: 20, Minute: 30}}
	if err := svc.UpdateReminderTimes(context.Background(), prescriptionID, times); err != nil {
		t.Fatalf("UpdateReminderTimes failed: %v", err)
	}
	for i, rm := range repo.reminders {
		want := times[i%2]
		if rm.Time != want {
			t.Errorf("reminder %d: expected time %v, got %v", i, want, rm.Time)
		}
	}
}

func TestUpdateReminderTimes_NoTimes(t *testing.T) {
	svc, _, _, _ := newTestService()
	if err := svc.UpdateReminderTimes(context.Background(), uuid.New(), nil); err == nil {
		t.Error("expected error for empty time list")
	}
}

func TestUpdateReminderTimes_NoRemindersIsNoop(t *testing.T) {
	svc, _, _, _ := newTestService()
	times := []timeofday.TimeOfDay{{Hour: 8}}
	if err := svc.UpdateReminderTimes(context.Background(), uuid.New(), times); err != nil {
		t.Errorf("expected nil error when no reminders exist, got %v", err)
	}
}

func TestSweepDue(t *testing.T) {
	svc, repo, _, queue := newTestService()
	repo.dueNames = []string{"Metformin", "Lisinopril"}

	n, err := svc.SweepDue(context.Background(), time.Now())
	if err != nil {
		t.Fatalf("SweepDue failed: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 due reminders, got %d", n)
	}
	drained := queue.DrainAll()
	if len(drained) != 2 || drained[0] != "Metformin" || drained[1] != "Lisinopril" {
		t.Errorf("unexpected queue contents: %v", drained)
	}
	if got := queue.DrainAll(); len(got) != 0 {
		t.Errorf("expected queue to be empty after drain, got %v", got)
	}
}

func TestSweepDue_Error(t *testing.T) {
	svc, repo, _, queue := newTestService()
	repo.dueErr = fmt.Errorf("db down")

	if _, err := svc.SweepDue(context.Background(), time.Now()); err == nil {
		t.Fatal("expected error")
	}
	if queue.Len() != 0 {
		t.Error("expected nothing queued on sweep failure")
	}
}

func TestSweeper_QueuesDueReminders(t *testing.T) {
	svc, repo, _, queue := newTestService()
	repo.dueNames = []string{"Aspirin"}

	sweeper := NewSweeper(svc, 10*time.Millisecond, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sweeper.Run(ctx)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for queue.Len() == 0 {
		select {
		case <-deadline:
			t.Fatal("sweeper never queued a due reminder")
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()
	<-done
}
