package service

import (
	"context"
	"time"

	"github.com/brianmay/penguin-nurse/internal"
	"github.com/brianmay/penguin-nurse/internal/storage"
)

// Events is the service surface shared by every event type.
type Events[E, N, C any] interface {
	Get(ctx context.Context, user *internal.User, id int64) (*E, error)
	List(ctx context.Context, user *internal.User, start, end time.Time) ([]E, error)
	Create(ctx context.Context, user *internal.User, n *N) (*E, error)
	Update(ctx context.Context, user *internal.User, id int64, c *C) (*E, error)
	Delete(ctx context.Context, user *internal.User, id int64) error
}

type EventService[E, N, C any, PE internal.EventPtr[E], PN internal.NewEventPtr[E, N], PC internal.ChangeEventPtr[E, C]] struct {
	repo storage.EventRepository[E, N, C]
	// check runs extra rules on the entity as it would be stored.
	check func(e *E) ValidationErrors
}

func NewEventService[E, N, C any, PE internal.EventPtr[E], PN internal.NewEventPtr[E, N], PC internal.ChangeEventPtr[E, C]](repo storage.EventRepository[E, N, C], check func(*E) ValidationErrors) *EventService[E, N, C, PE, PN, PC] {
	return &EventService[E, N, C, PE, PN, PC]{repo: repo, check: check}
}

// resolveUserID returns the owner for a new row: the logged in user when none
// is named, otherwise the named user provided it is the same.
func resolveUserID(user *internal.User, requested int64) (int64, error) {
	if requested == 0 {
		return user.ID, nil
	}
	if requested != user.ID {
		return 0, internal.ErrUserMismatch
	}
	return requested, nil
}

func checkChangeOwner(user *internal.User, c *internal.ChangeEventMeta) error {
	if id, ok := c.UserID.Get(); ok && id != user.ID {
		return internal.ErrUserMismatch
	}
	return nil
}

func (s *EventService[E, N, C, PE, PN, PC]) Get(ctx context.Context, user *internal.User, id int64) (*E, error) {
	return s.repo.GetByID(ctx, id, user.ID)
}

func (s *EventService[E, N, C, PE, PN, PC]) List(ctx context.Context, user *internal.User, start, end time.Time) ([]E, error) {
	return s.repo.ListForTimeRange(ctx, user.ID, start, end)
}

func (s *EventService[E, N, C, PE, PN, PC]) Create(ctx context.Context, user *internal.User, n *N) (*E, error) {
	meta := PN(n).NewMeta()
	userID, err := resolveUserID(user, meta.UserID)
	if err != nil {
		return nil, err
	}
	meta.UserID = userID
	if err := Validate(n); err != nil {
		return nil, err
	}
	if s.check != nil {
		preview := PN(n).Build(internal.EventMeta{UserID: userID, Time: meta.Time})
		if err := s.check(preview).orNil(); err != nil {
			return nil, err
		}
	}
	return s.repo.Create(ctx, n)
}

func (s *EventService[E, N, C, PE, PN, PC]) Update(ctx context.Context, user *internal.User, id int64, c *C) (*E, error) {
	if err := checkChangeOwner(user, PC(c).ChangeMeta()); err != nil {
		return nil, err
	}
	if err := Validate(c); err != nil {
		return nil, err
	}
	if s.check != nil {
		current, err := s.repo.GetByID(ctx, id, user.ID)
		if err != nil {
			return nil, err
		}
		PC(c).Apply(current)
		if err := s.check(current).orNil(); err != nil {
			return nil, err
		}
	}
	return s.repo.Update(ctx, id, user.ID, c)
}

func (s *EventService[E, N, C, PE, PN, PC]) Delete(ctx context.Context, user *internal.User, id int64) error {
	return s.repo.Delete(ctx, id, user.ID)
}

type (
	WeeService          = Events[internal.Wee, internal.NewWee, internal.ChangeWee]
	WeeUrgeService      = Events[internal.WeeUrge, internal.NewWeeUrge, internal.ChangeWeeUrge]
	PooService          = Events[internal.Poo, internal.NewPoo, internal.ChangePoo]
	ExerciseService     = Events[internal.Exercise, internal.NewExercise, internal.ChangeExercise]
	SymptomService      = Events[internal.Symptom, internal.NewSymptom, internal.ChangeSymptom]
	HealthMetricService = Events[internal.HealthMetric, internal.NewHealthMetric, internal.ChangeHealthMetric]
	RefluxService       = Events[internal.Reflux, internal.NewReflux, internal.ChangeReflux]
	NoteService         = Events[internal.Note, internal.NewNote, internal.ChangeNote]
)

// Services wires every service to one store.
type Services struct {
	Wees          WeeService
	WeeUrges      WeeUrgeService
	Poos          PooService
	Consumptions  *ConsumptionService
	Exercises     ExerciseService
	Symptoms      SymptomService
	HealthMetrics HealthMetricService
	Refluxes      RefluxService
	Notes         NoteService
	Consumables   *ConsumableService
	Users         *UserService
	Timeline      *TimelineService
}

func New(store storage.Store, opts TimelineOptions) *Services {
	s := &Services{
		Wees:          NewEventService[internal.Wee, internal.NewWee, internal.ChangeWee](store.Wees(), nil),
		WeeUrges:      NewEventService[internal.WeeUrge, internal.NewWeeUrge, internal.ChangeWeeUrge](store.WeeUrges(), nil),
		Poos:          NewEventService[internal.Poo, internal.NewPoo, internal.ChangePoo](store.Poos(), nil),
		Exercises:     NewEventService[internal.Exercise, internal.NewExercise, internal.ChangeExercise](store.Exercises(), nil),
		Symptoms:      NewEventService[internal.Symptom, internal.NewSymptom, internal.ChangeSymptom](store.Symptoms(), checkSymptomDetails),
		HealthMetrics: NewEventService[internal.HealthMetric, internal.NewHealthMetric, internal.ChangeHealthMetric](store.HealthMetrics(), nil),
		Refluxes:      NewEventService[internal.Reflux, internal.NewReflux, internal.ChangeReflux](store.Refluxes(), nil),
		Notes:         NewEventService[internal.Note, internal.NewNote, internal.ChangeNote](store.Notes(), nil),
		Consumables:   NewConsumableService(store.Consumables(), store.ConsumptionItems()),
		Users:         NewUserService(store.Users()),
	}
	s.Consumptions = NewConsumptionService(store.Consumptions(), store.ConsumptionItems())
	s.Timeline = NewTimelineService(store, opts)
	return s
}
