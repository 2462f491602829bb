package storage

import (
	"context"
	"time"

	"github.com/brianmay/penguin-nurse/internal"
)

// EventRepository is the CRUD surface shared by every logged event. All
// methods are scoped to a single user; rows owned by someone else look
// missing.
type EventRepository[E, N, C any] interface {
	GetByID(ctx context.Context, id, userID int64) (*E, error)
	ListForTimeRange(ctx context.Context, userID int64, start, end time.Time) ([]E, error)
	Create(ctx context.Context, n *N) (*E, error)
	Update(ctx context.Context, id, userID int64, c *C) (*E, error)
	Delete(ctx context.Context, id, userID int64) error
}

type (
	WeeRepository          = EventRepository[internal.Wee, internal.NewWee, internal.ChangeWee]
	WeeUrgeRepository      = EventRepository[internal.WeeUrge, internal.NewWeeUrge, internal.ChangeWeeUrge]
	PooRepository          = EventRepository[internal.Poo, internal.NewPoo, internal.ChangePoo]
	ExerciseRepository     = EventRepository[internal.Exercise, internal.NewExercise, internal.ChangeExercise]
	SymptomRepository      = EventRepository[internal.Symptom, internal.NewSymptom, internal.ChangeSymptom]
	HealthMetricRepository = EventRepository[internal.HealthMetric, internal.NewHealthMetric, internal.ChangeHealthMetric]
	RefluxRepository       = EventRepository[internal.Reflux, internal.NewReflux, internal.ChangeReflux]
	NoteRepository         = EventRepository[internal.Note, internal.NewNote, internal.ChangeNote]
)

type ConsumptionRepository interface {
	EventRepository[internal.Consumption, internal.NewConsumption, internal.ChangeConsumption]
	ListWithItemsForTimeRange(ctx context.Context, userID int64, start, end time.Time) ([]internal.ConsumptionWithItems, error)
}

type UserRepository interface {
	GetUserByID(ctx context.Context, id int64) (*internal.User, error)
	GetUserByUsername(ctx context.Context, username string) (*internal.User, error)
	GetUserByEmail(ctx context.Context, email string) (*internal.User, error)
	GetUserByOIDCID(ctx context.Context, oidcID string) (*internal.User, error)
	ListUsers(ctx context.Context) ([]internal.User, error)
	CreateUser(ctx context.Context, u *internal.NewUser) (*internal.User, error)
	UpdateUser(ctx context.Context, id int64, c *internal.ChangeUser) (*internal.User, error)
	DeleteUser(ctx context.Context, id int64) error
}

type ConsumableRepository interface {
	SearchConsumables(ctx context.Context, q internal.ConsumableQuery) ([]internal.Consumable, error)
	GetConsumable(ctx context.Context, id int64) (*internal.Consumable, error)
	CreateConsumable(ctx context.Context, n *internal.NewConsumable) (*internal.Consumable, error)
	UpdateConsumable(ctx context.Context, id int64, c *internal.ChangeConsumable) (*internal.Consumable, error)
	DeleteConsumable(ctx context.Context, id int64) error

	// ChildItems lists the ingredients of parentID.
	ChildItems(ctx context.Context, parentID int64) ([]internal.NestedConsumableItem, error)
	// ParentItems lists the consumables that contain childID.
	ParentItems(ctx context.Context, childID int64) ([]internal.NestedConsumableItem, error)
	CreateNested(ctx context.Context, n *internal.NewNestedConsumable) (*internal.NestedConsumable, error)
	UpdateNested(ctx context.Context, parentID, childID int64, c *internal.ChangeNestedConsumable) (*internal.NestedConsumable, error)
	DeleteNested(ctx context.Context, parentID, childID int64) error
}

// ConsumptionConsumableRepository manages the ingredients of a consumption.
// Callers check that the consumption belongs to the user first.
type ConsumptionConsumableRepository interface {
	ConsumptionItems(ctx context.Context, consumptionID int64) ([]internal.ConsumptionConsumableItem, error)
	// ConsumableConsumptions lists the consumptions of userID that used consumableID.
	ConsumableConsumptions(ctx context.Context, userID, consumableID int64) ([]internal.Consumption, error)
	CreateConsumptionItem(ctx context.Context, n *internal.NewConsumptionConsumable) (*internal.ConsumptionConsumable, error)
	UpdateConsumptionItem(ctx context.Context, consumptionID, consumableID int64, c *internal.ChangeConsumptionConsumable) (*internal.ConsumptionConsumable, error)
	DeleteConsumptionItem(ctx context.Context, consumptionID, consumableID int64) error
}

type SessionStore interface {
	// CreateSession stores data under a fresh random id.
	CreateSession(ctx context.Context, data internal.SessionData, expiresAt time.Time) (*internal.Session, error)
	SaveSession(ctx context.Context, s *internal.Session) error
	// LoadSession returns ErrNotFound for unknown or expired ids.
	LoadSession(ctx context.Context, id string) (*internal.Session, error)
	DeleteSession(ctx context.Context, id string) error
	DeleteExpiredSessions(ctx context.Context) (int, error)
}

// Store bundles every repository of one backend.
type Store interface {
	Wees() WeeRepository
	WeeUrges() WeeUrgeRepository
	Poos() PooRepository
	Consumptions() ConsumptionRepository
	Exercises() ExerciseRepository
	Symptoms() SymptomRepository
	HealthMetrics() HealthMetricRepository
	Refluxes() RefluxRepository
	Notes() NoteRepository
	Users() UserRepository
	Consumables() ConsumableRepository
	ConsumptionItems() ConsumptionConsumableRepository
	Sessions() SessionStore

	Ping(ctx context.Context) error
	Close() error
}
