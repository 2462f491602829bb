package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/brianmay/penguin-nurse/internal"
	pgxdecimal "github.com/jackc/pgx-shopspring-decimal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresStorage struct {
	pool   *pgxpool.Pool
	logger internal.Logger

	wees          *pgEventRepo[internal.Wee, internal.NewWee, internal.ChangeWee, *internal.Wee, *internal.NewWee, *internal.ChangeWee]
	weeUrges      *pgEventRepo[internal.WeeUrge, internal.NewWeeUrge, internal.ChangeWeeUrge, *internal.WeeUrge, *internal.NewWeeUrge, *internal.ChangeWeeUrge]
	poos          *pgEventRepo[internal.Poo, internal.NewPoo, internal.ChangePoo, *internal.Poo, *internal.NewPoo, *internal.ChangePoo]
	consumptions  *pgConsumptionRepo
	exercises     *pgEventRepo[internal.Exercise, internal.NewExercise, internal.ChangeExercise, *internal.Exercise, *internal.NewExercise, *internal.ChangeExercise]
	symptoms      *pgEventRepo[internal.Symptom, internal.NewSymptom, internal.ChangeSymptom, *internal.Symptom, *internal.NewSymptom, *internal.ChangeSymptom]
	healthMetrics *pgEventRepo[internal.HealthMetric, internal.NewHealthMetric, internal.ChangeHealthMetric, *internal.HealthMetric, *internal.NewHealthMetric, *internal.ChangeHealthMetric]
	refluxes      *pgEventRepo[internal.Reflux, internal.NewReflux, internal.ChangeReflux, *internal.Reflux, *internal.NewReflux, *internal.ChangeReflux]
	notes         *pgEventRepo[internal.Note, internal.NewNote, internal.ChangeNote, *internal.Note, *internal.NewNote, *internal.ChangeNote]
}

func NewPostgresStorage(ctx context.Context, dsn string, logger internal.Logger) (*PostgresStorage, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		logger.Errorf("invalid postgres dsn: %v", err)
		return nil, err
	}
	cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		pgxdecimal.Register(conn.TypeMap())
		return nil
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		logger.Errorf("failed to connect to postgres: %v", err)
		return nil, err
	}
	p := &PostgresStorage{pool: pool, logger: logger}
	p.wees = newPgEventRepo[internal.Wee, internal.NewWee, internal.ChangeWee](p, weeTable)
	p.weeUrges = newPgEventRepo[internal.WeeUrge, internal.NewWeeUrge, internal.ChangeWeeUrge](p, weeUrgeTable)
	p.poos = newPgEventRepo[internal.Poo, internal.NewPoo, internal.ChangePoo](p, pooTable)
	p.consumptions = &pgConsumptionRepo{
		pgEventRepo: newPgEventRepo[internal.Consumption, internal.NewConsumption, internal.ChangeConsumption](p, consumptionTable),
	}
	p.exercises = newPgEventRepo[internal.Exercise, internal.NewExercise, internal.ChangeExercise](p, exerciseTable)
	p.symptoms = newPgEventRepo[internal.Symptom, internal.NewSymptom, internal.ChangeSymptom](p, symptomTable)
	p.healthMetrics = newPgEventRepo[internal.HealthMetric, internal.NewHealthMetric, internal.ChangeHealthMetric](p, healthMetricTable)
	p.refluxes = newPgEventRepo[internal.Reflux, internal.NewReflux, internal.ChangeReflux](p, refluxTable)
	p.notes = newPgEventRepo[internal.Note, internal.NewNote, internal.ChangeNote](p, noteTable)
	return p, nil
}

// mapError turns driver errors into the storage sentinels.
func mapError(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return internal.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return fmt.Errorf("%w: %s", internal.ErrConflict, pgErr.ConstraintName)
		case "23503":
			return fmt.Errorf("%w: %s", internal.ErrNotFound, pgErr.ConstraintName)
		}
	}
	return err
}

// fail logs unexpected errors and returns the mapped error.
func (p *PostgresStorage) fail(what string, err error) error {
	mapped := mapError(err)
	if !errors.Is(mapped, internal.ErrNotFound) && !errors.Is(mapped, internal.ErrConflict) {
		p.logger.Errorf("failed to %s: %v", what, err)
	}
	return mapped
}

func (p *PostgresStorage) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

func (p *PostgresStorage) Close() error {
	p.pool.Close()
	return nil
}

func (p *PostgresStorage) Wees() WeeRepository                   { return p.wees }
func (p *PostgresStorage) WeeUrges() WeeUrgeRepository           { return p.weeUrges }
func (p *PostgresStorage) Poos() PooRepository                   { return p.poos }
func (p *PostgresStorage) Consumptions() ConsumptionRepository   { return p.consumptions }
func (p *PostgresStorage) Exercises() ExerciseRepository         { return p.exercises }
func (p *PostgresStorage) Symptoms() SymptomRepository           { return p.symptoms }
func (p *PostgresStorage) HealthMetrics() HealthMetricRepository { return p.healthMetrics }
func (p *PostgresStorage) Refluxes() RefluxRepository            { return p.refluxes }
func (p *PostgresStorage) Notes() NoteRepository                 { return p.notes }
func (p *PostgresStorage) Users() UserRepository                 { return (*pgUsers)(p) }
func (p *PostgresStorage) Consumables() ConsumableRepository     { return (*pgConsumables)(p) }
func (p *PostgresStorage) ConsumptionItems() ConsumptionConsumableRepository {
	return (*pgConsumptionItems)(p)
}
func (p *PostgresStorage) Sessions() SessionStore { return (*pgSessions)(p) }

// --- Compile-time assertions ---
var _ Store = (*PostgresStorage)(nil)
