package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/brianmay/penguin-nurse/internal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// pgEventTable describes the entity-specific columns of an event table.
// fields returns scan destinations and values the matching write values, both
// in columns order.
type pgEventTable[E any] struct {
	name    string
	columns []string
	fields  func(e *E) []any
	values  func(e *E) []any
}

const eventMetaColumns = "id, user_id, time, utc_offset, created_at, updated_at"

type pgEventRepo[E, N, C any, PE internal.EventPtr[E], PN internal.NewEventPtr[E, N], PC internal.ChangeEventPtr[E, C]] struct {
	p     *PostgresStorage
	table pgEventTable[E]
}

func newPgEventRepo[E, N, C any, PE internal.EventPtr[E], PN internal.NewEventPtr[E, N], PC internal.ChangeEventPtr[E, C]](p *PostgresStorage, table pgEventTable[E]) *pgEventRepo[E, N, C, PE, PN, PC] {
	return &pgEventRepo[E, N, C, PE, PN, PC]{p: p, table: table}
}

func (r *pgEventRepo[E, N, C, PE, PN, PC]) returning() string {
	return eventMetaColumns + ", " + strings.Join(r.table.columns, ", ")
}

func (r *pgEventRepo[E, N, C, PE, PN, PC]) selectSQL() string {
	return "SELECT " + r.returning() + " FROM " + r.table.name
}

func (r *pgEventRepo[E, N, C, PE, PN, PC]) scan(row pgx.Row) (*E, error) {
	var e E
	m := PE(&e).Meta()
	var offset int32
	dest := append([]any{&m.ID, &m.UserID, &m.Time, &offset, &m.CreatedAt, &m.UpdatedAt}, r.table.fields(&e)...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	m.Time = m.Time.In(time.FixedZone("", int(offset)))
	return &e, nil
}

func utcOffset(t time.Time) int32 {
	_, off := t.Zone()
	return int32(off)
}

func (r *pgEventRepo[E, N, C, PE, PN, PC]) GetByID(ctx context.Context, id, userID int64) (*E, error) {
	row := r.p.pool.QueryRow(ctx, r.selectSQL()+" WHERE id = $1 AND user_id = $2", id, userID)
	e, err := r.scan(row)
	if err != nil {
		return nil, r.p.fail("get "+r.table.name, err)
	}
	return e, nil
}

func (r *pgEventRepo[E, N, C, PE, PN, PC]) ListForTimeRange(ctx context.Context, userID int64, start, end time.Time) ([]E, error) {
	rows, err := r.p.pool.Query(ctx,
		r.selectSQL()+" WHERE user_id = $1 AND time >= $2 AND time < $3 ORDER BY time, id",
		userID, start, end)
	if err != nil {
		return nil, r.p.fail("query "+r.table.name, err)
	}
	defer rows.Close()

	out := make([]E, 0)
	for rows.Next() {
		e, err := r.scan(rows)
		if err != nil {
			return nil, r.p.fail("scan "+r.table.name, err)
		}
		out = append(out, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, r.p.fail("query "+r.table.name, err)
	}
	return out, nil
}

func placeholders(from, n int) string {
	ph := make([]string, n)
	for i := range ph {
		ph[i] = fmt.Sprintf("$%d", from+i)
	}
	return strings.Join(ph, ", ")
}

func (r *pgEventRepo[E, N, C, PE, PN, PC]) Create(ctx context.Context, n *N) (*E, error) {
	nm := PN(n).NewMeta()
	e := PN(n).Build(internal.EventMeta{UserID: nm.UserID, Time: nm.Time})
	args := append([]any{nm.UserID, nm.Time, utcOffset(nm.Time)}, r.table.values(e)...)
	sql := fmt.Sprintf("INSERT INTO %s (user_id, time, utc_offset, %s) VALUES (%s) RETURNING %s",
		r.table.name, strings.Join(r.table.columns, ", "), placeholders(1, len(args)), r.returning())
	created, err := r.scan(r.p.pool.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, r.p.fail("insert "+r.table.name, err)
	}
	return created, nil
}

// Update reads the row, applies the change in Go and writes every column
// back inside one transaction.
func (r *pgEventRepo[E, N, C, PE, PN, PC]) Update(ctx context.Context, id, userID int64, c *C) (*E, error) {
	var updated *E
	err := pgx.BeginFunc(ctx, r.p.pool, func(tx pgx.Tx) error {
		current, err := r.scan(tx.QueryRow(ctx, r.selectSQL()+" WHERE id = $1 AND user_id = $2 FOR UPDATE", id, userID))
		if err != nil {
			return err
		}
		PC(c).Apply(current)
		m := PE(current).Meta()

		sets := []string{"user_id = $1", "time = $2", "utc_offset = $3"}
		args := []any{m.UserID, m.Time, utcOffset(m.Time)}
		for i, col := range r.table.columns {
			sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)+i+1))
		}
		args = append(args, r.table.values(current)...)
		args = append(args, id)
		sql := fmt.Sprintf("UPDATE %s SET %s, updated_at = now() WHERE id = $%d RETURNING %s",
			r.table.name, strings.Join(sets, ", "), len(args), r.returning())
		updated, err = r.scan(tx.QueryRow(ctx, sql, args...))
		return err
	})
	if err != nil {
		return nil, r.p.fail("update "+r.table.name, err)
	}
	return updated, nil
}

func (r *pgEventRepo[E, N, C, PE, PN, PC]) Delete(ctx context.Context, id, userID int64) error {
	tag, err := r.p.pool.Exec(ctx, "DELETE FROM "+r.table.name+" WHERE id = $1 AND user_id = $2", id, userID)
	if err != nil {
		return r.p.fail("delete "+r.table.name, err)
	}
	if tag.RowsAffected() == 0 {
		return internal.ErrNotFound
	}
	return nil
}

type pgConsumptionRepo struct {
	*pgEventRepo[internal.Consumption, internal.NewConsumption, internal.ChangeConsumption, *internal.Consumption, *internal.NewConsumption, *internal.ChangeConsumption]
}

func (r *pgConsumptionRepo) ListWithItemsForTimeRange(ctx context.Context, userID int64, start, end time.Time) ([]internal.ConsumptionWithItems, error) {
	consumptions, err := r.ListForTimeRange(ctx, userID, start, end)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, len(consumptions))
	for i, c := range consumptions {
		ids[i] = c.ID
	}
	items, err := (*pgConsumptionItems)(r.p).itemsFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]internal.ConsumptionWithItems, len(consumptions))
	for i, c := range consumptions {
		list := items[c.ID]
		if list == nil {
			list = []internal.ConsumptionConsumableItem{}
		}
		out[i] = internal.ConsumptionWithItems{Consumption: c, Items: list}
	}
	return out, nil
}

// durationScanner reads an interval column into an internal.Duration.
type durationScanner struct {
	d *internal.Duration
}

func (s *durationScanner) ScanInterval(v pgtype.Interval) error {
	if !v.Valid {
		*s.d = 0
		return nil
	}
	const day = 24 * time.Hour
	total := time.Duration(v.Microseconds)*time.Microsecond +
		time.Duration(v.Days)*day +
		time.Duration(v.Months)*30*day
	*s.d = internal.Duration(total)
	return nil
}

func intervalOf(d internal.Duration) pgtype.Interval {
	return pgtype.Interval{Microseconds: d.Std().Microseconds(), Valid: true}
}

var weeTable = pgEventTable[internal.Wee]{
	name:    "wees",
	columns: []string{"duration", "urgency", "mls", "colour_hue", "colour_saturation", "colour_value", "comments"},
	fields: func(e *internal.Wee) []any {
		return []any{&durationScanner{&e.Duration}, &e.Urgency, &e.Mls, &e.Colour.Hue, &e.Colour.Saturation, &e.Colour.Value, &e.Comments}
	},
	values: func(e *internal.Wee) []any {
		return []any{intervalOf(e.Duration), int32(e.Urgency), int32(e.Mls), e.Colour.Hue, e.Colour.Saturation, e.Colour.Value, e.Comments}
	},
}

var weeUrgeTable = pgEventTable[internal.WeeUrge]{
	name:    "wee_urges",
	columns: []string{"urgency", "comments"},
	fields: func(e *internal.WeeUrge) []any {
		return []any{&e.Urgency, &e.Comments}
	},
	values: func(e *internal.WeeUrge) []any {
		return []any{int32(e.Urgency), e.Comments}
	},
}

var pooTable = pgEventTable[internal.Poo]{
	name:    "poos",
	columns: []string{"duration", "urgency", "quantity", "bristol", "colour_hue", "colour_saturation", "colour_value", "comments"},
	fields: func(e *internal.Poo) []any {
		return []any{&durationScanner{&e.Duration}, &e.Urgency, &e.Quantity, &e.Bristol, &e.Colour.Hue, &e.Colour.Saturation, &e.Colour.Value, &e.Comments}
	},
	values: func(e *internal.Poo) []any {
		return []any{intervalOf(e.Duration), int32(e.Urgency), int32(e.Quantity), int32(e.Bristol), e.Colour.Hue, e.Colour.Saturation, e.Colour.Value, e.Comments}
	},
}

var consumptionTable = pgEventTable[internal.Consumption]{
	name:    "consumptions",
	columns: []string{"duration", "consumption_type", "liquid_mls", "comments"},
	fields: func(e *internal.Consumption) []any {
		return []any{&durationScanner{&e.Duration}, &e.ConsumptionType, &e.LiquidMls, &e.Comments}
	},
	values: func(e *internal.Consumption) []any {
		return []any{intervalOf(e.Duration), string(e.ConsumptionType), e.LiquidMls, e.Comments}
	},
}

var exerciseTable = pgEventTable[internal.Exercise]{
	name:    "exercises",
	columns: []string{"duration", "location", "distance", "calories", "rpe", "exercise_type", "comments"},
	fields: func(e *internal.Exercise) []any {
		return []any{&durationScanner{&e.Duration}, &e.Location, &e.Distance, &e.Calories, &e.Rpe, &e.ExerciseType, &e.Comments}
	},
	values: func(e *internal.Exercise) []any {
		return []any{intervalOf(e.Duration), e.Location, e.Distance, e.Calories, e.Rpe, string(e.ExerciseType), e.Comments}
	},
}

var healthMetricTable = pgEventTable[internal.HealthMetric]{
	name: "health_metrics",
	columns: []string{
		"pulse", "blood_glucose", "systolic_bp", "diastolic_bp",
		"weight", "height", "waist_circumference", "comments",
	},
	fields: func(e *internal.HealthMetric) []any {
		return []any{&e.Pulse, &e.BloodGlucose, &e.SystolicBP, &e.DiastolicBP, &e.Weight, &e.Height, &e.WaistCircumference, &e.Comments}
	},
	values: func(e *internal.HealthMetric) []any {
		return []any{e.Pulse, e.BloodGlucose, e.SystolicBP, e.DiastolicBP, e.Weight, e.Height, e.WaistCircumference, e.Comments}
	},
}

var refluxTable = pgEventTable[internal.Reflux]{
	name:    "refluxes",
	columns: []string{"duration", "location", "severity", "comments"},
	fields: func(e *internal.Reflux) []any {
		return []any{&durationScanner{&e.Duration}, &e.Location, &e.Severity, &e.Comments}
	},
	values: func(e *internal.Reflux) []any {
		return []any{intervalOf(e.Duration), e.Location, int32(e.Severity), e.Comments}
	},
}

var noteTable = pgEventTable[internal.Note]{
	name:    "notes",
	columns: []string{"comments"},
	fields: func(e *internal.Note) []any {
		return []any{&e.Comments}
	},
	values: func(e *internal.Note) []any {
		return []any{e.Comments}
	},
}
