package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/brianmay/penguin-nurse/internal"
	"github.com/brianmay/penguin-nurse/internal/dt"
	"github.com/brianmay/penguin-nurse/internal/storage"
	"golang.org/x/sync/errgroup"
)

type EntryType string

const (
	EntryWee          EntryType = "wee"
	EntryWeeUrge      EntryType = "wee_urge"
	EntryPoo          EntryType = "poo"
	EntryConsumption  EntryType = "consumption"
	EntryExercise     EntryType = "exercise"
	EntryHealthMetric EntryType = "health_metric"
	EntrySymptom      EntryType = "symptom"
	EntryReflux       EntryType = "reflux"
	EntryNote         EntryType = "note"
)

// idPrefix keeps entry ids unique across types.
var idPrefix = map[EntryType]string{
	EntryWee:          "wee",
	EntryWeeUrge:      "wee-urgency",
	EntryPoo:          "poo",
	EntryConsumption:  "consumption",
	EntryExercise:     "exercise",
	EntryHealthMetric: "health-metric",
	EntrySymptom:      "symptom",
	EntryReflux:       "reflux",
	EntryNote:         "note",
}

type Entry struct {
	ID   string    `json:"id"`
	Type EntryType `json:"type"`
	Time time.Time `json:"time"`
	Data any       `json:"data"`
}

func newEntry(t EntryType, meta *internal.EventMeta, data any) Entry {
	return Entry{
		ID:   fmt.Sprintf("%s-%d", idPrefix[t], meta.ID),
		Type: t,
		Time: meta.Time,
		Data: data,
	}
}

type Timeline struct {
	Date        dt.Date   `json:"date"`
	DisplayDate string    `json:"display_date"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	Prev        dt.Date   `json:"prev"`
	Next        dt.Date   `json:"next"`
	Entries     []Entry   `json:"entries"`
}

type TimelineOptions struct {
	// DayStart is the local time of day a logical day begins.
	DayStart time.Duration
	Location *time.Location
	Now      func() time.Time
}

type TimelineService struct {
	store storage.Store
	opts  TimelineOptions
}

func NewTimelineService(store storage.Store, opts TimelineOptions) *TimelineService {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &TimelineService{store: store, opts: opts}
}

// Today is the logical day containing the current time.
func (s *TimelineService) Today() dt.Date {
	return dt.DateFor(s.opts.Now(), s.opts.DayStart, s.opts.Location)
}

func collect[E any, PE internal.EventPtr[E]](t EntryType, rows []E) []Entry {
	out := make([]Entry, len(rows))
	for i := range rows {
		out[i] = newEntry(t, PE(&rows[i]).Meta(), &rows[i])
	}
	return out
}

func fetch[E any, N any, C any, PE internal.EventPtr[E]](ctx context.Context, g *errgroup.Group, dst *[]Entry, t EntryType, repo storage.EventRepository[E, N, C], userID int64, start, end time.Time) {
	g.Go(func() error {
		rows, err := repo.ListForTimeRange(ctx, userID, start, end)
		if err != nil {
			return fmt.Errorf("list %s: %w", t, err)
		}
		*dst = collect[E, PE](t, rows)
		return nil
	})
}

// Build collects every event the user logged during date's window, in time
// order. Events at the same instant keep a fixed type order.
func (s *TimelineService) Build(ctx context.Context, user *internal.User, date dt.Date) (*Timeline, error) {
	start, end, err := dt.Window(date, s.opts.DayStart, s.opts.Location)
	if errors.Is(err, dt.ErrNonexistentTime) || errors.Is(err, dt.ErrAmbiguousTime) {
		return nil, ValidationErrors{"date": err.Error()}
	}
	if err != nil {
		return nil, err
	}

	var groups [9][]Entry
	g, gctx := errgroup.WithContext(ctx)
	fetch[internal.Wee, internal.NewWee, internal.ChangeWee](gctx, g, &groups[0], EntryWee, s.store.Wees(), user.ID, start, end)
	fetch[internal.WeeUrge, internal.NewWeeUrge, internal.ChangeWeeUrge](gctx, g, &groups[1], EntryWeeUrge, s.store.WeeUrges(), user.ID, start, end)
	fetch[internal.Poo, internal.NewPoo, internal.ChangePoo](gctx, g, &groups[2], EntryPoo, s.store.Poos(), user.ID, start, end)
	g.Go(func() error {
		rows, err := s.store.Consumptions().ListWithItemsForTimeRange(gctx, user.ID, start, end)
		if err != nil {
			return fmt.Errorf("list %s: %w", EntryConsumption, err)
		}
		out := make([]Entry, len(rows))
		for i := range rows {
			out[i] = newEntry(EntryConsumption, rows[i].Consumption.Meta(), &rows[i])
		}
		groups[3] = out
		return nil
	})
	fetch[internal.Exercise, internal.NewExercise, internal.ChangeExercise](gctx, g, &groups[4], EntryExercise, s.store.Exercises(), user.ID, start, end)
	fetch[internal.HealthMetric, internal.NewHealthMetric, internal.ChangeHealthMetric](gctx, g, &groups[5], EntryHealthMetric, s.store.HealthMetrics(), user.ID, start, end)
	fetch[internal.Symptom, internal.NewSymptom, internal.ChangeSymptom](gctx, g, &groups[6], EntrySymptom, s.store.Symptoms(), user.ID, start, end)
	fetch[internal.Reflux, internal.NewReflux, internal.ChangeReflux](gctx, g, &groups[7], EntryReflux, s.store.Refluxes(), user.ID, start, end)
	fetch[internal.Note, internal.NewNote, internal.ChangeNote](gctx, g, &groups[8], EntryNote, s.store.Notes(), user.ID, start, end)
	if err := g.Wait(); err != nil {
		return nil, err
	}

	entries := slices.Concat(groups[:]...)
	if entries == nil {
		entries = []Entry{}
	}
	slices.SortStableFunc(entries, func(a, b Entry) int {
		return a.Time.Compare(b.Time)
	})

	return &Timeline{
		Date:        date,
		DisplayDate: dt.DisplayDate(date),
		Start:       start,
		End:         end,
		Prev:        date.AddDays(-1),
		Next:        date.AddDays(1),
		Entries:     entries,
	}, nil
}
