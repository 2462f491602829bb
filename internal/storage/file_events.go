package storage

import (
	"context"
	"sort"
	"time"

	"github.com/brianmay/penguin-nurse/internal"
)

type fileEventRepo[E, N, C any, PE internal.EventPtr[E], PN internal.NewEventPtr[E, N], PC internal.ChangeEventPtr[E, C]] struct {
	s        *FileStorage
	t        *fileTable[int64, E]
	onDelete func(id int64)
}

func newFileEventRepo[E, N, C any, PE internal.EventPtr[E], PN internal.NewEventPtr[E, N], PC internal.ChangeEventPtr[E, C]](s *FileStorage, name string) *fileEventRepo[E, N, C, PE, PN, PC] {
	return &fileEventRepo[E, N, C, PE, PN, PC]{
		s: s,
		t: newFileTable(name, func(e *E) int64 { return PE(e).Meta().ID }),
	}
}

func (r *fileEventRepo[E, N, C, PE, PN, PC]) owned(id, userID int64) (*E, error) {
	row, ok := r.t.rows[id]
	if !ok || PE(row).Meta().UserID != userID {
		return nil, internal.ErrNotFound
	}
	return row, nil
}

func (r *fileEventRepo[E, N, C, PE, PN, PC]) GetByID(ctx context.Context, id, userID int64) (*E, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	row, err := r.owned(id, userID)
	if err != nil {
		return nil, err
	}
	out := *row
	return &out, nil
}

func (r *fileEventRepo[E, N, C, PE, PN, PC]) ListForTimeRange(ctx context.Context, userID int64, start, end time.Time) ([]E, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.listLocked(userID, func(m *internal.EventMeta) bool {
		return !m.Time.Before(start) && m.Time.Before(end)
	}), nil
}

// listLocked returns the user's rows matching keep, oldest first.
func (r *fileEventRepo[E, N, C, PE, PN, PC]) listLocked(userID int64, keep func(*internal.EventMeta) bool) []E {
	out := make([]E, 0)
	for _, row := range r.t.rows {
		m := PE(row).Meta()
		if m.UserID == userID && keep(m) {
			out = append(out, *row)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := PE(&out[i]).Meta(), PE(&out[j]).Meta()
		if !a.Time.Equal(b.Time) {
			return a.Time.Before(b.Time)
		}
		return a.ID < b.ID
	})
	return out
}

func (r *fileEventRepo[E, N, C, PE, PN, PC]) Create(ctx context.Context, n *N) (*E, error) {
	r.s.mu.Lock()
	now := r.s.now()
	nm := PN(n).NewMeta()
	e := PN(n).Build(internal.EventMeta{
		ID:        r.t.allocID(),
		UserID:    nm.UserID,
		Time:      nm.Time,
		CreatedAt: now,
		UpdatedAt: now,
	})
	r.t.put(*e)
	r.s.mu.Unlock()
	r.s.changed()
	return e, nil
}

func (r *fileEventRepo[E, N, C, PE, PN, PC]) Update(ctx context.Context, id, userID int64, c *C) (*E, error) {
	r.s.mu.Lock()
	row, err := r.owned(id, userID)
	if err != nil {
		r.s.mu.Unlock()
		return nil, err
	}
	updated := *row
	PC(c).Apply(&updated)
	PE(&updated).Meta().UpdatedAt = r.s.now()
	r.t.put(updated)
	r.s.mu.Unlock()
	r.s.changed()
	return &updated, nil
}

func (r *fileEventRepo[E, N, C, PE, PN, PC]) Delete(ctx context.Context, id, userID int64) error {
	r.s.mu.Lock()
	if _, err := r.owned(id, userID); err != nil {
		r.s.mu.Unlock()
		return err
	}
	r.t.remove(id)
	if r.onDelete != nil {
		r.onDelete(id)
	}
	r.s.mu.Unlock()
	r.s.changed()
	return nil
}

func (r *fileEventRepo[E, N, C, PE, PN, PC]) deleteForUser(userID int64) {
	for id, row := range r.t.rows {
		if PE(row).Meta().UserID == userID {
			r.t.remove(id)
			if r.onDelete != nil {
				r.onDelete(id)
			}
		}
	}
}

type fileConsumptionRepo struct {
	*fileEventRepo[internal.Consumption, internal.NewConsumption, internal.ChangeConsumption, *internal.Consumption, *internal.NewConsumption, *internal.ChangeConsumption]
}

func (r *fileConsumptionRepo) ListWithItemsForTimeRange(ctx context.Context, userID int64, start, end time.Time) ([]internal.ConsumptionWithItems, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	rows := r.listLocked(userID, func(m *internal.EventMeta) bool {
		return !m.Time.Before(start) && m.Time.Before(end)
	})
	out := make([]internal.ConsumptionWithItems, len(rows))
	for i, c := range rows {
		out[i] = internal.ConsumptionWithItems{
			Consumption: c,
			Items:       (*fileConsumptionItems)(r.s).itemsLocked(c.ID),
		}
	}
	return out, nil
}
