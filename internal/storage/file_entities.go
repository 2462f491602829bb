package storage

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/brianmay/penguin-nurse/internal"
	"github.com/google/uuid"
)

// --- UserRepository ---

type fileUsers FileStorage

func (s *fileUsers) findLocked(match func(*internal.User) bool) (*internal.User, error) {
	for _, u := range s.users.rows {
		if match(u) {
			out := *u
			return &out, nil
		}
	}
	return nil, internal.ErrNotFound
}

func (s *fileUsers) find(match func(*internal.User) bool) (*internal.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.findLocked(match)
}

func (s *fileUsers) GetUserByID(ctx context.Context, id int64) (*internal.User, error) {
	return s.find(func(u *internal.User) bool { return u.ID == id })
}

func (s *fileUsers) GetUserByUsername(ctx context.Context, username string) (*internal.User, error) {
	return s.find(func(u *internal.User) bool { return u.Username == username })
}

func (s *fileUsers) GetUserByEmail(ctx context.Context, email string) (*internal.User, error) {
	return s.find(func(u *internal.User) bool { return strings.EqualFold(u.Email, email) })
}

func (s *fileUsers) GetUserByOIDCID(ctx context.Context, oidcID string) (*internal.User, error) {
	return s.find(func(u *internal.User) bool { return u.OIDCID != nil && *u.OIDCID == oidcID })
}

func (s *fileUsers) ListUsers(ctx context.Context) ([]internal.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]internal.User, 0, len(s.users.rows))
	for _, u := range s.users.rows {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

// conflictLocked reports whether u clashes with another user's unique fields.
func (s *fileUsers) conflictLocked(u *internal.User) bool {
	_, err := s.findLocked(func(o *internal.User) bool {
		if o.ID == u.ID {
			return false
		}
		return o.Username == u.Username || (o.OIDCID != nil && u.OIDCID != nil && *o.OIDCID == *u.OIDCID)
	})
	return err == nil
}

func (s *fileUsers) CreateUser(ctx context.Context, n *internal.NewUser) (*internal.User, error) {
	s.mu.Lock()
	now := s.now()
	u := internal.User{
		Username:     n.Username,
		PasswordHash: n.PasswordHash,
		FullName:     n.FullName,
		OIDCID:       n.OIDCID,
		Email:        n.Email,
		IsAdmin:      n.IsAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if s.conflictLocked(&u) {
		s.mu.Unlock()
		return nil, internal.ErrConflict
	}
	u.ID = s.users.allocID()
	s.users.put(u)
	s.mu.Unlock()
	(*FileStorage)(s).changed()
	return &u, nil
}

func (s *fileUsers) UpdateUser(ctx context.Context, id int64, c *internal.ChangeUser) (*internal.User, error) {
	s.mu.Lock()
	row, ok := s.users.rows[id]
	if !ok {
		s.mu.Unlock()
		return nil, internal.ErrNotFound
	}
	u := *row
	c.Apply(&u)
	if s.conflictLocked(&u) {
		s.mu.Unlock()
		return nil, internal.ErrConflict
	}
	u.UpdatedAt = s.now()
	s.users.put(u)
	s.mu.Unlock()
	(*FileStorage)(s).changed()
	return &u, nil
}

func (s *fileUsers) DeleteUser(ctx context.Context, id int64) error {
	s.mu.Lock()
	if !s.users.remove(id) {
		s.mu.Unlock()
		return internal.ErrNotFound
	}
	for _, t := range s.userScoped {
		t.deleteForUser(id)
	}
	s.sessions.removeWhere(func(sess *internal.Session) bool { return sess.Data.UserID == id })
	s.mu.Unlock()
	(*FileStorage)(s).changed()
	return nil
}

// --- ConsumableRepository ---

type fileConsumables FileStorage

func matchesConsumable(c *internal.Consumable, q internal.ConsumableQuery) bool {
	if q.OnlyCreated && c.Created == nil {
		return false
	}
	if !q.IncludeDestroyed && c.Destroyed != nil {
		return false
	}
	text := strings.ToLower(q.Text)
	if strings.Contains(strings.ToLower(c.Name), text) {
		return true
	}
	if c.Brand != nil && strings.Contains(strings.ToLower(*c.Brand), text) {
		return true
	}
	return c.Barcode != nil && *c.Barcode == q.Text
}

// consumableLess orders by created desc then destroyed desc, both with nulls
// first as Postgres does for DESC, then by name.
func consumableLess(a, b *internal.Consumable) bool {
	if c := cmpTimeDesc(a.Created, b.Created); c != 0 {
		return c < 0
	}
	if c := cmpTimeDesc(a.Destroyed, b.Destroyed); c != 0 {
		return c < 0
	}
	return a.Name < b.Name
}

func cmpTimeDesc(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	case a.After(*b):
		return -1
	case b.After(*a):
		return 1
	}
	return 0
}

func (s *fileConsumables) SearchConsumables(ctx context.Context, q internal.ConsumableQuery) ([]internal.Consumable, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]internal.Consumable, 0)
	for _, c := range s.consumables.rows {
		if matchesConsumable(c, q) {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return consumableLess(&out[i], &out[j]) })
	if len(out) > internal.ConsumableSearchLimit {
		out = out[:internal.ConsumableSearchLimit]
	}
	return out, nil
}

func (s *fileConsumables) GetConsumable(ctx context.Context, id int64) (*internal.Consumable, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	row, ok := s.consumables.rows[id]
	if !ok {
		return nil, internal.ErrNotFound
	}
	out := *row
	return &out, nil
}

func (s *fileConsumables) CreateConsumable(ctx context.Context, n *internal.NewConsumable) (*internal.Consumable, error) {
	s.mu.Lock()
	c := n.Build(s.consumables.allocID(), s.now())
	s.consumables.put(*c)
	s.mu.Unlock()
	(*FileStorage)(s).changed()
	return c, nil
}

func (s *fileConsumables) UpdateConsumable(ctx context.Context, id int64, ch *internal.ChangeConsumable) (*internal.Consumable, error) {
	s.mu.Lock()
	row, ok := s.consumables.rows[id]
	if !ok {
		s.mu.Unlock()
		return nil, internal.ErrNotFound
	}
	c := *row
	ch.Apply(&c)
	c.UpdatedAt = s.now()
	s.consumables.put(c)
	s.mu.Unlock()
	(*FileStorage)(s).changed()
	return &c, nil
}

func (s *fileConsumables) DeleteConsumable(ctx context.Context, id int64) error {
	s.mu.Lock()
	if !s.consumables.remove(id) {
		s.mu.Unlock()
		return internal.ErrNotFound
	}
	s.nested.removeWhere(func(n *internal.NestedConsumable) bool { return n.ParentID == id || n.ConsumableID == id })
	s.consumptionItems.removeWhere(func(n *internal.ConsumptionConsumable) bool { return n.ConsumableID == id })
	s.mu.Unlock()
	(*FileStorage)(s).changed()
	return nil
}

func (s *fileConsumables) nestedItemsLocked(match func(*internal.NestedConsumable) bool, other func(*internal.NestedConsumable) int64) []internal.NestedConsumableItem {
	out := make([]internal.NestedConsumableItem, 0)
	for _, n := range s.nested.rows {
		if !match(n) {
			continue
		}
		c, ok := s.consumables.rows[other(n)]
		if !ok {
			continue
		}
		out = append(out, internal.NestedConsumableItem{Nested: *n, Consumable: *c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Consumable.Name != out[j].Consumable.Name {
			return out[i].Consumable.Name < out[j].Consumable.Name
		}
		return out[i].Consumable.ID < out[j].Consumable.ID
	})
	return out
}

func (s *fileConsumables) ChildItems(ctx context.Context, parentID int64) ([]internal.NestedConsumableItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nestedItemsLocked(
		func(n *internal.NestedConsumable) bool { return n.ParentID == parentID },
		func(n *internal.NestedConsumable) int64 { return n.ConsumableID },
	), nil
}

func (s *fileConsumables) ParentItems(ctx context.Context, childID int64) ([]internal.NestedConsumableItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nestedItemsLocked(
		func(n *internal.NestedConsumable) bool { return n.ConsumableID == childID },
		func(n *internal.NestedConsumable) int64 { return n.ParentID },
	), nil
}

func (s *fileConsumables) CreateNested(ctx context.Context, n *internal.NewNestedConsumable) (*internal.NestedConsumable, error) {
	s.mu.Lock()
	_, parentOK := s.consumables.rows[n.ParentID]
	_, childOK := s.consumables.rows[n.ConsumableID]
	if !parentOK || !childOK {
		s.mu.Unlock()
		return nil, internal.ErrNotFound
	}
	if _, exists := s.nested.rows[[2]int64{n.ParentID, n.ConsumableID}]; exists {
		s.mu.Unlock()
		return nil, internal.ErrConflict
	}
	row := n.Build(s.now())
	s.nested.put(*row)
	s.mu.Unlock()
	(*FileStorage)(s).changed()
	return row, nil
}

func (s *fileConsumables) UpdateNested(ctx context.Context, parentID, childID int64, c *internal.ChangeNestedConsumable) (*internal.NestedConsumable, error) {
	s.mu.Lock()
	row, ok := s.nested.rows[[2]int64{parentID, childID}]
	if !ok {
		s.mu.Unlock()
		return nil, internal.ErrNotFound
	}
	n := *row
	c.Apply(&n.ItemAmount)
	n.UpdatedAt = s.now()
	s.nested.put(n)
	s.mu.Unlock()
	(*FileStorage)(s).changed()
	return &n, nil
}

func (s *fileConsumables) DeleteNested(ctx context.Context, parentID, childID int64) error {
	s.mu.Lock()
	ok := s.nested.remove([2]int64{parentID, childID})
	s.mu.Unlock()
	if !ok {
		return internal.ErrNotFound
	}
	(*FileStorage)(s).changed()
	return nil
}

// --- ConsumptionConsumableRepository ---

type fileConsumptionItems FileStorage

func (s *fileConsumptionItems) itemsLocked(consumptionID int64) []internal.ConsumptionConsumableItem {
	out := make([]internal.ConsumptionConsumableItem, 0)
	for _, n := range s.consumptionItems.rows {
		if n.ConsumptionID != consumptionID {
			continue
		}
		c, ok := s.consumables.rows[n.ConsumableID]
		if !ok {
			continue
		}
		out = append(out, internal.ConsumptionConsumableItem{Nested: *n, Consumable: *c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Consumable.Name != out[j].Consumable.Name {
			return out[i].Consumable.Name < out[j].Consumable.Name
		}
		return out[i].Consumable.ID < out[j].Consumable.ID
	})
	return out
}

func (s *fileConsumptionItems) ConsumptionItems(ctx context.Context, consumptionID int64) ([]internal.ConsumptionConsumableItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.itemsLocked(consumptionID), nil
}

func (s *fileConsumptionItems) ConsumableConsumptions(ctx context.Context, userID, consumableID int64) ([]internal.Consumption, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	used := make(map[int64]bool)
	for _, n := range s.consumptionItems.rows {
		if n.ConsumableID == consumableID {
			used[n.ConsumptionID] = true
		}
	}
	out := s.consumptions.listLocked(userID, func(m *internal.EventMeta) bool { return used[m.ID] })
	// newest first
	sort.SliceStable(out, func(i, j int) bool { return out[i].Time.After(out[j].Time) })
	return out, nil
}

func (s *fileConsumptionItems) CreateConsumptionItem(ctx context.Context, n *internal.NewConsumptionConsumable) (*internal.ConsumptionConsumable, error) {
	s.mu.Lock()
	_, consumptionOK := s.consumptions.t.rows[n.ConsumptionID]
	_, consumableOK := s.consumables.rows[n.ConsumableID]
	if !consumptionOK || !consumableOK {
		s.mu.Unlock()
		return nil, internal.ErrNotFound
	}
	if _, exists := s.consumptionItems.rows[[2]int64{n.ConsumptionID, n.ConsumableID}]; exists {
		s.mu.Unlock()
		return nil, internal.ErrConflict
	}
	row := n.Build(s.now())
	s.consumptionItems.put(*row)
	s.mu.Unlock()
	(*FileStorage)(s).changed()
	return row, nil
}

func (s *fileConsumptionItems) UpdateConsumptionItem(ctx context.Context, consumptionID, consumableID int64, c *internal.ChangeConsumptionConsumable) (*internal.ConsumptionConsumable, error) {
	s.mu.Lock()
	row, ok := s.consumptionItems.rows[[2]int64{consumptionID, consumableID}]
	if !ok {
		s.mu.Unlock()
		return nil, internal.ErrNotFound
	}
	n := *row
	c.Apply(&n.ItemAmount)
	n.UpdatedAt = s.now()
	s.consumptionItems.put(n)
	s.mu.Unlock()
	(*FileStorage)(s).changed()
	return &n, nil
}

func (s *fileConsumptionItems) DeleteConsumptionItem(ctx context.Context, consumptionID, consumableID int64) error {
	s.mu.Lock()
	ok := s.consumptionItems.remove([2]int64{consumptionID, consumableID})
	s.mu.Unlock()
	if !ok {
		return internal.ErrNotFound
	}
	(*FileStorage)(s).changed()
	return nil
}

// --- SessionStore ---

type fileSessions FileStorage

func (s *fileSessions) CreateSession(ctx context.Context, data internal.SessionData, expiresAt time.Time) (*internal.Session, error) {
	s.mu.Lock()
	id := uuid.NewString()
	for {
		if _, exists := s.sessions.rows[id]; !exists {
			break
		}
		id = uuid.NewString()
	}
	sess := internal.Session{ID: id, Data: data, ExpiresAt: expiresAt}
	s.sessions.put(sess)
	s.mu.Unlock()
	(*FileStorage)(s).changed()
	return &sess, nil
}

func (s *fileSessions) SaveSession(ctx context.Context, sess *internal.Session) error {
	s.mu.Lock()
	s.sessions.put(*sess)
	s.mu.Unlock()
	(*FileStorage)(s).changed()
	return nil
}

func (s *fileSessions) LoadSession(ctx context.Context, id string) (*internal.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	row, ok := s.sessions.rows[id]
	if !ok || !row.ExpiresAt.After(s.now()) {
		return nil, internal.ErrNotFound
	}
	out := *row
	return &out, nil
}

func (s *fileSessions) DeleteSession(ctx context.Context, id string) error {
	s.mu.Lock()
	removed := s.sessions.remove(id)
	s.mu.Unlock()
	if removed {
		(*FileStorage)(s).changed()
	}
	return nil
}

func (s *fileSessions) DeleteExpiredSessions(ctx context.Context) (int, error) {
	s.mu.Lock()
	now := s.now()
	count := 0
	s.sessions.removeWhere(func(sess *internal.Session) bool {
		if sess.ExpiresAt.After(now) {
			return false
		}
		count++
		return true
	})
	s.mu.Unlock()
	if count > 0 {
		(*FileStorage)(s).changed()
	}
	return count, nil
}

var (
	_ UserRepository                  = (*fileUsers)(nil)
	_ ConsumableRepository            = (*fileConsumables)(nil)
	_ ConsumptionConsumableRepository = (*fileConsumptionItems)(nil)
	_ SessionStore                    = (*fileSessions)(nil)
)
