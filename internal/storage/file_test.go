package storage

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/brianmay/penguin-nurse/internal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var aest = time.FixedZone("AEST", 10*3600)

func newTestStorage(t *testing.T, dir string) *FileStorage {
	t.Helper()
	s, err := NewFileStorage(dir, internal.NewNopLogger(), WithSaveDelay(10*time.Millisecond))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func newWee(userID int64, at time.Time, mls int) *internal.NewWee {
	return &internal.NewWee{
		NewEventMeta: internal.NewEventMeta{UserID: userID, Time: at},
		Duration:     internal.Duration(30 * time.Second),
		Urgency:      2,
		Mls:          mls,
		Colour:       internal.HSV{Hue: 60, Saturation: 0.5, Value: 0.9},
	}
}

func TestEventCRUD(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t, t.TempDir())
	wees := s.Wees()

	at := time.Date(2024, 5, 1, 8, 0, 0, 0, aest)
	created, err := wees.Create(ctx, newWee(1, at, 250))
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.ID)
	assert.Equal(t, 250, created.Mls)
	assert.False(t, created.CreatedAt.IsZero())

	got, err := wees.GetByID(ctx, created.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, *created, *got)

	_, err = wees.GetByID(ctx, created.ID, 2)
	assert.ErrorIs(t, err, internal.ErrNotFound)

	change := &internal.ChangeWee{
		Mls:      internal.Set(300),
		Comments: internal.Set(internal.Ptr("after coffee")),
	}
	updated, err := wees.Update(ctx, created.ID, 1, change)
	require.NoError(t, err)
	assert.Equal(t, 300, updated.Mls)
	assert.Equal(t, "after coffee", *updated.Comments)
	assert.Equal(t, internal.Urgency(2), updated.Urgency)

	_, err = wees.Update(ctx, created.ID, 2, change)
	assert.ErrorIs(t, err, internal.ErrNotFound)

	assert.ErrorIs(t, wees.Delete(ctx, created.ID, 2), internal.ErrNotFound)
	require.NoError(t, wees.Delete(ctx, created.ID, 1))
	_, err = wees.GetByID(ctx, created.ID, 1)
	assert.ErrorIs(t, err, internal.ErrNotFound)
}

func TestListForTimeRange(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t, t.TempDir())
	wees := s.Wees()

	base := time.Date(2024, 5, 1, 7, 0, 0, 0, aest)
	for i, offset := range []time.Duration{3 * time.Hour, 0, 24 * time.Hour, -time.Minute} {
		_, err := wees.Create(ctx, newWee(1, base.Add(offset), i))
		require.NoError(t, err)
	}
	_, err := wees.Create(ctx, newWee(2, base.Add(time.Hour), 99))
	require.NoError(t, err)

	list, err := wees.ListForTimeRange(ctx, 1, base, base.Add(24*time.Hour))
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, 1, list[0].Mls)
	assert.Equal(t, 0, list[1].Mls)
}

func TestPersistsAcrossRestart(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s, err := NewFileStorage(dir, internal.NewNopLogger())
	require.NoError(t, err)
	at := time.Date(2024, 5, 1, 8, 0, 0, 0, aest)
	created, err := s.Wees().Create(ctx, newWee(1, at, 250))
	require.NoError(t, err)
	user, err := s.Users().CreateUser(ctx, &internal.NewUser{Username: "penguin", FullName: "P", Email: "p@example.com"})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	reopened := newTestStorage(t, dir)
	got, err := reopened.Wees().GetByID(ctx, created.ID, 1)
	require.NoError(t, err)
	assert.True(t, at.Equal(got.Time))
	_, offset := got.Time.Zone()
	assert.Equal(t, 10*3600, offset)

	next, err := reopened.Wees().Create(ctx, newWee(1, at, 1))
	require.NoError(t, err)
	assert.Equal(t, created.ID+1, next.ID)

	u, err := reopened.Users().GetUserByUsername(ctx, "penguin")
	require.NoError(t, err)
	assert.Equal(t, user.ID, u.ID)
}

func TestSaveWorkerFlushes(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s := newTestStorage(t, dir)

	_, err := s.Notes().Create(ctx, &internal.NewNote{
		NewEventMeta: internal.NewEventMeta{UserID: 1, Time: time.Now()},
		Comments:     internal.Ptr("hello"),
	})
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		s.mu.RLock()
		defer s.mu.RUnlock()
		return !s.notes.t.isDirty()
	}, time.Second, 10*time.Millisecond)
	assert.FileExists(t, dir+"/notes.json")
}

func TestUsers(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t, t.TempDir())
	users := s.Users()

	oidc := "sub-123"
	u, err := users.CreateUser(ctx, &internal.NewUser{
		Username: "brian", FullName: "Brian", Email: "Brian@example.com", OIDCID: &oidc,
	})
	require.NoError(t, err)

	_, err = users.CreateUser(ctx, &internal.NewUser{Username: "brian", FullName: "Other", Email: "o@example.com"})
	assert.ErrorIs(t, err, internal.ErrConflict)

	byEmail, err := users.GetUserByEmail(ctx, "brian@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)

	byOIDC, err := users.GetUserByOIDCID(ctx, oidc)
	require.NoError(t, err)
	assert.Equal(t, u.ID, byOIDC.ID)

	updated, err := users.UpdateUser(ctx, u.ID, &internal.ChangeUser{IsAdmin: internal.Set(true)})
	require.NoError(t, err)
	assert.True(t, updated.IsAdmin)

	_, err = s.Wees().Create(ctx, newWee(u.ID, time.Now(), 100))
	require.NoError(t, err)
	require.NoError(t, users.DeleteUser(ctx, u.ID))
	list, err := s.Wees().ListForTimeRange(ctx, u.ID, time.Time{}, time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.ErrorIs(t, users.DeleteUser(ctx, u.ID), internal.ErrNotFound)
}

func TestConsumableSearch(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t, t.TempDir())
	repo := s.Consumables()

	day := func(d int) *time.Time {
		v := time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
		return &v
	}
	mk := func(name string, brand, barcode *string, created, destroyed *time.Time) {
		_, err := repo.CreateConsumable(ctx, &internal.NewConsumable{
			Name: name, Brand: brand, Barcode: barcode, Unit: internal.UnitGrams,
			Created: created, Destroyed: destroyed,
		})
		require.NoError(t, err)
	}
	mk("Rice", nil, internal.Ptr("9300001"), nil, nil)
	mk("Soup batch", nil, nil, day(2), nil)
	mk("Soup batch old", nil, nil, day(1), day(3))
	mk("Apple", internal.Ptr("Soupy Farms"), nil, nil, nil)
	mk("Bread", nil, nil, day(5), nil)
	mk("Soup stock", nil, nil, day(2), day(4))

	names := func(cs []internal.Consumable) []string {
		out := make([]string, len(cs))
		for i, c := range cs {
			out[i] = c.Name
		}
		return out
	}

	got, err := repo.SearchConsumables(ctx, internal.ConsumableQuery{Text: "SOUP"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Apple", "Soup batch"}, names(got))

	got, err = repo.SearchConsumables(ctx, internal.ConsumableQuery{Text: "soup", IncludeDestroyed: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"Apple", "Soup batch", "Soup stock", "Soup batch old"}, names(got))

	got, err = repo.SearchConsumables(ctx, internal.ConsumableQuery{IncludeDestroyed: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"Apple", "Rice", "Bread", "Soup batch", "Soup stock", "Soup batch old"}, names(got))

	got, err = repo.SearchConsumables(ctx, internal.ConsumableQuery{Text: "", OnlyCreated: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"Bread", "Soup batch"}, names(got))

	got, err = repo.SearchConsumables(ctx, internal.ConsumableQuery{Text: "9300001"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Rice"}, names(got))

	for i := 0; i < 12; i++ {
		mk(fmt.Sprintf("Tea %02d", i), nil, nil, nil, nil)
	}
	got, err = repo.SearchConsumables(ctx, internal.ConsumableQuery{Text: "tea"})
	require.NoError(t, err)
	assert.Len(t, got, internal.ConsumableSearchLimit)
	assert.Equal(t, "Tea 00", got[0].Name)
}

func TestNestedAndConsumptionItems(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t, t.TempDir())
	cons := s.Consumables()

	soup, err := cons.CreateConsumable(ctx, &internal.NewConsumable{Name: "Soup", Unit: internal.UnitMillilitres})
	require.NoError(t, err)
	carrot, err := cons.CreateConsumable(ctx, &internal.NewConsumable{Name: "Carrot", Unit: internal.UnitGrams})
	require.NoError(t, err)

	_, err = cons.CreateNested(ctx, &internal.NewNestedConsumable{
		ParentID: soup.ID, ConsumableID: carrot.ID,
		NewItemAmount: internal.NewItemAmount{Quantity: internal.Ptr(200.0)},
	})
	require.NoError(t, err)
	_, err = cons.CreateNested(ctx, &internal.NewNestedConsumable{ParentID: soup.ID, ConsumableID: carrot.ID})
	assert.ErrorIs(t, err, internal.ErrConflict)

	children, err := cons.ChildItems(ctx, soup.ID)
	require.NoError(t, err)
	require.Len(t, children, 1)
	assert.Equal(t, "Carrot", children[0].Consumable.Name)
	assert.Equal(t, 200.0, *children[0].Nested.Quantity)

	parents, err := cons.ParentItems(ctx, carrot.ID)
	require.NoError(t, err)
	require.Len(t, parents, 1)
	assert.Equal(t, "Soup", parents[0].Consumable.Name)

	n, err := cons.UpdateNested(ctx, soup.ID, carrot.ID, &internal.ChangeNestedConsumable{Quantity: internal.Set[*float64](nil)})
	require.NoError(t, err)
	assert.Nil(t, n.Quantity)

	consumption, err := s.Consumptions().Create(ctx, &internal.NewConsumption{
		NewEventMeta:    internal.NewEventMeta{UserID: 1, Time: time.Date(2024, 5, 1, 12, 0, 0, 0, aest)},
		ConsumptionType: internal.ConsumptionDigest,
	})
	require.NoError(t, err)
	items := s.ConsumptionItems()
	_, err = items.CreateConsumptionItem(ctx, &internal.NewConsumptionConsumable{
		ConsumptionID: consumption.ID, ConsumableID: soup.ID,
		NewItemAmount: internal.NewItemAmount{LiquidMls: internal.Ptr(250.0)},
	})
	require.NoError(t, err)

	withItems, err := s.Consumptions().ListWithItemsForTimeRange(ctx, 1,
		consumption.Time.Add(-time.Hour), consumption.Time.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, withItems, 1)
	require.Len(t, withItems[0].Items, 1)
	assert.Equal(t, soup.ID, withItems[0].Items[0].Consumable.ID)

	used, err := items.ConsumableConsumptions(ctx, 1, soup.ID)
	require.NoError(t, err)
	require.Len(t, used, 1)
	used, err = items.ConsumableConsumptions(ctx, 2, soup.ID)
	require.NoError(t, err)
	assert.Empty(t, used)

	require.NoError(t, cons.DeleteConsumable(ctx, carrot.ID))
	children, err = cons.ChildItems(ctx, soup.ID)
	require.NoError(t, err)
	assert.Empty(t, children)

	require.NoError(t, s.Consumptions().Delete(ctx, consumption.ID, 1))
	left, err := items.ConsumptionItems(ctx, consumption.ID)
	require.NoError(t, err)
	assert.Empty(t, left)
}

func TestSessions(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s, err := NewFileStorage(t.TempDir(), internal.NewNopLogger(), WithClock(func() time.Time { return now }))
	require.NoError(t, err)
	defer s.Close()
	sessions := s.Sessions()

	live, err := sessions.CreateSession(ctx, internal.SessionData{UserID: 1, AuthHash: "abc"}, now.Add(time.Hour))
	require.NoError(t, err)
	expired, err := sessions.CreateSession(ctx, internal.SessionData{UserID: 1}, now.Add(-time.Second))
	require.NoError(t, err)
	assert.NotEqual(t, live.ID, expired.ID)

	got, err := sessions.LoadSession(ctx, live.ID)
	require.NoError(t, err)
	assert.Equal(t, "abc", got.Data.AuthHash)

	_, err = sessions.LoadSession(ctx, expired.ID)
	assert.ErrorIs(t, err, internal.ErrNotFound)

	n, err := sessions.DeleteExpiredSessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, sessions.DeleteSession(ctx, live.ID))
	_, err = sessions.LoadSession(ctx, live.ID)
	assert.ErrorIs(t, err, internal.ErrNotFound)
}
