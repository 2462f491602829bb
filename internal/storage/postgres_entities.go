package storage

import (
	"context"
	"strings"
	"time"

	"github.com/brianmay/penguin-nurse/internal"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// --- UserRepository ---

type pgUsers PostgresStorage

const userColumns = "id, username, password_hash, full_name, oidc_id, email, is_admin, created_at, updated_at"

func scanUser(row pgx.Row) (*internal.User, error) {
	var u internal.User
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.FullName, &u.OIDCID, &u.Email, &u.IsAdmin, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

func (p *pgUsers) getBy(ctx context.Context, where string, arg any) (*internal.User, error) {
	u, err := scanUser(p.pool.QueryRow(ctx, "SELECT "+userColumns+" FROM users WHERE "+where, arg))
	if err != nil {
		return nil, (*PostgresStorage)(p).fail("get user", err)
	}
	return u, nil
}

func (p *pgUsers) GetUserByID(ctx context.Context, id int64) (*internal.User, error) {
	return p.getBy(ctx, "id = $1", id)
}

func (p *pgUsers) GetUserByUsername(ctx context.Context, username string) (*internal.User, error) {
	return p.getBy(ctx, "username = $1", username)
}

func (p *pgUsers) GetUserByEmail(ctx context.Context, email string) (*internal.User, error) {
	return p.getBy(ctx, "lower(email) = lower($1) ORDER BY id LIMIT 1", email)
}

func (p *pgUsers) GetUserByOIDCID(ctx context.Context, oidcID string) (*internal.User, error) {
	return p.getBy(ctx, "oidc_id = $1", oidcID)
}

func (p *pgUsers) ListUsers(ctx context.Context) ([]internal.User, error) {
	rows, err := p.pool.Query(ctx, "SELECT "+userColumns+" FROM users ORDER BY username")
	if err != nil {
		return nil, (*PostgresStorage)(p).fail("query users", err)
	}
	defer rows.Close()
	out := make([]internal.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, (*PostgresStorage)(p).fail("scan user", err)
		}
		out = append(out, *u)
	}
	return out, rows.Err()
}

func (p *pgUsers) CreateUser(ctx context.Context, n *internal.NewUser) (*internal.User, error) {
	u, err := scanUser(p.pool.QueryRow(ctx,
		`INSERT INTO users (username, password_hash, full_name, oidc_id, email, is_admin)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING `+userColumns,
		n.Username, n.PasswordHash, n.FullName, n.OIDCID, n.Email, n.IsAdmin))
	if err != nil {
		return nil, (*PostgresStorage)(p).fail("insert user", err)
	}
	return u, nil
}

func (p *pgUsers) UpdateUser(ctx context.Context, id int64, c *internal.ChangeUser) (*internal.User, error) {
	var updated *internal.User
	err := pgx.BeginFunc(ctx, p.pool, func(tx pgx.Tx) error {
		u, err := scanUser(tx.QueryRow(ctx, "SELECT "+userColumns+" FROM users WHERE id = $1 FOR UPDATE", id))
		if err != nil {
			return err
		}
		c.Apply(u)
		updated, err = scanUser(tx.QueryRow(ctx,
			`UPDATE users SET username = $1, password_hash = $2, full_name = $3, oidc_id = $4,
			 email = $5, is_admin = $6, updated_at = now() WHERE id = $7 RETURNING `+userColumns,
			u.Username, u.PasswordHash, u.FullName, u.OIDCID, u.Email, u.IsAdmin, id))
		return err
	})
	if err != nil {
		return nil, (*PostgresStorage)(p).fail("update user", err)
	}
	return updated, nil
}

func (p *pgUsers) DeleteUser(ctx context.Context, id int64) error {
	err := pgx.BeginFunc(ctx, p.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, "DELETE FROM users WHERE id = $1", id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return internal.ErrNotFound
		}
		_, err = tx.Exec(ctx, "DELETE FROM sessions WHERE (data->>'user_id')::bigint = $1", id)
		return err
	})
	if err != nil {
		return (*PostgresStorage)(p).fail("delete user", err)
	}
	return nil
}

// --- ConsumableRepository ---

type pgConsumables PostgresStorage

const consumableColumns = "id, name, brand, barcode, is_organic, unit, comments, created, destroyed, created_at, updated_at"

func prefixed(alias, columns string) string {
	cols := strings.Split(columns, ", ")
	for i, c := range cols {
		cols[i] = alias + "." + c
	}
	return strings.Join(cols, ", ")
}

func consumableFields(c *internal.Consumable) []any {
	return []any{&c.ID, &c.Name, &c.Brand, &c.Barcode, &c.IsOrganic, &c.Unit, &c.Comments, &c.Created, &c.Destroyed, &c.CreatedAt, &c.UpdatedAt}
}

func scanConsumable(row pgx.Row) (*internal.Consumable, error) {
	var c internal.Consumable
	if err := row.Scan(consumableFields(&c)...); err != nil {
		return nil, err
	}
	return &c, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (p *pgConsumables) SearchConsumables(ctx context.Context, q internal.ConsumableQuery) ([]internal.Consumable, error) {
	rows, err := p.pool.Query(ctx, `SELECT `+consumableColumns+` FROM consumables
		WHERE (name ILIKE $1 OR brand ILIKE $1 OR barcode = $2)
		  AND ($3 = FALSE OR created IS NOT NULL)
		  AND ($4 = TRUE OR destroyed IS NULL)
		ORDER BY created DESC NULLS FIRST, destroyed DESC NULLS FIRST, name ASC
		LIMIT $5`,
		"%"+likeEscaper.Replace(q.Text)+"%", q.Text, q.OnlyCreated, q.IncludeDestroyed, internal.ConsumableSearchLimit)
	if err != nil {
		return nil, (*PostgresStorage)(p).fail("search consumables", err)
	}
	defer rows.Close()
	out := make([]internal.Consumable, 0)
	for rows.Next() {
		c, err := scanConsumable(rows)
		if err != nil {
			return nil, (*PostgresStorage)(p).fail("scan consumable", err)
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func (p *pgConsumables) GetConsumable(ctx context.Context, id int64) (*internal.Consumable, error) {
	c, err := scanConsumable(p.pool.QueryRow(ctx, "SELECT "+consumableColumns+" FROM consumables WHERE id = $1", id))
	if err != nil {
		return nil, (*PostgresStorage)(p).fail("get consumable", err)
	}
	return c, nil
}

func (p *pgConsumables) CreateConsumable(ctx context.Context, n *internal.NewConsumable) (*internal.Consumable, error) {
	c, err := scanConsumable(p.pool.QueryRow(ctx,
		`INSERT INTO consumables (name, brand, barcode, is_organic, unit, comments, created, destroyed)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING `+consumableColumns,
		n.Name, n.Brand, n.Barcode, n.IsOrganic, string(n.Unit), n.Comments, n.Created, n.Destroyed))
	if err != nil {
		return nil, (*PostgresStorage)(p).fail("insert consumable", err)
	}
	return c, nil
}

func (p *pgConsumables) UpdateConsumable(ctx context.Context, id int64, ch *internal.ChangeConsumable) (*internal.Consumable, error) {
	var updated *internal.Consumable
	err := pgx.BeginFunc(ctx, p.pool, func(tx pgx.Tx) error {
		c, err := scanConsumable(tx.QueryRow(ctx, "SELECT "+consumableColumns+" FROM consumables WHERE id = $1 FOR UPDATE", id))
		if err != nil {
			return err
		}
		ch.Apply(c)
		updated, err = scanConsumable(tx.QueryRow(ctx,
			`UPDATE consumables SET name = $1, brand = $2, barcode = $3, is_organic = $4, unit = $5,
			 comments = $6, created = $7, destroyed = $8, updated_at = now() WHERE id = $9 RETURNING `+consumableColumns,
			c.Name, c.Brand, c.Barcode, c.IsOrganic, string(c.Unit), c.Comments, c.Created, c.Destroyed, id))
		return err
	})
	if err != nil {
		return nil, (*PostgresStorage)(p).fail("update consumable", err)
	}
	return updated, nil
}

func (p *pgConsumables) DeleteConsumable(ctx context.Context, id int64) error {
	tag, err := p.pool.Exec(ctx, "DELETE FROM consumables WHERE id = $1", id)
	if err != nil {
		return (*PostgresStorage)(p).fail("delete consumable", err)
	}
	if tag.RowsAffected() == 0 {
		return internal.ErrNotFound
	}
	return nil
}

const nestedColumns = "parent_id, consumable_id, quantity, liquid_mls, comments, created_at, updated_at"

func nestedFields(n *internal.NestedConsumable) []any {
	return []any{&n.ParentID, &n.ConsumableID, &n.Quantity, &n.LiquidMls, &n.Comments, &n.CreatedAt, &n.UpdatedAt}
}

func scanNested(row pgx.Row) (*internal.NestedConsumable, error) {
	var n internal.NestedConsumable
	if err := row.Scan(nestedFields(&n)...); err != nil {
		return nil, err
	}
	return &n, nil
}

// nestedItems joins nested_consumables to the consumable on joinColumn.
func (p *pgConsumables) nestedItems(ctx context.Context, joinColumn, whereColumn string, id int64) ([]internal.NestedConsumableItem, error) {
	rows, err := p.pool.Query(ctx, `SELECT `+prefixed("n", nestedColumns)+`, `+prefixed("c", consumableColumns)+`
		FROM nested_consumables n JOIN consumables c ON c.id = n.`+joinColumn+`
		WHERE n.`+whereColumn+` = $1 ORDER BY c.name, c.id`, id)
	if err != nil {
		return nil, (*PostgresStorage)(p).fail("query nested consumables", err)
	}
	defer rows.Close()
	out := make([]internal.NestedConsumableItem, 0)
	for rows.Next() {
		var item internal.NestedConsumableItem
		dest := append(nestedFields(&item.Nested), consumableFields(&item.Consumable)...)
		if err := rows.Scan(dest...); err != nil {
			return nil, (*PostgresStorage)(p).fail("scan nested consumable", err)
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func (p *pgConsumables) ChildItems(ctx context.Context, parentID int64) ([]internal.NestedConsumableItem, error) {
	return p.nestedItems(ctx, "consumable_id", "parent_id", parentID)
}

func (p *pgConsumables) ParentItems(ctx context.Context, childID int64) ([]internal.NestedConsumableItem, error) {
	return p.nestedItems(ctx, "parent_id", "consumable_id", childID)
}

func (p *pgConsumables) CreateNested(ctx context.Context, n *internal.NewNestedConsumable) (*internal.NestedConsumable, error) {
	row, err := scanNested(p.pool.QueryRow(ctx,
		`INSERT INTO nested_consumables (parent_id, consumable_id, quantity, liquid_mls, comments)
		 VALUES ($1, $2, $3, $4, $5) RETURNING `+nestedColumns,
		n.ParentID, n.ConsumableID, n.Quantity, n.LiquidMls, n.Comments))
	if err != nil {
		return nil, (*PostgresStorage)(p).fail("insert nested consumable", err)
	}
	return row, nil
}

func (p *pgConsumables) UpdateNested(ctx context.Context, parentID, childID int64, c *internal.ChangeNestedConsumable) (*internal.NestedConsumable, error) {
	var updated *internal.NestedConsumable
	err := pgx.BeginFunc(ctx, p.pool, func(tx pgx.Tx) error {
		n, err := scanNested(tx.QueryRow(ctx,
			"SELECT "+nestedColumns+" FROM nested_consumables WHERE parent_id = $1 AND consumable_id = $2 FOR UPDATE",
			parentID, childID))
		if err != nil {
			return err
		}
		c.Apply(&n.ItemAmount)
		updated, err = scanNested(tx.QueryRow(ctx,
			`UPDATE nested_consumables SET quantity = $1, liquid_mls = $2, comments = $3, updated_at = now()
			 WHERE parent_id = $4 AND consumable_id = $5 RETURNING `+nestedColumns,
			n.Quantity, n.LiquidMls, n.Comments, parentID, childID))
		return err
	})
	if err != nil {
		return nil, (*PostgresStorage)(p).fail("update nested consumable", err)
	}
	return updated, nil
}

func (p *pgConsumables) DeleteNested(ctx context.Context, parentID, childID int64) error {
	tag, err := p.pool.Exec(ctx, "DELETE FROM nested_consumables WHERE parent_id = $1 AND consumable_id = $2", parentID, childID)
	if err != nil {
		return (*PostgresStorage)(p).fail("delete nested consumable", err)
	}
	if tag.RowsAffected() == 0 {
		return internal.ErrNotFound
	}
	return nil
}

// --- ConsumptionConsumableRepository ---

type pgConsumptionItems PostgresStorage

const consumptionItemColumns = "consumption_id, consumable_id, quantity, liquid_mls, comments, created_at, updated_at"

func consumptionItemFields(n *internal.ConsumptionConsumable) []any {
	return []any{&n.ConsumptionID, &n.ConsumableID, &n.Quantity, &n.LiquidMls, &n.Comments, &n.CreatedAt, &n.UpdatedAt}
}

func scanConsumptionItem(row pgx.Row) (*internal.ConsumptionConsumable, error) {
	var n internal.ConsumptionConsumable
	if err := row.Scan(consumptionItemFields(&n)...); err != nil {
		return nil, err
	}
	return &n, nil
}

// itemsFor loads the items of several consumptions in one query.
func (p *pgConsumptionItems) itemsFor(ctx context.Context, consumptionIDs []int64) (map[int64][]internal.ConsumptionConsumableItem, error) {
	out := make(map[int64][]internal.ConsumptionConsumableItem)
	if len(consumptionIDs) == 0 {
		return out, nil
	}
	rows, err := p.pool.Query(ctx, `SELECT `+prefixed("n", consumptionItemColumns)+`, `+prefixed("c", consumableColumns)+`
		FROM consumption_consumables n JOIN consumables c ON c.id = n.consumable_id
		WHERE n.consumption_id = ANY($1) ORDER BY c.name, c.id`, consumptionIDs)
	if err != nil {
		return nil, (*PostgresStorage)(p).fail("query consumption items", err)
	}
	defer rows.Close()
	for rows.Next() {
		var item internal.ConsumptionConsumableItem
		dest := append(consumptionItemFields(&item.Nested), consumableFields(&item.Consumable)...)
		if err := rows.Scan(dest...); err != nil {
			return nil, (*PostgresStorage)(p).fail("scan consumption item", err)
		}
		out[item.Nested.ConsumptionID] = append(out[item.Nested.ConsumptionID], item)
	}
	return out, rows.Err()
}

func (p *pgConsumptionItems) ConsumptionItems(ctx context.Context, consumptionID int64) ([]internal.ConsumptionConsumableItem, error) {
	items, err := p.itemsFor(ctx, []int64{consumptionID})
	if err != nil {
		return nil, err
	}
	if items[consumptionID] == nil {
		return []internal.ConsumptionConsumableItem{}, nil
	}
	return items[consumptionID], nil
}

func (p *pgConsumptionItems) ConsumableConsumptions(ctx context.Context, userID, consumableID int64) ([]internal.Consumption, error) {
	repo := p.consumptions
	rows, err := p.pool.Query(ctx, repo.selectSQL()+` WHERE user_id = $1
		AND id IN (SELECT consumption_id FROM consumption_consumables WHERE consumable_id = $2)
		ORDER BY time DESC, id DESC`, userID, consumableID)
	if err != nil {
		return nil, (*PostgresStorage)(p).fail("query consumable consumptions", err)
	}
	defer rows.Close()
	out := make([]internal.Consumption, 0)
	for rows.Next() {
		c, err := repo.scan(rows)
		if err != nil {
			return nil, (*PostgresStorage)(p).fail("scan consumption", err)
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func (p *pgConsumptionItems) CreateConsumptionItem(ctx context.Context, n *internal.NewConsumptionConsumable) (*internal.ConsumptionConsumable, error) {
	row, err := scanConsumptionItem(p.pool.QueryRow(ctx,
		`INSERT INTO consumption_consumables (consumption_id, consumable_id, quantity, liquid_mls, comments)
		 VALUES ($1, $2, $3, $4, $5) RETURNING `+consumptionItemColumns,
		n.ConsumptionID, n.ConsumableID, n.Quantity, n.LiquidMls, n.Comments))
	if err != nil {
		return nil, (*PostgresStorage)(p).fail("insert consumption item", err)
	}
	return row, nil
}

func (p *pgConsumptionItems) UpdateConsumptionItem(ctx context.Context, consumptionID, consumableID int64, c *internal.ChangeConsumptionConsumable) (*internal.ConsumptionConsumable, error) {
	var updated *internal.ConsumptionConsumable
	err := pgx.BeginFunc(ctx, p.pool, func(tx pgx.Tx) error {
		n, err := scanConsumptionItem(tx.QueryRow(ctx,
			"SELECT "+consumptionItemColumns+" FROM consumption_consumables WHERE consumption_id = $1 AND consumable_id = $2 FOR UPDATE",
			consumptionID, consumableID))
		if err != nil {
			return err
		}
		c.Apply(&n.ItemAmount)
		updated, err = scanConsumptionItem(tx.QueryRow(ctx,
			`UPDATE consumption_consumables SET quantity = $1, liquid_mls = $2, comments = $3, updated_at = now()
			 WHERE consumption_id = $4 AND consumable_id = $5 RETURNING `+consumptionItemColumns,
			n.Quantity, n.LiquidMls, n.Comments, consumptionID, consumableID))
		return err
	})
	if err != nil {
		return nil, (*PostgresStorage)(p).fail("update consumption item", err)
	}
	return updated, nil
}

func (p *pgConsumptionItems) DeleteConsumptionItem(ctx context.Context, consumptionID, consumableID int64) error {
	tag, err := p.pool.Exec(ctx,
		"DELETE FROM consumption_consumables WHERE consumption_id = $1 AND consumable_id = $2",
		consumptionID, consumableID)
	if err != nil {
		return (*PostgresStorage)(p).fail("delete consumption item", err)
	}
	if tag.RowsAffected() == 0 {
		return internal.ErrNotFound
	}
	return nil
}

// --- SessionStore ---

type pgSessions PostgresStorage

func (p *pgSessions) CreateSession(ctx context.Context, data internal.SessionData, expiresAt time.Time) (*internal.Session, error) {
	for {
		id := uuid.NewString()
		tag, err := p.pool.Exec(ctx,
			"INSERT INTO sessions (id, data, expiry_date) VALUES ($1, $2, $3) ON CONFLICT (id) DO NOTHING",
			id, data, expiresAt)
		if err != nil {
			return nil, (*PostgresStorage)(p).fail("create session", err)
		}
		if tag.RowsAffected() == 1 {
			return &internal.Session{ID: id, Data: data, ExpiresAt: expiresAt}, nil
		}
	}
}

func (p *pgSessions) SaveSession(ctx context.Context, s *internal.Session) error {
	_, err := p.pool.Exec(ctx,
		`INSERT INTO sessions (id, data, expiry_date) VALUES ($1, $2, $3)
		 ON CONFLICT (id) DO UPDATE SET data = excluded.data, expiry_date = excluded.expiry_date`,
		s.ID, s.Data, s.ExpiresAt)
	if err != nil {
		return (*PostgresStorage)(p).fail("save session", err)
	}
	return nil
}

func (p *pgSessions) LoadSession(ctx context.Context, id string) (*internal.Session, error) {
	var s internal.Session
	err := p.pool.QueryRow(ctx,
		"SELECT id, data, expiry_date FROM sessions WHERE id = $1 AND expiry_date > now()", id,
	).Scan(&s.ID, &s.Data, &s.ExpiresAt)
	if err != nil {
		return nil, (*PostgresStorage)(p).fail("load session", err)
	}
	return &s, nil
}

func (p *pgSessions) DeleteSession(ctx context.Context, id string) error {
	if _, err := p.pool.Exec(ctx, "DELETE FROM sessions WHERE id = $1", id); err != nil {
		return (*PostgresStorage)(p).fail("delete session", err)
	}
	return nil
}

func (p *pgSessions) DeleteExpiredSessions(ctx context.Context) (int, error) {
	tag, err := p.pool.Exec(ctx, "DELETE FROM sessions WHERE expiry_date <= now()")
	if err != nil {
		return 0, (*PostgresStorage)(p).fail("delete expired sessions", err)
	}
	return int(tag.RowsAffected()), nil
}

var (
	_ UserRepository                  = (*pgUsers)(nil)
	_ ConsumableRepository            = (*pgConsumables)(nil)
	_ ConsumptionConsumableRepository = (*pgConsumptionItems)(nil)
	_ SessionStore                    = (*pgSessions)(nil)
)
