package internal

import "time"

type Consumption struct {
	EventMeta
	Duration        Duration        `json:"duration"`
	ConsumptionType ConsumptionType `json:"consumption_type"`
	LiquidMls       *float64        `json:"liquid_mls"`
	Comments        *string         `json:"comments"`
}

type NewConsumption struct {
	NewEventMeta
	Duration        Duration        `json:"duration"`
	ConsumptionType ConsumptionType `json:"consumption_type" validate:"required,oneof=digest inhale_nose inhale_mouth spit_out inject apply_skin"`
	LiquidMls       *float64        `json:"liquid_mls" validate:"omitempty,gte=0"`
	Comments        *string         `json:"comments"`
}

func (n *NewConsumption) Build(meta EventMeta) *Consumption {
	return &Consumption{
		EventMeta:       meta,
		Duration:        n.Duration,
		ConsumptionType: n.ConsumptionType,
		LiquidMls:       n.LiquidMls,
		Comments:        n.Comments,
	}
}

type ChangeConsumption struct {
	ChangeEventMeta
	Duration        MaybeSet[Duration]        `json:"duration,omitzero"`
	ConsumptionType MaybeSet[ConsumptionType] `json:"consumption_type,omitzero" validate:"omitnil,oneof=digest inhale_nose inhale_mouth spit_out inject apply_skin"`
	LiquidMls       MaybeF64                  `json:"liquid_mls,omitzero" validate:"omitnil,gte=0"`
	Comments        MaybeString               `json:"comments,omitzero"`
}

func (c *ChangeConsumption) Apply(e *Consumption) {
	c.ChangeEventMeta.apply(&e.EventMeta)
	c.Duration.Apply(&e.Duration)
	c.ConsumptionType.Apply(&e.ConsumptionType)
	c.LiquidMls.Apply(&e.LiquidMls)
	c.Comments.Apply(&e.Comments)
}

// Consumable is a catalogue entry shared by all users. Created and Destroyed
// track when a home-made item was made and when it was used up or thrown out.
type Consumable struct {
	ID        int64          `json:"id"`
	Name      string         `json:"name"`
	Brand     *string        `json:"brand"`
	Barcode   *string        `json:"barcode"`
	IsOrganic bool           `json:"is_organic"`
	Unit      ConsumableUnit `json:"unit"`
	Comments  *string        `json:"comments"`
	Created   *time.Time     `json:"created"`
	Destroyed *time.Time     `json:"destroyed"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

type NewConsumable struct {
	Name      string         `json:"name" validate:"required"`
	Brand     *string        `json:"brand"`
	Barcode   *string        `json:"barcode"`
	IsOrganic bool           `json:"is_organic"`
	Unit      ConsumableUnit `json:"unit" validate:"required,oneof=millilitres grams international_units number"`
	Comments  *string        `json:"comments"`
	Created   *time.Time     `json:"created"`
	Destroyed *time.Time     `json:"destroyed"`
}

func (n *NewConsumable) Build(id int64, now time.Time) *Consumable {
	return &Consumable{
		ID:        id,
		Name:      n.Name,
		Brand:     n.Brand,
		Barcode:   n.Barcode,
		IsOrganic: n.IsOrganic,
		Unit:      n.Unit,
		Comments:  n.Comments,
		Created:   n.Created,
		Destroyed: n.Destroyed,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

type ChangeConsumable struct {
	Name      MaybeSet[string]         `json:"name,omitzero" validate:"omitnil,min=1"`
	Brand     MaybeString              `json:"brand,omitzero"`
	Barcode   MaybeString              `json:"barcode,omitzero"`
	IsOrganic MaybeSet[bool]           `json:"is_organic,omitzero"`
	Unit      MaybeSet[ConsumableUnit] `json:"unit,omitzero" validate:"omitnil,oneof=millilitres grams international_units number"`
	Comments  MaybeString              `json:"comments,omitzero"`
	Created   MaybeDateTime            `json:"created,omitzero"`
	Destroyed MaybeDateTime            `json:"destroyed,omitzero"`
}

func (c *ChangeConsumable) Apply(e *Consumable) {
	c.Name.Apply(&e.Name)
	c.Brand.Apply(&e.Brand)
	c.Barcode.Apply(&e.Barcode)
	c.IsOrganic.Apply(&e.IsOrganic)
	c.Unit.Apply(&e.Unit)
	c.Comments.Apply(&e.Comments)
	c.Created.Apply(&e.Created)
	c.Destroyed.Apply(&e.Destroyed)
}

// ItemAmount is the quantity part of an ingredient edge.
type ItemAmount struct {
	Quantity  *float64 `json:"quantity"`
	LiquidMls *float64 `json:"liquid_mls"`
	Comments  *string  `json:"comments"`
}

type NewItemAmount struct {
	Quantity  *float64 `json:"quantity" validate:"omitempty,gte=0"`
	LiquidMls *float64 `json:"liquid_mls" validate:"omitempty,gte=0"`
	Comments  *string  `json:"comments"`
}

type ChangeItemAmount struct {
	Quantity  MaybeF64    `json:"quantity,omitzero" validate:"omitnil,gte=0"`
	LiquidMls MaybeF64    `json:"liquid_mls,omitzero" validate:"omitnil,gte=0"`
	Comments  MaybeString `json:"comments,omitzero"`
}

func (c *ChangeItemAmount) Apply(a *ItemAmount) {
	c.Quantity.Apply(&a.Quantity)
	c.LiquidMls.Apply(&a.LiquidMls)
	c.Comments.Apply(&a.Comments)
}

// NestedConsumable says ConsumableID is an ingredient of ParentID.
type NestedConsumable struct {
	ParentID     int64 `json:"parent_id"`
	ConsumableID int64 `json:"consumable_id"`
	ItemAmount
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type NewNestedConsumable struct {
	ParentID     int64 `json:"parent_id"`
	ConsumableID int64 `json:"consumable_id" validate:"required"`
	NewItemAmount
}

func (n *NewNestedConsumable) Build(now time.Time) *NestedConsumable {
	return &NestedConsumable{
		ParentID:     n.ParentID,
		ConsumableID: n.ConsumableID,
		ItemAmount:   ItemAmount(n.NewItemAmount),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

type ChangeNestedConsumable = ChangeItemAmount

// ConsumptionConsumable says ConsumableID was part of ConsumptionID.
type ConsumptionConsumable struct {
	ConsumptionID int64 `json:"consumption_id"`
	ConsumableID  int64 `json:"consumable_id"`
	ItemAmount
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type NewConsumptionConsumable struct {
	ConsumptionID int64 `json:"consumption_id"`
	ConsumableID  int64 `json:"consumable_id" validate:"required"`
	NewItemAmount
}

func (n *NewConsumptionConsumable) Build(now time.Time) *ConsumptionConsumable {
	return &ConsumptionConsumable{
		ConsumptionID: n.ConsumptionID,
		ConsumableID:  n.ConsumableID,
		ItemAmount:    ItemAmount(n.NewItemAmount),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

type ChangeConsumptionConsumable = ChangeItemAmount

type NestedConsumableItem struct {
	Nested     NestedConsumable `json:"nested"`
	Consumable Consumable       `json:"consumable"`
}

type ConsumptionConsumableItem struct {
	Nested     ConsumptionConsumable `json:"nested"`
	Consumable Consumable            `json:"consumable"`
}

type ConsumableWithItems struct {
	Consumable Consumable             `json:"consumable"`
	Items      []NestedConsumableItem `json:"items"`
}

type ConsumptionWithItems struct {
	Consumption Consumption                 `json:"consumption"`
	Items       []ConsumptionConsumableItem `json:"items"`
}

// ConsumableQuery filters a catalogue search.
type ConsumableQuery struct {
	Text             string
	OnlyCreated      bool
	IncludeDestroyed bool
}

// ConsumableSearchLimit caps catalogue search results.
const ConsumableSearchLimit = 10
