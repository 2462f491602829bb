package service

import (
	"context"
	"time"

	"github.com/brianmay/penguin-nurse/internal"
	"github.com/brianmay/penguin-nurse/internal/storage"
)

// ConsumptionService adds ingredient handling on top of the event CRUD.
// Ingredient calls first check that the consumption belongs to the user.
type ConsumptionService struct {
	*EventService[internal.Consumption, internal.NewConsumption, internal.ChangeConsumption, *internal.Consumption, *internal.NewConsumption, *internal.ChangeConsumption]
	consumptions storage.ConsumptionRepository
	items        storage.ConsumptionConsumableRepository
}

func NewConsumptionService(repo storage.ConsumptionRepository, items storage.ConsumptionConsumableRepository) *ConsumptionService {
	return &ConsumptionService{
		EventService: NewEventService[internal.Consumption, internal.NewConsumption, internal.ChangeConsumption](repo, nil),
		consumptions: repo,
		items:        items,
	}
}

func (s *ConsumptionService) owned(ctx context.Context, user *internal.User, consumptionID int64) error {
	_, err := s.repo.GetByID(ctx, consumptionID, user.ID)
	return err
}

// GetWithItems returns the consumption and its ingredients.
func (s *ConsumptionService) GetWithItems(ctx context.Context, user *internal.User, id int64) (*internal.ConsumptionWithItems, error) {
	c, err := s.repo.GetByID(ctx, id, user.ID)
	if err != nil {
		return nil, err
	}
	items, err := s.items.ConsumptionItems(ctx, id)
	if err != nil {
		return nil, err
	}
	return &internal.ConsumptionWithItems{Consumption: *c, Items: items}, nil
}

// ListWithItems is List with each consumption's ingredients attached.
func (s *ConsumptionService) ListWithItems(ctx context.Context, user *internal.User, start, end time.Time) ([]internal.ConsumptionWithItems, error) {
	return s.consumptions.ListWithItemsForTimeRange(ctx, user.ID, start, end)
}

func (s *ConsumptionService) Items(ctx context.Context, user *internal.User, consumptionID int64) ([]internal.ConsumptionConsumableItem, error) {
	if err := s.owned(ctx, user, consumptionID); err != nil {
		return nil, err
	}
	return s.items.ConsumptionItems(ctx, consumptionID)
}

func (s *ConsumptionService) AddItem(ctx context.Context, user *internal.User, consumptionID int64, n *internal.NewConsumptionConsumable) (*internal.ConsumptionConsumable, error) {
	n.ConsumptionID = consumptionID
	if err := Validate(n); err != nil {
		return nil, err
	}
	if err := s.owned(ctx, user, consumptionID); err != nil {
		return nil, err
	}
	return s.items.CreateConsumptionItem(ctx, n)
}

func (s *ConsumptionService) UpdateItem(ctx context.Context, user *internal.User, consumptionID, consumableID int64, c *internal.ChangeConsumptionConsumable) (*internal.ConsumptionConsumable, error) {
	if err := Validate(c); err != nil {
		return nil, err
	}
	if err := s.owned(ctx, user, consumptionID); err != nil {
		return nil, err
	}
	return s.items.UpdateConsumptionItem(ctx, consumptionID, consumableID, c)
}

func (s *ConsumptionService) DeleteItem(ctx context.Context, user *internal.User, consumptionID, consumableID int64) error {
	if err := s.owned(ctx, user, consumptionID); err != nil {
		return err
	}
	return s.items.DeleteConsumptionItem(ctx, consumptionID, consumableID)
}
