package service

import (
	"context"

	"github.com/brianmay/penguin-nurse/internal"
	"github.com/brianmay/penguin-nurse/internal/storage"
)

// ConsumableService manages the shared consumable catalogue.
type ConsumableService struct {
	repo  storage.ConsumableRepository
	items storage.ConsumptionConsumableRepository
}

func NewConsumableService(repo storage.ConsumableRepository, items storage.ConsumptionConsumableRepository) *ConsumableService {
	return &ConsumableService{repo: repo, items: items}
}

func (s *ConsumableService) Search(ctx context.Context, q internal.ConsumableQuery) ([]internal.Consumable, error) {
	return s.repo.SearchConsumables(ctx, q)
}

func (s *ConsumableService) Get(ctx context.Context, id int64) (*internal.ConsumableWithItems, error) {
	c, err := s.repo.GetConsumable(ctx, id)
	if err != nil {
		return nil, err
	}
	items, err := s.repo.ChildItems(ctx, id)
	if err != nil {
		return nil, err
	}
	return &internal.ConsumableWithItems{Consumable: *c, Items: items}, nil
}

func (s *ConsumableService) Create(ctx context.Context, n *internal.NewConsumable) (*internal.Consumable, error) {
	if err := Validate(n); err != nil {
		return nil, err
	}
	return s.repo.CreateConsumable(ctx, n)
}

func (s *ConsumableService) Update(ctx context.Context, id int64, c *internal.ChangeConsumable) (*internal.Consumable, error) {
	if err := Validate(c); err != nil {
		return nil, err
	}
	errs := ValidationErrors{}
	notBlank(errs, "name", c.Name)
	if err := errs.orNil(); err != nil {
		return nil, err
	}
	return s.repo.UpdateConsumable(ctx, id, c)
}

func (s *ConsumableService) Delete(ctx context.Context, id int64) error {
	return s.repo.DeleteConsumable(ctx, id)
}

func (s *ConsumableService) Parents(ctx context.Context, id int64) ([]internal.NestedConsumableItem, error) {
	if _, err := s.repo.GetConsumable(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.ParentItems(ctx, id)
}

// Consumptions lists the user's consumptions that used the consumable.
func (s *ConsumableService) Consumptions(ctx context.Context, user *internal.User, id int64) ([]internal.Consumption, error) {
	if _, err := s.repo.GetConsumable(ctx, id); err != nil {
		return nil, err
	}
	return s.items.ConsumableConsumptions(ctx, user.ID, id)
}

// contains reports whether target is reachable from root through ingredient
// edges, root included.
func (s *ConsumableService) contains(ctx context.Context, root, target int64) (bool, error) {
	seen := map[int64]bool{}
	stack := []int64{root}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if id == target {
			return true, nil
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		children, err := s.repo.ChildItems(ctx, id)
		if err != nil {
			return false, err
		}
		for _, c := range children {
			stack = append(stack, c.Consumable.ID)
		}
	}
	return false, nil
}

// AddItem makes the consumable in n an ingredient of parentID. An ingredient
// may not contain its parent, directly or indirectly.
func (s *ConsumableService) AddItem(ctx context.Context, parentID int64, n *internal.NewNestedConsumable) (*internal.NestedConsumable, error) {
	n.ParentID = parentID
	if err := Validate(n); err != nil {
		return nil, err
	}
	cycle, err := s.contains(ctx, n.ConsumableID, parentID)
	if err != nil {
		return nil, err
	}
	if cycle {
		return nil, ValidationErrors{"consumable_id": "cannot contain itself"}
	}
	return s.repo.CreateNested(ctx, n)
}

func (s *ConsumableService) UpdateItem(ctx context.Context, parentID, childID int64, c *internal.ChangeNestedConsumable) (*internal.NestedConsumable, error) {
	if err := Validate(c); err != nil {
		return nil, err
	}
	return s.repo.UpdateNested(ctx, parentID, childID, c)
}

func (s *ConsumableService) DeleteItem(ctx context.Context, parentID, childID int64) error {
	return s.repo.DeleteNested(ctx, parentID, childID)
}
