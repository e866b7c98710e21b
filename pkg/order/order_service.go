package order

import (
	"SmartCanteen-Backend/domain"
	"SmartCanteen-Backend/entities"
	"SmartCanteen-Backend/internal/utils/events"
	"SmartCanteen-Backend/pkg/menu"
	"SmartCanteen-Backend/pkg/notification"
	"SmartCanteen-Backend/pkg/plan"
	"SmartCanteen-Backend/pkg/state"
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"
)

const orderIDAttempts = 5

type (
	OrderService interface {
		ConfirmOrder(ctx context.Context, req domain.ConfirmOrderRequest) (domain.ActiveOrder, error)
		AddToLastOrder(ctx context.Context, req domain.AddItemsRequest) (domain.ActiveOrder, error)
		ConfirmPreOrder(ctx context.Context, req domain.AddItemsRequest) (domain.OrderMap, error)
		AdjustPreOrder(ctx context.Context, req domain.AdjustPreOrderRequest) (domain.OrderMap, error)
		UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) (domain.ActiveOrder, error)
		GetOrders(ctx context.Context, status domain.OrderStatus) ([]domain.ActiveOrder, error)
		GetOrderCounts(ctx context.Context) (domain.OrderCountsResponse, error)
		GetPreOrders(ctx context.Context) (domain.PreOrdersResponse, error)
		GetKitchenQueue(ctx context.Context) ([]domain.KitchenQueueItem, error)
		MarkPrepared(ctx context.Context, req domain.MarkPreparedRequest) (map[string]int, error)
	}

	orderService struct {
		orderRepository     OrderRepository
		menuRepository      menu.MenuRepository
		planService         plan.PlanService
		stateService        state.StateService
		notificationService notification.NotificationService
		publisher           events.Publisher
		now                 func() time.Time
		newID               func() string
	}
)

func NewOrderService(
	orderRepository OrderRepository,
	menuRepository menu.MenuRepository,
	planService plan.PlanService,
	stateService state.StateService,
	notificationService notification.NotificationService,
	publisher events.Publisher,
) OrderService {
	return &orderService{
		orderRepository:     orderRepository,
		menuRepository:      menuRepository,
		planService:         planService,
		stateService:        stateService,
		notificationService: notificationService,
		publisher:           publisher,
		now:                 time.Now,
		newID: func() string {
			return fmt.Sprintf("ORD-%06d", rand.Intn(1000000))
		},
	}
}

func (s *orderService) ConfirmOrder(ctx context.Context, req domain.ConfirmOrderRequest) (domain.ActiveOrder, error) {
	if err := s.validateCart(ctx, req.Items); err != nil {
		return domain.ActiveOrder{}, err
	}

	var (
		order   domain.ActiveOrder
		created bool
	)
	today := domain.OrderMap{}
	err := s.stateService.Update(ctx, state.DocPreOrdersToday, &today, func() error {
		if err := s.checkAvailability(ctx, today, req.Items); err != nil {
			return err
		}

		id, err := s.nextOrderID(ctx)
		if err != nil {
			return err
		}
		order = domain.ActiveOrder{
			ID:           id,
			Items:        req.Items.Clone(),
			ItemComments: req.ItemComments,
			Status:       domain.StatusPreparing,
			Timestamp:    s.now().UnixMilli(),
		}
		entity, err := toEntity(order)
		if err != nil {
			return err
		}
		if err := s.orderRepository.CreateOrder(ctx, entity); err != nil {
			return err
		}
		created = true

		today.Merge(req.Items)
		return nil
	})
	if err != nil {
		// the aggregate was not saved, so the order row must not outlive it
		if created {
			if delErr := s.orderRepository.DeleteOrder(ctx, order.ID); delErr != nil {
				log.Errorf("failed to roll back order %s: %v", order.ID, delErr)
			}
		}
		return domain.ActiveOrder{}, err
	}

	s.notifyStudent(ctx, "Order Confirmed", fmt.Sprintf("Order %s has been sent to the kitchen.", order.ID), domain.NotificationSuccess)
	s.publish(ctx, events.TypeOrderPlaced, order.ID, order)
	return order, nil
}

func (s *orderService) AddToLastOrder(ctx context.Context, req domain.AddItemsRequest) (domain.ActiveOrder, error) {
	if err := s.validateCart(ctx, req.Items); err != nil {
		return domain.ActiveOrder{}, err
	}

	var (
		order    domain.ActiveOrder
		previous *entities.ActiveOrder
	)
	today := domain.OrderMap{}
	err := s.stateService.Update(ctx, state.DocPreOrdersToday, &today, func() error {
		latest, err := s.orderRepository.GetLatestOpenOrder(ctx)
		if err != nil {
			if isNotFound(err) {
				return domain.ErrNoActiveOrder
			}
			return err
		}
		if err := s.checkAvailability(ctx, today, req.Items); err != nil {
			return err
		}

		order, err = toDomain(latest)
		if err != nil {
			return err
		}
		order.Items.Merge(req.Items)
		entity, err := toEntity(order)
		if err != nil {
			return err
		}
		snapshot := *latest
		if err := s.orderRepository.UpdateOrder(ctx, entity); err != nil {
			return err
		}
		previous = &snapshot

		today.Merge(req.Items)
		return nil
	})
	if err != nil {
		if previous != nil {
			if restoreErr := s.orderRepository.UpdateOrder(ctx, previous); restoreErr != nil {
				log.Errorf("failed to restore order %s: %v", previous.ID, restoreErr)
			}
		}
		return domain.ActiveOrder{}, err
	}

	s.notifyStudent(ctx, "Total Updated", "New items added to your current receipt.", domain.NotificationSuccess)
	s.publish(ctx, events.TypeOrderPlaced, order.ID, order)
	return order, nil
}

func (s *orderService) ConfirmPreOrder(ctx context.Context, req domain.AddItemsRequest) (domain.OrderMap, error) {
	if err := s.validateCart(ctx, req.Items); err != nil {
		return nil, err
	}

	tomorrow := domain.OrderMap{}
	if err := s.stateService.Update(ctx, state.DocPreOrdersTomorrow, &tomorrow, func() error {
		tomorrow.Merge(req.Items)
		return nil
	}); err != nil {
		return nil, err
	}

	s.notifyStudent(ctx, "Pre-order Confirmed", "Your booking for tomorrow is secured with a 5% discount!", domain.NotificationSuccess)
	return tomorrow, nil
}

// AdjustPreOrder applies a signed delta to one key of today's demand. A key that reaches zero is removed.
func (s *orderService) AdjustPreOrder(ctx context.Context, req domain.AdjustPreOrderRequest) (domain.OrderMap, error) {
	key, err := domain.ParseOrderKey(req.Key)
	if err != nil {
		return nil, err
	}
	if req.Delta == 0 {
		return nil, domain.ErrInvalidOrderQuantity
	}
	if req.Delta > 0 {
		if _, err := s.getMenuItem(ctx, key.ItemID); err != nil {
			return nil, err
		}
	}

	today := domain.OrderMap{}
	if err := s.stateService.Update(ctx, state.DocPreOrdersToday, &today, func() error {
		today.Add(key, req.Delta)
		return nil
	}); err != nil {
		return nil, err
	}
	return today, nil
}

func (s *orderService) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) (domain.ActiveOrder, error) {
	if !status.Valid() {
		return domain.ActiveOrder{}, domain.ErrInvalidOrderStatus
	}

	entity, err := s.orderRepository.GetOrderByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return domain.ActiveOrder{}, domain.ErrOrderNotFound
		}
		return domain.ActiveOrder{}, err
	}
	order, err := toDomain(entity)
	if err != nil {
		return domain.ActiveOrder{}, err
	}
	if !order.Status.CanTransitionTo(status) {
		return domain.ActiveOrder{}, fmt.Errorf("%w: %s to %s", domain.ErrInvalidStatusTransition, order.Status, status)
	}

	order.Status = status
	entity.Status = string(status)
	if err := s.orderRepository.UpdateOrder(ctx, entity); err != nil {
		return domain.ActiveOrder{}, err
	}

	switch status {
	case domain.StatusReady:
		s.notifyStudent(ctx, "Order Ready", fmt.Sprintf("Order %s is now ready for pickup at Counter 3.", order.ID), domain.NotificationSuccess)
	case domain.StatusPickedUp:
		s.notifyStudent(ctx, "Pickup Complete", fmt.Sprintf("Order %s has been successfully handed over.", order.ID), domain.NotificationInfo)
	}
	s.publish(ctx, events.TypeOrderStatusChanged, order.ID, order)
	return order, nil
}

func (s *orderService) GetOrders(ctx context.Context, status domain.OrderStatus) ([]domain.ActiveOrder, error) {
	if status != "" && !status.Valid() {
		return nil, domain.ErrInvalidOrderStatus
	}
	orders, err := s.orderRepository.GetOrders(ctx, string(status))
	if err != nil {
		return nil, err
	}
	return toDomainList(orders)
}

func (s *orderService) GetOrderCounts(ctx context.Context) (domain.OrderCountsResponse, error) {
	counts, err := s.orderRepository.CountByStatus(ctx)
	if err != nil {
		return domain.OrderCountsResponse{}, err
	}
	return domain.OrderCountsResponse{
		Preparing: counts[string(domain.StatusPreparing)],
		Ready:     counts[string(domain.StatusReady)],
		PickedUp:  counts[string(domain.StatusPickedUp)],
	}, nil
}

func (s *orderService) GetPreOrders(ctx context.Context) (domain.PreOrdersResponse, error) {
	resp := domain.PreOrdersResponse{Today: domain.OrderMap{}, Tomorrow: domain.OrderMap{}}
	if err := s.stateService.Load(ctx, state.DocPreOrdersToday, &resp.Today); err != nil {
		return domain.PreOrdersResponse{}, err
	}
	if err := s.stateService.Load(ctx, state.DocPreOrdersTomorrow, &resp.Tomorrow); err != nil {
		return domain.PreOrdersResponse{}, err
	}
	return resp, nil
}

// GetKitchenQueue lists every catalog item with its outstanding demand, most pending first.
func (s *orderService) GetKitchenQueue(ctx context.Context) ([]domain.KitchenQueueItem, error) {
	items, err := s.menuRepository.GetMenuItems(ctx)
	if err != nil {
		return nil, err
	}
	today := domain.OrderMap{}
	if err := s.stateService.Load(ctx, state.DocPreOrdersToday, &today); err != nil {
		return nil, err
	}
	prepared := map[string]int{}
	if err := s.stateService.Load(ctx, state.DocKitchenPrepared, &prepared); err != nil {
		return nil, err
	}
	current, err := s.planService.Current(ctx)
	if err != nil {
		return nil, err
	}

	queue := make([]domain.KitchenQueueItem, 0, len(items))
	for _, item := range items {
		ordered := today.QuantityFor(item.ID)
		done := prepared[item.ID]
		pending := ordered - done
		if pending < 0 {
			pending = 0
		}
		target, _ := current.Items.QuantityFor(item.ID, item.BaseQuantity)

		queue = append(queue, domain.KitchenQueueItem{
			MenuItemID: item.ID,
			Name:       item.Name,
			Category:   domain.Category(item.Category),
			Ordered:    ordered,
			Done:       done,
			Pending:    pending,
			Breakdown:  today.Breakdown(item.ID),
			PlanTarget: target,
		})
	}

	sort.SliceStable(queue, func(i, j int) bool {
		return queue[i].Pending > queue[j].Pending
	})
	return queue, nil
}

func (s *orderService) MarkPrepared(ctx context.Context, req domain.MarkPreparedRequest) (map[string]int, error) {
	if req.Quantity <= 0 {
		return nil, domain.ErrInvalidOrderQuantity
	}
	if _, err := s.getMenuItem(ctx, req.MenuItemID); err != nil {
		return nil, err
	}

	prepared := map[string]int{}
	if err := s.stateService.Update(ctx, state.DocKitchenPrepared, &prepared, func() error {
		prepared[req.MenuItemID] += req.Quantity
		return nil
	}); err != nil {
		return nil, err
	}
	return prepared, nil
}

func (s *orderService) getMenuItem(ctx context.Context, id string) (*entities.MenuItem, error) {
	item, err := s.menuRepository.GetMenuItemByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", domain.ErrMenuItemNotFound, id)
		}
		return nil, err
	}
	return item, nil
}

// validateCart requires sized keys, positive quantities and known items.
func (s *orderService) validateCart(ctx context.Context, items domain.OrderMap) error {
	if err := items.ValidateNew(); err != nil {
		return err
	}
	for _, id := range itemIDs(items) {
		if _, err := s.getMenuItem(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// checkAvailability rejects a cart that would push an item's demand past its planned quantity.
func (s *orderService) checkAvailability(ctx context.Context, today, cart domain.OrderMap) error {
	for _, id := range itemIDs(cart) {
		planned, _, err := s.planService.PlannedQuantity(ctx, id)
		if err != nil {
			return err
		}
		requested := today.QuantityFor(id) + cart.QuantityFor(id)
		if requested > planned {
			return fmt.Errorf("%w: %s has %d of %d left", domain.ErrInsufficientAvailability, id, max(0, planned-today.QuantityFor(id)), planned)
		}
	}
	return nil
}

func (s *orderService) nextOrderID(ctx context.Context) (string, error) {
	for i := 0; i < orderIDAttempts; i++ {
		id := s.newID()
		_, err := s.orderRepository.GetOrderByID(ctx, id)
		if isNotFound(err) {
			return id, nil
		}
		if err != nil {
			return "", err
		}
	}
	return "", errors.New("could not allocate a unique order id")
}

func (s *orderService) notifyStudent(ctx context.Context, title, message string, notificationType domain.NotificationType) {
	if _, err := s.notificationService.Push(ctx, title, message, notificationType, domain.RoleStudent); err != nil {
		log.Warnf("failed to push %q notification: %v", title, err)
	}
}

func (s *orderService) publish(ctx context.Context, eventType, key string, payload interface{}) {
	if err := s.publisher.Publish(ctx, eventType, key, payload); err != nil {
		log.Warnf("failed to publish %s for %s: %v", eventType, key, err)
	}
}

func itemIDs(items domain.OrderMap) []string {
	seen := make(map[string]struct{})
	var ids []string
	for key := range items {
		if _, ok := seen[key.ItemID]; ok {
			continue
		}
		seen[key.ItemID] = struct{}{}
		ids = append(ids, key.ItemID)
	}
	sort.Strings(ids)
	return ids
}
