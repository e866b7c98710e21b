package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

type PortionSize string

const (
	SizeSmall   PortionSize = "SMALL"
	SizeRegular PortionSize = "REGULAR"
	SizeLarge   PortionSize = "LARGE"
)

type OrderStatus string

const (
	StatusPreparing OrderStatus = "PREPARING"
	StatusReady     OrderStatus = "READY"
	StatusPickedUp  OrderStatus = "PICKED_UP"
)

var (
	MessageSuccessConfirmOrder    = "order confirmed successfully"
	MessageSuccessAddToLastOrder  = "items added to current order"
	MessageSuccessConfirmPreOrder = "pre-order confirmed successfully"
	MessageSuccessAdjustPreOrder  = "pre-order updated successfully"
	MessageSuccessGetOrders       = "orders retrieved successfully"
	MessageSuccessGetOrderCounts  = "order counts retrieved successfully"
	MessageSuccessGetPreOrders    = "pre-orders retrieved successfully"
	MessageSuccessUpdateStatus    = "order status updated successfully"
	MessageSuccessGetKitchenQueue = "kitchen queue retrieved successfully"
	MessageSuccessMarkPrepared    = "items marked as prepared"
	MessageFailedConfirmOrder     = "failed to confirm order"
	MessageFailedAddToLastOrder   = "failed to add items to current order"
	MessageFailedConfirmPreOrder  = "failed to confirm pre-order"
	MessageFailedAdjustPreOrder   = "failed to update pre-order"
	MessageFailedGetOrders        = "failed to retrieve orders"
	MessageFailedGetOrderCounts   = "failed to retrieve order counts"
	MessageFailedGetPreOrders     = "failed to retrieve pre-orders"
	MessageFailedUpdateStatus     = "failed to update order status"
	MessageFailedGetKitchenQueue  = "failed to retrieve kitchen queue"
	MessageFailedMarkPrepared     = "failed to mark items as prepared"

	ErrInvalidOrderKey          = errors.New("invalid order key")
	ErrInvalidPortionSize       = errors.New("invalid portion size")
	ErrInvalidOrderQuantity     = errors.New("order quantity must be positive")
	ErrEmptyOrder               = errors.New("order has no items")
	ErrOrderNotFound            = errors.New("order not found")
	ErrNoActiveOrder            = errors.New("no active order to add items to")
	ErrInvalidOrderStatus       = errors.New("invalid order status")
	ErrInvalidStatusTransition  = errors.New("invalid order status transition")
	ErrInsufficientAvailability = errors.New("not enough planned portions available")
)

func (s PortionSize) Valid() bool {
	switch s {
	case SizeSmall, SizeRegular, SizeLarge:
		return true
	}
	return false
}

// Multiplier scales price and carbon footprint by portion size.
func (s PortionSize) Multiplier() float64 {
	switch s {
	case SizeSmall:
		return 0.7
	case SizeLarge:
		return 1.3
	}
	return 1
}

// OrderKey identifies pending demand for one item in one portion size.
// Legacy entries carry no size.
type OrderKey struct {
	ItemID string
	Size   PortionSize
}

func NewOrderKey(itemID string, size PortionSize) OrderKey {
	return OrderKey{ItemID: itemID, Size: size}
}

// ParseOrderKey splits on the first colon: "3:LARGE" or the bare legacy form "3".
func ParseOrderKey(raw string) (OrderKey, error) {
	raw = strings.TrimSpace(raw)
	idx := strings.Index(raw, ":")
	if idx == -1 {
		if raw == "" {
			return OrderKey{}, ErrInvalidOrderKey
		}
		return OrderKey{ItemID: raw}, nil
	}

	key := OrderKey{ItemID: raw[:idx], Size: PortionSize(raw[idx+1:])}
	if key.ItemID == "" {
		return OrderKey{}, ErrInvalidOrderKey
	}
	if !key.Size.Valid() {
		return OrderKey{}, fmt.Errorf("%w: %q", ErrInvalidPortionSize, raw[idx+1:])
	}
	return key, nil
}

func (k OrderKey) String() string {
	if k.Size == "" {
		return k.ItemID
	}
	return k.ItemID + ":" + string(k.Size)
}

func (k OrderKey) IsLegacy() bool {
	return k.Size == ""
}

func (k OrderKey) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *OrderKey) UnmarshalText(text []byte) error {
	parsed, err := ParseOrderKey(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// OrderMap aggregates confirmed demand. Values are always positive: a key whose
// quantity drops to zero or below is removed.
type OrderMap map[OrderKey]int

func (m OrderMap) Add(key OrderKey, delta int) {
	next := m[key] + delta
	if next <= 0 {
		delete(m, key)
		return
	}
	m[key] = next
}

func (m OrderMap) Merge(other OrderMap) {
	for key, qty := range other {
		m.Add(key, qty)
	}
}

// QuantityFor sums every key whose base item id matches, across all sizes.
func (m OrderMap) QuantityFor(itemID string) int {
	total := 0
	for key, qty := range m {
		if key.ItemID == itemID {
			total += qty
		}
	}
	return total
}

// Clear drops the bare key and every sized key of the item.
func (m OrderMap) Clear(itemID string) {
	for key := range m {
		if key.ItemID == itemID {
			delete(m, key)
		}
	}
}

func (m OrderMap) Total() int {
	total := 0
	for _, qty := range m {
		total += qty
	}
	return total
}

func (m OrderMap) Clone() OrderMap {
	out := make(OrderMap, len(m))
	for key, qty := range m {
		out[key] = qty
	}
	return out
}

// Breakdown lists the sized entries of one item in SMALL, REGULAR, LARGE order.
func (m OrderMap) Breakdown(itemID string) []SizeCount {
	var out []SizeCount
	for key, qty := range m {
		if key.ItemID == itemID && !key.IsLegacy() && qty > 0 {
			out = append(out, SizeCount{Size: key.Size, Quantity: qty})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return sizeOrder(out[i].Size) < sizeOrder(out[j].Size)
	})
	return out
}

// ValidateNew checks an incoming cart: every key sized, every quantity positive.
func (m OrderMap) ValidateNew() error {
	if len(m) == 0 {
		return ErrEmptyOrder
	}
	for key, qty := range m {
		if key.IsLegacy() {
			return fmt.Errorf("%w: %q has no portion size", ErrInvalidOrderKey, key.String())
		}
		if qty <= 0 {
			return fmt.Errorf("%w: %q", ErrInvalidOrderQuantity, key.String())
		}
	}
	return nil
}

func sizeOrder(s PortionSize) int {
	switch s {
	case SizeSmall:
		return 0
	case SizeRegular:
		return 1
	case SizeLarge:
		return 2
	}
	return 3
}

func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPreparing, StatusReady, StatusPickedUp:
		return true
	}
	return false
}

// CanTransitionTo allows only the single forward step PREPARING -> READY -> PICKED_UP.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	switch s {
	case StatusPreparing:
		return next == StatusReady
	case StatusReady:
		return next == StatusPickedUp
	}
	return false
}

type (
	SizeCount struct {
		Size     PortionSize `json:"size"`
		Quantity int         `json:"qty"`
	}

	ActiveOrder struct {
		ID           string            `json:"id"`
		Items        OrderMap          `json:"items"`
		ItemComments map[string]string `json:"itemComments,omitempty"`
		Status       OrderStatus       `json:"status"`
		Timestamp    int64             `json:"timestamp"`
	}

	ConfirmOrderRequest struct {
		Items        OrderMap          `json:"items" validate:"required,min=1"`
		ItemComments map[string]string `json:"itemComments"`
	}

	AddItemsRequest struct {
		Items OrderMap `json:"items" validate:"required,min=1"`
	}

	AdjustPreOrderRequest struct {
		Key   string `json:"key" validate:"required"`
		Delta int    `json:"delta" validate:"required"`
	}

	UpdateOrderStatusRequest struct {
		Status OrderStatus `json:"status" validate:"required,oneof=PREPARING READY PICKED_UP"`
	}

	MarkPreparedRequest struct {
		MenuItemID string `json:"menuItemId" validate:"required"`
		Quantity   int    `json:"quantity" validate:"required,min=1"`
	}

	OrderCountsResponse struct {
		Preparing int `json:"preparing"`
		Ready     int `json:"ready"`
		PickedUp  int `json:"pickedUp"`
	}

	PreOrdersResponse struct {
		Today    OrderMap `json:"today"`
		Tomorrow OrderMap `json:"tomorrow"`
	}

	KitchenQueueItem struct {
		MenuItemID string      `json:"menuItemId"`
		Name       string      `json:"name"`
		Category   Category    `json:"category"`
		Ordered    int         `json:"ordered"`
		Done       int         `json:"done"`
		Pending    int         `json:"pending"`
		Breakdown  []SizeCount `json:"breakdown"`
		PlanTarget int         `json:"planTarget"`
	}
)
