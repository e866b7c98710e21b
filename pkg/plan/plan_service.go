package plan

import (
	"SmartCanteen-Backend/domain"
	"SmartCanteen-Backend/internal/utils/events"
	"SmartCanteen-Backend/internal/utils/mailing"
	"SmartCanteen-Backend/internal/utils/storage"
	"SmartCanteen-Backend/pkg/menu"
	"SmartCanteen-Backend/pkg/notification"
	"SmartCanteen-Backend/pkg/state"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"sort"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"
)

type (
	PlanService interface {
		Apply(ctx context.Context, req domain.ApplyPlanRequest) (domain.AppliedPlan, error)
		Current(ctx context.Context) (domain.AppliedPlan, error)
		// PlannedQuantity returns the plan quantity for the item, or its base quantity
		// when the current plan has no entry. The bool reports whether the plan had one.
		PlannedQuantity(ctx context.Context, itemID string) (int, bool, error)
	}

	planService struct {
		stateService        state.StateService
		menuRepository      menu.MenuRepository
		notificationService notification.NotificationService
		publisher           events.Publisher
		s3                  storage.AwsS3
		mailer              mailing.Mailer
		now                 func() time.Time
	}
)

func NewPlanService(
	stateService state.StateService,
	menuRepository menu.MenuRepository,
	notificationService notification.NotificationService,
	publisher events.Publisher,
	s3 storage.AwsS3,
	mailer mailing.Mailer,
) PlanService {
	return &planService{
		stateService:        stateService,
		menuRepository:      menuRepository,
		notificationService: notificationService,
		publisher:           publisher,
		s3:                  s3,
		mailer:              mailer,
		now:                 time.Now,
	}
}

func (s *planService) Apply(ctx context.Context, req domain.ApplyPlanRequest) (domain.AppliedPlan, error) {
	items, err := req.Resolve()
	if err != nil {
		return domain.AppliedPlan{}, err
	}

	applied := domain.AppliedPlan{
		Items:     items,
		AppliedAt: s.now().UTC(),
	}
	if err := s.stateService.Save(ctx, state.DocProductionPlan, applied); err != nil {
		return domain.AppliedPlan{}, err
	}

	s.announce(ctx, applied)
	return applied, nil
}

// announce runs the side effects of a committed plan. None of them can undo it.
func (s *planService) announce(ctx context.Context, applied domain.AppliedPlan) {
	if _, err := s.notificationService.Push(
		ctx,
		"Plan Applied",
		"New production plan synchronized with the kitchen.",
		domain.NotificationSuccess,
		domain.RoleStaff,
	); err != nil {
		log.Warnf("failed to notify plan applied: %v", err)
	}

	if err := s.publisher.Publish(ctx, events.TypePlanApplied, "production_plan", applied); err != nil {
		log.Warnf("failed to publish plan applied: %v", err)
	}

	if s.s3.Enabled() {
		snapshot, err := json.Marshal(applied)
		if err == nil {
			key := fmt.Sprintf("plans/plan-%s.json", applied.AppliedAt.Format("20060102T150405Z"))
			_, err = s.s3.UploadBytes(ctx, key, storage.ContentTypeJSON, snapshot)
		}
		if err != nil {
			log.Warnf("failed to store plan snapshot: %v", err)
		}
	}

	if s.mailer.Enabled() {
		if err := s.mailer.SendKitchenMail("[SmartCanteen] Plan Applied", planSummary(applied)); err != nil {
			log.Warnf("failed to mail plan summary: %v", err)
		}
	}
}

func planSummary(applied domain.AppliedPlan) string {
	ids := make([]string, 0, len(applied.Items))
	for id := range applied.Items {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var b strings.Builder
	b.WriteString("<h3>Production plan</h3><table><tr><th>Item</th><th>Qty</th><th>S</th><th>R</th><th>L</th></tr>")
	for _, id := range ids {
		item := applied.Items[id]
		fmt.Fprintf(&b, "<tr><td>%s</td><td>%d</td><td>%d</td><td>%d</td><td>%d</td></tr>",
			html.EscapeString(id), item.Quantity,
			item.Distribution.Small, item.Distribution.Regular, item.Distribution.Large)
	}
	b.WriteString("</table>")
	return b.String()
}

func (s *planService) Current(ctx context.Context) (domain.AppliedPlan, error) {
	applied := domain.AppliedPlan{Items: domain.ProductionPlan{}}
	if err := s.stateService.Load(ctx, state.DocProductionPlan, &applied); err != nil {
		return domain.AppliedPlan{}, err
	}
	if applied.Items == nil {
		applied.Items = domain.ProductionPlan{}
	}
	return applied, nil
}

func (s *planService) PlannedQuantity(ctx context.Context, itemID string) (int, bool, error) {
	item, err := s.menuRepository.GetMenuItemByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, false, domain.ErrMenuItemNotFound
		}
		return 0, false, err
	}

	applied, err := s.Current(ctx)
	if err != nil {
		return 0, false, err
	}
	quantity, fromPlan := applied.Items.QuantityFor(itemID, item.BaseQuantity)
	return quantity, fromPlan, nil
}
