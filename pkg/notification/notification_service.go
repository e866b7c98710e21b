package notification

import (
	"SmartCanteen-Backend/domain"
	"SmartCanteen-Backend/entities"
	"SmartCanteen-Backend/internal/utils/events"
	"SmartCanteen-Backend/internal/utils/mailing"
	"context"
	"fmt"
	"html"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
)

type (
	NotificationService interface {
		Push(ctx context.Context, title, message string, notificationType domain.NotificationType, role domain.UserRole) (domain.Notification, error)
		GetFeed(ctx context.Context, role domain.UserRole) (domain.NotificationFeedResponse, error)
		MarkAllRead(ctx context.Context, role domain.UserRole) error
	}

	notificationService struct {
		notificationRepository NotificationRepository
		publisher              events.Publisher
		mailer                 mailing.Mailer
	}
)

func NewNotificationService(notificationRepository NotificationRepository, publisher events.Publisher, mailer mailing.Mailer) NotificationService {
	return &notificationService{
		notificationRepository: notificationRepository,
		publisher:              publisher,
		mailer:                 mailer,
	}
}

func (s *notificationService) Push(ctx context.Context, title, message string, notificationType domain.NotificationType, role domain.UserRole) (domain.Notification, error) {
	switch notificationType {
	case domain.NotificationInfo, domain.NotificationSuccess, domain.NotificationWarning, domain.NotificationAlert:
	default:
		return domain.Notification{}, domain.ErrInvalidNotificationType
	}
	if role != "" && !role.Valid() {
		return domain.Notification{}, domain.ErrInvalidRole
	}

	entity := &entities.Notification{
		ID:      uuid.New(),
		Title:   title,
		Message: message,
		SentAt:  time.Now().UnixMilli(),
		Type:    string(notificationType),
		Role:    string(role),
	}
	if err := s.notificationRepository.CreateNotification(ctx, entity); err != nil {
		return domain.Notification{}, err
	}
	if err := s.notificationRepository.TrimTo(ctx, domain.NotificationFeedLimit); err != nil {
		return domain.Notification{}, err
	}

	notification := toDomain(entity)

	if err := s.publisher.Publish(ctx, events.TypeNotification, notification.ID, notification); err != nil {
		log.Warnf("failed to publish notification %s: %v", notification.ID, err)
	}
	if notificationType == domain.NotificationAlert && s.mailer.Enabled() {
		body := fmt.Sprintf("<h3>%s</h3><p>%s</p>", html.EscapeString(title), html.EscapeString(message))
		if err := s.mailer.SendKitchenMail("[SmartCanteen] "+title, body); err != nil {
			log.Warnf("failed to mail alert %q: %v", title, err)
		}
	}

	return notification, nil
}

func (s *notificationService) GetFeed(ctx context.Context, role domain.UserRole) (domain.NotificationFeedResponse, error) {
	if !role.Valid() {
		return domain.NotificationFeedResponse{}, domain.ErrInvalidRole
	}

	latest, err := s.notificationRepository.GetLatest(ctx, domain.NotificationFeedLimit)
	if err != nil {
		return domain.NotificationFeedResponse{}, err
	}

	resp := domain.NotificationFeedResponse{Notifications: []domain.Notification{}}
	for _, entity := range latest {
		notification := toDomain(entity)
		if !notification.VisibleTo(role) {
			continue
		}
		resp.Notifications = append(resp.Notifications, notification)
		if !notification.IsRead {
			resp.Unread++
		}
	}
	return resp, nil
}

func (s *notificationService) MarkAllRead(ctx context.Context, role domain.UserRole) error {
	if !role.Valid() {
		return domain.ErrInvalidRole
	}
	return s.notificationRepository.MarkAllRead(ctx, string(role))
}

func toDomain(entity *entities.Notification) domain.Notification {
	return domain.Notification{
		ID:        entity.ID.String(),
		Title:     entity.Title,
		Message:   entity.Message,
		Timestamp: entity.SentAt,
		IsRead:    entity.IsRead,
		Type:      domain.NotificationType(entity.Type),
		Role:      domain.UserRole(entity.Role),
	}
}
