package notification

import (
	"SmartCanteen-Backend/domain"
	"SmartCanteen-Backend/entities"
	"SmartCanteen-Backend/internal/utils/events"
	"context"
	"fmt"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepository struct {
	items []*entities.Notification
}

func (f *fakeRepository) CreateNotification(_ context.Context, n *entities.Notification) error {
	f.items = append(f.items, n)
	return nil
}

func (f *fakeRepository) sorted() []*entities.Notification {
	out := append([]*entities.Notification(nil), f.items...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].SentAt > out[j].SentAt })
	return out
}

func (f *fakeRepository) GetLatest(_ context.Context, limit int) ([]*entities.Notification, error) {
	out := f.sorted()
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeRepository) TrimTo(_ context.Context, keep int) error {
	out := f.sorted()
	if len(out) > keep {
		out = out[:keep]
	}
	f.items = out
	return nil
}

func (f *fakeRepository) MarkAllRead(_ context.Context, role string) error {
	for _, n := range f.items {
		if n.Role == "" || n.Role == role {
			n.IsRead = true
		}
	}
	return nil
}

type fakeMailer struct {
	subjects []string
}

func (m *fakeMailer) Enabled() bool { return true }

func (m *fakeMailer) SendKitchenMail(subject string, _ string) error {
	m.subjects = append(m.subjects, subject)
	return nil
}

func TestPush_CapsFeedAtLimit(t *testing.T) {
	ctx := context.Background()
	repo := &fakeRepository{}
	svc := NewNotificationService(repo, events.NoopPublisher(), &fakeMailer{})

	for i := 0; i < domain.NotificationFeedLimit+5; i++ {
		_, err := svc.Push(ctx, fmt.Sprintf("n%d", i), "msg", domain.NotificationInfo, "")
		require.NoError(t, err)
	}
	assert.Len(t, repo.items, domain.NotificationFeedLimit)
}

func TestPush_RejectsUnknownType(t *testing.T) {
	svc := NewNotificationService(&fakeRepository{}, events.NoopPublisher(), &fakeMailer{})
	_, err := svc.Push(context.Background(), "t", "m", "LOUD", domain.RoleAdmin)
	assert.ErrorIs(t, err, domain.ErrInvalidNotificationType)
}

func TestPush_MailsAlerts(t *testing.T) {
	mailer := &fakeMailer{}
	svc := NewNotificationService(&fakeRepository{}, events.NoopPublisher(), mailer)

	_, err := svc.Push(context.Background(), "Order Ready", "ORD-1", domain.NotificationSuccess, domain.RoleStudent)
	require.NoError(t, err)
	_, err = svc.Push(context.Background(), "Stock Low", "rice", domain.NotificationAlert, domain.RoleStaff)
	require.NoError(t, err)

	assert.Equal(t, []string{"[SmartCanteen] Stock Low"}, mailer.subjects)
}

func TestGetFeed_FiltersByRole(t *testing.T) {
	ctx := context.Background()
	repo := &fakeRepository{}
	svc := NewNotificationService(repo, events.NoopPublisher(), &fakeMailer{})

	repo.items = []*entities.Notification{
		{Title: "everyone", SentAt: 1, Type: string(domain.NotificationInfo)},
		{Title: "staff", SentAt: 2, Type: string(domain.NotificationSuccess), Role: string(domain.RoleStaff)},
		{Title: "student", SentAt: 3, Type: string(domain.NotificationSuccess), Role: string(domain.RoleStudent)},
	}

	feed, err := svc.GetFeed(ctx, domain.RoleStaff)
	require.NoError(t, err)
	require.Len(t, feed.Notifications, 2)
	assert.Equal(t, "staff", feed.Notifications[0].Title)
	assert.Equal(t, "everyone", feed.Notifications[1].Title)
	assert.Equal(t, 2, feed.Unread)

	require.NoError(t, svc.MarkAllRead(ctx, domain.RoleStaff))
	feed, err = svc.GetFeed(ctx, domain.RoleStudent)
	require.NoError(t, err)
	assert.Equal(t, 1, feed.Unread)

	_, err = svc.GetFeed(ctx, "GUEST")
	assert.ErrorIs(t, err, domain.ErrInvalidRole)
}
