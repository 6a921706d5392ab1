package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/smartcart/smartcart-backend/internal/app/model"
	"github.com/smartcart/smartcart-backend/internal/app/repository"
	"github.com/smartcart/smartcart-backend/pkg/logger"
	appRedis "github.com/smartcart/smartcart-backend/pkg/redis"
	"gorm.io/gorm"
)

var ErrNotificationNotFound = errors.New("notification not found")

const unreadCountCacheTTL = 30 * time.Second

type NotificationService interface {
	// List returns the user's notifications and marks them all read.
	List(ctx context.Context, userID uint, limit int) ([]model.Notification, error)
	UnreadCount(ctx context.Context, userID uint) (int64, error)
	Delete(userID, notificationID uint) error
}

type notificationService struct {
	notificationRepo repository.NotificationRepository
}

func NewNotificationService(notificationRepo repository.NotificationRepository) NotificationService {
	return &notificationService{notificationRepo: notificationRepo}
}

func unreadCountCacheKey(userID uint) string {
	return fmt.Sprintf("notifications:unread:%d", userID)
}

func (s *notificationService) List(ctx context.Context, userID uint, limit int) ([]model.Notification, error) {
	notifications, err := s.notificationRepo.FindByUser(userID, limit)
	if err != nil {
		return nil, err
	}

	// Viewing the list counts as reading everything in it.
	if err := s.notificationRepo.MarkAllRead(userID); err != nil {
		logger.Error("Failed to mark notifications read", err, map[string]interface{}{
			"user_id": userID,
		})
	} else {
		s.invalidateUnreadCache(ctx, userID)
	}

	return notifications, nil
}

// UnreadCount serves from the Redis cache when possible; the badge
// count is polled frequently and tolerates slight staleness.
func (s *notificationService) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	if client := appRedis.GetClient(); client != nil {
		if cached, err := client.Get(ctx, unreadCountCacheKey(userID)).Int64(); err == nil {
			return cached, nil
		}
	}

	count, err := s.notificationRepo.CountUnread(userID)
	if err != nil {
		return 0, err
	}

	if client := appRedis.GetClient(); client != nil {
		if err := client.Set(ctx, unreadCountCacheKey(userID), count, unreadCountCacheTTL).Err(); err != nil {
			logger.Debug("Failed to cache unread count", map[string]interface{}{
				"user_id": userID,
				"error":   err.Error(),
			})
		}
	}
	return count, nil
}

func (s *notificationService) invalidateUnreadCache(ctx context.Context, userID uint) {
	if client := appRedis.GetClient(); client != nil {
		if err := client.Del(ctx, unreadCountCacheKey(userID)).Err(); err != nil {
			logger.Debug("Failed to invalidate unread count cache", map[string]interface{}{
				"user_id": userID,
				"error":   err.Error(),
			})
		}
	}
}

func (s *notificationService) Delete(userID, notificationID uint) error {
	notification, err := s.notificationRepo.FindByID(notificationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotificationNotFound
		}
		return err
	}
	if notification.UserID != userID {
		return ErrNotificationNotFound
	}

	return s.notificationRepo.Delete(notificationID)
}
