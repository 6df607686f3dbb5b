package mysql

import (
	"context"
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"oip/dpnotify/internal/entity"
)

// NotificationDAO 通知记录数据访问对象
type NotificationDAO struct {
	db *gorm.DB
}

// NewNotificationDAO 创建 NotificationDAO 实例
func NewNotificationDAO(dsn string) (*NotificationDAO, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &NotificationDAO{db: db}, nil
}

// AutoMigrate 创建/更新表结构
func (dao *NotificationDAO) AutoMigrate(ctx context.Context) error {
	if err := dao.db.WithContext(ctx).AutoMigrate(&entity.Notification{}); err != nil {
		return fmt.Errorf("failed to migrate notifications: %w", err)
	}
	return nil
}

// Create 插入通知记录
func (dao *NotificationDAO) Create(ctx context.Context, n *entity.Notification) error {
	if err := dao.db.WithContext(ctx).Create(n).Error; err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

// UpdateStatus 更新投递结果
// 参数：
//   - id: 通知记录 ID
//   - status: SENT/FAILED
//   - errorMsg: 错误消息（失败时）
func (dao *NotificationDAO) UpdateStatus(ctx context.Context, id string, status string, errorMsg string) error {
	updates := map[string]interface{}{
		"status": status,
	}
	if errorMsg != "" {
		updates["error_message"] = errorMsg
	}

	result := dao.db.WithContext(ctx).
		Model(&entity.Notification{}).
		Where("id = ?", id).
		Updates(updates)

	if result.Error != nil {
		return fmt.Errorf("failed to update notification: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("notification not found: %s", id)
	}
	return nil
}

// ListByOrder 查询订单的通知记录（按时间倒序）
func (dao *NotificationDAO) ListByOrder(ctx context.Context, orderID string, limit int) ([]*entity.Notification, error) {
	var list []*entity.Notification
	result := dao.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at DESC").
		Limit(limit).
		Find(&list)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", result.Error)
	}
	return list, nil
}

// Close 关闭数据库连接
func (dao *NotificationDAO) Close() error {
	sqlDB, err := dao.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
