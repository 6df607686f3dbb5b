package alert

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"oip/dpnotify/pkg/logger"
)

// ErrInvalidSnapshot 快照缺少订单 ID
var ErrInvalidSnapshot = errors.New("invalid order snapshot")

// Notification 待投递的邮件通知
type Notification struct {
	OrderID string   `json:"order_id"`
	Fields  []string `json:"fields"`
	Key     string   `json:"key"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Text    string   `json:"text"`
}

// Dispatcher 异步投递通知（入队即返回，不等待发送结果）
type Dispatcher interface {
	Dispatch(ctx context.Context, n *Notification) error
}

// OutcomeKind 处理结果类型
type OutcomeKind int

const (
	NoRelevantChange OutcomeKind = iota
	DuplicateIgnored
	Dispatched
)

func (k OutcomeKind) String() string {
	switch k {
	case NoRelevantChange:
		return "NoRelevantChange"
	case DuplicateIgnored:
		return "DuplicateIgnored"
	case Dispatched:
		return "Dispatched"
	default:
		return fmt.Sprintf("OutcomeKind(%d)", int(k))
	}
}

// Message 返回给上游的状态文案
func (k OutcomeKind) Message() string {
	switch k {
	case NoRelevantChange:
		return "No updates to send"
	case DuplicateIgnored:
		return "Duplicate ignored"
	default:
		return "OK"
	}
}

// Outcome 单次快照的处理结果
type Outcome struct {
	Kind          OutcomeKind
	ChangedFields []Field
	Key           string
	Recipients    []string
}

// Notifier 状态变更通知器
// 持有字段缓存与去重集合，同一时刻只处理一个快照
type Notifier struct {
	mu         sync.Mutex
	cache      FieldCache
	notified   NotifiedSet
	dispatcher Dispatcher
	recipients RecipientBook
	keyFormat  KeyFormat
	logger     logger.Logger
}

// NewNotifier 创建通知器
func NewNotifier(
	cache FieldCache,
	notified NotifiedSet,
	dispatcher Dispatcher,
	recipients RecipientBook,
	keyFormat KeyFormat,
	log logger.Logger,
) *Notifier {
	if keyFormat == "" {
		keyFormat = KeyFormatTagged
	}
	return &Notifier{
		cache:      cache,
		notified:   notified,
		dispatcher: dispatcher,
		recipients: recipients,
		keyFormat:  keyFormat,
		logger:     log,
	}
}

// HandleSnapshot 处理一次订单快照
// 投递失败只记录日志，不回滚去重集合和字段缓存
func (n *Notifier) HandleSnapshot(ctx context.Context, snap *OrderSnapshot) (*Outcome, error) {
	if snap == nil || snap.ID == "" {
		return nil, ErrInvalidSnapshot
	}
	ctx = logger.WithValue(ctx, logger.KeyOrderID, snap.ID)

	n.mu.Lock()
	defer n.mu.Unlock()

	// 1. 读取上次通知时的字段值
	prev, _, err := n.cache.Get(ctx, snap.ID)
	if err != nil {
		return nil, fmt.Errorf("load field cache: %w", err)
	}

	// 2. 计算变为 Done 的字段
	changed := ChangedFields(prev, snap.Fields)
	if len(changed) == 0 {
		n.logger.Infof(ctx, "[Notifier] No relevant field changes for order %s", snap.ID)
		return &Outcome{Kind: NoRelevantChange}, nil
	}

	// 3. 去重（检查并插入）
	key := TransitionKey(n.keyFormat, snap.ID, changed, snap.Fields)
	added, err := n.notified.Add(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("record transition key: %w", err)
	}
	if !added {
		n.logger.Infof(ctx, "[Notifier] Duplicate update ignored for %s", key)
		return &Outcome{Kind: DuplicateIgnored, ChangedFields: changed, Key: key}, nil
	}

	// 4. 覆盖字段缓存（Key 已提交，缓存写入失败不中断投递）
	if err := n.cache.Set(ctx, snap.ID, snap.Fields); err != nil {
		n.logger.Errorf(ctx, "[Notifier] Update field cache failed for order %s: %v", snap.ID, err)
	}

	// 5. 组装并投递通知
	recipients := n.recipients.Recipients(changed)
	notification := &Notification{
		OrderID: snap.ID,
		Fields:  fieldKeysOf(changed),
		Key:     key,
		To:      recipients,
		Subject: Subject(snap.ID, changed),
		Text:    Body(snap),
	}
	if err := n.dispatcher.Dispatch(ctx, notification); err != nil {
		n.logger.Errorf(ctx, "[Notifier] Dispatch failed for order %s: %v", snap.ID, err)
	} else {
		n.logger.Infof(ctx, "[Notifier] Notification dispatched for %s, recipients: %d", key, len(recipients))
	}

	return &Outcome{
		Kind:          Dispatched,
		ChangedFields: changed,
		Key:           key,
		Recipients:    recipients,
	}, nil
}

func fieldKeysOf(fields []Field) []string {
	keys := make([]string, 0, len(fields))
	for _, f := range fields {
		keys = append(keys, f.Key())
	}
	return keys
}
