package services

import (
	"context"
	"strconv"

	"go.uber.org/zap"

	"stockroom/internal/domain"
	applog "stockroom/internal/log"
	"stockroom/internal/repos"
)

// Notifier receives an event after each successful mutation. Implementations
// must not fail the caller: errors are logged and dropped.
type Notifier interface {
	Notify(ctx context.Context, ev domain.AuditEvent)
}

// MultiNotifier fans an event out in order.
type MultiNotifier []Notifier

func (m MultiNotifier) Notify(ctx context.Context, ev domain.AuditEvent) {
	for _, n := range m {
		if n != nil {
			n.Notify(ctx, ev)
		}
	}
}

type nopNotifier struct{}

func (nopNotifier) Notify(context.Context, domain.AuditEvent) {}

func notifierOrNop(n Notifier) Notifier {
	if n == nil {
		return nopNotifier{}
	}
	return n
}

// AuditService persists events to the audit_logs table.
type AuditService struct {
	Repo  *repos.AuditRepo
	Clock Clock
}

func NewAuditService(repo *repos.AuditRepo, clock Clock) *AuditService {
	return &AuditService{Repo: repo, Clock: clock}
}

func (s *AuditService) Notify(ctx context.Context, ev domain.AuditEvent) {
	if ev.CreatedAt == "" {
		ev.CreatedAt = repos.Timestamp(nowOf(s.Clock))
	}
	if err := s.Repo.Insert(ctx, &ev); err != nil {
		applog.L().Error("audit.persist.fail", zap.Error(err),
			zap.String("event_action", string(ev.Action)), zap.String("model", ev.Model), zap.String("object_id", ev.ObjectID))
	}
}

func (s *AuditService) List(ctx context.Context, shopID int64, limit int) ([]domain.AuditEvent, error) {
	return s.Repo.List(ctx, shopID, limit)
}

// newEvent stamps an event for actor at the clock's current time.
func newEvent(clock Clock, actor domain.Actor, action domain.AuditAction, model string, objectID int64, details map[string]any) domain.AuditEvent {
	ev := domain.AuditEvent{
		UserID:    actor.UserID,
		ShopID:    actor.ShopID,
		Action:    action,
		Model:     model,
		Details:   details,
		IP:        actor.IP,
		CreatedAt: repos.Timestamp(nowOf(clock)),
	}
	if objectID != 0 {
		ev.ObjectID = strconv.FormatInt(objectID, 10)
	}
	return ev
}

// Record emits an event on behalf of callers outside this package, such as
// handlers reporting views.
func Record(ctx context.Context, n Notifier, clock Clock, actor domain.Actor, action domain.AuditAction, model string, objectID int64, details map[string]any) {
	notifierOrNop(n).Notify(ctx, newEvent(clock, actor, action, model, objectID, details))
}
