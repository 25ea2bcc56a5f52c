package services

import (
	"context"
	"fmt"

	"stockroom/internal/domain"
	"stockroom/internal/repos"
	"stockroom/internal/validate"
)

// AlertService exposes low-stock state. Recording a sale never changes it;
// IsAlerted moves only through SetThreshold.
type AlertService struct {
	Alerts *repos.AlertRepo
	Audit  Notifier
	Clock  Clock
}

func NewAlertService(alerts *repos.AlertRepo, audit Notifier, clock Clock) *AlertService {
	return &AlertService{Alerts: alerts, Audit: notifierOrNop(audit), Clock: clock}
}

func (s *AlertService) List(ctx context.Context, shopID int64) ([]domain.StockAlert, error) {
	return s.Alerts.List(ctx, shopID)
}

// SetThreshold updates the threshold and, when isAlerted is non-nil, the latch.
func (s *AlertService) SetThreshold(ctx context.Context, actor domain.Actor, productID int64, threshold int, isAlerted *bool) (domain.StockAlert, error) {
	if !validate.Threshold(threshold) {
		return domain.StockAlert{}, fmt.Errorf("%w: threshold must be zero or more", domain.ErrValidation)
	}
	cur, err := s.Alerts.Get(ctx, actor.ShopID, productID)
	if err != nil {
		return domain.StockAlert{}, err
	}
	alerted := cur.IsAlerted
	if isAlerted != nil {
		alerted = *isAlerted
	}
	if err := s.Alerts.Upsert(ctx, actor.ShopID, productID, threshold, alerted); err != nil {
		return domain.StockAlert{}, err
	}
	out, err := s.Alerts.Get(ctx, actor.ShopID, productID)
	if err != nil {
		return domain.StockAlert{}, err
	}
	s.Audit.Notify(ctx, newEvent(s.Clock, actor, domain.ActionUpdate, "StockAlert", productID, map[string]any{
		"product":    out.ProductName,
		"threshold":  out.Threshold,
		"is_alerted": out.IsAlerted,
	}))
	return out, nil
}
