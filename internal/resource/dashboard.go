package resource

import (
	"context"
	"strings"
	"time"

	"github.com/Makepad-fr/nexo/internal/model"
)

// Summary is the admin landing page.
type Summary struct {
	TodayConsultations   int
	ActiveContracts      int
	PendingInstallations int
	LowStock             []model.Inventory
	InventoryTotal       int
}

// Dashboard pulls whole collections and counts locally; the backend has no
// aggregate endpoint.
func (s *Set) Dashboard(ctx context.Context, now time.Time) (Summary, error) {
	var sum Summary

	cons, err := s.Consultations.List(ctx, All)
	if err != nil {
		return sum, err
	}
	today := now.Format("2006-01-02")
	for _, c := range cons {
		if strings.HasPrefix(c.ConsultationDate, today) {
			sum.TodayConsultations++
		}
	}

	contracts, err := s.Contracts.List(ctx, All)
	if err != nil {
		return sum, err
	}
	for _, c := range contracts {
		if c.Active() {
			sum.ActiveContracts++
		}
	}

	jobs, err := s.Installations.List(ctx, Filter{Status: model.JobPending, Limit: All.Limit})
	if err != nil {
		return sum, err
	}
	sum.PendingInstallations = len(jobs)

	inv, err := s.Inventory.List(ctx, All)
	if err != nil {
		return sum, err
	}
	sum.InventoryTotal = len(inv)
	for _, i := range inv {
		if i.LowStock() {
			sum.LowStock = append(sum.LowStock, i)
		}
	}
	return sum, nil
}
