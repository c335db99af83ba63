package workspace

import (
	"context"
	"fmt"
	"strconv"

	"github.com/rpggio/estimator/internal/backend"
	"github.com/rpggio/estimator/internal/domain/activity"
	"github.com/rpggio/estimator/internal/domain/project"
	"github.com/rpggio/estimator/internal/domain/takeoff"
)

// RunAudit compares the takeoff against the specifications. On failure the
// report holds a single error row alongside the returned error.
func (s *Service) RunAudit(ctx context.Context, projectID string) ([]backend.AuditIssue, error) {
	proj, err := s.store.Get(projectID)
	if err != nil {
		return nil, err
	}

	report, err := s.backend.Audit(ctx, projectID, backend.AuditRequest{
		Takeoff:              proj.Takeoff,
		DivisionDescriptions: proj.DivisionDescriptions,
		SpecIndex:            proj.SpecIndex,
	})
	if err != nil {
		s.setStatus(ctx, projectID, activity.TypeAudit, fmt.Sprintf("Audit failed: %s", errorText(err)), true)
		return []backend.AuditIssue{{
			Division: "Error",
			Issue:    "Audit Failed",
			Detail:   errorText(err),
			Page:     "N/A",
		}}, fmt.Errorf("auditing: %w", err)
	}
	s.record(ctx, projectID, activity.TypeAudit, fmt.Sprintf("Audit found %d issue(s).", len(report)), false)
	return report, nil
}

// Pricing fetches a price suggestion for an item.
func (s *Service) Pricing(ctx context.Context, projectID string, itemID int64, location string) (backend.PricingIntel, error) {
	item, err := s.findItem(projectID, itemID)
	if err != nil {
		return backend.PricingIntel{}, err
	}
	intel, err := s.backend.PricingIntelligence(ctx, item.Description, location)
	if err != nil {
		s.record(ctx, projectID, activity.TypePricing, fmt.Sprintf("Pricing lookup failed for %q: %s", item.Description, errorText(err)), true)
		return backend.PricingIntel{}, err
	}
	return intel, nil
}

// AcceptPrice sets an item's unit cost to the chosen price and teaches the
// backend the correction. Learning failures are logged only.
func (s *Service) AcceptPrice(ctx context.Context, projectID string, itemID int64, price, suggested float64) (takeoff.Item, error) {
	item, applied, err := s.UpdateItem(ctx, projectID, itemID, string(takeoff.FieldUnitCost), strconv.FormatFloat(price, 'f', -1, 64))
	if err != nil {
		return takeoff.Item{}, err
	}
	if !applied {
		return takeoff.Item{}, fmt.Errorf("%w: unit cost %v", takeoff.ErrInvalidValue, price)
	}

	correction := backend.PriceCorrection{
		ItemID:         itemID,
		OriginalPrice:  suggested,
		CorrectedPrice: price,
		Reason:         "manual_adjustment",
	}
	if err := s.backend.RecordPriceCorrection(ctx, projectID, correction); err != nil {
		s.logger.Warn("failed to record price correction", "project_id", projectID, "item_id", itemID, "error", err)
	}
	s.record(ctx, projectID, activity.TypePricing, fmt.Sprintf("Unit cost of %q set to %.2f.", item.Description, price), false)
	return item, nil
}

// RecordOutcome reports the bid result and stores it on the project. A
// winning bid is only kept for bids lost on price.
func (s *Service) RecordOutcome(ctx context.Context, projectID string, outcome project.Outcome) (project.Project, error) {
	switch outcome.Kind {
	case project.OutcomeWon, project.OutcomeLostPrice, project.OutcomeLostOther, project.OutcomePending:
	default:
		return project.Project{}, fmt.Errorf("%w: %q", ErrInvalidOutcome, outcome.Kind)
	}
	if outcome.Kind != project.OutcomeLostPrice {
		outcome.WinningBid = nil
	}
	if _, err := s.store.Get(projectID); err != nil {
		return project.Project{}, err
	}

	if err := s.backend.RecordOutcome(ctx, projectID, outcome); err != nil {
		s.record(ctx, projectID, activity.TypeOutcome, fmt.Sprintf("Failed to record outcome: %s", errorText(err)), true)
		return project.Project{}, err
	}
	updated, err := s.store.Update(ctx, projectID, func(p project.Project) project.Project {
		o := outcome
		p.Outcome = &o
		return p
	})
	if err != nil {
		return project.Project{}, err
	}
	s.record(ctx, projectID, activity.TypeOutcome, fmt.Sprintf("Outcome recorded: %s.", outcome.Kind), false)
	return updated, nil
}

// Analytics returns the learning dashboard data.
func (s *Service) Analytics(ctx context.Context, days int, region string) backend.Analytics {
	return s.backend.Analytics(ctx, days, region)
}

func (s *Service) findItem(projectID string, itemID int64) (takeoff.Item, error) {
	proj, err := s.store.Get(projectID)
	if err != nil {
		return takeoff.Item{}, err
	}
	idx := takeoff.IndexOf(proj.Takeoff, itemID)
	if idx < 0 {
		return takeoff.Item{}, takeoff.ErrItemNotFound
	}
	return proj.Takeoff[idx], nil
}
