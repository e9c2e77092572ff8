package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/parkrose/maintenance-service/internal/models"
	"github.com/parkrose/maintenance-service/internal/repositories"
	"github.com/parkrose/maintenance-service/internal/utils"
)

var (
	seedPropertyID = uuid.MustParse("33333333-3333-3333-3333-333333333333")
	seedManagerID  = uuid.MustParse("44444444-4444-4444-4444-444444444444")
	seedOnCallID   = uuid.MustParse("55555555-5555-5555-5555-555555555555")
	seedPlumberID  = uuid.MustParse("66666666-6666-6666-6666-666666666666")
	seedElecID     = uuid.MustParse("77777777-7777-7777-7777-777777777777")
)

/*
SeedAllTestData populates a development database with one property, two
staff members (default contact plus an on-call rotation), two vendors,
an escalation policy and an on-call schedule. Idempotent: the sentinel
property ID short-circuits a second run.
*/
func SeedAllTestData(
	ctx context.Context,
	propRepo repositories.PropertyRepository,
	staffRepo repositories.StaffRepository,
	vendorRepo repositories.VendorRepository,
	policyRepo repositories.EscalationPolicyRepository,
	schedRepo repositories.OnCallScheduleRepository,
) error {
	if existing, err := propRepo.GetByID(ctx, seedPropertyID); err != nil {
		return fmt.Errorf("check existing seed property: %w", err)
	} else if existing != nil {
		utils.Logger.Info("maintenance-service: seed data already present; skipping seeding")
		return nil
	}

	prop := &models.Property{
		ID:          seedPropertyID,
		Name:        "Demo Gardens",
		Address:     "4200 NE Prescott St",
		City:        "Portland",
		State:       "OR",
		ZipCode:     "97218",
		ServiceArea: "portland-ne",
		TimeZone:    "America/Los_Angeles",
	}
	if err := propRepo.Create(ctx, prop); err != nil {
		return fmt.Errorf("seed property: %w", err)
	}

	manager := &models.Staff{
		ID:               seedManagerID,
		Name:             "Dana Whitfield",
		Phone:            "+15035550142",
		Email:            "dana.whitfield@example.com",
		IsDefaultContact: true,
	}
	onCall := &models.Staff{
		ID:    seedOnCallID,
		Name:  "Marcus Lee",
		Phone: "+15035550177",
		Email: "marcus.lee@example.com",
	}
	for _, st := range []*models.Staff{manager, onCall} {
		if err := staffRepo.Create(ctx, st); err != nil {
			return fmt.Errorf("seed staff %s: %w", st.Name, err)
		}
	}

	vendors := []*models.Vendor{
		{
			ID:             seedPlumberID,
			Name:           "Rose City Plumbing",
			Specialty:      "plumbing",
			Availability:   models.VendorAvailable,
			ServiceAreas:   []string{"portland-ne", "portland-se"},
			Certifications: []string{"OR-PLB-2214"},
			Phone:          "+15035550191",
			Email:          "dispatch@rosecityplumbing.example.com",
		},
		{
			ID:           seedElecID,
			Name:         "Cascade Electric",
			Specialty:    "electrical",
			Availability: models.VendorAvailable,
			ServiceAreas: []string{"portland-ne"},
			Phone:        "+15035550186",
			Email:        "jobs@cascadeelectric.example.com",
		},
	}
	for _, v := range vendors {
		if err := vendorRepo.Create(ctx, v); err != nil {
			return fmt.Errorf("seed vendor %s: %w", v.Name, err)
		}
	}

	policy := &models.EscalationPolicy{
		ID:         uuid.New(),
		PropertyID: seedPropertyID,
		Name:       "Demo Gardens standard escalation",
		Rules: []models.EscalationPolicyRule{
			{ID: uuid.New(), RuleOrder: 0, ThresholdMin: 30, Action: models.EscalationActionNotify, NotifyUserID: seedManagerID},
			{ID: uuid.New(), RuleOrder: 1, ThresholdMin: 120, Action: models.EscalationActionEscalate, NotifyUserID: seedManagerID},
			{ID: uuid.New(), RuleOrder: 2, ThresholdMin: 480, Action: models.EscalationActionEscalate, NotifyUserID: seedManagerID},
		},
	}
	if err := policyRepo.Create(ctx, policy); err != nil {
		return fmt.Errorf("seed escalation policy: %w", err)
	}

	// One week of alternating 12h shifts starting at the last midnight UTC.
	now := time.Now().UTC()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	sched := &models.OnCallSchedule{
		ID:         uuid.New(),
		PropertyID: seedPropertyID,
		Name:       "Demo Gardens weekly rotation",
	}
	for i := 0; i < 14; i++ {
		userID := seedOnCallID
		if i%2 == 1 {
			userID = seedManagerID
		}
		sched.Rotations = append(sched.Rotations, models.OnCallRotation{
			ID:       uuid.New(),
			UserID:   userID,
			StartsAt: dayStart.Add(time.Duration(i) * 12 * time.Hour),
			EndsAt:   dayStart.Add(time.Duration(i+1) * 12 * time.Hour),
		})
	}
	if err := schedRepo.Create(ctx, sched); err != nil {
		return fmt.Errorf("seed on-call schedule: %w", err)
	}

	utils.Logger.Info("maintenance-service: seeding completed successfully.")
	return nil
}
