package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/parkrose/maintenance-service/internal/config"
	"github.com/parkrose/maintenance-service/internal/constants"
	"github.com/parkrose/maintenance-service/internal/models"
	"github.com/parkrose/maintenance-service/internal/repositories"
	"github.com/parkrose/maintenance-service/internal/utils"
)

/*
SelectApplicableRule evaluates a policy's ordered rules against the
elapsed time since the SLA trigger. It returns the LAST rule whose
threshold has elapsed and that has not yet fired (rule_order strictly
past the dedup cursor), or nil when nothing is due. When several rules
became due since the previous sweep only the most severe one fires;
skipped intermediates are superseded, not queued.

Pure function, safe to call repeatedly with the same inputs.
*/
func SelectApplicableRule(
	rules []models.EscalationPolicyRule,
	elapsed time.Duration,
	lastFiredRuleOrder int,
) *models.EscalationPolicyRule {
	var due *models.EscalationPolicyRule
	for i := range rules {
		r := &rules[i]
		if r.RuleOrder <= lastFiredRuleOrder {
			continue
		}
		if elapsed >= r.Threshold() {
			due = r
		}
	}
	return due
}

/*
EscalationService runs the periodic sweep over unresponded SLA records.
Each due rule fires at most once per work order: the persisted
last_fired_rule_order cursor is advanced with a compare-and-set before
any notification goes out, so a second sweep racing on the same record
loses the CAS and stays silent.
*/
type EscalationService struct {
	cfg        *config.Config
	woRepo     repositories.WorkOrderRepository
	slaRepo    repositories.SLARepository
	policyRepo repositories.EscalationPolicyRepository
	staffRepo  repositories.StaffRepository
	propRepo   repositories.PropertyRepository
	onCall     *OnCallService
	notifier   Notifier
}

func NewEscalationService(
	cfg *config.Config,
	woRepo repositories.WorkOrderRepository,
	slaRepo repositories.SLARepository,
	policyRepo repositories.EscalationPolicyRepository,
	staffRepo repositories.StaffRepository,
	propRepo repositories.PropertyRepository,
	onCall *OnCallService,
	notifier Notifier,
) *EscalationService {
	return &EscalationService{
		cfg:        cfg,
		woRepo:     woRepo,
		slaRepo:    slaRepo,
		policyRepo: policyRepo,
		staffRepo:  staffRepo,
		propRepo:   propRepo,
		onCall:     onCall,
		notifier:   notifier,
	}
}

// RunEscalationSweep is the cron entrypoint. Per-record failures are
// logged and skipped so one bad row never stalls the whole sweep.
func (s *EscalationService) RunEscalationSweep(ctx context.Context) error {
	utils.Logger.Debug("Running escalation sweep...")

	now := time.Now().UTC()
	pending, err := s.slaRepo.ListUnresponded(ctx)
	if err != nil {
		return err
	}

	for _, sla := range pending {
		if err := s.sweepOne(ctx, sla, now); err != nil {
			utils.Logger.WithError(err).Errorf("Escalation sweep failed for work order %s", sla.WorkOrderID)
		}
	}
	return nil
}

func (s *EscalationService) sweepOne(ctx context.Context, sla *models.WorkOrderSLA, now time.Time) error {
	// Re-check live status: a quote or assignment may have landed since
	// the SLA record was listed.
	wo, err := s.woRepo.GetByID(ctx, sla.WorkOrderID)
	if err != nil {
		return err
	}
	if wo == nil || wo.Status != models.WorkOrderStatusOpen {
		return nil
	}

	policy, err := s.policyRepo.GetByPropertyID(ctx, sla.PropertyID)
	if err != nil {
		return err
	}
	if policy == nil {
		utils.Logger.Debugf("No escalation policy for property %s, skipping work order %s",
			sla.PropertyID, sla.WorkOrderID)
		return nil
	}

	rule := SelectApplicableRule(policy.Rules, sla.Elapsed(now), sla.LastFiredRuleOrder)
	if rule == nil {
		return nil
	}

	fired, err := s.slaRepo.MarkRuleFired(ctx, sla.WorkOrderID, rule.RuleOrder, sla.LastFiredRuleOrder)
	if err != nil {
		return err
	}
	if !fired {
		// A concurrent sweep advanced the cursor first.
		return nil
	}

	target, err := s.resolveTarget(ctx, sla, rule, now)
	if err != nil {
		return err
	}

	subject := fmt.Sprintf("Maintenance escalation: %s", wo.Title)
	body := fmt.Sprintf(
		"Work order %s at property %s has had no response for %s (rule %d, %s).",
		wo.ID, s.propertyName(ctx, sla), sla.Elapsed(now).Round(time.Minute), rule.RuleOrder, rule.Action,
	)
	if err := s.notifier.NotifyStaff(ctx, target, subject, body); err != nil {
		// Cursor already advanced: the rule fired once, delivery is
		// best-effort beyond the channel retries.
		utils.Logger.WithError(err).Errorf("Escalation notification failed for work order %s rule %d",
			sla.WorkOrderID, rule.RuleOrder)
	}
	return nil
}

/*
resolveTarget maps a rule to a staff member. NOTIFY targets the rule's
configured user. ESCALATE targets whoever is currently on call for the
property, falling back to the default administrative contact, then to
the rule's configured user as a last resort.
*/
func (s *EscalationService) resolveTarget(
	ctx context.Context,
	sla *models.WorkOrderSLA,
	rule *models.EscalationPolicyRule,
	now time.Time,
) (*models.Staff, error) {
	if rule.Action == models.EscalationActionNotify {
		st, err := s.staffRepo.GetByID(ctx, rule.NotifyUserID)
		if err != nil {
			return nil, err
		}
		if st == nil {
			return nil, fmt.Errorf("rule %d notify target %s: %w", rule.RuleOrder, rule.NotifyUserID, utils.ErrNotFound)
		}
		return st, nil
	}

	st, err := s.onCall.Resolve(ctx, sla.PropertyID, now)
	if err == nil {
		return st, nil
	}
	if !errors.Is(err, utils.ErrNoOnCallCoverage) {
		return nil, err
	}

	utils.Logger.Warnf("No on-call coverage for property %s, falling back to default contact", sla.PropertyID)
	fallback, err := s.staffRepo.GetDefaultContact(ctx)
	if err != nil {
		return nil, err
	}
	if fallback != nil {
		return fallback, nil
	}

	st, err = s.staffRepo.GetByID(ctx, rule.NotifyUserID)
	if err != nil {
		return nil, err
	}
	if st == nil {
		return nil, fmt.Errorf("no reachable escalation target for property %s: %w",
			sla.PropertyID, utils.ErrConfigurationMissing)
	}
	return st, nil
}

func (s *EscalationService) propertyName(ctx context.Context, sla *models.WorkOrderSLA) string {
	prop, err := s.propRepo.GetByID(ctx, sla.PropertyID)
	if err != nil || prop == nil {
		return sla.PropertyID.String()
	}
	return prop.Name
}

// RunSLAHousekeeping drops settled SLA rows past the retention window.
func (s *EscalationService) RunSLAHousekeeping(ctx context.Context) error {
	cutoff := time.Now().UTC().AddDate(0, 0, -constants.SLARetentionDays)
	n, err := s.slaRepo.DeleteRespondedBefore(ctx, cutoff)
	if err != nil {
		return err
	}
	if n > 0 {
		utils.Logger.Infof("SLA housekeeping deleted %d settled records", n)
	}
	return nil
}
