package ledger

import "github.com/preston-fay/kie-v3-sub001/internal/domain"

// RecoveryPlanForBlock builds the standard four-tier RecoveryPlan for a
// gate BLOCK, keyed off the check remedies already computed by the gate
// package. Fix is always runnable CLI commands; Diagnose always includes
// `kie doctor` so a stuck consultant has one command that explains itself.
func RecoveryPlanForBlock(reason string, remedies []string) *domain.RecoveryPlan {
	return domain.NewRecoveryPlan(
		reason,
		remedies,
		[]string{"kie status"},
		[]string{"kie doctor"},
		[]string{"kie spec --repair"},
	)
}

// RecoveryPlanForCrash builds the recovery plan offered when a command's
// handler fails before completing (spec.md's recovery-plan supplement):
// the Fix tier re-runs the command, Diagnose points at `kie doctor` and
// `kie spec --repair`, and Escalate forces `spec --repair`, which fills
// spec defaults and resets Rails to `spec`.
func RecoveryPlanForCrash(interruptedCommand string) *domain.RecoveryPlan {
	return domain.NewRecoveryPlan(
		"A previous run of `"+interruptedCommand+"` did not complete.",
		[]string{"kie " + interruptedCommand},
		[]string{"kie status"},
		[]string{"kie doctor", "kie spec --repair"},
		[]string{"kie spec --repair --force"},
	)
}
