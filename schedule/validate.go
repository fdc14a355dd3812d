package schedule

// Validator composes conflict detection and overtime evaluation into the
// single caller-facing validation contract.
type Validator struct {
	Rules OvertimeRules
}

// Validate runs conflict detection first. Any conflict short-circuits the
// overtime checks: a hard conflict already blocks the save, and piling
// advisory warnings on top produces noisy compound errors. Overtime
// warnings never make the result invalid.
func (v Validator) Validate(candidate Shift, existing []Shift, timeOff []TimeOffRequest) ValidationResult {
	conflicts := DetectConflicts(candidate, existing, timeOff)
	if len(conflicts) > 0 {
		return ValidationResult{
			Valid:            false,
			Conflicts:        conflicts,
			OvertimeWarnings: []OvertimeWarning{},
		}
	}

	var warnings []OvertimeWarning
	if daily := EvaluateDailyOvertime(candidate, existing, v.Rules); daily != nil {
		warnings = append(warnings, *daily)
	}
	if weekly := EvaluateWeeklyOvertime(candidate, existing, v.Rules); weekly != nil {
		warnings = append(warnings, *weekly)
	}

	return ValidationResult{
		Valid:            true,
		Conflicts:        []Conflict{},
		OvertimeWarnings: warnings,
	}
}
