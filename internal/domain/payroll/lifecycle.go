package payroll

import "fmt"

// Guards for the period state machine: draft -> processing -> paid.
// They are evaluated against the stored period on every call.

func CanGenerate(p Period) error {
	if p.Status != PeriodStatusDraft {
		return fmt.Errorf("%w: cannot generate items for a %s period", ErrInvalidPeriodState, p.Status)
	}
	return nil
}

func CanProcess(p Period, itemCount int) error {
	if p.Status != PeriodStatusDraft {
		return fmt.Errorf("%w: only draft periods can be processed, period is %s", ErrInvalidPeriodState, p.Status)
	}
	if itemCount == 0 {
		return ErrNoItemsToProcess
	}
	return nil
}

func CanMarkPaid(p Period) error {
	if p.Status != PeriodStatusProcessing {
		return fmt.Errorf("%w: only processing periods can be marked paid, period is %s", ErrInvalidPeriodState, p.Status)
	}
	return nil
}

func CanDelete(p Period) error {
	if p.Status != PeriodStatusDraft {
		return fmt.Errorf("%w: only draft periods can be deleted, period is %s", ErrInvalidPeriodState, p.Status)
	}
	return nil
}

// ItemStatusFor is the status items take when their period enters s.
func ItemStatusFor(s PeriodStatus) ItemStatus {
	switch s {
	case PeriodStatusProcessing:
		return ItemStatusProcessed
	case PeriodStatusPaid:
		return ItemStatusPaid
	}
	return ItemStatusDraft
}
