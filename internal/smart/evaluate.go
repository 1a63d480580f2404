package smart

import (
	"github.com/darshan-rambhia/whm/internal/model"
)

// EvaluateAttribute sets attr.Status (and FailureRate when known) and returns the status.
func EvaluateAttribute(attr *model.SMARTAttribute) int {
	attr.Status = evaluate(attr)
	return attr.Status
}

func evaluate(attr *model.SMARTAttribute) int {
	// A normalized value at or below the vendor threshold is a SMART failure.
	// Threshold 0 means the attribute can never fail.
	if attr.Threshold > 0 && attr.Value > 0 && attr.Value <= attr.Threshold {
		return model.StatusFailedSmart
	}

	t, ok := LookupThreshold(attr.ID)
	if !ok {
		return model.StatusPassed
	}

	b := t.FindBucket(attr.RawValue)
	if b == nil {
		if t.Critical {
			return model.StatusWarnScrutiny
		}
		return model.StatusPassed
	}

	rate := b.AnnualFailureRate
	attr.FailureRate = &rate
	switch {
	case t.Critical && rate >= 0.10:
		return model.StatusFailedScrutiny
	case !t.Critical && rate >= 0.20:
		return model.StatusFailedScrutiny
	case !t.Critical && rate >= 0.10:
		return model.StatusWarnScrutiny
	}
	return model.StatusPassed
}

// Evaluate returns the bitwise OR of every attribute status. A health
// verdict other than PASSED/OK also sets StatusFailedSmart.
func Evaluate(health string, attrs []model.SMARTAttribute) int {
	status := model.StatusPassed
	for i := range attrs {
		status |= EvaluateAttribute(&attrs[i])
	}
	if health != "" && health != "PASSED" && health != "OK" {
		status |= model.StatusFailedSmart
	}
	return status
}
