package domain

import "errors"

// Sentinel error kinds per the CP core's error handling design. Wrap these with
// fmt.Errorf("%w: ...", ErrX) at the raise site so callers can errors.Is them.
var (
	ErrInvalidConfig              = errors.New("invalid config")
	ErrUnknownPhysician           = errors.New("unknown physician")
	ErrInvalidPeriod              = errors.New("invalid unavailability period")
	ErrUnsupportedRegion          = errors.New("unsupported region")
	ErrUnsupportedCategory        = errors.New("unsupported category: discontinuous days not implemented")
	ErrUnknownCategory            = errors.New("unknown category days parameter")
	ErrSchedulingPeriodUnset      = errors.New("scheduling period not set")
	ErrInfeasible                 = errors.New("infeasible")
	ErrInconsistentLoadedSchedule = errors.New("inconsistent loaded schedule")
)
