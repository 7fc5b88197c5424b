package tracker

import (
	"errors"
	"fmt"
)

// ErrUnknownMode is returned when parsing an unknown mode name
var ErrUnknownMode = errors.New("unknown mode")

func (p ProbeMode) String() string {
	switch p {
	case ProbeCommitWinner:
		return "commit"
	case ProbeRebindAll:
		return "rebind-all"
	}
	return fmt.Sprintf("ProbeMode(%d)", int(p))
}

// ParseProbeMode parses "commit" or "rebind-all"
func ParseProbeMode(s string) (ProbeMode, error) {
	switch s {
	case "commit":
		return ProbeCommitWinner, nil
	case "rebind-all":
		return ProbeRebindAll, nil
	}
	return 0, fmt.Errorf("%w: probe mode %q", ErrUnknownMode, s)
}

func (a Association) String() string {
	switch a {
	case AssociateGreedy:
		return "greedy"
	case AssociateOptimal:
		return "optimal"
	}
	return fmt.Sprintf("Association(%d)", int(a))
}

// ParseAssociation parses "greedy" or "optimal"
func ParseAssociation(s string) (Association, error) {
	switch s {
	case "greedy":
		return AssociateGreedy, nil
	case "optimal":
		return AssociateOptimal, nil
	}
	return 0, fmt.Errorf("%w: association %q", ErrUnknownMode, s)
}

func (c Cadence) String() string {
	switch c {
	case CadenceSkipPeriodStart:
		return "skip-period-start"
	case CadencePeriodStart:
		return "period-start"
	}
	return fmt.Sprintf("Cadence(%d)", int(c))
}

// ParseCadence parses "skip-period-start" or "period-start"
func ParseCadence(s string) (Cadence, error) {
	switch s {
	case "skip-period-start":
		return CadenceSkipPeriodStart, nil
	case "period-start":
		return CadencePeriodStart, nil
	}
	return 0, fmt.Errorf("%w: cadence %q", ErrUnknownMode, s)
}
