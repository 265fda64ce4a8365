// Package lookup resolves a requested employee id against the known ids.
package lookup

import (
	"fmt"
	"slices"
	"strconv"

	"go.uber.org/zap"

	"github.com/spigell/career-compass/internal/logger"
	"github.com/spigell/career-compass/internal/profile"
)

const (
	StrictPolicy      = "strict"
	LenientDemoPolicy = "lenient-demo"
)

// Policy maps a requested id to one of ids, which are in profile.SortIDs order.
type Policy interface {
	Name() string
	Resolve(id string, ids []string) (string, error)
}

// New returns the policy registered under name.
func New(name string, log *zap.Logger) (Policy, error) {
	switch name {
	case "", StrictPolicy:
		return Strict{}, nil
	case LenientDemoPolicy:
		return &LenientDemo{logger: logger.OrNop(log)}, nil
	default:
		return nil, fmt.Errorf("unknown lookup policy %q", name)
	}
}

// Strict only accepts known ids.
type Strict struct{}

func (Strict) Name() string { return StrictPolicy }

func (Strict) Resolve(id string, ids []string) (string, error) {
	if slices.Contains(ids, id) {
		return id, nil
	}
	return "", fmt.Errorf("%w: %s", profile.ErrNotFound, id)
}

// LenientDemo never fails while any profile exists. An unknown numeric id of
// 100 or more is retried with its last two digits, and as a last resort the
// first known id is used. Every substitution is logged.
type LenientDemo struct {
	logger *zap.Logger
}

func (*LenientDemo) Name() string { return LenientDemoPolicy }

func (l *LenientDemo) Resolve(id string, ids []string) (string, error) {
	if slices.Contains(ids, id) {
		return id, nil
	}

	if n, err := strconv.Atoi(id); err == nil && n >= 100 {
		short := strconv.Itoa(n % 100)
		if slices.Contains(ids, short) {
			l.logger.Warn("employee not found, using id with the last two digits",
				zap.String("requested", id),
				zap.String(logger.FieldEntity, short),
			)
			return short, nil
		}
	}

	if len(ids) == 0 {
		return "", fmt.Errorf("%w: %s (no profiles available)", profile.ErrNotFound, id)
	}

	l.logger.Warn("employee not found, using the first available profile",
		zap.String("requested", id),
		zap.String(logger.FieldEntity, ids[0]),
	)
	return ids[0], nil
}
