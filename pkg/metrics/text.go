package metrics

import (
	"fmt"
	"io"

	"github.com/prometheus/common/expfmt"
)

// WriteText renders every metric family of the manager's registry in the
// Prometheus text exposition format.
func (m *Manager) WriteText(w io.Writer) error {
	families, err := m.registry.Gather()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrGatherFailed, err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrWriteFailed, mf.GetName(), err)
		}
	}
	return nil
}

// WriteText renders the global registry.
func WriteText(w io.Writer) error {
	return globalManager.WriteText(w)
}
