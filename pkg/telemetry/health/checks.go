package health

import (
	"context"
	"fmt"

	"ragkit-hq/bridge/pkg/backend"
)

// StatusSource reports the supervised backend's state. *backend.Supervisor
// implements it.
type StatusSource interface {
	Status() backend.Status
}

// BackendCheck fails unless the backend reached the ready phase and the most
// recent watchdog probe, if any, succeeded.
func BackendCheck(src StatusSource) CheckFunc {
	return func(ctx context.Context) error {
		st := src.Status()
		if st.Phase != backend.PhaseReady {
			if st.Error != "" {
				return fmt.Errorf("backend is %s: %s", st.Phase, st.Error)
			}
			return fmt.Errorf("backend is %s", st.Phase)
		}
		if st.Healthy != nil && !*st.Healthy {
			return fmt.Errorf("backend on port %d failed its last health check", st.Port)
		}
		return nil
	}
}
