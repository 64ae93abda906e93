package defaults

import (
	"testing"
	"time"
)

func TestTimeoutConstants(t *testing.T) {
	tests := []struct {
		name     string
		timeout  time.Duration
		minValue time.Duration
		maxValue time.Duration
	}{
		{"LocationTimeout", LocationTimeout, 5 * time.Second, 30 * time.Second},
		{"ContainerTimeout", ContainerTimeout, 10 * time.Second, 60 * time.Second},
		{"VisualizationTimeout", VisualizationTimeout, 5 * time.Second, 30 * time.Second},
		{"LoadingTimeout", LoadingTimeout, 10 * time.Second, 60 * time.Second},
		{"OpacityTimeout", OpacityTimeout, 1 * time.Second, 15 * time.Second},
		{"SessionSocketTimeout", SessionSocketTimeout, 30 * time.Second, 120 * time.Second},
		{"SessionRetryInterval", SessionRetryInterval, 1 * time.Second, 60 * time.Second},
		{"StoreOperationTimeout", StoreOperationTimeout, 5 * time.Second, 60 * time.Second},
		{"ServerShutdownTimeout", ServerShutdownTimeout, 10 * time.Second, 60 * time.Second},
		{"CaptureDrainTimeout", CaptureDrainTimeout, 30 * time.Second, 5 * time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.timeout < tt.minValue {
				t.Errorf("%s (%v) is below minimum expected value (%v)", tt.name, tt.timeout, tt.minValue)
			}
			if tt.timeout > tt.maxValue {
				t.Errorf("%s (%v) is above maximum expected value (%v)", tt.name, tt.timeout, tt.maxValue)
			}
		})
	}
}

func TestNavigationGraceShorterThanSocketTimeout(t *testing.T) {
	if NavigationGrace >= SessionSocketTimeout {
		t.Errorf("NavigationGrace (%v) should be less than SessionSocketTimeout (%v)",
			NavigationGrace, SessionSocketTimeout)
	}
}

func TestPollIntervalShorterThanBudgets(t *testing.T) {
	for _, budget := range []time.Duration{
		LocationTimeout, ContainerTimeout, VisualizationTimeout, LoadingTimeout, OpacityTimeout,
	} {
		if ReadinessPollInterval >= budget {
			t.Errorf("ReadinessPollInterval (%v) should be shorter than budget %v", ReadinessPollInterval, budget)
		}
	}
}

func TestCaptureDrainCoversReadinessBudgets(t *testing.T) {
	total := LocationTimeout + ContainerTimeout + VisualizationTimeout + LoadingTimeout + OpacityTimeout
	if CaptureDrainTimeout < total {
		t.Errorf("CaptureDrainTimeout (%v) should cover the readiness budgets of one graph (%v)",
			CaptureDrainTimeout, total)
	}
}
