package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRegisterTwice(t *testing.T) {
	Register()
	Register()
}

func TestCounters(t *testing.T) {
	before := testutil.ToFloat64(SwapTransitions.WithLabelValues("accepted"))
	SwapTransitions.WithLabelValues("accepted").Inc()
	if got := testutil.ToFloat64(SwapTransitions.WithLabelValues("accepted")); got != before+1 {
		t.Fatalf("accepted transitions = %v, want %v", got, before+1)
	}
}
