package link_test

import (
	"testing"

	"github.com/homeline-hub/homeline-go/internal/flowtest"
)

// TestScenarios runs every declarative flow scenario in scenarios/.
func TestScenarios(t *testing.T) {
	scenarios, err := flowtest.LoadDirectory("scenarios")
	if err != nil {
		t.Fatalf("loading scenarios failed: %v", err)
	}
	if len(scenarios) == 0 {
		t.Fatal("no scenarios found")
	}

	for _, sc := range scenarios {
		t.Run(sc.ID, func(t *testing.T) {
			flowtest.Run(t, sc)
		})
	}
}
