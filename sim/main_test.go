package sim

import (
	"os"
	"testing"

	"github.com/sirupsen/logrus"
)

// TestMain keeps per-estimate debug lines out of test output.
// Set DEBUG_TESTS=1 to see them: DEBUG_TESTS=1 go test ./sim/... -v
func TestMain(m *testing.M) {
	if os.Getenv("DEBUG_TESTS") == "" {
		logrus.SetLevel(logrus.WarnLevel)
	}
	os.Exit(m.Run())
}
