package config

import (
	"fmt"
	"os"
	"testing"
)

// TestMain refuses to run unless GO_ENV=test so a stray DATABASE_URL from a
// developer shell is never touched
func TestMain(m *testing.M) {
	if env := os.Getenv("GO_ENV"); env != "test" {
		fmt.Fprintf(os.Stderr, "SAFETY CHECK FAILED: config tests must run with GO_ENV=test (current GO_ENV=%q)\n"+
			"  run: GO_ENV=test go test ./...\n", env)
		os.Exit(1)
	}
	os.Exit(m.Run())
}
