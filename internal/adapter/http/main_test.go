package http_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/janarabaya/Nursery-Management-System-sub000/internal/logging"
)

// Route test logs to a throwaway directory instead of ./logs.
func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "nursery-test-logs")
	if err == nil {
		logging.Init("test", filepath.Join(dir, "app.log"))
	}
	code := m.Run()
	if dir != "" {
		_ = os.RemoveAll(dir)
	}
	os.Exit(code)
}
