//go:build pact
// +build pact

package pacttest

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

const (
	ProviderName = "brew-api"
	ConsumerName = "brew-portal"

	StateProductsSeeded = "products are seeded"
	StateOrderMissing   = "no order with id 999"
)

const (
	MuffinProductID int64 = 2
	MissingOrderID  int64 = 999

	Username = "pactbarista"
	Password = "pactpass1"

	// ExampleBearer is replaced by a real access token during provider verification.
	ExampleBearer = "Bearer pact-example-token"
)

// PactDir returns the workspace-level directory for generated pact files.
func PactDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "pacts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact dir: %v", err)
	}
	return dir
}

// PactFile returns the canonical pact file path for the brew portal consumer.
func PactFile(t testing.TB) string {
	t.Helper()
	return filepath.Join(PactDir(t), ConsumerName+"-"+ProviderName+".json")
}

// LogDir returns the log output directory for pact-go.
func LogDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "bin", "pact-logs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact log dir: %v", err)
	}
	return dir
}

// ExampleOrderRequest is the body the portal sends to place an order.
func ExampleOrderRequest(quantity int) map[string]any {
	return map[string]any{
		"payment_method": "Credit",
		"order_items": []map[string]any{
			{"product_id": MuffinProductID, "quantity": quantity},
		},
	}
}

// projectRoot walks up from this file to the workspace root.
func projectRoot(t testing.TB) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("cannot determine caller for pact paths")
	}
	return filepath.Clean(filepath.Join(filepath.Dir(file), "..", ".."))
}
