package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"topstore/internal/model"
)

func setupEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("STORE_BACKEND", "file")
	t.Setenv("STORE_DIR", dir)
	t.Setenv("KAFKA_ENABLED", "false")
	t.Setenv("LOG_LEVEL", "error")
	return dir
}

func run(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(append([]string{"--env", filepath.Join(dir, "missing.env")}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func mustRun(t *testing.T, dir string, args ...string) string {
	t.Helper()
	out, err := run(t, dir, args...)
	if err != nil {
		t.Fatalf("storectl %s: %v", strings.Join(args, " "), err)
	}
	return out
}

func TestProductsCommands(t *testing.T) {
	dir := setupEnv(t)

	out := mustRun(t, dir, "products", "list")
	if !strings.Contains(out, "ID") || !strings.Contains(out, "Essential Tee") {
		t.Errorf("Expected default catalog in output:\n%s", out)
	}

	out = mustRun(t, dir, "products", "add", "--name", "Bucket Hat", "--price", "1200", "--category", "Accessories")
	if !strings.Contains(out, "Bucket Hat") {
		t.Errorf("Unexpected add output %q", out)
	}
	out = mustRun(t, dir, "products", "list", "-q", "bucket")
	if !strings.Contains(out, "Bucket Hat") || strings.Contains(out, "Essential Tee") {
		t.Errorf("Unexpected filtered output:\n%s", out)
	}
	out = mustRun(t, dir, "products", "list", "--category", "Hoodies")
	if !strings.Contains(out, "Signature Hoodie") || strings.Contains(out, "Bucket Hat") {
		t.Errorf("Unexpected category output:\n%s", out)
	}

	if _, err := run(t, dir, "products", "add", "--name", "No Price"); err == nil {
		t.Error("Expected error without required --price")
	}

	mustRun(t, dir, "products", "remove", "4")
	if _, err := run(t, dir, "products", "remove", "4"); err == nil {
		t.Error("Expected error removing missing product")
	}
}

func TestOrdersImportAndStatus(t *testing.T) {
	dir := setupEnv(t)

	file := filepath.Join(dir, "orders.json")
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, o := range []model.Order{
		{ID: "ORD-1", Date: time.Now(), Status: model.OrderStatusPaid, TotalAmount: 2270,
			UserDetails: model.UserDetails{FullName: "Anna", City: "Kazan"}},
		{ID: "ORD-2", Date: time.Now(), Status: model.OrderStatusNew, TotalAmount: 900},
		{ID: "ORD-3", Status: "Cancelled"},
	} {
		if err := enc.Encode(o); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(file, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}

	out := mustRun(t, dir, "orders", "import", file)
	if !strings.Contains(out, "2 imported, 1 skipped") {
		t.Errorf("Unexpected import output %q", out)
	}
	out = mustRun(t, dir, "orders", "import", file)
	if !strings.Contains(out, "0 imported, 3 skipped") {
		t.Errorf("Expected duplicates to be skipped, got %q", out)
	}

	mustRun(t, dir, "orders", "status", "ORD-1", "Shipped")
	out = mustRun(t, dir, "orders", "list", "--status", "Shipped")
	if !strings.Contains(out, "ORD-1") || strings.Contains(out, "ORD-2") {
		t.Errorf("Unexpected filtered orders:\n%s", out)
	}

	errCases := [][]string{
		{"orders", "status", "ORD-1", "Lost"},
		{"orders", "status", "ORD-9", "Paid"},
		{"orders", "list", "--status", "Lost"},
		{"orders", "import", filepath.Join(dir, "nope.json")},
	}
	for _, args := range errCases {
		if _, err := run(t, dir, args...); err == nil {
			t.Errorf("storectl %s: expected error", strings.Join(args, " "))
		}
	}

	out = mustRun(t, dir, "stats")
	for _, want := range []string{"Orders:         2", "Pending orders: 1", "Revenue:        3170 RUB"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in stats:\n%s", want, out)
		}
	}
}

func TestSeedCommand(t *testing.T) {
	dir := setupEnv(t)

	out := mustRun(t, dir, "seed", "--products", "3", "--orders", "5", "--seed", "1")
	if !strings.Contains(out, "Seeded 3 products and 5 orders") {
		t.Errorf("Unexpected seed output %q", out)
	}

	out = mustRun(t, dir, "stats")
	if !strings.Contains(out, "Products:       7") || !strings.Contains(out, "Orders:         5") {
		t.Errorf("Unexpected stats after seed:\n%s", out)
	}

	if _, err := run(t, dir, "seed", "--orders", "-1"); err == nil {
		t.Error("Expected error for negative count")
	}
}

func TestInvalidConfig(t *testing.T) {
	dir := setupEnv(t)
	t.Setenv("STORE_BACKEND", "cassandra")

	if _, err := run(t, dir, "stats"); err == nil {
		t.Error("Expected config validation error")
	}
}
