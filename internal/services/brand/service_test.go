package brand

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/salman-dev-app/telegram-ai-assistant/internal/domain/model"
)

func TestReloadSwapsProfileAndCatalog(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	write := func(body string) {
		t.Helper()
		if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	write("brand:\n  owner_name: Salman\n  status: away\ncatalog: \"Website bot: $50\"\n")

	svc := NewService(model.BrandProfile{OwnerName: "stale", Status: model.OwnerBusy}, "old catalog", path, nil)

	if err := svc.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if got := svc.Profile(); got.OwnerName != "Salman" || got.Status != model.OwnerAway {
		t.Fatalf("profile = %+v", got)
	}
	if got, _ := svc.FormattedCatalog(context.Background()); got != "Website bot: $50" {
		t.Fatalf("catalog = %q", got)
	}

	write("brand:\n  owner_name: Salman\n  status: online\ncatalog: \"updated\"\n")
	if err := svc.Reload(); err != nil {
		t.Fatalf("second Reload: %v", err)
	}
	if got := svc.Profile(); got.Status != model.OwnerOnline {
		t.Fatalf("status = %s, want online", got.Status)
	}
}

func TestSetStatusOnlyTouchesPresence(t *testing.T) {
	svc := NewService(model.BrandProfile{OwnerName: "Salman", Status: model.OwnerAway}, "", "", nil)

	svc.SetStatus(model.OwnerOnline)

	got := svc.Profile()
	if got.Status != model.OwnerOnline || got.OwnerName != "Salman" {
		t.Fatalf("profile = %+v", got)
	}
}
