package patient

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func TestGetOrCreateStatusReflectsProvisioning(t *testing.T) {
	registry := NewMemoryRegistry()
	registry.Add(Patient{ID: "p1", DisplayName: "Ada Lovelace"}, "", "")
	svc, _, _ := newResolver(registry)

	app := fiber.New()
	app.Post("/patients/:patientId/wallet", NewHandler(svc).GetOrCreate)

	first, err := app.Test(httptest.NewRequest(http.MethodPost, "/patients/p1/wallet", nil))
	if err != nil {
		t.Fatalf("first request: %v", err)
	}
	if first.StatusCode != http.StatusCreated {
		t.Fatalf("provisioning call must return 201, got %d", first.StatusCode)
	}

	second, err := app.Test(httptest.NewRequest(http.MethodPost, "/patients/p1/wallet", nil))
	if err != nil {
		t.Fatalf("second request: %v", err)
	}
	if second.StatusCode != http.StatusOK {
		t.Fatalf("idempotent read must return 200, got %d", second.StatusCode)
	}
}
