package instance

import "testing"

func TestGetIDPrefersEnv(t *testing.T) {
	t.Setenv("SMARTCART_INSTANCE_ID", "api-7")
	if got := GetID("api"); got != "api-7" {
		t.Fatalf("expected api-7, got %q", got)
	}
}

func TestGetIDFallsBack(t *testing.T) {
	t.Setenv("SMARTCART_INSTANCE_ID", "")
	if got := GetID("worker"); got == "" {
		t.Fatal("expected a non-empty instance id")
	}
}
