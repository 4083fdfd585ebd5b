package identity

import (
	"testing"

	"github.com/google/uuid"
)

func TestLocaleUUIDIsStable(t *testing.T) {
	first := LocaleUUID("ar")
	if first == uuid.Nil {
		t.Fatal("expected non-nil id")
	}
	if LocaleUUID(" AR ") != first {
		t.Fatal("expected case and whitespace to be ignored")
	}
	if LocaleUUID("en") == first {
		t.Fatal("expected different codes to yield different ids")
	}
}

func TestUUIDBlankKey(t *testing.T) {
	if UUID("  ") != uuid.Nil {
		t.Fatal("expected nil id for blank key")
	}
	if ProfileUUID() != ProfileUUID() || ProfileUUID() == LocaleUUID("profile") {
		t.Fatal("expected stable, prefixed profile id")
	}
}
