package identity

import (
	"strings"

	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

// UUID derives a deterministic UUID from a stable key using go-hashid.
//
// Keys must carry an entity prefix so two kinds never share an id.
func UUID(key string) uuid.UUID {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return uuid.Nil
	}
	uid, err := hashid.NewUUID(trimmed, hashid.WithHashAlgorithm(hashid.SHA256), hashid.WithNormalization(true))
	if err != nil || uid == uuid.Nil {
		return uuid.NewSHA1(uuid.NameSpaceOID, []byte(trimmed))
	}
	return uid
}

// LocaleUUID keeps locale ids stable across installs seeded with the same codes.
func LocaleUUID(code string) uuid.UUID {
	return UUID("folio:locale:" + strings.ToLower(strings.TrimSpace(code)))
}

// ProfileUUID is the id of the single site profile.
func ProfileUUID() uuid.UUID {
	return UUID("folio:profile")
}
