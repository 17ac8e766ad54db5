package app

import (
	crand "crypto/rand"
	"encoding/hex"
	"strings"
	"time"

	"github.com/google/uuid"
)

// newStayCode builds the human-readable booking reference: BK + UTC second
// timestamp + 4 random bytes. The random suffix keeps same-second check-ins
// apart; the tenant-scoped unique index plus insert-retry in the orchestrator
// bounds the residual collision probability.
func newStayCode(now time.Time) string {
	var buf [4]byte
	_, _ = crand.Read(buf[:])
	return "BK" + now.UTC().Format("20060102150405") + strings.ToUpper(hex.EncodeToString(buf[:]))
}

// newInvoiceNumber rides on a UUID so ledger inserts never need a retry loop.
func newInvoiceNumber() string {
	u := uuid.New()
	return "INV" + strings.ToUpper(hex.EncodeToString(u[:]))
}
