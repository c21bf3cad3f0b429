package store

import (
	"context"
	"crypto/rand"
	"fmt"
	"time"
)

const (
	codeSuffixLen      = 4
	codeSuffixAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// GenerateTicketCode produces a code of the form YYYYMMDD-XXXX and
// regenerates the random suffix until exists reports it as unused.
// The date part stays fixed across retries. Callers run this inside
// the inserting transaction; the unique constraint on tickets.code is
// the backstop if two transactions race past the check.
func GenerateTicketCode(ctx context.Context, now time.Time, exists func(ctx context.Context, code string) (bool, error)) (string, error) {
	datePart := now.Format("20060102")
	for {
		code := fmt.Sprintf("%s-%s", datePart, randomCodeSuffix())
		used, err := exists(ctx, code)
		if err != nil {
			return "", err
		}
		if !used {
			return code, nil
		}
	}
}

func randomCodeSuffix() string {
	buf := make([]byte, codeSuffixLen)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand on supported platforms does not fail; fall back
		// to a time-derived suffix rather than panic in the hot path.
		nanos := time.Now().UnixNano()
		for i := range buf {
			buf[i] = byte(nanos >> (8 * i))
		}
	}
	suffix := make([]byte, codeSuffixLen)
	for i, b := range buf {
		suffix[i] = codeSuffixAlphabet[int(b)%len(codeSuffixAlphabet)]
	}
	return string(suffix)
}
