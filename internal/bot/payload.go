package bot

import (
	"strconv"
	"strings"
)

type PayloadKind int

const (
	PayloadAbsent PayloadKind = iota
	PayloadReferrer
	PayloadMalformed
)

// StartPayload is the argument of a /start command, as carried by a referral link
// (https://t.me/<bot>?start=<referrer id>).
type StartPayload struct {
	Kind       PayloadKind
	ReferrerID int64
	Raw        string
}

// ParseStartPayload reads the first argument of a "/start" message text.
func ParseStartPayload(text string) StartPayload {
	parts := strings.Fields(text)
	if len(parts) < 2 {
		return StartPayload{Kind: PayloadAbsent}
	}

	raw := parts[1]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return StartPayload{Kind: PayloadMalformed, Raw: raw}
	}
	return StartPayload{Kind: PayloadReferrer, ReferrerID: id, Raw: raw}
}
