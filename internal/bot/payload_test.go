package bot

import "testing"

func TestParseStartPayload(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want StartPayload
	}{
		{"no argument", "/start", StartPayload{Kind: PayloadAbsent}},
		{"trailing space", "/start   ", StartPayload{Kind: PayloadAbsent}},
		{"referrer id", "/start 123456", StartPayload{Kind: PayloadReferrer, ReferrerID: 123456, Raw: "123456"}},
		{"bot mention", "/start@n_y_w_bot 42", StartPayload{Kind: PayloadReferrer, ReferrerID: 42, Raw: "42"}},
		{"negative id", "/start -7", StartPayload{Kind: PayloadReferrer, ReferrerID: -7, Raw: "-7"}},
		{"extra arguments ignored", "/start 5 6", StartPayload{Kind: PayloadReferrer, ReferrerID: 5, Raw: "5"}},
		{"legacy referral code", "/start ref_99", StartPayload{Kind: PayloadMalformed, Raw: "ref_99"}},
		{"overflow", "/start 99999999999999999999", StartPayload{Kind: PayloadMalformed, Raw: "99999999999999999999"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := ParseStartPayload(tt.text); got != tt.want {
				t.Errorf("ParseStartPayload(%q) = %+v, want %+v", tt.text, got, tt.want)
			}
		})
	}
}
