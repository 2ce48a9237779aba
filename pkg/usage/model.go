package usage

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// V1 is the legacy used-determination shape as produced upstream. Numeric
// fields occasionally arrive serialized in scientific notation
// ("1.2345678E7") and must be parsed back to the exact integer.
type V1 struct {
	ID             string    `json:"id"`
	ExternalID     int64     `json:"externalId"`
	ArenaTimestamp time.Time `json:"arenaTimestamp"`
	EventTimestamp int64     `json:"eventTimestamp"`
}

func (v *V1) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID             string      `json:"id"`
		ExternalID     json.Number `json:"externalId"`
		ArenaTimestamp time.Time   `json:"arenaTimestamp"`
		EventTimestamp json.Number `json:"eventTimestamp"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.ID == "" {
		return fmt.Errorf("used-determination event missing id")
	}

	externalID, err := ParseExactInt64(raw.ExternalID.String())
	if err != nil {
		return fmt.Errorf("externalId: %w", err)
	}
	eventTS, err := ParseExactInt64(raw.EventTimestamp.String())
	if err != nil {
		return fmt.Errorf("eventTimestamp: %w", err)
	}

	v.ID = raw.ID
	v.ExternalID = externalID
	v.ArenaTimestamp = raw.ArenaTimestamp
	v.EventTimestamp = eventTS
	return nil
}

// ParseExactInt64 accepts plain integers and float renderings (including
// scientific notation) but rejects anything that does not round-trip to the
// same 64-bit integer. Precision loss is an error, never a truncation.
func ParseExactInt64(s string) (int64, error) {
	if s == "" {
		return 0, fmt.Errorf("empty number")
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i, nil
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", s)
	}
	// Beyond 2^53 float64 cannot represent every integer.
	const maxExact = 1 << 53
	if f > maxExact || f < -maxExact {
		return 0, fmt.Errorf("value %q exceeds exact integer range", s)
	}
	i := int64(f)
	if float64(i) != f {
		return 0, fmt.Errorf("value %q is not an exact integer", s)
	}
	return i, nil
}
