package processor

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/113rajababu113-wq/eth-options-data-pipeline/models"
)

// Feed record fields the adapter understands. The feed encodes numerics as
// JSON strings or numbers interchangeably, so every numeric read goes through
// numericField.
const (
	fieldSymbol       = "symbol"
	fieldContractType = "contract_type"
	fieldStrike       = "strike_price"
	fieldSpot         = "spot_price"
	fieldMarkPrice    = "mark_price"
	fieldExpiryDate   = "expiry_date"
	fieldSettlement   = "settlement_time"
	fieldOIContracts  = "oi_contracts"
	fieldOI           = "oi"
)

const (
	contractTypeCall = "call_options"
	contractTypePut  = "put_options"
)

// AdaptTicker validates one raw feed record into a ContractQuote. A record
// missing a required field, carrying a non-numeric strike or price, or whose
// expiry cannot be derived is rejected with a MalformedQuoteError.
func AdaptTicker(t models.RawTicker, observedAt time.Time) (models.ContractQuote, error) {
	symbol, ok := stringField(t, fieldSymbol)
	if !ok || symbol == "" {
		return models.ContractQuote{}, &MalformedQuoteError{Reason: "missing symbol"}
	}

	kind, err := optionKind(t)
	if err != nil {
		return models.ContractQuote{}, &MalformedQuoteError{Symbol: symbol, Reason: err.Error()}
	}

	strike, err := requiredNumeric(t, fieldStrike)
	if err != nil {
		return models.ContractQuote{}, &MalformedQuoteError{Symbol: symbol, Reason: err.Error()}
	}
	if strike < 0 {
		return models.ContractQuote{}, &MalformedQuoteError{Symbol: symbol, Reason: "negative strike"}
	}

	spot, err := requiredNumeric(t, fieldSpot)
	if err != nil {
		return models.ContractQuote{}, &MalformedQuoteError{Symbol: symbol, Reason: err.Error()}
	}

	mark, err := requiredNumeric(t, fieldMarkPrice)
	if err != nil {
		return models.ContractQuote{}, &MalformedQuoteError{Symbol: symbol, Reason: err.Error()}
	}
	if mark < 0 {
		return models.ContractQuote{}, &MalformedQuoteError{Symbol: symbol, Reason: "negative mark price"}
	}

	expiry, err := deriveExpiry(t, symbol)
	if err != nil {
		return models.ContractQuote{}, &MalformedQuoteError{Symbol: symbol, Reason: err.Error()}
	}

	// Open interest is best-effort: a missing or unparsable value degrades
	// to zero with the quote still accepted.
	oi := int64(0)
	if v, ok := numericField(t, fieldOIContracts); ok {
		oi = int64(v)
	} else if v, ok := numericField(t, fieldOI); ok {
		oi = int64(v)
	}
	if oi < 0 {
		oi = 0
	}

	return models.ContractQuote{
		ContractID:     symbol,
		UnderlyingSpot: spot,
		Expiry:         expiry,
		Strike:         strike,
		Kind:           kind,
		LastPrice:      mark,
		OpenInterest:   oi,
		ObservedAt:     observedAt.UTC(),
	}, nil
}

func optionKind(t models.RawTicker) (models.OptionKind, error) {
	ct, ok := stringField(t, fieldContractType)
	if !ok || ct == "" {
		return "", fmt.Errorf("missing contract_type")
	}
	switch ct {
	case contractTypeCall:
		return models.Call, nil
	case contractTypePut:
		return models.Put, nil
	default:
		return "", fmt.Errorf("unknown contract_type %q", ct)
	}
}

// deriveExpiry resolves the contract expiry from an explicit field when the
// feed provides one, otherwise from the 6-digit DDMMYY suffix after the last
// dash of the symbol (two-digit year interpreted as 2000+YY).
func deriveExpiry(t models.RawTicker, symbol string) (time.Time, error) {
	for _, field := range []string{fieldExpiryDate, fieldSettlement} {
		raw, ok := stringField(t, field)
		if !ok || raw == "" {
			continue
		}
		if strings.Contains(raw, "T") {
			if ts, err := time.Parse(time.RFC3339, raw); err == nil {
				return models.DateOnly(ts), nil
			}
			return time.Time{}, fmt.Errorf("unparsable %s %q", field, raw)
		}
		if d, err := time.Parse("2006-01-02", raw); err == nil {
			return models.DateOnly(d), nil
		}
		return time.Time{}, fmt.Errorf("unparsable %s %q", field, raw)
	}

	idx := strings.LastIndex(symbol, "-")
	if idx < 0 || idx == len(symbol)-1 {
		return time.Time{}, fmt.Errorf("no expiry suffix in symbol")
	}
	return parseExpirySuffix(symbol[idx+1:])
}

func parseExpirySuffix(suffix string) (time.Time, error) {
	if len(suffix) != 6 {
		return time.Time{}, fmt.Errorf("expiry suffix %q is not 6 digits", suffix)
	}
	for _, r := range suffix {
		if r < '0' || r > '9' {
			return time.Time{}, fmt.Errorf("expiry suffix %q is not 6 digits", suffix)
		}
	}

	day, _ := strconv.Atoi(suffix[0:2])
	month, _ := strconv.Atoi(suffix[2:4])
	year := 2000 + mustAtoi(suffix[4:6])

	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes out-of-range components; a changed day or month
	// means the suffix did not name a real calendar date.
	if d.Day() != day || int(d.Month()) != month || d.Year() != year {
		return time.Time{}, fmt.Errorf("expiry suffix %q is not a valid date", suffix)
	}
	return d, nil
}

func mustAtoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

func stringField(t models.RawTicker, key string) (string, bool) {
	v, ok := t[key]
	if !ok || v == nil {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func requiredNumeric(t models.RawTicker, key string) (float64, error) {
	v, ok := t[key]
	if !ok || v == nil {
		return 0, fmt.Errorf("missing %s", key)
	}
	f, ok := toFloat(v)
	if !ok {
		return 0, fmt.Errorf("non-numeric %s", key)
	}
	return f, nil
}

func numericField(t models.RawTicker, key string) (float64, bool) {
	v, ok := t[key]
	if !ok || v == nil {
		return 0, false
	}
	return toFloat(v)
}

func toFloat(v interface{}) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
