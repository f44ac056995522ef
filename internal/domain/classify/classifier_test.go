package classify

import (
	"strings"
	"testing"
)

func intPtr(v int) *int { return &v }

func TestClassifyNameNotResolved(t *testing.T) {
	ce := Classify(Failure{
		Code:        intPtr(-105),
		Description: "ERR_NAME_NOT_RESOLVED",
		URL:         "https://bad.example",
	})

	if !strings.Contains(ce.FriendlyTitle, "couldn't find that site") {
		t.Errorf("Expected DNS title, got %q", ce.FriendlyTitle)
	}
	if ce.FriendlySubtitle == "" {
		t.Error("Expected a subtitle")
	}
	if !strings.Contains(ce.TechnicalMessage, "host: bad.example") {
		t.Errorf("Expected categorizer host detail, got %q", ce.TechnicalMessage)
	}
}

func TestClassifyIsIdempotent(t *testing.T) {
	f := Failure{
		Code:        intPtr(-118),
		Description: "ERR_CONNECTION_TIMED_OUT",
		URL:         "https://slow.example",
		RawMessage:  "navigation aborted",
	}

	first := Classify(f)
	second := Classify(f)

	if first != second {
		t.Errorf("Expected identical results, got %+v vs %+v", first, second)
	}
}

func TestClassifyFallsBackToDescription(t *testing.T) {
	// No code and no URL: the rich categorizer must decline and the
	// description table must resolve it.
	ce := Classify(Failure{Description: "err_internet_disconnected"})

	if !strings.Contains(ce.FriendlyTitle, "offline") {
		t.Errorf("Expected offline title, got %q", ce.FriendlyTitle)
	}
}

func TestClassifyUnknownUsesGenericDefault(t *testing.T) {
	ce := Classify(Failure{Code: intPtr(-9999), Description: "ERR_UNHEARD_OF"})

	if ce.FriendlyTitle != genericTitle {
		t.Errorf("Expected generic title, got %q", ce.FriendlyTitle)
	}
	if ce.FriendlySubtitle == "" {
		t.Error("Generic default must carry a subtitle")
	}
}

func TestTechnicalMessageJoining(t *testing.T) {
	ce := Classify(Failure{
		Code:        intPtr(-102),
		Description: "ERR_CONNECTION_REFUSED",
		URL:         "https://refused.example",
		RawMessage:  "load failed",
	})

	lines := strings.Split(ce.TechnicalMessage, "\n")
	if lines[0] != "load failed" {
		t.Errorf("Raw message must come first, got %q", lines[0])
	}
	if lines[1] != "Error code: -102" {
		t.Errorf("Expected code line second, got %q", lines[1])
	}
	if lines[2] != "URL: https://refused.example" {
		t.Errorf("Expected URL line third, got %q", lines[2])
	}
}

func TestTechnicalMessageUsesDescriptionWithoutRaw(t *testing.T) {
	ce := Classify(Failure{
		Code:        intPtr(-105),
		Description: "ERR_NAME_NOT_RESOLVED",
	})

	if !strings.HasPrefix(ce.TechnicalMessage, "ERR_NAME_NOT_RESOLVED") {
		t.Errorf("Expected description as first detail line, got %q", ce.TechnicalMessage)
	}
}

func TestTimeoutMatchesNetworkTimeout(t *testing.T) {
	local := Timeout("https://stalled.example", "10s")
	network := Classify(Failure{
		Code:        intPtr(TimeoutCode),
		Description: "ERR_TIMED_OUT",
		URL:         "https://stalled.example",
	})

	if local.FriendlyTitle != network.FriendlyTitle {
		t.Errorf("Local stall and network timeout must classify alike: %q vs %q",
			local.FriendlyTitle, network.FriendlyTitle)
	}
	if local.Code == nil || *local.Code != TimeoutCode {
		t.Error("Timeout classification must carry the synthetic code")
	}
}

func TestInvalidURL(t *testing.T) {
	ce := InvalidURL("not a url", "missing host")

	if !strings.Contains(ce.FriendlyTitle, "address") {
		t.Errorf("Expected invalid-URL title, got %q", ce.FriendlyTitle)
	}
	if ce.URL != "not a url" {
		t.Errorf("Expected the attempted URL to be preserved, got %q", ce.URL)
	}
}

func TestClassifyPreservesRawFields(t *testing.T) {
	f := Failure{
		Code:        intPtr(-105),
		Description: "ERR_NAME_NOT_RESOLVED",
		URL:         "https://bad.example",
	}
	ce := Classify(f)

	if ce.Code == nil || *ce.Code != -105 {
		t.Error("Code must round-trip into the classification")
	}
	if ce.Description != f.Description || ce.URL != f.URL {
		t.Error("Description and URL must round-trip into the classification")
	}
}
