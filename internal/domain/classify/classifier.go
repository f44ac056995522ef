package classify

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/inkwellhq/blockview/internal/shared/types"
)

// Failure is a raw navigation failure as reported by the view host.
type Failure struct {
	Code        *int
	Description string
	URL         string
	RawMessage  string
}

// strategy inspects a failure and either produces a classification or
// declines. Strategies are pure; the first match wins and nothing is
// thrown across the chain.
type strategy func(Failure) (*types.ClassifiedError, bool)

var chain = []strategy{
	richCategorizer,
	tableLookup,
	genericDefault,
}

// Classify maps a raw failure into a user-facing classification. It is a
// pure function: same input, same output, no I/O. genericDefault always
// matches, so a result is guaranteed.
func Classify(f Failure) types.ClassifiedError {
	for _, s := range chain {
		if ce, ok := s(f); ok {
			ce.TechnicalMessage = technicalDetail(f, ce.TechnicalMessage)
			ce.Code = f.Code
			ce.Description = f.Description
			ce.URL = f.URL
			return *ce
		}
	}
	// Unreachable: genericDefault never declines.
	return types.ClassifiedError{FriendlyTitle: genericTitle}
}

// TimeoutCode is the synthetic code raised when the stall timer fires.
// It matches the platform request-timeout code so the table treats local
// stalls identically to network timeouts.
const TimeoutCode = -7

// Timeout builds the classification for a locally detected stall.
func Timeout(viewURL string, after string) types.ClassifiedError {
	code := TimeoutCode
	return Classify(Failure{
		Code:        &code,
		Description: "ERR_TIMED_OUT",
		URL:         viewURL,
		RawMessage:  fmt.Sprintf("no response from view host within %s", after),
	})
}

// InvalidURL builds the classification for a client-side URL validation
// failure, before anything is sent to the host.
func InvalidURL(rawURL string, reason string) types.ClassifiedError {
	code := codeInvalidURL
	return Classify(Failure{
		Code:        &code,
		Description: "ERR_INVALID_URL",
		URL:         rawURL,
		RawMessage:  reason,
	})
}

// richCategorizer needs the full triple. It refines the table titles with
// the failing site's hostname so the panel names what actually broke.
func richCategorizer(f Failure) (*types.ClassifiedError, bool) {
	if f.Code == nil || f.Description == "" || f.URL == "" {
		return nil, false
	}
	entry, ok := codeTable[*f.Code]
	if !ok {
		return nil, false
	}
	parsed, err := url.Parse(f.URL)
	if err != nil || parsed.Hostname() == "" {
		return nil, false
	}
	host := parsed.Hostname()
	return &types.ClassifiedError{
		FriendlyTitle:    entry.title,
		FriendlySubtitle: entry.subtitle,
		TechnicalMessage: fmt.Sprintf("host: %s", host),
	}, true
}

// tableLookup resolves, in order: numeric code, normalized description,
// raw description.
func tableLookup(f Failure) (*types.ClassifiedError, bool) {
	if f.Code != nil {
		if entry, ok := codeTable[*f.Code]; ok {
			return &types.ClassifiedError{
				FriendlyTitle:    entry.title,
				FriendlySubtitle: entry.subtitle,
			}, true
		}
	}
	if f.Description != "" {
		normalized := strings.ToUpper(strings.TrimSpace(f.Description))
		if entry, ok := descriptionTable[normalized]; ok {
			return &types.ClassifiedError{
				FriendlyTitle:    entry.title,
				FriendlySubtitle: entry.subtitle,
			}, true
		}
		if entry, ok := descriptionTable[f.Description]; ok {
			return &types.ClassifiedError{
				FriendlyTitle:    entry.title,
				FriendlySubtitle: entry.subtitle,
			}, true
		}
	}
	return nil, false
}

func genericDefault(f Failure) (*types.ClassifiedError, bool) {
	return &types.ClassifiedError{
		FriendlyTitle:    genericTitle,
		FriendlySubtitle: genericSubtitle,
	}, true
}

// technicalDetail joins whichever raw facts are available, newline
// separated, for the collapsible details affordance. Categorizer detail
// is appended last.
func technicalDetail(f Failure, extra string) string {
	var parts []string
	if f.RawMessage != "" {
		parts = append(parts, f.RawMessage)
	} else if f.Description != "" {
		parts = append(parts, f.Description)
	}
	if f.Code != nil {
		parts = append(parts, fmt.Sprintf("Error code: %d", *f.Code))
	}
	if f.URL != "" {
		parts = append(parts, fmt.Sprintf("URL: %s", f.URL))
	}
	if extra != "" {
		parts = append(parts, extra)
	}
	return strings.Join(parts, "\n")
}
