package classify

// Platform navigation-stack error codes (Chromium net error numbering).
const (
	codeConnectionRefused    = -102
	codeNameNotResolved      = -105
	codeInternetDisconnected = -106
	codeConnectionTimedOut   = -118
	codeTimedOut             = -7
	codeInvalidURL           = -300
)

type tableEntry struct {
	title    string
	subtitle string
}

const (
	genericTitle    = "This page couldn't load"
	genericSubtitle = "Something went wrong while loading the embedded page."
)

var codeTable = map[int]tableEntry{
	codeNameNotResolved: {
		title:    "We couldn't find that site",
		subtitle: "Check the address for typos, or the site may no longer exist.",
	},
	codeInternetDisconnected: {
		title:    "You appear to be offline",
		subtitle: "Check your internet connection and try again.",
	},
	codeConnectionRefused: {
		title:    "The site refused the connection",
		subtitle: "The server is reachable but rejected the request.",
	},
	codeConnectionTimedOut: {
		title:    "The site took too long to respond",
		subtitle: "The server may be overloaded. Try again in a moment.",
	},
	codeTimedOut: {
		title:    "The site took too long to respond",
		subtitle: "The server may be overloaded. Try again in a moment.",
	},
	codeInvalidURL: {
		title:    "That address doesn't look right",
		subtitle: "Double-check the URL before retrying.",
	},
}

var descriptionTable = map[string]tableEntry{
	"ERR_NAME_NOT_RESOLVED":     codeTable[codeNameNotResolved],
	"ERR_INTERNET_DISCONNECTED": codeTable[codeInternetDisconnected],
	"ERR_CONNECTION_REFUSED":    codeTable[codeConnectionRefused],
	"ERR_CONNECTION_TIMED_OUT":  codeTable[codeConnectionTimedOut],
	"ERR_TIMED_OUT":             codeTable[codeTimedOut],
	"ERR_INVALID_URL":           codeTable[codeInvalidURL],
}
