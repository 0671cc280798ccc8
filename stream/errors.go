package stream

import "strings"

// User-facing messages surfaced instead of raw upstream fault text. The
// original detail is logged server-side only.
const (
	// MsgTransient is shown for rate limiting, 5xx and timeout faults.
	MsgTransient = "AI サービスが一時的に利用できません。しばらくしてから再度お試しください。" +
		" / The AI service is temporarily unavailable. Please try again shortly."
	// MsgGeneric is shown for every other streaming fault.
	MsgGeneric = "コンテンツ生成中にエラーが発生しました。再度お試しください。" +
		" / An error occurred during content generation. Please try again."
)

// transientMarkers are lowercase substrings that classify an upstream fault
// as transient and worth retrying at initiation.
var transientMarkers = []string{
	"failed to complete the prompt",
	"429",
	"rate limit",
	"too many requests",
	"500",
	"502",
	"503",
	"504",
	"internal server error",
	"service unavailable",
	"timeout",
	"timed out",
}

// IsTransient reports whether an upstream fault is a transient service
// error (rate limiting, 5xx, timeout) based on its message text. The
// hosted runtime does not expose a structured fault taxonomy, so substring
// matching is the contract here.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range transientMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// UserMessage maps an upstream fault to the user-facing message emitted in
// the terminal Error event.
func UserMessage(err error) string {
	if IsTransient(err) {
		return MsgTransient
	}
	return MsgGeneric
}
