package openai

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/poiesic/prodmatch/ai"
)

// langchaingo reports HTTP failures as "API returned unexpected status code: 429: ...".
var statusCodePattern = regexp.MustCompile(`status code: (\d{3})`)

// classifyError converts a langchaingo error into an *ai.ServiceError.
func classifyError(service, op string, err error) error {
	if err == nil {
		return nil
	}

	se := &ai.ServiceError{Service: service, Op: op, Err: err}
	msg := strings.ToLower(err.Error())

	switch m := statusCodePattern.FindStringSubmatch(msg); {
	case m != nil:
		se.StatusCode, _ = strconv.Atoi(m[1])
		se.Kind = ai.KindForStatus(se.StatusCode)
	case strings.Contains(msg, "rate limit") || strings.Contains(msg, "quota"):
		se.Kind = ai.Quota
	default:
		se.Kind = ai.KindForTransportError(err)
	}
	return se
}
