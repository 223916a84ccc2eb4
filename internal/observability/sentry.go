package observability

import (
	"net/url"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
)

const redacted = "[redacted]"

func InitSentry(dsn, environment string) error {
	if dsn == "" {
		return nil
	}

	return sentry.Init(sentry.ClientOptions{
		Dsn:              dsn,
		Environment:      environment,
		AttachStacktrace: true,
		BeforeSend:       scrubEvent,
	})
}

func FlushSentry() {
	sentry.Flush(2 * time.Second)
}

// scrubEvent strips access tokens from the request attached to an event.
// Protected endpoints take the token as a query parameter.
func scrubEvent(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
	if event == nil || event.Request == nil {
		return event
	}

	event.Request.QueryString = scrubQuery(event.Request.QueryString)
	if parsed, err := url.Parse(event.Request.URL); err == nil && parsed.RawQuery != "" {
		parsed.RawQuery = scrubQuery(parsed.RawQuery)
		event.Request.URL = parsed.String()
	}
	for name := range event.Request.Headers {
		if strings.EqualFold(name, "Authorization") || strings.EqualFold(name, "Cookie") {
			event.Request.Headers[name] = redacted
		}
	}
	event.Request.Data = ""

	return event
}

func scrubQuery(raw string) string {
	if raw == "" {
		return raw
	}
	values, err := url.ParseQuery(raw)
	if err != nil {
		return redacted
	}
	if _, ok := values["token"]; ok {
		values.Set("token", redacted)
	}
	return values.Encode()
}
