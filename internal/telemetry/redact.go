package telemetry

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

const redactedSegment = "<redacted>"

// urlKeys are the HTTP semantic convention attributes that carry a request path.
var urlKeys = []attribute.Key{"http.target", "http.url", "url.path", "url.full"}

// RedactPath replaces the path segment that follows prefix in s. It reports
// whether anything was replaced.
func RedactPath(s, prefix string) (string, bool) {
	if prefix == "" {
		return s, false
	}
	idx := pathIndex(s, prefix)
	if idx < 0 {
		return s, false
	}
	start := idx + len(prefix)
	rest := s[start:]
	end := strings.IndexAny(rest, "/?#")
	if end < 0 {
		end = len(rest)
	}
	if end == 0 {
		return s, false
	}
	return s[:start] + redactedSegment + rest[end:], true
}

// pathIndex finds prefix in s, skipping matches inside a "//" scheme separator.
func pathIndex(s, prefix string) int {
	offset := 0
	for {
		idx := strings.Index(s[offset:], prefix)
		if idx < 0 {
			return -1
		}
		idx += offset
		if idx == 0 || s[idx-1] != '/' {
			return idx
		}
		offset = idx + 1
	}
}

// PathRedactor is a span processor that redacts the path segment following
// any of its prefixes from span names and URL attributes when a span starts.
type PathRedactor struct {
	prefixes []string
}

var _ sdktrace.SpanProcessor = (*PathRedactor)(nil)

func NewPathRedactor(prefixes ...string) *PathRedactor {
	return &PathRedactor{prefixes: prefixes}
}

func (p *PathRedactor) redact(s string) (string, bool) {
	changed := false
	for _, prefix := range p.prefixes {
		var ok bool
		if s, ok = RedactPath(s, prefix); ok {
			changed = true
		}
	}
	return s, changed
}

func (p *PathRedactor) OnStart(_ context.Context, s sdktrace.ReadWriteSpan) {
	if len(p.prefixes) == 0 {
		return
	}

	if name, ok := p.redact(s.Name()); ok {
		s.SetName(name)
	}

	for _, kv := range s.Attributes() {
		if kv.Value.Type() != attribute.STRING || !isURLKey(kv.Key) {
			continue
		}
		if v, ok := p.redact(kv.Value.AsString()); ok {
			s.SetAttributes(kv.Key.String(v))
		}
	}
}

func (p *PathRedactor) OnEnd(sdktrace.ReadOnlySpan) {}

func (p *PathRedactor) Shutdown(context.Context) error { return nil }

func (p *PathRedactor) ForceFlush(context.Context) error { return nil }

func isURLKey(k attribute.Key) bool {
	for _, key := range urlKeys {
		if k == key {
			return true
		}
	}
	return false
}

// urlAttributeView drops raw URL attributes from every metric stream.
func urlAttributeView() sdkmetric.View {
	return sdkmetric.NewView(
		sdkmetric.Instrument{Name: "*"},
		sdkmetric.Stream{AttributeFilter: attribute.NewDenyKeysFilter(urlKeys...)},
	)
}
