// Package rbpuri parses the connection-string grammar clients use to
// name a target endpoint and address map, grounded in
// URLGrammar.hpp's URI struct from the original uHAL source — ported
// here as an anchored regexp plus manual splitting rather than a
// boost::spirit-style parser-combinator grammar, since that's Go's
// idiomatic tool for a grammar this shape.
package rbpuri

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ast0815/ipbus-software/internal/rbptypes"
)

// KeyValue is one ordered (key, value) query argument.
type KeyValue struct {
	Key, Value string
}

// URI is a parsed "protocol://host:port/path.ext?k1=v1&k2=v2" string.
// All parts after Protocol are optional, mirroring URLGrammar.hpp's
// uhal::URI.
type URI struct {
	Protocol  string
	Host      string
	Port      string
	Path      string
	Extension string
	Arguments []KeyValue
}

// uriPattern anchors the whole grammar in one pass: protocol is
// required, everything else is optional.
var uriPattern = regexp.MustCompile(
	`^(?P<protocol>[A-Za-z][A-Za-z0-9+.\-]*)://` +
		`(?P<host>[^:/?]*)` +
		`(?::(?P<port>[0-9]+))?` +
		`(?:/(?P<path>[^?]*))?` +
		`(?:\?(?P<query>.*))?$`,
)

// Parse parses raw into a URI. A non-matching string or a malformed
// query component returns rbptypes.ErrMalformedURI.
func Parse(raw string) (URI, error) {
	m := uriPattern.FindStringSubmatch(raw)
	if m == nil {
		return URI{}, fmt.Errorf("rbpuri: %w: %q", rbptypes.ErrMalformedURI, raw)
	}
	names := uriPattern.SubexpNames()
	groups := make(map[string]string, len(names))
	for i, name := range names {
		if name != "" {
			groups[name] = m[i]
		}
	}

	u := URI{
		Protocol: groups["protocol"],
		Host:     groups["host"],
		Port:     groups["port"],
	}

	fullPath := groups["path"]
	u.Path, u.Extension = splitExtension(fullPath)

	args, err := parseQuery(groups["query"])
	if err != nil {
		return URI{}, fmt.Errorf("rbpuri: %w: %q: %v", rbptypes.ErrMalformedURI, raw, err)
	}
	u.Arguments = args

	return u, nil
}

func splitExtension(path string) (base, ext string) {
	if path == "" {
		return "", ""
	}
	dot := strings.LastIndexByte(path, '.')
	slash := strings.LastIndexByte(path, '/')
	if dot <= slash {
		return path, ""
	}
	return path[:dot], path[dot+1:]
}

func parseQuery(query string) ([]KeyValue, error) {
	if query == "" {
		return nil, nil
	}
	var args []KeyValue
	for _, pair := range strings.Split(query, "&") {
		if pair == "" {
			continue
		}
		k, v, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("argument %q missing '='", pair)
		}
		args = append(args, KeyValue{Key: k, Value: v})
	}
	return args, nil
}

// Arg returns the value of the first argument named key.
func (u URI) Arg(key string) (string, bool) {
	for _, kv := range u.Arguments {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return "", false
}

func (u URI) String() string {
	var b strings.Builder
	b.WriteString(u.Protocol)
	b.WriteString("://")
	b.WriteString(u.Host)
	if u.Port != "" {
		b.WriteByte(':')
		b.WriteString(u.Port)
	}
	if u.Path != "" {
		b.WriteByte('/')
		b.WriteString(u.Path)
		if u.Extension != "" {
			b.WriteByte('.')
			b.WriteString(u.Extension)
		}
	}
	if len(u.Arguments) > 0 {
		b.WriteByte('?')
		for i, kv := range u.Arguments {
			if i > 0 {
				b.WriteByte('&')
			}
			b.WriteString(kv.Key)
			b.WriteByte('=')
			b.WriteString(kv.Value)
		}
	}
	return b.String()
}
