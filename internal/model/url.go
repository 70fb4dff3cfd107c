package model

import "net/url"

// URL identifies the target of a fetch. It wraps the parsed form and
// exposes the pieces the fetcher works with.
type URL struct {
	u url.URL
}

// ParseURL parses raw in its absolute form.
func ParseURL(raw string) (*URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	return &URL{u: *u}, nil
}

// Protocol returns the scheme.
func (u *URL) Protocol() string { return u.u.Scheme }

// Host returns the hostname, without the port.
func (u *URL) Host() string { return u.u.Hostname() }

// Port returns the port, or "" when the URL does not carry one.
func (u *URL) Port() string { return u.u.Port() }

// Path returns the escaped path, "" when the URL has none.
func (u *URL) Path() string { return u.u.EscapedPath() }

// Query returns the raw query string, without the "?".
func (u *URL) Query() string { return u.u.RawQuery }

// PathQuery returns the request target as it goes on the wire: the
// path followed by the query, if any.
func (u *URL) PathQuery() string {
	pq := u.u.EscapedPath()
	if u.u.ForceQuery || u.u.RawQuery != "" {
		pq += "?" + u.u.RawQuery
	}
	return pq
}

// SetPath replaces the path.
func (u *URL) SetPath(p string) {
	u.u.Path = p
	u.u.RawPath = ""
}

func (u *URL) String() string { return u.u.String() }
