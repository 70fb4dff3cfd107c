package model

import "fmt"

// Verb is the closed set of HTTP methods the fetcher issues.
type Verb int

const (
	GET Verb = iota
	POST
	PUT
	DELETE
)

// Method returns the wire form of v. A verb outside the closed set is
// a programming error.
func (v Verb) Method() string {
	switch v {
	case GET:
		return "GET"
	case POST:
		return "POST"
	case PUT:
		return "PUT"
	case DELETE:
		return "DELETE"
	}
	panic(fmt.Sprintf("model: unknown verb %d", int(v)))
}

func (v Verb) String() string {
	switch v {
	case GET, POST, PUT, DELETE:
		return v.Method()
	}
	return fmt.Sprintf("Verb(%d)", int(v))
}
