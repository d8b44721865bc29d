package input

import (
	"github.com/ternarybob/oactree/internal/anyvalue"
)

// RequestType discriminates user input request kinds
type RequestType int

const (
	RequestInvalid RequestType = iota
	// RequestUserValue asks the user to provide a value of a given type
	RequestUserValue
	// RequestUserChoice asks the user to pick one of a list of options
	RequestUserChoice
)

// String returns the display name for the request type
func (t RequestType) String() string {
	switch t {
	case RequestUserValue:
		return "UserValue"
	case RequestUserChoice:
		return "UserChoice"
	default:
		return "Invalid"
	}
}

// Request is a user input request as issued by an instruction. Value holds
// the suggested/template value for RequestUserValue; Options and Metadata
// describe a RequestUserChoice.
type Request struct {
	Type        RequestType
	Value       anyvalue.AnyValue
	Description string
	Options     []string
	Metadata    anyvalue.AnyValue
}

// NewUserValueRequest builds a value request with a template value
func NewUserValueRequest(value anyvalue.AnyValue, description string) Request {
	return Request{
		Type:        RequestUserValue,
		Value:       value,
		Description: description,
	}
}

// NewUserChoiceRequest builds a choice request
func NewUserChoiceRequest(options []string, metadata anyvalue.AnyValue) Request {
	return Request{
		Type:     RequestUserChoice,
		Options:  options,
		Metadata: metadata,
	}
}

// Reply carries the outcome of a user input request. Result false means the
// backend could not provide input; Payload holds the value (RequestUserValue)
// or the selected index as int32 (RequestUserChoice).
type Reply struct {
	Type    RequestType
	Result  bool
	Payload anyvalue.AnyValue
}

// NewUserValueReply builds a value reply
func NewUserValueReply(result bool, value anyvalue.AnyValue) Reply {
	return Reply{Type: RequestUserValue, Result: result, Payload: value}
}

// NewUserChoiceReply builds a choice reply
func NewUserChoiceReply(result bool, choice int) Reply {
	return Reply{
		Type:    RequestUserChoice,
		Result:  result,
		Payload: anyvalue.FromInt32(int32(choice)),
	}
}

// ParseUserValueReply extracts the value from a successful value reply
func ParseUserValueReply(reply Reply) (anyvalue.AnyValue, bool) {
	if reply.Type != RequestUserValue || !reply.Result {
		return anyvalue.Empty(), false
	}
	return reply.Payload, true
}

// ParseUserChoiceReply extracts the selected index from a successful choice
// reply; it returns -1 on failure.
func ParseUserChoiceReply(reply Reply) (int, bool) {
	if reply.Type != RequestUserChoice || !reply.Result {
		return -1, false
	}
	i, err := reply.Payload.AsInt64()
	if err != nil {
		return -1, false
	}
	return int(i), true
}
