package push

import "fmt"

// ErrorKind tags the stage of the pipeline a PushError comes from.
type ErrorKind int

const (
	// KindStore: the subscription store failed to resolve the audience.
	KindStore ErrorKind = iota + 1
	// KindTransport: the request could not be built or exchanged.
	KindTransport
	// KindSerialize: the payload could not be encoded, or the response decoded.
	KindSerialize
	// KindGateway: the gateway answered with a non-200 status.
	KindGateway
)

func (k ErrorKind) String() string {
	switch k {
	case KindStore:
		return "store"
	case KindTransport:
		return "transport"
	case KindSerialize:
		return "serialize"
	case KindGateway:
		return "gateway"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// PushError reports the failure of one push item. Store, transport and
// serialize errors wrap the underlying error, gateway errors carry the status
// and message the gateway answered with.
type PushError struct {
	Kind     ErrorKind
	Resource any
	PushID   string

	Status  int
	Message string
	Err     error
}

func (e *PushError) Error() string {
	if e.Kind == KindGateway {
		return fmt.Sprintf("push %s: gateway rejected [%d] %s", e.PushID, e.Status, e.Message)
	}
	return fmt.Sprintf("push %s: %s error: %v", e.PushID, e.Kind, e.Err)
}

func (e *PushError) Unwrap() error { return e.Err }

func StoreError(err error) *PushError { return &PushError{Kind: KindStore, Err: err} }

func TransportError(err error) *PushError { return &PushError{Kind: KindTransport, Err: err} }

func SerializeError(err error) *PushError { return &PushError{Kind: KindSerialize, Err: err} }

func GatewayError(status int, message string) *PushError {
	return &PushError{Kind: KindGateway, Status: status, Message: message}
}
