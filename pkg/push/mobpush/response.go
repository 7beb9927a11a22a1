package mobpush

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/eachchat/mob-push/pkg/push"
)

// Response is the gateway's answer to a create-push request.
type Response struct {
	Status int    `json:"status"`
	Res    *Res   `json:"res,omitempty"`
	Error  string `json:"error,omitempty"`
}

type Res struct {
	BatchID string `json:"batchId"`
}

func (r *Response) batchID() string {
	if r.Res == nil {
		return ""
	}
	return r.Res.BatchID
}

const maxErrorBody = 256

// decodeResponse interprets the body of a gateway answer. A body that is not
// a gateway response is a gateway rejection when the HTTP status already
// says so, a serialize error otherwise.
func decodeResponse(httpStatus int, body []byte) (*Response, *push.PushError) {
	resp := new(Response)
	if err := json.Unmarshal(body, resp); err != nil {
		if httpStatus != http.StatusOK {
			if len(body) > maxErrorBody {
				body = body[:maxErrorBody]
			}
			return nil, push.GatewayError(httpStatus, string(body))
		}
		return nil, push.SerializeError(fmt.Errorf("failed decode gateway response: %w", err))
	}

	if resp.Status != http.StatusOK {
		return resp, push.GatewayError(resp.Status, resp.Error)
	}
	return resp, nil
}
