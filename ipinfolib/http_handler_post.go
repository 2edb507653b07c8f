package ipinfolib

import (
	"io"
	"net/http"
	"strings"

	"github.com/qri-io/jsonschema"
)

var batchRequestJSONSchema = func() *jsonschema.Schema {
	data := `{
        "type": "object",
        "required": [
            "ips"
        ],
        "additionalProperties": false,
        "properties": {
            "ips": {
                "type": "array",
                "minItems": 1,
                "maxItems": 1000,
                "items": {
                    "type": "string",
                    "minLength": 1,
                    "maxLength": 64
                }
            }
        }
    }`

	rv := &jsonschema.Schema{}
	if err := json.Unmarshal([]byte(data), rv); err != nil {
		panic(err)
	}

	return rv
}()

// maxBatchBodySize is enough for a thousand of longest addresses.
const maxBatchBodySize = 128 * 1024

type batchRequest struct {
	IPs []string `json:"ips"`
}

type batchResponse struct {
	Results BatchResults `json:"results"`
}

// decodeBatchRequest returns a list of addresses or an error to send.
func decodeBatchRequest(req *http.Request) ([]string, *httpError) {
	if !strings.Contains(req.Header.Get("Content-Type"), "application/json") {
		return nil, &httpError{message: "Incorrect content type", statusCode: http.StatusUnsupportedMediaType}
	}

	body, err := io.ReadAll(io.LimitReader(req.Body, maxBatchBodySize+1))
	if err != nil {
		return nil, &httpError{message: "Cannot read request body", statusCode: http.StatusBadRequest, err: err}
	}

	if len(body) > maxBatchBodySize {
		return nil, &httpError{message: "Request body is too large", statusCode: http.StatusRequestEntityTooLarge}
	}

	validationErrs, err := batchRequestJSONSchema.ValidateBytes(req.Context(), body)

	switch {
	case err != nil:
		return nil, &httpError{message: "Cannot validate body", statusCode: http.StatusBadRequest, err: err}
	case len(validationErrs) > 0:
		return nil, &httpError{message: "Invalid request body", statusCode: http.StatusBadRequest, err: validationErrs[0]}
	}

	parsed := batchRequest{}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, &httpError{message: "Cannot parse request JSON", statusCode: http.StatusBadRequest, err: err}
	}

	return parsed.IPs, nil
}

func (h httpHandler) handlePostBatch(w http.ResponseWriter, req *http.Request) {
	defer req.Body.Close()

	ips, httpErr := decodeBatchRequest(req)
	if httpErr != nil {
		h.encodeJSON(w, httpErr.StatusCode(), httpErr)

		return
	}

	results, err := h.client.LookupBatch(req.Context(), ips)
	if err != nil {
		h.sendError(w, err, "Cannot lookup given addresses", statusCodeFor(err))

		return
	}

	h.encodeJSON(w, http.StatusOK, batchResponse{Results: results})
}
