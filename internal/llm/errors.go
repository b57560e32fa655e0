package llm

import (
	"errors"

	openai "github.com/sashabaranov/go-openai"
)

// StatusCode reports the HTTP status carried by a provider error. The second
// return value is false for transport failures that never got a response.
func StatusCode(err error) (int, bool) {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode != 0 {
		return apiErr.HTTPStatusCode, true
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode != 0 {
		return reqErr.HTTPStatusCode, true
	}
	return 0, false
}
