package rest

import (
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"
	json "github.com/json-iterator/go"

	"github.com/0xAcousticbridge/GAID/pkg/remote"
)

// errorBody covers both PostgREST ({code,message,details,hint}) and GoTrue
// ({error,error_description} or {code,error_code,msg}) error shapes
type errorBody struct {
	Code             interface{} `json:"code"`
	Message          string      `json:"message"`
	Details          interface{} `json:"details"`
	Hint             string      `json:"hint"`
	Error            string      `json:"error"`
	ErrorDescription string      `json:"error_description"`
	ErrorCode        string      `json:"error_code"`
	Msg              string      `json:"msg"`
}

// ParseError parses an error response from the backend
func ParseError(resp *resty.Response) error {
	status := resp.StatusCode()

	var body errorBody
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return &remote.Error{
			Code:    fmt.Sprintf("http_%d", status),
			Message: http.StatusText(status),
			Details: string(resp.Body()),
			Status:  status,
		}
	}

	e := &remote.Error{Status: status, Hint: body.Hint}

	if code, ok := body.Code.(string); ok {
		e.Code = code
	}
	if e.Code == "" {
		e.Code = firstNonEmpty(body.ErrorCode, body.Error, fmt.Sprintf("http_%d", status))
	}

	e.Message = firstNonEmpty(body.Message, body.ErrorDescription, body.Msg, http.StatusText(status))

	switch d := body.Details.(type) {
	case string:
		e.Details = d
	case nil:
	default:
		if b, err := json.Marshal(d); err == nil {
			e.Details = string(b)
		}
	}

	return e
}

// CheckResponse checks if response is successful and returns error if not
func CheckResponse(resp *resty.Response, err error) error {
	if err != nil {
		return err
	}
	if !resp.IsSuccess() {
		return ParseError(resp)
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
