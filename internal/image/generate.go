package image

import (
	"context"
	"fmt"
)

type Params struct {
	Prompt           string `json:"prompt"`
	InputImageBase64 string `json:"inputImageBase64"`
}

// Editor performs a single edit request. found is false when the service
// answered successfully but returned no image.
type Editor interface {
	Edit(context.Context, Params) (data []byte, found bool, err error)
}

// StatusError is returned when the service answers with an HTTP error status.
type StatusError struct {
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status: %s", e.Status)
}

// DecodeError is returned when the image payload in an otherwise valid
// response is not valid base64.
type DecodeError struct {
	Field string
	Err   error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding %s: %v", e.Field, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
