package image

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/dmorgan81/emotegen/internal/log"
	"github.com/samber/do"
)

const DefaultEndpoint = "https://api.retrodiffusion.ai/v1/edit"

type RetroDiffusionEditor struct {
	Client   *http.Client
	Endpoint string
	Key      string
}

func NewRetroDiffusionEditor(i *do.Injector) (Editor, error) {
	key, err := do.InvokeNamed[string](i, "api_key")
	if err != nil {
		return nil, err
	}
	return &RetroDiffusionEditor{
		Client:   do.MustInvoke[*http.Client](i),
		Endpoint: do.MustInvokeNamed[string](i, "endpoint"),
		Key:      key,
	}, nil
}

func (e *RetroDiffusionEditor) Edit(ctx context.Context, params Params) ([]byte, bool, error) {
	log := log.FromContextOrDiscard(ctx).WithGroup("retrodiffusion").With("prompt", params.Prompt)
	log.Info("requesting edit", "endpoint", e.Endpoint)

	body, err := json.Marshal(params)
	if err != nil {
		return nil, false, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, false, err
	}

	req.Header.Add("Content-Type", "application/json")
	req.Header.Add("X-RD-Token", e.Key)

	resp, err := e.Client.Do(req)
	if err != nil {
		return nil, false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, false, &StatusError{StatusCode: resp.StatusCode, Status: resp.Status}
	}

	body, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, false, err
	}
	var raw json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, false, err
	}

	// Any JSON that is not an object carries no image.
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		log.Warn("response is not an object")
		return nil, false, nil
	}

	if v, ok := fields["outputImageBase64"]; ok {
		data, err := decodeImage("outputImageBase64", v)
		if err != nil {
			return nil, false, err
		}
		log.Info("received image", "field", "outputImageBase64", "bytes", len(data))
		return data, true, nil
	}

	if v, ok := fields["base64_images"]; ok && !falsy(v) {
		var images []json.RawMessage
		if err := json.Unmarshal(v, &images); err != nil {
			return nil, false, &DecodeError{Field: "base64_images", Err: err}
		}
		if len(images) == 0 {
			log.Warn("response carried no image")
			return nil, false, nil
		}
		data, err := decodeImage("base64_images", images[0])
		if err != nil {
			return nil, false, err
		}
		log.Info("received image", "field", "base64_images", "bytes", len(data))
		return data, true, nil
	}

	log.Warn("response carried no image")
	return nil, false, nil
}

// decodeImage expects a base64 JSON string; null and other types are
// malformed payloads, not missing images.
func decodeImage(field string, v json.RawMessage) ([]byte, error) {
	if bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
		return nil, &DecodeError{Field: field, Err: errors.New("null image")}
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return nil, &DecodeError{Field: field, Err: err}
	}
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, &DecodeError{Field: field, Err: err}
	}
	return data, nil
}

// falsy matches the JSON values an empty or absent image list may take.
func falsy(v json.RawMessage) bool {
	switch string(bytes.TrimSpace(v)) {
	case "null", "[]", `""`, "0", "false", "{}":
		return true
	}
	return false
}
