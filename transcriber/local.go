package transcriber

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"murmur/audio"
)

// Local talks to the on-machine SenseVoice HTTP sidecar.
type Local struct {
	base   string
	client *http.Client
}

func NewLocal(baseURL string, timeout time.Duration) *Local {
	return &Local{
		base:   strings.TrimRight(baseURL, "/"),
		client: newHTTPClient(timeout),
	}
}

func (l *Local) Name() string    { return "local" }
func (l *Local) BaseURL() string { return l.base }

type localResponse struct {
	Text string `json:"text"`
}

func (l *Local) Transcribe(ctx context.Context, blob audio.Blob, opts Options) (Result, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", "audio."+blob.Format)
	if err != nil {
		return Result{}, fmt.Errorf("building request: %w", err)
	}
	if _, err := part.Write(blob.Data); err != nil {
		return Result{}, fmt.Errorf("building request: %w", err)
	}

	lang := opts.Language
	if lang == "" {
		lang = "auto"
	}
	writer.WriteField("language", lang)
	writer.WriteField("use_itn", strconv.FormatBool(opts.InverseTextNorm))
	writer.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.base+"/transcribe/normal", &body)
	if err != nil {
		return Result{}, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := l.client.Do(req)
	if err != nil {
		return Result{}, wrapTransport(l.Name(), err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, wrapTransport(l.Name(), err)
	}
	if resp.StatusCode != http.StatusOK {
		return Result{}, wrapStatus(l.Name(), resp.StatusCode, string(respBody))
	}

	var lr localResponse
	if err := json.Unmarshal(respBody, &lr); err != nil {
		return Result{}, &Error{Kind: ServerError, Backend: l.Name(), Err: fmt.Errorf("response parse: %w", err)}
	}
	return Result{Text: lr.Text}, nil
}
