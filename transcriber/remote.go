package transcriber

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"murmur/audio"
)

const defaultRemoteModel = "whisper-large-v3-turbo"

// Remote talks to an OpenAI-compatible hosted transcription API.
type Remote struct {
	base   string
	apiKey string
	model  string
	client *http.Client
}

func NewRemote(baseURL, apiKey, model string, timeout time.Duration) *Remote {
	if model == "" {
		model = defaultRemoteModel
	}
	return &Remote{
		base:   strings.TrimRight(baseURL, "/"),
		apiKey: apiKey,
		model:  model,
		client: newHTTPClient(timeout),
	}
}

func (r *Remote) Name() string    { return "remote" }
func (r *Remote) BaseURL() string { return r.base }

type remoteResponse struct {
	Text string `json:"text"`
}

func (r *Remote) Transcribe(ctx context.Context, blob audio.Blob, opts Options) (Result, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", "audio."+blob.Format)
	if err != nil {
		return Result{}, fmt.Errorf("building request: %w", err)
	}
	if _, err := part.Write(blob.Data); err != nil {
		return Result{}, fmt.Errorf("building request: %w", err)
	}

	writer.WriteField("model", r.model)
	writer.WriteField("response_format", "json")
	if opts.Language != "" && opts.Language != "auto" {
		writer.WriteField("language", opts.Language)
	}
	writer.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.base+"/audio/transcriptions", &body)
	if err != nil {
		return Result{}, err
	}
	req.Header.Set("Authorization", "Bearer "+r.apiKey)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := r.client.Do(req)
	if err != nil {
		return Result{}, wrapTransport(r.Name(), err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, wrapTransport(r.Name(), err)
	}
	if resp.StatusCode != http.StatusOK {
		return Result{}, wrapStatus(r.Name(), resp.StatusCode, string(respBody))
	}

	var rr remoteResponse
	if err := json.Unmarshal(respBody, &rr); err != nil {
		return Result{}, &Error{Kind: ServerError, Backend: r.Name(), Err: fmt.Errorf("response parse: %w", err)}
	}
	return Result{Text: rr.Text}, nil
}
