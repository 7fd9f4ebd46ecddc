package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Upload transfers the given files in one multipart request. The scope
// contributes exactly one correlation field: guest_id for guests,
// session_id for authenticated users.
//
// The backend is expected to always answer uploads in JSON; a non-JSON body
// is treated as failure even on a success status, since any HTML body means
// an unexpected redirect or error page.
func (c *Client) Upload(ctx context.Context, files []UploadFile, scope UploadScope) (*UploadResult, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, f := range files {
		part, err := w.CreateFormFile("file", f.Name)
		if err != nil {
			return nil, errors.Wrap(err, "creating multipart file field")
		}
		if _, err := io.Copy(part, f.Content); err != nil {
			return nil, errors.Wrapf(err, "reading %s", f.Name)
		}
	}

	switch {
	case scope.GuestID != "":
		if err := w.WriteField("guest_id", scope.GuestID); err != nil {
			return nil, errors.Wrap(err, "writing guest_id field")
		}
	default:
		if err := w.WriteField("session_id", scope.SessionID); err != nil {
			return nil, errors.Wrap(err, "writing session_id field")
		}
	}

	if err := w.Close(); err != nil {
		return nil, errors.Wrap(err, "finalizing multipart payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/upload", &buf)
	if err != nil {
		return nil, errors.Wrap(err, "creating request")
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, body, err := c.do(req)
	if err != nil {
		return nil, err
	}
	if !isJSON(resp) {
		return nil, &ProtocolError{Body: truncateBody(string(body))}
	}

	var result UploadResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, &ProtocolError{Body: truncateBody(string(body))}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := result.Error
		if msg == "" {
			msg = "upload failed"
		}
		return nil, &ServerError{StatusCode: resp.StatusCode, Message: msg}
	}

	log.Debug().Int("files", len(files)).Str("session_id", result.SessionID).Msg("upload complete")
	return &result, nil
}
