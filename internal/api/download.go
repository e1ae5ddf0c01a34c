package api

import (
	"context"
	"io"

	"github.com/pkg/errors"
)

// Download streams the file at url into w and returns the byte count and the
// response content type. Redirects are followed. Media hosts never see the API key.
func (c *Client) Download(ctx context.Context, url string, w io.Writer) (int64, string, error) {
	ctx, cancel := withTimeout(ctx, c.requestTimeout)
	defer cancel()

	resp, err := c.media.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(url)
	if err != nil {
		return 0, "", errors.Wrapf(err, "download %s", url)
	}
	body := resp.RawBody()
	defer body.Close()

	if resp.IsError() {
		return 0, "", &Error{Op: "download " + url, Status: resp.StatusCode()}
	}
	n, err := io.Copy(w, body)
	if err != nil {
		return n, "", errors.Wrapf(err, "download %s", url)
	}
	return n, resp.Header().Get("Content-Type"), nil
}
