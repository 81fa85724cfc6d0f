package helper

import (
	"context"
	"io"
	"net/url"

	"github.com/pkg/errors"
	"github.com/whitekid/goxp/log"
	"github.com/whitekid/goxp/request"
)

// ReadFileOrURL read http://.., https://.., file://.. or plain file name
func ReadFileOrURL(ctx context.Context, s string) ([]byte, error) {
	u, err := url.Parse(s)
	if err != nil {
		return nil, err
	}

	switch u.Scheme {
	case "http", "https":
		log.Debugf("read url %s", u.String())
		resp, err := request.Get("%s", u.String()).Do(ctx)
		if err != nil {
			return nil, errors.Wrapf(err, "url get failed: url=%s", u.String())
		}
		defer resp.Body.Close()

		if !resp.Success() {
			return nil, errors.Errorf("url get failed with status: url=%s, status=%d", u.String(), resp.StatusCode)
		}

		return io.ReadAll(resp.Body)
	case "file":
		return ReadFile(u.Path)
	case "":
		return ReadFile(s)
	default:
		return nil, errors.Errorf("unsupported url scheme: %s", u.Scheme)
	}
}
