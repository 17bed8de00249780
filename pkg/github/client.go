package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/pkg/errors"
	"github.com/wowpub/cfrelease/pkg/cleanhttp"
)

const DefaultBaseURL = "https://api.github.com"

type Release struct {
	ID         int64  `json:"id"`
	TagName    string `json:"tag_name"`
	Name       string `json:"name"`
	Body       string `json:"body"`
	Draft      bool   `json:"draft"`
	Prerelease bool   `json:"prerelease"`
	UploadURL  string `json:"upload_url"`
	HTMLURL    string `json:"html_url"`
}

// UploadTarget strips the URI-template parameters the API embeds in
// upload_url, leaving the bare asset endpoint.
func (r *Release) UploadTarget() string {
	if idx := strings.IndexByte(r.UploadURL, '{'); idx != -1 {
		return r.UploadURL[:idx]
	}

	return r.UploadURL
}

type httpDo interface {
	Do(*http.Request) (*http.Response, error)
}

type Client struct {
	BaseURL   string
	Token     string
	UserAgent string

	client httpDo
}

func NewClient(token, userAgent string) *Client {
	return &Client{
		BaseURL:   DefaultBaseURL,
		Token:     token,
		UserAgent: userAgent,
		client:    cleanhttp.DefaultClient,
	}
}

func (c *Client) do(req *http.Request) (*http.Response, error) {
	req.Header.Set("Accept", "application/json")

	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	if c.client == nil {
		c.client = cleanhttp.DefaultClient
	}

	return c.client.Do(req)
}

// ReleaseByTag looks a release up by its tag. A missing tag is not an
// error; it comes back as a nil release.
func (c *Client) ReleaseByTag(ctx context.Context, owner, name, tag string) (*Release, error) {
	u := fmt.Sprintf("%s/repos/%s/%s/releases/tags/%s", c.BaseURL, owner, name, tag)

	req, err := http.NewRequestWithContext(ctx, "GET", u, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "looking up release %s", tag)
	}

	defer resp.Body.Close()

	if resp.StatusCode == 404 {
		return nil, nil
	}

	if resp.StatusCode/100 != 2 {
		return nil, errors.Errorf("release lookup returned status %d for %s", resp.StatusCode, tag)
	}

	var rel Release

	err = json.NewDecoder(resp.Body).Decode(&rel)
	if err != nil {
		return nil, err
	}

	return &rel, nil
}

// CreateRelease publishes a new non-draft release whose title is its
// tag.
func (c *Client) CreateRelease(ctx context.Context, owner, name, tag, body string) (*Release, error) {
	payload := struct {
		TagName    string `json:"tag_name"`
		Name       string `json:"name"`
		Body       string `json:"body"`
		Draft      bool   `json:"draft"`
		Prerelease bool   `json:"prerelease"`
	}{
		TagName: tag,
		Name:    tag,
		Body:    body,
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	u := fmt.Sprintf("%s/repos/%s/%s/releases", c.BaseURL, owner, name)

	req, err := http.NewRequestWithContext(ctx, "POST", u, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "creating release %s", tag)
	}

	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return nil, errors.Errorf("release create returned status %d for %s", resp.StatusCode, tag)
	}

	var rel Release

	err = json.NewDecoder(resp.Body).Decode(&rel)
	if err != nil {
		return nil, err
	}

	return &rel, nil
}

// UploadAsset posts one asset to a release's upload endpoint. GitHub
// rejects duplicate asset names on a release, which a caller retrying
// a partial upload will run into.
func (c *Client) UploadAsset(ctx context.Context, target, name string, size int64, contentType string, body io.Reader) error {
	u := target + "?name=" + url.QueryEscape(name)

	req, err := http.NewRequestWithContext(ctx, "POST", u, body)
	if err != nil {
		return err
	}

	req.ContentLength = size
	req.Header.Set("Content-Type", contentType)

	resp, err := c.do(req)
	if err != nil {
		return errors.Wrapf(err, "uploading %s", name)
	}

	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return errors.Errorf("asset upload returned status %d for %s", resp.StatusCode, name)
	}

	return nil
}
