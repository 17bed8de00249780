package curse

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/pkg/errors"
	"github.com/wowpub/cfrelease/pkg/cleanhttp"
)

const (
	DefaultBaseURL = "https://api.curseforge.com/v1"

	// GameID for World of Warcraft in the CurseForge catalog.
	GameID = 1
)

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
	req.Header.Set("x-api-key", c.Token)

	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	if c.client == nil {
		c.client = cleanhttp.DefaultClient
	}

	return c.client.Do(req)
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, "GET", c.BaseURL+path, nil)
	if err != nil {
		return err
	}

	resp, err := c.do(req)
	if err != nil {
		return errors.Wrapf(err, "fetching %s", path)
	}

	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return errors.Errorf("curseforge returned status %d for %s", resp.StatusCode, path)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

// VersionTypes returns the game version-type registry as an id to slug
// map, loaded once per run.
func (c *Client) VersionTypes(ctx context.Context) (map[int]string, error) {
	var body struct {
		Data []VersionType `json:"data"`
	}

	err := c.get(ctx, fmt.Sprintf("/games/%d/version-types", GameID), &body)
	if err != nil {
		return nil, err
	}

	types := make(map[int]string, len(body.Data))

	for _, vt := range body.Data {
		types[vt.ID] = vt.Slug
	}

	return types, nil
}

func (c *Client) Mod(ctx context.Context, id int) (*Mod, error) {
	var body struct {
		Data Mod `json:"data"`
	}

	err := c.get(ctx, fmt.Sprintf("/mods/%d", id), &body)
	if err != nil {
		return nil, err
	}

	return &body.Data, nil
}

// Changelog returns the HTML changelog attached to a file upload.
func (c *Client) Changelog(ctx context.Context, modID, fileID int) (string, error) {
	var body struct {
		Data string `json:"data"`
	}

	err := c.get(ctx, fmt.Sprintf("/mods/%d/files/%d/changelog", modID, fileID), &body)
	if err != nil {
		return "", err
	}

	return body.Data, nil
}

// File opens a download stream for an archive. The caller owns the
// returned body.
func (c *Client) File(ctx context.Context, url string) (io.ReadCloser, int64, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, 0, err
	}

	resp, err := c.do(req)
	if err != nil {
		return nil, 0, errors.Wrapf(err, "downloading %s", url)
	}

	if resp.StatusCode != 200 {
		resp.Body.Close()
		return nil, 0, errors.Errorf("download returned status %d: %s", resp.StatusCode, url)
	}

	return resp.Body, resp.ContentLength, nil
}
