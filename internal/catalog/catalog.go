// Package catalog loads the target catalog from a local file or a remote blob URL.
package catalog

import (
	"context"
	"encoding/json"
	"os"
	"strings"

	"github.com/jonathan/cerebro/internal/fetch"
	"github.com/jonathan/cerebro/internal/schemas"
	"github.com/jonathan/cerebro/internal/types"
	schemafiles "github.com/jonathan/cerebro/schemas"
)

// Options configures remote catalog retrieval.
type Options struct {
	// Token is sent as a bearer token when the catalog is fetched over HTTP.
	Token     string
	UserAgent string
	Fetcher   fetch.Fetcher
}

// Load reads the catalog at location, which is a file path or an http(s) URL.
// The document must be a JSON array of objects; entry-level requirements are
// left to the caller so that one malformed entry does not reject the catalog.
func Load(ctx context.Context, location string, opts Options) ([]types.Target, error) {
	var (
		data []byte
		err  error
	)
	if isRemote(location) {
		data, err = fetchRemote(ctx, location, opts)
	} else {
		data, err = readLocal(location)
	}
	if err != nil {
		return nil, err
	}
	return Parse(location, data)
}

// Parse checks the catalog shape and decodes it.
func Parse(location string, data []byte) ([]types.Target, error) {
	validator, err := schemas.Compile("catalog", schemafiles.Catalog)
	if err != nil {
		return nil, &LoadError{Location: location, Message: "catalog schema unavailable", Cause: err}
	}
	if err := validator.ValidateBytes(data); err != nil {
		return nil, &LoadError{Location: location, Message: "catalog is not a list of targets", Cause: err}
	}

	var targets []types.Target
	if err := json.Unmarshal(data, &targets); err != nil {
		return nil, &LoadError{Location: location, Message: "invalid JSON", Cause: err}
	}
	return targets, nil
}

func isRemote(location string) bool {
	return strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://")
}

func readLocal(path string) ([]byte, error) {
	if path == "" {
		return nil, &LoadError{Location: path, Message: "catalog path is empty"}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Location: path, Message: "failed to read file", Cause: err}
	}
	return data, nil
}

func fetchRemote(ctx context.Context, url string, opts Options) ([]byte, error) {
	fetcher := opts.Fetcher
	if fetcher == nil {
		fetchOpts := fetch.DefaultOptions()
		if opts.UserAgent != "" {
			fetchOpts.UserAgent = opts.UserAgent
		}
		fetchOpts.Headers = map[string]string{"Accept": "application/json"}
		if opts.Token != "" {
			fetchOpts.Headers["Authorization"] = "Bearer " + opts.Token
		}
		fetcher = fetch.NewClient(fetchOpts)
	}

	result, err := fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, &LoadError{Location: url, Message: "failed to fetch", Cause: err}
	}
	return []byte(result.HTML), nil
}
