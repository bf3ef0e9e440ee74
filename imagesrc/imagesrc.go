// Package imagesrc supplies FetchFuncs for image loaders: local files
// through an afero filesystem, URLs through an http.Client, and a router
// that picks by scheme. Decoding covers PNG, JPEG and GIF.
package imagesrc

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/kingrea/lazyview"
)

// File fetches sources as paths relative to root on fsys. Sources may not
// escape root.
func File(fsys afero.Fs, root string) lazyview.FetchFunc {
	return func(ctx context.Context, src string) (image.Image, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if strings.TrimSpace(src) == "" {
			return nil, fmt.Errorf("imagesrc: empty path")
		}
		if filepath.IsAbs(src) || strings.Contains(src, "..") {
			return nil, fmt.Errorf("imagesrc: path %s must stay inside %s", src, root)
		}
		f, err := fsys.Open(filepath.Join(root, src))
		if err != nil {
			return nil, fmt.Errorf("imagesrc: open %s: %w", src, err)
		}
		defer f.Close()
		return decode(src, f)
	}
}

// HTTP fetches sources as URLs. A nil client means http.DefaultClient.
func HTTP(client *http.Client) lazyview.FetchFunc {
	if client == nil {
		client = http.DefaultClient
	}
	return func(ctx context.Context, src string) (image.Image, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
		if err != nil {
			return nil, fmt.Errorf("imagesrc: request %s: %w", src, err)
		}
		resp, err := client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("imagesrc: fetch %s: %w", src, err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			io.Copy(io.Discard, resp.Body)
			return nil, fmt.Errorf("imagesrc: fetch %s: status %s", src, resp.Status)
		}
		return decode(src, resp.Body)
	}
}

// Auto routes by scheme: http and https sources go to the HTTP fetcher,
// everything else is treated as a file path.
func Auto(fsys afero.Fs, root string, client *http.Client) lazyview.FetchFunc {
	file := File(fsys, root)
	web := HTTP(client)
	return func(ctx context.Context, src string) (image.Image, error) {
		if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
			return web(ctx, src)
		}
		return file(ctx, src)
	}
}

func decode(src string, r io.Reader) (image.Image, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("imagesrc: decode %s: %w", src, err)
	}
	return img, nil
}
