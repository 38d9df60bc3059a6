package media

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// UploadAll uploads files concurrently and returns their urls in input
// order. The first failure cancels the rest.
func UploadAll(ctx context.Context, up Uploader, files []File) ([]string, error) {
	urls := make([]string, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, f := range files {
		i, f := i, f
		g.Go(func() error {
			u, err := up.Upload(gctx, f)
			if err != nil {
				return err
			}
			urls[i] = u
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return urls, nil
}

// Merge keeps the existing media in order and appends the uploaded ones.
func Merge(kept, uploaded []string) []string {
	out := make([]string, 0, len(kept)+len(uploaded))
	out = append(out, kept...)
	return append(out, uploaded...)
}
