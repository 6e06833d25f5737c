// Copyright 2025 Lumina Contributors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/nextdoor/costcharts/pkg/aws"
	"github.com/nextdoor/costcharts/pkg/render"
)

// Artifact file name suffixes appended to the configured output prefix.
const (
	PNGSuffix    = "_chart.png"
	HTMLSuffix   = "_chart.html"
	ExportSuffix = "_costs"
)

var contentTypes = map[string]string{
	".png":  "image/png",
	".html": "text/html; charset=utf-8",
	".csv":  "text/csv; charset=utf-8",
	".json": "application/json",
	".yaml": "application/yaml",
}

// writeArtifacts renders both charts and every configured export
// concurrently. The returned paths are in a fixed order: PNG, HTML, exports.
func (r *Runner) writeArtifacts(res *Result, info render.ChartInfo) ([]string, error) {
	dir := r.Config.OutputDir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	base := filepath.Join(dir, r.Config.OutputPrefix)
	pngPath := base + PNGSuffix
	htmlPath := base + HTMLSuffix
	paths := []string{pngPath, htmlPath}

	var g errgroup.Group
	g.Go(func() error {
		return writeFile(pngPath, func(w io.Writer) error {
			return render.PNGRenderer{DPI: r.Config.DPI}.Render(w, res.Table, res.Summary, info)
		})
	})
	g.Go(func() error {
		return writeFile(htmlPath, func(w io.Writer) error {
			return render.HTMLRenderer{}.Render(w, res.Table, res.Summary, info)
		})
	})
	for _, format := range r.Config.Export {
		p := base + ExportSuffix + render.Extension(format)
		paths = append(paths, p)
		g.Go(func() error {
			return writeFile(p, func(w io.Writer) error {
				return render.Export(w, res.Table, format)
			})
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return paths, nil
}

// writeFile creates name and fills it with fn. A failed write removes the
// partial file.
func writeFile(name string, fn func(w io.Writer) error) (err error) {
	f, err := os.Create(name)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", name, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", name, cerr)
		}
		if err != nil {
			_ = os.Remove(name)
		}
	}()

	if err := fn(f); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}

// upload copies every artifact to s3://bucket/prefix/<name> and returns the URIs.
func (r *Runner) upload(ctx context.Context, res *Result) ([]string, error) {
	s3Client, err := r.AWSClient.S3(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 client: %w", err)
	}

	bucket := r.Config.Upload.Bucket
	metadata := map[string]string{
		"run-id": res.RunID,
		"start":  res.Start.Format(aws.DateLayout),
		"end":    res.End.Format(aws.DateLayout),
	}
	if res.Account != nil {
		metadata["account-id"] = res.Account.AccountID
	}

	uris := make([]string, 0, len(res.Artifacts))
	for _, p := range res.Artifacts {
		key := path.Join(r.Config.Upload.Prefix, filepath.Base(p))
		if err := uploadFile(ctx, s3Client, bucket, key, p, metadata); err != nil {
			return uris, err
		}
		uris = append(uris, fmt.Sprintf("s3://%s/%s", bucket, key))
	}
	return uris, nil
}

func uploadFile(ctx context.Context, s3Client aws.S3Client, bucket, key, name string, metadata map[string]string) error {
	f, err := os.Open(name)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", name, err)
	}
	defer func() { _ = f.Close() }()

	contentType, ok := contentTypes[filepath.Ext(name)]
	if !ok {
		contentType = "application/octet-stream"
	}
	return s3Client.PutObject(ctx, bucket, key, contentType, f, metadata)
}
