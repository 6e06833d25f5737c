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

package aws

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type s3API interface {
	PutObject(
		ctx context.Context,
		params *s3.PutObjectInput,
		optFns ...func(*s3.Options),
	) (*s3.PutObjectOutput, error)
}

// RealS3Client uploads generated chart artifacts to S3.
type RealS3Client struct {
	client s3API
}

// NewRealS3Client creates an S3 client from a loaded AWS config.
// LocalStack requires path-style addressing when an endpoint is set.
func NewRealS3Client(cfg aws.Config, endpointURL string) *RealS3Client {
	s3Opts := []func(*s3.Options){}
	if endpointURL != "" {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(endpointURL) // coverage:ignore - LocalStack only
			o.UsePathStyle = true
		})
	}
	return &RealS3Client{
		client: s3.NewFromConfig(cfg, s3Opts...),
	}
}

// PutObject uploads body to bucket/key with the given content type and metadata.
func (c *RealS3Client) PutObject(
	ctx context.Context,
	bucket string,
	key string,
	contentType string,
	body io.Reader,
	metadata map[string]string,
) error {
	input := &s3.PutObjectInput{
		Bucket:   aws.String(bucket),
		Key:      aws.String(key),
		Body:     body,
		Metadata: metadata,
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	if _, err := c.client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("PutObject s3://%s/%s failed: %w", bucket, key, err)
	}
	return nil
}
