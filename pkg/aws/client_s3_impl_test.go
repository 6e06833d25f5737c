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
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3API struct {
	err    error
	inputs []s3.PutObjectInput
	bodies []string
}

func (f *fakeS3API) PutObject(
	_ context.Context,
	params *s3.PutObjectInput,
	_ ...func(*s3.Options),
) (*s3.PutObjectOutput, error) {
	f.inputs = append(f.inputs, *params)
	body, _ := io.ReadAll(params.Body)
	f.bodies = append(f.bodies, string(body))
	if f.err != nil {
		return nil, f.err
	}
	return &s3.PutObjectOutput{}, nil
}

func TestRealS3Client_PutObject(t *testing.T) {
	fake := &fakeS3API{}
	client := &RealS3Client{client: fake}

	err := client.PutObject(context.Background(), "reports", "daily/aws_costs_chart.html",
		"text/html; charset=utf-8", strings.NewReader("<html></html>"), map[string]string{"run-id": "abc"})
	require.NoError(t, err)

	require.Len(t, fake.inputs, 1)
	in := fake.inputs[0]
	assert.Equal(t, "reports", aws.ToString(in.Bucket))
	assert.Equal(t, "daily/aws_costs_chart.html", aws.ToString(in.Key))
	assert.Equal(t, "text/html; charset=utf-8", aws.ToString(in.ContentType))
	assert.Equal(t, map[string]string{"run-id": "abc"}, in.Metadata)
	assert.Equal(t, "<html></html>", fake.bodies[0])
}

func TestRealS3Client_PutObject_NoContentType(t *testing.T) {
	fake := &fakeS3API{}
	client := &RealS3Client{client: fake}

	require.NoError(t, client.PutObject(context.Background(), "b", "k", "", strings.NewReader("x"), nil))
	assert.Nil(t, fake.inputs[0].ContentType)
}

func TestRealS3Client_PutObject_Error(t *testing.T) {
	apiErr := errors.New("AccessDenied: not allowed")
	client := &RealS3Client{client: &fakeS3API{err: apiErr}}

	err := client.PutObject(context.Background(), "reports", "a.png", "image/png", strings.NewReader("x"), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, apiErr)
	assert.Contains(t, err.Error(), "s3://reports/a.png")
}
