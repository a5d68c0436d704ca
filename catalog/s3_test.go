// Copyright 2025 Poiesic Systems
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

package catalog

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/poiesic/prodmatch/ai/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// apiError implements smithy.APIError for test assertions.
type apiError struct {
	code string
	msg  string
}

func (e *apiError) Error() string                 { return e.msg }
func (e *apiError) ErrorCode() string             { return e.code }
func (e *apiError) ErrorMessage() string          { return e.msg }
func (e *apiError) ErrorFault() smithy.ErrorFault { return smithy.FaultClient }

// mockS3 is a thread-safe in-memory S3 backend.
type mockS3 struct {
	mu           sync.Mutex
	objects      map[string][]byte
	contentTypes map[string]string
	getErr       error
	putErr       error
}

func newMockS3() *mockS3 {
	return &mockS3{objects: map[string][]byte{}, contentTypes: map[string]string{}}
}

func (m *mockS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[*in.Bucket+"/"+*in.Key]
	if !ok {
		return nil, &apiError{code: "NoSuchKey", msg: "no such key"}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (m *mockS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if m.putErr != nil {
		return nil, m.putErr
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := *in.Bucket + "/" + *in.Key
	m.objects[key] = data
	if in.ContentType != nil {
		m.contentTypes[key] = *in.ContentType
	}
	return &s3.PutObjectOutput{}, nil
}

func TestParseS3URI(t *testing.T) {
	bucket, key, err := ParseS3URI("s3://catalogs/2025/products.csv")
	require.NoError(t, err)
	assert.Equal(t, "catalogs", bucket)
	assert.Equal(t, "2025/products.csv", key)

	for _, bad := range []string{"catalogs/products.csv", "s3://", "s3://bucket", "s3://bucket/", "s3:///key"} {
		_, _, err := ParseS3URI(bad)
		assert.ErrorIs(t, err, ErrInvalidS3URI, bad)
	}

	assert.True(t, IsS3URI("s3://a/b"))
	assert.False(t, IsS3URI("/tmp/a.csv"))
}

func TestS3Store_PutAndOpen(t *testing.T) {
	client := newMockS3()
	store := NewS3Store(client, "catalogs")
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "export.jsonl", strings.NewReader("{}\n"), "application/x-ndjson"))
	assert.Equal(t, "application/x-ndjson", client.contentTypes["catalogs/export.jsonl"])

	body, err := store.Open(ctx, "export.jsonl")
	require.NoError(t, err)
	defer body.Close()
	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "{}\n", string(data))
}

func TestS3Store_OpenMissing(t *testing.T) {
	store := NewS3Store(newMockS3(), "catalogs")

	_, err := store.Open(context.Background(), "nope.csv")
	assert.ErrorIs(t, err, ErrObjectNotFound)
}

func TestS3Store_Errors(t *testing.T) {
	client := newMockS3()
	client.getErr = &apiError{code: "AccessDenied", msg: "access denied"}
	client.putErr = errors.New("network down")
	store := NewS3Store(client, "catalogs")

	_, err := store.Open(context.Background(), "a.csv")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrObjectNotFound)

	err = store.Put(context.Background(), "a.csv", strings.NewReader("x"), "")
	assert.ErrorContains(t, err, "network down")
}

func TestS3Store_ReadLines(t *testing.T) {
	client := newMockS3()
	client.objects["lists/internal.txt"] = []byte("Coke Classic 12oz\n\n  Pepsi 12pk  \r\nSprite\n")
	store := NewS3Store(client, "lists")

	lines, err := store.ReadLines(context.Background(), "internal.txt")
	require.NoError(t, err)
	assert.Equal(t, []string{"Coke Classic 12oz", "Pepsi 12pk", "Sprite"}, lines)
}

func TestS3Store_ImportAndExport(t *testing.T) {
	client := newMockS3()
	client.objects["catalogs/products.csv"] = []byte(sampleCSV)
	store := NewS3Store(client, "catalogs")
	ctx := context.Background()

	body, err := store.Open(ctx, "products.csv")
	require.NoError(t, err)
	defer body.Close()

	repo := setupRepo(t)
	importer, err := NewImporter(repo, mock.NewMockEmbedder(), WithDispatcherOptions(noWait()))
	require.NoError(t, err)
	stats, err := importer.ImportFile(ctx, "products.csv", body)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Imported)

	var buf bytes.Buffer
	_, err = ExportJSONL(ctx, repo, &buf, false)
	require.NoError(t, err)
	require.NoError(t, store.Put(ctx, "products.jsonl", &buf, "application/x-ndjson"))
	assert.Equal(t, 3, strings.Count(string(client.objects["catalogs/products.jsonl"]), "\n"))
}

func TestNewS3Client(t *testing.T) {
	client := NewS3Client(S3Options{
		Region:          "us-east-1",
		Endpoint:        "http://localhost:9000",
		AccessKeyID:     "minio",
		SecretAccessKey: "minio123",
		UsePathStyle:    true,
	})
	require.NotNil(t, client)

	opts := client.Options()
	assert.Equal(t, "us-east-1", opts.Region)
	assert.True(t, opts.UsePathStyle)
	require.NotNil(t, opts.BaseEndpoint)
	assert.Equal(t, "http://localhost:9000", *opts.BaseEndpoint)

	creds, err := opts.Credentials.Retrieve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "minio", creds.AccessKeyID)
}
