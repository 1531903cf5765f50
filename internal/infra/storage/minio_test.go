package storage

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/bryanwahyu/aidetect/internal/domain/analysis"
)

func TestObjectKey(t *testing.T) {
	fp := domain.FingerprintOf("hello world")
	s := string(fp)

	assert.Equal(t, "texts/"+s[:2]+"/"+s+".txt", ObjectKey("texts", fp))
	assert.Equal(t, s[:2]+"/"+s+".txt", ObjectKey("", fp))
	assert.Equal(t, "a/b/"+s[:2]+"/"+s+".txt", ObjectKey("a/b/", fp))
}

// fakeS3 answers just enough of the S3 API for New and Put.
func fakeS3(t *testing.T) (*httptest.Server, *[]string) {
	t.Helper()
	var puts []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodHead:
			w.WriteHeader(http.StatusOK) // bucket exists
		case http.MethodPut:
			puts = append(puts, r.URL.Path)
			w.Header().Set("ETag", `"d41d8cd98f00b204e9800998ecf8427e"`)
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusOK)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, &puts
}

func TestArchivePut(t *testing.T) {
	srv, puts := fakeS3(t)
	ctx := context.Background()

	a, err := New(ctx, Options{
		Endpoint:  strings.TrimPrefix(srv.URL, "http://"),
		Region:    "us-east-1",
		Bucket:    "aidetect-texts",
		AccessKey: "minio",
		SecretKey: "minio123",
		Prefix:    "texts",
	})
	require.NoError(t, err)

	fp := domain.FingerprintOf("some archived text")
	url, err := a.Put(ctx, fp, "some archived text")
	require.NoError(t, err)

	key := ObjectKey("texts", fp)
	assert.True(t, strings.HasSuffix(url, "/aidetect-texts/"+key))
	require.Len(t, *puts, 1)
	assert.Equal(t, "/aidetect-texts/"+key, (*puts)[0])
}
