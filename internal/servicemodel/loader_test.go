package servicemodel

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeModel(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

func TestLoad_EmptyInput(t *testing.T) {
	t.Parallel()
	_, err := Load(context.Background(), "  ")
	var se *SpecError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, InputError, se.Code)
}

func TestLoad_UnsupportedScheme(t *testing.T) {
	t.Parallel()
	_, err := Load(context.Background(), "ftp://example.com/model.yaml")
	var se *SpecError
	require.True(t, errors.As(err, &se), "got %T", err)
	assert.Equal(t, InputError, se.Code)
}

func TestLoad_NetworkError(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := Load(ctx, "http://127.0.0.1:1/model.yaml", WithHTTPTimeout(200*time.Millisecond), WithMaxRetries(1))
	var se *SpecError
	require.True(t, errors.As(err, &se), "got %T", err)
	assert.Equal(t, NetworkError, se.Code)
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()
	_, err := Load(context.Background(), filepath.Join(t.TempDir(), "absent.yaml"))
	var se *SpecError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, InputError, se.Code)
}

func TestLoad_UnknownVersion(t *testing.T) {
	t.Parallel()
	p := writeModel(t, "model.yaml", "info: {title: x}\n")
	_, err := Load(context.Background(), p)
	var se *SpecError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, ParseError, se.Code)
}

func TestLoad_ExpectedVersionMismatch(t *testing.T) {
	t.Parallel()
	p := writeModel(t, "model.yaml", "openapi: 3.0.0\ninfo: {title: x, version: '1'}\npaths: {}\n")
	_, err := Load(context.Background(), p, WithExpectedVersion(2))
	var se *SpecError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, InputError, se.Code)
}

func TestLoad_V3(t *testing.T) {
	t.Parallel()
	p := writeModel(t, "model.yaml", widgetV3)
	doc, err := Load(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, 3, doc.SwaggerVersion)
	assert.Equal(t, p, doc.Location)
	assert.NotEmpty(t, doc.Raw)
	assert.Contains(t, doc.Spec.Paths, "/widgets/{id}")
}

func TestLoad_V2Converted(t *testing.T) {
	t.Parallel()
	p := writeModel(t, "swagger.yaml", widgetV2)
	doc, err := Load(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, 2, doc.SwaggerVersion)
	require.NotNil(t, doc.Spec.Components)
	assert.Contains(t, doc.Spec.Components.Schemas, "Widget")
	post := doc.Spec.Paths["/widgets"].Post
	require.NotNil(t, post)
	require.NotNil(t, post.RequestBody)
}
