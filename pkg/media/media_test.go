package media

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tinyImage() image.Image {
	img := image.NewPaletted(image.Rect(0, 0, 2, 2), color.Palette{color.White, color.Black})
	img.SetColorIndex(1, 1, 1)
	return img
}

func encoded(t *testing.T, format string) []byte {
	t.Helper()
	var buf bytes.Buffer
	var err error
	switch format {
	case "png":
		err = png.Encode(&buf, tinyImage())
	case "gif":
		err = gif.Encode(&buf, tinyImage(), nil)
	case "jpeg":
		err = jpeg.Encode(&buf, tinyImage(), nil)
	}
	require.NoError(t, err)
	return buf.Bytes()
}

func TestValidateAcceptsAllowedFormats(t *testing.T) {
	for format, want := range map[string]string{"png": "image/png", "gif": "image/gif", "jpeg": "image/jpeg"} {
		data := encoded(t, format)
		img := &Image{Filename: "x.bin", Size: int64(len(data)), Data: data}
		require.NoError(t, Validate(img), format)
		assert.Equal(t, want, img.ContentType())
	}
}

func TestValidateRejectsTextRenamedAsImage(t *testing.T) {
	data := []byte("definitely not an image")
	err := Validate(&Image{Filename: "cat.png", Size: int64(len(data)), Data: data})
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestValidateRejectsOversize(t *testing.T) {
	err := Validate(&Image{Filename: "big.png", Size: MaxImageSize + 1})
	assert.ErrorIs(t, err, ErrTooLarge)
}

type fakeObjects struct {
	puts    []*s3.PutObjectInput
	deletes []string
	putErr  error
}

func (f *fakeObjects) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	_, _ = io.Copy(io.Discard, in.Body)
	f.puts = append(f.puts, in)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeObjects) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.deletes = append(f.deletes, *in.Key)
	return &s3.DeleteObjectOutput{}, nil
}

func TestS3HostRoundTrip(t *testing.T) {
	objects := &fakeObjects{}
	host := NewS3HostWithClient(objects, "media", "https://cdn.example.com/")

	data := encoded(t, "png")
	url, err := host.Upload(context.Background(), "posts", &Image{Filename: "a.png", Size: int64(len(data)), Data: data})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(url, "https://cdn.example.com/posts/"))
	assert.True(t, strings.HasSuffix(url, ".png"))
	require.Len(t, objects.puts, 1)
	assert.Equal(t, "image/png", *objects.puts[0].ContentType)

	require.NoError(t, host.Delete(context.Background(), url))
	require.Len(t, objects.deletes, 1)
	assert.Equal(t, strings.TrimPrefix(url, "https://cdn.example.com/"), objects.deletes[0])
}

func TestS3HostIgnoresForeignURLs(t *testing.T) {
	host := NewS3HostWithClient(&fakeObjects{}, "media", "https://cdn.example.com")
	assert.ErrorIs(t, host.Delete(context.Background(), "https://elsewhere.net/x.png"), ErrForeignURL)
}

func TestS3HostUploadFailure(t *testing.T) {
	host := NewS3HostWithClient(&fakeObjects{putErr: errors.New("503")}, "media", "https://cdn.example.com")
	data := encoded(t, "gif")
	_, err := host.Upload(context.Background(), "avatars", &Image{Size: int64(len(data)), Data: data})
	assert.Error(t, err)
}
