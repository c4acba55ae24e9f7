package oss

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAvatarKey(t *testing.T) {
	at := time.Unix(1700000000, 0)
	assert.Equal(t, "avatars/abc-123/1700000000.png", AvatarKey("abc-123", ".png", at))
}

func TestContentType(t *testing.T) {
	tests := map[string]string{
		".jpg":  "image/jpeg",
		".jpeg": "image/jpeg",
		".png":  "image/png",
		".gif":  "image/gif",
		".webp": "image/webp",
		".exe":  "application/octet-stream",
	}
	for ext, want := range tests {
		assert.Equal(t, want, ContentType(ext), ext)
	}
}

func TestExtractObjectKey(t *testing.T) {
	t.Run("cdn domain", func(t *testing.T) {
		c := &Client{cdnDomain: "cdn.cryptoforce.example"}
		assert.Equal(t, "avatars/u1/1.png", c.ExtractObjectKey("https://cdn.cryptoforce.example/avatars/u1/1.png"))
	})

	t.Run("bucket url", func(t *testing.T) {
		c := &Client{}
		assert.Equal(t, "avatars/u1/1.png", c.ExtractObjectKey("https://bucket.oss-cn-hangzhou.aliyuncs.com/avatars/u1/1.png"))
	})
}
