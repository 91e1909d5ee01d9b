package media

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestObjectKeyFromURL(t *testing.T) {
	t.Run("StoreURL", func(t *testing.T) {
		key, ok := objectKeyFromURL("profile-images",
			"http://localhost:9000/profile-images/profile_images/user-1/abc123.png")

		assert.True(t, ok)
		assert.Equal(t, "profile_images/user-1/abc123.png", key)
	})

	t.Run("OtherBucket", func(t *testing.T) {
		_, ok := objectKeyFromURL("profile-images",
			"http://localhost:9000/some-other-bucket/object.png")

		assert.False(t, ok)
	})

	t.Run("ForeignHostSameLayout", func(t *testing.T) {
		key, ok := objectKeyFromURL("profile-images",
			"https://cdn.example.com/profile-images/profile_images/user-1/abc123.png")

		// Host is not checked; the bucket path decides ownership.
		assert.True(t, ok)
		assert.Equal(t, "profile_images/user-1/abc123.png", key)
	})

	t.Run("NotAURL", func(t *testing.T) {
		_, ok := objectKeyFromURL("profile-images", "://not a url")

		assert.False(t, ok)
	})

	t.Run("BareBucketPath", func(t *testing.T) {
		_, ok := objectKeyFromURL("profile-images", "http://localhost:9000/profile-images/")

		assert.False(t, ok)
	})
}
