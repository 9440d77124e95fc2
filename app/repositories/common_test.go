package repositories

import (
	"bytes"
	"testing"
	"time"

	"chirp/app/models"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *badger.DB {
	opts := badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	db, err := badger.Open(opts)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSortSuffix(t *testing.T) {
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	earlier := sortSuffix(base, 9)
	later := sortSuffix(base.Add(time.Nanosecond), 1)
	assert.Len(t, earlier, indexSuffixLen)
	assert.Equal(t, -1, bytes.Compare(earlier, later), "time dominates sequence")

	first := sortSuffix(base, 1)
	second := sortSuffix(base, 2)
	assert.Equal(t, -1, bytes.Compare(first, second), "sequence breaks ties")
}

func TestAuthorIndexPrefix(t *testing.T) {
	a := authorIndexPrefix("a")
	for _, other := range []string{"a:b", "a\x00b", "ab", "a\xff"} {
		key := postAuthorIndexKey(other, time.Now(), 1)
		assert.False(t, bytes.HasPrefix(key, a), "%q", other)
	}
	assert.True(t, bytes.HasPrefix(postAuthorIndexKey("a", time.Now(), 1), a))
}

func TestMarshalEntity(t *testing.T) {
	t.Run("marshal post", func(t *testing.T) {
		post := &models.Post{
			ID:       "p1",
			AuthorID: "u1",
			Content:  "Test Content",
		}

		data, err := marshalEntity(post)
		assert.NoError(t, err)
		assert.Contains(t, string(data), `"authorId":"u1"`)

		var unmarshaled models.Post
		err = unmarshalEntity(data, &unmarshaled)
		assert.NoError(t, err)
		assert.Equal(t, *post, unmarshaled)
	})

	t.Run("marshal invalid entity", func(t *testing.T) {
		invalidEntity := struct {
			Ch chan int
		}{
			Ch: make(chan int),
		}

		_, err := marshalEntity(invalidEntity)
		assert.Error(t, err)
	})

	t.Run("unmarshal invalid JSON", func(t *testing.T) {
		var post models.Post
		err := unmarshalEntity([]byte(`{"id":1,invalid json}`), &post)
		assert.Error(t, err)
	})
}
