package repositories

import (
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
)

const (
	// Key prefixes for different entity types
	PostKeyPrefix = "post:"
	UserKeyPrefix = "user:"

	// Secondary index prefixes
	PostTimeIndexPrefix   = "idx:post:time:"
	PostAuthorIndexPrefix = "idx:post:author:"
	UsernameIndexPrefix   = "idx:user:username:"

	// Sequence key recording post insertion order
	PostSeqKey = "seq:post"

	// postSeqBandwidth is how many sequence numbers are leased per write
	// to PostSeqKey.
	postSeqBandwidth = 100
)

// indexSuffixLen is the width of the sort suffix on post index keys:
// 8 bytes of creation time followed by 8 bytes of insertion sequence.
const indexSuffixLen = 16

// sortSuffix encodes creation time and sequence so that byte order matches
// (createdAt, seq) order.
func sortSuffix(createdAt time.Time, seq uint64) []byte {
	b := make([]byte, indexSuffixLen)
	binary.BigEndian.PutUint64(b[:8], uint64(createdAt.UnixNano()))
	binary.BigEndian.PutUint64(b[8:], seq)
	return b
}

func postKey(id string) []byte {
	return []byte(PostKeyPrefix + id)
}

func postTimeIndexKey(createdAt time.Time, seq uint64) []byte {
	return append([]byte(PostTimeIndexPrefix), sortSuffix(createdAt, seq)...)
}

// authorIndexPrefix hex-encodes the author id and terminates it with ':',
// which hex never produces, so one author's prefix never covers another's
// whatever bytes the ids contain.
func authorIndexPrefix(authorID string) []byte {
	return []byte(PostAuthorIndexPrefix + hex.EncodeToString([]byte(authorID)) + ":")
}

func postAuthorIndexKey(authorID string, createdAt time.Time, seq uint64) []byte {
	return append(authorIndexPrefix(authorID), sortSuffix(createdAt, seq)...)
}

func userKey(id string) []byte {
	return []byte(UserKeyPrefix + id)
}

func usernameIndexKey(username string) []byte {
	return []byte(UsernameIndexPrefix + username)
}

// marshalEntity marshals an entity to JSON
func marshalEntity(entity interface{}) ([]byte, error) {
	data, err := json.Marshal(entity)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal entity: %w", err)
	}
	return data, nil
}

// unmarshalEntity unmarshals JSON data into an entity
func unmarshalEntity(data []byte, entity interface{}) error {
	if err := json.Unmarshal(data, entity); err != nil {
		return fmt.Errorf("failed to unmarshal entity: %w", err)
	}
	return nil
}
