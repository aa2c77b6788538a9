package pkg

import (
	"strconv"
	"strings"

	"github.com/minio/highwayhash"
)

var fingerprintKey = []byte("muton-mutation-fingerprint-key!!")

// Fingerprint hashes parts into a stable hexadecimal identifier.
func Fingerprint(parts ...string) string {
	hash, err := highwayhash.New64(fingerprintKey)
	if err != nil {
		// only fails for a key that is not 32 bytes long
		panic(err)
	}

	_, _ = hash.Write([]byte(strings.Join(parts, "\x00")))

	return strconv.FormatUint(hash.Sum64(), 16)
}
