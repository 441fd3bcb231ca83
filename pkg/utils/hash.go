package utils

import (
	"crypto/md5"
	"fmt"
)

func HashString(input string) string {
	hash := md5.Sum([]byte(input))
	return fmt.Sprintf("%x", hash)
}

// ShortID derives a stable identifier for corpus records that arrive
// without one, so reloading the same dataset yields the same ids.
func ShortID(input string) string {
	return HashString(input)[:12]
}
