package application

import (
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// Fingerprint hashes the identity of a source set: origin, name, region, size
// and modification time of every reference, in order.
func Fingerprint(refs []SourceRef) string {
	digest := xxhash.New()
	for _, ref := range refs {
		_, _ = digest.WriteString(ref.Origin)
		_, _ = digest.WriteString("\x00")
		_, _ = digest.WriteString(ref.Name)
		_, _ = digest.WriteString("\x00")
		_, _ = digest.WriteString(ref.Region)
		_, _ = digest.WriteString("\x00")
		_, _ = digest.WriteString(strconv.FormatInt(ref.Size, 10))
		_, _ = digest.WriteString("\x00")
		_, _ = digest.WriteString(strconv.FormatInt(ref.ModTime.UnixNano(), 10))
		_, _ = digest.WriteString("\n")
	}
	return strconv.FormatUint(digest.Sum64(), 16)
}
