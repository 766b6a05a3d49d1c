package catalog

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ObjectKey derives the storage key for a content's blob:
//
//	{content_type}/{content_id}.{extension}
//
// The extension is the final dot-segment of the client-supplied filename,
// taken verbatim. A filename without a dot contributes the whole name as the
// extension and a filename ending in a dot contributes an empty one; keys
// are deterministic either way. The filename is never sanitized here, which
// is a known hardening gap for hostile inputs.
func ObjectKey(contentType ContentType, contentID uuid.UUID, fileName string) string {
	ext := fileName
	if i := strings.LastIndex(fileName, "."); i >= 0 {
		ext = fileName[i+1:]
	}
	return fmt.Sprintf("%s/%s.%s", contentType, contentID, ext)
}
