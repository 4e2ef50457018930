// SPDX-License-Identifier: Apache-2.0

package mapping

import (
	"strconv"

	"github.com/google/uuid"
)

// keySpace namespaces the name-based UUIDs used as extraction keys.
var keySpace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/gemaraproj/fieldmap/array-entry"))

// Identity returns a stable identity for an array entry: its ID when set,
// otherwise its target array and position.
func (e ArrayEntryConfig) Identity() string {
	if e.ID != "" {
		return e.ID
	}
	return e.TargetArrayField + "#" + strconv.Itoa(e.EntryOrder)
}

// FieldKey is the opaque workflow-data key under which the extractor stores
// the standalone value of one field of a static array entry.
func FieldKey(entry ArrayEntryConfig, field ArrayEntryField) string {
	return "ae_" + uuid.NewSHA1(keySpace, []byte(entry.Identity()+"/"+field.FieldName)).String()
}

// RowsKey is the opaque workflow-data key under which the extractor stores
// the row array of a repeating array entry.
func RowsKey(entry ArrayEntryConfig) string {
	return "ar_" + uuid.NewSHA1(keySpace, []byte(entry.Identity())).String()
}
