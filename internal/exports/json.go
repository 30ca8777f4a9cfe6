// SPDX-License-Identifier: AGPL-3.0-only
package exports

import (
	"encoding/json"
	"os"

	"github.com/softpaws/postharvest/internal/record"
)

// WriteJSON writes the collection as an indented UTF-8 JSON array. An empty
// collection writes "[]", never "null".
func WriteJSON(recs record.Collection, path string) error {
	if recs == nil {
		recs = record.Collection{}
	}

	return atomicWrite(path, func(f *os.File) error {
		data, err := json.MarshalIndent(recs, "", "  ")
		if err != nil {
			return err
		}
		data = append(data, '\n')

		_, err = f.Write(data)
		return err
	})
}
