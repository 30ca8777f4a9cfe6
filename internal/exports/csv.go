// SPDX-License-Identifier: AGPL-3.0-only
package exports

import (
	"encoding/csv"
	"os"

	"github.com/softpaws/postharvest/internal/record"
)

// WriteCSV writes the collection as UTF-8 CSV with a header row.
func WriteCSV(recs record.Collection, path string) error {
	return atomicWrite(path, func(f *os.File) error {
		w := csv.NewWriter(f)

		if err := w.Write(record.Columns); err != nil {
			return err
		}
		for _, r := range recs {
			if err := w.Write(tabularRow(r)); err != nil {
				return err
			}
		}

		w.Flush()
		return w.Error()
	})
}
