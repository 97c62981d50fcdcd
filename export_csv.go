package osmfusion

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/pkg/errors"
)

// ExportColorsCSV writes lane check result for every colored lanelet. Map must be the conflated one (not filtered)
func ExportColorsCSV(m *Map, res *Result, fname string) error {
	file, err := os.Create(fname)
	if err != nil {
		return errors.Wrap(err, "Can't create file")
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()
	writer.Comma = ';'

	err = writer.Write([]string{"lanelet_id", "color", "color_code", "deleted", "subtype", "location", "geom"})
	if err != nil {
		return errors.Wrap(err, "Can't write header")
	}

	deleted := make(map[LaneletID]struct{}, len(res.Deleted))
	for _, id := range res.Deleted {
		deleted[id] = struct{}{}
	}
	for _, assignment := range res.Colors {
		ll, err := m.Lanelet(assignment.Lanelet)
		if err != nil {
			return errors.Wrap(err, "Can't find colored lanelet")
		}
		_, isDeleted := deleted[ll.ID]
		err = writer.Write([]string{
			fmt.Sprintf("%d", ll.ID),
			assignment.Color.String(),
			assignment.Color.Code(),
			fmt.Sprintf("%t", isDeleted),
			ll.Attributes.Get("subtype"),
			ll.Attributes.Get("location"),
			PrepareWKTPolygon(ll),
		})
		if err != nil {
			return errors.Wrap(err, "Can't write lanelet")
		}
	}
	return nil
}
