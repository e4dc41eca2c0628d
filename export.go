package cfr

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/pkg/errors"
)

// StrategyWalker walks a collection of trained information sets in a
// deterministic order, calling visit once per infoset with its average
// strategy. PolicyTable.VisitSorted satisfies it; game-specific
// trainers provide their own.
type StrategyWalker func(visit func(key string, averageStrategy []float64))

// WriteStrategyCSV writes the average strategies produced by walk as
// delimited text: one row per information set, the infoset key followed
// by one column per action probability.
func WriteStrategyCSV(w io.Writer, walk StrategyWalker) error {
	cw := csv.NewWriter(w)

	var writeErr error
	walk(func(key string, averageStrategy []float64) {
		if writeErr != nil {
			return
		}

		record := make([]string, 0, len(averageStrategy)+1)
		record = append(record, key)
		for _, p := range averageStrategy {
			record = append(record, strconv.FormatFloat(p, 'g', -1, 64))
		}

		writeErr = cw.Write(record)
	})

	if writeErr != nil {
		return errors.Wrap(writeErr, "writing strategy row")
	}

	cw.Flush()
	return errors.Wrap(cw.Error(), "flushing strategy csv")
}
