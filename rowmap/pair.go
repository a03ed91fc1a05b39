package rowmap

import "database/sql"

// EachPair decodes every remaining row of rows into a fresh (parent, child)
// pair and hands it to fn. child is nil for rows without a child.
// The caller still owns rows and must close it.
func EachPair[P any, C any](d *Decoder, rows *sql.Rows, splitOn string, fn func(parent *P, child *C) error) error {
	for rows.Next() {
		parent, child := new(P), new(C)
		present, err := d.DecodePair(rows, parent, child, splitOn)
		if err != nil {
			return err
		}
		if !present {
			child = nil
		}
		if err = fn(parent, child); err != nil {
			return err
		}
	}
	return rows.Err()
}
