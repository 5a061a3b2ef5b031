package redis

import (
	"context"
	"fmt"
	"slices"

	"github.com/psyvisions/foofind-web/internal/db"
)

// XAdd appends an entry with an auto-generated id to stream.
func (s *Store) XAdd(ctx context.Context, stream string, fields map[string]string) (string, error) {
	if len(fields) == 0 {
		return "", &db.Error{Op: db.OpXAdd, Err: fmt.Errorf("at least one field is required")}
	}
	names := make([]string, 0, len(fields))
	for k := range fields {
		names = append(names, k)
	}
	slices.Sort(names)

	cmd := s.b().Xadd().Key(stream).Id("*").FieldValue()
	for _, k := range names {
		cmd = cmd.FieldValue(k, fields[k])
	}
	id, err := s.do(ctx, cmd.Build()).ToString()
	if err != nil {
		return "", wrap(db.OpXAdd, err)
	}
	return id, nil
}
