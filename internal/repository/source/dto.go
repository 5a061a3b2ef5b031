package source

import (
	"fmt"
	"strconv"
	"strings"

	domsrc "github.com/psyvisions/foofind-web/internal/domain/source"
)

// sourceFromHash hydrates a Source from an HGETALL result map.
func sourceFromHash(m map[string]string) (domsrc.Source, error) {
	id, err := strconv.ParseUint(m["id"], 10, 32)
	if err != nil {
		return domsrc.Source{}, fmt.Errorf("invalid id %q: %w", m["id"], err)
	}
	var groups []string
	if g := m["groups"]; g != "" {
		groups = strings.Split(g, ",")
	}
	return domsrc.New(uint32(id), m["domain"], groups, parseFlag(m["blocked"])), nil
}

func parseFlag(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "t", "yes":
		return true
	}
	return false
}
