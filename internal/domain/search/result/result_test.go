package result

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/psyvisions/foofind-web/internal/domain"
	"github.com/psyvisions/foofind-web/internal/domain/ident"
	"github.com/psyvisions/foofind-web/internal/domain/search/plan"
)

func plans(n int) []plan.Plan {
	out := make([]plan.Plan, n)
	for i := range out {
		out[i] = plan.Plan{Position: i, Label: plan.LabelFallback}
	}
	out[0].Label = plan.LabelPrimary
	return out
}

func TestResolve_FallbackLaw(t *testing.T) {
	outcomes := []Outcome{
		{TotalFound: 0},
		{TotalFound: 0, Warning: "slow"},
		{TotalFound: 7, Matches: []Match{{ID: 1}}},
		{TotalFound: 3},
	}
	res, err := Resolve(plans(4), outcomes)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Plan.Position)
	assert.Equal(t, uint64(7), res.Outcome.TotalFound)
	assert.Equal(t, SelectedFallback, res.Selection)
	assert.Equal(t, []string{"slow"}, res.Warnings)
	assert.False(t, res.Cacheable())
}

func TestResolve_PrimaryWins(t *testing.T) {
	res, err := Resolve(plans(2), []Outcome{{TotalFound: 1}, {TotalFound: 5}})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Plan.Position)
	assert.Equal(t, SelectedPrimary, res.Selection)
	assert.True(t, res.Cacheable())
	assert.NoError(t, res.Err())
}

func TestResolve_DefaultLaw(t *testing.T) {
	outcomes := []Outcome{{Total: 0}, {Total: 0}, {Total: 0}}
	res, err := Resolve(plans(3), outcomes)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Plan.Position)
	assert.Equal(t, SelectedDefault, res.Selection)
	assert.True(t, res.Cacheable())
}

func TestResolve_SkipsFailedPlans(t *testing.T) {
	outcomes := []Outcome{{Error: "syntax error"}, {TotalFound: 0}, {TotalFound: 0}}
	res, err := Resolve(plans(3), outcomes)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Plan.Position, "default is the first outcome that ran")
	assert.Equal(t, []string{"syntax error"}, res.Errors)
	assert.False(t, res.Cacheable())
	assert.True(t, errors.Is(res.Err(), domain.ErrPartialPlanFailure))
}

func TestResolve_AllFailed(t *testing.T) {
	_, err := Resolve(plans(2), []Outcome{{Error: "a"}, {Error: "not executed"}})
	assert.True(t, errors.Is(err, domain.ErrSearchUnavailable))

	_, err = Resolve(plans(2), []Outcome{{}})
	assert.True(t, errors.Is(err, domain.ErrSearchUnavailable))
}

func TestCacheable(t *testing.T) {
	assert.True(t, Cacheable(nil, nil))
	assert.False(t, Cacheable([]string{"w"}, nil))
	assert.False(t, Cacheable(nil, []string{"e"}))
}

func TestMatch_FileIDAndServer(t *testing.T) {
	m := Match{
		ID:    3<<32 | 99,
		Attrs: map[string]string{"uri1": "1", "uri2": "2", "uri3": "4294967295"},
	}
	id, err := m.FileID()
	require.NoError(t, err)
	assert.Equal(t, ident.Encode(1, 2, 4294967295), id)
	assert.Equal(t, uint32(3), m.Server())

	_, err = Match{Attrs: map[string]string{"uri1": "x"}}.FileID()
	assert.True(t, errors.Is(err, domain.ErrMalformedIdentifier))
}
