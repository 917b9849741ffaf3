package lint

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAdminStore struct {
	rows []map[string]any
	err  error
	last string
}

func (f *fakeAdminStore) Execute(ctx context.Context, cypher string, params map[string]any) ([]map[string]any, error) {
	f.last = cypher
	return f.rows, f.err
}

func TestInvestigate_RejectsWriteClauses(t *testing.T) {
	store := &fakeAdminStore{}
	inv := NewInvestigator(store, DefaultPermissions())

	_, err := inv.Investigate(context.Background(), "MATCH (t:Tension) DETACH DELETE t", nil)
	require.Error(t, err)
	assert.Empty(t, store.last)
}

func TestInvestigate_RejectsDisallowedLabel(t *testing.T) {
	store := &fakeAdminStore{}
	inv := NewInvestigator(store, DefaultPermissions())

	_, err := inv.Investigate(context.Background(), "MATCH (u:User) RETURN u", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "User")
}

func TestInvestigate_RejectsDisallowedRelationship(t *testing.T) {
	store := &fakeAdminStore{}
	inv := NewInvestigator(store, DefaultPermissions())

	_, err := inv.Investigate(context.Background(), "MATCH (t:Tension)-[:OWNS]->(a:Actor) RETURN t, a", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OWNS")
}

func TestInvestigate_RejectsDepthBeyondPermission(t *testing.T) {
	store := &fakeAdminStore{}
	perms := DefaultPermissions()
	perms.MaxDepth = 1
	inv := NewInvestigator(store, perms)

	query := "MATCH (t:Tension)-[:RESPONDS_TO]->(a:Aid)-[:CITES]->(c:Citation) RETURN t, a, c"
	_, err := inv.Investigate(context.Background(), query, nil)
	require.Error(t, err)
}

func TestInvestigate_ExecutesValidatedReadOnlyQuery(t *testing.T) {
	store := &fakeAdminStore{rows: []map[string]any{{"t": "eviction wave"}}}
	inv := NewInvestigator(store, DefaultPermissions())

	rows, err := inv.Investigate(context.Background(), "MATCH (t:Tension)-[:RESPONDS_TO]->(a:Aid) RETURN t, a", nil)
	require.NoError(t, err)
	assert.Equal(t, store.rows, rows)
	assert.NotEmpty(t, store.last)
}
