package directory

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"testing"

	"github.com/secretops/attrcrypt/interfaces"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func resolveNames(t *testing.T, d *StaticDirectory, scope interfaces.SearchScope) []string {
	t.Helper()
	entries, err := d.Resolve(context.Background(), scope)
	require.NoError(t, err)

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, string(e.Name))
	}
	sort.Strings(names)
	return names
}

func newPopulatedDirectory() *StaticDirectory {
	d := NewStaticDirectory(testLogger())
	d.Register("web-01", []byte("pk-web-01"), map[string]string{"role": "webserver", "env": "prod"})
	d.Register("web-02", []byte("pk-web-02"), map[string]string{"role": "webserver", "env": "staging"})
	d.Register("db-01", []byte("pk-db-01"), map[string]string{"role": "database", "env": "prod"})
	d.Register("batch-runner", []byte("pk-batch"), nil)
	return d
}

func TestResolveByTag(t *testing.T) {
	d := newPopulatedDirectory()

	assert.Equal(t, []string{"web-01", "web-02"}, resolveNames(t, d, "role:webserver"))
	assert.Equal(t, []string{"db-01"}, resolveNames(t, d, "role:database"))
	assert.Empty(t, resolveNames(t, d, "role:loadbalancer"))
}

func TestResolveByName(t *testing.T) {
	d := newPopulatedDirectory()

	assert.Equal(t, []string{"db-01"}, resolveNames(t, d, "name:db-01"))
	assert.Equal(t, []string{"batch-runner"}, resolveNames(t, d, "name:batch-runner"))
}

func TestResolveWildcards(t *testing.T) {
	d := newPopulatedDirectory()

	assert.Equal(t, []string{"web-01", "web-02"}, resolveNames(t, d, "name:web-*"))
	assert.Equal(t, []string{"db-01", "web-01"}, resolveNames(t, d, "env:pro*"))
	assert.Equal(t, []string{"db-01", "web-01", "web-02"}, resolveNames(t, d, "role:*"))
}

func TestResolveDisjunction(t *testing.T) {
	d := newPopulatedDirectory()

	assert.Equal(t, []string{"db-01", "web-01", "web-02"},
		resolveNames(t, d, "role:webserver OR name:db-01"))

	// A node matching several terms appears once
	assert.Equal(t, []string{"web-01", "web-02"},
		resolveNames(t, d, "role:webserver OR name:web-01"))
}

func TestResolveReturnsPublicKeys(t *testing.T) {
	d := newPopulatedDirectory()

	entries, err := d.Resolve(context.Background(), "name:web-01")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, []byte("pk-web-01"), entries[0].PublicKey)
}

func TestResolveMalformedScope(t *testing.T) {
	d := newPopulatedDirectory()

	_, err := d.Resolve(context.Background(), "")
	assert.Error(t, err)

	_, err = d.Resolve(context.Background(), "no-colon-here")
	assert.Error(t, err)

	_, err = d.Resolve(context.Background(), "role:webserver OR broken")
	assert.Error(t, err)
}

func TestDeregister(t *testing.T) {
	d := newPopulatedDirectory()
	d.Deregister("web-02")
	assert.Equal(t, []string{"web-01"}, resolveNames(t, d, "role:webserver"))
}

func TestRegisterCopiesInput(t *testing.T) {
	d := NewStaticDirectory(testLogger())
	tags := map[string]string{"role": "webserver"}
	key := []byte("pk")
	d.Register("web-01", key, tags)

	// Mutating the caller's values must not affect the registry
	tags["role"] = "database"
	key[0] = 'x'

	assert.Equal(t, []string{"web-01"}, resolveNames(t, d, "role:webserver"))
	entries, err := d.Resolve(context.Background(), "name:web-01")
	require.NoError(t, err)
	assert.Equal(t, []byte("pk"), entries[0].PublicKey)
}

func TestMatchPattern(t *testing.T) {
	testCases := []struct {
		pattern string
		s       string
		want    bool
	}{
		{"webserver", "webserver", true},
		{"webserver", "web", false},
		{"web*", "webserver", true},
		{"web*", "database", false},
		{"*server", "webserver", true},
		{"*", "anything", true},
		{"*", "", true},
		{"w*r", "webserver", true},
		{"w*r", "webservers", false},
		{"a*b*c", "aXbYc", true},
		{"a*b*c", "acb", false},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.want, matchPattern(tc.pattern, tc.s),
			"pattern %q against %q", tc.pattern, tc.s)
	}
}
