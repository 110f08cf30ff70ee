package access

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseInlineMapping(t *testing.T) {
	m := ParseInlineMapping("alice:*; bob:1251,1301 ;;broken; carol:1541")
	assert.Equal(t, []string{"*"}, m["alice"])
	assert.Equal(t, []string{"1251", "1301"}, m["bob"])
	assert.Equal(t, []string{"1541"}, m["carol"])
	_, ok := m["broken"]
	assert.False(t, ok, "entries without a colon are skipped")
}

func TestResolveInlineWildcardIsAdmin(t *testing.T) {
	r := NewResolver(ParseInlineMapping("alice:*"), "")
	scope, err := r.Resolve("alice")
	require.NoError(t, err)
	assert.True(t, scope.Admin)
	assert.Nil(t, scope.AllowedUnits)
	assert.True(t, scope.Allows(9999))
}

func TestResolveInlineUnits(t *testing.T) {
	r := NewResolver(ParseInlineMapping("bob:1301,1251"), "")
	scope, err := r.Resolve("bob")
	require.NoError(t, err)
	assert.False(t, scope.Admin)
	assert.Equal(t, []int{1251, 1301}, scope.AllowedUnits, "units come back sorted")
	assert.True(t, scope.Allows(1251))
	assert.False(t, scope.Allows(1541))
}

func TestResolveUnknownUser(t *testing.T) {
	r := NewResolver(nil, "")
	_, err := r.Resolve("ghost")
	require.ErrorIs(t, err, ErrUnknownUser)
}

func TestResolveEmptyUnitListIsBlocked(t *testing.T) {
	r := NewResolver(ParseInlineMapping("bob:"), "")
	_, err := r.Resolve("bob")
	require.ErrorIs(t, err, ErrNoUnits)
}

func TestResolveInvalidUnitToken(t *testing.T) {
	r := NewResolver(ParseInlineMapping("bob:12x51"), "")
	_, err := r.Resolve("bob")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid UO code")
}

func TestResolveFileFallback(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "access.yaml")
	content := []byte("users:\n  fulano:\n    allowed_uos: [\"1251\", \"1301\"]\n  chefe:\n    allowed_uos: [\"*\"]\n")
	require.NoError(t, os.WriteFile(path, content, 0o644))

	r := NewResolver(ParseInlineMapping("alice:*"), path)

	scope, err := r.Resolve("fulano")
	require.NoError(t, err)
	assert.Equal(t, []int{1251, 1301}, scope.AllowedUnits)

	scope, err = r.Resolve("chefe")
	require.NoError(t, err)
	assert.True(t, scope.Admin)

	// Inline entries win without touching the file.
	scope, err = r.Resolve("alice")
	require.NoError(t, err)
	assert.True(t, scope.Admin)

	_, err = r.Resolve("ghost")
	require.ErrorIs(t, err, ErrUnknownUser)
}

func TestResolveMissingFileIsNotAnError(t *testing.T) {
	r := NewResolver(ParseInlineMapping("alice:*"), "/nonexistent/access.yaml")
	_, err := r.Resolve("ghost")
	require.ErrorIs(t, err, ErrUnknownUser)
}

func TestPinWorkingUnit(t *testing.T) {
	scope := Scope{Username: "bob", AllowedUnits: []int{1251, 1301}}
	assert.NoError(t, scope.PinWorkingUnit(1251))
	assert.Error(t, scope.PinWorkingUnit(1541))
	assert.NoError(t, Scope{Admin: true}.PinWorkingUnit(1541))
}

func TestSingleUnit(t *testing.T) {
	unit, ok := Scope{AllowedUnits: []int{1251}}.SingleUnit()
	require.True(t, ok)
	assert.Equal(t, 1251, unit)

	_, ok = Scope{AllowedUnits: []int{1251, 1301}}.SingleUnit()
	assert.False(t, ok)
	_, ok = Scope{Admin: true}.SingleUnit()
	assert.False(t, ok)
}
