package resolver

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xmhha/indexer-codegen/pkg/errdefs"
)

type testConfig struct {
	Handler string
	Events  []string
}

func ptr[T any](v T) *T { return &v }

func TestNewGlobalSet(t *testing.T) {
	set, err := NewGlobalSet([]Global[testConfig]{
		{Name: "ERC20", Config: testConfig{Handler: "erc20.ts"}},
		{Name: "Greeter", Config: testConfig{Handler: "greeter.ts"}},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, set.Len())
	assert.Equal(t, []string{"ERC20", "Greeter"}, set.Names())

	config, ok := set.Lookup("Greeter")
	assert.True(t, ok)
	assert.Equal(t, "greeter.ts", config.Handler)

	_, ok = set.Lookup("Missing")
	assert.False(t, ok)
}

func TestNewGlobalSet_Duplicate(t *testing.T) {
	_, err := NewGlobalSet([]Global[testConfig]{
		{Name: "ERC20", Config: testConfig{Handler: "a.ts"}},
		{Name: "ERC20", Config: testConfig{Handler: "b.ts"}},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errdefs.ErrConfigValidation))
	assert.Contains(t, err.Error(), "duplicate global contract definition")
	assert.Contains(t, err.Error(), "contract ERC20")
}

func TestNilGlobalSet(t *testing.T) {
	var set *GlobalSet[testConfig]
	_, ok := set.Lookup("ERC20")
	assert.False(t, ok)
	assert.Equal(t, 0, set.Len())
	assert.Nil(t, set.Names())
}

func TestResolveNetwork(t *testing.T) {
	global := testConfig{Handler: "erc20.ts", Events: []string{"Transfer"}}
	set, err := NewGlobalSet([]Global[testConfig]{{Name: "ERC20", Config: global}})
	require.NoError(t, err)

	inline := testConfig{Handler: "local.ts", Events: []string{"Approval"}}

	tests := []struct {
		name    string
		entries []Entry[testConfig]
		want    []Contract[testConfig]
		wantErr string
	}{
		{
			name:    "global reference resolves to the global config unchanged",
			entries: []Entry[testConfig]{{Name: "ERC20", Addresses: []string{"0x1"}}},
			want:    []Contract[testConfig]{{Name: "ERC20", Addresses: []string{"0x1"}, Config: global}},
		},
		{
			name:    "inline config wins over a global with the same name",
			entries: []Entry[testConfig]{{Name: "ERC20", Addresses: []string{"0x2"}, Config: ptr(inline)}},
			want:    []Contract[testConfig]{{Name: "ERC20", Addresses: []string{"0x2"}, Config: inline}},
		},
		{
			name:    "inline config without a global",
			entries: []Entry[testConfig]{{Name: "Local", Config: ptr(inline)}},
			want:    []Contract[testConfig]{{Name: "Local", Addresses: []string{}, Config: inline}},
		},
		{
			name:    "empty address list is valid",
			entries: []Entry[testConfig]{{Name: "ERC20"}},
			want:    []Contract[testConfig]{{Name: "ERC20", Addresses: []string{}, Config: global}},
		},
		{
			name: "declared order is kept",
			entries: []Entry[testConfig]{
				{Name: "Local", Config: ptr(inline)},
				{Name: "ERC20", Addresses: []string{"0x3", "0x4"}},
			},
			want: []Contract[testConfig]{
				{Name: "Local", Addresses: []string{}, Config: inline},
				{Name: "ERC20", Addresses: []string{"0x3", "0x4"}, Config: global},
			},
		},
		{
			name:    "missing global",
			entries: []Entry[testConfig]{{Name: "Unknown", Addresses: []string{"0x1"}}},
			wantErr: "missing global contract definition",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveNetwork(set, 1, tt.entries)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveNetwork_MissingGlobalNamesNetworkAndContract(t *testing.T) {
	_, err := ResolveNetwork[testConfig](nil, 137, []Entry[testConfig]{{Name: "Greeter"}})
	require.Error(t, err)

	var e *errdefs.Error
	require.True(t, errors.As(err, &e))
	assert.Equal(t, errdefs.ErrConfigValidation, e.Kind)
	assert.Equal(t, "137", e.Network)
	assert.Equal(t, "Greeter", e.Contract)
}

func TestResolve(t *testing.T) {
	global := testConfig{Handler: "erc20.ts"}
	networks := []Network[testConfig]{
		{ID: 1, Contracts: []Entry[testConfig]{{Name: "ERC20", Addresses: []string{"0xa"}}}},
		{ID: 10, Contracts: []Entry[testConfig]{{Name: "ERC20", Addresses: []string{"0xb"}}}},
	}

	got, err := Resolve([]Global[testConfig]{{Name: "ERC20", Config: global}}, networks)
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, uint64(1), got[0].ID)
	assert.Equal(t, uint64(10), got[1].ID)
	assert.Equal(t, []string{"0xb"}, got[1].Contracts[0].Addresses)
	assert.Equal(t, global, got[1].Contracts[0].Config)
}

func TestResolve_DuplicateGlobalFailsWithoutReference(t *testing.T) {
	globals := []Global[testConfig]{{Name: "Unused"}, {Name: "Unused"}}

	_, err := Resolve(globals, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errdefs.ErrConfigValidation))
}

func TestResolve_AddressesAreCopied(t *testing.T) {
	addresses := []string{"0x1"}
	got, err := Resolve[testConfig](nil, []Network[testConfig]{
		{ID: 1, Contracts: []Entry[testConfig]{{Name: "Local", Addresses: addresses, Config: &testConfig{}}}},
	})
	require.NoError(t, err)

	addresses[0] = "changed"
	assert.Equal(t, []string{"0x1"}, got[0].Contracts[0].Addresses)
}
