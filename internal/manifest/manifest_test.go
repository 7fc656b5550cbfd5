package manifest

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseBasic(t *testing.T) {
	data := []byte(`
[program]
name = "token"
version = "1.2.3"

[[dependencies]]
name = "credits"
network = "testnet"
`)
	m, err := Parse(data)
	require.NoError(t, err)
	require.Equal(t, "token", m.Program.Name)
	require.Equal(t, "1.2.3", m.Program.Version)
	require.Len(t, m.Dependencies, 1)
	require.Equal(t, "credits", m.Dependencies[0].Name)
	require.Equal(t, "testnet", m.Dependencies[0].Network)
}

func TestParseMissingNameIsError(t *testing.T) {
	_, err := Parse([]byte(`[program]
version = "0.1.0"
`))
	require.Error(t, err)
}

func TestParseMalformedToml(t *testing.T) {
	_, err := Parse([]byte("not = [valid toml"))
	require.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/nonexistent/program.json")
	require.Error(t, err)
}
