package nds3

import (
	"net/url"
	"testing"

	"git.nextdev.network/nextdev/nextdev/src/config"
	"github.com/stretchr/testify/require"
)

func TestListenAddr(t *testing.T) {
	require.Equal(t, ":9003", listenAddr("http://localhost:9003"))
	require.Equal(t, ":9005", listenAddr("http://localhost:9005"))
	require.Equal(t, ":9003", listenAddr("http://localhost"))
	require.Equal(t, ":9003", listenAddr("://not a url"))
}

// The server must come up on the port the site's Spaces client will dial.
func TestListenAddrMatchesConfiguredEndpoint(t *testing.T) {
	endpoint := config.Config.Spaces.Endpoint
	u, err := url.Parse(endpoint)
	require.NoError(t, err)
	require.NotEmpty(t, u.Port())
	require.Equal(t, ":"+u.Port(), listenAddr(endpoint))
}
