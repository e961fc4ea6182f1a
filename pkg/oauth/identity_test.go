package oauth

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIdentity_Get(t *testing.T) {
	identity := Identity{UserName: "u", RealName: "r", Email: "e"}
	require.Equal(t, "u", identity.Get(FieldUserName))
	require.Equal(t, "r", identity.Get(FieldRealName))
	require.Equal(t, "e", identity.Get(FieldEmail))
	require.Equal(t, "", identity.Get(Field("unknown")))
}

func TestIdentity_Usable(t *testing.T) {
	require.True(t, Identity{UserName: "u"}.Usable())
	require.True(t, Identity{Email: "e"}.Usable())
	require.False(t, Identity{RealName: "r", ExternalID: "1"}.Usable())
}

func TestOptions(t *testing.T) {
	opts := Options{OptUsePKCE: "True", OptScopes: ""}
	require.True(t, opts.Bool(OptUsePKCE))
	require.False(t, opts.Bool(OptClientID))
	require.Equal(t, "fallback", opts.Get(OptScopes, "fallback"))
}
