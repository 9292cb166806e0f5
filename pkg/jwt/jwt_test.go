package jwt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateParse(t *testing.T) {
	in := Session{UserID: "u1", LocationID: "L1", Role: "cashier"}
	tok, err := Generate("secret", in, "test", 5)
	require.NoError(t, err)

	out, err := Parse("secret", tok)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestParse_FirmaIncorrecta(t *testing.T) {
	tok, err := Generate("secret", Session{UserID: "u1"}, "test", 5)
	require.NoError(t, err)

	_, err = Parse("otro", tok)
	assert.Error(t, err)
}

func TestParse_Expirado(t *testing.T) {
	tok, err := Generate("secret", Session{UserID: "u1"}, "test", -1)
	require.NoError(t, err)

	_, err = Parse("secret", tok)
	assert.Error(t, err)
}

func TestSecretVacio(t *testing.T) {
	_, err := Generate("", Session{}, "test", 5)
	assert.Error(t, err)
	_, err = Parse("", "x")
	assert.Error(t, err)
}
