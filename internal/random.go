package internal

import (
	"crypto/rand"
	"encoding/hex"
	"math/big"
	"strconv"
)

const (
	activationCodeMin = 1000
	activationCodeMax = 9999
)

// NewActivationCode returns a uniformly random 4-digit code in [1000, 9999].
func NewActivationCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(activationCodeMax-activationCodeMin+1))
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(n.Int64()+activationCodeMin, 10), nil
}

// NewObjectSuffix returns n random bytes hex encoded, used to keep uploaded
// object keys unguessable.
func NewObjectSuffix(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
