package utils

// NewAddress generates a fresh wallet address: 20 random bytes, hex
// encoded with an 0x prefix.  Addresses are assigned once at
// registration and identify a user in the registry, market and wallet
// engines.
func NewAddress() (string, error) {
	raw, err := randomHex(20)
	if err != nil {
		return "", err
	}
	return "0x" + raw, nil
}
