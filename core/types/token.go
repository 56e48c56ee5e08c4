package types

// TokenID identifies a palette token. Identifiers are drawn from the 24-bit
// RGB namespace, so every web color maps to exactly one token.
type TokenID uint32

// MaxTokenID is the highest identifier the registry will ever mint.
const MaxTokenID TokenID = 0xFFFFFF

// Valid reports whether the identifier falls inside the 24-bit namespace.
func (id TokenID) Valid() bool { return id <= MaxTokenID }

// Position locates a token on the two dimensional palette grid.
type Position struct {
	X uint32 `json:"x"`
	Y uint32 `json:"y"`
}
