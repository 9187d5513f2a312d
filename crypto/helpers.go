package crypto

import (
	"fmt"
	"math/big"
)

// SerializedFieldSize is the canonical byte length of an encoded field
// element.
const SerializedFieldSize = 32 // bytes

// BigToFF returns the finite field representation of the big.Int
// provided, reducing it modulo baseField. Values already inside the
// field are returned untouched.
func BigToFF(baseField, iv *big.Int) *big.Int {
	z := big.NewInt(0)
	if c := iv.Cmp(baseField); c == 0 {
		return z
	} else if c != 1 && iv.Cmp(z) != -1 {
		return iv
	}
	return z.Mod(iv, baseField)
}

// FieldToBytes encodes x as a 32-byte big-endian field element, reduced
// modulo baseField. The same reduction is applied everywhere field
// elements are encoded, so re-encoding a decoded value round-trips
// exactly.
func FieldToBytes(baseField, x *big.Int) []byte {
	buf := make([]byte, SerializedFieldSize)
	BigToFF(baseField, x).FillBytes(buf)
	return buf
}

// BytesToField decodes a 32-byte big-endian field element, reducing it
// modulo baseField. Any other input length is a caller contract
// violation and fails fast.
func BytesToField(baseField *big.Int, data []byte) (*big.Int, error) {
	if len(data) != SerializedFieldSize {
		return nil, fmt.Errorf("invalid field element length: got %d bytes, expected %d bytes",
			len(data), SerializedFieldSize)
	}
	return BigToFF(baseField, new(big.Int).SetBytes(data)), nil
}
