package crypto

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"golang.org/x/crypto/sha3"
)

// PayloadDigest returns keccak256(payload). It identifies an encoded wire
// payload in logs and API responses; it is not a signature.
func PayloadDigest(payload []byte) common.Hash {
	h := sha3.NewLegacyKeccak256()
	h.Write(payload)
	return common.BytesToHash(h.Sum(nil))
}

// DigestHex renders the digest as 0x-prefixed hex.
func DigestHex(payload []byte) string {
	return hexutil.Encode(PayloadDigest(payload).Bytes())
}

// ShortID is the first four digest bytes, used as a compact correlation id.
func ShortID(payload []byte) string {
	return hexutil.Encode(PayloadDigest(payload).Bytes()[:4])
}
