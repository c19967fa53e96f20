package ports

// SignType ...
type SignType string

const (
	// SignTypeMessage signs the message with the personal_sign prefix.
	SignTypeMessage SignType = "message"
	// SignTypeTypedData signs an EIP-712 typed data JSON document.
	SignTypeTypedData SignType = "typedData"
	// SignTypeTransaction signs a binary encoded transaction and returns the
	// signed one.
	SignTypeTransaction SignType = "transaction"
)

// Signer produces signatures with a raw private key. The result is a
// 0x-prefixed hex string.
type Signer interface {
	Sign(signType SignType, privateKey []byte, message []byte) (string, error)
}
