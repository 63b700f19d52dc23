package signing

// EIP-712 domain values of the deployed predict.fun exchange contracts.
// All four exchange variants share the same name/version; only chainId and
// verifyingContract differ.
const (
	ProtocolName    = "predict.fun CTF Exchange"
	ProtocolVersion = "1"
)
