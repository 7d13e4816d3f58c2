package domain

// Token describes a collateral ERC-20 for display purposes.
type Token struct {
	Address  string
	Symbol   string
	Decimals int32
}
