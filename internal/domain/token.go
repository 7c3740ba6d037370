package domain

// Token holds per-token metadata and the running supply counter.
type Token struct {
	ID          int64
	URI         string
	TotalSupply int64
}
