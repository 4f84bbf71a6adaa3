package ledger

// ObjectRef pins an on-chain object to an exact version. Operations that
// inspect risk require the full triple, not just the id.
type ObjectRef struct {
	ID      string `json:"objectId"`
	Version uint64 `json:"version"`
	Digest  string `json:"digest"`
}
