package domain

type Action string

const (
	ActionPurchased      Action = "purchased"
	ActionProperDisposal Action = "proper_disposal"
	ActionLitterFound    Action = "litter_found"
	ActionInvalid        Action = "invalid"
)

// ScanOutcome describes what a purchase or disposal attempt produced.
// It is returned to the caller and never stored by the ledger.
type ScanOutcome struct {
	Product *Product `json:"product,omitempty"`
	Bin     *Bin     `json:"bin,omitempty"`
	Points  int      `json:"points"`
	Action  Action   `json:"action"`
	Message string   `json:"message"`
}

func (o ScanOutcome) OK() bool { return o.Action != ActionInvalid }
