package domain

// Reward is a catalog entry shown on the points page. The ledger never
// redeems or enforces these.
type Reward struct {
	Name        string `json:"name"`
	Points      int    `json:"points"`
	Description string `json:"description"`
	Available   bool   `json:"available"`
}

type Achievement struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Earned      bool   `json:"earned"`
}

// RewardCatalog is the fixed display catalog, cheapest first.
var RewardCatalog = []Reward{
	{Name: "Coffee Voucher", Points: 500, Description: "Free coffee at participating cafes"},
	{Name: "Eco Shopping Bag", Points: 1000, Description: "Reusable shopping bag made from recycled materials"},
	{Name: "Plant a Tree", Points: 1500, Description: "We plant a tree in your name"},
	{Name: "Fine Immunity (1 week)", Points: 2000, Description: "Temporary immunity from small fines"},
}
