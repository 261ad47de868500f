package profile

// CreditScore is the self-reported credit score bucket.
type CreditScore string

const (
	CreditExcellent CreditScore = "excellent"
	CreditGood      CreditScore = "good"
	CreditFair      CreditScore = "fair"
	CreditPoor      CreditScore = "poor"
	CreditUnknown   CreditScore = "unknown"
)

// CreditScores lists the buckets in display order.
func CreditScores() []CreditScore {
	return []CreditScore{CreditExcellent, CreditGood, CreditFair, CreditPoor, CreditUnknown}
}

// PaymentHabit describes how the card balance is usually settled.
type PaymentHabit string

const (
	PayFullBalance    PaymentHabit = "full_balance"
	PayPartialBalance PaymentHabit = "partial_balance"
	PayMinimumDue     PaymentHabit = "minimum_due"
)

// PaymentHabits lists the recognised habits in display order.
func PaymentHabits() []PaymentHabit {
	return []PaymentHabit{PayFullBalance, PayPartialBalance, PayMinimumDue}
}

// Known reports whether h is one of PaymentHabits.
func (h PaymentHabit) Known() bool {
	for _, k := range PaymentHabits() {
		if h == k {
			return true
		}
	}
	return false
}

// PremiumService is a premium card perk the applicant wants.
type PremiumService string

const (
	ServiceAirportLounge   PremiumService = "airport_lounge"
	ServiceConcierge       PremiumService = "concierge"
	ServiceGolf            PremiumService = "golf"
	ServiceTravelInsurance PremiumService = "travel_insurance"
	ServiceHotelUpgrades   PremiumService = "hotel_upgrades"
	ServiceForexWaiver     PremiumService = "forex_waiver"
)

// PremiumServices lists the recognised services in display order.
func PremiumServices() []PremiumService {
	return []PremiumService{
		ServiceAirportLounge, ServiceConcierge, ServiceGolf,
		ServiceTravelInsurance, ServiceHotelUpgrades, ServiceForexWaiver,
	}
}

// Known reports whether s is one of PremiumServices.
func (s PremiumService) Known() bool {
	for _, k := range PremiumServices() {
		if s == k {
			return true
		}
	}
	return false
}

// Category is a tracked monthly spending category.
type Category int

// Categories in declared order. The order breaks ties when ranking spend.
const (
	Groceries Category = iota
	Dining
	Travel
	Shopping
	Gas
	Utilities
	Entertainment

	numCategories = iota
)

var categoryMeta = [numCategories]struct{ key, label string }{ //nolint:gochecknoglobals // fixed schema
	Groceries:     {"groceries", "Groceries"},
	Dining:        {"dining", "Dining out"},
	Travel:        {"travel", "Travel"},
	Shopping:      {"shopping", "Online shopping"},
	Gas:           {"gas", "Fuel/transportation"},
	Utilities:     {"utilities", "Utilities"},
	Entertainment: {"entertainment", "Entertainment"},
}

// Categories returns every category in declared order.
func Categories() []Category {
	out := make([]Category, numCategories)
	for i := range out {
		out[i] = Category(i)
	}
	return out
}

// Key is the wire and path name of the category.
func (c Category) Key() string { return categoryMeta[c].key }

// Label is the human readable name of the category.
func (c Category) Label() string { return categoryMeta[c].label }

func (c Category) String() string { return c.Key() }

// Reward is a reward type the applicant ranks.
type Reward int

// Rewards in declared order.
const (
	Cashback Reward = iota
	TravelMiles
	ShoppingDiscounts
	DiningBenefits
	EntertainmentPerks

	numRewards = iota
)

var rewardMeta = [numRewards]struct{ key, wire, label string }{ //nolint:gochecknoglobals // fixed schema
	Cashback:           {"cashback", "cashback", "Cashback"},
	TravelMiles:        {"travel_miles", "travelMiles", "Travel miles"},
	ShoppingDiscounts:  {"shopping_discounts", "shoppingDiscounts", "Shopping discounts"},
	DiningBenefits:     {"dining_benefits", "diningBenefits", "Dining benefits"},
	EntertainmentPerks: {"entertainment_perks", "entertainmentPerks", "Entertainment perks"},
}

// Rewards returns every reward in declared order.
func Rewards() []Reward {
	out := make([]Reward, numRewards)
	for i := range out {
		out[i] = Reward(i)
	}
	return out
}

// Key is the path name of the reward.
func (r Reward) Key() string { return rewardMeta[r].key }

// WireKey is the name the recommendation service expects.
func (r Reward) WireKey() string { return rewardMeta[r].wire }

// Label is the human readable name of the reward.
func (r Reward) Label() string { return rewardMeta[r].label }

func (r Reward) String() string { return r.Key() }
