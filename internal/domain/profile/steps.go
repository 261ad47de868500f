package profile

// TotalSteps is the number of screens in the intake flow.
const TotalSteps = 5

// Step identifiers.
const (
	StepBasicInfo   = 1
	StepSpending    = 2
	StepBehavior    = 3
	StepLifestyle   = 4
	StepPreferences = 5
)

// Option is one choice of an enum field.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// FieldInfo describes a field for rendering.
type FieldInfo struct {
	Path    string   `json:"path"`
	Label   string   `json:"label"`
	Kind    Kind     `json:"kind"`
	Options []Option `json:"options,omitempty"`
}

// StepInfo describes one screen of the flow.
type StepInfo struct {
	Number      int         `json:"number"`
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Fields      []FieldInfo `json:"fields"`
}

var creditOptions = []Option{ //nolint:gochecknoglobals // fixed schema
	{string(CreditExcellent), "Excellent (750+)"},
	{string(CreditGood), "Good (700-749)"},
	{string(CreditFair), "Fair (650-699)"},
	{string(CreditPoor), "Poor (below 650)"},
	{string(CreditUnknown), "I don't know"},
}

var habitOptions = []Option{ //nolint:gochecknoglobals // fixed schema
	{string(PayFullBalance), "I pay the full balance every month"},
	{string(PayPartialBalance), "I pay more than the minimum"},
	{string(PayMinimumDue), "I usually pay the minimum due"},
}

var serviceOptions = []Option{ //nolint:gochecknoglobals // fixed schema
	{string(ServiceAirportLounge), "Airport lounge access"},
	{string(ServiceConcierge), "Concierge service"},
	{string(ServiceGolf), "Golf privileges"},
	{string(ServiceTravelInsurance), "Travel insurance"},
	{string(ServiceHotelUpgrades), "Hotel upgrades"},
	{string(ServiceForexWaiver), "Forex markup waiver"},
}

func info(f AnyField, label string, opts ...Option) FieldInfo {
	return FieldInfo{Path: f.Path(), Label: label, Kind: f.Kind(), Options: opts}
}

// Steps returns the flow in order.
func Steps() []StepInfo {
	spending := make([]FieldInfo, 0, numCategories)
	for _, c := range Categories() {
		spending = append(spending, info(SpendingOn(c), c.Label()))
	}
	ranks := make([]FieldInfo, 0, numRewards+3)
	for _, r := range Rewards() {
		ranks = append(ranks, info(RankOf(r), r.Label()))
	}
	ranks = append(ranks,
		info(MaxAnnualFee, "Maximum annual fee"),
		info(JustifyingFeatures, "Features that would justify a fee"),
		info(Services, "Premium services", serviceOptions...),
	)

	return []StepInfo{
		{
			Number: StepBasicInfo, ID: "basic_info",
			Title:       "Financial Profile Assessment",
			Description: "Tell us about your financial situation",
			Fields: []FieldInfo{
				info(AnnualIncome, "Annual income"),
				info(MonthlyDebt, "Monthly debt payments"),
				info(CreditBucket, "Credit score range", creditOptions...),
			},
		},
		{
			Number: StepSpending, ID: "spending",
			Title:       "Expenditure Pattern Analysis",
			Description: "Help us understand your spending patterns",
			Fields:      spending,
		},
		{
			Number: StepBehavior, ID: "behavior",
			Title:       "Behavioral Metrics",
			Description: "Share your credit card usage habits",
			Fields: []FieldInfo{
				info(WeeklyTransactions, "Transactions per week"),
				info(AverageTransactionValue, "Average transaction value"),
				info(Habit, "Payment habit", habitOptions...),
			},
		},
		{
			Number: StepLifestyle, ID: "lifestyle",
			Title:       "Lifestyle Indicators",
			Description: "Let us know about your lifestyle",
			Fields: []FieldInfo{
				info(DomesticTrips, "Domestic trips per year"),
				info(InternationalTrips, "International trips per year"),
				info(Accommodation, "Accommodation preference"),
			},
		},
		{
			Number: StepPreferences, ID: "preferences",
			Title:       "Aspirational Factors",
			Description: "Tell us about your preferences and aspirations",
			Fields:      ranks,
		},
	}
}

// StepByNumber returns the step with number n.
func StepByNumber(n int) (StepInfo, bool) {
	if n < 1 || n > TotalSteps {
		return StepInfo{}, false
	}
	return Steps()[n-1], true
}
