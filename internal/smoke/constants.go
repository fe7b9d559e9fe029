package smoke

// Worker configuration constants.
const (
	WorkerChannelMultiplier = 2
)

// Runner configuration constants.
const (
	PercentageMultiplier = 100
	maxScore             = 256
)

// Scenario values.
const (
	scenarioPlayer1 = 10
	scenarioPlayer2 = 20
	scenarioUpdate  = 35
)
