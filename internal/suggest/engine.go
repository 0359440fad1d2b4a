package suggest

// DefaultRules is the built-in rule set, streak rules first.
var DefaultRules = []Rule{
	StreakAtRisk,
	GetStarted,
	GoalShortfall,
	LowBreakRatio,
	MarathonSessions,
	BreakHeavyDays,
	InconsistentWeek,
	MetricRegression,
}

// Engine evaluates a set of rules against an AnalysisContext.
type Engine struct {
	rules []Rule
}

// NewEngine returns an engine over rules, or over DefaultRules when none are
// given.
func NewEngine(rules ...Rule) *Engine {
	if len(rules) == 0 {
		rules = DefaultRules
	}
	return &Engine{rules: rules}
}

// Run evaluates every rule and returns the ranked suggestions. A nil context
// yields nothing.
func (e *Engine) Run(ctx *AnalysisContext) []Suggestion {
	if ctx == nil {
		return nil
	}
	var all []Suggestion
	for _, rule := range e.rules {
		all = append(all, rule(ctx)...)
	}
	return RankSuggestions(all)
}
