package cost

// ModelRate holds per-model token pricing (USD per million tokens).
type ModelRate struct {
	Input  float64 `yaml:"input" mapstructure:"input"`
	Output float64 `yaml:"output" mapstructure:"output"`
}

// Rates holds chat model pricing keyed by model name, plus flat
// per-request fees for providers that charge them.
type Rates struct {
	Models             map[string]ModelRate `yaml:"models" mapstructure:"models"`
	PerplexityPerQuery float64              `yaml:"perplexity_per_query" mapstructure:"perplexity_per_query"`
}

// Calculator computes LLM costs.
type Calculator struct {
	rates Rates
}

// NewCalculator creates a Calculator with the given rates.
func NewCalculator(rates Rates) *Calculator {
	if rates.Models == nil {
		rates.Models = map[string]ModelRate{}
	}
	return &Calculator{rates: rates}
}

// Completion returns the USD cost of one chat completion. Unknown models
// (including local ones) cost nothing beyond any provider fee.
func (c *Calculator) Completion(provider, model string, input, output int) float64 {
	var total float64
	if rate, ok := c.rates.Models[model]; ok {
		total = (float64(input)/1e6)*rate.Input + (float64(output)/1e6)*rate.Output
	}
	if provider == "perplexity" {
		total += c.rates.PerplexityPerQuery
	}
	return total
}

// Rate returns the configured rate for model.
func (c *Calculator) Rate(model string) (ModelRate, bool) {
	r, ok := c.rates.Models[model]
	return r, ok
}

// WithOverrides returns rates with overrides layered on top of r.
func (r Rates) WithOverrides(overrides map[string]ModelRate) Rates {
	merged := make(map[string]ModelRate, len(r.Models)+len(overrides))
	for k, v := range r.Models {
		merged[k] = v
	}
	for k, v := range overrides {
		merged[k] = v
	}
	r.Models = merged
	return r
}

// DefaultRates returns list prices for the catalog's hosted models.
func DefaultRates() Rates {
	return Rates{
		Models: map[string]ModelRate{
			"claude-sonnet-4-20250514": {Input: 3.00, Output: 15.00},
			"claude-3-haiku-20240307":  {Input: 0.25, Output: 1.25},
			"claude-3-opus-20240229":   {Input: 15.00, Output: 75.00},
			"gpt-3.5-turbo":            {Input: 0.50, Output: 1.50},
			"gpt-4":                    {Input: 30.00, Output: 60.00},
			"gpt-4-turbo":              {Input: 10.00, Output: 30.00},
			"gpt-4o":                   {Input: 2.50, Output: 10.00},
			"llama-3.1-70b-versatile":  {Input: 0.59, Output: 0.79},
			"llama-3.1-8b-instant":     {Input: 0.05, Output: 0.08},
			"mixtral-8x7b-32768":       {Input: 0.24, Output: 0.24},
			"gemini-1.5-pro":           {Input: 1.25, Output: 5.00},
			"gemini-2.0-flash":         {Input: 0.10, Output: 0.40},
			"deepseek-chat":            {Input: 0.27, Output: 1.10},
			"sonar-pro":                {Input: 3.00, Output: 15.00},
		},
		PerplexityPerQuery: 0.005,
	}
}
