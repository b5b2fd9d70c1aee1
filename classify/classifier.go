package classify

import (
	"regexp"
	"strings"

	"github.com/tsawler/pageblocks/model"
)

// Rule maps a text predicate to a content type
type Rule struct {
	// Name identifies the rule in diagnostics
	Name string

	// Type is assigned when Match returns true
	Type model.ContentType

	// Match reports whether the rule applies to the text
	Match func(text string) bool
}

// RegexRule builds a rule that matches when any pattern matches. With
// trimmed set, patterns see the text with surrounding whitespace removed.
func RegexRule(name string, ct model.ContentType, trimmed bool, patterns ...string) Rule {
	compiled := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		compiled[i] = regexp.MustCompile(p)
	}

	return Rule{
		Name: name,
		Type: ct,
		Match: func(text string) bool {
			if trimmed {
				text = strings.TrimSpace(text)
			}
			for _, re := range compiled {
				if re.MatchString(text) {
					return true
				}
			}
			return false
		},
	}
}

var defaultRules = []Rule{
	RegexRule("math-delimiters", model.ContentMath, false,
		`\$.*\$`,
		`\\\(.*\\\)`,
		`\\\[.*\\\]`,
	),
	RegexRule("math-environment", model.ContentMath, false,
		`\\begin\{(equation|align|math)\}`,
	),
	RegexRule("math-symbols", model.ContentMath, false,
		`[∫∑∏√±≤≥≠∞∈∉⊂⊃∪∩]`,
	),
	RegexRule("greek-letters", model.ContentMath, false,
		`[α-ωΑ-Ω]`,
	),
	RegexRule("script-markers", model.ContentMath, false,
		`\^[{\w]|_[{\w]`,
	),
	RegexRule("latex-macros", model.ContentMath, false,
		`\\frac|\\int|\\sum|\\prod|\\sqrt`,
	),
	RegexRule("table-pipes", model.ContentTable, false,
		`\|.*\|.*\|`,
	),
	RegexRule("table-tabs", model.ContentTable, false,
		`\t.*\t.*\t`,
	),
	RegexRule("table-caption", model.ContentTable, false,
		`(?i)^\s*Table\s+\d+`,
	),
	RegexRule("figure-caption", model.ContentImage, true,
		`(?i)^Figure\s+\d+`,
		`(?i)^Fig\.\s*\d+`,
		`^그림\s+\d+`,
		`(?i)^Image\s+\d+`,
	),
}

// DefaultRules returns a copy of the default rule list in priority order
func DefaultRules() []Rule {
	rules := make([]Rule, len(defaultRules))
	copy(rules, defaultRules)
	return rules
}

// Classifier assigns content types by first-match-wins rule evaluation
type Classifier struct {
	rules []Rule
}

// NewClassifier creates a classifier with the default rules
func NewClassifier() *Classifier {
	return &Classifier{rules: DefaultRules()}
}

// NewClassifierWithRules creates a classifier with custom rules
func NewClassifierWithRules(rules []Rule) *Classifier {
	r := make([]Rule, len(rules))
	copy(r, rules)
	return &Classifier{rules: r}
}

// Rules returns the classifier's rules in priority order
func (c *Classifier) Rules() []Rule {
	r := make([]Rule, len(c.rules))
	copy(r, c.rules)
	return r
}

// Classify returns the content type of text
func (c *Classifier) Classify(text string) model.ContentType {
	if rule, ok := c.Match(text); ok {
		return rule.Type
	}
	return model.ContentText
}

// Match returns the first rule that matches text
func (c *Classifier) Match(text string) (Rule, bool) {
	if c == nil {
		return Rule{}, false
	}
	for _, rule := range c.rules {
		if rule.Match != nil && rule.Match(text) {
			return rule, true
		}
	}
	return Rule{}, false
}

var captionPattern = regexp.MustCompile(`(?i)^(Figure|Fig\.?|Image|그림)\s+\d+`)

// IsCaption reports whether text starts with a figure caption. It is looser
// than the figure-caption rule: "Fig" needs no period.
func IsCaption(text string) bool {
	return captionPattern.MatchString(strings.TrimSpace(text))
}
