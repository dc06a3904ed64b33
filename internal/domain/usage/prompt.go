package usage

import "fmt"

// Kind classifies an upgrade prompt.
type Kind string

// Prompt kinds.
const (
	KindNone          Kind = "none"
	KindLimitReached  Kind = "limit_reached"
	KindLimitWarning  Kind = "limit_warning"
	KindFeatureLocked Kind = "feature_locked"
)

// WarningThreshold is the remaining count at or below which a warning is shown.
const WarningThreshold = 2

// Prompt is UI-facing upgrade messaging. Derived, never stored.
type Prompt struct {
	ShouldShow   bool
	Kind         Kind
	Title        string
	Message      string
	CallToAction string
}

// NoPrompt is returned when nothing should be shown.
var NoPrompt = Prompt{Kind: KindNone}

// PromptFor applies the upgrade policy in precedence order:
// exhausted, then nearly exhausted, then nothing.
func PromptFor(remaining, dailyLimit int) Prompt {
	switch {
	case remaining <= 0:
		return Prompt{
			ShouldShow: true,
			Kind:       KindLimitReached,
			Title:      "Upgrade to Pro",
			Message: fmt.Sprintf(
				"You've reached your daily limit of %d opportunities. Upgrade to access 100+ daily!",
				dailyLimit,
			),
			CallToAction: "Upgrade to Pro - $29/month",
		}
	case remaining <= WarningThreshold:
		noun := "opportunities"
		if remaining == 1 {
			noun = "opportunity"
		}
		return Prompt{
			ShouldShow: true,
			Kind:       KindLimitWarning,
			Title:      "Almost at your limit",
			Message: fmt.Sprintf(
				"Only %d %s left today. Upgrade for unlimited access!", remaining, noun,
			),
			CallToAction: "Upgrade Now",
		}
	default:
		return NoPrompt
	}
}

// FeatureLockedPrompt is shown when a Free installation asks for a Pro feature.
func FeatureLockedPrompt(feature string) Prompt {
	return Prompt{
		ShouldShow: true,
		Kind:       KindFeatureLocked,
		Title:      feature + " - Pro Feature",
		Message: feature + " is available for Pro subscribers. " +
			"Upgrade to export unlimited data and get advanced reporting features!",
		CallToAction: "Upgrade to Pro - $29/month",
	}
}
