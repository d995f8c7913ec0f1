package scraper

import (
	"regexp"
	"strings"
)

// BotDetector detects bot walls and CAPTCHAs in search result pages
type BotDetector struct {
	botPatterns     []*regexp.Regexp
	captchaPatterns []*regexp.Regexp
}

// NewBotDetector creates a new bot detector
func NewBotDetector() *BotDetector {
	return &BotDetector{
		botPatterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)unfortunately we are unable`),
			regexp.MustCompile(`(?i)access denied`),
			regexp.MustCompile(`(?i)bot detected`),
			regexp.MustCompile(`(?i)are you a human`),
			regexp.MustCompile(`(?i)sorry, we just need to make sure you're not a robot`),
			regexp.MustCompile(`(?i)robot check`),
			regexp.MustCompile(`(?i)checking your browser`),
			regexp.MustCompile(`(?i)too many requests`),
		},
		captchaPatterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)enter the characters you see below`),
			regexp.MustCompile(`(?i)type the characters you see`),
			regexp.MustCompile(`(?i)recaptcha`),
			regexp.MustCompile(`(?i)hcaptcha`),
			regexp.MustCompile(`(?i)verify you are human`),
			regexp.MustCompile(`(?i)/errors/validatecaptcha`),
		},
	}
}

// DetectBotWall checks the page title and visible text for a block page
func (bd *BotDetector) DetectBotWall(pageContent, pageTitle string) (bool, string) {
	content := strings.ToLower(pageTitle + " " + pageContent)

	for _, pattern := range bd.captchaPatterns {
		if pattern.MatchString(content) {
			return true, "captcha: " + pattern.String()
		}
	}

	score := 0
	var reasons []string
	for _, pattern := range bd.botPatterns {
		if pattern.MatchString(content) {
			score++
			reasons = append(reasons, pattern.String())
		}
	}

	// a single phrase on a full results page is usually incidental
	if score == 0 || (score == 1 && len(content) > 5000) {
		return false, ""
	}
	return true, strings.Join(reasons, "; ")
}
