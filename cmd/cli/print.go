package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"github.com/sevigo/review-gate/internal/core"
)

// Color definitions
var (
	titleColor   = color.New(color.FgCyan, color.Bold)
	successColor = color.New(color.FgGreen)
	warnColor    = color.New(color.FgYellow)
	infoColor    = color.New(color.FgWhite)
	dimColor     = color.New(color.FgHiBlack)
	boldColor    = color.New(color.Bold)
)

func printReview(review *core.StructuredReview, tier string) {
	separator := strings.Repeat("═", 60)
	thinSeparator := strings.Repeat("─", 60)

	fmt.Println()
	titleColor.Println(separator)
	titleColor.Println("📋 REVIEW SUMMARY")
	titleColor.Println(separator)
	fmt.Println()
	infoColor.Println(review.Summary)
	dimColor.Printf("\nRecovery tier: %s\n", tier)

	if core.IsFailureSentinel(review.Summary) {
		fmt.Println()
		warnColor.Println("⚠️  This review is degraded; the service would suppress it.")
		return
	}

	if len(review.Comments) == 0 {
		fmt.Println()
		successColor.Println("✅ No issues found!")
		return
	}

	fmt.Println()
	warnColor.Println(thinSeparator)
	warnColor.Printf("💡 COMMENTS (%d)\n", len(review.Comments))
	warnColor.Println(thinSeparator)

	for i, c := range review.Comments {
		fmt.Println()
		printSeverityBadge(c.Priority)
		boldColor.Printf(" %s", c.Path)
		dimColor.Printf(":%d\n", c.Line)
		fmt.Println()
		infoColor.Printf("%s\n", c.Body)

		if i < len(review.Comments)-1 {
			fmt.Println()
			dimColor.Println(strings.Repeat("─", 40))
		}
	}
	fmt.Println()
}

func printSeverityBadge(priority core.Priority) {
	switch priority {
	case core.PriorityCritical:
		color.New(color.BgRed, color.FgWhite, color.Bold).Print(" Critical ")
	case core.PriorityHigh:
		color.New(color.BgHiRed, color.FgWhite).Print(" High ")
	case core.PriorityMedium:
		color.New(color.BgYellow, color.FgBlack).Print(" Medium ")
	case core.PriorityLow:
		color.New(color.BgGreen, color.FgWhite).Print(" Low ")
	default:
		color.New(color.BgWhite, color.FgBlack).Print(" Unrated ")
	}
}
