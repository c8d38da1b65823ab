package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"

	"roamscan/internal/scraper"
)

// Color definitions
var (
	colorSuccess = color.New(color.FgGreen).SprintFunc()
	colorWarn    = color.New(color.FgYellow).SprintFunc()
	colorError   = color.New(color.FgRed).SprintFunc()
	colorInfo    = color.New(color.FgCyan).SprintFunc()
	colorDim     = color.New(color.Faint).SprintFunc()
	colorBold    = color.New(color.Bold).SprintFunc()
)

// Output prefixes
const (
	prefixSaved   = "✓"
	prefixSkipped = "⚠"
	prefixError   = "✗"
	prefixInfo    = "ℹ"
)

// logSuccess prints a success message
func logSuccess(format string, args ...interface{}) {
	fmt.Printf("%s %s\n", colorSuccess(prefixSaved), fmt.Sprintf(format, args...))
}

// logSkip prints a skip/warning message
func logSkip(format string, args ...interface{}) {
	fmt.Printf("%s %s\n", colorWarn(prefixSkipped), fmt.Sprintf(format, args...))
}

// logError prints an error message
func logError(format string, args ...interface{}) {
	fmt.Printf("%s %s\n", colorError(prefixError), fmt.Sprintf(format, args...))
}

// logInfo prints an informational message
func logInfo(format string, args ...interface{}) {
	fmt.Printf("%s %s\n", colorInfo(prefixInfo), fmt.Sprintf(format, args...))
}

// logDim prints a dimmed message
func logDim(format string, args ...interface{}) {
	fmt.Println(colorDim(fmt.Sprintf(format, args...)))
}

// printSummary reports one finished run.
func printSummary(stats scraper.Stats, elapsed time.Duration, outPath string) {
	fmt.Println()
	fmt.Println(colorBold("Scrape complete"))
	logInfo("Search pages swept: %d", stats.MaxPage)
	logInfo("Listing links collected: %d", stats.Links)
	logSuccess("Records added: %d", stats.Added)
	if stats.Skipped > 0 {
		logSkip("Already recorded: %d", stats.Skipped)
	}
	if stats.CacheHits > 0 {
		logInfo("Cache hits: %d", stats.CacheHits)
	}
	if stats.Failed > 0 {
		logError("Failed listings: %d", stats.Failed)
	}
	logDim("Fetched %d listing pages in %s, output in %s", stats.Fetched, elapsed.Round(time.Millisecond), outPath)
}
