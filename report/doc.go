// Package report renders scan results, replacement outcomes and tracker
// domain listings for the terminal, as Markdown or as JSON.
package report
