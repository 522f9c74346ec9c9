// Package main provides the entry point for the ContactSleuth CLI.
//
// ContactSleuth crawls a seed domain and extracts publicly listed contact
// information: email addresses, personal names, phone numbers, job titles,
// and organization details.
//
// Usage:
//
//	contactsleuth crawl <url>
//	contactsleuth crawl --list <file>
//
// See --help for all available options.
package main

// main is the entry point for ContactSleuth.
func main() {
	Execute()
}
