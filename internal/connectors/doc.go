// Package connectors holds clients that fetch articles from upstream
// knowledge bases. The helpcenter package pages through a help-center
// articles API and hands raw records to the ingest service.
package connectors
