// Package main implements the entry point for the extract-api server,
// which performs asynchronous text, structured and OCR extraction from
// PDF documents over an HTTP API.
package main

import (
	"context"
	"log"
)

// main is the entry point for the extract-api server. It initializes
// configuration, logging and the extraction services, then runs the HTTP
// server until a shutdown signal arrives.
func main() {
	app, err := initializeApp()
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	if err := app.startHTTPServer(context.Background(), app.setupRouter()); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
