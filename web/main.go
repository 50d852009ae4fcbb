package main

import (
	"flag"
	"log"
	"os"

	"github.com/df07/go-plymesh/web/server"
)

func main() {
	// Parse command line flags
	port := flag.Int("port", 8080, "Port to serve on")
	maxUpload := flag.Int64("max-upload", server.DefaultMaxUploadBytes, "Largest accepted upload in bytes")
	maxData := flag.Int64("max-data", server.DefaultMaxDataBytes, "Largest accepted upload size after decompression in bytes")
	flag.Parse()

	// Create and start web server
	webServer := server.NewServer(*port)
	webServer.SetMaxUploadBytes(*maxUpload)
	webServer.SetMaxDataBytes(*maxData)

	log.Printf("PLY Mesh Web Server")
	log.Printf("POST PLY files to http://localhost:%d/api/inspect or /api/convert", *port)

	if err := webServer.Start(); err != nil {
		log.Printf("Error starting server: %v", err)
		os.Exit(1)
	}
}
