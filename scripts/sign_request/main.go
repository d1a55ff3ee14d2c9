package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"pdf-exporter/internal/security"
)

func main() {
	if len(os.Args) < 5 {
		fmt.Println("Usage: go run ./scripts/sign_request <secret> <method> <path> <body>")
		fmt.Println(`Example: go run ./scripts/sign_request mysecret POST /admin/Book/actions/export_to_pdf_portrait '{"ids":["1","2"]}'`)
		return
	}

	secret, method, path, body := os.Args[1], os.Args[2], os.Args[3], os.Args[4]
	timestamp := strconv.FormatInt(time.Now().Unix(), 10)

	fmt.Printf("X-Timestamp: %s\n", timestamp)
	fmt.Printf("X-Signature: %s\n", security.Sign(secret, method, path, body, timestamp))
}
