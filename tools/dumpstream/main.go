// Command dumpstream exercises a running mediavault server's streaming
// endpoint: it requests a byte range for an item and reports the response
// headers and actual byte count. Useful when debugging seek behavior.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"mediavault/client"
)

func main() {
	var (
		baseURL = flag.String("server", "http://localhost:4545", "mediavault server base URL")
		itemID  = flag.String("item", "", "item id to stream (default: first item in the library)")
		quality = flag.String("quality", "", "quality variant label")
		byteRng = flag.String("range", "", "byte range to request, e.g. 100-199 or 900-")
	)
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	c := client.New(*baseURL)

	id := *itemID
	if id == "" {
		items, err := c.Items(ctx)
		if err != nil {
			log.Fatalf("list items: %v", err)
		}
		if len(items) == 0 {
			log.Fatal("library is empty")
		}
		id = items[0].ID
		fmt.Printf("using item %s (%s)\n", id, items[0].Title)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.StreamURL(id, *quality), nil)
	if err != nil {
		log.Fatalf("build request: %v", err)
	}
	if *byteRng != "" {
		req.Header.Set("Range", "bytes="+*byteRng)
	}

	start := time.Now()
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Fatalf("stream request: %v", err)
	}
	defer resp.Body.Close()

	n, err := io.Copy(io.Discard, resp.Body)
	if err != nil {
		log.Fatalf("read body: %v", err)
	}

	fmt.Printf("status:         %s\n", resp.Status)
	fmt.Printf("content-type:   %s\n", resp.Header.Get("Content-Type"))
	fmt.Printf("content-length: %s\n", resp.Header.Get("Content-Length"))
	fmt.Printf("content-range:  %s\n", resp.Header.Get("Content-Range"))
	fmt.Printf("accept-ranges:  %s\n", resp.Header.Get("Accept-Ranges"))
	fmt.Printf("body bytes:     %d in %v\n", n, time.Since(start))
}
