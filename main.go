package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"drivegate/internal/drive"
	"drivegate/internal/extract"
	"drivegate/internal/fetch"
)

// CLI front for the retrieval pipeline: resolves a Drive link and writes the
// payload to disk, printing the viewer URL when no content path worked.
func main() {
	format := flag.String("format", "", "export format for native apps documents (e.g. xlsx, pdf)")
	output := flag.String("o", "", "output path (defaults to the resolved filename)")
	viewOnly := flag.Bool("view", false, "treat the file as view-only")
	forcePDF := flag.Bool("forcepdf", false, "force the PDF rendering path")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <drive link or file id>\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(2)
	}

	fileID, err := extract.FileID(flag.Arg(0))
	if err != nil {
		log.Fatalf("could not extract a file ID: %v", err)
	}

	ctx := context.Background()
	prober, err := drive.NewProber(ctx)
	if err != nil {
		log.Fatalf("creating metadata prober: %v", err)
	}

	meta := prober.Probe(ctx, fileID)
	log.Printf("resolved %s: name=%q mimeType=%q canDownload=%v", fileID, meta.Name, meta.MIMEType, meta.CanDownload)

	req := fetch.Request{
		FileID:   fileID,
		Format:   *format,
		ForcePDF: *forcePDF,
		ViewOnly: *viewOnly,
	}

	result, err := fetch.NewChain().Run(ctx, req, meta)
	if err != nil {
		log.Fatalf("retrieval failed: %v", err)
	}

	if result.RedirectURL != "" {
		log.Printf("no content path worked; open the file in the upstream viewer: %s", result.RedirectURL)
		os.Exit(1)
	}
	defer result.Body.Close()

	path := *output
	if path == "" {
		path = result.Filename
	}

	out, err := os.Create(path)
	if err != nil {
		log.Fatalf("creating %s: %v", path, err)
	}

	written, err := io.Copy(out, result.Body)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(path)
		log.Fatalf("writing %s: %v", path, err)
	}

	log.Printf("wrote %s (%d bytes, %s, via %s)", path, written, result.ContentType, result.Strategy)
}
