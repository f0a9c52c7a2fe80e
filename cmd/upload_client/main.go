package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/rcmp123/marketplace/pkg/helpers"
	"github.com/rcmp123/marketplace/pkg/uploadclient"
)

func main() {
	addr := flag.String("addr", "http://localhost:8000", "backend base URL")
	title := flag.String("title", "", "listing title")
	description := flag.String("description", "", "listing description")
	price := flag.Float64("price", 0, "listing price")
	sellerID := flag.Int64("seller-id", 0, "seller user id")
	imageFile := flag.String("image-b64-file", "", "file holding the base64-encoded image ('-' for stdin)")
	flag.Parse()

	logger := helpers.NewLoggerTo(os.Stderr, "upload-client", "development")
	if *title == "" || *imageFile == "" {
		flag.Usage()
		os.Exit(2)
	}

	encoded, err := readInput(*imageFile)
	if err != nil {
		logger.WithError(err).Fatal("read image")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	out, err := uploadclient.New(*addr).CreateListing(ctx, *title, *description, *price, *sellerID, string(encoded))
	if err != nil {
		logger.WithError(err).WithFields(logrus.Fields{"addr": *addr}).Fatal("create listing failed")
	}
	b, _ := json.Marshal(out)
	fmt.Println(string(b))
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}
