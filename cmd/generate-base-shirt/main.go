// Command generate-base-shirt stamps the brand logo onto the plain white
// shirt and writes the base image used for previews.
package main

import (
	"flag"
	"os"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"

	"tee-wizard/config"
	"tee-wizard/logger"
	"tee-wizard/service"
)

func main() {
	shirtPath := flag.String("shirt", "public/tshirts/white.png", "plain shirt image")
	logoPath := flag.String("logo", "public/logo.png", "logo image")
	outPath := flag.String("out", "public/tshirts/white-with-logo.png", "output image")
	flag.Parse()

	zl := logger.New(config.LogConfig{Level: "info", Format: "console", Output: "stderr"})
	defer zl.Sync() //nolint:errcheck

	if err := run(*shirtPath, *logoPath, *outPath); err != nil {
		zl.Error("Failed to generate base shirt", zap.Error(err))
		os.Exit(1)
	}
	zl.Info("Base shirt written", zap.String("path", *outPath))
}

func run(shirtPath, logoPath, outPath string) error {
	shirt, err := imaging.Open(shirtPath)
	if err != nil {
		return err
	}
	logo, err := imaging.Open(logoPath)
	if err != nil {
		return err
	}
	return imaging.Save(service.ComposeBaseShirt(shirt, logo), outPath)
}
