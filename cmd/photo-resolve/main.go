// Command photo-resolve runs the resolution pipeline once for a photo on
// disk. It is a debugging tool: no database, no queue, no photo storage —
// just extraction, analysis, search and scoring, with the result printed
// as JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"mime"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"frontsnap_backend/internal/places"
	"frontsnap_backend/internal/places/agent"
	"frontsnap_backend/platform/config"
	"frontsnap_backend/platform/geo"
	"frontsnap_backend/platform/googleplaces"
	"frontsnap_backend/platform/logger"

	"github.com/google/uuid"
)

func main() {
	var (
		photoPath = flag.String("photo", "", "path to the photo to resolve (required)")
		lat       = flag.Float64("lat", 0, "device latitude fallback")
		lng       = flag.Float64("lng", 0, "device longitude fallback")
		hasDevice = flag.Bool("device-location", false, "use -lat/-lng as the device location fallback")
	)
	flag.Parse()

	if *photoPath == "" {
		fmt.Fprintln(os.Stderr, "usage: photo-resolve -photo <file> [-device-location -lat <lat> -lng <lng>]")
		os.Exit(2)
	}

	cfg, err := config.LoadPipeline()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		os.Exit(1)
	}
	log := logger.New("development")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	photo, err := os.ReadFile(*photoPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to read photo:", err)
		os.Exit(1)
	}

	contentType := mime.TypeByExtension(filepath.Ext(*photoPath))
	if contentType == "" {
		contentType = "image/jpeg"
	}

	placesClient := googleplaces.NewClient(googleplaces.Config{
		APIKey: cfg.GooglePlacesAPIKey,
	})
	googleSearcher := places.NewGoogleSearcher(placesClient)

	identifier, err := agent.NewStorefrontIdentifier(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to initialize identifier:", err)
		os.Exit(1)
	}

	knobs := cfg.Resolution
	resolver := places.NewResolver(places.ResolverConfig{
		Vision:   identifier,
		Searcher: places.NewSearcher(googleSearcher, knobs, log),
		Details:  googleSearcher,
		Knobs:    knobs,
		Logger:   log,
	})

	input := places.ResolveInput{
		Photo:       photo,
		ContentType: contentType,
		FileName:    filepath.Base(*photoPath),
		UserID:      uuid.New(),
	}
	if *hasDevice {
		input.DeviceLocation = &geo.Point{Lat: *lat, Lng: *lng}
	}

	result, err := resolver.Resolve(ctx, input)
	if err != nil {
		fmt.Fprintln(os.Stderr, "resolution failed:", err)
		os.Exit(1)
	}

	encoded, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to encode result:", err)
		os.Exit(1)
	}
	fmt.Println(string(encoded))
}
