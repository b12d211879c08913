// Command mid70 discovers a Mid-70 sensor on the local network,
// establishes a session, enables sampling and logs a running count of
// received points (with -sample=false it only keeps the session alive
// until interrupted).
package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"
	"time"

	mid70 "github.com/fenwick-systems/mid70lidar"
	"github.com/fenwick-systems/mid70lidar/internal/discovery"
	"github.com/fenwick-systems/mid70lidar/internal/mid70cfg"
	"github.com/fenwick-systems/mid70lidar/internal/version"
	"github.com/fenwick-systems/mid70lidar/internal/wire"
)

var (
	sensorIP    = flag.String("sensor-ip", "", "sensor IP address (skips broadcast discovery if set)")
	configPath  = flag.String("config", "", "path to a JSON client config file (optional)")
	sample      = flag.Bool("sample", true, "enable point sampling and log a running point count")
	discoverTO  = flag.Duration("discover-timeout", 5*time.Second, "how long to wait for a broadcast before giving up")
	showVersion = flag.Bool("version", false, "print version and exit")
)

func main() {
	flag.Parse()

	if *showVersion {
		log.Printf("mid70 v%s (git SHA: %s)", version.Version, version.GitSHA)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := mid70cfg.Empty()
	if *configPath != "" {
		loaded, err := mid70cfg.Load(*configPath)
		if err != nil {
			log.Fatalf("load config: %v", err)
		}
		cfg = loaded
	}

	ip := *sensorIP
	devType := wire.DeviceTypeMid70
	if ip == "" {
		discovered, err := discoverSensor(ctx, *discoverTO)
		if err != nil {
			log.Fatalf("discovery: %v", err)
		}
		ip = discovered.Addr.IP.String()
		devType = discovered.DevType
		log.Printf("discovered %s at %s", devType, ip)
	}

	client, err := mid70.Handshake(ctx, ip, devType, cfg)
	if err != nil {
		log.Fatalf("handshake: %v", err)
	}
	defer client.Close()
	log.Printf("session established with %s", client.Device())

	if *sample {
		if err := client.SetSampling(ctx, true); err != nil {
			log.Fatalf("enable sampling: %v", err)
		}
		defer client.SetSampling(context.Background(), false)
		go streamPoints(ctx, client)
	}

	<-ctx.Done()
	log.Print("shutting down")
}

func discoverSensor(ctx context.Context, timeout time.Duration) (*discovery.Device, error) {
	dctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return discovery.WaitForOne(dctx)
}

func streamPoints(ctx context.Context, client *mid70.Client) {
	count := 0
	lastLog := time.Now()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		f, err := client.Stream.NextFrame()
		if err != nil {
			log.Printf("point stream read failed: %v", err)
			return
		}
		count += len(f.DT2Points) + len(f.DT3Points)

		if time.Since(lastLog) > 5*time.Second {
			log.Printf("received %d points so far", count)
			lastLog = time.Now()
		}
	}
}
