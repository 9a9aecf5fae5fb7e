// Command cyphal-bench runs a publisher and a subscriber against an
// in-memory loopback bus and reports how many transfers were
// delivered, for exercising the transport core without CAN hardware.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/cyphal-go/transport-core/pkg/config"
	"github.com/cyphal-go/transport-core/pkg/cyphal"
	"github.com/cyphal-go/transport-core/pkg/log"
	"github.com/cyphal-go/transport-core/pkg/media"
	"github.com/cyphal-go/transport-core/pkg/transport"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file (optional)")
	count := flag.Int("count", 1000, "number of messages to publish")
	subject := flag.Uint("subject", 42, "subject id to publish on")
	traceFile := flag.String("trace", "", "path to write a CBOR event trace")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "cyphal-bench:", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	var logger log.Logger = log.NewSlogAdapter(slog.Default())
	if *traceFile != "" {
		fl, err := log.NewFileLogger(*traceFile)
		if err != nil {
			fmt.Fprintln(os.Stderr, "cyphal-bench:", err)
			os.Exit(1)
		}
		defer fl.Close()
		logger = log.NewMultiLogger(logger, fl)
	}

	bus := media.NewLoopbackBus(8, 2)

	pub, err := transport.NewEngine([]transport.Media{bus[0]}, transport.EngineConfig{
		LocalNode:       1,
		TXQueueCapacity: cfg.TXQueueCapacity,
		Logger:          logger,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "cyphal-bench:", err)
		os.Exit(1)
	}
	sub, err := transport.NewEngine([]transport.Media{bus[1]}, transport.EngineConfig{
		LocalNode:        2,
		MaxSubscriptions: cfg.MaxSubscriptions,
		Logger:           logger,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "cyphal-bench:", err)
		os.Exit(1)
	}

	rx, err := sub.SubscribeMessage(cyphal.PortID(*subject), 0, 0)
	if err != nil {
		fmt.Fprintln(os.Stderr, "cyphal-bench:", err)
		os.Exit(1)
	}

	now := cyphal.TimePoint(time.Now())
	if err := sub.Run(now); err != nil {
		fmt.Fprintln(os.Stderr, "cyphal-bench:", err)
	}

	tx := pub.NewMessageTxSession(cyphal.PortID(*subject))
	for i := 0; i < *count; i++ {
		payload := fmt.Appendf(nil, "message-%d", i)
		if err := tx.Send(cyphal.PriorityNominal, payload, cyphal.TimePointNever); err != nil {
			fmt.Fprintln(os.Stderr, "cyphal-bench: send:", err)
		}
	}

	if err := pub.Run(now); err != nil {
		fmt.Fprintln(os.Stderr, "cyphal-bench:", err)
	}
	if err := sub.Run(now); err != nil {
		fmt.Fprintln(os.Stderr, "cyphal-bench:", err)
	}

	delivered := 0
	for {
		if _, ok := rx.Receive(); !ok {
			break
		}
		delivered++
	}

	fmt.Printf("sent=%d delivered=%d\n", *count, delivered)
}
