// Command cyphal-shell is an interactive REPL for issuing service
// requests against a running transport, over a UDP medium.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/chzyer/readline"

	"github.com/cyphal-go/transport-core/pkg/cyphal"
	"github.com/cyphal-go/transport-core/pkg/media"
	"github.com/cyphal-go/transport-core/pkg/presentation"
	"github.com/cyphal-go/transport-core/pkg/transport"
)

func main() {
	addr := flag.String("addr", "239.10.10.10:9382", "UDP multicast group to join")
	iface := flag.String("iface", "", "network interface name (empty: OS default)")
	localNode := flag.Uint("node", 1, "local node id")
	service := flag.Uint("service", 100, "service id to call")
	flag.Parse()

	m, err := media.DialUDP(*addr, *iface, 5)
	if err != nil {
		fmt.Fprintln(os.Stderr, "cyphal-shell:", err)
		os.Exit(1)
	}
	defer m.Close()

	engine, err := transport.NewEngine([]transport.Media{m}, transport.EngineConfig{
		LocalNode: cyphal.NodeID(*localNode),
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "cyphal-shell:", err)
		os.Exit(1)
	}
	client, err := presentation.NewClient(engine, cyphal.PortID(*service))
	if err != nil {
		fmt.Fprintln(os.Stderr, "cyphal-shell:", err)
		os.Exit(1)
	}

	stop := make(chan struct{})
	go pumpLoop(engine, client, stop)
	defer close(stop)

	rl, err := readline.New(fmt.Sprintf("cyphal[%d]> ", *localNode))
	if err != nil {
		fmt.Fprintln(os.Stderr, "cyphal-shell:", err)
		os.Exit(1)
	}
	defer rl.Close()

	fmt.Println("usage: <destination-node> <payload text>")
	for {
		line, err := rl.Readline()
		if err != nil {
			return
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		fields := strings.SplitN(line, " ", 2)
		if len(fields) != 2 {
			fmt.Println("usage: <destination-node> <payload text>")
			continue
		}
		dest, err := strconv.ParseUint(fields[0], 10, 16)
		if err != nil {
			fmt.Println("bad destination node:", err)
			continue
		}

		promise, err := client.RequestRaw(cyphal.NodeID(dest), cyphal.PriorityNominal, []byte(fields[1]), 3*time.Second, cyphal.TimePoint(time.Now()))
		if err != nil {
			fmt.Println("request failed:", err)
			continue
		}
		awaitAndPrint(promise)
	}
}

func pumpLoop(engine *transport.Engine, client *presentation.Client, stop <-chan struct{}) {
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			now := cyphal.TimePoint(time.Now())
			_ = engine.Run(now)
			client.Run(now)
		}
	}
}

func awaitAndPrint(promise *presentation.ResponsePromise) {
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if payload, ready, expired := promise.GetResult(); ready {
			if expired {
				fmt.Println("(timed out)")
				return
			}
			fmt.Printf("< %s\n", string(payload))
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	fmt.Println("(no response)")
}
