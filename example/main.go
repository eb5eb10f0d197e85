package main

import (
	"fmt"
	"os"
	"sync"
	"time"

	ttlog "github.com/gentleeduck/duck-ttlog"
	"github.com/gentleeduck/duck-ttlog/event"
	"github.com/gentleeduck/duck-ttlog/listener"
)

func main() {
	cfg := ttlog.NewConfig("example")
	cfg.Capacity = 512
	cfg.MinLevel = event.LevelDebug

	h, err := ttlog.Init(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init: %v\n", err)
		os.Exit(1)
	}
	h.AddListener(listener.NewStdout())

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			defer h.CapturePanic()
			for i := 0; i < 100; i++ {
				h.Log(event.LevelInfo, "example.worker", "unit processed",
					event.Position{},
					event.Int("worker", worker),
					event.Int("unit", i),
					event.Bool("ok", i%7 != 0))
			}
		}(w)
	}
	wg.Wait()

	h.RequestSnapshot("demo")
	if err := h.Shutdown(5 * time.Second); err != nil {
		fmt.Fprintf(os.Stderr, "shutdown: %v\n", err)
	}

	st := h.Stats()
	fmt.Printf("pushed=%d dropped=%d overflow=%d snapshots=%d\n",
		st.Pushed, st.Dropped, st.ChannelOverflow, st.Snapshots)
}
